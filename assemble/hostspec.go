package assemble

import (
	"math"
	"regexp"
	"strconv"
	"strings"

	"github.com/teranos/azsku/errors"
	"github.com/teranos/azsku/table"
)

// Host spec sheet rows and columns.
const (
	RowProcessor     = "Processor"
	RowMemory        = "Memory"
	RowLocalStorage  = "Local Storage"
	RowRemoteStorage = "Remote Storage"
	RowNetwork       = "Network"

	colQuantity = "Quantity"
	colSpecs    = "Specs"
)

var quantityPattern = regexp.MustCompile(`^([\d.]+)\s?-?\s?([\d.]+)?\s?([\w\s]*?)$`)

// Quantity is one "min - max unit" cell of a host spec sheet.
type Quantity struct {
	Min  int
	Max  *int
	Unit string
}

// ParseQuantity reads "2 - 96 vCPUs", "1 Temp Disk" and similar. Fractions
// are floored. Min must not exceed Max.
func ParseQuantity(s string) (Quantity, error) {
	m := quantityPattern.FindStringSubmatch(s)
	if m == nil {
		return Quantity{}, errors.NewGrammarViolation("quantity %q", s)
	}
	min, err := floor(m[1])
	if err != nil {
		return Quantity{}, errors.Wrapf(err, "quantity %q", s)
	}
	q := Quantity{Min: min, Unit: m[3]}
	if m[2] != "" {
		max, err := floor(m[2])
		if err != nil {
			return Quantity{}, errors.Wrapf(err, "quantity %q", s)
		}
		if min > max {
			return Quantity{}, errors.NewGrammarViolation("quantity %q: min %d exceeds max %d", s, min, max)
		}
		q.Max = &max
	}
	return q, nil
}

func floor(s string) (int, error) {
	f, err := strconv.ParseFloat(s, 64)
	if err != nil {
		return 0, errors.NewGrammarViolation("number %q", s)
	}
	return int(math.Floor(f)), nil
}

// HostSpec is one parsed row of the host spec sheet.
type HostSpec struct {
	Quantity
	Specs []string
}

// row returns the quantity tokens and specs of a sheet row.
func row(sheet *table.Sheet, name string) (quantity, specs []string, ok bool) {
	fields, ok := sheet.Get(name)
	if !ok {
		return nil, nil, false
	}
	quantity, _ = fields.Get(colQuantity)
	specs, _ = fields.Get(colSpecs)
	return quantity, specs, true
}

// joinedRow parses a row whose quantity tokens form one range.
func joinedRow(sheet *table.Sheet, name string, required bool) (*HostSpec, error) {
	quantity, specs, ok := row(sheet, name)
	if !ok || len(quantity) == 0 {
		if required {
			return nil, errors.NewGrammarViolation("host specs lack %s", name)
		}
		return nil, nil
	}
	q, err := ParseQuantity(strings.Join(quantity, ""))
	if err != nil {
		return nil, errors.Wrap(err, name)
	}
	return &HostSpec{Quantity: q, Specs: specs}, nil
}

// Local disk kinds, matched by unit prefix in this order.
const (
	DiskLocal     = "local_storage_disks"
	DiskLocalTemp = "local_temp_storage_disks"
	DiskLocalNVMe = "local_nvme_storage"
)

var localDiskKinds = []struct {
	prefix string
	kind   string
}{
	{"disk", DiskLocal},
	{"temp disk", DiskLocalTemp},
	{"nvme disk", DiskLocalNVMe},
}

// localStorage maps each local storage quantity to a disk kind. "None" means
// the series has no local storage.
func localStorage(sheet *table.Sheet) (map[string]HostSpec, error) {
	quantity, specs, ok := row(sheet, RowLocalStorage)
	if !ok || len(quantity) == 0 || quantity[0] == "None" {
		return nil, nil
	}
	out := make(map[string]HostSpec, len(quantity))
	for i, tok := range quantity {
		q, err := ParseQuantity(tok)
		if err != nil {
			return nil, errors.Wrap(err, RowLocalStorage)
		}
		kind := ""
		unit := strings.ToLower(q.Unit)
		for _, k := range localDiskKinds {
			if strings.HasPrefix(unit, k.prefix) {
				kind = k.kind
				break
			}
		}
		if kind == "" {
			return nil, errors.NewGrammarViolation("%s: unknown disk type %q", RowLocalStorage, q.Unit)
		}
		if _, dup := out[kind]; dup {
			return nil, errors.NewGrammarViolation("%s: more than one %s quantity", RowLocalStorage, kind)
		}
		hs := HostSpec{Quantity: q}
		if i < len(specs) {
			hs.Specs = []string{specs[i]}
		}
		out[kind] = hs
	}
	return out, nil
}
