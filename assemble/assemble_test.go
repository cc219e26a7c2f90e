package assemble

import (
	"encoding/json"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/teranos/azsku/capability"
	"github.com/teranos/azsku/errors"
	"github.com/teranos/azsku/internal/util"
	"github.com/teranos/azsku/table"
)

type sheetRow struct {
	key      string
	quantity []string
	specs    []string
}

func buildSheet(rows ...sheetRow) *table.Sheet {
	sheet := table.NewOrderedMap[*table.Fields]()
	for _, r := range rows {
		f := table.NewOrderedMap[[]string]()
		f.Set("Quantity", r.quantity)
		f.Set("Specs", r.specs)
		sheet.Set(r.key, f)
	}
	return sheet
}

func dv5Sheet() *table.Sheet {
	return buildSheet(
		sheetRow{"Processor", []string{"2 - 96 vCPUs"}, []string{"Intel Xeon Platinum 8370C (Ice Lake)"}},
		sheetRow{"Memory", []string{"8 - 384 GiB"}, []string{}},
		sheetRow{"Local Storage", []string{"None"}, []string{}},
		sheetRow{"Remote Storage", []string{"4 - 32 Disks"}, []string{}},
		sheetRow{"Network", []string{"2 - 8 NICs"}, []string{"12500 Mbps"}},
	)
}

func testCapabilities(t *testing.T) *capability.Set {
	raw := table.NewOrderedMap[string]()
	for _, kv := range [][2]string{
		{"Premium Storage", "Supported"},
		{"Premium Storage caching", "Supported"},
		{"Live Migration", "Supported"},
		{"Memory Preserving Updates", "Supported"},
		{"Accelerated Networking", "Supported"},
		{"Nested Virtualization", "Supported"},
		{"ACU", "195 - 210"},
	} {
		raw.Set(kv[0], kv[1])
	}
	set, err := capability.Canonicalize(raw, false)
	require.NoError(t, err)
	return set
}

func dv5Input(t *testing.T) SeriesInput {
	return SeriesInput{
		Name:          "Dv5",
		Sheet:         dv5Sheet(),
		Capabilities:  testCapabilities(t),
		InstanceNames: []string{"Standard_D2_v5", "Standard_D4_v5"},
		LastUpdated:   time.Date(2024, 5, 1, 12, 0, 0, 0, time.UTC),
	}
}

func TestParseQuantity(t *testing.T) {
	tests := []struct {
		in   string
		min  int
		max  *int
		unit string
	}{
		{"2 - 96 vCPUs", 2, util.Ptr(96), "vCPUs"},
		{"1.5 - 3.9 GiB", 1, util.Ptr(3), "GiB"},
		{"8 GiB", 8, nil, "GiB"},
		{"2-4 NICs", 2, util.Ptr(4), "NICs"},
		{"1 Temp Disk", 1, nil, "Temp Disk"},
	}
	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			q, err := ParseQuantity(tt.in)
			require.NoError(t, err)
			assert.Equal(t, tt.min, q.Min)
			assert.Equal(t, tt.max, q.Max)
			assert.Equal(t, tt.unit, q.Unit)
		})
	}

	for _, bad := range []string{"None", "", "96 - 2 vCPUs", "many vCPUs"} {
		_, err := ParseQuantity(bad)
		assert.True(t, errors.Is(err, errors.ErrGrammarViolation), "input %q", bad)
	}
}

func TestFamily(t *testing.T) {
	f, err := Family("E")
	require.NoError(t, err)
	assert.Equal(t, "E", f.EntityName())
	assert.Equal(t, KindFamily, f.EntityKind())
	assert.Equal(t, "Memory optimized for In-Memory hyperthreaded-applications", f.FamilyDescription)

	_, err = Family("Z")
	assert.True(t, errors.Is(err, errors.ErrGrammarViolation))
}

func TestSeries(t *testing.T) {
	r, err := Series(dv5Input(t))
	require.NoError(t, err)

	assert.Equal(t, "Dv5", r.Name)
	assert.Equal(t, "D", r.FamilyID)
	assert.Nil(t, r.SubfamilyID)
	assert.Nil(t, r.Addons)
	assert.Equal(t, 5, r.Version)
	assert.Equal(t, 2, r.VCPUsMin)
	assert.Equal(t, 96, *r.VCPUsMax)
	assert.Equal(t, []string{"Intel Xeon Platinum 8370C (Ice Lake)"}, r.CPUProcessorModels)
	assert.Equal(t, 8, r.MemoryGBMin)
	assert.Equal(t, 384, *r.MemoryGBMax)
	assert.Nil(t, r.LocalStorageDisksMin)
	assert.Nil(t, r.LocalTempStorageDisksMin)
	assert.Equal(t, 4, *r.RemoteStorageDisksMin)
	assert.Equal(t, 32, *r.RemoteStorageDisksMax)
	assert.Nil(t, r.RemoteStorageDisksSpecs)
	assert.Equal(t, 8, *r.NetworkNICsMax)
	assert.Equal(t, []string{"12500 Mbps"}, r.NetworkingSpecs)
	assert.Equal(t, "2024-05-01T12:00:00Z", r.LastUpdatedAzure)

	acuMax, ok := r.Capabilities.Get(capability.KeyACUsMax)
	require.True(t, ok)
	n, _ := acuMax.AsInt()
	assert.Equal(t, 210, n)
}

func TestSeries_CodeDetails(t *testing.T) {
	in := dv5Input(t)
	in.Name = "DCasv5"
	in.Confidential = true
	r, err := Series(in)
	require.NoError(t, err)

	require.NotNil(t, r.SubfamilyID)
	assert.Equal(t, "C", *r.SubfamilyID)
	c, ok := r.Subfamilies.Get("C")
	require.True(t, ok)
	assert.Equal(t, "Confidential compute", c.Description)
	assert.Equal(t, "as", *r.Addons)
	assert.Equal(t, []string{"a", "s"}, r.AddonsMapping.Keys())
	assert.True(t, r.IsConfidential)

	in.Name = "NCads_H100_v5"
	r, err = Series(in)
	require.NoError(t, err)
	require.NotNil(t, r.Accelerator)
	assert.Equal(t, "H100", *r.Accelerator)
	h100, _ := r.AcceleratorMapping.Get("H100")
	assert.Equal(t, "Nvidia H100 NVL GPU enabled VMs", h100.Description)
}

func TestSeries_LocalStorage(t *testing.T) {
	in := dv5Input(t)
	in.Sheet = buildSheet(
		sheetRow{"Processor", []string{"2 - 96 vCPUs"}, nil},
		sheetRow{"Memory", []string{"8 - 384 GiB"}, nil},
		sheetRow{"Local Storage", []string{"1 Temp Disk", "1 - 4 NVMe Disks"}, []string{"75 - 3600 GiB", "Up to 7 TiB"}},
	)
	r, err := Series(in)
	require.NoError(t, err)

	assert.Equal(t, 1, *r.LocalTempStorageDisksMin)
	assert.Nil(t, r.LocalTempStorageDisksMax)
	assert.Equal(t, []string{"75 - 3600 GiB"}, r.LocalTempStorageDisksSpecs)
	assert.Equal(t, 1, *r.LocalNVMeStorageMin)
	assert.Equal(t, 4, *r.LocalNVMeStorageMax)
	assert.Equal(t, []string{"Up to 7 TiB"}, r.LocalNVMeStorageSpecs)
	assert.Nil(t, r.LocalStorageDisksMin)
	assert.Nil(t, r.RemoteStorageDisksMin)
	assert.Nil(t, r.NetworkNICsMin)
	assert.Equal(t, []string{}, r.CPUProcessorModels)
}

func TestSeries_Violations(t *testing.T) {
	tests := []struct {
		name     string
		mutate   func(*SeriesInput)
		sentinel error
	}{
		{"bad name", func(in *SeriesInput) { in.Name = "dv5" }, errors.ErrGrammarViolation},
		{"no sheet", func(in *SeriesInput) { in.Sheet = nil }, errors.ErrGrammarViolation},
		{"no capabilities", func(in *SeriesInput) { in.Capabilities = nil }, errors.ErrSchemaClosure},
		{"no processor", func(in *SeriesInput) {
			in.Sheet = buildSheet(sheetRow{"Memory", []string{"8 GiB"}, nil})
		}, errors.ErrGrammarViolation},
		{"inverted memory", func(in *SeriesInput) {
			in.Sheet = buildSheet(
				sheetRow{"Processor", []string{"2 vCPUs"}, nil},
				sheetRow{"Memory", []string{"384 - 8 GiB"}, nil},
			)
		}, errors.ErrGrammarViolation},
		{"unknown disk", func(in *SeriesInput) {
			in.Sheet = buildSheet(
				sheetRow{"Processor", []string{"2 vCPUs"}, nil},
				sheetRow{"Memory", []string{"8 GiB"}, nil},
				sheetRow{"Local Storage", []string{"2 Tapes"}, nil},
			)
		}, errors.ErrGrammarViolation},
		{"duplicate disk kind", func(in *SeriesInput) {
			in.Sheet = buildSheet(
				sheetRow{"Processor", []string{"2 vCPUs"}, nil},
				sheetRow{"Memory", []string{"8 GiB"}, nil},
				sheetRow{"Local Storage", []string{"1 Temp Disk", "2 Temp Disks"}, nil},
			)
		}, errors.ErrGrammarViolation},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			in := dv5Input(t)
			tt.mutate(&in)
			_, err := Series(in)
			assert.True(t, errors.Is(err, tt.sentinel), "got %v", err)
		})
	}
}

func TestVariant_StandardE16(t *testing.T) {
	r, err := Variant("Standard_E16-8s_v5", false, time.Time{})
	require.NoError(t, err)

	assert.Equal(t, []string{"Standard"}, r.Tier.Keys())
	assert.Equal(t, "E", r.FamilyID)
	assert.Equal(t, 16, r.VCPUs)
	require.NotNil(t, r.ConstrainedVCPUs)
	assert.Equal(t, 8, *r.ConstrainedVCPUs)
	assert.Equal(t, []string{"s"}, r.Addons.Keys())
	assert.Equal(t, 5, r.Version)
	assert.Nil(t, r.IterationVersion)
	assert.Equal(t, 0, r.Accelerator.Len())
	assert.Empty(t, r.LastUpdatedAzure)

	data, err := json.Marshal(r)
	require.NoError(t, err)
	assert.True(t, strings.HasPrefix(string(data), `{"name":"Standard_E16-8s_v5","name__str":"Name of the VM instance","tier":{"Standard":{"description":`), string(data))
	assert.Contains(t, string(data), `"addons":{"s":{"description":"Premium storage capable","verbose_description":"Premium storage capability with possible Ultra SSD support"}}`)
	assert.Contains(t, string(data), `"accelerator":{}`)
	assert.NotContains(t, string(data), "last_updated_azure")
}

func TestVariant_Details(t *testing.T) {
	r, err := Variant("Standard_NC24ads_A100_v4", false, time.Time{})
	require.NoError(t, err)
	assert.Equal(t, []string{"A100"}, r.Accelerator.Keys())
	assert.Equal(t, []string{"a", "d", "s"}, r.Addons.Keys())

	r, err = Variant("Standard_DC2as_v5", true, time.Time{})
	require.NoError(t, err)
	c, _ := r.Subfamilies.Get("C")
	assert.Equal(t, "Confidential compute", c.Description)

	r, err = Variant("Basic_A1", false, time.Time{})
	require.NoError(t, err)
	assert.Equal(t, []string{"Basic"}, r.Tier.Keys())
	assert.Equal(t, 1, r.Version)

	r, err = Variant("E2s_v5", false, time.Time{})
	require.NoError(t, err)
	assert.Equal(t, 0, r.Tier.Len())
}

func TestVariant_Violations(t *testing.T) {
	for _, name := range []string{"Standard_E4-8s_v5", "Standard_D0_v5", "Standard_E8-0s_v5", "standard_x", "Standard_Q2_v5"} {
		_, err := Variant(name, false, time.Time{})
		assert.True(t, errors.Is(err, errors.ErrGrammarViolation), "name %s: %v", name, err)
	}
}

func TestVariants(t *testing.T) {
	in := dv5Input(t)
	vs, err := Variants(in)
	require.NoError(t, err)
	require.Len(t, vs, 2)
	assert.Equal(t, "Standard_D4_v5", vs[1].Name)
	assert.Equal(t, "2024-05-01T12:00:00Z", vs[1].LastUpdatedAzure)

	in.InstanceNames = append(in.InstanceNames, "Size")
	_, err = Variants(in)
	assert.True(t, errors.Is(err, errors.ErrGrammarViolation))
	assert.Contains(t, err.Error(), "series Dv5")
}

func TestFingerprints_Idempotent(t *testing.T) {
	first, err := Series(dv5Input(t))
	require.NoError(t, err)
	second, err := Series(dv5Input(t))
	require.NoError(t, err)

	fp1, err := first.Fingerprint()
	require.NoError(t, err)
	fp2, err := second.Fingerprint()
	require.NoError(t, err)
	assert.Equal(t, fp1, fp2)

	// a new commit time alone is not a change
	later := dv5Input(t)
	later.LastUpdated = later.LastUpdated.Add(48 * time.Hour)
	third, err := Series(later)
	require.NoError(t, err)
	fp3, err := third.Fingerprint()
	require.NoError(t, err)
	assert.Equal(t, fp1, fp3)

	changed := dv5Input(t)
	changed.Sheet = buildSheet(
		sheetRow{"Processor", []string{"2 - 64 vCPUs"}, nil},
		sheetRow{"Memory", []string{"8 - 384 GiB"}, nil},
	)
	fourth, err := Series(changed)
	require.NoError(t, err)
	fp4, err := fourth.Fingerprint()
	require.NoError(t, err)
	assert.NotEqual(t, fp1, fp4)

	v1, err := Variant("Standard_D2_v5", false, time.Now())
	require.NoError(t, err)
	v2, err := Variant("Standard_D2_v5", false, time.Time{})
	require.NoError(t, err)
	f1, _ := v1.Fingerprint()
	f2, _ := v2.Fingerprint()
	assert.Equal(t, f1, f2)
}
