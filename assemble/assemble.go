// Package assemble combines decoded naming codes, host spec sheets and
// capability sets into validated family, series and variant records.
package assemble

import (
	"time"

	"github.com/teranos/azsku/capability"
	"github.com/teranos/azsku/errors"
	"github.com/teranos/azsku/grammar"
	"github.com/teranos/azsku/internal/util"
	"github.com/teranos/azsku/table"
)

// SeriesInput is what the document graph and the parsers found out about
// one series.
type SeriesInput struct {
	Name               string
	Sheet              *table.Sheet
	Capabilities       *capability.Set
	Confidential       bool
	PreviousGeneration bool
	InstanceNames      []string
	LastUpdated        time.Time
}

func timestamp(t time.Time) string {
	if t.IsZero() {
		return ""
	}
	return t.UTC().Format(time.RFC3339)
}

// Family looks up a family letter.
func Family(code string) (*FamilyRecord, error) {
	d, ok := grammar.FamilyDescription(code)
	if !ok {
		return nil, errors.NewGrammarViolation("unknown family %q", code)
	}
	return &FamilyRecord{Name: code, FamilyID: code, FamilyDescription: d}, nil
}

// Series assembles and validates a series record.
func Series(in SeriesInput) (*SeriesRecord, error) {
	code, err := grammar.DecodeSeries(in.Name)
	if err != nil {
		return nil, err
	}
	if in.Sheet == nil {
		return nil, errors.NewGrammarViolation("series %s has no host specs", in.Name)
	}
	if in.Capabilities == nil {
		return nil, errors.NewSchemaClosure("series %s has no capabilities", in.Name)
	}

	r := &SeriesRecord{
		Name:                 in.Name,
		FamilyID:             code.Family,
		FamilyDescription:    code.FamilyDescription(),
		Subfamilies:          mapping(code.Subfamilies(in.Confidential)),
		AddonsMapping:        mapping(code.AddonEntries()),
		AcceleratorMapping:   table.NewOrderedMap[Described](),
		Version:              code.Version(),
		IsConfidential:       in.Confidential,
		IsPreviousGeneration: in.PreviousGeneration,
		Capabilities:         in.Capabilities,
		LastUpdatedAzure:     timestamp(in.LastUpdated),
	}
	if code.Subfamily != "" {
		r.SubfamilyID = util.Ptr(code.Subfamily)
	}
	if code.Addons != "" {
		r.Addons = util.Ptr(code.Addons)
	}
	if e, ok := code.AcceleratorEntry(); ok {
		r.Accelerator = util.Ptr(e.Code)
		r.AcceleratorMapping.Set(e.Code, describe(e.Description))
	}
	if v, ok := code.IterationVersion(); ok {
		r.IterationVersion = &v
	}

	if err := r.hostSpecs(in.Sheet); err != nil {
		return nil, errors.Wrapf(err, "series %s", in.Name)
	}
	return r, nil
}

func (r *SeriesRecord) hostSpecs(sheet *table.Sheet) error {
	cpu, err := joinedRow(sheet, RowProcessor, true)
	if err != nil {
		return err
	}
	r.VCPUsMin, r.VCPUsMax = cpu.Min, cpu.Max
	r.CPUProcessorModels = cpu.Specs
	if r.CPUProcessorModels == nil {
		r.CPUProcessorModels = []string{}
	}

	mem, err := joinedRow(sheet, RowMemory, true)
	if err != nil {
		return err
	}
	r.MemoryGBMin, r.MemoryGBMax = mem.Min, mem.Max

	local, err := localStorage(sheet)
	if err != nil {
		return err
	}
	if hs, ok := local[DiskLocal]; ok {
		r.LocalStorageDisksMin, r.LocalStorageDisksMax, r.LocalStorageDisksSpecs = util.Ptr(hs.Min), hs.Max, hs.Specs
	}
	if hs, ok := local[DiskLocalTemp]; ok {
		r.LocalTempStorageDisksMin, r.LocalTempStorageDisksMax, r.LocalTempStorageDisksSpecs = util.Ptr(hs.Min), hs.Max, hs.Specs
	}
	if hs, ok := local[DiskLocalNVMe]; ok {
		r.LocalNVMeStorageMin, r.LocalNVMeStorageMax, r.LocalNVMeStorageSpecs = util.Ptr(hs.Min), hs.Max, hs.Specs
	}

	remote, err := joinedRow(sheet, RowRemoteStorage, false)
	if err != nil {
		return err
	}
	if remote != nil {
		r.RemoteStorageDisksMin, r.RemoteStorageDisksMax = util.Ptr(remote.Min), remote.Max
		r.RemoteStorageDisksSpecs = nonEmpty(remote.Specs)
	}

	network, err := joinedRow(sheet, RowNetwork, false)
	if err != nil {
		return err
	}
	if network != nil {
		r.NetworkNICsMin, r.NetworkNICsMax = util.Ptr(network.Min), network.Max
		r.NetworkingSpecs = nonEmpty(network.Specs)
	}
	return nil
}

// Variants decodes every instance name of a series.
func Variants(in SeriesInput) ([]*VariantRecord, error) {
	out := make([]*VariantRecord, 0, len(in.InstanceNames))
	for _, name := range in.InstanceNames {
		v, err := Variant(name, in.Confidential, in.LastUpdated)
		if err != nil {
			return nil, errors.Wrapf(err, "series %s", in.Name)
		}
		out = append(out, v)
	}
	return out, nil
}

// Variant decodes and validates one variant name.
func Variant(name string, confidential bool, lastUpdated time.Time) (*VariantRecord, error) {
	v, err := grammar.DecodeVariant(name)
	if err != nil {
		return nil, err
	}
	vcpus := v.VCPUs()
	if vcpus <= 0 {
		return nil, errors.NewGrammarViolation("variant %s has %d vCPUs", name, vcpus)
	}

	explain := grammar.VariantFieldExplanations
	r := &VariantRecord{
		Name:                 name,
		NameStr:              explain["name"],
		Tier:                 table.NewOrderedMap[Described](),
		TierStr:              explain["tier"],
		FamilyID:             v.Family,
		FamilyIDStr:          explain["family_id"],
		FamilyDescription:    v.FamilyDescription(),
		FamilyDescriptionStr: explain["family_description"],
		Subfamilies:          mapping(v.Subfamilies(confidential)),
		SubfamiliesStr:       explain["subfamilies"],
		VCPUs:                vcpus,
		VCPUsStr:             explain["vcpus"],
		ConstrainedVCPUsStr:  explain["constrained_vcpus"],
		Addons:               mapping(v.AddonEntries()),
		AddonsStr:            explain["addons"],
		Accelerator:          table.NewOrderedMap[Described](),
		AcceleratorStr:       explain["accelerator"],
		Version:              v.Version(),
		VersionStr:           explain["version"],
		IterationVersionStr:  explain["iversion"],
		LastUpdatedAzure:     timestamp(lastUpdated),
	}
	if tier := v.Tier(); tier != "" {
		r.Tier.Set(tier, Described{Description: v.TierDescription()})
	}
	if c, ok := v.ConstrainedVCPUs(); ok {
		if c <= 0 || c > vcpus {
			return nil, errors.NewGrammarViolation("variant %s: constrained vCPUs %d outside 1..%d", name, c, vcpus)
		}
		r.ConstrainedVCPUs = &c
	}
	if e, ok := v.AcceleratorEntry(); ok {
		r.Accelerator.Set(e.Code, describe(e.Description))
	}
	if it, ok := v.IterationVersion(); ok {
		r.IterationVersion = &it
	}
	return r, nil
}

func nonEmpty(s []string) []string {
	if len(s) == 0 {
		return nil
	}
	return s
}
