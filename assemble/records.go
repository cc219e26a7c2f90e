package assemble

import (
	"github.com/teranos/azsku/capability"
	"github.com/teranos/azsku/grammar"
	"github.com/teranos/azsku/ledger"
	"github.com/teranos/azsku/table"
)

// Entity kinds as persisted.
const (
	KindFamily  = "family"
	KindSeries  = "series"
	KindVariant = "variant"
)

// Record is an assembled entity ready for change detection and storage.
type Record interface {
	EntityKind() string
	EntityName() string
	// LastUpdated is the RFC 3339 time of the last documentation change, or
	// empty when unknown.
	LastUpdated() string
	Fingerprint() (string, error)
}

// Described is the serialized form of a (short, long) description.
type Described struct {
	Description        string `json:"description"`
	VerboseDescription string `json:"verbose_description,omitempty"`
}

// Mapping is an ordered code → description object.
type Mapping = table.OrderedMap[Described]

func describe(d grammar.Description) Described {
	return Described{Description: d.Short, VerboseDescription: d.Long}
}

func mapping(entries []grammar.Entry) *Mapping {
	m := table.NewOrderedMap[Described]()
	for _, e := range entries {
		m.Set(e.Code, describe(e.Description))
	}
	return m
}

// FamilyRecord is a product family.
type FamilyRecord struct {
	Name              string `json:"name"`
	FamilyID          string `json:"family_id"`
	FamilyDescription string `json:"family_description"`
}

func (r *FamilyRecord) EntityKind() string { return KindFamily }
func (r *FamilyRecord) EntityName() string { return r.Name }
func (r *FamilyRecord) LastUpdated() string { return "" }

// Fingerprint hashes the canonical form of the record.
func (r *FamilyRecord) Fingerprint() (string, error) { return ledger.EntityFingerprint(r) }

// SeriesRecord is a product series with its host specs and capabilities.
type SeriesRecord struct {
	Name                 string   `json:"name"`
	FamilyID             string   `json:"family_id"`
	FamilyDescription    string   `json:"family_description"`
	SubfamilyID          *string  `json:"subfamily_id"`
	Subfamilies          *Mapping `json:"subfamilies"`
	Addons               *string  `json:"addons"`
	AddonsMapping        *Mapping `json:"addons_mapping"`
	Accelerator          *string  `json:"accelerator"`
	AcceleratorMapping   *Mapping `json:"accelerator_mapping"`
	Version              int      `json:"version"`
	IterationVersion     *int     `json:"iversion"`
	IsConfidential       bool     `json:"is_confidential"`
	IsPreviousGeneration bool     `json:"is_previous_generation"`

	VCPUsMin           int      `json:"vcpus_min"`
	VCPUsMax           *int     `json:"vcpus_max"`
	CPUProcessorModels []string `json:"cpu_processor_models"`
	MemoryGBMin        int      `json:"memory_gb_min"`
	MemoryGBMax        *int     `json:"memory_gb_max"`

	LocalStorageDisksMin       *int     `json:"local_storage_disks_min"`
	LocalStorageDisksMax       *int     `json:"local_storage_disks_max"`
	LocalStorageDisksSpecs     []string `json:"local_storage_disks_specs"`
	LocalTempStorageDisksMin   *int     `json:"local_temp_storage_disks_min"`
	LocalTempStorageDisksMax   *int     `json:"local_temp_storage_disks_max"`
	LocalTempStorageDisksSpecs []string `json:"local_temp_storage_disks_specs"`
	LocalNVMeStorageMin        *int     `json:"local_nvme_storage_min"`
	LocalNVMeStorageMax        *int     `json:"local_nvme_storage_max"`
	LocalNVMeStorageSpecs      []string `json:"local_nvme_storage_specs"`
	RemoteStorageDisksMin      *int     `json:"remote_storage_disks_min"`
	RemoteStorageDisksMax      *int     `json:"remote_storage_disks_max"`
	RemoteStorageDisksSpecs    []string `json:"remote_storage_disks_specs"`
	NetworkNICsMin             *int     `json:"network_nics_min"`
	NetworkNICsMax             *int     `json:"network_nics_max"`
	NetworkingSpecs            []string `json:"networking_specs"`

	Capabilities *capability.Set `json:"capabilities"`

	LastUpdatedAzure string `json:"last_updated_azure,omitempty"`
}

func (r *SeriesRecord) EntityKind() string { return KindSeries }
func (r *SeriesRecord) EntityName() string { return r.Name }
func (r *SeriesRecord) LastUpdated() string { return r.LastUpdatedAzure }

// Fingerprint hashes the canonical form of the record without its
// last-updated timestamp.
func (r *SeriesRecord) Fingerprint() (string, error) { return ledger.EntityFingerprint(r) }

// VariantRecord is one concrete VM size. Each field is followed by a
// "__str" explanation of what it means.
type VariantRecord struct {
	Name                 string   `json:"name"`
	NameStr              string   `json:"name__str"`
	Tier                 *Mapping `json:"tier"`
	TierStr              string   `json:"tier__str"`
	FamilyID             string   `json:"family_id"`
	FamilyIDStr          string   `json:"family_id__str"`
	FamilyDescription    string   `json:"family_description"`
	FamilyDescriptionStr string   `json:"family_description__str"`
	Subfamilies          *Mapping `json:"subfamilies"`
	SubfamiliesStr       string   `json:"subfamilies__str"`
	VCPUs                int      `json:"vcpus"`
	VCPUsStr             string   `json:"vcpus__str"`
	ConstrainedVCPUs     *int     `json:"constrained_vcpus"`
	ConstrainedVCPUsStr  string   `json:"constrained_vcpus__str"`
	Addons               *Mapping `json:"addons"`
	AddonsStr            string   `json:"addons__str"`
	Accelerator          *Mapping `json:"accelerator"`
	AcceleratorStr       string   `json:"accelerator__str"`
	Version              int      `json:"version"`
	VersionStr           string   `json:"version__str"`
	IterationVersion     *int     `json:"iversion"`
	IterationVersionStr  string   `json:"iversion__str"`
	LastUpdatedAzure     string   `json:"last_updated_azure,omitempty"`
}

func (r *VariantRecord) EntityKind() string { return KindVariant }
func (r *VariantRecord) EntityName() string { return r.Name }
func (r *VariantRecord) LastUpdated() string { return r.LastUpdatedAzure }

// Fingerprint hashes the canonical form of the record without its
// last-updated timestamp.
func (r *VariantRecord) Fingerprint() (string, error) { return ledger.EntityFingerprint(r) }
