package capability

import (
	"regexp"
	"strconv"
	"strings"

	"github.com/teranos/azsku/ast"
	"github.com/teranos/azsku/errors"
	"github.com/teranos/azsku/table"
)

// Canonical capability keys.
const (
	KeyTrustedLaunch           = "cap_trusted_launch_capable"
	KeyPremiumStorage          = "cap_premium_storage_capable"
	KeyPremiumStorageCache     = "cap_premium_storage_cache_capable"
	KeyLiveMigration           = "cap_live_migration_capable"
	KeyMemoryPreservingUpdates = "cap_memory_preserving_updates_capable"
	KeyAcceleratedNetworking   = "cap_accelerated_networking_capable"
	KeyEphemeralDisk           = "cap_ephemeral_disk_capable"
	KeyNestedVirtualization    = "cap_nested_virtualization_capable"
	KeyHyperVGen1              = "cap_hyper_v_gen1_capable"
	KeyHyperVGen2              = "cap_hyper_v_gen2_capable"
	KeyWriteAccelerator        = "cap_write_accelerator_capable"
	KeyACUsMin                 = "cap_acus_min"
	KeyACUsMax                 = "cap_acus_max"
	KeySCSIGenerations         = "cap_scsi_interface_capable_vm_generations"
	KeyNVMeGenerations         = "cap_nvme_interface_capable_vm_generations"
	KeyConfidentialCompute     = "cap_confidential_compute_capable"
)

var boolKeys = map[string]string{
	"trusted launch":            KeyTrustedLaunch,
	"premium storage":           KeyPremiumStorage,
	"premium storage caching":   KeyPremiumStorageCache,
	"live migration":            KeyLiveMigration,
	"memory preserving updates": KeyMemoryPreservingUpdates,
	"accelerated networking":    KeyAcceleratedNetworking,
	"ephemeral os disk":         KeyEphemeralDisk,
	"ephemeral os disks":        KeyEphemeralDisk,
	"nested virtualization":     KeyNestedVirtualization,
	"generation 1 vms":          KeyHyperVGen1,
	"vm generation 1":           KeyHyperVGen1,
	"generation 2 vms":          KeyHyperVGen2,
	"vm generation 2":           KeyHyperVGen2,
	"write accelerator":         KeyWriteAccelerator,
}

// RequiredKeys must be present (after key cleaning) in every capability list.
var RequiredKeys = []string{
	"premium storage",
	"premium storage caching",
	"live migration",
	"memory preserving updates",
	"accelerated networking",
	"nested virtualization",
}

const (
	keyACU                 = "acu"
	keyACUs                = "acus"
	keyVMGenerationSupport = "vm generation support"
	keyNVMeInterface       = "nvme interface"
	keySCSIInterface       = "scsi interface"
)

// allKeys lists every recognized raw key, used to split run-together lines.
var allKeys = func() []string {
	keys := make([]string, 0, len(boolKeys)+5)
	for k := range boolKeys {
		keys = append(keys, k)
	}
	keys = append(keys, keyACU, keyACUs, keyVMGenerationSupport, keyNVMeInterface, keySCSIInterface)
	return keys
}()

// Exact value matches are tried before prefix matches, in this order.
var boolValues = []struct {
	text  string
	value bool
}{
	{"not supported", false},
	{"supported", true},
	{"restricted support", true},
}

var footnote = regexp.MustCompile(`<sup>\d?</sup>`)

// CleanKey lowercases a raw key and removes footnote markers.
func CleanKey(key string) string {
	return strings.TrimSpace(footnote.ReplaceAllString(strings.ToLower(key), ""))
}

// Canonicalize maps raw pairs onto the canonical key set. Required keys must
// be present and every raw key must be consumed. Boolean capabilities come
// first, then ranges and enumerations, then the confidential compute flag.
func Canonicalize(raw *Raw, confidential bool) (*Set, error) {
	cleaned := table.NewOrderedMap[string]()
	for _, k := range raw.Keys() {
		v, _ := raw.Get(k)
		key := CleanKey(k)
		if cleaned.Has(key) {
			return nil, errors.NewSchemaClosure("capability key %q appears twice", key)
		}
		cleaned.Set(key, v)
	}

	var missing []string
	for _, k := range RequiredKeys {
		if !cleaned.Has(k) {
			missing = append(missing, k)
		}
	}
	if len(missing) > 0 {
		return nil, errors.WithDetailf(
			errors.NewSchemaClosure("missing required capabilities"),
			"missing: %s", strings.Join(missing, ", "))
	}

	result := table.NewOrderedMap[Value]()
	consumed := map[string]bool{}

	for _, k := range cleaned.Keys() {
		canonical, ok := boolKeys[k]
		if !ok {
			continue
		}
		v, _ := cleaned.Get(k)
		b, err := toBool(k, v)
		if err != nil {
			return nil, err
		}
		result.Set(canonical, Bool(b))
		consumed[k] = true
	}

	for _, k := range cleaned.Keys() {
		if consumed[k] {
			continue
		}
		v, _ := cleaned.Get(k)
		switch k {
		case keyACU, keyACUs:
			lo, hi, err := acus(v)
			if err != nil {
				return nil, err
			}
			result.Set(KeyACUsMin, Int(lo))
			result.Set(KeyACUsMax, Int(hi))
		case keyVMGenerationSupport:
			result.Set(KeyHyperVGen1, Bool(strings.Contains(v, "1")))
			result.Set(KeyHyperVGen2, Bool(strings.Contains(v, "2")))
		case keyNVMeInterface:
			result.Set(KeyNVMeGenerations, String(generations(v)))
		case keySCSIInterface:
			result.Set(KeySCSIGenerations, String(generations(v)))
		default:
			continue
		}
		consumed[k] = true
	}

	var leftover []string
	for _, k := range cleaned.Keys() {
		if !consumed[k] {
			leftover = append(leftover, k)
		}
	}
	if len(leftover) > 0 {
		return nil, errors.WithDetailf(
			errors.NewSchemaClosure("unrecognized capabilities"),
			"keys: %s", strings.Join(leftover, ", "))
	}

	result.Set(KeyConfidentialCompute, Bool(confidential))
	return result, nil
}

func toBool(key, value string) (bool, error) {
	v := strings.ToLower(strings.TrimSpace(value))
	for _, bv := range boolValues {
		if v == bv.text {
			return bv.value, nil
		}
	}
	for _, bv := range boolValues {
		if strings.HasPrefix(v, bv.text) {
			return bv.value, nil
		}
	}
	return false, errors.NewGrammarViolation("capability %q has unrecognized value %q", key, value)
}

func acus(value string) (int, int, error) {
	parts := strings.Split(footnote.ReplaceAllString(value, ""), "-")
	nums := make([]int, 0, 2)
	for _, p := range parts {
		n, err := strconv.Atoi(strings.TrimSpace(p))
		if err != nil {
			return 0, 0, errors.NewGrammarViolation("ACU value %q", value)
		}
		nums = append(nums, n)
	}
	switch len(nums) {
	case 1:
		return nums[0], nums[0], nil
	case 2:
		if nums[0] > nums[1] {
			return 0, 0, errors.NewGrammarViolation("ACU range %q is inverted", value)
		}
		return nums[0], nums[1], nil
	default:
		return 0, 0, errors.NewGrammarViolation("ACU value %q", value)
	}
}

func generations(value string) string {
	v := strings.ToLower(value)
	if !strings.Contains(v, "generation") {
		return ""
	}
	var gens []string
	if strings.Contains(v, "1") {
		gens = append(gens, "V1")
	}
	if strings.Contains(v, "2") {
		gens = append(gens, "V2")
	}
	return strings.Join(gens, ",")
}

// Parse extracts and canonicalizes the capabilities of a series document.
func Parse(doc *ast.Document, confidential bool) (*Set, Layout, error) {
	raw, layout, err := Extract(doc)
	if err != nil {
		return nil, layout, err
	}
	set, err := Canonicalize(raw, confidential)
	if err != nil {
		return nil, layout, errors.Wrapf(err, "%s layout", layout)
	}
	return set, layout, nil
}
