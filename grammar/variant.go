package grammar

import (
	"regexp"
	"strconv"
	"strings"

	"github.com/teranos/azsku/errors"
)

var variantPattern = regexp.MustCompile(`^(?P<tier>[sS]tandard|[bB]asic)?(?P<tsep>_?)(?P<fam>[A-Z])(?P<subfam>[A-Z]{0,2})(?P<vcpus>\d+)(?P<constr>-\d+)?(?P<addons>[a-z]*)(?P<asep>_?)(?P<accel>[a-zA-Z\d]+_)?(?P<version>v\d)?(?P<iversion>\d)?$`)

// Variant is a decoded VM size name such as "Standard_E16-8s_v5".
type Variant struct {
	Code
	TierName    string // as written; empty when absent
	TierSep     string
	VCPUsText   string
	Constrained string // as written, including the leading "-"
}

// DecodeVariant decodes a variant naming code.
func DecodeVariant(token string) (Variant, error) {
	m := variantPattern.FindStringSubmatch(token)
	if m == nil {
		return Variant{}, errors.NewGrammarViolation("variant code %q", token)
	}
	g := func(name string) string { return group(variantPattern, m, name) }
	v := Variant{
		Code: Code{
			Family:     g("fam"),
			Subfamily:  g("subfam"),
			Addons:     g("addons"),
			AddonSep:   g("asep"),
			Accel:      g("accel"),
			VersionTag: g("version"),
			Iteration:  g("iversion"),
		},
		TierName:    g("tier"),
		TierSep:     g("tsep"),
		VCPUsText:   g("vcpus"),
		Constrained: g("constr"),
	}
	if err := v.validate(token); err != nil {
		return Variant{}, err
	}
	if _, err := strconv.Atoi(v.VCPUsText); err != nil {
		return Variant{}, errors.NewGrammarViolation("vcpu count %q in %q", v.VCPUsText, token)
	}
	return v, nil
}

// Encode reconstructs the naming code.
func (v Variant) Encode() string {
	return v.TierName + v.TierSep + v.Family + v.Subfamily + v.VCPUsText + v.Constrained +
		v.Addons + v.AddonSep + v.Accel + v.VersionTag + v.Iteration
}

// Tier returns the tier capitalized ("Standard", "Basic"), or empty.
func (v Variant) Tier() string {
	if v.TierName == "" {
		return ""
	}
	return strings.ToUpper(v.TierName[:1]) + lower(v.TierName[1:])
}

// TierDescription returns the description of the variant's tier.
func (v Variant) TierDescription() string {
	d, _ := TierDescription(v.TierName)
	return d
}

// VCPUs returns the vCPU count.
func (v Variant) VCPUs() int {
	n, _ := strconv.Atoi(v.VCPUsText)
	return n
}

// ConstrainedVCPUs returns the constrained core count, if present.
func (v Variant) ConstrainedVCPUs() (int, bool) {
	if v.Constrained == "" {
		return 0, false
	}
	n, err := strconv.Atoi(strings.TrimPrefix(v.Constrained, "-"))
	return n, err == nil
}
