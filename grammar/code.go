// Package grammar decodes and encodes the structured naming codes of VM
// series (e.g. "DCasv5") and variants (e.g. "Standard_E16-8s_v5").
package grammar

import (
	"regexp"
	"strconv"
	"strings"

	"github.com/teranos/azsku/errors"
)

var embeddedVersion = regexp.MustCompile(`^(.+?)(v\d)$`)

// Code holds the captures shared by series and variant codes. Raw captures
// are kept as written so that Encode reproduces the input token.
type Code struct {
	Family     string
	Subfamily  string
	Addons     string
	AddonSep   string
	Accel      string // as written, including the trailing "_"
	VersionTag string // "v5"; empty when the code carries no version
	Iteration  string
}

func (c Code) encode() string {
	return c.Family + c.Subfamily + c.Addons + c.AddonSep + c.Accel + c.VersionTag + c.Iteration
}

// validate rejects letters outside the enumerations.
func (c Code) validate(token string) error {
	if _, ok := families[c.Family]; !ok {
		return errors.NewGrammarViolation("unknown family %q in %q", c.Family, token)
	}
	for _, s := range c.SubfamilyCodes() {
		if _, ok := subfamilies[s]; !ok {
			return errors.NewGrammarViolation("unknown subfamily %q in %q", s, token)
		}
	}
	for _, a := range c.AddonCodes() {
		if _, ok := addons[a]; !ok {
			return errors.NewGrammarViolation("unknown addon %q in %q", a, token)
		}
	}
	return nil
}

// SubfamilyCodes returns the subfamily letters in order.
func (c Code) SubfamilyCodes() []string {
	return letters(c.Subfamily)
}

// AddonCodes returns the addon letters in order.
func (c Code) AddonCodes() []string {
	return letters(c.Addons)
}

// Accelerator returns the accelerator token without its trailing "_". A
// version suffix embedded in the token is removed when the code has no
// explicit version; see Version.
func (c Code) Accelerator() string {
	accel := strings.TrimSuffix(c.Accel, "_")
	if c.VersionTag == "" {
		if m := embeddedVersion.FindStringSubmatch(accel); m != nil {
			return m[1]
		}
	}
	return accel
}

func (c Code) versionTag() string {
	if c.VersionTag != "" {
		return c.VersionTag
	}
	if m := embeddedVersion.FindStringSubmatch(strings.TrimSuffix(c.Accel, "_")); m != nil {
		return m[2]
	}
	return ""
}

// Version returns the mainline version, 1 when the code carries none.
func (c Code) Version() int {
	tag := c.versionTag()
	if tag == "" {
		return 1
	}
	v, _ := strconv.Atoi(tag[1:])
	return v
}

// IterationVersion returns the trailing iteration digit, if present.
func (c Code) IterationVersion() (int, bool) {
	if c.Iteration == "" {
		return 0, false
	}
	v, _ := strconv.Atoi(c.Iteration)
	return v, true
}

// FamilyDescription returns the description of the code's family.
func (c Code) FamilyDescription() string {
	return families[c.Family]
}

// Subfamilies returns the described subfamilies in order.
func (c Code) Subfamilies(confidential bool) []Entry {
	var out []Entry
	for _, s := range c.SubfamilyCodes() {
		d, _ := SubfamilyDescription(s, confidential)
		out = append(out, Entry{Code: s, Description: Description{Short: d}})
	}
	return out
}

// AddonEntries returns the described addons in order.
func (c Code) AddonEntries() []Entry {
	var out []Entry
	for _, a := range c.AddonCodes() {
		out = append(out, Entry{Code: a, Description: addons[a]})
	}
	return out
}

// AcceleratorEntry returns the described accelerator, if the code has one.
func (c Code) AcceleratorEntry() (Entry, bool) {
	accel := c.Accelerator()
	if accel == "" {
		return Entry{}, false
	}
	return Entry{Code: accel, Description: AcceleratorDescription(accel)}, true
}

func letters(s string) []string {
	if s == "" {
		return nil
	}
	out := make([]string, 0, len(s))
	for _, r := range s {
		out = append(out, string(r))
	}
	return out
}

func lower(s string) string {
	return strings.ToLower(s)
}

func group(re *regexp.Regexp, m []string, name string) string {
	return m[re.SubexpIndex(name)]
}
