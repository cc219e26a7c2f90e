package grammar

import (
	"regexp"

	"github.com/teranos/azsku/errors"
)

var seriesPattern = regexp.MustCompile(`^(?P<fam>[A-Z])(?P<subfam>[A-Z]{0,2})(?P<addons>[a-u,w-z]*)(?P<asep>_?)(?P<accel>[a-zA-Z\d]+_)?(?P<version>v\d)?(?P<iversion>\d)?$`)

// SeriesCode is a decoded series name such as "DCasv5" or "NCads_H100_v5".
type SeriesCode struct {
	Code
}

// DecodeSeries decodes a series naming code.
func DecodeSeries(token string) (SeriesCode, error) {
	m := seriesPattern.FindStringSubmatch(token)
	if m == nil {
		return SeriesCode{}, errors.NewGrammarViolation("series code %q", token)
	}
	g := func(name string) string { return group(seriesPattern, m, name) }
	s := SeriesCode{Code: Code{
		Family:     g("fam"),
		Subfamily:  g("subfam"),
		Addons:     g("addons"),
		AddonSep:   g("asep"),
		Accel:      g("accel"),
		VersionTag: g("version"),
		Iteration:  g("iversion"),
	}}
	if err := s.validate(token); err != nil {
		return SeriesCode{}, err
	}
	return s, nil
}

// Encode reconstructs the naming code.
func (s SeriesCode) Encode() string {
	return s.encode()
}
