// Package docgraph resolves which documents of the corpus belong together:
// file classification, family association, companion documents and the
// per-series view the assembler consumes.
package docgraph

import (
	"regexp"
	"strings"
)

// Class is the file-name classification of a document.
type Class int

const (
	ClassOther Class = iota
	ClassFamily
	ClassSeries
	ClassMultiSeries
	ClassException
)

func (c Class) String() string {
	switch c {
	case ClassFamily:
		return "family"
	case ClassSeries:
		return "series"
	case ClassMultiSeries:
		return "multi-series"
	case ClassException:
		return "exception"
	default:
		return "other"
	}
}

var (
	familyPattern      = regexp.MustCompile(`^([a-z]+)-family\.[a-z]{1,3}$`)
	seriesPattern      = regexp.MustCompile(`^([a-z\d]+)-?(v\d)?-series(\.md)?$`)
	multiSeriesPattern = regexp.MustCompile(`^([a-z\d]+)-([a-z\d]+)(-[a-z]*?)?-series(\.md)?$`)
	versionPrefix      = regexp.MustCompile(`^v\d`)
)

// Files whose layout does not fit any rule. They are discovered but never
// yield a series.
var exceptionFiles = map[string]bool{
	"dv2-dsv2-series-memory.md": true,
	"nccadsh100v5-series.md":    true,
}

// Descriptor is the classification of one file name.
type Descriptor struct {
	Name        string
	Class       Class
	Identifiers []string
}

// IsSeriesLike reports whether the document describes one or more series.
func (d Descriptor) IsSeriesLike() bool {
	return d.Class == ClassSeries || d.Class == ClassMultiSeries
}

// Classify derives a descriptor from a base file name.
func Classify(filename string) Descriptor {
	d := Descriptor{Name: filename}
	if exceptionFiles[filename] {
		d.Class = ClassException
		return d
	}
	if m := seriesPattern.FindStringSubmatch(filename); m != nil {
		d.Class = ClassSeries
		d.Identifiers = []string{m[1] + m[2]}
		return d
	}
	if m := familyPattern.FindStringSubmatch(filename); m != nil {
		d.Class = ClassFamily
		d.Identifiers = []string{m[1]}
		return d
	}
	if m := multiSeriesPattern.FindStringSubmatch(filename); m != nil && !versionPrefix.MatchString(m[2]) {
		d.Class = ClassMultiSeries
		d.Identifiers = []string{m[1], m[2]}
		return d
	}
	d.Identifiers = []string{strings.TrimSuffix(filename, ".md")}
	return d
}
