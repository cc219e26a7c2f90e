package ast

import (
	"regexp"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/teranos/azsku/errors"
)

var footnoteLine = regexp.MustCompile(`^<sup>\d</sup>`)

const (
	appliesToPrefix = "**Applies to:** :heavy_check_mark:"
	noteMarker      = "> [!NOTE]"
	blockDelimiter  = "---"
)

// NormalizeFrontMatter drops the lines that break metadata parsing or add
// noise to extracted text: footnote lines, "Applies to" banners and NOTE
// callouts including their quoted continuation lines.
func NormalizeFrontMatter(src string) string {
	lines := strings.SplitAfter(src, "\n")
	out := make([]string, 0, len(lines))
	inNote := false
	for _, line := range lines {
		if inNote {
			if strings.HasPrefix(strings.TrimLeft(line, " \t"), ">") {
				continue
			}
			inNote = false
		}
		switch {
		case footnoteLine.MatchString(strings.TrimLeft(line, " \t")):
			continue
		case strings.HasPrefix(line, appliesToPrefix):
			continue
		case strings.TrimRight(line, " \t\r\n") == noteMarker:
			inNote = true
			continue
		}
		out = append(out, line)
	}
	return strings.Join(out, "")
}

// RepairFrontMatter keeps the first two delimiter lines and drops every later
// line starting with "---". Documents that repeat the metadata fence parse
// after this.
func RepairFrontMatter(src string) string {
	lines := strings.SplitAfter(src, "\n")
	out := make([]string, 0, len(lines))
	seen := 0
	for _, line := range lines {
		if strings.HasPrefix(line, blockDelimiter) {
			seen++
			if seen > 2 {
				continue
			}
		}
		out = append(out, line)
	}
	return strings.Join(out, "")
}

// SplitFrontMatter extracts YAML metadata blocks and returns the merged
// metadata with the remaining markdown body. A block opens with a "---" line
// followed by a non-blank line, must be preceded by a blank line unless it
// starts the file, and closes with "---" or "...". A block that does not
// parse as a YAML mapping is ErrLayout.
func SplitFrontMatter(src string) (FrontMatter, string, error) {
	lines := strings.SplitAfter(src, "\n")
	var body strings.Builder
	meta := FrontMatter{Fields: map[string]any{}}

	for i := 0; i < len(lines); i++ {
		if !opensBlock(lines, i) {
			body.WriteString(lines[i])
			continue
		}
		end := closingLine(lines, i+1)
		if end < 0 {
			body.WriteString(lines[i])
			continue
		}
		block := strings.Join(lines[i+1:end], "")
		var fields map[string]any
		if err := yaml.Unmarshal([]byte(block), &fields); err != nil {
			return FrontMatter{}, "", errors.Wrapf(errors.ErrLayout, "metadata block at line %d: %v", i+1, err)
		}
		if fields == nil {
			return FrontMatter{}, "", errors.Wrapf(errors.ErrLayout, "metadata block at line %d is not a mapping", i+1)
		}
		for k, v := range fields {
			meta.Fields[k] = v
		}
		i = end
	}

	if title, ok := meta.Fields["title"]; ok {
		if s, ok := title.(string); ok {
			meta.Title = s
		}
	}
	return meta, body.String(), nil
}

func opensBlock(lines []string, i int) bool {
	if strings.TrimRight(lines[i], " \t\r\n") != blockDelimiter {
		return false
	}
	if i+1 >= len(lines) || strings.TrimSpace(lines[i+1]) == "" {
		return false
	}
	return i == 0 || strings.TrimSpace(lines[i-1]) == ""
}

func closingLine(lines []string, from int) int {
	for j := from; j < len(lines); j++ {
		switch strings.TrimRight(lines[j], " \t\r\n") {
		case blockDelimiter, "...":
			return j
		}
	}
	return -1
}

// ParseFrontMatter normalizes src and splits off its metadata. On a layout
// ambiguity the delimiter repair is applied and the split retried once.
func ParseFrontMatter(src string) (FrontMatter, string, error) {
	normalized := NormalizeFrontMatter(src)
	meta, body, err := SplitFrontMatter(normalized)
	if err == nil {
		return meta, body, nil
	}
	if !errors.Is(err, errors.ErrLayout) {
		return FrontMatter{}, "", err
	}
	meta, body, retryErr := SplitFrontMatter(RepairFrontMatter(normalized))
	if retryErr != nil {
		return FrontMatter{}, "", errors.Wrap(retryErr, "after delimiter repair")
	}
	return meta, body, nil
}
