// Package capability reads the free-text feature list of a series document
// and canonicalizes it into a closed set of typed capability keys.
package capability

import (
	"regexp"
	"sort"
	"strings"

	"github.com/teranos/azsku/ast"
	"github.com/teranos/azsku/errors"
	"github.com/teranos/azsku/table"
)

// Layout identifies how a document presents its capabilities.
type Layout int

const (
	LayoutUnknown Layout = iota
	// LayoutFeatureSupport: list or paragraph right after a "feature-support" heading.
	LayoutFeatureSupport
	// LayoutLineBreakMarkup: a paragraph of "key: value" lines separated by <br>.
	LayoutLineBreakMarkup
	// LayoutGroupedInline: a paragraph whose lines are separated by raw markup or hard breaks.
	LayoutGroupedInline
	// LayoutBulletList: a bullet list found by the keyword scan, one pair per item.
	LayoutBulletList
	// LayoutSupportGroups: "Supported" / "Not Supported" paragraphs each followed by bullets.
	LayoutSupportGroups
)

func (l Layout) String() string {
	switch l {
	case LayoutFeatureSupport:
		return "feature-support"
	case LayoutLineBreakMarkup:
		return "line-break-markup"
	case LayoutGroupedInline:
		return "grouped-inline"
	case LayoutBulletList:
		return "bullet-list"
	case LayoutSupportGroups:
		return "support-groups"
	default:
		return "unknown"
	}
}

const (
	featureSupportID = "feature-support"
	lineBreakMarkup  = "<br>"
)

var (
	digits            = regexp.MustCompile(`\d`)
	capabilityHintSet = []string{"storage", "generation", "premium", "supported"}
)

// Extract locates the capability list in doc and returns its raw pairs.
// Detection order: the block after a "feature-support" heading, then the
// first block after the first heading mentioning all capability hint words,
// then "Supported"/"Not Supported" groups under a feature-support heading.
func Extract(doc *ast.Document) (*Raw, Layout, error) {
	raw, layout, err := extract(doc)
	if err != nil {
		return nil, layout, err
	}
	cleaned, err := stripKeyDigits(raw)
	if err != nil {
		return nil, layout, err
	}
	return cleaned, layout, nil
}

func extract(doc *ast.Document) (*Raw, Layout, error) {
	if h := doc.HeadingByID(featureSupportID); h != nil {
		next := h.Next()
		if next == nil {
			return nil, LayoutFeatureSupport, errors.NewGrammarViolation("nothing follows the feature support heading")
		}
		var elements []*ast.Node
		switch next.Kind {
		case ast.KindBulletList, ast.KindParagraph:
			elements = next.Children
		default:
			return nil, LayoutFeatureSupport, errors.NewGrammarViolation("feature support heading followed by %s", next.Kind)
		}
		raw, err := parseElements(elements, next.Kind == ast.KindBulletList)
		return raw, LayoutFeatureSupport, err
	}

	if block := scanForCapabilities(doc); block != nil {
		switch block.Kind {
		case ast.KindParagraph:
			return parseParagraph(block)
		case ast.KindBulletList:
			raw, err := pairs(itemLines(block.Children))
			return raw, LayoutBulletList, err
		default:
			return nil, LayoutUnknown, errors.NewGrammarViolation("capability text found in a %s", block.Kind)
		}
	}

	return supportGroups(doc)
}

func scanForCapabilities(doc *ast.Document) *ast.Node {
	var start *ast.Node
	if len(doc.Headings) > 0 {
		start = doc.Headings[0].Next()
	} else if blocks := doc.Blocks(); len(blocks) > 0 {
		start = blocks[0]
	}
	for n := start; n != nil; n = n.Next() {
		if mentionsCapabilities(strings.ToLower(ast.Text(n))) {
			return n
		}
	}
	return nil
}

func mentionsCapabilities(content string) bool {
	for _, w := range capabilityHintSet {
		if !strings.Contains(content, w) {
			return false
		}
	}
	return true
}

func parseParagraph(p *ast.Node) (*Raw, Layout, error) {
	if content, ok := lineBreakContent(p.Children, false); ok {
		raw, err := splitByLineBreakMarkup(content)
		return raw, LayoutLineBreakMarkup, err
	}
	raw, err := pairs(groupedLines(p.Children, false))
	return raw, LayoutGroupedInline, err
}

func parseElements(elements []*ast.Node, items bool) (*Raw, error) {
	if content, ok := lineBreakContent(elements, items); ok {
		return splitByLineBreakMarkup(content)
	}
	return pairs(groupedLines(elements, items))
}

// lineBreakContent joins the elements' text and reports whether it still
// contains <br> markup once trailing markup is trimmed.
func lineBreakContent(elements []*ast.Node, items bool) (string, bool) {
	var content string
	if items {
		texts := make([]string, 0, len(elements))
		for _, el := range elements {
			texts = append(texts, ast.Text(el))
		}
		content = strings.Join(texts, "\n")
	} else {
		var b strings.Builder
		for _, el := range elements {
			b.WriteString(ast.Stringify(el))
		}
		content = ast.Clean(b.String())
	}
	content = strings.TrimSpace(content)
	for strings.HasSuffix(content, lineBreakMarkup) {
		content = strings.TrimSpace(strings.TrimSuffix(content, lineBreakMarkup))
	}
	return content, strings.Contains(content, lineBreakMarkup)
}

// groupedLines splits elements into lines at whichever separator kind, raw
// markup or hard line break, occurs more often. Raw markup wins ties. A single
// group is split at soft breaks, or one line per element for list items.
func groupedLines(elements []*ast.Node, items bool) []string {
	var raws, breaks int
	for _, el := range elements {
		switch el.Kind {
		case ast.KindRawInline:
			raws++
		case ast.KindLineBreak:
			breaks++
		}
	}
	sep := ast.KindRawInline
	if breaks > raws {
		sep = ast.KindLineBreak
	}

	var groups [][]*ast.Node
	var current []*ast.Node
	for _, el := range elements {
		if el.Kind == sep {
			if len(current) > 0 {
				groups = append(groups, current)
				current = nil
			}
			continue
		}
		current = append(current, el)
	}
	if len(current) > 0 {
		groups = append(groups, current)
	}

	if len(groups) == 1 {
		if items {
			return itemLines(groups[0])
		}
		return softLines(groups[0])
	}
	lines := make([]string, 0, len(groups))
	for _, g := range groups {
		var parts []string
		for _, el := range g {
			if s := ast.Text(el); s != "" {
				parts = append(parts, s)
			}
		}
		lines = append(lines, ast.Clean(strings.Join(parts, " ")))
	}
	return lines
}

func itemLines(items []*ast.Node) []string {
	var lines []string
	for _, item := range items {
		if s := ast.Text(item); s != "" {
			lines = append(lines, s)
		}
	}
	return lines
}

func softLines(inlines []*ast.Node) []string {
	var lines []string
	var b strings.Builder
	flush := func() {
		if s := ast.Clean(b.String()); s != "" {
			lines = append(lines, s)
		}
		b.Reset()
	}
	for _, el := range inlines {
		if el.Kind == ast.KindSoftBreak {
			flush()
			continue
		}
		b.WriteString(ast.Stringify(el))
	}
	flush()
	return lines
}

func splitByLineBreakMarkup(content string) (*Raw, error) {
	var lines []string
	for _, line := range strings.Split(content, lineBreakMarkup) {
		line = strings.TrimSpace(line)
		if line == "" {
			continue
		}
		if strings.Count(line, ":") <= 1 {
			lines = append(lines, line)
			continue
		}
		split, err := splitAtKnownKeys(line)
		if err != nil {
			return nil, err
		}
		lines = append(lines, split...)
	}
	return pairs(lines)
}

// splitAtKnownKeys cuts a line holding several pairs at the first occurrence
// of every known capability key after its start.
func splitAtKnownKeys(line string) ([]string, error) {
	lowered := strings.ToLower(line)
	seen := map[int]bool{}
	var offsets []int
	for _, k := range allKeys {
		if idx := strings.Index(lowered, k); idx > 0 && !seen[idx] {
			seen[idx] = true
			offsets = append(offsets, idx)
		}
	}
	if len(offsets) == 0 {
		return nil, errors.NewGrammarViolation("cannot split capability line %q", line)
	}
	sort.Ints(offsets)

	var out []string
	prev := 0
	for _, off := range append(offsets, len(line)) {
		if seg := strings.TrimSpace(line[prev:off]); seg != "" {
			out = append(out, seg)
		}
		prev = off
	}
	return out, nil
}

func pairs(lines []string) (*Raw, error) {
	if len(lines) == 0 {
		return nil, errors.NewGrammarViolation("no capability lines found")
	}
	raw := table.NewOrderedMap[string]()
	for _, line := range lines {
		parts := strings.Split(line, ":")
		if len(parts) < 2 {
			return nil, errors.NewGrammarViolation("capability line %q has no key", line)
		}
		raw.Set(strings.TrimSpace(parts[0]), strings.TrimSpace(parts[1]))
	}
	return raw, nil
}

// supportGroups reads "Supported" / "Not Supported" paragraphs under the
// single heading whose id mentions feature support. Every bullet below a
// paragraph takes that paragraph's value; bullets are cut at their first "-".
func supportGroups(doc *ast.Document) (*Raw, Layout, error) {
	var heading *ast.Node
	for _, h := range doc.Headings {
		if strings.Contains(h.ID, featureSupportID) {
			if heading != nil {
				return nil, LayoutSupportGroups, errors.NewGrammarViolation("more than one feature support heading")
			}
			heading = h
		}
	}
	if heading == nil {
		return nil, LayoutUnknown, errors.NewSchemaClosure("no capability list found")
	}

	groups := table.NewOrderedMap[[]string]()
	var last string
	for n := heading.Next(); n != nil && n.Kind != ast.KindHeading; n = n.Next() {
		switch n.Kind {
		case ast.KindParagraph:
			last = ast.Text(n)
			if !groups.Has(last) {
				groups.Set(last, nil)
			}
		case ast.KindBulletList:
			if groups.Len() == 0 {
				return nil, LayoutSupportGroups, errors.NewGrammarViolation("feature list without a support paragraph")
			}
			entries, _ := groups.Get(last)
			groups.Set(last, append(entries, groupedLines(n.Children, true)...))
		}
	}

	raw := table.NewOrderedMap[string]()
	for _, key := range groups.Keys() {
		value := "Not Supported"
		if strings.HasPrefix(key, "Supported") {
			value = "Supported"
		}
		entries, _ := groups.Get(key)
		for _, entry := range entries {
			name := strings.TrimSpace(strings.SplitN(entry, "-", 2)[0])
			if name != "" {
				raw.Set(name, value)
			}
		}
	}
	if raw.Len() == 0 {
		return nil, LayoutSupportGroups, errors.NewSchemaClosure("feature support section lists no capabilities")
	}
	return raw, LayoutSupportGroups, nil
}

// stripKeyDigits removes digits from keys (footnote markers) except on keys
// naming a VM generation.
func stripKeyDigits(raw *Raw) (*Raw, error) {
	out := table.NewOrderedMap[string]()
	for _, key := range raw.Keys() {
		value, _ := raw.Get(key)
		cleaned := key
		if !strings.Contains(strings.ToLower(key), "generation") {
			cleaned = digits.ReplaceAllString(key, "")
		}
		if out.Has(cleaned) {
			return nil, errors.WithDetailf(
				errors.NewSchemaClosure("capability key %q appears twice", cleaned),
				"raw key: %s", key)
		}
		out.Set(cleaned, value)
	}
	return out, nil
}
