package docgraph

import (
	"path"
	"sort"
	"strings"

	"github.com/teranos/azsku/ast"
	"github.com/teranos/azsku/errors"
)

const familyAnchor = "series-in-family"

// Family is a parsed family page: its sections and the series it lists as
// current members.
type Family struct {
	Handle     Handle
	Identifier string
	Name       string
	Tree       *ast.Document
	Sections   []*ast.Node
	Children   []Descriptor
}

// LoadFamily reads the sections and child links of a family page.
func LoadFamily(doc *Document, tree *ast.Document) (*Family, error) {
	if doc.Descriptor.Class != ClassFamily || len(doc.Descriptor.Identifiers) != 1 {
		return nil, errors.NewGrammarViolation("%s is not a family document", doc.Path)
	}
	f := &Family{
		Handle:     doc.Handle,
		Identifier: doc.Descriptor.Identifiers[0],
		Name:       strings.ToUpper(doc.Descriptor.Identifiers[0]),
		Tree:       tree,
	}

	anchor := -1
	for i, h := range tree.Headings {
		if h.ID != familyAnchor {
			continue
		}
		if anchor >= 0 {
			return nil, errors.NewGrammarViolation("%s has more than one %q heading", doc.Path, familyAnchor)
		}
		anchor = i
	}
	if anchor < 0 {
		return nil, errors.NewGrammarViolation("%s has no %q heading", doc.Path, familyAnchor)
	}

	for _, h := range tree.Headings[anchor+1:] {
		if !strings.Contains(h.ID, "series") || strings.Contains(h.ID, "previous-gen") {
			continue
		}
		if next := h.Next(); next == nil || next.Is(ast.KindHeading) {
			continue
		}
		f.Sections = append(f.Sections, h)
	}

	for _, s := range f.Sections {
		child, err := sectionChild(s)
		if err != nil {
			return nil, errors.Wrapf(err, "family %s", f.Name)
		}
		f.Children = append(f.Children, child)
	}
	return f, nil
}

func sectionChild(section *ast.Node) (Descriptor, error) {
	block := section.Next().Next()
	if block == nil || len(block.Children) == 0 || !block.Children[0].Is(ast.KindLink) {
		return Descriptor{}, errors.NewGrammarViolation("section %q has no series link", section.ID)
	}
	dest := block.Children[0].Destination
	if i := strings.IndexAny(dest, "#?"); i >= 0 {
		dest = dest[:i]
	}
	return Classify(path.Base(dest)), nil
}

// ChildIdentifiers returns the identifiers of all listed series.
func (f *Family) ChildIdentifiers() []string {
	var ids []string
	for _, c := range f.Children {
		ids = append(ids, c.Identifiers...)
	}
	return ids
}

// HasChild reports whether a series identifier is listed on the family page.
func (f *Family) HasChild(identifier string) bool {
	for _, id := range f.ChildIdentifiers() {
		if id == identifier {
			return true
		}
	}
	return false
}

// ResolveFamily picks the family whose code is the longest prefix of the
// series identifier.
func ResolveFamily(identifier string, families []*Document) (*Document, error) {
	candidates := append([]*Document(nil), families...)
	sort.SliceStable(candidates, func(i, j int) bool {
		return len(path.Base(candidates[i].Path)) > len(path.Base(candidates[j].Path))
	})
	for _, f := range candidates {
		if len(f.Descriptor.Identifiers) == 0 {
			continue
		}
		if strings.HasPrefix(identifier, f.Descriptor.Identifiers[0]) {
			return f, nil
		}
	}
	return nil, errors.NewResolutionError("no family for series %q", identifier)
}
