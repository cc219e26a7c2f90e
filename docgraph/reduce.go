package docgraph

import (
	"strings"

	"github.com/teranos/azsku/ast"
)

// Reduce narrows a multi-series document to the headings about one series
// code, each with the blocks that follow it up to the next heading.
func Reduce(doc *ast.Document, code string) *ast.Document {
	code = strings.ToLower(code)
	var blocks []*ast.Node
	for _, h := range doc.Headings {
		if !strings.Contains(h.ID, code) {
			continue
		}
		if !strings.Contains(h.ID, "series") && !strings.Contains(h.ID, "memory") {
			continue
		}
		blocks = append(blocks, h)
		for n := h.Next(); n != nil && !n.Is(ast.KindHeading); n = n.Next() {
			blocks = append(blocks, n)
		}
	}
	return doc.Subset(blocks)
}
