package ast

// FrontMatter is the metadata block at the top of a document.
type FrontMatter struct {
	Title  string
	Fields map[string]any
}

// Document is a parsed markdown file: the block tree plus flat indices of the
// nodes the extractor looks up most often, in document order.
type Document struct {
	Root *Node
	Meta FrontMatter

	Headings   []*Node
	Paragraphs []*Node
	Tables     []*Node
	Links      []*Node
}

// NewDocument builds a document from top-level blocks and computes its indices.
func NewDocument(meta FrontMatter, blocks ...*Node) *Document {
	root := (&Node{Kind: KindDocument}).Append(blocks...)
	return newDocument(meta, root)
}

func newDocument(meta FrontMatter, root *Node) *Document {
	d := &Document{Root: root, Meta: meta}
	d.index()
	return d
}

func (d *Document) index() {
	d.Headings, d.Paragraphs, d.Tables, d.Links = nil, nil, nil, nil
	d.Root.Walk(func(n *Node) bool {
		switch n.Kind {
		case KindHeading:
			d.Headings = append(d.Headings, n)
		case KindParagraph:
			d.Paragraphs = append(d.Paragraphs, n)
		case KindTable:
			d.Tables = append(d.Tables, n)
		case KindLink:
			d.Links = append(d.Links, n)
		}
		return true
	})
}

// Blocks returns the top-level blocks.
func (d *Document) Blocks() []*Node {
	return d.Root.Children
}

// HeadingByID returns the first heading with the given identifier, or nil.
func (d *Document) HeadingByID(id string) *Node {
	for _, h := range d.Headings {
		if h.ID == id {
			return h
		}
	}
	return nil
}

// Subset builds a new document sharing d's metadata from copies of the given
// blocks. The originals stay attached to d.
func (d *Document) Subset(blocks []*Node) *Document {
	clones := make([]*Node, len(blocks))
	for i, b := range blocks {
		clones[i] = b.Clone()
	}
	return NewDocument(d.Meta, clones...)
}

// String returns the plain text of the whole document.
func (d *Document) String() string {
	return Stringify(d.Root)
}
