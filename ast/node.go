// Package ast is the syntax tree the extraction core reads.
//
// Nodes form a tagged union discriminated by Kind. Only the constructs the
// extractor reasons about get their own kind; everything else is KindOther
// and still contributes text through Stringify.
package ast

import "fmt"

// Kind discriminates Node variants.
type Kind int

const (
	KindDocument Kind = iota
	KindHeading
	KindParagraph
	KindBulletList
	KindListItem
	KindTable
	KindTableRow
	KindTableCell
	KindLink
	KindRawInline
	KindLineBreak
	KindSoftBreak
	KindText
	KindOther
)

var kindNames = [...]string{
	KindDocument:   "document",
	KindHeading:    "heading",
	KindParagraph:  "paragraph",
	KindBulletList: "bullet-list",
	KindListItem:   "list-item",
	KindTable:      "table",
	KindTableRow:   "table-row",
	KindTableCell:  "table-cell",
	KindLink:       "link",
	KindRawInline:  "raw-inline",
	KindLineBreak:  "line-break",
	KindSoftBreak:  "soft-break",
	KindText:       "text",
	KindOther:      "other",
}

func (k Kind) String() string {
	if k < 0 || int(k) >= len(kindNames) {
		return fmt.Sprintf("kind(%d)", int(k))
	}
	return kindNames[k]
}

// IsInline reports whether nodes of this kind appear inside paragraphs,
// headings and table cells.
func (k Kind) IsInline() bool {
	switch k {
	case KindLink, KindRawInline, KindLineBreak, KindSoftBreak, KindText:
		return true
	default:
		return false
	}
}

// Node is one element of the tree. Which fields are meaningful depends on Kind:
//
//	KindHeading   Level, ID, inline Children
//	KindLink      Destination, inline Children
//	KindText      Literal
//	KindRawInline Literal (markup such as "<br>")
//	KindTableRow  Header marks the head row; Children are cells
//	KindOther     Literal for code and HTML blocks, Children otherwise
type Node struct {
	Kind        Kind
	Level       int
	ID          string
	Literal     string
	Destination string
	Header      bool
	Children    []*Node

	parent *Node
	index  int
}

// Append adds children to n and links them for sibling navigation.
func (n *Node) Append(children ...*Node) *Node {
	for _, c := range children {
		c.parent = n
		c.index = len(n.Children)
		n.Children = append(n.Children, c)
	}
	return n
}

// Parent returns the enclosing node, or nil for a root.
func (n *Node) Parent() *Node {
	return n.parent
}

// Next returns the following sibling, or nil.
func (n *Node) Next() *Node {
	if n.parent == nil || n.index+1 >= len(n.parent.Children) {
		return nil
	}
	return n.parent.Children[n.index+1]
}

// Prev returns the preceding sibling, or nil.
func (n *Node) Prev() *Node {
	if n.parent == nil || n.index == 0 {
		return nil
	}
	return n.parent.Children[n.index-1]
}

// Walk visits n and its descendants in document order. Returning false from
// fn skips the visited node's children.
func (n *Node) Walk(fn func(*Node) bool) {
	if !fn(n) {
		return
	}
	for _, c := range n.Children {
		c.Walk(fn)
	}
}

// Clone returns a deep copy of n detached from any parent.
func (n *Node) Clone() *Node {
	c := &Node{
		Kind:        n.Kind,
		Level:       n.Level,
		ID:          n.ID,
		Literal:     n.Literal,
		Destination: n.Destination,
		Header:      n.Header,
	}
	for _, child := range n.Children {
		c.Append(child.Clone())
	}
	return c
}

// Is reports whether n is non-nil and of kind k.
func (n *Node) Is(k Kind) bool {
	return n != nil && n.Kind == k
}

// Constructors. The goldmark adapter and tests build trees through these.

func NewText(s string) *Node { return &Node{Kind: KindText, Literal: s} }

func NewRawInline(s string) *Node { return &Node{Kind: KindRawInline, Literal: s} }

func NewLineBreak() *Node { return &Node{Kind: KindLineBreak} }

func NewSoftBreak() *Node { return &Node{Kind: KindSoftBreak} }

func NewLink(destination string, inlines ...*Node) *Node {
	return (&Node{Kind: KindLink, Destination: destination}).Append(inlines...)
}

func NewHeading(level int, id string, inlines ...*Node) *Node {
	return (&Node{Kind: KindHeading, Level: level, ID: id}).Append(inlines...)
}

func NewParagraph(inlines ...*Node) *Node {
	return (&Node{Kind: KindParagraph}).Append(inlines...)
}

func NewBulletList(items ...*Node) *Node {
	return (&Node{Kind: KindBulletList}).Append(items...)
}

func NewListItem(blocks ...*Node) *Node {
	return (&Node{Kind: KindListItem}).Append(blocks...)
}

func NewTableCell(inlines ...*Node) *Node {
	return (&Node{Kind: KindTableCell}).Append(inlines...)
}

func NewTableRow(header bool, cells ...*Node) *Node {
	return (&Node{Kind: KindTableRow, Header: header}).Append(cells...)
}

// NewTable builds a table from a head row followed by body rows.
func NewTable(head *Node, rows ...*Node) *Node {
	head.Header = true
	t := (&Node{Kind: KindTable}).Append(head)
	return t.Append(rows...)
}

func NewOther(literal string, children ...*Node) *Node {
	return (&Node{Kind: KindOther, Literal: literal}).Append(children...)
}

// HeadRow returns the header row of a table node, or nil.
func (n *Node) HeadRow() *Node {
	for _, row := range n.Children {
		if row.Kind == KindTableRow && row.Header {
			return row
		}
	}
	return nil
}

// BodyRows returns the non-header rows of a table node.
func (n *Node) BodyRows() []*Node {
	var rows []*Node
	for _, row := range n.Children {
		if row.Kind == KindTableRow && !row.Header {
			rows = append(rows, row)
		}
	}
	return rows
}
