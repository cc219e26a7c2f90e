package ast

import (
	"bytes"

	"github.com/yuin/goldmark"
	gast "github.com/yuin/goldmark/ast"
	"github.com/yuin/goldmark/extension"
	east "github.com/yuin/goldmark/extension/ast"
	"github.com/yuin/goldmark/parser"
	"github.com/yuin/goldmark/text"

	"github.com/teranos/azsku/errors"
)

var markdown = goldmark.New(
	goldmark.WithExtensions(extension.Table),
	goldmark.WithParserOptions(
		parser.WithAutoHeadingID(),
		parser.WithAttribute(),
	),
)

// Parse converts markdown source into a Document. Front matter is normalized
// and parsed first; see ParseFrontMatter.
func Parse(src []byte) (*Document, error) {
	meta, body, err := ParseFrontMatter(string(src))
	if err != nil {
		return nil, err
	}
	return ParseBody(meta, []byte(body))
}

// ParseBody converts markdown without front matter into a Document carrying meta.
func ParseBody(meta FrontMatter, body []byte) (*Document, error) {
	root := markdown.Parser().Parse(text.NewReader(body))
	if root == nil {
		return nil, errors.New("markdown parser returned no document")
	}
	c := converter{src: body}
	doc := &Node{Kind: KindDocument}
	for child := root.FirstChild(); child != nil; child = child.NextSibling() {
		doc.Append(c.block(child))
	}
	return newDocument(meta, doc), nil
}

type converter struct {
	src []byte
}

func (c converter) block(n gast.Node) *Node {
	switch v := n.(type) {
	case *gast.Heading:
		h := &Node{Kind: KindHeading, Level: v.Level}
		if id, ok := v.AttributeString("id"); ok {
			if b, ok := id.([]byte); ok {
				h.ID = string(b)
			}
		}
		return h.Append(c.inlines(v)...)
	case *gast.Paragraph, *gast.TextBlock:
		return NewParagraph(c.inlines(v)...)
	case *gast.List:
		if v.IsOrdered() {
			return c.other(v)
		}
		list := &Node{Kind: KindBulletList}
		for item := v.FirstChild(); item != nil; item = item.NextSibling() {
			list.Append(c.block(item))
		}
		return list
	case *gast.ListItem:
		item := &Node{Kind: KindListItem}
		for child := v.FirstChild(); child != nil; child = child.NextSibling() {
			item.Append(c.block(child))
		}
		return item
	case *east.Table:
		table := &Node{Kind: KindTable}
		for row := v.FirstChild(); row != nil; row = row.NextSibling() {
			table.Append(c.row(row))
		}
		return table
	case *gast.FencedCodeBlock, *gast.CodeBlock, *gast.HTMLBlock:
		return NewOther(c.lines(n))
	default:
		return c.other(n)
	}
}

func (c converter) other(n gast.Node) *Node {
	o := &Node{Kind: KindOther}
	for child := n.FirstChild(); child != nil; child = child.NextSibling() {
		if child.Type() == gast.TypeBlock {
			o.Append(c.block(child))
		} else {
			o.Append(c.inlines(n)...)
			break
		}
	}
	return o
}

func (c converter) row(n gast.Node) *Node {
	row := &Node{Kind: KindTableRow}
	if _, ok := n.(*east.TableHeader); ok {
		row.Header = true
	}
	for cell := n.FirstChild(); cell != nil; cell = cell.NextSibling() {
		row.Append(NewTableCell(c.inlines(cell)...))
	}
	return row
}

func (c converter) lines(n gast.Node) string {
	var b bytes.Buffer
	lines := n.Lines()
	for i := 0; i < lines.Len(); i++ {
		seg := lines.At(i)
		b.Write(seg.Value(c.src))
	}
	return string(bytes.TrimRight(b.Bytes(), "\n"))
}

// inlines converts the inline children of n. Adjacent text runs are merged
// so that a word split by the parser (entities, emphasis) reads as one token.
func (c converter) inlines(n gast.Node) []*Node {
	var out []*Node
	emit := func(node *Node) {
		if node.Kind == KindText && len(out) > 0 && out[len(out)-1].Kind == KindText {
			out[len(out)-1].Literal += node.Literal
			return
		}
		out = append(out, node)
	}
	for child := n.FirstChild(); child != nil; child = child.NextSibling() {
		for _, node := range c.inline(child) {
			emit(node)
		}
	}
	return out
}

func (c converter) inline(n gast.Node) []*Node {
	switch v := n.(type) {
	case *gast.Text:
		nodes := []*Node{NewText(string(v.Segment.Value(c.src)))}
		switch {
		case v.HardLineBreak():
			nodes = append(nodes, NewLineBreak())
		case v.SoftLineBreak():
			nodes = append(nodes, NewSoftBreak())
		}
		return nodes
	case *gast.String:
		return []*Node{NewText(string(v.Value))}
	case *gast.RawHTML:
		var b bytes.Buffer
		for i := 0; i < v.Segments.Len(); i++ {
			seg := v.Segments.At(i)
			b.Write(seg.Value(c.src))
		}
		return []*Node{NewRawInline(b.String())}
	case *gast.Link:
		return []*Node{NewLink(string(v.Destination), c.inlines(v)...)}
	case *gast.AutoLink:
		return []*Node{NewLink(string(v.URL(c.src)), NewText(string(v.Label(c.src))))}
	case *gast.Emphasis, *gast.CodeSpan, *gast.Image:
		var b bytes.Buffer
		for _, node := range c.inlines(v) {
			b.WriteString(Stringify(node))
		}
		return []*Node{NewText(b.String())}
	default:
		return c.inlines(n)
	}
}
