package ast

import (
	"regexp"
	"strings"
)

var multiSpace = regexp.MustCompile(`\s{2,}`)

// Stringify returns the plain text of a subtree. Raw inline markup is kept
// verbatim, hard line breaks become "\n" and soft breaks a space. Block
// children are separated by newlines. No whitespace normalization is done;
// see Text.
func Stringify(n *Node) string {
	var b strings.Builder
	stringify(&b, n)
	return b.String()
}

func stringify(b *strings.Builder, n *Node) {
	if n == nil {
		return
	}
	switch n.Kind {
	case KindText, KindRawInline:
		b.WriteString(n.Literal)
	case KindLineBreak:
		b.WriteString("\n")
	case KindSoftBreak:
		b.WriteString(" ")
	case KindLink, KindHeading, KindParagraph, KindTableCell:
		for _, c := range n.Children {
			stringify(b, c)
		}
	case KindTableRow:
		for i, c := range n.Children {
			if i > 0 {
				b.WriteString(" ")
			}
			stringify(b, c)
		}
	case KindDocument, KindBulletList, KindListItem, KindTable:
		for i, c := range n.Children {
			if i > 0 {
				b.WriteString("\n")
			}
			stringify(b, c)
		}
	case KindOther:
		b.WriteString(n.Literal)
		for i, c := range n.Children {
			if i > 0 || n.Literal != "" {
				b.WriteString("\n")
			}
			stringify(b, c)
		}
	}
}

// Clean trims s and collapses every run of two or more whitespace characters
// into a single space.
func Clean(s string) string {
	return multiSpace.ReplaceAllString(strings.TrimSpace(s), " ")
}

// Text is Clean(Stringify(n)).
func Text(n *Node) string {
	return Clean(Stringify(n))
}
