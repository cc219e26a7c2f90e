// Package table turns syntax-tree tables into header/row token structures.
package table

import (
	"regexp"
	"strings"

	"github.com/teranos/azsku/ast"
	"github.com/teranos/azsku/errors"
)

var (
	headerCut   = regexp.MustCompile(`\s{2,}|\\n|<[a-z]+>`)
	cellSplit   = regexp.MustCompile(`\s{2,}|\\n|<[a-z]+>|\n`)
	footnoteTok = regexp.MustCompile(`^[\d,]+</sup>$`)
)

// Row keys of a host specification sheet.
var hostSpecKeys = []string{"Processor", "Memory", "Local Storage", "Remote Storage", "Network"}

// Tokens are the cleaned pieces of one cell.
type Tokens = []string

// Option configures Parse.
type Option func(*options)

type options struct {
	normalizeHeader func(string) string
}

// WithHeaderNormalizer applies fn to every header cell after cutting.
func WithHeaderNormalizer(fn func(string) string) Option {
	return func(o *options) {
		o.normalizeHeader = fn
	}
}

// Parse reads a table node into its header labels and body rows. Every row
// must have as many cells as the header.
func Parse(table *ast.Node, opts ...Option) ([]string, [][]Tokens, error) {
	if !table.Is(ast.KindTable) {
		return nil, nil, errors.NewGrammarViolation("expected table, got %s", kindOf(table))
	}
	o := options{}
	for _, opt := range opts {
		opt(&o)
	}

	head := table.HeadRow()
	if head == nil {
		return nil, nil, errors.NewGrammarViolation("table has no header row")
	}
	header := make([]string, 0, len(head.Children))
	for _, cell := range head.Children {
		label := strings.TrimSpace(headerCut.Split(ast.Stringify(cell), 2)[0])
		if o.normalizeHeader != nil {
			label = o.normalizeHeader(label)
		}
		header = append(header, label)
	}

	var rows [][]Tokens
	for i, row := range table.BodyRows() {
		if len(row.Children) != len(header) {
			return nil, nil, errors.NewGrammarViolation("row %d has %d fields, header has %d", i, len(row.Children), len(header))
		}
		cells := make([]Tokens, 0, len(row.Children))
		for _, cell := range row.Children {
			cells = append(cells, SplitCell(ast.Stringify(cell)))
		}
		rows = append(rows, cells)
	}
	return header, rows, nil
}

// SplitCell splits raw cell text into cleaned tokens, dropping empty and
// footnote-marker tokens.
func SplitCell(raw string) Tokens {
	tokens := Tokens{}
	for _, piece := range cellSplit.Split(raw, -1) {
		tok := ast.Clean(piece)
		if tok == "" || footnoteTok.MatchString(tok) {
			continue
		}
		tokens = append(tokens, tok)
	}
	return tokens
}

// ByRows returns one field map per body row.
func ByRows(table *ast.Node, opts ...Option) ([]*Fields, error) {
	header, rows, err := Parse(table, opts...)
	if err != nil {
		return nil, err
	}
	out := make([]*Fields, 0, len(rows))
	for _, row := range rows {
		f := NewOrderedMap[[]string]()
		for i, h := range header {
			f.Set(h, row[i])
		}
		out = append(out, f)
	}
	return out, nil
}

// ByColumns maps each header to its column's token lists.
func ByColumns(table *ast.Node, opts ...Option) (*OrderedMap[[]Tokens], error) {
	header, rows, err := Parse(table, opts...)
	if err != nil {
		return nil, err
	}
	out := NewOrderedMap[[]Tokens]()
	for i, h := range header {
		col := make([]Tokens, 0, len(rows))
		for _, row := range rows {
			col = append(col, row[i])
		}
		out.Set(h, col)
	}
	return out, nil
}

// SpecSheet reads a table with both column and row headers: the first token
// of each row's first cell keys the remaining cells under header[1:].
func SpecSheet(table *ast.Node, opts ...Option) (*Sheet, error) {
	header, rows, err := Parse(table, opts...)
	if err != nil {
		return nil, err
	}
	if len(header) == 0 {
		return nil, errors.NewGrammarViolation("spec table has no columns")
	}
	sheet := NewOrderedMap[*Fields]()
	for i, row := range rows {
		if len(row[0]) == 0 {
			return nil, errors.NewGrammarViolation("spec table row %d has no key", i)
		}
		f := NewOrderedMap[[]string]()
		for j, h := range header[1:] {
			f.Set(h, row[j+1])
		}
		sheet.Set(row[0][0], f)
	}
	return sheet, nil
}

// IsAlternativeLayout reports whether a spec sheet lacks every host spec row
// key. Such sheets describe something else and the real host specs live in a
// companion document.
func IsAlternativeLayout(sheet *Sheet) bool {
	for _, k := range hostSpecKeys {
		if sheet.Has(k) {
			return false
		}
	}
	return true
}

// FirstColumn returns the first token of each body row's first cell.
func FirstColumn(table *ast.Node) ([]string, error) {
	_, rows, err := Parse(table)
	if err != nil {
		return nil, err
	}
	out := make([]string, 0, len(rows))
	for i, row := range rows {
		if len(row) == 0 || len(row[0]) == 0 {
			return nil, errors.NewGrammarViolation("row %d has an empty first cell", i)
		}
		out = append(out, row[0][0])
	}
	return out, nil
}

func kindOf(n *ast.Node) string {
	if n == nil {
		return "nil"
	}
	return n.Kind.String()
}
