package capability

import (
	"encoding/json"
	"fmt"

	"github.com/teranos/azsku/table"
)

type valueKind int

const (
	kindBool valueKind = iota + 1
	kindInt
	kindString
)

// Value is one canonical capability value: a bool, an int or a string.
type Value struct {
	kind valueKind
	b    bool
	i    int
	s    string
}

func Bool(b bool) Value     { return Value{kind: kindBool, b: b} }
func Int(i int) Value       { return Value{kind: kindInt, i: i} }
func String(s string) Value { return Value{kind: kindString, s: s} }

// AsBool returns the value if it holds a bool.
func (v Value) AsBool() (bool, bool) { return v.b, v.kind == kindBool }

// AsInt returns the value if it holds an int.
func (v Value) AsInt() (int, bool) { return v.i, v.kind == kindInt }

// AsString returns the value if it holds a string.
func (v Value) AsString() (string, bool) { return v.s, v.kind == kindString }

func (v Value) String() string {
	switch v.kind {
	case kindBool:
		return fmt.Sprint(v.b)
	case kindInt:
		return fmt.Sprint(v.i)
	case kindString:
		return v.s
	default:
		return "<unset>"
	}
}

func (v Value) MarshalJSON() ([]byte, error) {
	switch v.kind {
	case kindBool:
		return json.Marshal(v.b)
	case kindInt:
		return json.Marshal(v.i)
	case kindString:
		return json.Marshal(v.s)
	default:
		return []byte("null"), nil
	}
}

// Set is a canonical capability set in output order.
type Set = table.OrderedMap[Value]

// Raw holds "key: value" pairs as read from the document.
type Raw = table.OrderedMap[string]
