package table

import (
	"bytes"
	"encoding/json"
)

// OrderedMap is a string-keyed map that remembers insertion order. Setting an
// existing key replaces the value in place.
type OrderedMap[V any] struct {
	keys   []string
	values map[string]V
}

// NewOrderedMap returns an empty map.
func NewOrderedMap[V any]() *OrderedMap[V] {
	return &OrderedMap[V]{values: make(map[string]V)}
}

func (m *OrderedMap[V]) Set(key string, value V) {
	if _, ok := m.values[key]; !ok {
		m.keys = append(m.keys, key)
	}
	m.values[key] = value
}

func (m *OrderedMap[V]) Get(key string) (V, bool) {
	v, ok := m.values[key]
	return v, ok
}

func (m *OrderedMap[V]) Has(key string) bool {
	_, ok := m.values[key]
	return ok
}

// Keys returns the keys in insertion order.
func (m *OrderedMap[V]) Keys() []string {
	return append([]string(nil), m.keys...)
}

func (m *OrderedMap[V]) Len() int {
	return len(m.keys)
}

// MarshalJSON writes the entries as a JSON object in insertion order.
func (m *OrderedMap[V]) MarshalJSON() ([]byte, error) {
	var buf bytes.Buffer
	buf.WriteByte('{')
	for i, k := range m.keys {
		if i > 0 {
			buf.WriteByte(',')
		}
		key, err := json.Marshal(k)
		if err != nil {
			return nil, err
		}
		val, err := json.Marshal(m.values[k])
		if err != nil {
			return nil, err
		}
		buf.Write(key)
		buf.WriteByte(':')
		buf.Write(val)
	}
	buf.WriteByte('}')
	return buf.Bytes(), nil
}

// Fields maps a column header to the tokens of one cell.
type Fields = OrderedMap[[]string]

// Sheet maps a row key to the remaining fields of that row.
type Sheet = OrderedMap[*Fields]
