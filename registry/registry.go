// Package registry implements an insertion-ordered map keyed by UID.
//
// A Map is a value: every mutating method returns a new Map and leaves the
// receiver untouched, so a Map can be shared freely between snapshots.
package registry

import (
	"bytes"
	"encoding/json"
	"fmt"
	"iter"
)

type Map[V any] struct {
	keys  []string
	index map[string]int // key -> position in keys
	vals  map[string]V
}

func New[V any]() Map[V] {
	return Map[V]{index: map[string]int{}, vals: map[string]V{}}
}

// Of builds a Map from parallel key and value slices.
func Of[V any](keys []string, vals []V) Map[V] {
	m := New[V]().clone(len(keys))
	for i, k := range keys {
		m.put(k, vals[i])
	}
	return m
}

func (m Map[V]) Len() int { return len(m.keys) }

func (m Map[V]) Get(key string) (V, bool) {
	v, ok := m.vals[key]
	return v, ok
}

func (m Map[V]) Has(key string) bool {
	_, ok := m.vals[key]
	return ok
}

// Keys returns the keys in insertion order. The slice is a copy.
func (m Map[V]) Keys() []string {
	out := make([]string, len(m.keys))
	copy(out, m.keys)
	return out
}

func (m Map[V]) Values() []V {
	out := make([]V, 0, len(m.keys))
	for _, k := range m.keys {
		out = append(out, m.vals[k])
	}
	return out
}

func (m Map[V]) All() iter.Seq2[string, V] {
	return func(yield func(string, V) bool) {
		for _, k := range m.keys {
			if !yield(k, m.vals[k]) {
				return
			}
		}
	}
}

// Set inserts or replaces key. A replaced key keeps its position.
func (m Map[V]) Set(key string, v V) Map[V] {
	out := m.clone(1)
	out.put(key, v)
	return out
}

// SetAll merge-inserts other into m, in other's order.
func (m Map[V]) SetAll(other Map[V]) Map[V] {
	if other.Len() == 0 {
		return m
	}
	out := m.clone(other.Len())
	for _, k := range other.keys {
		out.put(k, other.vals[k])
	}
	return out
}

func (m Map[V]) Delete(key string) Map[V] {
	return m.DeleteAll(key)
}

// DeleteAll removes every listed key; absent keys are ignored.
func (m Map[V]) DeleteAll(keys ...string) Map[V] {
	drop := make(map[string]struct{}, len(keys))
	for _, k := range keys {
		if m.Has(k) {
			drop[k] = struct{}{}
		}
	}
	if len(drop) == 0 {
		return m
	}

	out := New[V]()
	for _, k := range m.keys {
		if _, gone := drop[k]; gone {
			continue
		}
		out.put(k, m.vals[k])
	}
	return out
}

// Equal reports whether both maps hold the same keys in the same order and
// eq holds for every pair of values.
func (m Map[V]) Equal(other Map[V], eq func(a, b V) bool) bool {
	if m.Len() != other.Len() {
		return false
	}
	for i, k := range m.keys {
		if other.keys[i] != k || !eq(m.vals[k], other.vals[k]) {
			return false
		}
	}
	return true
}

func (m Map[V]) clone(extra int) Map[V] {
	out := Map[V]{
		keys:  make([]string, len(m.keys), len(m.keys)+extra),
		index: make(map[string]int, len(m.keys)+extra),
		vals:  make(map[string]V, len(m.keys)+extra),
	}
	copy(out.keys, m.keys)
	for k, i := range m.index {
		out.index[k] = i
	}
	for k, v := range m.vals {
		out.vals[k] = v
	}
	return out
}

// put writes in place; only called on a Map under construction.
func (m *Map[V]) put(key string, v V) {
	if _, ok := m.index[key]; !ok {
		m.index[key] = len(m.keys)
		m.keys = append(m.keys, key)
	}
	m.vals[key] = v
}

func (m Map[V]) MarshalJSON() ([]byte, error) {
	var buf bytes.Buffer
	buf.WriteByte('{')
	for i, k := range m.keys {
		if i > 0 {
			buf.WriteByte(',')
		}
		kb, err := json.Marshal(k)
		if err != nil {
			return nil, err
		}
		vb, err := json.Marshal(m.vals[k])
		if err != nil {
			return nil, fmt.Errorf("marshal %q: %w", k, err)
		}
		buf.Write(kb)
		buf.WriteByte(':')
		buf.Write(vb)
	}
	buf.WriteByte('}')
	return buf.Bytes(), nil
}

// UnmarshalJSON keeps the key order of the JSON object.
func (m *Map[V]) UnmarshalJSON(data []byte) error {
	dec := json.NewDecoder(bytes.NewReader(data))
	tok, err := dec.Token()
	if err != nil {
		return err
	}
	if tok == nil {
		*m = New[V]()
		return nil
	}
	if d, ok := tok.(json.Delim); !ok || d != '{' {
		return fmt.Errorf("registry: expected object, got %v", tok)
	}

	out := New[V]()
	for dec.More() {
		tok, err := dec.Token()
		if err != nil {
			return err
		}
		key, ok := tok.(string)
		if !ok {
			return fmt.Errorf("registry: expected string key, got %v", tok)
		}
		var v V
		if err := dec.Decode(&v); err != nil {
			return fmt.Errorf("registry: value for %q: %w", key, err)
		}
		out.put(key, v)
	}
	if _, err := dec.Token(); err != nil {
		return err
	}
	*m = out
	return nil
}

// Builder accumulates entries for a new Map without copying on every write.
// A Builder must not be used after Map has been called.
type Builder[V any] struct {
	m Map[V]
}

func NewBuilder[V any](hint int) *Builder[V] {
	return &Builder[V]{m: New[V]().clone(hint)}
}

func (b *Builder[V]) Set(key string, v V) { b.m.put(key, v) }

func (b *Builder[V]) Map() Map[V] {
	m := b.m
	b.m = Map[V]{}
	return m
}
