// Package record defines the nested record structure processed by the
// pseudonymization pipeline and the typed field paths used to address leaves
// inside it. Paths are vectors of key/index segments rather than parsed
// strings, so keys containing dots or brackets stay unambiguous.
package record

import (
	"fmt"
	"strings"
)

// Record is an arbitrary nested mapping decoded from JSON: values are
// strings, float64 numbers, bools, []any or nested map[string]any.
type Record = map[string]any

// Segment is a single step in a field path: either a map key or an array index.
type Segment struct {
	Key     string
	Index   int
	IsIndex bool
}

// Path addresses a leaf inside a nested record.
type Path []Segment

// Child returns a new path extended with a map key segment.
// The receiver is never mutated; extending the same parent twice is safe.
func (p Path) Child(key string) Path {
	next := make(Path, len(p), len(p)+1)
	copy(next, p)
	return append(next, Segment{Key: key})
}

// Elem returns a new path extended with an array index segment.
func (p Path) Elem(index int) Path {
	next := make(Path, len(p), len(p)+1)
	copy(next, p)
	return append(next, Segment{Index: index, IsIndex: true})
}

// Key returns an unambiguous encoding of the path for use as a map key.
// Unlike String, distinct paths never collide: a literal map key "a[0]" and
// the nested path a.Elem(0) render the same but encode differently. Key
// segments are length-prefixed so keys containing digits, colons or
// semicolons cannot forge an index segment.
func (p Path) Key() string {
	var b strings.Builder
	for _, seg := range p {
		if seg.IsIndex {
			fmt.Fprintf(&b, "#%d;", seg.Index)
			continue
		}
		fmt.Fprintf(&b, "%d:%s;", len(seg.Key), seg.Key)
	}
	return b.String()
}

// String renders the path in dotted/bracketed form, e.g.
// "transactions[2].description". The rendered form is for display only;
// path comparison always uses the segments.
func (p Path) String() string {
	var b strings.Builder
	for i, seg := range p {
		if seg.IsIndex {
			fmt.Fprintf(&b, "[%d]", seg.Index)
			continue
		}
		if i > 0 {
			b.WriteByte('.')
		}
		b.WriteString(seg.Key)
	}
	return b.String()
}

// Get resolves the value at path inside the record. The second return value
// is false when any segment is missing or addresses the wrong container kind.
func Get(r Record, path Path) (any, bool) {
	var current any = map[string]any(r)
	for _, seg := range path {
		if seg.IsIndex {
			slice, ok := current.([]any)
			if !ok || seg.Index < 0 || seg.Index >= len(slice) {
				return nil, false
			}
			current = slice[seg.Index]
			continue
		}
		m, ok := current.(map[string]any)
		if !ok {
			return nil, false
		}
		current, ok = m[seg.Key]
		if !ok {
			return nil, false
		}
	}
	return current, true
}

// Set replaces the value at path inside the record, reporting whether the
// path resolved. Intermediate containers are never created.
func Set(r Record, path Path, value any) bool {
	if len(path) == 0 {
		return false
	}

	var current any = map[string]any(r)
	for _, seg := range path[:len(path)-1] {
		if seg.IsIndex {
			slice, ok := current.([]any)
			if !ok || seg.Index < 0 || seg.Index >= len(slice) {
				return false
			}
			current = slice[seg.Index]
			continue
		}
		m, ok := current.(map[string]any)
		if !ok {
			return false
		}
		current, ok = m[seg.Key]
		if !ok {
			return false
		}
	}

	last := path[len(path)-1]
	if last.IsIndex {
		slice, ok := current.([]any)
		if !ok || last.Index < 0 || last.Index >= len(slice) {
			return false
		}
		slice[last.Index] = value
		return true
	}
	m, ok := current.(map[string]any)
	if !ok {
		return false
	}
	if _, ok := m[last.Key]; !ok {
		return false
	}
	m[last.Key] = value
	return true
}

// Clone returns a deep copy of the record. Maps and slices are copied
// recursively; scalar leaves are shared (they are immutable values).
func Clone(r Record) Record {
	if r == nil {
		return nil
	}
	return cloneValue(r).(map[string]any)
}

func cloneValue(v any) any {
	switch tv := v.(type) {
	case map[string]any:
		out := make(map[string]any, len(tv))
		for k, val := range tv {
			out[k] = cloneValue(val)
		}
		return out
	case []any:
		out := make([]any, len(tv))
		for i, val := range tv {
			out[i] = cloneValue(val)
		}
		return out
	default:
		return v
	}
}
