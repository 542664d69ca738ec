package engine

import "sort"

// FieldSet is an unordered set of fields.
type FieldSet map[Field]struct{}

func NewFieldSet(fields ...Field) FieldSet {
	s := make(FieldSet, len(fields))
	for _, f := range fields {
		s[f] = struct{}{}
	}
	return s
}

func (s FieldSet) Add(f Field) { s[f] = struct{}{} }

func (s FieldSet) Has(f Field) bool {
	_, ok := s[f]
	return ok
}

func (s FieldSet) Len() int { return len(s) }

// Union adds every field of o to s.
func (s FieldSet) Union(o FieldSet) {
	for f := range o {
		s[f] = struct{}{}
	}
}

// SubsetOf reports whether every field of s is in o. The empty set is a
// subset of anything.
func (s FieldSet) SubsetOf(o FieldSet) bool {
	for f := range s {
		if !o.Has(f) {
			return false
		}
	}
	return true
}

// Slice returns the fields ordered by row, then column.
func (s FieldSet) Slice() []Field {
	out := make([]Field, 0, len(s))
	for f := range s {
		out = append(out, f)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].less(out[j]) })
	return out
}
