package lattice

import (
	"fmt"
	"sort"
	"strings"

	"github.com/zclconf/go-cty/cty"
)

// Value is a mergeable lattice value: a scalar, a legacy untagged collection,
// or one of the six tagged Grow/Shrink collections. The zero Value is absent
// (the content of a never-written cell) and is the identity element of Merge.
//
// Values are immutable; operations return new Values. Set-kinded values and
// tagged maps keep their elements in canonical order so that merge results
// compare equal regardless of operand order.
type Value struct {
	kind    Kind
	scalar  cty.Value
	elems   []Value
	entries []MapEntry
}

// MapEntry is one key/value pair of a map-kinded Value.
type MapEntry struct {
	Key   string
	Value Value
}

// Absent returns the identity value. Equivalent to the zero Value.
func Absent() Value { return Value{} }

// ScalarVal wraps a cty primitive. Passing a non-primitive, non-null cty
// value panics; collections must go through FromCtyValue.
func ScalarVal(v cty.Value) Value {
	if !v.IsNull() && !v.Type().IsPrimitiveType() {
		panic(fmt.Sprintf("lattice: ScalarVal called with non-primitive %s", v.Type().FriendlyName()))
	}
	return Value{kind: KindScalar, scalar: v}
}

// NumberVal wraps a number scalar.
func NumberVal(n float64) Value { return ScalarVal(cty.NumberFloatVal(n)) }

// NumberIntVal wraps an integer number scalar.
func NumberIntVal(n int64) Value { return ScalarVal(cty.NumberIntVal(n)) }

// StringVal wraps a string scalar.
func StringVal(s string) Value { return ScalarVal(cty.StringVal(s)) }

// BoolVal wraps a bool scalar.
func BoolVal(b bool) Value { return ScalarVal(cty.BoolVal(b)) }

// NullVal is the "none" scalar.
func NullVal() Value { return ScalarVal(cty.NullVal(cty.DynamicPseudoType)) }

// ListVal builds a legacy untagged sequence. Order and duplicates are kept.
func ListVal(elems ...Value) Value {
	return Value{kind: KindList, elems: append([]Value(nil), elems...)}
}

// MapVal builds a legacy untagged dictionary, preserving entry order.
// Duplicate keys keep the last occurrence.
func MapVal(entries ...MapEntry) Value {
	return Value{kind: KindMap, entries: dedupEntries(entries)}
}

// GrowSetVal builds an inflationary set.
func GrowSetVal(elems ...Value) Value { return setVal(KindGrowSet, elems) }

// ShrinkSetVal builds a deflationary set.
func ShrinkSetVal(elems ...Value) Value { return setVal(KindShrinkSet, elems) }

// GrowListVal builds an inflationary array. Elements are deduplicated and
// canonically ordered: tagged arrays behave as ordered sets so that merge
// results are order-independent.
func GrowListVal(elems ...Value) Value { return setVal(KindGrowList, elems) }

// ShrinkListVal builds a deflationary array.
func ShrinkListVal(elems ...Value) Value { return setVal(KindShrinkList, elems) }

// GrowMapVal builds an inflationary map. Keys are canonically ordered.
func GrowMapVal(entries ...MapEntry) Value {
	return Value{kind: KindGrowMap, entries: sortEntries(dedupEntries(entries))}
}

// ShrinkMapVal builds a deflationary map.
func ShrinkMapVal(entries ...MapEntry) Value {
	return Value{kind: KindShrinkMap, entries: sortEntries(dedupEntries(entries))}
}

func setVal(kind Kind, elems []Value) Value {
	return Value{kind: kind, elems: canonElems(elems)}
}

// canonElems deduplicates by canonical key and sorts.
func canonElems(elems []Value) []Value {
	seen := make(map[string]struct{}, len(elems))
	out := make([]Value, 0, len(elems))
	for _, e := range elems {
		k := e.canonicalKey()
		if _, ok := seen[k]; ok {
			continue
		}
		seen[k] = struct{}{}
		out = append(out, e)
	}
	sort.Slice(out, func(i, j int) bool {
		return out[i].less(out[j])
	})
	return out
}

func dedupEntries(entries []MapEntry) []MapEntry {
	idx := make(map[string]int, len(entries))
	out := make([]MapEntry, 0, len(entries))
	for _, e := range entries {
		if i, ok := idx[e.Key]; ok {
			out[i] = e
			continue
		}
		idx[e.Key] = len(out)
		out = append(out, e)
	}
	return out
}

func sortEntries(entries []MapEntry) []MapEntry {
	sort.Slice(entries, func(i, j int) bool { return entries[i].Key < entries[j].Key })
	return entries
}

// Kind returns the value's discriminator.
func (v Value) Kind() Kind { return v.kind }

// IsAbsent reports whether v is the identity (never-written) value.
func (v Value) IsAbsent() bool { return v.kind == KindAbsent }

// Scalar returns the underlying cty primitive of a scalar value.
func (v Value) Scalar() cty.Value {
	if v.kind != KindScalar {
		panic("lattice: Scalar called on " + v.kind.String())
	}
	return v.scalar
}

// Elems returns a copy of the element slice of a sequence-kinded value.
func (v Value) Elems() []Value {
	if !v.kind.elemental() {
		panic("lattice: Elems called on " + v.kind.String())
	}
	return append([]Value(nil), v.elems...)
}

// Entries returns a copy of the entry slice of a map-kinded value.
func (v Value) Entries() []MapEntry {
	if !v.kind.mapLike() {
		panic("lattice: Entries called on " + v.kind.String())
	}
	return append([]MapEntry(nil), v.entries...)
}

// Lookup returns the value at key for a map-kinded value.
func (v Value) Lookup(key string) (Value, bool) {
	if !v.kind.mapLike() {
		return Value{}, false
	}
	for _, e := range v.entries {
		if e.Key == key {
			return e.Value, true
		}
	}
	return Value{}, false
}

// Len returns the element or entry count of a collection, and 0 otherwise.
func (v Value) Len() int {
	switch {
	case v.kind.elemental():
		return len(v.elems)
	case v.kind.mapLike():
		return len(v.entries)
	}
	return 0
}

// Equal reports structural equality. Scalars compare with cty's RawEquals;
// map kinds compare key sets and values regardless of stored order, since
// entry order is presentation, not content.
func (v Value) Equal(other Value) bool {
	if v.kind != other.kind {
		return false
	}
	switch {
	case v.kind == KindAbsent:
		return true
	case v.kind == KindScalar:
		return v.scalar.RawEquals(other.scalar)
	case v.kind.elemental():
		if len(v.elems) != len(other.elems) {
			return false
		}
		for i := range v.elems {
			if !v.elems[i].Equal(other.elems[i]) {
				return false
			}
		}
		return true
	default:
		if len(v.entries) != len(other.entries) {
			return false
		}
		for _, e := range v.entries {
			o, ok := other.Lookup(e.Key)
			if !ok || !e.Value.Equal(o) {
				return false
			}
		}
		return true
	}
}

// canonicalKey is a stable encoding used for set membership, ordering and
// pure-gadget input caching. Two values have the same key iff they are Equal.
func (v Value) canonicalKey() string {
	var sb strings.Builder
	v.writeCanonical(&sb)
	return sb.String()
}

// Fingerprint returns a stable identity string: two values share a
// fingerprint iff they are Equal. Callers use it as a cache or set key.
func (v Value) Fingerprint() string { return v.canonicalKey() }

func (v Value) writeCanonical(sb *strings.Builder) {
	switch {
	case v.kind == KindAbsent:
		sb.WriteString("_")
	case v.kind == KindScalar:
		writeScalarCanonical(sb, v.scalar)
	case v.kind.elemental():
		sb.WriteString(v.kind.String())
		sb.WriteByte('[')
		for i, e := range v.elems {
			if i > 0 {
				sb.WriteByte(',')
			}
			e.writeCanonical(sb)
		}
		sb.WriteByte(']')
	default:
		sb.WriteString(v.kind.String())
		sb.WriteByte('{')
		entries := append([]MapEntry(nil), v.entries...)
		sortEntries(entries)
		for i, e := range entries {
			if i > 0 {
				sb.WriteByte(',')
			}
			fmt.Fprintf(sb, "%q:", e.Key)
			e.Value.writeCanonical(sb)
		}
		sb.WriteByte('}')
	}
}

func writeScalarCanonical(sb *strings.Builder, s cty.Value) {
	switch {
	case s.IsNull():
		sb.WriteString("null")
	case s.Type() == cty.Number:
		sb.WriteString("n:")
		sb.WriteString(s.AsBigFloat().Text('g', -1))
	case s.Type() == cty.String:
		fmt.Fprintf(sb, "s:%q", s.AsString())
	case s.Type() == cty.Bool:
		fmt.Fprintf(sb, "b:%v", s.True())
	default:
		fmt.Fprintf(sb, "?:%#v", s)
	}
}

// less orders values for canonical storage: by kind first, then numbers
// numerically, then by canonical key.
func (v Value) less(other Value) bool {
	if v.kind != other.kind {
		return v.kind < other.kind
	}
	if v.kind == KindScalar && !v.scalar.IsNull() && !other.scalar.IsNull() &&
		v.scalar.Type() == cty.Number && other.scalar.Type() == cty.Number {
		return v.scalar.AsBigFloat().Cmp(other.scalar.AsBigFloat()) < 0
	}
	return v.canonicalKey() < other.canonicalKey()
}

// String renders a compact human-readable form for logs and error messages.
func (v Value) String() string {
	switch {
	case v.kind == KindAbsent:
		return "<absent>"
	case v.kind == KindScalar:
		var sb strings.Builder
		writeScalarCanonical(&sb, v.scalar)
		s := sb.String()
		if i := strings.IndexByte(s, ':'); i >= 0 {
			return s[i+1:]
		}
		return s
	default:
		var sb strings.Builder
		v.writeCanonical(&sb)
		return sb.String()
	}
}
