package lattice

// Merge joins two values. It is total except for contradictions: commutative
// and idempotent for all tagged-collection pairs, and associative when
// chained, which is what makes propagation order-independent.
//
// Rules, in order:
//
//   - Either side absent: the other side wins (identity).
//   - Structurally equal: the left side wins (idempotence fast path).
//   - Same tagged kind: Grow kinds union (maps merge shared keys
//     recursively); Shrink kinds intersect (maps merge keys present on both
//     sides, dropping the rest). A Shrink result with nothing in common is a
//     contradiction: a shrinking lattice that reaches bottom cannot represent
//     "no value".
//   - Tagged vs. untagged of a compatible shape: the untagged side is coerced
//     into the tagged side's semantics first.
//   - Both untagged: legacy permissive merge — lists concatenate, maps union
//     keys and merge shared ones recursively. There is deliberately no
//     contradiction path here; see the note on legacy data below.
//   - Anything else is a contradiction carrying both operands.
//
// Legacy note: untagged collections exist so literal seed data can flow into
// the typed lattice before migration. Their merge never fails even where the
// tagged equivalent would; callers that want failure semantics must tag.
func Merge(a, b Value) (Value, error) {
	if a.IsAbsent() {
		return b, nil
	}
	if b.IsAbsent() {
		return a, nil
	}
	if a.Equal(b) {
		return a, nil
	}

	if a.kind.Tagged() || b.kind.Tagged() {
		return mergeTagged(a, b)
	}

	switch {
	case a.kind == KindList && b.kind == KindList:
		return ListVal(append(a.Elems(), b.elems...)...), nil
	case a.kind == KindMap && b.kind == KindMap:
		entries, err := mergeEntriesUnion(a.entries, b.entries)
		if err != nil {
			return Value{}, err
		}
		return Value{kind: KindMap, entries: entries}, nil
	}

	return Value{}, contradiction(a, b)
}

func mergeTagged(a, b Value) (Value, error) {
	if a.kind.Tagged() && !b.kind.Tagged() {
		coerced, ok := Coerce(b, a.kind)
		if !ok {
			return Value{}, contradiction(a, b)
		}
		b = coerced
	} else if b.kind.Tagged() && !a.kind.Tagged() {
		coerced, ok := Coerce(a, b.kind)
		if !ok {
			return Value{}, contradiction(a, b)
		}
		a = coerced
	}
	if a.kind != b.kind {
		return Value{}, contradiction(a, b)
	}

	switch a.kind {
	case KindGrowSet, KindGrowList:
		return setVal(a.kind, append(a.Elems(), b.elems...)), nil

	case KindShrinkSet, KindShrinkList:
		keep := make(map[string]struct{}, len(b.elems))
		for _, e := range b.elems {
			keep[e.canonicalKey()] = struct{}{}
		}
		var out []Value
		for _, e := range a.elems {
			if _, ok := keep[e.canonicalKey()]; ok {
				out = append(out, e)
			}
		}
		if len(out) == 0 {
			return Value{}, contradiction(a, b)
		}
		return setVal(a.kind, out), nil

	case KindGrowMap:
		entries, err := mergeEntriesUnion(a.entries, b.entries)
		if err != nil {
			return Value{}, err
		}
		return Value{kind: KindGrowMap, entries: sortEntries(entries)}, nil

	case KindShrinkMap:
		var out []MapEntry
		for _, e := range a.entries {
			other, ok := b.Lookup(e.Key)
			if !ok {
				continue
			}
			merged, err := Merge(e.Value, other)
			if err != nil {
				return Value{}, err
			}
			out = append(out, MapEntry{Key: e.Key, Value: merged})
		}
		if len(out) == 0 {
			return Value{}, contradiction(a, b)
		}
		return Value{kind: KindShrinkMap, entries: sortEntries(out)}, nil
	}

	return Value{}, contradiction(a, b)
}

// mergeEntriesUnion unions keys, recursively merging values at shared keys.
// Left entries keep their order; unseen right keys append after.
func mergeEntriesUnion(left, right []MapEntry) ([]MapEntry, error) {
	out := make([]MapEntry, 0, len(left)+len(right))
	index := make(map[string]int, len(left))
	for _, e := range left {
		index[e.Key] = len(out)
		out = append(out, e)
	}
	for _, e := range right {
		i, ok := index[e.Key]
		if !ok {
			out = append(out, e)
			continue
		}
		merged, err := Merge(out[i].Value, e.Value)
		if err != nil {
			return nil, err
		}
		out[i] = MapEntry{Key: e.Key, Value: merged}
	}
	return out, nil
}

// Coerce reinterprets an untagged collection under a tagged kind's semantics,
// or retags a tagged collection of the same shape. It reports false when the
// shapes are incompatible (e.g. a scalar toward a set kind).
func Coerce(v Value, kind Kind) (Value, bool) {
	if v.kind == kind {
		return v, true
	}
	switch {
	case kind.elemental() && v.kind.elemental():
		if kind == KindList {
			return ListVal(v.elems...), true
		}
		return setVal(kind, v.elems), true
	case kind.mapLike() && v.kind.mapLike():
		if kind == KindMap {
			return MapVal(v.entries...), true
		}
		return Value{kind: kind, entries: sortEntries(dedupEntries(append([]MapEntry(nil), v.entries...)))}, true
	}
	return Value{}, false
}
