package lattice

import (
	"bytes"
	"encoding/json"
	"fmt"

	"github.com/zclconf/go-cty/cty"
	ctyjson "github.com/zclconf/go-cty/cty/json"
)

// jsonValue is the wire envelope for a Value. Absent values serialize as a
// bare JSON null. Scalars carry their raw JSON form and are re-typed on
// decode via cty's implied-type rules.
type jsonValue struct {
	Kind    string          `json:"kind"`
	Value   json.RawMessage `json:"value,omitempty"`
	Elems   []Value         `json:"elems,omitempty"`
	Entries []jsonEntry     `json:"entries,omitempty"`
}

type jsonEntry struct {
	Key   string `json:"key"`
	Value Value  `json:"value"`
}

// MarshalJSON implements json.Marshaler.
func (v Value) MarshalJSON() ([]byte, error) {
	switch {
	case v.kind == KindAbsent:
		return []byte("null"), nil

	case v.kind == KindScalar:
		raw, err := marshalScalar(v.scalar)
		if err != nil {
			return nil, err
		}
		return json.Marshal(jsonValue{Kind: v.kind.String(), Value: raw})

	case v.kind.elemental():
		elems := v.elems
		if elems == nil {
			elems = []Value{}
		}
		return json.Marshal(jsonValue{Kind: v.kind.String(), Elems: elems})

	default:
		entries := make([]jsonEntry, len(v.entries))
		for i, e := range v.entries {
			entries[i] = jsonEntry{Key: e.Key, Value: e.Value}
		}
		return json.Marshal(jsonValue{Kind: v.kind.String(), Entries: entries})
	}
}

// UnmarshalJSON implements json.Unmarshaler.
func (v *Value) UnmarshalJSON(data []byte) error {
	if bytes.Equal(bytes.TrimSpace(data), []byte("null")) {
		*v = Value{}
		return nil
	}

	var env jsonValue
	if err := json.Unmarshal(data, &env); err != nil {
		return fmt.Errorf("decoding lattice value: %w", err)
	}
	kind, err := ParseKind(env.Kind)
	if err != nil {
		return err
	}

	switch {
	case kind == KindScalar:
		scalar, err := unmarshalScalar(env.Value)
		if err != nil {
			return err
		}
		*v = ScalarVal(scalar)

	case kind.elemental():
		if kind == KindList {
			*v = ListVal(env.Elems...)
		} else {
			*v = setVal(kind, env.Elems)
		}

	case kind.mapLike():
		entries := make([]MapEntry, len(env.Entries))
		for i, e := range env.Entries {
			entries[i] = MapEntry{Key: e.Key, Value: e.Value}
		}
		switch kind {
		case KindMap:
			*v = MapVal(entries...)
		case KindGrowMap:
			*v = GrowMapVal(entries...)
		default:
			*v = ShrinkMapVal(entries...)
		}

	default:
		return fmt.Errorf("decoding lattice value: unexpected kind %q", env.Kind)
	}
	return nil
}

func marshalScalar(s cty.Value) (json.RawMessage, error) {
	if s.IsNull() {
		return json.RawMessage("null"), nil
	}
	raw, err := ctyjson.Marshal(s, s.Type())
	if err != nil {
		return nil, fmt.Errorf("encoding scalar %s: %w", s.Type().FriendlyName(), err)
	}
	return raw, nil
}

func unmarshalScalar(raw json.RawMessage) (cty.Value, error) {
	if len(raw) == 0 || bytes.Equal(bytes.TrimSpace(raw), []byte("null")) {
		return cty.NullVal(cty.DynamicPseudoType), nil
	}
	typ, err := ctyjson.ImpliedType(raw)
	if err != nil {
		return cty.NilVal, fmt.Errorf("decoding scalar: %w", err)
	}
	if !typ.IsPrimitiveType() {
		return cty.NilVal, fmt.Errorf("decoding scalar: %s is not a primitive", typ.FriendlyName())
	}
	val, err := ctyjson.Unmarshal(raw, typ)
	if err != nil {
		return cty.NilVal, fmt.Errorf("decoding scalar: %w", err)
	}
	return val, nil
}
