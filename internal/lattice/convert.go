package lattice

import (
	"fmt"

	"github.com/zclconf/go-cty/cty"
)

// FromCtyValue converts an arbitrary cty value (typically decoded from a
// topology file literal) into a lattice Value. Primitives become scalars,
// sequences become legacy lists and maps/objects become legacy maps; the
// result can then be retagged with Coerce.
func FromCtyValue(v cty.Value) (Value, error) {
	if v == cty.NilVal {
		return Value{}, nil
	}
	if v.IsNull() {
		return NullVal(), nil
	}
	if !v.IsKnown() {
		return Value{}, fmt.Errorf("cannot convert unknown value to lattice value")
	}
	t := v.Type()
	switch {
	case t.IsPrimitiveType():
		return ScalarVal(v), nil

	case t.IsTupleType() || t.IsListType() || t.IsSetType():
		var elems []Value
		for it := v.ElementIterator(); it.Next(); {
			_, ev := it.Element()
			converted, err := FromCtyValue(ev)
			if err != nil {
				return Value{}, err
			}
			elems = append(elems, converted)
		}
		return ListVal(elems...), nil

	case t.IsObjectType() || t.IsMapType():
		var entries []MapEntry
		for it := v.ElementIterator(); it.Next(); {
			kv, ev := it.Element()
			converted, err := FromCtyValue(ev)
			if err != nil {
				return Value{}, err
			}
			entries = append(entries, MapEntry{Key: kv.AsString(), Value: converted})
		}
		return MapVal(entries...), nil
	}
	return Value{}, fmt.Errorf("cannot convert %s to lattice value", t.FriendlyName())
}
