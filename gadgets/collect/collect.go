// Package collect provides gadget variants over lattice collections.
package collect

import (
	"context"
	"fmt"

	"github.com/Bassline-Org/bassline-sub010/internal/gadget"
	"github.com/Bassline-Org/bassline-sub010/internal/lattice"
)

// Module implements the gadget.Module interface for this package.
type Module struct{}

// retagged coerces a port value toward the given collection kind so plain
// literals work as operands.
func retagged(port string, v lattice.Value, kind lattice.Kind) (lattice.Value, error) {
	out, ok := lattice.Coerce(v, kind)
	if !ok {
		return lattice.Absent(), fmt.Errorf("port %q: %s cannot be treated as %s", port, v.Kind(), kind)
	}
	return out, nil
}

func setMerge(name string, kind lattice.Kind, description string) *gadget.Definition {
	return &gadget.Definition{
		Name:        name,
		Inputs:      []string{"a", "b"},
		Outputs:     []string{"out"},
		Pure:        true,
		Category:    "collect",
		Description: description,
		Body: func(ctx context.Context, in gadget.Inputs) (gadget.Outputs, error) {
			a, err := retagged("a", in["a"], kind)
			if err != nil {
				return nil, err
			}
			b, err := retagged("b", in["b"], kind)
			if err != nil {
				return nil, err
			}
			merged, err := lattice.Merge(a, b)
			if err != nil {
				return nil, err
			}
			return gadget.Outputs{"out": merged}, nil
		},
	}
}

// Register registers the collection variants.
func (m *Module) Register(r *gadget.Registry) {
	r.Register(setMerge("union", lattice.KindGrowSet,
		"Set union of a and b."))
	r.Register(setMerge("intersect", lattice.KindShrinkSet,
		"Set intersection of a and b; errors when empty."))

	size := &gadget.Definition{
		Name:        "size",
		Inputs:      []string{"in"},
		Outputs:     []string{"out"},
		Pure:        true,
		Category:    "collect",
		Description: "Element count of a collection.",
		Body: func(ctx context.Context, in gadget.Inputs) (gadget.Outputs, error) {
			v := in["in"]
			if v.Kind() == lattice.KindScalar || v.IsAbsent() {
				return nil, fmt.Errorf("port \"in\": %s has no size", v.Kind())
			}
			return gadget.Outputs{"out": lattice.NumberIntVal(int64(v.Len()))}, nil
		},
	}
	r.Register(size)
}
