// Package logic provides the boolean gadget variants.
package logic

import (
	"context"
	"fmt"

	"github.com/zclconf/go-cty/cty"
	"github.com/zclconf/go-cty/cty/convert"

	"github.com/Bassline-Org/bassline-sub010/internal/gadget"
	"github.com/Bassline-Org/bassline-sub010/internal/lattice"
)

// Module implements the gadget.Module interface for this package.
type Module struct{}

func boolean(port string, v lattice.Value) (bool, error) {
	if v.Kind() != lattice.KindScalar {
		return false, fmt.Errorf("port %q: expected a bool, got %s", port, v.Kind())
	}
	converted, err := convert.Convert(v.Scalar(), cty.Bool)
	if err != nil {
		return false, fmt.Errorf("port %q: %w", port, err)
	}
	return converted.True(), nil
}

func binary(name string, f func(a, b bool) bool) *gadget.Definition {
	return &gadget.Definition{
		Name:     name,
		Inputs:   []string{"a", "b"},
		Outputs:  []string{"out"},
		Pure:     true,
		Category: "logic",
		Body: func(ctx context.Context, in gadget.Inputs) (gadget.Outputs, error) {
			a, err := boolean("a", in["a"])
			if err != nil {
				return nil, err
			}
			b, err := boolean("b", in["b"])
			if err != nil {
				return nil, err
			}
			return gadget.Outputs{"out": lattice.BoolVal(f(a, b))}, nil
		},
	}
}

// Register registers the boolean variants.
func (m *Module) Register(r *gadget.Registry) {
	and := binary("and", func(a, b bool) bool { return a && b })
	and.Description = "Logical conjunction."
	r.Register(and)

	or := binary("or", func(a, b bool) bool { return a || b })
	or.Description = "Logical disjunction."
	r.Register(or)

	not := &gadget.Definition{
		Name:        "not",
		Inputs:      []string{"in"},
		Outputs:     []string{"out"},
		Pure:        true,
		Category:    "logic",
		Description: "Logical negation.",
		Body: func(ctx context.Context, in gadget.Inputs) (gadget.Outputs, error) {
			b, err := boolean("in", in["in"])
			if err != nil {
				return nil, err
			}
			return gadget.Outputs{"out": lattice.BoolVal(!b)}, nil
		},
	}
	r.Register(not)
}
