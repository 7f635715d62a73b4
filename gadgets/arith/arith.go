// Package arith provides the numeric gadget variants.
package arith

import (
	"context"
	"fmt"
	"math"

	"github.com/zclconf/go-cty/cty"
	"github.com/zclconf/go-cty/cty/convert"
	"github.com/zclconf/go-cty/cty/gocty"

	"github.com/Bassline-Org/bassline-sub010/internal/gadget"
	"github.com/Bassline-Org/bassline-sub010/internal/lattice"
)

// Module implements the gadget.Module interface for this package.
type Module struct{}

// number converts a port value to a float64, accepting numeric strings the
// way cty's conversion rules do.
func number(port string, v lattice.Value) (float64, error) {
	if v.Kind() != lattice.KindScalar {
		return 0, fmt.Errorf("port %q: expected a number, got %s", port, v.Kind())
	}
	converted, err := convert.Convert(v.Scalar(), cty.Number)
	if err != nil {
		return 0, fmt.Errorf("port %q: %w", port, err)
	}
	var f float64
	if err := gocty.FromCtyValue(converted, &f); err != nil {
		return 0, fmt.Errorf("port %q: %w", port, err)
	}
	return f, nil
}

func binary(name string, f func(a, b float64) float64) *gadget.Definition {
	return &gadget.Definition{
		Name:     name,
		Inputs:   []string{"a", "b"},
		Outputs:  []string{"out"},
		Pure:     true,
		Category: "arith",
		Body: func(ctx context.Context, in gadget.Inputs) (gadget.Outputs, error) {
			a, err := number("a", in["a"])
			if err != nil {
				return nil, err
			}
			b, err := number("b", in["b"])
			if err != nil {
				return nil, err
			}
			return gadget.Outputs{"out": lattice.NumberVal(f(a, b))}, nil
		},
	}
}

// Register registers the arithmetic variants.
func (m *Module) Register(r *gadget.Registry) {
	add := binary("add", func(a, b float64) float64 { return a + b })
	add.Description = "Sum of a and b."
	r.Register(add)

	mul := binary("mul", func(a, b float64) float64 { return a * b })
	mul.Description = "Product of a and b."
	r.Register(mul)

	max := binary("max", math.Max)
	max.Description = "Larger of a and b."
	r.Register(max)

	min := binary("min", math.Min)
	min.Description = "Smaller of a and b."
	r.Register(min)

	neg := &gadget.Definition{
		Name:        "neg",
		Inputs:      []string{"in"},
		Outputs:     []string{"out"},
		Pure:        true,
		Category:    "arith",
		Description: "Negation of the input.",
		Body: func(ctx context.Context, in gadget.Inputs) (gadget.Outputs, error) {
			n, err := number("in", in["in"])
			if err != nil {
				return nil, err
			}
			return gadget.Outputs{"out": lattice.NumberVal(-n)}, nil
		},
	}
	r.Register(neg)
}
