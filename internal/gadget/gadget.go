package gadget

import (
	"context"

	"github.com/Bassline-Org/bassline-sub010/internal/lattice"
)

// Inputs maps input port names to their current values. Ports with no value
// yet are simply missing from the map.
type Inputs map[string]lattice.Value

// Outputs maps output port names to the values a body produced. Ports missing
// from the map publish nothing for that activation.
type Outputs map[string]lattice.Value

// Body computes a gadget's outputs from its present inputs. Bodies may block
// (I/O, timers); the scheduler awaits each invocation before distributing the
// result, so an invocation is logically atomic: either the whole output map
// publishes or, on error, nothing does.
type Body func(ctx context.Context, in Inputs) (Outputs, error)

// Activation decides whether a gadget is ready to fire given which input
// ports currently have values.
type Activation func(have map[string]bool) bool

// Definition is the closed behavior record for one gadget variant, resolved
// once from the registry at instantiation time.
type Definition struct {
	Name    string
	Inputs  []string
	Outputs []string
	// Activation may be nil, which means strict: all inputs must be present.
	Activation Activation
	Body       Body
	// Pure gadgets have no observable effect beyond their declared outputs,
	// so the scheduler may skip re-invocation on identical inputs.
	Pure        bool
	Category    string
	Description string
}

// Ready reports whether the gadget should fire for the given port
// availability. Nil activation requires every declared input.
func (d *Definition) Ready(have map[string]bool) bool {
	if d.Activation != nil {
		return d.Activation(have)
	}
	for _, port := range d.Inputs {
		if !have[port] {
			return false
		}
	}
	return true
}
