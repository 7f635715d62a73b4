// Package debug provides impure gadget variants for observing a network.
package debug

import (
	"context"

	"github.com/Bassline-Org/bassline-sub010/internal/ctxlog"
	"github.com/Bassline-Org/bassline-sub010/internal/gadget"
)

// Module implements the gadget.Module interface for this package.
type Module struct{}

// Register registers the debug variants.
func (m *Module) Register(r *gadget.Registry) {
	log := &gadget.Definition{
		Name:        "log",
		Inputs:      []string{"in"},
		Outputs:     []string{"out"},
		Category:    "debug",
		Description: "Logs every value it sees and passes it through.",
		Body: func(ctx context.Context, in gadget.Inputs) (gadget.Outputs, error) {
			ctxlog.FromContext(ctx).Info("Observed value.", "value", in["in"].String())
			return gadget.Outputs{"out": in["in"]}, nil
		},
	}
	r.Register(log)
}
