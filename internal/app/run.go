package app

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/Bassline-Org/bassline-sub010/internal/ctxlog"
	"github.com/Bassline-Org/bassline-sub010/internal/engine"
	"github.com/Bassline-Org/bassline-sub010/internal/hcl"
)

// Run loads the configured topology into a fresh session, settles it, and
// prints the converged state of each declared group as JSON.
func (a *App) Run(ctx context.Context) error {
	ctx = ctxlog.WithLogger(ctx, a.logger)
	a.logger.Debug("App.Run method started.")

	specs, err := hcl.NewLoader().Load(a.config.TopologyPath)
	if err != nil {
		return fmt.Errorf("failed to load topology: %w", err)
	}
	a.logger.Debug("Topology loaded.", "groups", len(specs))

	sess, err := a.sessions.Open(ctx)
	if err != nil {
		return fmt.Errorf("failed to open session: %w", err)
	}
	defer func() {
		if err := a.sessions.Close(ctx, sess.ID); err != nil {
			a.logger.Warn("Failed to close session.", "error", err)
		}
	}()
	if a.config.MaxSteps > 0 {
		sess.Engine.SetMaxSteps(a.config.MaxSteps)
	}

	var groupIDs []string
	for _, spec := range specs {
		if spec.ID != "" {
			sess.Engine.Subscribe(spec.ID, a.logFaults)
		}
		id, err := sess.Engine.RegisterGroup(ctx, spec)
		if err != nil {
			return fmt.Errorf("failed to register group %q: %w", spec.ID, err)
		}
		groupIDs = append(groupIDs, id)
	}

	for _, id := range groupIDs {
		state, err := sess.Engine.GetState(id)
		if err != nil {
			return err
		}
		out, err := json.MarshalIndent(state, "", "  ")
		if err != nil {
			return fmt.Errorf("failed to render state of group %q: %w", id, err)
		}
		fmt.Fprintln(a.outW, string(out))
	}

	a.logger.Debug("App.Run method finished.")
	return nil
}

// logFaults surfaces propagation faults as warnings; they are recoverable and
// must not abort the run.
func (a *App) logFaults(ev engine.Event) {
	for _, f := range ev.Faults {
		a.logger.Warn("Propagation fault.", "group_id", ev.GroupID, "fault", f.String())
	}
}
