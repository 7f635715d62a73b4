package scheduler

import (
	"context"
	"errors"
	"fmt"
	"sort"

	"github.com/Bassline-Org/bassline-sub010/internal/ctxlog"
	"github.com/Bassline-Org/bassline-sub010/internal/gadget"
	"github.com/Bassline-Org/bassline-sub010/internal/group"
	"github.com/Bassline-Org/bassline-sub010/internal/lattice"
)

// DefaultMaxSteps bounds a single propagation pass. Well-behaved networks
// converge in far fewer steps; hitting the cap means a non-monotonic cycle.
const DefaultMaxSteps = 10_000

// ErrNonConvergent is returned when a pass exhausts its step budget.
var ErrNonConvergent = errors.New("propagation did not converge")

// Fault records one recoverable failure during a pass: a merge contradiction
// at a contact, or a gadget body returning an error. Faults never abort the
// pass; the rest of the network still settles.
type Fault struct {
	ContactID string
	GroupID   string
	Gadget    string
	Err       error
}

func (f Fault) String() string {
	switch {
	case f.Gadget != "" && f.ContactID != "":
		return fmt.Sprintf("gadget %s writing %s: %v", f.Gadget, f.ContactID, f.Err)
	case f.Gadget != "":
		return fmt.Sprintf("gadget %s in group %s: %v", f.Gadget, f.GroupID, f.Err)
	}
	return fmt.Sprintf("contact %s: %v", f.ContactID, f.Err)
}

// Result summarizes one propagation pass.
type Result struct {
	// Steps is the number of dirty contacts processed.
	Steps int
	// Changed lists the contacts whose content changed, in first-change order.
	Changed []string
	// Faults lists the contradictions and gadget errors the pass absorbed.
	Faults []Fault
}

// binding attaches a resolved gadget definition to the port contacts of one
// primitive group.
type binding struct {
	groupID string
	def     *gadget.Definition
	// inputs and outputs map port names to contact ids.
	inputs  map[string]string
	outputs map[string]string

	// lastKey caches the fingerprint of the inputs at the previous firing so
	// identical input states fire at most once.
	lastKey string
	fired   bool
}

// Scheduler drives values to a fixpoint over an arena. It is single-threaded
// by design: determinism inside a pass matters more than parallelism, and the
// final state is order-independent anyway because merges commute.
type Scheduler struct {
	arena    *group.Arena
	bindings map[string]*binding
	// byInput indexes bindings by each of their input contact ids.
	byInput  map[string][]*binding
	queue    []string
	queued   map[string]bool
	maxSteps int
}

// New creates a scheduler over an arena with the default step budget.
func New(arena *group.Arena) *Scheduler {
	return &Scheduler{
		arena:    arena,
		bindings: make(map[string]*binding),
		byInput:  make(map[string][]*binding),
		queued:   make(map[string]bool),
		maxSteps: DefaultMaxSteps,
	}
}

// SetMaxSteps overrides the per-pass step budget.
func (s *Scheduler) SetMaxSteps(n int) {
	if n > 0 {
		s.maxSteps = n
	}
}

// Bind attaches a gadget definition to a primitive group. The port maps go
// from the definition's port names to arena contact ids; every id must
// resolve. Rebinding a group replaces its previous binding.
func (s *Scheduler) Bind(groupID string, def *gadget.Definition, inputs, outputs map[string]string) error {
	if def == nil {
		return fmt.Errorf("binding group %q: nil definition", groupID)
	}
	for port, cid := range inputs {
		if _, ok := s.arena.Contact(cid); !ok {
			return fmt.Errorf("binding group %q: input port %q contact %q not found", groupID, port, cid)
		}
	}
	for port, cid := range outputs {
		if _, ok := s.arena.Contact(cid); !ok {
			return fmt.Errorf("binding group %q: output port %q contact %q not found", groupID, port, cid)
		}
	}
	s.Unbind(groupID)

	b := &binding{
		groupID: groupID,
		def:     def,
		inputs:  inputs,
		outputs: outputs,
	}
	s.bindings[groupID] = b
	for _, cid := range inputs {
		s.byInput[cid] = append(s.byInput[cid], b)
	}
	return nil
}

// Unbind detaches the gadget bound to a group, if any.
func (s *Scheduler) Unbind(groupID string) {
	b, ok := s.bindings[groupID]
	if !ok {
		return
	}
	delete(s.bindings, groupID)
	for _, cid := range b.inputs {
		list := s.byInput[cid]
		for i, other := range list {
			if other == b {
				s.byInput[cid] = append(list[:i], list[i+1:]...)
				break
			}
		}
		if len(s.byInput[cid]) == 0 {
			delete(s.byInput, cid)
		}
	}
}

// MarkDirty queues a contact for processing in the next pass. Queueing an
// already-queued contact is a no-op.
func (s *Scheduler) MarkDirty(contactID string) {
	if s.queued[contactID] {
		return
	}
	s.queued[contactID] = true
	s.queue = append(s.queue, contactID)
}

// Propagate drains the dirty queue to quiescence. Contradictions and gadget
// errors are collected as faults while the rest of the pass continues; only
// context cancellation and step exhaustion abort, and both leave the network
// in a consistent (if unfinished) state.
func (s *Scheduler) Propagate(ctx context.Context) (*Result, error) {
	log := ctxlog.FromContext(ctx)
	res := &Result{}
	changed := make(map[string]bool)

	for len(s.queue) > 0 {
		if err := ctx.Err(); err != nil {
			s.clearQueue()
			return res, err
		}
		if res.Steps >= s.maxSteps {
			s.clearQueue()
			return res, fmt.Errorf("%d steps exhausted: %w", s.maxSteps, ErrNonConvergent)
		}
		res.Steps++

		id := s.queue[0]
		s.queue = s.queue[1:]
		delete(s.queued, id)

		src, ok := s.arena.Contact(id)
		if !ok {
			// Removed while queued.
			continue
		}

		for _, w := range s.arena.WiresTouching(id) {
			target, ok := w.TargetOf(id)
			if !ok {
				continue
			}
			s.deliver(res, changed, target, src.Content, "")
		}
		for _, b := range s.byInput[id] {
			s.fire(ctx, res, changed, b)
		}
	}

	for _, f := range res.Faults {
		log.Debug("Propagation fault.", "fault", f.String())
	}
	log.Debug("Propagation pass settled.", "steps", res.Steps, "changed", len(res.Changed), "faults", len(res.Faults))
	return res, nil
}

// deliver writes a value into a contact, recording change and faults.
func (s *Scheduler) deliver(res *Result, changed map[string]bool, contactID string, v lattice.Value, gadgetName string) {
	c, ok := s.arena.Contact(contactID)
	if !ok {
		return
	}
	didChange, err := c.Write(v)
	if err != nil {
		owner, _ := s.arena.ContactOwner(contactID)
		res.Faults = append(res.Faults, Fault{
			ContactID: contactID,
			GroupID:   owner,
			Gadget:    gadgetName,
			Err:       err,
		})
		return
	}
	if didChange {
		s.MarkDirty(contactID)
		if !changed[contactID] {
			changed[contactID] = true
			res.Changed = append(res.Changed, contactID)
		}
	}
}

// fire invokes a bound gadget if its activation is satisfied and its input
// state differs from the last firing.
func (s *Scheduler) fire(ctx context.Context, res *Result, changed map[string]bool, b *binding) {
	in := gadget.Inputs{}
	have := make(map[string]bool)
	for port, cid := range b.inputs {
		c, ok := s.arena.Contact(cid)
		if !ok {
			continue
		}
		if !c.Content.IsAbsent() {
			in[port] = c.Content
			have[port] = true
		}
	}
	if !b.def.Ready(have) {
		return
	}

	key := inputKey(in)
	if b.fired && key == b.lastKey {
		return
	}
	out, err := b.def.Body(ctx, in)
	b.fired = true
	b.lastKey = key
	if err != nil {
		res.Faults = append(res.Faults, Fault{
			GroupID: b.groupID,
			Gadget:  b.def.Name,
			Err:     err,
		})
		return
	}

	for _, port := range sortedPorts(out) {
		cid, ok := b.outputs[port]
		if !ok {
			res.Faults = append(res.Faults, Fault{
				GroupID: b.groupID,
				Gadget:  b.def.Name,
				Err:     fmt.Errorf("body produced undeclared output port %q", port),
			})
			continue
		}
		s.deliver(res, changed, cid, out[port], b.def.Name)
	}
}

func (s *Scheduler) clearQueue() {
	s.queue = nil
	s.queued = make(map[string]bool)
}

// inputKey fingerprints a full input state.
func inputKey(in gadget.Inputs) string {
	ports := make([]string, 0, len(in))
	for port := range in {
		ports = append(ports, port)
	}
	sort.Strings(ports)
	key := ""
	for _, port := range ports {
		key += port + "=" + in[port].Fingerprint() + ";"
	}
	return key
}

func sortedPorts(out gadget.Outputs) []string {
	ports := make([]string, 0, len(out))
	for port := range out {
		ports = append(ports, port)
	}
	sort.Strings(ports)
	return ports
}
