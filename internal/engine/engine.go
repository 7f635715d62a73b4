package engine

import (
	"context"
	"fmt"
	"sync"

	"github.com/google/uuid"

	"github.com/Bassline-Org/bassline-sub010/internal/contact"
	"github.com/Bassline-Org/bassline-sub010/internal/ctxlog"
	"github.com/Bassline-Org/bassline-sub010/internal/gadget"
	"github.com/Bassline-Org/bassline-sub010/internal/group"
	"github.com/Bassline-Org/bassline-sub010/internal/lattice"
	"github.com/Bassline-Org/bassline-sub010/internal/scheduler"
	"github.com/Bassline-Org/bassline-sub010/internal/topology"
	"github.com/Bassline-Org/bassline-sub010/internal/wire"
)

// Event is delivered to subscribers after a propagation pass touched their
// group. Changed lists the affected contact ids visible to that group (its
// own and those of descendants); Faults carries the contradictions and gadget
// errors the pass absorbed in that scope.
type Event struct {
	GroupID string
	Changed []string
	Faults  []scheduler.Fault
}

// SubscriberFunc receives change events. It is called synchronously at the
// end of a pass, on the caller's goroutine; long handlers delay the mutation
// that triggered them.
type SubscriberFunc func(Event)

type subscription struct {
	groupID string
	fn      SubscriberFunc
}

// Engine is the public mutation surface over one arena. Every mutation that
// can move values runs a propagation pass to quiescence before returning, so
// callers always observe a settled network. All methods are safe for
// concurrent use; internally everything serializes through one mutex, which
// is the concurrency model: a single logical core loop.
type Engine struct {
	mu       sync.Mutex
	arena    *group.Arena
	registry *gadget.Registry
	sched    *scheduler.Scheduler

	subs      map[int]subscription
	nextToken int
}

// New creates an engine over a fresh arena, resolving gadget variants against
// the given registry.
func New(registry *gadget.Registry) *Engine {
	arena := group.NewArena()
	return &Engine{
		arena:    arena,
		registry: registry,
		sched:    scheduler.New(arena),
		subs:     make(map[int]subscription),
	}
}

// SetMaxSteps overrides the scheduler's per-pass step budget.
func (e *Engine) SetMaxSteps(n int) {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.sched.SetMaxSteps(n)
}

// RegisterGroup materializes a group spec (recursively, including primitive
// gadget instances), seeds its contacts, and propagates to convergence.
// Returns the id of the created group.
func (e *Engine) RegisterGroup(ctx context.Context, spec *topology.GroupSpec) (string, error) {
	e.mu.Lock()
	defer e.mu.Unlock()

	id, err := e.materialize(ctx, "", spec)
	if err != nil {
		return "", err
	}
	if err := e.arena.Validate(id); err != nil {
		return "", err
	}
	if _, err := e.propagate(ctx); err != nil {
		return "", err
	}
	ctxlog.FromContext(ctx).Info("Registered group.", "group_id", id)
	return id, nil
}

// AddContact creates one contact in an existing group and, if seeded,
// propagates the seed. Returns the contact id.
func (e *Engine) AddContact(ctx context.Context, groupID string, spec *topology.ContactSpec) (string, error) {
	e.mu.Lock()
	defer e.mu.Unlock()

	id, err := e.addContact(groupID, spec)
	if err != nil {
		return "", err
	}
	if !spec.Value.IsAbsent() {
		e.sched.MarkDirty(id)
		if _, err := e.propagate(ctx); err != nil {
			return "", err
		}
	}
	return id, nil
}

// UpdateContact writes a value into a contact through its blend mode and
// propagates the consequences. A merge contradiction on the direct write is
// returned to the caller (the contact keeps its prior value); contradictions
// further downstream surface as faults on subscriber events instead.
func (e *Engine) UpdateContact(ctx context.Context, contactID string, v lattice.Value) error {
	e.mu.Lock()
	defer e.mu.Unlock()

	c, ok := e.arena.Contact(contactID)
	if !ok {
		return fmt.Errorf("contact %q not found", contactID)
	}
	changed, err := c.Write(v)
	if err != nil {
		return err
	}
	if !changed {
		return nil
	}
	e.sched.MarkDirty(contactID)
	if _, err := e.propagate(ctx, contactID); err != nil {
		return err
	}
	return nil
}

// Connect creates a wire between two contacts reachable from the group and
// immediately synchronizes the endpoints. Returns the wire id.
func (e *Engine) Connect(ctx context.Context, groupID, fromID, toID string, kind wire.Kind) (string, error) {
	e.mu.Lock()
	defer e.mu.Unlock()

	id := uuid.NewString()
	w := &wire.Wire{ID: id, From: fromID, To: toID, Kind: kind}
	if err := e.arena.AddWire(groupID, w); err != nil {
		return "", err
	}
	e.sched.MarkDirty(fromID)
	if kind == wire.Bidirectional {
		e.sched.MarkDirty(toID)
	}
	if _, err := e.propagate(ctx); err != nil {
		return "", err
	}
	return id, nil
}

// RemoveContact deletes a contact, cascading to its wires and boundary
// references. Ports of primitive gadget instances cannot be removed.
func (e *Engine) RemoveContact(ctx context.Context, contactID string) error {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.arena.RemoveContact(contactID)
}

// RemoveWire deletes a wire. Values already propagated stay where they are.
func (e *Engine) RemoveWire(ctx context.Context, wireID string) error {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.arena.RemoveWire(wireID)
}

// GetState reports the current contents of one group: its contacts with
// values, its wires, subgroup ids and boundary. The result is a snapshot
// copy, safe to hold across later mutations.
func (e *Engine) GetState(groupID string) (*group.GroupRecord, error) {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.arena.Record(groupID)
}

// CreatePrimitiveGadget instantiates a registered gadget variant as an opaque
// subgroup of parentID, realizing its ports as boundary contacts and binding
// its body to the scheduler. Returns the new group's id.
func (e *Engine) CreatePrimitiveGadget(ctx context.Context, parentID, variant string) (string, error) {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.createPrimitive(parentID, uuid.NewString(), variant)
}

// Subscribe registers a callback for change events scoped to a group. Events
// fire for changes in the group itself and in any of its descendants. The
// returned token cancels via Unsubscribe.
func (e *Engine) Subscribe(groupID string, fn SubscriberFunc) int {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.nextToken++
	e.subs[e.nextToken] = subscription{groupID: groupID, fn: fn}
	return e.nextToken
}

// Unsubscribe cancels a subscription. Unknown tokens are ignored.
func (e *Engine) Unsubscribe(token int) {
	e.mu.Lock()
	defer e.mu.Unlock()
	delete(e.subs, token)
}

// Flatten exports the engine's root group tree as a snapshot. The engine
// must hold exactly one root.
func (e *Engine) Flatten() (group.Snapshot, error) {
	e.mu.Lock()
	defer e.mu.Unlock()

	roots := e.arena.Roots()
	if len(roots) != 1 {
		return nil, fmt.Errorf("flatten needs exactly one root group, have %d", len(roots))
	}
	return e.arena.Flatten(roots[0])
}

// Import hydrates a snapshot into the engine, re-resolving every primitive
// group against the gadget registry and settling the network. Unknown
// primitive variants fail the import.
func (e *Engine) Import(ctx context.Context, snap group.Snapshot) error {
	e.mu.Lock()
	defer e.mu.Unlock()

	rootID, err := e.arena.Hydrate(snap)
	if err != nil {
		return err
	}
	for id, rec := range snap {
		if rec.PrimitiveID == "" {
			continue
		}
		if err := e.bindPrimitive(id, rec.PrimitiveID); err != nil {
			return fmt.Errorf("importing group %q: %w", id, err)
		}
	}
	for _, rec := range snap {
		for _, cr := range rec.Contacts {
			if !cr.Content.IsAbsent() {
				e.sched.MarkDirty(cr.ID)
			}
		}
	}
	if _, err := e.propagate(ctx); err != nil {
		return err
	}
	ctxlog.FromContext(ctx).Info("Imported snapshot.", "root_group_id", rootID, "groups", len(snap))
	return nil
}

// materialize recursively builds a group spec. Callers hold the mutex.
func (e *Engine) materialize(ctx context.Context, parentID string, spec *topology.GroupSpec) (string, error) {
	id := spec.ID
	if id == "" {
		id = uuid.NewString()
	}

	if spec.PrimitiveID != "" {
		if len(spec.Contacts) > 0 || len(spec.Wires) > 0 || len(spec.Subgroups) > 0 || len(spec.Boundary) > 0 {
			return "", fmt.Errorf("group %q instantiates %q and must not declare internals", id, spec.PrimitiveID)
		}
		return e.createPrimitive(parentID, id, spec.PrimitiveID)
	}

	if _, err := e.arena.CreateGroup(parentID, id, ""); err != nil {
		return "", err
	}
	for _, cs := range spec.Contacts {
		cid, err := e.addContact(id, cs)
		if err != nil {
			return "", err
		}
		if !cs.Value.IsAbsent() {
			e.sched.MarkDirty(cid)
		}
	}
	for _, sub := range spec.Subgroups {
		if _, err := e.materialize(ctx, id, sub); err != nil {
			return "", err
		}
	}
	for _, bid := range spec.Boundary {
		if err := e.arena.ExposeBoundary(id, bid); err != nil {
			return "", err
		}
	}
	for _, ws := range spec.Wires {
		wid := ws.ID
		if wid == "" {
			wid = uuid.NewString()
		}
		kind, err := wire.ParseKind(ws.Kind)
		if err != nil {
			return "", fmt.Errorf("group %q wire %q: %w", id, wid, err)
		}
		if err := e.arena.AddWire(id, &wire.Wire{ID: wid, From: ws.From, To: ws.To, Kind: kind}); err != nil {
			return "", err
		}
	}
	return id, nil
}

func (e *Engine) addContact(groupID string, spec *topology.ContactSpec) (string, error) {
	id := spec.ID
	if id == "" {
		id = uuid.NewString()
	}
	blend, err := contact.ParseBlendMode(spec.Blend)
	if err != nil {
		return "", fmt.Errorf("contact %q: %w", id, err)
	}
	dir, err := contact.ParseDirection(spec.Direction)
	if err != nil {
		return "", fmt.Errorf("contact %q: %w", id, err)
	}
	c := &contact.Contact{
		ID:        id,
		Content:   spec.Value,
		Blend:     blend,
		Boundary:  spec.Boundary,
		Direction: dir,
	}
	if err := e.arena.AddContact(groupID, c); err != nil {
		return "", err
	}
	return id, nil
}

// createPrimitive builds the opaque group for a gadget variant: one boundary
// contact per port, named <groupID>:<port>, then a scheduler binding.
func (e *Engine) createPrimitive(parentID, id, variant string) (string, error) {
	def, ok := e.registry.Lookup(variant)
	if !ok {
		return "", fmt.Errorf("unknown gadget variant %q", variant)
	}
	if _, err := e.arena.CreateGroup(parentID, id, variant); err != nil {
		return "", err
	}
	for _, port := range def.Inputs {
		c := &contact.Contact{
			ID: id + ":" + port,
			// Ports replace rather than merge: a recomputed sum must be able
			// to go down as well as up.
			Blend:     contact.BlendAcceptLast,
			Boundary:  true,
			Direction: contact.DirectionInput,
		}
		if err := e.arena.AddContact(id, c); err != nil {
			return "", err
		}
	}
	for _, port := range def.Outputs {
		c := &contact.Contact{
			ID:        id + ":" + port,
			Blend:     contact.BlendAcceptLast,
			Boundary:  true,
			Direction: contact.DirectionOutput,
		}
		if err := e.arena.AddContact(id, c); err != nil {
			return "", err
		}
	}
	return id, e.bindPrimitive(id, variant)
}

// bindPrimitive wires an existing primitive group's port contacts to its
// definition in the scheduler. Used at creation and after Import.
func (e *Engine) bindPrimitive(id, variant string) error {
	def, ok := e.registry.Lookup(variant)
	if !ok {
		return fmt.Errorf("unknown gadget variant %q", variant)
	}
	inputs := make(map[string]string, len(def.Inputs))
	for _, port := range def.Inputs {
		inputs[port] = id + ":" + port
	}
	outputs := make(map[string]string, len(def.Outputs))
	for _, port := range def.Outputs {
		outputs[port] = id + ":" + port
	}
	return e.sched.Bind(id, def, inputs, outputs)
}

// propagate runs a pass and fans the result out to subscribers. Callers hold
// the mutex. extraChanged covers direct writes made before the pass, which
// the scheduler itself never sees change.
func (e *Engine) propagate(ctx context.Context, extraChanged ...string) (*scheduler.Result, error) {
	res, err := e.sched.Propagate(ctx)
	if err != nil {
		return res, err
	}
	for _, cid := range extraChanged {
		if !containsString(res.Changed, cid) {
			res.Changed = append([]string{cid}, res.Changed...)
		}
	}
	e.notify(res)
	return res, nil
}

// notify delivers one event per subscribed group that saw changes or faults.
// A change is visible to the contact's owning group and every ancestor.
func (e *Engine) notify(res *scheduler.Result) {
	if len(e.subs) == 0 || (len(res.Changed) == 0 && len(res.Faults) == 0) {
		return
	}
	changedBy := make(map[string][]string)
	for _, cid := range res.Changed {
		owner, ok := e.arena.ContactOwner(cid)
		if !ok {
			continue
		}
		changedBy[owner] = append(changedBy[owner], cid)
		for _, anc := range e.arena.Ancestors(owner) {
			changedBy[anc] = append(changedBy[anc], cid)
		}
	}
	faultsBy := make(map[string][]scheduler.Fault)
	for _, f := range res.Faults {
		if f.GroupID == "" {
			continue
		}
		faultsBy[f.GroupID] = append(faultsBy[f.GroupID], f)
		for _, anc := range e.arena.Ancestors(f.GroupID) {
			faultsBy[anc] = append(faultsBy[anc], f)
		}
	}
	for _, sub := range e.subs {
		changed := changedBy[sub.groupID]
		faults := faultsBy[sub.groupID]
		if len(changed) == 0 && len(faults) == 0 {
			continue
		}
		sub.fn(Event{GroupID: sub.groupID, Changed: changed, Faults: faults})
	}
}

func containsString(list []string, s string) bool {
	for _, v := range list {
		if v == s {
			return true
		}
	}
	return false
}
