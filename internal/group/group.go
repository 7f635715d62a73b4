package group

import (
	"fmt"
	"sort"

	"github.com/Bassline-Org/bassline-sub010/internal/contact"
	"github.com/Bassline-Org/bassline-sub010/internal/wire"
)

// Group is a namespace and unit of ownership: its contacts and wires are
// exclusively its own. Nested groups are referenced by id through the arena,
// never by embedded pointers, so a tree can be serialized, flattened and
// re-parented without reference cycles.
type Group struct {
	ID                 string
	Contacts           map[string]*contact.Contact
	Wires              map[string]*wire.Wire
	SubgroupIDs        []string
	BoundaryContactIDs []string
	// PrimitiveID marks the group as an opaque instantiation of a registered
	// gadget; its internals are not end-user-editable.
	PrimitiveID string
}

// Arena is the flat id-indexed store for a forest of group trees. Contact and
// wire ids are unique arena-wide, which is what makes boundary aliasing work:
// a parent group references a child's contact by id and resolves to the same
// authoritative cell.
type Arena struct {
	groups       map[string]*Group
	parents      map[string]string
	contactOwner map[string]string
	wireOwner    map[string]string
	// wiresAt indexes every wire by both endpoints.
	wiresAt map[string][]string
}

// NewArena creates an empty arena.
func NewArena() *Arena {
	return &Arena{
		groups:       make(map[string]*Group),
		parents:      make(map[string]string),
		contactOwner: make(map[string]string),
		wireOwner:    make(map[string]string),
		wiresAt:      make(map[string][]string),
	}
}

// CreateGroup registers a new empty group. An empty parentID creates a root.
func (a *Arena) CreateGroup(parentID, id, primitiveID string) (*Group, error) {
	if id == "" {
		return nil, fmt.Errorf("group id must not be empty")
	}
	if _, exists := a.groups[id]; exists {
		return nil, fmt.Errorf("duplicate group id %q", id)
	}
	var parent *Group
	if parentID != "" {
		var ok bool
		parent, ok = a.groups[parentID]
		if !ok {
			return nil, fmt.Errorf("parent group %q not found", parentID)
		}
	}

	g := &Group{
		ID:          id,
		Contacts:    make(map[string]*contact.Contact),
		Wires:       make(map[string]*wire.Wire),
		PrimitiveID: primitiveID,
	}
	a.groups[id] = g
	if parent != nil {
		a.parents[id] = parentID
		parent.SubgroupIDs = append(parent.SubgroupIDs, id)
	}
	return g, nil
}

// AddContact places a contact into a group. Contact ids are unique across
// the whole arena, not just the group.
func (a *Arena) AddContact(groupID string, c *contact.Contact) error {
	g, ok := a.groups[groupID]
	if !ok {
		return fmt.Errorf("group %q not found", groupID)
	}
	if c.ID == "" {
		return fmt.Errorf("contact id must not be empty")
	}
	if owner, exists := a.contactOwner[c.ID]; exists {
		return fmt.Errorf("duplicate contact id %q (already owned by group %q)", c.ID, owner)
	}
	g.Contacts[c.ID] = c
	a.contactOwner[c.ID] = groupID
	if c.Boundary {
		g.BoundaryContactIDs = append(g.BoundaryContactIDs, c.ID)
	}
	return nil
}

// ExposeBoundary re-exports a contact on a group's interface. The contact
// must be owned by the group itself or already exposed on a direct subgroup.
func (a *Arena) ExposeBoundary(groupID, contactID string) error {
	g, ok := a.groups[groupID]
	if !ok {
		return fmt.Errorf("group %q not found", groupID)
	}
	if !a.reachable(g, contactID) {
		return fmt.Errorf("contact %q is not reachable from group %q", contactID, groupID)
	}
	for _, id := range g.BoundaryContactIDs {
		if id == contactID {
			return nil
		}
	}
	g.BoundaryContactIDs = append(g.BoundaryContactIDs, contactID)
	if c, ok := g.Contacts[contactID]; ok {
		c.Boundary = true
	}
	return nil
}

// AddWire connects two contacts within a group. Both endpoints must resolve
// to a contact the group can reach: one it owns, or a boundary contact of a
// direct subgroup. Dangling endpoints fail here, synchronously, never later.
func (a *Arena) AddWire(groupID string, w *wire.Wire) error {
	g, ok := a.groups[groupID]
	if !ok {
		return fmt.Errorf("group %q not found", groupID)
	}
	if w.ID == "" {
		return fmt.Errorf("wire id must not be empty")
	}
	if owner, exists := a.wireOwner[w.ID]; exists {
		return fmt.Errorf("duplicate wire id %q (already owned by group %q)", w.ID, owner)
	}
	if w.From == w.To {
		return fmt.Errorf("wire %q connects contact %q to itself", w.ID, w.From)
	}
	for _, end := range []string{w.From, w.To} {
		if _, ok := a.contactOwner[end]; !ok {
			return fmt.Errorf("wire %q endpoint %q does not resolve to a contact", w.ID, end)
		}
		if !a.reachable(g, end) {
			return fmt.Errorf("wire %q endpoint %q is not reachable from group %q", w.ID, end, groupID)
		}
	}

	g.Wires[w.ID] = w
	a.wireOwner[w.ID] = groupID
	a.wiresAt[w.From] = append(a.wiresAt[w.From], w.ID)
	a.wiresAt[w.To] = append(a.wiresAt[w.To], w.ID)
	return nil
}

// reachable reports whether a contact id is addressable from inside g:
// either owned by g or exposed on a direct subgroup's boundary.
func (a *Arena) reachable(g *Group, contactID string) bool {
	if _, ok := g.Contacts[contactID]; ok {
		return true
	}
	for _, subID := range g.SubgroupIDs {
		sub, ok := a.groups[subID]
		if !ok {
			continue
		}
		for _, id := range sub.BoundaryContactIDs {
			if id == contactID {
				return true
			}
		}
	}
	return false
}

// Group looks a group up by id.
func (a *Arena) Group(id string) (*Group, bool) {
	g, ok := a.groups[id]
	return g, ok
}

// Contact resolves a contact id to its single authoritative cell, regardless
// of which group's perspective the id was taken from.
func (a *Arena) Contact(id string) (*contact.Contact, bool) {
	owner, ok := a.contactOwner[id]
	if !ok {
		return nil, false
	}
	return a.groups[owner].Contacts[id], true
}

// ContactOwner returns the id of the group owning a contact.
func (a *Arena) ContactOwner(id string) (string, bool) {
	owner, ok := a.contactOwner[id]
	return owner, ok
}

// Wire looks a wire up by id.
func (a *Arena) Wire(id string) (*wire.Wire, bool) {
	owner, ok := a.wireOwner[id]
	if !ok {
		return nil, false
	}
	return a.groups[owner].Wires[id], true
}

// Parent returns the parent group id, and false for roots.
func (a *Arena) Parent(groupID string) (string, bool) {
	p, ok := a.parents[groupID]
	return p, ok
}

// Ancestors returns the chain of group ids above groupID, nearest first.
func (a *Arena) Ancestors(groupID string) []string {
	var out []string
	for {
		p, ok := a.parents[groupID]
		if !ok {
			return out
		}
		out = append(out, p)
		groupID = p
	}
}

// WiresTouching returns every wire with the contact as an endpoint.
func (a *Arena) WiresTouching(contactID string) []*wire.Wire {
	ids := a.wiresAt[contactID]
	out := make([]*wire.Wire, 0, len(ids))
	for _, id := range ids {
		if w, ok := a.Wire(id); ok {
			out = append(out, w)
		}
	}
	return out
}

// RemoveWire disconnects and forgets a wire.
func (a *Arena) RemoveWire(wireID string) error {
	owner, ok := a.wireOwner[wireID]
	if !ok {
		return fmt.Errorf("wire %q not found", wireID)
	}
	w := a.groups[owner].Wires[wireID]
	delete(a.groups[owner].Wires, wireID)
	delete(a.wireOwner, wireID)
	a.wiresAt[w.From] = removeString(a.wiresAt[w.From], wireID)
	a.wiresAt[w.To] = removeString(a.wiresAt[w.To], wireID)
	return nil
}

// RemoveContact removes a cell, every wire touching it, and any boundary
// references to it. Contacts of primitive groups are gadget ports and cannot
// be removed individually.
func (a *Arena) RemoveContact(contactID string) error {
	ownerID, ok := a.contactOwner[contactID]
	if !ok {
		return fmt.Errorf("contact %q not found", contactID)
	}
	owner := a.groups[ownerID]
	if owner.PrimitiveID != "" {
		return fmt.Errorf("contact %q is a port of primitive group %q and cannot be removed", contactID, ownerID)
	}

	for _, w := range a.WiresTouching(contactID) {
		if err := a.RemoveWire(w.ID); err != nil {
			return err
		}
	}
	delete(owner.Contacts, contactID)
	delete(a.contactOwner, contactID)
	delete(a.wiresAt, contactID)

	owner.BoundaryContactIDs = removeString(owner.BoundaryContactIDs, contactID)
	for _, anc := range a.Ancestors(ownerID) {
		g := a.groups[anc]
		g.BoundaryContactIDs = removeString(g.BoundaryContactIDs, contactID)
	}
	return nil
}

// Roots returns the ids of all groups without a parent, sorted.
func (a *Arena) Roots() []string {
	var out []string
	for id := range a.groups {
		if _, ok := a.parents[id]; !ok {
			out = append(out, id)
		}
	}
	sort.Strings(out)
	return out
}

// Validate checks the boundary invariant for one group: every boundary id
// must resolve to an owned contact or to a boundary contact of exactly one
// direct subgroup.
func (a *Arena) Validate(groupID string) error {
	g, ok := a.groups[groupID]
	if !ok {
		return fmt.Errorf("group %q not found", groupID)
	}
	for _, id := range g.BoundaryContactIDs {
		if _, owned := g.Contacts[id]; owned {
			continue
		}
		exposing := 0
		for _, subID := range g.SubgroupIDs {
			sub := a.groups[subID]
			for _, bid := range sub.BoundaryContactIDs {
				if bid == id {
					exposing++
					break
				}
			}
		}
		if exposing != 1 {
			return fmt.Errorf("group %q boundary contact %q is exposed by %d direct subgroups, want exactly 1", groupID, id, exposing)
		}
	}
	for _, subID := range g.SubgroupIDs {
		if err := a.Validate(subID); err != nil {
			return err
		}
	}
	return nil
}

func removeString(list []string, s string) []string {
	out := list[:0]
	for _, v := range list {
		if v != s {
			out = append(out, v)
		}
	}
	return out
}
