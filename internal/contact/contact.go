// Package contact defines the cell of the propagation network: a named
// holder of a lattice value with a per-cell policy for absorbing writes.
package contact

import (
	"fmt"

	"github.com/Bassline-Org/bassline-sub010/internal/lattice"
)

// BlendMode is the policy for combining an incoming value with the existing
// content of a contact.
type BlendMode uint8

const (
	// BlendMerge joins the incoming value with the existing one via the
	// lattice merge. This is the default for authored cells.
	BlendMerge BlendMode = iota
	// BlendAcceptLast unconditionally replaces the existing value
	// (last-writer-wins; used for interactive widgets like sliders).
	BlendAcceptLast
)

func (m BlendMode) String() string {
	switch m {
	case BlendMerge:
		return "merge"
	case BlendAcceptLast:
		return "acceptLast"
	}
	return fmt.Sprintf("blendMode(%d)", uint8(m))
}

// ParseBlendMode maps a wire-format name to a BlendMode. The empty string
// selects the default, BlendMerge.
func ParseBlendMode(name string) (BlendMode, error) {
	switch name {
	case "", "merge":
		return BlendMerge, nil
	case "acceptLast", "accept_last":
		return BlendAcceptLast, nil
	}
	return BlendMerge, fmt.Errorf("unknown blend mode %q", name)
}

// Direction marks which way a boundary contact faces.
type Direction uint8

const (
	DirectionNone Direction = iota
	DirectionInput
	DirectionOutput
)

func (d Direction) String() string {
	switch d {
	case DirectionInput:
		return "input"
	case DirectionOutput:
		return "output"
	case DirectionNone:
		return ""
	}
	return fmt.Sprintf("direction(%d)", uint8(d))
}

// ParseDirection maps a wire-format name to a Direction.
func ParseDirection(name string) (Direction, error) {
	switch name {
	case "":
		return DirectionNone, nil
	case "input":
		return DirectionInput, nil
	case "output":
		return DirectionOutput, nil
	}
	return DirectionNone, fmt.Errorf("unknown boundary direction %q", name)
}

// Contact is a single cell. Content starts absent and transitions to set on
// the first write; every later write goes through the blend mode. A contact
// is owned by exactly one group and is never shared by pointer across groups:
// cross-group visibility happens only via boundary aliasing in the arena.
type Contact struct {
	ID        string
	Content   lattice.Value
	Blend     BlendMode
	Boundary  bool
	Direction Direction
}

// Write absorbs an incoming value per the blend mode. It reports whether the
// content actually changed; delivering a value that changes nothing returns
// false so the scheduler can suppress re-enqueueing. On a merge contradiction
// the previous content is retained and the error returned: contacts are
// fail-safe and never hold a contradiction state.
func (c *Contact) Write(v lattice.Value) (bool, error) {
	if v.IsAbsent() {
		return false, nil
	}
	switch c.Blend {
	case BlendAcceptLast:
		if c.Content.Equal(v) {
			return false, nil
		}
		c.Content = v
		return true, nil

	case BlendMerge:
		merged, err := lattice.Merge(c.Content, v)
		if err != nil {
			return false, fmt.Errorf("writing contact %s: %w", c.ID, err)
		}
		if merged.Equal(c.Content) {
			return false, nil
		}
		c.Content = merged
		return true, nil
	}
	return false, fmt.Errorf("contact %s has invalid blend mode %d", c.ID, c.Blend)
}

// Clone returns an independent copy. Lattice values are immutable, so a
// shallow copy of the struct is a deep copy in practice.
func (c *Contact) Clone() *Contact {
	dup := *c
	return &dup
}
