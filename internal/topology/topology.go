// Package topology holds the plain, already-resolved description structures
// used to materialize a group tree. The engine consumes these objects as-is;
// parsing any authoring format into them is the job of an external loader
// such as the hcl package.
package topology

import "github.com/Bassline-Org/bassline-sub010/internal/lattice"

// ContactSpec describes one cell to create.
type ContactSpec struct {
	// ID is optional; the engine generates one when empty.
	ID string
	// Blend is "merge" (default) or "acceptLast".
	Blend string
	// Value optionally seeds the contact. Seeded contacts start dirty so the
	// first propagation pass pushes them through the network.
	Value lattice.Value
	// Boundary exposes the contact on the owning group's interface.
	Boundary bool
	// Direction is "input", "output" or empty, meaningful only with Boundary.
	Direction string
}

// WireSpec describes one link to create. From and To name contact ids
// resolvable within the owning group.
type WireSpec struct {
	// ID is optional; the engine generates one when empty.
	ID string
	// From and To are contact ids.
	From string
	To   string
	// Kind is "bidirectional" (default) or "directed".
	Kind string
}

// GroupSpec describes a group and, recursively, everything inside it.
//
// A spec with PrimitiveID set instantiates a registered gadget: its ports are
// realized as boundary contacts and its internals are opaque, so such a spec
// must not declare contacts, wires, subgroups or boundary ids of its own.
type GroupSpec struct {
	// ID is optional; the engine generates one when empty.
	ID          string
	Contacts    []*ContactSpec
	Wires       []*WireSpec
	Subgroups   []*GroupSpec
	Boundary    []string
	PrimitiveID string
}
