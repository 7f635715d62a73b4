// Package group implements the hierarchy layer of the network: groups that
// own contacts and wires, nested by id inside a flat arena.
//
// The arena is the single source of truth for ownership. Boundary aliasing is
// the one cross-group mechanism: a group may re-export a direct subgroup's
// boundary contact by listing its id, and every reference anywhere resolves to
// the same authoritative cell. Flatten and Hydrate round-trip a group tree
// through a serializable snapshot.
package group
