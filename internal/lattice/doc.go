// Package lattice implements the mergeable value algebra the propagation
// engine converges over.
//
// A Value is either a cty-backed scalar, a legacy untagged collection, or one
// of six tagged collections: GrowSet, ShrinkSet, GrowList, ShrinkList,
// GrowMap, ShrinkMap. Merge is the join of the lattice: commutative,
// idempotent, associative for tagged collections, with a single failure mode
// (ContradictionError) for values that cannot be joined. Those properties are
// what let the scheduler deliver updates in any order and still reach the
// same fixpoint.
package lattice
