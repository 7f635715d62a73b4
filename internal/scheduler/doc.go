// Package scheduler runs values to a fixpoint over a group arena.
//
// It keeps a FIFO of dirty contacts. Processing one contact pushes its value
// across every touching wire and fires any gadget listening on it; a write
// that changes nothing re-queues nothing, which is the sole termination
// mechanism for bidirectional wires. Monotone networks reach the same final
// state regardless of processing order because the underlying merges commute;
// non-monotone networks are cut off by a step budget.
package scheduler
