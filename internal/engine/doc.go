// Package engine exposes the public mutation and query surface over one
// propagation network: group registration, contact and wire edits, gadget
// instantiation, change subscriptions, and snapshot export/import. Every
// mutation settles the network before returning.
package engine
