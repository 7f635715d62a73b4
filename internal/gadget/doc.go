// Package gadget defines computation nodes and the registry that maps
// variant names to their behavior.
//
// A gadget is a named unit with input/output ports, an activation predicate
// and a body. The registry is the string-keyed dispatch table: a primitive
// group carries only a variant name, and the engine resolves it to a closed
// {activation, body} record once at instantiation time rather than per call.
package gadget
