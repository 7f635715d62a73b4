// Package app wires the engine, gadget library, topology loader and logger
// into a runnable application.
package app
