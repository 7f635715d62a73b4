package gadget

import (
	"fmt"
	"log/slog"
	"sort"
)

// Registry maps gadget variant names to their definitions. It is populated at
// startup by compiled-in Modules and read-only afterwards; the engine looks
// variants up when instantiating a primitive group.
type Registry struct {
	defs map[string]*Definition
}

// NewRegistry creates an empty registry.
func NewRegistry() *Registry {
	return &Registry{defs: make(map[string]*Definition)}
}

// Register adds a definition. Registering the same name twice is a programmer
// error and panics, as is a definition without a body.
func (r *Registry) Register(def *Definition) {
	if def.Name == "" {
		panic("gadget: definition registered without a name")
	}
	if def.Body == nil {
		panic(fmt.Sprintf("gadget: definition %q registered without a body", def.Name))
	}
	if _, exists := r.defs[def.Name]; exists {
		panic(fmt.Sprintf("gadget: definition %q already registered", def.Name))
	}
	slog.Debug("Registering gadget definition.", "name", def.Name, "category", def.Category)
	r.defs[def.Name] = def
}

// Lookup returns the definition for a variant name.
func (r *Registry) Lookup(name string) (*Definition, bool) {
	def, ok := r.defs[name]
	return def, ok
}

// Names returns all registered variant names, sorted.
func (r *Registry) Names() []string {
	names := make([]string, 0, len(r.defs))
	for name := range r.defs {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// Module is the interface gadget library packages implement to be compiled
// into the engine.
type Module interface {
	Register(r *Registry)
}
