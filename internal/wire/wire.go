// Package wire defines the propagation link between two contacts.
package wire

import "fmt"

// Kind selects the delivery directions of a wire.
type Kind uint8

const (
	// Bidirectional wires deliver both ways; the scheduler's value-equality
	// suppression is what keeps them from ping-ponging forever.
	Bidirectional Kind = iota
	// Directed wires deliver from -> to only.
	Directed
)

func (k Kind) String() string {
	switch k {
	case Bidirectional:
		return "bidirectional"
	case Directed:
		return "directed"
	}
	return fmt.Sprintf("wireKind(%d)", uint8(k))
}

// ParseKind maps a wire-format name to a Kind. The empty string selects the
// default, Bidirectional.
func ParseKind(name string) (Kind, error) {
	switch name {
	case "", "bidirectional":
		return Bidirectional, nil
	case "directed":
		return Directed, nil
	}
	return Bidirectional, fmt.Errorf("unknown wire kind %q", name)
}

// Wire links two contact ids. Both endpoints must resolve within the wire's
// owning group (directly owned contacts or boundary contacts of direct
// subgroups); the arena validates this at connect time.
type Wire struct {
	ID   string
	From string
	To   string
	Kind Kind
}

// TargetOf returns the delivery target when the given endpoint is dirty, and
// false if this wire does not deliver from that endpoint.
func (w *Wire) TargetOf(source string) (string, bool) {
	switch {
	case source == w.From:
		return w.To, true
	case source == w.To && w.Kind == Bidirectional:
		return w.From, true
	}
	return "", false
}

// Touches reports whether the contact id is one of the wire's endpoints.
func (w *Wire) Touches(id string) bool {
	return w.From == id || w.To == id
}
