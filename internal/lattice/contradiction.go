package lattice

import (
	"errors"
	"fmt"
)

// ContradictionError is returned when two values cannot be joined: unequal
// scalars, incompatible kinds, or a Shrink merge whose intersection is empty.
// Both operands are carried for diagnostics.
type ContradictionError struct {
	Left  Value
	Right Value
}

func (e *ContradictionError) Error() string {
	return fmt.Sprintf("contradiction: cannot merge %s with %s", e.Left, e.Right)
}

// IsContradiction reports whether err is (or wraps) a ContradictionError.
func IsContradiction(err error) bool {
	var ce *ContradictionError
	return errors.As(err, &ce)
}

func contradiction(a, b Value) error {
	return &ContradictionError{Left: a, Right: b}
}
