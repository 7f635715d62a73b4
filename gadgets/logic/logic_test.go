package logic

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Bassline-Org/bassline-sub010/internal/gadget"
	"github.com/Bassline-Org/bassline-sub010/internal/lattice"
)

func TestLogicVariants(t *testing.T) {
	r := gadget.NewRegistry()
	(&Module{}).Register(r)

	run := func(t *testing.T, name string, in gadget.Inputs) lattice.Value {
		t.Helper()
		def, ok := r.Lookup(name)
		require.True(t, ok)
		out, err := def.Body(context.Background(), in)
		require.NoError(t, err)
		return out["out"]
	}

	t.Run("and", func(t *testing.T) {
		got := run(t, "and", gadget.Inputs{"a": lattice.BoolVal(true), "b": lattice.BoolVal(false)})
		assert.True(t, got.Equal(lattice.BoolVal(false)))
	})

	t.Run("or", func(t *testing.T) {
		got := run(t, "or", gadget.Inputs{"a": lattice.BoolVal(true), "b": lattice.BoolVal(false)})
		assert.True(t, got.Equal(lattice.BoolVal(true)))
	})

	t.Run("not", func(t *testing.T) {
		got := run(t, "not", gadget.Inputs{"in": lattice.BoolVal(true)})
		assert.True(t, got.Equal(lattice.BoolVal(false)))
	})

	t.Run("bool strings convert", func(t *testing.T) {
		got := run(t, "not", gadget.Inputs{"in": lattice.StringVal("true")})
		assert.True(t, got.Equal(lattice.BoolVal(false)))
	})

	t.Run("non-bool errors", func(t *testing.T) {
		def, _ := r.Lookup("not")
		_, err := def.Body(context.Background(), gadget.Inputs{"in": lattice.StringVal("banana")})
		assert.Error(t, err)
	})
}
