package session

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Bassline-Org/bassline-sub010/internal/gadget"
	"github.com/Bassline-Org/bassline-sub010/internal/lattice"
	"github.com/Bassline-Org/bassline-sub010/internal/topology"
)

func TestManagerLifecycle(t *testing.T) {
	m := NewManager(gadget.NewRegistry())
	ctx := context.Background()

	s1, err := m.Open(ctx)
	require.NoError(t, err)
	s2, err := m.Open(ctx)
	require.NoError(t, err)
	assert.NotEqual(t, s1.ID, s2.ID)
	assert.Len(t, m.IDs(), 2)

	got, ok := m.Get(s1.ID)
	require.True(t, ok)
	assert.Same(t, s1, got)

	require.NoError(t, m.Close(ctx, s1.ID))
	_, ok = m.Get(s1.ID)
	assert.False(t, ok)

	t.Run("double close fails", func(t *testing.T) {
		assert.Error(t, m.Close(ctx, s1.ID))
	})
}

func TestSessionsAreIsolated(t *testing.T) {
	m := NewManager(gadget.NewRegistry())
	ctx := context.Background()

	s1, err := m.Open(ctx)
	require.NoError(t, err)
	s2, err := m.Open(ctx)
	require.NoError(t, err)

	// The same contact id can exist in both sessions without collision.
	spec := &topology.GroupSpec{
		ID:       "root",
		Contacts: []*topology.ContactSpec{{ID: "c", Value: lattice.NumberIntVal(1)}},
	}
	_, err = s1.Engine.RegisterGroup(ctx, spec)
	require.NoError(t, err)
	_, err = s2.Engine.RegisterGroup(ctx, &topology.GroupSpec{
		ID:       "root",
		Contacts: []*topology.ContactSpec{{ID: "c", Value: lattice.NumberIntVal(99)}},
	})
	require.NoError(t, err)

	st1, err := s1.Engine.GetState("root")
	require.NoError(t, err)
	st2, err := s2.Engine.GetState("root")
	require.NoError(t, err)
	assert.True(t, st1.Contacts[0].Content.Equal(lattice.NumberIntVal(1)))
	assert.True(t, st2.Contacts[0].Content.Equal(lattice.NumberIntVal(99)))
}
