package wire

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestTargetOf(t *testing.T) {
	t.Run("directed delivers one way", func(t *testing.T) {
		w := &Wire{ID: "w", From: "a", To: "b", Kind: Directed}

		target, ok := w.TargetOf("a")
		require.True(t, ok)
		assert.Equal(t, "b", target)

		_, ok = w.TargetOf("b")
		assert.False(t, ok)
	})

	t.Run("bidirectional delivers both ways", func(t *testing.T) {
		w := &Wire{ID: "w", From: "a", To: "b", Kind: Bidirectional}

		target, ok := w.TargetOf("a")
		require.True(t, ok)
		assert.Equal(t, "b", target)

		target, ok = w.TargetOf("b")
		require.True(t, ok)
		assert.Equal(t, "a", target)
	})

	t.Run("unrelated contact never delivers", func(t *testing.T) {
		w := &Wire{ID: "w", From: "a", To: "b", Kind: Bidirectional}
		_, ok := w.TargetOf("c")
		assert.False(t, ok)
	})
}

func TestParseKind(t *testing.T) {
	k, err := ParseKind("")
	require.NoError(t, err)
	assert.Equal(t, Bidirectional, k)

	k, err = ParseKind("directed")
	require.NoError(t, err)
	assert.Equal(t, Directed, k)

	_, err = ParseKind("sideways")
	assert.ErrorContains(t, err, "unknown wire kind")
}
