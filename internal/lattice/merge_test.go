package lattice

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func mustMerge(t *testing.T, a, b Value) Value {
	t.Helper()
	merged, err := Merge(a, b)
	require.NoError(t, err)
	return merged
}

func TestMergeIdentity(t *testing.T) {
	v := GrowSetVal(NumberIntVal(1), NumberIntVal(2))

	assert.True(t, mustMerge(t, Absent(), v).Equal(v))
	assert.True(t, mustMerge(t, v, Absent()).Equal(v))
	assert.True(t, mustMerge(t, Absent(), Absent()).IsAbsent())
}

func TestMergeIdempotence(t *testing.T) {
	cases := []Value{
		NumberIntVal(7),
		StringVal("x"),
		BoolVal(true),
		NullVal(),
		GrowSetVal(NumberIntVal(1), NumberIntVal(2)),
		ShrinkSetVal(StringVal("a")),
		GrowMapVal(MapEntry{Key: "k", Value: NumberIntVal(1)}),
		ListVal(NumberIntVal(1), NumberIntVal(1)),
	}
	for _, v := range cases {
		merged := mustMerge(t, v, v)
		assert.True(t, merged.Equal(v), "merge(%s, %s)", v, v)
	}
}

func TestMergeGrowSetMonotonic(t *testing.T) {
	a := GrowSetVal(NumberIntVal(1), NumberIntVal(2))
	b := GrowSetVal(NumberIntVal(2), NumberIntVal(3))
	want := GrowSetVal(NumberIntVal(1), NumberIntVal(2), NumberIntVal(3))

	assert.True(t, mustMerge(t, a, b).Equal(want))
}

func TestMergeCommutative(t *testing.T) {
	pairs := [][2]Value{
		{GrowSetVal(NumberIntVal(1)), GrowSetVal(NumberIntVal(2))},
		{GrowListVal(StringVal("b")), GrowListVal(StringVal("a"))},
		{ShrinkSetVal(NumberIntVal(1), NumberIntVal(2)), ShrinkSetVal(NumberIntVal(2), NumberIntVal(3))},
		{
			GrowMapVal(MapEntry{Key: "x", Value: GrowSetVal(NumberIntVal(1))}),
			GrowMapVal(MapEntry{Key: "x", Value: GrowSetVal(NumberIntVal(2))}, MapEntry{Key: "y", Value: BoolVal(true)}),
		},
		{
			ShrinkMapVal(MapEntry{Key: "x", Value: GrowSetVal(NumberIntVal(1))}, MapEntry{Key: "y", Value: BoolVal(true)}),
			ShrinkMapVal(MapEntry{Key: "x", Value: GrowSetVal(NumberIntVal(2))}),
		},
	}
	for _, p := range pairs {
		ab := mustMerge(t, p[0], p[1])
		ba := mustMerge(t, p[1], p[0])
		assert.True(t, ab.Equal(ba), "merge(%s,%s) != merge(%s,%s)", p[0], p[1], p[1], p[0])
	}
}

func TestMergeAssociativeChain(t *testing.T) {
	a := GrowSetVal(NumberIntVal(1))
	b := GrowSetVal(NumberIntVal(2))
	c := GrowSetVal(NumberIntVal(3))

	left := mustMerge(t, mustMerge(t, a, b), c)
	right := mustMerge(t, a, mustMerge(t, b, c))
	assert.True(t, left.Equal(right))
}

func TestMergeShrink(t *testing.T) {
	t.Run("intersection survives", func(t *testing.T) {
		a := ShrinkSetVal(NumberIntVal(1), NumberIntVal(2), NumberIntVal(3))
		b := ShrinkSetVal(NumberIntVal(2), NumberIntVal(3), NumberIntVal(4))
		want := ShrinkSetVal(NumberIntVal(2), NumberIntVal(3))

		assert.True(t, mustMerge(t, a, b).Equal(want))
	})

	t.Run("empty intersection is a contradiction", func(t *testing.T) {
		a := ShrinkSetVal(NumberIntVal(1), NumberIntVal(2))
		b := ShrinkSetVal(NumberIntVal(3), NumberIntVal(4))

		_, err := Merge(a, b)
		require.Error(t, err)
		assert.True(t, IsContradiction(err))

		var ce *ContradictionError
		require.ErrorAs(t, err, &ce)
		assert.True(t, ce.Left.Equal(a))
		assert.True(t, ce.Right.Equal(b))
	})

	t.Run("shrink map drops one-sided keys", func(t *testing.T) {
		a := ShrinkMapVal(
			MapEntry{Key: "x", Value: NumberIntVal(1)},
			MapEntry{Key: "y", Value: NumberIntVal(2)},
		)
		b := ShrinkMapVal(
			MapEntry{Key: "y", Value: NumberIntVal(2)},
			MapEntry{Key: "z", Value: NumberIntVal(3)},
		)
		want := ShrinkMapVal(MapEntry{Key: "y", Value: NumberIntVal(2)})

		assert.True(t, mustMerge(t, a, b).Equal(want))
	})

	t.Run("disjoint shrink maps contradict", func(t *testing.T) {
		a := ShrinkMapVal(MapEntry{Key: "x", Value: NumberIntVal(1)})
		b := ShrinkMapVal(MapEntry{Key: "y", Value: NumberIntVal(2)})

		_, err := Merge(a, b)
		assert.True(t, IsContradiction(err))
	})
}

func TestMergeScalars(t *testing.T) {
	t.Run("equal scalars pass through", func(t *testing.T) {
		assert.True(t, mustMerge(t, NumberIntVal(5), NumberIntVal(5)).Equal(NumberIntVal(5)))
	})

	t.Run("unequal scalars contradict", func(t *testing.T) {
		_, err := Merge(NumberIntVal(1), NumberIntVal(2))
		assert.True(t, IsContradiction(err))

		_, err = Merge(StringVal("a"), NumberIntVal(1))
		assert.True(t, IsContradiction(err))

		_, err = Merge(BoolVal(true), BoolVal(false))
		assert.True(t, IsContradiction(err))
	})
}

func TestMergeCoercion(t *testing.T) {
	t.Run("plain list coerces toward grow set", func(t *testing.T) {
		tagged := GrowSetVal(NumberIntVal(1))
		plain := ListVal(NumberIntVal(2), NumberIntVal(2))
		want := GrowSetVal(NumberIntVal(1), NumberIntVal(2))

		assert.True(t, mustMerge(t, tagged, plain).Equal(want))
		assert.True(t, mustMerge(t, plain, tagged).Equal(want))
	})

	t.Run("plain map coerces toward shrink map", func(t *testing.T) {
		tagged := ShrinkMapVal(
			MapEntry{Key: "a", Value: NumberIntVal(1)},
			MapEntry{Key: "b", Value: NumberIntVal(2)},
		)
		plain := MapVal(MapEntry{Key: "a", Value: NumberIntVal(1)})
		want := ShrinkMapVal(MapEntry{Key: "a", Value: NumberIntVal(1)})

		assert.True(t, mustMerge(t, tagged, plain).Equal(want))
	})

	t.Run("scalar cannot coerce toward a collection", func(t *testing.T) {
		_, err := Merge(GrowSetVal(NumberIntVal(1)), NumberIntVal(2))
		assert.True(t, IsContradiction(err))
	})

	t.Run("incompatible tags contradict", func(t *testing.T) {
		_, err := Merge(GrowSetVal(NumberIntVal(1)), ShrinkSetVal(NumberIntVal(1)))
		assert.True(t, IsContradiction(err))

		_, err = Merge(GrowMapVal(), GrowSetVal(NumberIntVal(1)))
		assert.True(t, IsContradiction(err))
	})
}

// Untagged collections merge permissively with no contradiction path, even
// where the tagged equivalent would fail. This pins the legacy behavior so a
// migration cannot change it silently.
func TestMergeLegacyPlainIsPermissive(t *testing.T) {
	t.Run("lists concatenate", func(t *testing.T) {
		a := ListVal(NumberIntVal(1))
		b := ListVal(NumberIntVal(1), NumberIntVal(2))
		want := ListVal(NumberIntVal(1), NumberIntVal(1), NumberIntVal(2))

		assert.True(t, mustMerge(t, a, b).Equal(want))
	})

	t.Run("maps union recursively", func(t *testing.T) {
		a := MapVal(MapEntry{Key: "x", Value: ListVal(NumberIntVal(1))})
		b := MapVal(
			MapEntry{Key: "x", Value: ListVal(NumberIntVal(2))},
			MapEntry{Key: "y", Value: StringVal("s")},
		)
		merged := mustMerge(t, a, b)

		x, ok := merged.Lookup("x")
		require.True(t, ok)
		assert.True(t, x.Equal(ListVal(NumberIntVal(1), NumberIntVal(2))))
		y, ok := merged.Lookup("y")
		require.True(t, ok)
		assert.True(t, y.Equal(StringVal("s")))
	})

	t.Run("shared scalar keys still contradict inside maps", func(t *testing.T) {
		a := MapVal(MapEntry{Key: "x", Value: NumberIntVal(1)})
		b := MapVal(MapEntry{Key: "x", Value: NumberIntVal(2)})

		_, err := Merge(a, b)
		assert.True(t, IsContradiction(err))
	})
}

func TestMergeNestedGrowMap(t *testing.T) {
	a := GrowMapVal(MapEntry{Key: "tags", Value: GrowSetVal(StringVal("red"))})
	b := GrowMapVal(MapEntry{Key: "tags", Value: GrowSetVal(StringVal("blue"))})

	merged := mustMerge(t, a, b)
	tags, ok := merged.Lookup("tags")
	require.True(t, ok)
	assert.True(t, tags.Equal(GrowSetVal(StringVal("red"), StringVal("blue"))))
}
