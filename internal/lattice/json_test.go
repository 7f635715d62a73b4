package lattice

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func roundTrip(t *testing.T, v Value) Value {
	t.Helper()
	data, err := json.Marshal(v)
	require.NoError(t, err)
	var out Value
	require.NoError(t, json.Unmarshal(data, &out))
	return out
}

func TestJSONRoundTrip(t *testing.T) {
	cases := map[string]Value{
		"number": NumberVal(3.5),
		"int":    NumberIntVal(-2),
		"string": StringVal("hello"),
		"bool":   BoolVal(true),
		"none":   NullVal(),
		"list":   ListVal(NumberIntVal(1), NumberIntVal(1), StringVal("x")),
		"map": MapVal(
			MapEntry{Key: "z", Value: NumberIntVal(1)},
			MapEntry{Key: "a", Value: ListVal(BoolVal(false))},
		),
		"growSet":    GrowSetVal(NumberIntVal(1), StringVal("two")),
		"shrinkSet":  ShrinkSetVal(NumberIntVal(9)),
		"growList":   GrowListVal(StringVal("a"), StringVal("b")),
		"shrinkList": ShrinkListVal(NumberIntVal(5), NumberIntVal(6)),
		"growMap": GrowMapVal(
			MapEntry{Key: "tags", Value: GrowSetVal(StringVal("red"))},
		),
		"shrinkMap": ShrinkMapVal(
			MapEntry{Key: "opts", Value: ShrinkSetVal(NumberIntVal(1), NumberIntVal(2))},
		),
	}
	for name, v := range cases {
		t.Run(name, func(t *testing.T) {
			out := roundTrip(t, v)
			assert.True(t, out.Equal(v), "got %s, want %s", out, v)
			assert.Equal(t, v.Kind(), out.Kind())
		})
	}
}

func TestJSONAbsent(t *testing.T) {
	data, err := json.Marshal(Absent())
	require.NoError(t, err)
	assert.Equal(t, "null", string(data))

	var out Value
	require.NoError(t, json.Unmarshal([]byte("null"), &out))
	assert.True(t, out.IsAbsent())
}

func TestJSONRejectsUnknownKind(t *testing.T) {
	var out Value
	err := json.Unmarshal([]byte(`{"kind":"mystery"}`), &out)
	assert.ErrorContains(t, err, "unknown lattice kind")
}

func TestJSONRejectsCompositeScalar(t *testing.T) {
	var out Value
	err := json.Unmarshal([]byte(`{"kind":"scalar","value":[1,2]}`), &out)
	assert.ErrorContains(t, err, "not a primitive")
}
