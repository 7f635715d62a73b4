package hcl

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Bassline-Org/bassline-sub010/internal/lattice"
)

func writeTopology(t *testing.T, name, src string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), name)
	require.NoError(t, os.WriteFile(path, []byte(src), 0o644))
	return path
}

func TestLoadFile(t *testing.T) {
	path := writeTopology(t, "net.hcl", `
group "root" {
  contact "celsius" {
    value = 20
    blend = "acceptLast"
  }

  contact "tags" {
    value   = ["a", "b", "a"]
    collect = "growSet"
  }

  wire "w1" {
    from = "celsius"
    to   = "adder:a"
    kind = "directed"
  }

  gadget "adder" {
    variant = "add"
  }

  group "inner" {
    contact "port" {
      boundary  = true
      direction = "input"
    }
  }
}
`)

	specs, err := NewLoader().Load(path)
	require.NoError(t, err)
	require.Len(t, specs, 1)

	root := specs[0]
	assert.Equal(t, "root", root.ID)
	require.Len(t, root.Contacts, 2)
	require.Len(t, root.Wires, 1)
	require.Len(t, root.Subgroups, 2)

	celsius := root.Contacts[0]
	assert.Equal(t, "celsius", celsius.ID)
	assert.Equal(t, "acceptLast", celsius.Blend)
	assert.True(t, celsius.Value.Equal(lattice.NumberIntVal(20)))

	t.Run("collect tag retags literal collections", func(t *testing.T) {
		tags := root.Contacts[1]
		assert.Equal(t, lattice.KindGrowSet, tags.Value.Kind())
		assert.Equal(t, 2, tags.Value.Len())
	})

	t.Run("gadget blocks become primitive subgroups", func(t *testing.T) {
		adder := root.Subgroups[0]
		assert.Equal(t, "adder", adder.ID)
		assert.Equal(t, "add", adder.PrimitiveID)
	})

	t.Run("nested groups carry boundary metadata", func(t *testing.T) {
		inner := root.Subgroups[1]
		assert.Equal(t, "inner", inner.ID)
		require.Len(t, inner.Contacts, 1)
		assert.True(t, inner.Contacts[0].Boundary)
		assert.Equal(t, "input", inner.Contacts[0].Direction)
	})
}

func TestLoadDirectory(t *testing.T) {
	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, "a.hcl"), []byte(`group "a" {}`), 0o644))
	require.NoError(t, os.WriteFile(filepath.Join(dir, "b.hcl"), []byte(`group "b" {}`), 0o644))
	require.NoError(t, os.WriteFile(filepath.Join(dir, "notes.txt"), []byte(`ignored`), 0o644))

	specs, err := NewLoader().Load(dir)
	require.NoError(t, err)
	assert.Len(t, specs, 2)
}

func TestLoadErrors(t *testing.T) {
	t.Run("missing path", func(t *testing.T) {
		_, err := NewLoader().Load(filepath.Join(t.TempDir(), "nope.hcl"))
		assert.Error(t, err)
	})

	t.Run("empty directory", func(t *testing.T) {
		_, err := NewLoader().Load(t.TempDir())
		assert.ErrorContains(t, err, "no .hcl files")
	})

	t.Run("syntax error", func(t *testing.T) {
		path := writeTopology(t, "bad.hcl", `group "x" {`)
		_, err := NewLoader().Load(path)
		assert.Error(t, err)
	})

	t.Run("non-literal value", func(t *testing.T) {
		path := writeTopology(t, "expr.hcl", `
group "x" {
  contact "c" {
    value = var.something
  }
}
`)
		_, err := NewLoader().Load(path)
		assert.ErrorContains(t, err, "literal")
	})

	t.Run("bad collect tag", func(t *testing.T) {
		path := writeTopology(t, "collect.hcl", `
group "x" {
  contact "c" {
    value   = 5
    collect = "growSet"
  }
}
`)
		_, err := NewLoader().Load(path)
		assert.ErrorContains(t, err, "cannot be collected")
	})
}
