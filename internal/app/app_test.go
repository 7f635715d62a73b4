package app

import (
	"bytes"
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeTopology(t *testing.T, src string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "net.hcl")
	require.NoError(t, os.WriteFile(path, []byte(src), 0o644))
	return path
}

func TestNewConfigRequiresTopologyPath(t *testing.T) {
	_, err := NewConfig(Config{})
	assert.ErrorContains(t, err, "TopologyPath")

	cfg, err := NewConfig(Config{TopologyPath: "net.hcl"})
	require.NoError(t, err)
	assert.Equal(t, "net.hcl", cfg.TopologyPath)
}

func TestAppRegistersCoreModules(t *testing.T) {
	var buf bytes.Buffer
	a := NewApp(&buf, &Config{TopologyPath: "unused"})

	names := a.Registry().Names()
	for _, want := range []string{"add", "and", "union", "log"} {
		assert.Contains(t, names, want)
	}
}

func TestRunSettlesAndPrintsState(t *testing.T) {
	path := writeTopology(t, `
group "root" {
  contact "x" {
    value = 2
  }
  contact "y" {
    value = 3
  }
  contact "result" {
    blend = "acceptLast"
  }

  gadget "adder" {
    variant = "add"
  }

  wire "wx" {
    from = "x"
    to   = "adder:a"
    kind = "directed"
  }
  wire "wy" {
    from = "y"
    to   = "adder:b"
    kind = "directed"
  }
  wire "wout" {
    from = "adder:sum"
    to   = "result"
    kind = "directed"
  }
}
`)

	var buf bytes.Buffer
	cfg, err := NewConfig(Config{TopologyPath: path, LogLevel: "error"})
	require.NoError(t, err)

	a := NewApp(&buf, cfg)
	require.NoError(t, a.Run(context.Background()))

	out := buf.String()
	assert.Contains(t, out, `"root"`)
	assert.Contains(t, out, `"result"`)
	assert.Contains(t, out, `5`)
}

func TestRunFailsOnMissingTopology(t *testing.T) {
	var buf bytes.Buffer
	cfg, err := NewConfig(Config{TopologyPath: filepath.Join(t.TempDir(), "nope.hcl"), LogLevel: "error"})
	require.NoError(t, err)

	a := NewApp(&buf, cfg)
	err = a.Run(context.Background())
	assert.ErrorContains(t, err, "failed to load topology")
}

func TestRunFailsOnUnknownVariant(t *testing.T) {
	path := writeTopology(t, `
group "root" {
  gadget "mystery" {
    variant = "frobnicate"
  }
}
`)

	var buf bytes.Buffer
	cfg, err := NewConfig(Config{TopologyPath: path, LogLevel: "error"})
	require.NoError(t, err)

	a := NewApp(&buf, cfg)
	err = a.Run(context.Background())
	assert.ErrorContains(t, err, "unknown gadget variant")
}
