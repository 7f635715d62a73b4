// Package hcl is the declarative front end: it parses .hcl topology files
// into plain topology structs. It stays deliberately thin; values must be
// literals, there is no expression evaluation and no reference resolution.
package hcl

import (
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"

	"github.com/hashicorp/hcl/v2"
	"github.com/hashicorp/hcl/v2/gohcl"
	"github.com/hashicorp/hcl/v2/hclparse"

	"github.com/Bassline-Org/bassline-sub010/internal/lattice"
	"github.com/Bassline-Org/bassline-sub010/internal/topology"
)

type fileSchema struct {
	Groups []*groupBlock `hcl:"group,block"`
}

type groupBlock struct {
	Name     string          `hcl:"name,label"`
	Boundary []string        `hcl:"boundary,optional"`
	Contacts []*contactBlock `hcl:"contact,block"`
	Wires    []*wireBlock    `hcl:"wire,block"`
	Gadgets  []*gadgetBlock  `hcl:"gadget,block"`
	Groups   []*groupBlock   `hcl:"group,block"`
}

type contactBlock struct {
	Name      string         `hcl:"name,label"`
	Value     hcl.Expression `hcl:"value,optional"`
	Blend     string         `hcl:"blend,optional"`
	Boundary  bool           `hcl:"boundary,optional"`
	Direction string         `hcl:"direction,optional"`
	// Collect re-tags a literal collection, e.g. "growSet".
	Collect string `hcl:"collect,optional"`
}

type wireBlock struct {
	Name string `hcl:"name,label"`
	From string `hcl:"from"`
	To   string `hcl:"to"`
	Kind string `hcl:"kind,optional"`
}

type gadgetBlock struct {
	Name    string `hcl:"name,label"`
	Variant string `hcl:"variant"`
}

// Loader parses topology files. One parser instance is kept so diagnostics
// can reference source across files.
type Loader struct {
	parser *hclparse.Parser
}

// NewLoader creates a loader.
func NewLoader() *Loader {
	return &Loader{parser: hclparse.NewParser()}
}

// Load reads a .hcl file, or every .hcl file under a directory, and returns
// the declared top-level group specs in a stable order.
func (l *Loader) Load(path string) ([]*topology.GroupSpec, error) {
	files, err := discover(path)
	if err != nil {
		return nil, err
	}
	if len(files) == 0 {
		return nil, fmt.Errorf("no .hcl files found at %q", path)
	}

	var specs []*topology.GroupSpec
	for _, file := range files {
		fileSpecs, err := l.loadFile(file)
		if err != nil {
			return nil, err
		}
		specs = append(specs, fileSpecs...)
	}
	return specs, nil
}

func (l *Loader) loadFile(path string) ([]*topology.GroupSpec, error) {
	hclFile, diags := l.parser.ParseHCLFile(path)
	if diags.HasErrors() {
		return nil, fmt.Errorf("parsing %s: %w", path, diags)
	}
	var schema fileSchema
	if diags := gohcl.DecodeBody(hclFile.Body, nil, &schema); diags.HasErrors() {
		return nil, fmt.Errorf("decoding %s: %w", path, diags)
	}

	specs := make([]*topology.GroupSpec, 0, len(schema.Groups))
	for _, gb := range schema.Groups {
		spec, err := translateGroup(gb)
		if err != nil {
			return nil, fmt.Errorf("%s: %w", path, err)
		}
		specs = append(specs, spec)
	}
	return specs, nil
}

func translateGroup(gb *groupBlock) (*topology.GroupSpec, error) {
	spec := &topology.GroupSpec{
		ID:       gb.Name,
		Boundary: gb.Boundary,
	}
	for _, cb := range gb.Contacts {
		cs, err := translateContact(cb)
		if err != nil {
			return nil, fmt.Errorf("group %q: %w", gb.Name, err)
		}
		spec.Contacts = append(spec.Contacts, cs)
	}
	for _, wb := range gb.Wires {
		spec.Wires = append(spec.Wires, &topology.WireSpec{
			ID:   wb.Name,
			From: wb.From,
			To:   wb.To,
			Kind: wb.Kind,
		})
	}
	for _, gad := range gb.Gadgets {
		spec.Subgroups = append(spec.Subgroups, &topology.GroupSpec{
			ID:          gad.Name,
			PrimitiveID: gad.Variant,
		})
	}
	for _, sub := range gb.Groups {
		subSpec, err := translateGroup(sub)
		if err != nil {
			return nil, err
		}
		spec.Subgroups = append(spec.Subgroups, subSpec)
	}
	return spec, nil
}

func translateContact(cb *contactBlock) (*topology.ContactSpec, error) {
	spec := &topology.ContactSpec{
		ID:        cb.Name,
		Blend:     cb.Blend,
		Boundary:  cb.Boundary,
		Direction: cb.Direction,
	}
	if cb.Value != nil {
		ctyVal, diags := cb.Value.Value(nil)
		if diags.HasErrors() {
			return nil, fmt.Errorf("contact %q: value must be a literal: %w", cb.Name, diags)
		}
		v, err := lattice.FromCtyValue(ctyVal)
		if err != nil {
			return nil, fmt.Errorf("contact %q: %w", cb.Name, err)
		}
		if cb.Collect != "" {
			kind, err := lattice.ParseKind(cb.Collect)
			if err != nil {
				return nil, fmt.Errorf("contact %q: %w", cb.Name, err)
			}
			coerced, ok := lattice.Coerce(v, kind)
			if !ok {
				return nil, fmt.Errorf("contact %q: value %s cannot be collected as %s", cb.Name, v, kind)
			}
			v = coerced
		}
		spec.Value = v
	}
	return spec, nil
}

// discover resolves a path to the .hcl files it denotes: the file itself, or
// every .hcl file under a directory in walk order.
func discover(path string) ([]string, error) {
	info, err := os.Stat(path)
	if err != nil {
		return nil, err
	}
	if !info.IsDir() {
		return []string{path}, nil
	}

	var files []string
	err = filepath.WalkDir(path, func(p string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if !d.IsDir() && strings.HasSuffix(p, ".hcl") {
			files = append(files, p)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return files, nil
}
