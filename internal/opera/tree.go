package opera

import (
	"encoding/json"
	"fmt"
	"os"
	"path"
	"sort"

	"github.com/meteovis/meteovis/internal/domain"
)

// Tree is an in-memory OPERA hierarchy. Its JSON encoding is the fixture format
// read by Open for ".json" files.
type Tree struct {
	Attrs    map[string]any         `json:"attrs,omitempty"`
	Datasets map[string][][]float64 `json:"datasets,omitempty"`
	Groups   map[string]*Tree       `json:"groups,omitempty"`
}

// NewTree returns an empty root group.
func NewTree() *Tree {
	return &Tree{}
}

func (t *Tree) lookup(group string) (*Tree, bool) {
	cur := t
	for _, seg := range splitPath(group) {
		next, ok := cur.Groups[seg]
		if !ok {
			return nil, false
		}
		cur = next
	}
	return cur, true
}

// Ensure returns the group at path, creating missing groups along the way.
func (t *Tree) Ensure(group string) *Tree {
	cur := t
	for _, seg := range splitPath(group) {
		if cur.Groups == nil {
			cur.Groups = make(map[string]*Tree)
		}
		next, ok := cur.Groups[seg]
		if !ok {
			next = &Tree{}
			cur.Groups[seg] = next
		}
		cur = next
	}
	return cur
}

// SetAttr stores an attribute on group and returns t for chaining.
func (t *Tree) SetAttr(group, name string, v any) *Tree {
	g := t.Ensure(group)
	if g.Attrs == nil {
		g.Attrs = make(map[string]any)
	}
	g.Attrs[name] = v
	return t
}

// SetDataset stores a 2D dataset at p ("group/.../name").
func (t *Tree) SetDataset(p string, data [][]float64) *Tree {
	dir, name := path.Split("/" + p)
	g := t.Ensure(dir)
	if g.Datasets == nil {
		g.Datasets = make(map[string][][]float64)
	}
	g.Datasets[name] = data
	return t
}

func (t *Tree) Attr(group, name string) (any, error) {
	g, ok := t.lookup(group)
	if !ok {
		return nil, missing(group, name)
	}
	v, ok := g.Attrs[name]
	if !ok {
		return nil, missing(group, name)
	}
	return v, nil
}

func (t *Tree) Dataset(p string) (any, error) {
	dir, name := path.Split("/" + p)
	g, ok := t.lookup(dir)
	if !ok {
		return nil, missing(dir, name)
	}
	d, ok := g.Datasets[name]
	if !ok {
		return nil, missing(dir, name)
	}
	return d, nil
}

func (t *Tree) Groups(group string) ([]string, error) {
	g, ok := t.lookup(group)
	if !ok {
		return nil, fmt.Errorf("%w: group %q", domain.ErrSelectionNotFound, group)
	}
	names := make([]string, 0, len(g.Groups))
	for name := range g.Groups {
		names = append(names, name)
	}
	sort.Strings(names)
	return names, nil
}

func (t *Tree) HasGroup(group string) bool {
	_, ok := t.lookup(group)
	return ok
}

func (t *Tree) Close() error { return nil }

// WriteFile encodes t as an indented JSON fixture.
func (t *Tree) WriteFile(p string) error {
	data, err := json.MarshalIndent(t, "", "  ")
	if err != nil {
		return fmt.Errorf("encode tree: %w", err)
	}
	data = append(data, '\n')
	return os.WriteFile(p, data, 0o600)
}

// ReadTreeFile decodes a JSON fixture written by WriteFile.
func ReadTreeFile(p string) (*Tree, error) {
	data, err := os.ReadFile(p)
	if err != nil {
		return nil, err
	}
	var t Tree
	if err := json.Unmarshal(data, &t); err != nil {
		return nil, fmt.Errorf("decode tree %s: %w", p, err)
	}
	return &t, nil
}
