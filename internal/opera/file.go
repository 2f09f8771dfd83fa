// Package opera reads weather-radar products stored in the OPERA (ODIM_H5)
// hierarchical layout.
//
// A [File] is the read-only collaborator the readers need: attribute and
// dataset lookup by group path. Two implementations exist: [OpenHDF5] for real
// HDF5 files and [Tree], an in-memory hierarchy with a JSON encoding used for
// fixtures and synthetic data.
package opera

import (
	"fmt"
	"path/filepath"
	"sort"
	"strconv"
	"strings"
)

// File is read-only access to an OPERA hierarchy. Group paths are
// slash-separated and relative to the root ("" or "/" is the root itself).
type File interface {
	// Attr returns the raw value of attribute name on group. Missing groups or
	// attributes yield an error wrapping domain.ErrMissingAttribute.
	Attr(group, name string) (any, error)

	// Dataset returns the raw values of the dataset at path, typically a 2D
	// slice of a numeric type.
	Dataset(path string) (any, error)

	// Groups lists the child group names of group. A missing group yields an
	// error wrapping domain.ErrSelectionNotFound.
	Groups(group string) ([]string, error)

	// HasGroup reports whether group exists.
	HasGroup(group string) bool

	Close() error
}

// Opener opens a File by path.
type Opener func(path string) (File, error)

// Open opens path as a fixture tree when it carries a .json extension and as
// HDF5 otherwise.
func Open(path string) (File, error) {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".json":
		t, err := ReadTreeFile(path)
		if err != nil {
			return nil, err
		}
		return t, nil
	default:
		return OpenHDF5(path)
	}
}

// Join builds a group path from its segments.
func Join(parts ...string) string {
	var out []string
	for _, p := range parts {
		p = strings.Trim(p, "/")
		if p != "" {
			out = append(out, p)
		}
	}
	return strings.Join(out, "/")
}

func splitPath(p string) []string {
	p = strings.Trim(p, "/")
	if p == "" {
		return nil
	}
	return strings.Split(p, "/")
}

// ChildGroups lists the children of group whose name starts with prefix, in
// natural order (dataset2 before dataset10).
func ChildGroups(f File, group, prefix string) ([]string, error) {
	all, err := f.Groups(group)
	if err != nil {
		return nil, err
	}
	var out []string
	for _, g := range all {
		if strings.HasPrefix(g, prefix) {
			out = append(out, g)
		}
	}
	sortNatural(out, prefix)
	return out, nil
}

func sortNatural(names []string, prefix string) {
	sort.SliceStable(names, func(i, j int) bool {
		ni, ei := strconv.Atoi(strings.TrimPrefix(names[i], prefix))
		nj, ej := strconv.Atoi(strings.TrimPrefix(names[j], prefix))
		if ei == nil && ej == nil {
			return ni < nj
		}
		return names[i] < names[j]
	})
}

func missing(group, name string) error {
	return fmt.Errorf("%w: %s", errMissing, Join(group, name))
}
