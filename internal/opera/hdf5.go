package opera

import (
	"fmt"

	"github.com/batchatco/go-native-netcdf/netcdf/api"
	"github.com/batchatco/go-native-netcdf/netcdf/hdf5"

	"github.com/meteovis/meteovis/internal/domain"
)

// hdf5File adapts a pure-Go HDF5 reader to File. Groups are resolved from the
// root on every lookup.
type hdf5File struct {
	path string
	root api.Group
}

// OpenHDF5 opens an ODIM_H5 file read-only.
func OpenHDF5(path string) (File, error) {
	root, err := hdf5.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open hdf5 %s: %w", path, err)
	}
	return &hdf5File{path: path, root: root}, nil
}

func (f *hdf5File) group(p string) (api.Group, bool) {
	cur := f.root
	for _, seg := range splitPath(p) {
		next, err := cur.GetGroup(seg)
		if err != nil {
			return nil, false
		}
		cur = next
	}
	return cur, true
}

func (f *hdf5File) Attr(group, name string) (any, error) {
	g, ok := f.group(group)
	if !ok {
		return nil, missing(group, name)
	}
	v, has := g.Attributes().Get(name)
	if !has {
		return nil, missing(group, name)
	}
	return v, nil
}

func (f *hdf5File) Dataset(p string) (any, error) {
	parts := splitPath(p)
	if len(parts) == 0 {
		return nil, missing("", p)
	}
	dir := Join(parts[:len(parts)-1]...)
	name := parts[len(parts)-1]
	g, ok := f.group(dir)
	if !ok {
		return nil, missing(dir, name)
	}
	v, err := g.GetVariable(name)
	if err != nil {
		return nil, fmt.Errorf("%w: %s: %v", domain.ErrMissingAttribute, p, err)
	}
	return v.Values, nil
}

func (f *hdf5File) Groups(group string) ([]string, error) {
	g, ok := f.group(group)
	if !ok {
		return nil, fmt.Errorf("%w: group %q in %s", domain.ErrSelectionNotFound, group, f.path)
	}
	return g.ListSubgroups(), nil
}

func (f *hdf5File) HasGroup(group string) bool {
	_, ok := f.group(group)
	return ok
}

func (f *hdf5File) Close() error {
	f.root.Close()
	return nil
}
