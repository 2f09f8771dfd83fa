package opera

import (
	"errors"

	"github.com/meteovis/meteovis/internal/domain"
)

// ScanInfo describes one sweep group of a polar volume.
type ScanInfo struct {
	Key     string // group name, e.g. "dataset3"
	ElAngle float64
}

// QuantityInfo describes one quantity group of a sweep or composite.
type QuantityInfo struct {
	Key  string // group name, e.g. "data1"
	Name string // e.g. "DBZH"
}

// ListScans enumerates sweep groups and their elevation angles without
// reading any bulk data.
func ListScans(f File) ([]ScanInfo, error) {
	keys, err := ChildGroups(f, "", "dataset")
	if err != nil {
		return nil, err
	}
	scans := make([]ScanInfo, 0, len(keys))
	for _, k := range keys {
		el, err := Float(f, Join(k, "where"), "elangle")
		if err != nil {
			return nil, err
		}
		scans = append(scans, ScanInfo{Key: k, ElAngle: el})
	}
	return scans, nil
}

// ListQuantities enumerates the quantity groups of dataset. A quantity without
// a name attribute is labelled by its key.
func ListQuantities(f File, dataset string) ([]QuantityInfo, error) {
	keys, err := ChildGroups(f, dataset, "data")
	if err != nil {
		return nil, err
	}
	out := make([]QuantityInfo, 0, len(keys))
	for _, k := range keys {
		name, err := String(f, Join(dataset, k, "what"), "quantity")
		if err != nil {
			if !isMissing(err) {
				return nil, err
			}
			name = k
		}
		out = append(out, QuantityInfo{Key: k, Name: name})
	}
	return out, nil
}

func isMissing(err error) bool {
	return errors.Is(err, domain.ErrMissingAttribute)
}
