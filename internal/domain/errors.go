package domain

import "errors"

var (
	// ErrConfiguration reports an unusable run configuration, e.g. no task chosen.
	ErrConfiguration = errors.New("configuration error")

	// ErrMissingAttribute reports a required OPERA attribute or dataset that is absent.
	ErrMissingAttribute = errors.New("missing attribute")

	// ErrMalformedGeometry reports geometry that cannot describe a grid:
	// non-positive dimensions, shape mismatches or attributes of the wrong shape.
	ErrMalformedGeometry = errors.New("malformed geometry")

	// ErrSelectionNotFound reports a scan or quantity key that does not exist in a file.
	ErrSelectionNotFound = errors.New("selection not found")

	// ErrDirectoryExists reports a collision on a generated run directory.
	ErrDirectoryExists = errors.New("directory exists")

	// ErrColormapScale reports a normalization that cannot be applied, such as a
	// logarithmic scale with a non-positive bound.
	ErrColormapScale = errors.New("colormap scale error")

	// ErrNoInputFiles reports a source directory without any usable file.
	ErrNoInputFiles = errors.New("no input files")
)
