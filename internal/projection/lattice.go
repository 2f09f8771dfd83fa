package projection

import (
	"fmt"

	"gonum.org/v1/gonum/floats"

	"github.com/meteovis/meteovis/internal/domain"
)

// Lattice returns the (nrows+1) x (ncols+1) corner grid of a regular
// composite spanning b. Row 0 lies on the northern edge and column 0 on the
// western edge, matching the row order of gridded products.
func Lattice(b domain.Bounds, nrows, ncols int) (*domain.CoordGrid, error) {
	if nrows <= 0 || ncols <= 0 {
		return nil, fmt.Errorf("%w: nrows=%d ncols=%d", domain.ErrMalformedGeometry, nrows, ncols)
	}
	if err := b.Validate(); err != nil {
		return nil, err
	}

	lats := floats.Span(make([]float64, nrows+1), b.LatMax(), b.LatMin())
	lons := floats.Span(make([]float64, ncols+1), b.LonMin(), b.LonMax())

	grid, err := domain.NewCoordGrid(nrows+1, ncols+1)
	if err != nil {
		return nil, err
	}
	for r, lat := range lats {
		for c, lon := range lons {
			grid.Set(r, c, lon, lat)
		}
	}
	return grid, nil
}
