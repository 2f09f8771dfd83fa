package domain

import (
	"fmt"
	"math"
	"time"
)

// MaskedGrid is a row-major 2D array of physical values with a validity mask.
// A masked cell carries no value and is rendered transparent.
type MaskedGrid struct {
	Rows int
	Cols int
	Data []float64
	Mask []bool // true where the cell is masked
}

// NewMaskedGrid allocates a rows x cols grid with every cell unmasked and zero.
func NewMaskedGrid(rows, cols int) (*MaskedGrid, error) {
	if err := checkDims(rows, cols); err != nil {
		return nil, fmt.Errorf("grid: %w", err)
	}
	return &MaskedGrid{
		Rows: rows,
		Cols: cols,
		Data: make([]float64, rows*cols),
		Mask: make([]bool, rows*cols),
	}, nil
}

// At returns the value at (r, c) and whether it is valid (unmasked).
func (g *MaskedGrid) At(r, c int) (float64, bool) {
	i := r*g.Cols + c
	return g.Data[i], !g.Mask[i]
}

// Set stores an unmasked value at (r, c).
func (g *MaskedGrid) Set(r, c int, v float64) {
	i := r*g.Cols + c
	g.Data[i] = v
	g.Mask[i] = false
}

// MaskCell masks the cell at (r, c).
func (g *MaskedGrid) MaskCell(r, c int) {
	g.Mask[r*g.Cols+c] = true
}

// MaskEqual masks every cell whose value equals v exactly.
func (g *MaskedGrid) MaskEqual(v float64) {
	for i, d := range g.Data {
		if d == v {
			g.Mask[i] = true
		}
	}
}

// Calibrate applies physical = raw*gain + offset to every unmasked cell.
func (g *MaskedGrid) Calibrate(gain, offset float64) {
	for i := range g.Data {
		if g.Mask[i] {
			continue
		}
		g.Data[i] = g.Data[i]*gain + offset
	}
}

// Valid returns the number of unmasked cells.
func (g *MaskedGrid) Valid() int {
	n := 0
	for _, m := range g.Mask {
		if !m {
			n++
		}
	}
	return n
}

// MinMax returns the extremes over unmasked cells. ok is false when every
// cell is masked.
func (g *MaskedGrid) MinMax() (lo, hi float64, ok bool) {
	lo, hi = math.Inf(1), math.Inf(-1)
	for i, d := range g.Data {
		if g.Mask[i] || math.IsNaN(d) {
			continue
		}
		lo = math.Min(lo, d)
		hi = math.Max(hi, d)
		ok = true
	}
	if !ok {
		return 0, 0, false
	}
	return lo, hi, true
}

// MaxCells bounds the cell count of any grid. The largest OPERA sweeps hold
// a few million bins.
const MaxCells = 1 << 28

// checkDims rejects non-positive dimensions and grids larger than MaxCells.
func checkDims(rows, cols int) error {
	if rows <= 0 || cols <= 0 {
		return fmt.Errorf("%w: %dx%d", ErrMalformedGeometry, rows, cols)
	}
	if cols > MaxCells/rows {
		return fmt.Errorf("%w: %dx%d exceeds %d cells", ErrMalformedGeometry, rows, cols, MaxCells)
	}
	return nil
}

// CoordGrid holds projected geographic corner coordinates in row-major order.
// For a value grid of r x c cells the coordinate grid is (r+1) x (c+1).
type CoordGrid struct {
	Rows int
	Cols int
	Lon  []float64
	Lat  []float64
}

// NewCoordGrid allocates a rows x cols coordinate grid.
func NewCoordGrid(rows, cols int) (*CoordGrid, error) {
	if err := checkDims(rows, cols); err != nil {
		return nil, fmt.Errorf("coordinate grid: %w", err)
	}
	return &CoordGrid{
		Rows: rows,
		Cols: cols,
		Lon:  make([]float64, rows*cols),
		Lat:  make([]float64, rows*cols),
	}, nil
}

// At returns the (lon, lat) pair at (r, c).
func (g *CoordGrid) At(r, c int) (lon, lat float64) {
	i := r*g.Cols + c
	return g.Lon[i], g.Lat[i]
}

// Set stores the (lon, lat) pair at (r, c).
func (g *CoordGrid) Set(r, c int, lon, lat float64) {
	i := r*g.Cols + c
	g.Lon[i] = lon
	g.Lat[i] = lat
}

// Bounds returns the bounding box of every coordinate in the grid.
func (g *CoordGrid) Bounds() Bounds {
	latMin, lonMin := math.Inf(1), math.Inf(1)
	latMax, lonMax := math.Inf(-1), math.Inf(-1)
	for i := range g.Lon {
		lonMin = math.Min(lonMin, g.Lon[i])
		lonMax = math.Max(lonMax, g.Lon[i])
		latMin = math.Min(latMin, g.Lat[i])
		latMax = math.Max(latMax, g.Lat[i])
	}
	return Bounds{{latMin, lonMin}, {latMax, lonMax}}
}

// Fits reports whether g bounds every cell of a rows x cols value grid.
func (g *CoordGrid) Fits(rows, cols int) bool {
	return g.Rows == rows+1 && g.Cols == cols+1
}

// Bounds is a geographic box [[lat_min, lon_min], [lat_max, lon_max]], the
// layout map overlays expect.
type Bounds [2][2]float64

func (b Bounds) LatMin() float64 { return b[0][0] }
func (b Bounds) LonMin() float64 { return b[0][1] }
func (b Bounds) LatMax() float64 { return b[1][0] }
func (b Bounds) LonMax() float64 { return b[1][1] }

// Validate checks that the box is finite and ordered.
func (b Bounds) Validate() error {
	for _, v := range []float64{b.LatMin(), b.LonMin(), b.LatMax(), b.LonMax()} {
		if math.IsNaN(v) || math.IsInf(v, 0) {
			return fmt.Errorf("%w: non-finite bounds %v", ErrMalformedGeometry, b)
		}
	}
	if b.LatMin() > b.LatMax() || b.LonMin() > b.LonMax() {
		return fmt.Errorf("%w: unordered bounds %v", ErrMalformedGeometry, b)
	}
	return nil
}

// Center returns the midpoint (lat, lon) of the box.
func (b Bounds) Center() (lat, lon float64) {
	return (b.LatMin() + b.LatMax()) / 2, (b.LonMin() + b.LonMax()) / 2
}

// PhysicalGrid is the processed result of one input file.
type PhysicalGrid struct {
	Values    *MaskedGrid
	Coords    *CoordGrid
	Bounds    Bounds
	Range     ColorRange
	Timestamp time.Time
}

// Stamp returns the canonical minute-resolution key of the grid.
func (p *PhysicalGrid) Stamp() string {
	return CanonicalStamp(p.Timestamp)
}
