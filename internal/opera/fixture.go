package opera

import (
	"fmt"

	"github.com/meteovis/meteovis/internal/domain"
)

// PolarFixture describes a synthetic polar volume.
type PolarFixture struct {
	Site   domain.Site
	Date   string // YYYYMMDD
	Time   string // HHMMSS
	Sweeps []SweepFixture
}

// SweepFixture is one sweep of a PolarFixture.
type SweepFixture struct {
	ElAngle    float64
	RScale     float64
	NRays      int
	NBins      int
	Quantities []QuantityFixture
}

// QuantityFixture is one quantity of a sweep. Raw must be NRays x NBins.
type QuantityFixture struct {
	Name     string
	Gain     float64
	Offset   float64
	Nodata   float64
	Undetect float64
	Raw      [][]float64
}

// Tree builds the OPERA hierarchy of the fixture. Sweeps become dataset1..N
// and quantities data1..M.
func (p PolarFixture) Tree() *Tree {
	t := NewTree().
		SetAttr("what", "object", "PVOL").
		SetAttr("what", "date", p.Date).
		SetAttr("what", "time", p.Time).
		SetAttr("where", "lon", p.Site.Lon).
		SetAttr("where", "lat", p.Site.Lat).
		SetAttr("where", "height", p.Site.Height)

	for i, s := range p.Sweeps {
		ds := fmt.Sprintf("dataset%d", i+1)
		t.SetAttr(Join(ds, "where"), "elangle", s.ElAngle).
			SetAttr(Join(ds, "where"), "rscale", s.RScale).
			SetAttr(Join(ds, "where"), "nbins", s.NBins).
			SetAttr(Join(ds, "where"), "nrays", s.NRays).
			SetAttr(Join(ds, "where"), "a1gate", 0)
		for j, q := range s.Quantities {
			key := Join(ds, fmt.Sprintf("data%d", j+1))
			t.SetAttr(Join(key, "what"), "quantity", q.Name).
				SetAttr(Join(key, "what"), "gain", q.Gain).
				SetAttr(Join(key, "what"), "offset", q.Offset).
				SetAttr(Join(key, "what"), "nodata", q.Nodata).
				SetAttr(Join(key, "what"), "undetect", q.Undetect).
				SetDataset(Join(key, "data"), q.Raw)
		}
	}
	return t
}

// CompositeFixture describes a synthetic scan integration product.
type CompositeFixture struct {
	Bounds     domain.Bounds
	Time       string // any layout accepted by domain.ParseStamp
	Quantities []CompositeQuantity
}

// CompositeQuantity is one gridded quantity of a CompositeFixture.
type CompositeQuantity struct {
	Name string
	Data [][]float64 // nrows x ncols, row 0 north
}

// Tree builds the OPERA hierarchy of the fixture. The grid shape is taken
// from the first quantity.
func (c CompositeFixture) Tree() *Tree {
	var nrows, ncols int
	if len(c.Quantities) > 0 && len(c.Quantities[0].Data) > 0 {
		nrows, ncols = len(c.Quantities[0].Data), len(c.Quantities[0].Data[0])
	}
	t := NewTree().
		SetAttr("what", "object", "COMP").
		SetAttr(CompositeMetaGroup, "lat_min", c.Bounds.LatMin()).
		SetAttr(CompositeMetaGroup, "lon_min", c.Bounds.LonMin()).
		SetAttr(CompositeMetaGroup, "lat_max", c.Bounds.LatMax()).
		SetAttr(CompositeMetaGroup, "lon_max", c.Bounds.LonMax()).
		SetAttr(CompositeMetaGroup, "nrows", nrows).
		SetAttr(CompositeMetaGroup, "ncols", ncols).
		SetAttr(CompositeMetaGroup, "time", c.Time)
	for j, q := range c.Quantities {
		key := Join(CompositeDataset, fmt.Sprintf("data%d", j+1))
		t.SetAttr(Join(key, "what"), "quantity", q.Name).
			SetDataset(Join(key, "data"), q.Data)
	}
	return t
}

// Uniform returns a rows x cols array filled with v.
func Uniform(rows, cols int, v float64) [][]float64 {
	out := make([][]float64, rows)
	for r := range out {
		out[r] = make([]float64, cols)
		for c := range out[r] {
			out[r][c] = v
		}
	}
	return out
}
