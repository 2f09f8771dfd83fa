// Package projection converts radar sweep geometry into geographic
// coordinates and builds the regular lattices of gridded products.
package projection

import (
	"fmt"

	"github.com/tidwall/geodesic"

	"github.com/meteovis/meteovis/internal/domain"
	"github.com/meteovis/meteovis/internal/observability"
)

// Projector maps polar sweeps onto (lon, lat) corner grids. Results are
// memoized per geometry because every frame of a radar's time series shares
// it; cached grids are shared and must not be modified by callers.
type Projector struct {
	cache   *lruCache
	metrics *observability.Metrics
	ke      float64
}

// New creates a Projector caching up to cacheSize geometries. A cacheSize of
// zero disables caching. metrics may be nil.
func New(cacheSize int, metrics *observability.Metrics) *Projector {
	p := &Projector{metrics: metrics, ke: EffectiveEarthFactor}
	if cacheSize > 0 {
		p.cache = newLRUCache(cacheSize)
	}
	return p
}

// Project returns the corner grid of a sweep with shape (nrays+1, nbins+1).
//
// Column 0 is the zero-range boundary (the site itself) and columns 1..nbins
// are the bin centroids. Row nrays repeats row 0 so a renderer closes the
// azimuthal wrap. Each (range, azimuth, elevation) triple is placed with the
// 4/3 effective earth model and then moved along the WGS84 geodesic from the
// site, which is the inverse of an azimuthal equidistant projection centred
// on the radar.
func (p *Projector) Project(g domain.SweepGeometry, site domain.Site) (*domain.CoordGrid, error) {
	if g.NRays <= 0 || g.NBins <= 0 || g.RScale <= 0 {
		return nil, fmt.Errorf("%w: nrays=%d nbins=%d rscale=%g", domain.ErrMalformedGeometry, g.NRays, g.NBins, g.RScale)
	}

	key := cacheKey(g, site)
	if p.cache != nil {
		if grid, ok := p.cache.get(key); ok {
			p.observeCache("hit")
			return grid, nil
		}
		p.observeCache("miss")
	}

	grid, err := p.project(g, site)
	if err != nil {
		return nil, err
	}
	if p.cache != nil {
		p.cache.put(key, grid)
	}
	return grid, nil
}

func (p *Projector) project(g domain.SweepGeometry, site domain.Site) (*domain.CoordGrid, error) {
	grid, err := domain.NewCoordGrid(g.NRays+1, g.NBins+1)
	if err != nil {
		return nil, err
	}

	ranges, azimuths := SweepCentroids(g.NRays, g.NBins, g.RScale)
	re := EarthRadius(site.Lat)

	// Surface distance depends on range only, so compute it once per bin.
	dists := make([]float64, g.NBins)
	for j, r := range ranges {
		z := BinAltitude(r, g.ElAngle, site.Height, re, p.ke)
		dists[j] = SiteDistance(r, g.ElAngle, z, re, p.ke)
	}

	for i, az := range azimuths {
		grid.Set(i, 0, site.Lon, site.Lat)
		for j, s := range dists {
			var lat, lon float64
			geodesic.WGS84.Direct(site.Lat, site.Lon, az, s, &lat, &lon, nil)
			grid.Set(i, j+1, lon, lat)
		}
	}

	// Close the wrap: the extra ray duplicates the first.
	last := g.NRays
	for j := 0; j < grid.Cols; j++ {
		lon, lat := grid.At(0, j)
		grid.Set(last, j, lon, lat)
	}
	return grid, nil
}

func (p *Projector) observeCache(result string) {
	if p.metrics == nil {
		return
	}
	p.metrics.ProjectionCache.WithLabelValues(result).Inc()
}

func cacheKey(g domain.SweepGeometry, site domain.Site) string {
	return fmt.Sprintf("%d|%d|%g|%g|%.6f|%.6f|%g", g.NRays, g.NBins, g.RScale, g.ElAngle, site.Lon, site.Lat, site.Height)
}
