package projection

import (
	"math"
	"testing"

	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/meteovis/meteovis/internal/domain"
	"github.com/meteovis/meteovis/internal/observability"
)

var testSite = domain.Site{Lon: 4.79, Lat: 52.95, Height: 50}

func testGeometry() domain.SweepGeometry {
	return domain.SweepGeometry{NRays: 360, NBins: 100, RScale: 500, ElAngle: 0.5}
}

func TestProject_ShapeAndWrapClosure(t *testing.T) {
	p := New(0, nil)
	g := testGeometry()

	grid, err := p.Project(g, testSite)
	require.NoError(t, err)

	assert.Equal(t, g.NRays+1, grid.Rows)
	assert.Equal(t, g.NBins+1, grid.Cols)
	assert.True(t, grid.Fits(g.NRays, g.NBins))

	for j := 0; j < grid.Cols; j++ {
		lon0, lat0 := grid.At(0, j)
		lonN, latN := grid.At(g.NRays, j)
		assert.Equal(t, lon0, lonN, "bin %d", j)
		assert.Equal(t, lat0, latN, "bin %d", j)
	}
}

func TestProject_ZeroRangeColumnIsSite(t *testing.T) {
	grid, err := New(0, nil).Project(testGeometry(), testSite)
	require.NoError(t, err)

	for i := 0; i < grid.Rows; i++ {
		lon, lat := grid.At(i, 0)
		assert.Equal(t, testSite.Lon, lon)
		assert.Equal(t, testSite.Lat, lat)
	}
}

func TestProject_Bounds(t *testing.T) {
	grid, err := New(0, nil).Project(testGeometry(), testSite)
	require.NoError(t, err)

	b := grid.Bounds()
	require.NoError(t, b.Validate())

	// Outermost centroid lies 49.75 km from the site; one degree of latitude
	// is about 111.25 km at 53N.
	assert.InDelta(t, testSite.Lat+49.75/111.25, b.LatMax(), 2e-3)
	assert.InDelta(t, testSite.Lat-49.75/111.25, b.LatMin(), 2e-3)
	assert.Greater(t, b.LonMax(), testSite.Lon)
	assert.Less(t, b.LonMin(), testSite.Lon)

	lat, lon := b.Center()
	assert.InDelta(t, testSite.Lat, lat, 1e-3)
	assert.InDelta(t, testSite.Lon, lon, 1e-3)
}

func TestProject_FirstRayPointsNorth(t *testing.T) {
	g := domain.SweepGeometry{NRays: 4, NBins: 1, RScale: 20000, ElAngle: 0}
	grid, err := New(0, nil).Project(g, testSite)
	require.NoError(t, err)

	// Ray centres at 45, 135, 225 and 315 degrees.
	lonNE, latNE := grid.At(0, 1)
	lonSE, latSE := grid.At(1, 1)
	lonSW, latSW := grid.At(2, 1)
	lonNW, latNW := grid.At(3, 1)

	assert.Greater(t, latNE, testSite.Lat)
	assert.Greater(t, lonNE, testSite.Lon)
	assert.Less(t, latSE, testSite.Lat)
	assert.Greater(t, lonSE, testSite.Lon)
	assert.Less(t, latSW, testSite.Lat)
	assert.Less(t, lonSW, testSite.Lon)
	assert.Greater(t, latNW, testSite.Lat)
	assert.Less(t, lonNW, testSite.Lon)
}

func TestProject_RejectsBadGeometry(t *testing.T) {
	_, err := New(0, nil).Project(domain.SweepGeometry{NRays: 0, NBins: 10, RScale: 500}, testSite)
	require.ErrorIs(t, err, domain.ErrMalformedGeometry)

	_, err = New(0, nil).Project(domain.SweepGeometry{NRays: 10, NBins: 10, RScale: 0}, testSite)
	require.ErrorIs(t, err, domain.ErrMalformedGeometry)
}

func TestProject_CachesByGeometry(t *testing.T) {
	metrics := observability.NewMetricsForTesting()
	p := New(4, metrics)

	a, err := p.Project(testGeometry(), testSite)
	require.NoError(t, err)
	b, err := p.Project(testGeometry(), testSite)
	require.NoError(t, err)
	assert.Same(t, a, b)

	other := testGeometry()
	other.ElAngle = 1.5
	c, err := p.Project(other, testSite)
	require.NoError(t, err)
	assert.NotSame(t, a, c)

	assert.Equal(t, 1.0, testutil.ToFloat64(metrics.ProjectionCache.WithLabelValues("hit")))
	assert.Equal(t, 2.0, testutil.ToFloat64(metrics.ProjectionCache.WithLabelValues("miss")))
}

func TestBeamModel(t *testing.T) {
	re := EarthRadius(0)
	assert.InDelta(t, wgs84SemiMajor, re, 1e-6)
	assert.InDelta(t, wgs84SemiMinor, EarthRadius(90), 1e-6)

	assert.InDelta(t, 50.0, BinAltitude(0, 0.5, 50, re, EffectiveEarthFactor), 1e-6)
	assert.InDelta(t, 0.0, SiteDistance(0, 0.5, 50, re, EffectiveEarthFactor), 1e-9)

	// At zero elevation the beam rises by roughly r^2 / (2 ke re).
	r := 100000.0
	z := BinAltitude(r, 0, 0, re, EffectiveEarthFactor)
	assert.InDelta(t, r*r/(2*EffectiveEarthFactor*re), z, 1)

	s := SiteDistance(r, 0, z, re, EffectiveEarthFactor)
	assert.Less(t, s, r)
	assert.InDelta(t, r, s, 10)

	// Higher elevations shorten the ground distance.
	z5 := BinAltitude(r, 5, 0, re, EffectiveEarthFactor)
	assert.Less(t, SiteDistance(r, 5, z5, re, EffectiveEarthFactor), s)
}

func TestSweepCentroids(t *testing.T) {
	ranges, az := SweepCentroids(4, 3, 500)
	assert.Equal(t, []float64{250, 750, 1250}, ranges)
	assert.Equal(t, []float64{45, 135, 225, 315}, az)

	_, az = SweepCentroids(360, 1, 1)
	assert.InDelta(t, 0.5, az[0], 1e-12)
	assert.InDelta(t, 359.5, az[359], 1e-9)
	assert.False(t, math.IsNaN(az[180]))

	ranges, az = SweepCentroids(1, 1, 1000)
	assert.Equal(t, []float64{500}, ranges)
	assert.Equal(t, []float64{180}, az)
}
