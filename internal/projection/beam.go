package projection

import (
	"math"

	"gonum.org/v1/gonum/floats"
)

const (
	wgs84SemiMajor = 6378137.0
	wgs84SemiMinor = 6356752.314245

	// EffectiveEarthFactor is the standard 4/3 effective earth radius factor
	// that models beam refraction in a standard atmosphere.
	EffectiveEarthFactor = 4.0 / 3.0
)

func radians(deg float64) float64 { return deg * math.Pi / 180 }

// EarthRadius returns the WGS84 geocentric radius in metres at latitude lat
// (degrees).
func EarthRadius(lat float64) float64 {
	a, b := wgs84SemiMajor, wgs84SemiMinor
	c, s := math.Cos(radians(lat)), math.Sin(radians(lat))
	num := math.Pow(a, 4)*c*c + math.Pow(b, 4)*s*s
	den := math.Pow(a*c, 2) + math.Pow(b*s, 2)
	return math.Sqrt(num / den)
}

// BinAltitude returns the beam height above sea level in metres at slant range
// r (m) for elevation theta (deg), antenna altitude alt (m) and earth radius re.
func BinAltitude(r, theta, alt, re, ke float64) float64 {
	reff := ke * re
	sr := reff + alt
	return math.Sqrt(r*r+sr*sr+2*r*sr*math.Sin(radians(theta))) - reff
}

// SiteDistance returns the great-circle distance in metres along the earth's
// surface from the site to the point below the beam at slant range r, where z
// is the bin altitude from BinAltitude.
func SiteDistance(r, theta, z, re, ke float64) float64 {
	reff := ke * re
	return reff * math.Asin(r*math.Cos(radians(theta))/(reff+z))
}

// SweepCentroids returns the centre ranges (m) and azimuths (deg) of the
// cells of a sweep. Ray i is centred at i*360/nrays + 180/nrays.
func SweepCentroids(nrays, nbins int, rscale float64) (ranges, azimuths []float64) {
	ascale := 360.0 / float64(nrays)
	return centres(nbins, rscale), centres(nrays, ascale)
}

// centres spaces n cell centres of width step starting at step/2.
func centres(n int, step float64) []float64 {
	out := make([]float64, n)
	switch n {
	case 0:
	case 1:
		out[0] = step / 2
	default:
		floats.Span(out, step/2, float64(n-1)*step+step/2)
	}
	return out
}
