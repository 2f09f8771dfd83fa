package domain

import (
	"fmt"
	"strings"
)

// ScaleKind selects how values are normalized onto a colormap.
type ScaleKind string

const (
	ScaleLinear      ScaleKind = "linear"
	ScaleLogarithmic ScaleKind = "logarithmic"
)

// ParseScaleKind accepts "linear" or "logarithmic" (case-insensitive, "log" allowed).
func ParseScaleKind(s string) (ScaleKind, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "linear":
		return ScaleLinear, nil
	case "logarithmic", "log":
		return ScaleLogarithmic, nil
	default:
		return "", fmt.Errorf("%w: unknown scale %q", ErrColormapScale, s)
	}
}

// ColorRange is the display interval of a rendered product.
type ColorRange struct {
	Min   float64
	Max   float64
	Scale ScaleKind
}

// Validate checks Min < Max and, for logarithmic scales, Min > 0.
func (r ColorRange) Validate() error {
	if !(r.Min < r.Max) {
		return fmt.Errorf("%w: empty range [%g, %g]", ErrColormapScale, r.Min, r.Max)
	}
	if r.Scale == ScaleLogarithmic && r.Min <= 0 {
		return fmt.Errorf("%w: logarithmic range needs a positive minimum, got %g", ErrColormapScale, r.Min)
	}
	return nil
}

// CompositeRange is the fixed range used for scan integration products,
// whose reflectivity spans several decades.
var CompositeRange = ColorRange{Min: 1, Max: 10000, Scale: ScaleLogarithmic}

// SelectColorRange buckets the data extremes into one of four fixed linear
// ranges so every frame of a series shares a scale. Tiers are tested in
// order and the first match wins, so a boundary value belongs to the earlier
// tier:
//
//	min >= 0   and max <= 1    -> (0.2, 0.8)
//	min >= 0   and max <= 10   -> (1, 8)
//	min >= -50 and max <= 100  -> (-10, 80)
//	otherwise                  -> (0, 350)
func SelectColorRange(lo, hi float64) ColorRange {
	switch {
	case lo >= 0 && hi <= 1:
		return ColorRange{Min: 0.2, Max: 0.8, Scale: ScaleLinear}
	case lo >= 0 && hi <= 10:
		return ColorRange{Min: 1, Max: 8, Scale: ScaleLinear}
	case lo >= -50 && hi <= 100:
		return ColorRange{Min: -10, Max: 80, Scale: ScaleLinear}
	default:
		return ColorRange{Min: 0, Max: 350, Scale: ScaleLinear}
	}
}

// SelectGridColorRange applies SelectColorRange to the unmasked extremes of g.
// A fully masked grid has no extremes and takes the catch-all range.
func SelectGridColorRange(g *MaskedGrid) ColorRange {
	lo, hi, ok := g.MinMax()
	if !ok {
		return ColorRange{Min: 0, Max: 350, Scale: ScaleLinear}
	}
	return SelectColorRange(lo, hi)
}
