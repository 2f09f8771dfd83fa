package raster

import (
	"fmt"
	"math"

	"github.com/meteovis/meteovis/internal/domain"
)

// Norm maps a physical value onto [0, 1]. ok is false for values the scale
// cannot represent, which are left transparent.
type Norm interface {
	Normalize(v float64) (x float64, ok bool)
}

type linearNorm struct{ lo, hi float64 }

func (n linearNorm) Normalize(v float64) (float64, bool) {
	return (v - n.lo) / (n.hi - n.lo), true
}

type logNorm struct{ logLo, logHi float64 }

func (n logNorm) Normalize(v float64) (float64, bool) {
	if v <= 0 {
		return 0, false
	}
	return (math.Log10(v) - n.logLo) / (n.logHi - n.logLo), true
}

// NewNorm builds the normalization for r. Logarithmic scales require a
// positive minimum.
func NewNorm(r domain.ColorRange) (Norm, error) {
	if err := r.Validate(); err != nil {
		return nil, err
	}
	switch r.Scale {
	case domain.ScaleLinear, "":
		return linearNorm{lo: r.Min, hi: r.Max}, nil
	case domain.ScaleLogarithmic:
		return logNorm{logLo: math.Log10(r.Min), logHi: math.Log10(r.Max)}, nil
	default:
		return nil, fmt.Errorf("%w: unknown scale %q", domain.ErrColormapScale, r.Scale)
	}
}
