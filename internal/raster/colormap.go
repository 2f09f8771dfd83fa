// Package raster renders value grids on geographic corner grids into
// transparent PNG overlays.
package raster

import (
	"fmt"
	"image/color"
	"math"
	"sort"
	"strings"
)

// lutSize is the number of discrete colors per map, as in common plotting
// libraries.
const lutSize = 256

// anchor is one (x, value) breakpoint of a piecewise-linear channel.
type anchor struct{ x, v float64 }

// Colormap maps a normalized value in [0, 1] to an opaque color.
type Colormap struct {
	name string
	lut  [lutSize]color.NRGBA
}

// Name returns the registered name of the colormap.
func (c *Colormap) Name() string { return c.name }

// At returns the color of normalized value x. Values outside [0, 1] are
// clamped to the end colors.
func (c *Colormap) At(x float64) color.NRGBA {
	if math.IsNaN(x) {
		return color.NRGBA{}
	}
	i := int(x * lutSize)
	if i < 0 {
		i = 0
	}
	if i >= lutSize {
		i = lutSize - 1
	}
	return c.lut[i]
}

func newSegmented(name string, red, green, blue []anchor) *Colormap {
	c := &Colormap{name: name}
	for i := 0; i < lutSize; i++ {
		x := float64(i) / (lutSize - 1)
		c.lut[i] = color.NRGBA{
			R: channel(red, x),
			G: channel(green, x),
			B: channel(blue, x),
			A: 255,
		}
	}
	return c
}

func channel(anchors []anchor, x float64) uint8 {
	k := sort.Search(len(anchors), func(i int) bool { return anchors[i].x >= x })
	var v float64
	switch {
	case k == 0:
		v = anchors[0].v
	case k == len(anchors):
		v = anchors[len(anchors)-1].v
	default:
		a, b := anchors[k-1], anchors[k]
		v = a.v + (b.v-a.v)*(x-a.x)/(b.x-a.x)
	}
	return uint8(math.Round(v * 255))
}

var colormaps = map[string]*Colormap{
	"jet": newSegmented("jet",
		[]anchor{{0, 0}, {0.35, 0}, {0.66, 1}, {0.89, 1}, {1, 0.5}},
		[]anchor{{0, 0}, {0.125, 0}, {0.375, 1}, {0.64, 1}, {0.91, 0}, {1, 0}},
		[]anchor{{0, 0.5}, {0.11, 1}, {0.34, 1}, {0.65, 0}, {1, 0}},
	),
	"gray": newSegmented("gray",
		[]anchor{{0, 0}, {1, 1}},
		[]anchor{{0, 0}, {1, 1}},
		[]anchor{{0, 0}, {1, 1}},
	),
}

// LookupColormap returns the colormap registered under name.
func LookupColormap(name string) (*Colormap, error) {
	c, ok := colormaps[strings.ToLower(name)]
	if !ok {
		return nil, fmt.Errorf("unknown colormap %q", name)
	}
	return c, nil
}
