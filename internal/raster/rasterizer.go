package raster

import (
	"fmt"
	"image"
	"io"
	"math"
	"os"

	"github.com/fogleman/gg"

	"github.com/meteovis/meteovis/internal/domain"
)

// DefaultWidth is the raster width used when none is configured.
const DefaultWidth = 1200

// seamWidth is the outline drawn around every cell so neighbouring quads
// leave no anti-aliasing gaps.
const seamWidth = 0.5

// Style selects how values are colored.
type Style struct {
	Colormap string
	Range    domain.ColorRange
}

// Rasterizer draws value grids as filled quads on a transparent canvas whose
// extent matches the geographic bounds exactly.
type Rasterizer struct {
	width int
}

// New creates a Rasterizer producing images width pixels wide. A non-positive
// width selects DefaultWidth.
func New(width int) *Rasterizer {
	if width <= 0 {
		width = DefaultWidth
	}
	return &Rasterizer{width: width}
}

// Width returns the configured pixel width.
func (r *Rasterizer) Width() int { return r.width }

// Size returns the pixel dimensions for bounds, keeping the
// longitude/latitude aspect of the box.
func (r *Rasterizer) Size(b domain.Bounds) (w, h int, err error) {
	if err := b.Validate(); err != nil {
		return 0, 0, err
	}
	lonSpan := b.LonMax() - b.LonMin()
	latSpan := b.LatMax() - b.LatMin()
	if lonSpan <= 0 || latSpan <= 0 {
		return 0, 0, fmt.Errorf("%w: degenerate bounds %v", domain.ErrMalformedGeometry, b)
	}
	h = int(math.Round(float64(r.width) * latSpan / lonSpan))
	if h < 1 {
		h = 1
	}
	return r.width, h, nil
}

// Render draws values on the corner grid coords. Cell (i, j) is the quad
// spanned by corners (i, j), (i, j+1), (i+1, j+1) and (i+1, j). Masked cells
// and values the scale cannot represent stay transparent.
func (r *Rasterizer) Render(coords *domain.CoordGrid, values *domain.MaskedGrid, b domain.Bounds, style Style) (image.Image, error) {
	if coords == nil || values == nil {
		return nil, fmt.Errorf("%w: missing grid", domain.ErrMalformedGeometry)
	}
	if !coords.Fits(values.Rows, values.Cols) {
		return nil, fmt.Errorf("%w: coordinate grid %dx%d does not bound value grid %dx%d",
			domain.ErrMalformedGeometry, coords.Rows, coords.Cols, values.Rows, values.Cols)
	}
	cmap, err := LookupColormap(style.Colormap)
	if err != nil {
		return nil, err
	}
	norm, err := NewNorm(style.Range)
	if err != nil {
		return nil, err
	}
	w, h, err := r.Size(b)
	if err != nil {
		return nil, err
	}

	sx := float64(w) / (b.LonMax() - b.LonMin())
	sy := float64(h) / (b.LatMax() - b.LatMin())
	toPixel := func(row, col int) (float64, float64) {
		lon, lat := coords.At(row, col)
		return (lon - b.LonMin()) * sx, (b.LatMax() - lat) * sy
	}

	dc := gg.NewContext(w, h)
	dc.SetLineWidth(seamWidth)
	for i := 0; i < values.Rows; i++ {
		for j := 0; j < values.Cols; j++ {
			v, ok := values.At(i, j)
			if !ok || math.IsNaN(v) {
				continue
			}
			x, ok := norm.Normalize(v)
			if !ok {
				continue
			}
			dc.SetColor(cmap.At(x))
			dc.NewSubPath()
			dc.MoveTo(toPixel(i, j))
			dc.LineTo(toPixel(i, j+1))
			dc.LineTo(toPixel(i+1, j+1))
			dc.LineTo(toPixel(i+1, j))
			dc.ClosePath()
			dc.FillPreserve()
			dc.Stroke()
		}
	}
	return dc.Image(), nil
}

// RenderGrid renders a processed grid with its own bounds and color range.
func (r *Rasterizer) RenderGrid(g *domain.PhysicalGrid, colormap string) (image.Image, error) {
	return r.Render(g.Coords, g.Values, g.Bounds, Style{Colormap: colormap, Range: g.Range})
}

// EncodePNG writes img to w as PNG.
func EncodePNG(w io.Writer, img image.Image) error {
	dc := gg.NewContextForImage(img)
	return dc.EncodePNG(w)
}

// SavePNG writes img to path, failing if the file already exists.
func SavePNG(path string, img image.Image) error {
	f, err := os.OpenFile(path, os.O_WRONLY|os.O_CREATE|os.O_EXCL, 0o644)
	if err != nil {
		return fmt.Errorf("create image %s: %w", path, err)
	}
	if err := EncodePNG(f, img); err != nil {
		f.Close()
		return fmt.Errorf("encode image %s: %w", path, err)
	}
	return f.Close()
}
