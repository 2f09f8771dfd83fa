package task

import (
	"context"
	"errors"
	"fmt"
	"path/filepath"

	"github.com/meteovis/meteovis/internal/domain"
	"github.com/meteovis/meteovis/internal/opera"
	"github.com/meteovis/meteovis/internal/profile"
	"github.com/meteovis/meteovis/internal/projection"
	"github.com/meteovis/meteovis/internal/raster"
)

// ErrNotProcessed is returned when a result is requested before Process
// succeeded.
var ErrNotProcessed = errors.New("task not processed")

// Task processes a single input file.
//
// A Task is owned by one worker at a time: Process must complete before
// OutputName, CreateOutput or DescribeResult are called.
type Task interface {
	Kind() Kind
	Path() string

	// DiscoverOptions lists the selectable settings for the file, reading
	// metadata only.
	DiscoverOptions() ([]Option, error)

	// Process reads, projects and color-ranges the selected data.
	Process(ctx context.Context, cfg Config) (*domain.PhysicalGrid, error)

	// Result returns the grid of the last successful Process, or nil.
	Result() *domain.PhysicalGrid

	// OutputName is the image file name derived from the data timestamp.
	OutputName() (string, error)

	// CreateOutput renders the processed grid into dir and returns the
	// image path.
	CreateOutput(dir string) (string, error)

	// DescribeResult returns the resolved options recorded in the run
	// profile, with labels in place of raw group keys.
	DescribeResult(cfg Config) (profile.Options, error)
}

// Env holds the collaborators shared by every task of a run.
type Env struct {
	Open       opera.Opener
	Projector  *projection.Projector
	Rasterizer *raster.Rasterizer
	Colormap   string
}

func (e Env) withDefaults() Env {
	if e.Open == nil {
		e.Open = opera.Open
	}
	if e.Projector == nil {
		e.Projector = projection.New(0, nil)
	}
	if e.Rasterizer == nil {
		e.Rasterizer = raster.New(raster.DefaultWidth)
	}
	if e.Colormap == "" {
		e.Colormap = "jet"
	}
	return e
}

// New creates the task of the given kind for the file at path.
func New(kind Kind, path string, env Env) (Task, error) {
	b := base{path: path, env: env.withDefaults()}
	switch kind {
	case KindPolarVolume:
		return &polarTask{base: b}, nil
	case KindScanIntegration:
		return &compositeTask{base: b}, nil
	default:
		return nil, fmt.Errorf("%w: unknown task %q", domain.ErrConfiguration, kind)
	}
}

// base carries the state every kind shares once a grid is processed.
type base struct {
	path string
	env  Env
	grid *domain.PhysicalGrid
}

func (b *base) Path() string { return b.path }

func (b *base) Result() *domain.PhysicalGrid { return b.grid }

// withFile opens the input, runs fn and closes the file.
func (b *base) withFile(fn func(f opera.File) error) error {
	f, err := b.env.Open(b.path)
	if err != nil {
		return err
	}
	ferr := fn(f)
	cerr := f.Close()
	if ferr != nil {
		return ferr
	}
	if cerr != nil {
		return fmt.Errorf("close %s: %w", b.path, cerr)
	}
	return nil
}

func (b *base) OutputName() (string, error) {
	if b.grid == nil {
		return "", ErrNotProcessed
	}
	return domain.ImageName(b.grid.Stamp()), nil
}

func (b *base) CreateOutput(dir string) (string, error) {
	name, err := b.OutputName()
	if err != nil {
		return "", err
	}
	img, err := b.env.Rasterizer.RenderGrid(b.grid, b.env.Colormap)
	if err != nil {
		return "", fmt.Errorf("render %s: %w", b.path, err)
	}
	path := filepath.Join(dir, name)
	if err := raster.SavePNG(path, img); err != nil {
		return "", err
	}
	return path, nil
}

// describe fills the profile options shared by both kinds. Raw group keys
// are replaced by the labels offered in opts.
func (b *base) describe(cfg Config, opts []Option) (profile.Options, error) {
	if b.grid == nil {
		return profile.Options{}, ErrNotProcessed
	}
	out := profile.Options{
		Bounds: b.grid.Bounds,
		Colormap: &profile.Colormap{
			Name:  b.env.Colormap,
			Range: b.grid.Range,
		},
		Appearance: cfg.Option(OptAppearance),
	}
	if out.Appearance == "" {
		out.Appearance = AppearanceDynamic
	}
	if o, ok := findOption(opts, OptScan); ok {
		out.Scan = o.Label(cfg.Option(OptScan))
	}
	if o, ok := findOption(opts, OptQuantity); ok {
		out.Quantity = o.Label(cfg.Option(OptQuantity))
	}
	return out, nil
}

func processErr(path string, err error) error {
	return fmt.Errorf("process %s: %w", path, err)
}
