package task

import (
	"context"
	"fmt"

	"github.com/meteovis/meteovis/internal/domain"
	"github.com/meteovis/meteovis/internal/opera"
	"github.com/meteovis/meteovis/internal/profile"
	"github.com/meteovis/meteovis/internal/projection"
)

// compositeTask renders a scan integration product. The data is already on
// a regular lattice and uses the fixed logarithmic composite range.
type compositeTask struct {
	base
}

func (t *compositeTask) Kind() Kind { return KindScanIntegration }

func (t *compositeTask) DiscoverOptions() ([]Option, error) {
	var opts []Option
	err := t.withFile(func(f opera.File) error {
		qtys, err := opera.ListQuantities(f, opera.CompositeDataset)
		if err != nil {
			return err
		}
		if len(qtys) == 0 {
			return fmt.Errorf("%w: no quantities in %s", domain.ErrSelectionNotFound, opera.CompositeDataset)
		}
		qtyOpt := Option{
			Key:         OptQuantity,
			Name:        "Quantity",
			Kind:        OptionKindDropdown,
			Description: "Integrated quantity to render.",
		}
		for _, q := range qtys {
			qtyOpt.Choices = append(qtyOpt.Choices, Choice{Label: q.Name, Value: q.Key})
		}
		opts = []Option{qtyOpt, appearanceOption()}
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("discover options %s: %w", t.path, err)
	}
	return opts, nil
}

func (t *compositeTask) Process(ctx context.Context, cfg Config) (*domain.PhysicalGrid, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	var comp *opera.Composite
	err := t.withFile(func(f opera.File) error {
		var err error
		comp, err = opera.ReadComposite(f, cfg.Option(OptQuantity))
		return err
	})
	if err != nil {
		return nil, processErr(t.path, err)
	}

	coords, err := projection.Lattice(comp.Bounds, comp.NRows, comp.NCols)
	if err != nil {
		return nil, processErr(t.path, err)
	}
	t.grid = &domain.PhysicalGrid{
		Values:    comp.Values,
		Coords:    coords,
		Bounds:    comp.Bounds,
		Range:     domain.CompositeRange,
		Timestamp: comp.Timestamp,
	}
	return t.grid, nil
}

func (t *compositeTask) DescribeResult(cfg Config) (profile.Options, error) {
	if t.grid == nil {
		return profile.Options{}, ErrNotProcessed
	}
	opts, err := t.DiscoverOptions()
	if err != nil {
		return profile.Options{}, err
	}
	return t.describe(cfg, opts)
}
