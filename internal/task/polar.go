package task

import (
	"context"
	"fmt"

	"github.com/meteovis/meteovis/internal/domain"
	"github.com/meteovis/meteovis/internal/opera"
	"github.com/meteovis/meteovis/internal/profile"
)

// polarTask renders one sweep of a polar volume: read and calibrate, project
// to geographic corners, then pick a tiered color range.
type polarTask struct {
	base
}

func (t *polarTask) Kind() Kind { return KindPolarVolume }

func (t *polarTask) DiscoverOptions() ([]Option, error) {
	var opts []Option
	err := t.withFile(func(f opera.File) error {
		scans, err := opera.ListScans(f)
		if err != nil {
			return err
		}
		if len(scans) == 0 {
			return fmt.Errorf("%w: no sweeps", domain.ErrSelectionNotFound)
		}

		scanOpt := Option{
			Key:         OptScan,
			Name:        "Scan",
			Kind:        OptionKindDropdown,
			Description: "Sweep to render, by elevation angle.",
		}
		qtyOpt := Option{
			Key:         OptQuantity,
			Name:        "Quantity",
			Kind:        OptionKindDropdown,
			Description: "Measured quantity to render.",
		}
		seen := make(map[string]bool)
		for i, s := range scans {
			scanOpt.Choices = append(scanOpt.Choices, Choice{
				Label: fmt.Sprintf("Scan %d (Elev. = %g)", i, s.ElAngle),
				Value: s.Key,
			})
			qtys, err := opera.ListQuantities(f, s.Key)
			if err != nil {
				return err
			}
			for _, q := range qtys {
				if seen[q.Key] {
					continue
				}
				seen[q.Key] = true
				qtyOpt.Choices = append(qtyOpt.Choices, Choice{Label: q.Name, Value: q.Key})
			}
		}
		opts = []Option{scanOpt, qtyOpt, appearanceOption()}
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("discover options %s: %w", t.path, err)
	}
	return opts, nil
}

func (t *polarTask) Process(ctx context.Context, cfg Config) (*domain.PhysicalGrid, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	sel := domain.ScanSelection{Scan: cfg.Option(OptScan), Quantity: cfg.Option(OptQuantity)}

	var sweep *opera.Sweep
	err := t.withFile(func(f opera.File) error {
		var err error
		sweep, err = opera.ReadSweep(f, sel)
		return err
	})
	if err != nil {
		return nil, processErr(t.path, err)
	}

	coords, err := t.env.Projector.Project(sweep.Geometry, sweep.Site)
	if err != nil {
		return nil, processErr(t.path, err)
	}
	t.grid = &domain.PhysicalGrid{
		Values:    sweep.Values,
		Coords:    coords,
		Bounds:    coords.Bounds(),
		Range:     domain.SelectGridColorRange(sweep.Values),
		Timestamp: sweep.Timestamp,
	}
	return t.grid, nil
}

func (t *polarTask) DescribeResult(cfg Config) (profile.Options, error) {
	if t.grid == nil {
		return profile.Options{}, ErrNotProcessed
	}
	opts, err := t.DiscoverOptions()
	if err != nil {
		return profile.Options{}, err
	}
	return t.describe(cfg, opts)
}
