package main

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"log/slog"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/meteovis/meteovis/internal/config"
	"github.com/meteovis/meteovis/internal/domain"
	"github.com/meteovis/meteovis/internal/observability"
	"github.com/meteovis/meteovis/internal/opera"
	"github.com/meteovis/meteovis/internal/pipeline"
	"github.com/meteovis/meteovis/internal/profile"
	"github.com/meteovis/meteovis/internal/raster"
	"github.com/meteovis/meteovis/internal/task"
)

func testApp(t *testing.T) (*app, *bytes.Buffer) {
	t.Helper()
	cfg := &config.Config{
		TempSetPath: t.TempDir(),
		Workers:     2,
		ImageWidth:  64,
		Colormap:    "jet",
		MetricsFile: filepath.Join(t.TempDir(), "meteovis.prom"),
	}
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	metrics := observability.NewMetricsForTesting()
	env := task.Env{Rasterizer: raster.New(cfg.ImageWidth), Colormap: cfg.Colormap}
	out := &bytes.Buffer{}
	return &app{
		cfg:     cfg,
		logger:  logger,
		metrics: metrics,
		ctrl:    pipeline.New(cfg.TempSetPath, cfg.Workers, env, logger, metrics),
		out:     out,
	}, out
}

func writeSource(t *testing.T) string {
	t.Helper()
	src := t.TempDir()
	for i, hhmmss := range []string{"120000", "120500"} {
		tree := opera.PolarFixture{
			Site: domain.Site{Lon: 4.79, Lat: 52.95, Height: 50},
			Date: "20230101",
			Time: hhmmss,
			Sweeps: []opera.SweepFixture{{
				ElAngle: 0.5, RScale: 1000, NRays: 12, NBins: 4,
				Quantities: []opera.QuantityFixture{{
					Name: "DBZH", Gain: 0.5, Offset: -31.5, Nodata: 255, Undetect: 0,
					Raw: opera.Uniform(12, 4, float64(100+i)),
				}},
			}},
		}.Tree()
		require.NoError(t, tree.WriteFile(filepath.Join(src, "vol"+hhmmss+".json")))
	}
	return src
}

func TestOptionFlags(t *testing.T) {
	o := optionFlags{}
	require.NoError(t, o.Set("scan=dataset1"))
	require.NoError(t, o.Set("qty=data2"))
	assert.Equal(t, optionFlags{"scan": "dataset1", "qty": "data2"}, o)
	require.Error(t, o.Set("scan"))
	require.Error(t, o.Set("=x"))
}

func TestCommands_Lifecycle(t *testing.T) {
	a, out := testApp(t)
	src := writeSource(t)
	ctx := context.Background()

	require.NoError(t, a.run(ctx, "options", []string{"-source", src, "-task", "polar-volume"}))
	var listed struct {
		Task    string        `json:"task"`
		Options []task.Option `json:"options"`
	}
	require.NoError(t, json.Unmarshal(out.Bytes(), &listed))
	assert.Equal(t, "polar-volume", listed.Task)
	require.Len(t, listed.Options, 3)
	out.Reset()

	require.NoError(t, a.run(ctx, "submit", []string{"-source", src, "-task", "polar-volume", "-name", "demo"}))
	id, _, ok := strings.Cut(out.String(), "\t")
	require.True(t, ok)
	assert.FileExists(t, a.cfg.MetricsFile)
	out.Reset()

	require.NoError(t, a.run(ctx, "list", nil))
	assert.Contains(t, out.String(), id)
	assert.Contains(t, out.String(), "Radar polar volume (2D)")
	out.Reset()

	require.NoError(t, a.run(ctx, "show", []string{"-id", id}))
	var p profile.RunProfile
	require.NoError(t, json.Unmarshal(out.Bytes(), &p))
	assert.Equal(t, "demo", p.Task.Name)
	assert.Equal(t, []string{"20230101 1200.png", "20230101 1205.png"}, p.Images)

	require.NoError(t, a.run(ctx, "remove", []string{"-id", id}))
	assert.NoDirExists(t, profile.RunDir(a.cfg.TempSetPath, id))
}

func TestCommands_Errors(t *testing.T) {
	a, _ := testApp(t)
	src := writeSource(t)
	ctx := context.Background()

	require.Error(t, a.run(ctx, "explode", nil))
	require.ErrorIs(t, a.run(ctx, "submit", []string{"-source", src}), domain.ErrConfiguration)
	require.ErrorIs(t, a.run(ctx, "submit", []string{"-source", src, "-task", "polar-volume", "-opt", "scan=dataset4"}), domain.ErrSelectionNotFound)
	require.Error(t, a.run(ctx, "show", nil))
	for _, id := range []string{"..", "../..", "../" + filepath.Base(a.cfg.TempSetPath), `a\b`} {
		require.ErrorIs(t, a.run(ctx, "show", []string{"-id", id}), domain.ErrConfiguration, id)
		require.ErrorIs(t, a.run(ctx, "remove", []string{"-id", id}), domain.ErrConfiguration, id)
	}
}
