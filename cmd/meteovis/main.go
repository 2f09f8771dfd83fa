// Command meteovis renders OPERA weather-radar files into map overlay image
// series and manages the resulting runs.
//
// Usage:
//
//	meteovis options -source data/radar -task polar-volume
//	meteovis submit  -source data/radar -task polar-volume -opt scan=dataset1 -opt qty=data1
//	meteovis list
//	meteovis show    -id 1700000000000000000
//	meteovis remove  -id 1700000000000000000
package main

import (
	"context"
	"encoding/json"
	"errors"
	"flag"
	"fmt"
	"io"
	"log/slog"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"text/tabwriter"
	"time"

	"github.com/meteovis/meteovis/internal/config"
	"github.com/meteovis/meteovis/internal/observability"
	"github.com/meteovis/meteovis/internal/pipeline"
	"github.com/meteovis/meteovis/internal/profile"
	"github.com/meteovis/meteovis/internal/projection"
	"github.com/meteovis/meteovis/internal/raster"
	"github.com/meteovis/meteovis/internal/task"
)

const usage = `usage: meteovis <command> [flags]

commands:
  options   list the selectable options of a task for a source directory
  submit    render every file of a source directory
  list      list finished runs
  show      print the profile of a run
  remove    delete a run`

// app holds the wiring shared by every command.
type app struct {
	cfg     *config.Config
	logger  *slog.Logger
	metrics *observability.Metrics
	ctrl    *pipeline.Controller
	out     io.Writer
}

func main() {
	if len(os.Args) < 2 {
		fmt.Fprintln(os.Stderr, usage)
		os.Exit(2)
	}

	cfg, err := config.Load()
	if err != nil {
		slog.Error("failed to load config", "error", err)
		os.Exit(1)
	}

	logger := observability.NewLogger(cfg)
	metrics := observability.NewMetrics()
	env := task.Env{
		Projector:  projection.New(cfg.ProjectionCacheSize, metrics),
		Rasterizer: raster.New(cfg.ImageWidth),
		Colormap:   cfg.Colormap,
	}
	a := &app{
		cfg:     cfg,
		logger:  logger,
		metrics: metrics,
		ctrl:    pipeline.New(cfg.TempSetPath, cfg.Workers, env, logger, metrics),
		out:     os.Stdout,
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	if err := a.run(ctx, os.Args[1], os.Args[2:]); err != nil {
		if errors.Is(err, flag.ErrHelp) {
			os.Exit(0)
		}
		logger.Error("command failed", "command", os.Args[1], "error", err)
		stop()
		os.Exit(1)
	}
}

func (a *app) run(ctx context.Context, cmd string, args []string) error {
	switch cmd {
	case "options":
		return a.options(args)
	case "submit":
		return a.submit(ctx, args)
	case "list":
		return a.list(args)
	case "show":
		return a.show(args)
	case "remove":
		return a.remove(args)
	default:
		fmt.Fprintln(os.Stderr, usage)
		return fmt.Errorf("unknown command %q", cmd)
	}
}

// optionFlags collects repeated -opt key=value flags.
type optionFlags map[string]string

func (o optionFlags) String() string {
	parts := make([]string, 0, len(o))
	for k, v := range o {
		parts = append(parts, k+"="+v)
	}
	return strings.Join(parts, ",")
}

func (o optionFlags) Set(s string) error {
	k, v, ok := strings.Cut(s, "=")
	if !ok || k == "" {
		return fmt.Errorf("option %q is not key=value", s)
	}
	o[k] = v
	return nil
}

func (a *app) options(args []string) error {
	fs := flag.NewFlagSet("options", flag.ContinueOnError)
	source := fs.String("source", "", "source directory of input files")
	name := fs.String("task", "", "task kind or label")
	if err := fs.Parse(args); err != nil {
		return err
	}
	if *source == "" {
		return errors.New("-source is required")
	}

	kind, opts, err := a.ctrl.ChooseTask(*source, *name)
	if err != nil {
		return err
	}
	return writeJSON(a.out, map[string]any{
		"task":    string(kind),
		"label":   kind.Label(),
		"options": opts,
	})
}

func (a *app) submit(ctx context.Context, args []string) error {
	fs := flag.NewFlagSet("submit", flag.ContinueOnError)
	source := fs.String("source", "", "source directory of input files")
	name := fs.String("task", "", "task kind or label")
	runName := fs.String("name", "", "run name recorded in the profile")
	desc := fs.String("desc", "", "run description recorded in the profile")
	opts := optionFlags{}
	fs.Var(opts, "opt", "task option as key=value, repeatable; unset options take the first choice")
	if err := fs.Parse(args); err != nil {
		return err
	}
	if *source == "" {
		return errors.New("-source is required")
	}

	cfg := task.Config{Name: *runName, Desc: *desc, Task: *name, Options: opts}
	if *name != "" {
		_, available, err := a.ctrl.ChooseTask(*source, *name)
		if err != nil {
			return err
		}
		cfg = cfg.WithDefaults(available)
		if err := cfg.Validate(available); err != nil {
			return err
		}
	}

	start := time.Now()
	run, err := a.ctrl.Submit(ctx, *source, cfg)
	a.writeMetrics()
	if err != nil {
		return err
	}
	a.logger.Info("submit finished", "run_id", run.ID, "duration", time.Since(start))
	fmt.Fprintf(a.out, "%s\t%s\t%d images\n", run.ID, run.Dir, len(run.Profile.Images))
	return nil
}

func (a *app) writeMetrics() {
	if a.cfg.MetricsFile == "" {
		return
	}
	if err := a.metrics.WriteTextfile(a.cfg.MetricsFile); err != nil {
		a.logger.Warn("metrics textfile not written", "path", a.cfg.MetricsFile, "error", err)
	}
}

func (a *app) list(args []string) error {
	fs := flag.NewFlagSet("list", flag.ContinueOnError)
	if err := fs.Parse(args); err != nil {
		return err
	}
	runs, err := profile.List(a.cfg.TempSetPath)
	if err != nil {
		return err
	}
	w := tabwriter.NewWriter(a.out, 0, 4, 2, ' ', 0)
	fmt.Fprintln(w, "ID\tCREATED\tTASK\tNAME\tIMAGES")
	for _, r := range runs {
		fmt.Fprintf(w, "%s\t%s\t%s\t%s\t%d\n",
			r.ID, r.CreatedAt.Format(time.RFC3339), r.Task.Task, r.Task.Name, len(r.Images))
	}
	return w.Flush()
}

func (a *app) show(args []string) error {
	fs := flag.NewFlagSet("show", flag.ContinueOnError)
	id := fs.String("id", "", "run id")
	if err := fs.Parse(args); err != nil {
		return err
	}
	if *id == "" {
		return errors.New("-id is required")
	}
	p, err := profile.LoadRun(a.cfg.TempSetPath, *id)
	if err != nil {
		return err
	}
	return writeJSON(a.out, p)
}

func (a *app) remove(args []string) error {
	fs := flag.NewFlagSet("remove", flag.ContinueOnError)
	id := fs.String("id", "", "run id")
	if err := fs.Parse(args); err != nil {
		return err
	}
	if *id == "" {
		return errors.New("-id is required")
	}
	if err := profile.Remove(a.cfg.TempSetPath, *id); err != nil {
		return err
	}
	a.logger.Info("run removed", "run_id", *id)
	return nil
}

func writeJSON(w io.Writer, v any) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}
