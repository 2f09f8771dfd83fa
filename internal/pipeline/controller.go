// Package pipeline runs batch jobs: it discovers the input files of a source
// directory, processes each one with a task, writes one image per timestamp
// and persists the run profile.
package pipeline

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"log/slog"
	"os"
	"path/filepath"
	"sort"
	"sync/atomic"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/meteovis/meteovis/internal/domain"
	"github.com/meteovis/meteovis/internal/observability"
	"github.com/meteovis/meteovis/internal/profile"
	"github.com/meteovis/meteovis/internal/task"
)

// ErrBusy is returned when Submit is called while another run is active.
var ErrBusy = errors.New("controller busy")

// Run describes a completed batch run.
type Run struct {
	ID      string
	Dir     string
	Profile *profile.RunProfile
}

// Controller schedules batch runs. Each run passes through three stages
// (init, process, render) on a bounded worker pool; every stage finishes
// before the next begins.
type Controller struct {
	root    string
	workers int
	env     task.Env
	logger  *slog.Logger
	metrics *observability.Metrics

	state   atomic.Int32
	running atomic.Bool
}

// New creates a Controller writing runs under root with at most workers
// files in flight per stage.
func New(root string, workers int, env task.Env, logger *slog.Logger, metrics *observability.Metrics) *Controller {
	if workers <= 0 {
		workers = 1
	}
	return &Controller{
		root:    root,
		workers: workers,
		env:     env,
		logger:  logger,
		metrics: metrics,
	}
}

// State reports the phase of the current or last run.
func (c *Controller) State() State {
	return State(c.state.Load())
}

func (c *Controller) setState(s State) {
	c.state.Store(int32(s))
	c.logger.Debug("run state", "state", s.String())
}

// ChooseTask resolves name to a task kind and discovers its options from the
// first file under source.
func (c *Controller) ChooseTask(source, name string) (task.Kind, []task.Option, error) {
	kind, err := task.ParseKind(name)
	if err != nil {
		return "", nil, err
	}
	files, err := DiscoverFiles(source)
	if err != nil {
		return "", nil, err
	}
	t, err := task.New(kind, files[0], c.env)
	if err != nil {
		return "", nil, err
	}
	opts, err := t.DiscoverOptions()
	if err != nil {
		return "", nil, err
	}
	return kind, opts, nil
}

// Submit processes every file under source with cfg and returns the
// persisted run. Any per-file failure aborts the whole batch and removes the
// run directory.
func (c *Controller) Submit(ctx context.Context, source string, cfg task.Config) (*Run, error) {
	kind, err := cfg.Kind()
	if err != nil {
		c.metrics.Runs.WithLabelValues("rejected").Inc()
		return nil, err
	}
	if !c.running.CompareAndSwap(false, true) {
		c.metrics.Runs.WithLabelValues("rejected").Inc()
		return nil, ErrBusy
	}
	defer c.running.Store(false)

	c.metrics.ControllerBusy.Set(1)
	defer c.metrics.ControllerBusy.Set(0)
	c.setState(StateIdle)

	run, err := c.submit(ctx, source, kind, cfg)
	if err != nil {
		c.setState(StateFailed)
		c.metrics.Runs.WithLabelValues("failed").Inc()
		c.logger.Error("run failed", "source", source, "task", string(kind), "error", err)
		return nil, err
	}
	c.setState(StateComplete)
	c.metrics.Runs.WithLabelValues("complete").Inc()
	c.logger.Info("run complete",
		"run_id", run.ID,
		"images", len(run.Profile.Images),
		"skipped", len(run.Profile.Skipped),
	)
	return run, nil
}

func (c *Controller) submit(ctx context.Context, source string, kind task.Kind, cfg task.Config) (run *Run, err error) {
	files, err := DiscoverFiles(source)
	if err != nil {
		return nil, err
	}
	c.metrics.FilesDiscovered.Add(float64(len(files)))
	c.setState(StateFilesDiscovered)
	c.logger.Info("files discovered", "source", source, "files", len(files))

	id := domain.NewRunID()
	runDir, err := c.createRunDir(id)
	if err != nil {
		return nil, err
	}
	defer func() {
		if err == nil {
			return
		}
		if rmErr := os.RemoveAll(runDir); rmErr != nil {
			c.logger.Warn("remove failed run directory", "run_id", id, "error", rmErr)
		}
	}()
	imageDir := filepath.Join(runDir, profile.ImageDir)

	tasks := make([]task.Task, len(files))
	err = c.runStage(ctx, "init", len(files), func(_ context.Context, i int) error {
		t, err := task.New(kind, files[i], c.env)
		if err != nil {
			return err
		}
		tasks[i] = t
		return nil
	})
	if err != nil {
		return nil, err
	}

	c.setState(StateTasksProcessing)
	err = c.runStage(ctx, "process", len(tasks), func(ctx context.Context, i int) error {
		if _, err := tasks[i].Process(ctx, cfg); err != nil {
			if ctx.Err() == nil {
				c.metrics.TaskErrors.Inc()
			}
			return err
		}
		c.metrics.TasksProcessed.Inc()
		return nil
	})
	if err != nil {
		return nil, err
	}

	keep, skipped, err := c.resolveCollisions(source, tasks)
	if err != nil {
		return nil, err
	}

	images := make([]string, len(keep))
	err = c.runStage(ctx, "render", len(keep), func(_ context.Context, i int) error {
		path, err := keep[i].CreateOutput(imageDir)
		if err != nil {
			return err
		}
		images[i] = filepath.Base(path)
		c.metrics.ImagesWritten.Inc()
		return nil
	})
	if err != nil {
		return nil, err
	}
	sort.Strings(images)
	c.setState(StateImagesWritten)

	start := time.Now()
	options, err := tasks[0].DescribeResult(cfg)
	if err != nil {
		return nil, err
	}
	p := &profile.RunProfile{
		ID:        id,
		Source:    source,
		TempPath:  imageDir,
		CreatedAt: domain.Now().UTC(),
		Task: profile.TaskRecord{
			Name:    cfg.Name,
			Desc:    cfg.Desc,
			Task:    kind.Label(),
			Kind:    string(kind),
			Options: options,
		},
		Images:  images,
		Skipped: skipped,
	}
	if err := profile.Write(runDir, p); err != nil {
		return nil, err
	}
	c.metrics.StageDuration.WithLabelValues("profile").Observe(time.Since(start).Seconds())
	c.setState(StateProfilePersisted)

	return &Run{ID: id, Dir: runDir, Profile: p}, nil
}

// createRunDir creates root/id and its image directory. An existing run
// directory is never reused.
func (c *Controller) createRunDir(id string) (string, error) {
	if err := os.MkdirAll(c.root, 0o755); err != nil {
		return "", fmt.Errorf("create run root %s: %w", c.root, err)
	}
	runDir := profile.RunDir(c.root, id)
	if err := os.Mkdir(runDir, 0o755); err != nil {
		if errors.Is(err, fs.ErrExist) {
			return "", fmt.Errorf("%w: %s", domain.ErrDirectoryExists, runDir)
		}
		return "", fmt.Errorf("create run directory: %w", err)
	}
	if err := os.Mkdir(filepath.Join(runDir, profile.ImageDir), 0o755); err != nil {
		_ = os.RemoveAll(runDir)
		return "", fmt.Errorf("create image directory: %w", err)
	}
	return runDir, nil
}

// resolveCollisions keeps the first task in discovery order for each output
// name. Later tasks with the same name are returned as skipped source paths,
// relative to source.
func (c *Controller) resolveCollisions(source string, tasks []task.Task) ([]task.Task, []string, error) {
	seen := make(map[string]string, len(tasks))
	keep := make([]task.Task, 0, len(tasks))
	var skipped []string
	for _, t := range tasks {
		name, err := t.OutputName()
		if err != nil {
			return nil, nil, err
		}
		if first, ok := seen[name]; ok {
			c.metrics.ImageCollisions.Inc()
			c.logger.Warn("timestamp collision, skipping file",
				"file", t.Path(),
				"image", name,
				"kept", first,
			)
			skipped = append(skipped, relPath(source, t.Path()))
			continue
		}
		seen[name] = t.Path()
		keep = append(keep, t)
	}
	return keep, skipped, nil
}

// runStage calls fn for every index on the worker pool and waits for all of
// them. The first error cancels the remaining calls.
func (c *Controller) runStage(ctx context.Context, stage string, n int, fn func(ctx context.Context, i int) error) error {
	start := time.Now()
	c.logger.Debug("stage started", "stage", stage, "files", n)

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(c.workers)
	for i := 0; i < n; i++ {
		g.Go(func() error {
			if err := gctx.Err(); err != nil {
				return err
			}
			return fn(gctx, i)
		})
	}
	err := g.Wait()

	elapsed := time.Since(start)
	c.metrics.StageDuration.WithLabelValues(stage).Observe(elapsed.Seconds())
	if err != nil {
		return fmt.Errorf("%s stage: %w", stage, err)
	}
	c.logger.Info("stage finished", "stage", stage, "files", n, "duration", elapsed)
	return nil
}

func relPath(base, path string) string {
	if rel, err := filepath.Rel(base, path); err == nil {
		return rel
	}
	return path
}
