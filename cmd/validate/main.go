// Command validate checks the integrity of finished run directories: the
// profile parses against its schema, every listed image exists and decodes,
// image names are canonical timestamps, and the display metadata is usable
// by a map viewer.
//
// Usage:
//
//	go run ./cmd/validate -root temp_sets
//	go run ./cmd/validate -root temp_sets -id 1700000000000000000
package main

import (
	"flag"
	"fmt"
	"image/png"
	"io"
	"os"
	"path/filepath"
	"sort"

	"github.com/meteovis/meteovis/internal/config"
	"github.com/meteovis/meteovis/internal/domain"
	"github.com/meteovis/meteovis/internal/profile"
	"github.com/meteovis/meteovis/internal/task"
)

// phase tracks pass/fail for a validation phase.
type phase struct {
	name   string
	errors []string
}

func (p *phase) errorf(format string, args ...any) {
	p.errors = append(p.errors, fmt.Sprintf(format, args...))
}

func (p *phase) passed() bool { return len(p.errors) == 0 }

func main() {
	root := flag.String("root", "", "directory holding run directories (default: METEOVIS_TEMP_SET_PATH)")
	id := flag.String("id", "", "validate a single run id instead of every run")
	flag.Parse()

	if *root == "" {
		cfg, err := config.Load()
		if err != nil {
			fmt.Fprintf(os.Stderr, "FATAL: load config: %v\n", err)
			os.Exit(1)
		}
		*root = cfg.TempSetPath
	}

	if code := run(os.Stdout, *root, *id); code != 0 {
		os.Exit(code)
	}
}

func run(w io.Writer, root, id string) int {
	fmt.Fprintln(w, "=== Run Directory Validation ===")
	fmt.Fprintln(w)

	dirs, err := runDirs(root, id)
	if err != nil {
		fmt.Fprintf(w, "FATAL: %v\n", err)
		return 1
	}
	if len(dirs) == 0 {
		fmt.Fprintf(w, "FATAL: no runs under %s\n", root)
		return 1
	}

	allPassed := true
	for _, dir := range dirs {
		if !validateRun(w, dir) {
			allPassed = false
		}
	}

	if allPassed {
		fmt.Fprintf(w, "\nAll validations passed (%d runs).\n", len(dirs))
		return 0
	}
	fmt.Fprintln(w, "\nValidation FAILED.")
	return 1
}

// runDirs lists the run directories to check, sorted by id.
func runDirs(root, id string) ([]string, error) {
	if id != "" {
		return []string{profile.RunDir(root, id)}, nil
	}
	entries, err := os.ReadDir(root)
	if err != nil {
		return nil, err
	}
	var dirs []string
	for _, e := range entries {
		if e.IsDir() {
			dirs = append(dirs, filepath.Join(root, e.Name()))
		}
	}
	sort.Strings(dirs)
	return dirs, nil
}

func validateRun(w io.Writer, dir string) bool {
	fmt.Fprintf(w, "Run %s\n", filepath.Base(dir))

	p, schema := validateSchema(dir)
	phases := []*phase{schema}
	if p != nil {
		phases = append(phases,
			validateInventory(dir, p),
			validateImages(dir, p),
			validateDisplay(p),
		)
	}

	ok := true
	for _, ph := range phases {
		status := "\033[32mPASS\033[0m"
		if !ph.passed() {
			status = fmt.Sprintf("\033[31mFAIL (%d errors)\033[0m", len(ph.errors))
			ok = false
		}
		fmt.Fprintf(w, "  %-42s %s\n", ph.name, status)
	}
	for _, ph := range phases {
		for i, e := range ph.errors {
			fmt.Fprintf(w, "    %s [%d] %s\n", ph.name, i+1, e)
		}
	}
	return ok
}

// ── Phase 1: Profile schema ──

func validateSchema(dir string) (*profile.RunProfile, *phase) {
	ph := &phase{name: "Phase 1: Profile schema"}
	p, err := profile.Load(dir)
	if err != nil {
		ph.errorf("%v", err)
		return nil, ph
	}
	if p.ID != filepath.Base(dir) {
		ph.errorf("profile id %s does not match directory %s", p.ID, filepath.Base(dir))
	}
	return p, ph
}

// ── Phase 2: Image inventory ──
// Every listed image exists, and every file in the image directory is listed.

func validateInventory(dir string, p *profile.RunProfile) *phase {
	ph := &phase{name: "Phase 2: Image inventory"}
	imageDir := filepath.Join(dir, profile.ImageDir)

	listed := make(map[string]bool, len(p.Images))
	for _, name := range p.Images {
		if listed[name] {
			ph.errorf("image %s listed twice", name)
		}
		listed[name] = true
		if _, err := domain.ParseImageName(name); err != nil {
			ph.errorf("%v", err)
		}
	}

	entries, err := os.ReadDir(imageDir)
	if err != nil {
		ph.errorf("read image directory: %v", err)
		return ph
	}
	onDisk := make(map[string]bool, len(entries))
	for _, e := range entries {
		onDisk[e.Name()] = true
		if !listed[e.Name()] {
			ph.errorf("unlisted file %s", e.Name())
		}
	}
	for name := range listed {
		if !onDisk[name] {
			ph.errorf("missing image %s", name)
		}
	}
	if len(p.Images) == 0 {
		ph.errorf("run has no images")
	}
	return ph
}

// ── Phase 3: Image decoding ──
// Images decode as PNG and share one size so frames overlay identically.

func validateImages(dir string, p *profile.RunProfile) *phase {
	ph := &phase{name: "Phase 3: Image decoding"}
	var width, height int
	for _, name := range p.Images {
		path := filepath.Join(dir, profile.ImageDir, name)
		f, err := os.Open(path)
		if err != nil {
			ph.errorf("%v", err)
			continue
		}
		cfg, err := png.DecodeConfig(f)
		f.Close()
		if err != nil {
			ph.errorf("%s: %v", name, err)
			continue
		}
		if cfg.Width <= 0 || cfg.Height <= 0 {
			ph.errorf("%s: empty image %dx%d", name, cfg.Width, cfg.Height)
		}
		if width == 0 {
			width, height = cfg.Width, cfg.Height
			continue
		}
		if cfg.Width != width || cfg.Height != height {
			ph.errorf("%s: size %dx%d differs from %dx%d", name, cfg.Width, cfg.Height, width, height)
		}
	}
	return ph
}

// ── Phase 4: Display metadata ──

func validateDisplay(p *profile.RunProfile) *phase {
	ph := &phase{name: "Phase 4: Display metadata"}
	kind, err := task.ParseKind(p.Task.Kind)
	if err != nil {
		ph.errorf("%v", err)
	} else if kind.Label() != p.Task.Task {
		ph.errorf("task label %q does not match kind %s", p.Task.Task, kind)
	}

	b := p.Task.Options.Bounds
	if err := b.Validate(); err != nil {
		ph.errorf("%v", err)
	}
	if b.LatMin() < -90 || b.LatMax() > 90 || b.LonMin() < -180 || b.LonMax() > 180 {
		ph.errorf("bounds %v outside the globe", b)
	}

	cm := p.Task.Options.Colormap
	if cm == nil {
		ph.errorf("no colormap recorded")
		return ph
	}
	if err := cm.Range.Validate(); err != nil {
		ph.errorf("%v", err)
	}
	if kind == task.KindScanIntegration && cm.Range != domain.CompositeRange {
		ph.errorf("composite range %v, want %v", cm.Range, domain.CompositeRange)
	}
	return ph
}
