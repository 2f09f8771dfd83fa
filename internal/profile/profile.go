// Package profile persists the record of a finished batch run next to its
// images, and reads it back for viewers.
package profile

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"time"

	"github.com/meteovis/meteovis/internal/domain"
)

const (
	// FileName is the profile file inside a run directory.
	FileName = "profile.txt"

	// ImageDir is the image subdirectory of a run directory.
	ImageDir = "temp"
)

// ErrInvalidProfile reports a profile file that does not match the schema.
var ErrInvalidProfile = errors.New("invalid profile")

// RunProfile is the persisted description of one batch run.
type RunProfile struct {
	ID        string     `json:"id"`
	Source    string     `json:"source"`
	TempPath  string     `json:"temp_path"`
	CreatedAt time.Time  `json:"created_at"`
	Task      TaskRecord `json:"task"`
	Images    []string   `json:"images"`
	Skipped   []string   `json:"skipped,omitempty"`
}

// TaskRecord describes the task a run executed.
type TaskRecord struct {
	Name    string  `json:"name"`
	Desc    string  `json:"desc"`
	Task    string  `json:"task"` // human-readable kind label
	Kind    string  `json:"kind"`
	Options Options `json:"options"`
}

// Options holds resolved options keyed by their display names.
type Options struct {
	Scan       string        `json:"Scan,omitempty"`
	Quantity   string        `json:"Quantity,omitempty"`
	Appearance string        `json:"Appearance,omitempty"`
	Bounds     domain.Bounds `json:"Bounds"`
	Colormap   *Colormap     `json:"Colormap,omitempty"`
}

// Colormap is the color mapping of a rendered product. It is encoded as the
// tuple ["name", [v_min, v_max], "scale"].
type Colormap struct {
	Name  string
	Range domain.ColorRange
}

// MarshalJSON encodes c as a three-element array.
func (c Colormap) MarshalJSON() ([]byte, error) {
	return json.Marshal([]any{c.Name, [2]float64{c.Range.Min, c.Range.Max}, c.Range.Scale})
}

// UnmarshalJSON decodes the three-element array form.
func (c *Colormap) UnmarshalJSON(data []byte) error {
	var parts []json.RawMessage
	if err := json.Unmarshal(data, &parts); err != nil {
		return fmt.Errorf("colormap: %w", err)
	}
	if len(parts) != 3 {
		return fmt.Errorf("colormap: want 3 elements, got %d", len(parts))
	}
	var (
		name  string
		span  [2]float64
		scale string
	)
	if err := json.Unmarshal(parts[0], &name); err != nil {
		return fmt.Errorf("colormap name: %w", err)
	}
	if err := json.Unmarshal(parts[1], &span); err != nil {
		return fmt.Errorf("colormap range: %w", err)
	}
	if err := json.Unmarshal(parts[2], &scale); err != nil {
		return fmt.Errorf("colormap scale: %w", err)
	}
	kind, err := domain.ParseScaleKind(scale)
	if err != nil {
		return err
	}
	c.Name = name
	c.Range = domain.ColorRange{Min: span[0], Max: span[1], Scale: kind}
	return nil
}

// Validate checks the fields viewers depend on.
func (p *RunProfile) Validate() error {
	if p.ID == "" {
		return fmt.Errorf("%w: missing id", ErrInvalidProfile)
	}
	if p.Task.Kind == "" {
		return fmt.Errorf("%w: missing task kind", ErrInvalidProfile)
	}
	if err := p.Task.Options.Bounds.Validate(); err != nil {
		return fmt.Errorf("%w: %w", ErrInvalidProfile, err)
	}
	if cm := p.Task.Options.Colormap; cm != nil {
		if cm.Name == "" {
			return fmt.Errorf("%w: colormap without name", ErrInvalidProfile)
		}
		if err := cm.Range.Validate(); err != nil {
			return fmt.Errorf("%w: %w", ErrInvalidProfile, err)
		}
	}
	return nil
}

// Write stores p as runDir/profile.txt.
func Write(runDir string, p *RunProfile) error {
	if err := p.Validate(); err != nil {
		return err
	}
	data, err := json.MarshalIndent(p, "", "  ")
	if err != nil {
		return fmt.Errorf("encode profile: %w", err)
	}
	path := filepath.Join(runDir, FileName)
	if err := os.WriteFile(path, append(data, '\n'), 0o644); err != nil {
		return fmt.Errorf("write profile %s: %w", path, err)
	}
	return nil
}

// Load reads and validates runDir/profile.txt. Unknown fields are rejected.
func Load(runDir string) (*RunProfile, error) {
	path := filepath.Join(runDir, FileName)
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read profile %s: %w", path, err)
	}
	dec := json.NewDecoder(bytes.NewReader(data))
	dec.DisallowUnknownFields()
	var p RunProfile
	if err := dec.Decode(&p); err != nil {
		return nil, fmt.Errorf("%w: %s: %w", ErrInvalidProfile, path, err)
	}
	if err := p.Validate(); err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	return &p, nil
}

// RunDir returns the directory of run id under root.
func RunDir(root, id string) string {
	return filepath.Join(root, id)
}

// List loads every finished run under root, oldest first. Directories
// without a profile belong to unfinished runs and are skipped.
func List(root string) ([]*RunProfile, error) {
	entries, err := os.ReadDir(root)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil, nil
		}
		return nil, fmt.Errorf("list runs in %s: %w", root, err)
	}
	var out []*RunProfile
	for _, e := range entries {
		if !e.IsDir() || strings.HasPrefix(e.Name(), ".") {
			continue
		}
		dir := filepath.Join(root, e.Name())
		if _, err := os.Stat(filepath.Join(dir, FileName)); errors.Is(err, fs.ErrNotExist) {
			continue
		}
		p, err := Load(dir)
		if err != nil {
			return nil, err
		}
		out = append(out, p)
	}
	sort.Slice(out, func(i, j int) bool { return lessID(out[i].ID, out[j].ID) })
	return out, nil
}

// lessID orders numeric run ids by value.
func lessID(a, b string) bool {
	if len(a) != len(b) {
		return len(a) < len(b)
	}
	return a < b
}

// ValidateID rejects run ids that would resolve outside the run root.
func ValidateID(id string) error {
	if id == "" || id == "." || id == ".." || strings.ContainsAny(id, `/\`) {
		return fmt.Errorf("%w: invalid run id %q", domain.ErrConfiguration, id)
	}
	return nil
}

// LoadRun reads the profile of run id under root.
func LoadRun(root, id string) (*RunProfile, error) {
	if err := ValidateID(id); err != nil {
		return nil, err
	}
	return Load(RunDir(root, id))
}

// Remove deletes run id and everything under it.
func Remove(root, id string) error {
	if err := ValidateID(id); err != nil {
		return err
	}
	dir := RunDir(root, id)
	info, err := os.Stat(dir)
	if err != nil {
		return fmt.Errorf("remove run %s: %w", id, err)
	}
	if !info.IsDir() {
		return fmt.Errorf("remove run %s: not a directory", id)
	}
	if err := os.RemoveAll(dir); err != nil {
		return fmt.Errorf("remove run %s: %w", id, err)
	}
	return nil
}
