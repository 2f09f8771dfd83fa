package profile

import (
	"encoding/json"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/meteovis/meteovis/internal/domain"
)

func sampleProfile(id string) *RunProfile {
	return &RunProfile{
		ID:        id,
		Source:    "/data/radar",
		TempPath:  filepath.Join("/runs", id, ImageDir),
		CreatedAt: time.Date(2023, 1, 1, 12, 0, 0, 0, time.UTC),
		Task: TaskRecord{
			Name: "storm",
			Desc: "afternoon cell",
			Task: "Radar polar volume (2D)",
			Kind: "polar-volume",
			Options: Options{
				Scan:       "Scan 0 (Elev. = 0.5)",
				Quantity:   "DBZH",
				Appearance: "dynamic",
				Bounds:     domain.Bounds{{52.5, 4.0}, {53.4, 5.6}},
				Colormap: &Colormap{
					Name:  "jet",
					Range: domain.ColorRange{Min: -10, Max: 80, Scale: domain.ScaleLinear},
				},
			},
		},
		Images: []string{"20230101 1200.png"},
	}
}

func TestColormap_TupleEncoding(t *testing.T) {
	data, err := json.Marshal(Colormap{Name: "jet", Range: domain.CompositeRange})
	require.NoError(t, err)
	assert.JSONEq(t, `["jet", [1, 10000], "logarithmic"]`, string(data))

	var c Colormap
	require.NoError(t, json.Unmarshal([]byte(`["gray", [0, 350], "linear"]`), &c))
	assert.Equal(t, Colormap{Name: "gray", Range: domain.ColorRange{Min: 0, Max: 350, Scale: domain.ScaleLinear}}, c)

	require.Error(t, json.Unmarshal([]byte(`["gray", [0, 350]]`), &c))
	require.ErrorIs(t, json.Unmarshal([]byte(`["gray", [0, 350], "cubic"]`), &c), domain.ErrColormapScale)
}

func TestWriteLoad(t *testing.T) {
	dir := t.TempDir()
	want := sampleProfile("1672574400000000000")
	require.NoError(t, Write(dir, want))

	got, err := Load(dir)
	require.NoError(t, err)
	if diff := cmp.Diff(want, got); diff != "" {
		t.Fatalf("profile mismatch (-want +got):\n%s", diff)
	}

	raw, err := os.ReadFile(filepath.Join(dir, FileName))
	require.NoError(t, err)
	assert.Contains(t, string(raw), `"Bounds": [`)
	assert.Contains(t, string(raw), `"temp_path"`)
}

func TestLoad_RejectsUnknownFields(t *testing.T) {
	dir := t.TempDir()
	data, err := json.Marshal(sampleProfile("1"))
	require.NoError(t, err)
	var m map[string]any
	require.NoError(t, json.Unmarshal(data, &m))
	m["exec"] = "rm -rf /"
	data, err = json.Marshal(m)
	require.NoError(t, err)
	require.NoError(t, os.WriteFile(filepath.Join(dir, FileName), data, 0o644))

	_, err = Load(dir)
	require.ErrorIs(t, err, ErrInvalidProfile)
}

func TestLoad_Validates(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(p *RunProfile)
	}{
		{"missing id", func(p *RunProfile) { p.ID = "" }},
		{"missing kind", func(p *RunProfile) { p.Task.Kind = "" }},
		{"unordered bounds", func(p *RunProfile) { p.Task.Options.Bounds = domain.Bounds{{54, 4}, {53, 5}} }},
		{"empty colormap range", func(p *RunProfile) { p.Task.Options.Colormap.Range.Max = -10 }},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			p := sampleProfile("1")
			tt.mutate(p)
			require.ErrorIs(t, p.Validate(), ErrInvalidProfile)

			dir := t.TempDir()
			data, err := json.Marshal(p)
			require.NoError(t, err)
			require.NoError(t, os.WriteFile(filepath.Join(dir, FileName), data, 0o644))
			_, err = Load(dir)
			require.ErrorIs(t, err, ErrInvalidProfile)
		})
	}
}

func TestValidateID(t *testing.T) {
	for _, id := range []string{"", ".", "..", "../..", "../etc", "a/b", `a\b`} {
		require.ErrorIs(t, ValidateID(id), domain.ErrConfiguration, "id %q", id)
	}
	require.NoError(t, ValidateID("1700000000000000000"))

	root := t.TempDir()
	_, err := LoadRun(root, "../..")
	require.ErrorIs(t, err, domain.ErrConfiguration)
}

func TestListAndRemove(t *testing.T) {
	root := t.TempDir()
	for _, id := range []string{"200", "1000", "30"} {
		dir := RunDir(root, id)
		require.NoError(t, os.MkdirAll(dir, 0o755))
		require.NoError(t, Write(dir, sampleProfile(id)))
	}
	require.NoError(t, os.MkdirAll(RunDir(root, "4000"), 0o755), "unfinished run")

	runs, err := List(root)
	require.NoError(t, err)
	ids := make([]string, 0, len(runs))
	for _, r := range runs {
		ids = append(ids, r.ID)
	}
	assert.Equal(t, []string{"30", "200", "1000"}, ids)

	require.NoError(t, Remove(root, "200"))
	assert.NoDirExists(t, RunDir(root, "200"))
	require.Error(t, Remove(root, "200"))
	require.ErrorIs(t, Remove(root, "../etc"), domain.ErrConfiguration)

	_, err = LoadRun(root, "30")
	require.NoError(t, err)
	_, err = LoadRun(root, "4000")
	require.ErrorIs(t, err, os.ErrNotExist)

	runs, err = List(filepath.Join(root, "missing"))
	require.NoError(t, err)
	assert.Empty(t, runs)
}
