package domain

import (
	"testing"
	"time"

	"github.com/jonboulle/clockwork"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMaskedGrid_CalibrateSkipsMasked(t *testing.T) {
	g, err := NewMaskedGrid(1, 4)
	require.NoError(t, err)
	for c, v := range []float64{0, 100, 255, 200} {
		g.Set(0, c, v)
	}
	g.MaskEqual(0)
	g.MaskEqual(255)
	g.Calibrate(0.5, -31.5)

	v, ok := g.At(0, 1)
	assert.True(t, ok)
	assert.Equal(t, 18.5, v)
	v, ok = g.At(0, 3)
	assert.True(t, ok)
	assert.Equal(t, 68.5, v)

	_, ok = g.At(0, 0)
	assert.False(t, ok)
	_, ok = g.At(0, 2)
	assert.False(t, ok)
	assert.Equal(t, 2, g.Valid())

	lo, hi, ok := g.MinMax()
	require.True(t, ok)
	assert.Equal(t, 18.5, lo)
	assert.Equal(t, 68.5, hi)
}

func TestNewMaskedGrid_RejectsEmpty(t *testing.T) {
	_, err := NewMaskedGrid(0, 3)
	require.ErrorIs(t, err, ErrMalformedGeometry)
}

func TestNewGrid_RejectsOversized(t *testing.T) {
	tests := []struct {
		name       string
		rows, cols int
	}{
		{"overflowing product", 3_000_000_000, 3_000_000_000},
		{"beyond cell limit", 1_000_000, 1_000_000},
		{"one cell past the limit", 1, MaxCells + 1},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := NewMaskedGrid(tt.rows, tt.cols)
			require.ErrorIs(t, err, ErrMalformedGeometry)
			_, err = NewCoordGrid(tt.rows, tt.cols)
			require.ErrorIs(t, err, ErrMalformedGeometry)
		})
	}
}

func TestCoordGrid_Bounds(t *testing.T) {
	g, err := NewCoordGrid(2, 2)
	require.NoError(t, err)
	g.Set(0, 0, 4.0, 51.0)
	g.Set(0, 1, 5.5, 51.2)
	g.Set(1, 0, 3.8, 50.1)
	g.Set(1, 1, 5.0, 52.3)

	b := g.Bounds()
	assert.Equal(t, Bounds{{50.1, 3.8}, {52.3, 5.5}}, b)
	require.NoError(t, b.Validate())
	assert.True(t, g.Fits(1, 1))
	assert.False(t, g.Fits(2, 2))
}

func TestBounds_ValidateUnordered(t *testing.T) {
	err := Bounds{{2, 0}, {1, 1}}.Validate()
	require.ErrorIs(t, err, ErrMalformedGeometry)
}

func TestCanonicalStamp(t *testing.T) {
	ts := time.Date(2023, time.January, 1, 12, 0, 59, 999, time.UTC)
	assert.Equal(t, "20230101 1200", CanonicalStamp(ts))
	assert.Equal(t, "20230101 1200.png", ImageName(CanonicalStamp(ts)))
}

func TestParseDateTime(t *testing.T) {
	tests := []struct {
		name     string
		date     string
		tod      string
		expected time.Time
	}{
		{"seconds dropped", "20161003", "142537", time.Date(2016, 10, 3, 14, 25, 0, 0, time.UTC)},
		{"hhmm only", "20230101", "1200", time.Date(2023, 1, 1, 12, 0, 0, 0, time.UTC)},
		{"padded", " 20230101 ", " 120000 ", time.Date(2023, 1, 1, 12, 0, 0, 0, time.UTC)},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := ParseDateTime(tt.date, tt.tod)
			require.NoError(t, err)
			assert.Equal(t, tt.expected, got)
		})
	}

	_, err := ParseDateTime("yesterday", "noon")
	require.ErrorIs(t, err, ErrMalformedGeometry)
}

func TestParseImageName(t *testing.T) {
	got, err := ParseImageName("20230101 1200.png")
	require.NoError(t, err)
	assert.Equal(t, time.Date(2023, 1, 1, 12, 0, 0, 0, time.UTC), got)

	_, err = ParseImageName("ghost.png")
	require.Error(t, err)
}

func TestNewRunID_UsesClock(t *testing.T) {
	fake := clockwork.NewFakeClockAt(time.Unix(1700000000, 42))
	SetClock(fake)
	t.Cleanup(func() { SetClock(nil) })

	assert.Equal(t, "1700000000000000042", NewRunID())
	fake.Advance(time.Nanosecond)
	assert.Equal(t, "1700000000000000043", NewRunID())
}
