package opera

import (
	"testing"

	"github.com/meteovis/meteovis/internal/domain"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestFloat_NormalizesShapes(t *testing.T) {
	tree := NewTree().
		SetAttr("where", "scalar", 0.5).
		SetAttr("where", "single", []float64{1.5}).
		SetAttr("where", "single_any", []any{2.5}).
		SetAttr("where", "int", int64(360)).
		SetAttr("where", "uint8", uint8(255)).
		SetAttr("where", "pair", []float64{1, 2}).
		SetAttr("where", "text", "abc")

	tests := []struct {
		name     string
		attr     string
		expected float64
	}{
		{"scalar", "scalar", 0.5},
		{"single element slice", "single", 1.5},
		{"single element any slice", "single_any", 2.5},
		{"integer", "int", 360},
		{"unsigned", "uint8", 255},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			v, err := Float(tree, "where", tt.attr)
			require.NoError(t, err)
			assert.Equal(t, tt.expected, v)
		})
	}

	_, err := Float(tree, "where", "pair")
	require.ErrorIs(t, err, domain.ErrMalformedGeometry)

	_, err = Float(tree, "where", "text")
	require.ErrorIs(t, err, domain.ErrMalformedGeometry)

	_, err = Float(tree, "where", "absent")
	require.ErrorIs(t, err, domain.ErrMissingAttribute)

	_, err = Float(tree, "nowhere", "scalar")
	require.ErrorIs(t, err, domain.ErrMissingAttribute)
}

func TestInt_RejectsFraction(t *testing.T) {
	tree := NewTree().
		SetAttr("where", "nbins", 100.0).
		SetAttr("where", "nrays", 359.5)

	n, err := Int(tree, "where", "nbins")
	require.NoError(t, err)
	assert.Equal(t, 100, n)

	_, err = Int(tree, "where", "nrays")
	require.ErrorIs(t, err, domain.ErrMalformedGeometry)
}

func TestString_TrimsPaddingAndBytes(t *testing.T) {
	tree := NewTree().
		SetAttr("what", "date", "20161003\x00\x00").
		SetAttr("what", "time", []byte("142500")).
		SetAttr("what", "wrapped", []string{"DBZH"})

	for attr, expected := range map[string]string{"date": "20161003", "time": "142500", "wrapped": "DBZH"} {
		v, err := String(tree, "what", attr)
		require.NoError(t, err)
		assert.Equal(t, expected, v)
	}
}

func TestGrid_ShapeMismatch(t *testing.T) {
	tree := NewTree().SetDataset("dataset1/data1/data", Uniform(3, 4, 1))

	g, err := Grid(tree, "dataset1/data1/data", 3, 4)
	require.NoError(t, err)
	assert.Equal(t, 12, g.Valid())

	_, err = Grid(tree, "dataset1/data1/data", 4, 4)
	require.ErrorIs(t, err, domain.ErrMalformedGeometry)

	_, err = Grid(tree, "dataset1/data1/data", 3, 5)
	require.ErrorIs(t, err, domain.ErrMalformedGeometry)

	_, err = Grid(tree, "dataset1/data2/data", 3, 4)
	require.ErrorIs(t, err, domain.ErrMissingAttribute)
}

func TestChildGroups_NaturalOrder(t *testing.T) {
	tree := NewTree()
	for _, g := range []string{"dataset10", "dataset2", "dataset1", "what", "where"} {
		tree.Ensure(g)
	}

	got, err := ChildGroups(tree, "", "dataset")
	require.NoError(t, err)
	assert.Equal(t, []string{"dataset1", "dataset2", "dataset10"}, got)
}
