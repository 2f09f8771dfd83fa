package opera

import (
	"fmt"
	"math"
	"reflect"
	"strings"

	"github.com/meteovis/meteovis/internal/domain"
)

var errMissing = domain.ErrMissingAttribute

// scalar unwraps v when it is a single-element slice or array. HDF5 writers
// disagree on whether attributes are scalars or one-element arrays.
func scalar(v any) (any, error) {
	rv := reflect.ValueOf(v)
	switch rv.Kind() {
	case reflect.Slice, reflect.Array:
		if rv.Kind() == reflect.Slice && rv.Type().Elem().Kind() == reflect.Uint8 {
			// []byte is a string payload, not an array.
			return string(rv.Bytes()), nil
		}
		if rv.Len() != 1 {
			return nil, fmt.Errorf("%w: attribute has %d elements, want 1", domain.ErrMalformedGeometry, rv.Len())
		}
		return scalar(rv.Index(0).Interface())
	case reflect.Invalid:
		return nil, fmt.Errorf("%w: nil attribute", domain.ErrMalformedGeometry)
	default:
		return v, nil
	}
}

func toFloat(v any) (float64, bool) {
	rv := reflect.ValueOf(v)
	switch rv.Kind() {
	case reflect.Float32, reflect.Float64:
		return rv.Float(), true
	case reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64:
		return float64(rv.Int()), true
	case reflect.Uint, reflect.Uint8, reflect.Uint16, reflect.Uint32, reflect.Uint64:
		return float64(rv.Uint()), true
	default:
		return 0, false
	}
}

// Float reads a numeric attribute as a scalar float64.
func Float(f File, group, name string) (float64, error) {
	raw, err := f.Attr(group, name)
	if err != nil {
		return 0, err
	}
	v, err := scalar(raw)
	if err != nil {
		return 0, fmt.Errorf("%s: %w", Join(group, name), err)
	}
	x, ok := toFloat(v)
	if !ok {
		return 0, fmt.Errorf("%w: %s is %T, want a number", domain.ErrMalformedGeometry, Join(group, name), v)
	}
	return x, nil
}

// Int reads an integral attribute. Floating values must carry no fraction.
func Int(f File, group, name string) (int, error) {
	x, err := Float(f, group, name)
	if err != nil {
		return 0, err
	}
	if x != math.Trunc(x) || math.IsInf(x, 0) {
		return 0, fmt.Errorf("%w: %s = %g is not an integer", domain.ErrMalformedGeometry, Join(group, name), x)
	}
	return int(x), nil
}

// String reads a text attribute, trimming NUL padding from fixed-length strings.
func String(f File, group, name string) (string, error) {
	raw, err := f.Attr(group, name)
	if err != nil {
		return "", err
	}
	v, err := scalar(raw)
	if err != nil {
		return "", fmt.Errorf("%s: %w", Join(group, name), err)
	}
	s, ok := v.(string)
	if !ok {
		return "", fmt.Errorf("%w: %s is %T, want a string", domain.ErrMalformedGeometry, Join(group, name), v)
	}
	return strings.TrimRight(s, "\x00 "), nil
}

// Grid reads a 2D numeric dataset into a rows x cols masked grid. Every cell
// starts unmasked. The dataset shape is checked before anything is allocated,
// so dimensions that disagree with the stored data never size the grid.
func Grid(f File, path string, rows, cols int) (*domain.MaskedGrid, error) {
	raw, err := f.Dataset(path)
	if err != nil {
		return nil, err
	}
	if rows <= 0 || cols <= 0 {
		return nil, fmt.Errorf("%w: dataset %s wanted as %dx%d", domain.ErrMalformedGeometry, path, rows, cols)
	}

	rv := reflect.ValueOf(raw)
	if rv.Kind() != reflect.Slice {
		return nil, fmt.Errorf("%w: dataset %s is %T", domain.ErrMalformedGeometry, path, raw)
	}
	flat := rv.Len() > 0 && rv.Index(0).Kind() != reflect.Slice
	if err := checkShape(rv, path, rows, cols, flat); err != nil {
		return nil, err
	}

	g, err := domain.NewMaskedGrid(rows, cols)
	if err != nil {
		return nil, err
	}

	if flat {
		for i := 0; i < rv.Len(); i++ {
			x, ok := toFloat(rv.Index(i).Interface())
			if !ok {
				return nil, fmt.Errorf("%w: dataset %s holds %s", domain.ErrMalformedGeometry, path, rv.Index(i).Type())
			}
			g.Data[i] = x
		}
		return g, nil
	}

	for r := 0; r < rows; r++ {
		row := reflect.ValueOf(rv.Index(r).Interface())
		for c := 0; c < cols; c++ {
			x, ok := toFloat(row.Index(c).Interface())
			if !ok {
				return nil, fmt.Errorf("%w: dataset %s holds %s", domain.ErrMalformedGeometry, path, row.Index(c).Type())
			}
			g.Data[r*cols+c] = x
		}
	}
	return g, nil
}

// checkShape compares the stored dataset with the expected dimensions. A
// flat dataset must hold exactly rows*cols values.
func checkShape(rv reflect.Value, path string, rows, cols int, flat bool) error {
	if flat {
		if cols > rv.Len()/rows || rv.Len() != rows*cols {
			return fmt.Errorf("%w: dataset %s has %d values, want %dx%d", domain.ErrMalformedGeometry, path, rv.Len(), rows, cols)
		}
		return nil
	}
	if rv.Len() != rows {
		return fmt.Errorf("%w: dataset %s has %d rows, want %d", domain.ErrMalformedGeometry, path, rv.Len(), rows)
	}
	for r := 0; r < rows; r++ {
		row := reflect.ValueOf(rv.Index(r).Interface())
		if row.Kind() != reflect.Slice || row.Len() != cols {
			return fmt.Errorf("%w: dataset %s row %d does not have %d columns", domain.ErrMalformedGeometry, path, r, cols)
		}
	}
	return nil
}
