package opera

import (
	"fmt"
	"time"

	"github.com/meteovis/meteovis/internal/domain"
)

const (
	// CompositeDataset is the single dataset group of a scan integration file.
	CompositeDataset = "dataset1"

	// CompositeMetaGroup holds the grid extent, shape and nominal time.
	CompositeMetaGroup = "where"
)

// Composite is one quantity of a scan integration product. Values are already
// in physical units; zero marks an empty cell.
type Composite struct {
	Quantity     string
	QuantityName string
	Bounds       domain.Bounds
	NRows        int
	NCols        int
	Timestamp    time.Time
	Values       *domain.MaskedGrid // nrows x ncols, row 0 at the northern edge
}

// ReadComposite extracts the gridded composite for quantity qty.
func ReadComposite(f File, qty string) (*Composite, error) {
	if qty == "" {
		return nil, fmt.Errorf("%w: quantity is required", domain.ErrConfiguration)
	}
	group := Join(CompositeDataset, qty)
	if !f.HasGroup(group) {
		return nil, fmt.Errorf("%w: quantity %q", domain.ErrSelectionNotFound, qty)
	}

	var (
		c   = &Composite{Quantity: qty}
		err error
		b   [4]float64
	)
	for i, name := range []string{"lat_min", "lon_min", "lat_max", "lon_max"} {
		if b[i], err = Float(f, CompositeMetaGroup, name); err != nil {
			return nil, err
		}
	}
	c.Bounds = domain.Bounds{{b[0], b[1]}, {b[2], b[3]}}
	if err := c.Bounds.Validate(); err != nil {
		return nil, err
	}

	if c.NRows, err = Int(f, CompositeMetaGroup, "nrows"); err != nil {
		return nil, err
	}
	if c.NCols, err = Int(f, CompositeMetaGroup, "ncols"); err != nil {
		return nil, err
	}
	if c.NRows <= 0 || c.NCols <= 0 {
		return nil, fmt.Errorf("%w: nrows=%d ncols=%d", domain.ErrMalformedGeometry, c.NRows, c.NCols)
	}

	stamp, err := String(f, CompositeMetaGroup, "time")
	if err != nil {
		return nil, err
	}
	if c.Timestamp, err = domain.ParseStamp(stamp); err != nil {
		return nil, err
	}

	if c.Values, err = Grid(f, Join(group, "data"), c.NRows, c.NCols); err != nil {
		return nil, err
	}
	c.Values.MaskEqual(0)

	c.QuantityName, _ = String(f, Join(group, "what"), "quantity")
	return c, nil
}
