package opera

import (
	"fmt"
	"time"

	"github.com/meteovis/meteovis/internal/domain"
)

// Calibration converts raw counts of one quantity into physical units.
type Calibration struct {
	Gain     float64
	Offset   float64
	Nodata   float64
	Undetect float64
}

// Sweep is one calibrated (scan, quantity) selection of a polar volume.
type Sweep struct {
	Selection    domain.ScanSelection
	QuantityName string // e.g. "DBZH"; empty when the file does not name it
	Geometry     domain.SweepGeometry
	Site         domain.Site
	Calibration  Calibration
	Timestamp    time.Time
	Values       *domain.MaskedGrid // nrays x nbins
}

// ReadSweep extracts calibrated physical values and scan geometry for sel.
// Cells equal to undetect, then to nodata, are masked before calibration, so a
// sentinel stays masked whatever gain and offset map it to.
func ReadSweep(f File, sel domain.ScanSelection) (*Sweep, error) {
	if err := checkSelection(f, sel); err != nil {
		return nil, err
	}
	where := Join(sel.Scan, "where")
	what := Join(sel.Scan, sel.Quantity, "what")

	geom, err := readSweepGeometry(f, where)
	if err != nil {
		return nil, err
	}
	cal, err := readCalibration(f, what)
	if err != nil {
		return nil, err
	}
	site, err := readSite(f)
	if err != nil {
		return nil, err
	}
	ts, err := readTimestamp(f)
	if err != nil {
		return nil, err
	}

	values, err := Grid(f, Join(sel.Scan, sel.Quantity, "data"), geom.NRays, geom.NBins)
	if err != nil {
		return nil, err
	}
	values.MaskEqual(cal.Undetect)
	values.MaskEqual(cal.Nodata)
	values.Calibrate(cal.Gain, cal.Offset)

	name, _ := String(f, what, "quantity")

	return &Sweep{
		Selection:    sel,
		QuantityName: name,
		Geometry:     geom,
		Site:         site,
		Calibration:  cal,
		Timestamp:    ts,
		Values:       values,
	}, nil
}

func checkSelection(f File, sel domain.ScanSelection) error {
	if sel.Scan == "" || sel.Quantity == "" {
		return fmt.Errorf("%w: scan and quantity are required", domain.ErrConfiguration)
	}
	if !f.HasGroup(sel.Scan) {
		return fmt.Errorf("%w: scan %q", domain.ErrSelectionNotFound, sel.Scan)
	}
	if !f.HasGroup(Join(sel.Scan, sel.Quantity)) {
		return fmt.Errorf("%w: quantity %q in scan %q", domain.ErrSelectionNotFound, sel.Quantity, sel.Scan)
	}
	return nil
}

func readSweepGeometry(f File, where string) (domain.SweepGeometry, error) {
	var g domain.SweepGeometry
	var err error
	if g.ElAngle, err = Float(f, where, "elangle"); err != nil {
		return g, err
	}
	if g.RScale, err = Float(f, where, "rscale"); err != nil {
		return g, err
	}
	if g.NBins, err = Int(f, where, "nbins"); err != nil {
		return g, err
	}
	if g.NRays, err = Int(f, where, "nrays"); err != nil {
		return g, err
	}
	if g.NRays <= 0 || g.NBins <= 0 {
		return g, fmt.Errorf("%w: nrays=%d nbins=%d", domain.ErrMalformedGeometry, g.NRays, g.NBins)
	}
	if g.RScale <= 0 {
		return g, fmt.Errorf("%w: rscale=%g", domain.ErrMalformedGeometry, g.RScale)
	}

	a1gate, err := Int(f, where, "a1gate")
	switch {
	case err == nil:
		g.A1Gate, g.HasA1Gate = a1gate, true
	case isMissing(err):
	default:
		return g, err
	}
	return g, nil
}

func readCalibration(f File, what string) (Calibration, error) {
	var c Calibration
	var err error
	if c.Gain, err = Float(f, what, "gain"); err != nil {
		return c, err
	}
	if c.Offset, err = Float(f, what, "offset"); err != nil {
		return c, err
	}
	if c.Nodata, err = Float(f, what, "nodata"); err != nil {
		return c, err
	}
	if c.Undetect, err = Float(f, what, "undetect"); err != nil {
		return c, err
	}
	return c, nil
}

func readSite(f File) (domain.Site, error) {
	var s domain.Site
	var err error
	if s.Lon, err = Float(f, "where", "lon"); err != nil {
		return s, err
	}
	if s.Lat, err = Float(f, "where", "lat"); err != nil {
		return s, err
	}
	if s.Height, err = Float(f, "where", "height"); err != nil {
		return s, err
	}
	return s, nil
}

func readTimestamp(f File) (time.Time, error) {
	date, err := String(f, "what", "date")
	if err != nil {
		return time.Time{}, err
	}
	tod, err := String(f, "what", "time")
	if err != nil {
		return time.Time{}, err
	}
	return domain.ParseDateTime(date, tod)
}
