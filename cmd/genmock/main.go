// Command genmock writes synthetic OPERA fixtures as JSON hierarchy files
// that the pipeline reads like real ODIM_H5 files. Each frame carries one
// convective cell drifting across the radar domain, so a rendered series
// shows visible motion.
//
// Usage:
//
//	go run ./cmd/genmock -out data/mock/pvol -kind polar-volume -frames 12
//	go run ./cmd/genmock -out data/mock/comp -kind scan-integration -frames 12
package main

import (
	"flag"
	"fmt"
	"log"
	"math"
	"os"
	"path/filepath"
	"time"

	"github.com/meteovis/meteovis/internal/domain"
	"github.com/meteovis/meteovis/internal/opera"
	"github.com/meteovis/meteovis/internal/task"
)

// site is the De Bilt radar, a common reference location for OPERA data.
var site = domain.Site{Lon: 5.1789, Lat: 52.1017, Height: 44}

const (
	rawNodata   = 255
	rawUndetect = 0
	gain        = 0.5
	offset      = -32
)

type options struct {
	out      string
	kind     task.Kind
	frames   int
	start    time.Time
	interval time.Duration
	nrays    int
	nbins    int
	rscale   float64
}

func main() {
	if err := run(); err != nil {
		log.Fatal(err)
	}
}

func run() error {
	out := flag.String("out", "", "output directory for fixture files")
	kind := flag.String("kind", string(task.KindPolarVolume), "polar-volume or scan-integration")
	frames := flag.Int("frames", 6, "number of timestamps to generate")
	start := flag.String("start", "20230101 1200", "timestamp of the first frame (YYYYMMDD HHMM)")
	interval := flag.Duration("interval", 5*time.Minute, "time between frames")
	nrays := flag.Int("nrays", 360, "azimuths per sweep")
	nbins := flag.Int("nbins", 240, "range bins per ray")
	rscale := flag.Float64("rscale", 1000, "range bin size in metres")
	flag.Parse()

	if *out == "" {
		flag.Usage()
		return fmt.Errorf("missing required flag: -out")
	}
	k, err := task.ParseKind(*kind)
	if err != nil {
		return err
	}
	t0, err := domain.ParseStamp(*start)
	if err != nil {
		return err
	}
	if *frames <= 0 || *nrays <= 0 || *nbins <= 0 || *rscale <= 0 {
		return fmt.Errorf("frames, nrays, nbins and rscale must be positive")
	}

	opts := options{
		out: *out, kind: k, frames: *frames, start: t0, interval: *interval,
		nrays: *nrays, nbins: *nbins, rscale: *rscale,
	}
	if err := os.MkdirAll(opts.out, 0o755); err != nil {
		return fmt.Errorf("create output directory: %w", err)
	}

	for i := 0; i < opts.frames; i++ {
		ts := opts.start.Add(time.Duration(i) * opts.interval)
		phase := float64(i) / float64(opts.frames)

		var tree *opera.Tree
		switch opts.kind {
		case task.KindPolarVolume:
			tree = polarVolume(opts, ts, phase)
		default:
			tree = composite(ts, phase)
		}

		name := fmt.Sprintf("%s_%s.json", fixturePrefix(opts.kind), ts.Format("200601021504"))
		path := filepath.Join(opts.out, name)
		if err := tree.WriteFile(path); err != nil {
			return fmt.Errorf("writing %s: %w", path, err)
		}
		log.Printf("wrote %s", path)
	}
	log.Printf("total: %d files", opts.frames)
	return nil
}

func fixturePrefix(k task.Kind) string {
	if k == task.KindPolarVolume {
		return "pvol"
	}
	return "comp"
}

// cell returns a reflectivity in dBZ for a point at normalized (x, y) in
// [-1, 1]², with a cell centred on a track that moves with phase.
func cell(x, y, phase float64) float64 {
	cx := -0.6 + 1.2*phase
	cy := 0.3 * math.Sin(2*math.Pi*phase)
	d2 := (x-cx)*(x-cx) + (y-cy)*(y-cy)
	return 55*math.Exp(-d2/0.02) + 15*math.Exp(-d2/0.15)
}

// toRaw quantizes dBZ into a raw count, mapping weak echoes to undetect.
func toRaw(dbz float64) float64 {
	if dbz < 5 {
		return rawUndetect
	}
	return math.Min(254, math.Round((dbz-offset)/gain))
}

func polarVolume(opts options, ts time.Time, phase float64) *opera.Tree {
	elevations := []float64{0.3, 1.1, 2.0}
	sweeps := make([]opera.SweepFixture, 0, len(elevations))
	for s, el := range elevations {
		dbzh := make([][]float64, opts.nrays)
		th := make([][]float64, opts.nrays)
		for i := range dbzh {
			az := (float64(i) + 0.5) * 2 * math.Pi / float64(opts.nrays)
			dbzh[i] = make([]float64, opts.nbins)
			th[i] = make([]float64, opts.nbins)
			for j := range dbzh[i] {
				r := (float64(j) + 0.5) / float64(opts.nbins)
				x, y := r*math.Sin(az), r*math.Cos(az)
				v := cell(x, y, phase) - 3*float64(s)
				dbzh[i][j] = toRaw(v)
				th[i][j] = toRaw(v + 2)
				if j == opts.nbins-1 {
					dbzh[i][j], th[i][j] = rawNodata, rawNodata
				}
			}
		}
		sweeps = append(sweeps, opera.SweepFixture{
			ElAngle: el,
			RScale:  opts.rscale,
			NRays:   opts.nrays,
			NBins:   opts.nbins,
			Quantities: []opera.QuantityFixture{
				{Name: "DBZH", Gain: gain, Offset: offset, Nodata: rawNodata, Undetect: rawUndetect, Raw: dbzh},
				{Name: "TH", Gain: gain, Offset: offset, Nodata: rawNodata, Undetect: rawUndetect, Raw: th},
			},
		})
	}
	return opera.PolarFixture{
		Site:   site,
		Date:   ts.Format("20060102"),
		Time:   ts.Format("150405"),
		Sweeps: sweeps,
	}.Tree()
}

func composite(ts time.Time, phase float64) *opera.Tree {
	const nrows, ncols = 120, 160
	data := make([][]float64, nrows)
	for r := range data {
		data[r] = make([]float64, ncols)
		y := 1 - 2*(float64(r)+0.5)/nrows
		for c := range data[r] {
			x := 2*(float64(c)+0.5)/ncols - 1
			dbz := cell(x, y, phase)
			if dbz < 5 {
				continue
			}
			// Linear reflectivity factor Z in mm⁶/m³ for the logarithmic composite scale.
			data[r][c] = math.Pow(10, dbz/10)
		}
	}
	return opera.CompositeFixture{
		Bounds:     domain.Bounds{{50.5, 2.5}, {54.0, 8.0}},
		Time:       ts.Format("20060102 150405"),
		Quantities: []opera.CompositeQuantity{{Name: "DBZH", Data: data}},
	}.Tree()
}
