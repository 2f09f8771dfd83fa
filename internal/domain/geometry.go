package domain

// Site is the radar antenna position.
type Site struct {
	Lon    float64 // degrees east
	Lat    float64 // degrees north
	Height float64 // metres above sea level
}

// SweepGeometry describes one elevation sweep in polar coordinates.
type SweepGeometry struct {
	NRays   int     // azimuth count
	NBins   int     // range bins per ray
	RScale  float64 // range bin size in metres
	ElAngle float64 // elevation angle in degrees

	// A1Gate is the index of the first recorded ray. It is read for
	// completeness; rays are assumed to start at north.
	A1Gate    int
	HasA1Gate bool
}

// ScanSelection identifies the sweep and quantity to render, e.g.
// {Scan: "dataset1", Quantity: "data1"}. Composite products leave Scan empty.
type ScanSelection struct {
	Scan     string
	Quantity string
}
