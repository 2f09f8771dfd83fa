// Package domain models weather-radar products described by the OPERA (ODIM_H5)
// information model after they have been decoded into physical values.
//
// # Data Source
//
// Input files are HDF5 files written by European radar networks following the
// EUMETNET OPERA data information model. A file holds either a polar volume
// (one dataset<N> group per elevation sweep) or a scan integration composite
// (one fixed, already gridded dataset).
//
// # OPERA Conventions
//
// Group layout of a polar volume:
//
//	/what            date "YYYYMMDD", time "HHMMSS"
//	/where           lon, lat (degrees), height (metres above sea level)
//	/dataset<N>/where  elangle (deg), rscale (m), nbins, nrays, a1gate
//	/dataset<N>/data<M>/what  quantity, gain, offset, nodata, undetect
//	/dataset<N>/data<M>/data  raw counts, nrays x nbins
//
// Raw counts are converted with physical = raw*gain + offset. Two sentinels are
// masked before conversion:
//
//	nodata    the bin lies outside the scanned area
//	undetect  the bin was scanned but nothing was detected
//
// Attribute values are sometimes scalars and sometimes single-element arrays,
// depending on the writer. Readers normalize both to scalars.
//
// # Canonical Timestamps
//
// Every rendered product is keyed by its nominal time truncated to the minute
// and formatted as "YYYYMMDD HHMM". Files of one radar taken within the same
// minute therefore share a key. See [CanonicalStamp].
//
// # Display Ranges
//
// Polar products are colored on one of four fixed ranges chosen from the data
// extremes, so that all frames of an animated series share a scale. Composite
// products use a fixed logarithmic range. See [SelectColorRange].
package domain
