package domain

import (
	"fmt"
	"strings"
	"time"
)

// StampLayout is the layout of canonical timestamps and output image names.
const StampLayout = "20060102 1504"

// stampLayouts are the date/time spellings seen in OPERA files, tried in order.
var stampLayouts = []string{
	"20060102 150405",
	"20060102 1504",
	"20060102150405",
	"200601021504",
	"2006-01-02 15:04:05",
	"2006-01-02T15:04:05",
	time.RFC3339,
}

// CanonicalStamp truncates t to the minute and formats it as "YYYYMMDD HHMM".
func CanonicalStamp(t time.Time) string {
	return t.UTC().Truncate(time.Minute).Format(StampLayout)
}

// ParseStamp parses a combined date/time string, truncated to the minute in UTC.
func ParseStamp(s string) (time.Time, error) {
	s = strings.TrimSpace(s)
	for _, layout := range stampLayouts {
		if t, err := time.Parse(layout, s); err == nil {
			return t.UTC().Truncate(time.Minute), nil
		}
	}
	return time.Time{}, fmt.Errorf("%w: unrecognised timestamp %q", ErrMalformedGeometry, s)
}

// ParseDateTime combines OPERA date ("YYYYMMDD") and time ("HHMMSS") attributes.
func ParseDateTime(date, tod string) (time.Time, error) {
	return ParseStamp(strings.TrimSpace(date) + " " + strings.TrimSpace(tod))
}

// ParseImageName recovers the timestamp from an image file name such as
// "20230101 1200.png".
func ParseImageName(name string) (time.Time, error) {
	base := strings.TrimSuffix(name, ".png")
	t, err := time.Parse(StampLayout, base)
	if err != nil {
		return time.Time{}, fmt.Errorf("image name %q: %w", name, err)
	}
	return t, nil
}

// ImageName returns the output file name for a canonical stamp.
func ImageName(stamp string) string {
	return stamp + ".png"
}
