package domain

import (
	"strconv"
	"time"

	"github.com/jonboulle/clockwork"
)

// clock is a package-level time source so tests can freeze time via SetClock.
// Run identifiers are derived from it.
var clock = clockwork.NewRealClock()

// SetClock swaps the time source. Pass nil to reset to real time.
func SetClock(c clockwork.Clock) {
	if c == nil {
		clock = clockwork.NewRealClock()
		return
	}
	clock = c
}

// NewRunID returns a time-based run identifier: the current nanosecond epoch.
// It orders runs by creation time and is only used for directory naming.
func NewRunID() string {
	return strconv.FormatInt(clock.Now().UnixNano(), 10)
}

// Now returns the current time of the package clock.
func Now() time.Time {
	return clock.Now()
}
