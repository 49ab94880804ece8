// Package system stamps run summaries with the wall clock.
package system

import "time"

// Clock implements scrape.Clock. Readings are UTC at millisecond precision.
type Clock struct{}

// New returns the wall clock.
func New() *Clock {
	return &Clock{}
}

// Now returns the current UTC time truncated to the millisecond.
func (Clock) Now() time.Time {
	return time.Now().UTC().Truncate(time.Millisecond)
}
