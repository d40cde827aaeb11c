// Package clock provides an injectable time source so services can be
// evaluated against a fixed reference date in tests.
package clock

import "time"

// Clock supplies the current time.
type Clock interface {
	Now() time.Time
}

// System is the wall clock.
type System struct{}

// Now returns the current local time.
func (System) Now() time.Time { return time.Now() }

// Fixed always reports the same instant.
type Fixed struct {
	Time time.Time
}

// Now returns the fixed instant.
func (f Fixed) Now() time.Time { return f.Time }

// At returns a Fixed clock pinned to the given instant.
func At(t time.Time) Fixed { return Fixed{Time: t} }
