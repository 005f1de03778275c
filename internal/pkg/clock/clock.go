// Package clock provides the time source for chat message timestamps
package clock

import "time"

// Clock provides time functionality
type Clock interface {
	Now() time.Time
}

// Real implements Clock using actual system time
type Real struct{}

// Now returns the current time in UTC
func (c *Real) Now() time.Time {
	return time.Now().UTC()
}

// New returns a new real clock
func New() Clock {
	return &Real{}
}

// Fixed always reports the same instant
type Fixed struct {
	At time.Time
}

// Now returns the fixed instant
func (c *Fixed) Now() time.Time {
	return c.At
}
