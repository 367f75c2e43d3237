// Package clock provides the date collaborator shared by the memory
// summariser and the today_date tool. It is an interface so tests can pin
// the date instead of depending on the wall clock.
package clock

import "time"

// Clock supplies the current date and time.
type Clock interface {
	// Now returns the current instant.
	Now() time.Time

	// Today returns the current date as an ISO-8601 string (YYYY-MM-DD).
	Today() string
}

// System is the wall-clock implementation used outside tests.
type System struct{}

func (System) Now() time.Time { return time.Now() }

func (System) Today() string { return time.Now().Format(time.DateOnly) }

// Fixed is a Clock pinned to a single instant, for tests.
type Fixed struct {
	Instant time.Time
}

func (f Fixed) Now() time.Time { return f.Instant }

func (f Fixed) Today() string { return f.Instant.Format(time.DateOnly) }
