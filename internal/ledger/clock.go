package ledger

import "time"

// Clock returns the current time. Tests substitute a fixed clock.
type Clock func() time.Time

// SystemClock is the wall clock in UTC, truncated to the millisecond
// precision every storage backend can round-trip.
func SystemClock() time.Time {
	return time.Now().UTC().Truncate(time.Millisecond)
}
