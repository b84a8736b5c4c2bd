// Package aggregation holds the pure window logic: deciding when a
// user's one-minute window has closed and resampling buffered samples
// into per-minute mean rows.
package aggregation

import "time"

// WindowSize is the span of one buffered window per user. A window
// closes when a sample arrives at least this long after the oldest
// buffered sample.
const WindowSize = time.Minute

// WindowClosed reports whether an incoming sample closes the window
// anchored at the oldest buffered timestamp. Both instants must already
// be normalized to UTC.
func WindowClosed(oldest, incoming time.Time) bool {
	return incoming.Sub(oldest) >= WindowSize
}

// BucketFor floor-truncates a timestamp to the start of its minute.
// This is the durable record's dedup key per user.
// Example: BucketFor(10:35:42) -> 10:35:00
func BucketFor(t time.Time) time.Time {
	return t.Truncate(WindowSize)
}
