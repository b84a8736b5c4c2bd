// Package buffer holds the volatile per-user sample window: an ordered
// list of not-yet-committed samples (newest first) plus a set of seen
// timestamps used for deduplication.
package buffer

import (
	"context"
	"time"

	"github.com/locus-lab/project-locus/internal/domain"
)

// Store is the volatile-store contract backing the sample window. Every
// call is atomic on its own; callers must not assume atomicity across
// two calls (see the aggregator's newness check).
type Store interface {
	// HasSeenTimestamp reports whether a sample with this exact
	// timestamp was already buffered for the user since the last drain.
	HasSeenTimestamp(ctx context.Context, userID string, ts time.Time) (bool, error)

	// PushIfNew inserts the sample unless its timestamp was already
	// seen, marking the timestamp seen. Check and insert happen in one
	// atomic round trip. Returns whether the sample was inserted.
	PushIfNew(ctx context.Context, userID string, sample domain.Sample) (bool, error)

	// OldestTimestamp returns the timestamp of the oldest buffered
	// sample, i.e. the lower bound of the open window.
	OldestTimestamp(ctx context.Context, userID string) (time.Time, bool, error)

	// NewestTimestamp returns the timestamp of the most recently
	// buffered sample.
	NewestTimestamp(ctx context.Context, userID string) (time.Time, bool, error)

	// DrainAll returns every buffered sample (newest first) and clears
	// both the sample list and the seen-timestamp set for the user.
	DrainAll(ctx context.Context, userID string) ([]domain.Sample, error)
}

// seenMember is the canonical string form of a timestamp in the
// seen-set; it must round-trip the buffer wire format exactly.
func seenMember(ts time.Time) string {
	return ts.Format(time.RFC3339Nano)
}

// timestampsKey names the per-user seen-timestamp set. The sample list
// lives under the bare user id, matching the wire contract.
func timestampsKey(userID string) string {
	return userID + ":timestamps"
}
