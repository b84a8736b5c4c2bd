package buffer

import (
	"context"
	"testing"
	"time"

	"github.com/locus-lab/project-locus/internal/domain"
	"github.com/stretchr/testify/require"
)

func sampleAt(ts time.Time) domain.Sample {
	return domain.Sample{
		Timestamp: ts,
		Lat:       40.701,
		Long:      -73.916,
		Accuracy:  5,
		Speed:     1.5,
		UserID:    "user-1",
	}
}

func TestMemoryStore_PushIfNewIsIdempotent(t *testing.T) {
	ctx := context.Background()
	store := NewMemoryStore()
	ts := time.Date(2017, 1, 1, 18, 5, 12, 0, time.UTC)

	for i := 0; i < 3; i++ {
		inserted, err := store.PushIfNew(ctx, "user-1", sampleAt(ts))
		require.NoError(t, err)
		require.Equal(t, i == 0, inserted)
	}

	seen, err := store.HasSeenTimestamp(ctx, "user-1", ts)
	require.NoError(t, err)
	require.True(t, seen)

	samples, err := store.DrainAll(ctx, "user-1")
	require.NoError(t, err)
	require.Len(t, samples, 1)
}

func TestMemoryStore_OrderIsNewestFirst(t *testing.T) {
	ctx := context.Background()
	store := NewMemoryStore()
	t0 := time.Date(2017, 1, 1, 18, 5, 0, 0, time.UTC)

	for _, offset := range []time.Duration{0, 10 * time.Second, 25 * time.Second} {
		_, err := store.PushIfNew(ctx, "user-1", sampleAt(t0.Add(offset)))
		require.NoError(t, err)
	}

	oldest, ok, err := store.OldestTimestamp(ctx, "user-1")
	require.NoError(t, err)
	require.True(t, ok)
	require.Equal(t, t0, oldest)

	newest, ok, err := store.NewestTimestamp(ctx, "user-1")
	require.NoError(t, err)
	require.True(t, ok)
	require.Equal(t, t0.Add(25*time.Second), newest)

	samples, err := store.DrainAll(ctx, "user-1")
	require.NoError(t, err)
	require.Len(t, samples, 3)
	require.Equal(t, t0.Add(25*time.Second), samples[0].Timestamp)
	require.Equal(t, t0, samples[2].Timestamp)
}

func TestMemoryStore_DrainClearsSeenSet(t *testing.T) {
	ctx := context.Background()
	store := NewMemoryStore()
	ts := time.Date(2017, 1, 1, 18, 5, 12, 0, time.UTC)

	_, err := store.PushIfNew(ctx, "user-1", sampleAt(ts))
	require.NoError(t, err)

	_, err = store.DrainAll(ctx, "user-1")
	require.NoError(t, err)

	// The same timestamp is accepted again after a drain.
	inserted, err := store.PushIfNew(ctx, "user-1", sampleAt(ts))
	require.NoError(t, err)
	require.True(t, inserted)

	_, ok, err := store.OldestTimestamp(ctx, "user-2")
	require.NoError(t, err)
	require.False(t, ok)
}
