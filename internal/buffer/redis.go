package buffer

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/locus-lab/project-locus/internal/domain"
	"github.com/redis/go-redis/v9"
)

// maxPushRetries bounds the optimistic-transaction retry loop in
// PushIfNew when another writer touches the user's keys mid-flight.
const maxPushRetries = 3

// RedisStore implements Store on a redis list + set pair per user.
type RedisStore struct {
	client *redis.Client
}

// NewRedisStore wraps an already-connected client. The client is
// injected so tests and deployments control their own instance; the
// store never dials.
func NewRedisStore(client *redis.Client) *RedisStore {
	if client == nil {
		panic("buffer: redis client must not be nil")
	}
	return &RedisStore{client: client}
}

func (s *RedisStore) HasSeenTimestamp(ctx context.Context, userID string, ts time.Time) (bool, error) {
	seen, err := s.client.SIsMember(ctx, timestampsKey(userID), seenMember(ts)).Result()
	if err != nil {
		return false, fmt.Errorf("failed to check seen timestamp: %w", err)
	}
	return seen, nil
}

// PushIfNew runs the membership check and the insert inside one WATCHed
// transaction, so two concurrent pushes of the same timestamp cannot
// both insert.
func (s *RedisStore) PushIfNew(ctx context.Context, userID string, sample domain.Sample) (bool, error) {
	payload, err := json.Marshal(sample)
	if err != nil {
		return false, fmt.Errorf("failed to encode sample: %w", err)
	}

	tsKey := timestampsKey(userID)
	member := seenMember(sample.Timestamp)

	for attempt := 0; attempt < maxPushRetries; attempt++ {
		inserted := false
		err = s.client.Watch(ctx, func(tx *redis.Tx) error {
			seen, err := tx.SIsMember(ctx, tsKey, member).Result()
			if err != nil {
				return err
			}
			if seen {
				return nil
			}
			_, err = tx.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
				pipe.LPush(ctx, userID, payload)
				pipe.SAdd(ctx, tsKey, member)
				return nil
			})
			if err == nil {
				inserted = true
			}
			return err
		}, tsKey)

		if errors.Is(err, redis.TxFailedErr) {
			slog.Debug("[Redis] Push transaction raced, retrying", "user_id", userID, "attempt", attempt+1)
			continue
		}
		if err != nil {
			return false, fmt.Errorf("failed to push sample: %w", err)
		}
		return inserted, nil
	}
	return false, fmt.Errorf("failed to push sample after %d attempts: %w", maxPushRetries, redis.TxFailedErr)
}

func (s *RedisStore) OldestTimestamp(ctx context.Context, userID string) (time.Time, bool, error) {
	return s.timestampAt(ctx, userID, -1)
}

func (s *RedisStore) NewestTimestamp(ctx context.Context, userID string) (time.Time, bool, error) {
	return s.timestampAt(ctx, userID, 0)
}

// timestampAt reads one list entry; index 0 is the newest sample, -1 the
// oldest.
func (s *RedisStore) timestampAt(ctx context.Context, userID string, index int64) (time.Time, bool, error) {
	raw, err := s.client.LIndex(ctx, userID, index).Result()
	if errors.Is(err, redis.Nil) {
		return time.Time{}, false, nil
	}
	if err != nil {
		return time.Time{}, false, fmt.Errorf("failed to read buffer entry: %w", err)
	}

	var sample domain.Sample
	if err := json.Unmarshal([]byte(raw), &sample); err != nil {
		return time.Time{}, false, fmt.Errorf("failed to decode buffer entry: %w", err)
	}
	return sample.Timestamp, true, nil
}

// DrainAll reads and deletes the list and seen-set in one transaction so
// a concurrent push cannot land between the read and the delete.
func (s *RedisStore) DrainAll(ctx context.Context, userID string) ([]domain.Sample, error) {
	var entries *redis.StringSliceCmd
	_, err := s.client.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
		entries = pipe.LRange(ctx, userID, 0, -1)
		pipe.Del(ctx, userID)
		pipe.Del(ctx, timestampsKey(userID))
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("failed to drain buffer: %w", err)
	}

	raw := entries.Val()
	samples := make([]domain.Sample, 0, len(raw))
	for _, entry := range raw {
		var sample domain.Sample
		if err := json.Unmarshal([]byte(entry), &sample); err != nil {
			return nil, fmt.Errorf("failed to decode buffered sample: %w", err)
		}
		samples = append(samples, sample)
	}

	slog.Debug("[Redis] Drained buffer", "user_id", userID, "samples", len(samples))
	return samples, nil
}
