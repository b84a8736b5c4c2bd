// Package service implements the command handlers that drive the
// buffering/aggregation pipeline: normalize the timestamp, decide
// buffer-vs-flush, and on flush resample the window into one durable
// record per minute inside a unit of work.
package service

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/locus-lab/project-locus/internal/buffer"
	"github.com/locus-lab/project-locus/internal/core/aggregation"
	"github.com/locus-lab/project-locus/internal/core/storage"
	"github.com/locus-lab/project-locus/internal/domain"
)

// ZoneResolver is the slice of the timezone resolver the handlers need.
type ZoneResolver interface {
	ToUTC(ts time.Time, naive bool, lat, long float64) (time.Time, error)
}

// Handlers carries the collaborators shared by every command handler.
// All of them are injected; nothing here reaches for a global client.
type Handlers struct {
	uow      storage.Starter
	buffer   buffer.Store
	resolver ZoneResolver
}

func NewHandlers(uow storage.Starter, buf buffer.Store, resolver ZoneResolver) *Handlers {
	if uow == nil || buf == nil || resolver == nil {
		panic("service: all handler collaborators must be non-nil")
	}
	return &Handlers{uow: uow, buffer: buf, resolver: resolver}
}

// PutLocation ingests one ping. When the incoming sample closes the
// user's one-minute window the buffered samples are flushed into a
// single averaged record; otherwise the sample is buffered if it is
// strictly newer than anything already known for the user, and silently
// dropped if not.
func (h *Handlers) PutLocation(ctx context.Context, cmd domain.Command) (any, []domain.Event, error) {
	put, ok := cmd.(domain.PutLocation)
	if !ok {
		return nil, nil, fmt.Errorf("unexpected command type %T", cmd)
	}

	utc, err := h.resolver.ToUTC(put.Timestamp, put.Naive, put.Lat, put.Long)
	if err != nil {
		return nil, nil, err
	}
	incoming := domain.Sample{
		Timestamp: utc,
		Lat:       put.Lat,
		Long:      put.Long,
		Accuracy:  put.Accuracy,
		Speed:     put.Speed,
		UserID:    put.UserID,
	}

	uow, err := h.uow.Begin(ctx)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to open unit of work: %w", err)
	}
	defer uow.Rollback(ctx)

	oldest, buffered, err := h.buffer.OldestTimestamp(ctx, put.UserID)
	if err != nil {
		return nil, nil, err
	}

	if buffered && aggregation.WindowClosed(oldest, utc) {
		if err := h.flush(ctx, uow, incoming); err != nil {
			return nil, nil, err
		}
		return nil, uow.CollectNewEvents(), nil
	}

	newer, err := h.isNewer(ctx, uow, put.UserID, utc)
	if err != nil {
		return nil, nil, err
	}
	if !newer {
		slog.Debug("Dropped stale sample", "user_id", put.UserID, "timestamp", utc)
		return nil, nil, nil
	}

	if _, err := h.buffer.PushIfNew(ctx, put.UserID, incoming); err != nil {
		return nil, nil, err
	}
	return nil, nil, nil
}

// flush drains the closed window, averages it into one record per minute
// bucket, reconciles each bucket against any record already persisted
// for it, and commits. The incoming sample is not part of the flush; it
// seeds the next window afterwards.
//
// The buffer is drained before the transaction outcome is known: a crash
// between drain and commit loses the drained samples. Inherited,
// documented behavior.
func (h *Handlers) flush(ctx context.Context, uow storage.UnitOfWork, incoming domain.Sample) error {
	userID := incoming.UserID

	samples, err := h.buffer.DrainAll(ctx, userID)
	if err != nil {
		return err
	}
	rows := aggregation.Resample(samples)

	// Merge-by-replace: fold any record already occupying a target
	// bucket into the mean and delete it, so exactly one record per
	// (user, bucket) survives the commit.
	merged := false
	for _, row := range rows {
		existing, err := uow.Locations().GetByUserAndTimestamp(ctx, userID, row.Bucket)
		if errors.Is(err, storage.ErrNotFound) {
			continue
		}
		if err != nil {
			return err
		}
		samples = append(samples, existing.AsSample())
		if err := uow.Locations().Delete(ctx, existing); err != nil {
			return err
		}
		merged = true
	}
	if merged {
		rows = aggregation.Resample(samples)
	}

	written := make([]*domain.Location, 0, len(rows))
	for _, row := range rows {
		loc, err := domain.NewLocation("", row.Bucket, row.Lat, row.Long, row.Accuracy, row.Speed, userID)
		if err != nil {
			return err
		}
		if err := uow.Locations().Add(ctx, loc); err != nil {
			return err
		}
		written = append(written, loc)
	}

	if err := uow.Commit(ctx); err != nil {
		return err
	}

	for _, loc := range written {
		uow.RaiseEvent(domain.LocationAdded{
			Timestamp: loc.Timestamp,
			Lat:       loc.Lat,
			Long:      loc.Long,
			Accuracy:  loc.Accuracy,
			Speed:     loc.Speed,
			UserID:    loc.UserID,
		})
	}

	// The sample that closed the window opens the next one.
	if _, err := h.buffer.PushIfNew(ctx, userID, incoming); err != nil {
		slog.Warn("Failed to re-seed buffer after flush", "user_id", userID, "error", err)
	}

	slog.Info("Flushed window", "user_id", userID, "samples", len(samples), "records", len(written))
	return nil
}

// isNewer applies the newness test: the incoming instant must be
// strictly newer than the buffer's newest sample, or, with an empty
// buffer, than the latest durable record. The first sample ever seen for
// a user is always new. The buffer read and the later push are separate
// calls; concurrent same-user commands must be serialized upstream.
func (h *Handlers) isNewer(ctx context.Context, uow storage.UnitOfWork, userID string, ts time.Time) (bool, error) {
	newest, buffered, err := h.buffer.NewestTimestamp(ctx, userID)
	if err != nil {
		return false, err
	}
	if buffered {
		return ts.After(newest), nil
	}

	latest, err := uow.Locations().GetLatestForUser(ctx, userID)
	if errors.Is(err, storage.ErrNotFound) {
		return true, nil
	}
	if err != nil {
		return false, err
	}
	return ts.After(latest.Timestamp), nil
}

// HealthCheck opens and commits an empty unit of work, proving the
// durable store is reachable and transactional.
func (h *Handlers) HealthCheck(ctx context.Context, _ domain.Command) (any, []domain.Event, error) {
	uow, err := h.uow.Begin(ctx)
	if err != nil {
		return false, nil, fmt.Errorf("failed to open unit of work: %w", err)
	}
	defer uow.Rollback(ctx)

	if err := uow.Commit(ctx); err != nil {
		return false, nil, err
	}
	return true, nil, nil
}
