package postgres

import (
	"context"
	"database/sql"
	"fmt"
	"log/slog"

	"time"

	"github.com/locus-lab/project-locus/internal/core/storage"
	"github.com/locus-lab/project-locus/internal/domain"
)

// txRepository implements storage.LocationRepository over one open
// transaction. It is created by UnitOfWork.Begin and dies with it.
type txRepository struct {
	tx *sql.Tx
}

func (r *txRepository) Add(ctx context.Context, loc *domain.Location) error {
	_, err := r.tx.ExecContext(ctx, queryInsertLocation,
		loc.ID,
		loc.UserID,
		loc.Timestamp,
		loc.Lat,
		loc.Long,
		loc.Accuracy,
		loc.Speed,
	)
	if err != nil {
		return fmt.Errorf("failed to insert location: %w", err)
	}
	slog.Debug("[Postgres] Staged location insert",
		"location_id", loc.ID,
		"user_id", loc.UserID,
		"recorded_at", loc.Timestamp)
	return nil
}

func (r *txRepository) Delete(ctx context.Context, loc *domain.Location) error {
	res, err := r.tx.ExecContext(ctx, queryDeleteLocation, loc.ID)
	if err != nil {
		return fmt.Errorf("failed to delete location: %w", err)
	}
	if n, err := res.RowsAffected(); err == nil && n == 0 {
		return fmt.Errorf("delete location %s: %w", loc.ID, storage.ErrNotFound)
	}
	return nil
}

func (r *txRepository) GetByID(ctx context.Context, id string) (*domain.Location, error) {
	return scanLocation(r.tx.QueryRowContext(ctx, queryGetLocationByID, id))
}

func (r *txRepository) GetByUserAndTimestamp(ctx context.Context, userID string, ts time.Time) (*domain.Location, error) {
	return scanLocation(r.tx.QueryRowContext(ctx, queryGetLocationByUserAndTimestamp, userID, ts))
}

func (r *txRepository) GetLatestForUser(ctx context.Context, userID string) (*domain.Location, error) {
	return scanLocation(r.tx.QueryRowContext(ctx, queryGetLatestLocationForUser, userID))
}

// scanLocation maps one row into a detached record. Stored instants are
// UTC; the driver's location is normalized away on read.
func scanLocation(row *sql.Row) (*domain.Location, error) {
	var loc domain.Location
	err := row.Scan(
		&loc.ID,
		&loc.UserID,
		&loc.Timestamp,
		&loc.Lat,
		&loc.Long,
		&loc.Accuracy,
		&loc.Speed,
	)
	if err == sql.ErrNoRows {
		return nil, storage.ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to scan location: %w", err)
	}
	loc.Timestamp = loc.Timestamp.UTC()
	return &loc, nil
}
