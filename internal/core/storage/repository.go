package storage

import (
	"context"
	"errors"
	"time"

	"github.com/locus-lab/project-locus/internal/domain"
)

// ErrNotFound is returned when no location matches the lookup.
var ErrNotFound = errors.New("location not found")

// LocationRepository is the durable-record contract. Add and Delete are
// staged against the owning unit of work and become durable only on
// commit. Returned records are detached value copies, safe to read after
// the unit of work closes.
type LocationRepository interface {
	Add(ctx context.Context, loc *domain.Location) error
	Delete(ctx context.Context, loc *domain.Location) error
	GetByID(ctx context.Context, id string) (*domain.Location, error)

	// GetByUserAndTimestamp looks up the record occupying one exact
	// minute bucket for a user.
	GetByUserAndTimestamp(ctx context.Context, userID string, ts time.Time) (*domain.Location, error)

	// GetLatestForUser returns the most recent durable record for the
	// user, used by the newness check when the volatile buffer is empty.
	GetLatestForUser(ctx context.Context, userID string) (*domain.Location, error)
}

// UnitOfWork scopes one durable-store transaction to one command.
// Rollback after a successful Commit is a no-op, so handlers defer it
// and rolling back is the default exit path. One instance serves exactly
// one command; reentrant or concurrent use is not supported.
type UnitOfWork interface {
	Locations() LocationRepository
	Commit(ctx context.Context) error
	Rollback(ctx context.Context) error

	// RaiseEvent appends a domain event to this unit of work's buffer.
	RaiseEvent(evt domain.Event)

	// CollectNewEvents drains the event buffer. One-shot: a second call
	// returns nothing new.
	CollectNewEvents() []domain.Event
}

// Starter opens fresh units of work, one per inbound command.
type Starter interface {
	Begin(ctx context.Context) (UnitOfWork, error)
}
