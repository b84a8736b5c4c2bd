package postgres

import (
	"context"
	"database/sql"
	"fmt"
	"log/slog"

	"github.com/locus-lab/project-locus/internal/core/storage"
	"github.com/locus-lab/project-locus/internal/domain"
)

type uowState int

const (
	stateActive uowState = iota
	stateCommitted
	stateRolledBack
)

// Starter opens one transaction-backed unit of work per command.
type Starter struct {
	db *sql.DB
}

func NewStarter(adapter *Adapter) *Starter {
	return &Starter{db: adapter.DB()}
}

func (s *Starter) Begin(ctx context.Context) (storage.UnitOfWork, error) {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to begin transaction: %w", err)
	}
	return &UnitOfWork{
		tx:        tx,
		locations: &txRepository{tx: tx},
		state:     stateActive,
	}, nil
}

// UnitOfWork binds one repository to one open transaction. Exit without
// an explicit Commit rolls back. Events raised during the scope live in
// this struct's buffer, not on the entities.
type UnitOfWork struct {
	tx        *sql.Tx
	locations *txRepository
	state     uowState
	events    []domain.Event
}

func (u *UnitOfWork) Locations() storage.LocationRepository {
	return u.locations
}

func (u *UnitOfWork) Commit(ctx context.Context) error {
	if u.state != stateActive {
		return fmt.Errorf("unit of work is not active")
	}
	if err := u.tx.Commit(); err != nil {
		u.state = stateRolledBack
		return fmt.Errorf("failed to commit transaction: %w", err)
	}
	u.state = stateCommitted
	return nil
}

// Rollback is a no-op once the unit of work is committed or already
// rolled back, so handlers defer it unconditionally.
func (u *UnitOfWork) Rollback(_ context.Context) error {
	if u.state != stateActive {
		return nil
	}
	u.state = stateRolledBack
	if err := u.tx.Rollback(); err != nil {
		return fmt.Errorf("failed to roll back transaction: %w", err)
	}
	slog.Debug("[Postgres] Unit of work rolled back")
	return nil
}

func (u *UnitOfWork) RaiseEvent(evt domain.Event) {
	u.events = append(u.events, evt)
}

func (u *UnitOfWork) CollectNewEvents() []domain.Event {
	events := u.events
	u.events = nil
	return events
}
