// Package memory provides an in-process LocationRepository and unit of
// work with real staging semantics: writes land in the shared store only
// on commit. It backs the service-layer tests and doubles as a zero-dep
// backend for local experiments.
package memory

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/locus-lab/project-locus/internal/core/storage"
	"github.com/locus-lab/project-locus/internal/domain"
)

// Store is the durable side: a map of records by id.
type Store struct {
	mu        sync.Mutex
	locations map[string]domain.Location
}

func NewStore() *Store {
	return &Store{locations: make(map[string]domain.Location)}
}

// All returns a snapshot of every committed record, for assertions.
func (s *Store) All() []domain.Location {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]domain.Location, 0, len(s.locations))
	for _, loc := range s.locations {
		out = append(out, loc)
	}
	return out
}

// Starter opens units of work against one shared Store. CommitErr, when
// set, makes every commit fail; tests use it to exercise the rollback
// path.
type Starter struct {
	store     *Store
	CommitErr error
}

func NewStarter(store *Store) *Starter {
	return &Starter{store: store}
}

func (s *Starter) Begin(_ context.Context) (storage.UnitOfWork, error) {
	return &UnitOfWork{store: s.store, commitErr: s.CommitErr, active: true}, nil
}

type stagedOp struct {
	delete bool
	loc    domain.Location
}

// UnitOfWork stages writes and applies them atomically on commit.
type UnitOfWork struct {
	store     *Store
	staged    []stagedOp
	events    []domain.Event
	active    bool
	commitErr error
}

func (u *UnitOfWork) Locations() storage.LocationRepository { return u }

func (u *UnitOfWork) Commit(_ context.Context) error {
	if !u.active {
		return fmt.Errorf("unit of work is not active")
	}
	u.active = false
	if u.commitErr != nil {
		u.staged = nil
		return u.commitErr
	}

	u.store.mu.Lock()
	defer u.store.mu.Unlock()
	for _, op := range u.staged {
		if op.delete {
			delete(u.store.locations, op.loc.ID)
		} else {
			u.store.locations[op.loc.ID] = op.loc
		}
	}
	u.staged = nil
	return nil
}

func (u *UnitOfWork) Rollback(_ context.Context) error {
	if u.active {
		u.active = false
		u.staged = nil
	}
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

func (u *UnitOfWork) Add(_ context.Context, loc *domain.Location) error {
	u.staged = append(u.staged, stagedOp{loc: *loc})
	return nil
}

func (u *UnitOfWork) Delete(ctx context.Context, loc *domain.Location) error {
	if _, err := u.GetByID(ctx, loc.ID); err != nil {
		return err
	}
	u.staged = append(u.staged, stagedOp{delete: true, loc: *loc})
	return nil
}

func (u *UnitOfWork) GetByID(_ context.Context, id string) (*domain.Location, error) {
	for _, loc := range u.view() {
		if loc.ID == id {
			out := loc
			return &out, nil
		}
	}
	return nil, storage.ErrNotFound
}

func (u *UnitOfWork) GetByUserAndTimestamp(_ context.Context, userID string, ts time.Time) (*domain.Location, error) {
	for _, loc := range u.view() {
		if loc.UserID == userID && loc.Timestamp.Equal(ts) {
			out := loc
			return &out, nil
		}
	}
	return nil, storage.ErrNotFound
}

func (u *UnitOfWork) GetLatestForUser(_ context.Context, userID string) (*domain.Location, error) {
	var latest *domain.Location
	for _, loc := range u.view() {
		if loc.UserID != userID {
			continue
		}
		loc := loc
		if latest == nil || loc.Timestamp.After(latest.Timestamp) {
			latest = &loc
		}
	}
	if latest == nil {
		return nil, storage.ErrNotFound
	}
	return latest, nil
}

// view merges committed records with this unit of work's staged ops so
// reads inside the scope see their own writes.
func (u *UnitOfWork) view() map[string]domain.Location {
	u.store.mu.Lock()
	merged := make(map[string]domain.Location, len(u.store.locations))
	for id, loc := range u.store.locations {
		merged[id] = loc
	}
	u.store.mu.Unlock()

	for _, op := range u.staged {
		if op.delete {
			delete(merged, op.loc.ID)
		} else {
			merged[op.loc.ID] = op.loc
		}
	}
	return merged
}
