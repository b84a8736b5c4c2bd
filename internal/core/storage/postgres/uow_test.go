package postgres

import (
	"context"
	"errors"
	"regexp"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/locus-lab/project-locus/internal/domain"
	"github.com/stretchr/testify/require"
)

func newMockStarter(t *testing.T) (*Starter, sqlmock.Sqlmock) {
	t.Helper()
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })
	return &Starter{db: db}, mock
}

func testLocation(t *testing.T) *domain.Location {
	t.Helper()
	loc, err := domain.NewLocation("loc-1",
		time.Date(2017, 1, 1, 18, 5, 0, 0, time.UTC),
		40.701, -73.916, 5, 1.5, "user-1")
	require.NoError(t, err)
	return loc
}

func TestUnitOfWork_CommitAfterAdd(t *testing.T) {
	starter, mock := newMockStarter(t)
	loc := testLocation(t)

	mock.ExpectBegin()
	mock.ExpectExec(regexp.QuoteMeta(queryInsertLocation)).
		WithArgs(loc.ID, loc.UserID, loc.Timestamp, loc.Lat, loc.Long, loc.Accuracy, loc.Speed).
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectCommit()

	ctx := context.Background()
	uow, err := starter.Begin(ctx)
	require.NoError(t, err)
	defer uow.Rollback(ctx)

	require.NoError(t, uow.Locations().Add(ctx, loc))
	require.NoError(t, uow.Commit(ctx))

	// Deferred rollback after commit must be a no-op.
	require.NoError(t, uow.Rollback(ctx))
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestUnitOfWork_RollbackIsTheDefault(t *testing.T) {
	starter, mock := newMockStarter(t)

	mock.ExpectBegin()
	mock.ExpectRollback()

	ctx := context.Background()
	uow, err := starter.Begin(ctx)
	require.NoError(t, err)

	// Scope exits without commit.
	require.NoError(t, uow.Rollback(ctx))
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestUnitOfWork_CommitFailureWrapsError(t *testing.T) {
	starter, mock := newMockStarter(t)

	mock.ExpectBegin()
	mock.ExpectCommit().WillReturnError(errors.New("connection reset"))

	ctx := context.Background()
	uow, err := starter.Begin(ctx)
	require.NoError(t, err)

	err = uow.Commit(ctx)
	require.Error(t, err)
	require.ErrorContains(t, err, "failed to commit transaction")

	// The unit of work is finished either way.
	require.Error(t, uow.Commit(ctx))
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestUnitOfWork_CollectNewEventsIsOneShot(t *testing.T) {
	starter, mock := newMockStarter(t)

	mock.ExpectBegin()
	mock.ExpectCommit()

	ctx := context.Background()
	uow, err := starter.Begin(ctx)
	require.NoError(t, err)
	require.NoError(t, uow.Commit(ctx))

	uow.RaiseEvent(domain.LocationAdded{UserID: "user-1"})
	uow.RaiseEvent(domain.LocationAdded{UserID: "user-1"})

	first := uow.CollectNewEvents()
	require.Len(t, first, 2)
	require.Empty(t, uow.CollectNewEvents())
	require.NoError(t, mock.ExpectationsWereMet())
}
