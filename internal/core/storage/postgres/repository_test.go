package postgres

import (
	"context"
	"regexp"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/locus-lab/project-locus/internal/core/storage"
	"github.com/stretchr/testify/require"
)

var locationRows = []string{"id", "user_id", "recorded_at", "lat", "long", "accuracy", "speed"}

func TestTxRepository_GetByUserAndTimestamp(t *testing.T) {
	bucket := time.Date(2017, 1, 1, 18, 5, 0, 0, time.UTC)

	tests := []struct {
		name       string
		mockResult func(mock sqlmock.Sqlmock)
		wantErr    error
	}{
		{
			name: "found returns detached record",
			mockResult: func(mock sqlmock.Sqlmock) {
				mock.ExpectQuery(regexp.QuoteMeta(queryGetLocationByUserAndTimestamp)).
					WithArgs("user-1", bucket).
					WillReturnRows(sqlmock.NewRows(locationRows).
						AddRow("loc-1", "user-1", bucket, 40.701, -73.916, 5.0, 1.5))
			},
		},
		{
			name: "missing maps to ErrNotFound",
			mockResult: func(mock sqlmock.Sqlmock) {
				mock.ExpectQuery(regexp.QuoteMeta(queryGetLocationByUserAndTimestamp)).
					WithArgs("user-1", bucket).
					WillReturnRows(sqlmock.NewRows(locationRows))
			},
			wantErr: storage.ErrNotFound,
		},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			starter, mock := newMockStarter(t)
			mock.ExpectBegin()
			tc.mockResult(mock)
			mock.ExpectRollback()

			ctx := context.Background()
			uow, err := starter.Begin(ctx)
			require.NoError(t, err)
			defer uow.Rollback(ctx)

			loc, err := uow.Locations().GetByUserAndTimestamp(ctx, "user-1", bucket)
			if tc.wantErr != nil {
				require.ErrorIs(t, err, tc.wantErr)
			} else {
				require.NoError(t, err)
				require.Equal(t, "loc-1", loc.ID)
				require.Equal(t, bucket, loc.Timestamp)
			}

			require.NoError(t, uow.Rollback(ctx))
			require.NoError(t, mock.ExpectationsWereMet())
		})
	}
}

func TestTxRepository_GetLatestForUser(t *testing.T) {
	latest := time.Date(2017, 1, 1, 18, 7, 0, 0, time.UTC)

	starter, mock := newMockStarter(t)
	mock.ExpectBegin()
	mock.ExpectQuery(regexp.QuoteMeta(queryGetLatestLocationForUser)).
		WithArgs("user-1").
		WillReturnRows(sqlmock.NewRows(locationRows).
			AddRow("loc-2", "user-1", latest, 40.7, -73.9, 4.0, 2.0))
	mock.ExpectRollback()

	ctx := context.Background()
	uow, err := starter.Begin(ctx)
	require.NoError(t, err)
	defer uow.Rollback(ctx)

	loc, err := uow.Locations().GetLatestForUser(ctx, "user-1")
	require.NoError(t, err)
	require.Equal(t, latest, loc.Timestamp)

	require.NoError(t, uow.Rollback(ctx))
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestTxRepository_DeleteMissingRowFails(t *testing.T) {
	starter, mock := newMockStarter(t)
	loc := testLocation(t)

	mock.ExpectBegin()
	mock.ExpectExec(regexp.QuoteMeta(queryDeleteLocation)).
		WithArgs(loc.ID).
		WillReturnResult(sqlmock.NewResult(0, 0))
	mock.ExpectRollback()

	ctx := context.Background()
	uow, err := starter.Begin(ctx)
	require.NoError(t, err)
	defer uow.Rollback(ctx)

	require.ErrorIs(t, uow.Locations().Delete(ctx, loc), storage.ErrNotFound)
	require.NoError(t, uow.Rollback(ctx))
	require.NoError(t, mock.ExpectationsWereMet())
}
