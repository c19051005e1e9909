package repositories

import (
	"errors"
	"testing"
	"time"

	"resorthub/internal/apperror"
	. "resorthub/internal/models"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
)

func newMockDB(t *testing.T) (*gorm.DB, sqlmock.Sqlmock) {
	t.Helper()

	sqlDB, mock, err := sqlmock.New()
	require.NoError(t, err)
	t.Cleanup(func() { sqlDB.Close() })

	gormDB, err := gorm.Open(postgres.New(postgres.Config{Conn: sqlDB}), &gorm.Config{
		SkipDefaultTransaction: true,
	})
	require.NoError(t, err)

	return gormDB, mock
}

func TestTranslate(t *testing.T) {
	tests := []struct {
		name     string
		err      error
		expected error
	}{
		{name: "not found", err: gorm.ErrRecordNotFound, expected: apperror.ErrNotFound},
		{name: "duplicate", err: gorm.ErrDuplicatedKey, expected: apperror.ErrUsernameTaken},
		{name: "other", err: errors.New("connection reset"), expected: apperror.ErrStore},
		{name: "already classified", err: apperror.ErrNotAuthorized, expected: apperror.ErrNotAuthorized},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.ErrorIs(t, translate(tt.err), tt.expected)
		})
	}

	assert.NoError(t, translate(nil))
}

func TestScopeFor(t *testing.T) {
	id := uuid.New()

	customer := ScopeFor(NewPrincipal(PrincipalCustomer, id))
	require.NotNil(t, customer.CustomerID)
	assert.Equal(t, id, *customer.CustomerID)
	assert.Nil(t, customer.OwnerID)

	owner := ScopeFor(NewPrincipal(PrincipalOwner, id))
	require.NotNil(t, owner.OwnerID)
	assert.Nil(t, owner.CustomerID)

	assert.Equal(t, ReservationScope{}, ScopeFor(NewPrincipal(PrincipalAdmin, id)))
}

func TestReservationRepository_ExpireOverdue(t *testing.T) {
	db, mock := newMockDB(t)
	repo := NewReservationRepository()
	ownerID := uuid.New()

	mock.ExpectExec(`UPDATE "reservations" SET .*"status".* WHERE owner_id = .*expires_at IS NOT NULL AND expires_at <= `).
		WillReturnResult(sqlmock.NewResult(0, 2))

	expired, err := repo.ExpireOverdue(t.Context(), db, time.Now(), ReservationScope{OwnerID: &ownerID})

	require.NoError(t, err)
	assert.Equal(t, int64(2), expired)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestReservationRepository_ExpireOverdue_StoreFailure(t *testing.T) {
	db, mock := newMockDB(t)
	repo := NewReservationRepository()

	mock.ExpectExec(`UPDATE "reservations" SET`).WillReturnError(errors.New("db down"))

	_, err := repo.ExpireOverdue(t.Context(), db, time.Now(), ReservationScope{})

	assert.ErrorIs(t, err, apperror.ErrStore)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestReservationRepository_CountConfirmedOverlaps(t *testing.T) {
	db, mock := newMockDB(t)
	repo := NewReservationRepository()
	resourceID := uuid.New()
	self := uuid.New()

	mock.ExpectQuery(`SELECT count\(\*\) FROM "reservations" WHERE .*check_in <= .* AND check_out >= .* AND id <> `).
		WillReturnRows(sqlmock.NewRows([]string{"count"}).AddRow(1))

	checkIn := time.Date(2025, 11, 4, 0, 0, 0, 0, time.UTC)
	count, err := repo.CountConfirmedOverlaps(
		t.Context(), db, ListingRoom, resourceID, checkIn, checkIn.AddDate(0, 0, 2), &self,
	)

	require.NoError(t, err)
	assert.Equal(t, int64(1), count)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestReservationRepository_Transition(t *testing.T) {
	tests := []struct {
		name     string
		affected int64
		expected bool
	}{
		{name: "applied", affected: 1, expected: true},
		{name: "status moved underneath", affected: 0, expected: false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			db, mock := newMockDB(t)
			repo := NewReservationRepository()

			mock.ExpectExec(`UPDATE "reservations" SET .*"expires_at".*"status".* WHERE id = .* AND status = `).
				WillReturnResult(sqlmock.NewResult(0, tt.affected))

			ok, err := repo.Transition(t.Context(), db, uuid.New(), ReservationPending, ReservationConfirmed)

			require.NoError(t, err)
			assert.Equal(t, tt.expected, ok)
			assert.NoError(t, mock.ExpectationsWereMet())
		})
	}
}

func TestNotificationRepository_CountUnread_ScopesByReader(t *testing.T) {
	db, mock := newMockDB(t)
	repo := NewNotificationRepository()

	mock.ExpectQuery(`SELECT count\(\*\) FROM "notifications" WHERE related_owner_id = .* AND is_read = `).
		WillReturnRows(sqlmock.NewRows([]string{"count"}).AddRow(3))

	count, err := repo.CountUnread(t.Context(), db, NewPrincipal(PrincipalOwner, uuid.New()))

	require.NoError(t, err)
	assert.Equal(t, int64(3), count)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestMessageRepository_LatestByThread_EmptyInput(t *testing.T) {
	db, mock := newMockDB(t)

	latest, err := NewMessageRepository().LatestByThread(t.Context(), db, nil, false)

	require.NoError(t, err)
	assert.Empty(t, latest)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestListingCacheKey(t *testing.T) {
	ownerID := uuid.MustParse("0190a3c4-1111-7000-8000-000000000001")
	assert.Equal(t, ownerID.String()+":room", listingCacheKey(ownerID, ListingRoom))
}
