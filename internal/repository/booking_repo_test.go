package repository

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/Eursukkul/bus-booking/internal/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
)

var bookingColumns = []string{
	"id", "user_id", "origin", "destination", "date", "time", "number_of_passengers",
	"phone_number", "status", "bus_number", "driver_name", "price", "created_at", "updated_at",
}

func TestBookingRepo_Create_ReturnsID(t *testing.T) {
	db, mock := newMockDB(t)
	repo := NewBookingRepository(db)

	mock.ExpectQuery(`INSERT INTO "bookings"`).
		WillReturnRows(sqlmock.NewRows([]string{"id"}).AddRow(11))

	b := &models.Booking{
		UserID: 3, From: "MSU", To: "Harare", Date: "2024-01-01", Time: "08:00",
		NumberOfPassengers: 2, PhoneNumber: "0771234567", Status: models.StatusPending, Price: 4.5,
	}
	require.NoError(t, repo.Create(context.Background(), nil, b))

	assert.Equal(t, uint(11), b.ID)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestBookingRepo_FindByIDAndUser_NotOwned(t *testing.T) {
	db, mock := newMockDB(t)
	repo := NewBookingRepository(db)

	mock.ExpectQuery(`SELECT \* FROM "bookings" WHERE id = \$1 AND user_id = \$2`).
		WillReturnRows(sqlmock.NewRows(bookingColumns))

	b, err := repo.FindByIDAndUser(context.Background(), nil, 7, 99)

	assert.True(t, errors.Is(err, gorm.ErrRecordNotFound))
	assert.Nil(t, b)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestBookingRepo_FindByUser_MapsColumns(t *testing.T) {
	db, mock := newMockDB(t)
	repo := NewBookingRepository(db)

	now := time.Now()
	mock.ExpectQuery(`SELECT \* FROM "bookings" WHERE user_id = \$1 ORDER BY created_at DESC, id DESC`).
		WillReturnRows(sqlmock.NewRows(bookingColumns).
			AddRow(2, 3, "MSU", "Harare", "2024-01-02", "09:00", 1, "0771234567", "pending", "BUS-002", "Lisa Brown", 4.0, now, now).
			AddRow(1, 3, "Gweru", "Bulawayo", "2024-01-01", "08:00", 2, "0771234567", "confirmed", "BUS-001", "John Smith", 4.5, now, now))

	bookings, err := repo.FindByUser(context.Background(), 3)

	require.NoError(t, err)
	require.Len(t, bookings, 2)
	assert.Equal(t, "MSU", bookings[0].From)
	assert.Equal(t, "Harare", bookings[0].To)
	assert.Equal(t, models.StatusConfirmed, bookings[1].Status)
	assert.Equal(t, 4.5, bookings[1].Price)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestBookingRepo_FindPendingForUpdate_SkipsLocked(t *testing.T) {
	db, mock := newMockDB(t)
	repo := NewBookingRepository(db)

	mock.ExpectQuery(`SELECT \* FROM "bookings" WHERE status = \$1 ORDER BY id ASC LIMIT .* FOR UPDATE SKIP LOCKED`).
		WillReturnRows(sqlmock.NewRows(bookingColumns))

	bookings, err := repo.FindPendingForUpdate(context.Background(), nil, 2)

	require.NoError(t, err)
	assert.Empty(t, bookings)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestBookingRepo_FindByIDs_EmptyInputSkipsQuery(t *testing.T) {
	db, mock := newMockDB(t)
	repo := NewBookingRepository(db)

	bookings, err := repo.FindByIDs(context.Background(), nil)

	assert.NoError(t, err)
	assert.Nil(t, bookings)
	assert.NoError(t, mock.ExpectationsWereMet())
}
