package repository

import (
	"context"

	"github.com/Eursukkul/bus-booking/internal/models"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

type BookingRepository interface {
	Create(ctx context.Context, tx *gorm.DB, booking *models.Booking) error
	FindByIDAndUser(ctx context.Context, tx *gorm.DB, id, userID uint) (*models.Booking, error)
	FindByIDAndUserForUpdate(ctx context.Context, tx *gorm.DB, id, userID uint) (*models.Booking, error)
	FindByUser(ctx context.Context, userID uint) ([]models.Booking, error)
	FindByIDs(ctx context.Context, ids []uint) ([]models.Booking, error)
	FindActiveByDate(ctx context.Context, date string) ([]models.Booking, error)
	FindPendingForUpdate(ctx context.Context, tx *gorm.DB, limit int) ([]models.Booking, error)
	SaveTransition(ctx context.Context, tx *gorm.DB, booking *models.Booking) error
	Delete(ctx context.Context, tx *gorm.DB, id uint) error
}

type bookingRepository struct {
	db *gorm.DB
}

func NewBookingRepository(db *gorm.DB) BookingRepository {
	return &bookingRepository{db: db}
}

func (r *bookingRepository) Create(ctx context.Context, tx *gorm.DB, booking *models.Booking) error {
	return conn(r.db, tx).WithContext(ctx).Create(booking).Error
}

// FindByIDAndUser matches on ownership as part of the lookup, so a foreign booking
// surfaces as gorm.ErrRecordNotFound exactly like a missing one.
func (r *bookingRepository) FindByIDAndUser(ctx context.Context, tx *gorm.DB, id, userID uint) (*models.Booking, error) {
	var booking models.Booking
	err := conn(r.db, tx).WithContext(ctx).
		Where("id = ? AND user_id = ?", id, userID).
		First(&booking).Error
	if err != nil {
		return nil, err
	}
	return &booking, nil
}

// FindByIDAndUserForUpdate acquires a row-level lock on the booking within the given transaction.
func (r *bookingRepository) FindByIDAndUserForUpdate(ctx context.Context, tx *gorm.DB, id, userID uint) (*models.Booking, error) {
	var booking models.Booking
	err := conn(r.db, tx).WithContext(ctx).
		Clauses(clause.Locking{Strength: "UPDATE"}).
		Where("id = ? AND user_id = ?", id, userID).
		First(&booking).Error
	if err != nil {
		return nil, err
	}
	return &booking, nil
}

func (r *bookingRepository) FindByUser(ctx context.Context, userID uint) ([]models.Booking, error) {
	var bookings []models.Booking
	err := r.db.WithContext(ctx).
		Where("user_id = ?", userID).
		Order("created_at DESC, id DESC").
		Find(&bookings).Error
	if err != nil {
		return nil, err
	}
	return bookings, nil
}

func (r *bookingRepository) FindByIDs(ctx context.Context, ids []uint) ([]models.Booking, error) {
	if len(ids) == 0 {
		return nil, nil
	}
	var bookings []models.Booking
	if err := r.db.WithContext(ctx).Where("id IN ?", ids).Find(&bookings).Error; err != nil {
		return nil, err
	}
	return bookings, nil
}

// FindActiveByDate returns pending and confirmed bookings departing on date.
func (r *bookingRepository) FindActiveByDate(ctx context.Context, date string) ([]models.Booking, error) {
	var bookings []models.Booking
	err := r.db.WithContext(ctx).
		Where("date = ? AND status IN ?", date, []models.BookingStatus{models.StatusPending, models.StatusConfirmed}).
		Order("id ASC").
		Find(&bookings).Error
	if err != nil {
		return nil, err
	}
	return bookings, nil
}

// FindPendingForUpdate locks up to limit of the oldest pending bookings, skipping
// rows another transaction already holds.
func (r *bookingRepository) FindPendingForUpdate(ctx context.Context, tx *gorm.DB, limit int) ([]models.Booking, error) {
	var bookings []models.Booking
	err := conn(r.db, tx).WithContext(ctx).
		Clauses(clause.Locking{Strength: "UPDATE", Options: "SKIP LOCKED"}).
		Where("status = ?", models.StatusPending).
		Order("id ASC").
		Limit(limit).
		Find(&bookings).Error
	if err != nil {
		return nil, err
	}
	return bookings, nil
}

func (r *bookingRepository) SaveTransition(ctx context.Context, tx *gorm.DB, booking *models.Booking) error {
	return conn(r.db, tx).WithContext(ctx).
		Model(&models.Booking{}).
		Where("id = ?", booking.ID).
		Updates(map[string]interface{}{
			"status":      booking.Status,
			"bus_number":  booking.BusNumber,
			"driver_name": booking.DriverName,
			"updated_at":  booking.UpdatedAt,
		}).Error
}

func (r *bookingRepository) Delete(ctx context.Context, tx *gorm.DB, id uint) error {
	return conn(r.db, tx).WithContext(ctx).Delete(&models.Booking{}, id).Error
}
