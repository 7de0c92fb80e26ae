package service

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/Eursukkul/bus-booking/internal/apperror"
	"github.com/Eursukkul/bus-booking/internal/models"
	"github.com/Eursukkul/bus-booking/internal/repository"
	"github.com/Eursukkul/bus-booking/pkg/logger"
	"gorm.io/gorm"
)

const DefaultAutoConfirmLimit = 2

var (
	ErrBookingNotFound  = apperror.NotFound("booking not found")
	ErrInvalidStatus    = apperror.Validation("invalid status")
	ErrAlreadyCancelled = apperror.InvalidTransition("booking already cancelled")
	ErrCancelledBooking = apperror.InvalidTransition("cannot update cancelled booking")
	ErrCompletedBooking = apperror.InvalidTransition("cannot update completed booking")
	ErrRevertConfirmed  = apperror.InvalidTransition("cannot move confirmed booking back to pending")
	ErrDeleteNotAllowed = apperror.InvalidTransition("cannot delete confirmed or completed booking")
)

type CreateBookingInput struct {
	From               string
	To                 string
	Date               string
	Time               string
	NumberOfPassengers *int
	PhoneNumber        string
}

type BookingService interface {
	CreateBooking(ctx context.Context, userID uint, in CreateBookingInput) (*models.Booking, error)
	ListBookings(ctx context.Context, userID uint) ([]models.Booking, error)
	GetBooking(ctx context.Context, userID, id uint) (*models.Booking, error)
	UpdateStatus(ctx context.Context, userID, id uint, status models.BookingStatus) (*models.Booking, error)
	CancelBooking(ctx context.Context, userID, id uint) (*models.Booking, error)
	DeleteBooking(ctx context.Context, userID, id uint) error
	AutoConfirmBatch(ctx context.Context, limit int) (int, error)
}

type bookingService struct {
	tx          repository.Transactor
	bookingRepo repository.BookingRepository
	notifier    NotificationService
	clock       Clock
	picker      Picker
	log         logger.ILogger
}

func NewBookingService(
	tx repository.Transactor,
	bookingRepo repository.BookingRepository,
	notifier NotificationService,
	clock Clock,
	picker Picker,
	log logger.ILogger,
) BookingService {
	return &bookingService{
		tx:          tx,
		bookingRepo: bookingRepo,
		notifier:    notifier,
		clock:       clock,
		picker:      picker,
		log:         log,
	}
}

func (s *bookingService) CreateBooking(ctx context.Context, userID uint, in CreateBookingInput) (*models.Booking, error) {
	if err := in.validate(); err != nil {
		return nil, err
	}

	passengers := 1
	if in.NumberOfPassengers != nil {
		passengers = *in.NumberOfPassengers
	}

	now := s.clock.Now()
	booking := &models.Booking{
		UserID:             userID,
		From:               strings.TrimSpace(in.From),
		To:                 strings.TrimSpace(in.To),
		Date:               in.Date,
		Time:               in.Time,
		NumberOfPassengers: passengers,
		PhoneNumber:        strings.TrimSpace(in.PhoneNumber),
		Status:             models.StatusPending,
		Price:              calculatePrice(passengers),
		CreatedAt:          now,
		UpdatedAt:          now,
	}
	assignVehicle(s.picker, booking)

	if err := s.bookingRepo.Create(ctx, nil, booking); err != nil {
		return nil, apperror.Internal(err)
	}

	s.notify(ctx, booking, BookingEventCreated)
	return booking, nil
}

func (s *bookingService) ListBookings(ctx context.Context, userID uint) ([]models.Booking, error) {
	bookings, err := s.bookingRepo.FindByUser(ctx, userID)
	if err != nil {
		return nil, apperror.Internal(err)
	}
	return bookings, nil
}

func (s *bookingService) GetBooking(ctx context.Context, userID, id uint) (*models.Booking, error) {
	booking, err := s.bookingRepo.FindByIDAndUser(ctx, nil, id, userID)
	if err != nil {
		return nil, bookingLookupError(err)
	}
	return booking, nil
}

func (s *bookingService) UpdateStatus(ctx context.Context, userID, id uint, status models.BookingStatus) (*models.Booking, error) {
	if !status.Valid() {
		return nil, ErrInvalidStatus
	}

	var (
		result *models.Booking
		from   models.BookingStatus
	)
	err := s.tx.Transaction(ctx, func(tx *gorm.DB) error {
		booking, err := s.bookingRepo.FindByIDAndUserForUpdate(ctx, tx, id, userID)
		if err != nil {
			return bookingLookupError(err)
		}
		if err := checkTransition(booking.Status, status); err != nil {
			return err
		}

		from = booking.Status
		if from == models.StatusPending && status == models.StatusConfirmed {
			assignVehicle(s.picker, booking)
		}
		booking.Status = status
		booking.UpdatedAt = s.clock.Now()

		if err := s.bookingRepo.SaveTransition(ctx, tx, booking); err != nil {
			return err
		}
		result = booking
		return nil
	})
	if err != nil {
		return nil, apperror.Internal(err)
	}

	if from != result.Status {
		switch result.Status {
		case models.StatusConfirmed:
			s.notify(ctx, result, BookingEventConfirmed)
		case models.StatusCancelled:
			s.notify(ctx, result, BookingEventCancelled)
		}
	}
	return result, nil
}

func (s *bookingService) CancelBooking(ctx context.Context, userID, id uint) (*models.Booking, error) {
	var result *models.Booking

	err := s.tx.Transaction(ctx, func(tx *gorm.DB) error {
		booking, err := s.bookingRepo.FindByIDAndUserForUpdate(ctx, tx, id, userID)
		if err != nil {
			return bookingLookupError(err)
		}

		switch booking.Status {
		case models.StatusCancelled:
			return ErrAlreadyCancelled
		case models.StatusCompleted:
			return ErrCompletedBooking
		}

		booking.Status = models.StatusCancelled
		booking.UpdatedAt = s.clock.Now()
		if err := s.bookingRepo.SaveTransition(ctx, tx, booking); err != nil {
			return err
		}
		result = booking
		return nil
	})
	if err != nil {
		return nil, apperror.Internal(err)
	}

	s.notify(ctx, result, BookingEventCancelled)
	return result, nil
}

func (s *bookingService) DeleteBooking(ctx context.Context, userID, id uint) error {
	err := s.tx.Transaction(ctx, func(tx *gorm.DB) error {
		booking, err := s.bookingRepo.FindByIDAndUserForUpdate(ctx, tx, id, userID)
		if err != nil {
			return bookingLookupError(err)
		}
		if booking.Status != models.StatusPending && booking.Status != models.StatusCancelled {
			return ErrDeleteNotAllowed
		}
		return s.bookingRepo.Delete(ctx, tx, booking.ID)
	})
	return apperror.Internal(err)
}

// AutoConfirmBatch confirms up to limit of the oldest pending bookings with a fresh
// vehicle assignment. Unlike UpdateStatus it does not notify the owners.
func (s *bookingService) AutoConfirmBatch(ctx context.Context, limit int) (int, error) {
	if limit <= 0 {
		limit = DefaultAutoConfirmLimit
	}

	var confirmed int
	err := s.tx.Transaction(ctx, func(tx *gorm.DB) error {
		pending, err := s.bookingRepo.FindPendingForUpdate(ctx, tx, limit)
		if err != nil {
			return err
		}

		now := s.clock.Now()
		for i := range pending {
			booking := &pending[i]
			assignVehicle(s.picker, booking)
			booking.Status = models.StatusConfirmed
			booking.UpdatedAt = now
			if err := s.bookingRepo.SaveTransition(ctx, tx, booking); err != nil {
				return err
			}
		}
		confirmed = len(pending)
		return nil
	})
	if err != nil {
		return 0, apperror.Internal(err)
	}

	s.log.Info("auto-confirmed pending bookings", logger.Int("count", confirmed), logger.Int("limit", limit))
	return confirmed, nil
}

func (s *bookingService) notify(ctx context.Context, booking *models.Booking, event BookingEvent) {
	res := s.notifier.EmitForBookingEvent(ctx, booking, event)
	if res.Err != nil {
		s.log.Warning("booking notification not delivered",
			logger.Uint("booking_id", booking.ID),
			logger.String("event", string(event)),
			logger.Error(res.Err),
		)
	}
}

// checkTransition enforces the lifecycle: completed and cancelled are terminal,
// confirmed never returns to pending. Self transitions are always allowed.
func checkTransition(from, to models.BookingStatus) error {
	if from == to {
		return nil
	}
	if from.Terminal() {
		if from == models.StatusCancelled {
			return ErrCancelledBooking
		}
		return ErrCompletedBooking
	}
	if from == models.StatusConfirmed && to == models.StatusPending {
		return ErrRevertConfirmed
	}
	return nil
}

func bookingLookupError(err error) error {
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return ErrBookingNotFound
	}
	return apperror.Internal(err)
}

func (in CreateBookingInput) validate() error {
	required := []struct {
		name  string
		value string
	}{
		{"from", in.From},
		{"to", in.To},
		{"date", in.Date},
		{"time", in.Time},
		{"phoneNumber", in.PhoneNumber},
	}
	for _, f := range required {
		if strings.TrimSpace(f.value) == "" {
			return apperror.Validation(f.name + " is required")
		}
	}

	if _, err := time.Parse(models.DateLayout, in.Date); err != nil {
		return apperror.Validation("date must be formatted as YYYY-MM-DD")
	}
	if !validTimeOfDay(in.Time) {
		return apperror.Validation("time must be formatted as HH:MM")
	}
	if in.NumberOfPassengers != nil && *in.NumberOfPassengers < 1 {
		return apperror.Validation("numberOfPassengers must be a positive integer")
	}
	return nil
}

func validTimeOfDay(s string) bool {
	if _, err := time.Parse(models.TimeLayout, s); err == nil {
		return true
	}
	_, err := time.Parse(models.TimeLayout+":05", s)
	return err == nil
}
