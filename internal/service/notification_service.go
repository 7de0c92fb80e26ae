package service

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/Eursukkul/bus-booking/internal/apperror"
	"github.com/Eursukkul/bus-booking/internal/models"
	"github.com/Eursukkul/bus-booking/internal/repository"
	"github.com/Eursukkul/bus-booking/pkg/logger"
	"gorm.io/datatypes"
	"gorm.io/gorm"
)

var ErrNotificationNotFound = apperror.NotFound("notification not found")

type BookingEvent string

const (
	BookingEventCreated   BookingEvent = "created"
	BookingEventConfirmed BookingEvent = "confirmed"
	BookingEventCancelled BookingEvent = "cancelled"
)

type EmitInput struct {
	UserID       uint
	Type         models.NotificationType
	Title        string
	Message      string
	BookingID    *uint
	Priority     models.Priority
	ScheduledFor *time.Time
	ActionURL    *string
	Metadata     map[string]any
}

// EmitResult is the outcome of a best-effort emission. A failed emission carries Err
// and must never fail the operation that triggered it.
type EmitResult struct {
	Notification *models.Notification
	Skipped      bool
	Err          error
}

type BookingSummary struct {
	ID     uint
	From   string
	To     string
	Date   string
	Time   string
	Status models.BookingStatus
}

type NotificationView struct {
	models.Notification
	Booking *BookingSummary
}

type NotificationService interface {
	Emit(ctx context.Context, in EmitInput) EmitResult
	EmitForBookingEvent(ctx context.Context, booking *models.Booking, event BookingEvent) EmitResult
	ListNotifications(ctx context.Context, userID uint) ([]NotificationView, error)
	MarkRead(ctx context.Context, userID, id uint) (*models.Notification, error)
	MarkAllRead(ctx context.Context, userID uint) (int64, error)
	DeleteNotification(ctx context.Context, userID, id uint) error
	UnreadCount(ctx context.Context, userID uint) (int64, error)
}

type notificationService struct {
	notifRepo   repository.NotificationRepository
	bookingRepo repository.BookingRepository
	userRepo    repository.UserRepository
	publisher   EventPublisher
	log         logger.ILogger
}

// NewNotificationService wires the emitter. A nil publisher skips broker delivery.
func NewNotificationService(
	notifRepo repository.NotificationRepository,
	bookingRepo repository.BookingRepository,
	userRepo repository.UserRepository,
	publisher EventPublisher,
	log logger.ILogger,
) NotificationService {
	return &notificationService{
		notifRepo:   notifRepo,
		bookingRepo: bookingRepo,
		userRepo:    userRepo,
		publisher:   publisher,
		log:         log,
	}
}

func (s *notificationService) Emit(ctx context.Context, in EmitInput) EmitResult {
	n := &models.Notification{
		UserID:       in.UserID,
		BookingID:    in.BookingID,
		Type:         in.Type,
		Title:        in.Title,
		Message:      in.Message,
		Priority:     in.Priority,
		ScheduledFor: in.ScheduledFor,
		ActionURL:    in.ActionURL,
	}
	if n.Type == "" {
		n.Type = models.NotificationSystemAlert
	}
	if n.Priority == "" {
		n.Priority = models.PriorityMedium
	}
	if in.Metadata != nil {
		raw, err := json.Marshal(in.Metadata)
		if err != nil {
			return EmitResult{Err: fmt.Errorf("encode metadata: %w", err)}
		}
		n.Metadata = datatypes.JSON(raw)
	}

	if err := s.notifRepo.Create(ctx, nil, n); err != nil {
		return EmitResult{Err: apperror.Internal(err)}
	}

	publishNotification(ctx, s.publisher, s.log, n)
	return EmitResult{Notification: n}
}

func (s *notificationService) EmitForBookingEvent(ctx context.Context, booking *models.Booking, event BookingEvent) EmitResult {
	if _, err := s.userRepo.FindByID(ctx, booking.UserID); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return EmitResult{Skipped: true}
		}
		return EmitResult{Err: apperror.Internal(err)}
	}

	in, ok := bookingNotification(booking, event)
	if !ok {
		return EmitResult{Skipped: true}
	}
	return s.Emit(ctx, in)
}

func (s *notificationService) ListNotifications(ctx context.Context, userID uint) ([]NotificationView, error) {
	notifications, err := s.notifRepo.FindByUser(ctx, userID)
	if err != nil {
		return nil, apperror.Internal(err)
	}

	var ids []uint
	seen := make(map[uint]bool)
	for _, n := range notifications {
		if n.BookingID != nil && !seen[*n.BookingID] {
			seen[*n.BookingID] = true
			ids = append(ids, *n.BookingID)
		}
	}

	bookings, err := s.bookingRepo.FindByIDs(ctx, ids)
	if err != nil {
		return nil, apperror.Internal(err)
	}
	summaries := make(map[uint]*BookingSummary, len(bookings))
	for _, b := range bookings {
		summaries[b.ID] = &BookingSummary{
			ID:     b.ID,
			From:   b.From,
			To:     b.To,
			Date:   b.Date,
			Time:   b.Time,
			Status: b.Status,
		}
	}

	views := make([]NotificationView, len(notifications))
	for i, n := range notifications {
		views[i] = NotificationView{Notification: n}
		if n.BookingID != nil {
			views[i].Booking = summaries[*n.BookingID]
		}
	}
	return views, nil
}

func (s *notificationService) MarkRead(ctx context.Context, userID, id uint) (*models.Notification, error) {
	n, err := s.findOwned(ctx, userID, id)
	if err != nil {
		return nil, err
	}
	if err := s.notifRepo.MarkRead(ctx, n.ID); err != nil {
		return nil, apperror.Internal(err)
	}
	n.IsRead = true
	return n, nil
}

func (s *notificationService) MarkAllRead(ctx context.Context, userID uint) (int64, error) {
	updated, err := s.notifRepo.MarkAllRead(ctx, userID)
	if err != nil {
		return 0, apperror.Internal(err)
	}
	return updated, nil
}

func (s *notificationService) DeleteNotification(ctx context.Context, userID, id uint) error {
	n, err := s.findOwned(ctx, userID, id)
	if err != nil {
		return err
	}
	return apperror.Internal(s.notifRepo.Delete(ctx, n.ID))
}

func (s *notificationService) UnreadCount(ctx context.Context, userID uint) (int64, error) {
	count, err := s.notifRepo.CountUnread(ctx, userID)
	if err != nil {
		return 0, apperror.Internal(err)
	}
	return count, nil
}

func (s *notificationService) findOwned(ctx context.Context, userID, id uint) (*models.Notification, error) {
	n, err := s.notifRepo.FindByIDAndUser(ctx, id, userID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrNotificationNotFound
		}
		return nil, apperror.Internal(err)
	}
	return n, nil
}

func bookingNotification(b *models.Booking, event BookingEvent) (EmitInput, bool) {
	bookingID := b.ID
	in := EmitInput{
		UserID:    b.UserID,
		BookingID: &bookingID,
		Priority:  models.PriorityMedium,
		ActionURL: bookingActionURL(b.ID),
		Metadata: map[string]any{
			"bookingId": b.ID,
			"status":    b.Status,
		},
	}

	switch event {
	case BookingEventCreated:
		in.Type = models.NotificationBookingCreated
		in.Title = "Booking Created"
		in.Message = fmt.Sprintf("Your booking from %s to %s on %s at %s has been created successfully.",
			b.From, b.To, b.Date, b.Time)
	case BookingEventConfirmed:
		in.Type = models.NotificationBookingConfirmed
		in.Title = "Bus Assigned"
		in.Message = fmt.Sprintf("Your booking has been confirmed! Bus %s with driver %s will pick you up from %s.",
			b.BusNumber, b.DriverName, b.From)
		in.Priority = models.PriorityHigh
	case BookingEventCancelled:
		in.Type = models.NotificationBookingCancelled
		in.Title = "Booking Cancelled"
		in.Message = fmt.Sprintf("Your booking from %s to %s has been cancelled.", b.From, b.To)
	default:
		return EmitInput{}, false
	}
	return in, true
}

func bookingActionURL(id uint) *string {
	url := fmt.Sprintf("/bookings/%d", id)
	return &url
}

func publishNotification(ctx context.Context, publisher EventPublisher, log logger.ILogger, n *models.Notification) {
	if publisher == nil {
		return
	}
	if err := publisher.Publish(ctx, RoutingKeyNotificationCreated, n); err != nil {
		log.Warning("publish notification failed", logger.Uint("notification_id", n.ID), logger.Error(err))
	}
}
