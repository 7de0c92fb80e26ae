package service

import (
	"context"
	"errors"
	"fmt"
	"math"
	"time"

	"github.com/Eursukkul/bus-booking/internal/models"
	"github.com/Eursukkul/bus-booking/internal/repository"
	"github.com/Eursukkul/bus-booking/pkg/logger"
	"gorm.io/gorm"
)

const (
	reminderLockKey = "reminders:run"

	reminderWindow = time.Hour
	urgentWindow   = 30 * time.Minute
)

var errReminderExists = errors.New("journey reminder already exists")

type ReminderReport struct {
	Scanned    int `json:"scanned"`
	Created    int `json:"created"`
	Duplicates int `json:"duplicates"`
	Failed     int `json:"failed"`
}

type ReminderService interface {
	GenerateReminders(ctx context.Context) (ReminderReport, error)
	RunScheduler(ctx context.Context, interval time.Duration)
}

type reminderService struct {
	tx          repository.Transactor
	bookingRepo repository.BookingRepository
	notifRepo   repository.NotificationRepository
	publisher   EventPublisher
	locker      Locker
	clock       Clock
	loc         *time.Location
	log         logger.ILogger
}

// NewReminderService builds the scheduler. publisher and locker are optional.
func NewReminderService(
	tx repository.Transactor,
	bookingRepo repository.BookingRepository,
	notifRepo repository.NotificationRepository,
	publisher EventPublisher,
	locker Locker,
	clock Clock,
	loc *time.Location,
	log logger.ILogger,
) ReminderService {
	if loc == nil {
		loc = time.Local
	}
	return &reminderService{
		tx:          tx,
		bookingRepo: bookingRepo,
		notifRepo:   notifRepo,
		publisher:   publisher,
		locker:      locker,
		clock:       clock,
		loc:         loc,
		log:         log,
	}
}

type reminderOutcome int

const (
	reminderNotDue reminderOutcome = iota
	reminderCreated
	reminderDuplicate
)

// GenerateReminders scans today's active bookings and creates at most one journey
// reminder per booking for departures within the next hour. A failing booking is
// logged and counted; the scan goes on.
func (s *reminderService) GenerateReminders(ctx context.Context) (ReminderReport, error) {
	var report ReminderReport

	now := s.clock.Now().In(s.loc)
	bookings, err := s.bookingRepo.FindActiveByDate(ctx, now.Format(models.DateLayout))
	if err != nil {
		return report, fmt.Errorf("load active bookings: %w", err)
	}

	for i := range bookings {
		booking := &bookings[i]
		report.Scanned++

		outcome, err := s.remind(ctx, booking, now)
		if err != nil {
			report.Failed++
			s.log.Error("journey reminder failed", logger.Uint("booking_id", booking.ID), logger.Error(err))
			continue
		}
		switch outcome {
		case reminderCreated:
			report.Created++
		case reminderDuplicate:
			report.Duplicates++
		}
	}

	s.log.Info("journey reminders generated",
		logger.Int("scanned", report.Scanned),
		logger.Int("created", report.Created),
		logger.Int("duplicates", report.Duplicates),
		logger.Int("failed", report.Failed),
	)
	return report, nil
}

func (s *reminderService) remind(ctx context.Context, booking *models.Booking, now time.Time) (reminderOutcome, error) {
	departure, err := booking.DepartureAt(s.loc)
	if err != nil {
		return reminderNotDue, fmt.Errorf("parse departure: %w", err)
	}

	until := departure.Sub(now)
	if until <= 0 || until > reminderWindow {
		return reminderNotDue, nil
	}

	n := journeyReminder(booking, until, departure)

	// The existence check and the insert share a transaction; the partial unique
	// index on journey reminders catches a concurrent scheduler run.
	err = s.tx.Transaction(ctx, func(tx *gorm.DB) error {
		exists, err := s.notifRepo.ReminderExists(ctx, tx, booking.UserID, booking.ID)
		if err != nil {
			return err
		}
		if exists {
			return errReminderExists
		}
		return s.notifRepo.Create(ctx, tx, n)
	})
	switch {
	case errors.Is(err, errReminderExists), errors.Is(err, gorm.ErrDuplicatedKey):
		return reminderDuplicate, nil
	case err != nil:
		return reminderNotDue, err
	}

	publishNotification(ctx, s.publisher, s.log, n)
	return reminderCreated, nil
}

func journeyReminder(b *models.Booking, until time.Duration, departure time.Time) *models.Notification {
	minutes := int(math.Round(until.Hours() * 60))
	bookingID := b.ID

	n := &models.Notification{
		UserID:       b.UserID,
		BookingID:    &bookingID,
		Type:         models.NotificationJourneyReminder,
		ScheduledFor: &departure,
		ActionURL:    bookingActionURL(b.ID),
	}
	if until <= urgentWindow {
		n.Priority = models.PriorityUrgent
		n.Title = "Your journey starts soon!"
		n.Message = fmt.Sprintf("Your bus from %s to %s departs in %d minutes. Please be ready!", b.From, b.To, minutes)
	} else {
		n.Priority = models.PriorityHigh
		n.Title = "Journey Reminder"
		n.Message = fmt.Sprintf("Your journey from %s to %s starts in %d minutes.", b.From, b.To, minutes)
	}
	return n
}

// RunScheduler generates reminders on every tick until ctx is cancelled.
func (s *reminderService) RunScheduler(ctx context.Context, interval time.Duration) {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	s.log.Info("reminder scheduler started", logger.Duration("interval", interval))
	for {
		select {
		case <-ctx.Done():
			s.log.Info("reminder scheduler stopped")
			return
		case <-ticker.C:
			s.tick(ctx, interval)
		}
	}
}

func (s *reminderService) tick(ctx context.Context, interval time.Duration) {
	if s.locker != nil {
		acquired, err := s.locker.TryLock(ctx, reminderLockKey, interval)
		switch {
		case err != nil:
			// the unique index still prevents duplicates, so run unlocked
			s.log.Warning("reminder lock unavailable", logger.Error(err))
		case !acquired:
			s.log.Debug("reminder run held by another instance")
			return
		}
	}

	if _, err := s.GenerateReminders(ctx); err != nil {
		s.log.Error("reminder run failed", logger.Error(err))
	}
}
