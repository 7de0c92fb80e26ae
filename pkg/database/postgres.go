package database

import (
	"fmt"
	"time"

	"github.com/Eursukkul/bus-booking/internal/models"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

// JourneyReminderIndex keeps at most one journey reminder per (user, booking).
const JourneyReminderIndex = `
	CREATE UNIQUE INDEX IF NOT EXISTS idx_notification_journey_reminder
	ON notifications (user_id, booking_id)
	WHERE type = 'journey_reminder'
`

func NewPostgresDB(dsn string) (*gorm.DB, error) {
	db, err := gorm.Open(postgres.Open(dsn), &gorm.Config{
		Logger:         logger.Default.LogMode(logger.Warn),
		TranslateError: true,
	})
	if err != nil {
		return nil, fmt.Errorf("connect database: %w", err)
	}

	sqlDB, err := db.DB()
	if err != nil {
		return nil, fmt.Errorf("get sql.DB: %w", err)
	}
	sqlDB.SetMaxOpenConns(25)
	sqlDB.SetMaxIdleConns(10)
	sqlDB.SetConnMaxLifetime(5 * time.Minute)
	sqlDB.SetConnMaxIdleTime(1 * time.Minute)

	if err := Migrate(db); err != nil {
		return nil, err
	}
	return db, nil
}

// Migrate creates or updates the schema. Safe to run on every start.
func Migrate(db *gorm.DB) error {
	if err := db.AutoMigrate(&models.User{}, &models.Booking{}, &models.Notification{}); err != nil {
		return fmt.Errorf("auto-migrate: %w", err)
	}
	if err := db.Exec(JourneyReminderIndex).Error; err != nil {
		return fmt.Errorf("create reminder index: %w", err)
	}
	return nil
}
