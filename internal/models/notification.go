package models

import (
	"time"

	"gorm.io/datatypes"
)

type NotificationType string

const (
	NotificationBookingCreated   NotificationType = "booking_created"
	NotificationBookingConfirmed NotificationType = "booking_confirmed"
	NotificationBookingCancelled NotificationType = "booking_cancelled"
	NotificationJourneyReminder  NotificationType = "journey_reminder"
	NotificationJourneyStarted   NotificationType = "journey_started"
	NotificationJourneyCompleted NotificationType = "journey_completed"
	NotificationSystemAlert      NotificationType = "system_alert"
)

type Priority string

const (
	PriorityLow    Priority = "low"
	PriorityMedium Priority = "medium"
	PriorityHigh   Priority = "high"
	PriorityUrgent Priority = "urgent"
)

// Notification.BookingID is a lookup-only link: no foreign key, the booking may be
// deleted while the notification survives.
type Notification struct {
	ID           uint             `gorm:"primaryKey" json:"id"`
	UserID       uint             `gorm:"not null;index" json:"userId"`
	BookingID    *uint            `gorm:"index" json:"bookingId,omitempty"`
	Type         NotificationType `gorm:"type:varchar(32);not null;default:'system_alert'" json:"type"`
	Title        string           `gorm:"not null" json:"title"`
	Message      string           `gorm:"type:text;not null" json:"message"`
	IsRead       bool             `gorm:"not null;default:false;index" json:"isRead"`
	Priority     Priority         `gorm:"type:varchar(10);not null;default:'medium'" json:"priority"`
	ScheduledFor *time.Time       `json:"scheduledFor,omitempty"`
	ActionURL    *string          `json:"actionUrl,omitempty"`
	Metadata     datatypes.JSON   `json:"metadata,omitempty"`
	CreatedAt    time.Time        `json:"createdAt"`
	UpdatedAt    time.Time        `json:"updatedAt"`
}
