package models

import "time"

type BookingStatus string

const (
	StatusPending   BookingStatus = "pending"
	StatusConfirmed BookingStatus = "confirmed"
	StatusCompleted BookingStatus = "completed"
	StatusCancelled BookingStatus = "cancelled"
)

func (s BookingStatus) Valid() bool {
	switch s {
	case StatusPending, StatusConfirmed, StatusCompleted, StatusCancelled:
		return true
	}
	return false
}

// Terminal statuses accept no transition other than to themselves.
func (s BookingStatus) Terminal() bool {
	return s == StatusCompleted || s == StatusCancelled
}

const (
	DateLayout = "2006-01-02"
	TimeLayout = "15:04"
)

type Booking struct {
	ID                 uint          `gorm:"primaryKey" json:"id"`
	UserID             uint          `gorm:"not null;index" json:"userId"`
	From               string        `gorm:"column:origin;not null" json:"from"`
	To                 string        `gorm:"column:destination;not null" json:"to"`
	Date               string        `gorm:"type:varchar(10);not null;index" json:"date"`
	Time               string        `gorm:"type:varchar(8);not null" json:"time"`
	NumberOfPassengers int           `gorm:"not null;default:1" json:"numberOfPassengers"`
	PhoneNumber        string        `gorm:"not null" json:"phoneNumber"`
	Status             BookingStatus `gorm:"type:varchar(20);not null;default:'pending';index" json:"status"`
	BusNumber          string        `json:"busNumber"`
	DriverName         string        `json:"driverName"`
	Price              float64       `gorm:"type:decimal(10,2);not null" json:"price"`
	CreatedAt          time.Time     `json:"createdAt"`
	UpdatedAt          time.Time     `json:"updatedAt"`
}

// DepartureAt combines Date and Time in loc. Time may carry seconds.
func (b *Booking) DepartureAt(loc *time.Location) (time.Time, error) {
	layout := DateLayout + " " + TimeLayout
	if len(b.Time) == len("15:04:05") {
		layout += ":05"
	}
	return time.ParseInLocation(layout, b.Date+" "+b.Time, loc)
}
