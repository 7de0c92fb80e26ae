package dto

import (
	"encoding/json"
	"time"

	"github.com/Eursukkul/bus-booking/internal/models"
	"github.com/Eursukkul/bus-booking/internal/service"
)

type BookingResponse struct {
	ID                 uint                 `json:"id"`
	From               string               `json:"from"`
	To                 string               `json:"to"`
	Date               string               `json:"date"`
	Time               string               `json:"time"`
	NumberOfPassengers int                  `json:"numberOfPassengers"`
	PhoneNumber        string               `json:"phoneNumber"`
	Status             models.BookingStatus `json:"status"`
	BusNumber          string               `json:"busNumber"`
	DriverName         string               `json:"driverName"`
	Price              float64              `json:"price"`
	CreatedAt          time.Time            `json:"createdAt"`
	UpdatedAt          time.Time            `json:"updatedAt"`
}

type BookingSummaryResponse struct {
	ID     uint                 `json:"id"`
	From   string               `json:"from"`
	To     string               `json:"to"`
	Date   string               `json:"date"`
	Time   string               `json:"time"`
	Status models.BookingStatus `json:"status"`
}

type NotificationResponse struct {
	ID           uint                    `json:"id"`
	Type         models.NotificationType `json:"type"`
	Title        string                  `json:"title"`
	Message      string                  `json:"message"`
	IsRead       bool                    `json:"isRead"`
	Priority     models.Priority         `json:"priority"`
	ScheduledFor *time.Time              `json:"scheduledFor"`
	ActionURL    *string                 `json:"actionUrl"`
	Metadata     json.RawMessage         `json:"metadata"`
	Booking      *BookingSummaryResponse `json:"booking"`
	CreatedAt    time.Time               `json:"createdAt"`
}

type UnreadCountResponse struct {
	Count int64 `json:"count"`
}

type MarkAllReadResponse struct {
	Updated int64 `json:"updated"`
}

type AutoConfirmResponse struct {
	Confirmed int `json:"confirmed"`
}

type UserResponse struct {
	ID             uint   `json:"id"`
	FirstName      string `json:"firstName"`
	InitialNames   string `json:"initialNames,omitempty"`
	LastName       string `json:"lastName"`
	Email          string `json:"email"`
	ProfilePicture string `json:"profilePicture"`
}

type LoginResponse struct {
	Token string       `json:"token"`
	User  UserResponse `json:"user"`
}

type MessageResponse struct {
	Message string `json:"message"`
}

type ErrorResponse struct {
	Message string `json:"message"`
}

func ToBookingResponse(b *models.Booking) BookingResponse {
	return BookingResponse{
		ID:                 b.ID,
		From:               b.From,
		To:                 b.To,
		Date:               b.Date,
		Time:               b.Time,
		NumberOfPassengers: b.NumberOfPassengers,
		PhoneNumber:        b.PhoneNumber,
		Status:             b.Status,
		BusNumber:          b.BusNumber,
		DriverName:         b.DriverName,
		Price:              b.Price,
		CreatedAt:          b.CreatedAt,
		UpdatedAt:          b.UpdatedAt,
	}
}

func ToBookingResponses(bookings []models.Booking) []BookingResponse {
	resp := make([]BookingResponse, len(bookings))
	for i := range bookings {
		resp[i] = ToBookingResponse(&bookings[i])
	}
	return resp
}

func ToNotificationResponse(n *models.Notification, booking *service.BookingSummary) NotificationResponse {
	resp := NotificationResponse{
		ID:           n.ID,
		Type:         n.Type,
		Title:        n.Title,
		Message:      n.Message,
		IsRead:       n.IsRead,
		Priority:     n.Priority,
		ScheduledFor: n.ScheduledFor,
		ActionURL:    n.ActionURL,
		CreatedAt:    n.CreatedAt,
	}
	if len(n.Metadata) > 0 {
		resp.Metadata = json.RawMessage(n.Metadata)
	}
	if booking != nil {
		resp.Booking = &BookingSummaryResponse{
			ID:     booking.ID,
			From:   booking.From,
			To:     booking.To,
			Date:   booking.Date,
			Time:   booking.Time,
			Status: booking.Status,
		}
	}
	return resp
}

func ToNotificationResponses(views []service.NotificationView) []NotificationResponse {
	resp := make([]NotificationResponse, len(views))
	for i := range views {
		resp[i] = ToNotificationResponse(&views[i].Notification, views[i].Booking)
	}
	return resp
}

func ToUserResponse(u *models.User) UserResponse {
	return UserResponse{
		ID:             u.ID,
		FirstName:      u.FirstName,
		InitialNames:   u.InitialNames,
		LastName:       u.LastName,
		Email:          u.Email,
		ProfilePicture: u.ProfilePicture,
	}
}
