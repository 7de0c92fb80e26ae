package dto

type CreateBookingRequest struct {
	From               string `json:"from" validate:"required"`
	To                 string `json:"to" validate:"required"`
	Date               string `json:"date" validate:"required,datetime=2006-01-02"`
	Time               string `json:"time" validate:"required"`
	NumberOfPassengers *int   `json:"numberOfPassengers" validate:"omitempty,gte=1"`
	PhoneNumber        string `json:"phoneNumber" validate:"required"`
}

type UpdateStatusRequest struct {
	Status string `json:"status" validate:"required"`
}

type RegisterRequest struct {
	FirstName    string `json:"firstName" validate:"required"`
	InitialNames string `json:"initialNames"`
	LastName     string `json:"lastName" validate:"required"`
	Email        string `json:"email" validate:"required,email"`
	Password     string `json:"password" validate:"required,min=6"`
}

type LoginRequest struct {
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password" validate:"required"`
}

// MaintenanceRequest is the body of a maintenance.auto_confirm message.
type MaintenanceRequest struct {
	Limit int `json:"limit"`
}
