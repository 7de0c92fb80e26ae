package handler

import (
	"net/http"

	"github.com/Eursukkul/bus-booking/internal/dto"
	"github.com/Eursukkul/bus-booking/internal/middleware"
	"github.com/Eursukkul/bus-booking/internal/models"
	"github.com/Eursukkul/bus-booking/internal/service"
	"github.com/labstack/echo/v4"
)

type BookingHandler struct {
	svc service.BookingService
}

func NewBookingHandler(svc service.BookingService) *BookingHandler {
	return &BookingHandler{svc: svc}
}

func (h *BookingHandler) RegisterRoutes(g *echo.Group) {
	g.POST("", h.CreateBooking)
	g.GET("", h.ListBookings)
	g.GET("/:id", h.GetBooking)
	g.PUT("/:id/status", h.UpdateStatus)
	g.PUT("/:id/cancel", h.CancelBooking)
	g.DELETE("/:id", h.DeleteBooking)
}

func (h *BookingHandler) CreateBooking(c echo.Context) error {
	userID, err := middleware.UserID(c)
	if err != nil {
		return httpError(err)
	}

	var req dto.CreateBookingRequest
	if err := bindAndValidate(c, &req); err != nil {
		return err
	}

	booking, err := h.svc.CreateBooking(c.Request().Context(), userID, service.CreateBookingInput{
		From:               req.From,
		To:                 req.To,
		Date:               req.Date,
		Time:               req.Time,
		NumberOfPassengers: req.NumberOfPassengers,
		PhoneNumber:        req.PhoneNumber,
	})
	if err != nil {
		return httpError(err)
	}

	return c.JSON(http.StatusCreated, dto.ToBookingResponse(booking))
}

func (h *BookingHandler) ListBookings(c echo.Context) error {
	userID, err := middleware.UserID(c)
	if err != nil {
		return httpError(err)
	}

	bookings, err := h.svc.ListBookings(c.Request().Context(), userID)
	if err != nil {
		return httpError(err)
	}

	return c.JSON(http.StatusOK, dto.ToBookingResponses(bookings))
}

func (h *BookingHandler) GetBooking(c echo.Context) error {
	userID, err := middleware.UserID(c)
	if err != nil {
		return httpError(err)
	}
	id, err := parseID(c, "booking")
	if err != nil {
		return err
	}

	booking, err := h.svc.GetBooking(c.Request().Context(), userID, id)
	if err != nil {
		return httpError(err)
	}

	return c.JSON(http.StatusOK, dto.ToBookingResponse(booking))
}

func (h *BookingHandler) UpdateStatus(c echo.Context) error {
	userID, err := middleware.UserID(c)
	if err != nil {
		return httpError(err)
	}
	id, err := parseID(c, "booking")
	if err != nil {
		return err
	}

	var req dto.UpdateStatusRequest
	if err := bindAndValidate(c, &req); err != nil {
		return err
	}

	booking, err := h.svc.UpdateStatus(c.Request().Context(), userID, id, models.BookingStatus(req.Status))
	if err != nil {
		return httpError(err)
	}

	return c.JSON(http.StatusOK, dto.ToBookingResponse(booking))
}

func (h *BookingHandler) CancelBooking(c echo.Context) error {
	userID, err := middleware.UserID(c)
	if err != nil {
		return httpError(err)
	}
	id, err := parseID(c, "booking")
	if err != nil {
		return err
	}

	booking, err := h.svc.CancelBooking(c.Request().Context(), userID, id)
	if err != nil {
		return httpError(err)
	}

	return c.JSON(http.StatusOK, dto.ToBookingResponse(booking))
}

func (h *BookingHandler) DeleteBooking(c echo.Context) error {
	userID, err := middleware.UserID(c)
	if err != nil {
		return httpError(err)
	}
	id, err := parseID(c, "booking")
	if err != nil {
		return err
	}

	if err := h.svc.DeleteBooking(c.Request().Context(), userID, id); err != nil {
		return httpError(err)
	}

	return c.JSON(http.StatusOK, dto.MessageResponse{Message: "booking deleted"})
}
