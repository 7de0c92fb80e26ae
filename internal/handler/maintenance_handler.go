package handler

import (
	"net/http"
	"strconv"

	"github.com/Eursukkul/bus-booking/internal/dto"
	"github.com/Eursukkul/bus-booking/internal/service"
	"github.com/labstack/echo/v4"
)

// MaintenanceHandler exposes the batch jobs that are otherwise driven by the
// scheduler and the maintenance queue.
type MaintenanceHandler struct {
	bookings     service.BookingService
	reminders    service.ReminderService
	defaultLimit int
}

func NewMaintenanceHandler(bookings service.BookingService, reminders service.ReminderService, defaultLimit int) *MaintenanceHandler {
	return &MaintenanceHandler{bookings: bookings, reminders: reminders, defaultLimit: defaultLimit}
}

func (h *MaintenanceHandler) RegisterRoutes(g *echo.Group) {
	g.POST("/auto-confirm", h.AutoConfirm)
	g.POST("/reminders", h.GenerateReminders)
}

func (h *MaintenanceHandler) AutoConfirm(c echo.Context) error {
	limit := h.defaultLimit
	if raw := c.QueryParam("limit"); raw != "" {
		n, err := strconv.Atoi(raw)
		if err != nil {
			return echo.NewHTTPError(http.StatusBadRequest, "limit must be an integer")
		}
		limit = n
	}

	confirmed, err := h.bookings.AutoConfirmBatch(c.Request().Context(), limit)
	if err != nil {
		return httpError(err)
	}

	return c.JSON(http.StatusOK, dto.AutoConfirmResponse{Confirmed: confirmed})
}

func (h *MaintenanceHandler) GenerateReminders(c echo.Context) error {
	report, err := h.reminders.GenerateReminders(c.Request().Context())
	if err != nil {
		return httpError(err)
	}

	return c.JSON(http.StatusOK, report)
}
