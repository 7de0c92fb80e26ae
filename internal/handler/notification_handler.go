package handler

import (
	"net/http"

	"github.com/Eursukkul/bus-booking/internal/dto"
	"github.com/Eursukkul/bus-booking/internal/middleware"
	"github.com/Eursukkul/bus-booking/internal/service"
	"github.com/labstack/echo/v4"
)

type NotificationHandler struct {
	svc service.NotificationService
}

func NewNotificationHandler(svc service.NotificationService) *NotificationHandler {
	return &NotificationHandler{svc: svc}
}

func (h *NotificationHandler) RegisterRoutes(g *echo.Group) {
	g.GET("", h.ListNotifications)
	g.GET("/unread-count", h.UnreadCount)
	g.PUT("/mark-all-read", h.MarkAllRead)
	g.PUT("/:id/read", h.MarkRead)
	g.DELETE("/:id", h.DeleteNotification)
}

func (h *NotificationHandler) ListNotifications(c echo.Context) error {
	userID, err := middleware.UserID(c)
	if err != nil {
		return httpError(err)
	}

	views, err := h.svc.ListNotifications(c.Request().Context(), userID)
	if err != nil {
		return httpError(err)
	}

	return c.JSON(http.StatusOK, dto.ToNotificationResponses(views))
}

func (h *NotificationHandler) UnreadCount(c echo.Context) error {
	userID, err := middleware.UserID(c)
	if err != nil {
		return httpError(err)
	}

	count, err := h.svc.UnreadCount(c.Request().Context(), userID)
	if err != nil {
		return httpError(err)
	}

	return c.JSON(http.StatusOK, dto.UnreadCountResponse{Count: count})
}

func (h *NotificationHandler) MarkRead(c echo.Context) error {
	userID, err := middleware.UserID(c)
	if err != nil {
		return httpError(err)
	}
	id, err := parseID(c, "notification")
	if err != nil {
		return err
	}

	n, err := h.svc.MarkRead(c.Request().Context(), userID, id)
	if err != nil {
		return httpError(err)
	}

	return c.JSON(http.StatusOK, dto.ToNotificationResponse(n, nil))
}

func (h *NotificationHandler) MarkAllRead(c echo.Context) error {
	userID, err := middleware.UserID(c)
	if err != nil {
		return httpError(err)
	}

	updated, err := h.svc.MarkAllRead(c.Request().Context(), userID)
	if err != nil {
		return httpError(err)
	}

	return c.JSON(http.StatusOK, dto.MarkAllReadResponse{Updated: updated})
}

func (h *NotificationHandler) DeleteNotification(c echo.Context) error {
	userID, err := middleware.UserID(c)
	if err != nil {
		return httpError(err)
	}
	id, err := parseID(c, "notification")
	if err != nil {
		return err
	}

	if err := h.svc.DeleteNotification(c.Request().Context(), userID, id); err != nil {
		return httpError(err)
	}

	return c.JSON(http.StatusOK, dto.MessageResponse{Message: "notification deleted"})
}
