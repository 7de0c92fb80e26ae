package handler

import (
	"context"
	"io"
	"net/http/httptest"
	"time"

	"github.com/Eursukkul/bus-booking/internal/middleware"
	"github.com/Eursukkul/bus-booking/internal/models"
	"github.com/Eursukkul/bus-booking/internal/service"
	"github.com/labstack/echo/v4"
)

// --- Mock BookingService ---

type mockBookingService struct {
	createFn      func(ctx context.Context, userID uint, in service.CreateBookingInput) (*models.Booking, error)
	listFn        func(ctx context.Context, userID uint) ([]models.Booking, error)
	getFn         func(ctx context.Context, userID, id uint) (*models.Booking, error)
	updateFn      func(ctx context.Context, userID, id uint, status models.BookingStatus) (*models.Booking, error)
	cancelFn      func(ctx context.Context, userID, id uint) (*models.Booking, error)
	deleteFn      func(ctx context.Context, userID, id uint) error
	autoConfirmFn func(ctx context.Context, limit int) (int, error)
}

func (m *mockBookingService) CreateBooking(ctx context.Context, userID uint, in service.CreateBookingInput) (*models.Booking, error) {
	return m.createFn(ctx, userID, in)
}
func (m *mockBookingService) ListBookings(ctx context.Context, userID uint) ([]models.Booking, error) {
	return m.listFn(ctx, userID)
}
func (m *mockBookingService) GetBooking(ctx context.Context, userID, id uint) (*models.Booking, error) {
	return m.getFn(ctx, userID, id)
}
func (m *mockBookingService) UpdateStatus(ctx context.Context, userID, id uint, status models.BookingStatus) (*models.Booking, error) {
	return m.updateFn(ctx, userID, id, status)
}
func (m *mockBookingService) CancelBooking(ctx context.Context, userID, id uint) (*models.Booking, error) {
	return m.cancelFn(ctx, userID, id)
}
func (m *mockBookingService) DeleteBooking(ctx context.Context, userID, id uint) error {
	return m.deleteFn(ctx, userID, id)
}
func (m *mockBookingService) AutoConfirmBatch(ctx context.Context, limit int) (int, error) {
	return m.autoConfirmFn(ctx, limit)
}

// --- Mock NotificationService ---

type mockNotificationService struct {
	listFn        func(ctx context.Context, userID uint) ([]service.NotificationView, error)
	markReadFn    func(ctx context.Context, userID, id uint) (*models.Notification, error)
	markAllReadFn func(ctx context.Context, userID uint) (int64, error)
	deleteFn      func(ctx context.Context, userID, id uint) error
	unreadFn      func(ctx context.Context, userID uint) (int64, error)
}

func (m *mockNotificationService) Emit(ctx context.Context, in service.EmitInput) service.EmitResult {
	return service.EmitResult{}
}
func (m *mockNotificationService) EmitForBookingEvent(ctx context.Context, b *models.Booking, event service.BookingEvent) service.EmitResult {
	return service.EmitResult{}
}
func (m *mockNotificationService) ListNotifications(ctx context.Context, userID uint) ([]service.NotificationView, error) {
	return m.listFn(ctx, userID)
}
func (m *mockNotificationService) MarkRead(ctx context.Context, userID, id uint) (*models.Notification, error) {
	return m.markReadFn(ctx, userID, id)
}
func (m *mockNotificationService) MarkAllRead(ctx context.Context, userID uint) (int64, error) {
	return m.markAllReadFn(ctx, userID)
}
func (m *mockNotificationService) DeleteNotification(ctx context.Context, userID, id uint) error {
	return m.deleteFn(ctx, userID, id)
}
func (m *mockNotificationService) UnreadCount(ctx context.Context, userID uint) (int64, error) {
	return m.unreadFn(ctx, userID)
}

// --- Mock UserService ---

type mockUserService struct {
	registerFn func(ctx context.Context, in service.RegisterInput) (*models.User, error)
	loginFn    func(ctx context.Context, email, password string) (string, *models.User, error)
}

func (m *mockUserService) Register(ctx context.Context, in service.RegisterInput) (*models.User, error) {
	return m.registerFn(ctx, in)
}
func (m *mockUserService) Login(ctx context.Context, email, password string) (string, *models.User, error) {
	return m.loginFn(ctx, email, password)
}

// --- Mock ReminderService ---

type mockReminderService struct {
	generateFn func(ctx context.Context) (service.ReminderReport, error)
}

func (m *mockReminderService) GenerateReminders(ctx context.Context) (service.ReminderReport, error) {
	return m.generateFn(ctx)
}
func (m *mockReminderService) RunScheduler(ctx context.Context, interval time.Duration) {}

// --- helpers ---

// newTestContext builds a context for userID (0 means anonymous) with the
// request validator registered.
func newTestContext(method, target string, body io.Reader, userID uint) (echo.Context, *httptest.ResponseRecorder) {
	e := echo.New()
	e.Validator = middleware.NewRequestValidator()
	req := httptest.NewRequest(method, target, body)
	if body != nil {
		req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationJSON)
	}
	rec := httptest.NewRecorder()
	c := e.NewContext(req, rec)
	if userID != 0 {
		middleware.SetUserID(c, userID)
	}
	return c, rec
}
