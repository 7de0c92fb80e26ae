package service

import (
	"context"
	"sort"
	"sync"
	"time"

	"github.com/Eursukkul/bus-booking/internal/models"
	"gorm.io/gorm"
)

// --- Transactor ---

type fakeTx struct {
	err   error
	calls int
}

func (f *fakeTx) Transaction(ctx context.Context, fn func(tx *gorm.DB) error) error {
	f.calls++
	if f.err != nil {
		return f.err
	}
	return fn(nil)
}

// --- BookingRepository ---

type fakeBookingRepo struct {
	mu       sync.Mutex
	nextID   uint
	bookings map[uint]models.Booking

	createErr error
	saveErr   error
	findErr   error
}

func newFakeBookingRepo() *fakeBookingRepo {
	return &fakeBookingRepo{bookings: make(map[uint]models.Booking)}
}

func (r *fakeBookingRepo) seed(b models.Booking) *models.Booking {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.nextID++
	b.ID = r.nextID
	if b.CreatedAt.IsZero() {
		b.CreatedAt = time.Date(2024, 1, 1, 0, 0, int(b.ID), 0, time.UTC)
	}
	r.bookings[b.ID] = b
	return &b
}

func (r *fakeBookingRepo) get(id uint) models.Booking {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.bookings[id]
}

func (r *fakeBookingRepo) Create(ctx context.Context, tx *gorm.DB, booking *models.Booking) error {
	if r.createErr != nil {
		return r.createErr
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	r.nextID++
	booking.ID = r.nextID
	r.bookings[booking.ID] = *booking
	return nil
}

func (r *fakeBookingRepo) FindByIDAndUser(ctx context.Context, tx *gorm.DB, id, userID uint) (*models.Booking, error) {
	if r.findErr != nil {
		return nil, r.findErr
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	b, ok := r.bookings[id]
	if !ok || b.UserID != userID {
		return nil, gorm.ErrRecordNotFound
	}
	return &b, nil
}

func (r *fakeBookingRepo) FindByIDAndUserForUpdate(ctx context.Context, tx *gorm.DB, id, userID uint) (*models.Booking, error) {
	return r.FindByIDAndUser(ctx, tx, id, userID)
}

func (r *fakeBookingRepo) FindByUser(ctx context.Context, userID uint) ([]models.Booking, error) {
	if r.findErr != nil {
		return nil, r.findErr
	}
	out := r.filter(func(b models.Booking) bool { return b.UserID == userID })
	sort.Slice(out, func(i, j int) bool {
		if out[i].CreatedAt.Equal(out[j].CreatedAt) {
			return out[i].ID > out[j].ID
		}
		return out[i].CreatedAt.After(out[j].CreatedAt)
	})
	return out, nil
}

func (r *fakeBookingRepo) FindByIDs(ctx context.Context, ids []uint) ([]models.Booking, error) {
	want := make(map[uint]bool, len(ids))
	for _, id := range ids {
		want[id] = true
	}
	return r.filter(func(b models.Booking) bool { return want[b.ID] }), nil
}

func (r *fakeBookingRepo) FindActiveByDate(ctx context.Context, date string) ([]models.Booking, error) {
	if r.findErr != nil {
		return nil, r.findErr
	}
	return r.filter(func(b models.Booking) bool {
		return b.Date == date && (b.Status == models.StatusPending || b.Status == models.StatusConfirmed)
	}), nil
}

func (r *fakeBookingRepo) FindPendingForUpdate(ctx context.Context, tx *gorm.DB, limit int) ([]models.Booking, error) {
	out := r.filter(func(b models.Booking) bool { return b.Status == models.StatusPending })
	if len(out) > limit {
		out = out[:limit]
	}
	return out, nil
}

func (r *fakeBookingRepo) SaveTransition(ctx context.Context, tx *gorm.DB, booking *models.Booking) error {
	if r.saveErr != nil {
		return r.saveErr
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	stored := r.bookings[booking.ID]
	stored.Status = booking.Status
	stored.BusNumber = booking.BusNumber
	stored.DriverName = booking.DriverName
	stored.UpdatedAt = booking.UpdatedAt
	r.bookings[booking.ID] = stored
	return nil
}

func (r *fakeBookingRepo) Delete(ctx context.Context, tx *gorm.DB, id uint) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	delete(r.bookings, id)
	return nil
}

// filter returns matches ordered by id.
func (r *fakeBookingRepo) filter(keep func(models.Booking) bool) []models.Booking {
	r.mu.Lock()
	defer r.mu.Unlock()
	var out []models.Booking
	for _, b := range r.bookings {
		if keep(b) {
			out = append(out, b)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out
}

// --- NotificationRepository ---

type fakeNotificationRepo struct {
	mu            sync.Mutex
	nextID        uint
	notifications map[uint]models.Notification

	createErr error
	existsErr error
}

func newFakeNotificationRepo() *fakeNotificationRepo {
	return &fakeNotificationRepo{notifications: make(map[uint]models.Notification)}
}

func (r *fakeNotificationRepo) Create(ctx context.Context, tx *gorm.DB, n *models.Notification) error {
	if r.createErr != nil {
		return r.createErr
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	r.nextID++
	n.ID = r.nextID
	if n.CreatedAt.IsZero() {
		n.CreatedAt = time.Date(2024, 1, 1, 0, 0, int(n.ID), 0, time.UTC)
	}
	r.notifications[n.ID] = *n
	return nil
}

func (r *fakeNotificationRepo) FindByUser(ctx context.Context, userID uint) ([]models.Notification, error) {
	out := r.filter(func(n models.Notification) bool { return n.UserID == userID })
	sort.Slice(out, func(i, j int) bool { return out[i].CreatedAt.After(out[j].CreatedAt) })
	return out, nil
}

func (r *fakeNotificationRepo) FindByIDAndUser(ctx context.Context, id, userID uint) (*models.Notification, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	n, ok := r.notifications[id]
	if !ok || n.UserID != userID {
		return nil, gorm.ErrRecordNotFound
	}
	return &n, nil
}

func (r *fakeNotificationRepo) MarkRead(ctx context.Context, id uint) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	n := r.notifications[id]
	n.IsRead = true
	r.notifications[id] = n
	return nil
}

func (r *fakeNotificationRepo) MarkAllRead(ctx context.Context, userID uint) (int64, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var updated int64
	for id, n := range r.notifications {
		if n.UserID == userID && !n.IsRead {
			n.IsRead = true
			r.notifications[id] = n
			updated++
		}
	}
	return updated, nil
}

func (r *fakeNotificationRepo) Delete(ctx context.Context, id uint) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	delete(r.notifications, id)
	return nil
}

func (r *fakeNotificationRepo) CountUnread(ctx context.Context, userID uint) (int64, error) {
	return int64(len(r.filter(func(n models.Notification) bool { return n.UserID == userID && !n.IsRead }))), nil
}

func (r *fakeNotificationRepo) ReminderExists(ctx context.Context, tx *gorm.DB, userID, bookingID uint) (bool, error) {
	if r.existsErr != nil {
		return false, r.existsErr
	}
	found := r.filter(func(n models.Notification) bool {
		return n.UserID == userID && n.BookingID != nil && *n.BookingID == bookingID &&
			n.Type == models.NotificationJourneyReminder
	})
	return len(found) > 0, nil
}

func (r *fakeNotificationRepo) filter(keep func(models.Notification) bool) []models.Notification {
	r.mu.Lock()
	defer r.mu.Unlock()
	var out []models.Notification
	for _, n := range r.notifications {
		if keep(n) {
			out = append(out, n)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out
}

func (r *fakeNotificationRepo) ofType(t models.NotificationType) []models.Notification {
	return r.filter(func(n models.Notification) bool { return n.Type == t })
}

// --- UserRepository ---

type fakeUserRepo struct {
	mu     sync.Mutex
	nextID uint
	users  map[uint]models.User

	findErr error
}

func newFakeUserRepo(ids ...uint) *fakeUserRepo {
	r := &fakeUserRepo{users: make(map[uint]models.User)}
	for _, id := range ids {
		r.users[id] = models.User{ID: id, FirstName: "Test", LastName: "User"}
		if id > r.nextID {
			r.nextID = id
		}
	}
	return r
}

func (r *fakeUserRepo) Create(ctx context.Context, user *models.User) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.nextID++
	user.ID = r.nextID
	r.users[user.ID] = *user
	return nil
}

func (r *fakeUserRepo) FindByID(ctx context.Context, id uint) (*models.User, error) {
	if r.findErr != nil {
		return nil, r.findErr
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	u, ok := r.users[id]
	if !ok {
		return nil, gorm.ErrRecordNotFound
	}
	return &u, nil
}

func (r *fakeUserRepo) FindByEmail(ctx context.Context, email string) (*models.User, error) {
	if r.findErr != nil {
		return nil, r.findErr
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, u := range r.users {
		if u.Email == email {
			return &u, nil
		}
	}
	return nil, gorm.ErrRecordNotFound
}

// --- EventPublisher ---

type publishedMessage struct {
	routingKey string
	payload    any
}

type fakePublisher struct {
	mu       sync.Mutex
	messages []publishedMessage
	err      error
}

func (p *fakePublisher) Publish(ctx context.Context, routingKey string, payload any) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.err != nil {
		return p.err
	}
	p.messages = append(p.messages, publishedMessage{routingKey: routingKey, payload: payload})
	return nil
}

// --- Locker ---

type fakeLocker struct {
	acquired bool
	err      error
	keys     []string
}

func (l *fakeLocker) TryLock(ctx context.Context, key string, ttl time.Duration) (bool, error) {
	l.keys = append(l.keys, key)
	return l.acquired, l.err
}

func fixedClock(t time.Time) Clock {
	return ClockFunc(func() time.Time { return t })
}

func firstPicker() Picker {
	return PickerFunc(func(n int) int { return 0 })
}
