package service

import (
	"context"
	"math/rand/v2"
	"time"
)

// Clock abstracts wall-clock time so transitions and reminders can be tested.
type Clock interface {
	Now() time.Time
}

type ClockFunc func() time.Time

func (f ClockFunc) Now() time.Time { return f() }

var SystemClock Clock = ClockFunc(time.Now)

// Picker returns an index in [0, n).
type Picker interface {
	Pick(n int) int
}

type PickerFunc func(n int) int

func (f PickerFunc) Pick(n int) int { return f(n) }

var RandomPicker Picker = PickerFunc(rand.IntN)

// EventPublisher delivers best-effort messages to the broker.
type EventPublisher interface {
	Publish(ctx context.Context, routingKey string, payload any) error
}

// Locker guards work that must not run on two replicas at once.
type Locker interface {
	TryLock(ctx context.Context, key string, ttl time.Duration) (bool, error)
}

const RoutingKeyNotificationCreated = "notification.created"
