package consumer

import (
	"context"
	"encoding/json"

	"github.com/Eursukkul/bus-booking/internal/dto"
	"github.com/Eursukkul/bus-booking/internal/service"
	"github.com/Eursukkul/bus-booking/pkg/logger"
	amqp "github.com/rabbitmq/amqp091-go"
)

const (
	RoutingKeyAutoConfirm = "maintenance.auto_confirm"
	RoutingKeyReminders   = "maintenance.reminders"
)

// MaintenanceConsumer runs batch jobs requested over the broker.
type MaintenanceConsumer struct {
	bookings     service.BookingService
	reminders    service.ReminderService
	defaultLimit int
	log          logger.ILogger
}

func NewMaintenanceConsumer(bookings service.BookingService, reminders service.ReminderService, defaultLimit int, log logger.ILogger) *MaintenanceConsumer {
	return &MaintenanceConsumer{bookings: bookings, reminders: reminders, defaultLimit: defaultLimit, log: log}
}

// Start handles deliveries until msgs is closed. The returned channel is closed
// once the last delivery has been settled.
func (mc *MaintenanceConsumer) Start(ctx context.Context, msgs <-chan amqp.Delivery) <-chan struct{} {
	done := make(chan struct{})
	go func() {
		defer close(done)
		for msg := range msgs {
			mc.handleMessage(ctx, msg)
		}
		mc.log.Info("maintenance consumer stopped: delivery channel closed")
	}()
	return done
}

func (mc *MaintenanceConsumer) handleMessage(ctx context.Context, msg amqp.Delivery) {
	switch msg.RoutingKey {
	case RoutingKeyAutoConfirm:
		req := dto.MaintenanceRequest{Limit: mc.defaultLimit}
		if len(msg.Body) > 0 {
			if err := json.Unmarshal(msg.Body, &req); err != nil {
				mc.log.Warning("dropping malformed auto-confirm request", logger.Error(err))
				_ = msg.Nack(false, false)
				return
			}
		}

		confirmed, err := mc.bookings.AutoConfirmBatch(ctx, req.Limit)
		if err != nil {
			mc.log.Error("auto-confirm failed, requeueing", logger.Error(err))
			_ = msg.Nack(false, true)
			return
		}
		mc.log.Info("auto-confirm request handled", logger.Int("confirmed", confirmed))

	case RoutingKeyReminders:
		report, err := mc.reminders.GenerateReminders(ctx)
		if err != nil {
			mc.log.Error("reminder run failed, requeueing", logger.Error(err))
			_ = msg.Nack(false, true)
			return
		}
		mc.log.Info("reminder request handled", logger.Int("created", report.Created))

	default:
		mc.log.Warning("dropping message with unknown routing key", logger.String("routing_key", msg.RoutingKey))
	}

	_ = msg.Ack(false)
}
