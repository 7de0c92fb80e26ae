package main

import (
	"context"
	"crypto/subtle"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/Eursukkul/bus-booking/config"
	"github.com/Eursukkul/bus-booking/internal/auth"
	"github.com/Eursukkul/bus-booking/internal/consumer"
	"github.com/Eursukkul/bus-booking/internal/handler"
	"github.com/Eursukkul/bus-booking/internal/middleware"
	"github.com/Eursukkul/bus-booking/internal/repository"
	"github.com/Eursukkul/bus-booking/internal/service"
	"github.com/Eursukkul/bus-booking/pkg/database"
	"github.com/Eursukkul/bus-booking/pkg/logger"
	"github.com/Eursukkul/bus-booking/pkg/rabbitmq"
	"github.com/Eursukkul/bus-booking/pkg/redislock"
	"github.com/google/uuid"
	"github.com/labstack/echo/v4"
	echoMw "github.com/labstack/echo/v4/middleware"
)

func main() {
	cfg := config.Load()
	log := logger.New(cfg.ServiceName, cfg.LoggerLevel)
	defer log.Sync()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	db, err := database.NewPostgresDB(cfg.DSN())
	if err != nil {
		log.Error("failed to open database", logger.Error(err))
		os.Exit(1)
	}

	// Optional infrastructure stays an untyped nil interface when disabled.
	var publisher service.EventPublisher
	var mqPublisher *rabbitmq.Publisher
	if cfg.RabbitURL != "" {
		mqPublisher, err = rabbitmq.NewPublisher(cfg.RabbitURL, log)
		if err != nil {
			log.Warning("rabbitmq unavailable, notifications are not published", logger.Error(err))
		} else {
			defer mqPublisher.Close()
			publisher = mqPublisher
		}
	}

	var locker service.Locker
	if cfg.RedisAddr != "" {
		client, err := redislock.NewClient(ctx, cfg.RedisAddr)
		if err != nil {
			log.Warning("redis unavailable, reminder runs are not coordinated", logger.Error(err))
		} else {
			defer client.Close()
			locker = redislock.New(client, cfg.ServiceName+":")
		}
	}

	// Repositories
	tx := repository.NewTransactor(db)
	bookingRepo := repository.NewBookingRepository(db)
	notifRepo := repository.NewNotificationRepository(db)
	userRepo := repository.NewUserRepository(db)

	// Services
	tokens := auth.NewTokenManager(cfg.JWTSecret, cfg.JWTTTL)
	notifSvc := service.NewNotificationService(notifRepo, bookingRepo, userRepo, publisher, log)
	bookingSvc := service.NewBookingService(tx, bookingRepo, notifSvc, service.SystemClock, service.RandomPicker, log)
	reminderSvc := service.NewReminderService(tx, bookingRepo, notifRepo, publisher, locker, service.SystemClock, cfg.Location(), log)
	userSvc := service.NewUserService(userRepo, tokens)

	// RabbitMQ consumer: maintenance requests
	var consumerDone <-chan struct{}
	if mqPublisher != nil {
		consumerDone = startMaintenanceConsumer(ctx, cfg, bookingSvc, reminderSvc, log)
	}

	go reminderSvc.RunScheduler(ctx, cfg.ReminderInterval)

	e := newServer(cfg, log, tokens, bookingSvc, notifSvc, reminderSvc, userSvc)

	go func() {
		log.Info("booking service starting", logger.String("port", cfg.ServerPort))
		if err := e.Start(":" + cfg.ServerPort); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Error("server stopped", logger.Error(err))
			stop()
		}
	}()

	<-ctx.Done()
	log.Info("shutting down")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := e.Shutdown(shutdownCtx); err != nil {
		log.Error("server shutdown", logger.Error(err))
	}
	if consumerDone != nil {
		select {
		case <-consumerDone:
		case <-shutdownCtx.Done():
		}
	}
}

// startMaintenanceConsumer returns nil when the queue cannot be consumed; the HTTP
// maintenance routes still work without it.
func startMaintenanceConsumer(
	ctx context.Context,
	cfg config.Config,
	bookingSvc service.BookingService,
	reminderSvc service.ReminderService,
	log logger.ILogger,
) <-chan struct{} {
	mqConsumer, err := rabbitmq.NewConsumer(cfg.RabbitURL, rabbitmq.MaintenanceQueue, rabbitmq.MaintenanceBinding, log)
	if err != nil {
		log.Warning("maintenance consumer disabled", logger.Error(err))
		return nil
	}

	msgs, err := mqConsumer.Consume()
	if err != nil {
		mqConsumer.Close()
		log.Warning("maintenance consumer disabled", logger.Error(err))
		return nil
	}

	// closing the channel on shutdown ends the delivery stream and so the consumer
	go func() {
		<-ctx.Done()
		mqConsumer.Close()
	}()
	return consumer.NewMaintenanceConsumer(bookingSvc, reminderSvc, cfg.AutoConfirmLimit, log).Start(ctx, msgs)
}

func newServer(
	cfg config.Config,
	log logger.ILogger,
	tokens *auth.TokenManager,
	bookingSvc service.BookingService,
	notifSvc service.NotificationService,
	reminderSvc service.ReminderService,
	userSvc service.UserService,
) *echo.Echo {
	e := echo.New()
	e.HideBanner = true
	e.HTTPErrorHandler = middleware.NewErrorHandler(log)
	e.Validator = middleware.NewRequestValidator()

	e.Use(echoMw.RequestIDWithConfig(echoMw.RequestIDConfig{Generator: uuid.NewString}))
	e.Use(echoMw.RequestLoggerWithConfig(echoMw.RequestLoggerConfig{
		LogStatus:    true,
		LogURI:       true,
		LogMethod:    true,
		LogLatency:   true,
		LogRequestID: true,
		LogValuesFunc: func(c echo.Context, v echoMw.RequestLoggerValues) error {
			log.Info("request",
				logger.String("id", v.RequestID),
				logger.String("method", v.Method),
				logger.String("uri", v.URI),
				logger.Int("status", v.Status),
				logger.Duration("latency", v.Latency),
			)
			return nil
		},
	}))
	e.Use(echoMw.Recover())

	e.GET("/health", func(c echo.Context) error {
		return c.JSON(http.StatusOK, map[string]string{"status": "ok", "service": cfg.ServiceName})
	})

	api := e.Group("/api/v1")
	handler.NewUserHandler(userSvc).RegisterRoutes(api.Group("/users"))

	requireUser := middleware.RequireUser(tokens)
	handler.NewBookingHandler(bookingSvc).RegisterRoutes(api.Group("/bookings", requireUser))
	handler.NewNotificationHandler(notifSvc).RegisterRoutes(api.Group("/notifications", requireUser))

	if cfg.MaintenanceKey == "" {
		log.Warning("MAINTENANCE_KEY not set, maintenance endpoints disabled")
		return e
	}
	maintenance := api.Group("/maintenance", echoMw.KeyAuthWithConfig(echoMw.KeyAuthConfig{
		KeyLookup: "header:X-Maintenance-Key",
		Validator: func(key string, c echo.Context) (bool, error) {
			return subtle.ConstantTimeCompare([]byte(key), []byte(cfg.MaintenanceKey)) == 1, nil
		},
	}))
	handler.NewMaintenanceHandler(bookingSvc, reminderSvc, cfg.AutoConfirmLimit).RegisterRoutes(maintenance)

	return e
}
