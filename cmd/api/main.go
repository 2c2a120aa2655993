package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/sangkips/clientbook-api/internal/application/service"
	"github.com/sangkips/clientbook-api/internal/config"
	"github.com/sangkips/clientbook-api/internal/infrastructure/notification"
	"github.com/sangkips/clientbook-api/internal/infrastructure/scheduler"
	"github.com/sangkips/clientbook-api/internal/infrastructure/storage"
	"github.com/sangkips/clientbook-api/internal/presentation/http/handler"
	"github.com/sangkips/clientbook-api/internal/presentation/http/routes"
	"github.com/sangkips/clientbook-api/pkg/logger"
	"github.com/sangkips/clientbook-api/pkg/utils"
)

func main() {
	cfg := config.Load()

	if err := logger.Init(cfg.Log.LoggerConfig()); err != nil {
		logger.App().WithError(err).Fatal("Failed to initialise logging")
	}
	log := logger.App()

	if cfg.App.Env == "production" {
		gin.SetMode(gin.ReleaseMode)
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	repos, err := storage.Open(ctx, cfg)
	if err != nil {
		log.WithError(err).Fatal("Failed to open storage")
	}
	defer repos.Close()

	jwtManager := utils.NewJWTManager(cfg.JWT.Secret, cfg.JWT.Issuer, cfg.JWT.ExpiryHours)

	// Initialize services
	resolver := service.NewIdentityResolver(repos.Clients, cfg.Identity.PhoneScanLimit)
	aggregator := service.NewStatsAggregator(repos.Clients, repos.Bookings, cfg.Stats.BookingHistoryLimit, cfg.Stats.PriceMode())
	segments := service.NewSegmentClassifier(repos.Clients, repos.Businesses, service.SystemClock)
	clientService := service.NewClientService(repos.Clients, repos.Bookings, aggregator, segments, service.SystemClock)
	eventService := service.NewBookingEventService(resolver, aggregator, repos.Bookings)
	transferService := service.NewClientTransferService(repos.Clients)

	jobs := scheduler.New(time.UTC, 30*time.Minute)
	if err := jobs.Add("idempotency-cleanup", "@hourly", repos.Idempotency.DeleteExpired); err != nil {
		log.WithError(err).Fatal("Failed to schedule cleanup")
	}
	if cfg.Reminder.Enabled {
		sender := notification.NewTwilioSender(notification.TwilioConfig{
			AccountSID:     cfg.Reminder.TwilioSID,
			AuthToken:      cfg.Reminder.TwilioToken,
			FromNumber:     cfg.Reminder.TwilioFrom,
			WhatsAppNumber: cfg.Reminder.TwilioWhatsApp,
		})
		reminders := service.NewReminderService(repos.Businesses, repos.Clients, repos.Reminders, segments, sender, cfg.Reminder.Cooldown, service.SystemClock)
		err := jobs.Add("win-back-reminders", cfg.Reminder.Schedule, func(ctx context.Context) error {
			_, err := reminders.Run(ctx)
			return err
		})
		if err != nil {
			log.WithError(err).Fatal("Failed to schedule reminders")
		}
	}
	jobs.Start()

	limiter := routes.NewRateLimiter(cfg.RateLimit)
	go limiter.Run(ctx.Done())

	router := routes.Setup(&routes.Handlers{
		Client:       handler.NewClientHandler(clientService),
		BookingEvent: handler.NewBookingEventHandler(eventService),
		Transfer:     handler.NewTransferHandler(transferService),
	}, &routes.Deps{
		JWTManager:      jwtManager,
		Cfg:             cfg,
		BusinessRepo:    repos.Businesses,
		IdempotencyRepo: repos.Idempotency,
		RateLimiter:     limiter,
	})

	port := cfg.App.Port
	if port == "" {
		port = "8080"
	}
	srv := &http.Server{
		Addr:              ":" + port,
		Handler:           router,
		ReadHeaderTimeout: 10 * time.Second,
	}

	go func() {
		log.WithField("port", port).WithField("env", cfg.App.Env).Infof("Starting %s server", cfg.App.Name)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.WithError(err).Fatal("Failed to start server")
		}
	}()

	<-ctx.Done()
	log.Info("Shutting down")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.WithError(err).Error("Server shutdown failed")
	}
	jobs.Stop(shutdownCtx)
}
