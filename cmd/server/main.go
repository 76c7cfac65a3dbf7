package main

import (
	"context"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"go.uber.org/zap"

	"github.com/nekogravitycat/hotel-booking-backend/internal/app"
	"github.com/nekogravitycat/hotel-booking-backend/internal/config"
	"github.com/nekogravitycat/hotel-booking-backend/internal/db"
	"github.com/nekogravitycat/hotel-booking-backend/internal/jobs"
	"github.com/nekogravitycat/hotel-booking-backend/internal/notification"
	"github.com/nekogravitycat/hotel-booking-backend/internal/payment"
)

func main() {
	// For receiving Ctrl+C / SIGTERM
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	// Load config
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("failed to load config: %v", err)
	}

	// Structured logger, exposed globally for the service layers.
	var logger *zap.Logger
	if cfg.IsProduction {
		logger, err = zap.NewProduction()
	} else {
		logger, err = zap.NewDevelopment()
	}
	if err != nil {
		log.Fatalf("failed to init logger: %v", err)
	}
	defer logger.Sync()
	zap.ReplaceGlobals(logger)

	// Connect DB
	pool, err := db.NewPool(ctx, cfg.DBDSN)
	if err != nil {
		logger.Fatal("failed to connect to db", zap.Error(err))
	}
	defer pool.Close()

	gateway := payment.NewStripeGateway(cfg.StripeSecretKey, cfg.StripeWebhookSecret, cfg.CheckoutBaseURL)

	var notifier notification.Notifier
	if cfg.SMTPHost != "" && cfg.SMTPUser != "" {
		notifier = notification.NewSMTPMailer(cfg.SMTPHost, cfg.SMTPPort, cfg.SMTPUser, cfg.SMTPPass)
	} else {
		logger.Warn("SMTP not configured, confirmation emails disabled")
		notifier = notification.NewNoopNotifier()
	}

	container := app.NewContainer(app.Config{
		IsProduction: cfg.IsProduction,
		ProdOrigins:  cfg.ProdOrigins,
		DBPool:       pool,
		JWTSecret:    cfg.JWTSecret,
		JWTTTL:       cfg.JWTAccessTokenTTL,
		BcryptCost:   cfg.BcryptCost,
		Gateway:      gateway,
		Notifier:     notifier,
	})

	// Background sweep for bookings stuck in PENDING.
	reaper, err := jobs.StartReaper(cfg.ReaperSchedule, cfg.PendingBookingTTL, container.BookingService)
	if err != nil {
		logger.Fatal("failed to start reaper", zap.Error(err))
	}

	// Use http.Server for graceful shutdown
	server := &http.Server{
		Addr:    cfg.HTTPAddr,
		Handler: container.Router,
	}

	// Run server in separate goroutine
	go func() {
		logger.Info("server running", zap.String("addr", cfg.HTTPAddr))
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.Fatal("server error", zap.Error(err))
		}
	}()

	// Wait for Ctrl+C
	<-ctx.Done()
	logger.Info("shutdown signal received")

	// Stop scheduling new reaper runs and wait for an in-flight one.
	<-reaper.Stop().Done()

	// Create a shutdown context with timeout
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	// Shutdown HTTP server
	if err := server.Shutdown(shutdownCtx); err != nil {
		logger.Warn("server forced to shutdown", zap.Error(err))
	}

	logger.Info("server exited gracefully")
}
