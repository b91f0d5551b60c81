package main

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"budget_notification_engine/internal/app"
	"budget_notification_engine/internal/infra/cache"
	"budget_notification_engine/internal/infra/config"
	idb "budget_notification_engine/internal/infra/database"
	"budget_notification_engine/internal/infra/logger"
	"budget_notification_engine/internal/infra/mail"
	"budget_notification_engine/internal/infra/scheduler"
	"budget_notification_engine/internal/infra/web"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		// Logger is not configured yet; fall back to a bare one.
		logger.New(&config.AppConfig{LogLevel: "info"}).Fatalf("could not load configuration: %v", err)
	}

	log := logger.New(cfg)
	log.WithField("environment", cfg.Environment).Info("budget notification engine starting")

	db, err := idb.NewPostgresConnection(cfg.DatabaseURL)
	if err != nil {
		log.Fatalf("could not connect to database: %v", err)
	}
	defer db.Close()
	log.Info("database connection established")

	txRepo := idb.NewPostgresTransactionRepository(db)
	budgetRepo := idb.NewPostgresBudgetRepository(db)
	goalRepo := idb.NewPostgresGoalRepository(db)
	notifRepo := idb.NewPostgresNotificationRepository(db)

	mailer := mail.NewSMTPSender(cfg, log)
	if !mailer.IsConfigured() {
		log.Warn("SMTP not configured, email delivery disabled")
	}

	prefCache := cache.New(cache.Config{MaxSize: 512, TTL: 5 * time.Minute})

	analyticsSvc := app.NewAnalyticsService(txRepo, log)
	performanceSvc := app.NewPerformanceService(budgetRepo, txRepo, log)
	alertSvc := app.NewAlertService(budgetRepo, goalRepo, txRepo, log)
	notificationSvc := app.NewNotificationService(notifRepo, alertSvc, mailer, prefCache, log)

	retention := scheduler.NewRetentionScheduler(notifRepo, log, cfg.CronSpecRetention, cfg.RetentionDays)
	if err := retention.Start(); err != nil {
		log.Fatalf("could not start retention scheduler: %v", err)
	}

	server := web.NewServer(analyticsSvc, performanceSvc, notificationSvc, log)
	httpServer := &http.Server{
		Addr:         cfg.HTTPAddr,
		Handler:      server.Router(),
		ReadTimeout:  10 * time.Second,
		WriteTimeout: 30 * time.Second,
	}

	go func() {
		log.WithField("addr", cfg.HTTPAddr).Info("http server listening")
		if err := httpServer.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatalf("http server failed: %v", err)
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Info("shutting down")
	retention.Stop()

	ctx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
	defer cancel()
	if err := httpServer.Shutdown(ctx); err != nil {
		log.Errorf("http server shutdown: %v", err)
	}
	log.Info("shut down cleanly")
}
