package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/cmlabs-hris/hris-notify/internal/app"
	"github.com/cmlabs-hris/hris-notify/internal/config"
	appHTTP "github.com/cmlabs-hris/hris-notify/internal/handler/http"
	"github.com/cmlabs-hris/hris-notify/internal/pkg/cron"
	"github.com/cmlabs-hris/hris-notify/internal/repository/postgresql"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		fmt.Println("Error loading config:", err)
		os.Exit(1)
	}

	slog.SetDefault(slog.New(slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{
		Level: cfg.SlogLevel(),
	})).With(slog.String("app", "hris-notify")))

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	a, err := app.New(ctx, cfg)
	if err != nil {
		slog.Error("Failed to initialize application", "error", err)
		os.Exit(1)
	}
	defer a.Close()

	if cfg.App.AutoMigrate {
		if err := postgresql.ApplySchema(ctx, a.DB); err != nil {
			slog.Error("Failed to apply schema", "error", err)
			os.Exit(1)
		}
	}

	scheduler := cron.NewScheduler()
	cron.NewInboxJobs(a.Inbox, cfg.Notification.InboxRetention).RegisterJobs(scheduler)
	scheduler.Start(ctx)
	defer scheduler.Stop()

	router := appHTTP.NewRouter(
		appHTTP.RouterConfig{
			Env:         cfg.App.Env,
			FrontendURL: cfg.App.FrontendURL,
			LogLevel:    cfg.SlogLevel(),
		},
		a.Verifier,
		appHTTP.NewReconciliationHandler(a.Reconciliation, a.Notifier, a.Background),
		appHTTP.NewNotifyHandler(a.Notifier),
		appHTTP.NewNotificationHandler(a.Inbox, a.JWT),
	)

	srv := &http.Server{
		Addr:              fmt.Sprintf(":%d", cfg.App.Port),
		Handler:           router,
		ReadHeaderTimeout: 10 * time.Second,
		// Cancelled on shutdown so open SSE streams return.
		BaseContext: func(net.Listener) context.Context { return ctx },
	}

	go func() {
		slog.Info("Server running", "addr", srv.Addr, "env", cfg.App.Env)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			slog.Error("Server error", "error", err)
			stop()
		}
	}()

	<-ctx.Done()
	slog.Info("Shutting down")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		slog.Error("Graceful shutdown failed", "error", err)
	}
}
