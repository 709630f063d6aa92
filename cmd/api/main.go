package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"leadbridge/internal/events"
	apphttp "leadbridge/internal/http"
	"leadbridge/internal/http/router"
	"leadbridge/internal/leads"
	"leadbridge/internal/notify"
	"leadbridge/platform/config"
	"leadbridge/platform/logger"
	"leadbridge/platform/validator"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		panic("failed to load config: " + err.Error())
	}

	// Initialize structured logger
	log := logger.New(cfg.Env)
	log.Info("starting server", "env", cfg.Env, "addr", cfg.HTTPAddr)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	// Event bus for decoupled communication between modules
	eventBus := events.NewInMemoryBus(log)

	// Shared validator instance for dependency injection
	val := validator.New()

	// ========================================================================
	// Domain Modules (Composition Root)
	// ========================================================================

	// Notify module subscribes to failure events (not HTTP-facing)
	notifyModule := notify.NewModule(cfg, log)
	notifyModule.RegisterHandlers(eventBus)
	if cfg.IsSlackEnabled() {
		log.Info("slack failure notifications enabled")
	} else {
		log.Warn("SLACK_WEBHOOK_URL not configured; failure notifications disabled")
	}

	leadsModule := leads.NewModule(cfg, eventBus, val, log)
	if cfg.IsAutoAssignEnabled() {
		log.Info("auto-assign oracle enabled", "url", cfg.AssignURL)
	} else {
		log.Warn("AUTO_ASSIGN_URL not configured; unassigned leads fall back to the backup agent")
	}

	// ========================================================================
	// HTTP Layer
	// ========================================================================

	app := &apphttp.App{
		Config:   cfg,
		Logger:   log,
		EventBus: eventBus,
		Modules: []apphttp.Module{
			leadsModule,
		},
	}

	engine := router.New(app)

	srv := &http.Server{
		Addr:              cfg.HTTPAddr,
		Handler:           engine,
		ReadHeaderTimeout: 10 * time.Second,
	}

	srvErr := make(chan error, 1)
	go func() {
		log.Info("server listening", "addr", cfg.HTTPAddr)
		srvErr <- srv.ListenAndServe()
	}()

	select {
	case <-ctx.Done():
		log.Info("shutdown signal received, gracefully shutting down")
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		if err := srv.Shutdown(shutdownCtx); err != nil {
			log.Error("graceful shutdown failed", "error", err)
		}
	case err := <-srvErr:
		if err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Error("server error", "error", err)
			panic("server error: " + err.Error())
		}
	}
}
