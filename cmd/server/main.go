package main

import (
	"context"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"portfolio-analytics/internal/config"
	httpHandler "portfolio-analytics/internal/handler/http"
	"portfolio-analytics/internal/ratelimit"
	"portfolio-analytics/internal/repository/jsonfile"
	"portfolio-analytics/internal/service"
	"portfolio-analytics/internal/session"
	"portfolio-analytics/pkg/logger"

	"github.com/prometheus/client_golang/prometheus/promhttp"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("Failed to load configuration: %v", err)
	}

	appLogger := logger.New(cfg.App.LogLevel)
	appLogger.Info("Starting portfolio analytics",
		"environment", cfg.App.Environment,
		"port", cfg.Server.Port,
		"data_dir", cfg.Storage.DataDir,
	)

	if err := os.MkdirAll(cfg.Storage.DataDir, 0o755); err != nil {
		appLogger.Error("Failed to create data directory", "error", err)
		log.Fatalf("Data directory unavailable: %v", err)
	}

	// Wire dependencies by hand: repositories, then the session provider
	// and service, then the HTTP layer on top
	storeRepo := jsonfile.NewStoreRepository(cfg.Storage.StorePath())
	sessionRepo := jsonfile.NewSessionRepository(cfg.Storage.SessionPath())

	sessions := session.NewProvider(sessionRepo, appLogger.Logger)
	env := httpHandler.NewRequestEnvironment()

	ctx := context.Background()

	// Constructing the service records the first-touch view event
	analytics := service.NewAnalyticsService(ctx, storeRepo, sessions, env, appLogger.Logger)

	// Watch the durable slot so a write from another process replaces our
	// in-memory state
	watcher, err := jsonfile.NewWatcher(cfg.Storage.StorePath(), func() {
		analytics.ReloadFromStorage(ctx)
	}, appLogger.Logger)
	if err != nil {
		appLogger.Error("Failed to start storage watcher", "error", err)
		log.Fatalf("Storage watcher failed: %v", err)
	}
	watcher.Start()
	defer watcher.Close()

	handler := httpHandler.NewHandler(analytics, appLogger.Logger, cfg.App.RecentEventsLimit, cfg.App.RecentEventsMax)

	mux := http.NewServeMux()
	mux.HandleFunc("POST /api/v1/track/{kind}", handler.TrackEvent)
	mux.HandleFunc("GET /api/v1/summary", handler.GetSummary)
	mux.HandleFunc("GET /api/v1/events/recent", handler.GetRecentEvents)
	mux.HandleFunc("GET /api/v1/export", handler.ExportData)
	mux.HandleFunc("DELETE /api/v1/data", handler.ClearData)
	mux.HandleFunc("GET /health/live", handler.HealthCheck)
	mux.HandleFunc("GET /", handler.ServeDashboard)

	if cfg.App.EnableMetrics {
		mux.Handle("GET /metrics", promhttp.Handler())
	}

	middlewares := []func(http.Handler) http.Handler{
		httpHandler.RecoveryMiddleware(appLogger.Logger),
		httpHandler.LoggingMiddleware(appLogger.Logger),
		httpHandler.RequestIDMiddleware,
		httpHandler.CORSMiddleware(cfg.App.CORSOrigin),
		httpHandler.ClientInfoMiddleware,
	}
	if cfg.App.EnableMetrics {
		middlewares = append(middlewares, httpHandler.MetricsMiddleware)
	}
	if cfg.App.RateLimitEnabled {
		limiter := ratelimit.NewTokenBucketLimiter(cfg.App.RateLimitPerMinute, time.Minute, cfg.App.RateLimitBurst)
		middlewares = append(middlewares, httpHandler.RateLimitMiddleware(limiter))
	}

	finalHandler := httpHandler.Chain(middlewares...)(mux)

	server := &http.Server{
		Addr:         ":" + cfg.Server.Port,
		Handler:      finalHandler,
		ReadTimeout:  cfg.Server.ReadTimeout,
		WriteTimeout: cfg.Server.WriteTimeout,
		IdleTimeout:  cfg.Server.IdleTimeout,
	}

	go func() {
		appLogger.Info("Server starting", "address", server.Addr)
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			appLogger.Error("Server failed", "error", err)
			log.Fatalf("Server failed: %v", err)
		}
	}()

	// Block until SIGINT/SIGTERM, then drain in-flight requests
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	appLogger.Info("Shutting down server...")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := server.Shutdown(shutdownCtx); err != nil {
		appLogger.Error("Server forced to shutdown", "error", err)
		log.Fatalf("Server forced to shutdown: %v", err)
	}

	appLogger.Info("Server exited gracefully")
}
