package main

import (
	"context"
	"errors"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/justsurfingit/hireme-ai/internal/auth"
	"github.com/justsurfingit/hireme-ai/internal/config"
	"github.com/justsurfingit/hireme-ai/internal/database"
	"github.com/justsurfingit/hireme-ai/internal/logger"
	"github.com/justsurfingit/hireme-ai/internal/metrics"
	"github.com/justsurfingit/hireme-ai/internal/ratelimit"
	"github.com/justsurfingit/hireme-ai/internal/server"
	"github.com/justsurfingit/hireme-ai/internal/services"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"go.uber.org/zap"
)

const shutdownTimeout = 10 * time.Second

func main() {
	// 1. Load configuration
	cfg, err := config.Load()
	if err != nil {
		logger.New("info").Fatal("invalid configuration", zap.Error(err))
	}

	log := logger.New(cfg.LogLevel)
	defer func() { _ = log.Sync() }()
	gin.SetMode(cfg.Server.GinMode)

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	// 2. Database connection
	db, err := database.Connect(cfg.Database.DSN, log)
	if err != nil {
		log.Fatal("database unavailable", zap.Error(err))
	}

	// 3. Core services
	model, err := services.NewModel(ctx, cfg.LLM)
	if err != nil {
		log.Fatal("failed to create LLM client", zap.Error(err))
	}

	registry := prometheus.NewRegistry()
	registry.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)
	m := metrics.New(registry)

	llmService := services.NewLLMService(model, cfg.LLM.Timeout, log, m)

	sessions, err := auth.NewSessions(cfg.Auth)
	if err != nil {
		log.Fatal("invalid session configuration", zap.Error(err))
	}

	// 4. Rate limiter with its background sweep
	limiter := ratelimit.New(ratelimit.Options{
		SweepInterval: cfg.RateLimit.SweepInterval,
		Logger:        log,
		OnSweep:       func(remaining int) { m.RateLimitKeys.Set(float64(remaining)) },
	})
	limiter.Start(ctx)
	defer limiter.Stop()

	// 5. Router
	router := server.New(server.Deps{
		Config:   cfg,
		Log:      log,
		DB:       db,
		LLM:      llmService,
		Limiter:  limiter,
		Sessions: sessions,
		OAuth:    auth.NewGitHubConfig(cfg.Auth),
		Metrics:  m,
		Gatherer: registry,
	})

	srv := &http.Server{
		Addr:              ":" + cfg.Server.Port,
		Handler:           router,
		ReadHeaderTimeout: 10 * time.Second,
	}

	serveErr := make(chan error, 1)
	go func() {
		log.Info("server starting",
			zap.String("port", cfg.Server.Port),
			zap.String("llm_provider", cfg.LLM.Provider),
			zap.String("llm_model", cfg.LLM.Model))
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			serveErr <- err
		}
		close(serveErr)
	}()

	select {
	case <-ctx.Done():
		log.Info("shutting down")
	case err := <-serveErr:
		log.Error("server failed", zap.Error(err))
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Error("graceful shutdown failed", zap.Error(err))
	}
}
