package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"multiverse-identity/backend/pkg/config"
	"multiverse-identity/backend/pkg/di"
	"multiverse-identity/backend/pkg/health"
	"multiverse-identity/backend/pkg/logger"
	"multiverse-identity/backend/pkg/router"
	"multiverse-identity/backend/pkg/secrets"
	"multiverse-identity/backend/shared/observability"
)

func main() {
	// Loads .env on first use
	cfg := config.New()

	logConfig := logger.DefaultConfig()
	logConfig.Level = cfg.Logging.Level
	logConfig.JSON = cfg.Logging.Format != "text"

	log := logger.New(logConfig)
	logger.SetGlobal(log)

	log.Info("Starting application", "version", os.Getenv("APP_VERSION"), "env", cfg.Server.Env)

	if err := secrets.Init(log); err != nil {
		log.LogError(err, "Failed to initialize secrets manager")
		os.Exit(1)
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	if cfg.Features.EnableTracing {
		shutdown, err := observability.SetupTracing("multiverse-identity")
		if err != nil {
			log.LogError(err, "Failed to initialize tracing")
			os.Exit(1)
		}
		defer shutdown(context.Background())
	}

	container, err := di.New(ctx, cfg, log, di.Options{})
	if err != nil {
		log.LogError(err, "Failed to initialize dependency container")
		os.Exit(1)
	}
	defer container.Close()
	container.Start(ctx)

	r := router.New(container)
	r.SetupRoutes()
	defer r.Close()

	srv := &http.Server{
		Addr:              ":" + cfg.Server.Port,
		Handler:           r.Engine,
		ReadHeaderTimeout: 10 * time.Second,
	}

	go func() {
		log.Info("Server starting", "port", cfg.Server.Port)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.LogError(err, "Server failed to start")
			stop()
		}
	}()

	if cfg.Server.GRPCPort != "" {
		grpcHealth := health.NewGRPCServer(container.Health)
		go func() {
			if err := grpcHealth.ListenAndServe(ctx, cfg.Server.GRPCPort, 15*time.Second); err != nil {
				log.LogError(err, "gRPC health server failed")
			}
		}()
	}

	<-ctx.Done()
	log.Info("Shutting down server...")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.Server.Timeout)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.LogError(err, "Server forced to shutdown")
	}

	log.Info("Server exited gracefully")
}
