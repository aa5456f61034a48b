package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"staypulse/internal/config"
	"staypulse/internal/dataset"
	"staypulse/internal/infrastructure"
	"staypulse/internal/services"
	transport "staypulse/internal/transport/http"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		slog.Error("Failed to load configuration", "error", err)
		os.Exit(1)
	}

	logger, err := infrastructure.NewLogger(cfg.Logging)
	if err != nil {
		slog.Error("Failed to initialize logger", "error", err)
		os.Exit(1)
	}
	slog.SetDefault(logger)

	snap, err := dataset.LoadSnapshot(cfg.Paths.DataDir)
	if err != nil {
		logger.Error("Failed to load snapshot", "error", err, "dir", cfg.Paths.DataDir)
		os.Exit(1)
	}

	service, err := services.NewReportService(snap, cfg.Analytics, logger)
	if err != nil {
		logger.Error("Failed to build report service", "error", err)
		os.Exit(1)
	}

	router := transport.NewRouter(service, cfg.Server, logger)
	server := &http.Server{
		Addr:         fmt.Sprintf(":%d", cfg.Server.Port),
		Handler:      router,
		ReadTimeout:  cfg.Server.ReadTimeout,
		WriteTimeout: cfg.Server.WriteTimeout,
		IdleTimeout:  cfg.Server.IdleTimeout,
	}

	go func() {
		logger.Info("Server starting", "port", cfg.Server.Port)
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Error("Server failed", "error", err)
			os.Exit(1)
		}
	}()

	stop := make(chan os.Signal, 1)
	signal.Notify(stop, os.Interrupt, syscall.SIGTERM)
	<-stop

	logger.Info("Shutting down")
	ctx, cancel := context.WithTimeout(context.Background(), cfg.Server.ShutdownTimeout)
	defer cancel()
	if err := server.Shutdown(ctx); err != nil {
		logger.Error("Shutdown failed", "error", err)
		os.Exit(1)
	}
}
