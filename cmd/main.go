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

	"github.com/mgupta0995/stockfolio/config"
	"github.com/mgupta0995/stockfolio/data"
	"github.com/mgupta0995/stockfolio/data/cache"
	"github.com/mgupta0995/stockfolio/data/repository/postgres"
	"github.com/mgupta0995/stockfolio/internal/externalApi/cloudStorageApi/googleDriveApi"
	"github.com/mgupta0995/stockfolio/internal/externalApi/yahooApi"
	"github.com/mgupta0995/stockfolio/internal/reportGenerator/xlsxGenerator"
	"github.com/mgupta0995/stockfolio/internal/scheduler"
	"github.com/mgupta0995/stockfolio/internal/service/portfolioService"
	"github.com/mgupta0995/stockfolio/internal/transport/rest"
)

func main() {
	cfg := config.MustLoad()

	setupLogger(cfg)

	slog.Debug("config", slog.Any("cfg", cfg))

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	pgClient := data.NewPostgresClient(cfg)
	defer pgClient.Close()

	pgRepo := postgres.NewPostgres(cfg, pgClient)

	redisClient := data.NewRedisClient(cfg)
	defer redisClient.Close()

	redisCache := cache.NewRedisCache(redisClient, cfg)

	yahooApiClient := yahooApi.New(cfg)

	reportGenerator := xlsxGenerator.New()

	var cloudStorage portfolioService.CloudStorage
	var driveApi *googleDriveApi.GoogleDriveApi
	if cfg.GoogleDrive.CredentialsFile != "" {
		driveApi = googleDriveApi.New(ctx, cfg)
		cloudStorage = driveApi
	}

	portfolioSrv := portfolioService.New(cfg, pgRepo, redisCache, yahooApiClient, reportGenerator, cloudStorage)

	// First reconciliation pass before serving traffic. Non-fatal: the
	// interval job retries and mutations trigger their own passes.
	if err := portfolioSrv.Refresh(ctx); err != nil {
		slog.Error("initial refresh failed", slog.String("err", err.Error()))
	}

	sched := scheduler.New()
	sched.NewIntervalJob("refresh holdings", portfolioSrv.Refresh, cfg.Jobs.RefreshHoldingsInterval, false)
	if driveApi != nil {
		sched.NewIntervalJob("drive cleanup", driveApi.DeleteOldFiles, cfg.Jobs.DriveCleanupInterval, false)
	}
	sched.Start()
	defer sched.Stop()

	controller := rest.NewController(portfolioSrv)

	srv := &http.Server{
		Addr:         fmt.Sprintf(":%d", cfg.HTTP.Port),
		Handler:      rest.NewRouter(controller),
		ReadTimeout:  cfg.HTTP.ReadTimeout,
		WriteTimeout: cfg.HTTP.WriteTimeout,
	}

	go func() {
		slog.Info("http server started", slog.Int("port", cfg.HTTP.Port))
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			slog.Error("http server failed", slog.String("err", err.Error()))
			cancel()
		}
	}()

	// Waiting interruption signal
	interrupt := make(chan os.Signal, 1)
	signal.Notify(interrupt, os.Interrupt, syscall.SIGTERM, syscall.SIGINT)

	select {
	case <-interrupt:
	case <-ctx.Done():
	}

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), cfg.HTTP.ShutdownTimeout)
	defer shutdownCancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		slog.Error("http server shutdown failed", slog.String("err", err.Error()))
	}
}

func setupLogger(cfg *config.Config) {
	var logLevel slog.Level

	switch cfg.LogLevel {
	case "debug":
		logLevel = slog.LevelDebug
	case "info":
		logLevel = slog.LevelInfo
	case "warning":
		logLevel = slog.LevelWarn
	case "error":
		logLevel = slog.LevelError
	default:
		logLevel = slog.LevelInfo
	}

	log := slog.New(slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{Level: logLevel}))
	slog.SetDefault(log)
}
