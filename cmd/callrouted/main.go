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
	"time"

	"github.com/google/uuid"
	"github.com/joho/godotenv"

	"github.com/example/callroute-admin/internal/application"
	"github.com/example/callroute-admin/internal/config"
	httptransport "github.com/example/callroute-admin/internal/http"
	"github.com/example/callroute-admin/internal/persistence/sqlite"
	"github.com/example/callroute-admin/internal/routing"
	"github.com/example/callroute-admin/internal/schedule"
)

func main() {
	logger := slog.New(slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{Level: slog.LevelInfo}))
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	// A local .env is optional; the environment wins when both are present.
	if err := godotenv.Load(); err != nil && !errors.Is(err, os.ErrNotExist) {
		logger.Warn("failed to load .env file", "error", err)
	}

	cfg, err := config.Load()
	if err != nil {
		logger.Error("failed to load configuration", "error", err)
		os.Exit(1)
	}

	db, err := sqlite.Open(cfg.SQLiteDSN)
	if err != nil {
		logger.Error("failed to open database", "error", err)
		os.Exit(1)
	}
	defer func() {
		if cerr := db.Close(); cerr != nil {
			logger.Error("failed to close database", "error", cerr)
		}
	}()

	if err := db.Migrate(context.Background()); err != nil {
		logger.Error("failed to apply migrations", "error", err)
		os.Exit(1)
	}

	idGenerator := uuid.NewString
	now := time.Now
	offsets := schedule.SystemOffsets{}

	packageRepo := sqlite.NewPackageRepository(db, now)
	directoryRepo := sqlite.NewDirectoryRepository(db)

	lookups := application.NewDirectoryLookups(directoryRepo)
	resolver := routing.NewResolver(lookups, lookups, lookups)

	packageService := application.NewPackageService(packageRepo, offsets, idGenerator, now, logger)
	conversionService := application.NewConversionService(packageRepo, resolver, offsets, idGenerator, logger)
	validationService := application.NewValidationService(packageRepo, logger)

	router := httptransport.NewRouter(httptransport.RouterConfig{
		Packages:    httptransport.NewPackageHandler(packageService, logger),
		Conversions: httptransport.NewConversionHandler(conversionService, logger),
		Coverage:    httptransport.NewCoverageHandler(validationService, logger),
		Logger:      logger,
	})

	server := &http.Server{
		Addr:              fmt.Sprintf(":%d", cfg.HTTPPort),
		Handler:           router,
		ReadHeaderTimeout: 10 * time.Second,
		ReadTimeout:       30 * time.Second,
		WriteTimeout:      30 * time.Second,
		IdleTimeout:       60 * time.Second,
	}

	go func() {
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.ShutdownTimeout)
		defer cancel()
		if err := server.Shutdown(shutdownCtx); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Error("failed to shutdown server", "error", err)
		}
	}()

	logger.Info("call routing API listening", "addr", server.Addr)
	if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		logger.Error("server encountered error", "error", err)
		os.Exit(1)
	}
}
