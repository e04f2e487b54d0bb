package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/bilgisen/paperharvest/internal/api"
	"github.com/bilgisen/paperharvest/internal/config"
	"github.com/bilgisen/paperharvest/internal/logger"
	"github.com/bilgisen/paperharvest/internal/middleware"
	"github.com/bilgisen/paperharvest/internal/storage"
	"github.com/gofiber/fiber/v2"
)

func main() {
	cfg := config.Load()

	initErr := logger.Init(logger.Config{
		Level:  cfg.LogLevel,
		Output: cfg.LogFile,
		Pretty: cfg.LogPretty,
	})

	log := logger.Get()
	if initErr != nil {
		log.Warn().Err(initErr).Str("output", cfg.LogFile).Msg("Log output unavailable, logging to stdout")
	}

	store, err := storage.NewStorage(cfg.OutputDir, cfg.MonthsBack, nil, *log)
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to initialize storage")
	}

	app := fiber.New(fiber.Config{
		ReadTimeout:  30 * time.Second,
		WriteTimeout: 30 * time.Second,
		IdleTimeout:  120 * time.Second,
		ErrorHandler: middleware.ErrorHandler,
	})

	api.SetupRoutes(app, store)

	go func() {
		log.Info().Str("port", cfg.Port).Str("output_dir", cfg.OutputDir).Msg("Starting server")
		if err := app.Listen(":" + cfg.Port); err != nil {
			log.Fatal().Err(err).Msg("Server error")
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, os.Interrupt, syscall.SIGTERM)
	<-quit

	log.Info().Msg("Shutting down server...")

	ctx, cancel := context.WithTimeout(context.Background(), cfg.ShutdownTimeout)
	defer cancel()

	if err := app.ShutdownWithContext(ctx); err != nil {
		log.Error().Err(err).Msg("Server forced to shutdown")
	}

	log.Info().Msg("Server exited properly")
}
