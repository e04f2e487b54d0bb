package main

import (
	"context"
	"errors"
	"os"
	"os/signal"
	"syscall"

	"github.com/bilgisen/paperharvest/internal/cache"
	"github.com/bilgisen/paperharvest/internal/config"
	"github.com/bilgisen/paperharvest/internal/epaper"
	"github.com/bilgisen/paperharvest/internal/harvest"
	"github.com/bilgisen/paperharvest/internal/logger"
	"github.com/bilgisen/paperharvest/internal/storage"
	"github.com/rs/zerolog"
)

func main() {
	if err := run(); err != nil {
		os.Exit(1)
	}
}

func run() error {
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
	log.Info().
		Str("base_url", cfg.BaseURL).
		Int("edition_min", cfg.EditionMin).
		Int("edition_max", cfg.EditionMax).
		Int("months_back", cfg.MonthsBack).
		Dur("request_delay", cfg.RequestDelay).
		Str("output_dir", cfg.OutputDir).
		Msg("Starting harvest...")

	if cfg.InsecureTLS {
		log.Warn().Msg("TLS certificate verification is disabled for the archive")
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	var mirror storage.Mirror
	if cfg.MirrorEnabled() {
		r2, err := storage.NewR2Mirror(ctx, storage.R2Config{
			Endpoint:  cfg.R2Endpoint,
			AccessKey: cfg.R2AccessKey,
			SecretKey: cfg.R2SecretKey,
			Bucket:    cfg.R2Bucket,
			Prefix:    cfg.R2Prefix,
		})
		if err != nil {
			log.Error().Err(err).Msg("Failed to initialize R2 mirror")
			return err
		}
		mirror = r2
		log.Info().Str("bucket", cfg.R2Bucket).Msg("Mirroring output to R2")
	}

	store, err := storage.NewStorage(cfg.OutputDir, cfg.MonthsBack, mirror, *log)
	if err != nil {
		log.Error().Err(err).Msg("Failed to initialize storage")
		return err
	}

	var recorder cache.StatusRecorder = cache.NewMemoryRecorder()
	if cfg.RedisURL != "" {
		redisClient, err := cache.NewRedisClient(cfg.RedisURL, cfg.RedisPrefix, cfg.CacheTTL)
		if err != nil {
			log.Error().Err(err).Msg("Failed to initialize Redis client")
			return err
		}
		recorder = redisClient
	}
	defer func() {
		if err := recorder.Close(); err != nil {
			log.Error().Err(err).Msg("Error closing status recorder")
		}
	}()

	client := epaper.NewClient(epaper.Options{
		BaseURL:     cfg.BaseURL,
		UserAgent:   cfg.UserAgent,
		Timeout:     cfg.HTTPTimeout,
		InsecureTLS: cfg.InsecureTLS,
		Logger:      log,
	})

	harvester := harvest.New(client, store, harvest.Options{
		Editions: cfg.Editions(),
		Pacer:    harvest.FixedDelay(cfg.RequestDelay),
		Recorder: recorder,
		Logger:   log,
	})

	state, report, err := harvester.Run(ctx, harvest.EnumerateDates(cfg.MonthsBack), harvest.State{})

	level := zerolog.InfoLevel
	switch {
	case errors.Is(err, context.Canceled):
		level = zerolog.WarnLevel
	case err != nil:
		level = zerolog.ErrorLevel
	}
	log.WithLevel(level).
		Err(err).
		Int("days", report.Days).
		Int("productive_days", report.ProductiveDays).
		Int("articles", len(state.Articles)).
		Int("requests", report.Requests).
		Int("failures", report.Failures).
		Dur("duration", report.FinishedAt.Sub(report.StartedAt)).
		Msg("Harvest finished")

	if errors.Is(err, context.Canceled) {
		return nil
	}
	return err
}
