package main

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/mprates/dailylesson/internal/api"
	"github.com/mprates/dailylesson/internal/backend"
	"github.com/mprates/dailylesson/internal/chunker"
	"github.com/mprates/dailylesson/internal/config"
	"github.com/mprates/dailylesson/internal/db"
	"github.com/mprates/dailylesson/internal/logger"
	"github.com/mprates/dailylesson/internal/models"
	"github.com/mprates/dailylesson/internal/orchestrator"
	"github.com/mprates/dailylesson/internal/repository/sqlite"
	"github.com/mprates/dailylesson/internal/scheduler"
	"github.com/mprates/dailylesson/internal/worker"
)

func main() {
	cfg := config.Load()

	log := logger.New(
		logger.WithLevel(logger.ParseLevel(cfg.LogLevel)),
		logger.WithColors(true),
	)
	logger.SetDefault(log)

	log.Info("===========================================")
	log.Info("DailyLesson Server Starting")
	log.Info("===========================================")

	if err := cfg.Validate(); err != nil {
		log.Error("invalid configuration: %v", err)
		os.Exit(1)
	}
	log.Info("configuration loaded")
	log.Debug("addr=%s", cfg.Addr)
	log.Debug("db_path=%s", cfg.DBPath)
	log.Debug("log_level=%s", cfg.LogLevel)
	log.Debug("generation_hour=%d", cfg.GenerationHour)
	log.Debug("generation_queue_size=%d", cfg.GenerationQueueLen)
	log.Debug("cloud_model=%s", cfg.CloudModel)
	log.Debug("local_url=%s", cfg.LocalURL)

	database, err := db.Open(cfg.DBPath)
	if err != nil {
		log.Error("failed to open database: %v", err)
		os.Exit(1)
	}
	defer func() {
		log.Debug("closing database connection")
		database.Close()
	}()

	lessons := sqlite.NewLessonRepository(database)
	cards := sqlite.NewFlashcardRepository(database)
	stats := sqlite.NewStatsRepository(database)
	settings := sqlite.NewSettingsRepository(database)

	// First run gets defaults carrying the configured generation hour;
	// saved settings are never overwritten.
	defaults := models.DefaultSettings()
	defaults.GenerationHour = cfg.GenerationHour
	if err := settings.Seed(logger.NewContext(context.Background(), log), defaults); err != nil {
		log.Warn("failed to seed default settings: %v", err)
	}

	// No host model runtime ships with the server build; the ondevice
	// connector reports unavailable and the orchestrator falls through.
	gen := orchestrator.New(
		backend.NewOnDevice(nil),
		backend.NewLocal(backend.LocalConfig{URL: cfg.LocalURL, Model: cfg.LocalModel}),
		backend.NewCloud(backend.CloudConfig{APIKey: cfg.CloudAPIKey, Model: cfg.CloudModel, URL: cfg.CloudURL}),
	)

	sched := scheduler.New(scheduler.Deps{
		Lessons:  lessons,
		Cards:    cards,
		Stats:    stats,
		Settings: settings,
		Gen:      gen,
		Chunker:  chunker.New(chunker.NewHTTPFetcher()),
	})

	pool := worker.NewPool(1, cfg.GenerationQueueLen)
	queue := worker.NewGenerationQueue(pool, sched)

	srv := api.NewServer(lessons, cards, stats, settings, sched, queue)

	ctx, cancel := context.WithCancel(context.Background())
	pool.Start(ctx)

	// A missed day gets exactly one catch-up run at startup.
	if err := sched.CheckMissed(logger.NewContext(ctx, log)); err != nil {
		log.Warn("catch-up generation failed: %v", err)
	}

	alarm := scheduler.NewAlarm(sched)
	alarm.Register(ctx)

	httpServer := &http.Server{
		Addr:         cfg.Addr,
		Handler:      srv.Routes(),
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 30 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	go func() {
		log.Info("HTTP server listening on %s", cfg.Addr)
		if err := httpServer.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Error("HTTP server error: %v", err)
			os.Exit(1)
		}
	}()

	stop := make(chan os.Signal, 1)
	signal.Notify(stop, syscall.SIGINT, syscall.SIGTERM)
	sig := <-stop

	log.Info("received signal %v, initiating graceful shutdown", sig)

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer shutdownCancel()

	log.Debug("stopping alarm")
	alarm.Stop()

	log.Debug("stopping worker pool")
	cancel()

	log.Debug("shutting down HTTP server")
	if err := httpServer.Shutdown(shutdownCtx); err != nil {
		log.Error("HTTP server shutdown error: %v", err)
	}

	pool.Stop()

	log.Info("===========================================")
	log.Info("DailyLesson Server Stopped")
	log.Info("===========================================")
}
