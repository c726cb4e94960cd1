package main

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/rosterly/rosterly-backend/internal/config"
	"github.com/rosterly/rosterly-backend/internal/database"
	"github.com/rosterly/rosterly-backend/internal/handler"
	"github.com/rosterly/rosterly-backend/internal/logger"
	"github.com/rosterly/rosterly-backend/internal/repository"
	"github.com/rosterly/rosterly-backend/internal/router"
	"github.com/rosterly/rosterly-backend/internal/service"
	"github.com/rosterly/rosterly-backend/internal/validator"
	"github.com/rosterly/rosterly-backend/internal/websocket"
	"github.com/rosterly/rosterly-backend/internal/worker"
	"github.com/rs/zerolog"
)

func main() {
	// ─── Load Configuration ────────────────────────────────────────────
	cfg := config.Load()

	// ─── Initialize Logger ─────────────────────────────────────────────
	log := logger.Setup(cfg.LogLevel, cfg.LogFormat)
	log.Info().
		Str("port", cfg.ServerPort).
		Str("mode", cfg.GinMode).
		Str("data_file", cfg.DataFile).
		Msg("Starting Rosterly Backend")

	// ─── Initialize Validator ──────────────────────────────────────────
	validator.Setup()

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	// ─── Connect to Redis ──────────────────────────────────────────────
	rdb, err := database.NewRedisClient(ctx, cfg, log)
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to connect to Redis")
	}
	defer rdb.Close()

	// ─── Open Record Store ─────────────────────────────────────────────
	studentRepo, err := repository.NewStudentRepository(cfg.DataFile, cfg.BackupDir, cfg.BackupKeep, log)
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to open record store")
	}
	total, active := studentRepo.Count()
	log.Info().Int("total", total).Int("active", active).Msg("Record store loaded")

	// ─── Initialize Services ──────────────────────────────────────────
	hub := websocket.NewHub(log)

	authService, err := service.NewAuthService(cfg, rdb)
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to initialize auth service")
	}
	analyticsService := service.NewAnalyticsService(studentRepo, rdb, cfg.StatsCacheTTL, log)
	studentService := service.NewStudentService(studentRepo, analyticsService, hub, log)
	transferService := service.NewTransferService(studentRepo, analyticsService, hub, log)

	// ─── Initialize Handlers ──────────────────────────────────────────
	handlers := &router.Handlers{
		Auth:      handler.NewAuthHandler(authService),
		Student:   handler.NewStudentHandler(studentService),
		Analytics: handler.NewAnalyticsHandler(analyticsService),
		Transfer:  handler.NewTransferHandler(transferService),
		Backup:    handler.NewBackupHandler(studentRepo),
		WS:        handler.NewWSHandler(hub, analyticsService, log, cfg.AllowedOrigins),
	}

	// ─── Start Background Worker ──────────────────────────────────────
	workerCtx, workerCancel := context.WithCancel(context.Background())

	backupWorker := worker.NewBackupWorker(studentRepo, cfg.BackupInterval, log)
	workerDone := make(chan struct{})
	go func() {
		backupWorker.Start(workerCtx)
		close(workerDone)
	}()

	// ─── Setup Router ──────────────────────────────────────────────────
	r := router.SetupRouter(authService, handlers, cfg)

	// ─── Create HTTP Server ────────────────────────────────────────────
	srv := &http.Server{
		Addr:    ":" + cfg.ServerPort,
		Handler: r,
	}

	// ─── Start Server in Goroutine ─────────────────────────────────────
	go func() {
		log.Info().Str("addr", ":"+cfg.ServerPort).Msg("Server listening")
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatal().Err(err).Msg("Server error")
		}
	}()

	// ─── Graceful Shutdown ─────────────────────────────────────────────
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	sig := <-quit

	log.Info().Str("signal", sig.String()).Msg("Shutting down gracefully...")

	// 1. Stop accepting new HTTP requests (5s timeout).
	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer shutdownCancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Error().Err(err).Msg("HTTP server shutdown error")
	}

	// 2. Stop the backup worker and wait for its final snapshot.
	workerCancel()
	select {
	case <-workerDone:
	case <-time.After(5 * time.Second):
		log.Warn().Msg("Backup worker did not stop in time")
	}

	log.Info().Msg("Shutdown complete")
}

// init sets zerolog global defaults before main runs.
func init() {
	zerolog.TimeFieldFormat = time.RFC3339
}
