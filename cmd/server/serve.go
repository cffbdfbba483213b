package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"
	"github.com/vytor/studyflash/internal/api"
	"github.com/vytor/studyflash/internal/assistant"
	"github.com/vytor/studyflash/internal/config"
	"github.com/vytor/studyflash/internal/db"
	"github.com/vytor/studyflash/internal/geofence"
	"github.com/vytor/studyflash/internal/jobs"
	"github.com/vytor/studyflash/internal/logger"
	"github.com/vytor/studyflash/internal/repository/sqlite"
	"github.com/vytor/studyflash/internal/services"
	"github.com/vytor/studyflash/internal/worker"
)

const housekeepingInterval = time.Minute

func newServeCommand(debugMode *bool) *cobra.Command {
	return &cobra.Command{
		Use:   "serve",
		Short: "Run the HTTP API",
		RunE: func(cmd *cobra.Command, args []string) error {
			return runServe(cmd.Context(), loadConfig(*debugMode))
		},
	}
}

func runServe(ctx context.Context, cfg config.Config) error {
	log := logger.Default()
	if err := cfg.Validate(); err != nil {
		return fmt.Errorf("invalid configuration: %w", err)
	}

	log.Info("===========================================")
	log.Info("StudyFlash Server Starting")
	log.Info("===========================================")
	log.Debug("addr=%s", cfg.Addr)
	log.Debug("db_path=%s", cfg.DBPath)
	log.Debug("log_level=%s", cfg.LogLevel)
	log.Debug("assistant_base_url=%s", cfg.AssistantBaseURL)
	log.Debug("assistant_timeout=%s", cfg.AssistantTimeout)
	log.Debug("assistant_max_retries=%d", cfg.AssistantMaxRetries)
	log.Debug("chat_worker_count=%d", cfg.ChatWorkerCount)
	log.Debug("chat_queue_size=%d", cfg.ChatQueueSize)
	log.Debug("ai_rate_per_minute=%d", cfg.AIRatePerMinute)
	log.Debug("study_session_ttl=%s", cfg.StudySessionTTL)

	database, err := db.Open(cfg.DBPath)
	if err != nil {
		return err
	}
	defer func() {
		log.Debug("closing database connection")
		database.Close()
	}()

	client := assistant.New(cfg.AssistantBaseURL, cfg.AssistantAPIKey, cfg.AssistantTimeout, uint(cfg.AssistantMaxRetries))
	defer client.Close()

	userRepo := sqlite.NewUserRepository(database.DB)
	deckRepo := sqlite.NewDeckRepository(database.DB)
	cardRepo := sqlite.NewFlashcardRepository(database.DB)
	sessionRepo := sqlite.NewSessionRepository(database.DB)
	locationRepo := sqlite.NewLocationRepository(database.DB)
	chatRepo := sqlite.NewChatRepository(database.DB)
	tracker := geofence.NewTracker(geofence.LogNotifier{})

	// The responder is built before the chat service so the queue can hand
	// jobs to it without either side knowing the other.
	chatPool := worker.NewPool(cfg.ChatWorkerCount, cfg.ChatQueueSize)
	responder := services.NewChatResponder(chatRepo, client)
	queue := jobs.NewWorkerQueue(chatPool, responder)

	study := services.NewStudyService(deckRepo, cardRepo, sessionRepo, client, cfg.StudySessionTTL)
	limiter := api.NewRateLimiter(cfg.AIRatePerMinute, cfg.AIRateBurst)

	srv := &api.Server{
		DB:         database,
		Users:      services.NewUserService(userRepo),
		Decks:      services.NewDeckService(deckRepo),
		Flashcards: services.NewFlashcardService(deckRepo, cardRepo),
		Study:      study,
		Stats:      services.NewStatsService(sessionRepo, deckRepo, locationRepo),
		Locations:  services.NewLocationService(locationRepo, tracker, cfg.DefaultLocationRadius),
		Geofence:   services.NewGeofenceService(locationRepo, tracker),
		Chat:       services.NewChatService(chatRepo, queue),
		Generation: services.NewGenerationService(deckRepo, client),
		AILimiter:  limiter,
	}

	ctx, stop := signal.NotifyContext(ctx, syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	workerCtx, cancelWorkers := context.WithCancel(context.Background())
	defer cancelWorkers()
	chatPool.Start(workerCtx)

	go housekeeping(workerCtx, study, limiter)

	httpServer := &http.Server{
		Addr:         cfg.Addr,
		Handler:      srv.Routes(),
		ReadTimeout:  15 * time.Second,
		WriteTimeout: cfg.AssistantTimeout + 30*time.Second,
		IdleTimeout:  60 * time.Second,
	}

	serveErr := make(chan error, 1)
	go func() {
		log.Info("HTTP server listening on %s", cfg.Addr)
		if err := httpServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			serveErr <- err
		}
		close(serveErr)
	}()

	select {
	case err := <-serveErr:
		if err != nil {
			log.Error("HTTP server error: %v", err)
			cancelWorkers()
			chatPool.Stop()
			return err
		}
	case <-ctx.Done():
		log.Info("received shutdown signal, initiating graceful shutdown")
	}

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer shutdownCancel()

	log.Debug("shutting down HTTP server")
	if err := httpServer.Shutdown(shutdownCtx); err != nil {
		log.Error("HTTP server shutdown error: %v", err)
	}

	log.Debug("stopping chat pool: queued=%d", chatPool.QueueSize())
	chatPool.Stop()
	cancelWorkers()

	log.Info("===========================================")
	log.Info("StudyFlash Server Stopped")
	log.Info("===========================================")
	return nil
}

// housekeeping drops expired study sessions and idle rate limit buckets.
func housekeeping(ctx context.Context, study services.StudyService, limiter *api.RateLimiter) {
	log := logger.Default().WithPrefix("housekeeping")
	ticker := time.NewTicker(housekeepingInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			if n := study.PurgeExpired(ctx); n > 0 {
				log.Info("purged expired study sessions: count=%d", n)
			}
			if n := limiter.Prune(); n > 0 {
				log.Debug("pruned rate limit buckets: count=%d", n)
			}
		}
	}
}
