package services

import (
	"context"
	"runtime"

	"github.com/vytor/studyflash/internal/errors"
	"github.com/vytor/studyflash/internal/logger"
	"github.com/vytor/studyflash/internal/models"
	"github.com/vytor/studyflash/internal/repository"
	"github.com/vytor/studyflash/internal/stats"
	"golang.org/x/sync/errgroup"
)

// sessionsPerShard is how many sessions one roll-up goroutine handles.
const sessionsPerShard = 512

// StatsService handles statistics-related business logic
type StatsService interface {
	Summary(ctx context.Context, ownerID string) (*models.StatsSummary, error)
}

type statsService struct {
	sessionRepo  repository.SessionRepository
	deckRepo     repository.DeckRepository
	locationRepo repository.LocationRepository
}

// NewStatsService creates a new StatsService
func NewStatsService(
	sessionRepo repository.SessionRepository,
	deckRepo repository.DeckRepository,
	locationRepo repository.LocationRepository,
) StatsService {
	return &statsService{sessionRepo: sessionRepo, deckRepo: deckRepo, locationRepo: locationRepo}
}

// Summary rolls every session of the user up by deck and by favorite
// location. Sessions of deleted decks keep counting under a placeholder name.
func (s *statsService) Summary(ctx context.Context, ownerID string) (*models.StatsSummary, error) {
	log := logger.FromContext(ctx)
	log.Debug("computing stats summary: owner_id=%s", ownerID)

	var in stats.Input
	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		sessions, err := s.sessionRepo.List(gctx, models.SessionFilter{OwnerID: ownerID})
		in.Sessions = sessions
		return err
	})
	g.Go(func() error {
		decks, err := s.deckRepo.List(gctx, ownerID)
		in.Decks = decks
		return err
	})
	g.Go(func() error {
		locations, err := s.locationRepo.List(gctx, ownerID)
		in.Locations = locations
		return err
	})
	if err := g.Wait(); err != nil {
		log.Error("failed to load stats input: %v", err)
		return nil, errors.NewInternalError(err)
	}

	shards := min(runtime.GOMAXPROCS(0), len(in.Sessions)/sessionsPerShard+1)
	summary, err := stats.Parallel(ctx, in, shards)
	if err != nil {
		log.Error("failed to roll up stats: %v", err)
		return nil, errors.NewInternalError(err)
	}

	log.Debug("stats computed: sessions=%d, decks=%d, locations=%d",
		len(in.Sessions), len(summary.ByDeck), len(summary.ByLocation))
	return &summary, nil
}
