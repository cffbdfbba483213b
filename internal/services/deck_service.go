package services

import (
	"context"
	"strings"

	"github.com/google/uuid"
	"github.com/vytor/studyflash/internal/errors"
	"github.com/vytor/studyflash/internal/logger"
	"github.com/vytor/studyflash/internal/models"
	"github.com/vytor/studyflash/internal/repository"
)

// DeckService handles deck-related business logic
type DeckService interface {
	Create(ctx context.Context, ownerID, name, description string) (*models.Deck, error)
	List(ctx context.Context, ownerID string) ([]models.Deck, error)
	Get(ctx context.Context, ownerID, deckID string) (*models.Deck, error)
	Delete(ctx context.Context, ownerID, deckID string) error
}

type deckService struct {
	deckRepo repository.DeckRepository
}

// NewDeckService creates a new DeckService
func NewDeckService(deckRepo repository.DeckRepository) DeckService {
	return &deckService{deckRepo: deckRepo}
}

func (s *deckService) Create(ctx context.Context, ownerID, name, description string) (*models.Deck, error) {
	log := logger.FromContext(ctx)
	log.Debug("creating deck: owner_id=%s, name=%s", ownerID, name)

	name = strings.TrimSpace(name)
	if name == "" {
		return nil, errors.NewValidationError("name", "cannot be empty")
	}

	deck := models.Deck{
		ID:          uuid.NewString(),
		OwnerID:     ownerID,
		Name:        name,
		Description: strings.TrimSpace(description),
		CreatedAt:   nowUTC(),
	}
	if err := s.deckRepo.Insert(ctx, deck); err != nil {
		log.Error("failed to insert deck: %v", err)
		return nil, errors.NewInternalError(err)
	}
	return &deck, nil
}

func (s *deckService) List(ctx context.Context, ownerID string) ([]models.Deck, error) {
	log := logger.FromContext(ctx)
	log.Debug("listing decks: owner_id=%s", ownerID)

	decks, err := s.deckRepo.List(ctx, ownerID)
	if err != nil {
		log.Error("failed to list decks: %v", err)
		return nil, errors.NewInternalError(err)
	}
	return decks, nil
}

func (s *deckService) Get(ctx context.Context, ownerID, deckID string) (*models.Deck, error) {
	return ownedDeck(ctx, s.deckRepo, ownerID, deckID)
}

func (s *deckService) Delete(ctx context.Context, ownerID, deckID string) error {
	log := logger.FromContext(ctx)
	log.Debug("deleting deck: owner_id=%s, deck_id=%s", ownerID, deckID)

	if _, err := ownedDeck(ctx, s.deckRepo, ownerID, deckID); err != nil {
		return err
	}
	if err := s.deckRepo.Delete(ctx, deckID); err != nil {
		if isNotFound(err) {
			return errors.NewNotFoundError("deck", deckID)
		}
		log.Error("failed to delete deck: %v", err)
		return errors.NewInternalError(err)
	}
	return nil
}

// ownedDeck loads a deck and hides it from anyone but its owner.
func ownedDeck(ctx context.Context, repo repository.DeckRepository, ownerID, deckID string) (*models.Deck, error) {
	log := logger.FromContext(ctx)

	deck, err := repo.Get(ctx, deckID)
	if err != nil {
		if isNotFound(err) {
			return nil, errors.NewNotFoundError("deck", deckID)
		}
		log.Error("failed to get deck: %v", err)
		return nil, errors.NewInternalError(err)
	}
	if deck.OwnerID != ownerID {
		log.Warn("deck does not belong to user: deck_id=%s, owner_id=%s", deckID, ownerID)
		return nil, errors.NewNotFoundError("deck", deckID)
	}
	return deck, nil
}
