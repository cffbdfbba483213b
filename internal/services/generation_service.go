package services

import (
	"context"
	"strings"

	"github.com/vytor/studyflash/internal/assistant"
	"github.com/vytor/studyflash/internal/errors"
	"github.com/vytor/studyflash/internal/logger"
	"github.com/vytor/studyflash/internal/models"
	"github.com/vytor/studyflash/internal/repository"
)

// GenerationService asks the assistant to write new cards into a deck. The
// assistant stores them itself; only success or failure comes back.
type GenerationService interface {
	Generate(ctx context.Context, ownerID, deckID string, cardType models.CardType, userPrompt string) error
}

type generationService struct {
	deckRepo  repository.DeckRepository
	assistant assistant.Service
}

// NewGenerationService creates a new GenerationService
func NewGenerationService(deckRepo repository.DeckRepository, svc assistant.Service) GenerationService {
	return &generationService{deckRepo: deckRepo, assistant: svc}
}

func (s *generationService) Generate(ctx context.Context, ownerID, deckID string, cardType models.CardType, userPrompt string) error {
	log := logger.FromContext(ctx)
	log.Debug("generating flashcards: deck_id=%s, type=%s", deckID, cardType)

	if !cardType.Valid() {
		return errors.NewValidationError("card_type", "must be FRONT_BACK, CLOZE, FREE_TEXT or MULTIPLE_CHOICE")
	}
	userPrompt = strings.TrimSpace(userPrompt)
	if userPrompt == "" {
		return errors.NewValidationError("user_prompt", "cannot be empty")
	}
	if _, err := ownedDeck(ctx, s.deckRepo, ownerID, deckID); err != nil {
		return err
	}

	err := s.assistant.GenerateFlashcards(ctx, deckID, assistant.GenerateRequest{Type: cardType, UserComment: userPrompt})
	if err != nil {
		log.Error("flashcard generation failed: %v", err)
		return errors.NewUpstreamError("flashcard generator", err)
	}
	return nil
}
