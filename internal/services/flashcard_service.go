package services

import (
	"context"
	stderrors "errors"

	"github.com/google/uuid"
	"github.com/vytor/studyflash/internal/errors"
	"github.com/vytor/studyflash/internal/flashcard"
	"github.com/vytor/studyflash/internal/logger"
	"github.com/vytor/studyflash/internal/models"
	"github.com/vytor/studyflash/internal/repository"
)

// CardInput is the user-editable part of a flashcard.
type CardInput struct {
	Content          models.Content
	QuestionImageRef string
	QuestionAudioRef string
}

// FlashcardService handles flashcard-related business logic
type FlashcardService interface {
	Create(ctx context.Context, ownerID, deckID string, in CardInput) (*models.Flashcard, error)
	List(ctx context.Context, ownerID, deckID string) ([]models.Flashcard, error)
	Get(ctx context.Context, ownerID, deckID, cardID string) (*models.Flashcard, error)
	Update(ctx context.Context, ownerID, deckID, cardID string, in CardInput) (*models.Flashcard, error)
	Delete(ctx context.Context, ownerID, deckID, cardID string) error
}

type flashcardService struct {
	deckRepo      repository.DeckRepository
	flashcardRepo repository.FlashcardRepository
}

// NewFlashcardService creates a new FlashcardService
func NewFlashcardService(deckRepo repository.DeckRepository, flashcardRepo repository.FlashcardRepository) FlashcardService {
	return &flashcardService{deckRepo: deckRepo, flashcardRepo: flashcardRepo}
}

func (s *flashcardService) Create(ctx context.Context, ownerID, deckID string, in CardInput) (*models.Flashcard, error) {
	log := logger.FromContext(ctx)
	log.Debug("creating flashcard: deck_id=%s", deckID)

	if _, err := ownedDeck(ctx, s.deckRepo, ownerID, deckID); err != nil {
		return nil, err
	}
	content, err := normalizeContent(in.Content)
	if err != nil {
		return nil, err
	}

	now := nowUTC()
	card := models.Flashcard{
		ID:               uuid.NewString(),
		DeckID:           deckID,
		OwnerID:          ownerID,
		QuestionImageRef: in.QuestionImageRef,
		QuestionAudioRef: in.QuestionAudioRef,
		EaseFactor:       models.DefaultEaseFactor,
		IntervalDays:     models.DefaultIntervalDays,
		Content:          content,
		CreatedAt:        now,
		UpdatedAt:        now,
	}
	if err := s.flashcardRepo.Insert(ctx, card); err != nil {
		if isNotFound(err) {
			return nil, errors.NewNotFoundError("deck", deckID)
		}
		log.Error("failed to insert flashcard: %v", err)
		return nil, errors.NewInternalError(err)
	}
	log.Debug("flashcard created: id=%s, type=%s", card.ID, card.Type())
	return &card, nil
}

func (s *flashcardService) List(ctx context.Context, ownerID, deckID string) ([]models.Flashcard, error) {
	log := logger.FromContext(ctx)
	log.Debug("listing flashcards: deck_id=%s", deckID)

	if _, err := ownedDeck(ctx, s.deckRepo, ownerID, deckID); err != nil {
		return nil, err
	}
	cards, err := s.flashcardRepo.ListByDeck(ctx, deckID)
	if err != nil {
		log.Error("failed to list flashcards: %v", err)
		return nil, errors.NewInternalError(err)
	}
	return cards, nil
}

func (s *flashcardService) Get(ctx context.Context, ownerID, deckID, cardID string) (*models.Flashcard, error) {
	log := logger.FromContext(ctx)
	log.Debug("getting flashcard: deck_id=%s, id=%s", deckID, cardID)

	if _, err := ownedDeck(ctx, s.deckRepo, ownerID, deckID); err != nil {
		return nil, err
	}
	return loadCard(ctx, s.flashcardRepo, deckID, cardID)
}

// Update replaces the card's content wholesale. The review counters are kept.
func (s *flashcardService) Update(ctx context.Context, ownerID, deckID, cardID string, in CardInput) (*models.Flashcard, error) {
	log := logger.FromContext(ctx)
	log.Debug("updating flashcard: deck_id=%s, id=%s", deckID, cardID)

	if _, err := ownedDeck(ctx, s.deckRepo, ownerID, deckID); err != nil {
		return nil, err
	}
	card, err := loadCard(ctx, s.flashcardRepo, deckID, cardID)
	if err != nil {
		return nil, err
	}
	content, err := normalizeContent(in.Content)
	if err != nil {
		return nil, err
	}

	card.Content = content
	card.QuestionImageRef = in.QuestionImageRef
	card.QuestionAudioRef = in.QuestionAudioRef
	card.UpdatedAt = nowUTC()
	if err := s.flashcardRepo.Update(ctx, *card); err != nil {
		if isNotFound(err) {
			return nil, errors.NewNotFoundError("flashcard", cardID)
		}
		log.Error("failed to update flashcard: %v", err)
		return nil, errors.NewInternalError(err)
	}
	return card, nil
}

func (s *flashcardService) Delete(ctx context.Context, ownerID, deckID, cardID string) error {
	log := logger.FromContext(ctx)
	log.Debug("deleting flashcard: deck_id=%s, id=%s", deckID, cardID)

	if _, err := ownedDeck(ctx, s.deckRepo, ownerID, deckID); err != nil {
		return err
	}
	if err := s.flashcardRepo.Delete(ctx, deckID, cardID); err != nil {
		if isNotFound(err) {
			return errors.NewNotFoundError("flashcard", cardID)
		}
		log.Error("failed to delete flashcard: %v", err)
		return errors.NewInternalError(err)
	}
	return nil
}

func loadCard(ctx context.Context, repo repository.FlashcardRepository, deckID, cardID string) (*models.Flashcard, error) {
	card, err := repo.Get(ctx, deckID, cardID)
	if err != nil {
		if isNotFound(err) {
			return nil, errors.NewNotFoundError("flashcard", cardID)
		}
		logger.FromContext(ctx).Error("failed to get flashcard: %v", err)
		return nil, errors.NewInternalError(err)
	}
	return card, nil
}

func normalizeContent(content models.Content) (models.Content, error) {
	normalized, err := flashcard.Normalize(content)
	if err != nil {
		var verr *flashcard.ValidationError
		if stderrors.As(err, &verr) {
			return nil, errors.NewValidationError(verr.Field, verr.Reason)
		}
		return nil, errors.NewBadRequestError(err.Error())
	}
	return normalized, nil
}
