package services_test

import (
	"context"
	"database/sql"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"github.com/vytor/studyflash/internal/errors"
	"github.com/vytor/studyflash/internal/models"
	"github.com/vytor/studyflash/internal/services"
	"github.com/vytor/studyflash/internal/testutil/mocks"
)

func ownedDeckRepo(deckID, ownerID string) *mocks.MockDeckRepository {
	repo := new(mocks.MockDeckRepository)
	repo.On("Get", mock.Anything, deckID).Return(&models.Deck{ID: deckID, OwnerID: ownerID, Name: "Deck"}, nil)
	return repo
}

func TestFlashcardService_Create_DerivesClozeAnswers(t *testing.T) {
	decks := ownedDeckRepo("d1", "u1")
	cards := new(mocks.MockFlashcardRepository)
	cards.On("Insert", mock.Anything, mock.MatchedBy(func(c models.Flashcard) bool {
		cloze, ok := c.Content.(models.Cloze)
		return ok && c.DeckID == "d1" && c.OwnerID == "u1" &&
			c.EaseFactor == models.DefaultEaseFactor && c.IntervalDays == models.DefaultIntervalDays &&
			cloze.Answers["a"] == "Paris"
	})).Return(nil)

	svc := services.NewFlashcardService(decks, cards)
	card, err := svc.Create(context.Background(), "u1", "d1", services.CardInput{
		Content: models.Cloze{TextWithBlanks: "The capital of France is {{a::Paris}}"},
	})

	require.NoError(t, err)
	assert.Equal(t, models.CardTypeCloze, card.Type())
	assert.Equal(t, 0, card.RepetitionCount)
	cards.AssertExpectations(t)
}

func TestFlashcardService_Create_InvalidContent(t *testing.T) {
	svc := services.NewFlashcardService(ownedDeckRepo("d1", "u1"), new(mocks.MockFlashcardRepository))

	_, err := svc.Create(context.Background(), "u1", "d1", services.CardInput{
		Content: models.MultipleChoice{
			Question:      "Pick",
			Options:       []models.Option{{Text: "a"}, {Text: "b"}},
			CorrectOption: models.Option{Text: "a"},
		},
	})
	require.Error(t, err)
	appErr, ok := errors.As(err)
	require.True(t, ok)
	assert.Equal(t, errors.ErrCodeValidation, appErr.Code)
	assert.Contains(t, appErr.Message, "options")
}

func TestFlashcardService_Create_ForeignDeck(t *testing.T) {
	svc := services.NewFlashcardService(ownedDeckRepo("d1", "u2"), new(mocks.MockFlashcardRepository))

	_, err := svc.Create(context.Background(), "u1", "d1", services.CardInput{
		Content: models.FrontBack{Front: "a", Back: "b"},
	})
	assert.True(t, errors.HasCode(err, errors.ErrCodeNotFound))
}

func TestFlashcardService_Update_KeepsCounters(t *testing.T) {
	cards := new(mocks.MockFlashcardRepository)
	existing := &models.Flashcard{
		ID: "c1", DeckID: "d1", OwnerID: "u1",
		EaseFactor: 2.5, RepetitionCount: 7, IntervalDays: 1,
		Content: models.FrontBack{Front: "old", Back: "old"},
	}
	cards.On("Get", mock.Anything, "d1", "c1").Return(existing, nil)
	cards.On("Update", mock.Anything, mock.MatchedBy(func(c models.Flashcard) bool {
		fb, ok := c.Content.(models.FrontBack)
		return ok && fb.Front == "new" && c.RepetitionCount == 7
	})).Return(nil)

	svc := services.NewFlashcardService(ownedDeckRepo("d1", "u1"), cards)
	card, err := svc.Update(context.Background(), "u1", "d1", "c1", services.CardInput{
		Content: models.FrontBack{Front: "new", Back: "new"},
	})

	require.NoError(t, err)
	assert.Equal(t, 7, card.RepetitionCount)
	cards.AssertExpectations(t)
}

func TestFlashcardService_Delete_Missing(t *testing.T) {
	cards := new(mocks.MockFlashcardRepository)
	cards.On("Delete", mock.Anything, "d1", "c1").Return(sql.ErrNoRows)

	err := services.NewFlashcardService(ownedDeckRepo("d1", "u1"), cards).Delete(context.Background(), "u1", "d1", "c1")
	assert.True(t, errors.HasCode(err, errors.ErrCodeNotFound))
}
