package services_test

import (
	"context"
	stderrors "errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"github.com/vytor/studyflash/internal/errors"
	"github.com/vytor/studyflash/internal/models"
	"github.com/vytor/studyflash/internal/services"
	"github.com/vytor/studyflash/internal/testutil/mocks"
)

func ptr[T any](v T) *T { return &v }

func TestStatsService_Summary(t *testing.T) {
	sessions := new(mocks.MockSessionRepository)
	decks := new(mocks.MockDeckRepository)
	locations := new(mocks.MockLocationRepository)

	sessions.On("List", mock.Anything, models.SessionFilter{OwnerID: "u1"}).Return([]models.SessionStat{
		{ID: "s1", DeckID: "d1", TotalScore: 8, TotalPossible: 10, Latitude: ptr(0.0), Longitude: ptr(0.0)},
		{ID: "s2", DeckID: "gone", TotalScore: 3, TotalPossible: 10},
	}, nil)
	decks.On("List", mock.Anything, "u1").Return([]models.Deck{{ID: "d1", Name: "Biology"}}, nil)
	locations.On("List", mock.Anything, "u1").Return([]models.FavoriteLocation{
		{ID: "l1", Name: "Home", Latitude: 0, Longitude: 0, Radius: 100},
	}, nil)

	summary, err := services.NewStatsService(sessions, decks, locations).Summary(context.Background(), "u1")
	require.NoError(t, err)

	require.Len(t, summary.ByDeck, 2)
	assert.Equal(t, "Biology", summary.ByDeck[0].DeckName)
	assert.Equal(t, 80, summary.ByDeck[0].Percentage)
	assert.Equal(t, "Deck gone", summary.ByDeck[1].DeckName)

	require.Len(t, summary.ByLocation, 1)
	assert.Equal(t, "Home", summary.ByLocation[0].LocationName)
	assert.Equal(t, 1, summary.ByLocation[0].SessionCount)
}

func TestStatsService_Summary_Empty(t *testing.T) {
	sessions := new(mocks.MockSessionRepository)
	decks := new(mocks.MockDeckRepository)
	locations := new(mocks.MockLocationRepository)
	sessions.On("List", mock.Anything, mock.Anything).Return([]models.SessionStat{}, nil)
	decks.On("List", mock.Anything, "u1").Return([]models.Deck{}, nil)
	locations.On("List", mock.Anything, "u1").Return([]models.FavoriteLocation{}, nil)

	summary, err := services.NewStatsService(sessions, decks, locations).Summary(context.Background(), "u1")
	require.NoError(t, err)
	assert.NotNil(t, summary.ByDeck)
	assert.Empty(t, summary.ByDeck)
	assert.NotNil(t, summary.ByLocation)
	assert.Empty(t, summary.ByLocation)
}

func TestStatsService_Summary_LoadFailure(t *testing.T) {
	sessions := new(mocks.MockSessionRepository)
	decks := new(mocks.MockDeckRepository)
	locations := new(mocks.MockLocationRepository)
	sessions.On("List", mock.Anything, mock.Anything).Return(nil, stderrors.New("db down"))
	decks.On("List", mock.Anything, "u1").Return([]models.Deck{}, nil)
	locations.On("List", mock.Anything, "u1").Return([]models.FavoriteLocation{}, nil)

	_, err := services.NewStatsService(sessions, decks, locations).Summary(context.Background(), "u1")
	assert.True(t, errors.HasCode(err, errors.ErrCodeInternal))
}
