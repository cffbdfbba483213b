package main

import (
	"context"
	"math"
	"math/rand/v2"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/vytor/studyflash/internal/errors"
	"github.com/vytor/studyflash/internal/models"
	"github.com/vytor/studyflash/internal/repository/sqlite"
	"github.com/vytor/studyflash/internal/services"
	"github.com/vytor/studyflash/internal/testutil"
)

func TestWriteDemoSession(t *testing.T) {
	conn := testutil.NewTestDB(t)
	defer testutil.MustClose(t, conn)
	ctx := context.Background()

	testutil.InsertUser(t, conn, "u-1", "alice")
	deckRepo := sqlite.NewDeckRepository(conn)
	require.NoError(t, deckRepo.Insert(ctx, models.Deck{ID: "d-1", OwnerID: "u-1", Name: "Demo", CreatedAt: time.Now().UTC()}))
	sessionRepo := sqlite.NewSessionRepository(conn)

	stat, err := writeDemoSession(ctx, services.NewDeckService(deckRepo), sessionRepo,
		"u-1", "d-1", rand.New(rand.NewPCG(1, 2)))
	require.NoError(t, err)

	assert.Equal(t, 4, stat.TotalQuestions)
	assert.Equal(t, 3, stat.GradedQuestions)
	assert.Equal(t, 30.0, stat.TotalPossible)
	require.True(t, stat.HasLocation())
	assert.Equal(t, *stat.Latitude, math.Round(*stat.Latitude*1e6)/1e6)
	assert.Equal(t, *stat.Longitude, math.Round(*stat.Longitude*1e6)/1e6)

	stored, err := sessionRepo.Get(ctx, stat.ID)
	require.NoError(t, err)
	assert.Len(t, stored.Results, 4)
	assert.Equal(t, models.CardTypeCloze, stored.Results["demo-cloze"].CardType)
}

func TestWriteDemoSession_RequiresOwnedDeck(t *testing.T) {
	conn := testutil.NewTestDB(t)
	defer testutil.MustClose(t, conn)
	ctx := context.Background()

	testutil.InsertUser(t, conn, "u-1", "alice")
	testutil.InsertUser(t, conn, "u-2", "bob")
	deckRepo := sqlite.NewDeckRepository(conn)
	require.NoError(t, deckRepo.Insert(ctx, models.Deck{ID: "d-1", OwnerID: "u-1", Name: "Demo", CreatedAt: time.Now().UTC()}))

	_, err := writeDemoSession(ctx, services.NewDeckService(deckRepo), sqlite.NewSessionRepository(conn),
		"u-2", "d-1", rand.New(rand.NewPCG(1, 2)))
	require.Error(t, err)
	assert.True(t, errors.HasCode(err, errors.ErrCodeNotFound))
}
