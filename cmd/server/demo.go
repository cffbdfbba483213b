package main

import (
	"context"
	"encoding/json"
	"fmt"
	"math"
	"math/rand/v2"
	"os"

	"github.com/spf13/cobra"
	"github.com/vytor/studyflash/internal/db"
	"github.com/vytor/studyflash/internal/errors"
	"github.com/vytor/studyflash/internal/flashcard"
	"github.com/vytor/studyflash/internal/logger"
	"github.com/vytor/studyflash/internal/models"
	"github.com/vytor/studyflash/internal/repository"
	"github.com/vytor/studyflash/internal/repository/sqlite"
	"github.com/vytor/studyflash/internal/services"
	"github.com/vytor/studyflash/internal/session"
)

func newDemoSessionCommand(debugMode *bool) *cobra.Command {
	var deckID, userID string
	cmd := &cobra.Command{
		Use:   "demo-session",
		Short: "Store a sample study session for a deck",
		Long: "Records one answer of every card type with random outcomes and a random " +
			"location, then stores the finished session so stats have something to show.",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg := loadConfig(*debugMode)
			database, err := db.Open(cfg.DBPath)
			if err != nil {
				return err
			}
			defer database.Close()

			stat, err := writeDemoSession(cmd.Context(),
				services.NewDeckService(sqlite.NewDeckRepository(database.DB)),
				sqlite.NewSessionRepository(database.DB),
				userID, deckID, rand.New(rand.NewPCG(rand.Uint64(), rand.Uint64())))
			if err != nil {
				return err
			}

			enc := json.NewEncoder(os.Stdout)
			enc.SetIndent("", "  ")
			return enc.Encode(stat)
		},
	}
	cmd.Flags().StringVar(&deckID, "deck", "", "deck to record the session against")
	cmd.Flags().StringVar(&userID, "user", "", "owner of the deck")
	_ = cmd.MarkFlagRequired("deck")
	_ = cmd.MarkFlagRequired("user")
	return cmd
}

// writeDemoSession answers one card of each type with random outcomes and
// stores the result.
func writeDemoSession(
	ctx context.Context,
	decks services.DeckService,
	sessions repository.SessionRepository,
	userID, deckID string,
	rng *rand.Rand,
) (models.SessionStat, error) {
	log := logger.FromContext(ctx).WithPrefix("demo")

	if _, err := decks.Get(ctx, userID, deckID); err != nil {
		return models.SessionStat{}, err
	}

	agg := session.New(deckID, userID)
	blanksTotal := 3
	blanksCorrect := rng.IntN(blanksTotal + 1)

	steps := []error{
		agg.RecordFrontBack("demo-front-back"),
		agg.RecordMultipleChoice("demo-multiple-choice", rng.IntN(2) == 1),
		agg.RecordCloze("demo-cloze", session.ClozeOutcome{BlanksCorrect: &blanksCorrect, BlanksTotal: &blanksTotal}),
		agg.RecordFreeText("demo-free-text", session.Round2(rng.Float64()*flashcard.MaxScore)),
		agg.SetLocation(round6(rng.Float64()*180-90), round6(rng.Float64()*360-180)),
	}
	for _, err := range steps {
		if err != nil {
			return models.SessionStat{}, fmt.Errorf("building demo session: %w", err)
		}
	}

	stat := agg.Build()
	if err := sessions.Insert(ctx, stat); err != nil {
		log.Error("failed to store demo session: %v", err)
		return models.SessionStat{}, errors.NewInternalError(err)
	}
	log.Info("demo session stored: id=%s, score=%.2f/%.2f", stat.ID, stat.TotalScore, stat.TotalPossible)
	return stat, nil
}

func round6(v float64) float64 {
	return math.Round(v*1e6) / 1e6
}
