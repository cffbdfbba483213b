// Package session accumulates the graded answers of one study pass and
// finalizes them into a SessionStat.
package session

import (
	"errors"
	"math"
	"sort"
	"time"

	"github.com/google/uuid"
	"github.com/vytor/studyflash/internal/flashcard"
	"github.com/vytor/studyflash/internal/models"
)

var (
	ErrFinalized       = errors.New("session already built")
	ErrEmptyCardID     = errors.New("card id cannot be empty")
	ErrLocationSet     = errors.New("session location already set")
	ErrInvalidLocation = errors.New("latitude must be within [-90, 90] and longitude within [-180, 180]")
)

// ClozeOutcome carries whatever grading information is available for a cloze
// answer. AIScore wins over the blank counts when both are present.
type ClozeOutcome struct {
	BlanksCorrect *int
	BlanksTotal   *int
	AIScore       *float64
}

// Aggregator is owned by exactly one study session and is not safe for
// concurrent use. Once Build is called every Record method and SetLocation
// returns ErrFinalized.
type Aggregator struct {
	id        string
	deckID    string
	ownerID   string
	now       func() time.Time
	startedAt time.Time

	order   []string
	results map[string]models.ReviewResult

	// one entry per graded call; summed in sorted order so the total does not
	// depend on the order answers arrived in
	scores []float64

	totalQuestions  int
	gradedQuestions int

	latitude  *float64
	longitude *float64

	built *models.SessionStat
}

type Option func(*Aggregator)

// WithClock overrides time.Now for start and finish timestamps.
func WithClock(now func() time.Time) Option {
	return func(a *Aggregator) { a.now = now }
}

// WithID sets the session id instead of generating one.
func WithID(id string) Option {
	return func(a *Aggregator) { a.id = id }
}

func New(deckID, ownerID string, opts ...Option) *Aggregator {
	a := &Aggregator{
		deckID:  deckID,
		ownerID: ownerID,
		now:     time.Now,
		results: make(map[string]models.ReviewResult),
	}
	for _, opt := range opts {
		opt(a)
	}
	if a.id == "" {
		a.id = uuid.NewString()
	}
	a.startedAt = a.now()
	return a
}

func (a *Aggregator) ID() string { return a.id }

func (a *Aggregator) StartedAt() time.Time { return a.startedAt }

func (a *Aggregator) Built() bool { return a.built != nil }

// RecordFrontBack counts a self-assessed card. It carries no score.
func (a *Aggregator) RecordFrontBack(cardID string) error {
	return a.record(models.ReviewResult{CardID: cardID, CardType: models.CardTypeFrontBack})
}

func (a *Aggregator) RecordMultipleChoice(cardID string, correct bool) error {
	score := 0.0
	if correct {
		score = flashcard.MaxScore
	}
	return a.record(graded(cardID, models.CardTypeMultipleChoice, score))
}

func (a *Aggregator) RecordCloze(cardID string, outcome ClozeOutcome) error {
	score := 0.0
	switch {
	case outcome.AIScore != nil:
		score = ClampScore(*outcome.AIScore)
	case outcome.BlanksCorrect != nil && outcome.BlanksTotal != nil && *outcome.BlanksTotal > 0:
		score = ClampScore(float64(*outcome.BlanksCorrect) / float64(*outcome.BlanksTotal) * flashcard.MaxScore)
	}
	return a.record(graded(cardID, models.CardTypeCloze, score))
}

func (a *Aggregator) RecordFreeText(cardID string, aiScore float64) error {
	return a.record(graded(cardID, models.CardTypeFreeText, ClampScore(aiScore)))
}

// SetLocation attaches where the session took place. It may be called once.
func (a *Aggregator) SetLocation(latitude, longitude float64) error {
	if a.built != nil {
		return ErrFinalized
	}
	if a.latitude != nil {
		return ErrLocationSet
	}
	if math.IsNaN(latitude) || math.IsNaN(longitude) ||
		latitude < -90 || latitude > 90 || longitude < -180 || longitude > 180 {
		return ErrInvalidLocation
	}
	a.latitude = &latitude
	a.longitude = &longitude
	return nil
}

// Results returns the current results in the order cards were first answered.
func (a *Aggregator) Results() []models.ReviewResult {
	out := make([]models.ReviewResult, 0, len(a.order))
	for _, id := range a.order {
		out = append(out, a.results[id])
	}
	return out
}

// Build finalizes the session. The first call fixes finishedAt and the totals;
// later calls return the same value.
func (a *Aggregator) Build() models.SessionStat {
	if a.built == nil {
		finished := a.now()
		if finished.Before(a.startedAt) {
			finished = a.startedAt
		}
		stat := models.SessionStat{
			ID:              a.id,
			DeckID:          a.deckID,
			OwnerID:         a.ownerID,
			StartedAt:       a.startedAt.UnixMilli(),
			FinishedAt:      finished.UnixMilli(),
			TotalScore:      Round2(sortedSum(a.scores)),
			TotalPossible:   Round2(float64(a.gradedQuestions) * flashcard.MaxScore),
			TotalQuestions:  a.totalQuestions,
			GradedQuestions: a.gradedQuestions,
			Latitude:        a.latitude,
			Longitude:       a.longitude,
			Results:         a.results,
		}
		a.built = &stat
	}
	return copyStat(*a.built)
}

func (a *Aggregator) record(result models.ReviewResult) error {
	if a.built != nil {
		return ErrFinalized
	}
	if result.CardID == "" {
		return ErrEmptyCardID
	}
	if _, seen := a.results[result.CardID]; !seen {
		a.order = append(a.order, result.CardID)
	}
	a.results[result.CardID] = result
	a.totalQuestions++
	if result.CardType.Graded() {
		a.gradedQuestions++
		a.scores = append(a.scores, result.Score)
	}
	return nil
}

func graded(cardID string, t models.CardType, score float64) models.ReviewResult {
	return models.ReviewResult{CardID: cardID, CardType: t, Score: score, MaxScore: flashcard.MaxScore}
}

func sortedSum(values []float64) float64 {
	sorted := append([]float64(nil), values...)
	sort.Float64s(sorted)
	total := 0.0
	for _, v := range sorted {
		total += v
	}
	return total
}

func copyStat(s models.SessionStat) models.SessionStat {
	results := make(map[string]models.ReviewResult, len(s.Results))
	for k, v := range s.Results {
		results[k] = v
	}
	s.Results = results
	if s.Latitude != nil {
		lat := *s.Latitude
		s.Latitude = &lat
	}
	if s.Longitude != nil {
		lng := *s.Longitude
		s.Longitude = &lng
	}
	return s
}
