package session_test

import (
	"math"
	"math/rand"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/vytor/studyflash/internal/models"
	"github.com/vytor/studyflash/internal/session"
)

func intPtr(v int) *int { return &v }

func floatPtr(v float64) *float64 { return &v }

type stepClock struct {
	t    time.Time
	step time.Duration
}

func (c *stepClock) Now() time.Time {
	now := c.t
	c.t = c.t.Add(c.step)
	return now
}

func newAggregator(t *testing.T) (*session.Aggregator, *stepClock) {
	t.Helper()
	clock := &stepClock{t: time.Date(2024, 6, 1, 10, 0, 0, 0, time.UTC), step: time.Minute}
	return session.New("deck-1", "user-1", session.WithClock(clock.Now), session.WithID("s-1")), clock
}

func TestRecordFrontBack_IsUngraded(t *testing.T) {
	agg, _ := newAggregator(t)
	require.NoError(t, agg.RecordFrontBack("fb"))

	stat := agg.Build()
	assert.Equal(t, 1, stat.TotalQuestions)
	assert.Equal(t, 0, stat.GradedQuestions)
	assert.Equal(t, 0.0, stat.TotalScore)
	assert.Equal(t, 0.0, stat.TotalPossible)
	assert.Equal(t, models.ReviewResult{CardID: "fb", CardType: models.CardTypeFrontBack}, stat.Results["fb"])
}

func TestRecordMultipleChoice(t *testing.T) {
	agg, _ := newAggregator(t)
	require.NoError(t, agg.RecordMultipleChoice("right", true))
	require.NoError(t, agg.RecordMultipleChoice("wrong", false))

	stat := agg.Build()
	assert.Equal(t, 10.0, stat.Results["right"].Score)
	assert.Equal(t, 10.0, stat.Results["right"].MaxScore)
	assert.Equal(t, 0.0, stat.Results["wrong"].Score)
	assert.Equal(t, 10.0, stat.TotalScore)
	assert.Equal(t, 20.0, stat.TotalPossible)
	assert.Equal(t, 2, stat.GradedQuestions)
}

func TestRecordCloze_Resolution(t *testing.T) {
	tests := []struct {
		name    string
		outcome session.ClozeOutcome
		want    float64
	}{
		{"partial credit", session.ClozeOutcome{BlanksCorrect: intPtr(1), BlanksTotal: intPtr(2)}, 5.0},
		{"ai score wins", session.ClozeOutcome{BlanksCorrect: intPtr(2), BlanksTotal: intPtr(2), AIScore: floatPtr(3.5)}, 3.5},
		{"ai score clamped high", session.ClozeOutcome{AIScore: floatPtr(14)}, 10.0},
		{"ai score clamped low", session.ClozeOutcome{AIScore: floatPtr(-2)}, 0.0},
		{"ai score NaN", session.ClozeOutcome{AIScore: floatPtr(math.NaN())}, 0.0},
		{"zero total", session.ClozeOutcome{BlanksCorrect: intPtr(0), BlanksTotal: intPtr(0)}, 0.0},
		{"only one count", session.ClozeOutcome{BlanksCorrect: intPtr(1)}, 0.0},
		{"nothing", session.ClozeOutcome{}, 0.0},
		{"more correct than total", session.ClozeOutcome{BlanksCorrect: intPtr(3), BlanksTotal: intPtr(2)}, 10.0},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			agg, _ := newAggregator(t)
			require.NoError(t, agg.RecordCloze("c1", tt.outcome))

			stat := agg.Build()
			assert.Equal(t, tt.want, stat.Results["c1"].Score)
			assert.Equal(t, 10.0, stat.Results["c1"].MaxScore)
			assert.Equal(t, 1, stat.GradedQuestions)
		})
	}
}

func TestRecordFreeText_Clamps(t *testing.T) {
	agg, _ := newAggregator(t)
	require.NoError(t, agg.RecordFreeText("a", 11.5))
	require.NoError(t, agg.RecordFreeText("b", -0.5))
	require.NoError(t, agg.RecordFreeText("c", 7.25))

	stat := agg.Build()
	assert.Equal(t, 10.0, stat.Results["a"].Score)
	assert.Equal(t, 0.0, stat.Results["b"].Score)
	assert.Equal(t, 7.25, stat.Results["c"].Score)
	assert.Equal(t, 17.25, stat.TotalScore)
}

func TestRegrade_OverwritesResultButCountsEveryCall(t *testing.T) {
	agg, _ := newAggregator(t)
	require.NoError(t, agg.RecordMultipleChoice("q", false))
	require.NoError(t, agg.RecordMultipleChoice("q", true))

	stat := agg.Build()
	assert.Len(t, stat.Results, 1)
	assert.Equal(t, 10.0, stat.Results["q"].Score)
	assert.Equal(t, 2, stat.TotalQuestions)
	assert.Equal(t, 2, stat.GradedQuestions)
	assert.LessOrEqual(t, stat.TotalScore, stat.TotalPossible)
}

func TestResults_KeepFirstAnswerOrder(t *testing.T) {
	agg, _ := newAggregator(t)
	require.NoError(t, agg.RecordFrontBack("b"))
	require.NoError(t, agg.RecordFreeText("a", 5))
	require.NoError(t, agg.RecordFrontBack("b"))

	results := agg.Results()
	require.Len(t, results, 2)
	assert.Equal(t, "b", results[0].CardID)
	assert.Equal(t, "a", results[1].CardID)
}

func TestCounters_MatchCalls(t *testing.T) {
	rng := rand.New(rand.NewSource(7))
	for run := 0; run < 20; run++ {
		agg := session.New("d", "u")
		frontBack, others := 0, 0
		for i := 0; i < 40; i++ {
			id := string(rune('a' + rng.Intn(10)))
			switch rng.Intn(4) {
			case 0:
				require.NoError(t, agg.RecordFrontBack(id))
				frontBack++
			case 1:
				require.NoError(t, agg.RecordMultipleChoice(id, rng.Intn(2) == 0))
				others++
			case 2:
				require.NoError(t, agg.RecordCloze(id, session.ClozeOutcome{BlanksCorrect: intPtr(rng.Intn(4)), BlanksTotal: intPtr(3)}))
				others++
			default:
				require.NoError(t, agg.RecordFreeText(id, rng.Float64()*14-2))
				others++
			}
		}
		stat := agg.Build()
		assert.Equal(t, frontBack+others, stat.TotalQuestions)
		assert.Equal(t, others, stat.GradedQuestions)
		assert.GreaterOrEqual(t, stat.TotalQuestions, stat.GradedQuestions)
		assert.LessOrEqual(t, stat.TotalScore, stat.TotalPossible)
		assert.GreaterOrEqual(t, stat.FinishedAt, stat.StartedAt)
	}
}

func TestTotalScore_IndependentOfOrder(t *testing.T) {
	scores := []float64{3.33, 6.67, 0.1, 0.2, 9.99, 7.12, 2.5, 5.55}

	var want float64
	rng := rand.New(rand.NewSource(42))
	for run := 0; run < 50; run++ {
		order := rng.Perm(len(scores))
		agg := session.New("d", "u")
		for _, i := range order {
			require.NoError(t, agg.RecordFreeText(string(rune('a'+i)), scores[i]))
		}
		got := agg.Build().TotalScore
		if run == 0 {
			want = got
		}
		assert.Equal(t, want, got)
	}
	assert.InDelta(t, 35.46, want, 1e-9)
}

func TestTotalScore_RoundsToHundredths(t *testing.T) {
	agg, _ := newAggregator(t)
	require.NoError(t, agg.RecordFreeText("a", 3.333))
	require.NoError(t, agg.RecordFreeText("b", 3.333))

	assert.Equal(t, 6.67, agg.Build().TotalScore)
}

func TestBuild_IsSingleUse(t *testing.T) {
	agg, _ := newAggregator(t)
	require.NoError(t, agg.RecordMultipleChoice("q", true))

	first := agg.Build()
	second := agg.Build()
	assert.Equal(t, first, second)
	assert.True(t, agg.Built())

	assert.ErrorIs(t, agg.RecordFrontBack("x"), session.ErrFinalized)
	assert.ErrorIs(t, agg.RecordMultipleChoice("x", true), session.ErrFinalized)
	assert.ErrorIs(t, agg.RecordCloze("x", session.ClozeOutcome{}), session.ErrFinalized)
	assert.ErrorIs(t, agg.RecordFreeText("x", 1), session.ErrFinalized)
	assert.ErrorIs(t, agg.SetLocation(1, 1), session.ErrFinalized)
	assert.Equal(t, first, agg.Build())
}

func TestBuild_ReturnsSnapshot(t *testing.T) {
	agg, _ := newAggregator(t)
	require.NoError(t, agg.RecordFreeText("a", 4))

	stat := agg.Build()
	stat.Results["a"] = models.ReviewResult{CardID: "a", Score: 0}
	delete(stat.Results, "a")

	assert.Equal(t, 4.0, agg.Build().Results["a"].Score)
}

func TestBuild_Timestamps(t *testing.T) {
	agg, clock := newAggregator(t)
	started := agg.StartedAt()

	stat := agg.Build()
	assert.Equal(t, started.UnixMilli(), stat.StartedAt)
	assert.Equal(t, started.Add(clock.step).UnixMilli(), stat.FinishedAt)
	assert.Equal(t, "s-1", stat.ID)
	assert.Equal(t, "deck-1", stat.DeckID)
	assert.Equal(t, "user-1", stat.OwnerID)
}

func TestBuild_ClockGoingBackwards(t *testing.T) {
	clock := &stepClock{t: time.Date(2024, 6, 1, 10, 0, 0, 0, time.UTC), step: -time.Hour}
	agg := session.New("d", "u", session.WithClock(clock.Now))

	stat := agg.Build()
	assert.Equal(t, stat.StartedAt, stat.FinishedAt)
}

func TestSetLocation(t *testing.T) {
	agg, _ := newAggregator(t)
	require.NoError(t, agg.SetLocation(-23.55, -46.63))
	assert.ErrorIs(t, agg.SetLocation(1, 1), session.ErrLocationSet)

	stat := agg.Build()
	require.True(t, stat.HasLocation())
	assert.Equal(t, -23.55, *stat.Latitude)
	assert.Equal(t, -46.63, *stat.Longitude)
}

func TestSetLocation_Invalid(t *testing.T) {
	agg, _ := newAggregator(t)
	assert.ErrorIs(t, agg.SetLocation(91, 0), session.ErrInvalidLocation)
	assert.ErrorIs(t, agg.SetLocation(0, -180.5), session.ErrInvalidLocation)
	assert.ErrorIs(t, agg.SetLocation(math.NaN(), 0), session.ErrInvalidLocation)

	require.NoError(t, agg.SetLocation(90, 180))
}

func TestRecord_EmptyCardID(t *testing.T) {
	agg, _ := newAggregator(t)
	assert.ErrorIs(t, agg.RecordFrontBack(""), session.ErrEmptyCardID)
	assert.Equal(t, 0, agg.Build().TotalQuestions)
}

func TestNew_GeneratesID(t *testing.T) {
	a := session.New("d", "u")
	b := session.New("d", "u")
	assert.NotEmpty(t, a.ID())
	assert.NotEqual(t, a.ID(), b.ID())
}
