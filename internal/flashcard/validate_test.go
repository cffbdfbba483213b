package flashcard_test

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/vytor/studyflash/internal/flashcard"
	"github.com/vytor/studyflash/internal/models"
)

func fourOptions() []models.Option {
	return []models.Option{{Text: "a"}, {Text: "b"}, {Text: "c"}, {ImageRef: "d.png"}}
}

func TestNormalize_Valid(t *testing.T) {
	tests := []struct {
		name    string
		content models.Content
	}{
		{"front back", models.FrontBack{Front: "hola", Back: "hello"}},
		{"cloze", models.Cloze{TextWithBlanks: "{{x::1}}", Answers: map[string]string{"x": "1"}}},
		{"free text", models.FreeText{Question: "q", ValidAnswers: []string{"a"}}},
		{"multiple choice", models.MultipleChoice{Question: "q", Options: fourOptions(), CorrectOption: models.Option{ImageRef: "d.png"}}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := flashcard.Normalize(tt.content)
			require.NoError(t, err)
			assert.Equal(t, tt.content.CardType(), got.CardType())
		})
	}
}

func TestNormalize_Invalid(t *testing.T) {
	tests := []struct {
		name    string
		content models.Content
		field   string
	}{
		{"nil", nil, "content"},
		{"front missing", models.FrontBack{Back: "b"}, "front"},
		{"back missing", models.FrontBack{Front: "f"}, "back"},
		{"cloze without markers", models.Cloze{TextWithBlanks: "no blanks"}, "text_with_blanks"},
		{"cloze answer missing", models.Cloze{TextWithBlanks: "{{x::1}} {{y::2}}", Answers: map[string]string{"x": "1"}}, "answers"},
		{"free text no answers", models.FreeText{Question: "q", ValidAnswers: []string{" "}}, "valid_answers"},
		{"multiple choice three options", models.MultipleChoice{Question: "q", Options: fourOptions()[:3], CorrectOption: models.Option{Text: "a"}}, "options"},
		{"multiple choice correct not an option", models.MultipleChoice{Question: "q", Options: fourOptions(), CorrectOption: models.Option{Text: "z"}}, "correct_option"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := flashcard.Normalize(tt.content)
			require.Error(t, err)
			var verr *flashcard.ValidationError
			require.ErrorAs(t, err, &verr)
			assert.Equal(t, tt.field, verr.Field)
		})
	}
}

func TestNormalize_DerivesClozeAnswers(t *testing.T) {
	got, err := flashcard.Normalize(models.Cloze{TextWithBlanks: "{{a::one}} and {{b::two}}"})
	require.NoError(t, err)

	cloze := got.(models.Cloze)
	assert.Equal(t, map[string]string{"a": "one", "b": "two"}, cloze.Answers)
}

func TestNormalize_TrimsFreeTextAnswers(t *testing.T) {
	got, err := flashcard.Normalize(models.FreeText{Question: "q", ValidAnswers: []string{" Jupiter ", "", "Zeus"}})
	require.NoError(t, err)
	assert.Equal(t, []string{"Jupiter", "Zeus"}, got.(models.FreeText).ValidAnswers)
}

func TestApplyReview_IncrementsRepetitions(t *testing.T) {
	now := time.Date(2024, 5, 1, 9, 0, 0, 0, time.UTC)
	card := models.Flashcard{RepetitionCount: 3, EaseFactor: 2.1, IntervalDays: 4}

	updated := flashcard.ApplyReview(card, now)

	assert.Equal(t, 4, updated.RepetitionCount)
	assert.Equal(t, 2.1, updated.EaseFactor)
	assert.Equal(t, 4, updated.IntervalDays)
	assert.Equal(t, now, updated.UpdatedAt)
}

func TestApplyReview_FillsDefaults(t *testing.T) {
	updated := flashcard.ApplyReview(models.Flashcard{}, time.Now())

	assert.Equal(t, 1, updated.RepetitionCount)
	assert.Equal(t, models.DefaultEaseFactor, updated.EaseFactor)
	assert.Equal(t, models.DefaultIntervalDays, updated.IntervalDays)
}
