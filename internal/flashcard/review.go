package flashcard

import (
	"time"

	"github.com/vytor/studyflash/internal/models"
)

// ApplyReview records that the card was reviewed once more. Ease factor and
// interval are carried as stored; no schedule is derived from them.
func ApplyReview(card models.Flashcard, now time.Time) models.Flashcard {
	if card.EaseFactor == 0 {
		card.EaseFactor = models.DefaultEaseFactor
	}
	if card.IntervalDays == 0 {
		card.IntervalDays = models.DefaultIntervalDays
	}
	card.RepetitionCount++
	card.UpdatedAt = now
	return card
}
