package session

import (
	"math"

	"github.com/vytor/studyflash/internal/flashcard"
)

// Round2 rounds to two decimal places, halves away from zero.
func Round2(v float64) float64 {
	return math.Round(v*100) / 100
}

// ClampScore limits a score to [0, 10]. NaN counts as 0.
func ClampScore(v float64) float64 {
	switch {
	case math.IsNaN(v), v < 0:
		return 0
	case v > flashcard.MaxScore:
		return flashcard.MaxScore
	}
	return v
}
