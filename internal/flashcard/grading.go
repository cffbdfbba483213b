package flashcard

import (
	"strings"

	"github.com/vytor/studyflash/internal/models"
)

// MaxScore is the score awarded to a fully correct graded card.
const MaxScore = 10.0

// GradeMultipleChoice reports whether the submitted option equals the card's
// correct option by value.
func GradeMultipleChoice(card models.MultipleChoice, submitted models.Option) bool {
	return submitted == card.CorrectOption
}

// ClozeGrade is the per-blank verdict for one cloze answer.
type ClozeGrade struct {
	Correct       bool
	Feedback      map[string]bool
	BlanksCorrect int
	BlanksTotal   int
}

// GradeCloze compares each expected blank with the user's text for the same
// label, ignoring case. A label the user left out counts as an empty answer.
func GradeCloze(card models.Cloze, submitted map[string]string) ClozeGrade {
	grade := ClozeGrade{
		Correct:  true,
		Feedback: make(map[string]bool, len(card.Answers)),
	}
	for label, expected := range card.Answers {
		ok := strings.EqualFold(expected, submitted[label])
		grade.Feedback[label] = ok
		grade.BlanksTotal++
		if ok {
			grade.BlanksCorrect++
		} else {
			grade.Correct = false
		}
	}
	return grade
}

// MatchFreeText is the local check for free text cards: any valid answer
// matching exactly, ignoring case.
func MatchFreeText(card models.FreeText, answer string) bool {
	for _, valid := range card.ValidAnswers {
		if strings.EqualFold(valid, answer) {
			return true
		}
	}
	return false
}

// LocalFreeTextScore scores a free text answer without the remote grader.
func LocalFreeTextScore(card models.FreeText, answer string) (bool, float64) {
	if MatchFreeText(card, answer) {
		return true, MaxScore
	}
	return false, 0
}
