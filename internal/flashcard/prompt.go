package flashcard

import "github.com/vytor/studyflash/internal/models"

// Prompt returns content with everything that gives the answer away removed.
// Front/back cards are returned whole since the back is only flipped to.
func Prompt(content models.Content) models.Content {
	switch c := content.(type) {
	case models.Cloze:
		return models.Cloze{TextWithBlanks: MaskCloze(c.TextWithBlanks)}
	case models.FreeText:
		return models.FreeText{Question: c.Question}
	case models.MultipleChoice:
		return models.MultipleChoice{Question: c.Question, Options: c.Options}
	}
	return content
}
