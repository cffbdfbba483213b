package flashcard

import (
	"fmt"
	"strings"

	"github.com/vytor/studyflash/internal/models"
)

// MultipleChoiceOptions is the number of options a multiple choice card must carry.
const MultipleChoiceOptions = 4

// ValidationError names the offending field of an invalid card.
type ValidationError struct {
	Field  string
	Reason string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("%s %s", e.Field, e.Reason)
}

func invalid(field, reason string) error {
	return &ValidationError{Field: field, Reason: reason}
}

// Normalize fills derived fields and checks that content is well formed.
// A cloze card with no answers gets them from its markers.
func Normalize(content models.Content) (models.Content, error) {
	switch c := content.(type) {
	case models.FrontBack:
		if strings.TrimSpace(c.Front) == "" {
			return nil, invalid("front", "cannot be empty")
		}
		if strings.TrimSpace(c.Back) == "" {
			return nil, invalid("back", "cannot be empty")
		}
		return c, nil
	case models.Cloze:
		markers := ParseClozeMarkers(c.TextWithBlanks)
		if len(markers) == 0 {
			return nil, invalid("text_with_blanks", "must contain at least one {{label::answer}} marker")
		}
		if len(c.Answers) == 0 {
			c.Answers = ClozeAnswers(c.TextWithBlanks)
		}
		for _, m := range markers {
			if _, ok := c.Answers[m.Label]; !ok {
				return nil, invalid("answers", fmt.Sprintf("missing answer for blank %q", m.Label))
			}
		}
		return c, nil
	case models.FreeText:
		if strings.TrimSpace(c.Question) == "" {
			return nil, invalid("question", "cannot be empty")
		}
		answers := make([]string, 0, len(c.ValidAnswers))
		for _, a := range c.ValidAnswers {
			if a = strings.TrimSpace(a); a != "" {
				answers = append(answers, a)
			}
		}
		if len(answers) == 0 {
			return nil, invalid("valid_answers", "must contain at least one answer")
		}
		c.ValidAnswers = answers
		return c, nil
	case models.MultipleChoice:
		if strings.TrimSpace(c.Question) == "" {
			return nil, invalid("question", "cannot be empty")
		}
		if len(c.Options) != MultipleChoiceOptions {
			return nil, invalid("options", fmt.Sprintf("must contain exactly %d options", MultipleChoiceOptions))
		}
		found := false
		for i, o := range c.Options {
			if o.Text == "" && o.ImageRef == "" {
				return nil, invalid("options", fmt.Sprintf("option %d needs text or an image", i+1))
			}
			if o == c.CorrectOption {
				found = true
			}
		}
		if !found {
			return nil, invalid("correct_option", "must equal one of the options")
		}
		return c, nil
	case nil:
		return nil, invalid("content", "is required")
	default:
		return nil, invalid("type", fmt.Sprintf("unsupported content %T", content))
	}
}
