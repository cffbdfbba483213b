package models

import (
	"encoding/json"
	"fmt"
	"time"
)

type CardType string

const (
	CardTypeFrontBack      CardType = "FRONT_BACK"
	CardTypeCloze          CardType = "CLOZE"
	CardTypeFreeText       CardType = "FREE_TEXT"
	CardTypeMultipleChoice CardType = "MULTIPLE_CHOICE"
)

// Defaults for the review counters carried on every card. Nothing schedules
// reviews from them; they are bumped after each answer and otherwise left alone.
const (
	DefaultEaseFactor   = 2.5
	DefaultIntervalDays = 1
)

func (t CardType) Valid() bool {
	switch t {
	case CardTypeFrontBack, CardTypeCloze, CardTypeFreeText, CardTypeMultipleChoice:
		return true
	}
	return false
}

// Graded reports whether answers to this card type carry a score.
func (t CardType) Graded() bool {
	return t != CardTypeFrontBack
}

// Content is the type-specific part of a flashcard. Exactly one of
// FrontBack, Cloze, FreeText or MultipleChoice.
type Content interface {
	CardType() CardType
	isContent()
}

type FrontBack struct {
	Front string `json:"front"`
	Back  string `json:"back"`
}

type Cloze struct {
	TextWithBlanks string            `json:"text_with_blanks"`
	Answers        map[string]string `json:"answers"`
}

type FreeText struct {
	Question     string   `json:"question"`
	ValidAnswers []string `json:"valid_answers"`
}

type MultipleChoice struct {
	Question      string   `json:"question"`
	Options       []Option `json:"options"`
	CorrectOption Option   `json:"correct_option"`
}

// Option is one answer of a multiple choice card. Options compare by value.
type Option struct {
	Text     string `json:"text,omitempty"`
	ImageRef string `json:"image_ref,omitempty"`
}

func (FrontBack) CardType() CardType      { return CardTypeFrontBack }
func (Cloze) CardType() CardType          { return CardTypeCloze }
func (FreeText) CardType() CardType       { return CardTypeFreeText }
func (MultipleChoice) CardType() CardType { return CardTypeMultipleChoice }

func (FrontBack) isContent()      {}
func (Cloze) isContent()          {}
func (FreeText) isContent()       {}
func (MultipleChoice) isContent() {}

type Flashcard struct {
	ID               string    `json:"id"`
	DeckID           string    `json:"deck_id"`
	OwnerID          string    `json:"owner_id"`
	QuestionImageRef string    `json:"question_image_ref,omitempty"`
	QuestionAudioRef string    `json:"question_audio_ref,omitempty"`
	EaseFactor       float64   `json:"ease_factor"`
	RepetitionCount  int       `json:"repetition_count"`
	IntervalDays     int       `json:"interval_days"`
	Content          Content   `json:"-"`
	CreatedAt        time.Time `json:"created_at"`
	UpdatedAt        time.Time `json:"updated_at"`
}

// Type returns the card's variant tag, or "" when no content is set.
func (f Flashcard) Type() CardType {
	if f.Content == nil {
		return ""
	}
	return f.Content.CardType()
}

type flashcardAlias Flashcard

type flashcardJSON struct {
	flashcardAlias
	Type    CardType        `json:"type"`
	Content json.RawMessage `json:"content"`
}

func (f Flashcard) MarshalJSON() ([]byte, error) {
	content, err := json.Marshal(f.Content)
	if err != nil {
		return nil, err
	}
	return json.Marshal(flashcardJSON{
		flashcardAlias: flashcardAlias(f),
		Type:           f.Type(),
		Content:        content,
	})
}

func (f *Flashcard) UnmarshalJSON(data []byte) error {
	var raw flashcardJSON
	if err := json.Unmarshal(data, &raw); err != nil {
		return err
	}
	content, err := DecodeContent(raw.Type, raw.Content)
	if err != nil {
		return err
	}
	*f = Flashcard(raw.flashcardAlias)
	f.Content = content
	return nil
}

// DecodeContent decodes the variant payload selected by t.
func DecodeContent(t CardType, data []byte) (Content, error) {
	if len(data) == 0 || string(data) == "null" {
		data = []byte("{}")
	}
	switch t {
	case CardTypeFrontBack:
		var c FrontBack
		err := json.Unmarshal(data, &c)
		return c, err
	case CardTypeCloze:
		var c Cloze
		err := json.Unmarshal(data, &c)
		return c, err
	case CardTypeFreeText:
		var c FreeText
		err := json.Unmarshal(data, &c)
		return c, err
	case CardTypeMultipleChoice:
		var c MultipleChoice
		err := json.Unmarshal(data, &c)
		return c, err
	default:
		return nil, fmt.Errorf("unknown card type %q", t)
	}
}
