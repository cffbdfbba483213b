package models

import "time"

// StudySession describes an in-progress pass over a shuffled deck.
type StudySession struct {
	ID        string    `json:"id"`
	DeckID    string    `json:"deck_id"`
	OwnerID   string    `json:"owner_id"`
	CardIDs   []string  `json:"card_ids"`
	Answered  int       `json:"answered"`
	StartedAt time.Time `json:"started_at"`
	ExpiresAt time.Time `json:"expires_at"`
}

// Answer is what a user submits for one card. Which field is read depends on
// the card type: nothing for front/back, Option for multiple choice,
// Blanks for cloze and Text for free text.
type Answer struct {
	CardID string            `json:"card_id" validate:"required"`
	Option *Option           `json:"option,omitempty"`
	Blanks map[string]string `json:"blanks,omitempty"`
	Text   string            `json:"text,omitempty"`
}

type GradeSource string

const (
	GradeSourceNone   GradeSource = "none"
	GradeSourceLocal  GradeSource = "local"
	GradeSourceRemote GradeSource = "remote"
)

type AnswerOutcome struct {
	CardID        string          `json:"card_id"`
	CardType      CardType        `json:"card_type"`
	Correct       *bool           `json:"correct,omitempty"`
	Score         float64         `json:"score"`
	MaxScore      float64         `json:"max_score"`
	ClozeFeedback map[string]bool `json:"cloze_feedback,omitempty"`
	Source        GradeSource     `json:"source"`
}

type GeofenceTransition string

const (
	GeofenceEnter GeofenceTransition = "ENTER"
	GeofenceExit  GeofenceTransition = "EXIT"
)

// CurrentLocation is the favorite location a user is currently inside, if any.
type CurrentLocation struct {
	OwnerID  string            `json:"owner_id"`
	Location *FavoriteLocation `json:"location"`
	Since    time.Time         `json:"since"`
}
