package models

// ReviewResult is the graded outcome of one card within one session.
// MaxScore is 0 for front/back cards and 10 for every other type.
type ReviewResult struct {
	CardID   string   `json:"card_id"`
	CardType CardType `json:"card_type"`
	Score    float64  `json:"score"`
	MaxScore float64  `json:"max_score"`
}

// SessionStat is one completed study session. Timestamps are epoch milliseconds.
type SessionStat struct {
	ID              string                  `json:"id"`
	DeckID          string                  `json:"deck_id"`
	OwnerID         string                  `json:"owner_id"`
	StartedAt       int64                   `json:"started_at"`
	FinishedAt      int64                   `json:"finished_at"`
	TotalScore      float64                 `json:"total_score"`
	TotalPossible   float64                 `json:"total_possible"`
	TotalQuestions  int                     `json:"total_questions"`
	GradedQuestions int                     `json:"graded_questions"`
	Latitude        *float64                `json:"latitude,omitempty"`
	Longitude       *float64                `json:"longitude,omitempty"`
	Results         map[string]ReviewResult `json:"results"`
}

// HasLocation reports whether the session carries both coordinates.
func (s SessionStat) HasLocation() bool {
	return s.Latitude != nil && s.Longitude != nil
}

type SessionFilter struct {
	OwnerID string
	DeckID  string
	From    int64 // epoch millis, inclusive; 0 means unbounded
	To      int64 // epoch millis, exclusive; 0 means unbounded
	Limit   int
	Offset  int
}
