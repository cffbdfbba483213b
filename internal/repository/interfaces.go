package repository

import (
	"context"

	"github.com/vytor/studyflash/internal/models"
)

// Lookups of a single row return sql.ErrNoRows when nothing matches, as do
// updates and deletes that touch no row.

// UserRepository handles user data access
type UserRepository interface {
	Get(ctx context.Context, id string) (*models.User, error)
	Upsert(ctx context.Context, username string) (*models.User, error)
}

// DeckRepository handles deck data access
type DeckRepository interface {
	Get(ctx context.Context, id string) (*models.Deck, error)
	List(ctx context.Context, ownerID string) ([]models.Deck, error)
	Insert(ctx context.Context, deck models.Deck) error
	// Delete removes the deck and its cards. Sessions recorded against it stay.
	Delete(ctx context.Context, id string) error
}

// FlashcardRepository handles flashcard data access. Insert and Delete keep
// the owning deck's card count in step within the same transaction.
type FlashcardRepository interface {
	Get(ctx context.Context, deckID, id string) (*models.Flashcard, error)
	ListByDeck(ctx context.Context, deckID string) ([]models.Flashcard, error)
	Insert(ctx context.Context, card models.Flashcard) error
	Update(ctx context.Context, card models.Flashcard) error
	UpdateReviewCounters(ctx context.Context, card models.Flashcard) error
	Delete(ctx context.Context, deckID, id string) error
}

// SessionRepository handles completed study session data access. Sessions
// are append-only.
type SessionRepository interface {
	Insert(ctx context.Context, stat models.SessionStat) error
	Get(ctx context.Context, id string) (*models.SessionStat, error)
	List(ctx context.Context, filter models.SessionFilter) ([]models.SessionStat, error)
}

// LocationRepository handles favorite location data access
type LocationRepository interface {
	Get(ctx context.Context, id string) (*models.FavoriteLocation, error)
	List(ctx context.Context, ownerID string) ([]models.FavoriteLocation, error)
	Insert(ctx context.Context, loc models.FavoriteLocation) error
	Delete(ctx context.Context, id string) error
}

// ChatRepository handles chat message data access
type ChatRepository interface {
	Insert(ctx context.Context, msg models.ChatMessage) error
	UpdateStatus(ctx context.Context, id string, status models.ChatStatus) error
	// List returns the latest limit messages, oldest first. limit <= 0 means all.
	List(ctx context.Context, ownerID string, limit int) ([]models.ChatMessage, error)
}
