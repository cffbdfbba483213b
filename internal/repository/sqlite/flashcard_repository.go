package sqlite

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/vytor/studyflash/internal/logger"
	"github.com/vytor/studyflash/internal/models"
	"github.com/vytor/studyflash/internal/repository"
)

const flashcardColumns = `id, deck_id, owner_id, type, content, question_image_ref, question_audio_ref,
       ease_factor, repetition_count, interval_days, created_at, updated_at`

type flashcardRepository struct {
	db *sql.DB
}

// NewFlashcardRepository creates a new FlashcardRepository implementation
func NewFlashcardRepository(db *sql.DB) repository.FlashcardRepository {
	return &flashcardRepository{db: db}
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanFlashcard(row rowScanner) (models.Flashcard, error) {
	var (
		c       models.Flashcard
		typ     string
		content string
	)
	if err := row.Scan(&c.ID, &c.DeckID, &c.OwnerID, &typ, &content, &c.QuestionImageRef, &c.QuestionAudioRef,
		&c.EaseFactor, &c.RepetitionCount, &c.IntervalDays, &c.CreatedAt, &c.UpdatedAt); err != nil {
		return models.Flashcard{}, err
	}
	decoded, err := models.DecodeContent(models.CardType(typ), []byte(content))
	if err != nil {
		return models.Flashcard{}, fmt.Errorf("decode flashcard %s: %w", c.ID, err)
	}
	c.Content = decoded
	return c, nil
}

func encodeContent(c models.Flashcard) (string, error) {
	if c.Content == nil {
		return "", errors.New("flashcard has no content")
	}
	data, err := json.Marshal(c.Content)
	if err != nil {
		return "", err
	}
	return string(data), nil
}

func (r *flashcardRepository) Get(ctx context.Context, deckID, id string) (*models.Flashcard, error) {
	log := logger.FromContext(ctx).WithPrefix("flashcard_repo")
	log.Debug("getting flashcard: deck_id=%s, id=%s", deckID, id)

	c, err := scanFlashcard(r.db.QueryRowContext(ctx, `
SELECT `+flashcardColumns+`
FROM flashcards
WHERE id = ? AND deck_id = ?
`, id, deckID))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			log.Debug("flashcard not found: id=%s", id)
		} else {
			log.Error("failed to get flashcard: %v", err)
		}
		return nil, err
	}
	return &c, nil
}

func (r *flashcardRepository) ListByDeck(ctx context.Context, deckID string) ([]models.Flashcard, error) {
	log := logger.FromContext(ctx).WithPrefix("flashcard_repo")
	log.Debug("listing flashcards: deck_id=%s", deckID)

	rows, err := r.db.QueryContext(ctx, `
SELECT `+flashcardColumns+`
FROM flashcards
WHERE deck_id = ?
ORDER BY created_at, id
`, deckID)
	if err != nil {
		log.Error("failed to query flashcards: %v", err)
		return nil, err
	}
	defer rows.Close()

	cards := []models.Flashcard{}
	for rows.Next() {
		c, err := scanFlashcard(rows)
		if err != nil {
			log.Error("failed to scan flashcard row: %v", err)
			return nil, err
		}
		cards = append(cards, c)
	}
	log.Debug("found %d flashcards", len(cards))
	return cards, rows.Err()
}

func (r *flashcardRepository) Insert(ctx context.Context, c models.Flashcard) error {
	log := logger.FromContext(ctx).WithPrefix("flashcard_repo")
	log.Debug("inserting flashcard: deck_id=%s, type=%s", c.DeckID, c.Type())

	content, err := encodeContent(c)
	if err != nil {
		log.Error("failed to encode flashcard content: %v", err)
		return err
	}

	err = tx(ctx, r.db, func(tx *sql.Tx) error {
		res, err := tx.ExecContext(ctx, `UPDATE decks SET card_count = card_count + 1 WHERE id = ?`, c.DeckID)
		if err != nil {
			return err
		}
		if err := requireAffected(res); err != nil {
			return err
		}
		_, err = tx.ExecContext(ctx, `
INSERT INTO flashcards (id, deck_id, owner_id, type, content, question_image_ref, question_audio_ref,
                        ease_factor, repetition_count, interval_days, created_at, updated_at)
VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
`, c.ID, c.DeckID, c.OwnerID, string(c.Type()), content, c.QuestionImageRef, c.QuestionAudioRef,
			c.EaseFactor, c.RepetitionCount, c.IntervalDays, c.CreatedAt, c.UpdatedAt)
		return err
	})
	if err != nil && !errors.Is(err, sql.ErrNoRows) {
		log.Error("failed to insert flashcard: %v", err)
	}
	return err
}

func (r *flashcardRepository) Update(ctx context.Context, c models.Flashcard) error {
	log := logger.FromContext(ctx).WithPrefix("flashcard_repo")
	log.Debug("updating flashcard: id=%s, type=%s", c.ID, c.Type())

	content, err := encodeContent(c)
	if err != nil {
		log.Error("failed to encode flashcard content: %v", err)
		return err
	}

	res, err := r.db.ExecContext(ctx, `
UPDATE flashcards
SET type = ?, content = ?, question_image_ref = ?, question_audio_ref = ?, updated_at = ?
WHERE id = ? AND deck_id = ?
`, string(c.Type()), content, c.QuestionImageRef, c.QuestionAudioRef, c.UpdatedAt, c.ID, c.DeckID)
	if err != nil {
		log.Error("failed to update flashcard: %v", err)
		return err
	}
	return requireAffected(res)
}

func (r *flashcardRepository) UpdateReviewCounters(ctx context.Context, c models.Flashcard) error {
	log := logger.FromContext(ctx).WithPrefix("flashcard_repo")
	log.Debug("updating review counters: id=%s, repetitions=%d", c.ID, c.RepetitionCount)

	res, err := r.db.ExecContext(ctx, `
UPDATE flashcards
SET ease_factor = ?, repetition_count = ?, interval_days = ?, updated_at = ?
WHERE id = ? AND deck_id = ?
`, c.EaseFactor, c.RepetitionCount, c.IntervalDays, c.UpdatedAt, c.ID, c.DeckID)
	if err != nil {
		log.Error("failed to update review counters: %v", err)
		return err
	}
	return requireAffected(res)
}

func (r *flashcardRepository) Delete(ctx context.Context, deckID, id string) error {
	log := logger.FromContext(ctx).WithPrefix("flashcard_repo")
	log.Debug("deleting flashcard: deck_id=%s, id=%s", deckID, id)

	err := tx(ctx, r.db, func(tx *sql.Tx) error {
		res, err := tx.ExecContext(ctx, `DELETE FROM flashcards WHERE id = ? AND deck_id = ?`, id, deckID)
		if err != nil {
			return err
		}
		if err := requireAffected(res); err != nil {
			return err
		}
		_, err = tx.ExecContext(ctx, `UPDATE decks SET card_count = MAX(card_count - 1, 0) WHERE id = ?`, deckID)
		return err
	})
	if err != nil && !errors.Is(err, sql.ErrNoRows) {
		log.Error("failed to delete flashcard: %v", err)
	}
	return err
}
