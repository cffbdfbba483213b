package sqlite

import (
	"context"
	"database/sql"
	"slices"

	"github.com/Masterminds/squirrel"
	"github.com/vytor/studyflash/internal/logger"
	"github.com/vytor/studyflash/internal/models"
	"github.com/vytor/studyflash/internal/repository"
)

type chatRepository struct {
	db *sql.DB
}

// NewChatRepository creates a new ChatRepository implementation
func NewChatRepository(db *sql.DB) repository.ChatRepository {
	return &chatRepository{db: db}
}

func (r *chatRepository) Insert(ctx context.Context, m models.ChatMessage) error {
	log := logger.FromContext(ctx).WithPrefix("chat_repo")
	log.Debug("inserting chat message: id=%s, role=%s", m.ID, m.Role)

	_, err := r.db.ExecContext(ctx, `
INSERT INTO chat_messages (id, owner_id, role, content, status, created_at)
VALUES (?, ?, ?, ?, ?, ?)
`, m.ID, m.OwnerID, string(m.Role), m.Content, string(m.Status), m.CreatedAt)
	if err != nil {
		log.Error("failed to insert chat message: %v", err)
	}
	return err
}

func (r *chatRepository) UpdateStatus(ctx context.Context, id string, status models.ChatStatus) error {
	log := logger.FromContext(ctx).WithPrefix("chat_repo")
	log.Debug("updating chat message status: id=%s, status=%s", id, status)

	res, err := r.db.ExecContext(ctx, `UPDATE chat_messages SET status = ? WHERE id = ?`, string(status), id)
	if err != nil {
		log.Error("failed to update chat message: %v", err)
		return err
	}
	return requireAffected(res)
}

func (r *chatRepository) List(ctx context.Context, ownerID string, limit int) ([]models.ChatMessage, error) {
	log := logger.FromContext(ctx).WithPrefix("chat_repo")
	log.Debug("listing chat messages: owner_id=%s, limit=%d", ownerID, limit)

	// rowid follows insertion order, which is conversation order
	query := sqlBuilder.Select("id", "owner_id", "role", "content", "status", "created_at").
		From("chat_messages").
		Where(squirrel.Eq{"owner_id": ownerID}).
		OrderBy("rowid DESC")
	if limit > 0 {
		query = query.Limit(uint64(limit))
	}
	sqlStr, args, err := query.ToSql()
	if err != nil {
		log.Error("failed to build query: %v", err)
		return nil, err
	}

	rows, err := r.db.QueryContext(ctx, sqlStr, args...)
	if err != nil {
		log.Error("failed to query chat messages: %v", err)
		return nil, err
	}
	defer rows.Close()

	messages := []models.ChatMessage{}
	for rows.Next() {
		var (
			m            models.ChatMessage
			role, status string
		)
		if err := rows.Scan(&m.ID, &m.OwnerID, &role, &m.Content, &status, &m.CreatedAt); err != nil {
			log.Error("failed to scan chat message row: %v", err)
			return nil, err
		}
		m.Role = models.ChatRole(role)
		m.Status = models.ChatStatus(status)
		messages = append(messages, m)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	slices.Reverse(messages)
	log.Debug("found %d chat messages", len(messages))
	return messages, nil
}
