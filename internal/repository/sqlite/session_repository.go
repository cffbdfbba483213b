package sqlite

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"

	"github.com/Masterminds/squirrel"
	"github.com/vytor/studyflash/internal/logger"
	"github.com/vytor/studyflash/internal/models"
	"github.com/vytor/studyflash/internal/repository"
)

var sessionColumns = []string{
	"id", "deck_id", "owner_id", "started_at", "finished_at", "total_score", "total_possible",
	"total_questions", "graded_questions", "latitude", "longitude", "results",
}

type sessionRepository struct {
	db *sql.DB
}

// NewSessionRepository creates a new SessionRepository implementation
func NewSessionRepository(db *sql.DB) repository.SessionRepository {
	return &sessionRepository{db: db}
}

func scanSession(row rowScanner) (models.SessionStat, error) {
	var (
		s        models.SessionStat
		lat, lng sql.NullFloat64
		results  string
	)
	if err := row.Scan(&s.ID, &s.DeckID, &s.OwnerID, &s.StartedAt, &s.FinishedAt, &s.TotalScore, &s.TotalPossible,
		&s.TotalQuestions, &s.GradedQuestions, &lat, &lng, &results); err != nil {
		return models.SessionStat{}, err
	}
	s.Latitude = floatPtr(lat)
	s.Longitude = floatPtr(lng)
	s.Results = map[string]models.ReviewResult{}
	if err := json.Unmarshal([]byte(results), &s.Results); err != nil {
		return models.SessionStat{}, err
	}
	return s, nil
}

func (r *sessionRepository) Insert(ctx context.Context, s models.SessionStat) error {
	log := logger.FromContext(ctx).WithPrefix("session_repo")
	log.Debug("inserting session: id=%s, deck_id=%s", s.ID, s.DeckID)

	results := s.Results
	if results == nil {
		results = map[string]models.ReviewResult{}
	}
	encoded, err := json.Marshal(results)
	if err != nil {
		log.Error("failed to encode session results: %v", err)
		return err
	}

	query, args, err := sqlBuilder.Insert("session_stats").Columns(sessionColumns...).Values(
		s.ID, s.DeckID, s.OwnerID, s.StartedAt, s.FinishedAt, s.TotalScore, s.TotalPossible,
		s.TotalQuestions, s.GradedQuestions, nullFloat(s.Latitude), nullFloat(s.Longitude), string(encoded),
	).ToSql()
	if err != nil {
		log.Error("failed to build insert query: %v", err)
		return err
	}
	if _, err := r.db.ExecContext(ctx, query, args...); err != nil {
		log.Error("failed to insert session: %v", err)
		return err
	}
	return nil
}

func (r *sessionRepository) Get(ctx context.Context, id string) (*models.SessionStat, error) {
	log := logger.FromContext(ctx).WithPrefix("session_repo")
	log.Debug("getting session: id=%s", id)

	query, args, err := sqlBuilder.Select(sessionColumns...).From("session_stats").
		Where(squirrel.Eq{"id": id}).ToSql()
	if err != nil {
		return nil, err
	}
	s, err := scanSession(r.db.QueryRowContext(ctx, query, args...))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			log.Debug("session not found: id=%s", id)
		} else {
			log.Error("failed to get session: %v", err)
		}
		return nil, err
	}
	return &s, nil
}

func (r *sessionRepository) List(ctx context.Context, filter models.SessionFilter) ([]models.SessionStat, error) {
	log := logger.FromContext(ctx).WithPrefix("session_repo")
	log.Debug("listing sessions with filter: owner_id=%s, deck_id=%s, from=%d, to=%d",
		filter.OwnerID, filter.DeckID, filter.From, filter.To)

	query := sqlBuilder.Select(sessionColumns...).From("session_stats")

	// Dynamic WHERE clauses
	if filter.OwnerID != "" {
		query = query.Where(squirrel.Eq{"owner_id": filter.OwnerID})
	}
	if filter.DeckID != "" {
		query = query.Where(squirrel.Eq{"deck_id": filter.DeckID})
	}
	if filter.From > 0 {
		query = query.Where(squirrel.GtOrEq{"finished_at": filter.From})
	}
	if filter.To > 0 {
		query = query.Where(squirrel.Lt{"finished_at": filter.To})
	}

	query = query.OrderBy("finished_at DESC", "id")
	if filter.Limit > 0 {
		query = query.Limit(uint64(filter.Limit))
		if filter.Offset > 0 {
			query = query.Offset(uint64(filter.Offset))
		}
	}

	sqlStr, args, err := query.ToSql()
	if err != nil {
		log.Error("failed to build query: %v", err)
		return nil, err
	}

	rows, err := r.db.QueryContext(ctx, sqlStr, args...)
	if err != nil {
		log.Error("failed to list sessions: %v", err)
		return nil, err
	}
	defer rows.Close()

	sessions := []models.SessionStat{}
	for rows.Next() {
		s, err := scanSession(rows)
		if err != nil {
			log.Error("failed to scan session row: %v", err)
			return nil, err
		}
		sessions = append(sessions, s)
	}
	log.Debug("found %d sessions", len(sessions))
	return sessions, rows.Err()
}
