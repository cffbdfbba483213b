package sqlite_test

import (
	"context"
	"database/sql"
	"testing"

	"github.com/stretchr/testify/suite"
	"github.com/vytor/studyflash/internal/models"
	"github.com/vytor/studyflash/internal/repository"
	"github.com/vytor/studyflash/internal/repository/sqlite"
	"github.com/vytor/studyflash/internal/testutil"
)

type SessionRepositorySuite struct {
	suite.Suite
	db   *sql.DB
	repo repository.SessionRepository
}

func (s *SessionRepositorySuite) SetupTest() {
	s.db = testutil.NewTestDB(s.T())
	s.repo = sqlite.NewSessionRepository(s.db)
	testutil.InsertUser(s.T(), s.db, "u1", "alice")
	testutil.InsertUser(s.T(), s.db, "u2", "bob")
}

func (s *SessionRepositorySuite) TearDownTest() {
	testutil.MustClose(s.T(), s.db)
}

func session(id, owner, deck string, finishedAt int64) models.SessionStat {
	return models.SessionStat{
		ID:              id,
		DeckID:          deck,
		OwnerID:         owner,
		StartedAt:       finishedAt - 60_000,
		FinishedAt:      finishedAt,
		TotalScore:      7.5,
		TotalPossible:   10,
		TotalQuestions:  2,
		GradedQuestions: 1,
	}
}

func (s *SessionRepositorySuite) TestInsertAndGet_WithLocationAndResults() {
	ctx := context.Background()
	lat, lng := 52.520008, 13.404954

	stat := session("s1", "u1", "d1", 1_700_000_000_000)
	stat.Latitude = &lat
	stat.Longitude = &lng
	stat.Results = map[string]models.ReviewResult{
		"c1": {CardID: "c1", CardType: models.CardTypeMultipleChoice, Score: 7.5, MaxScore: 10},
		"c2": {CardID: "c2", CardType: models.CardTypeFrontBack},
	}
	s.Require().NoError(s.repo.Insert(ctx, stat))

	got, err := s.repo.Get(ctx, "s1")
	s.Require().NoError(err)
	s.Require().True(got.HasLocation())
	s.Assert().Equal(lat, *got.Latitude)
	s.Assert().Equal(lng, *got.Longitude)
	s.Assert().Equal(7.5, got.TotalScore)
	s.Assert().Equal(2, got.TotalQuestions)
	s.Assert().Equal(1, got.GradedQuestions)
	s.Assert().Equal(stat.Results, got.Results)
}

func (s *SessionRepositorySuite) TestInsertAndGet_WithoutLocation() {
	ctx := context.Background()
	s.Require().NoError(s.repo.Insert(ctx, session("s1", "u1", "d1", 1_700_000_000_000)))

	got, err := s.repo.Get(ctx, "s1")
	s.Require().NoError(err)
	s.Assert().False(got.HasLocation())
	s.Assert().Nil(got.Latitude)
	s.Assert().NotNil(got.Results)
	s.Assert().Empty(got.Results)

	_, err = s.repo.Get(ctx, "missing")
	s.Assert().ErrorIs(err, sql.ErrNoRows)
}

func (s *SessionRepositorySuite) TestInsert_DuplicateIDRejected() {
	ctx := context.Background()
	s.Require().NoError(s.repo.Insert(ctx, session("s1", "u1", "d1", 1000_000)))
	s.Assert().Error(s.repo.Insert(ctx, session("s1", "u1", "d1", 2000_000)))
}

func (s *SessionRepositorySuite) TestList_Filters() {
	ctx := context.Background()
	s.Require().NoError(s.repo.Insert(ctx, session("s1", "u1", "d1", 1_000_000)))
	s.Require().NoError(s.repo.Insert(ctx, session("s2", "u1", "d1", 2_000_000)))
	s.Require().NoError(s.repo.Insert(ctx, session("s3", "u1", "d2", 3_000_000)))
	s.Require().NoError(s.repo.Insert(ctx, session("s4", "u2", "d1", 4_000_000)))

	ids := func(list []models.SessionStat) []string {
		out := make([]string, 0, len(list))
		for _, st := range list {
			out = append(out, st.ID)
		}
		return out
	}

	tests := []struct {
		name   string
		filter models.SessionFilter
		want   []string
	}{
		{"owner newest first", models.SessionFilter{OwnerID: "u1"}, []string{"s3", "s2", "s1"}},
		{"owner and deck", models.SessionFilter{OwnerID: "u1", DeckID: "d1"}, []string{"s2", "s1"}},
		{"from inclusive", models.SessionFilter{OwnerID: "u1", From: 2_000_000}, []string{"s3", "s2"}},
		{"to exclusive", models.SessionFilter{OwnerID: "u1", To: 2_000_000}, []string{"s1"}},
		{"limit", models.SessionFilter{OwnerID: "u1", Limit: 2}, []string{"s3", "s2"}},
		{"limit and offset", models.SessionFilter{OwnerID: "u1", Limit: 2, Offset: 2}, []string{"s1"}},
		{"other owner", models.SessionFilter{OwnerID: "u2"}, []string{"s4"}},
		{"no match", models.SessionFilter{OwnerID: "u3"}, []string{}},
	}

	for _, tt := range tests {
		s.Run(tt.name, func() {
			list, err := s.repo.List(ctx, tt.filter)
			s.Require().NoError(err)
			s.Assert().Equal(tt.want, ids(list))
		})
	}
}

func TestSessionRepositorySuite(t *testing.T) {
	suite.Run(t, new(SessionRepositorySuite))
}
