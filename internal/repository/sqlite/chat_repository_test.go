package sqlite_test

import (
	"context"
	"database/sql"
	"fmt"
	"testing"
	"time"

	"github.com/stretchr/testify/suite"
	"github.com/vytor/studyflash/internal/models"
	"github.com/vytor/studyflash/internal/repository"
	"github.com/vytor/studyflash/internal/repository/sqlite"
	"github.com/vytor/studyflash/internal/testutil"
)

type ChatRepositorySuite struct {
	suite.Suite
	db   *sql.DB
	repo repository.ChatRepository
}

func (s *ChatRepositorySuite) SetupTest() {
	s.db = testutil.NewTestDB(s.T())
	s.repo = sqlite.NewChatRepository(s.db)
	testutil.InsertUser(s.T(), s.db, "u1", "alice")
	testutil.InsertUser(s.T(), s.db, "u2", "bob")
}

func (s *ChatRepositorySuite) TearDownTest() {
	testutil.MustClose(s.T(), s.db)
}

func (s *ChatRepositorySuite) insert(id, owner string, role models.ChatRole) {
	// identical timestamps: ordering must come from insertion order
	err := s.repo.Insert(context.Background(), models.ChatMessage{
		ID: id, OwnerID: owner, Role: role, Content: "msg " + id,
		Status: models.ChatStatusAnswered, CreatedAt: time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC),
	})
	s.Require().NoError(err)
}

func (s *ChatRepositorySuite) TestList_OldestFirst() {
	ctx := context.Background()
	for i := 1; i <= 5; i++ {
		role := models.ChatRoleUser
		if i%2 == 0 {
			role = models.ChatRoleAssistant
		}
		s.insert(fmt.Sprintf("m%d", i), "u1", role)
	}
	s.insert("other", "u2", models.ChatRoleUser)

	all, err := s.repo.List(ctx, "u1", 0)
	s.Require().NoError(err)
	s.Require().Len(all, 5)
	s.Assert().Equal("m1", all[0].ID)
	s.Assert().Equal("m5", all[4].ID)
	s.Assert().Equal(models.ChatRoleAssistant, all[1].Role)

	latest, err := s.repo.List(ctx, "u1", 2)
	s.Require().NoError(err)
	s.Require().Len(latest, 2)
	s.Assert().Equal("m4", latest[0].ID)
	s.Assert().Equal("m5", latest[1].ID)
}

func (s *ChatRepositorySuite) TestUpdateStatus() {
	ctx := context.Background()
	s.Require().NoError(s.repo.Insert(ctx, models.ChatMessage{
		ID: "m1", OwnerID: "u1", Role: models.ChatRoleUser, Content: "hi",
		Status: models.ChatStatusPending, CreatedAt: time.Now().UTC(),
	}))

	s.Require().NoError(s.repo.UpdateStatus(ctx, "m1", models.ChatStatusFailed))

	list, err := s.repo.List(ctx, "u1", 0)
	s.Require().NoError(err)
	s.Require().Len(list, 1)
	s.Assert().Equal(models.ChatStatusFailed, list[0].Status)

	s.Assert().ErrorIs(s.repo.UpdateStatus(ctx, "missing", models.ChatStatusAnswered), sql.ErrNoRows)
}

func TestChatRepositorySuite(t *testing.T) {
	suite.Run(t, new(ChatRepositorySuite))
}
