package services

import (
	"context"
	"strings"
	"unicode/utf8"

	"github.com/vytor/studyflash/internal/errors"
	"github.com/vytor/studyflash/internal/logger"
	"github.com/vytor/studyflash/internal/models"
	"github.com/vytor/studyflash/internal/repository"
)

const maxUsernameLength = 64

// UserService handles user-related business logic
type UserService interface {
	Register(ctx context.Context, username string) (*models.User, error)
	Get(ctx context.Context, id string) (*models.User, error)
}

type userService struct {
	userRepo repository.UserRepository
}

// NewUserService creates a new UserService
func NewUserService(userRepo repository.UserRepository) UserService {
	return &userService{userRepo: userRepo}
}

// Register returns the user with the given name, creating it on first use.
func (s *userService) Register(ctx context.Context, username string) (*models.User, error) {
	log := logger.FromContext(ctx)
	log.Debug("registering user: username=%s", username)

	username = strings.ToLower(strings.TrimSpace(username))
	if username == "" {
		return nil, errors.NewValidationError("username", "cannot be empty")
	}
	if utf8.RuneCountInString(username) > maxUsernameLength {
		return nil, errors.NewValidationError("username", "must be at most 64 characters")
	}

	user, err := s.userRepo.Upsert(ctx, username)
	if err != nil {
		log.Error("failed to upsert user: %v", err)
		return nil, errors.NewInternalError(err)
	}
	return user, nil
}

func (s *userService) Get(ctx context.Context, id string) (*models.User, error) {
	log := logger.FromContext(ctx)
	log.Debug("getting user: id=%s", id)

	user, err := s.userRepo.Get(ctx, id)
	if err != nil {
		if isNotFound(err) {
			return nil, errors.NewNotFoundError("user", id)
		}
		log.Error("failed to get user: %v", err)
		return nil, errors.NewInternalError(err)
	}
	return user, nil
}
