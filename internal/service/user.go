package service

import (
	"context"
	"errors"
	"fmt"
	mrand "math/rand/v2"

	"github.com/google/uuid"

	"github.com/globetrotter/api/internal/database"
	"github.com/globetrotter/api/internal/model"
)

// Suggestion retry bound. Collisions on name+suffix are rare, so hitting
// this means the namespace around the requested name is effectively full.
const maxSuggestionAttempts = 100

// UserRepository defines the interface for user storage
type UserRepository interface {
	Create(ctx context.Context, user *model.User) error
	GetByID(ctx context.Context, id string) (*model.User, error)
	GetByUsername(ctx context.Context, username string) (*model.User, error)
	GetByChallengeToken(ctx context.Context, token string) (*model.User, error)
	RecordOutcome(ctx context.Context, userID string, correct bool) error
	MarkPlayed(ctx context.Context, userID, destinationID string) error
	GetPlayedSet(ctx context.Context, userID string) ([]string, error)
}

// UserService handles user registration and stats business logic
type UserService struct {
	repo UserRepository
}

// NewUserService creates a new user service
func NewUserService(repo UserRepository) *UserService {
	return &UserService{repo: repo}
}

// Register creates a user with the given username and a fresh challenge
// token. When the username is taken the error carries a suggested
// alternative: the requested name plus a random small suffix, retried until
// the suggestion itself is unused.
func (s *UserService) Register(ctx context.Context, username string) (*model.User, error) {
	existing, err := s.repo.GetByUsername(ctx, username)
	if err != nil {
		return nil, err
	}
	if existing != nil {
		return nil, s.usernameTaken(ctx, username)
	}

	user := &model.User{
		Username:       username,
		ChallengeToken: uuid.NewString(),
	}
	if err := s.repo.Create(ctx, user); err != nil {
		// Lost a race with a concurrent registration of the same name
		if errors.Is(err, database.ErrDuplicate) {
			return nil, s.usernameTaken(ctx, username)
		}
		return nil, err
	}
	return user, nil
}

func (s *UserService) usernameTaken(ctx context.Context, username string) error {
	for i := 0; i < maxSuggestionAttempts; i++ {
		suggestion := fmt.Sprintf("%s%d", username, mrand.IntN(999)+1)
		existing, err := s.repo.GetByUsername(ctx, suggestion)
		if err != nil {
			return err
		}
		if existing == nil {
			return &UsernameTakenError{Username: username, Suggestion: suggestion}
		}
	}
	return ErrUsernameExhausted
}

// GetByID retrieves a user by ID
func (s *UserService) GetByID(ctx context.Context, id string) (*model.User, error) {
	user, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if user == nil {
		return nil, ErrUserNotFound
	}
	return user, nil
}

// GetByUsername retrieves a user by username
func (s *UserService) GetByUsername(ctx context.Context, username string) (*model.User, error) {
	user, err := s.repo.GetByUsername(ctx, username)
	if err != nil {
		return nil, err
	}
	if user == nil {
		return nil, ErrUserNotFound
	}
	return user, nil
}

// GetByChallengeToken resolves a challenge token to its owning user
func (s *UserService) GetByChallengeToken(ctx context.Context, token string) (*model.User, error) {
	user, err := s.repo.GetByChallengeToken(ctx, token)
	if err != nil {
		return nil, err
	}
	if user == nil {
		return nil, ErrChallengeNotFound
	}
	return user, nil
}

// RecordOutcome increments the user's aggregate stats for one answer
func (s *UserService) RecordOutcome(ctx context.Context, userID string, correct bool) error {
	return s.repo.RecordOutcome(ctx, userID, correct)
}

// MarkPlayed records a destination in the user's play history
func (s *UserService) MarkPlayed(ctx context.Context, userID, destinationID string) error {
	return s.repo.MarkPlayed(ctx, userID, destinationID)
}

// GetPlayedSet retrieves the destination ids the user has already played
func (s *UserService) GetPlayedSet(ctx context.Context, userID string) ([]string, error) {
	played, err := s.repo.GetPlayedSet(ctx, userID)
	if err != nil {
		if errors.Is(err, database.ErrNotFound) {
			return nil, ErrUserNotFound
		}
		return nil, err
	}
	return played, nil
}
