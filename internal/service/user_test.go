package service

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"testing"
	"time"

	"github.com/globetrotter/api/internal/database"
	"github.com/globetrotter/api/internal/model"
)

// Mock implementations

type mockUserRepo struct {
	users     map[string]*model.User
	nameIndex map[string]*model.User
	nextID    int

	createErr  error
	getErr     error
	outcomeErr error
	markErr    error
	playedErr  error

	// allTaken makes every username lookup report an existing user,
	// exhausting suggestion retries.
	allTaken bool

	outcomes []bool
}

func newMockUserRepo() *mockUserRepo {
	return &mockUserRepo{
		users:     make(map[string]*model.User),
		nameIndex: make(map[string]*model.User),
	}
}

func (m *mockUserRepo) Create(ctx context.Context, user *model.User) error {
	if m.createErr != nil {
		return m.createErr
	}
	if _, exists := m.nameIndex[user.Username]; exists {
		return fmt.Errorf("%w: username already exists", database.ErrDuplicate)
	}
	m.nextID++
	user.ID = fmt.Sprintf("user:%d", m.nextID)
	user.CreatedOn = time.Now()
	if user.PlayedDestinations == nil {
		user.PlayedDestinations = []string{}
	}
	m.users[user.ID] = user
	m.nameIndex[user.Username] = user
	return nil
}

func (m *mockUserRepo) GetByID(ctx context.Context, id string) (*model.User, error) {
	if m.getErr != nil {
		return nil, m.getErr
	}
	return m.users[id], nil
}

func (m *mockUserRepo) GetByUsername(ctx context.Context, username string) (*model.User, error) {
	if m.getErr != nil {
		return nil, m.getErr
	}
	if user, ok := m.nameIndex[username]; ok {
		return user, nil
	}
	if m.allTaken {
		return &model.User{ID: "user:taken", Username: username}, nil
	}
	return nil, nil
}

func (m *mockUserRepo) GetByChallengeToken(ctx context.Context, token string) (*model.User, error) {
	if m.getErr != nil {
		return nil, m.getErr
	}
	for _, user := range m.users {
		if user.ChallengeToken == token {
			return user, nil
		}
	}
	return nil, nil
}

func (m *mockUserRepo) RecordOutcome(ctx context.Context, userID string, correct bool) error {
	if m.outcomeErr != nil {
		return m.outcomeErr
	}
	user, ok := m.users[userID]
	if !ok {
		return database.ErrNotFound
	}
	if correct {
		user.GameStats.CorrectAnswers++
	} else {
		user.GameStats.IncorrectAnswers++
	}
	user.GameStats.TotalPlayed++
	m.outcomes = append(m.outcomes, correct)
	return nil
}

func (m *mockUserRepo) MarkPlayed(ctx context.Context, userID, destinationID string) error {
	if m.markErr != nil {
		return m.markErr
	}
	user, ok := m.users[userID]
	if !ok {
		return database.ErrNotFound
	}
	for _, id := range user.PlayedDestinations {
		if id == destinationID {
			return nil
		}
	}
	user.PlayedDestinations = append(user.PlayedDestinations, destinationID)
	return nil
}

func (m *mockUserRepo) GetPlayedSet(ctx context.Context, userID string) ([]string, error) {
	if m.playedErr != nil {
		return nil, m.playedErr
	}
	user, ok := m.users[userID]
	if !ok {
		return nil, database.ErrNotFound
	}
	return user.PlayedDestinations, nil
}

// seedUser registers a user directly in the mock and returns it
func (m *mockUserRepo) seedUser(t *testing.T, username, token string) *model.User {
	t.Helper()
	user := &model.User{Username: username, ChallengeToken: token}
	if err := m.Create(context.Background(), user); err != nil {
		t.Fatalf("failed to seed user %s: %v", username, err)
	}
	return user
}

// Tests

func TestUserService_Register_Success(t *testing.T) {
	repo := newMockUserRepo()
	svc := NewUserService(repo)
	ctx := context.Background()

	user, err := svc.Register(ctx, "alice")
	if err != nil {
		t.Fatalf("Register failed: %v", err)
	}
	if user.ID == "" {
		t.Error("expected user ID to be assigned")
	}
	if user.Username != "alice" {
		t.Errorf("expected username alice, got %s", user.Username)
	}
	if user.ChallengeToken == "" {
		t.Error("expected challenge token to be generated")
	}

	stored, _ := repo.GetByUsername(ctx, "alice")
	if stored == nil {
		t.Error("user was not stored in repository")
	}
}

func TestUserService_Register_DistinctTokens(t *testing.T) {
	repo := newMockUserRepo()
	svc := NewUserService(repo)
	ctx := context.Background()

	a, err := svc.Register(ctx, "alice")
	if err != nil {
		t.Fatalf("Register failed: %v", err)
	}
	b, err := svc.Register(ctx, "bob")
	if err != nil {
		t.Fatalf("Register failed: %v", err)
	}
	if a.ChallengeToken == b.ChallengeToken {
		t.Error("expected distinct challenge tokens per user")
	}
}

func TestUserService_Register_TakenUsername_Suggests(t *testing.T) {
	repo := newMockUserRepo()
	svc := NewUserService(repo)
	ctx := context.Background()

	repo.seedUser(t, "alice", "token-a")

	_, err := svc.Register(ctx, "alice")
	if err == nil {
		t.Fatal("expected error for taken username")
	}

	var taken *UsernameTakenError
	if !errors.As(err, &taken) {
		t.Fatalf("expected UsernameTakenError, got %v", err)
	}
	if taken.Username != "alice" {
		t.Errorf("expected requested username alice, got %s", taken.Username)
	}
	if !strings.HasPrefix(taken.Suggestion, "alice") || taken.Suggestion == "alice" {
		t.Errorf("expected suggestion derived from alice, got %s", taken.Suggestion)
	}

	// The suggested name must itself be free
	existing, _ := repo.GetByUsername(ctx, taken.Suggestion)
	if existing != nil {
		t.Errorf("suggested username %s is already taken", taken.Suggestion)
	}
}

func TestUserService_Register_CreateRace_Suggests(t *testing.T) {
	repo := newMockUserRepo()
	svc := NewUserService(repo)
	ctx := context.Background()

	// Lookup sees the name as free but the insert loses a race
	repo.createErr = fmt.Errorf("%w: username already exists", database.ErrDuplicate)

	_, err := svc.Register(ctx, "alice")
	var taken *UsernameTakenError
	if !errors.As(err, &taken) {
		t.Fatalf("expected UsernameTakenError after duplicate insert, got %v", err)
	}
}

func TestUserService_Register_SuggestionsExhausted(t *testing.T) {
	repo := newMockUserRepo()
	svc := NewUserService(repo)
	ctx := context.Background()

	repo.allTaken = true

	_, err := svc.Register(ctx, "alice")
	if !errors.Is(err, ErrUsernameExhausted) {
		t.Errorf("expected ErrUsernameExhausted, got %v", err)
	}
}

func TestUserService_GetByID_NotFound(t *testing.T) {
	repo := newMockUserRepo()
	svc := NewUserService(repo)

	_, err := svc.GetByID(context.Background(), "user:missing")
	if !errors.Is(err, ErrUserNotFound) {
		t.Errorf("expected ErrUserNotFound, got %v", err)
	}
}

func TestUserService_GetByUsername_Found(t *testing.T) {
	repo := newMockUserRepo()
	svc := NewUserService(repo)
	ctx := context.Background()

	seeded := repo.seedUser(t, "alice", "token-a")

	user, err := svc.GetByUsername(ctx, "alice")
	if err != nil {
		t.Fatalf("GetByUsername failed: %v", err)
	}
	if user.ID != seeded.ID {
		t.Errorf("expected user %s, got %s", seeded.ID, user.ID)
	}
}

func TestUserService_GetByChallengeToken_NotFound(t *testing.T) {
	repo := newMockUserRepo()
	svc := NewUserService(repo)

	_, err := svc.GetByChallengeToken(context.Background(), "no-such-token")
	if !errors.Is(err, ErrChallengeNotFound) {
		t.Errorf("expected ErrChallengeNotFound, got %v", err)
	}
}

func TestUserService_RecordOutcome_MovesStatsTogether(t *testing.T) {
	repo := newMockUserRepo()
	svc := NewUserService(repo)
	ctx := context.Background()

	user := repo.seedUser(t, "alice", "token-a")

	if err := svc.RecordOutcome(ctx, user.ID, true); err != nil {
		t.Fatalf("RecordOutcome failed: %v", err)
	}
	if err := svc.RecordOutcome(ctx, user.ID, false); err != nil {
		t.Fatalf("RecordOutcome failed: %v", err)
	}

	stats := repo.users[user.ID].GameStats
	if stats.CorrectAnswers != 1 || stats.IncorrectAnswers != 1 {
		t.Errorf("expected 1 correct and 1 incorrect, got %+v", stats)
	}
	if stats.TotalPlayed != stats.CorrectAnswers+stats.IncorrectAnswers {
		t.Errorf("expected total to equal correct+incorrect, got %+v", stats)
	}
}

func TestUserService_GetPlayedSet_UnknownUser(t *testing.T) {
	repo := newMockUserRepo()
	svc := NewUserService(repo)

	_, err := svc.GetPlayedSet(context.Background(), "user:missing")
	if !errors.Is(err, ErrUserNotFound) {
		t.Errorf("expected ErrUserNotFound, got %v", err)
	}
}

func TestUserService_MarkPlayed_Deduplicates(t *testing.T) {
	repo := newMockUserRepo()
	svc := NewUserService(repo)
	ctx := context.Background()

	user := repo.seedUser(t, "alice", "token-a")

	if err := svc.MarkPlayed(ctx, user.ID, "destination:paris"); err != nil {
		t.Fatalf("MarkPlayed failed: %v", err)
	}
	if err := svc.MarkPlayed(ctx, user.ID, "destination:paris"); err != nil {
		t.Fatalf("MarkPlayed failed: %v", err)
	}

	played, err := svc.GetPlayedSet(ctx, user.ID)
	if err != nil {
		t.Fatalf("GetPlayedSet failed: %v", err)
	}
	if len(played) != 1 {
		t.Errorf("expected 1 played destination, got %d", len(played))
	}
}
