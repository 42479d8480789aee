package service

import (
	"context"
	"errors"
	"fmt"
	"testing"

	"github.com/globetrotter/api/internal/database"
	"github.com/globetrotter/api/internal/model"
)

// Mock implementations

type mockDestinationRepo struct {
	dests  []*model.Destination
	nextID int

	createErr error
	getErr    error
	sampleErr error
}

func newMockDestinationRepo() *mockDestinationRepo {
	return &mockDestinationRepo{}
}

func (m *mockDestinationRepo) Create(ctx context.Context, dest *model.Destination) error {
	if m.createErr != nil {
		return m.createErr
	}
	m.nextID++
	dest.ID = fmt.Sprintf("destination:%d", m.nextID)
	m.dests = append(m.dests, dest)
	return nil
}

func (m *mockDestinationRepo) CreateBulk(ctx context.Context, dests []model.Destination) (int, error) {
	if m.createErr != nil {
		return 0, m.createErr
	}
	for i := range dests {
		m.nextID++
		dests[i].ID = fmt.Sprintf("destination:%d", m.nextID)
		d := dests[i]
		m.dests = append(m.dests, &d)
	}
	return len(dests), nil
}

func (m *mockDestinationRepo) GetByID(ctx context.Context, id string) (*model.Destination, error) {
	if m.getErr != nil {
		return nil, m.getErr
	}
	for _, d := range m.dests {
		if d.ID == id {
			return d, nil
		}
	}
	return nil, nil
}

func (m *mockDestinationRepo) GetRandom(ctx context.Context, excluded []string) (*model.Destination, error) {
	if m.getErr != nil {
		return nil, m.getErr
	}
	excludedSet := make(map[string]bool, len(excluded))
	for _, id := range excluded {
		excludedSet[id] = true
	}
	for _, d := range m.dests {
		if !excludedSet[d.ID] {
			return d, nil
		}
	}
	// Fully excluded catalogs fall back to an unexcluded sample
	if len(m.dests) > 0 {
		return m.dests[0], nil
	}
	return nil, nil
}

func (m *mockDestinationRepo) SampleOptions(ctx context.Context, limit int, excludedCities []string) ([]model.AnswerOption, error) {
	if m.sampleErr != nil {
		return nil, m.sampleErr
	}
	excludedSet := make(map[string]bool, len(excludedCities))
	for _, city := range excludedCities {
		excludedSet[city] = true
	}
	var options []model.AnswerOption
	for _, d := range m.dests {
		if excludedSet[d.City] {
			continue
		}
		options = append(options, model.AnswerOption{ID: d.ID, City: d.City, Country: d.Country})
		if len(options) == limit {
			break
		}
	}
	return options, nil
}

func (m *mockDestinationRepo) List(ctx context.Context, limit, offset int) ([]model.Destination, error) {
	if m.getErr != nil {
		return nil, m.getErr
	}
	var page []model.Destination
	for i := offset; i < len(m.dests) && len(page) < limit; i++ {
		page = append(page, *m.dests[i])
	}
	return page, nil
}

func (m *mockDestinationRepo) Count(ctx context.Context) (int, error) {
	return len(m.dests), nil
}

// seedDestination inserts a destination with generated facts and clues
func (m *mockDestinationRepo) seedDestination(t *testing.T, city, country string) *model.Destination {
	t.Helper()
	dest := &model.Destination{
		City:     city,
		Country:  country,
		Clues:    []string{city + " clue one", city + " clue two", city + " clue three"},
		FunFacts: []string{city + " fun fact"},
		Trivia:   []string{city + " trivia"},
	}
	if err := m.Create(context.Background(), dest); err != nil {
		t.Fatalf("failed to seed destination %s: %v", city, err)
	}
	return dest
}

type mockRoundResolver struct {
	game       *model.Game
	err        error
	gameID     string
	roundIndex int
	isCorrect  bool
}

func (m *mockRoundResolver) ResolveRound(ctx context.Context, gameID string, roundIndex int, userAnswer string, isCorrect bool, factShown string) (*model.Game, error) {
	if m.err != nil {
		return nil, m.err
	}
	m.gameID = gameID
	m.roundIndex = roundIndex
	m.isCorrect = isCorrect
	return m.game, nil
}

type mockStatsRecorder struct {
	err      error
	outcomes []bool
}

func (m *mockStatsRecorder) RecordOutcome(ctx context.Context, userID string, correct bool) error {
	if m.err != nil {
		return m.err
	}
	m.outcomes = append(m.outcomes, correct)
	return nil
}

// Test helper to create a destination service with a seeded catalog
func setupDestinationService(t *testing.T, cities int) (*DestinationService, *mockDestinationRepo) {
	t.Helper()
	repo := newMockDestinationRepo()
	names := []string{"Paris", "Tokyo", "Cairo", "Lima", "Oslo", "Sydney"}
	for i := 0; i < cities; i++ {
		repo.seedDestination(t, names[i%len(names)], "Country "+names[i%len(names)])
	}
	svc := NewDestinationService(DestinationServiceConfig{Repo: repo})
	return svc, repo
}

// Tests

func TestDestinationService_RandomRound_Success(t *testing.T) {
	svc, _ := setupDestinationService(t, 5)
	ctx := context.Background()

	round, err := svc.RandomRound(ctx, nil)
	if err != nil {
		t.Fatalf("RandomRound failed: %v", err)
	}
	if round.DestinationID == "" {
		t.Error("expected destination ID to be set")
	}
	if len(round.AnswerOptions) != model.AnswerOptionCount {
		t.Fatalf("expected %d answer options, got %d", model.AnswerOptionCount, len(round.AnswerOptions))
	}
	if len(round.Clues) == 0 || len(round.Clues) > 2 {
		t.Errorf("expected 1-2 clues, got %d", len(round.Clues))
	}
	if round.CorrectAnswer.City == "" {
		t.Error("expected correct answer to be set")
	}
	if round.FunFact == "" {
		t.Error("expected a fun fact")
	}
}

func TestDestinationService_RandomRound_EmptyCatalog(t *testing.T) {
	svc, _ := setupDestinationService(t, 0)

	_, err := svc.RandomRound(context.Background(), nil)
	if !errors.Is(err, ErrEmptyCatalog) {
		t.Errorf("expected ErrEmptyCatalog, got %v", err)
	}
}

func TestDestinationService_BuildAnswerOptions_DistinctCities(t *testing.T) {
	svc, repo := setupDestinationService(t, 6)
	ctx := context.Background()

	options, err := svc.BuildAnswerOptions(ctx, repo.dests[0])
	if err != nil {
		t.Fatalf("BuildAnswerOptions failed: %v", err)
	}
	if len(options) != model.AnswerOptionCount {
		t.Fatalf("expected %d options, got %d", model.AnswerOptionCount, len(options))
	}

	cities := make(map[string]bool)
	foundCorrect := false
	for _, opt := range options {
		if cities[opt.City] {
			t.Errorf("duplicate city %s in option set", opt.City)
		}
		cities[opt.City] = true
		if opt.City == repo.dests[0].City {
			foundCorrect = true
		}
	}
	if !foundCorrect {
		t.Error("option set does not contain the correct destination")
	}
}

func TestDestinationService_BuildAnswerOptions_DeduplicatesSharedCityNames(t *testing.T) {
	repo := newMockDestinationRepo()
	// Two records share a city name; only one may appear in the option set
	correct := repo.seedDestination(t, "Paris", "France")
	repo.seedDestination(t, "Paris", "France")
	repo.seedDestination(t, "Tokyo", "Japan")
	repo.seedDestination(t, "Cairo", "Egypt")
	repo.seedDestination(t, "Lima", "Peru")
	svc := NewDestinationService(DestinationServiceConfig{Repo: repo})

	options, err := svc.BuildAnswerOptions(context.Background(), correct)
	if err != nil {
		t.Fatalf("BuildAnswerOptions failed: %v", err)
	}

	cities := make(map[string]bool)
	for _, opt := range options {
		if cities[opt.City] {
			t.Errorf("duplicate city %s in option set", opt.City)
		}
		cities[opt.City] = true
	}
}

func TestDestinationService_BuildAnswerOptions_InsufficientCatalog(t *testing.T) {
	svc, repo := setupDestinationService(t, 3)

	_, err := svc.BuildAnswerOptions(context.Background(), repo.dests[0])
	if !errors.Is(err, ErrInsufficientCatalog) {
		t.Errorf("expected ErrInsufficientCatalog, got %v", err)
	}
}

func TestDestinationService_ValidateAnswer_Correct(t *testing.T) {
	svc, repo := setupDestinationService(t, 4)
	ctx := context.Background()
	dest := repo.dests[0]

	result, err := svc.ValidateAnswer(ctx, &model.ValidateAnswerRequest{
		DestinationID: dest.ID,
		Answer:        dest.City,
	})
	if err != nil {
		t.Fatalf("ValidateAnswer failed: %v", err)
	}
	if !result.IsCorrect {
		t.Error("expected correct answer to validate")
	}
	if result.Fact != dest.FunFacts[0] {
		t.Errorf("expected fun fact %q, got %q", dest.FunFacts[0], result.Fact)
	}
	if result.CorrectAnswer.City != dest.City {
		t.Errorf("expected correct answer %s, got %s", dest.City, result.CorrectAnswer.City)
	}
}

func TestDestinationService_ValidateAnswer_Incorrect(t *testing.T) {
	svc, repo := setupDestinationService(t, 4)
	dest := repo.dests[0]

	result, err := svc.ValidateAnswer(context.Background(), &model.ValidateAnswerRequest{
		DestinationID: dest.ID,
		Answer:        "Atlantis",
	})
	if err != nil {
		t.Fatalf("ValidateAnswer failed: %v", err)
	}
	if result.IsCorrect {
		t.Error("expected incorrect answer")
	}
	if result.Fact != dest.Trivia[0] {
		t.Errorf("expected trivia %q, got %q", dest.Trivia[0], result.Fact)
	}
}

func TestDestinationService_ValidateAnswer_CaseSensitive(t *testing.T) {
	svc, repo := setupDestinationService(t, 4)
	dest := repo.dests[0]

	result, err := svc.ValidateAnswer(context.Background(), &model.ValidateAnswerRequest{
		DestinationID: dest.ID,
		Answer:        "paris",
	})
	if err != nil {
		t.Fatalf("ValidateAnswer failed: %v", err)
	}
	if result.IsCorrect {
		t.Error("expected case-mismatched answer to be incorrect")
	}
}

func TestDestinationService_ValidateAnswer_FallbackFacts(t *testing.T) {
	repo := newMockDestinationRepo()
	dest := &model.Destination{City: "Quito", Country: "Ecuador"}
	if err := repo.Create(context.Background(), dest); err != nil {
		t.Fatalf("failed to seed destination: %v", err)
	}
	svc := NewDestinationService(DestinationServiceConfig{Repo: repo})
	ctx := context.Background()

	correct, err := svc.ValidateAnswer(ctx, &model.ValidateAnswerRequest{
		DestinationID: dest.ID,
		Answer:        "Quito",
	})
	if err != nil {
		t.Fatalf("ValidateAnswer failed: %v", err)
	}
	want := "Quito is a fascinating destination with a rich history and culture!"
	if correct.Fact != want {
		t.Errorf("expected fallback fun fact %q, got %q", want, correct.Fact)
	}

	incorrect, err := svc.ValidateAnswer(ctx, &model.ValidateAnswerRequest{
		DestinationID: dest.ID,
		Answer:        "Lima",
	})
	if err != nil {
		t.Fatalf("ValidateAnswer failed: %v", err)
	}
	want = "Quito is known for its unique attractions and landmarks."
	if incorrect.Fact != want {
		t.Errorf("expected fallback trivia %q, got %q", want, incorrect.Fact)
	}
}

func TestDestinationService_ValidateAnswer_UnknownDestination(t *testing.T) {
	svc, _ := setupDestinationService(t, 4)

	_, err := svc.ValidateAnswer(context.Background(), &model.ValidateAnswerRequest{
		DestinationID: "destination:missing",
		Answer:        "Paris",
	})
	if !errors.Is(err, ErrDestinationNotFound) {
		t.Errorf("expected ErrDestinationNotFound, got %v", err)
	}
}

func TestDestinationService_ValidateAnswer_GameBinding(t *testing.T) {
	repo := newMockDestinationRepo()
	dest := repo.seedDestination(t, "Paris", "France")
	resolver := &mockRoundResolver{game: &model.Game{ID: "game:1", Score: 1}}
	svc := NewDestinationService(DestinationServiceConfig{Repo: repo, Games: resolver})

	result, err := svc.ValidateAnswer(context.Background(), &model.ValidateAnswerRequest{
		DestinationID: dest.ID,
		Answer:        "Paris",
		GameID:        "game:1",
		RoundIndex:    2,
	})
	if err != nil {
		t.Fatalf("ValidateAnswer failed: %v", err)
	}
	if resolver.gameID != "game:1" || resolver.roundIndex != 2 {
		t.Errorf("expected round 2 of game:1 resolved, got round %d of %s", resolver.roundIndex, resolver.gameID)
	}
	if !resolver.isCorrect {
		t.Error("expected resolver to receive a correct outcome")
	}
	if result.Game == nil || result.Game.Score != 1 {
		t.Error("expected resolved game in the result")
	}
}

func TestDestinationService_ValidateAnswer_UnknownGame(t *testing.T) {
	repo := newMockDestinationRepo()
	dest := repo.seedDestination(t, "Paris", "France")
	resolver := &mockRoundResolver{err: fmt.Errorf("resolve round: %w", database.ErrNotFound)}
	svc := NewDestinationService(DestinationServiceConfig{Repo: repo, Games: resolver})

	_, err := svc.ValidateAnswer(context.Background(), &model.ValidateAnswerRequest{
		DestinationID: dest.ID,
		Answer:        "Paris",
		GameID:        "game:missing",
		RoundIndex:    0,
	})
	if !errors.Is(err, ErrGameNotFound) {
		t.Errorf("expected ErrGameNotFound, got %v", err)
	}
}

func TestDestinationService_ValidateAnswer_RoundOutOfRange(t *testing.T) {
	repo := newMockDestinationRepo()
	dest := repo.seedDestination(t, "Paris", "France")
	resolver := &mockRoundResolver{err: fmt.Errorf("resolve round: %w", database.ErrOutOfRange)}
	svc := NewDestinationService(DestinationServiceConfig{Repo: repo, Games: resolver})

	_, err := svc.ValidateAnswer(context.Background(), &model.ValidateAnswerRequest{
		DestinationID: dest.ID,
		Answer:        "Paris",
		GameID:        "game:1",
		RoundIndex:    7,
	})
	if !errors.Is(err, ErrRoundOutOfRange) {
		t.Errorf("expected ErrRoundOutOfRange, got %v", err)
	}
}

func TestDestinationService_ValidateAnswer_StatsFailureDoesNotFail(t *testing.T) {
	repo := newMockDestinationRepo()
	dest := repo.seedDestination(t, "Paris", "France")
	recorder := &mockStatsRecorder{err: errors.New("stats store down")}
	svc := NewDestinationService(DestinationServiceConfig{Repo: repo, Users: recorder})

	result, err := svc.ValidateAnswer(context.Background(), &model.ValidateAnswerRequest{
		DestinationID: dest.ID,
		Answer:        "Paris",
		UserID:        "user:1",
	})
	if err != nil {
		t.Fatalf("expected stats failure to be swallowed, got %v", err)
	}
	if !result.IsCorrect {
		t.Error("expected correct result despite stats failure")
	}
}

func TestDestinationService_ValidateAnswer_RecordsOutcome(t *testing.T) {
	repo := newMockDestinationRepo()
	dest := repo.seedDestination(t, "Paris", "France")
	recorder := &mockStatsRecorder{}
	svc := NewDestinationService(DestinationServiceConfig{Repo: repo, Users: recorder})

	_, err := svc.ValidateAnswer(context.Background(), &model.ValidateAnswerRequest{
		DestinationID: dest.ID,
		Answer:        "Tokyo",
		UserID:        "user:1",
	})
	if err != nil {
		t.Fatalf("ValidateAnswer failed: %v", err)
	}
	if len(recorder.outcomes) != 1 || recorder.outcomes[0] {
		t.Errorf("expected one incorrect outcome recorded, got %v", recorder.outcomes)
	}
}

func TestDestinationService_Create_NormalizesEmptyLists(t *testing.T) {
	svc, _ := setupDestinationService(t, 0)

	dest, err := svc.Create(context.Background(), &model.CreateDestinationRequest{
		City:    "Quito",
		Country: "Ecuador",
	})
	if err != nil {
		t.Fatalf("Create failed: %v", err)
	}
	if dest.Clues == nil || dest.FunFacts == nil || dest.Trivia == nil {
		t.Error("expected empty lists instead of nil")
	}
	if dest.ID == "" {
		t.Error("expected destination ID to be assigned")
	}
}

func TestDestinationService_Import_SkipsIncompleteRows(t *testing.T) {
	svc, repo := setupDestinationService(t, 0)

	inserted, err := svc.Import(context.Background(), []model.DestinationRecord{
		{City: "Paris", Country: "France"},
		{City: "", Country: "Nowhere"},
		{City: "Tokyo", Country: ""},
		{City: "Cairo", Country: "Egypt"},
	})
	if err != nil {
		t.Fatalf("Import failed: %v", err)
	}
	if inserted != 2 {
		t.Errorf("expected 2 inserted, got %d", inserted)
	}
	count, _ := repo.Count(context.Background())
	if count != 2 {
		t.Errorf("expected catalog size 2, got %d", count)
	}
}

func TestDestinationService_Import_AcceptsAlternateFactKey(t *testing.T) {
	svc, repo := setupDestinationService(t, 0)

	_, err := svc.Import(context.Background(), []model.DestinationRecord{
		{City: "Paris", Country: "France", FunFactAlt: []string{"from the alternate key"}},
	})
	if err != nil {
		t.Fatalf("Import failed: %v", err)
	}
	if len(repo.dests) != 1 || len(repo.dests[0].FunFacts) != 1 {
		t.Fatal("expected alternate fun-fact key to be normalized")
	}
	if repo.dests[0].FunFacts[0] != "from the alternate key" {
		t.Errorf("unexpected fun facts: %v", repo.dests[0].FunFacts)
	}
}

func TestDestinationService_List_ClampsLimit(t *testing.T) {
	svc, _ := setupDestinationService(t, 6)

	page, err := svc.List(context.Background(), 2, 0)
	if err != nil {
		t.Fatalf("List failed: %v", err)
	}
	if len(page) != 2 {
		t.Errorf("expected page of 2, got %d", len(page))
	}

	// Out-of-range limits fall back to the maximum page size
	page, err = svc.List(context.Background(), -1, 0)
	if err != nil {
		t.Fatalf("List failed: %v", err)
	}
	if len(page) != 6 {
		t.Errorf("expected full catalog page, got %d", len(page))
	}
}
