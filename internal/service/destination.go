package service

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	mrand "math/rand/v2"

	"github.com/globetrotter/api/internal/database"
	"github.com/globetrotter/api/internal/model"
)

// DestinationRepository defines the interface for destination storage
type DestinationRepository interface {
	Create(ctx context.Context, dest *model.Destination) error
	CreateBulk(ctx context.Context, dests []model.Destination) (int, error)
	GetByID(ctx context.Context, id string) (*model.Destination, error)
	GetRandom(ctx context.Context, excluded []string) (*model.Destination, error)
	SampleOptions(ctx context.Context, limit int, excludedCities []string) ([]model.AnswerOption, error)
	List(ctx context.Context, limit, offset int) ([]model.Destination, error)
	Count(ctx context.Context) (int, error)
}

// RoundResolver resolves a round within a game when a standalone answer
// validation carries a game binding.
type RoundResolver interface {
	ResolveRound(ctx context.Context, gameID string, roundIndex int, userAnswer string, isCorrect bool, factShown string) (*model.Game, error)
}

// StatsRecorder records an answer outcome against a user's aggregate stats
type StatsRecorder interface {
	RecordOutcome(ctx context.Context, userID string, correct bool) error
}

// DestinationService handles destination catalog business logic
type DestinationService struct {
	repo  DestinationRepository
	games RoundResolver
	users StatsRecorder
}

// DestinationServiceConfig holds configuration for the destination service
type DestinationServiceConfig struct {
	Repo  DestinationRepository
	Games RoundResolver // Optional, enables game binding on ValidateAnswer
	Users StatsRecorder // Optional, enables stat updates on ValidateAnswer
}

// NewDestinationService creates a new destination service
func NewDestinationService(cfg DestinationServiceConfig) *DestinationService {
	return &DestinationService{
		repo:  cfg.Repo,
		games: cfg.Games,
		users: cfg.Users,
	}
}

// RandomRound samples a destination outside the excluded set and builds a
// stateless round for it: a clue subset, a shuffled four-option answer set
// and the correct answer.
func (s *DestinationService) RandomRound(ctx context.Context, excluded []string) (*model.RandomRound, error) {
	dest, err := s.repo.GetRandom(ctx, excluded)
	if err != nil {
		return nil, err
	}
	if dest == nil {
		return nil, ErrEmptyCatalog
	}

	options, err := s.BuildAnswerOptions(ctx, dest)
	if err != nil {
		return nil, err
	}

	return &model.RandomRound{
		DestinationID: dest.ID,
		Clues:         pickClues(dest.Clues),
		AnswerOptions: options,
		FunFact:       pickFunFact(dest),
		CorrectAnswer: model.CorrectAnswer{
			City:     dest.City,
			Country:  dest.Country,
			ImageURL: dest.ImageURL,
		},
	}, nil
}

// BuildAnswerOptions assembles a shuffled option set of AnswerOptionCount
// entries with pairwise-distinct city names, always containing the correct
// destination. Distractors are sampled in batches and deduplicated; a batch
// that adds nothing means the catalog cannot fill the set.
func (s *DestinationService) BuildAnswerOptions(ctx context.Context, correct *model.Destination) ([]model.AnswerOption, error) {
	options := []model.AnswerOption{{
		ID:      correct.ID,
		City:    correct.City,
		Country: correct.Country,
	}}
	seen := map[string]bool{correct.City: true}

	for len(options) < model.AnswerOptionCount {
		cities := make([]string, 0, len(seen))
		for city := range seen {
			cities = append(cities, city)
		}

		batch, err := s.repo.SampleOptions(ctx, model.AnswerOptionCount-len(options), cities)
		if err != nil {
			return nil, err
		}

		progress := false
		for _, opt := range batch {
			if seen[opt.City] {
				continue
			}
			seen[opt.City] = true
			options = append(options, opt)
			progress = true
			if len(options) == model.AnswerOptionCount {
				break
			}
		}
		if !progress {
			return nil, ErrInsufficientCatalog
		}
	}

	mrand.Shuffle(len(options), func(i, j int) {
		options[i], options[j] = options[j], options[i]
	})
	return options, nil
}

// ValidateAnswer checks a submitted answer against the destination's city
// (exact, case-sensitive) and selects a display fact: a fun fact when
// correct, trivia when incorrect, with a generated fallback sentence when
// the source list is empty. When the request carries a game binding the
// matching round is resolved; when a user is resolvable their aggregate
// stats are updated best-effort.
func (s *DestinationService) ValidateAnswer(ctx context.Context, req *model.ValidateAnswerRequest) (*model.AnswerResult, error) {
	dest, err := s.repo.GetByID(ctx, req.DestinationID)
	if err != nil {
		return nil, err
	}
	if dest == nil {
		return nil, ErrDestinationNotFound
	}

	correct := req.Answer == dest.City
	fact := pickFunFact(dest)
	if !correct {
		fact = pickTrivia(dest)
	}

	result := &model.AnswerResult{
		IsCorrect: correct,
		Fact:      fact,
		CorrectAnswer: model.CorrectAnswer{
			City:     dest.City,
			Country:  dest.Country,
			ImageURL: dest.ImageURL,
		},
	}

	if req.GameID != "" && s.games != nil {
		game, err := s.games.ResolveRound(ctx, req.GameID, req.RoundIndex, req.Answer, correct, fact)
		if err != nil {
			switch {
			case errors.Is(err, database.ErrNotFound):
				return nil, ErrGameNotFound
			case errors.Is(err, database.ErrOutOfRange):
				return nil, ErrRoundOutOfRange
			}
			return nil, err
		}
		result.Game = game
	}

	// Round resolution is the durable source of truth; stats are derived
	// data and must not fail the request.
	if req.UserID != "" && s.users != nil {
		if err := s.users.RecordOutcome(ctx, req.UserID, correct); err != nil {
			slog.Warn("failed to record answer outcome",
				slog.String("user_id", req.UserID),
				slog.String("error", err.Error()))
		}
	}

	return result, nil
}

// Create adds a single destination to the catalog
func (s *DestinationService) Create(ctx context.Context, req *model.CreateDestinationRequest) (*model.Destination, error) {
	dest := model.DestinationRecord{
		City:      req.City,
		Country:   req.Country,
		Continent: req.Continent,
		Clues:     req.Clues,
		FunFacts:  req.FunFacts,
		Trivia:    req.Trivia,
		ImageURL:  req.ImageURL,
	}.Normalize()

	if err := s.repo.Create(ctx, &dest); err != nil {
		return nil, err
	}
	return &dest, nil
}

// Import normalizes and bulk-inserts a destination dataset.
// Returns the number of destinations inserted.
func (s *DestinationService) Import(ctx context.Context, records []model.DestinationRecord) (int, error) {
	dests := make([]model.Destination, 0, len(records))
	for _, rec := range records {
		if rec.City == "" || rec.Country == "" {
			continue
		}
		dests = append(dests, rec.Normalize())
	}
	return s.repo.CreateBulk(ctx, dests)
}

// List retrieves a page of the catalog
func (s *DestinationService) List(ctx context.Context, limit, offset int) ([]model.Destination, error) {
	if limit <= 0 || limit > 100 {
		limit = 100
	}
	if offset < 0 {
		offset = 0
	}
	return s.repo.List(ctx, limit, offset)
}

// Count returns the catalog size
func (s *DestinationService) Count(ctx context.Context) (int, error) {
	return s.repo.Count(ctx)
}

// pickClues draws min(2, available) clues uniformly without replacement
func pickClues(clues []string) []string {
	count := min(2, len(clues))
	if count == 0 {
		return []string{}
	}
	picked := make([]string, 0, count)
	for _, i := range mrand.Perm(len(clues))[:count] {
		picked = append(picked, clues[i])
	}
	return picked
}

func pickFunFact(dest *model.Destination) string {
	if len(dest.FunFacts) == 0 {
		return fmt.Sprintf("%s is a fascinating destination with a rich history and culture!", dest.City)
	}
	return dest.FunFacts[mrand.IntN(len(dest.FunFacts))]
}

func pickTrivia(dest *model.Destination) string {
	if len(dest.Trivia) == 0 {
		return fmt.Sprintf("%s is known for its unique attractions and landmarks.", dest.City)
	}
	return dest.Trivia[mrand.IntN(len(dest.Trivia))]
}
