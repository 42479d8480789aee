package service

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	mrand "math/rand/v2"
	"strings"

	"github.com/globetrotter/api/internal/database"
	"github.com/globetrotter/api/internal/model"
)

// Anonymous challenge names collide only when the same random suffix is
// drawn twice for the same challenger, so a handful of retries suffices.
const maxAnonymousNameAttempts = 5

// GameRepository defines the interface for game storage
type GameRepository interface {
	Create(ctx context.Context, game *model.Game) error
	GetByID(ctx context.Context, id string) (*model.Game, error)
	ListByUser(ctx context.Context, userID string) ([]model.Game, error)
	AppendRound(ctx context.Context, gameID string, round model.Round) (int, error)
	ResolveRound(ctx context.Context, gameID string, roundIndex int, userAnswer string, isCorrect bool, factShown string) (*model.Game, error)
	End(ctx context.Context, gameID string) (*model.Game, error)
}

// GameService orchestrates play sessions: starting games, serving rounds,
// resolving answers and the challenge flow.
type GameService struct {
	games        GameRepository
	users        UserRepository
	userService  *UserService
	destinations *DestinationService
	frontendURL  string
}

// GameServiceConfig holds configuration for the game service
type GameServiceConfig struct {
	GameRepo     GameRepository
	UserRepo     UserRepository
	UserService  *UserService
	Destinations *DestinationService
	FrontendURL  string // Default base for challenge links
}

// NewGameService creates a new game service
func NewGameService(cfg GameServiceConfig) *GameService {
	return &GameService{
		games:        cfg.GameRepo,
		users:        cfg.UserRepo,
		userService:  cfg.UserService,
		destinations: cfg.Destinations,
		frontendURL:  cfg.FrontendURL,
	}
}

// Start creates a new active game owned by the user
func (s *GameService) Start(ctx context.Context, userID string) (*model.Game, error) {
	user, err := s.users.GetByID(ctx, userID)
	if err != nil {
		return nil, err
	}
	if user == nil {
		return nil, ErrUserNotFound
	}

	game := &model.Game{UserID: userID}
	if err := s.games.Create(ctx, game); err != nil {
		return nil, err
	}
	return game, nil
}

// Get retrieves a game by ID
func (s *GameService) Get(ctx context.Context, gameID string) (*model.Game, error) {
	game, err := s.games.GetByID(ctx, gameID)
	if err != nil {
		return nil, err
	}
	if game == nil {
		return nil, ErrGameNotFound
	}
	return game, nil
}

// ListByUser retrieves a user's games, newest first
func (s *GameService) ListByUser(ctx context.Context, userID string) ([]model.Game, error) {
	user, err := s.users.GetByID(ctx, userID)
	if err != nil {
		return nil, err
	}
	if user == nil {
		return nil, ErrUserNotFound
	}
	return s.games.ListByUser(ctx, userID)
}

// NextRound samples a destination the user has not played, builds its option
// set, appends a pending round to the game and returns the round view. An
// empty userID means anonymous play: no exclusion set and no play-history
// update.
func (s *GameService) NextRound(ctx context.Context, gameID, userID string) (*model.RoundView, error) {
	game, err := s.games.GetByID(ctx, gameID)
	if err != nil {
		return nil, err
	}
	if game == nil {
		return nil, ErrGameNotFound
	}
	if !game.Active {
		return nil, ErrGameEnded
	}

	var excluded []string
	if userID != "" {
		excluded, err = s.users.GetPlayedSet(ctx, userID)
		if err != nil {
			if errors.Is(err, database.ErrNotFound) {
				return nil, ErrUserNotFound
			}
			return nil, err
		}
	}

	dest, err := s.destinations.repo.GetRandom(ctx, excluded)
	if err != nil {
		return nil, err
	}
	if dest == nil {
		return nil, ErrEmptyCatalog
	}

	options, err := s.destinations.BuildAnswerOptions(ctx, dest)
	if err != nil {
		return nil, err
	}
	clues := pickClues(dest.Clues)

	if userID != "" {
		// Play history only affects future sampling variety; a failed
		// update must not cost the player the round.
		if err := s.users.MarkPlayed(ctx, userID, dest.ID); err != nil {
			slog.Warn("failed to mark destination played",
				slog.String("user_id", userID),
				slog.String("destination_id", dest.ID),
				slog.String("error", err.Error()))
		}
	}

	round := model.Round{
		DestinationID: dest.ID,
		CluesShown:    clues,
		AnswerOptions: options,
	}
	index, err := s.games.AppendRound(ctx, gameID, round)
	if err != nil {
		if errors.Is(err, database.ErrNotFound) {
			return nil, ErrGameNotFound
		}
		return nil, err
	}

	return &model.RoundView{
		DestinationID: dest.ID,
		Clues:         clues,
		AnswerOptions: options,
		RoundIndex:    index,
		CorrectAnswer: model.CorrectAnswer{
			City:     dest.City,
			Country:  dest.Country,
			ImageURL: dest.ImageURL,
		},
	}, nil
}

// SubmitAnswer resolves the addressed round with the outcome of an exact,
// case-sensitive comparison against the destination's city, then updates the
// owner's aggregate stats. The round resolution is the durable step; the
// stat update is best-effort derived data.
func (s *GameService) SubmitAnswer(ctx context.Context, gameID string, req *model.SubmitAnswerRequest) (*model.AnswerResult, error) {
	game, err := s.games.GetByID(ctx, gameID)
	if err != nil {
		return nil, err
	}
	if game == nil {
		return nil, ErrGameNotFound
	}
	if !game.Active {
		return nil, ErrGameEnded
	}

	dest, err := s.destinations.repo.GetByID(ctx, req.DestinationID)
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

	updated, err := s.games.ResolveRound(ctx, gameID, req.RoundIndex, req.Answer, correct, fact)
	if err != nil {
		switch {
		case errors.Is(err, database.ErrNotFound):
			return nil, ErrGameNotFound
		case errors.Is(err, database.ErrOutOfRange):
			return nil, ErrRoundOutOfRange
		}
		return nil, err
	}

	if game.UserID != "" {
		if err := s.users.RecordOutcome(ctx, game.UserID, correct); err != nil {
			slog.Warn("failed to record answer outcome",
				slog.String("user_id", game.UserID),
				slog.String("game_id", gameID),
				slog.String("error", err.Error()))
		}
	}

	return &model.AnswerResult{
		IsCorrect: correct,
		Fact:      fact,
		Game:      updated,
		CorrectAnswer: model.CorrectAnswer{
			City:     dest.City,
			Country:  dest.Country,
			ImageURL: dest.ImageURL,
		},
	}, nil
}

// End deactivates a game. Ending an already-ended game is a no-op success.
func (s *GameService) End(ctx context.Context, gameID string) (*model.Game, error) {
	game, err := s.games.End(ctx, gameID)
	if err != nil {
		if errors.Is(err, database.ErrNotFound) {
			return nil, ErrGameNotFound
		}
		return nil, err
	}
	return game, nil
}

// CreateChallenge creates a challenge game owned by the user and builds the
// shareable link from the user's challenge token. The link base falls back
// to the configured frontend URL when the request does not carry one.
func (s *GameService) CreateChallenge(ctx context.Context, userID, frontendURL string) (*model.ChallengeInvite, error) {
	user, err := s.users.GetByID(ctx, userID)
	if err != nil {
		return nil, err
	}
	if user == nil {
		return nil, ErrUserNotFound
	}

	game := &model.Game{UserID: userID, IsChallenge: true}
	if err := s.games.Create(ctx, game); err != nil {
		return nil, err
	}

	base := frontendURL
	if base == "" {
		base = s.frontendURL
	}

	return &model.ChallengeInvite{
		ChallengeLink:  strings.TrimRight(base, "/") + "/challenge/" + user.ChallengeToken,
		ChallengeToken: user.ChallengeToken,
		Username:       user.Username,
		GameStats:      user.GameStats,
		GameID:         game.ID,
	}, nil
}

// AcceptChallenge resolves a challenge token to its challenger and creates a
// game for the accepting player, reusing their account when the supplied
// username exists, registering it when it does not, or synthesizing an
// anonymous name when none is supplied.
func (s *GameService) AcceptChallenge(ctx context.Context, req *model.AcceptChallengeRequest) (*model.ChallengeAcceptance, error) {
	challenger, err := s.users.GetByChallengeToken(ctx, req.ChallengeToken)
	if err != nil {
		return nil, err
	}
	if challenger == nil {
		return nil, ErrChallengeNotFound
	}

	var user *model.User
	if req.Username != "" {
		user, err = s.users.GetByUsername(ctx, req.Username)
		if err != nil {
			return nil, err
		}
		if user == nil {
			user, err = s.userService.Register(ctx, req.Username)
			if err != nil {
				return nil, err
			}
		}
	} else {
		user, err = s.registerAnonymous(ctx, challenger.Username)
		if err != nil {
			return nil, err
		}
	}

	game := &model.Game{UserID: user.ID, IsChallenge: true, ChallengedBy: challenger.ID}
	if err := s.games.Create(ctx, game); err != nil {
		return nil, err
	}

	return &model.ChallengeAcceptance{
		User:       user,
		Challenger: challenger,
		Game:       game,
	}, nil
}

func (s *GameService) registerAnonymous(ctx context.Context, challengerName string) (*model.User, error) {
	var lastErr error
	for i := 0; i < maxAnonymousNameAttempts; i++ {
		name := fmt.Sprintf("Player_%s_%d", challengerName, mrand.IntN(10000))
		user, err := s.userService.Register(ctx, name)
		if err == nil {
			return user, nil
		}
		var taken *UsernameTakenError
		if !errors.As(err, &taken) {
			return nil, err
		}
		lastErr = err
	}
	return nil, lastErr
}
