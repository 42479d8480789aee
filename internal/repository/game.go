package repository

import (
	"context"
	"encoding/json"
	"errors"
	"sync"

	"github.com/globetrotter/api/internal/database"
	"github.com/globetrotter/api/internal/model"
)

// GameRepository handles game data access.
//
// Round mutations (append, resolve) are read-modify-write operations over the
// embedded rounds array, so the repository serializes them per game with a
// keyed mutex. Operations on different games never contend.
type GameRepository struct {
	db    database.Database
	locks sync.Map // game id -> *sync.Mutex
}

// NewGameRepository creates a new game repository
func NewGameRepository(db database.Database) *GameRepository {
	return &GameRepository{db: db}
}

func (r *GameRepository) lock(gameID string) *sync.Mutex {
	mu, _ := r.locks.LoadOrStore(gameID, &sync.Mutex{})
	return mu.(*sync.Mutex)
}

// Create creates a new game with score zero, no rounds and active=true
func (r *GameRepository) Create(ctx context.Context, game *model.Game) error {
	query := `
		CREATE game CONTENT {
			user_id: $user_id,
			is_challenge: $is_challenge,
			challenged_by: $challenged_by,
			score: 0,
			rounds: [],
			active: true,
			created_at: time::now()
		}
	`

	vars := map[string]interface{}{
		"user_id":       game.UserID,
		"is_challenge":  game.IsChallenge,
		"challenged_by": game.ChallengedBy,
	}

	result, err := r.db.Query(ctx, query, vars)
	if err != nil {
		return err
	}

	if records, ok := extractQueryResults(result); ok && len(records) > 0 {
		if data, ok := records[0].(map[string]interface{}); ok {
			game.ID = convertSurrealID(data["id"])
			game.CreatedAt = parseTime(data["created_at"])
		}
	}
	game.Score = 0
	game.Rounds = []model.Round{}
	game.Active = true
	return nil
}

// GetByID retrieves a game by ID
func (r *GameRepository) GetByID(ctx context.Context, id string) (*model.Game, error) {
	query := `SELECT * FROM type::record($id)`
	vars := map[string]interface{}{"id": id}

	result, err := r.db.QueryOne(ctx, query, vars)
	if err != nil {
		if errors.Is(err, database.ErrNotFound) || isInvalidRecordIDError(err) {
			return nil, nil
		}
		return nil, err
	}

	game, err := parseGameResult(result)
	if err != nil {
		if errors.Is(err, database.ErrNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return game, nil
}

// ListByUser retrieves a user's games ordered newest-first
func (r *GameRepository) ListByUser(ctx context.Context, userID string) ([]model.Game, error) {
	query := `SELECT * FROM game WHERE user_id = $user_id ORDER BY created_at DESC`
	vars := map[string]interface{}{"user_id": userID}

	result, err := r.db.Query(ctx, query, vars)
	if err != nil {
		return nil, err
	}

	records, ok := extractQueryResults(result)
	if !ok {
		return nil, nil
	}

	games := make([]model.Game, 0, len(records))
	for _, rec := range records {
		game, err := parseGameResult(rec)
		if err != nil {
			continue
		}
		games = append(games, *game)
	}
	return games, nil
}

// AppendRound appends a pending round to the game's round sequence and
// returns the new round's positional index.
// Returns ErrNotFound when the game does not exist.
func (r *GameRepository) AppendRound(ctx context.Context, gameID string, round model.Round) (int, error) {
	mu := r.lock(gameID)
	mu.Lock()
	defer mu.Unlock()

	game, err := r.GetByID(ctx, gameID)
	if err != nil {
		return 0, err
	}
	if game == nil {
		return 0, database.ErrNotFound
	}

	roundData, err := toMap(round)
	if err != nil {
		return 0, err
	}

	query := `UPDATE type::record($id) SET rounds += $round`
	vars := map[string]interface{}{
		"id":    gameID,
		"round": roundData,
	}

	if err := r.db.Execute(ctx, query, vars); err != nil {
		return 0, err
	}
	return len(game.Rounds), nil
}

// ResolveRound records an answer for the round at roundIndex and recomputes
// the game's score as the count of resolved-and-correct rounds. The full
// recomputation makes the operation idempotent: resolving the same index
// twice with the same answer yields the same score.
// Returns ErrNotFound when the game does not exist and ErrOutOfRange when
// roundIndex is outside the current round sequence.
func (r *GameRepository) ResolveRound(ctx context.Context, gameID string, roundIndex int, userAnswer string, isCorrect bool, factShown string) (*model.Game, error) {
	mu := r.lock(gameID)
	mu.Lock()
	defer mu.Unlock()

	game, err := r.GetByID(ctx, gameID)
	if err != nil {
		return nil, err
	}
	if game == nil {
		return nil, database.ErrNotFound
	}
	if roundIndex < 0 || roundIndex >= len(game.Rounds) {
		return nil, database.ErrOutOfRange
	}

	game.Rounds[roundIndex].UserAnswer = &userAnswer
	game.Rounds[roundIndex].IsCorrect = &isCorrect
	game.Rounds[roundIndex].FactShown = &factShown
	game.Score = game.RecomputeScore()

	rounds := make([]interface{}, 0, len(game.Rounds))
	for _, rd := range game.Rounds {
		roundData, err := toMap(rd)
		if err != nil {
			return nil, err
		}
		rounds = append(rounds, roundData)
	}

	query := `UPDATE type::record($id) SET rounds = $rounds, score = $score`
	vars := map[string]interface{}{
		"id":     gameID,
		"rounds": rounds,
		"score":  game.Score,
	}

	if err := r.db.Execute(ctx, query, vars); err != nil {
		return nil, err
	}
	return game, nil
}

// End deactivates a game. Ending an already-ended game is a no-op success.
// Returns ErrNotFound when the game does not exist.
func (r *GameRepository) End(ctx context.Context, gameID string) (*model.Game, error) {
	mu := r.lock(gameID)
	mu.Lock()
	defer mu.Unlock()

	game, err := r.GetByID(ctx, gameID)
	if err != nil {
		return nil, err
	}
	if game == nil {
		return nil, database.ErrNotFound
	}
	if !game.Active {
		return game, nil
	}

	query := `UPDATE type::record($id) SET active = false`
	vars := map[string]interface{}{"id": gameID}

	if err := r.db.Execute(ctx, query, vars); err != nil {
		return nil, err
	}
	game.Active = false
	return game, nil
}

func parseGameResult(result interface{}) (*model.Game, error) {
	if result == nil {
		return nil, database.ErrNotFound
	}

	// Navigate through SurrealDB response structure
	if resp, ok := result.(map[string]interface{}); ok {
		if status, ok := resp["status"].(string); ok && status == "OK" {
			if resultData, ok := resp["result"].([]interface{}); ok {
				if len(resultData) == 0 {
					return nil, database.ErrNotFound
				}
				result = resultData[0]
			}
		}
	}

	// Handle array wrapper
	if arr, ok := result.([]interface{}); ok {
		if len(arr) == 0 {
			return nil, database.ErrNotFound
		}
		result = arr[0]
	}

	data, ok := result.(map[string]interface{})
	if !ok {
		return nil, errors.New("unexpected result format")
	}

	// The Go client returns the record ID as an object, convert to string
	if id, ok := data["id"]; ok {
		data["id"] = convertSurrealID(id)
	}

	// Timestamps arrive as CBOR datetime values, normalize before unmarshal
	if created, ok := data["created_at"]; ok {
		data["created_at"] = parseTime(created)
	}

	jsonBytes, err := json.Marshal(data)
	if err != nil {
		return nil, err
	}

	var game model.Game
	if err := json.Unmarshal(jsonBytes, &game); err != nil {
		return nil, err
	}
	if game.Rounds == nil {
		game.Rounds = []model.Round{}
	}

	return &game, nil
}
