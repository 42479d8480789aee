package repository

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/globetrotter/api/internal/database"
	"github.com/globetrotter/api/internal/model"
)

// UserRepository handles user data access
type UserRepository struct {
	db database.Database
}

// NewUserRepository creates a new user repository
func NewUserRepository(db database.Database) *UserRepository {
	return &UserRepository{db: db}
}

// Create creates a new user with zeroed stats and an empty play history
func (r *UserRepository) Create(ctx context.Context, user *model.User) error {
	query := `
		CREATE user CONTENT {
			username: $username,
			challenge_token: $challenge_token,
			game_stats: {
				correct_answers: 0,
				incorrect_answers: 0,
				total_played: 0
			},
			played_destinations: [],
			created_on: time::now()
		}
	`

	vars := map[string]interface{}{
		"username":        user.Username,
		"challenge_token": user.ChallengeToken,
	}

	result, err := r.db.Query(ctx, query, vars)
	if err != nil {
		if isUniqueConstraintError(err) {
			return fmt.Errorf("%w: username already exists", database.ErrDuplicate)
		}
		return err
	}

	if records, ok := extractQueryResults(result); ok && len(records) > 0 {
		if data, ok := records[0].(map[string]interface{}); ok {
			user.ID = convertSurrealID(data["id"])
			user.CreatedOn = parseTime(data["created_on"])
		}
	}
	user.PlayedDestinations = []string{}
	return nil
}

// GetByID retrieves a user by ID
func (r *UserRepository) GetByID(ctx context.Context, id string) (*model.User, error) {
	query := `SELECT * FROM type::record($id)`
	vars := map[string]interface{}{"id": id}

	result, err := r.db.QueryOne(ctx, query, vars)
	if err != nil {
		if errors.Is(err, database.ErrNotFound) || isInvalidRecordIDError(err) {
			return nil, nil
		}
		return nil, err
	}

	user, err := parseUserResult(result)
	if err != nil {
		if errors.Is(err, database.ErrNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return user, nil
}

// GetByUsername retrieves a user by username
func (r *UserRepository) GetByUsername(ctx context.Context, username string) (*model.User, error) {
	query := `SELECT * FROM user WHERE username = $username LIMIT 1`
	vars := map[string]interface{}{"username": username}

	result, err := r.db.QueryOne(ctx, query, vars)
	if err != nil {
		if errors.Is(err, database.ErrNotFound) {
			return nil, nil
		}
		return nil, err
	}

	user, err := parseUserResult(result)
	if err != nil {
		if errors.Is(err, database.ErrNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return user, nil
}

// GetByChallengeToken retrieves a user by challenge token
func (r *UserRepository) GetByChallengeToken(ctx context.Context, token string) (*model.User, error) {
	query := `SELECT * FROM user WHERE challenge_token = $token LIMIT 1`
	vars := map[string]interface{}{"token": token}

	result, err := r.db.QueryOne(ctx, query, vars)
	if err != nil {
		if errors.Is(err, database.ErrNotFound) {
			return nil, nil
		}
		return nil, err
	}

	user, err := parseUserResult(result)
	if err != nil {
		if errors.Is(err, database.ErrNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return user, nil
}

// RecordOutcome atomically increments total_played and exactly one of the
// correct/incorrect counters. The increment happens store-side so concurrent
// calls for the same user never lose updates.
func (r *UserRepository) RecordOutcome(ctx context.Context, userID string, correct bool) error {
	counter := "incorrect_answers"
	if correct {
		counter = "correct_answers"
	}

	query := fmt.Sprintf(`
		UPDATE type::record($id) SET
			game_stats.total_played += 1,
			game_stats.%s += 1
	`, counter)
	vars := map[string]interface{}{"id": userID}

	return r.db.Execute(ctx, query, vars)
}

// MarkPlayed adds a destination to the user's play history. The insertion is
// a store-side set union, so marking an already-played destination is a no-op
// and concurrent rounds never lose updates.
func (r *UserRepository) MarkPlayed(ctx context.Context, userID, destinationID string) error {
	query := `
		UPDATE type::record($id) SET
			played_destinations = array::union(played_destinations, [$destination])
	`
	vars := map[string]interface{}{
		"id":          userID,
		"destination": destinationID,
	}

	return r.db.Execute(ctx, query, vars)
}

// GetPlayedSet retrieves the set of destination ids the user has already played
func (r *UserRepository) GetPlayedSet(ctx context.Context, userID string) ([]string, error) {
	user, err := r.GetByID(ctx, userID)
	if err != nil {
		return nil, err
	}
	if user == nil {
		return nil, database.ErrNotFound
	}
	return user.PlayedDestinations, nil
}

func parseUserResult(result interface{}) (*model.User, error) {
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

	// Play history entries are record ids too
	if played, ok := data["played_destinations"].([]interface{}); ok {
		ids := make([]interface{}, 0, len(played))
		for _, p := range played {
			ids = append(ids, convertSurrealID(p))
		}
		data["played_destinations"] = ids
	}

	// Timestamps arrive as CBOR datetime values, normalize before unmarshal
	if created, ok := data["created_on"]; ok {
		data["created_on"] = parseTime(created)
	}

	jsonBytes, err := json.Marshal(data)
	if err != nil {
		return nil, err
	}

	var user model.User
	if err := json.Unmarshal(jsonBytes, &user); err != nil {
		return nil, err
	}

	return &user, nil
}
