package repository

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/globetrotter/api/internal/database"
	"github.com/globetrotter/api/internal/model"
)

// DestinationRepository handles destination data access
type DestinationRepository struct {
	db database.Database
}

// NewDestinationRepository creates a new destination repository
func NewDestinationRepository(db database.Database) *DestinationRepository {
	return &DestinationRepository{db: db}
}

// Create creates a new destination
func (r *DestinationRepository) Create(ctx context.Context, dest *model.Destination) error {
	query := `
		CREATE destination CONTENT {
			city: $city,
			country: $country,
			continent: $continent,
			clues: $clues,
			fun_facts: $fun_facts,
			trivia: $trivia,
			image_url: $image_url
		}
	`

	vars := map[string]interface{}{
		"city":      dest.City,
		"country":   dest.Country,
		"continent": dest.Continent,
		"clues":     dest.Clues,
		"fun_facts": dest.FunFacts,
		"trivia":    dest.Trivia,
		"image_url": dest.ImageURL,
	}

	result, err := r.db.Query(ctx, query, vars)
	if err != nil {
		return err
	}

	if records, ok := extractQueryResults(result); ok && len(records) > 0 {
		if data, ok := records[0].(map[string]interface{}); ok {
			dest.ID = convertSurrealID(data["id"])
		}
	}
	return nil
}

// CreateBulk inserts a batch of destinations atomically.
// Returns the number of destinations queued for insertion.
func (r *DestinationRepository) CreateBulk(ctx context.Context, dests []model.Destination) (int, error) {
	if len(dests) == 0 {
		return 0, nil
	}

	batch := database.NewAtomicBatch()
	for _, dest := range dests {
		batch.Add(`
			CREATE destination CONTENT {
				city: $city,
				country: $country,
				continent: $continent,
				clues: $clues,
				fun_facts: $fun_facts,
				trivia: $trivia,
				image_url: $image_url
			}
		`, map[string]interface{}{
			"city":      dest.City,
			"country":   dest.Country,
			"continent": dest.Continent,
			"clues":     dest.Clues,
			"fun_facts": dest.FunFacts,
			"trivia":    dest.Trivia,
			"image_url": dest.ImageURL,
		})
	}

	if err := batch.Execute(ctx, r.db); err != nil {
		return 0, err
	}
	return batch.Len(), nil
}

// GetByID retrieves a destination by ID
func (r *DestinationRepository) GetByID(ctx context.Context, id string) (*model.Destination, error) {
	query := `SELECT * FROM type::record($id)`
	vars := map[string]interface{}{"id": id}

	result, err := r.db.QueryOne(ctx, query, vars)
	if err != nil {
		if errors.Is(err, database.ErrNotFound) || isInvalidRecordIDError(err) {
			return nil, nil
		}
		return nil, err
	}

	dest, err := parseDestinationResult(result)
	if err != nil {
		if errors.Is(err, database.ErrNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return dest, nil
}

// GetRandom retrieves a uniformly random destination whose id is not in the
// excluded set. When the exclusion set covers the whole catalog the exclusion
// is dropped and a destination is sampled from the full catalog instead.
// Returns nil when the catalog is empty.
func (r *DestinationRepository) GetRandom(ctx context.Context, excluded []string) (*model.Destination, error) {
	if len(excluded) > 0 {
		query := `
			SELECT * FROM destination
			WHERE id NOTINSIDE array::map($excluded, |$v| type::record($v))
			ORDER BY rand() LIMIT 1
		`
		vars := map[string]interface{}{"excluded": excluded}

		result, err := r.db.QueryOne(ctx, query, vars)
		if err == nil {
			return parseDestinationResult(result)
		}
		if !errors.Is(err, database.ErrNotFound) {
			return nil, err
		}
		// Exclusion set exhausted the catalog, fall through to full sample
	}

	query := `SELECT * FROM destination ORDER BY rand() LIMIT 1`
	result, err := r.db.QueryOne(ctx, query, nil)
	if err != nil {
		if errors.Is(err, database.ErrNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return parseDestinationResult(result)
}

// SampleOptions retrieves up to limit random answer options whose cities are
// not in the excluded list. Used to build distractor sets.
func (r *DestinationRepository) SampleOptions(ctx context.Context, limit int, excludedCities []string) ([]model.AnswerOption, error) {
	query := `
		SELECT id, city, country FROM destination
		WHERE city NOTINSIDE $cities
		ORDER BY rand() LIMIT $limit
	`
	vars := map[string]interface{}{
		"cities": excludedCities,
		"limit":  limit,
	}

	result, err := r.db.Query(ctx, query, vars)
	if err != nil {
		return nil, err
	}

	records, ok := extractQueryResults(result)
	if !ok {
		return nil, nil
	}

	options := make([]model.AnswerOption, 0, len(records))
	for _, rec := range records {
		data, ok := rec.(map[string]interface{})
		if !ok {
			continue
		}
		options = append(options, model.AnswerOption{
			ID:      convertSurrealID(data["id"]),
			City:    fmt.Sprintf("%v", data["city"]),
			Country: fmt.Sprintf("%v", data["country"]),
		})
	}
	return options, nil
}

// List retrieves destinations with pagination
func (r *DestinationRepository) List(ctx context.Context, limit, offset int) ([]model.Destination, error) {
	query := `SELECT * FROM destination ORDER BY city LIMIT $limit START $offset`
	vars := map[string]interface{}{
		"limit":  limit,
		"offset": offset,
	}

	result, err := r.db.Query(ctx, query, vars)
	if err != nil {
		return nil, err
	}

	records, ok := extractQueryResults(result)
	if !ok {
		return nil, nil
	}

	dests := make([]model.Destination, 0, len(records))
	for _, rec := range records {
		dest, err := parseDestinationResult(rec)
		if err != nil {
			continue
		}
		dests = append(dests, *dest)
	}
	return dests, nil
}

// Count returns the total number of destinations in the catalog
func (r *DestinationRepository) Count(ctx context.Context) (int, error) {
	query := `SELECT count() FROM destination GROUP ALL`

	result, err := r.db.QueryOne(ctx, query, nil)
	if err != nil {
		if errors.Is(err, database.ErrNotFound) {
			return 0, nil
		}
		return 0, err
	}

	if data, ok := result.(map[string]interface{}); ok {
		return extractCountValue(data["count"]), nil
	}
	return extractCount(result), nil
}

func parseDestinationResult(result interface{}) (*model.Destination, error) {
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

	jsonBytes, err := json.Marshal(data)
	if err != nil {
		return nil, err
	}

	var dest model.Destination
	if err := json.Unmarshal(jsonBytes, &dest); err != nil {
		return nil, err
	}

	return &dest, nil
}
