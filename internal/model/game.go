package model

import "time"

// Round is one question instance within a game, bound to one destination.
// A round is pending while UserAnswer, IsCorrect and FactShown are nil and
// resolved once an answer is submitted. Rounds are addressed by position in
// the game's append-only sequence, so indexes stay stable for callers.
type Round struct {
	DestinationID string         `json:"destination_id"`
	CluesShown    []string       `json:"clues_shown"`
	AnswerOptions []AnswerOption `json:"answer_options"`
	UserAnswer    *string        `json:"user_answer"`
	IsCorrect     *bool          `json:"is_correct"`
	FactShown     *string        `json:"fact_shown"`
}

// Resolved reports whether an answer has been recorded for this round
func (r Round) Resolved() bool {
	return r.UserAnswer != nil
}

// Game represents one play session. Score is always recomputed as the count
// of resolved-and-correct rounds, never incremented in place, so it stays
// consistent when round resolutions land out of order. Ended games are
// deactivated, never deleted.
type Game struct {
	ID           string    `json:"id"`
	UserID       string    `json:"user_id"`
	IsChallenge  bool      `json:"is_challenge"`
	ChallengedBy string    `json:"challenged_by,omitempty"`
	Score        int       `json:"score"`
	Rounds       []Round   `json:"rounds"`
	Active       bool      `json:"active"`
	CreatedAt    time.Time `json:"created_at"`
}

// RecomputeScore returns the count of resolved rounds answered correctly
func (g *Game) RecomputeScore() int {
	score := 0
	for _, r := range g.Rounds {
		if r.IsCorrect != nil && *r.IsCorrect {
			score++
		}
	}
	return score
}

// RoundView is the per-round payload returned by the next-round operation.
// It includes the correct answer for client-side display bookkeeping; the
// client is trusted not to peek.
type RoundView struct {
	DestinationID string         `json:"destination_id"`
	Clues         []string       `json:"clues"`
	AnswerOptions []AnswerOption `json:"answer_options"`
	RoundIndex    int            `json:"round_index"`
	CorrectAnswer CorrectAnswer  `json:"correct_answer"`
}

// AnswerResult is the outcome of submitting an answer
type AnswerResult struct {
	IsCorrect     bool          `json:"is_correct"`
	Fact          string        `json:"fact"`
	Game          *Game         `json:"game,omitempty"`
	CorrectAnswer CorrectAnswer `json:"correct_answer"`
}

// StartGameRequest represents a request to start a new game
type StartGameRequest struct {
	UserID string `json:"user_id"`
}

// Validate checks required fields
func (r *StartGameRequest) Validate() []FieldError {
	if r.UserID == "" {
		return []FieldError{{Field: "user_id", Message: "user_id is required"}}
	}
	return nil
}

// NextRoundRequest represents a request for the next round of a game.
// UserID is optional; anonymous play skips the exclusion set.
type NextRoundRequest struct {
	UserID string `json:"user_id,omitempty"`
}

// SubmitAnswerRequest represents an answer submission within a game
type SubmitAnswerRequest struct {
	DestinationID string `json:"destination_id"`
	Answer        string `json:"answer"`
	RoundIndex    int    `json:"round_index"`
}

// Validate checks required fields
func (r *SubmitAnswerRequest) Validate() []FieldError {
	var errs []FieldError
	if r.DestinationID == "" {
		errs = append(errs, FieldError{Field: "destination_id", Message: "destination_id is required"})
	}
	if r.Answer == "" {
		errs = append(errs, FieldError{Field: "answer", Message: "answer is required"})
	}
	if r.RoundIndex < 0 {
		errs = append(errs, FieldError{Field: "round_index", Message: "round_index must not be negative"})
	}
	return errs
}
