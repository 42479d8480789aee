package model

import "time"

// GameStats aggregates a user's lifetime accuracy. TotalPlayed always equals
// CorrectAnswers + IncorrectAnswers; all three move together in a single
// atomic store update.
type GameStats struct {
	CorrectAnswers   int `json:"correct_answers"`
	IncorrectAnswers int `json:"incorrect_answers"`
	TotalPlayed      int `json:"total_played"`
}

// User represents a registered player. Usernames are freely chosen and
// matched case-sensitively; there are no passwords. The challenge token is
// an unguessable bearer capability embedded in shareable challenge links.
type User struct {
	ID                 string    `json:"id"`
	Username           string    `json:"username"`
	ChallengeToken     string    `json:"challenge_token"`
	GameStats          GameStats `json:"game_stats"`
	PlayedDestinations []string  `json:"played_destinations,omitempty"`
	CreatedOn          time.Time `json:"created_on"`
}

// RegisterRequest represents a registration attempt
type RegisterRequest struct {
	Username string `json:"username"`
}

// Validate checks required fields
func (r *RegisterRequest) Validate() []FieldError {
	if r.Username == "" {
		return []FieldError{{Field: "username", Message: "username is required"}}
	}
	return nil
}

// CreateChallengeRequest represents a request for a shareable challenge link.
// FrontendURL overrides the configured link base when present.
type CreateChallengeRequest struct {
	UserID      string `json:"user_id"`
	FrontendURL string `json:"frontend_url,omitempty"`
}

// AcceptChallengeRequest represents a challenged player joining via a link.
// Username is optional; an anonymous name is synthesized when absent.
type AcceptChallengeRequest struct {
	ChallengeToken string `json:"challenge_token"`
	Username       string `json:"username,omitempty"`
}

// ChallengeInvite is the payload returned when a challenge is created
type ChallengeInvite struct {
	ChallengeLink  string    `json:"challenge_link"`
	ChallengeToken string    `json:"challenge_token"`
	Username       string    `json:"username"`
	GameStats      GameStats `json:"game_stats"`
	GameID         string    `json:"game_id"`
}

// ChallengeAcceptance is the payload returned when a challenge is accepted
type ChallengeAcceptance struct {
	User       *User `json:"user"`
	Challenger *User `json:"challenger"`
	Game       *Game `json:"game"`
}
