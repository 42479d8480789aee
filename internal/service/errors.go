package service

import (
	"errors"
	"fmt"
)

// Centralized service layer errors.
// All errors returned by service methods are defined here for consistency
// and to make error handling in handlers predictable.

// ===== User Errors =====
var (
	ErrUserNotFound      = errors.New("user not found")
	ErrChallengeNotFound = errors.New("challenge not found")
	ErrUsernameExhausted = errors.New("could not find an available username")
)

// ===== Destination Errors =====
var (
	ErrDestinationNotFound = errors.New("destination not found")
	ErrEmptyCatalog        = errors.New("destination catalog is empty")
	ErrInsufficientCatalog = errors.New("not enough distinct destinations for an option set")
)

// ===== Game Errors =====
var (
	ErrGameNotFound    = errors.New("game not found")
	ErrGameEnded       = errors.New("game is no longer active")
	ErrRoundOutOfRange = errors.New("round index out of range")
)

// UsernameTakenError reports a registration conflict together with a
// verified-available alternative, so the caller can offer it directly.
type UsernameTakenError struct {
	Username   string
	Suggestion string
}

func (e *UsernameTakenError) Error() string {
	return fmt.Sprintf("username %q already taken, suggestion: %q", e.Username, e.Suggestion)
}
