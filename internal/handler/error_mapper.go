package handler

import (
	"errors"

	"github.com/globetrotter/api/internal/model"
	"github.com/globetrotter/api/internal/service"
)

// MapServiceError converts a service error to a ProblemDetails response.
// This centralizes error handling logic for all handlers, ensuring consistent
// HTTP status codes and error messages across the API.
func MapServiceError(err error) *model.ProblemDetails {
	if err == nil {
		return nil
	}

	// Pass through errors already shaped as problem details
	var pd *model.ProblemDetails
	if errors.As(err, &pd) {
		return pd
	}

	// Username conflicts carry a suggested alternative
	var taken *service.UsernameTakenError
	if errors.As(err, &taken) {
		return model.NewUsernameTakenError(taken.Username, taken.Suggestion)
	}

	switch {
	// ===== Not Found Errors → 404 =====
	case errors.Is(err, service.ErrUserNotFound):
		return model.NewNotFoundError("user")
	case errors.Is(err, service.ErrGameNotFound):
		return model.NewNotFoundError("game")
	case errors.Is(err, service.ErrDestinationNotFound):
		return model.NewNotFoundError("destination")
	case errors.Is(err, service.ErrChallengeNotFound):
		return model.NewNotFoundError("challenge")

	// ===== Conflict Errors → 409 =====
	case errors.Is(err, service.ErrUsernameExhausted):
		return model.NewConflictError(err.Error())

	// ===== Validation Errors → 422 =====
	case errors.Is(err, service.ErrRoundOutOfRange):
		return model.NewValidationError([]model.FieldError{{Field: "round_index", Message: err.Error()}})

	// State errors → 422
	case errors.Is(err, service.ErrGameEnded):
		return model.NewValidationError([]model.FieldError{{Field: "state", Message: err.Error()}})

	// ===== Catalog Errors → 500 =====
	// An underprovisioned catalog is an operational fault, not client error
	case errors.Is(err, service.ErrEmptyCatalog),
		errors.Is(err, service.ErrInsufficientCatalog):
		return model.NewInternalError(err.Error())

	// ===== Default → 500 =====
	default:
		return model.NewInternalError("")
	}
}

// MapServiceErrorWithContext converts a service error to a ProblemDetails response
// with additional context about the operation that failed.
func MapServiceErrorWithContext(err error, operation string) *model.ProblemDetails {
	pd := MapServiceError(err)
	if pd != nil && pd.Status == 500 && pd.Detail == "An unexpected error occurred" {
		pd.Detail = operation + ": an unexpected error occurred"
	}
	return pd
}
