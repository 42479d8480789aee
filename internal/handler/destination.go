package handler

import (
	"log/slog"
	"net/http"
	"strconv"

	"github.com/globetrotter/api/internal/model"
	"github.com/globetrotter/api/internal/service"
)

// DestinationHandler handles destination catalog HTTP requests
type DestinationHandler struct {
	svc   *service.DestinationService
	users *service.UserService
}

// NewDestinationHandler creates a new destination handler
func NewDestinationHandler(svc *service.DestinationService, users *service.UserService) *DestinationHandler {
	return &DestinationHandler{svc: svc, users: users}
}

// Random handles GET /v1/destinations/random - serve a stateless round.
// An optional user_id query parameter excludes destinations the user has
// already played.
func (h *DestinationHandler) Random(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	var excluded []string
	userID := r.URL.Query().Get("user_id")
	if userID != "" {
		played, err := h.users.GetPlayedSet(ctx, userID)
		if err != nil {
			WriteError(w, MapServiceError(err))
			return
		}
		excluded = played
	}

	round, err := h.svc.RandomRound(ctx, excluded)
	if err != nil {
		WriteError(w, MapServiceError(err))
		return
	}

	if userID != "" {
		// A failed history update must not cost the player the round.
		if err := h.users.MarkPlayed(ctx, userID, round.DestinationID); err != nil {
			slog.Warn("failed to mark destination played",
				slog.String("user_id", userID),
				slog.String("destination_id", round.DestinationID),
				slog.String("error", err.Error()))
		}
	}

	WriteJSON(w, http.StatusOK, round)
}

// Validate handles POST /v1/destinations/validate - standalone answer check
func (h *DestinationHandler) Validate(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	var req model.ValidateAnswerRequest
	if err := DecodeJSON(r, &req); err != nil {
		WriteError(w, model.NewBadRequestError("invalid request body"))
		return
	}
	if errs := req.Validate(); len(errs) > 0 {
		WriteError(w, model.NewValidationError(errs))
		return
	}

	result, err := h.svc.ValidateAnswer(ctx, &req)
	if err != nil {
		WriteError(w, MapServiceError(err))
		return
	}

	WriteJSON(w, http.StatusOK, result)
}

// List handles GET /v1/destinations - list the catalog
func (h *DestinationHandler) List(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	limit, _ := strconv.Atoi(r.URL.Query().Get("limit"))
	offset, _ := strconv.Atoi(r.URL.Query().Get("offset"))

	dests, err := h.svc.List(ctx, limit, offset)
	if err != nil {
		WriteError(w, MapServiceError(err))
		return
	}

	WriteCollection(w, http.StatusOK, dests, len(dests))
}

// Create handles POST /v1/destinations - add a single destination
func (h *DestinationHandler) Create(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	var req model.CreateDestinationRequest
	if err := DecodeJSON(r, &req); err != nil {
		WriteError(w, model.NewBadRequestError("invalid request body"))
		return
	}
	if errs := req.Validate(); len(errs) > 0 {
		WriteError(w, model.NewValidationError(errs))
		return
	}

	dest, err := h.svc.Create(ctx, &req)
	if err != nil {
		WriteError(w, MapServiceError(err))
		return
	}

	WriteData(w, http.StatusCreated, dest)
}

// Import handles POST /v1/destinations/import - bulk import a dataset
func (h *DestinationHandler) Import(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	var records []model.DestinationRecord
	if err := DecodeJSON(r, &records); err != nil {
		WriteError(w, model.NewBadRequestError("invalid request body"))
		return
	}
	if len(records) == 0 {
		WriteError(w, model.NewValidationError([]model.FieldError{
			{Field: "destinations", Message: "at least one destination is required"},
		}))
		return
	}

	inserted, err := h.svc.Import(ctx, records)
	if err != nil {
		WriteError(w, MapServiceError(err))
		return
	}

	WriteJSON(w, http.StatusCreated, map[string]interface{}{
		"inserted": inserted,
		"skipped":  len(records) - inserted,
	})
}

// Count handles GET /v1/destinations/count - catalog size
func (h *DestinationHandler) Count(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	count, err := h.svc.Count(ctx)
	if err != nil {
		WriteError(w, MapServiceError(err))
		return
	}

	WriteJSON(w, http.StatusOK, map[string]int{"count": count})
}
