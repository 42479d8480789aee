package handler

import (
	"errors"
	"io"
	"net/http"

	"github.com/globetrotter/api/internal/model"
	"github.com/globetrotter/api/internal/service"
)

// GameHandler handles game session HTTP requests
type GameHandler struct {
	svc *service.GameService
}

// NewGameHandler creates a new game handler
func NewGameHandler(svc *service.GameService) *GameHandler {
	return &GameHandler{svc: svc}
}

// Start handles POST /v1/games - start a new game
func (h *GameHandler) Start(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	var req model.StartGameRequest
	if err := DecodeJSON(r, &req); err != nil {
		WriteError(w, model.NewBadRequestError("invalid request body"))
		return
	}
	if errs := req.Validate(); len(errs) > 0 {
		WriteError(w, model.NewValidationError(errs))
		return
	}

	game, err := h.svc.Start(ctx, req.UserID)
	if err != nil {
		WriteError(w, MapServiceError(err))
		return
	}

	WriteData(w, http.StatusCreated, game)
}

// Get handles GET /v1/games/{gameId} - fetch a game
func (h *GameHandler) Get(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	gameID := r.PathValue("gameId")
	if gameID == "" {
		WriteError(w, model.NewBadRequestError("game ID required"))
		return
	}

	game, err := h.svc.Get(ctx, gameID)
	if err != nil {
		WriteError(w, MapServiceError(err))
		return
	}

	WriteData(w, http.StatusOK, game)
}

// NextRound handles POST /v1/games/{gameId}/round - serve the next round
func (h *GameHandler) NextRound(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	gameID := r.PathValue("gameId")
	if gameID == "" {
		WriteError(w, model.NewBadRequestError("game ID required"))
		return
	}

	// The body is optional; anonymous play sends none
	var req model.NextRoundRequest
	if err := DecodeJSON(r, &req); err != nil && !errors.Is(err, io.EOF) {
		WriteError(w, model.NewBadRequestError("invalid request body"))
		return
	}

	round, err := h.svc.NextRound(ctx, gameID, req.UserID)
	if err != nil {
		WriteError(w, MapServiceError(err))
		return
	}

	WriteJSON(w, http.StatusOK, round)
}

// SubmitAnswer handles POST /v1/games/{gameId}/answer - resolve a round
func (h *GameHandler) SubmitAnswer(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	gameID := r.PathValue("gameId")
	if gameID == "" {
		WriteError(w, model.NewBadRequestError("game ID required"))
		return
	}

	var req model.SubmitAnswerRequest
	if err := DecodeJSON(r, &req); err != nil {
		WriteError(w, model.NewBadRequestError("invalid request body"))
		return
	}
	if errs := req.Validate(); len(errs) > 0 {
		WriteError(w, model.NewValidationError(errs))
		return
	}

	result, err := h.svc.SubmitAnswer(ctx, gameID, &req)
	if err != nil {
		WriteError(w, MapServiceError(err))
		return
	}

	WriteJSON(w, http.StatusOK, result)
}

// End handles POST /v1/games/{gameId}/end - deactivate a game
func (h *GameHandler) End(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	gameID := r.PathValue("gameId")
	if gameID == "" {
		WriteError(w, model.NewBadRequestError("game ID required"))
		return
	}

	game, err := h.svc.End(ctx, gameID)
	if err != nil {
		WriteError(w, MapServiceError(err))
		return
	}

	WriteData(w, http.StatusOK, game)
}

// ListByUser handles GET /v1/games/user/{userId} - a user's games newest-first
func (h *GameHandler) ListByUser(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	userID := r.PathValue("userId")
	if userID == "" {
		WriteError(w, model.NewBadRequestError("user ID required"))
		return
	}

	games, err := h.svc.ListByUser(ctx, userID)
	if err != nil {
		WriteError(w, MapServiceError(err))
		return
	}

	WriteCollection(w, http.StatusOK, games, len(games))
}
