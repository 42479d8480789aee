package handler

import (
	"net/http"
	"strings"

	"github.com/globetrotter/api/internal/model"
	"github.com/globetrotter/api/internal/service"
)

// UserHandler handles user registration, lookup and challenge HTTP requests
type UserHandler struct {
	users *service.UserService
	games *service.GameService
}

// NewUserHandler creates a new user handler
func NewUserHandler(users *service.UserService, games *service.GameService) *UserHandler {
	return &UserHandler{users: users, games: games}
}

// Register handles POST /v1/users/register - register a username
func (h *UserHandler) Register(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	var req model.RegisterRequest
	if err := DecodeJSON(r, &req); err != nil {
		WriteError(w, model.NewBadRequestError("invalid request body"))
		return
	}
	if errs := req.Validate(); len(errs) > 0 {
		WriteError(w, model.NewValidationError(errs))
		return
	}

	user, err := h.users.Register(ctx, req.Username)
	if err != nil {
		WriteError(w, MapServiceError(err))
		return
	}

	WriteData(w, http.StatusCreated, user)
}

// Get handles GET /v1/users/{userId} - fetch a user
func (h *UserHandler) Get(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	userID := r.PathValue("userId")
	if userID == "" {
		WriteError(w, model.NewBadRequestError("user ID required"))
		return
	}

	user, err := h.users.GetByID(ctx, userID)
	if err != nil {
		WriteError(w, MapServiceError(err))
		return
	}

	WriteData(w, http.StatusOK, user)
}

// GetByUsername handles GET /v1/users/username/{username}
func (h *UserHandler) GetByUsername(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	username := r.PathValue("username")
	if username == "" {
		WriteError(w, model.NewBadRequestError("username required"))
		return
	}

	user, err := h.users.GetByUsername(ctx, username)
	if err != nil {
		WriteError(w, MapServiceError(err))
		return
	}

	WriteData(w, http.StatusOK, user)
}

// GetByChallengeToken handles GET /v1/users/challenge/{token} - resolve a
// challenge link to the challenger's public profile
func (h *UserHandler) GetByChallengeToken(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	token := r.PathValue("token")
	if token == "" {
		WriteError(w, model.NewBadRequestError("challenge token required"))
		return
	}

	user, err := h.users.GetByChallengeToken(ctx, token)
	if err != nil {
		WriteError(w, MapServiceError(err))
		return
	}

	WriteData(w, http.StatusOK, user)
}

// CreateChallenge handles POST /v1/users/challenge - create a shareable
// challenge. The link base comes from the request body, then the Origin
// header, then the configured frontend URL.
func (h *UserHandler) CreateChallenge(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	var req model.CreateChallengeRequest
	if err := DecodeJSON(r, &req); err != nil {
		WriteError(w, model.NewBadRequestError("invalid request body"))
		return
	}
	if req.UserID == "" {
		WriteError(w, model.NewValidationError([]model.FieldError{
			{Field: "user_id", Message: "user_id is required"},
		}))
		return
	}

	invite, err := h.games.CreateChallenge(ctx, req.UserID, originOrDefault(r, req.FrontendURL))
	if err != nil {
		WriteError(w, MapServiceError(err))
		return
	}

	WriteData(w, http.StatusCreated, invite)
}

// AcceptChallenge handles POST /v1/users/challenge/accept - join via a
// challenge link, registering or reusing an account
func (h *UserHandler) AcceptChallenge(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	var req model.AcceptChallengeRequest
	if err := DecodeJSON(r, &req); err != nil {
		WriteError(w, model.NewBadRequestError("invalid request body"))
		return
	}
	if req.ChallengeToken == "" {
		WriteError(w, model.NewValidationError([]model.FieldError{
			{Field: "challenge_token", Message: "challenge_token is required"},
		}))
		return
	}

	acceptance, err := h.games.AcceptChallenge(ctx, &req)
	if err != nil {
		WriteError(w, MapServiceError(err))
		return
	}

	WriteData(w, http.StatusCreated, acceptance)
}

// originOrDefault resolves the challenge link base from an explicit request
// field, then the Origin header, then empty (the service falls back to the
// configured frontend URL).
func originOrDefault(r *http.Request, explicit string) string {
	if explicit != "" {
		return strings.TrimRight(explicit, "/")
	}
	return r.Header.Get("Origin")
}
