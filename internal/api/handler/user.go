package handler

import (
	"encoding/json"
	"net/http"

	"github.com/Makuqty/GridLock/internal/api/middleware"
	"github.com/Makuqty/GridLock/internal/api/request"
	"github.com/Makuqty/GridLock/internal/api/response"
	"github.com/Makuqty/GridLock/internal/model"
	"github.com/Makuqty/GridLock/internal/services/auth"
	"github.com/Makuqty/GridLock/internal/storage"
)

// UserHandler handles account-related endpoints
type UserHandler struct {
	authService *auth.Service
	storage     storage.Storage
}

// NewUserHandler creates a new user handler
func NewUserHandler(authService *auth.Service, store storage.Storage) *UserHandler {
	return &UserHandler{
		authService: authService,
		storage:     store,
	}
}

// Register handles POST /api/v1/users/register
func (h *UserHandler) Register(w http.ResponseWriter, r *http.Request) {
	var req request.RegisterRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		WriteError(w, NewInvalidRequestError("invalid request body"))
		return
	}

	if req.Username == "" {
		WriteError(w, NewInvalidRequestError("username is required"))
		return
	}
	if req.Password == "" {
		WriteError(w, NewInvalidRequestError("password is required"))
		return
	}
	if req.DisplayName == "" {
		req.DisplayName = req.Username
	}

	user, token, err := h.authService.Register(r.Context(), model.Username(req.Username), req.Password, req.DisplayName)
	if err != nil {
		WriteError(w, err)
		return
	}

	response.JSON(w, http.StatusCreated, response.AuthResponse{
		User:  response.UserFromModel(user),
		Token: token,
	})
}

// Login handles POST /api/v1/users/login
func (h *UserHandler) Login(w http.ResponseWriter, r *http.Request) {
	var req request.LoginRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		WriteError(w, NewInvalidRequestError("invalid request body"))
		return
	}

	if req.Username == "" {
		WriteError(w, NewInvalidRequestError("username is required"))
		return
	}
	if req.Password == "" {
		WriteError(w, NewInvalidRequestError("password is required"))
		return
	}

	user, token, err := h.authService.Login(r.Context(), model.Username(req.Username), req.Password)
	if err != nil {
		WriteError(w, err)
		return
	}

	response.JSON(w, http.StatusOK, response.AuthResponse{
		User:  response.UserFromModel(user),
		Token: token,
	})
}

// GetMe handles GET /api/v1/users/me
func (h *UserHandler) GetMe(w http.ResponseWriter, r *http.Request) {
	username := middleware.MustGetUsername(r.Context())

	user, err := h.storage.GetUser(r.Context(), username)
	if err != nil {
		WriteError(w, err)
		return
	}
	response.JSON(w, http.StatusOK, response.UserFromModel(user))
}

// UpdateAvatar handles PATCH /api/v1/users/me/avatar
func (h *UserHandler) UpdateAvatar(w http.ResponseWriter, r *http.Request) {
	username := middleware.MustGetUsername(r.Context())

	var req request.UpdateAvatarRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		WriteError(w, NewInvalidRequestError("invalid request body"))
		return
	}

	if err := h.storage.SetAvatar(r.Context(), username, req.Avatar); err != nil {
		WriteError(w, err)
		return
	}
	response.NoContent(w)
}
