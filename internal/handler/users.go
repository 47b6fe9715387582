package handler

import (
	"context"
	"encoding/json"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/tabletap/api/internal/database"
	"github.com/tabletap/api/internal/service"
)

// UserServicer is what the user handler needs from the user service.
type UserServicer interface {
	Create(ctx context.Context, req service.CreateUserRequest) (database.User, error)
	List(ctx context.Context) ([]database.User, error)
}

// UserHandler handles admin account management.
type UserHandler struct {
	service UserServicer
}

// NewUserHandler creates a new UserHandler.
func NewUserHandler(service UserServicer) *UserHandler {
	return &UserHandler{service: service}
}

// RegisterRoutes registers the admin-only user routes.
func (h *UserHandler) RegisterRoutes(r chi.Router) {
	r.Post("/", h.Create)
	r.Get("/", h.List)
}

type createUserRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
	FullName string `json:"full_name"`
	Role     string `json:"role"`
}

// Create handles POST /users.
func (h *UserHandler) Create(w http.ResponseWriter, r *http.Request) {
	var req createUserRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	user, err := h.service.Create(r.Context(), service.CreateUserRequest{
		Email:    req.Email,
		Password: req.Password,
		FullName: req.FullName,
		Role:     req.Role,
	})
	if err != nil {
		serveError(w, "create user", err)
		return
	}
	writeSuccess(w, http.StatusCreated, toUserResponse(user))
}

// List handles GET /users.
func (h *UserHandler) List(w http.ResponseWriter, r *http.Request) {
	users, err := h.service.List(r.Context())
	if err != nil {
		serveError(w, "list users", err)
		return
	}

	resp := make([]userResponse, len(users))
	for i, u := range users {
		resp[i] = toUserResponse(u)
	}
	writeSuccess(w, http.StatusOK, resp)
}
