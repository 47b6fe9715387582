package handler

import (
	"context"
	"encoding/json"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
	"github.com/tabletap/api/internal/database"
)

// CategoryServicer is what the category handler needs from the catalog
// service.
type CategoryServicer interface {
	CreateCategory(ctx context.Context, name, description string) (database.Category, error)
	ListCategories(ctx context.Context) ([]database.Category, error)
	RemoveCategory(ctx context.Context, id uuid.UUID) error
}

// CategoryHandler handles menu category management.
type CategoryHandler struct {
	service CategoryServicer
}

// NewCategoryHandler creates a new CategoryHandler.
func NewCategoryHandler(service CategoryServicer) *CategoryHandler {
	return &CategoryHandler{service: service}
}

// RegisterRoutes registers the admin-only category mutation routes.
func (h *CategoryHandler) RegisterRoutes(r chi.Router) {
	r.Post("/", h.Create)
	r.Delete("/{id}", h.Delete)
}

type createCategoryRequest struct {
	Name        string `json:"name"`
	Description string `json:"description"`
}

// Create handles POST /categories.
func (h *CategoryHandler) Create(w http.ResponseWriter, r *http.Request) {
	var req createCategoryRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	category, err := h.service.CreateCategory(r.Context(), req.Name, req.Description)
	if err != nil {
		serveError(w, "create category", err)
		return
	}
	writeSuccess(w, http.StatusCreated, toCategoryResponse(category))
}

// List handles GET /categories. Available to everyone browsing the menu.
func (h *CategoryHandler) List(w http.ResponseWriter, r *http.Request) {
	categories, err := h.service.ListCategories(r.Context())
	if err != nil {
		serveError(w, "list categories", err)
		return
	}

	resp := make([]categoryResponse, len(categories))
	for i, c := range categories {
		resp[i] = toCategoryResponse(c)
	}
	writeSuccess(w, http.StatusOK, resp)
}

// Delete handles DELETE /categories/{id}. Scheduled windows for the
// category are cancelled or truncated in the same transaction.
func (h *CategoryHandler) Delete(w http.ResponseWriter, r *http.Request) {
	categoryID, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid category ID")
		return
	}

	if err := h.service.RemoveCategory(r.Context(), categoryID); err != nil {
		serveError(w, "delete category", err)
		return
	}
	writeSuccess(w, http.StatusOK, nil)
}
