package handler

import (
	"context"
	"encoding/json"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/tabletap/api/internal/database"
	"github.com/tabletap/api/internal/service"
)

// ItemServicer is what the item handler needs from the catalog service.
type ItemServicer interface {
	CreateItem(ctx context.Context, req service.CreateItemRequest) (database.Item, error)
	ListItems(ctx context.Context) ([]database.Item, error)
	RemoveItem(ctx context.Context, id uuid.UUID) error
}

// ItemHandler handles menu item management.
type ItemHandler struct {
	service ItemServicer
}

// NewItemHandler creates a new ItemHandler.
func NewItemHandler(service ItemServicer) *ItemHandler {
	return &ItemHandler{service: service}
}

// RegisterRoutes registers the admin-only item mutation routes.
func (h *ItemHandler) RegisterRoutes(r chi.Router) {
	r.Post("/", h.Create)
	r.Delete("/{id}", h.Delete)
}

type createItemRequest struct {
	CategoryID  string `json:"category_id"`
	Name        string `json:"name"`
	Price       string `json:"price"`
	Description string `json:"description"`
}

// Create handles POST /items.
func (h *ItemHandler) Create(w http.ResponseWriter, r *http.Request) {
	var req createItemRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	categoryID, err := uuid.Parse(req.CategoryID)
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid category_id")
		return
	}
	price, err := decimal.NewFromString(req.Price)
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid price")
		return
	}

	item, err := h.service.CreateItem(r.Context(), service.CreateItemRequest{
		CategoryID:  categoryID,
		Name:        req.Name,
		Price:       price,
		Description: req.Description,
	})
	if err != nil {
		serveError(w, "create item", err)
		return
	}
	writeSuccess(w, http.StatusCreated, toItemResponse(item))
}

// List handles GET /items. Available to everyone browsing the menu.
func (h *ItemHandler) List(w http.ResponseWriter, r *http.Request) {
	items, err := h.service.ListItems(r.Context())
	if err != nil {
		serveError(w, "list items", err)
		return
	}

	resp := make([]itemResponse, len(items))
	for i, it := range items {
		resp[i] = toItemResponse(it)
	}
	writeSuccess(w, http.StatusOK, resp)
}

// Delete handles DELETE /items/{id}. Scheduled windows for the item are
// cancelled or truncated in the same transaction.
func (h *ItemHandler) Delete(w http.ResponseWriter, r *http.Request) {
	itemID, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid item ID")
		return
	}

	if err := h.service.RemoveItem(r.Context(), itemID); err != nil {
		serveError(w, "delete item", err)
		return
	}
	writeSuccess(w, http.StatusOK, nil)
}
