package handler

import (
	"context"
	"encoding/json"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/tabletap/api/internal/database"
)

// ComboServicer is what the combo handler needs from the catalog service.
type ComboServicer interface {
	CreateCombo(ctx context.Context, name string, price decimal.Decimal, description string) (database.Combo, error)
	ListCombos(ctx context.Context) ([]database.Combo, error)
	RemoveCombo(ctx context.Context, id uuid.UUID) error
}

// ComboHandler handles combo management.
type ComboHandler struct {
	service ComboServicer
}

// NewComboHandler creates a new ComboHandler.
func NewComboHandler(service ComboServicer) *ComboHandler {
	return &ComboHandler{service: service}
}

// RegisterRoutes registers the admin-only combo mutation routes.
func (h *ComboHandler) RegisterRoutes(r chi.Router) {
	r.Post("/", h.Create)
	r.Delete("/{id}", h.Delete)
}

type createComboRequest struct {
	Name        string `json:"name"`
	Price       string `json:"price"`
	Description string `json:"description"`
}

// Create handles POST /combos.
func (h *ComboHandler) Create(w http.ResponseWriter, r *http.Request) {
	var req createComboRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	price, err := decimal.NewFromString(req.Price)
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid price")
		return
	}

	combo, err := h.service.CreateCombo(r.Context(), req.Name, price, req.Description)
	if err != nil {
		serveError(w, "create combo", err)
		return
	}
	writeSuccess(w, http.StatusCreated, toComboResponse(combo))
}

// List handles GET /combos. Available to everyone browsing the menu.
func (h *ComboHandler) List(w http.ResponseWriter, r *http.Request) {
	combos, err := h.service.ListCombos(r.Context())
	if err != nil {
		serveError(w, "list combos", err)
		return
	}

	resp := make([]comboResponse, len(combos))
	for i, c := range combos {
		resp[i] = toComboResponse(c)
	}
	writeSuccess(w, http.StatusOK, resp)
}

// Delete handles DELETE /combos/{id}. Scheduled windows for the combo are
// cancelled or truncated in the same transaction.
func (h *ComboHandler) Delete(w http.ResponseWriter, r *http.Request) {
	comboID, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid combo ID")
		return
	}

	if err := h.service.RemoveCombo(r.Context(), comboID); err != nil {
		serveError(w, "delete combo", err)
		return
	}
	writeSuccess(w, http.StatusOK, nil)
}
