package handler

import (
	"context"
	"encoding/json"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
	"github.com/tabletap/api/internal/database"
)

// TableServicer is what the table handler needs from the table service.
type TableServicer interface {
	Create(ctx context.Context, number, capacity int32) (database.Table, error)
	Get(ctx context.Context, tableID uuid.UUID) (database.Table, error)
	Resolve(ctx context.Context, qrToken string) (database.Table, error)
	List(ctx context.Context) ([]database.Table, error)
	MarkCleaned(ctx context.Context, tableID uuid.UUID) (database.Table, error)
}

// TableRemover deletes a table and cascades its scheduled windows.
type TableRemover interface {
	RemoveTable(ctx context.Context, id uuid.UUID) error
}

// TableHandler handles table management and the public QR scan entry point.
type TableHandler struct {
	tables  TableServicer
	catalog TableRemover
}

// NewTableHandler creates a new TableHandler.
func NewTableHandler(tables TableServicer, catalog TableRemover) *TableHandler {
	return &TableHandler{tables: tables, catalog: catalog}
}

// RegisterRoutes registers the admin table routes.
func (h *TableHandler) RegisterRoutes(r chi.Router) {
	r.Post("/", h.Create)
	r.Get("/", h.List)
	r.Get("/{id}", h.Get)
	r.Delete("/{id}", h.Delete)
}

// RegisterCleanerRoutes registers the routes cleaners use.
func (h *TableHandler) RegisterCleanerRoutes(r chi.Router) {
	r.Patch("/{id}/mark_cleaned", h.MarkCleaned)
}

type createTableRequest struct {
	Number   int32 `json:"number"`
	Capacity int32 `json:"capacity"`
}

// Create handles POST /tables.
func (h *TableHandler) Create(w http.ResponseWriter, r *http.Request) {
	var req createTableRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	table, err := h.tables.Create(r.Context(), req.Number, req.Capacity)
	if err != nil {
		serveError(w, "create table", err)
		return
	}
	writeSuccess(w, http.StatusCreated, toTableResponse(table))
}

// List handles GET /tables.
func (h *TableHandler) List(w http.ResponseWriter, r *http.Request) {
	tables, err := h.tables.List(r.Context())
	if err != nil {
		serveError(w, "list tables", err)
		return
	}

	resp := make([]tableResponse, len(tables))
	for i, t := range tables {
		resp[i] = toTableResponse(t)
	}
	writeSuccess(w, http.StatusOK, resp)
}

// Get handles GET /tables/{id}.
func (h *TableHandler) Get(w http.ResponseWriter, r *http.Request) {
	tableID, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid table ID")
		return
	}

	table, err := h.tables.Get(r.Context(), tableID)
	if err != nil {
		serveError(w, "get table", err)
		return
	}
	writeSuccess(w, http.StatusOK, toTableResponse(table))
}

// Delete handles DELETE /tables/{id}. Scheduled windows for the table are
// cancelled or truncated in the same transaction.
func (h *TableHandler) Delete(w http.ResponseWriter, r *http.Request) {
	tableID, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid table ID")
		return
	}

	if err := h.catalog.RemoveTable(r.Context(), tableID); err != nil {
		serveError(w, "delete table", err)
		return
	}
	writeSuccess(w, http.StatusOK, nil)
}

// MarkCleaned handles PATCH /tables/{id}/mark_cleaned. The QR token only
// rotates once the table has no open order.
func (h *TableHandler) MarkCleaned(w http.ResponseWriter, r *http.Request) {
	tableID, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid table ID")
		return
	}

	table, err := h.tables.MarkCleaned(r.Context(), tableID)
	if err != nil {
		serveError(w, "mark table cleaned", err)
		return
	}
	writeSuccess(w, http.StatusOK, toTableResponse(table))
}

// Scan handles GET /scan/{token}: the public QR entry point. It resolves a
// token to its table without requiring authentication.
func (h *TableHandler) Scan(w http.ResponseWriter, r *http.Request) {
	token := chi.URLParam(r, "token")
	if token == "" {
		writeError(w, http.StatusBadRequest, "missing token")
		return
	}

	table, err := h.tables.Resolve(r.Context(), token)
	if err != nil {
		serveError(w, "resolve qr token", err)
		return
	}
	writeSuccess(w, http.StatusOK, toTableResponse(table))
}
