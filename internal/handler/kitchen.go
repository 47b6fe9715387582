package handler

import (
	"context"
	"encoding/json"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
	"github.com/tabletap/api/internal/database"
	"github.com/tabletap/api/internal/middleware"
	"github.com/tabletap/api/internal/service"
)

// KitchenOrderServicer is the staff-side slice of the order service.
type KitchenOrderServicer interface {
	ListOpen(ctx context.Context) ([]database.Order, error)
	Lines(ctx context.Context, orderID uuid.UUID) ([]database.OrderLine, error)
	Close(ctx context.Context, orderID uuid.UUID) (database.Order, error)
	Assign(ctx context.Context, orderID, serverID uuid.UUID) (database.Order, error)
}

// KitchenLineServicer is the staff-side slice of the line service.
type KitchenLineServicer interface {
	Advance(ctx context.Context, lineID uuid.UUID) (database.OrderLine, error)
	Edit(ctx context.Context, req service.EditLineRequest) (database.OrderLine, error)
	Remove(ctx context.Context, lineID uuid.UUID) error
}

// KitchenHandler handles the staff endpoints: the polling board, line
// advancement, and table release. The kitchen view polls; there is no push.
type KitchenHandler struct {
	orders KitchenOrderServicer
	lines  KitchenLineServicer
}

// NewKitchenHandler creates a new KitchenHandler.
func NewKitchenHandler(orders KitchenOrderServicer, lines KitchenLineServicer) *KitchenHandler {
	return &KitchenHandler{orders: orders, lines: lines}
}

type boardOrderResponse struct {
	orderResponse
	Lines []lineResponse `json:"lines"`
}

type editLineHTTPRequest struct {
	Quantity *int32  `json:"quantity"`
	Note     *string `json:"note"`
}

type assignServerRequest struct {
	ServerID string `json:"server_id"`
}

// Board handles GET /kitchen/orders: every open order with its lines,
// oldest first. Clients poll this roughly every ten seconds.
func (h *KitchenHandler) Board(w http.ResponseWriter, r *http.Request) {
	orders, err := h.orders.ListOpen(r.Context())
	if err != nil {
		serveError(w, "list open orders", err)
		return
	}

	board := make([]boardOrderResponse, len(orders))
	for i, o := range orders {
		lines, err := h.orders.Lines(r.Context(), o.ID)
		if err != nil {
			serveError(w, "list order lines", err)
			return
		}
		board[i] = boardOrderResponse{
			orderResponse: toOrderResponse(o),
			Lines:         toLineResponses(lines),
		}
	}
	writeSuccess(w, http.StatusOK, board)
}

// Release handles POST /kitchen/orders/{id}/release: staff close an order
// without payment, freeing the table.
func (h *KitchenHandler) Release(w http.ResponseWriter, r *http.Request) {
	orderID, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid order ID")
		return
	}

	order, err := h.orders.Close(r.Context(), orderID)
	if err != nil {
		serveError(w, "release order", err)
		return
	}
	writeSuccess(w, http.StatusOK, toOrderResponse(order))
}

// AssignServer handles POST /kitchen/orders/{id}/assign_server. Without a
// body the authenticated waiter assigns themselves.
func (h *KitchenHandler) AssignServer(w http.ResponseWriter, r *http.Request) {
	orderID, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid order ID")
		return
	}
	claims := middleware.ClaimsFromContext(r.Context())
	if claims == nil {
		writeError(w, http.StatusUnauthorized, "not authenticated")
		return
	}

	serverID := claims.UserID
	var req assignServerRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err == nil && req.ServerID != "" {
		parsed, err := uuid.Parse(req.ServerID)
		if err != nil {
			writeError(w, http.StatusBadRequest, "invalid server_id")
			return
		}
		serverID = parsed
	}

	order, err := h.orders.Assign(r.Context(), orderID, serverID)
	if err != nil {
		serveError(w, "assign server", err)
		return
	}
	writeSuccess(w, http.StatusOK, toOrderResponse(order))
}

// AdvanceLine handles PUT /kitchen/order_lines/{id}/next_status.
func (h *KitchenHandler) AdvanceLine(w http.ResponseWriter, r *http.Request) {
	lineID, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid line ID")
		return
	}

	line, err := h.lines.Advance(r.Context(), lineID)
	if err != nil {
		serveError(w, "advance line", err)
		return
	}
	writeSuccess(w, http.StatusOK, toLineResponse(line))
}

// EditLine handles PUT /kitchen/order_lines/{id}. Senior staff only.
func (h *KitchenHandler) EditLine(w http.ResponseWriter, r *http.Request) {
	lineID, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid line ID")
		return
	}

	var req editLineHTTPRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	line, err := h.lines.Edit(r.Context(), service.EditLineRequest{
		LineID:   lineID,
		Quantity: req.Quantity,
		Note:     req.Note,
	})
	if err != nil {
		serveError(w, "edit line", err)
		return
	}
	writeSuccess(w, http.StatusOK, toLineResponse(line))
}

// RemoveLine handles DELETE /kitchen/order_lines/{id}. Senior staff only.
func (h *KitchenHandler) RemoveLine(w http.ResponseWriter, r *http.Request) {
	lineID, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid line ID")
		return
	}

	if err := h.lines.Remove(r.Context(), lineID); err != nil {
		serveError(w, "remove line", err)
		return
	}
	writeSuccess(w, http.StatusOK, nil)
}
