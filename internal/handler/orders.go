package handler

import (
	"context"
	"encoding/json"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/tabletap/api/internal/auth"
	"github.com/tabletap/api/internal/database"
	"github.com/tabletap/api/internal/enum"
	"github.com/tabletap/api/internal/middleware"
	"github.com/tabletap/api/internal/service"
)

// OrderServicer defines the service methods needed by order handlers.
// Satisfied by *service.OrderService; narrow interface for testability.
type OrderServicer interface {
	Open(ctx context.Context, req service.OpenOrderRequest) (database.Order, error)
	Get(ctx context.Context, orderID uuid.UUID) (database.Order, error)
	UpdateNote(ctx context.Context, orderID uuid.UUID, note string) (database.Order, error)
	CloseAllOpenFor(ctx context.Context, clientID uuid.UUID) (int64, error)
	Delete(ctx context.Context, orderID uuid.UUID) error
	Lines(ctx context.Context, orderID uuid.UUID) ([]database.OrderLine, error)
}

// PaymentServicer is satisfied by *service.PaymentService.
type PaymentServicer interface {
	Pay(ctx context.Context, orderID uuid.UUID, tip decimal.Decimal) (database.Order, error)
}

// LineAdder is the slice of the line service used on the client side.
type LineAdder interface {
	Add(ctx context.Context, req service.AddLineRequest) (database.OrderLine, error)
}

// OrderHandler handles the client-facing order endpoints.
type OrderHandler struct {
	orders   OrderServicer
	payments PaymentServicer
	lines    LineAdder
}

// NewOrderHandler creates a new OrderHandler.
func NewOrderHandler(orders OrderServicer, payments PaymentServicer, lines LineAdder) *OrderHandler {
	return &OrderHandler{orders: orders, payments: payments, lines: lines}
}

// RegisterRoutes registers order endpoints on the given Chi router.
func (h *OrderHandler) RegisterRoutes(r chi.Router) {
	r.Post("/", h.Open)
	r.Post("/close_open", h.CloseOpen)
	r.Get("/{id}", h.Get)
	r.Put("/{id}", h.UpdateNote)
	r.Post("/{id}/pay", h.Pay)
	r.Get("/{id}/order_lines", h.ListLines)
	r.Post("/{id}/order_lines", h.AddLine)
}

// RegisterAdminRoutes registers the destructive order endpoints.
func (h *OrderHandler) RegisterAdminRoutes(r chi.Router) {
	r.Delete("/{id}", h.Delete)
}

// --- Request types ---

type openOrderRequest struct {
	TableID  string `json:"table_id"`
	VibeID   string `json:"vibe_id"`
	NbPeople int32  `json:"nb_people"`
	Note     string `json:"note"`
}

type updateOrderRequest struct {
	Note string `json:"note"`
}

type payOrderRequest struct {
	Tip string `json:"tip"`
}

type addLineRequest struct {
	OrderableType string `json:"orderable_type"`
	OrderableID   string `json:"orderable_id"`
	Quantity      int32  `json:"quantity"`
	Note          string `json:"note"`
}

// --- Handlers ---

// Open handles POST /orders. The authenticated client is the order's owner.
func (h *OrderHandler) Open(w http.ResponseWriter, r *http.Request) {
	claims := middleware.ClaimsFromContext(r.Context())
	if claims == nil {
		writeError(w, http.StatusUnauthorized, "not authenticated")
		return
	}

	var req openOrderRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	tableID, err := uuid.Parse(req.TableID)
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid table_id")
		return
	}
	var vibeID *uuid.UUID
	if req.VibeID != "" {
		v, err := uuid.Parse(req.VibeID)
		if err != nil {
			writeError(w, http.StatusBadRequest, "invalid vibe_id")
			return
		}
		vibeID = &v
	}

	order, err := h.orders.Open(r.Context(), service.OpenOrderRequest{
		ClientID: claims.UserID,
		TableID:  tableID,
		VibeID:   vibeID,
		NbPeople: req.NbPeople,
		Note:     req.Note,
	})
	if err != nil {
		serveError(w, "open order", err)
		return
	}
	writeSuccess(w, http.StatusCreated, toOrderResponse(order))
}

// Get handles GET /orders/{id}. Clients may only read their own orders.
func (h *OrderHandler) Get(w http.ResponseWriter, r *http.Request) {
	orderID, claims, ok := orderRequestContext(w, r)
	if !ok {
		return
	}

	order, err := h.orders.Get(r.Context(), orderID)
	if err != nil {
		serveError(w, "get order", err)
		return
	}
	if claims.Role == enum.RoleClient && order.ClientID != claims.UserID {
		writeError(w, http.StatusForbidden, "insufficient permissions")
		return
	}
	writeSuccess(w, http.StatusOK, toOrderResponse(order))
}

// UpdateNote handles PUT /orders/{id}.
func (h *OrderHandler) UpdateNote(w http.ResponseWriter, r *http.Request) {
	orderID, claims, ok := orderRequestContext(w, r)
	if !ok {
		return
	}
	if !h.clientOwns(w, r, claims, orderID) {
		return
	}

	var req updateOrderRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	order, err := h.orders.UpdateNote(r.Context(), orderID, req.Note)
	if err != nil {
		serveError(w, "update order", err)
		return
	}
	writeSuccess(w, http.StatusOK, toOrderResponse(order))
}

// Pay handles POST /orders/{id}/pay.
func (h *OrderHandler) Pay(w http.ResponseWriter, r *http.Request) {
	orderID, claims, ok := orderRequestContext(w, r)
	if !ok {
		return
	}
	if !h.clientOwns(w, r, claims, orderID) {
		return
	}

	var req payOrderRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	tip := decimal.Zero
	if req.Tip != "" {
		var err error
		tip, err = decimal.NewFromString(req.Tip)
		if err != nil {
			writeError(w, http.StatusBadRequest, "invalid tip")
			return
		}
	}

	order, err := h.payments.Pay(r.Context(), orderID, tip)
	if err != nil {
		serveError(w, "pay order", err)
		return
	}
	writeSuccess(w, http.StatusOK, toOrderResponse(order))
}

// CloseOpen handles POST /orders/close_open, closing every open order of
// the authenticated client. Used at logout.
func (h *OrderHandler) CloseOpen(w http.ResponseWriter, r *http.Request) {
	claims := middleware.ClaimsFromContext(r.Context())
	if claims == nil {
		writeError(w, http.StatusUnauthorized, "not authenticated")
		return
	}

	closed, err := h.orders.CloseAllOpenFor(r.Context(), claims.UserID)
	if err != nil {
		serveError(w, "close open orders", err)
		return
	}
	writeSuccess(w, http.StatusOK, map[string]int64{"closed": closed})
}

// Delete handles DELETE /orders/{id}. Admin only (enforced by the router).
func (h *OrderHandler) Delete(w http.ResponseWriter, r *http.Request) {
	orderID, _, ok := orderRequestContext(w, r)
	if !ok {
		return
	}
	if err := h.orders.Delete(r.Context(), orderID); err != nil {
		serveError(w, "delete order", err)
		return
	}
	writeSuccess(w, http.StatusOK, nil)
}

// ListLines handles GET /orders/{id}/order_lines.
func (h *OrderHandler) ListLines(w http.ResponseWriter, r *http.Request) {
	orderID, claims, ok := orderRequestContext(w, r)
	if !ok {
		return
	}
	if !h.clientOwns(w, r, claims, orderID) {
		return
	}

	lines, err := h.orders.Lines(r.Context(), orderID)
	if err != nil {
		serveError(w, "list order lines", err)
		return
	}
	writeSuccess(w, http.StatusOK, toLineResponses(lines))
}

// AddLine handles POST /orders/{id}/order_lines.
func (h *OrderHandler) AddLine(w http.ResponseWriter, r *http.Request) {
	orderID, claims, ok := orderRequestContext(w, r)
	if !ok {
		return
	}
	if !h.clientOwns(w, r, claims, orderID) {
		return
	}

	var req addLineRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	orderableID, err := uuid.Parse(req.OrderableID)
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid orderable_id")
		return
	}

	line, err := h.lines.Add(r.Context(), service.AddLineRequest{
		OrderID:       orderID,
		OrderableType: req.OrderableType,
		OrderableID:   orderableID,
		Quantity:      req.Quantity,
		Note:          req.Note,
	})
	if err != nil {
		serveError(w, "add order line", err)
		return
	}
	writeSuccess(w, http.StatusCreated, toLineResponse(line))
}

// --- Helpers ---

func orderRequestContext(w http.ResponseWriter, r *http.Request) (uuid.UUID, *auth.Claims, bool) {
	claims := middleware.ClaimsFromContext(r.Context())
	if claims == nil {
		writeError(w, http.StatusUnauthorized, "not authenticated")
		return uuid.Nil, nil, false
	}
	orderID, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid order ID")
		return uuid.Nil, nil, false
	}
	return orderID, claims, true
}

// clientOwns rejects clients acting on someone else's order. Staff pass
// through; the router already restricted which roles reach each route.
func (h *OrderHandler) clientOwns(w http.ResponseWriter, r *http.Request, claims *auth.Claims, orderID uuid.UUID) bool {
	if claims.Role != enum.RoleClient {
		return true
	}
	order, err := h.orders.Get(r.Context(), orderID)
	if err != nil {
		serveError(w, "get order", err)
		return false
	}
	if order.ClientID != claims.UserID {
		writeError(w, http.StatusForbidden, "insufficient permissions")
		return false
	}
	return true
}
