package handler_test

import (
	"context"
	"net/http"
	"testing"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgtype"
	"github.com/tabletap/api/internal/database"
	"github.com/tabletap/api/internal/enum"
	"github.com/tabletap/api/internal/handler"
	"github.com/tabletap/api/internal/middleware"
	"github.com/tabletap/api/internal/service"
)

type mockKitchenOrderService struct {
	listOpenFn func(ctx context.Context) ([]database.Order, error)
	linesFn    func(ctx context.Context, orderID uuid.UUID) ([]database.OrderLine, error)
	closeFn    func(ctx context.Context, orderID uuid.UUID) (database.Order, error)
	assignFn   func(ctx context.Context, orderID, serverID uuid.UUID) (database.Order, error)
}

func (m *mockKitchenOrderService) ListOpen(ctx context.Context) ([]database.Order, error) {
	if m.listOpenFn != nil {
		return m.listOpenFn(ctx)
	}
	return []database.Order{}, nil
}

func (m *mockKitchenOrderService) Lines(ctx context.Context, orderID uuid.UUID) ([]database.OrderLine, error) {
	if m.linesFn != nil {
		return m.linesFn(ctx, orderID)
	}
	return []database.OrderLine{}, nil
}

func (m *mockKitchenOrderService) Close(ctx context.Context, orderID uuid.UUID) (database.Order, error) {
	if m.closeFn != nil {
		return m.closeFn(ctx, orderID)
	}
	return database.Order{}, service.ErrOrderNotFound
}

func (m *mockKitchenOrderService) Assign(ctx context.Context, orderID, serverID uuid.UUID) (database.Order, error) {
	if m.assignFn != nil {
		return m.assignFn(ctx, orderID, serverID)
	}
	return database.Order{}, service.ErrOrderNotFound
}

type mockKitchenLineService struct {
	advanceFn func(ctx context.Context, lineID uuid.UUID) (database.OrderLine, error)
	editFn    func(ctx context.Context, req service.EditLineRequest) (database.OrderLine, error)
	removeFn  func(ctx context.Context, lineID uuid.UUID) error
}

func (m *mockKitchenLineService) Advance(ctx context.Context, lineID uuid.UUID) (database.OrderLine, error) {
	if m.advanceFn != nil {
		return m.advanceFn(ctx, lineID)
	}
	return database.OrderLine{}, service.ErrLineNotFound
}

func (m *mockKitchenLineService) Edit(ctx context.Context, req service.EditLineRequest) (database.OrderLine, error) {
	if m.editFn != nil {
		return m.editFn(ctx, req)
	}
	return database.OrderLine{}, service.ErrLineNotFound
}

func (m *mockKitchenLineService) Remove(ctx context.Context, lineID uuid.UUID) error {
	if m.removeFn != nil {
		return m.removeFn(ctx, lineID)
	}
	return service.ErrLineNotFound
}

// setupKitchenRouter mirrors the production route topology: board and line
// advancement for all kitchen staff, corrections and release for senior
// staff only.
func setupKitchenRouter(orders *mockKitchenOrderService, lines *mockKitchenLineService) *chi.Mux {
	if lines == nil {
		lines = &mockKitchenLineService{}
	}
	h := handler.NewKitchenHandler(orders, lines)
	r := chi.NewRouter()
	r.Use(middleware.Authenticate(testJWTSecret))
	r.Route("/kitchen", func(r chi.Router) {
		r.Group(func(r chi.Router) {
			r.Use(middleware.RequireRole(enum.RoleCook, enum.RoleWaiter, enum.RoleAdmin))
			r.Get("/orders", h.Board)
			r.Put("/order_lines/{id}/next_status", h.AdvanceLine)
		})
		r.Group(func(r chi.Router) {
			r.Use(middleware.RequireRole(enum.RoleWaiter, enum.RoleAdmin))
			r.Put("/order_lines/{id}", h.EditLine)
			r.Delete("/order_lines/{id}", h.RemoveLine)
			r.Post("/orders/{id}/release", h.Release)
			r.Post("/orders/{id}/assign_server", h.AssignServer)
		})
	})
	return r
}

func TestKitchenBoard_OrdersWithLines(t *testing.T) {
	claims := testClaims(enum.RoleCook)
	order1 := testDBOrder(uuid.New())
	order2 := testDBOrder(uuid.New())

	orders := &mockKitchenOrderService{
		listOpenFn: func(ctx context.Context) ([]database.Order, error) {
			return []database.Order{order1, order2}, nil
		},
		linesFn: func(ctx context.Context, orderID uuid.UUID) ([]database.OrderLine, error) {
			if orderID == order1.ID {
				return []database.OrderLine{testDBLine(t, order1.ID, enum.LineStatusSent)}, nil
			}
			return []database.OrderLine{}, nil
		},
	}

	router := setupKitchenRouter(orders, nil)
	rr := doAuthRequest(t, router, "GET", "/kitchen/orders", nil, claims)

	if rr.Code != http.StatusOK {
		t.Fatalf("status: got %d, want %d; body: %s", rr.Code, http.StatusOK, rr.Body.String())
	}

	board := dataArray(t, rr)
	if len(board) != 2 {
		t.Fatalf("board size: got %d, want 2", len(board))
	}
	first := board[0].(map[string]interface{})
	lines, ok := first["lines"].([]interface{})
	if !ok {
		t.Fatal("lines not present in board entry")
	}
	if len(lines) != 1 {
		t.Fatalf("lines count: got %d, want 1", len(lines))
	}
	line := lines[0].(map[string]interface{})
	if line["status"] != "sent" {
		t.Errorf("line status: got %v, want sent", line["status"])
	}
}

func TestKitchenBoard_Empty(t *testing.T) {
	claims := testClaims(enum.RoleCook)
	router := setupKitchenRouter(&mockKitchenOrderService{}, nil)

	rr := doAuthRequest(t, router, "GET", "/kitchen/orders", nil, claims)

	if rr.Code != http.StatusOK {
		t.Fatalf("status: got %d, want %d; body: %s", rr.Code, http.StatusOK, rr.Body.String())
	}
	if board := dataArray(t, rr); len(board) != 0 {
		t.Errorf("board size: got %d, want 0", len(board))
	}
}

func TestKitchenAdvanceLine(t *testing.T) {
	claims := testClaims(enum.RoleCook)
	lineID := uuid.New()

	lines := &mockKitchenLineService{
		advanceFn: func(ctx context.Context, id uuid.UUID) (database.OrderLine, error) {
			if id != lineID {
				t.Errorf("line_id: got %v, want %v", id, lineID)
			}
			line := testDBLine(t, uuid.New(), enum.LineStatusInPreparation)
			line.ID = lineID
			return line, nil
		},
	}

	router := setupKitchenRouter(&mockKitchenOrderService{}, lines)
	rr := doAuthRequest(t, router, "PUT", "/kitchen/order_lines/"+lineID.String()+"/next_status", nil, claims)

	if rr.Code != http.StatusOK {
		t.Fatalf("status: got %d, want %d; body: %s", rr.Code, http.StatusOK, rr.Body.String())
	}
	resp := dataObject(t, rr)
	if resp["status"] != "in_preparation" {
		t.Errorf("status: got %v, want in_preparation", resp["status"])
	}
}

func TestKitchenAdvanceLine_FinalStatusIsConflict(t *testing.T) {
	claims := testClaims(enum.RoleCook)

	lines := &mockKitchenLineService{
		advanceFn: func(ctx context.Context, id uuid.UUID) (database.OrderLine, error) {
			return database.OrderLine{}, service.ErrLineFinalStatus
		},
	}

	router := setupKitchenRouter(&mockKitchenOrderService{}, lines)
	rr := doAuthRequest(t, router, "PUT", "/kitchen/order_lines/"+uuid.New().String()+"/next_status", nil, claims)

	if rr.Code != http.StatusConflict {
		t.Fatalf("status: got %d, want %d; body: %s", rr.Code, http.StatusConflict, rr.Body.String())
	}
}

func TestKitchenEditLine(t *testing.T) {
	claims := testClaims(enum.RoleWaiter)
	lineID := uuid.New()

	lines := &mockKitchenLineService{
		editFn: func(ctx context.Context, req service.EditLineRequest) (database.OrderLine, error) {
			if req.LineID != lineID {
				t.Errorf("line_id: got %v, want %v", req.LineID, lineID)
			}
			if req.Quantity == nil || *req.Quantity != 3 {
				t.Errorf("quantity: got %v, want 3", req.Quantity)
			}
			if req.Note != nil {
				t.Errorf("note: expected untouched, got %v", *req.Note)
			}
			line := testDBLine(t, uuid.New(), enum.LineStatusSent)
			line.ID = lineID
			line.Quantity = 3
			return line, nil
		},
	}

	router := setupKitchenRouter(&mockKitchenOrderService{}, lines)
	rr := doAuthRequest(t, router, "PUT", "/kitchen/order_lines/"+lineID.String(), map[string]interface{}{
		"quantity": 3,
	}, claims)

	if rr.Code != http.StatusOK {
		t.Fatalf("status: got %d, want %d; body: %s", rr.Code, http.StatusOK, rr.Body.String())
	}
	resp := dataObject(t, rr)
	if resp["quantity"] != float64(3) {
		t.Errorf("quantity: got %v, want 3", resp["quantity"])
	}
}

func TestKitchenEditLine_AlreadyPreparingIsConflict(t *testing.T) {
	claims := testClaims(enum.RoleWaiter)

	lines := &mockKitchenLineService{
		editFn: func(ctx context.Context, req service.EditLineRequest) (database.OrderLine, error) {
			return database.OrderLine{}, service.ErrLineNotSent
		},
	}

	router := setupKitchenRouter(&mockKitchenOrderService{}, lines)
	rr := doAuthRequest(t, router, "PUT", "/kitchen/order_lines/"+uuid.New().String(), map[string]interface{}{
		"quantity": 1,
	}, claims)

	if rr.Code != http.StatusConflict {
		t.Fatalf("status: got %d, want %d; body: %s", rr.Code, http.StatusConflict, rr.Body.String())
	}
	if msg := firstError(t, rr); msg != "only 'sent' lines can be modified" {
		t.Errorf("error: got %q", msg)
	}
}

func TestKitchenRemoveLine(t *testing.T) {
	claims := testClaims(enum.RoleWaiter)
	lineID := uuid.New()
	removed := false

	lines := &mockKitchenLineService{
		removeFn: func(ctx context.Context, id uuid.UUID) error {
			if id != lineID {
				t.Errorf("line_id: got %v, want %v", id, lineID)
			}
			removed = true
			return nil
		},
	}

	router := setupKitchenRouter(&mockKitchenOrderService{}, lines)
	rr := doAuthRequest(t, router, "DELETE", "/kitchen/order_lines/"+lineID.String(), nil, claims)

	if rr.Code != http.StatusOK {
		t.Fatalf("status: got %d, want %d; body: %s", rr.Code, http.StatusOK, rr.Body.String())
	}
	if !removed {
		t.Error("expected remove to be called")
	}
}

func TestKitchenRelease(t *testing.T) {
	claims := testClaims(enum.RoleWaiter)
	orderID := uuid.New()

	orders := &mockKitchenOrderService{
		closeFn: func(ctx context.Context, id uuid.UUID) (database.Order, error) {
			if id != orderID {
				t.Errorf("order_id: got %v, want %v", id, orderID)
			}
			order := testDBOrder(uuid.New())
			order.ID = orderID
			order.EndedAt = pgtype.Timestamptz{Time: time.Now(), Valid: true}
			return order, nil
		},
	}

	router := setupKitchenRouter(orders, nil)
	rr := doAuthRequest(t, router, "POST", "/kitchen/orders/"+orderID.String()+"/release", nil, claims)

	if rr.Code != http.StatusOK {
		t.Fatalf("status: got %d, want %d; body: %s", rr.Code, http.StatusOK, rr.Body.String())
	}
	resp := dataObject(t, rr)
	if resp["ended_at"] == nil {
		t.Error("ended_at should be set after release")
	}
}

func TestKitchenAssignServer_DefaultsToSelf(t *testing.T) {
	claims := testClaims(enum.RoleWaiter)
	orderID := uuid.New()

	orders := &mockKitchenOrderService{
		assignFn: func(ctx context.Context, id, serverID uuid.UUID) (database.Order, error) {
			if serverID != claims.UserID {
				t.Errorf("server_id: got %v, want %v", serverID, claims.UserID)
			}
			order := testDBOrder(uuid.New())
			order.ID = orderID
			order.ServerID = pgtype.UUID{Bytes: serverID, Valid: true}
			return order, nil
		},
	}

	router := setupKitchenRouter(orders, nil)
	rr := doAuthRequest(t, router, "POST", "/kitchen/orders/"+orderID.String()+"/assign_server", nil, claims)

	if rr.Code != http.StatusOK {
		t.Fatalf("status: got %d, want %d; body: %s", rr.Code, http.StatusOK, rr.Body.String())
	}
	resp := dataObject(t, rr)
	if resp["server_id"] != claims.UserID.String() {
		t.Errorf("server_id: got %v, want %s", resp["server_id"], claims.UserID)
	}
}

func TestKitchenAssignServer_ExplicitServer(t *testing.T) {
	claims := testClaims(enum.RoleAdmin)
	orderID := uuid.New()
	serverID := uuid.New()

	orders := &mockKitchenOrderService{
		assignFn: func(ctx context.Context, id, sid uuid.UUID) (database.Order, error) {
			if sid != serverID {
				t.Errorf("server_id: got %v, want %v", sid, serverID)
			}
			order := testDBOrder(uuid.New())
			order.ID = orderID
			order.ServerID = pgtype.UUID{Bytes: sid, Valid: true}
			return order, nil
		},
	}

	router := setupKitchenRouter(orders, nil)
	rr := doAuthRequest(t, router, "POST", "/kitchen/orders/"+orderID.String()+"/assign_server", map[string]interface{}{
		"server_id": serverID.String(),
	}, claims)

	if rr.Code != http.StatusOK {
		t.Fatalf("status: got %d, want %d; body: %s", rr.Code, http.StatusOK, rr.Body.String())
	}
}

func TestKitchenSeniorStaffRoutes_CookForbidden(t *testing.T) {
	claims := testClaims(enum.RoleCook)
	lineEdited := false

	lines := &mockKitchenLineService{
		editFn: func(ctx context.Context, req service.EditLineRequest) (database.OrderLine, error) {
			lineEdited = true
			return database.OrderLine{}, nil
		},
	}
	router := setupKitchenRouter(&mockKitchenOrderService{}, lines)

	lineID := uuid.New().String()
	orderID := uuid.New().String()
	for _, route := range []struct {
		method, path string
	}{
		{"PUT", "/kitchen/order_lines/" + lineID},
		{"DELETE", "/kitchen/order_lines/" + lineID},
		{"POST", "/kitchen/orders/" + orderID + "/release"},
		{"POST", "/kitchen/orders/" + orderID + "/assign_server"},
	} {
		rr := doAuthRequest(t, router, route.method, route.path, nil, claims)
		if rr.Code != http.StatusForbidden {
			t.Errorf("%s %s as cook: got %d, want %d", route.method, route.path, rr.Code, http.StatusForbidden)
		}
	}
	if lineEdited {
		t.Error("cook's edit must not reach the service")
	}
}

func TestKitchenAssignServer_AlreadyAssignedIsConflict(t *testing.T) {
	claims := testClaims(enum.RoleWaiter)

	orders := &mockKitchenOrderService{
		assignFn: func(ctx context.Context, id, sid uuid.UUID) (database.Order, error) {
			return database.Order{}, service.ErrServerAlreadyAssigned
		},
	}

	router := setupKitchenRouter(orders, nil)
	rr := doAuthRequest(t, router, "POST", "/kitchen/orders/"+uuid.New().String()+"/assign_server", nil, claims)

	if rr.Code != http.StatusConflict {
		t.Fatalf("status: got %d, want %d; body: %s", rr.Code, http.StatusConflict, rr.Body.String())
	}
}
