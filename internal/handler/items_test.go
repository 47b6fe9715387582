package handler_test

import (
	"context"
	"net/http"
	"testing"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
	"github.com/tabletap/api/internal/database"
	"github.com/tabletap/api/internal/enum"
	"github.com/tabletap/api/internal/handler"
	"github.com/tabletap/api/internal/middleware"
	"github.com/tabletap/api/internal/service"
)

type mockItemService struct {
	createItemFn func(ctx context.Context, req service.CreateItemRequest) (database.Item, error)
	listItemsFn  func(ctx context.Context) ([]database.Item, error)
	removeItemFn func(ctx context.Context, id uuid.UUID) error
}

func (m *mockItemService) CreateItem(ctx context.Context, req service.CreateItemRequest) (database.Item, error) {
	if m.createItemFn != nil {
		return m.createItemFn(ctx, req)
	}
	return database.Item{}, service.ErrItemNotFound
}

func (m *mockItemService) ListItems(ctx context.Context) ([]database.Item, error) {
	if m.listItemsFn != nil {
		return m.listItemsFn(ctx)
	}
	return []database.Item{}, nil
}

func (m *mockItemService) RemoveItem(ctx context.Context, id uuid.UUID) error {
	if m.removeItemFn != nil {
		return m.removeItemFn(ctx, id)
	}
	return service.ErrItemNotFound
}

func setupItemRouter(svc *mockItemService) *chi.Mux {
	h := handler.NewItemHandler(svc)
	r := chi.NewRouter()
	r.Route("/items", func(r chi.Router) {
		r.Get("/", h.List)
		r.Group(func(r chi.Router) {
			r.Use(middleware.Authenticate(testJWTSecret))
			h.RegisterRoutes(r)
		})
	})
	return r
}

func testDBItem(t *testing.T, categoryID uuid.UUID) database.Item {
	t.Helper()
	return database.Item{
		ID:         uuid.New(),
		CategoryID: categoryID,
		Name:       "Margherita",
		Price:      testNumeric(t, "12.50"),
		CreatedAt:  time.Now(),
	}
}

func TestItemCreate(t *testing.T) {
	claims := testClaims(enum.RoleAdmin)
	categoryID := uuid.New()

	svc := &mockItemService{
		createItemFn: func(ctx context.Context, req service.CreateItemRequest) (database.Item, error) {
			if req.CategoryID != categoryID {
				t.Errorf("category_id: got %v, want %v", req.CategoryID, categoryID)
			}
			if req.Name != "Margherita" {
				t.Errorf("name: got %q, want Margherita", req.Name)
			}
			if req.Price.String() != "12.5" {
				t.Errorf("price: got %s, want 12.5", req.Price)
			}
			return testDBItem(t, categoryID), nil
		},
	}

	router := setupItemRouter(svc)
	rr := doAuthRequest(t, router, "POST", "/items", map[string]interface{}{
		"category_id": categoryID.String(),
		"name":        "Margherita",
		"price":       "12.50",
	}, claims)

	if rr.Code != http.StatusCreated {
		t.Fatalf("status: got %d, want %d; body: %s", rr.Code, http.StatusCreated, rr.Body.String())
	}
	resp := dataObject(t, rr)
	if resp["price"] != "12.50" {
		t.Errorf("price: got %v, want 12.50", resp["price"])
	}
}

func TestItemCreate_InvalidPrice(t *testing.T) {
	claims := testClaims(enum.RoleAdmin)
	router := setupItemRouter(&mockItemService{})

	rr := doAuthRequest(t, router, "POST", "/items", map[string]interface{}{
		"category_id": uuid.New().String(),
		"name":        "Margherita",
		"price":       "cheap",
	}, claims)

	if rr.Code != http.StatusBadRequest {
		t.Fatalf("status: got %d, want %d; body: %s", rr.Code, http.StatusBadRequest, rr.Body.String())
	}
}

func TestItemCreate_PriceTooLargeIsUnprocessable(t *testing.T) {
	claims := testClaims(enum.RoleAdmin)

	svc := &mockItemService{
		createItemFn: func(ctx context.Context, req service.CreateItemRequest) (database.Item, error) {
			return database.Item{}, service.ErrPriceTooLarge
		},
	}

	router := setupItemRouter(svc)
	rr := doAuthRequest(t, router, "POST", "/items", map[string]interface{}{
		"category_id": uuid.New().String(),
		"name":        "Margherita",
		"price":       "10000.00",
	}, claims)

	if rr.Code != http.StatusUnprocessableEntity {
		t.Fatalf("status: got %d, want %d; body: %s", rr.Code, http.StatusUnprocessableEntity, rr.Body.String())
	}
}

func TestItemCreate_MissingCategoryIsNotFound(t *testing.T) {
	claims := testClaims(enum.RoleAdmin)

	svc := &mockItemService{
		createItemFn: func(ctx context.Context, req service.CreateItemRequest) (database.Item, error) {
			return database.Item{}, service.ErrCategoryNotFound
		},
	}

	router := setupItemRouter(svc)
	rr := doAuthRequest(t, router, "POST", "/items", map[string]interface{}{
		"category_id": uuid.New().String(),
		"name":        "Margherita",
		"price":       "12.50",
	}, claims)

	if rr.Code != http.StatusNotFound {
		t.Fatalf("status: got %d, want %d; body: %s", rr.Code, http.StatusNotFound, rr.Body.String())
	}
}

func TestItemList_NoAuthRequired(t *testing.T) {
	svc := &mockItemService{
		listItemsFn: func(ctx context.Context) ([]database.Item, error) {
			return []database.Item{testDBItem(t, uuid.New())}, nil
		},
	}

	router := setupItemRouter(svc)
	rr := doRequest(t, router, "GET", "/items", nil)

	if rr.Code != http.StatusOK {
		t.Fatalf("status: got %d, want %d; body: %s", rr.Code, http.StatusOK, rr.Body.String())
	}
	if items := dataArray(t, rr); len(items) != 1 {
		t.Fatalf("items count: got %d, want 1", len(items))
	}
}

func TestItemDelete(t *testing.T) {
	claims := testClaims(enum.RoleAdmin)
	itemID := uuid.New()
	removed := false

	svc := &mockItemService{
		removeItemFn: func(ctx context.Context, id uuid.UUID) error {
			if id != itemID {
				t.Errorf("item_id: got %v, want %v", id, itemID)
			}
			removed = true
			return nil
		},
	}

	router := setupItemRouter(svc)
	rr := doAuthRequest(t, router, "DELETE", "/items/"+itemID.String(), nil, claims)

	if rr.Code != http.StatusOK {
		t.Fatalf("status: got %d, want %d; body: %s", rr.Code, http.StatusOK, rr.Body.String())
	}
	if !removed {
		t.Error("expected RemoveItem to be called")
	}
}
