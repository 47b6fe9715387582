package service

import (
	"context"
	"errors"
	"testing"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/tabletap/api/internal/database"
	"github.com/tabletap/api/internal/enum"
)

// mockCatalogStore implements CatalogStore with configurable behavior.
// Only the methods a test exercises get a function; the rest are no-ops
// that satisfy the interface.
type mockCatalogStore struct {
	createCategoryFn func(ctx context.Context, arg database.CreateCategoryParams) (database.Category, error)
	getCategoryFn    func(ctx context.Context, id uuid.UUID) (database.Category, error)
	createItemFn     func(ctx context.Context, arg database.CreateItemParams) (database.Item, error)
	softDeleteItemFn func(ctx context.Context, id uuid.UUID) (uuid.UUID, error)
	deleteFutureFn   func(ctx context.Context, arg database.DeleteFutureAvailabilitiesParams) (int64, error)
	truncateFn       func(ctx context.Context, arg database.TruncateActiveAvailabilitiesParams) (int64, error)
}

func (m *mockCatalogStore) CreateCategory(ctx context.Context, arg database.CreateCategoryParams) (database.Category, error) {
	return m.createCategoryFn(ctx, arg)
}
func (m *mockCatalogStore) GetCategory(ctx context.Context, id uuid.UUID) (database.Category, error) {
	if m.getCategoryFn != nil {
		return m.getCategoryFn(ctx, id)
	}
	return database.Category{ID: id, Name: "Mains"}, nil
}
func (m *mockCatalogStore) ListCategories(ctx context.Context) ([]database.Category, error) {
	return nil, nil
}
func (m *mockCatalogStore) SoftDeleteCategory(ctx context.Context, id uuid.UUID) (uuid.UUID, error) {
	return id, nil
}
func (m *mockCatalogStore) CreateItem(ctx context.Context, arg database.CreateItemParams) (database.Item, error) {
	return m.createItemFn(ctx, arg)
}
func (m *mockCatalogStore) GetItem(ctx context.Context, id uuid.UUID) (database.Item, error) {
	return database.Item{ID: id}, nil
}
func (m *mockCatalogStore) ListItems(ctx context.Context) ([]database.Item, error) { return nil, nil }
func (m *mockCatalogStore) SoftDeleteItem(ctx context.Context, id uuid.UUID) (uuid.UUID, error) {
	if m.softDeleteItemFn != nil {
		return m.softDeleteItemFn(ctx, id)
	}
	return id, nil
}
func (m *mockCatalogStore) CreateCombo(ctx context.Context, arg database.CreateComboParams) (database.Combo, error) {
	return database.Combo{ID: uuid.New(), Name: arg.Name, Price: arg.Price, Description: arg.Description}, nil
}
func (m *mockCatalogStore) GetCombo(ctx context.Context, id uuid.UUID) (database.Combo, error) {
	return database.Combo{ID: id}, nil
}
func (m *mockCatalogStore) ListCombos(ctx context.Context) ([]database.Combo, error) { return nil, nil }
func (m *mockCatalogStore) SoftDeleteCombo(ctx context.Context, id uuid.UUID) (uuid.UUID, error) {
	return id, nil
}
func (m *mockCatalogStore) SoftDeleteTable(ctx context.Context, id uuid.UUID) (uuid.UUID, error) {
	return id, nil
}
func (m *mockCatalogStore) LockSubject(ctx context.Context, arg database.LockSubjectParams) error {
	return nil
}
func (m *mockCatalogStore) DeleteFutureAvailabilities(ctx context.Context, arg database.DeleteFutureAvailabilitiesParams) (int64, error) {
	if m.deleteFutureFn != nil {
		return m.deleteFutureFn(ctx, arg)
	}
	return 0, nil
}
func (m *mockCatalogStore) TruncateActiveAvailabilities(ctx context.Context, arg database.TruncateActiveAvailabilitiesParams) (int64, error) {
	if m.truncateFn != nil {
		return m.truncateFn(ctx, arg)
	}
	return 0, nil
}

func newCatalogTestService(store *mockCatalogStore) (*CatalogService, *mockTx) {
	tx := &mockTx{}
	pool := &mockTxBeginner{tx: tx}
	newStore := func(db database.DBTX) CatalogStore { return store }
	return NewCatalogService(pool, store, newStore, fixedClock{t: testNow}), tx
}

func TestCreateItem_PriceBounds(t *testing.T) {
	store := &mockCatalogStore{
		createItemFn: func(ctx context.Context, arg database.CreateItemParams) (database.Item, error) {
			return database.Item{ID: uuid.New(), Name: arg.Name, Price: arg.Price}, nil
		},
	}
	svc, _ := newCatalogTestService(store)

	_, err := svc.CreateItem(context.Background(), CreateItemRequest{
		CategoryID: uuid.New(),
		Name:       "Gold Leaf Steak",
		Price:      mustDecimal(t, "10000.00"),
	})
	if !errors.Is(err, ErrPriceTooLarge) {
		t.Fatalf("expected ErrPriceTooLarge, got: %v", err)
	}

	_, err = svc.CreateItem(context.Background(), CreateItemRequest{
		CategoryID: uuid.New(),
		Name:       "Refund Special",
		Price:      mustDecimal(t, "-1.00"),
	})
	if !errors.Is(err, ErrNegativePrice) {
		t.Fatalf("expected ErrNegativePrice, got: %v", err)
	}
}

func TestCreateItem_MissingCategory(t *testing.T) {
	store := &mockCatalogStore{
		getCategoryFn: func(ctx context.Context, id uuid.UUID) (database.Category, error) {
			return database.Category{}, pgx.ErrNoRows
		},
	}
	svc, _ := newCatalogTestService(store)

	_, err := svc.CreateItem(context.Background(), CreateItemRequest{
		CategoryID: uuid.New(),
		Name:       "Orphan Dish",
		Price:      mustDecimal(t, "9.50"),
	})
	if !errors.Is(err, ErrCategoryNotFound) {
		t.Fatalf("expected ErrCategoryNotFound, got: %v", err)
	}
}

func TestCreateCategory_MissingName(t *testing.T) {
	svc, _ := newCatalogTestService(&mockCatalogStore{})

	if _, err := svc.CreateCategory(context.Background(), "  ", ""); !errors.Is(err, ErrMissingName) {
		t.Fatalf("expected ErrMissingName, got: %v", err)
	}
}

func TestRemoveItem_CascadesWindows(t *testing.T) {
	itemID := uuid.New()
	var deletedFuture database.DeleteFutureAvailabilitiesParams
	var truncated database.TruncateActiveAvailabilitiesParams

	store := &mockCatalogStore{
		deleteFutureFn: func(ctx context.Context, arg database.DeleteFutureAvailabilitiesParams) (int64, error) {
			deletedFuture = arg
			return 2, nil
		},
		truncateFn: func(ctx context.Context, arg database.TruncateActiveAvailabilitiesParams) (int64, error) {
			truncated = arg
			return 1, nil
		},
	}
	svc, tx := newCatalogTestService(store)

	if err := svc.RemoveItem(context.Background(), itemID); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if deletedFuture.SubjectType != enum.SubjectItem || deletedFuture.SubjectID != itemID {
		t.Errorf("future delete subject: got %s/%v", deletedFuture.SubjectType, deletedFuture.SubjectID)
	}
	if !deletedFuture.Now.Equal(testNow) {
		t.Errorf("future delete cutoff: got %v, want %v", deletedFuture.Now, testNow)
	}
	if truncated.SubjectType != enum.SubjectItem || !truncated.Now.Equal(testNow) {
		t.Errorf("truncate params: got %+v", truncated)
	}
	if !tx.committed {
		t.Error("expected the transaction to be committed")
	}
}

func TestRemoveItem_NotFound(t *testing.T) {
	store := &mockCatalogStore{
		softDeleteItemFn: func(ctx context.Context, id uuid.UUID) (uuid.UUID, error) {
			return uuid.Nil, pgx.ErrNoRows
		},
	}
	svc, _ := newCatalogTestService(store)

	if err := svc.RemoveItem(context.Background(), uuid.New()); !errors.Is(err, ErrItemNotFound) {
		t.Fatalf("expected ErrItemNotFound, got: %v", err)
	}
}
