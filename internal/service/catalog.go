package service

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/shopspring/decimal"
	"github.com/tabletap/api/internal/database"
)

// Errors returned by the catalog service.
var (
	ErrMissingName      = errors.New("name is required")
	ErrNegativePrice    = errors.New("price cannot be negative")
	ErrPriceTooLarge    = errors.New("price cannot exceed 9999.99")
	ErrCategoryNotFound = errors.New("category not found")
	ErrItemNotFound     = errors.New("item not found")
	ErrComboNotFound    = errors.New("combo not found")
)

var maxPrice = decimal.RequireFromString("9999.99")

// CatalogStore defines the DB methods needed by the catalog service.
type CatalogStore interface {
	CreateCategory(ctx context.Context, arg database.CreateCategoryParams) (database.Category, error)
	GetCategory(ctx context.Context, id uuid.UUID) (database.Category, error)
	ListCategories(ctx context.Context) ([]database.Category, error)
	SoftDeleteCategory(ctx context.Context, id uuid.UUID) (uuid.UUID, error)
	CreateItem(ctx context.Context, arg database.CreateItemParams) (database.Item, error)
	GetItem(ctx context.Context, id uuid.UUID) (database.Item, error)
	ListItems(ctx context.Context) ([]database.Item, error)
	SoftDeleteItem(ctx context.Context, id uuid.UUID) (uuid.UUID, error)
	CreateCombo(ctx context.Context, arg database.CreateComboParams) (database.Combo, error)
	GetCombo(ctx context.Context, id uuid.UUID) (database.Combo, error)
	ListCombos(ctx context.Context) ([]database.Combo, error)
	SoftDeleteCombo(ctx context.Context, id uuid.UUID) (uuid.UUID, error)
	SoftDeleteTable(ctx context.Context, id uuid.UUID) (uuid.UUID, error)
	LockSubject(ctx context.Context, arg database.LockSubjectParams) error
	DeleteFutureAvailabilities(ctx context.Context, arg database.DeleteFutureAvailabilitiesParams) (int64, error)
	TruncateActiveAvailabilities(ctx context.Context, arg database.TruncateActiveAvailabilitiesParams) (int64, error)
}

// NewCatalogStore creates a CatalogStore from a DBTX (pool or tx).
type NewCatalogStore func(db database.DBTX) CatalogStore

// CatalogService owns categories, items and combos, and the window cascade
// that runs when any availability subject is soft-deleted.
type CatalogService struct {
	pool     TxBeginner
	store    CatalogStore
	newStore NewCatalogStore
	clock    Clock
}

// NewCatalogService creates a new CatalogService.
func NewCatalogService(pool TxBeginner, store CatalogStore, newStore NewCatalogStore, clock Clock) *CatalogService {
	return &CatalogService{pool: pool, store: store, newStore: newStore, clock: clock}
}

func validateName(name string) error {
	if strings.TrimSpace(name) == "" {
		return ErrMissingName
	}
	return nil
}

func validatePrice(price decimal.Decimal) error {
	if price.IsNegative() {
		return ErrNegativePrice
	}
	if price.GreaterThan(maxPrice) {
		return ErrPriceTooLarge
	}
	return nil
}

// CreateCategory registers a menu category.
func (s *CatalogService) CreateCategory(ctx context.Context, name, description string) (database.Category, error) {
	if err := validateName(name); err != nil {
		return database.Category{}, err
	}
	if err := validateNote(description); err != nil {
		return database.Category{}, err
	}
	category, err := s.store.CreateCategory(ctx, database.CreateCategoryParams{
		Name:        name,
		Description: noteText(description),
	})
	if err != nil {
		return database.Category{}, fmt.Errorf("create category: %w", err)
	}
	return category, nil
}

// ListCategories returns all active categories.
func (s *CatalogService) ListCategories(ctx context.Context) ([]database.Category, error) {
	return s.store.ListCategories(ctx)
}

// CreateItemRequest is the input for creating a menu item.
type CreateItemRequest struct {
	CategoryID  uuid.UUID
	Name        string
	Price       decimal.Decimal
	Description string
}

// CreateItem registers a menu item under a category.
func (s *CatalogService) CreateItem(ctx context.Context, req CreateItemRequest) (database.Item, error) {
	if err := validateName(req.Name); err != nil {
		return database.Item{}, err
	}
	if err := validatePrice(req.Price); err != nil {
		return database.Item{}, err
	}
	if err := validateNote(req.Description); err != nil {
		return database.Item{}, err
	}
	if _, err := s.store.GetCategory(ctx, req.CategoryID); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return database.Item{}, ErrCategoryNotFound
		}
		return database.Item{}, fmt.Errorf("get category: %w", err)
	}
	item, err := s.store.CreateItem(ctx, database.CreateItemParams{
		CategoryID:  req.CategoryID,
		Name:        req.Name,
		Price:       decimalToNumeric(req.Price),
		Description: noteText(req.Description),
	})
	if err != nil {
		return database.Item{}, fmt.Errorf("create item: %w", err)
	}
	return item, nil
}

// ListItems returns all active items.
func (s *CatalogService) ListItems(ctx context.Context) ([]database.Item, error) {
	return s.store.ListItems(ctx)
}

// CreateCombo registers a combo.
func (s *CatalogService) CreateCombo(ctx context.Context, name string, price decimal.Decimal, description string) (database.Combo, error) {
	if err := validateName(name); err != nil {
		return database.Combo{}, err
	}
	if err := validatePrice(price); err != nil {
		return database.Combo{}, err
	}
	if err := validateNote(description); err != nil {
		return database.Combo{}, err
	}
	combo, err := s.store.CreateCombo(ctx, database.CreateComboParams{
		Name:        name,
		Price:       decimalToNumeric(price),
		Description: noteText(description),
	})
	if err != nil {
		return database.Combo{}, fmt.Errorf("create combo: %w", err)
	}
	return combo, nil
}

// ListCombos returns all active combos.
func (s *CatalogService) ListCombos(ctx context.Context) ([]database.Combo, error) {
	return s.store.ListCombos(ctx)
}

// RemoveCategory soft-deletes a category and cascades onto its windows.
func (s *CatalogService) RemoveCategory(ctx context.Context, id uuid.UUID) error {
	return s.removeSubject(ctx, CategorySubject(id), ErrCategoryNotFound, func(store CatalogStore) error {
		_, err := store.SoftDeleteCategory(ctx, id)
		return err
	})
}

// RemoveItem soft-deletes an item and cascades onto its windows.
func (s *CatalogService) RemoveItem(ctx context.Context, id uuid.UUID) error {
	return s.removeSubject(ctx, ItemSubject(id), ErrItemNotFound, func(store CatalogStore) error {
		_, err := store.SoftDeleteItem(ctx, id)
		return err
	})
}

// RemoveCombo soft-deletes a combo and cascades onto its windows.
func (s *CatalogService) RemoveCombo(ctx context.Context, id uuid.UUID) error {
	return s.removeSubject(ctx, ComboSubject(id), ErrComboNotFound, func(store CatalogStore) error {
		_, err := store.SoftDeleteCombo(ctx, id)
		return err
	})
}

// RemoveTable soft-deletes a table and cascades onto its windows.
func (s *CatalogService) RemoveTable(ctx context.Context, id uuid.UUID) error {
	return s.removeSubject(ctx, TableSubject(id), ErrTableNotFound, func(store CatalogStore) error {
		_, err := store.SoftDeleteTable(ctx, id)
		return err
	})
}

// removeSubject soft-deletes a subject and applies the window cascade in one
// transaction: future windows are deleted, windows straddling now are capped
// at now. The subject advisory lock keeps concurrent window creates out.
func (s *CatalogService) removeSubject(ctx context.Context, subject Subject, notFound error, del func(CatalogStore) error) error {
	tx, err := s.pool.Begin(ctx)
	if err != nil {
		return fmt.Errorf("begin tx: %w", err)
	}
	defer tx.Rollback(ctx) //nolint:errcheck

	store := s.newStore(tx)

	if err := store.LockSubject(ctx, database.LockSubjectParams{
		SubjectType: subject.Type,
		SubjectID:   subject.ID,
	}); err != nil {
		return fmt.Errorf("lock subject: %w", err)
	}

	if err := del(store); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return notFound
		}
		return fmt.Errorf("delete %s: %w", strings.ToLower(subject.Type), err)
	}

	now := s.clock.Now()
	if _, err := store.DeleteFutureAvailabilities(ctx, database.DeleteFutureAvailabilitiesParams{
		SubjectType: subject.Type,
		SubjectID:   subject.ID,
		Now:         now,
	}); err != nil {
		return fmt.Errorf("delete future windows: %w", err)
	}
	if _, err := store.TruncateActiveAvailabilities(ctx, database.TruncateActiveAvailabilitiesParams{
		SubjectType: subject.Type,
		SubjectID:   subject.ID,
		Now:         now,
	}); err != nil {
		return fmt.Errorf("truncate active windows: %w", err)
	}

	if err := tx.Commit(ctx); err != nil {
		return fmt.Errorf("commit tx: %w", err)
	}
	return nil
}

// GetItem returns an active item.
func (s *CatalogService) GetItem(ctx context.Context, id uuid.UUID) (database.Item, error) {
	item, err := s.store.GetItem(ctx, id)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return database.Item{}, ErrItemNotFound
		}
		return database.Item{}, fmt.Errorf("get item: %w", err)
	}
	return item, nil
}

// GetCombo returns an active combo.
func (s *CatalogService) GetCombo(ctx context.Context, id uuid.UUID) (database.Combo, error) {
	combo, err := s.store.GetCombo(ctx, id)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return database.Combo{}, ErrComboNotFound
		}
		return database.Combo{}, fmt.Errorf("get combo: %w", err)
	}
	return combo, nil
}
