package service

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/tabletap/api/internal/database"
)

// Errors returned by the table service.
var (
	ErrInvalidTableNumber   = errors.New("number must be between 1 and 999")
	ErrInvalidTableCapacity = errors.New("capacity must be between 1 and 20")
	ErrTableNumberTaken     = errors.New("table number already in use")
)

const (
	minTableNumber = 1
	maxTableNumber = 999
	minCapacity    = 1
	maxCapacity    = 20
)

// TableStore defines the DB methods needed by the table service.
type TableStore interface {
	CreateTable(ctx context.Context, arg database.CreateTableParams) (database.Table, error)
	GetTable(ctx context.Context, id uuid.UUID) (database.Table, error)
	GetTableForUpdate(ctx context.Context, id uuid.UUID) (database.Table, error)
	GetTableByQrToken(ctx context.Context, qrToken string) (database.Table, error)
	ListTables(ctx context.Context) ([]database.Table, error)
	SetTableCleaned(ctx context.Context, arg database.SetTableCleanedParams) (database.Table, error)
	RotateTableQr(ctx context.Context, arg database.RotateTableQrParams) (database.Table, error)
	SoftDeleteTable(ctx context.Context, id uuid.UUID) (uuid.UUID, error)
	OpenOrderExistsForTable(ctx context.Context, tableID uuid.UUID) (bool, error)
}

// NewTableStore creates a TableStore from a DBTX (pool or tx).
type NewTableStore func(db database.DBTX) TableStore

// TableService owns tables and the QR rotation policy. The qr_token column
// is only ever written through Create and MarkCleaned.
type TableService struct {
	pool     TxBeginner
	store    TableStore
	newStore NewTableStore
	clock    Clock
}

// NewTableService creates a new TableService.
func NewTableService(pool TxBeginner, store TableStore, newStore NewTableStore, clock Clock) *TableService {
	return &TableService{pool: pool, store: store, newStore: newStore, clock: clock}
}

// Create registers a table with a fresh QR token.
func (s *TableService) Create(ctx context.Context, number, capacity int32) (database.Table, error) {
	if number < minTableNumber || number > maxTableNumber {
		return database.Table{}, ErrInvalidTableNumber
	}
	if capacity < minCapacity || capacity > maxCapacity {
		return database.Table{}, ErrInvalidTableCapacity
	}
	table, err := s.store.CreateTable(ctx, database.CreateTableParams{
		Number:   number,
		Capacity: capacity,
		QrToken:  uuid.NewString(),
	})
	if err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == "23505" && pgErr.ConstraintName == "tables_number_key" {
			return database.Table{}, ErrTableNumberTaken
		}
		return database.Table{}, fmt.Errorf("create table: %w", err)
	}
	return table, nil
}

// Get returns a non-deleted table.
func (s *TableService) Get(ctx context.Context, tableID uuid.UUID) (database.Table, error) {
	table, err := s.store.GetTable(ctx, tableID)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return database.Table{}, ErrTableNotFound
		}
		return database.Table{}, fmt.Errorf("get table: %w", err)
	}
	return table, nil
}

// Resolve looks a table up by its public QR token, the entry point for a
// scanned code.
func (s *TableService) Resolve(ctx context.Context, qrToken string) (database.Table, error) {
	table, err := s.store.GetTableByQrToken(ctx, qrToken)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return database.Table{}, ErrTableNotFound
		}
		return database.Table{}, fmt.Errorf("resolve table: %w", err)
	}
	return table, nil
}

// List returns all non-deleted tables.
func (s *TableService) List(ctx context.Context) ([]database.Table, error) {
	return s.store.ListTables(ctx)
}

// MarkCleaned records the cleaning and rotates the QR token when no order
// is open on the table; with an open order the rotation is deferred until
// the next cleaning after closure. The table row is locked so a concurrent
// scan-and-open cannot land between the open check and the rotation.
func (s *TableService) MarkCleaned(ctx context.Context, tableID uuid.UUID) (database.Table, error) {
	tx, err := s.pool.Begin(ctx)
	if err != nil {
		return database.Table{}, fmt.Errorf("begin tx: %w", err)
	}
	defer tx.Rollback(ctx) //nolint:errcheck

	store := s.newStore(tx)

	if _, err := store.GetTableForUpdate(ctx, tableID); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return database.Table{}, ErrTableNotFound
		}
		return database.Table{}, fmt.Errorf("get table: %w", err)
	}

	now := s.clock.Now()
	table, err := store.SetTableCleaned(ctx, database.SetTableCleanedParams{
		ID:        tableID,
		CleanedAt: now,
	})
	if err != nil {
		return database.Table{}, fmt.Errorf("set cleaned: %w", err)
	}

	open, err := store.OpenOrderExistsForTable(ctx, tableID)
	if err != nil {
		return database.Table{}, fmt.Errorf("check open orders: %w", err)
	}
	if !open {
		table, err = store.RotateTableQr(ctx, database.RotateTableQrParams{
			ID:          tableID,
			QrToken:     uuid.NewString(),
			QrRotatedAt: now,
		})
		if err != nil {
			return database.Table{}, fmt.Errorf("rotate qr: %w", err)
		}
	}

	if err := tx.Commit(ctx); err != nil {
		return database.Table{}, fmt.Errorf("commit tx: %w", err)
	}
	return table, nil
}
