package service

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/shopspring/decimal"
	"github.com/tabletap/api/internal/database"
)

// Errors returned by the payment service.
var (
	ErrNegativeTip   = errors.New("tip cannot be negative")
	ErrTipTooLarge   = errors.New("tip cannot exceed 999.99")
	ErrUnservedLines = errors.New("all items must be 'served' before paying")
)

var maxTip = decimal.RequireFromString("999.99")

// PaymentStore defines the DB methods needed by the payment service.
type PaymentStore interface {
	GetOrderForUpdate(ctx context.Context, id uuid.UUID) (database.Order, error)
	CountUnservedLines(ctx context.Context, orderID uuid.UUID) (int64, error)
	PayOrder(ctx context.Context, arg database.PayOrderParams) (database.Order, error)
}

// NewPaymentStore creates a PaymentStore from a DBTX (pool or tx).
type NewPaymentStore func(db database.DBTX) PaymentStore

// PaymentService closes orders once every line is served. No real money
// moves; paying records the tip and stamps ended_at.
type PaymentService struct {
	pool     TxBeginner
	newStore NewPaymentStore
	clock    Clock
}

// NewPaymentService creates a new PaymentService.
func NewPaymentService(pool TxBeginner, newStore NewPaymentStore, clock Clock) *PaymentService {
	return &PaymentService{pool: pool, newStore: newStore, clock: clock}
}

// Pay validates the tip, checks every line is served, and closes the order.
// The order row is locked for the duration so a line added concurrently
// cannot slip past the all-served check.
func (s *PaymentService) Pay(ctx context.Context, orderID uuid.UUID, tip decimal.Decimal) (database.Order, error) {
	if tip.IsNegative() {
		return database.Order{}, ErrNegativeTip
	}
	if tip.GreaterThan(maxTip) {
		return database.Order{}, ErrTipTooLarge
	}

	tx, err := s.pool.Begin(ctx)
	if err != nil {
		return database.Order{}, fmt.Errorf("begin tx: %w", err)
	}
	defer tx.Rollback(ctx) //nolint:errcheck

	store := s.newStore(tx)

	order, err := store.GetOrderForUpdate(ctx, orderID)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return database.Order{}, ErrOrderNotFound
		}
		return database.Order{}, fmt.Errorf("get order: %w", err)
	}
	if order.EndedAt.Valid {
		return database.Order{}, ErrOrderClosed
	}

	unserved, err := store.CountUnservedLines(ctx, orderID)
	if err != nil {
		return database.Order{}, fmt.Errorf("count unserved: %w", err)
	}
	if unserved > 0 {
		return database.Order{}, ErrUnservedLines
	}

	paid, err := store.PayOrder(ctx, database.PayOrderParams{
		ID:      orderID,
		Tip:     decimalToNumeric(tip),
		EndedAt: s.clock.Now(),
	})
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return database.Order{}, ErrOrderClosed
		}
		return database.Order{}, fmt.Errorf("pay order: %w", err)
	}

	if err := tx.Commit(ctx); err != nil {
		return database.Order{}, fmt.Errorf("commit tx: %w", err)
	}
	return paid, nil
}
