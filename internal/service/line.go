package service

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgtype"
	"github.com/tabletap/api/internal/database"
	"github.com/tabletap/api/internal/enum"
)

// Errors returned by the order line service.
var (
	ErrLineNotFound      = errors.New("line not found")
	ErrInvalidQuantity   = errors.New("quantity must be between 1 and 50")
	ErrInvalidOrderable  = errors.New("invalid orderable type")
	ErrOrderableNotFound = errors.New("orderable not found")
	ErrNotAvailable      = errors.New("not available currently")
	ErrLineNotSent       = errors.New("only 'sent' lines can be modified")
	ErrLineFinalStatus   = errors.New("already at final status")
	ErrLineStatusChanged = errors.New("line status changed, please retry")
)

const (
	minQuantity = 1
	maxQuantity = 50
)

// LineStore defines the DB methods needed by the line service.
type LineStore interface {
	GetOrderForUpdate(ctx context.Context, id uuid.UUID) (database.Order, error)
	GetItem(ctx context.Context, id uuid.UUID) (database.Item, error)
	GetCombo(ctx context.Context, id uuid.UUID) (database.Combo, error)
	CountActiveAvailabilities(ctx context.Context, arg database.CountActiveAvailabilitiesParams) (int64, error)
	CreateOrderLine(ctx context.Context, arg database.CreateOrderLineParams) (database.OrderLine, error)
	GetOrderLine(ctx context.Context, id uuid.UUID) (database.OrderLine, error)
	AdvanceOrderLineStatus(ctx context.Context, arg database.AdvanceOrderLineStatusParams) (database.OrderLine, error)
	UpdateSentOrderLine(ctx context.Context, arg database.UpdateSentOrderLineParams) (database.OrderLine, error)
	DeleteSentOrderLine(ctx context.Context, id uuid.UUID) (uuid.UUID, error)
}

// NewLineStore creates a LineStore from a DBTX (pool or tx).
type NewLineStore func(db database.DBTX) LineStore

// LineService owns the order line state machine. Lines move one step at a
// time through sent, in_preparation, ready, served; quantity and note are
// only writable while sent.
type LineService struct {
	pool     TxBeginner
	store    LineStore
	newStore NewLineStore
	clock    Clock
}

// NewLineService creates a new LineService.
func NewLineService(pool TxBeginner, store LineStore, newStore NewLineStore, clock Clock) *LineService {
	return &LineService{pool: pool, store: store, newStore: newStore, clock: clock}
}

// AddLineRequest is the input for adding a line to an order.
type AddLineRequest struct {
	OrderID       uuid.UUID
	OrderableType string
	OrderableID   uuid.UUID
	Quantity      int32
	Note          string
}

// Add appends a line to an open order, snapshotting the orderable's current
// price so later menu changes do not touch placed lines. The parent order is
// row-locked so a concurrent Pay or Close cannot slip between the open check
// and the insert. An active window on the orderable blocks the add.
func (s *LineService) Add(ctx context.Context, req AddLineRequest) (database.OrderLine, error) {
	if req.Quantity < minQuantity || req.Quantity > maxQuantity {
		return database.OrderLine{}, ErrInvalidQuantity
	}
	if err := validateNote(req.Note); err != nil {
		return database.OrderLine{}, err
	}
	subject, ok := orderableSubject(req.OrderableType, req.OrderableID)
	if !ok {
		return database.OrderLine{}, ErrInvalidOrderable
	}

	tx, err := s.pool.Begin(ctx)
	if err != nil {
		return database.OrderLine{}, fmt.Errorf("begin tx: %w", err)
	}
	defer tx.Rollback(ctx) //nolint:errcheck

	store := s.newStore(tx)

	order, err := store.GetOrderForUpdate(ctx, req.OrderID)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return database.OrderLine{}, ErrOrderNotFound
		}
		return database.OrderLine{}, fmt.Errorf("get order: %w", err)
	}
	if order.EndedAt.Valid {
		return database.OrderLine{}, ErrOrderClosed
	}

	price, err := s.orderablePrice(ctx, store, req.OrderableType, req.OrderableID)
	if err != nil {
		return database.OrderLine{}, err
	}

	active, err := store.CountActiveAvailabilities(ctx, database.CountActiveAvailabilitiesParams{
		SubjectType: subject.Type,
		SubjectID:   subject.ID,
		At:          s.clock.Now(),
	})
	if err != nil {
		return database.OrderLine{}, fmt.Errorf("check availability: %w", err)
	}
	if active > 0 {
		return database.OrderLine{}, ErrNotAvailable
	}

	line, err := store.CreateOrderLine(ctx, database.CreateOrderLineParams{
		OrderID:       req.OrderID,
		OrderableType: req.OrderableType,
		OrderableID:   req.OrderableID,
		Quantity:      req.Quantity,
		UnitPrice:     price,
		Note:          noteText(req.Note),
		Status:        enum.LineStatusSent,
	})
	if err != nil {
		return database.OrderLine{}, fmt.Errorf("create line: %w", err)
	}

	if err := tx.Commit(ctx); err != nil {
		return database.OrderLine{}, fmt.Errorf("commit tx: %w", err)
	}
	return line, nil
}

// Advance moves a line to the next status. The write is a compare-and-swap
// on the status read here, so two concurrent advances cannot skip a step;
// the loser is told to retry.
func (s *LineService) Advance(ctx context.Context, lineID uuid.UUID) (database.OrderLine, error) {
	current, err := s.store.GetOrderLine(ctx, lineID)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return database.OrderLine{}, ErrLineNotFound
		}
		return database.OrderLine{}, fmt.Errorf("get line: %w", err)
	}

	next, ok := enum.NextLineStatus(current.Status)
	if !ok {
		return database.OrderLine{}, ErrLineFinalStatus
	}

	line, err := s.store.AdvanceOrderLineStatus(ctx, database.AdvanceOrderLineStatusParams{
		ID:         lineID,
		FromStatus: current.Status,
		ToStatus:   next,
	})
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return database.OrderLine{}, ErrLineStatusChanged
		}
		return database.OrderLine{}, fmt.Errorf("advance line: %w", err)
	}
	return line, nil
}

// EditLineRequest carries the fields to change on a sent line; nil pointers
// leave the current value untouched.
type EditLineRequest struct {
	LineID   uuid.UUID
	Quantity *int32
	Note     *string
}

// Edit changes a line's quantity or note. The UPDATE is guarded on
// status = 'sent' so a line advanced concurrently is never mutated.
func (s *LineService) Edit(ctx context.Context, req EditLineRequest) (database.OrderLine, error) {
	current, err := s.store.GetOrderLine(ctx, req.LineID)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return database.OrderLine{}, ErrLineNotFound
		}
		return database.OrderLine{}, fmt.Errorf("get line: %w", err)
	}
	if current.Status != enum.LineStatusSent {
		return database.OrderLine{}, ErrLineNotSent
	}

	quantity := current.Quantity
	if req.Quantity != nil {
		quantity = *req.Quantity
	}
	if quantity < minQuantity || quantity > maxQuantity {
		return database.OrderLine{}, ErrInvalidQuantity
	}

	note := ""
	if current.Note.Valid {
		note = current.Note.String
	}
	if req.Note != nil {
		note = *req.Note
	}
	if err := validateNote(note); err != nil {
		return database.OrderLine{}, err
	}

	line, err := s.store.UpdateSentOrderLine(ctx, database.UpdateSentOrderLineParams{
		ID:       req.LineID,
		Quantity: quantity,
		Note:     noteText(note),
	})
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return database.OrderLine{}, ErrLineNotSent
		}
		return database.OrderLine{}, fmt.Errorf("edit line: %w", err)
	}
	return line, nil
}

// Remove deletes a sent line.
func (s *LineService) Remove(ctx context.Context, lineID uuid.UUID) error {
	if _, err := s.store.DeleteSentOrderLine(ctx, lineID); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			if _, getErr := s.store.GetOrderLine(ctx, lineID); getErr == nil {
				return ErrLineNotSent
			} else if !errors.Is(getErr, pgx.ErrNoRows) {
				return fmt.Errorf("get line: %w", getErr)
			}
			return ErrLineNotFound
		}
		return fmt.Errorf("delete line: %w", err)
	}
	return nil
}

func (s *LineService) orderablePrice(ctx context.Context, store LineStore, orderableType string, orderableID uuid.UUID) (pgtype.Numeric, error) {
	switch orderableType {
	case enum.OrderableItem:
		item, err := store.GetItem(ctx, orderableID)
		if err != nil {
			if errors.Is(err, pgx.ErrNoRows) {
				return pgtype.Numeric{}, ErrOrderableNotFound
			}
			return pgtype.Numeric{}, fmt.Errorf("get item: %w", err)
		}
		return item.Price, nil
	case enum.OrderableCombo:
		combo, err := store.GetCombo(ctx, orderableID)
		if err != nil {
			if errors.Is(err, pgx.ErrNoRows) {
				return pgtype.Numeric{}, ErrOrderableNotFound
			}
			return pgtype.Numeric{}, fmt.Errorf("get combo: %w", err)
		}
		return combo.Price, nil
	default:
		return pgtype.Numeric{}, ErrInvalidOrderable
	}
}
