package service

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgtype"
	"github.com/tabletap/api/internal/database"
)

// Errors returned by the order service.
var (
	ErrOrderNotFound         = errors.New("order not found")
	ErrTableNotFound         = errors.New("table not found")
	ErrOrderClosed           = errors.New("order is already closed")
	ErrOpenOrderExists       = errors.New("client already has an open order")
	ErrInvalidNbPeople       = errors.New("nb_people must be between 1 and 20")
	ErrExceedsCapacity       = errors.New("nb_people exceeds table capacity")
	ErrServerAlreadyAssigned = errors.New("order already has a server assigned")
)

const (
	minNbPeople = 1
	maxNbPeople = 20
)

// OrderStore defines the DB methods needed by the order service.
type OrderStore interface {
	GetTable(ctx context.Context, id uuid.UUID) (database.Table, error)
	CreateOrder(ctx context.Context, arg database.CreateOrderParams) (database.Order, error)
	GetOrder(ctx context.Context, id uuid.UUID) (database.Order, error)
	GetOpenOrderByClient(ctx context.Context, clientID uuid.UUID) (database.Order, error)
	CloseOrder(ctx context.Context, arg database.CloseOrderParams) (database.Order, error)
	CloseAllOpenByClient(ctx context.Context, arg database.CloseAllOpenByClientParams) (int64, error)
	AssignServer(ctx context.Context, arg database.AssignServerParams) (database.Order, error)
	UpdateOrderNote(ctx context.Context, arg database.UpdateOrderNoteParams) (database.Order, error)
	SoftDeleteOrder(ctx context.Context, id uuid.UUID) (uuid.UUID, error)
	ListOpenOrders(ctx context.Context) ([]database.Order, error)
	ListOrderLinesByOrder(ctx context.Context, orderID uuid.UUID) ([]database.OrderLine, error)
}

// OrderService owns order creation and closure. The one-open-order-per-client
// rule is enforced by the orders_one_open_per_client partial unique index, so
// concurrent opens race at the DB and the loser gets a conflict.
type OrderService struct {
	store OrderStore
	clock Clock
}

// NewOrderService creates a new OrderService.
func NewOrderService(store OrderStore, clock Clock) *OrderService {
	return &OrderService{store: store, clock: clock}
}

// OpenOrderRequest is the input for opening an order.
type OpenOrderRequest struct {
	ClientID uuid.UUID
	TableID  uuid.UUID
	VibeID   *uuid.UUID
	NbPeople int32
	Note     string
}

// Open seats a client at a table. Capacity is checked against the current
// table row; uniqueness is left to the partial index rather than a
// check-then-insert, which would race.
func (s *OrderService) Open(ctx context.Context, req OpenOrderRequest) (database.Order, error) {
	if req.NbPeople < minNbPeople || req.NbPeople > maxNbPeople {
		return database.Order{}, ErrInvalidNbPeople
	}
	if err := validateNote(req.Note); err != nil {
		return database.Order{}, err
	}

	table, err := s.store.GetTable(ctx, req.TableID)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return database.Order{}, ErrTableNotFound
		}
		return database.Order{}, fmt.Errorf("get table: %w", err)
	}
	if req.NbPeople > table.Capacity {
		return database.Order{}, ErrExceedsCapacity
	}

	vibe := pgtype.UUID{}
	if req.VibeID != nil {
		vibe = pgtype.UUID{Bytes: *req.VibeID, Valid: true}
	}

	order, err := s.store.CreateOrder(ctx, database.CreateOrderParams{
		ClientID: req.ClientID,
		TableID:  req.TableID,
		VibeID:   vibe,
		NbPeople: req.NbPeople,
		Note:     noteText(req.Note),
	})
	if err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == "23505" && pgErr.ConstraintName == "orders_one_open_per_client" {
			return database.Order{}, ErrOpenOrderExists
		}
		return database.Order{}, fmt.Errorf("create order: %w", err)
	}
	return order, nil
}

// Get returns a non-deleted order.
func (s *OrderService) Get(ctx context.Context, orderID uuid.UUID) (database.Order, error) {
	order, err := s.store.GetOrder(ctx, orderID)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return database.Order{}, ErrOrderNotFound
		}
		return database.Order{}, fmt.Errorf("get order: %w", err)
	}
	return order, nil
}

// GetOpenByClient returns the client's open order, or ErrOrderNotFound.
func (s *OrderService) GetOpenByClient(ctx context.Context, clientID uuid.UUID) (database.Order, error) {
	order, err := s.store.GetOpenOrderByClient(ctx, clientID)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return database.Order{}, ErrOrderNotFound
		}
		return database.Order{}, fmt.Errorf("get open order: %w", err)
	}
	return order, nil
}

// UpdateNote changes an open order's note.
func (s *OrderService) UpdateNote(ctx context.Context, orderID uuid.UUID, note string) (database.Order, error) {
	if err := validateNote(note); err != nil {
		return database.Order{}, err
	}
	order, err := s.store.UpdateOrderNote(ctx, database.UpdateOrderNoteParams{
		ID:   orderID,
		Note: noteText(note),
	})
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return database.Order{}, s.disambiguateMissing(ctx, orderID)
		}
		return database.Order{}, fmt.Errorf("update note: %w", err)
	}
	return order, nil
}

// Close ends an open order. The guarded UPDATE returns no row when the
// order is gone or already closed; a follow-up read tells the two apart.
func (s *OrderService) Close(ctx context.Context, orderID uuid.UUID) (database.Order, error) {
	order, err := s.store.CloseOrder(ctx, database.CloseOrderParams{
		ID:      orderID,
		EndedAt: s.clock.Now(),
	})
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return database.Order{}, s.disambiguateMissing(ctx, orderID)
		}
		return database.Order{}, fmt.Errorf("close order: %w", err)
	}
	return order, nil
}

// CloseAllOpenFor closes every open order for a client and returns how many
// were closed. Used at logout and session cleanup, so zero matches is fine.
func (s *OrderService) CloseAllOpenFor(ctx context.Context, clientID uuid.UUID) (int64, error) {
	closed, err := s.store.CloseAllOpenByClient(ctx, database.CloseAllOpenByClientParams{
		ClientID: clientID,
		EndedAt:  s.clock.Now(),
	})
	if err != nil {
		return 0, fmt.Errorf("close open orders: %w", err)
	}
	return closed, nil
}

// Assign attaches a server to an open, unassigned order.
func (s *OrderService) Assign(ctx context.Context, orderID, serverID uuid.UUID) (database.Order, error) {
	order, err := s.store.AssignServer(ctx, database.AssignServerParams{
		ID:       orderID,
		ServerID: serverID,
	})
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			current, getErr := s.store.GetOrder(ctx, orderID)
			switch {
			case errors.Is(getErr, pgx.ErrNoRows):
				return database.Order{}, ErrOrderNotFound
			case getErr != nil:
				return database.Order{}, fmt.Errorf("get order: %w", getErr)
			case current.EndedAt.Valid:
				return database.Order{}, ErrOrderClosed
			default:
				return database.Order{}, ErrServerAlreadyAssigned
			}
		}
		return database.Order{}, fmt.Errorf("assign server: %w", err)
	}
	return order, nil
}

// Delete soft-deletes an order, closing it if still open. Its lines go with
// it through the FK cascade when the row is eventually purged; soft-deleted
// orders are invisible to the active-only queries.
func (s *OrderService) Delete(ctx context.Context, orderID uuid.UUID) error {
	if _, err := s.store.SoftDeleteOrder(ctx, orderID); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return ErrOrderNotFound
		}
		return fmt.Errorf("delete order: %w", err)
	}
	return nil
}

// ListOpen returns all open orders, oldest first, for the kitchen view.
func (s *OrderService) ListOpen(ctx context.Context) ([]database.Order, error) {
	return s.store.ListOpenOrders(ctx)
}

// Lines returns the lines of an order after confirming it exists.
func (s *OrderService) Lines(ctx context.Context, orderID uuid.UUID) ([]database.OrderLine, error) {
	if _, err := s.Get(ctx, orderID); err != nil {
		return nil, err
	}
	return s.store.ListOrderLinesByOrder(ctx, orderID)
}

func (s *OrderService) disambiguateMissing(ctx context.Context, orderID uuid.UUID) error {
	_, err := s.store.GetOrder(ctx, orderID)
	switch {
	case errors.Is(err, pgx.ErrNoRows):
		return ErrOrderNotFound
	case err != nil:
		return fmt.Errorf("get order: %w", err)
	default:
		return ErrOrderClosed
	}
}
