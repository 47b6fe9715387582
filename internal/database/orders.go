package database

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgtype"
)

const orderColumns = `id, client_id, table_id, server_id, vibe_id, nb_people, note, tip, created_at, ended_at, deleted_at`

func scanOrder(row interface{ Scan(dest ...any) error }) (Order, error) {
	var o Order
	err := row.Scan(&o.ID, &o.ClientID, &o.TableID, &o.ServerID, &o.VibeID, &o.NbPeople,
		&o.Note, &o.Tip, &o.CreatedAt, &o.EndedAt, &o.DeletedAt)
	return o, err
}

const createOrder = `-- name: CreateOrder :one
INSERT INTO orders (client_id, table_id, vibe_id, nb_people, note)
VALUES ($1, $2, $3, $4, $5)
RETURNING ` + orderColumns

type CreateOrderParams struct {
	ClientID uuid.UUID
	TableID  uuid.UUID
	VibeID   pgtype.UUID
	NbPeople int32
	Note     pgtype.Text
}

func (q *Queries) CreateOrder(ctx context.Context, arg CreateOrderParams) (Order, error) {
	return scanOrder(q.db.QueryRow(ctx, createOrder,
		arg.ClientID, arg.TableID, arg.VibeID, arg.NbPeople, arg.Note))
}

const getOrder = `-- name: GetOrder :one
SELECT ` + orderColumns + `
FROM orders
WHERE id = $1 AND deleted_at IS NULL
`

// GetOrder reads a non-deleted order. Callers that need soft-deleted rows
// must use GetOrderIncludingDeleted so the intent is visible at the call site.
func (q *Queries) GetOrder(ctx context.Context, id uuid.UUID) (Order, error) {
	return scanOrder(q.db.QueryRow(ctx, getOrder, id))
}

const getOrderIncludingDeleted = `-- name: GetOrderIncludingDeleted :one
SELECT ` + orderColumns + `
FROM orders
WHERE id = $1
`

func (q *Queries) GetOrderIncludingDeleted(ctx context.Context, id uuid.UUID) (Order, error) {
	return scanOrder(q.db.QueryRow(ctx, getOrderIncludingDeleted, id))
}

const getOrderForUpdate = `-- name: GetOrderForUpdate :one
SELECT ` + orderColumns + `
FROM orders
WHERE id = $1 AND deleted_at IS NULL
FOR NO KEY UPDATE
`

func (q *Queries) GetOrderForUpdate(ctx context.Context, id uuid.UUID) (Order, error) {
	return scanOrder(q.db.QueryRow(ctx, getOrderForUpdate, id))
}

const getOpenOrderByClient = `-- name: GetOpenOrderByClient :one
SELECT ` + orderColumns + `
FROM orders
WHERE client_id = $1 AND ended_at IS NULL AND deleted_at IS NULL
`

func (q *Queries) GetOpenOrderByClient(ctx context.Context, clientID uuid.UUID) (Order, error) {
	return scanOrder(q.db.QueryRow(ctx, getOpenOrderByClient, clientID))
}

const closeOrder = `-- name: CloseOrder :one
UPDATE orders
SET ended_at = $2
WHERE id = $1 AND ended_at IS NULL AND deleted_at IS NULL
RETURNING ` + orderColumns

type CloseOrderParams struct {
	ID      uuid.UUID
	EndedAt time.Time
}

// CloseOrder ends an open order; zero rows means the order is missing,
// deleted, or already closed.
func (q *Queries) CloseOrder(ctx context.Context, arg CloseOrderParams) (Order, error) {
	return scanOrder(q.db.QueryRow(ctx, closeOrder, arg.ID, arg.EndedAt))
}

const closeAllOpenByClient = `-- name: CloseAllOpenByClient :execrows
UPDATE orders
SET ended_at = $2
WHERE client_id = $1 AND ended_at IS NULL AND deleted_at IS NULL
`

type CloseAllOpenByClientParams struct {
	ClientID uuid.UUID
	EndedAt  time.Time
}

func (q *Queries) CloseAllOpenByClient(ctx context.Context, arg CloseAllOpenByClientParams) (int64, error) {
	tag, err := q.db.Exec(ctx, closeAllOpenByClient, arg.ClientID, arg.EndedAt)
	if err != nil {
		return 0, err
	}
	return tag.RowsAffected(), nil
}

const assignServer = `-- name: AssignServer :one
UPDATE orders
SET server_id = $2
WHERE id = $1 AND server_id IS NULL AND ended_at IS NULL AND deleted_at IS NULL
RETURNING ` + orderColumns

type AssignServerParams struct {
	ID       uuid.UUID
	ServerID uuid.UUID
}

// AssignServer sets the order's server; zero rows means the order is gone,
// closed, or already has a server.
func (q *Queries) AssignServer(ctx context.Context, arg AssignServerParams) (Order, error) {
	return scanOrder(q.db.QueryRow(ctx, assignServer, arg.ID, arg.ServerID))
}

const updateOrderNote = `-- name: UpdateOrderNote :one
UPDATE orders
SET note = $2
WHERE id = $1 AND ended_at IS NULL AND deleted_at IS NULL
RETURNING ` + orderColumns

type UpdateOrderNoteParams struct {
	ID   uuid.UUID
	Note pgtype.Text
}

func (q *Queries) UpdateOrderNote(ctx context.Context, arg UpdateOrderNoteParams) (Order, error) {
	return scanOrder(q.db.QueryRow(ctx, updateOrderNote, arg.ID, arg.Note))
}

const payOrder = `-- name: PayOrder :one
UPDATE orders
SET tip = $2, ended_at = $3
WHERE id = $1 AND ended_at IS NULL AND deleted_at IS NULL
RETURNING ` + orderColumns

type PayOrderParams struct {
	ID      uuid.UUID
	Tip     pgtype.Numeric
	EndedAt time.Time
}

func (q *Queries) PayOrder(ctx context.Context, arg PayOrderParams) (Order, error) {
	return scanOrder(q.db.QueryRow(ctx, payOrder, arg.ID, arg.Tip, arg.EndedAt))
}

const softDeleteOrder = `-- name: SoftDeleteOrder :one
UPDATE orders
SET deleted_at = now(), ended_at = COALESCE(ended_at, now())
WHERE id = $1 AND deleted_at IS NULL
RETURNING id
`

func (q *Queries) SoftDeleteOrder(ctx context.Context, id uuid.UUID) (uuid.UUID, error) {
	var out uuid.UUID
	err := q.db.QueryRow(ctx, softDeleteOrder, id).Scan(&out)
	return out, err
}

const openOrderExistsForTable = `-- name: OpenOrderExistsForTable :one
SELECT EXISTS (
	SELECT 1 FROM orders
	WHERE table_id = $1 AND ended_at IS NULL AND deleted_at IS NULL
)
`

func (q *Queries) OpenOrderExistsForTable(ctx context.Context, tableID uuid.UUID) (bool, error) {
	var exists bool
	err := q.db.QueryRow(ctx, openOrderExistsForTable, tableID).Scan(&exists)
	return exists, err
}

const listOpenOrders = `-- name: ListOpenOrders :many
SELECT ` + orderColumns + `
FROM orders
WHERE ended_at IS NULL AND deleted_at IS NULL
ORDER BY created_at
`

func (q *Queries) ListOpenOrders(ctx context.Context) ([]Order, error) {
	rows, err := q.db.Query(ctx, listOpenOrders)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var orders []Order
	for rows.Next() {
		o, err := scanOrder(rows)
		if err != nil {
			return nil, err
		}
		orders = append(orders, o)
	}
	return orders, rows.Err()
}
