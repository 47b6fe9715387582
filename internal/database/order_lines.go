package database

import (
	"context"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgtype"
)

const orderLineColumns = `id, order_id, orderable_type, orderable_id, quantity, unit_price, note, status, created_at`

func scanOrderLine(row interface{ Scan(dest ...any) error }) (OrderLine, error) {
	var l OrderLine
	err := row.Scan(&l.ID, &l.OrderID, &l.OrderableType, &l.OrderableID, &l.Quantity,
		&l.UnitPrice, &l.Note, &l.Status, &l.CreatedAt)
	return l, err
}

const createOrderLine = `-- name: CreateOrderLine :one
INSERT INTO order_lines (order_id, orderable_type, orderable_id, quantity, unit_price, note, status)
VALUES ($1, $2, $3, $4, $5, $6, $7)
RETURNING ` + orderLineColumns

type CreateOrderLineParams struct {
	OrderID       uuid.UUID
	OrderableType string
	OrderableID   uuid.UUID
	Quantity      int32
	UnitPrice     pgtype.Numeric
	Note          pgtype.Text
	Status        string
}

func (q *Queries) CreateOrderLine(ctx context.Context, arg CreateOrderLineParams) (OrderLine, error) {
	return scanOrderLine(q.db.QueryRow(ctx, createOrderLine,
		arg.OrderID, arg.OrderableType, arg.OrderableID, arg.Quantity,
		arg.UnitPrice, arg.Note, arg.Status))
}

const getOrderLine = `-- name: GetOrderLine :one
SELECT l.id, l.order_id, l.orderable_type, l.orderable_id, l.quantity, l.unit_price, l.note, l.status, l.created_at
FROM order_lines l
JOIN orders o ON o.id = l.order_id
WHERE l.id = $1 AND o.deleted_at IS NULL
`

func (q *Queries) GetOrderLine(ctx context.Context, id uuid.UUID) (OrderLine, error) {
	return scanOrderLine(q.db.QueryRow(ctx, getOrderLine, id))
}

const listOrderLinesByOrder = `-- name: ListOrderLinesByOrder :many
SELECT ` + orderLineColumns + `
FROM order_lines
WHERE order_id = $1
ORDER BY created_at
`

func (q *Queries) ListOrderLinesByOrder(ctx context.Context, orderID uuid.UUID) ([]OrderLine, error) {
	rows, err := q.db.Query(ctx, listOrderLinesByOrder, orderID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var lines []OrderLine
	for rows.Next() {
		l, err := scanOrderLine(rows)
		if err != nil {
			return nil, err
		}
		lines = append(lines, l)
	}
	return lines, rows.Err()
}

const advanceOrderLineStatus = `-- name: AdvanceOrderLineStatus :one
UPDATE order_lines
SET status = $3
WHERE id = $1 AND status = $2
RETURNING ` + orderLineColumns

type AdvanceOrderLineStatusParams struct {
	ID         uuid.UUID
	FromStatus string
	ToStatus   string
}

// AdvanceOrderLineStatus is a compare-and-swap: the update only lands when
// the line is still in FromStatus, so concurrent advances cannot skip a step.
func (q *Queries) AdvanceOrderLineStatus(ctx context.Context, arg AdvanceOrderLineStatusParams) (OrderLine, error) {
	return scanOrderLine(q.db.QueryRow(ctx, advanceOrderLineStatus, arg.ID, arg.FromStatus, arg.ToStatus))
}

const updateSentOrderLine = `-- name: UpdateSentOrderLine :one
UPDATE order_lines
SET quantity = $2, note = $3
WHERE id = $1 AND status = 'sent'
RETURNING ` + orderLineColumns

type UpdateSentOrderLineParams struct {
	ID       uuid.UUID
	Quantity int32
	Note     pgtype.Text
}

// UpdateSentOrderLine mutates quantity/note; zero rows means the line is
// missing or already past 'sent'.
func (q *Queries) UpdateSentOrderLine(ctx context.Context, arg UpdateSentOrderLineParams) (OrderLine, error) {
	return scanOrderLine(q.db.QueryRow(ctx, updateSentOrderLine, arg.ID, arg.Quantity, arg.Note))
}

const deleteSentOrderLine = `-- name: DeleteSentOrderLine :one
DELETE FROM order_lines
WHERE id = $1 AND status = 'sent'
RETURNING id
`

func (q *Queries) DeleteSentOrderLine(ctx context.Context, id uuid.UUID) (uuid.UUID, error) {
	var out uuid.UUID
	err := q.db.QueryRow(ctx, deleteSentOrderLine, id).Scan(&out)
	return out, err
}

const countUnservedLines = `-- name: CountUnservedLines :one
SELECT count(*)
FROM order_lines
WHERE order_id = $1 AND status <> 'served'
`

func (q *Queries) CountUnservedLines(ctx context.Context, orderID uuid.UUID) (int64, error) {
	var count int64
	err := q.db.QueryRow(ctx, countUnservedLines, orderID).Scan(&count)
	return count, err
}
