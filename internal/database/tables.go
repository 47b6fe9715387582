package database

import (
	"context"
	"time"

	"github.com/google/uuid"
)

const tableColumns = `id, number, capacity, qr_token, qr_rotated_at, cleaned_at, deleted_at, created_at`

func scanTable(row interface{ Scan(dest ...any) error }) (Table, error) {
	var t Table
	err := row.Scan(&t.ID, &t.Number, &t.Capacity, &t.QrToken, &t.QrRotatedAt, &t.CleanedAt, &t.DeletedAt, &t.CreatedAt)
	return t, err
}

const createTable = `-- name: CreateTable :one
INSERT INTO tables (number, capacity, qr_token)
VALUES ($1, $2, $3)
RETURNING ` + tableColumns

type CreateTableParams struct {
	Number   int32
	Capacity int32
	QrToken  string
}

func (q *Queries) CreateTable(ctx context.Context, arg CreateTableParams) (Table, error) {
	return scanTable(q.db.QueryRow(ctx, createTable, arg.Number, arg.Capacity, arg.QrToken))
}

const getTable = `-- name: GetTable :one
SELECT ` + tableColumns + `
FROM tables
WHERE id = $1 AND deleted_at IS NULL
`

func (q *Queries) GetTable(ctx context.Context, id uuid.UUID) (Table, error) {
	return scanTable(q.db.QueryRow(ctx, getTable, id))
}

const getTableForUpdate = `-- name: GetTableForUpdate :one
SELECT ` + tableColumns + `
FROM tables
WHERE id = $1 AND deleted_at IS NULL
FOR NO KEY UPDATE
`

func (q *Queries) GetTableForUpdate(ctx context.Context, id uuid.UUID) (Table, error) {
	return scanTable(q.db.QueryRow(ctx, getTableForUpdate, id))
}

const getTableByQrToken = `-- name: GetTableByQrToken :one
SELECT ` + tableColumns + `
FROM tables
WHERE qr_token = $1 AND deleted_at IS NULL
`

func (q *Queries) GetTableByQrToken(ctx context.Context, qrToken string) (Table, error) {
	return scanTable(q.db.QueryRow(ctx, getTableByQrToken, qrToken))
}

const listTables = `-- name: ListTables :many
SELECT ` + tableColumns + `
FROM tables
WHERE deleted_at IS NULL
ORDER BY number
`

func (q *Queries) ListTables(ctx context.Context) ([]Table, error) {
	rows, err := q.db.Query(ctx, listTables)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var tables []Table
	for rows.Next() {
		t, err := scanTable(rows)
		if err != nil {
			return nil, err
		}
		tables = append(tables, t)
	}
	return tables, rows.Err()
}

const setTableCleaned = `-- name: SetTableCleaned :one
UPDATE tables
SET cleaned_at = $2
WHERE id = $1 AND deleted_at IS NULL
RETURNING ` + tableColumns

type SetTableCleanedParams struct {
	ID        uuid.UUID
	CleanedAt time.Time
}

func (q *Queries) SetTableCleaned(ctx context.Context, arg SetTableCleanedParams) (Table, error) {
	return scanTable(q.db.QueryRow(ctx, setTableCleaned, arg.ID, arg.CleanedAt))
}

const rotateTableQr = `-- name: RotateTableQr :one
UPDATE tables
SET qr_token = $2, qr_rotated_at = $3
WHERE id = $1 AND deleted_at IS NULL
RETURNING ` + tableColumns

type RotateTableQrParams struct {
	ID          uuid.UUID
	QrToken     string
	QrRotatedAt time.Time
}

func (q *Queries) RotateTableQr(ctx context.Context, arg RotateTableQrParams) (Table, error) {
	return scanTable(q.db.QueryRow(ctx, rotateTableQr, arg.ID, arg.QrToken, arg.QrRotatedAt))
}

const softDeleteTable = `-- name: SoftDeleteTable :one
UPDATE tables
SET deleted_at = now()
WHERE id = $1 AND deleted_at IS NULL
RETURNING id
`

func (q *Queries) SoftDeleteTable(ctx context.Context, id uuid.UUID) (uuid.UUID, error) {
	var out uuid.UUID
	err := q.db.QueryRow(ctx, softDeleteTable, id).Scan(&out)
	return out, err
}
