package database

import (
	"context"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgtype"
)

// Categories, items and combos share the soft-delete convention: reads
// are active-only unless the query name says otherwise.

const createCategory = `-- name: CreateCategory :one
INSERT INTO categories (name, description)
VALUES ($1, $2)
RETURNING id, name, description, deleted_at, created_at
`

type CreateCategoryParams struct {
	Name        string
	Description pgtype.Text
}

func (q *Queries) CreateCategory(ctx context.Context, arg CreateCategoryParams) (Category, error) {
	row := q.db.QueryRow(ctx, createCategory, arg.Name, arg.Description)
	var c Category
	err := row.Scan(&c.ID, &c.Name, &c.Description, &c.DeletedAt, &c.CreatedAt)
	return c, err
}

const getCategory = `-- name: GetCategory :one
SELECT id, name, description, deleted_at, created_at
FROM categories
WHERE id = $1 AND deleted_at IS NULL
`

func (q *Queries) GetCategory(ctx context.Context, id uuid.UUID) (Category, error) {
	row := q.db.QueryRow(ctx, getCategory, id)
	var c Category
	err := row.Scan(&c.ID, &c.Name, &c.Description, &c.DeletedAt, &c.CreatedAt)
	return c, err
}

const listCategories = `-- name: ListCategories :many
SELECT id, name, description, deleted_at, created_at
FROM categories
WHERE deleted_at IS NULL
ORDER BY name
`

func (q *Queries) ListCategories(ctx context.Context) ([]Category, error) {
	rows, err := q.db.Query(ctx, listCategories)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var categories []Category
	for rows.Next() {
		var c Category
		if err := rows.Scan(&c.ID, &c.Name, &c.Description, &c.DeletedAt, &c.CreatedAt); err != nil {
			return nil, err
		}
		categories = append(categories, c)
	}
	return categories, rows.Err()
}

const softDeleteCategory = `-- name: SoftDeleteCategory :one
UPDATE categories
SET deleted_at = now()
WHERE id = $1 AND deleted_at IS NULL
RETURNING id
`

func (q *Queries) SoftDeleteCategory(ctx context.Context, id uuid.UUID) (uuid.UUID, error) {
	var out uuid.UUID
	err := q.db.QueryRow(ctx, softDeleteCategory, id).Scan(&out)
	return out, err
}

const createItem = `-- name: CreateItem :one
INSERT INTO items (category_id, name, price, description)
VALUES ($1, $2, $3, $4)
RETURNING id, category_id, name, price, description, deleted_at, created_at
`

type CreateItemParams struct {
	CategoryID  uuid.UUID
	Name        string
	Price       pgtype.Numeric
	Description pgtype.Text
}

func (q *Queries) CreateItem(ctx context.Context, arg CreateItemParams) (Item, error) {
	row := q.db.QueryRow(ctx, createItem, arg.CategoryID, arg.Name, arg.Price, arg.Description)
	var i Item
	err := row.Scan(&i.ID, &i.CategoryID, &i.Name, &i.Price, &i.Description, &i.DeletedAt, &i.CreatedAt)
	return i, err
}

const getItem = `-- name: GetItem :one
SELECT id, category_id, name, price, description, deleted_at, created_at
FROM items
WHERE id = $1 AND deleted_at IS NULL
`

func (q *Queries) GetItem(ctx context.Context, id uuid.UUID) (Item, error) {
	row := q.db.QueryRow(ctx, getItem, id)
	var i Item
	err := row.Scan(&i.ID, &i.CategoryID, &i.Name, &i.Price, &i.Description, &i.DeletedAt, &i.CreatedAt)
	return i, err
}

const listItems = `-- name: ListItems :many
SELECT id, category_id, name, price, description, deleted_at, created_at
FROM items
WHERE deleted_at IS NULL
ORDER BY name
`

func (q *Queries) ListItems(ctx context.Context) ([]Item, error) {
	rows, err := q.db.Query(ctx, listItems)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var items []Item
	for rows.Next() {
		var i Item
		if err := rows.Scan(&i.ID, &i.CategoryID, &i.Name, &i.Price, &i.Description, &i.DeletedAt, &i.CreatedAt); err != nil {
			return nil, err
		}
		items = append(items, i)
	}
	return items, rows.Err()
}

const softDeleteItem = `-- name: SoftDeleteItem :one
UPDATE items
SET deleted_at = now()
WHERE id = $1 AND deleted_at IS NULL
RETURNING id
`

func (q *Queries) SoftDeleteItem(ctx context.Context, id uuid.UUID) (uuid.UUID, error) {
	var out uuid.UUID
	err := q.db.QueryRow(ctx, softDeleteItem, id).Scan(&out)
	return out, err
}

const createCombo = `-- name: CreateCombo :one
INSERT INTO combos (name, price, description)
VALUES ($1, $2, $3)
RETURNING id, name, price, description, deleted_at, created_at
`

type CreateComboParams struct {
	Name        string
	Price       pgtype.Numeric
	Description pgtype.Text
}

func (q *Queries) CreateCombo(ctx context.Context, arg CreateComboParams) (Combo, error) {
	row := q.db.QueryRow(ctx, createCombo, arg.Name, arg.Price, arg.Description)
	var c Combo
	err := row.Scan(&c.ID, &c.Name, &c.Price, &c.Description, &c.DeletedAt, &c.CreatedAt)
	return c, err
}

const getCombo = `-- name: GetCombo :one
SELECT id, name, price, description, deleted_at, created_at
FROM combos
WHERE id = $1 AND deleted_at IS NULL
`

func (q *Queries) GetCombo(ctx context.Context, id uuid.UUID) (Combo, error) {
	row := q.db.QueryRow(ctx, getCombo, id)
	var c Combo
	err := row.Scan(&c.ID, &c.Name, &c.Price, &c.Description, &c.DeletedAt, &c.CreatedAt)
	return c, err
}

const listCombos = `-- name: ListCombos :many
SELECT id, name, price, description, deleted_at, created_at
FROM combos
WHERE deleted_at IS NULL
ORDER BY name
`

func (q *Queries) ListCombos(ctx context.Context) ([]Combo, error) {
	rows, err := q.db.Query(ctx, listCombos)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var combos []Combo
	for rows.Next() {
		var c Combo
		if err := rows.Scan(&c.ID, &c.Name, &c.Price, &c.Description, &c.DeletedAt, &c.CreatedAt); err != nil {
			return nil, err
		}
		combos = append(combos, c)
	}
	return combos, rows.Err()
}

const softDeleteCombo = `-- name: SoftDeleteCombo :one
UPDATE combos
SET deleted_at = now()
WHERE id = $1 AND deleted_at IS NULL
RETURNING id
`

func (q *Queries) SoftDeleteCombo(ctx context.Context, id uuid.UUID) (uuid.UUID, error) {
	var out uuid.UUID
	err := q.db.QueryRow(ctx, softDeleteCombo, id).Scan(&out)
	return out, err
}

const subjectActive = `-- name: SubjectActive :one
SELECT CASE $1::text
	WHEN 'CATEGORY' THEN EXISTS (SELECT 1 FROM categories WHERE id = $2 AND deleted_at IS NULL)
	WHEN 'ITEM'     THEN EXISTS (SELECT 1 FROM items      WHERE id = $2 AND deleted_at IS NULL)
	WHEN 'TABLE'    THEN EXISTS (SELECT 1 FROM tables     WHERE id = $2 AND deleted_at IS NULL)
	WHEN 'COMBO'    THEN EXISTS (SELECT 1 FROM combos     WHERE id = $2 AND deleted_at IS NULL)
	ELSE false
END
`

type SubjectActiveParams struct {
	SubjectType string
	SubjectID   uuid.UUID
}

// SubjectActive reports whether the referenced subject exists and is not
// soft-deleted.
func (q *Queries) SubjectActive(ctx context.Context, arg SubjectActiveParams) (bool, error) {
	var active bool
	err := q.db.QueryRow(ctx, subjectActive, arg.SubjectType, arg.SubjectID).Scan(&active)
	return active, err
}
