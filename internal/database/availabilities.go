package database

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgtype"
)

const availabilityColumns = `id, subject_type, subject_id, start_at, end_at, description, created_at`

func scanAvailability(row interface{ Scan(dest ...any) error }) (Availability, error) {
	var a Availability
	err := row.Scan(&a.ID, &a.SubjectType, &a.SubjectID, &a.StartAt, &a.EndAt, &a.Description, &a.CreatedAt)
	return a, err
}

const lockSubject = `-- name: LockSubject :exec
SELECT pg_advisory_xact_lock(hashtextextended($1::text || ':' || $2::text, 0))
`

type LockSubjectParams struct {
	SubjectType string
	SubjectID   uuid.UUID
}

// LockSubject takes a transaction-scoped advisory lock keyed on the subject,
// serializing concurrent window writes for the same subject. Overlap cannot
// be expressed as a unique index, so writers must lock before checking.
func (q *Queries) LockSubject(ctx context.Context, arg LockSubjectParams) error {
	_, err := q.db.Exec(ctx, lockSubject, arg.SubjectType, arg.SubjectID)
	return err
}

const createAvailability = `-- name: CreateAvailability :one
INSERT INTO availabilities (subject_type, subject_id, start_at, end_at, description)
VALUES ($1, $2, $3, $4, $5)
RETURNING ` + availabilityColumns

type CreateAvailabilityParams struct {
	SubjectType string
	SubjectID   uuid.UUID
	StartAt     time.Time
	EndAt       pgtype.Timestamptz
	Description pgtype.Text
}

func (q *Queries) CreateAvailability(ctx context.Context, arg CreateAvailabilityParams) (Availability, error) {
	return scanAvailability(q.db.QueryRow(ctx, createAvailability,
		arg.SubjectType, arg.SubjectID, arg.StartAt, arg.EndAt, arg.Description))
}

const getAvailability = `-- name: GetAvailability :one
SELECT ` + availabilityColumns + `
FROM availabilities
WHERE id = $1
`

func (q *Queries) GetAvailability(ctx context.Context, id uuid.UUID) (Availability, error) {
	return scanAvailability(q.db.QueryRow(ctx, getAvailability, id))
}

const updateAvailability = `-- name: UpdateAvailability :one
UPDATE availabilities
SET start_at = $2, end_at = $3, description = $4
WHERE id = $1
RETURNING ` + availabilityColumns

type UpdateAvailabilityParams struct {
	ID          uuid.UUID
	StartAt     time.Time
	EndAt       pgtype.Timestamptz
	Description pgtype.Text
}

func (q *Queries) UpdateAvailability(ctx context.Context, arg UpdateAvailabilityParams) (Availability, error) {
	return scanAvailability(q.db.QueryRow(ctx, updateAvailability,
		arg.ID, arg.StartAt, arg.EndAt, arg.Description))
}

const deleteAvailability = `-- name: DeleteAvailability :one
DELETE FROM availabilities
WHERE id = $1
RETURNING id
`

func (q *Queries) DeleteAvailability(ctx context.Context, id uuid.UUID) (uuid.UUID, error) {
	var out uuid.UUID
	err := q.db.QueryRow(ctx, deleteAvailability, id).Scan(&out)
	return out, err
}

const listAvailabilitiesBySubject = `-- name: ListAvailabilitiesBySubject :many
SELECT ` + availabilityColumns + `
FROM availabilities
WHERE subject_type = $1 AND subject_id = $2
ORDER BY start_at
`

type ListAvailabilitiesBySubjectParams struct {
	SubjectType string
	SubjectID   uuid.UUID
}

func (q *Queries) ListAvailabilitiesBySubject(ctx context.Context, arg ListAvailabilitiesBySubjectParams) ([]Availability, error) {
	rows, err := q.db.Query(ctx, listAvailabilitiesBySubject, arg.SubjectType, arg.SubjectID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var windows []Availability
	for rows.Next() {
		a, err := scanAvailability(rows)
		if err != nil {
			return nil, err
		}
		windows = append(windows, a)
	}
	return windows, rows.Err()
}

const countOverlappingAvailabilities = `-- name: CountOverlappingAvailabilities :one
SELECT count(*)
FROM availabilities
WHERE subject_type = $1
  AND subject_id = $2
  AND start_at < COALESCE($4, 'infinity'::timestamptz)
  AND $3 < COALESCE(end_at, 'infinity'::timestamptz)
  AND ($5::uuid IS NULL OR id <> $5::uuid)
`

type CountOverlappingAvailabilitiesParams struct {
	SubjectType string
	SubjectID   uuid.UUID
	StartAt     time.Time
	EndAt       pgtype.Timestamptz
	ExcludeID   pgtype.UUID
}

// CountOverlappingAvailabilities counts windows whose half-open interval
// [start_at, end_at-or-infinity) intersects [StartAt, EndAt-or-infinity),
// optionally excluding one window (for updates).
func (q *Queries) CountOverlappingAvailabilities(ctx context.Context, arg CountOverlappingAvailabilitiesParams) (int64, error) {
	var count int64
	err := q.db.QueryRow(ctx, countOverlappingAvailabilities,
		arg.SubjectType, arg.SubjectID, arg.StartAt, arg.EndAt, arg.ExcludeID).Scan(&count)
	return count, err
}

const countActiveAvailabilities = `-- name: CountActiveAvailabilities :one
SELECT count(*)
FROM availabilities
WHERE subject_type = $1
  AND subject_id = $2
  AND start_at <= $3
  AND ($3 <= COALESCE(end_at, 'infinity'::timestamptz))
`

type CountActiveAvailabilitiesParams struct {
	SubjectType string
	SubjectID   uuid.UUID
	At          time.Time
}

func (q *Queries) CountActiveAvailabilities(ctx context.Context, arg CountActiveAvailabilitiesParams) (int64, error) {
	var count int64
	err := q.db.QueryRow(ctx, countActiveAvailabilities,
		arg.SubjectType, arg.SubjectID, arg.At).Scan(&count)
	return count, err
}

const deleteFutureAvailabilities = `-- name: DeleteFutureAvailabilities :execrows
DELETE FROM availabilities
WHERE subject_type = $1 AND subject_id = $2 AND start_at >= $3
`

type DeleteFutureAvailabilitiesParams struct {
	SubjectType string
	SubjectID   uuid.UUID
	Now         time.Time
}

// DeleteFutureAvailabilities removes windows that have not started as of
// Now, including one starting exactly at Now — truncating that one would
// produce an empty interval and trip the end_at > start_at check.
func (q *Queries) DeleteFutureAvailabilities(ctx context.Context, arg DeleteFutureAvailabilitiesParams) (int64, error) {
	tag, err := q.db.Exec(ctx, deleteFutureAvailabilities, arg.SubjectType, arg.SubjectID, arg.Now)
	if err != nil {
		return 0, err
	}
	return tag.RowsAffected(), nil
}

const truncateActiveAvailabilities = `-- name: TruncateActiveAvailabilities :execrows
UPDATE availabilities
SET end_at = $3
WHERE subject_type = $1
  AND subject_id = $2
  AND start_at < $3
  AND (end_at IS NULL OR end_at > $3)
`

type TruncateActiveAvailabilitiesParams struct {
	SubjectType string
	SubjectID   uuid.UUID
	Now         time.Time
}

// TruncateActiveAvailabilities caps windows straddling Now at Now, used when
// the subject is soft-deleted.
func (q *Queries) TruncateActiveAvailabilities(ctx context.Context, arg TruncateActiveAvailabilitiesParams) (int64, error) {
	tag, err := q.db.Exec(ctx, truncateActiveAvailabilities, arg.SubjectType, arg.SubjectID, arg.Now)
	if err != nil {
		return 0, err
	}
	return tag.RowsAffected(), nil
}
