package service

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgtype"
	"github.com/tabletap/api/internal/database"
)

// Errors returned by the availability service.
var (
	ErrInvalidSubject     = errors.New("invalid subject")
	ErrSubjectArchived    = errors.New("subject has been deleted")
	ErrMissingStart       = errors.New("start_at is required")
	ErrStartInPast        = errors.New("start_at cannot be in the past")
	ErrEndBeforeStart     = errors.New("end_at must be after start_at")
	ErrWindowTooShort     = errors.New("window must last at least one hour")
	ErrDescriptionTooLong = errors.New("description cannot exceed 255 characters")
	ErrBlankDescription   = errors.New("description cannot be blank")
	ErrWindowOverlap      = errors.New("window overlaps an existing window for this subject")
	ErrWindowNotFound     = errors.New("window not found")
)

const minWindowDuration = time.Hour

// AvailabilityStore defines the DB methods needed by the availability service.
// Satisfied by *database.Queries (and its WithTx variant).
type AvailabilityStore interface {
	LockSubject(ctx context.Context, arg database.LockSubjectParams) error
	SubjectActive(ctx context.Context, arg database.SubjectActiveParams) (bool, error)
	CreateAvailability(ctx context.Context, arg database.CreateAvailabilityParams) (database.Availability, error)
	GetAvailability(ctx context.Context, id uuid.UUID) (database.Availability, error)
	UpdateAvailability(ctx context.Context, arg database.UpdateAvailabilityParams) (database.Availability, error)
	DeleteAvailability(ctx context.Context, id uuid.UUID) (uuid.UUID, error)
	ListAvailabilitiesBySubject(ctx context.Context, arg database.ListAvailabilitiesBySubjectParams) ([]database.Availability, error)
	CountOverlappingAvailabilities(ctx context.Context, arg database.CountOverlappingAvailabilitiesParams) (int64, error)
	CountActiveAvailabilities(ctx context.Context, arg database.CountActiveAvailabilitiesParams) (int64, error)
}

// NewAvailabilityStore creates an AvailabilityStore from a DBTX (pool or tx).
type NewAvailabilityStore func(db database.DBTX) AvailabilityStore

// AvailabilityService owns the window rules shared by all four subject
// kinds: future-only start, minimum duration, and overlap freedom over
// half-open [start, end-or-infinity) intervals.
type AvailabilityService struct {
	pool     TxBeginner
	store    AvailabilityStore
	newStore NewAvailabilityStore
	clock    Clock
}

// NewAvailabilityService creates a new AvailabilityService.
func NewAvailabilityService(pool TxBeginner, store AvailabilityStore, newStore NewAvailabilityStore, clock Clock) *AvailabilityService {
	return &AvailabilityService{pool: pool, store: store, newStore: newStore, clock: clock}
}

// CreateWindowRequest is the validated input for creating a window.
type CreateWindowRequest struct {
	Subject     Subject
	StartAt     time.Time
	EndAt       *time.Time
	Description string
}

// UpdateWindowRequest carries the fields to change; nil pointers leave the
// current value untouched. ClearEnd removes the end bound.
type UpdateWindowRequest struct {
	WindowID    uuid.UUID
	StartAt     *time.Time
	EndAt       *time.Time
	ClearEnd    bool
	Description *string
}

func validateDescription(desc string) error {
	if desc == "" {
		return nil
	}
	if len(desc) > maxNoteLen {
		return ErrDescriptionTooLong
	}
	if strings.TrimSpace(desc) == "" {
		return ErrBlankDescription
	}
	return nil
}

func validateBounds(start time.Time, end *time.Time) error {
	if end == nil {
		return nil
	}
	if !end.After(start) {
		return ErrEndBeforeStart
	}
	if end.Sub(start) < minWindowDuration {
		return ErrWindowTooShort
	}
	return nil
}

// Create validates and inserts a window. The subject's windows are
// serialized with an advisory lock so two concurrent creates cannot both
// pass the overlap check.
func (s *AvailabilityService) Create(ctx context.Context, req CreateWindowRequest) (database.Availability, error) {
	if !req.Subject.Valid() {
		return database.Availability{}, ErrInvalidSubject
	}
	if req.StartAt.IsZero() {
		return database.Availability{}, ErrMissingStart
	}
	if req.StartAt.Before(s.clock.Now()) {
		return database.Availability{}, ErrStartInPast
	}
	if err := validateBounds(req.StartAt, req.EndAt); err != nil {
		return database.Availability{}, err
	}
	if err := validateDescription(req.Description); err != nil {
		return database.Availability{}, err
	}

	tx, err := s.pool.Begin(ctx)
	if err != nil {
		return database.Availability{}, fmt.Errorf("begin tx: %w", err)
	}
	defer tx.Rollback(ctx) //nolint:errcheck

	store := s.newStore(tx)

	if err := store.LockSubject(ctx, database.LockSubjectParams{
		SubjectType: req.Subject.Type,
		SubjectID:   req.Subject.ID,
	}); err != nil {
		return database.Availability{}, fmt.Errorf("lock subject: %w", err)
	}

	active, err := store.SubjectActive(ctx, database.SubjectActiveParams{
		SubjectType: req.Subject.Type,
		SubjectID:   req.Subject.ID,
	})
	if err != nil {
		return database.Availability{}, fmt.Errorf("check subject: %w", err)
	}
	if !active {
		return database.Availability{}, ErrSubjectArchived
	}

	end := endTimestamp(req.EndAt)
	overlapping, err := store.CountOverlappingAvailabilities(ctx, database.CountOverlappingAvailabilitiesParams{
		SubjectType: req.Subject.Type,
		SubjectID:   req.Subject.ID,
		StartAt:     req.StartAt,
		EndAt:       end,
	})
	if err != nil {
		return database.Availability{}, fmt.Errorf("count overlaps: %w", err)
	}
	if overlapping > 0 {
		return database.Availability{}, ErrWindowOverlap
	}

	window, err := store.CreateAvailability(ctx, database.CreateAvailabilityParams{
		SubjectType: req.Subject.Type,
		SubjectID:   req.Subject.ID,
		StartAt:     req.StartAt,
		EndAt:       end,
		Description: noteText(req.Description),
	})
	if err != nil {
		return database.Availability{}, fmt.Errorf("create window: %w", err)
	}

	if err := tx.Commit(ctx); err != nil {
		return database.Availability{}, fmt.Errorf("commit tx: %w", err)
	}
	return window, nil
}

// Update applies the requested field changes. A window's own unchanged
// start is exempt from the past check, so editing the description of a
// window that has already started does not fail on that ground.
func (s *AvailabilityService) Update(ctx context.Context, req UpdateWindowRequest) (database.Availability, error) {
	tx, err := s.pool.Begin(ctx)
	if err != nil {
		return database.Availability{}, fmt.Errorf("begin tx: %w", err)
	}
	defer tx.Rollback(ctx) //nolint:errcheck

	store := s.newStore(tx)

	current, err := store.GetAvailability(ctx, req.WindowID)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return database.Availability{}, ErrWindowNotFound
		}
		return database.Availability{}, fmt.Errorf("get window: %w", err)
	}

	if err := store.LockSubject(ctx, database.LockSubjectParams{
		SubjectType: current.SubjectType,
		SubjectID:   current.SubjectID,
	}); err != nil {
		return database.Availability{}, fmt.Errorf("lock subject: %w", err)
	}

	active, err := store.SubjectActive(ctx, database.SubjectActiveParams{
		SubjectType: current.SubjectType,
		SubjectID:   current.SubjectID,
	})
	if err != nil {
		return database.Availability{}, fmt.Errorf("check subject: %w", err)
	}
	if !active {
		return database.Availability{}, ErrSubjectArchived
	}

	newStart := current.StartAt
	if req.StartAt != nil {
		newStart = *req.StartAt
		if !newStart.Equal(current.StartAt) && newStart.Before(s.clock.Now()) {
			return database.Availability{}, ErrStartInPast
		}
	}

	var newEnd *time.Time
	switch {
	case req.ClearEnd:
		newEnd = nil
	case req.EndAt != nil:
		newEnd = req.EndAt
	case current.EndAt.Valid:
		t := current.EndAt.Time
		newEnd = &t
	}
	if err := validateBounds(newStart, newEnd); err != nil {
		return database.Availability{}, err
	}

	newDesc := ""
	if current.Description.Valid {
		newDesc = current.Description.String
	}
	if req.Description != nil {
		newDesc = *req.Description
	}
	if err := validateDescription(newDesc); err != nil {
		return database.Availability{}, err
	}

	overlapping, err := store.CountOverlappingAvailabilities(ctx, database.CountOverlappingAvailabilitiesParams{
		SubjectType: current.SubjectType,
		SubjectID:   current.SubjectID,
		StartAt:     newStart,
		EndAt:       endTimestamp(newEnd),
		ExcludeID:   pgtype.UUID{Bytes: current.ID, Valid: true},
	})
	if err != nil {
		return database.Availability{}, fmt.Errorf("count overlaps: %w", err)
	}
	if overlapping > 0 {
		return database.Availability{}, ErrWindowOverlap
	}

	window, err := store.UpdateAvailability(ctx, database.UpdateAvailabilityParams{
		ID:          current.ID,
		StartAt:     newStart,
		EndAt:       endTimestamp(newEnd),
		Description: noteText(newDesc),
	})
	if err != nil {
		return database.Availability{}, fmt.Errorf("update window: %w", err)
	}

	if err := tx.Commit(ctx); err != nil {
		return database.Availability{}, fmt.Errorf("commit tx: %w", err)
	}
	return window, nil
}

// Delete removes a window unconditionally. Used by admins and by the
// subject soft-delete cascade.
func (s *AvailabilityService) Delete(ctx context.Context, windowID uuid.UUID) error {
	if _, err := s.store.DeleteAvailability(ctx, windowID); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return ErrWindowNotFound
		}
		return fmt.Errorf("delete window: %w", err)
	}
	return nil
}

// List returns all windows for a subject.
func (s *AvailabilityService) List(ctx context.Context, subject Subject) ([]database.Availability, error) {
	if !subject.Valid() {
		return nil, ErrInvalidSubject
	}
	return s.store.ListAvailabilitiesBySubject(ctx, database.ListAvailabilitiesBySubjectParams{
		SubjectType: subject.Type,
		SubjectID:   subject.ID,
	})
}

// IsActiveNow reports whether a window covers the current instant for the
// subject, i.e. start <= now <= (end or infinity).
func (s *AvailabilityService) IsActiveNow(ctx context.Context, subject Subject) (bool, error) {
	if !subject.Valid() {
		return false, ErrInvalidSubject
	}
	count, err := s.store.CountActiveAvailabilities(ctx, database.CountActiveAvailabilitiesParams{
		SubjectType: subject.Type,
		SubjectID:   subject.ID,
		At:          s.clock.Now(),
	})
	if err != nil {
		return false, err
	}
	return count > 0, nil
}

func endTimestamp(end *time.Time) pgtype.Timestamptz {
	if end == nil {
		return pgtype.Timestamptz{}
	}
	return pgtype.Timestamptz{Time: *end, Valid: true}
}
