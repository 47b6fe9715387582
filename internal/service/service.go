package service

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgtype"
	"github.com/shopspring/decimal"
)

// TxBeginner starts a new database transaction. Satisfied by *pgxpool.Pool.
type TxBeginner interface {
	Begin(ctx context.Context) (pgx.Tx, error)
}

// Clock abstracts wall-clock time so window and order rules can be tested
// deterministically.
type Clock interface {
	Now() time.Time
}

type realClock struct{}

func (realClock) Now() time.Time { return time.Now() }

// RealClock returns the wall clock.
func RealClock() Clock { return realClock{} }

const maxNoteLen = 255

// Errors shared across services for the note/description rule.
var (
	ErrNoteTooLong = errors.New("note cannot exceed 255 characters")
	ErrBlankNote   = errors.New("note cannot be blank")
)

// validateNote checks the shared note rule: optional, at most 255 chars,
// not whitespace-only when present.
func validateNote(note string) error {
	if note == "" {
		return nil
	}
	if len(note) > maxNoteLen {
		return ErrNoteTooLong
	}
	if strings.TrimSpace(note) == "" {
		return ErrBlankNote
	}
	return nil
}

func noteText(note string) pgtype.Text {
	if note == "" {
		return pgtype.Text{}
	}
	return pgtype.Text{String: note, Valid: true}
}

func numericToDecimal(n pgtype.Numeric) decimal.Decimal {
	if !n.Valid {
		return decimal.Zero
	}
	val, err := n.Value()
	if err != nil || val == nil {
		return decimal.Zero
	}
	d, err := decimal.NewFromString(val.(string))
	if err != nil {
		return decimal.Zero
	}
	return d
}

func decimalToNumeric(d decimal.Decimal) pgtype.Numeric {
	var n pgtype.Numeric
	_ = n.Scan(d.StringFixed(2))
	return n
}
