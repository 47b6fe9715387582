package database

import (
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgtype"
)

type User struct {
	ID             uuid.UUID
	Email          string
	HashedPassword string
	FullName       string
	Role           string
	CreatedAt      time.Time
}

type Table struct {
	ID          uuid.UUID
	Number      int32
	Capacity    int32
	QrToken     string
	QrRotatedAt pgtype.Timestamptz
	CleanedAt   pgtype.Timestamptz
	DeletedAt   pgtype.Timestamptz
	CreatedAt   time.Time
}

type Category struct {
	ID          uuid.UUID
	Name        string
	Description pgtype.Text
	DeletedAt   pgtype.Timestamptz
	CreatedAt   time.Time
}

type Item struct {
	ID          uuid.UUID
	CategoryID  uuid.UUID
	Name        string
	Price       pgtype.Numeric
	Description pgtype.Text
	DeletedAt   pgtype.Timestamptz
	CreatedAt   time.Time
}

type Combo struct {
	ID          uuid.UUID
	Name        string
	Price       pgtype.Numeric
	Description pgtype.Text
	DeletedAt   pgtype.Timestamptz
	CreatedAt   time.Time
}

type Availability struct {
	ID          uuid.UUID
	SubjectType string
	SubjectID   uuid.UUID
	StartAt     time.Time
	EndAt       pgtype.Timestamptz
	Description pgtype.Text
	CreatedAt   time.Time
}

type Order struct {
	ID        uuid.UUID
	ClientID  uuid.UUID
	TableID   uuid.UUID
	ServerID  pgtype.UUID
	VibeID    pgtype.UUID
	NbPeople  int32
	Note      pgtype.Text
	Tip       pgtype.Numeric
	CreatedAt time.Time
	EndedAt   pgtype.Timestamptz
	DeletedAt pgtype.Timestamptz
}

type OrderLine struct {
	ID            uuid.UUID
	OrderID       uuid.UUID
	OrderableType string
	OrderableID   uuid.UUID
	Quantity      int32
	UnitPrice     pgtype.Numeric
	Note          pgtype.Text
	Status        string
	CreatedAt     time.Time
}
