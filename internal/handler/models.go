package handler

import (
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgtype"
	"github.com/shopspring/decimal"
	"github.com/tabletap/api/internal/database"
)

// --- Response types ---

type orderResponse struct {
	ID        uuid.UUID  `json:"id"`
	ClientID  uuid.UUID  `json:"client_id"`
	TableID   uuid.UUID  `json:"table_id"`
	ServerID  *string    `json:"server_id"`
	VibeID    *string    `json:"vibe_id"`
	NbPeople  int32      `json:"nb_people"`
	Note      *string    `json:"note"`
	Tip       *string    `json:"tip"`
	CreatedAt time.Time  `json:"created_at"`
	EndedAt   *time.Time `json:"ended_at"`
}

type lineResponse struct {
	ID            uuid.UUID `json:"id"`
	OrderID       uuid.UUID `json:"order_id"`
	OrderableType string    `json:"orderable_type"`
	OrderableID   uuid.UUID `json:"orderable_id"`
	Quantity      int32     `json:"quantity"`
	UnitPrice     string    `json:"unit_price"`
	Note          *string   `json:"note"`
	Status        string    `json:"status"`
	CreatedAt     time.Time `json:"created_at"`
}

type tableResponse struct {
	ID          uuid.UUID  `json:"id"`
	Number      int32      `json:"number"`
	Capacity    int32      `json:"capacity"`
	QrToken     string     `json:"qr_token"`
	QrRotatedAt *time.Time `json:"qr_rotated_at"`
	CleanedAt   *time.Time `json:"cleaned_at"`
	CreatedAt   time.Time  `json:"created_at"`
}

type windowResponse struct {
	ID          uuid.UUID  `json:"id"`
	SubjectType string     `json:"subject_type"`
	SubjectID   uuid.UUID  `json:"subject_id"`
	StartAt     time.Time  `json:"start_at"`
	EndAt       *time.Time `json:"end_at"`
	Description *string    `json:"description"`
	CreatedAt   time.Time  `json:"created_at"`
}

type categoryResponse struct {
	ID          uuid.UUID `json:"id"`
	Name        string    `json:"name"`
	Description *string   `json:"description"`
	CreatedAt   time.Time `json:"created_at"`
}

type itemResponse struct {
	ID          uuid.UUID `json:"id"`
	CategoryID  uuid.UUID `json:"category_id"`
	Name        string    `json:"name"`
	Price       string    `json:"price"`
	Description *string   `json:"description"`
	CreatedAt   time.Time `json:"created_at"`
}

type comboResponse struct {
	ID          uuid.UUID `json:"id"`
	Name        string    `json:"name"`
	Price       string    `json:"price"`
	Description *string   `json:"description"`
	CreatedAt   time.Time `json:"created_at"`
}

type userResponse struct {
	ID        uuid.UUID `json:"id"`
	Email     string    `json:"email"`
	FullName  string    `json:"full_name"`
	Role      string    `json:"role"`
	CreatedAt time.Time `json:"created_at"`
}

// --- Converters ---

func toOrderResponse(o database.Order) orderResponse {
	resp := orderResponse{
		ID:        o.ID,
		ClientID:  o.ClientID,
		TableID:   o.TableID,
		NbPeople:  o.NbPeople,
		CreatedAt: o.CreatedAt,
	}
	if o.ServerID.Valid {
		s := uuid.UUID(o.ServerID.Bytes).String()
		resp.ServerID = &s
	}
	if o.VibeID.Valid {
		s := uuid.UUID(o.VibeID.Bytes).String()
		resp.VibeID = &s
	}
	if o.Note.Valid {
		resp.Note = &o.Note.String
	}
	if o.Tip.Valid {
		s := numericToString(o.Tip)
		resp.Tip = &s
	}
	if o.EndedAt.Valid {
		resp.EndedAt = &o.EndedAt.Time
	}
	return resp
}

func toLineResponse(l database.OrderLine) lineResponse {
	resp := lineResponse{
		ID:            l.ID,
		OrderID:       l.OrderID,
		OrderableType: l.OrderableType,
		OrderableID:   l.OrderableID,
		Quantity:      l.Quantity,
		UnitPrice:     numericToString(l.UnitPrice),
		Status:        l.Status,
		CreatedAt:     l.CreatedAt,
	}
	if l.Note.Valid {
		resp.Note = &l.Note.String
	}
	return resp
}

func toLineResponses(lines []database.OrderLine) []lineResponse {
	out := make([]lineResponse, len(lines))
	for i, l := range lines {
		out[i] = toLineResponse(l)
	}
	return out
}

func toTableResponse(t database.Table) tableResponse {
	resp := tableResponse{
		ID:        t.ID,
		Number:    t.Number,
		Capacity:  t.Capacity,
		QrToken:   t.QrToken,
		CreatedAt: t.CreatedAt,
	}
	if t.QrRotatedAt.Valid {
		resp.QrRotatedAt = &t.QrRotatedAt.Time
	}
	if t.CleanedAt.Valid {
		resp.CleanedAt = &t.CleanedAt.Time
	}
	return resp
}

func toWindowResponse(a database.Availability) windowResponse {
	resp := windowResponse{
		ID:          a.ID,
		SubjectType: a.SubjectType,
		SubjectID:   a.SubjectID,
		StartAt:     a.StartAt,
		CreatedAt:   a.CreatedAt,
	}
	if a.EndAt.Valid {
		resp.EndAt = &a.EndAt.Time
	}
	if a.Description.Valid {
		resp.Description = &a.Description.String
	}
	return resp
}

func toCategoryResponse(c database.Category) categoryResponse {
	resp := categoryResponse{ID: c.ID, Name: c.Name, CreatedAt: c.CreatedAt}
	if c.Description.Valid {
		resp.Description = &c.Description.String
	}
	return resp
}

func toItemResponse(i database.Item) itemResponse {
	resp := itemResponse{
		ID:         i.ID,
		CategoryID: i.CategoryID,
		Name:       i.Name,
		Price:      numericToString(i.Price),
		CreatedAt:  i.CreatedAt,
	}
	if i.Description.Valid {
		resp.Description = &i.Description.String
	}
	return resp
}

func toComboResponse(c database.Combo) comboResponse {
	resp := comboResponse{
		ID:        c.ID,
		Name:      c.Name,
		Price:     numericToString(c.Price),
		CreatedAt: c.CreatedAt,
	}
	if c.Description.Valid {
		resp.Description = &c.Description.String
	}
	return resp
}

func toUserResponse(u database.User) userResponse {
	return userResponse{
		ID:        u.ID,
		Email:     u.Email,
		FullName:  u.FullName,
		Role:      u.Role,
		CreatedAt: u.CreatedAt,
	}
}

func numericToString(n pgtype.Numeric) string {
	if !n.Valid {
		return "0.00"
	}
	val, err := n.Value()
	if err != nil || val == nil {
		return "0.00"
	}
	d, err := decimal.NewFromString(val.(string))
	if err != nil {
		return "0.00"
	}
	return d.StringFixed(2)
}
