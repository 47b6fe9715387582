package enum

// ── State machines (CHECK constrained in DB) ──

const (
	LineStatusSent          = "sent"
	LineStatusInPreparation = "in_preparation"
	LineStatusReady         = "ready"
	LineStatusServed        = "served"
)

// lineStatusRank maps each line status to its position in the fixed
// sent → in_preparation → ready → served sequence.
var lineStatusRank = map[string]int{
	LineStatusSent:          0,
	LineStatusInPreparation: 1,
	LineStatusReady:         2,
	LineStatusServed:        3,
}

// lineStatusOrder lists statuses in sequence order.
var lineStatusOrder = []string{
	LineStatusSent,
	LineStatusInPreparation,
	LineStatusReady,
	LineStatusServed,
}

// LineStatusRank returns the ordinal of a line status and whether the
// status is known. sent=0 ... served=3.
func LineStatusRank(s string) (int, bool) {
	r, ok := lineStatusRank[s]
	return r, ok
}

// NextLineStatus returns the status one step after s. ok is false when s
// is unknown or already the final status.
func NextLineStatus(s string) (string, bool) {
	r, known := lineStatusRank[s]
	if !known || r == len(lineStatusOrder)-1 {
		return "", false
	}
	return lineStatusOrder[r+1], true
}

// ── Polymorphic subjects / orderables (CHECK constrained in DB) ──

const (
	SubjectCategory = "CATEGORY"
	SubjectItem     = "ITEM"
	SubjectTable    = "TABLE"
	SubjectCombo    = "COMBO"
)

const (
	OrderableItem  = "ITEM"
	OrderableCombo = "COMBO"
)

// ── Roles (CHECK constrained in DB) ──

const (
	RoleClient  = "CLIENT"
	RoleWaiter  = "WAITER"
	RoleCook    = "COOK"
	RoleAdmin   = "ADMIN"
	RoleCleaner = "CLEANER"
)

// IsValidRole reports whether s is one of the five roles.
func IsValidRole(s string) bool {
	switch s {
	case RoleClient, RoleWaiter, RoleCook, RoleAdmin, RoleCleaner:
		return true
	}
	return false
}
