package service

import (
	"github.com/google/uuid"
	"github.com/tabletap/api/internal/enum"
)

// Subject is a typed reference to one of the four orderable resource kinds
// that can carry availability windows. The set is closed; Valid rejects
// anything outside it.
type Subject struct {
	Type string
	ID   uuid.UUID
}

func CategorySubject(id uuid.UUID) Subject { return Subject{Type: enum.SubjectCategory, ID: id} }
func ItemSubject(id uuid.UUID) Subject     { return Subject{Type: enum.SubjectItem, ID: id} }
func TableSubject(id uuid.UUID) Subject    { return Subject{Type: enum.SubjectTable, ID: id} }
func ComboSubject(id uuid.UUID) Subject    { return Subject{Type: enum.SubjectCombo, ID: id} }

func (s Subject) Valid() bool {
	if s.ID == uuid.Nil {
		return false
	}
	switch s.Type {
	case enum.SubjectCategory, enum.SubjectItem, enum.SubjectTable, enum.SubjectCombo:
		return true
	}
	return false
}

// orderableSubject maps an orderable reference to its availability subject.
// Orderables are the ITEM/COMBO subset of subjects.
func orderableSubject(orderableType string, id uuid.UUID) (Subject, bool) {
	switch orderableType {
	case enum.OrderableItem:
		return ItemSubject(id), true
	case enum.OrderableCombo:
		return ComboSubject(id), true
	}
	return Subject{}, false
}
