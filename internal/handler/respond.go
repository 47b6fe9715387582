package handler

import (
	"encoding/json"
	"errors"
	"log"
	"net/http"

	"github.com/tabletap/api/internal/service"
)

// envelope is the canonical response shape for every endpoint:
// {"success": bool, "data": T|null, "errors": []string}.
type envelope struct {
	Success bool     `json:"success"`
	Data    any      `json:"data"`
	Errors  []string `json:"errors"`
}

func writeJSON(w http.ResponseWriter, status int, v interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		log.Printf("ERROR: failed to encode JSON response: %v", err)
	}
}

func writeSuccess(w http.ResponseWriter, status int, data any) {
	writeJSON(w, status, envelope{Success: true, Data: data, Errors: []string{}})
}

func writeError(w http.ResponseWriter, status int, msgs ...string) {
	writeJSON(w, status, envelope{Success: false, Data: nil, Errors: msgs})
}

// serveError maps a service error to an HTTP status and writes the envelope.
// Unknown errors are logged and masked as 500.
func serveError(w http.ResponseWriter, op string, err error) {
	switch {
	case isNotFound(err):
		writeError(w, http.StatusNotFound, err.Error())
	case isConflict(err):
		writeError(w, http.StatusConflict, err.Error())
	case isValidation(err):
		writeError(w, http.StatusUnprocessableEntity, err.Error())
	default:
		log.Printf("ERROR: %s: %v", op, err)
		writeError(w, http.StatusInternalServerError, "internal server error")
	}
}

func isNotFound(err error) bool {
	return errors.Is(err, service.ErrOrderNotFound) ||
		errors.Is(err, service.ErrTableNotFound) ||
		errors.Is(err, service.ErrLineNotFound) ||
		errors.Is(err, service.ErrWindowNotFound) ||
		errors.Is(err, service.ErrCategoryNotFound) ||
		errors.Is(err, service.ErrItemNotFound) ||
		errors.Is(err, service.ErrComboNotFound) ||
		errors.Is(err, service.ErrOrderableNotFound) ||
		errors.Is(err, service.ErrUserNotFound)
}

// isConflict covers sequence violations: the request was well formed but the
// current state refuses it.
func isConflict(err error) bool {
	return errors.Is(err, service.ErrOpenOrderExists) ||
		errors.Is(err, service.ErrOrderClosed) ||
		errors.Is(err, service.ErrServerAlreadyAssigned) ||
		errors.Is(err, service.ErrLineNotSent) ||
		errors.Is(err, service.ErrLineFinalStatus) ||
		errors.Is(err, service.ErrLineStatusChanged) ||
		errors.Is(err, service.ErrUnservedLines) ||
		errors.Is(err, service.ErrWindowOverlap) ||
		errors.Is(err, service.ErrTableNumberTaken) ||
		errors.Is(err, service.ErrEmailTaken)
}

func isValidation(err error) bool {
	return errors.Is(err, service.ErrInvalidNbPeople) ||
		errors.Is(err, service.ErrExceedsCapacity) ||
		errors.Is(err, service.ErrInvalidQuantity) ||
		errors.Is(err, service.ErrInvalidOrderable) ||
		errors.Is(err, service.ErrNotAvailable) ||
		errors.Is(err, service.ErrNoteTooLong) ||
		errors.Is(err, service.ErrBlankNote) ||
		errors.Is(err, service.ErrNegativeTip) ||
		errors.Is(err, service.ErrTipTooLarge) ||
		errors.Is(err, service.ErrMissingStart) ||
		errors.Is(err, service.ErrStartInPast) ||
		errors.Is(err, service.ErrEndBeforeStart) ||
		errors.Is(err, service.ErrWindowTooShort) ||
		errors.Is(err, service.ErrDescriptionTooLong) ||
		errors.Is(err, service.ErrBlankDescription) ||
		errors.Is(err, service.ErrInvalidSubject) ||
		errors.Is(err, service.ErrSubjectArchived) ||
		errors.Is(err, service.ErrInvalidTableNumber) ||
		errors.Is(err, service.ErrInvalidTableCapacity) ||
		errors.Is(err, service.ErrMissingName) ||
		errors.Is(err, service.ErrNegativePrice) ||
		errors.Is(err, service.ErrPriceTooLarge) ||
		errors.Is(err, service.ErrInvalidEmail) ||
		errors.Is(err, service.ErrWeakPassword) ||
		errors.Is(err, service.ErrInvalidRole)
}
