package handler

import (
	"context"
	"encoding/json"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
	"github.com/tabletap/api/internal/database"
	"github.com/tabletap/api/internal/service"
)

// AvailabilityServicer is what the availability handler needs from the
// availability service.
type AvailabilityServicer interface {
	Create(ctx context.Context, req service.CreateWindowRequest) (database.Availability, error)
	Update(ctx context.Context, req service.UpdateWindowRequest) (database.Availability, error)
	Delete(ctx context.Context, windowID uuid.UUID) error
	List(ctx context.Context, subject service.Subject) ([]database.Availability, error)
}

// AvailabilityHandler serves the per-subject availability window routes.
// One instance is mounted for each subject kind (items, combos, categories,
// tables); the subject type is fixed at construction.
type AvailabilityHandler struct {
	service     AvailabilityServicer
	subjectType string
}

// NewAvailabilityHandler creates an availability handler for one subject type.
func NewAvailabilityHandler(service AvailabilityServicer, subjectType string) *AvailabilityHandler {
	return &AvailabilityHandler{service: service, subjectType: subjectType}
}

// RegisterRoutes registers the window routes. The enclosing router supplies
// the subject's {id} URL parameter.
func (h *AvailabilityHandler) RegisterRoutes(r chi.Router) {
	r.Get("/", h.List)
	r.Post("/", h.Create)
	r.Put("/{windowID}", h.Update)
	r.Delete("/{windowID}", h.Delete)
}

type createWindowRequest struct {
	StartAt     time.Time  `json:"start_at"`
	EndAt       *time.Time `json:"end_at"`
	Description string     `json:"description"`
}

type updateWindowRequest struct {
	StartAt     *time.Time `json:"start_at"`
	EndAt       *time.Time `json:"end_at"`
	ClearEnd    bool       `json:"clear_end"`
	Description *string    `json:"description"`
}

func (h *AvailabilityHandler) subject(w http.ResponseWriter, r *http.Request) (service.Subject, bool) {
	id, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid subject ID")
		return service.Subject{}, false
	}
	return service.Subject{Type: h.subjectType, ID: id}, true
}

// List handles GET: all windows for the subject, soonest first.
func (h *AvailabilityHandler) List(w http.ResponseWriter, r *http.Request) {
	subject, ok := h.subject(w, r)
	if !ok {
		return
	}

	windows, err := h.service.List(r.Context(), subject)
	if err != nil {
		serveError(w, "list windows", err)
		return
	}

	resp := make([]windowResponse, len(windows))
	for i, win := range windows {
		resp[i] = toWindowResponse(win)
	}
	writeSuccess(w, http.StatusOK, resp)
}

// Create handles POST: schedule a new unavailability window.
func (h *AvailabilityHandler) Create(w http.ResponseWriter, r *http.Request) {
	subject, ok := h.subject(w, r)
	if !ok {
		return
	}

	var req createWindowRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	window, err := h.service.Create(r.Context(), service.CreateWindowRequest{
		Subject:     subject,
		StartAt:     req.StartAt,
		EndAt:       req.EndAt,
		Description: req.Description,
	})
	if err != nil {
		serveError(w, "create window", err)
		return
	}
	writeSuccess(w, http.StatusCreated, toWindowResponse(window))
}

// Update handles PUT /{windowID}: reschedule or re-describe a window.
func (h *AvailabilityHandler) Update(w http.ResponseWriter, r *http.Request) {
	windowID, err := uuid.Parse(chi.URLParam(r, "windowID"))
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid window ID")
		return
	}

	var req updateWindowRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	window, err := h.service.Update(r.Context(), service.UpdateWindowRequest{
		WindowID:    windowID,
		StartAt:     req.StartAt,
		EndAt:       req.EndAt,
		ClearEnd:    req.ClearEnd,
		Description: req.Description,
	})
	if err != nil {
		serveError(w, "update window", err)
		return
	}
	writeSuccess(w, http.StatusOK, toWindowResponse(window))
}

// Delete handles DELETE /{windowID}: cancel a window outright.
func (h *AvailabilityHandler) Delete(w http.ResponseWriter, r *http.Request) {
	windowID, err := uuid.Parse(chi.URLParam(r, "windowID"))
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid window ID")
		return
	}

	if err := h.service.Delete(r.Context(), windowID); err != nil {
		serveError(w, "delete window", err)
		return
	}
	writeSuccess(w, http.StatusOK, nil)
}
