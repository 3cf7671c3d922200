package handlers

import (
	"encoding/json"
	"net/http"
	"strings"

	"github.com/go-playground/validator/v10"

	"github.com/udayana-events/server/internal/api/middleware"
	"github.com/udayana-events/server/internal/api/problem"
	"github.com/udayana-events/server/internal/auth"
	"github.com/udayana-events/server/internal/domain/events"
	"github.com/udayana-events/server/internal/domain/ids"
)

type EventsHandler struct {
	Service *events.Service
	Env     string

	validate *validator.Validate
}

func NewEventsHandler(service *events.Service, env string) *EventsHandler {
	return &EventsHandler{
		Service:  service,
		Env:      env,
		validate: validator.New(validator.WithRequiredStructEnabled()),
	}
}

// eventRequest is the submission form: the same field set is used for create
// and for owner edits.
type eventRequest struct {
	Title        string `json:"title" validate:"required,max=200"`
	Description  string `json:"description" validate:"required,max=5000"`
	Location     string `json:"location" validate:"required,max=200"`
	Organizer    string `json:"organizer" validate:"required,max=200"`
	Category     string `json:"category" validate:"required"`
	Faculty      string `json:"faculty" validate:"max=200"`
	StudyProgram string `json:"study_program" validate:"max=200"`
	Image        string `json:"image" validate:"omitempty,max=255"`
	Date         string `json:"date" validate:"required"`
	Time         string `json:"time" validate:"required"`
	Capacity     int    `json:"capacity" validate:"required,min=1"`
}

type listResponse struct {
	Events []eventPayload `json:"events"`
}

// List serves the public feed: approved, non-expired events, soonest first.
func (h *EventsHandler) List(w http.ResponseWriter, r *http.Request) {
	items, err := h.Service.PublicFeed(r.Context())
	if err != nil {
		writeDomainError(w, r, err, h.Env)
		return
	}
	writeJSON(w, http.StatusOK, listResponse{Events: toPayloads(items)})
}

// Get serves one event. Anonymous callers only see approved, non-expired
// events; owners and admins (identified by an optional bearer token) see the
// full lifecycle.
func (h *EventsHandler) Get(w http.ResponseWriter, r *http.Request) {
	id := strings.TrimSpace(r.PathValue("id"))
	if err := ids.ValidateULID(id); err != nil {
		problem.Write(w, r, http.StatusBadRequest, problem.TypeValidation, "Invalid request",
			events.ValidationError{Field: "id", Message: "invalid ULID"}, h.Env)
		return
	}

	var requester events.Requester
	if claims, ok := middleware.ClaimsFromContext(r.Context()); ok {
		requester = requesterFromClaims(claims)
	}

	item, err := h.Service.Get(r.Context(), id, requester)
	if err != nil {
		writeDomainError(w, r, err, h.Env)
		return
	}
	writeJSON(w, http.StatusOK, toPayload(*item))
}

// Mine lists all of the requester's own events regardless of status.
func (h *EventsHandler) Mine(w http.ResponseWriter, r *http.Request) {
	claims, ok := middleware.ClaimsFromContext(r.Context())
	if !ok {
		problem.Write(w, r, http.StatusUnauthorized, problem.TypeUnauthorized, "Unauthorized", auth.ErrMissingToken, h.Env)
		return
	}

	items, err := h.Service.OwnerEvents(r.Context(), claims.Subject)
	if err != nil {
		writeDomainError(w, r, err, h.Env)
		return
	}
	writeJSON(w, http.StatusOK, listResponse{Events: toPayloads(items)})
}

func (h *EventsHandler) Create(w http.ResponseWriter, r *http.Request) {
	claims, ok := middleware.ClaimsFromContext(r.Context())
	if !ok {
		problem.Write(w, r, http.StatusUnauthorized, problem.TypeUnauthorized, "Unauthorized", auth.ErrMissingToken, h.Env)
		return
	}

	req, ok := h.decodeEventRequest(w, r)
	if !ok {
		return
	}

	event, err := h.Service.Create(r.Context(), claims.Subject, events.CreateParams{
		Title:         req.Title,
		Description:   req.Description,
		Location:      req.Location,
		Organizer:     req.Organizer,
		Category:      req.Category,
		Faculty:       req.Faculty,
		StudyProgram:  req.StudyProgram,
		ImageRef:      req.Image,
		ScheduledDate: req.Date,
		ScheduledTime: req.Time,
		Capacity:      req.Capacity,
	})
	if err != nil {
		writeDomainError(w, r, err, h.Env)
		return
	}
	writeJSON(w, http.StatusCreated, toPayload(*event))
}

// Update overwrites the mutable fields of the requester's own event; a
// rejected event resubmits back to pending.
func (h *EventsHandler) Update(w http.ResponseWriter, r *http.Request) {
	claims, ok := middleware.ClaimsFromContext(r.Context())
	if !ok {
		problem.Write(w, r, http.StatusUnauthorized, problem.TypeUnauthorized, "Unauthorized", auth.ErrMissingToken, h.Env)
		return
	}

	id := strings.TrimSpace(r.PathValue("id"))
	if err := ids.ValidateULID(id); err != nil {
		problem.Write(w, r, http.StatusBadRequest, problem.TypeValidation, "Invalid request",
			events.ValidationError{Field: "id", Message: "invalid ULID"}, h.Env)
		return
	}

	req, ok := h.decodeEventRequest(w, r)
	if !ok {
		return
	}

	requester := requesterFromClaims(claims)
	event, err := h.Service.Update(r.Context(), id, requester, events.UpdateParams{
		Title:         req.Title,
		Description:   req.Description,
		Location:      req.Location,
		Organizer:     req.Organizer,
		Category:      req.Category,
		Faculty:       req.Faculty,
		StudyProgram:  req.StudyProgram,
		ImageRef:      req.Image,
		ScheduledDate: req.Date,
		ScheduledTime: req.Time,
		Capacity:      req.Capacity,
	})
	if err != nil {
		writeDomainError(w, r, err, h.Env)
		return
	}
	writeJSON(w, http.StatusOK, toPayload(*event))
}

func (h *EventsHandler) Delete(w http.ResponseWriter, r *http.Request) {
	claims, ok := middleware.ClaimsFromContext(r.Context())
	if !ok {
		problem.Write(w, r, http.StatusUnauthorized, problem.TypeUnauthorized, "Unauthorized", auth.ErrMissingToken, h.Env)
		return
	}

	id := strings.TrimSpace(r.PathValue("id"))
	if err := ids.ValidateULID(id); err != nil {
		problem.Write(w, r, http.StatusBadRequest, problem.TypeValidation, "Invalid request",
			events.ValidationError{Field: "id", Message: "invalid ULID"}, h.Env)
		return
	}

	if err := h.Service.Delete(r.Context(), id, requesterFromClaims(claims)); err != nil {
		writeDomainError(w, r, err, h.Env)
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"message": "event deleted"})
}

func (h *EventsHandler) decodeEventRequest(w http.ResponseWriter, r *http.Request) (eventRequest, bool) {
	var req eventRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		problem.Write(w, r, http.StatusBadRequest, problem.TypeValidation, "Invalid request", err, h.Env)
		return req, false
	}
	if err := h.validate.Struct(req); err != nil {
		problem.Write(w, r, http.StatusBadRequest, problem.TypeValidation, "Invalid request", err, h.Env)
		return req, false
	}
	return req, true
}

func requesterFromClaims(claims *auth.Claims) events.Requester {
	return events.Requester{
		UserID: claims.Subject,
		Admin:  auth.IsAdmin(claims.Role),
	}
}
