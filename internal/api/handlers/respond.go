package handlers

import (
	"encoding/json"
	"errors"
	"net/http"
	"time"

	"github.com/udayana-events/server/internal/api/problem"
	"github.com/udayana-events/server/internal/domain/events"
)

func writeJSON(w http.ResponseWriter, status int, payload any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(payload)
}

// eventPayload is the wire shape of an event record.
type eventPayload struct {
	ID             string    `json:"id"`
	OwnerID        string    `json:"owner_id"`
	Title          string    `json:"title"`
	Description    string    `json:"description"`
	Location       string    `json:"location"`
	Organizer      string    `json:"organizer"`
	Category       string    `json:"category"`
	Faculty        string    `json:"faculty,omitempty"`
	StudyProgram   string    `json:"study_program,omitempty"`
	Image          string    `json:"image,omitempty"`
	Date           string    `json:"date"`
	Time           string    `json:"time"`
	Capacity       int       `json:"capacity"`
	Status         string    `json:"status"`
	RejectedReason string    `json:"rejected_reason,omitempty"`
	Expired        bool      `json:"expired"`
	CreatedAt      time.Time `json:"created_at"`
	UpdatedAt      time.Time `json:"updated_at"`
}

func toPayload(event events.Event) eventPayload {
	return eventPayload{
		ID:             event.ID,
		OwnerID:        event.OwnerID,
		Title:          event.Title,
		Description:    event.Description,
		Location:       event.Location,
		Organizer:      event.Organizer,
		Category:       string(event.Category),
		Faculty:        event.Faculty,
		StudyProgram:   event.StudyProgram,
		Image:          event.ImageRef,
		Date:           event.ScheduledDate,
		Time:           event.ScheduledTime,
		Capacity:       event.Capacity,
		Status:         string(event.Status),
		RejectedReason: event.RejectedReason,
		Expired:        event.Expired,
		CreatedAt:      event.CreatedAt,
		UpdatedAt:      event.UpdatedAt,
	}
}

func toPayloads(items []events.Event) []eventPayload {
	payloads := make([]eventPayload, 0, len(items))
	for _, item := range items {
		payloads = append(payloads, toPayload(item))
	}
	return payloads
}

// writeDomainError maps lifecycle errors onto problem responses. NotEligible
// and NotFound are deliberately distinct so callers can tell "wrong state"
// from "doesn't exist".
func writeDomainError(w http.ResponseWriter, r *http.Request, err error, env string) {
	var validation events.ValidationError
	switch {
	case errors.As(err, &validation):
		problem.Write(w, r, http.StatusBadRequest, problem.TypeValidation, "Invalid request", err, env,
			problem.WithErrors(map[string]interface{}{validation.Field: validation.Message}))
	case errors.Is(err, events.ErrNotFound):
		problem.Write(w, r, http.StatusNotFound, problem.TypeNotFound, "Event not found", err, env)
	case errors.Is(err, events.ErrNotEligible):
		problem.Write(w, r, http.StatusConflict, problem.TypeNotEligible, "Event not eligible", err, env)
	case errors.Is(err, events.ErrInvalidState):
		problem.Write(w, r, http.StatusConflict, problem.TypeConflict, "Event not editable", err, env)
	case errors.Is(err, events.ErrForbidden):
		problem.Write(w, r, http.StatusForbidden, problem.TypeForbidden, "Forbidden", err, env)
	default:
		problem.Write(w, r, http.StatusInternalServerError, problem.TypeServerError, "Server error", err, env)
	}
}
