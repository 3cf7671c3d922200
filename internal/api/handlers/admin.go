package handlers

import (
	"encoding/json"
	"net/http"
	"strings"

	"github.com/udayana-events/server/internal/api/middleware"
	"github.com/udayana-events/server/internal/api/problem"
	"github.com/udayana-events/server/internal/audit"
	"github.com/udayana-events/server/internal/domain/events"
	"github.com/udayana-events/server/internal/domain/ids"
	"github.com/udayana-events/server/internal/metrics"
)

// AdminHandler serves the moderation endpoints. All routes are mounted
// behind RequireUser + RequireAdmin.
type AdminHandler struct {
	Service *events.Service
	Audit   *audit.Logger
	Env     string
}

func NewAdminHandler(service *events.Service, auditLogger *audit.Logger, env string) *AdminHandler {
	return &AdminHandler{Service: service, Audit: auditLogger, Env: env}
}

// Pending lists the moderation queue, oldest submission first.
func (h *AdminHandler) Pending(w http.ResponseWriter, r *http.Request) {
	items, err := h.Service.ModerationQueue(r.Context())
	if err != nil {
		writeDomainError(w, r, err, h.Env)
		return
	}
	writeJSON(w, http.StatusOK, listResponse{Events: toPayloads(items)})
}

// All lists every event, pending first.
func (h *AdminHandler) All(w http.ResponseWriter, r *http.Request) {
	items, err := h.Service.AdminView(r.Context())
	if err != nil {
		writeDomainError(w, r, err, h.Env)
		return
	}
	writeJSON(w, http.StatusOK, listResponse{Events: toPayloads(items)})
}

func (h *AdminHandler) Approve(w http.ResponseWriter, r *http.Request) {
	id, ok := h.eventID(w, r)
	if !ok {
		return
	}

	if err := h.Service.Approve(r.Context(), id); err != nil {
		h.auditDecision(r, "approve_event", id, "failure", err.Error())
		writeDomainError(w, r, err, h.Env)
		return
	}

	metrics.ModerationDecisions.WithLabelValues("approved").Inc()
	h.auditDecision(r, "approve_event", id, "success", "")
	writeJSON(w, http.StatusOK, map[string]string{"message": "event approved"})
}

type rejectRequest struct {
	Reason string `json:"reason"`
}

func (h *AdminHandler) Reject(w http.ResponseWriter, r *http.Request) {
	id, ok := h.eventID(w, r)
	if !ok {
		return
	}

	var req rejectRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		problem.Write(w, r, http.StatusBadRequest, problem.TypeValidation, "Invalid request", err, h.Env)
		return
	}

	if err := h.Service.Reject(r.Context(), id, strings.TrimSpace(req.Reason)); err != nil {
		h.auditDecision(r, "reject_event", id, "failure", err.Error())
		writeDomainError(w, r, err, h.Env)
		return
	}

	metrics.ModerationDecisions.WithLabelValues("rejected").Inc()
	h.auditDecision(r, "reject_event", id, "success", req.Reason)
	writeJSON(w, http.StatusOK, map[string]string{"message": "event rejected"})
}

// Sweep exposes the expiration sweep as an explicit idempotent maintenance
// call, reporting the number of rows transitioned.
func (h *AdminHandler) Sweep(w http.ResponseWriter, r *http.Request) {
	count, err := h.Service.Sweep(r.Context())
	if err != nil {
		writeDomainError(w, r, err, h.Env)
		return
	}
	writeJSON(w, http.StatusOK, map[string]int64{"expired": count})
}

func (h *AdminHandler) eventID(w http.ResponseWriter, r *http.Request) (string, bool) {
	id := strings.TrimSpace(r.PathValue("id"))
	if err := ids.ValidateULID(id); err != nil {
		problem.Write(w, r, http.StatusBadRequest, problem.TypeValidation, "Invalid request",
			events.ValidationError{Field: "id", Message: "invalid ULID"}, h.Env)
		return "", false
	}
	return id, true
}

func (h *AdminHandler) auditDecision(r *http.Request, action, eventID, outcome, detail string) {
	if h.Audit == nil {
		return
	}
	adminUser := ""
	if claims, ok := middleware.ClaimsFromContext(r.Context()); ok {
		adminUser = claims.Username
	}
	h.Audit.Log(audit.Entry{
		Action:    action,
		AdminUser: adminUser,
		EventID:   eventID,
		IPAddress: audit.ClientIP(r),
		Outcome:   outcome,
		Detail:    detail,
	})
}
