package handlers

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"sort"
	"testing"
	"time"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/require"

	"github.com/udayana-events/server/internal/api/middleware"
	"github.com/udayana-events/server/internal/audit"
	"github.com/udayana-events/server/internal/auth"
	"github.com/udayana-events/server/internal/domain/events"
	"github.com/udayana-events/server/internal/domain/ids"
	"github.com/udayana-events/server/internal/domain/users"
)

// memoryRepo is an in-memory events.Repository with the same affected-rows
// contract as the SQL implementation.
type memoryRepo struct {
	items map[string]events.Event
	seq   int
}

func newMemoryRepo() *memoryRepo {
	return &memoryRepo{items: make(map[string]events.Event)}
}

func (m *memoryRepo) stamp() time.Time {
	m.seq++
	return time.Date(2026, 3, 1, 8, 0, 0, 0, time.UTC).Add(time.Duration(m.seq) * time.Minute)
}

func (m *memoryRepo) Create(_ context.Context, event events.Event) error {
	event.CreatedAt = m.stamp()
	event.UpdatedAt = event.CreatedAt
	m.items[event.ID] = event
	return nil
}

func (m *memoryRepo) GetByID(_ context.Context, id string) (*events.Event, error) {
	event, ok := m.items[id]
	if !ok {
		return nil, events.ErrNotFound
	}
	return &event, nil
}

func (m *memoryRepo) ApproveIfPending(_ context.Context, id string) (int64, error) {
	event, ok := m.items[id]
	if !ok || event.Status != events.StatusPending {
		return 0, nil
	}
	event.Status = events.StatusApproved
	event.RejectedReason = ""
	m.items[id] = event
	return 1, nil
}

func (m *memoryRepo) RejectIfPending(_ context.Context, id string, reason string) (int64, error) {
	event, ok := m.items[id]
	if !ok || event.Status != events.StatusPending {
		return 0, nil
	}
	event.Status = events.StatusRejected
	event.RejectedReason = reason
	m.items[id] = event
	return 1, nil
}

func (m *memoryRepo) UpdateIfEditable(_ context.Context, id string, ownerID string, params events.UpdateParams) (int64, error) {
	event, ok := m.items[id]
	if !ok || event.OwnerID != ownerID || !event.Editable() {
		return 0, nil
	}
	event.Title = params.Title
	event.Description = params.Description
	event.Location = params.Location
	event.Organizer = params.Organizer
	event.Category = events.Category(params.Category)
	event.Faculty = params.Faculty
	event.StudyProgram = params.StudyProgram
	event.ImageRef = params.ImageRef
	event.ScheduledDate = params.ScheduledDate
	event.ScheduledTime = params.ScheduledTime
	event.Capacity = params.Capacity
	event.Status = events.StatusPending
	event.RejectedReason = ""
	event.UpdatedAt = m.stamp()
	m.items[id] = event
	return 1, nil
}

func (m *memoryRepo) Delete(_ context.Context, id string) (int64, error) {
	if _, ok := m.items[id]; !ok {
		return 0, nil
	}
	delete(m.items, id)
	return 1, nil
}

func (m *memoryRepo) MarkExpired(_ context.Context, date string, tm string) (int64, error) {
	var count int64
	for id, event := range m.items {
		if event.Expired {
			continue
		}
		if event.ScheduledDate < date || (event.ScheduledDate == date && event.ScheduledTime <= tm) {
			event.Expired = true
			m.items[id] = event
			count++
		}
	}
	return count, nil
}

func (m *memoryRepo) ListPublic(_ context.Context) ([]events.Event, error) {
	items := m.filter(func(e events.Event) bool { return e.PubliclyVisible() })
	sort.Slice(items, func(i, j int) bool {
		if items[i].ScheduledDate != items[j].ScheduledDate {
			return items[i].ScheduledDate < items[j].ScheduledDate
		}
		return items[i].ScheduledTime < items[j].ScheduledTime
	})
	return items, nil
}

func (m *memoryRepo) ListPending(_ context.Context) ([]events.Event, error) {
	items := m.filter(func(e events.Event) bool { return e.Status == events.StatusPending })
	sort.Slice(items, func(i, j int) bool { return items[i].CreatedAt.Before(items[j].CreatedAt) })
	return items, nil
}

func (m *memoryRepo) ListByOwner(_ context.Context, ownerID string) ([]events.Event, error) {
	items := m.filter(func(e events.Event) bool { return e.OwnerID == ownerID })
	sort.Slice(items, func(i, j int) bool { return items[j].CreatedAt.Before(items[i].CreatedAt) })
	return items, nil
}

func (m *memoryRepo) ListAll(_ context.Context) ([]events.Event, error) {
	items := m.filter(func(events.Event) bool { return true })
	rank := map[events.Status]int{events.StatusPending: 1, events.StatusApproved: 2, events.StatusRejected: 3}
	sort.Slice(items, func(i, j int) bool {
		if rank[items[i].Status] != rank[items[j].Status] {
			return rank[items[i].Status] < rank[items[j].Status]
		}
		return items[j].CreatedAt.Before(items[i].CreatedAt)
	})
	return items, nil
}

func (m *memoryRepo) filter(keep func(events.Event) bool) []events.Event {
	items := make([]events.Event, 0, len(m.items))
	for _, event := range m.items {
		if keep(event) {
			items = append(items, event)
		}
	}
	return items
}

// memoryUsers backs the auth handler tests.
type memoryUsers struct {
	byUsername map[string]users.User
}

func newMemoryUsers() *memoryUsers {
	return &memoryUsers{byUsername: make(map[string]users.User)}
}

func (m *memoryUsers) Create(_ context.Context, user users.User) error {
	if _, ok := m.byUsername[user.Username]; ok {
		return users.ErrAlreadyExists
	}
	m.byUsername[user.Username] = user
	return nil
}

func (m *memoryUsers) GetByUsername(_ context.Context, username string) (*users.User, error) {
	user, ok := m.byUsername[username]
	if !ok {
		return nil, users.ErrNotFound
	}
	return &user, nil
}

func (m *memoryUsers) GetByID(_ context.Context, id string) (*users.User, error) {
	for _, user := range m.byUsername {
		if user.ID == id {
			return &user, nil
		}
	}
	return nil, users.ErrNotFound
}

// testEnv wires the handlers behind the same mux patterns the server uses.
type testEnv struct {
	mux  *http.ServeMux
	repo *memoryRepo
	jwt  *auth.JWTManager
	now  time.Time
}

func newTestEnv(t *testing.T) *testEnv {
	t.Helper()

	repo := newMemoryRepo()
	now := time.Date(2026, 3, 10, 10, 0, 0, 0, time.UTC)
	sweeper := events.NewSweeper(repo, time.UTC).WithClock(func() time.Time { return now })
	service := events.NewService(repo, sweeper, nil, zerolog.Nop())

	jwtManager := auth.NewJWTManager("test-secret", time.Hour, "test")
	usersService := users.NewService(newMemoryUsers())

	eventsHandler := NewEventsHandler(service, "test")
	adminHandler := NewAdminHandler(service, audit.NewLogger(zerolog.Nop()), "test")
	authHandler := NewAuthHandler(usersService, jwtManager, "test")

	requireUser := middleware.RequireUser(jwtManager, "test")
	requireAdmin := middleware.RequireAdmin("test")
	optionalUser := middleware.OptionalUser(jwtManager)

	mux := http.NewServeMux()
	mux.HandleFunc("POST /api/v1/auth/register", authHandler.Register)
	mux.HandleFunc("POST /api/v1/auth/login", authHandler.Login)
	mux.HandleFunc("GET /api/v1/events", eventsHandler.List)
	mux.Handle("GET /api/v1/events/mine", requireUser(http.HandlerFunc(eventsHandler.Mine)))
	mux.Handle("GET /api/v1/events/{id}", optionalUser(http.HandlerFunc(eventsHandler.Get)))
	mux.Handle("POST /api/v1/events", requireUser(http.HandlerFunc(eventsHandler.Create)))
	mux.Handle("PUT /api/v1/events/{id}", requireUser(http.HandlerFunc(eventsHandler.Update)))
	mux.Handle("DELETE /api/v1/events/{id}", requireUser(http.HandlerFunc(eventsHandler.Delete)))
	mux.Handle("GET /api/v1/admin/events", requireUser(requireAdmin(http.HandlerFunc(adminHandler.All))))
	mux.Handle("GET /api/v1/admin/events/pending", requireUser(requireAdmin(http.HandlerFunc(adminHandler.Pending))))
	mux.Handle("POST /api/v1/admin/events/{id}/approve", requireUser(requireAdmin(http.HandlerFunc(adminHandler.Approve))))
	mux.Handle("POST /api/v1/admin/events/{id}/reject", requireUser(requireAdmin(http.HandlerFunc(adminHandler.Reject))))
	mux.Handle("POST /api/v1/admin/events/sweep", requireUser(requireAdmin(http.HandlerFunc(adminHandler.Sweep))))

	return &testEnv{mux: mux, repo: repo, jwt: jwtManager, now: now}
}

func (env *testEnv) token(t *testing.T, userID, role string) string {
	t.Helper()
	token, err := env.jwt.Generate(userID, userID, role)
	require.NoError(t, err)
	return token
}

func (env *testEnv) do(t *testing.T, method, path, token string, body any) *httptest.ResponseRecorder {
	t.Helper()
	var reader io.Reader
	if body != nil {
		payload, err := json.Marshal(body)
		require.NoError(t, err)
		reader = bytes.NewReader(payload)
	}
	req := httptest.NewRequest(method, path, reader)
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	rec := httptest.NewRecorder()
	env.mux.ServeHTTP(rec, req)
	return rec
}

func (env *testEnv) seed(t *testing.T, ownerID string, status events.Status, date, tm string) string {
	t.Helper()
	id, err := ids.NewULID()
	require.NoError(t, err)
	err = env.repo.Create(context.Background(), events.Event{
		ID:            id,
		OwnerID:       ownerID,
		Title:         "Robotics Workshop",
		Description:   "Hands-on session",
		Location:      "Lab 2",
		Organizer:     "Robotics Club",
		Category:      events.CategoryWorkshop,
		ScheduledDate: date,
		ScheduledTime: tm,
		Capacity:      40,
		Status:        status,
	})
	require.NoError(t, err)
	return id
}

func validEventBody() map[string]any {
	return map[string]any{
		"title":       "Robotics Workshop",
		"description": "Hands-on session",
		"location":    "Lab 2",
		"organizer":   "Robotics Club",
		"category":    "workshop",
		"date":        "2026-04-01",
		"time":        "14:00:00",
		"capacity":    40,
	}
}

func decodeEvent(t *testing.T, rec *httptest.ResponseRecorder) eventPayload {
	t.Helper()
	var payload eventPayload
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &payload))
	return payload
}

func decodeList(t *testing.T, rec *httptest.ResponseRecorder) []eventPayload {
	t.Helper()
	var payload listResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &payload))
	return payload.Events
}

func problemType(t *testing.T, rec *httptest.ResponseRecorder) string {
	t.Helper()
	var body struct {
		Type string `json:"type"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	return body.Type
}
