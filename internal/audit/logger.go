package audit

import (
	"net/http"
	"strings"
	"time"

	"github.com/rs/zerolog"
)

// Entry is a single audit record for an admin moderation action.
type Entry struct {
	Action     string
	AdminUser  string
	EventID    string
	IPAddress  string
	Outcome    string // "success" or "failure"
	Detail     string
	OccurredAt time.Time
}

// Logger writes structured audit entries for admin operations through the
// application logger, tagged so they can be filtered into a separate stream.
type Logger struct {
	logger zerolog.Logger
}

func NewLogger(logger zerolog.Logger) *Logger {
	return &Logger{logger: logger.With().Str("log", "audit").Logger()}
}

func (l *Logger) Log(entry Entry) {
	if entry.OccurredAt.IsZero() {
		entry.OccurredAt = time.Now().UTC()
	}
	l.logger.Info().
		Str("action", entry.Action).
		Str("admin_user", entry.AdminUser).
		Str("event_id", entry.EventID).
		Str("ip", entry.IPAddress).
		Str("outcome", entry.Outcome).
		Str("detail", entry.Detail).
		Time("occurred_at", entry.OccurredAt).
		Msg("admin action")
}

func (l *Logger) Success(action, adminUser, eventID, ip, detail string) {
	l.Log(Entry{Action: action, AdminUser: adminUser, EventID: eventID, IPAddress: ip, Outcome: "success", Detail: detail})
}

func (l *Logger) Failure(action, adminUser, eventID, ip, detail string) {
	l.Log(Entry{Action: action, AdminUser: adminUser, EventID: eventID, IPAddress: ip, Outcome: "failure", Detail: detail})
}

// ClientIP extracts the client address, preferring reverse-proxy headers.
func ClientIP(r *http.Request) string {
	if xff := r.Header.Get("X-Forwarded-For"); xff != "" {
		parts := strings.Split(xff, ",")
		return strings.TrimSpace(parts[0])
	}
	if rip := r.Header.Get("X-Real-IP"); rip != "" {
		return strings.TrimSpace(rip)
	}
	host := r.RemoteAddr
	if idx := strings.LastIndex(host, ":"); idx > 0 {
		host = host[:idx]
	}
	return host
}
