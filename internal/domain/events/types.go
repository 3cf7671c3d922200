package events

import "time"

// Status is the review state of a submission. It is a closed set enforced at
// the type level and again by a database check constraint; there is no
// "unknown" member.
type Status string

const (
	StatusPending  Status = "pending"
	StatusApproved Status = "approved"
	StatusRejected Status = "rejected"
)

func (s Status) Valid() bool {
	switch s {
	case StatusPending, StatusApproved, StatusRejected:
		return true
	}
	return false
}

// Category classifies an event for the public feed.
type Category string

const (
	CategorySeminar     Category = "seminar"
	CategoryWorkshop    Category = "workshop"
	CategoryCompetition Category = "competition"
	CategoryFestival    Category = "festival"
	CategorySports      Category = "sports"
	CategoryArts        Category = "arts"
)

// ParseCategory normalizes and validates a category value.
func ParseCategory(value string) (Category, bool) {
	c := Category(value)
	switch c {
	case CategorySeminar, CategoryWorkshop, CategoryCompetition, CategoryFestival, CategorySports, CategoryArts:
		return c, true
	}
	return "", false
}

// Event is a campus event submission. Scheduling is stored as a local
// calendar date and wall-clock time, matching the DATE and TIME columns, so
// expiry comparisons are exact string comparisons in the configured zone
// rather than instant arithmetic.
type Event struct {
	ID             string
	OwnerID        string
	Title          string
	Description    string
	Location       string
	Organizer      string
	Category       Category
	Faculty        string
	StudyProgram   string
	ImageRef       string
	ScheduledDate  string // YYYY-MM-DD
	ScheduledTime  string // HH:MM:SS
	Capacity       int
	Status         Status
	RejectedReason string
	Expired        bool
	CreatedAt      time.Time
	UpdatedAt      time.Time
}

// StartsAt resolves the scheduled date and time in the given zone. It returns
// the zero time if either field is malformed.
func (e Event) StartsAt(loc *time.Location) time.Time {
	if loc == nil {
		loc = time.UTC
	}
	t, err := time.ParseInLocation("2006-01-02 15:04:05", e.ScheduledDate+" "+e.ScheduledTime, loc)
	if err != nil {
		return time.Time{}
	}
	return t
}

// Editable reports whether the owner may still change or withdraw the event:
// pending or rejected, and not expired. Approval freezes the record.
func (e Event) Editable() bool {
	return !e.Expired && (e.Status == StatusPending || e.Status == StatusRejected)
}

// PubliclyVisible reports whether the event belongs in the public feed.
func (e Event) PubliclyVisible() bool {
	return e.Status == StatusApproved && !e.Expired
}

// CreateParams carries the owner-supplied fields of a new submission.
type CreateParams struct {
	Title         string
	Description   string
	Location      string
	Organizer     string
	Category      string
	Faculty       string
	StudyProgram  string
	ImageRef      string
	ScheduledDate string
	ScheduledTime string
	Capacity      int
}

// UpdateParams carries the full replacement set of mutable fields. Edits
// always overwrite every field; there is no partial patch.
type UpdateParams struct {
	Title         string
	Description   string
	Location      string
	Organizer     string
	Category      string
	Faculty       string
	StudyProgram  string
	ImageRef      string
	ScheduledDate string
	ScheduledTime string
	Capacity      int
}

// Requester identifies the authenticated caller of a mutation. Both fields
// come from a verified token, never from request payloads.
type Requester struct {
	UserID string
	Admin  bool
}
