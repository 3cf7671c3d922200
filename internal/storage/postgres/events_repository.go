package postgres

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"

	"github.com/udayana-events/server/internal/domain/events"
)

var _ events.Repository = (*EventRepository)(nil)

const eventColumns = `
e.id, e.owner_id, e.title, e.description, e.location, e.organizer, e.category,
e.faculty, e.study_program, e.image_ref, e.scheduled_date::text,
to_char(e.scheduled_time, 'HH24:MI:SS'), e.capacity, e.status,
e.rejected_reason, e.expired, e.created_at, e.updated_at`

func (r *EventRepository) Create(ctx context.Context, event events.Event) error {
	_, err := r.queryer().Exec(ctx, `
INSERT INTO events (id, owner_id, title, description, location, organizer,
                    category, faculty, study_program, image_ref,
                    scheduled_date, scheduled_time, capacity, status,
                    rejected_reason, expired)
VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, NULLIF($10, ''),
        $11::date, $12::time, $13, $14, NULL, FALSE)
`,
		event.ID,
		event.OwnerID,
		event.Title,
		event.Description,
		event.Location,
		event.Organizer,
		string(event.Category),
		event.Faculty,
		event.StudyProgram,
		event.ImageRef,
		event.ScheduledDate,
		event.ScheduledTime,
		event.Capacity,
		string(event.Status),
	)
	if err != nil {
		return fmt.Errorf("insert event: %w", err)
	}
	return nil
}

func (r *EventRepository) GetByID(ctx context.Context, id string) (*events.Event, error) {
	row := r.queryer().QueryRow(ctx, `
SELECT `+eventColumns+`
  FROM events e
 WHERE e.id = $1
`, id)

	event, err := scanEvent(row)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, events.ErrNotFound
		}
		return nil, fmt.Errorf("get event: %w", err)
	}
	return event, nil
}

func (r *EventRepository) ApproveIfPending(ctx context.Context, id string) (int64, error) {
	tag, err := r.queryer().Exec(ctx, `
UPDATE events
   SET status = 'approved', rejected_reason = NULL, updated_at = now()
 WHERE id = $1 AND status = 'pending'
`, id)
	if err != nil {
		return 0, fmt.Errorf("approve event: %w", err)
	}
	return tag.RowsAffected(), nil
}

func (r *EventRepository) RejectIfPending(ctx context.Context, id string, reason string) (int64, error) {
	tag, err := r.queryer().Exec(ctx, `
UPDATE events
   SET status = 'rejected', rejected_reason = $2, updated_at = now()
 WHERE id = $1 AND status = 'pending'
`, id, reason)
	if err != nil {
		return 0, fmt.Errorf("reject event: %w", err)
	}
	return tag.RowsAffected(), nil
}

func (r *EventRepository) UpdateIfEditable(ctx context.Context, id string, ownerID string, params events.UpdateParams) (int64, error) {
	tag, err := r.queryer().Exec(ctx, `
UPDATE events
   SET title = $3, description = $4, location = $5, organizer = $6,
       category = $7, faculty = $8, study_program = $9,
       image_ref = NULLIF($10, ''), scheduled_date = $11::date,
       scheduled_time = $12::time, capacity = $13,
       status = 'pending', rejected_reason = NULL, updated_at = now()
 WHERE id = $1 AND owner_id = $2
   AND status IN ('pending', 'rejected')
   AND expired = FALSE
`,
		id,
		ownerID,
		params.Title,
		params.Description,
		params.Location,
		params.Organizer,
		params.Category,
		params.Faculty,
		params.StudyProgram,
		params.ImageRef,
		params.ScheduledDate,
		params.ScheduledTime,
		params.Capacity,
	)
	if err != nil {
		return 0, fmt.Errorf("update event: %w", err)
	}
	return tag.RowsAffected(), nil
}

func (r *EventRepository) Delete(ctx context.Context, id string) (int64, error) {
	tag, err := r.queryer().Exec(ctx, `DELETE FROM events WHERE id = $1`, id)
	if err != nil {
		return 0, fmt.Errorf("delete event: %w", err)
	}
	return tag.RowsAffected(), nil
}

func (r *EventRepository) MarkExpired(ctx context.Context, date string, tm string) (int64, error) {
	tag, err := r.queryer().Exec(ctx, `
UPDATE events
   SET expired = TRUE, updated_at = now()
 WHERE expired = FALSE
   AND (scheduled_date < $1::date
        OR (scheduled_date = $1::date AND scheduled_time <= $2::time))
`, date, tm)
	if err != nil {
		return 0, fmt.Errorf("mark expired events: %w", err)
	}
	return tag.RowsAffected(), nil
}

func (r *EventRepository) ListPublic(ctx context.Context) ([]events.Event, error) {
	return r.list(ctx, `
SELECT `+eventColumns+`
  FROM events e
 WHERE e.status = 'approved' AND e.expired = FALSE
 ORDER BY e.scheduled_date ASC, e.scheduled_time ASC, e.id ASC
`)
}

func (r *EventRepository) ListPending(ctx context.Context) ([]events.Event, error) {
	return r.list(ctx, `
SELECT `+eventColumns+`
  FROM events e
 WHERE e.status = 'pending'
 ORDER BY e.created_at ASC, e.id ASC
`)
}

func (r *EventRepository) ListByOwner(ctx context.Context, ownerID string) ([]events.Event, error) {
	return r.list(ctx, `
SELECT `+eventColumns+`
  FROM events e
 WHERE e.owner_id = $1
 ORDER BY e.created_at DESC, e.id DESC
`, ownerID)
}

func (r *EventRepository) ListAll(ctx context.Context) ([]events.Event, error) {
	return r.list(ctx, `
SELECT `+eventColumns+`
  FROM events e
 ORDER BY CASE e.status
            WHEN 'pending' THEN 1
            WHEN 'approved' THEN 2
            WHEN 'rejected' THEN 3
          END,
          e.created_at DESC, e.id DESC
`)
}

func (r *EventRepository) list(ctx context.Context, query string, args ...any) ([]events.Event, error) {
	rows, err := r.queryer().Query(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("list events: %w", err)
	}
	defer rows.Close()

	items := make([]events.Event, 0)
	for rows.Next() {
		event, err := scanEvent(rows)
		if err != nil {
			return nil, fmt.Errorf("scan event: %w", err)
		}
		items = append(items, *event)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate events: %w", err)
	}
	return items, nil
}

func scanEvent(row pgx.Row) (*events.Event, error) {
	var (
		event          events.Event
		description    *string
		location       *string
		organizer      *string
		faculty        *string
		studyProgram   *string
		imageRef       *string
		rejectedReason *string
		status         string
		category       string
		createdAt      time.Time
		updatedAt      time.Time
	)
	if err := row.Scan(
		&event.ID,
		&event.OwnerID,
		&event.Title,
		&description,
		&location,
		&organizer,
		&category,
		&faculty,
		&studyProgram,
		&imageRef,
		&event.ScheduledDate,
		&event.ScheduledTime,
		&event.Capacity,
		&status,
		&rejectedReason,
		&event.Expired,
		&createdAt,
		&updatedAt,
	); err != nil {
		return nil, err
	}

	event.Description = derefString(description)
	event.Location = derefString(location)
	event.Organizer = derefString(organizer)
	event.Category = events.Category(category)
	event.Faculty = derefString(faculty)
	event.StudyProgram = derefString(studyProgram)
	event.ImageRef = derefString(imageRef)
	event.Status = events.Status(status)
	event.RejectedReason = derefString(rejectedReason)
	event.CreatedAt = createdAt
	event.UpdatedAt = updatedAt
	return &event, nil
}
