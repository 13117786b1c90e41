package store

import (
	"context"
	"database/sql"
	"time"

	"github.com/AntonioFerrao-hub/gallery-sync-palazzo-23/internal/model"
)

const createEvent = `
INSERT INTO events (level, category, message, user_id, ip_address, user_agent, country, created_at)
VALUES (?, ?, ?, ?, ?, ?, ?, ?)
`

// CreateEventParams holds the fields for recording an event.
type CreateEventParams struct {
	Level     string
	Category  string
	Message   string
	UserID    sql.NullInt64
	IPAddress sql.NullString
	UserAgent sql.NullString
	Country   sql.NullString
	CreatedAt time.Time
}

// CreateEvent records an audit/system event.
func (q *Queries) CreateEvent(ctx context.Context, arg CreateEventParams) error {
	_, err := q.db.ExecContext(ctx, createEvent,
		arg.Level, arg.Category, arg.Message,
		arg.UserID, arg.IPAddress, arg.UserAgent, arg.Country, arg.CreatedAt)
	return err
}

const listEvents = `
SELECT id, level, category, message, user_id, ip_address, user_agent, country, created_at
FROM events ORDER BY created_at DESC, id DESC LIMIT ?
`

// ListEvents returns the most recent events.
func (q *Queries) ListEvents(ctx context.Context, limit int64) ([]model.Event, error) {
	rows, err := q.db.QueryContext(ctx, listEvents, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var events []model.Event
	for rows.Next() {
		var e model.Event
		if err := rows.Scan(&e.ID, &e.Level, &e.Category, &e.Message,
			&e.UserID, &e.IPAddress, &e.UserAgent, &e.Country, &e.CreatedAt); err != nil {
			return nil, err
		}
		events = append(events, e)
	}
	return events, rows.Err()
}

const deleteEventsBefore = `DELETE FROM events WHERE created_at < ?`

// DeleteEventsBefore removes events older than the cutoff. Returns the
// number of rows removed.
func (q *Queries) DeleteEventsBefore(ctx context.Context, cutoff time.Time) (int64, error) {
	res, err := q.db.ExecContext(ctx, deleteEventsBefore, cutoff)
	if err != nil {
		return 0, err
	}
	return res.RowsAffected()
}
