package store

import (
	"database/sql"
	"time"
)

// Event is a recorded swipe.
type Event struct {
	ID         int64
	SessionID  string
	Direction  string
	DurationMs int64
	Rotation   int
	CreatedAt  time.Time
}

// EventRepository records and queries swipe events.
type EventRepository struct {
	db *sql.DB
}

// Events returns the event repository for this store.
func (s *Store) Events() *EventRepository {
	return &EventRepository{db: s.db}
}

// Create inserts an event and fills in its ID.
func (r *EventRepository) Create(e *Event) error {
	if e.CreatedAt.IsZero() {
		e.CreatedAt = time.Now()
	}

	var sessionID any
	if e.SessionID != "" {
		sessionID = e.SessionID
	}

	result, err := r.db.Exec(
		`INSERT INTO gesture_events (session_id, direction, duration_ms, rotation, created_at)
		 VALUES (?, ?, ?, ?, ?)`,
		sessionID, e.Direction, e.DurationMs, e.Rotation, e.CreatedAt,
	)
	if err != nil {
		return err
	}

	e.ID, err = result.LastInsertId()
	return err
}

// Recent returns up to limit events, newest first.
func (r *EventRepository) Recent(limit int) ([]*Event, error) {
	return r.query(
		`SELECT id, session_id, direction, duration_ms, rotation, created_at
		 FROM gesture_events ORDER BY id DESC LIMIT ?`,
		limit,
	)
}

// ListBySession returns the events of one session in the order they happened.
func (r *EventRepository) ListBySession(sessionID string) ([]*Event, error) {
	return r.query(
		`SELECT id, session_id, direction, duration_ms, rotation, created_at
		 FROM gesture_events WHERE session_id = ? ORDER BY id ASC`,
		sessionID,
	)
}

// CountByDirection returns how many events were recorded per direction.
func (r *EventRepository) CountByDirection() (map[string]int, error) {
	rows, err := r.db.Query(`SELECT direction, COUNT(*) FROM gesture_events GROUP BY direction`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	counts := make(map[string]int)
	for rows.Next() {
		var dir string
		var n int
		if err := rows.Scan(&dir, &n); err != nil {
			return nil, err
		}
		counts[dir] = n
	}
	return counts, rows.Err()
}

func (r *EventRepository) query(q string, args ...any) ([]*Event, error) {
	rows, err := r.db.Query(q, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var events []*Event
	for rows.Next() {
		e := &Event{}
		var sessionID sql.NullString
		if err := rows.Scan(&e.ID, &sessionID, &e.Direction, &e.DurationMs, &e.Rotation, &e.CreatedAt); err != nil {
			return nil, err
		}
		e.SessionID = sessionID.String
		events = append(events, e)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}

	return events, nil
}
