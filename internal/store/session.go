package store

import (
	"database/sql"
	"errors"
	"time"

	"github.com/google/uuid"
)

// Session is one run of the sensor between Start and Stop.
type Session struct {
	ID        string
	StartedAt time.Time
	StoppedAt *time.Time
	Width     int
	Height    int
}

// Active reports whether the session has not been stopped.
func (s *Session) Active() bool {
	return s.StoppedAt == nil
}

// SessionRepository records sensor sessions.
type SessionRepository struct {
	db *sql.DB
}

// Sessions returns the session repository for this store.
func (s *Store) Sessions() *SessionRepository {
	return &SessionRepository{db: s.db}
}

// Create inserts a session, assigning an ID and start time when unset.
func (r *SessionRepository) Create(sess *Session) error {
	if sess.ID == "" {
		sess.ID = uuid.New().String()
	}
	if sess.StartedAt.IsZero() {
		sess.StartedAt = time.Now()
	}

	_, err := r.db.Exec(
		`INSERT INTO sessions (id, started_at, width, height) VALUES (?, ?, ?, ?)`,
		sess.ID, sess.StartedAt, sess.Width, sess.Height,
	)
	return err
}

// Finish marks a session stopped at t.
func (r *SessionRepository) Finish(id string, t time.Time) error {
	return execOne(r.db, `UPDATE sessions SET stopped_at = ? WHERE id = ?`, t, id)
}

// SetResolution records the capture size of a session.
func (r *SessionRepository) SetResolution(id string, width, height int) error {
	return execOne(r.db, `UPDATE sessions SET width = ?, height = ? WHERE id = ?`, width, height, id)
}

// Delete removes a session and, by cascade, its events.
func (r *SessionRepository) Delete(id string) error {
	return execOne(r.db, `DELETE FROM sessions WHERE id = ?`, id)
}

// execOne runs a statement that must touch exactly one row.
func execOne(db *sql.DB, query string, args ...any) error {
	result, err := db.Exec(query, args...)
	if err != nil {
		return err
	}

	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return err
	}
	if rowsAffected == 0 {
		return ErrNotFound
	}
	return nil
}

// GetByID retrieves a session by its ID.
func (r *SessionRepository) GetByID(id string) (*Session, error) {
	row := r.db.QueryRow(
		`SELECT id, started_at, stopped_at, width, height FROM sessions WHERE id = ?`, id,
	)
	sess, err := scanSession(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrNotFound
	}
	return sess, err
}

// List returns the most recent sessions first, at most limit rows.
func (r *SessionRepository) List(limit int) ([]*Session, error) {
	rows, err := r.db.Query(
		`SELECT id, started_at, stopped_at, width, height
		 FROM sessions ORDER BY started_at DESC LIMIT ?`,
		limit,
	)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var sessions []*Session
	for rows.Next() {
		sess, err := scanSession(rows)
		if err != nil {
			return nil, err
		}
		sessions = append(sessions, sess)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}

	return sessions, nil
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanSession(row rowScanner) (*Session, error) {
	sess := &Session{}
	var stopped sql.NullTime

	if err := row.Scan(&sess.ID, &sess.StartedAt, &stopped, &sess.Width, &sess.Height); err != nil {
		return nil, err
	}
	if stopped.Valid {
		t := stopped.Time
		sess.StoppedAt = &t
	}
	return sess, nil
}
