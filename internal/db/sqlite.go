// Package db provides SQLite storage for the local session and match drafts.
package db

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	_ "modernc.org/sqlite" // SQLite driver

	"github.com/javiermolinar/timeflow/internal/schedule"
	"github.com/javiermolinar/timeflow/internal/session"
)

// SQLite implements session.Store using SQLite.
type SQLite struct {
	db *sql.DB
}

var _ session.Store = (*SQLite)(nil)

// New creates a new SQLite store and runs migrations.
// The parent directory is created when missing.
func New(path string) (*SQLite, error) {
	if dir := filepath.Dir(path); dir != "." {
		if err := os.MkdirAll(dir, 0o700); err != nil {
			return nil, fmt.Errorf("creating database directory: %w", err)
		}
	}

	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("opening database: %w", err)
	}

	if err := db.Ping(); err != nil {
		return nil, fmt.Errorf("connecting to database: %w", err)
	}

	s := &SQLite{db: db}
	if err := s.migrate(); err != nil {
		return nil, fmt.Errorf("running migrations: %w", err)
	}

	return s, nil
}

// Close releases database resources.
func (s *SQLite) Close() error {
	return s.db.Close()
}

// SaveSession inserts or replaces the session for its base URL.
func (s *SQLite) SaveSession(ctx context.Context, sess *session.Session) error {
	if sess.BaseURL == "" {
		return errors.New("session base URL must be set")
	}
	if sess.SavedAt.IsZero() {
		sess.SavedAt = time.Now()
	}

	query := `
		INSERT INTO sessions (base_url, token, user_id, full_name, role, expires_at, saved_at)
		VALUES (?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT(base_url) DO UPDATE SET
			token = excluded.token,
			user_id = excluded.user_id,
			full_name = excluded.full_name,
			role = excluded.role,
			expires_at = excluded.expires_at,
			saved_at = excluded.saved_at
	`

	var expiresAt sql.NullString
	if !sess.ExpiresAt.IsZero() {
		expiresAt = sql.NullString{String: sess.ExpiresAt.UTC().Format(time.RFC3339), Valid: true}
	}

	_, err := s.db.ExecContext(ctx, query,
		sess.BaseURL,
		sess.Token,
		sess.UserID,
		sess.FullName,
		string(sess.Role),
		expiresAt,
		sess.SavedAt.UTC().Format(time.RFC3339),
	)
	if err != nil {
		return fmt.Errorf("saving session: %w", err)
	}
	return nil
}

// GetSession returns the session for baseURL, or session.ErrNoSession.
func (s *SQLite) GetSession(ctx context.Context, baseURL string) (*session.Session, error) {
	query := `
		SELECT base_url, token, user_id, full_name, role, expires_at, saved_at
		FROM sessions
		WHERE base_url = ?
	`

	var (
		sess      session.Session
		role      string
		expiresAt sql.NullString
		savedAt   string
	)

	err := s.db.QueryRowContext(ctx, query, baseURL).Scan(
		&sess.BaseURL,
		&sess.Token,
		&sess.UserID,
		&sess.FullName,
		&role,
		&expiresAt,
		&savedAt,
	)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, session.ErrNoSession
	}
	if err != nil {
		return nil, fmt.Errorf("querying session: %w", err)
	}

	sess.Role = schedule.Role(role)
	if expiresAt.Valid {
		sess.ExpiresAt, err = parseTimestamp(expiresAt.String)
		if err != nil {
			return nil, fmt.Errorf("parsing expires at: %w", err)
		}
	}
	sess.SavedAt, err = parseTimestamp(savedAt)
	if err != nil {
		return nil, fmt.Errorf("parsing saved at: %w", err)
	}

	return &sess, nil
}

// DeleteSession removes the session for baseURL.
func (s *SQLite) DeleteSession(ctx context.Context, baseURL string) error {
	if _, err := s.db.ExecContext(ctx, `DELETE FROM sessions WHERE base_url = ?`, baseURL); err != nil {
		return fmt.Errorf("deleting session: %w", err)
	}
	return nil
}

// SaveDraft replaces the named draft with sel, keeping entry order.
func (s *SQLite) SaveDraft(ctx context.Context, name string, sel schedule.Selection) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("beginning transaction: %w", err)
	}
	defer func() { _ = tx.Rollback() }()

	if _, err := tx.ExecContext(ctx, `DELETE FROM draft_slots WHERE draft = ?`, name); err != nil {
		return fmt.Errorf("clearing draft %q: %w", name, err)
	}

	query := `INSERT INTO draft_slots (draft, position, day_of_week, slot_time) VALUES (?, ?, ?, ?)`
	stmt, err := tx.PrepareContext(ctx, query)
	if err != nil {
		return fmt.Errorf("preparing statement: %w", err)
	}
	defer func() { _ = stmt.Close() }()

	for i, p := range sel.Items() {
		if _, err := stmt.ExecContext(ctx, name, i, string(p.DayOfWeek), p.Time); err != nil {
			return fmt.Errorf("inserting draft slot %d: %w", i+1, err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("committing transaction: %w", err)
	}
	return nil
}

// GetDraft returns the named draft. A missing draft is an empty selection.
func (s *SQLite) GetDraft(ctx context.Context, name string) (schedule.Selection, error) {
	query := `
		SELECT day_of_week, slot_time
		FROM draft_slots
		WHERE draft = ?
		ORDER BY position
	`

	rows, err := s.db.QueryContext(ctx, query, name)
	if err != nil {
		return schedule.Selection{}, fmt.Errorf("querying draft: %w", err)
	}
	defer func() { _ = rows.Close() }()

	var prefs []schedule.SlotPreference
	for rows.Next() {
		var day, t string
		if err := rows.Scan(&day, &t); err != nil {
			return schedule.Selection{}, fmt.Errorf("scanning draft slot: %w", err)
		}
		prefs = append(prefs, schedule.SlotPreference{DayOfWeek: schedule.DayOfWeek(day), Time: t})
	}
	if err := rows.Err(); err != nil {
		return schedule.Selection{}, fmt.Errorf("iterating draft slots: %w", err)
	}

	return schedule.NewSelection(prefs...), nil
}

// DeleteDraft removes the named draft.
func (s *SQLite) DeleteDraft(ctx context.Context, name string) error {
	if _, err := s.db.ExecContext(ctx, `DELETE FROM draft_slots WHERE draft = ?`, name); err != nil {
		return fmt.Errorf("deleting draft: %w", err)
	}
	return nil
}

// parseTimestamp parses a timestamp in the formats SQLite might return.
func parseTimestamp(s string) (time.Time, error) {
	formats := []string{
		time.RFC3339,
		"2006-01-02 15:04:05",
		"2006-01-02T15:04:05Z",
	}
	for _, f := range formats {
		if t, err := time.Parse(f, s); err == nil {
			return t, nil
		}
	}
	return time.Time{}, fmt.Errorf("unrecognized timestamp format: %s", s)
}
