package db

import "fmt"

// migrate runs database migrations.
func (s *SQLite) migrate() error {
	query := `
		CREATE TABLE IF NOT EXISTS sessions (
			base_url    TEXT PRIMARY KEY,
			token       TEXT NOT NULL,
			user_id     TEXT NOT NULL DEFAULT '',
			full_name   TEXT NOT NULL DEFAULT '',
			role        TEXT NOT NULL DEFAULT '',
			expires_at  DATETIME,
			saved_at    DATETIME DEFAULT CURRENT_TIMESTAMP
		);

		CREATE TABLE IF NOT EXISTS draft_slots (
			draft       TEXT NOT NULL,
			position    INTEGER NOT NULL,
			day_of_week TEXT NOT NULL CHECK(day_of_week IN
				('Sunday', 'Monday', 'Tuesday', 'Wednesday', 'Thursday', 'Friday', 'Saturday')),
			slot_time   TEXT NOT NULL,
			PRIMARY KEY (draft, position)
		);
	`

	if _, err := s.db.Exec(query); err != nil {
		return fmt.Errorf("creating tables: %w", err)
	}

	return nil
}
