package db

import (
	"context"
	"errors"
	"path/filepath"
	"testing"
	"time"

	"github.com/javiermolinar/timeflow/internal/schedule"
	"github.com/javiermolinar/timeflow/internal/session"
)

func TestSaveSession_GetSession(t *testing.T) {
	repo := newTestRepo(t)
	ctx := context.Background()

	exp := time.Date(2025, 4, 20, 12, 0, 0, 0, time.UTC)
	saved := time.Date(2025, 4, 14, 9, 30, 0, 0, time.UTC)
	sess := &session.Session{
		BaseURL:   "https://localhost:7143/api",
		Token:     "tok-1",
		UserID:    "u1",
		FullName:  "Maria Ivanova",
		Role:      schedule.RoleTeacher,
		ExpiresAt: exp,
		SavedAt:   saved,
	}

	if err := repo.SaveSession(ctx, sess); err != nil {
		t.Fatalf("SaveSession failed: %v", err)
	}

	got, err := repo.GetSession(ctx, sess.BaseURL)
	if err != nil {
		t.Fatalf("GetSession failed: %v", err)
	}
	if got.Token != "tok-1" || got.UserID != "u1" || got.FullName != "Maria Ivanova" {
		t.Errorf("unexpected session: %+v", got)
	}
	if got.Role != schedule.RoleTeacher {
		t.Errorf("expected role Teacher, got %q", got.Role)
	}
	if !got.ExpiresAt.Equal(exp) {
		t.Errorf("expected expires_at %v, got %v", exp, got.ExpiresAt)
	}
	if !got.SavedAt.Equal(saved) {
		t.Errorf("expected saved_at %v, got %v", saved, got.SavedAt)
	}
}

func TestSaveSession_ReplacesExisting(t *testing.T) {
	repo := newTestRepo(t)
	ctx := context.Background()

	first := &session.Session{BaseURL: "https://api", Token: "old", Role: schedule.RoleTeacher}
	second := &session.Session{BaseURL: "https://api", Token: "new", Role: schedule.RoleManager}

	if err := repo.SaveSession(ctx, first); err != nil {
		t.Fatalf("SaveSession failed: %v", err)
	}
	if err := repo.SaveSession(ctx, second); err != nil {
		t.Fatalf("SaveSession failed: %v", err)
	}

	got, err := repo.GetSession(ctx, "https://api")
	if err != nil {
		t.Fatalf("GetSession failed: %v", err)
	}
	if got.Token != "new" || got.Role != schedule.RoleManager {
		t.Errorf("expected replaced session, got %+v", got)
	}
	if !got.ExpiresAt.IsZero() {
		t.Errorf("expected zero expiry, got %v", got.ExpiresAt)
	}
}

func TestSaveSession_RequiresBaseURL(t *testing.T) {
	repo := newTestRepo(t)
	if err := repo.SaveSession(context.Background(), &session.Session{Token: "x"}); err == nil {
		t.Fatal("expected error for empty base URL")
	}
}

func TestGetSession_Missing(t *testing.T) {
	repo := newTestRepo(t)
	_, err := repo.GetSession(context.Background(), "https://nowhere")
	if !errors.Is(err, session.ErrNoSession) {
		t.Errorf("expected ErrNoSession, got %v", err)
	}
}

func TestDeleteSession(t *testing.T) {
	repo := newTestRepo(t)
	ctx := context.Background()

	sess := &session.Session{BaseURL: "https://api", Token: "tok"}
	if err := repo.SaveSession(ctx, sess); err != nil {
		t.Fatalf("SaveSession failed: %v", err)
	}
	if err := repo.DeleteSession(ctx, "https://api"); err != nil {
		t.Fatalf("DeleteSession failed: %v", err)
	}
	if _, err := repo.GetSession(ctx, "https://api"); !errors.Is(err, session.ErrNoSession) {
		t.Errorf("expected ErrNoSession after delete, got %v", err)
	}

	// Deleting again is not an error.
	if err := repo.DeleteSession(ctx, "https://api"); err != nil {
		t.Errorf("second DeleteSession failed: %v", err)
	}
}

func TestSessionsAreScopedByBaseURL(t *testing.T) {
	repo := newTestRepo(t)
	ctx := context.Background()

	_ = repo.SaveSession(ctx, &session.Session{BaseURL: "https://a", Token: "ta"})
	_ = repo.SaveSession(ctx, &session.Session{BaseURL: "https://b", Token: "tb"})

	got, err := repo.GetSession(ctx, "https://b")
	if err != nil {
		t.Fatalf("GetSession failed: %v", err)
	}
	if got.Token != "tb" {
		t.Errorf("expected token tb, got %s", got.Token)
	}
}

func TestDrafts(t *testing.T) {
	repo := newTestRepo(t)
	ctx := context.Background()

	empty, err := repo.GetDraft(ctx, "default")
	if err != nil {
		t.Fatalf("GetDraft failed: %v", err)
	}
	if empty.Len() != 0 {
		t.Fatalf("expected empty draft, got %d entries", empty.Len())
	}

	sel := schedule.NewSelection(
		schedule.SlotPreference{DayOfWeek: schedule.Wednesday, Time: "16:00"},
		schedule.SlotPreference{DayOfWeek: schedule.Monday, Time: "9:30"},
	)
	if err := repo.SaveDraft(ctx, "default", sel); err != nil {
		t.Fatalf("SaveDraft failed: %v", err)
	}

	got, err := repo.GetDraft(ctx, "default")
	if err != nil {
		t.Fatalf("GetDraft failed: %v", err)
	}
	items := got.Items()
	if len(items) != 2 {
		t.Fatalf("expected 2 entries, got %d", len(items))
	}
	if items[0].DayOfWeek != schedule.Wednesday || items[1].Time != "9:30" {
		t.Errorf("draft order not preserved: %+v", items)
	}

	// Saving a shorter selection drops the old tail.
	if err := repo.SaveDraft(ctx, "default", got.RemoveAt(0)); err != nil {
		t.Fatalf("SaveDraft failed: %v", err)
	}
	got, _ = repo.GetDraft(ctx, "default")
	if got.Len() != 1 || got.Items()[0].DayOfWeek != schedule.Monday {
		t.Errorf("unexpected draft after shrink: %+v", got.Items())
	}

	if err := repo.DeleteDraft(ctx, "default"); err != nil {
		t.Fatalf("DeleteDraft failed: %v", err)
	}
	got, _ = repo.GetDraft(ctx, "default")
	if got.Len() != 0 {
		t.Errorf("expected empty draft after delete, got %d", got.Len())
	}
}

func TestSaveDraft_RejectsUnknownDay(t *testing.T) {
	repo := newTestRepo(t)
	sel := schedule.NewSelection(schedule.SlotPreference{DayOfWeek: "Funday", Time: "10:00"})
	if err := repo.SaveDraft(context.Background(), "bad", sel); err == nil {
		t.Fatal("expected check constraint error")
	}
}

func TestNew_CreatesParentDirectory(t *testing.T) {
	path := filepath.Join(t.TempDir(), "nested", "dir", "timeflow.db")
	repo, err := New(path)
	if err != nil {
		t.Fatalf("New failed: %v", err)
	}
	_ = repo.Close()
}

func TestParseTimestamp(t *testing.T) {
	tests := []struct {
		input   string
		wantErr bool
	}{
		{"2025-04-14T09:30:00Z", false},
		{"2025-04-14T09:30:00+03:00", false},
		{"2025-04-14 09:30:00", false},
		{"14/04/2025", true},
	}
	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			_, err := parseTimestamp(tt.input)
			if (err != nil) != tt.wantErr {
				t.Errorf("parseTimestamp(%q) error = %v, wantErr %v", tt.input, err, tt.wantErr)
			}
		})
	}
}

func newTestRepo(t *testing.T) *SQLite {
	t.Helper()

	tmpDir := t.TempDir()
	dbPath := filepath.Join(tmpDir, "test.db")

	repo, err := New(dbPath)
	if err != nil {
		t.Fatalf("failed to create test repo: %v", err)
	}

	t.Cleanup(func() {
		_ = repo.Close()
	})

	return repo
}
