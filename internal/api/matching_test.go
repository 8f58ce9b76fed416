package api

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"testing"
	"time"

	"github.com/javiermolinar/timeflow/internal/api/apitest"
	"github.com/javiermolinar/timeflow/internal/schedule"
)

func TestFindFreeTeachers_NormalizesSlots(t *testing.T) {
	srv, c := newFake(t)
	srv.FreeUsers = []apitest.Account{{ID: "t1", FullName: "Maria Ivanova", Role: schedule.RoleTeacher}}

	sel := schedule.NewSelection(
		schedule.SlotPreference{DayOfWeek: schedule.Monday, Time: "10:00"},
		schedule.SlotPreference{DayOfWeek: schedule.Wednesday, Time: "16:30:00"},
	)
	teachers, err := authed(t, srv, c, "m1").FindFreeTeachers(context.Background(), "s1", sel)
	if err != nil {
		t.Fatalf("FindFreeTeachers: %v", err)
	}
	if len(teachers) != 1 || teachers[0].FullName != "Maria Ivanova" {
		t.Errorf("teachers = %+v", teachers)
	}

	call := srv.Recorded(http.MethodPost, "/users/free")[0]
	if call.Query != "subjectId=s1" {
		t.Errorf("query = %q", call.Query)
	}
	var sent []schedule.SlotPreference
	if err := json.Unmarshal(call.Body, &sent); err != nil {
		t.Fatalf("body: %v", err)
	}
	want := []schedule.SlotPreference{
		{DayOfWeek: schedule.Monday, Time: "10:00:00"},
		{DayOfWeek: schedule.Wednesday, Time: "16:30:00"},
	}
	if len(sent) != len(want) || sent[0] != want[0] || sent[1] != want[1] {
		t.Errorf("sent slots = %+v, want %+v", sent, want)
	}
}

func TestFindFreeTeachers_EmptySelection(t *testing.T) {
	srv, c := newFake(t)
	_, err := authed(t, srv, c, "m1").FindFreeTeachers(context.Background(), "s1", schedule.NewSelection())
	if err == nil {
		t.Fatal("expected error for empty selection")
	}
	if n := len(srv.Recorded(http.MethodPost, "/users/free")); n != 0 {
		t.Errorf("empty selection reached the server %d times", n)
	}
}

func TestSubmitMatchRequest(t *testing.T) {
	start := time.Date(2025, 4, 14, 0, 0, 0, 0, time.UTC)
	sel := schedule.NewSelection(schedule.SlotPreference{DayOfWeek: schedule.Monday, Time: "10:00"})

	tests := []struct {
		name     string
		req      MatchRequest
		wantPath string
		wantID   string
		wantErr  error
	}{
		{
			name:     "explicit teacher",
			req:      MatchRequest{ClientID: "c1", SubjectID: "s1", Selection: sel, StartDate: start, Lessons: 4, TeacherID: "t1"},
			wantPath: "/lessons/main-create",
			wantID:   "t1",
		},
		{
			name:     "auto most free",
			req:      MatchRequest{FullName: "New Kid", Age: 10, SubjectID: "s1", Selection: sel, StartDate: start, Lessons: 2},
			wantPath: "/lessons/main-create/TheMostFree",
			wantID:   "t9",
		},
		{
			name:     "auto least free",
			req:      MatchRequest{ClientID: "c1", SubjectID: "s1", Selection: sel, StartDate: start, Lessons: 1, Mode: ModeLeastFree},
			wantPath: "/lessons/main-create/TheLeastFree",
			wantID:   "t9",
		},
		{
			name:    "no client",
			req:     MatchRequest{SubjectID: "s1", Selection: sel, StartDate: start, Lessons: 1},
			wantErr: ErrInvalidRequest,
		},
		{
			name:    "zero lessons",
			req:     MatchRequest{ClientID: "c1", SubjectID: "s1", Selection: sel, StartDate: start},
			wantErr: ErrInvalidRequest,
		},
		{
			name:    "bad slot time",
			req:     MatchRequest{ClientID: "c1", SubjectID: "s1", Selection: schedule.NewSelection(schedule.SlotPreference{DayOfWeek: schedule.Monday, Time: "10"}), StartDate: start, Lessons: 1},
			wantErr: schedule.ErrInvalidTime,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			srv, c := newFake(t)
			srv.FreeUsers = []apitest.Account{{ID: "t9", FullName: "Auto Pick"}}

			teacher, err := authed(t, srv, c, "m1").SubmitMatchRequest(context.Background(), tt.req)
			if tt.wantErr != nil {
				if !errors.Is(err, tt.wantErr) {
					t.Fatalf("error = %v, want %v", err, tt.wantErr)
				}
				return
			}
			if err != nil {
				t.Fatalf("SubmitMatchRequest: %v", err)
			}
			if teacher.ID != tt.wantID {
				t.Errorf("teacher = %+v, want %s", teacher, tt.wantID)
			}

			calls := srv.Recorded(http.MethodPost, tt.wantPath)
			if len(calls) != 1 {
				t.Fatalf("expected one call to %s, got %d", tt.wantPath, len(calls))
			}
			var body map[string]any
			if err := json.Unmarshal(calls[0].Body, &body); err != nil {
				t.Fatalf("body: %v", err)
			}
			if body["StartDate"] != "2025-04-14" {
				t.Errorf("StartDate = %v", body["StartDate"])
			}
			slots := body["Slots"].([]any)
			if slots[0].(map[string]any)["time"] != "10:00:00" {
				t.Errorf("slot time = %v", slots[0])
			}
			if tt.req.ClientID == "" && body["FullName"] != tt.req.FullName {
				t.Errorf("FullName = %v", body["FullName"])
			}
			if tt.req.ClientID != "" && body["FullName"] != nil {
				t.Errorf("FullName should be null for an existing client, got %v", body["FullName"])
			}
		})
	}
}

func TestAutoCreateSchedule_UnknownMode(t *testing.T) {
	_, c := newFake(t)
	if _, err := c.AutoCreateSchedule(context.Background(), "Random", ScheduleRequest{}); err == nil {
		t.Fatal("expected error for unknown mode")
	}
}

func TestParseMode(t *testing.T) {
	tests := map[string]Mode{
		"TheMostFree":  ModeMostFree,
		"most":         ModeMostFree,
		"theleastfree": ModeLeastFree,
		"least-free":   ModeLeastFree,
	}
	for in, want := range tests {
		got, err := ParseMode(in)
		if err != nil || got != want {
			t.Errorf("ParseMode(%q) = %q, %v", in, got, err)
		}
	}
	if _, err := ParseMode("random"); err == nil {
		t.Error("expected error for unknown mode")
	}
}

func TestAutoSearch_NumericWeekday(t *testing.T) {
	srv, c := newFake(t)
	msg, err := authed(t, srv, c, "m1").AutoSearch(context.Background(), "c1",
		schedule.SlotPreference{DayOfWeek: schedule.Sunday, Time: "11:00"}, 3)
	if err != nil {
		t.Fatalf("AutoSearch: %v", err)
	}
	if msg != "Booked 3 lessons on Sunday at 11:00:00" {
		t.Errorf("message = %q", msg)
	}

	var body AutoSearchRequest
	if err := json.Unmarshal(srv.Recorded(http.MethodPost, "/lessons/auto-search")[0].Body, &body); err != nil {
		t.Fatalf("body: %v", err)
	}
	if body.DayOfWeek != 0 || body.Time != "11:00:00" || body.ClientID != "c1" {
		t.Errorf("auto-search body = %+v", body)
	}
}
