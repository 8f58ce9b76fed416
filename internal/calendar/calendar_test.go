package calendar

import (
	"context"
	"errors"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/javiermolinar/timeflow/internal/schedule"
)

type fakeSource struct {
	lessons     func(ctx context.Context, owner string, start, end time.Time) ([]schedule.Lesson, error)
	free        func(ctx context.Context, owner string) ([]schedule.AvailabilitySlot, error)
	all         func(ctx context.Context, owner string) ([]schedule.AvailabilitySlot, error)
	lessonCalls atomic.Int32
}

func (f *fakeSource) LessonsInRange(ctx context.Context, owner string, start, end time.Time) ([]schedule.Lesson, error) {
	f.lessonCalls.Add(1)
	if f.lessons == nil {
		return nil, nil
	}
	return f.lessons(ctx, owner, start, end)
}

func (f *fakeSource) FreeSlots(ctx context.Context, owner string) ([]schedule.AvailabilitySlot, error) {
	if f.free == nil {
		return nil, nil
	}
	return f.free(ctx, owner)
}

func (f *fakeSource) TimeSlots(ctx context.Context, owner string) ([]schedule.AvailabilitySlot, error) {
	if f.all == nil {
		return nil, nil
	}
	return f.all(ctx, owner)
}

func week(t *testing.T, y int, m time.Month, d int) schedule.WeekWindow {
	t.Helper()
	nav, err := schedule.NewNavigator(time.Monday)
	if err != nil {
		t.Fatalf("NewNavigator: %v", err)
	}
	return nav.CurrentWeek(time.Date(y, m, d, 12, 0, 0, 0, time.UTC))
}

func TestFetch_JoinsBothCalls(t *testing.T) {
	w := week(t, 2025, 4, 14)
	src := &fakeSource{
		lessons: func(_ context.Context, owner string, start, end time.Time) ([]schedule.Lesson, error) {
			if owner != "t1" || !start.Equal(w.Start) || !end.Equal(w.End.AddDate(0, 0, 1).Add(-time.Nanosecond)) {
				t.Errorf("LessonsInRange(%s, %v, %v)", owner, start, end)
			}
			return []schedule.Lesson{{ID: "l1"}}, nil
		},
		free: func(context.Context, string) ([]schedule.AvailabilitySlot, error) {
			return []schedule.AvailabilitySlot{{ID: "s1"}}, nil
		},
	}

	res, err := Fetch(context.Background(), src, Request{OwnerID: "t1", Window: w}, schedule.Reconciler{})
	if err != nil {
		t.Fatalf("Fetch: %v", err)
	}
	if len(res.Lessons) != 1 || len(res.Slots) != 1 {
		t.Errorf("result = %+v", res)
	}
}

// The lesson range follows the offset: grid Sunday 22:00 is Monday 02:00 on
// the server, so the request must reach past the window's last day.
func TestFetch_LessonRangeShiftedByOffset(t *testing.T) {
	w := week(t, 2025, 4, 14)
	var gotStart, gotEnd time.Time
	src := &fakeSource{
		lessons: func(_ context.Context, _ string, start, end time.Time) ([]schedule.Lesson, error) {
			gotStart, gotEnd = start, end
			return nil, nil
		},
	}
	if _, err := Fetch(context.Background(), src, Request{OwnerID: "t1", Window: w}, schedule.NewReconciler(4)); err != nil {
		t.Fatalf("Fetch: %v", err)
	}

	wantStart := time.Date(2025, 4, 14, 4, 0, 0, 0, time.UTC)
	wantEnd := time.Date(2025, 4, 21, 4, 0, 0, 0, time.UTC).Add(-time.Nanosecond)
	if !gotStart.Equal(wantStart) || !gotEnd.Equal(wantEnd) {
		t.Errorf("range = %v .. %v, want %v .. %v", gotStart, gotEnd, wantStart, wantEnd)
	}
	late := time.Date(2025, 4, 21, 2, 0, 0, 0, time.UTC)
	if late.Before(gotStart) || late.After(gotEnd) {
		t.Errorf("Sunday 22:00 lesson at %v not covered", late)
	}
}

func TestFetch_BusyMarkersUseAllSlots(t *testing.T) {
	w := week(t, 2025, 4, 14)
	src := &fakeSource{
		free: func(context.Context, string) ([]schedule.AvailabilitySlot, error) {
			t.Error("FreeSlots should not be called for busy markers")
			return nil, nil
		},
		all: func(context.Context, string) ([]schedule.AvailabilitySlot, error) {
			return []schedule.AvailabilitySlot{{ID: "busy", IsBusy: true}}, nil
		},
	}
	res, err := Fetch(context.Background(), src, Request{OwnerID: "t1", Window: w, Markers: schedule.MarkBusy}, schedule.Reconciler{})
	if err != nil {
		t.Fatalf("Fetch: %v", err)
	}
	if len(res.Slots) != 1 || res.Slots[0].ID != "busy" {
		t.Errorf("slots = %+v", res.Slots)
	}
}

func TestFetch_FailureIsDataFetchError(t *testing.T) {
	w := week(t, 2025, 4, 14)
	boom := errors.New("connection refused")

	tests := []struct {
		name  string
		src   *fakeSource
		which FetchKind
	}{
		{
			name: "lessons fail",
			src: &fakeSource{lessons: func(context.Context, string, time.Time, time.Time) ([]schedule.Lesson, error) {
				return nil, boom
			}},
			which: FetchLessons,
		},
		{
			name: "slots fail",
			src: &fakeSource{free: func(context.Context, string) ([]schedule.AvailabilitySlot, error) {
				return nil, boom
			}},
			which: FetchSlots,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			res, err := Fetch(context.Background(), tt.src, Request{OwnerID: "t1", Window: w}, schedule.Reconciler{})
			if res != nil {
				t.Errorf("expected no partial result, got %+v", res)
			}
			var fe *DataFetchError
			if !errors.As(err, &fe) {
				t.Fatalf("error = %v, want *DataFetchError", err)
			}
			if fe.Which != tt.which || !fe.Window.Equal(w) {
				t.Errorf("DataFetchError = %+v", fe)
			}
			if !errors.Is(err, boom) {
				t.Error("DataFetchError should unwrap to the cause")
			}
		})
	}
}

func TestFetch_FailureCancelsSibling(t *testing.T) {
	w := week(t, 2025, 4, 14)
	src := &fakeSource{
		lessons: func(ctx context.Context, _ string, _, _ time.Time) ([]schedule.Lesson, error) {
			<-ctx.Done()
			return nil, ctx.Err()
		},
		free: func(context.Context, string) ([]schedule.AvailabilitySlot, error) {
			return nil, errors.New("503")
		},
	}

	done := make(chan error, 1)
	go func() {
		_, err := Fetch(context.Background(), src, Request{Window: w}, schedule.Reconciler{})
		done <- err
	}()

	select {
	case err := <-done:
		var fe *DataFetchError
		if !errors.As(err, &fe) {
			t.Fatalf("error = %v", err)
		}
	case <-time.After(2 * time.Second):
		t.Fatal("Fetch did not return after a sibling failed")
	}
}

func TestLoader_BuildsGrid(t *testing.T) {
	w := week(t, 2025, 4, 14)
	src := &fakeSource{
		lessons: func(context.Context, string, time.Time, time.Time) ([]schedule.Lesson, error) {
			return []schedule.Lesson{
				{ID: "a", LessonDate: time.Date(2025, 4, 14, 17, 0, 0, 0, time.UTC), Status: schedule.StatusScheduled},
				{ID: "b", LessonDate: time.Date(2025, 4, 14, 17, 30, 0, 0, time.UTC), Status: schedule.StatusScheduled},
			}, nil
		},
		free: func(context.Context, string) ([]schedule.AvailabilitySlot, error) {
			return []schedule.AvailabilitySlot{{DayOfWeek: schedule.Monday, Time: "14:00:00"}}, nil
		},
	}

	loader, err := NewLoader(src, schedule.HourRange{From: 8, To: 20}, schedule.NewReconciler(4), nil)
	if err != nil {
		t.Fatalf("NewLoader: %v", err)
	}
	grid, err := loader.Load(context.Background(), Request{OwnerID: "t1", Window: w})
	if err != nil {
		t.Fatalf("Load: %v", err)
	}

	monday := w.Start
	if c, ok := grid.At(monday, 13); !ok || c.Occupant.Kind != schedule.OccupantLesson || c.Occupant.Lesson.ID != "a" {
		t.Errorf("cell 13:00 = %+v", c)
	}
	if c, ok := grid.At(monday, 14); !ok || c.Occupant.Kind != schedule.OccupantFree {
		t.Errorf("cell 14:00 = %+v", c)
	}
	if len(grid.Ambiguities) != 1 || grid.Ambiguities[0].Dropped.ID != "b" {
		t.Errorf("ambiguities = %+v", grid.Ambiguities)
	}
}

func TestNewLoader_RejectsBadHours(t *testing.T) {
	_, err := NewLoader(&fakeSource{}, schedule.HourRange{From: 10, To: 10}, schedule.NewReconciler(0), nil)
	if !errors.Is(err, schedule.ErrConfiguration) {
		t.Errorf("error = %v, want ConfigurationError", err)
	}
}

func TestLoadWeeks_Order(t *testing.T) {
	first := week(t, 2025, 4, 14)
	nav, _ := schedule.NewNavigator(time.Monday)
	src := &fakeSource{
		lessons: func(_ context.Context, _ string, start, _ time.Time) ([]schedule.Lesson, error) {
			// Later weeks answer first.
			time.Sleep(time.Duration(30-start.Day()%30) * time.Millisecond)
			return nil, nil
		},
	}
	loader, _ := NewLoader(src, schedule.HourRange{From: 9, To: 12}, schedule.NewReconciler(0), nil)

	grids, err := loader.LoadWeeks(context.Background(), nav, "t1", first, 3, 2, schedule.MarkFree)
	if err != nil {
		t.Fatalf("LoadWeeks: %v", err)
	}
	for i, g := range grids {
		if want := nav.Advance(first, i); !g.Window.Equal(want) {
			t.Errorf("grid %d window = %s, want %s", i, g.Window, want)
		}
	}
	if n := src.lessonCalls.Load(); n != 3 {
		t.Errorf("expected 3 lesson fetches, got %d", n)
	}

	if _, err := loader.LoadWeeks(context.Background(), nav, "t1", first, 0, 1, schedule.MarkFree); err == nil {
		t.Error("expected error for zero weeks")
	}
}

// A request for week A that resolves after week B was requested must not
// replace B's grid.
func TestTracker_StaleResponseDropped(t *testing.T) {
	nav, _ := schedule.NewNavigator(time.Monday)
	a := week(t, 2025, 4, 14)
	b := nav.Advance(a, 1)

	release := map[string]chan struct{}{
		a.Key(): make(chan struct{}),
		b.Key(): make(chan struct{}),
	}
	src := &fakeSource{
		lessons: func(_ context.Context, _ string, start, _ time.Time) ([]schedule.Lesson, error) {
			<-release[start.Format("2006-01-02")]
			return nil, nil
		},
	}
	loader, _ := NewLoader(src, schedule.HourRange{From: 8, To: 20}, schedule.NewReconciler(4), nil)

	var (
		tracker Tracker
		mu      sync.Mutex
		shown   *schedule.Grid
		wg      sync.WaitGroup
	)
	load := func(req Request) {
		defer wg.Done()
		grid, err := loader.Load(context.Background(), req)
		if err != nil {
			t.Errorf("Load: %v", err)
			return
		}
		if !tracker.Accept(req) {
			return
		}
		mu.Lock()
		shown = grid
		mu.Unlock()
	}

	reqA := tracker.Issue("t1", a, schedule.MarkFree)
	wg.Add(1)
	go load(reqA)
	reqB := tracker.Issue("t1", b, schedule.MarkFree)
	wg.Add(1)
	go load(reqB)

	// B resolves first, then A.
	close(release[b.Key()])
	close(release[a.Key()])
	wg.Wait()

	if shown == nil || !shown.Window.Equal(b) {
		t.Fatalf("shown grid = %v, want week %s", shown, b)
	}
	if tracker.Accept(reqA) {
		t.Error("request A should be stale")
	}
	if !tracker.Accept(reqB) {
		t.Error("request B should be current")
	}
}

func TestTracker_SameWindowReissued(t *testing.T) {
	var tracker Tracker
	w := week(t, 2025, 4, 14)

	first := tracker.Issue("t1", w, schedule.MarkFree)
	second := tracker.Issue("t1", w, schedule.MarkFree)
	if first.ID == second.ID {
		t.Fatal("request IDs must be unique")
	}
	if tracker.Accept(first) {
		t.Error("superseded refresh should be stale")
	}
	if !tracker.Accept(second) {
		t.Error("latest refresh should be accepted")
	}
	if tracker.Accept(Request{}) {
		t.Error("zero request should never be accepted")
	}
}
