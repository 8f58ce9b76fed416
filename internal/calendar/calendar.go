// Package calendar loads week grids from the API: it joins the lesson and
// availability fetches and discards responses for weeks no longer on screen.
package calendar

import (
	"context"
	"fmt"
	"time"

	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/javiermolinar/timeflow/internal/schedule"
)

// Source is the subset of the API the calendar reads.
type Source interface {
	LessonsInRange(ctx context.Context, ownerID string, start, end time.Time) ([]schedule.Lesson, error)
	FreeSlots(ctx context.Context, ownerID string) ([]schedule.AvailabilitySlot, error)
	TimeSlots(ctx context.Context, ownerID string) ([]schedule.AvailabilitySlot, error)
}

// FetchKind names one of the two joined fetches.
type FetchKind string

const (
	FetchLessons FetchKind = "lessons"
	FetchSlots   FetchKind = "availability"
)

// DataFetchError reports a failed fetch. No partial grid is produced; the
// caller decides whether to keep showing the previous one.
type DataFetchError struct {
	Which  FetchKind
	Window schedule.WeekWindow
	Err    error
}

func (e *DataFetchError) Error() string {
	return fmt.Sprintf("loading %s for %s: %v", e.Which, e.Window, e.Err)
}

func (e *DataFetchError) Unwrap() error {
	return e.Err
}

// Request identifies one week load. ID is unique per issued request.
type Request struct {
	ID      string
	OwnerID string
	Window  schedule.WeekWindow
	Markers schedule.MarkerPolicy
}

// Result is the joined data for a Request.
type Result struct {
	Request Request
	Lessons []schedule.Lesson
	Slots   []schedule.AvailabilitySlot
}

// Fetch loads lessons and availability for req concurrently and waits for
// both. The first failure cancels the other call. Lessons are requested for
// the server-time range that r reconciles onto the window.
func Fetch(ctx context.Context, src Source, req Request, r schedule.Reconciler) (*Result, error) {
	from, to := r.ServerRange(req.Window.Start, req.Window.End)
	g, gctx := errgroup.WithContext(ctx)
	res := &Result{Request: req}

	g.Go(func() error {
		lessons, err := src.LessonsInRange(gctx, req.OwnerID, from, to)
		if err != nil {
			return &DataFetchError{Which: FetchLessons, Window: req.Window, Err: err}
		}
		res.Lessons = lessons
		return nil
	})

	g.Go(func() error {
		var (
			slots []schedule.AvailabilitySlot
			err   error
		)
		if req.Markers == schedule.MarkBusy {
			slots, err = src.TimeSlots(gctx, req.OwnerID)
		} else {
			slots, err = src.FreeSlots(gctx, req.OwnerID)
		}
		if err != nil {
			return &DataFetchError{Which: FetchSlots, Window: req.Window, Err: err}
		}
		res.Slots = slots
		return nil
	})

	if err := g.Wait(); err != nil {
		return nil, err
	}
	return res, nil
}

// Loader turns fetched data into grids.
type Loader struct {
	src        Source
	hours      schedule.HourRange
	reconciler schedule.Reconciler
	logger     *zap.Logger
}

// NewLoader returns a loader. hours is validated here so that a bad range
// fails at setup rather than on the first load.
func NewLoader(src Source, hours schedule.HourRange, reconciler schedule.Reconciler, logger *zap.Logger) (*Loader, error) {
	if err := hours.Validate(); err != nil {
		return nil, err
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Loader{src: src, hours: hours, reconciler: reconciler, logger: logger.Named("calendar")}, nil
}

// Hours returns the loader's hour range.
func (l *Loader) Hours() schedule.HourRange {
	return l.hours
}

// Load fetches and builds the grid for req.
func (l *Loader) Load(ctx context.Context, req Request) (*schedule.Grid, error) {
	start := time.Now()
	res, err := Fetch(ctx, l.src, req, l.reconciler)
	if err != nil {
		l.logger.Debug("week_load_failed",
			zap.String("request_id", req.ID),
			zap.String("week", req.Window.Key()),
			zap.Error(err),
		)
		return nil, err
	}
	return l.Build(res, time.Since(start))
}

// Build builds the grid for an already fetched result.
func (l *Loader) Build(res *Result, elapsed time.Duration) (*schedule.Grid, error) {
	req := res.Request
	grid, err := schedule.BuildGrid(req.Window, l.hours, res.Lessons, res.Slots, schedule.GridOptions{
		Reconciler: l.reconciler,
		Markers:    req.Markers,
	})
	if err != nil {
		return nil, err
	}

	for _, a := range grid.Ambiguities {
		l.logger.Warn("cell_ambiguity",
			zap.String("week", req.Window.Key()),
			zap.Time("date", a.Cell.Date),
			zap.Int("hour", a.Cell.Hour),
			zap.String("kept", a.Winner.ID),
			zap.String("dropped", a.Dropped.ID),
		)
	}
	l.logger.Debug("week_loaded",
		zap.String("request_id", req.ID),
		zap.String("owner", req.OwnerID),
		zap.String("week", req.Window.Key()),
		zap.Int("lessons", len(res.Lessons)),
		zap.Int("slots", len(res.Slots)),
		zap.Int("outside", len(grid.Outside)),
		zap.Duration("elapsed", elapsed),
	)
	return grid, nil
}

// LoadWeeks loads consecutive weeks starting at first, at most limit at a
// time. Grids are returned in week order.
func (l *Loader) LoadWeeks(ctx context.Context, nav schedule.Navigator, ownerID string, first schedule.WeekWindow, count, limit int, markers schedule.MarkerPolicy) ([]*schedule.Grid, error) {
	if count < 1 {
		return nil, fmt.Errorf("week count must be positive, got %d", count)
	}
	grids := make([]*schedule.Grid, count)

	g, gctx := errgroup.WithContext(ctx)
	if limit > 0 {
		g.SetLimit(limit)
	}
	for i := 0; i < count; i++ {
		i := i
		req := Request{OwnerID: ownerID, Window: nav.Advance(first, i), Markers: markers}
		g.Go(func() error {
			grid, err := l.Load(gctx, req)
			if err != nil {
				return err
			}
			grids[i] = grid
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}
	return grids, nil
}
