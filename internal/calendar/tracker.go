package calendar

import (
	"sync"

	"github.com/google/uuid"

	"github.com/javiermolinar/timeflow/internal/schedule"
)

// Tracker remembers the most recently issued week request. Responses for
// any other request are stale and must be dropped.
type Tracker struct {
	mu      sync.Mutex
	current Request
}

// Issue records and returns a new request for window.
func (t *Tracker) Issue(ownerID string, window schedule.WeekWindow, markers schedule.MarkerPolicy) Request {
	req := Request{
		ID:      uuid.NewString(),
		OwnerID: ownerID,
		Window:  window,
		Markers: markers,
	}
	t.mu.Lock()
	t.current = req
	t.mu.Unlock()
	return req
}

// Current returns the last issued request.
func (t *Tracker) Current() Request {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.current
}

// Accept reports whether req is still the one being waited for.
func (t *Tracker) Accept(req Request) bool {
	t.mu.Lock()
	defer t.mu.Unlock()
	return req.ID != "" && req.ID == t.current.ID && req.Window.Equal(t.current.Window)
}
