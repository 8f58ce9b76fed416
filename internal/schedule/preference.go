package schedule

import (
	"errors"
	"fmt"
	"strings"
	"time"
)

// ErrInvalidTime is returned for slot times that are not H:MM, HH:MM or HH:MM:SS.
var ErrInvalidTime = errors.New("time must be in HH:MM or HH:MM:SS format")

// SlotPreference is a desired weekly (day, time) pair for a match request.
type SlotPreference struct {
	DayOfWeek DayOfWeek `json:"dayOfWeek" validate:"dayofweek"`
	Time      string    `json:"time" validate:"slottime"` // "HH:MM"
}

// DefaultPreference is the entry Add appends when no value is given.
var DefaultPreference = SlotPreference{DayOfWeek: Monday, Time: "10:00"}

// ParsePreference parses "Monday@10:00" or "mon 10:00".
func ParsePreference(s string) (SlotPreference, error) {
	day, t, ok := strings.Cut(strings.TrimSpace(s), "@")
	if !ok {
		day, t, ok = strings.Cut(strings.TrimSpace(s), " ")
	}
	if !ok {
		return SlotPreference{}, fmt.Errorf("slot %q must look like Monday@10:00", s)
	}
	d, err := ParseDayOfWeek(day)
	if err != nil {
		return SlotPreference{}, err
	}
	t = strings.TrimSpace(t)
	if _, err := NormalizeTime(t); err != nil {
		return SlotPreference{}, err
	}
	return SlotPreference{DayOfWeek: d, Time: t}, nil
}

// Selection is an ordered list of slot preferences. Position is the only
// identity an entry has; every operation returns a new Selection.
type Selection struct {
	items []SlotPreference
}

// NewSelection copies prefs into a selection.
func NewSelection(prefs ...SlotPreference) Selection {
	return Selection{items: append([]SlotPreference(nil), prefs...)}
}

// Items returns a copy of the entries.
func (s Selection) Items() []SlotPreference {
	return append([]SlotPreference(nil), s.items...)
}

// Len returns the number of entries.
func (s Selection) Len() int {
	return len(s.items)
}

// Add appends p.
func (s Selection) Add(p SlotPreference) Selection {
	items := make([]SlotPreference, len(s.items), len(s.items)+1)
	copy(items, s.items)
	return Selection{items: append(items, p)}
}

// Update replaces the entry at i. Out-of-range indexes leave s unchanged.
func (s Selection) Update(i int, p SlotPreference) Selection {
	if i < 0 || i >= len(s.items) {
		return s
	}
	items := s.Items()
	items[i] = p
	return Selection{items: items}
}

// RemoveAt drops the entry at i. Out-of-range indexes leave s unchanged.
func (s Selection) RemoveAt(i int) Selection {
	if i < 0 || i >= len(s.items) {
		return s
	}
	items := make([]SlotPreference, 0, len(s.items)-1)
	items = append(items, s.items[:i]...)
	items = append(items, s.items[i+1:]...)
	return Selection{items: items}
}

// Validate checks every entry has a known weekday and a parseable time.
func (s Selection) Validate() error {
	if len(s.items) == 0 {
		return errors.New("at least one slot is required")
	}
	for i, p := range s.items {
		if !p.DayOfWeek.Valid() {
			return fmt.Errorf("slot %d: %w: %q", i+1, ErrInvalidDayOfWeek, p.DayOfWeek)
		}
		if _, err := NormalizeTime(p.Time); err != nil {
			return fmt.Errorf("slot %d: %w", i+1, err)
		}
	}
	return nil
}

// Payload returns the entries with times in wire format (HH:MM:SS).
// Entries whose time cannot be normalized are passed through unchanged;
// call Validate first to reject them.
func (s Selection) Payload() []SlotPreference {
	out := make([]SlotPreference, len(s.items))
	for i, p := range s.items {
		out[i] = SlotPreference{DayOfWeek: p.DayOfWeek, Time: WireTime(p.Time)}
	}
	return out
}

// NormalizeTime converts "H:MM" or "HH:MM" to wire form by appending ":00".
// Values already carrying seconds are returned unchanged.
func NormalizeTime(t string) (string, error) {
	t = strings.TrimSpace(t)
	parts := strings.Split(t, ":")
	switch len(parts) {
	case 2:
		if _, err := time.Parse("15:04", t); err != nil {
			return "", fmt.Errorf("%w: %q", ErrInvalidTime, t)
		}
		return t + ":00", nil
	case 3:
		if _, err := time.Parse("15:04:05", t); err != nil {
			return "", fmt.Errorf("%w: %q", ErrInvalidTime, t)
		}
		return t, nil
	default:
		return "", fmt.Errorf("%w: %q", ErrInvalidTime, t)
	}
}

// WireTime is NormalizeTime for callers that already validated t.
func WireTime(t string) string {
	n, err := NormalizeTime(t)
	if err != nil {
		return t
	}
	return n
}
