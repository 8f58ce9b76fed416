package schedule

import (
	"strconv"
	"strings"
	"time"
)

// AvailabilitySlot is a weekly-recurring marker owned by a teacher.
// IsBusy marks working/blocked hours; a slot with IsBusy false is free to book.
type AvailabilitySlot struct {
	ID        string    `json:"id"`
	OwnerID   string    `json:"userId"`
	DayOfWeek DayOfWeek `json:"dayOfWeek"`
	Time      string    `json:"time"` // "HH:MM:SS"
	IsBusy    bool      `json:"isBusy"`
}

// Hour returns the hour component of Time, or -1 if it does not parse.
func (s AvailabilitySlot) Hour() int {
	return parseHour(s.Time)
}

// matches reports whether the slot recurs on date's weekday at hour.
func (s AvailabilitySlot) matches(day DayOfWeek, hour int) bool {
	return s.DayOfWeek == day && s.Hour() == hour
}

// IsAvailable reports whether a non-busy slot recurs on date's weekday at hour.
// Minutes and seconds are ignored. An empty slot list is never available.
func IsAvailable(slots []AvailabilitySlot, date time.Time, hour int) bool {
	day := DayOfWeekOf(date)
	for _, s := range slots {
		if !s.IsBusy && s.matches(day, hour) {
			return true
		}
	}
	return false
}

// IsMarkedBusy reports whether a busy slot recurs on date's weekday at hour.
func IsMarkedBusy(slots []AvailabilitySlot, date time.Time, hour int) bool {
	day := DayOfWeekOf(date)
	for _, s := range slots {
		if s.IsBusy && s.matches(day, hour) {
			return true
		}
	}
	return false
}

// SlotsByDay groups slots by weekday in numeric order, keeping input order
// within a day. Slots with unknown weekdays are dropped.
func SlotsByDay(slots []AvailabilitySlot) map[DayOfWeek][]AvailabilitySlot {
	grouped := make(map[DayOfWeek][]AvailabilitySlot, 7)
	for _, s := range slots {
		if !s.DayOfWeek.Valid() {
			continue
		}
		grouped[s.DayOfWeek] = append(grouped[s.DayOfWeek], s)
	}
	return grouped
}

// SlotsOwnedBy filters slots to one owner.
func SlotsOwnedBy(slots []AvailabilitySlot, ownerID string) []AvailabilitySlot {
	var owned []AvailabilitySlot
	for _, s := range slots {
		if s.OwnerID == ownerID {
			owned = append(owned, s)
		}
	}
	return owned
}

func parseHour(t string) int {
	h, _, ok := strings.Cut(strings.TrimSpace(t), ":")
	if !ok || len(h) == 0 || len(h) > 2 {
		return -1
	}
	hour, err := strconv.Atoi(h)
	if err != nil || hour < 0 || hour > 23 {
		return -1
	}
	return hour
}
