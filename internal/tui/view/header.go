package view

import (
	"strconv"
	"time"

	"github.com/javiermolinar/timeflow/internal/dateutil"
	"github.com/javiermolinar/timeflow/internal/schedule"
)

// HeaderLabels builds column labels for window and marks today's column.
// Column 0 is the hour column.
func HeaderLabels(window schedule.WeekWindow, today time.Time) ([]string, map[int]bool) {
	labels := make([]string, 0, 8)
	todayCols := make(map[int]bool)

	yearSuffix := window.Start.Year() % 100
	labels = append(labels, window.Start.Format("Jan")+" "+strconv.Itoa(yearSuffix/10)+strconv.Itoa(yearSuffix%10))

	for i, day := range window.Days() {
		label := schedule.DayOfWeekOf(day).Short() + " " + strconv.Itoa(day.Day())
		if dateutil.SameDay(day, today) {
			label = "*" + label + "*"
			todayCols[i+1] = true
		}
		labels = append(labels, label)
	}

	return labels, todayCols
}
