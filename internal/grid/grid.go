// Package grid computes the day sequence of a calendar view. Given a
// reference date it produces the ordered grid days for a day, week or
// month view plus the reference dates of the previous and next period.
package grid

import (
	"time"

	"calview/internal/model"
)

// Grid is the result of building one view: the ordered days to display
// and the navigation anchors. Earlier and Later are themselves valid
// reference dates for the previous and next period of the same kind.
type Grid struct {
	Days    []model.GridDay    `json:"days"`
	Earlier model.CalendarDate `json:"earlier"`
	Later   model.CalendarDate `json:"later"`
}

// Span returns the absolute window the grid covers in loc: the first
// day's local midnight through the day after the last day's local
// midnight. Event sources use it to bound fetching and recurrence
// expansion.
func (g Grid) Span(loc *time.Location) (start, end time.Time) {
	first := g.Days[0].Date
	last := g.Days[len(g.Days)-1].Date
	return first.Midnight(loc), last.AddDays(1).Midnight(loc)
}

// BuildDay returns a single-day grid around ref.
func BuildDay(ref model.CalendarDate) Grid {
	return Grid{
		Days:    []model.GridDay{{Date: ref}},
		Earlier: ref.AddDays(-1),
		Later:   ref.AddDays(1),
	}
}

// BuildWeek returns the ISO week containing ref, Monday through Sunday.
func BuildWeek(ref model.CalendarDate) Grid {
	monday := ref.AddDays(-ref.Weekday())
	return Grid{
		Days:    daySpan(monday, 7),
		Earlier: ref.AddDays(-7),
		Later:   ref.AddDays(7),
	}
}

// BuildMonth returns the calendar-grid weeks covering ref's month: the
// month's days padded backward to the preceding Monday and forward to
// the following Sunday, so the length is always a multiple of 7. The
// anchors are the first days of the previous and next months.
func BuildMonth(ref model.CalendarDate) Grid {
	first := model.Date(ref.Year, ref.Month, 1)
	start := first.AddDays(-first.Weekday())

	last := lastOfMonth(ref)
	end := last.AddDays(6 - last.Weekday())

	n := 0
	for d := start; !d.After(end); d = d.AddDays(1) {
		n++
	}

	return Grid{
		Days:    daySpan(start, n),
		Earlier: firstOfPreviousMonth(ref),
		Later:   last.AddDays(1),
	}
}

func daySpan(start model.CalendarDate, n int) []model.GridDay {
	days := make([]model.GridDay, n)
	for i := range days {
		days[i] = model.GridDay{Date: start.AddDays(i)}
	}
	return days
}

func lastOfMonth(ref model.CalendarDate) model.CalendarDate {
	// Day 0 of the next month normalizes to the last day of this one.
	return model.Date(ref.Year, ref.Month+1, 0)
}

func firstOfPreviousMonth(ref model.CalendarDate) model.CalendarDate {
	d := model.Date(ref.Year, ref.Month, 1).AddDays(-1)
	return model.Date(d.Year, d.Month, 1)
}
