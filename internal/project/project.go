// Package project places events on calendar-grid days. For every grid
// day it clips each visible event to that day's local [00:00, 24:00)
// window in the viewer's timezone and computes the vertical position of
// the visible slice as fractions of a 24-hour column.
package project

import (
	"time"

	"calview/internal/model"
)

const minutesPerDay = 24 * 60

// FallbackColor styles events owned by calendars the viewer cannot
// modify; such events also carry the "other" display class instead of
// their calendar id.
const FallbackColor = "#808080"

// OtherClass is the display class attached to events the viewer is only
// a guest on.
const OtherClass = "other"

// Project computes the per-day projections of events over the given grid
// days, in grid order. loc is the viewer's timezone; the day window is
// derived from the zone's offset as of each local date, so events that
// span a DST transition clip to the civil times actually observed.
//
// Project is a pure transform: it performs no I/O and never fails. Timed
// events violating the Start < End invariant are dropped rather than
// projected with a non-positive height.
func Project(days []model.GridDay, events []model.VisibleEvent, loc *time.Location) []model.DayProjection {
	out := make([]model.DayProjection, len(days))
	for i, gd := range days {
		out[i] = projectDay(gd.Date, events, loc)
	}
	return out
}

func projectDay(day model.CalendarDate, events []model.VisibleEvent, loc *time.Location) model.DayProjection {
	windowStart := day.Midnight(loc)
	windowEnd := day.AddDays(1).Midnight(loc)

	dp := model.DayProjection{Day: day, Events: []model.EventProjection{}}
	for _, ev := range events {
		if ev.AllDay {
			if p, ok := projectAllDay(day, ev, loc); ok {
				dp.Events = append(dp.Events, p)
			}
			continue
		}
		if p, ok := projectTimed(day, ev, windowStart, windowEnd, loc); ok {
			dp.Events = append(dp.Events, p)
		}
	}
	return dp
}

// projectAllDay emits a banner projection, with no vertical placement,
// for every grid day whose date falls within the event's local date
// range (inclusive on both ends).
func projectAllDay(day model.CalendarDate, ev model.VisibleEvent, loc *time.Location) (model.EventProjection, bool) {
	startDate := model.DateOf(ev.Start.In(loc))
	endDate := model.DateOf(ev.End.In(loc))
	if day.Before(startDate) || day.After(endDate) {
		return model.EventProjection{}, false
	}

	p := model.EventProjection{
		EventID: ev.ID,
		Title:   ev.Title,
		Start:   ev.Start.In(loc),
		End:     ev.End.In(loc),
		AllDay:  true,
	}
	p.Class, p.Color = styling(ev)
	return p, true
}

func projectTimed(day model.CalendarDate, ev model.VisibleEvent, windowStart, windowEnd time.Time, loc *time.Location) (model.EventProjection, bool) {
	// Invariant violation upstream; nothing visible to project.
	if !ev.Start.Before(ev.End) {
		return model.EventProjection{}, false
	}

	// Half-open overlap: an event ending exactly at the window start, or
	// starting exactly at the window end, does not belong to this day.
	if !ev.Start.Before(windowEnd) || !ev.End.After(windowStart) {
		return model.EventProjection{}, false
	}

	clipStart := maxInstant(ev.Start, windowStart).In(loc)
	clipEnd := minInstant(ev.End, windowEnd).In(loc)

	startMin := clipStart.Hour()*60 + clipStart.Minute()
	if model.DateOf(clipStart).Before(day) {
		startMin = 0
	}

	endMin := clipEnd.Hour()*60 + clipEnd.Minute()
	// A clipped end on the following day means the event runs up to local
	// midnight; count it as minute 1440 so the slice keeps its height
	// instead of collapsing to zero.
	if model.DateOf(clipEnd).After(day) {
		endMin = minutesPerDay
	}

	if endMin <= startMin {
		// Sub-minute slices round to nothing at minute resolution.
		return model.EventProjection{}, false
	}

	p := model.EventProjection{
		EventID: ev.ID,
		Title:   ev.Title,
		Start:   clipStart,
		End:     clipEnd,
		Top:     float64(startMin) / minutesPerDay,
		Height:  float64(endMin-startMin) / minutesPerDay,
	}
	p.Class, p.Color = styling(ev)
	return p, true
}

func styling(ev model.VisibleEvent) (class, color string) {
	if ev.CanModify {
		return ev.CalendarID, ev.CalendarColor
	}
	return OtherClass, FallbackColor
}

func maxInstant(a, b time.Time) time.Time {
	if a.After(b) {
		return a
	}
	return b
}

func minInstant(a, b time.Time) time.Time {
	if a.Before(b) {
		return a
	}
	return b
}
