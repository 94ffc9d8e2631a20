package ics

import (
	"time"

	"github.com/teambition/rrule-go"

	appLog "calview/internal/log"
	"calview/internal/model"
)

// maxInstancesPerEvent caps recurrence expansion so a runaway RRULE
// cannot flood a view.
const maxInstancesPerEvent = 1000

// Expand turns parsed events from one source into visible events within
// [rangeStart, rangeEnd), handling RRULE recurrence, EXDATE removals and
// RECURRENCE-ID overrides. All resulting instants are in UTC; the
// projector localizes them per view.
func Expand(src Source, events []ParsedEvent, rangeStart, rangeEnd time.Time) []model.VisibleEvent {
	bases := make([]ParsedEvent, 0, len(events))
	overrides := make(map[string][]ParsedEvent)
	for _, ev := range events {
		if ev.RecurrenceID != nil {
			overrides[ev.UID] = append(overrides[ev.UID], ev)
		} else {
			bases = append(bases, ev)
		}
	}

	var out []model.VisibleEvent
	for _, ev := range bases {
		if ev.RawRRule == "" {
			if v, ok := expandSingle(src, ev, rangeStart, rangeEnd); ok {
				out = append(out, v)
			}
			continue
		}
		out = append(out, expandRecurring(src, ev, overrides[ev.UID], rangeStart, rangeEnd)...)
	}
	return out
}

func expandSingle(src Source, ev ParsedEvent, rangeStart, rangeEnd time.Time) (model.VisibleEvent, bool) {
	if !inRange(ev, ev.Start, ev.End, rangeStart, rangeEnd) {
		return model.VisibleEvent{}, false
	}
	return makeVisible(src, ev, ev.UID, ev.Start, ev.End), true
}

// inRange is the half-open overlap test against [rangeStart, rangeEnd).
// All-day bounds are inclusive dates, so the end covers a further day.
func inRange(ev ParsedEvent, start, end time.Time, rangeStart, rangeEnd time.Time) bool {
	if ev.AllDay {
		end = end.Add(24 * time.Hour)
	}
	return start.Before(rangeEnd) && end.After(rangeStart)
}

func expandRecurring(src Source, ev ParsedEvent, overrides []ParsedEvent, rangeStart, rangeEnd time.Time) []model.VisibleEvent {
	r, err := rrule.StrToRRule(ev.RawRRule)
	if err != nil {
		appLog.Warn("skipping unparseable RRULE", "uid", ev.UID, "rrule", ev.RawRRule, "reason", err)
		return nil
	}
	r.DTStart(ev.Start)

	var set rrule.Set
	set.RRule(r)
	for _, ex := range ev.ExDates {
		set.ExDate(ex.In(ev.Start.Location()))
	}

	// Between works in the rule's own location. Widen the range backward
	// by the event duration so instances that start before the range but
	// overlap into it are kept.
	duration := ev.End.Sub(ev.Start)
	lower := rangeStart.Add(-duration)
	if ev.AllDay {
		// Inclusive all-day bounds cover one more day than the duration.
		lower = lower.Add(-24 * time.Hour)
	}
	loc := ev.Start.Location()
	starts := set.Between(lower.In(loc), rangeEnd.In(loc), true)
	if len(starts) > maxInstancesPerEvent {
		appLog.Warn("recurrence expansion truncated", "uid", ev.UID, "cap", maxInstancesPerEvent)
		starts = starts[:maxInstancesPerEvent]
	}

	out := make([]model.VisibleEvent, 0, len(starts))
	for _, start := range starts {
		end := start.Add(duration)
		inst := ev
		if ov, ok := overrideFor(overrides, start); ok {
			inst = ov
			start, end = ov.Start, ov.End
		}
		if ev.AllDay {
			day := time.Date(start.Year(), start.Month(), start.Day(), 0, 0, 0, 0, start.Location())
			start, end = day, day.Add(duration)
		}
		if !inRange(ev, start, end, rangeStart, rangeEnd) {
			continue
		}

		id := inst.UID + "/" + start.UTC().Format(time.RFC3339)
		out = append(out, makeVisible(src, inst, id, start, end))
	}
	return out
}

func overrideFor(overrides []ParsedEvent, start time.Time) (ParsedEvent, bool) {
	for _, ov := range overrides {
		if ov.RecurrenceID != nil && ov.RecurrenceID.Equal(start) {
			return ov, true
		}
	}
	return ParsedEvent{}, false
}

func makeVisible(src Source, ev ParsedEvent, id string, start, end time.Time) model.VisibleEvent {
	return model.VisibleEvent{
		ID:            id,
		Title:         ev.Summary,
		Start:         start.UTC(),
		End:           end.UTC(),
		AllDay:        ev.AllDay,
		CalendarID:    src.ID,
		CalendarColor: src.Color,
		CanModify:     src.Editable,
	}
}
