package ics

import (
	"bytes"
	"errors"
	"fmt"
	"strings"
	"time"

	ical "github.com/arran4/golang-ical"

	appLog "calview/internal/log"
)

// ParsedEvent is a normalized VEVENT before recurrence expansion. Times
// carry the location the ICS payload declared for them.
type ParsedEvent struct {
	UID     string
	Summary string

	Start  time.Time
	End    time.Time
	AllDay bool

	// RawRRule is the unexpanded RRULE value, empty for single events.
	RawRRule string
	ExDates  []time.Time

	// RecurrenceID marks this VEVENT as an override of one instance of a
	// recurring event with the same UID.
	RecurrenceID *time.Time
}

// defaultDuration applies when a timed VEVENT has no DTEND, matching the
// half-hour default used when events are created without an end time.
const defaultDuration = 30 * time.Minute

// Parse parses one ICS payload into events. Individual malformed VEVENTs
// are logged and skipped so one broken entry does not hide a whole
// calendar.
func Parse(sourceID string, body []byte) ([]ParsedEvent, error) {
	if len(body) == 0 {
		return nil, errors.New("ics: empty payload")
	}

	cal, err := ical.ParseCalendar(bytes.NewReader(body))
	if err != nil {
		return nil, fmt.Errorf("ics: parse calendar: %w", err)
	}

	events := make([]ParsedEvent, 0, len(cal.Events()))
	for _, ve := range cal.Events() {
		ev, err := parseVEvent(ve)
		if err != nil {
			appLog.Warn("skipping malformed vevent", "source", sourceID, "reason", err)
			continue
		}
		events = append(events, ev)
	}

	appLog.Debug("ics parsed", "source", sourceID, "events", len(events))
	return events, nil
}

func parseVEvent(ve *ical.VEvent) (ParsedEvent, error) {
	var out ParsedEvent

	uid := ve.GetProperty(ical.ComponentPropertyUniqueId)
	if uid == nil || uid.Value == "" {
		return out, errors.New("missing UID")
	}
	out.UID = uid.Value

	if p := ve.GetProperty(ical.ComponentPropertySummary); p != nil {
		out.Summary = p.Value
	}

	out.AllDay = isAllDay(ve)

	var start time.Time
	var err error
	if out.AllDay {
		start, err = ve.GetAllDayStartAt()
	} else {
		start, err = ve.GetStartAt()
	}
	if err != nil {
		return out, fmt.Errorf("DTSTART: %w", err)
	}
	out.Start = start

	var end time.Time
	if out.AllDay {
		end, err = ve.GetAllDayEndAt()
	} else {
		end, err = ve.GetEndAt()
	}
	switch {
	case err == nil && out.AllDay:
		// ICS all-day DTEND is exclusive; VisibleEvent carries the last
		// covered day, so a one-day event has equal start and end dates.
		if end.After(start.Add(24 * time.Hour)) {
			out.End = end.Add(-24 * time.Hour)
		} else {
			out.End = start
		}
	case err == nil:
		out.End = end
	case out.AllDay:
		out.End = start
	default:
		out.End = start.Add(defaultDuration)
	}

	if p := ve.GetProperty(ical.ComponentPropertyRrule); p != nil {
		out.RawRRule = p.Value
	}

	for _, p := range ve.GetProperties(ical.ComponentPropertyExdate) {
		for _, part := range strings.Split(p.Value, ",") {
			part = strings.TrimSpace(part)
			if part == "" {
				continue
			}
			if t, err := parseICSTime(part, start.Location()); err == nil {
				out.ExDates = append(out.ExDates, t)
			}
		}
	}

	if p := ve.GetProperty("RECURRENCE-ID"); p != nil {
		if t, err := parseICSTime(p.Value, start.Location()); err == nil {
			out.RecurrenceID = &t
		}
	}

	return out, nil
}

// isAllDay reports whether DTSTART is a date-only value, either through
// an explicit VALUE=DATE parameter or a value without a time component.
func isAllDay(ve *ical.VEvent) bool {
	p := ve.GetProperty(ical.ComponentPropertyDtStart)
	if p == nil {
		return false
	}
	if vs, ok := p.ICalParameters["VALUE"]; ok && len(vs) > 0 && strings.EqualFold(vs[0], "DATE") {
		return true
	}
	return !strings.Contains(p.Value, "T")
}

// parseICSTime parses the basic ICS date and date-time forms used by
// EXDATE and RECURRENCE-ID. Values without a UTC marker are interpreted
// in loc, the location of the event's own start.
func parseICSTime(v string, loc *time.Location) (time.Time, error) {
	v = strings.TrimSpace(v)
	switch {
	case v == "":
		return time.Time{}, errors.New("empty time value")
	case strings.HasSuffix(v, "Z"):
		return time.Parse("20060102T150405Z", v)
	case strings.Contains(v, "T"):
		return time.ParseInLocation("20060102T150405", v, loc)
	default:
		return time.ParseInLocation("20060102", v, loc)
	}
}
