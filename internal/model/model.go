package model

import (
	"fmt"
	"time"
)

// CalendarDate is a plain year/month/day value with no time component.
// It is the unit of the calendar grid: immutable, comparable and ordered
// by proleptic Gregorian calendar order.
type CalendarDate struct {
	Year  int
	Month time.Month
	Day   int
}

// Date constructs a CalendarDate. Out-of-range components are normalized
// the same way time.Date normalizes them (e.g. month 13 rolls into the
// next year), so the result is always a real calendar date.
func Date(year int, month time.Month, day int) CalendarDate {
	t := time.Date(year, month, day, 0, 0, 0, 0, time.UTC)
	return CalendarDate{Year: t.Year(), Month: t.Month(), Day: t.Day()}
}

// DateOf returns the calendar date of t in t's own location.
func DateOf(t time.Time) CalendarDate {
	return CalendarDate{Year: t.Year(), Month: t.Month(), Day: t.Day()}
}

// AddDays returns the date n days after d (n may be negative).
func (d CalendarDate) AddDays(n int) CalendarDate {
	t := time.Date(d.Year, d.Month, d.Day+n, 0, 0, 0, 0, time.UTC)
	return DateOf(t)
}

// Weekday returns the ISO weekday of d: 0 for Monday through 6 for Sunday.
func (d CalendarDate) Weekday() int {
	wd := time.Date(d.Year, d.Month, d.Day, 0, 0, 0, 0, time.UTC).Weekday()
	// time.Weekday counts from Sunday; shift so Monday is 0.
	return (int(wd) + 6) % 7
}

// Compare returns -1, 0 or +1 as d is before, equal to or after o.
func (d CalendarDate) Compare(o CalendarDate) int {
	switch {
	case d.Year != o.Year:
		return sign(d.Year - o.Year)
	case d.Month != o.Month:
		return sign(int(d.Month) - int(o.Month))
	default:
		return sign(d.Day - o.Day)
	}
}

// Before reports whether d is earlier than o.
func (d CalendarDate) Before(o CalendarDate) bool { return d.Compare(o) < 0 }

// After reports whether d is later than o.
func (d CalendarDate) After(o CalendarDate) bool { return d.Compare(o) > 0 }

// Midnight returns the instant at which d begins in loc. On dates where
// local midnight does not exist (a DST jump over 00:00), the returned
// instant is the normalized first valid local time of that day.
func (d CalendarDate) Midnight(loc *time.Location) time.Time {
	return time.Date(d.Year, d.Month, d.Day, 0, 0, 0, 0, loc)
}

// String formats d as YYYY-MM-DD.
func (d CalendarDate) String() string {
	return fmt.Sprintf("%04d-%02d-%02d", d.Year, int(d.Month), d.Day)
}

// MarshalText implements encoding.TextMarshaler using the String format,
// which also makes CalendarDate JSON-encode as "YYYY-MM-DD".
func (d CalendarDate) MarshalText() ([]byte, error) {
	return []byte(d.String()), nil
}

func sign(n int) int {
	switch {
	case n < 0:
		return -1
	case n > 0:
		return 1
	default:
		return 0
	}
}

// VisibleEvent is the read-only projection of a stored event as handed to
// the view pipeline by an event source. Visibility is decided by the
// source; CanModify only selects display styling, never filters.
type VisibleEvent struct {
	// ID is an opaque stable identifier, echoed back in projections.
	ID    string
	Title string

	// Start / End are absolute instants in UTC. For timed events the
	// source guarantees Start < End; for all-day events the start date is
	// not after the end date.
	Start time.Time
	End   time.Time

	AllDay bool

	// CalendarID / CalendarColor identify and style the owning calendar.
	CalendarID    string
	CalendarColor string

	// CanModify is true when the viewer owns the owning calendar or may
	// modify it.
	CanModify bool
}

// GridDay is one cell of a day/week/month grid.
type GridDay struct {
	Date CalendarDate `json:"date"`
}

// EventProjection is one event's rendering on one grid day: the event's
// visible slice clipped to that day, with vertical placement as fractions
// of a 24-hour column. Top and Height are meaningless for all-day events,
// which render as banners.
type EventProjection struct {
	EventID string `json:"event_id"`
	Title   string `json:"title"`

	// Start / End are the clipped bounds in the viewer's timezone.
	Start time.Time `json:"start"`
	End   time.Time `json:"end"`

	AllDay bool `json:"all_day"`

	Top    float64 `json:"top"`
	Height float64 `json:"height"`

	Color string `json:"color"`
	Class string `json:"class"`
}

// DayProjection groups the projections of a single grid day.
type DayProjection struct {
	Day    CalendarDate      `json:"day"`
	Events []EventProjection `json:"events"`
}
