// Package view is the front door of the timeline pipeline. It owns the
// caller-side contract the pure grid/project packages rely on: reference
// dates arrive as "YYYY-M-D" strings and fall back to today when
// malformed, view kinds and timezone names are validated here, and the
// grid and projections for one request are assembled into a Timeline.
package view

import (
	"errors"
	"fmt"
	"strconv"
	"strings"
	"time"

	"calview/internal/grid"
	"calview/internal/model"
	"calview/internal/project"
)

// Kind selects which grid a Timeline is built over.
type Kind string

const (
	KindDay   Kind = "day"
	KindWeek  Kind = "week"
	KindMonth Kind = "month"
)

// ErrUnknownKind is returned by ParseKind for anything other than
// day, week or month.
var ErrUnknownKind = errors.New("view: unknown view kind")

// ParseKind parses a view kind, case-insensitively.
func ParseKind(s string) (Kind, error) {
	switch Kind(strings.ToLower(strings.TrimSpace(s))) {
	case KindDay:
		return KindDay, nil
	case KindWeek:
		return KindWeek, nil
	case KindMonth:
		return KindMonth, nil
	}
	return "", fmt.Errorf("%w: %q", ErrUnknownKind, s)
}

// ParseDate parses a "YYYY-M-D" reference date. Leading zeros are
// accepted but not required. When s is empty or malformed (including
// dates like 2016-13-01 that only normalize into a different month),
// ParseDate substitutes today in loc and reports ok=false so the caller
// can surface a date error alongside a still-valid grid.
func ParseDate(s string, loc *time.Location) (d model.CalendarDate, ok bool) {
	if d, err := parseDate(s); err == nil {
		return d, true
	}
	return model.DateOf(time.Now().In(loc)), false
}

func parseDate(s string) (model.CalendarDate, error) {
	parts := strings.Split(strings.TrimSpace(s), "-")
	if len(parts) != 3 {
		return model.CalendarDate{}, fmt.Errorf("view: date %q is not YYYY-M-D", s)
	}

	nums := make([]int, 3)
	for i, p := range parts {
		n, err := strconv.Atoi(p)
		if err != nil {
			return model.CalendarDate{}, fmt.Errorf("view: date %q is not numeric: %w", s, err)
		}
		nums[i] = n
	}

	d := model.Date(nums[0], time.Month(nums[1]), nums[2])
	// model.Date normalizes out-of-range components; a changed component
	// means the input was not a real date.
	if d.Year != nums[0] || int(d.Month) != nums[1] || d.Day != nums[2] {
		return model.CalendarDate{}, fmt.Errorf("view: %q is not a real date", s)
	}
	return d, nil
}

// Timeline is one fully assembled view: the grid for the requested kind
// and reference date plus the per-day event projections, in grid order.
type Timeline struct {
	Kind      Kind               `json:"kind"`
	Reference model.CalendarDate `json:"reference"`

	// DateError is set when the requested reference date was malformed
	// and today was substituted.
	DateError bool `json:"date_error,omitempty"`

	Grid grid.Grid             `json:"grid"`
	Days []model.DayProjection `json:"days"`
}

// BuildGrid builds the bare grid for a view kind. Callers that need the
// grid span before events are available (to bound fetching or recurrence
// expansion) use this directly; Build runs the full pipeline.
func BuildGrid(ref model.CalendarDate, kind Kind) grid.Grid {
	switch kind {
	case KindDay:
		return grid.BuildDay(ref)
	case KindWeek:
		return grid.BuildWeek(ref)
	default:
		return grid.BuildMonth(ref)
	}
}

// Build assembles the Timeline for an already-parsed reference date.
func Build(ref model.CalendarDate, kind Kind, events []model.VisibleEvent, loc *time.Location) Timeline {
	g := BuildGrid(ref, kind)

	return Timeline{
		Kind:      kind,
		Reference: ref,
		Grid:      g,
		Days:      project.Project(g.Days, events, loc),
	}
}

// BuildFromRequest parses the reference date string and builds the
// Timeline, recording the today-fallback in DateError when parsing
// failed. This mirrors what a routing layer would do before calling the
// pure core.
func BuildFromRequest(refStr string, kind Kind, events []model.VisibleEvent, loc *time.Location) Timeline {
	ref, ok := ParseDate(refStr, loc)
	tl := Build(ref, kind, events, loc)
	tl.DateError = !ok
	return tl
}
