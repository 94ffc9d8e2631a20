package view

import (
	"testing"
	"time"

	"calview/internal/model"
)

func TestParseKind(t *testing.T) {
	tcs := []struct {
		in   string
		want Kind
		ok   bool
	}{
		{"day", KindDay, true},
		{"Week", KindWeek, true},
		{" month ", KindMonth, true},
		{"year", "", false},
		{"", "", false},
	}

	for _, tc := range tcs {
		got, err := ParseKind(tc.in)
		if (err == nil) != tc.ok {
			t.Errorf("ParseKind(%q) err = %v; want ok=%v", tc.in, err, tc.ok)
			continue
		}
		if err == nil && got != tc.want {
			t.Errorf("ParseKind(%q) = %q; want %q", tc.in, got, tc.want)
		}
	}
}

func TestParseDate(t *testing.T) {
	tcs := []struct {
		in   string
		want model.CalendarDate
	}{
		{"2015-2-1", model.Date(2015, time.February, 1)},
		{"2015-02-01", model.Date(2015, time.February, 1)},
		{"2016-12-31", model.Date(2016, time.December, 31)},
	}

	for _, tc := range tcs {
		got, ok := ParseDate(tc.in, time.UTC)
		if !ok || got != tc.want {
			t.Errorf("ParseDate(%q) = %v, %v; want %v, true", tc.in, got, ok, tc.want)
		}
	}
}

func TestParseDateFallsBackToToday(t *testing.T) {
	today := model.DateOf(time.Now().UTC())

	for _, in := range []string{"", "2016-13-01", "2015-02-30", "01-02-2015x", "not-a-date", "2015-2"} {
		got, ok := ParseDate(in, time.UTC)
		if ok {
			t.Errorf("ParseDate(%q) ok = true; want fallback", in)
		}
		// Tolerate a midnight rollover between the two time.Now calls.
		if got != today && got != model.DateOf(time.Now().UTC()) {
			t.Errorf("ParseDate(%q) = %v; want today", in, got)
		}
	}
}

func TestBuildFromRequest(t *testing.T) {
	tl := BuildFromRequest("2015-2-1", KindWeek, nil, time.UTC)

	if tl.DateError {
		t.Error("DateError set for a valid date")
	}
	if len(tl.Grid.Days) != 7 || len(tl.Days) != 7 {
		t.Fatalf("grid/projection lengths = %d/%d; want 7/7", len(tl.Grid.Days), len(tl.Days))
	}
	for i := range tl.Days {
		if tl.Days[i].Day != tl.Grid.Days[i].Date {
			t.Errorf("projection day %d = %v; want %v", i, tl.Days[i].Day, tl.Grid.Days[i].Date)
		}
	}

	tl = BuildFromRequest("garbage", KindMonth, nil, time.UTC)
	if !tl.DateError {
		t.Error("DateError not set for malformed date")
	}
	if len(tl.Grid.Days)%7 != 0 {
		t.Errorf("fallback grid length = %d; want a multiple of 7", len(tl.Grid.Days))
	}
}

func TestBuildProjectsEvents(t *testing.T) {
	ref := model.Date(2016, time.May, 10)
	ev := model.VisibleEvent{
		ID:            "e1",
		Title:         "standup",
		Start:         time.Date(2016, time.May, 10, 9, 0, 0, 0, time.UTC),
		End:           time.Date(2016, time.May, 10, 9, 30, 0, 0, time.UTC),
		CalendarID:    "work",
		CalendarColor: "#8F00FF",
		CanModify:     true,
	}

	tl := Build(ref, KindDay, []model.VisibleEvent{ev}, time.UTC)
	if len(tl.Days) != 1 || len(tl.Days[0].Events) != 1 {
		t.Fatalf("projections = %+v; want one event on one day", tl.Days)
	}
	p := tl.Days[0].Events[0]
	if p.EventID != "e1" || p.Class != "work" {
		t.Errorf("projection = %+v; want event e1 with class work", p)
	}
}
