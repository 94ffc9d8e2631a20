package grid

import (
	"testing"
	"testing/quick"
	"time"

	"calview/internal/model"
)

func TestBuildDay(t *testing.T) {
	ref := model.Date(2016, time.January, 1)
	g := BuildDay(ref)

	if len(g.Days) != 1 || g.Days[0].Date != ref {
		t.Fatalf("BuildDay(%v).Days = %v; want just the reference", ref, g.Days)
	}
	if want := model.Date(2015, time.December, 31); g.Earlier != want {
		t.Errorf("Earlier = %v; want %v", g.Earlier, want)
	}
	if want := model.Date(2016, time.January, 2); g.Later != want {
		t.Errorf("Later = %v; want %v", g.Later, want)
	}
}

func TestBuildWeek(t *testing.T) {
	// 2015-02-01 is a Sunday; its ISO week runs 2015-01-26 .. 2015-02-01.
	ref := model.Date(2015, time.February, 1)
	g := BuildWeek(ref)

	if len(g.Days) != 7 {
		t.Fatalf("len(Days) = %d; want 7", len(g.Days))
	}
	if want := model.Date(2015, time.January, 26); g.Days[0].Date != want {
		t.Errorf("Days[0] = %v; want %v", g.Days[0].Date, want)
	}
	if g.Days[6].Date != ref {
		t.Errorf("Days[6] = %v; want %v", g.Days[6].Date, ref)
	}
	if want := model.Date(2015, time.January, 25); g.Earlier != want {
		t.Errorf("Earlier = %v; want %v", g.Earlier, want)
	}
	if want := model.Date(2015, time.February, 8); g.Later != want {
		t.Errorf("Later = %v; want %v", g.Later, want)
	}
}

func TestBuildMonth(t *testing.T) {
	// The February 2015 grid runs Monday 2015-01-26 .. Sunday 2015-03-01.
	g := BuildMonth(model.Date(2015, time.February, 1))

	if len(g.Days) != 35 {
		t.Fatalf("len(Days) = %d; want 35", len(g.Days))
	}
	if want := model.Date(2015, time.January, 26); g.Days[0].Date != want {
		t.Errorf("Days[0] = %v; want %v", g.Days[0].Date, want)
	}
	if want := model.Date(2015, time.March, 1); g.Days[34].Date != want {
		t.Errorf("Days[34] = %v; want %v", g.Days[34].Date, want)
	}
	if want := model.Date(2015, time.January, 1); g.Earlier != want {
		t.Errorf("Earlier = %v; want %v", g.Earlier, want)
	}
	if want := model.Date(2015, time.March, 1); g.Later != want {
		t.Errorf("Later = %v; want %v", g.Later, want)
	}
}

func TestBuildMonthAnchorsAcrossYears(t *testing.T) {
	tcs := []struct {
		ref, earlier, later model.CalendarDate
	}{
		{model.Date(2016, time.January, 12), model.Date(2015, time.December, 1), model.Date(2016, time.February, 1)},
		{model.Date(2015, time.December, 31), model.Date(2015, time.November, 1), model.Date(2016, time.January, 1)},
		{model.Date(2016, time.February, 29), model.Date(2016, time.January, 1), model.Date(2016, time.March, 1)},
	}

	for _, tc := range tcs {
		g := BuildMonth(tc.ref)
		if g.Earlier != tc.earlier {
			t.Errorf("BuildMonth(%v).Earlier = %v; want %v", tc.ref, g.Earlier, tc.earlier)
		}
		if g.Later != tc.later {
			t.Errorf("BuildMonth(%v).Later = %v; want %v", tc.ref, g.Later, tc.later)
		}
	}
}

// refDate maps arbitrary fuzz input onto a broad but valid date range.
func refDate(year int64, day int64) model.CalendarDate {
	y := 1970 + int(abs64(year)%200)
	d := 1 + int(abs64(day)%365)
	return model.Date(y, time.January, d)
}

func abs64(n int64) int64 {
	if n < 0 {
		return -n
	}
	return n
}

func TestBuildMonthProperties(t *testing.T) {
	prop := func(year, day int64) bool {
		g := BuildMonth(refDate(year, day))

		if len(g.Days)%7 != 0 {
			return false
		}
		if g.Days[0].Date.Weekday() != 0 || g.Days[len(g.Days)-1].Date.Weekday() != 6 {
			return false
		}
		// Strictly increasing with no gaps.
		for i := 1; i < len(g.Days); i++ {
			if g.Days[i].Date != g.Days[i-1].Date.AddDays(1) {
				return false
			}
		}
		return true
	}
	if err := quick.Check(prop, nil); err != nil {
		t.Error(err)
	}
}

func TestBuildMonthContainsMonth(t *testing.T) {
	prop := func(year, day int64) bool {
		d := refDate(year, day)
		g := BuildMonth(d)

		first := model.Date(d.Year, d.Month, 1)
		last := model.Date(d.Year, d.Month+1, 0)

		found := map[model.CalendarDate]bool{}
		for _, gd := range g.Days {
			found[gd.Date] = true
		}
		return found[d] && found[first] && found[last]
	}
	if err := quick.Check(prop, nil); err != nil {
		t.Error(err)
	}
}

func TestNavigationRoundTrip(t *testing.T) {
	prop := func(year, day int64) bool {
		d := refDate(year, day)

		// Month: Later's grid must begin in the month after d's, and the
		// anchors must straddle the reference strictly.
		m := BuildMonth(d)
		if !m.Earlier.Before(d) || !m.Later.After(d) {
			return false
		}
		next := BuildMonth(m.Later)
		wantNext := model.Date(d.Year, d.Month+1, 1)
		if next.Days[0].Date.After(wantNext) {
			return false
		}
		prev := BuildMonth(m.Earlier)
		if !prev.Days[0].Date.Before(model.Date(d.Year, d.Month, 1)) {
			return false
		}

		// Week and day anchors are exact offsets.
		w := BuildWeek(d)
		if w.Earlier != d.AddDays(-7) || w.Later != d.AddDays(7) {
			return false
		}
		dd := BuildDay(d)
		return dd.Earlier == d.AddDays(-1) && dd.Later == d.AddDays(1)
	}
	if err := quick.Check(prop, nil); err != nil {
		t.Error(err)
	}
}

func TestBuildWeekAlwaysMondayToSunday(t *testing.T) {
	prop := func(year, day int64) bool {
		d := refDate(year, day)
		g := BuildWeek(d)

		if len(g.Days) != 7 {
			return false
		}
		if g.Days[0].Date.Weekday() != 0 || g.Days[6].Date.Weekday() != 6 {
			return false
		}
		// The reference itself is in the week.
		for _, gd := range g.Days {
			if gd.Date == d {
				return true
			}
		}
		return false
	}
	if err := quick.Check(prop, nil); err != nil {
		t.Error(err)
	}
}
