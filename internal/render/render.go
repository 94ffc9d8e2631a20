// Package render turns a built timeline into terminal text or JSON.
package render

import (
	"encoding/json"
	"fmt"
	"strings"

	"calview/internal/model"
	"calview/internal/view"
)

// JSON encodes the timeline for machine consumption.
func JSON(tl view.Timeline) ([]byte, error) {
	return json.MarshalIndent(tl, "", "  ")
}

// Text renders the timeline for a terminal: a month becomes a grid of
// week rows, day and week views become per-day event listings.
func Text(tl view.Timeline) string {
	var b strings.Builder

	if tl.DateError {
		b.WriteString("note: could not parse the requested date, showing today\n\n")
	}

	if tl.Kind == view.KindMonth {
		writeMonthGrid(&b, tl)
	}
	writeDayListings(&b, tl)

	fmt.Fprintf(&b, "earlier: %s   later: %s\n", tl.Grid.Earlier, tl.Grid.Later)
	return b.String()
}

// writeMonthGrid prints the padded month as one row per week. Each cell
// shows the day of month, a '*' on the reference date and the number of
// events that day, e.g. " 14*(2)".
func writeMonthGrid(b *strings.Builder, tl view.Timeline) {
	fmt.Fprintf(b, "%s %d\n", tl.Reference.Month, tl.Reference.Year)
	b.WriteString(" Mon     Tue     Wed     Thu     Fri     Sat     Sun\n")

	for i, dp := range tl.Days {
		mark := " "
		if dp.Day == tl.Reference {
			mark = "*"
		}
		count := " "
		if n := len(dp.Events); n > 0 {
			count = fmt.Sprintf("(%d)", n)
		}
		fmt.Fprintf(b, "%3d%s%-4s", dp.Day.Day, mark, count)
		if (i+1)%7 == 0 {
			b.WriteString("\n")
		}
	}
	b.WriteString("\n")
}

// writeDayListings prints each day that has events: banners first, then
// timed events with their clipped local times and column placement.
func writeDayListings(b *strings.Builder, tl view.Timeline) {
	for _, dp := range tl.Days {
		if len(dp.Events) == 0 && tl.Kind == view.KindMonth {
			continue
		}
		fmt.Fprintf(b, "%s (%s)\n", dp.Day, weekdayName(dp.Day))
		for _, p := range dp.Events {
			if p.AllDay {
				fmt.Fprintf(b, "  all day      %-28s [%s]\n", p.Title, p.Class)
			}
		}
		for _, p := range dp.Events {
			if p.AllDay {
				continue
			}
			fmt.Fprintf(b, "  %s-%s  %-28s [%s] top=%.3f height=%.3f\n",
				p.Start.Format("15:04"), endLabel(p), p.Title, p.Class, p.Top, p.Height)
		}
		if len(dp.Events) == 0 {
			b.WriteString("  (no events)\n")
		}
		b.WriteString("\n")
	}
}

// endLabel prints the clipped end time. A timed slice can only end at
// 00:00 when it runs to the end of its day, so that case is shown as
// 24:00 rather than next-day 00:00.
func endLabel(p model.EventProjection) string {
	if p.End.Hour() == 0 && p.End.Minute() == 0 {
		return "24:00"
	}
	return p.End.Format("15:04")
}

func weekdayName(d model.CalendarDate) string {
	names := []string{"Mon", "Tue", "Wed", "Thu", "Fri", "Sat", "Sun"}
	return names[d.Weekday()]
}
