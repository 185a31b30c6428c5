// Package report renders the metrics dataset for terminals and PDF files.
package report

import (
	"fmt"
	"io"
	"sort"
	"strings"
	"time"

	"github.com/balkashynov/floortrack/internal/metrics"
)

// Week is a subcategory by weekday grid of produced units
type Week struct {
	Start time.Time
	Keys  []string                        // "Main / Sub", sorted
	Units map[string]map[time.Weekday]int // key -> weekday -> units
	Days  []time.Weekday                  // columns to show, Monday first
}

var weekdays = []time.Weekday{time.Monday, time.Tuesday, time.Wednesday, time.Thursday, time.Friday, time.Saturday, time.Sunday}

// WeekStart returns Monday 00:00 of the calendar week holding t
func WeekStart(t time.Time) time.Time {
	daysFromMonday := (int(t.Weekday()) + 6) % 7
	start := t.AddDate(0, 0, -daysFromMonday)
	return time.Date(start.Year(), start.Month(), start.Day(), 0, 0, 0, 0, t.Location())
}

// BuildWeek groups the rows finished in the calendar week holding now.
// Weekdays are always shown once anything was produced; weekend days only
// when they have units.
func BuildWeek(rows []metrics.Row, now time.Time, loc *time.Location) Week {
	if loc == nil {
		loc = time.Local
	}
	start := WeekStart(now.In(loc))
	end := start.AddDate(0, 0, 7)

	w := Week{Start: start, Units: make(map[string]map[time.Weekday]int)}
	active := make(map[time.Weekday]bool)
	for _, r := range rows {
		t := r.EndTime.In(loc)
		if t.Before(start) || !t.Before(end) {
			continue
		}
		key := r.MainCategory + " / " + r.SubCategory
		if w.Units[key] == nil {
			w.Units[key] = make(map[time.Weekday]int)
			w.Keys = append(w.Keys, key)
		}
		w.Units[key][t.Weekday()] += r.Units
		active[t.Weekday()] = true
	}
	sort.Strings(w.Keys)

	if len(active) > 0 {
		for i, day := range weekdays {
			if i < 5 || active[day] {
				w.Days = append(w.Days, day)
			}
		}
	}
	return w
}

// RenderWeek prints the grid with per-row and per-day totals
func RenderWeek(out io.Writer, w Week) {
	if len(w.Keys) == 0 {
		fmt.Fprintln(out, "No units recorded this week.")
		return
	}

	nameWidth := 20
	for _, k := range w.Keys {
		if len(k) > nameWidth {
			nameWidth = len(k)
		}
	}
	if nameWidth > 48 {
		nameWidth = 48
	}
	const dayWidth, totalWidth = 5, 7

	separator := func() {
		fmt.Fprint(out, strings.Repeat("-", nameWidth))
		for range w.Days {
			fmt.Fprint(out, "  "+strings.Repeat("-", dayWidth-2))
		}
		fmt.Fprintln(out, "  "+strings.Repeat("-", totalWidth-2))
	}

	fmt.Fprintf(out, "%-*s", nameWidth, "Task")
	for _, day := range w.Days {
		fmt.Fprintf(out, "  %*s", dayWidth-2, day.String()[:3])
	}
	fmt.Fprintf(out, "  %*s\n", totalWidth-2, "Total")
	separator()

	dayTotals := make(map[time.Weekday]int)
	grand := 0
	for _, key := range w.Keys {
		name := key
		if len(name) > nameWidth {
			name = name[:nameWidth-3] + "..."
		}
		fmt.Fprintf(out, "%-*s", nameWidth, name)

		rowTotal := 0
		for _, day := range w.Days {
			units := w.Units[key][day]
			if units > 0 {
				fmt.Fprintf(out, "  %*d", dayWidth-2, units)
			} else {
				fmt.Fprintf(out, "  %*s", dayWidth-2, "-")
			}
			dayTotals[day] += units
			rowTotal += units
		}
		fmt.Fprintf(out, "  %*d\n", totalWidth-2, rowTotal)
		grand += rowTotal
	}
	separator()

	fmt.Fprintf(out, "%-*s", nameWidth, "Total")
	for _, day := range w.Days {
		fmt.Fprintf(out, "  %*d", dayWidth-2, dayTotals[day])
	}
	fmt.Fprintf(out, "  %*d\n", totalWidth-2, grand)

	fmt.Fprintf(out, "\nWeek of %s to %s\n", w.Start.Format("Jan 2"), w.Start.AddDate(0, 0, 6).Format("Jan 2, 2006"))
}
