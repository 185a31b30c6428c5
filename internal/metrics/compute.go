package metrics

import (
	"fmt"
	"sort"
	"time"

	"github.com/balkashynov/floortrack/internal/models"
)

// DefaultWindowDays is the length of the daily count window, today included
const DefaultWindowDays = 7

// Window selects the daily count range and the zone days are cut in
type Window struct {
	Days     int
	Location *time.Location
}

// Skip explains why a log entry was left out of the aggregates
type Skip struct {
	ID     int64
	Reason string
}

// Latest collapses repeated ids to their last entry. The position of the
// first occurrence is kept.
func Latest(entries []models.LogEntry) []models.LogEntry {
	index := make(map[int64]int, len(entries))
	out := make([]models.LogEntry, 0, len(entries))
	for _, e := range entries {
		if i, ok := index[e.ID]; ok {
			out[i] = e
			continue
		}
		index[e.ID] = len(out)
		out = append(out, e)
	}
	return out
}

// Derive turns log entries into rows. Entries without both timestamps are
// returned as skips.
func Derive(entries []models.LogEntry) ([]Row, []Skip) {
	rows := make([]Row, 0, len(entries))
	var skips []Skip
	for _, e := range entries {
		if e.StartTime == nil || e.EndTime == nil {
			skips = append(skips, Skip{ID: e.ID, Reason: "missing start or end time"})
			continue
		}
		elapsed := e.EndTime.Sub(*e.StartTime).Seconds()
		// quantity is required on completion; 1 only guards legacy rows
		units := e.Quantity
		if units < 1 {
			units = 1
		}
		rows = append(rows, Row{
			ID:             e.ID,
			Username:       e.Username,
			MainCategory:   e.MainCategory,
			SubCategory:    e.SubCategory,
			StartTime:      *e.StartTime,
			EndTime:        *e.EndTime,
			ElapsedSeconds: elapsed,
			Units:          units,
			TimePerUnit:    elapsed / float64(units),
		})
	}
	return rows, skips
}

// Compute builds the full dataset from raw log entries
func Compute(entries []models.LogEntry, now time.Time, w Window) Dataset {
	if w.Days <= 0 {
		w.Days = DefaultWindowDays
	}
	if w.Location == nil {
		w.Location = time.Local
	}

	rows, skips := Derive(Latest(entries))
	sort.SliceStable(rows, func(i, j int) bool {
		return rows[i].StartTime.Before(rows[j].StartTime)
	})

	ds := Dataset{
		GeneratedAt: now,
		Series:      rows,
		Scatter:     make([]ScatterPoint, 0, len(rows)),
		UnitCharts:  make(map[string][]UnitBar),
		Skipped:     len(skips),
	}

	ds.CategoryTotals = categoryTotals(rows)
	ds.UserAverages = userAverages(rows)
	ds.WindowStart, ds.WindowEnd, ds.DailyCounts = dailyCounts(rows, now, w)
	for _, r := range rows {
		ds.Scatter = append(ds.Scatter, ScatterPoint{Units: r.Units, ElapsedSeconds: r.ElapsedSeconds})
	}
	for category, catRows := range ds.RowsByCategory() {
		ds.UnitCharts[category] = unitBars(catRows)
	}
	return ds
}

func categoryTotals(rows []Row) []CategoryTotal {
	index := make(map[string]int)
	var totals []CategoryTotal
	for _, r := range rows {
		i, ok := index[r.MainCategory]
		if !ok {
			i = len(totals)
			index[r.MainCategory] = i
			totals = append(totals, CategoryTotal{Category: r.MainCategory})
		}
		totals[i].ElapsedSeconds += r.ElapsedSeconds
		totals[i].Tasks++
	}
	sort.SliceStable(totals, func(i, j int) bool { return totals[i].Category < totals[j].Category })
	return totals
}

func userAverages(rows []Row) []UserAverage {
	sums := make(map[string]float64)
	counts := make(map[string]int)
	for _, r := range rows {
		sums[r.Username] += r.TimePerUnit
		counts[r.Username]++
	}

	out := make([]UserAverage, 0, len(sums))
	for user, sum := range sums {
		out = append(out, UserAverage{
			Username:       user,
			AvgTimePerUnit: sum / float64(counts[user]),
			Tasks:          counts[user],
		})
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Username < out[j].Username })
	return out
}

// dailyCounts buckets rows by start day for the window ending today.
// Days without tasks are absent.
func dailyCounts(rows []Row, now time.Time, w Window) (string, string, []DayCount) {
	local := now.In(w.Location)
	today := time.Date(local.Year(), local.Month(), local.Day(), 0, 0, 0, 0, w.Location)
	start := today.AddDate(0, 0, -(w.Days - 1))
	end := today.AddDate(0, 0, 1)

	counts := make(map[string]int)
	for _, r := range rows {
		t := r.StartTime.In(w.Location)
		if t.Before(start) || !t.Before(end) {
			continue
		}
		counts[t.Format(DayFormat)]++
	}

	out := make([]DayCount, 0, len(counts))
	for day, n := range counts {
		out = append(out, DayCount{Day: day, Count: n})
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Day < out[j].Day })
	return start.Format(DayFormat), today.Format(DayFormat), out
}

func unitBars(rows []Row) []UnitBar {
	index := make(map[string]int)
	var bars []UnitBar
	for _, r := range rows {
		i, ok := index[r.SubCategory]
		if !ok {
			i = len(bars)
			index[r.SubCategory] = i
			bars = append(bars, UnitBar{SubCategory: r.SubCategory})
		}
		bars[i].TimePerUnit += r.TimePerUnit
		bars[i].Tasks++
	}
	for i := range bars {
		bars[i].TimePerUnit /= float64(bars[i].Tasks)
	}
	return bars
}

// FormatSeconds renders a duration in seconds as "1h 02m 03s"
func FormatSeconds(seconds float64) string {
	d := time.Duration(seconds * float64(time.Second)).Round(time.Second)
	h := int(d.Hours())
	m := int(d.Minutes()) % 60
	s := int(d.Seconds()) % 60
	if h > 0 {
		return fmt.Sprintf("%dh %02dm %02ds", h, m, s)
	}
	if m > 0 {
		return fmt.Sprintf("%dm %02ds", m, s)
	}
	return fmt.Sprintf("%ds", s)
}
