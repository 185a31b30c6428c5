package metrics

import (
	"math"
	"testing"
	"time"

	"github.com/balkashynov/floortrack/internal/models"
)

func at(s string) *time.Time {
	t, err := time.ParseInLocation("2006-01-02T15:04:05", s, time.UTC)
	if err != nil {
		panic(err)
	}
	return &t
}

func entry(id int64, user, main, sub, start, end string, qty int) models.LogEntry {
	e := models.LogEntry{ID: id, Username: user, MainCategory: main, SubCategory: sub, Quantity: qty}
	if start != "" {
		e.StartTime = at(start)
	}
	if end != "" {
		e.EndTime = at(end)
	}
	return e
}

var utcWindow = Window{Days: 7, Location: time.UTC}

func TestComputeElapsedAndTimePerUnit(t *testing.T) {
	t.Parallel()

	ds := Compute([]models.LogEntry{
		entry(1, "alice", "Apex", "Epoxy", "2024-01-01T10:00:00", "2024-01-01T10:05:00", 5),
	}, *at("2024-01-01T12:00:00"), utcWindow)

	if len(ds.Series) != 1 {
		t.Fatalf("Expected 1 row, got %d", len(ds.Series))
	}
	r := ds.Series[0]
	if r.ElapsedSeconds != 300 {
		t.Errorf("Expected elapsed 300, got %v", r.ElapsedSeconds)
	}
	if r.TimePerUnit != 60 {
		t.Errorf("Expected time per unit 60, got %v", r.TimePerUnit)
	}
}

func TestComputeSkipsRowsWithoutEndTime(t *testing.T) {
	t.Parallel()

	ds := Compute([]models.LogEntry{
		entry(1, "alice", "Apex", "Epoxy", "2024-01-01T10:00:00", "", 5),
		entry(2, "alice", "Apex", "Epoxy", "", "2024-01-01T10:00:00", 5),
		entry(3, "bob", "Apex", "Epoxy", "2024-01-01T11:00:00", "2024-01-01T11:01:00", 2),
	}, *at("2024-01-01T12:00:00"), utcWindow)

	if ds.Skipped != 2 {
		t.Errorf("Expected 2 skipped, got %d", ds.Skipped)
	}
	if len(ds.Series) != 1 || ds.Series[0].ID != 3 {
		t.Errorf("Expected only row 3 to survive, got %+v", ds.Series)
	}
	if len(ds.CategoryTotals) != 1 || ds.CategoryTotals[0].ElapsedSeconds != 60 {
		t.Errorf("Unexpected totals %+v", ds.CategoryTotals)
	}
}

func TestComputeZeroQuantityDividesByOne(t *testing.T) {
	t.Parallel()

	ds := Compute([]models.LogEntry{
		entry(1, "alice", "Apex", "Epoxy", "2024-01-01T10:00:00", "2024-01-01T10:02:00", 0),
	}, *at("2024-01-01T12:00:00"), utcWindow)

	if ds.Series[0].TimePerUnit != 120 || ds.Series[0].Units != 1 {
		t.Errorf("Expected 120s per single unit, got %+v", ds.Series[0])
	}
}

func TestComputeLatestEntryPerIDWins(t *testing.T) {
	t.Parallel()

	ds := Compute([]models.LogEntry{
		entry(7, "alice", "Apex", "Epoxy", "2024-01-01T10:00:00", "2024-01-01T10:10:00", 5),
		entry(8, "alice", "Apex", "Epoxy", "2024-01-01T11:00:00", "2024-01-01T11:10:00", 1),
		entry(7, "alice", "Apex", "Epoxy", "2024-01-01T10:00:00", "2024-01-01T10:10:00", 10),
	}, *at("2024-01-01T12:00:00"), utcWindow)

	if len(ds.Series) != 2 {
		t.Fatalf("Expected 2 rows after collapsing edits, got %d", len(ds.Series))
	}
	if ds.Series[0].ID != 7 || ds.Series[0].Units != 10 || ds.Series[0].TimePerUnit != 60 {
		t.Errorf("Expected edited row to win, got %+v", ds.Series[0])
	}
}

func TestComputeAggregates(t *testing.T) {
	t.Parallel()

	entries := []models.LogEntry{
		entry(3, "bob", "Sensor", "Wiring", "2024-01-03T09:00:00", "2024-01-03T09:10:00", 2),
		entry(1, "alice", "Apex", "Epoxy", "2024-01-01T10:00:00", "2024-01-01T10:05:00", 5),
		entry(2, "alice", "Apex", "Sanding", "2024-01-02T10:00:00", "2024-01-02T10:02:00", 1),
		entry(4, "alice", "Apex", "Epoxy", "2024-01-03T10:00:00", "2024-01-03T10:01:40", 1),
	}
	ds := Compute(entries, *at("2024-01-03T18:00:00"), utcWindow)

	// time series ascending by start
	for i, want := range []int64{1, 2, 3, 4} {
		if ds.Series[i].ID != want {
			t.Errorf("Series[%d]: expected #%d, got #%d", i, want, ds.Series[i].ID)
		}
	}

	totals := map[string]float64{}
	for _, c := range ds.CategoryTotals {
		totals[c.Category] = c.ElapsedSeconds
	}
	if totals["Apex"] != 520 || totals["Sensor"] != 600 {
		t.Errorf("Unexpected category totals %v", totals)
	}

	avgs := map[string]float64{}
	for _, u := range ds.UserAverages {
		avgs[u.Username] = u.AvgTimePerUnit
	}
	// alice: (60 + 120 + 100) / 3
	if math.Abs(avgs["alice"]-280.0/3) > 1e-9 {
		t.Errorf("Unexpected alice average %v", avgs["alice"])
	}
	if avgs["bob"] != 300 {
		t.Errorf("Unexpected bob average %v", avgs["bob"])
	}

	if len(ds.Scatter) != 4 {
		t.Errorf("Expected 4 scatter points, got %d", len(ds.Scatter))
	}

	epoxy := ds.UnitCharts["Apex"]
	if len(epoxy) != 2 || epoxy[0].SubCategory != "Epoxy" || epoxy[0].TimePerUnit != 80 || epoxy[0].Tasks != 2 {
		t.Errorf("Unexpected Apex unit chart %+v", epoxy)
	}
}

func TestComputeDailyCountsAreSparse(t *testing.T) {
	t.Parallel()

	entries := []models.LogEntry{
		entry(1, "a", "Apex", "Epoxy", "2024-01-01T10:00:00", "2024-01-01T10:05:00", 1), // outside window
		entry(2, "a", "Apex", "Epoxy", "2024-01-04T10:00:00", "2024-01-04T10:05:00", 1), // first day of window
		entry(3, "a", "Apex", "Epoxy", "2024-01-04T12:00:00", "2024-01-04T12:05:00", 1),
		entry(4, "a", "Apex", "Epoxy", "2024-01-10T08:00:00", "2024-01-10T08:05:00", 1), // today
	}
	ds := Compute(entries, *at("2024-01-10T09:00:00"), utcWindow)

	if ds.WindowStart != "2024-01-04" || ds.WindowEnd != "2024-01-10" {
		t.Errorf("Unexpected window %s..%s", ds.WindowStart, ds.WindowEnd)
	}
	want := []DayCount{{Day: "2024-01-04", Count: 2}, {Day: "2024-01-10", Count: 1}}
	if len(ds.DailyCounts) != len(want) {
		t.Fatalf("Expected %v, got %v", want, ds.DailyCounts)
	}
	for i := range want {
		if ds.DailyCounts[i] != want[i] {
			t.Errorf("DailyCounts[%d]: expected %v, got %v", i, want[i], ds.DailyCounts[i])
		}
	}
}

func TestComputeEmpty(t *testing.T) {
	t.Parallel()

	ds := Compute(nil, time.Now(), Window{})
	if len(ds.Series) != 0 || ds.Skipped != 0 || ds.UnitCharts == nil {
		t.Errorf("Unexpected dataset for empty log: %+v", ds)
	}
}

func TestFormatSeconds(t *testing.T) {
	t.Parallel()

	tests := map[float64]string{
		0:    "0s",
		59.6: "1m 00s",
		300:  "5m 00s",
		3723: "1h 02m 03s",
	}
	for in, want := range tests {
		if got := FormatSeconds(in); got != want {
			t.Errorf("FormatSeconds(%v) = %q, want %q", in, got, want)
		}
	}
}
