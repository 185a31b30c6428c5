package report

import (
	"bytes"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/balkashynov/floortrack/internal/metrics"
)

func row(main, sub string, end time.Time, units int) metrics.Row {
	return metrics.Row{MainCategory: main, SubCategory: sub, StartTime: end.Add(-time.Minute), EndTime: end, Units: units, ElapsedSeconds: 60, TimePerUnit: 60 / float64(units)}
}

func TestWeekStart(t *testing.T) {
	t.Parallel()

	// 2024-01-03 is a Wednesday, 2024-01-07 a Sunday
	for _, day := range []int{1, 3, 7} {
		got := WeekStart(time.Date(2024, 1, day, 15, 0, 0, 0, time.UTC))
		if !got.Equal(time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)) {
			t.Errorf("WeekStart(Jan %d) = %v", day, got)
		}
	}
}

func TestBuildWeek(t *testing.T) {
	t.Parallel()

	now := time.Date(2024, 1, 3, 18, 0, 0, 0, time.UTC)
	rows := []metrics.Row{
		row("Apex", "Glue", time.Date(2024, 1, 1, 10, 0, 0, 0, time.UTC), 5),
		row("Apex", "Glue", time.Date(2024, 1, 3, 10, 0, 0, 0, time.UTC), 2),
		row("Apex", "Glue", time.Date(2024, 1, 6, 10, 0, 0, 0, time.UTC), 1),       // Saturday
		row("Sensor", "Wiring", time.Date(2023, 12, 31, 10, 0, 0, 0, time.UTC), 9), // last week
	}
	w := BuildWeek(rows, now, time.UTC)

	if len(w.Keys) != 1 || w.Keys[0] != "Apex / Glue" {
		t.Fatalf("Unexpected keys %v", w.Keys)
	}
	if w.Units["Apex / Glue"][time.Monday] != 5 || w.Units["Apex / Glue"][time.Saturday] != 1 {
		t.Errorf("Unexpected units %v", w.Units)
	}
	if len(w.Days) != 6 || w.Days[5] != time.Saturday {
		t.Errorf("Expected Mon-Fri plus Saturday, got %v", w.Days)
	}

	var buf bytes.Buffer
	RenderWeek(&buf, w)
	out := buf.String()
	if !strings.Contains(out, "Apex / Glue") || !strings.Contains(out, "Sat") || strings.Contains(out, "Sun") {
		t.Errorf("Unexpected grid:\n%s", out)
	}
	if !strings.Contains(out, "Week of Jan 1 to Jan 7, 2024") {
		t.Errorf("Missing week footer:\n%s", out)
	}
}

func TestRenderWeekEmpty(t *testing.T) {
	t.Parallel()

	var buf bytes.Buffer
	RenderWeek(&buf, BuildWeek(nil, time.Now(), time.UTC))
	if !strings.Contains(buf.String(), "No units recorded") {
		t.Errorf("Unexpected output %q", buf.String())
	}
}

func sampleDataset() metrics.Dataset {
	end := time.Date(2024, 1, 1, 10, 5, 0, 0, time.UTC)
	rows := []metrics.Row{row("Apex", "Glue", end, 5)}
	return metrics.Dataset{
		Series:         rows,
		CategoryTotals: []metrics.CategoryTotal{{Category: "Apex", ElapsedSeconds: 300, Tasks: 1}},
		UserAverages:   []metrics.UserAverage{{Username: "alice", AvgTimePerUnit: 60, Tasks: 1}},
		DailyCounts:    []metrics.DayCount{{Day: "2024-01-01", Count: 1}},
		WindowStart:    "2023-12-26",
		WindowEnd:      "2024-01-01",
		UnitCharts:     map[string][]metrics.UnitBar{"Apex": {{SubCategory: "Glue", TimePerUnit: 60, Tasks: 1}}},
		Skipped:        1,
	}
}

func TestRenderStats(t *testing.T) {
	t.Parallel()

	var buf bytes.Buffer
	RenderStats(&buf, sampleDataset())
	out := buf.String()
	for _, want := range []string{"Time by category", "alice", "2024-01-01", "Glue", "1 entries skipped"} {
		if !strings.Contains(out, want) {
			t.Errorf("Expected %q in output:\n%s", want, out)
		}
	}
}

func TestWritePDF(t *testing.T) {
	t.Parallel()

	path := filepath.Join(t.TempDir(), "report.pdf")
	if err := WritePDF(path, sampleDataset(), time.Now()); err != nil {
		t.Fatalf("WritePDF failed: %v", err)
	}
	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatal(err)
	}
	if !bytes.HasPrefix(data, []byte("%PDF")) {
		t.Errorf("Output is not a PDF")
	}
}
