// Package metrics derives productivity statistics from the completion log.
package metrics

import (
	"time"
)

// DayFormat keys daily buckets
const DayFormat = "2006-01-02"

// Row is one completed task with its derived timings
type Row struct {
	ID             int64     `json:"id"`
	Username       string    `json:"user"`
	MainCategory   string    `json:"mainCategory"`
	SubCategory    string    `json:"subCategory"`
	StartTime      time.Time `json:"startTime"`
	EndTime        time.Time `json:"endTime"`
	ElapsedSeconds float64   `json:"elapsedTime"`
	Units          int       `json:"units"`
	TimePerUnit    float64   `json:"timePerUnit"`
}

// CategoryTotal is the summed elapsed time of one main category
type CategoryTotal struct {
	Category       string  `json:"category"`
	ElapsedSeconds float64 `json:"elapsedTime"`
	Tasks          int     `json:"tasks"`
}

// UserAverage is a worker's mean time per unit
type UserAverage struct {
	Username       string  `json:"user"`
	AvgTimePerUnit float64 `json:"avgTimePerUnit"`
	Tasks          int     `json:"tasks"`
}

// DayCount is the number of tasks started on one day
type DayCount struct {
	Day   string `json:"day"`
	Count int    `json:"count"`
}

// ScatterPoint pairs unit count with elapsed seconds
type ScatterPoint struct {
	Units          int     `json:"x"`
	ElapsedSeconds float64 `json:"y"`
}

// UnitBar is the mean time per unit of one subcategory
type UnitBar struct {
	SubCategory string  `json:"subCategory"`
	TimePerUnit float64 `json:"timePerUnit"`
	Tasks       int     `json:"tasks"`
}

// Dataset is the full derived snapshot, rebuilt on every log change
type Dataset struct {
	GeneratedAt    time.Time            `json:"generatedAt"`
	Series         []Row                `json:"series"`
	CategoryTotals []CategoryTotal      `json:"categoryTotals"`
	UserAverages   []UserAverage        `json:"userAverages"`
	DailyCounts    []DayCount           `json:"dailyCounts"`
	WindowStart    string               `json:"windowStart"`
	WindowEnd      string               `json:"windowEnd"`
	Scatter        []ScatterPoint       `json:"scatter"`
	UnitCharts     map[string][]UnitBar `json:"unitCharts"`
	Skipped        int                  `json:"skipped"`
}

// RowsByCategory groups the series by main category, keeping time order
func (d Dataset) RowsByCategory() map[string][]Row {
	out := make(map[string][]Row)
	for _, r := range d.Series {
		out[r.MainCategory] = append(out[r.MainCategory], r)
	}
	return out
}
