package report

import (
	"fmt"
	"sort"
	"time"

	"github.com/johnfercher/maroto/pkg/color"
	"github.com/johnfercher/maroto/pkg/consts"
	"github.com/johnfercher/maroto/pkg/pdf"
	"github.com/johnfercher/maroto/pkg/props"

	"github.com/balkashynov/floortrack/internal/metrics"
)

var stripe = &color.Color{Red: 240, Green: 240, Blue: 240}

// WritePDF renders the dataset to a PDF file at path
func WritePDF(path string, ds metrics.Dataset, generated time.Time) error {
	m := pdf.NewMaroto(consts.Portrait, consts.A4)
	m.SetPageMargins(20, 10, 20)

	m.RegisterHeader(func() {
		m.Row(10, func() {
			m.Col(12, func() {
				m.Text("Production report", props.Text{
					Top:   3,
					Style: consts.Bold,
					Align: consts.Center,
					Size:  16,
				})
			})
		})
		m.Row(8, func() {
			m.Col(12, func() {
				m.Text(generated.Format("2006-01-02 15:04"), props.Text{
					Align: consts.Center,
					Size:  10,
				})
			})
		})
	})

	section := func(title string) {
		m.Row(12, func() {
			m.Col(12, func() {
				m.Text(title, props.Text{Top: 5, Style: consts.Bold, Size: 13})
			})
		})
	}
	table := func(headers []string, rows [][]string, grid []uint) {
		if len(rows) == 0 {
			rows = [][]string{make([]string, len(headers))}
			rows[0][0] = "-"
		}
		m.TableList(headers, rows, props.TableList{
			HeaderProp:           props.TableListContent{Size: 10, GridSizes: grid},
			ContentProp:          props.TableListContent{Size: 9, GridSizes: grid},
			Align:                consts.Left,
			AlternatedBackground: stripe,
			HeaderContentSpace:   1,
			Line:                 false,
		})
	}

	section("Time by category")
	var rows [][]string
	for _, c := range ds.CategoryTotals {
		rows = append(rows, []string{c.Category, metrics.FormatSeconds(c.ElapsedSeconds), fmt.Sprint(c.Tasks)})
	}
	table([]string{"Category", "Total time", "Tasks"}, rows, []uint{6, 4, 2})

	section("Average time per unit by worker")
	rows = nil
	for _, u := range ds.UserAverages {
		rows = append(rows, []string{u.Username, metrics.FormatSeconds(u.AvgTimePerUnit), fmt.Sprint(u.Tasks)})
	}
	table([]string{"Worker", "Time per unit", "Tasks"}, rows, []uint{6, 4, 2})

	section(fmt.Sprintf("Tasks per day, %s to %s", ds.WindowStart, ds.WindowEnd))
	rows = nil
	for _, d := range ds.DailyCounts {
		rows = append(rows, []string{d.Day, fmt.Sprint(d.Count)})
	}
	table([]string{"Day", "Tasks"}, rows, []uint{8, 4})

	cats := make([]string, 0, len(ds.UnitCharts))
	for c := range ds.UnitCharts {
		cats = append(cats, c)
	}
	sort.Strings(cats)
	for _, c := range cats {
		section(c)
		rows = nil
		for _, bar := range ds.UnitCharts[c] {
			rows = append(rows, []string{bar.SubCategory, fmt.Sprintf("%.2f", bar.TimePerUnit), fmt.Sprint(bar.Tasks)})
		}
		table([]string{"Subcategory", "Seconds per unit", "Tasks"}, rows, []uint{7, 3, 2})
	}

	if ds.Skipped > 0 {
		m.Row(12, func() {
			m.Col(12, func() {
				m.Text(fmt.Sprintf("%d log entries skipped (missing start or end time)", ds.Skipped), props.Text{Top: 5, Size: 9, Style: consts.Italic})
			})
		})
	}

	return m.OutputFileAndClose(path)
}
