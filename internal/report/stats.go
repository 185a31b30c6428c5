package report

import (
	"fmt"
	"io"
	"sort"
	"strings"

	"github.com/charmbracelet/lipgloss"

	"github.com/balkashynov/floortrack/internal/metrics"
	"github.com/balkashynov/floortrack/internal/tui"
)

var (
	titleStyle = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color(tui.ColorAccentBright))
	labelStyle = lipgloss.NewStyle().Foreground(lipgloss.Color(tui.ColorSecondaryText))
	valueStyle = lipgloss.NewStyle().Foreground(lipgloss.Color(tui.ColorPrimaryText))
	warnStyle  = lipgloss.NewStyle().Foreground(lipgloss.Color(tui.ColorWarning))
	boxStyle   = lipgloss.NewStyle().
			Border(lipgloss.RoundedBorder()).
			BorderForeground(lipgloss.Color(tui.ColorBorder)).
			Padding(0, 1)
)

// RenderStats prints the dataset as a set of terminal panels
func RenderStats(out io.Writer, ds metrics.Dataset) {
	if len(ds.Series) == 0 {
		fmt.Fprintln(out, "No completed tasks in the log yet.")
		if ds.Skipped > 0 {
			fmt.Fprintln(out, warnStyle.Render(fmt.Sprintf("%d entries skipped (missing start or end time)", ds.Skipped)))
		}
		return
	}

	var panels []string

	var b strings.Builder
	b.WriteString(titleStyle.Render("Time by category") + "\n")
	for _, c := range ds.CategoryTotals {
		fmt.Fprintf(&b, "%s %s\n", labelStyle.Render(fmt.Sprintf("%-28s", c.Category)),
			valueStyle.Render(fmt.Sprintf("%12s  %3d tasks", metrics.FormatSeconds(c.ElapsedSeconds), c.Tasks)))
	}
	panels = append(panels, boxStyle.Render(strings.TrimRight(b.String(), "\n")))

	b.Reset()
	b.WriteString(titleStyle.Render("Average time per unit") + "\n")
	for _, u := range ds.UserAverages {
		fmt.Fprintf(&b, "%s %s\n", labelStyle.Render(fmt.Sprintf("%-16s", u.Username)),
			valueStyle.Render(fmt.Sprintf("%10s  %3d tasks", metrics.FormatSeconds(u.AvgTimePerUnit), u.Tasks)))
	}
	panels = append(panels, boxStyle.Render(strings.TrimRight(b.String(), "\n")))

	b.Reset()
	b.WriteString(titleStyle.Render(fmt.Sprintf("Tasks per day (%s to %s)", ds.WindowStart, ds.WindowEnd)) + "\n")
	if len(ds.DailyCounts) == 0 {
		b.WriteString(labelStyle.Render("none") + "\n")
	}
	for _, d := range ds.DailyCounts {
		fmt.Fprintf(&b, "%s %s\n", labelStyle.Render(d.Day), valueStyle.Render(fmt.Sprintf("%3d %s", d.Count, strings.Repeat("▇", min(d.Count, 40)))))
	}
	panels = append(panels, boxStyle.Render(strings.TrimRight(b.String(), "\n")))

	b.Reset()
	b.WriteString(titleStyle.Render("Time per unit by subcategory") + "\n")
	cats := make([]string, 0, len(ds.UnitCharts))
	for c := range ds.UnitCharts {
		cats = append(cats, c)
	}
	sort.Strings(cats)
	for _, c := range cats {
		b.WriteString(valueStyle.Render(c) + "\n")
		for _, bar := range ds.UnitCharts[c] {
			fmt.Fprintf(&b, "  %s %s\n", labelStyle.Render(fmt.Sprintf("%-44s", bar.SubCategory)),
				valueStyle.Render(metrics.FormatSeconds(bar.TimePerUnit)))
		}
	}
	panels = append(panels, boxStyle.Render(strings.TrimRight(b.String(), "\n")))

	fmt.Fprintln(out, lipgloss.JoinVertical(lipgloss.Left, panels...))
	if ds.Skipped > 0 {
		fmt.Fprintln(out, warnStyle.Render(fmt.Sprintf("%d entries skipped (missing start or end time)", ds.Skipped)))
	}
}
