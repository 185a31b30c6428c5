package commands

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/spf13/cobra"

	"github.com/balkashynov/floortrack/internal/metrics"
	"github.com/balkashynov/floortrack/internal/report"
)

// dataset recomputes the metrics once, refreshing the derived projections
func (a *app) dataset(cmd *cobra.Command) (metrics.Dataset, error) {
	if days, _ := cmd.Flags().GetInt("days"); days > 0 {
		a.cfg.Metrics.WindowDays = days
	}
	return a.pipeline(nil, false, newLogger("[metrics] ")).Recompute(cmd.Context())
}

var statsCmd = &cobra.Command{
	Use:   "stats",
	Short: "Show production metrics from the completion log",
	RunE: withApp(func(a *app, cmd *cobra.Command, args []string) error {
		ds, err := a.dataset(cmd)
		if err != nil {
			return err
		}
		if asJSON, _ := cmd.Flags().GetBool("json"); asJSON {
			enc := json.NewEncoder(os.Stdout)
			enc.SetIndent("", "  ")
			return enc.Encode(ds)
		}
		report.RenderStats(os.Stdout, ds)
		return nil
	}),
}

var weekCmd = &cobra.Command{
	Use:   "week",
	Short: "Show units produced per step and weekday for the current week",
	RunE: withApp(func(a *app, cmd *cobra.Command, args []string) error {
		ds, err := a.dataset(cmd)
		if err != nil {
			return err
		}

		rows := ds.Series
		if user, _ := cmd.Flags().GetString("worker"); user != "" {
			filtered := rows[:0:0]
			for _, r := range rows {
				if r.Username == user {
					filtered = append(filtered, r)
				}
			}
			rows = filtered
		}

		now := time.Now().In(a.loc)
		if back, _ := cmd.Flags().GetInt("weeks-ago"); back > 0 {
			now = now.AddDate(0, 0, -7*back)
		}
		report.RenderWeek(os.Stdout, report.BuildWeek(rows, now, a.loc))
		return nil
	}),
}

var reportCmd = &cobra.Command{
	Use:   "report",
	Short: "Write the metrics report to a PDF file",
	RunE: withApp(func(a *app, cmd *cobra.Command, args []string) error {
		path, _ := cmd.Flags().GetString("pdf")
		if path == "" {
			path = filepath.Join(a.cfg.DataDir, "reports", "report_"+time.Now().In(a.loc).Format("2006-01-02")+".pdf")
		}
		if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
			return fmt.Errorf("failed to create report directory: %w", err)
		}

		ds, err := a.dataset(cmd)
		if err != nil {
			return err
		}
		if err := report.WritePDF(path, ds, time.Now().In(a.loc)); err != nil {
			return fmt.Errorf("failed to write report: %w", err)
		}
		fmt.Printf("📄 Report written to %s (%d completed tasks)\n", path, len(ds.Series))
		return nil
	}),
}

func init() {
	for _, c := range []*cobra.Command{statsCmd, weekCmd, reportCmd} {
		c.Flags().Int("days", 0, "tasks-per-day window in days (overrides metrics.window_days)")
	}
	statsCmd.Flags().Bool("json", false, "JSON output")
	weekCmd.Flags().String("worker", "", "only count this worker's units")
	weekCmd.Flags().Int("weeks-ago", 0, "show an earlier week")
	reportCmd.Flags().String("pdf", "", "output path (default <data_dir>/reports/report_<date>.pdf)")
}
