package commands

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"github.com/balkashynov/floortrack/internal/models"
	"github.com/balkashynov/floortrack/internal/parser"
	"github.com/balkashynov/floortrack/internal/tui"
)

func parseID(arg string) (int64, error) {
	id, err := strconv.ParseInt(arg, 10, 64)
	if err != nil {
		return 0, fmt.Errorf("invalid task ID '%s'", arg)
	}
	return id, nil
}

// resolveCategory reads --category/--sub, falling back to "Main/Sub" shorthand in args
func resolveCategory(a *app, cmd *cobra.Command, args []string) (string, string, []string) {
	mainCategory, _ := cmd.Flags().GetString("category")
	subCategory, _ := cmd.Flags().GetString("sub")
	if mainCategory != "" && subCategory != "" {
		return mainCategory, subCategory, nil
	}
	if len(args) == 0 {
		return "", "", []string{"no category given"}
	}
	parsed := parser.ParseTask(strings.Join(args, " "), a.categories)
	if parsed.Username != "" && userFlag == "" {
		userFlag = parsed.Username
	}
	return parsed.MainCategory, parsed.SubCategory, parsed.Errors
}

var addCmd = &cobra.Command{
	Use:   "add [Main/Sub] [@worker]",
	Short: "Start a new task",
	Long: `Start a new task for a worker. The clock starts immediately.

Modes:
  Interactive: floortrack add (no arguments) opens a category picker
  Quick:       floortrack add "apex/glue" -u alice
  Flags:       floortrack add --category Apex --sub "Glue (MI 1.1, 1.2, 1.3, 1.4)"

Category and step names match case-insensitively and by unique prefix.`,
	Args: cobra.ArbitraryArgs,
	RunE: withApp(func(a *app, cmd *cobra.Command, args []string) error {
		noUI, _ := cmd.Flags().GetBool("no-ui")
		mainCategory, subCategory, problems := resolveCategory(a, cmd, args)

		if len(problems) > 0 {
			if noUI {
				return fmt.Errorf("%s", strings.Join(problems, ", "))
			}
			if len(args) > 0 {
				fmt.Printf("⚠️  Found issues with parsing: %s\n", strings.Join(problems, ", "))
				fmt.Println("Opening interactive mode...")
			}
			name, _ := a.username()
			rec, username, ok, err := tui.RunAddTaskTUI(a.manager, a.categories, name)
			if err != nil || !ok {
				return err
			}
			printStarted(username, rec)
			return nil
		}

		username, err := a.username()
		if err != nil {
			return err
		}
		rec, err := a.manager.AddTask(cmd.Context(), username, mainCategory, subCategory)
		if err != nil {
			return err
		}
		printStarted(username, rec)
		return nil
	}),
}

func printStarted(username string, rec models.TaskRecord) {
	fmt.Printf("✅ Started task %d for %s: %s / %s\n", rec.ID, username, rec.MainCategory, rec.SubCategory)
	fmt.Printf("Started at: %s\n", rec.StartTime.Local().Format("15:04:05"))
}

var listCmd = &cobra.Command{
	Use:     "ls",
	Aliases: []string{"list"},
	Short:   "List a worker's tasks",
	Long:    "List a worker's tasks: pending first by start time, then completed, newest first",
	RunE: withApp(func(a *app, cmd *cobra.Command, args []string) error {
		username, err := a.username()
		if err != nil {
			return err
		}
		records, err := a.manager.ListTasks(cmd.Context(), username)
		if err != nil {
			return err
		}
		records, err = filterRecords(cmd, records, time.Now().In(a.loc))
		if err != nil {
			return err
		}

		if ui, _ := cmd.Flags().GetBool("ui"); ui {
			rec, picked, err := tui.RunBoardTUI(a.manager, username, records)
			if err != nil || !picked {
				return err
			}
			return tui.RunTimerTUI(a.manager, username, rec)
		}

		if asJSON, _ := cmd.Flags().GetBool("json"); asJSON {
			enc := json.NewEncoder(os.Stdout)
			enc.SetIndent("", "  ")
			return enc.Encode(records)
		}

		if len(records) == 0 {
			fmt.Printf("No tasks found for %s. Use 'floortrack add' to start one.\n", username)
			return nil
		}
		printRecords(records, time.Now())
		return nil
	}),
}

func filterRecords(cmd *cobra.Command, records []models.TaskRecord, now time.Time) ([]models.TaskRecord, error) {
	status, _ := cmd.Flags().GetString("status")
	since, _ := cmd.Flags().GetString("since")

	var bound time.Time
	if since != "" {
		var err error
		if bound, err = parser.ParseSince(since, now); err != nil {
			return nil, err
		}
	}
	switch status {
	case "", string(models.StatusPending), string(models.StatusCompleted):
	default:
		return nil, fmt.Errorf("invalid status %q: use pending or completed", status)
	}

	out := records[:0:0]
	for _, rec := range records {
		if status != "" && rec.State() != models.Status(status) {
			continue
		}
		if !bound.IsZero() && rec.StartTime.Before(bound) {
			continue
		}
		out = append(out, rec)
	}
	return out, nil
}

func printRecords(records []models.TaskRecord, now time.Time) {
	fmt.Printf("%-20s %-10s %-44s %-9s %6s %s\n", "ID", "STATUS", "TASK", "TIME", "UNITS", "STARTED")
	fmt.Println(strings.Repeat("-", 110))
	for _, rec := range records {
		title := rec.MainCategory + " / " + rec.SubCategory
		if len(title) > 42 {
			title = title[:39] + "..."
		}

		status := "running"
		elapsed := now.Sub(rec.StartTime)
		if d, ok := rec.Elapsed(); ok {
			elapsed = d
			status = "stopped"
		}
		if rec.IsCompleted() {
			status = "done"
		}

		units := "-"
		if rec.Quantity != nil {
			units = strconv.Itoa(*rec.Quantity)
		}

		fmt.Printf("%-20d %-10s %-44s %-9s %6s %s\n",
			rec.ID, status, title, tui.FormatDuration(elapsed), units, rec.StartTime.Local().Format("Jan 02 15:04"))
	}
}

// transitionCmd builds the stop/cancel commands, which share a shape
func transitionCmd(use, short, verb string, fn func(ctx context.Context, a *app, username string, id int64) (models.TaskRecord, error)) *cobra.Command {
	return &cobra.Command{
		Use:   use + " <task-id>",
		Short: short,
		Args:  cobra.ExactArgs(1),
		RunE: withApp(func(a *app, cmd *cobra.Command, args []string) error {
			id, err := parseID(args[0])
			if err != nil {
				return err
			}
			username, err := a.username()
			if err != nil {
				return err
			}
			rec, err := fn(cmd.Context(), a, username, id)
			if err != nil {
				return err
			}
			fmt.Printf("%s task %d: %s / %s\n", verb, rec.ID, rec.MainCategory, rec.SubCategory)
			if d, ok := rec.Elapsed(); ok {
				fmt.Printf("Elapsed: %s\n", tui.FormatDuration(d))
			}
			return nil
		}),
	}
}

var stopCmd = transitionCmd("stop", "Stop the clock on a task", "⏹️  Stopped",
	func(ctx context.Context, a *app, username string, id int64) (models.TaskRecord, error) {
		return a.manager.StopTask(ctx, username, id)
	})

var cancelCmd = transitionCmd("cancel", "Undo a stop and resume the clock", "▶️  Resumed",
	func(ctx context.Context, a *app, username string, id int64) (models.TaskRecord, error) {
		return a.manager.CancelTask(ctx, username, id)
	})

var doneCmd = &cobra.Command{
	Use:   "done <task-id> <units>",
	Short: "Complete a task with the number of units produced",
	Long: `Complete a task. A task that is still running is stopped first.
The completion is written to the log before the task is marked done.`,
	Args: cobra.ExactArgs(2),
	RunE: withApp(func(a *app, cmd *cobra.Command, args []string) error {
		id, err := parseID(args[0])
		if err != nil {
			return err
		}
		quantity, err := strconv.Atoi(args[1])
		if err != nil {
			return fmt.Errorf("invalid units '%s'", args[1])
		}
		username, err := a.username()
		if err != nil {
			return err
		}
		note, _ := cmd.Flags().GetString("note")

		rec, err := a.manager.CompleteTask(cmd.Context(), username, id, quantity, note)
		if err != nil {
			return err
		}
		elapsed, _ := rec.Elapsed()
		fmt.Printf("✅ Completed task %d: %s / %s\n", rec.ID, rec.MainCategory, rec.SubCategory)
		fmt.Printf("📊 %d units in %s\n", rec.QuantityValue(), tui.FormatDuration(elapsed))
		return nil
	}),
}

var editCmd = &cobra.Command{
	Use:   "edit <task-id>",
	Short: "Correct the units or note of a completed task",
	Long: `Correct a completed task. The change is appended to the log as a new
row; metrics use the latest row for each task.`,
	Args: cobra.ExactArgs(1),
	RunE: withApp(func(a *app, cmd *cobra.Command, args []string) error {
		id, err := parseID(args[0])
		if err != nil {
			return err
		}
		username, err := a.username()
		if err != nil {
			return err
		}
		quantity, _ := cmd.Flags().GetInt("units")
		note, _ := cmd.Flags().GetString("note")

		rec, err := a.manager.EditTask(cmd.Context(), username, id, quantity, note)
		if err != nil {
			return err
		}
		fmt.Printf("✏️  Updated task %d: %d units\n", rec.ID, rec.QuantityValue())
		if rec.Note != "" {
			fmt.Printf("Note: %s\n", rec.Note)
		}
		return nil
	}),
}

var rmCmd = &cobra.Command{
	Use:     "rm <task-id>",
	Aliases: []string{"delete"},
	Short:   "Delete a pending task",
	Args:    cobra.ExactArgs(1),
	RunE: withApp(func(a *app, cmd *cobra.Command, args []string) error {
		id, err := parseID(args[0])
		if err != nil {
			return err
		}
		username, err := a.username()
		if err != nil {
			return err
		}
		if err := a.manager.DeleteTask(cmd.Context(), username, id); err != nil {
			return err
		}
		fmt.Printf("🗑️  Deleted task %d\n", id)
		return nil
	}),
}

var trackCmd = &cobra.Command{
	Use:   "track [task-id | Main/Sub]",
	Short: "Open the interactive timer",
	Long: `Open the timer screen for a task. Give a task ID to reopen a pending task,
or a category to start a new one.

Examples:
  floortrack track 1823749283742              # reopen a pending task
  floortrack track apex/glue -u alice         # start and time a new task
  floortrack track --category Apex --sub Pack`,
	Args: cobra.ArbitraryArgs,
	RunE: withApp(func(a *app, cmd *cobra.Command, args []string) error {
		if len(args) == 1 {
			if id, err := strconv.ParseInt(args[0], 10, 64); err == nil {
				username, err := a.username()
				if err != nil {
					return err
				}
				rec, err := findRecord(cmd.Context(), a, username, id)
				if err != nil {
					return err
				}
				if rec.IsCompleted() {
					return fmt.Errorf("task %d is already completed", id)
				}
				return tui.RunTimerTUI(a.manager, username, rec)
			}
		}

		mainCategory, subCategory, problems := resolveCategory(a, cmd, args)
		if len(problems) > 0 {
			return fmt.Errorf("%s", strings.Join(problems, ", "))
		}
		username, err := a.username()
		if err != nil {
			return err
		}
		rec, err := a.manager.AddTask(cmd.Context(), username, mainCategory, subCategory)
		if err != nil {
			return err
		}
		return tui.RunTimerTUI(a.manager, username, rec)
	}),
}

func findRecord(ctx context.Context, a *app, username string, id int64) (models.TaskRecord, error) {
	records, err := a.manager.ListTasks(ctx, username)
	if err != nil {
		return models.TaskRecord{}, err
	}
	for _, rec := range records {
		if rec.ID == id {
			return rec, nil
		}
	}
	return models.TaskRecord{}, fmt.Errorf("task %d not found for %s", id, username)
}

func init() {
	for _, c := range []*cobra.Command{addCmd, trackCmd} {
		c.Flags().StringP("category", "c", "", "main category")
		c.Flags().StringP("sub", "s", "", "subcategory (step)")
	}
	addCmd.Flags().Bool("no-ui", false, "never open the interactive picker")

	listCmd.Flags().String("status", "", "filter by status: pending or completed")
	listCmd.Flags().String("since", "", "only tasks started since: dd/mm/yyyy, X hours, X days, X weeks")
	listCmd.Flags().Bool("json", false, "JSON output")
	listCmd.Flags().Bool("ui", false, "interactive task board")

	doneCmd.Flags().StringP("note", "n", "", "note stored with the completion")

	editCmd.Flags().Int("units", 0, "corrected number of units (required)")
	editCmd.Flags().StringP("note", "n", "", "corrected note")
	editCmd.MarkFlagRequired("units")
}
