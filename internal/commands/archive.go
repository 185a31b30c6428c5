package commands

import (
	"fmt"
	"sort"
	"time"

	"github.com/spf13/cobra"

	"github.com/balkashynov/floortrack/internal/archive"
)

var archiveCmd = &cobra.Command{
	Use:   "archive [ledger|records|all]",
	Short: "Back up and split the completion log, prune completed tasks",
	Long: `Daily housekeeping.

  ledger   copy the log to backup/<date>/ and write per-day raw and cleaned CSVs
  records  drop completed tasks from every worker's task list
  all      both (default)

The completion log itself is never truncated.`,
	Args:      cobra.MaximumNArgs(1),
	ValidArgs: []string{"ledger", "records", "all"},
	RunE: withApp(func(a *app, cmd *cobra.Command, args []string) error {
		what := "all"
		if len(args) == 1 {
			what = args[0]
		}
		if what != "ledger" && what != "records" && what != "all" {
			return fmt.Errorf("unknown archive target %q: use ledger, records or all", what)
		}

		arch := archive.New(a.ledger, a.store, archive.Options{
			BackupDir: a.cfg.BackupDir(),
			CSVDir:    a.cfg.CSVDir(),
			Location:  a.loc,
			Logger:    newLogger("[archive] "),
		})

		if what != "records" {
			res, err := arch.SplitLedger(cmd.Context(), time.Now())
			if err != nil {
				return err
			}
			fmt.Printf("🗃️  Backed up the log to %s\n", res.BackupDir)
			fmt.Printf("Split %d rows into %d days under %s\n", res.Rows, len(res.Days), a.cfg.CSVDir())
			if res.Skipped > 0 {
				fmt.Printf("⚠️  %d rows without an end time were left out\n", res.Skipped)
			}
		}

		if what != "ledger" {
			pruned, err := arch.PruneCompleted(cmd.Context())
			if err != nil {
				return err
			}
			users := make([]string, 0, len(pruned))
			total := 0
			for user, n := range pruned {
				users = append(users, user)
				total += n
			}
			sort.Strings(users)
			for _, user := range users {
				if pruned[user] > 0 {
					fmt.Printf("  %s: %d completed tasks removed\n", user, pruned[user])
				}
			}
			fmt.Printf("🧹 Pruned %d completed tasks\n", total)
		}
		return nil
	}),
}
