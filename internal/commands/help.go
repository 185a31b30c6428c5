package commands

import (
	"fmt"

	"github.com/spf13/cobra"
)

var helpCmd = &cobra.Command{
	Use:   "guide",
	Short: "Show the full floortrack command guide",
	Long:  `Display detailed help for all floortrack commands and flags.`,
	Run: func(cmd *cobra.Command, args []string) {
		showGuide()
	},
}

func showGuide() {
	fmt.Print(`
███████╗██╗      ██████╗  ██████╗ ██████╗
██╔════╝██║     ██╔═══██╗██╔═══██╗██╔══██╗
█████╗  ██║     ██║   ██║██║   ██║██████╔╝
██╔══╝  ██║     ██║   ██║██║   ██║██╔══██╗
██║     ███████╗╚██████╔╝╚██████╔╝██║  ██║
╚═╝     ╚══════╝ ╚═════╝  ╚═════╝ ╚═╝  ╚═╝

floortrack - shop-floor task timing and production metrics

GLOBAL FLAGS:
  -u, --user              Worker name (default: 'user' in config, FLOORTRACK_USER)
  --config                Config file (default ./floortrack.yaml over ~/.floortrack/config.yaml)
  -v, --verbose           Log component activity and SQL to stderr

TASKS:

  add [Main/Sub]          Start a new task (opens a picker without arguments)
    -c, --category        Main category
    -s, --sub             Step within the category
    --no-ui               Never open the picker

    Shorthand:
      apex/glue @alice    Names match case-insensitively and by unique prefix

  track [id | Main/Sub]   Open the timer for a pending task, or start a new one
    Keys:
      s             Stop the clock
      c             Resume after a stop
      enter         Enter units and note, then complete
      esc/q         Leave the task running

  ls                      List a worker's tasks
    --status              pending or completed
    --since               dd/mm/yyyy, X hours, X days, X weeks
    --json                JSON output
    --ui                  Interactive board (enter opens the timer)

  stop <id>               Stop the clock
  cancel <id>             Undo a stop
  done <id> <units>       Complete a task
    -n, --note            Note stored with the completion
  edit <id> --units N     Correct a completed task (appends a new log row)
  rm <id>                 Delete a pending task

METRICS:

  stats                   Category totals, time per unit, tasks per day
    --days                Tasks-per-day window
    --json                JSON output
  week                    Units per step and weekday for this week
    --worker              One worker only
    --weeks-ago           An earlier week
  report --pdf <path>     PDF report

SERVER:

  serve                   HTTP API and live metrics stream (SSE)
    --addr                Listen address

HOUSEKEEPING:

  archive [ledger|records|all]   Back up and split the log, prune completed tasks
  categories              List categories and steps
  init [path]             Write a default config file
  version                 Print version information

`)
}
