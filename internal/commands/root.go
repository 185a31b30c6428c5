package commands

import (
	"github.com/spf13/cobra"
)

var (
	version = "dev"
	commit  = "none"
	date    = "unknown"
)

// Persistent flags
var (
	configPath string
	verbose    bool
	userFlag   string
)

var rootCmd = &cobra.Command{
	Use:   "floortrack",
	Short: "Shop-floor task timing and production metrics",
	Long: `floortrack times units of work on the shop floor, keeps an append-only
completion log and turns it into per-category and per-worker metrics.

Run 'floortrack serve' for the HTTP API and live metrics stream, or drive
tasks directly from the terminal with add, track, stop and done.`,
	SilenceUsage: true,
}

// SetVersion sets the version information
func SetVersion(v, c, d string) {
	version = v
	commit = c
	date = d
}

// Execute runs the root command
func Execute() error {
	return rootCmd.Execute()
}

func init() {
	rootCmd.PersistentFlags().StringVar(&configPath, "config", "", "config file (default ./floortrack.yaml over ~/.floortrack/config.yaml)")
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "log component activity and SQL to stderr")
	rootCmd.PersistentFlags().StringVarP(&userFlag, "user", "u", "", "worker name (default from config 'user')")

	rootCmd.AddCommand(serveCmd)
	rootCmd.AddCommand(addCmd)
	rootCmd.AddCommand(listCmd)
	rootCmd.AddCommand(stopCmd)
	rootCmd.AddCommand(cancelCmd)
	rootCmd.AddCommand(doneCmd)
	rootCmd.AddCommand(editCmd)
	rootCmd.AddCommand(rmCmd)
	rootCmd.AddCommand(trackCmd)
	rootCmd.AddCommand(statsCmd)
	rootCmd.AddCommand(weekCmd)
	rootCmd.AddCommand(reportCmd)
	rootCmd.AddCommand(archiveCmd)
	rootCmd.AddCommand(categoriesCmd)
	rootCmd.AddCommand(initCmd)
	rootCmd.AddCommand(helpCmd)
	rootCmd.AddCommand(versionCmd)
}
