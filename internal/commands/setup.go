package commands

import (
	"encoding/json"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/balkashynov/floortrack/internal/categories"
	"github.com/balkashynov/floortrack/internal/config"
)

var initCmd = &cobra.Command{
	Use:   "init [path]",
	Short: "Write a default configuration file",
	Long: `Write a commented default configuration file. Without a path the global
file ~/.floortrack/config.yaml is written.`,
	Args: cobra.MaximumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		path := config.GlobalConfigPath()
		if len(args) == 1 {
			path = args[0]
		}
		force, _ := cmd.Flags().GetBool("force")
		if _, err := os.Stat(path); err == nil && !force {
			return fmt.Errorf("%s already exists (use --force to overwrite)", path)
		}
		if err := config.WriteDefault(path); err != nil {
			return err
		}
		fmt.Printf("📝 Wrote %s\n", path)

		if withCategories, _ := cmd.Flags().GetString("categories"); withCategories != "" {
			if err := categories.Default().Save(withCategories); err != nil {
				return err
			}
			fmt.Printf("📝 Wrote the built-in category table to %s\n", withCategories)
		}
		return nil
	},
}

var categoriesCmd = &cobra.Command{
	Use:   "categories",
	Short: "List the work categories and their steps",
	RunE: withApp(func(a *app, cmd *cobra.Command, args []string) error {
		if asJSON, _ := cmd.Flags().GetBool("json"); asJSON {
			enc := json.NewEncoder(os.Stdout)
			enc.SetIndent("", "  ")
			return enc.Encode(a.categories.Categories)
		}
		for _, c := range a.categories.Categories {
			fmt.Printf("📁 %s\n", c.Name)
			for _, sub := range c.SubCategories {
				fmt.Printf("   - %s\n", sub)
			}
		}
		return nil
	}),
}

var versionCmd = &cobra.Command{
	Use:   "version",
	Short: "Print version information",
	Run: func(cmd *cobra.Command, args []string) {
		fmt.Printf("floortrack %s (commit %s, built %s)\n", version, commit, date)
	},
}

func init() {
	initCmd.Flags().Bool("force", false, "overwrite an existing file")
	initCmd.Flags().String("categories", "", "also write the built-in category table to this path")
	categoriesCmd.Flags().Bool("json", false, "JSON output")
}
