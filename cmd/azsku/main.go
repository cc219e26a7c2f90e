package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/teranos/azsku/cmd/azsku/commands"
	"github.com/teranos/azsku/logger"
)

var rootCmd = &cobra.Command{
	Use:   "azsku",
	Short: "azsku - Azure VM size documentation extractor",
	Long: `azsku - Extract Azure virtual machine families, series and sizes from the
published VM size documentation into a local SQLite database.

Available commands:
  extract  - Extract the documentation corpus into the database
  classify - List discovered documents with their classification
  decode   - Decode VM size and series naming codes
  am       - Manage azsku configuration ("I am")
  version  - Show version information

Examples:
  azsku extract --clone          # Clone the docs repository and extract it
  azsku extract --repo ../docs   # Extract an existing checkout
  azsku decode Standard_E16-8s_v5
  azsku am show --format yaml`,
	SilenceUsage: true,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		verbosity, _ := cmd.Flags().GetCount("verbose")
		jsonLogs, _ := cmd.Flags().GetBool("log-json")
		if err := logger.Initialize(jsonLogs, verbosity); err != nil {
			return fmt.Errorf("failed to initialize logger: %w", err)
		}
		logger.Debugw("Logger initialized", "verbosity", logger.LevelName(verbosity), "json", jsonLogs)
		return nil
	},
	PersistentPostRun: func(cmd *cobra.Command, args []string) {
		logger.Cleanup()
	},
}

func init() {
	// Add global flags
	rootCmd.PersistentFlags().CountP("verbose", "v", "Increase output verbosity (repeat for more detail: -v, -vv, -vvv)")
	rootCmd.PersistentFlags().Bool("json", false, "Output results in JSON format")
	rootCmd.PersistentFlags().Bool("log-json", false, "Write logs as JSON")
	rootCmd.PersistentFlags().String("config", "", "Read configuration from this TOML file instead of the am.toml cascade")

	// Add commands
	rootCmd.AddCommand(commands.ExtractCmd)
	rootCmd.AddCommand(commands.ClassifyCmd)
	rootCmd.AddCommand(commands.DecodeCmd)
	rootCmd.AddCommand(commands.AmCmd)
	rootCmd.AddCommand(commands.VersionCmd)
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}
