package commands

import (
	"fmt"
	"os"
	"strings"

	"github.com/pterm/pterm"
	"github.com/spf13/cobra"

	"github.com/teranos/azsku/am"
)

// AmCmd represents the am (configuration) command
var AmCmd = &cobra.Command{
	Use:   "am",
	Short: "Manage azsku configuration",
	Long: `am: manage azsku configuration ("I am")

Display and validate azsku configuration settings.

Configuration sources (in order of precedence):
1. Command line flags
2. Environment variables (AZSKU_* prefix)
3. Project config (./am.toml, searched up the directory tree)
4. User config (~/.azsku/am.toml)
5. System config (/etc/azsku/config.toml)
6. Default values

--config FILE replaces sources 2 to 5 with that single file.

Examples:
  azsku am show                    # Show current configuration
  azsku am show --format json      # Show configuration in JSON format
  azsku am get extract.workers     # Get specific config value
  azsku am validate                # Validate current configuration
  azsku am where                   # Show which config files are used
  azsku --config ci.toml am show   # Show the configuration of one file`,
}

var amShowCmd = &cobra.Command{
	Use:   "show",
	Short: "Show current configuration",
	Long:  "Display the current azsku configuration from all sources",
	RunE:  runAmShow,
}

var amGetCmd = &cobra.Command{
	Use:   "get <key>",
	Short: "Get a specific configuration value",
	Long:  "Get a specific configuration value using dot notation (e.g., database.path, extract.workers)",
	Args:  cobra.ExactArgs(1),
	RunE:  runAmGet,
}

var amValidateCmd = &cobra.Command{
	Use:   "validate",
	Short: "Validate current configuration",
	Long: `Validate the current azsku configuration and report keys in config files
that azsku does not know (usually typos).`,
	RunE: runAmValidate,
}

var amWhereCmd = &cobra.Command{
	Use:   "where",
	Short: "Show where configuration is loaded from",
	RunE:  runAmWhere,
}

var configFormat string

func init() {
	amShowCmd.Flags().StringVar(&configFormat, "format", "toml", "Output format: toml, json, yaml")

	AmCmd.AddCommand(amShowCmd)
	AmCmd.AddCommand(amGetCmd)
	AmCmd.AddCommand(amValidateCmd)
	AmCmd.AddCommand(amWhereCmd)
}

func runAmShow(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig(cmd)
	if err != nil {
		return err
	}

	data, err := am.Render(cfg, configFormat)
	if err != nil {
		return err
	}
	if configFormat != "json" {
		fmt.Println("# azsku configuration")
	}
	fmt.Println(strings.TrimRight(string(data), "\n"))
	return nil
}

func runAmGet(cmd *cobra.Command, args []string) error {
	key := args[0]

	v, err := loadViper(cmd)
	if err != nil {
		return err
	}
	if !v.IsSet(key) {
		return fmt.Errorf("configuration key %q not found", key)
	}
	fmt.Println(v.Get(key))
	return nil
}

func runAmValidate(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig(cmd)
	if err != nil {
		return err
	}

	var unknown int
	for _, path := range configSources(cmd) {
		if _, err := os.Stat(path); err != nil {
			continue
		}
		keys, err := am.UnknownKeys(path)
		if err != nil {
			return err
		}
		for _, k := range keys {
			pterm.Warning.Printf("%s: unknown key %s\n", path, k)
		}
		unknown += len(keys)
	}

	if err := cfg.Validate(); err != nil {
		return fmt.Errorf("configuration validation failed: %w", err)
	}
	if unknown > 0 {
		return fmt.Errorf("configuration contains %d unknown keys", unknown)
	}

	fmt.Println("✓ Configuration is valid")
	return nil
}

func runAmWhere(cmd *cobra.Command, args []string) error {
	if path := configFile(cmd); path != "" {
		fmt.Printf("Configuration file (--config): %s\n", path)
		fmt.Println("  Built-in defaults fill unset keys; AZSKU_* variables are not read")
		return nil
	}
	fmt.Println("Configuration cascade (later overrides earlier):")
	fmt.Println("  1. [DEFAULT]  Built-in defaults")
	for i, path := range am.ConfigPaths() {
		state := "missing"
		if _, err := os.Stat(path); err == nil {
			state = "loaded"
		}
		fmt.Printf("  %d. [FILE]     %s (%s)\n", i+2, path, state)
	}
	fmt.Println("  -. [ENV]      AZSKU_* environment variables")
	return nil
}
