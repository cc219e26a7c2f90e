package commands

import (
	"fmt"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/teranos/azsku/am"
)

// configFile returns the --config path, empty when the cascade applies.
func configFile(cmd *cobra.Command) string {
	path, _ := cmd.Flags().GetString("config")
	return path
}

// loadConfig loads the file named by --config, or the layered configuration
// (defaults, system, user, project, AZSKU_* env) when the flag is unset.
func loadConfig(cmd *cobra.Command) (*am.Config, error) {
	var (
		cfg *am.Config
		err error
	)
	if path := configFile(cmd); path != "" {
		cfg, err = am.LoadFromFile(path)
	} else {
		cfg, err = am.Load()
	}
	if err != nil {
		return nil, fmt.Errorf("failed to load config: %w", err)
	}
	return cfg, nil
}

func loadViper(cmd *cobra.Command) (*viper.Viper, error) {
	if path := configFile(cmd); path != "" {
		return am.ViperFromFile(path)
	}
	return am.GetViper(), nil
}

// configSources lists the files that contributed to the configuration.
func configSources(cmd *cobra.Command) []string {
	if path := configFile(cmd); path != "" {
		return []string{path}
	}
	return am.ConfigPaths()
}
