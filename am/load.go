package am

import (
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/viper"
	"github.com/teranos/azsku/errors"
)

var globalConfig *Config
var viperInstance *viper.Viper

// Load reads the azsku configuration using Viper
func Load() (*Config, error) {
	if globalConfig != nil {
		return globalConfig, nil
	}

	v := initViper()

	var config Config
	if err := v.Unmarshal(&config); err != nil {
		return nil, errors.Wrap(err, "failed to unmarshal config")
	}

	globalConfig = &config
	return globalConfig, nil
}

// GetViper returns the Viper instance for advanced configuration access
func GetViper() *viper.Viper {
	return initViper()
}

// LoadWithViper loads configuration using a provided Viper instance
func LoadWithViper(v *viper.Viper) (*Config, error) {
	var config Config
	if err := v.Unmarshal(&config); err != nil {
		return nil, errors.Wrap(err, "failed to unmarshal config")
	}
	return &config, nil
}

// LoadFromFile loads configuration from a specific file path
func LoadFromFile(configPath string) (*Config, error) {
	v, err := ViperFromFile(configPath)
	if err != nil {
		return nil, err
	}

	var config Config
	if err := v.Unmarshal(&config); err != nil {
		return nil, errors.Wrapf(err, "failed to unmarshal config from %s", configPath)
	}

	return &config, nil
}

// ViperFromFile returns a Viper instance holding the defaults overlaid with
// the TOML file at configPath. Environment variables are not bound for
// explicit files.
func ViperFromFile(configPath string) (*viper.Viper, error) {
	v := viper.New()
	v.SetConfigFile(configPath)
	v.SetConfigType("toml")
	SetDefaults(v)

	if err := v.ReadInConfig(); err != nil {
		return nil, errors.Wrapf(err, "failed to read config file %s", configPath)
	}
	return v, nil
}

// Reset clears the cached configuration so the next Load rereads every source.
func Reset() {
	globalConfig = nil
	viperInstance = nil
}

// initViper initializes Viper with configuration sources and defaults
func initViper() *viper.Viper {
	if viperInstance != nil {
		return viperInstance
	}

	v := viper.New()

	// AZSKU_EXTRACT_WORKERS -> extract.workers
	v.SetEnvPrefix("AZSKU")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	SetDefaults(v)

	// Precedence: system -> user -> project -> env vars
	mergeConfigFiles(v, ConfigPaths())

	viperInstance = v
	return v
}

// ConfigPaths lists the configuration files consulted, lowest precedence first.
// Files that do not exist are included; callers check for presence.
func ConfigPaths() []string {
	paths := []string{"/etc/azsku/config.toml"}
	if home, err := os.UserHomeDir(); err == nil {
		paths = append(paths, filepath.Join(home, ".azsku", "am.toml"))
	}
	if project := findProjectConfig(); project != "" {
		paths = append(paths, project)
	}
	return paths
}

// findProjectConfig searches for am.toml by walking up the directory tree
func findProjectConfig() string {
	dir, err := os.Getwd()
	if err != nil {
		return ""
	}

	for {
		amPath := filepath.Join(dir, "am.toml")
		if _, err := os.Stat(amPath); err == nil {
			return amPath
		}

		parent := filepath.Dir(dir)
		if parent == dir {
			break
		}
		dir = parent
	}

	return ""
}

// mergeConfigFiles merges configuration files in the given order, later files
// overriding earlier ones key by key
func mergeConfigFiles(v *viper.Viper, configPaths []string) {
	for _, configPath := range configPaths {
		if _, err := os.Stat(configPath); err != nil {
			continue
		}
		tempViper := viper.New()
		tempViper.SetConfigFile(configPath)
		tempViper.SetConfigType("toml")

		if err := tempViper.ReadInConfig(); err == nil {
			// Config layer, so AZSKU_* env vars keep precedence over files
			_ = v.MergeConfigMap(tempViper.AllSettings())
		}
	}
}
