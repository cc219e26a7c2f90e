package am

import (
	"os"
	"path/filepath"

	"github.com/spf13/viper"
)

// SetDefaults configures default values for all configuration options
func SetDefaults(v *viper.Viper) {
	// Database defaults
	v.SetDefault("database.path", "azsku.db")

	// Corpus defaults
	v.SetDefault("corpus.repository_url", DefaultRepositoryURL)
	v.SetDefault("corpus.branch", DefaultBranch)
	v.SetDefault("corpus.local_path", "")
	v.SetDefault("corpus.clone_dir", defaultCloneDir())
	v.SetDefault("corpus.sizes_path", DefaultSizesPath)
	v.SetDefault("corpus.shallow_clone", false)
	v.SetDefault("corpus.block_private_hosts", false)

	// Extraction defaults
	v.SetDefault("extract.workers", 0)
	v.SetDefault("extract.fail_fast", false)
	v.SetDefault("extract.dry_run", false)
	v.SetDefault("extract.skip_unchanged", true)

	// Metrics defaults
	v.SetDefault("metrics.textfile", "")
}

func defaultCloneDir() string {
	home, err := os.UserHomeDir()
	if err != nil {
		return filepath.Join(os.TempDir(), "azsku", "azure-compute-docs")
	}
	return filepath.Join(home, ".azsku", "azure-compute-docs")
}
