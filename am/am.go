package am

// Config represents the azsku configuration
type Config struct {
	Database DatabaseConfig `mapstructure:"database" toml:"database" json:"database" yaml:"database"`
	Corpus   CorpusConfig   `mapstructure:"corpus" toml:"corpus" json:"corpus" yaml:"corpus"`
	Extract  ExtractConfig  `mapstructure:"extract" toml:"extract" json:"extract" yaml:"extract"`
	Metrics  MetricsConfig  `mapstructure:"metrics" toml:"metrics" json:"metrics" yaml:"metrics"`
}

// DatabaseConfig configures the SQLite database
type DatabaseConfig struct {
	Path string `mapstructure:"path" toml:"path" json:"path" yaml:"path"`
}

// CorpusConfig locates the size documentation tree.
// LocalPath wins over RepositoryURL when both are set.
type CorpusConfig struct {
	RepositoryURL     string `mapstructure:"repository_url" toml:"repository_url" json:"repository_url" yaml:"repository_url"`
	Branch            string `mapstructure:"branch" toml:"branch" json:"branch" yaml:"branch"`
	LocalPath         string `mapstructure:"local_path" toml:"local_path" json:"local_path" yaml:"local_path"`                                     // existing checkout (skips cloning)
	CloneDir          string `mapstructure:"clone_dir" toml:"clone_dir" json:"clone_dir" yaml:"clone_dir"`                                         // where --clone places the repository
	SizesPath         string `mapstructure:"sizes_path" toml:"sizes_path" json:"sizes_path" yaml:"sizes_path"`                                     // relative to the repository root
	ShallowClone      bool   `mapstructure:"shallow_clone" toml:"shallow_clone" json:"shallow_clone" yaml:"shallow_clone"`                         // depth 1; last-updated dates then come from the single commit
	BlockPrivateHosts bool   `mapstructure:"block_private_hosts" toml:"block_private_hosts" json:"block_private_hosts" yaml:"block_private_hosts"` // refuse remotes on loopback or private networks
}

// ExtractConfig configures an extraction run
type ExtractConfig struct {
	Workers  int  `mapstructure:"workers" toml:"workers" json:"workers" yaml:"workers"` // concurrent series documents (0 = one per CPU)
	FailFast bool `mapstructure:"fail_fast" toml:"fail_fast" json:"fail_fast" yaml:"fail_fast"`
	DryRun   bool `mapstructure:"dry_run" toml:"dry_run" json:"dry_run" yaml:"dry_run"`         // extract and diff, never write
	// SkipUnchanged skips series whose document and companions hash the same
	// as in the last compatible run.
	SkipUnchanged bool `mapstructure:"skip_unchanged" toml:"skip_unchanged" json:"skip_unchanged" yaml:"skip_unchanged"`
}

// MetricsConfig configures run metrics output
type MetricsConfig struct {
	Textfile string `mapstructure:"textfile" toml:"textfile" json:"textfile" yaml:"textfile"` // node_exporter textfile path; empty disables
}

// Corpus defaults
const (
	DefaultRepositoryURL = "https://github.com/MicrosoftDocs/azure-compute-docs.git"
	DefaultBranch        = "main"
	DefaultSizesPath     = "articles/virtual-machines/sizes"
)

// File system constants
const (
	DefaultDirPermissions  = 0755 // Standard directory permissions (rwxr-xr-x)
	DefaultFilePermissions = 0644 // Standard file permissions (rw-r--r--)
)
