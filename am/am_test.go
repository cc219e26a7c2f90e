package am

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/spf13/viper"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gopkg.in/yaml.v3"
)

func TestLoad_Defaults(t *testing.T) {
	// Isolated viper instance, no user or system config
	v := viper.New()
	SetDefaults(v)

	cfg, err := LoadWithViper(v)
	require.NoError(t, err)

	assert.Equal(t, "azsku.db", cfg.Database.Path)
	assert.Equal(t, DefaultRepositoryURL, cfg.Corpus.RepositoryURL)
	assert.Equal(t, DefaultBranch, cfg.Corpus.Branch)
	assert.Equal(t, DefaultSizesPath, cfg.Corpus.SizesPath)
	assert.NotEmpty(t, cfg.Corpus.CloneDir)
	assert.Equal(t, 0, cfg.Extract.Workers)
	assert.False(t, cfg.Extract.DryRun)
	assert.True(t, cfg.Extract.SkipUnchanged)
	assert.NoError(t, cfg.Validate())
}

func TestLoadFromFile(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "am.toml")
	content := `
[database]
path = "/var/lib/azsku/azsku.db"

[corpus]
local_path = "/src/azure-compute-docs"

[extract]
workers = 4
fail_fast = true
`
	require.NoError(t, os.WriteFile(path, []byte(content), DefaultFilePermissions))

	cfg, err := LoadFromFile(path)
	require.NoError(t, err)

	assert.Equal(t, "/var/lib/azsku/azsku.db", cfg.Database.Path)
	assert.Equal(t, "/src/azure-compute-docs", cfg.Corpus.LocalPath)
	assert.Equal(t, 4, cfg.Extract.Workers)
	assert.True(t, cfg.Extract.FailFast)
	// Unset keys keep defaults
	assert.Equal(t, DefaultSizesPath, cfg.Corpus.SizesPath)
}

func TestLoad_CachesUntilReset(t *testing.T) {
	Reset()
	t.Cleanup(Reset)

	t.Setenv("AZSKU_EXTRACT_WORKERS", "7")
	cfg, err := Load()
	require.NoError(t, err)
	assert.Equal(t, 7, cfg.Extract.Workers)

	t.Setenv("AZSKU_EXTRACT_WORKERS", "3")
	cached, err := Load()
	require.NoError(t, err)
	assert.Same(t, cfg, cached)

	Reset()
	reloaded, err := Load()
	require.NoError(t, err)
	assert.Equal(t, 3, reloaded.Extract.Workers)
}

func TestViperFromFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "am.toml")
	require.NoError(t, os.WriteFile(path, []byte("[metrics]\ntextfile = \"/var/lib/node_exporter/azsku.prom\"\n"), DefaultFilePermissions))

	v, err := ViperFromFile(path)
	require.NoError(t, err)
	assert.Equal(t, "/var/lib/node_exporter/azsku.prom", v.GetString("metrics.textfile"))
	assert.True(t, v.GetBool("extract.skip_unchanged"), "defaults fill unset keys")
}

func TestLoadFromFile_Missing(t *testing.T) {
	_, err := LoadFromFile(filepath.Join(t.TempDir(), "nope.toml"))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "failed to read config file")
}

func TestMergeConfigFiles_Precedence(t *testing.T) {
	dir := t.TempDir()
	system := filepath.Join(dir, "system.toml")
	user := filepath.Join(dir, "user.toml")
	require.NoError(t, os.WriteFile(system, []byte("[extract]\nworkers = 2\n[database]\npath = \"system.db\"\n"), DefaultFilePermissions))
	require.NoError(t, os.WriteFile(user, []byte("[extract]\nworkers = 8\n"), DefaultFilePermissions))

	v := viper.New()
	SetDefaults(v)
	mergeConfigFiles(v, []string{system, user, filepath.Join(dir, "absent.toml")})

	cfg, err := LoadWithViper(v)
	require.NoError(t, err)
	assert.Equal(t, 8, cfg.Extract.Workers)
	assert.Equal(t, "system.db", cfg.Database.Path)
}

func TestValidate(t *testing.T) {
	valid := func() Config {
		return Config{
			Database: DatabaseConfig{Path: "azsku.db"},
			Corpus: CorpusConfig{
				RepositoryURL: DefaultRepositoryURL,
				Branch:        DefaultBranch,
				CloneDir:      "/tmp/docs",
				SizesPath:     DefaultSizesPath,
			},
		}
	}

	tests := []struct {
		name    string
		mutate  func(c *Config)
		wantErr string
	}{
		{name: "defaults are valid", mutate: func(c *Config) {}},
		{name: "zero workers is valid (one per CPU)", mutate: func(c *Config) { c.Extract.Workers = 0 }},
		{name: "negative workers is invalid", mutate: func(c *Config) { c.Extract.Workers = -1 }, wantErr: "extract.workers must be >= 0, got -1"},
		{name: "empty database path", mutate: func(c *Config) { c.Database.Path = "" }, wantErr: "database.path cannot be empty"},
		{name: "empty sizes path", mutate: func(c *Config) { c.Corpus.SizesPath = "" }, wantErr: "corpus.sizes_path"},
		{name: "no repository and no checkout", mutate: func(c *Config) { c.Corpus.RepositoryURL = "" }, wantErr: "corpus.repository_url"},
		{name: "local checkout needs no repository", mutate: func(c *Config) {
			c.Corpus.RepositoryURL = ""
			c.Corpus.LocalPath = "/src/docs"
		}},
		{name: "empty branch when cloning", mutate: func(c *Config) { c.Corpus.Branch = "" }, wantErr: "corpus.branch"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := valid()
			tt.mutate(&cfg)
			err := cfg.Validate()
			if tt.wantErr == "" {
				assert.NoError(t, err)
				return
			}
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.wantErr)
		})
	}
}

func TestUnknownKeys(t *testing.T) {
	path := filepath.Join(t.TempDir(), "am.toml")
	content := `
[extract]
worker = 4
workers = 2

[corpus]
branch = "main"
mirror = "x"
`
	require.NoError(t, os.WriteFile(path, []byte(content), DefaultFilePermissions))

	keys, err := UnknownKeys(path)
	require.NoError(t, err)
	assert.Equal(t, []string{"corpus.mirror", "extract.worker"}, keys)
}

func TestUnknownKeys_RenderedDefaults(t *testing.T) {
	v := viper.New()
	SetDefaults(v)
	cfg, err := LoadWithViper(v)
	require.NoError(t, err)

	data, err := Render(cfg, "toml")
	require.NoError(t, err)

	path := filepath.Join(t.TempDir(), "am.toml")
	require.NoError(t, os.WriteFile(path, data, DefaultFilePermissions))

	keys, err := UnknownKeys(path)
	require.NoError(t, err)
	assert.Empty(t, keys, "every rendered key must be known")
}

func TestRender(t *testing.T) {
	cfg := &Config{Database: DatabaseConfig{Path: "x.db"}, Extract: ExtractConfig{Workers: 3}}

	data, err := Render(cfg, "yaml")
	require.NoError(t, err)
	var back Config
	require.NoError(t, yaml.Unmarshal(data, &back))
	assert.Equal(t, 3, back.Extract.Workers)

	data, err = Render(cfg, "json")
	require.NoError(t, err)
	assert.Contains(t, string(data), `"path": "x.db"`)

	data, err = Render(cfg, "toml")
	require.NoError(t, err)
	assert.Contains(t, string(data), "[database]")

	_, err = Render(cfg, "ini")
	assert.Error(t, err)
}
