package am

import (
	"sort"

	"github.com/BurntSushi/toml"
	"github.com/teranos/azsku/errors"
)

// UnknownKeys decodes the TOML file at path into Config and returns the keys
// it contains that Config does not declare, sorted. Viper silently ignores
// such keys, so typos like `extract.worker` would otherwise go unnoticed.
func UnknownKeys(path string) ([]string, error) {
	var cfg tomlConfig
	md, err := toml.DecodeFile(path, &cfg)
	if err != nil {
		return nil, errors.Wrapf(err, "failed to decode %s", path)
	}

	var keys []string
	for _, key := range md.Undecoded() {
		keys = append(keys, key.String())
	}
	sort.Strings(keys)
	return keys, nil
}

// tomlConfig mirrors Config with BurntSushi field names so undecoded keys can
// be detected. Kept in sync with Config by TestUnknownKeys_RenderedDefaults.
type tomlConfig struct {
	Database struct {
		Path string `toml:"path"`
	} `toml:"database"`
	Corpus struct {
		RepositoryURL     string `toml:"repository_url"`
		Branch            string `toml:"branch"`
		LocalPath         string `toml:"local_path"`
		CloneDir          string `toml:"clone_dir"`
		SizesPath         string `toml:"sizes_path"`
		ShallowClone      bool   `toml:"shallow_clone"`
		BlockPrivateHosts bool   `toml:"block_private_hosts"`
	} `toml:"corpus"`
	Extract struct {
		Workers       int  `toml:"workers"`
		FailFast      bool `toml:"fail_fast"`
		DryRun        bool `toml:"dry_run"`
		SkipUnchanged bool `toml:"skip_unchanged"`
	} `toml:"extract"`
	Metrics struct {
		Textfile string `toml:"textfile"`
	} `toml:"metrics"`
}
