package am

import (
	"net/url"

	"github.com/teranos/azsku/errors"
)

// Validate checks that the configuration is valid
func (c *Config) Validate() error {
	if c.Database.Path == "" {
		return errors.New("database.path cannot be empty")
	}

	// Workers: 0 = one per CPU, negative = invalid
	if c.Extract.Workers < 0 {
		return errors.Newf("extract.workers must be >= 0, got %d", c.Extract.Workers)
	}

	if c.Corpus.SizesPath == "" {
		return errors.New("corpus.sizes_path cannot be empty")
	}

	// Either an existing checkout or something to clone
	if c.Corpus.LocalPath == "" {
		if c.Corpus.RepositoryURL == "" {
			return errors.New("corpus.repository_url cannot be empty when corpus.local_path is not set")
		}
		if _, err := url.Parse(c.Corpus.RepositoryURL); err != nil {
			return errors.Wrapf(err, "corpus.repository_url is not a valid URL: %q", c.Corpus.RepositoryURL)
		}
		if c.Corpus.Branch == "" {
			return errors.New("corpus.branch cannot be empty when cloning")
		}
		if c.Corpus.CloneDir == "" {
			return errors.New("corpus.clone_dir cannot be empty when cloning")
		}
	}

	return nil
}
