package commands

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/teranos/azsku/am"
	"github.com/teranos/azsku/corpus"
	"github.com/teranos/azsku/logger"
)

// addCorpusFlags registers the flags selecting where documents come from.
func addCorpusFlags(cmd *cobra.Command) {
	cmd.Flags().String("repo", "", "Path to an existing documentation checkout (overrides corpus.local_path)")
	cmd.Flags().Bool("clone", false, "Clone (or update) corpus.repository_url into corpus.clone_dir")
}

// openSource opens the documentation checkout selected by flags and config:
// --repo, then --clone, then corpus.local_path, then the clone directory.
func openSource(ctx context.Context, cmd *cobra.Command, cfg *am.Config) (*corpus.Source, error) {
	repo, _ := cmd.Flags().GetString("repo")
	clone, _ := cmd.Flags().GetBool("clone")
	log := logger.ComponentLogger("corpus")

	switch {
	case repo != "":
		return corpus.Open(repo, cfg.Corpus.SizesPath, log)
	case clone:
		return corpus.Clone(ctx, corpus.CloneOptions{
			URL:               cfg.Corpus.RepositoryURL,
			Branch:            cfg.Corpus.Branch,
			Dir:               cfg.Corpus.CloneDir,
			Shallow:           cfg.Corpus.ShallowClone,
			BlockPrivateHosts: cfg.Corpus.BlockPrivateHosts,
		}, cfg.Corpus.SizesPath, log)
	case cfg.Corpus.LocalPath != "":
		return corpus.Open(cfg.Corpus.LocalPath, cfg.Corpus.SizesPath, log)
	case corpus.IsGitRepository(cfg.Corpus.CloneDir):
		return corpus.Open(cfg.Corpus.CloneDir, cfg.Corpus.SizesPath, log)
	default:
		return nil, fmt.Errorf("no documentation checkout: pass --repo PATH, --clone, or set corpus.local_path")
	}
}
