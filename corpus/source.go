// Package corpus provides the documentation checkout the extractor reads:
// cloning or opening the git repository, discovering markdown documents under
// the sizes tree and dating them by the last commit that touched them.
package corpus

import (
	"context"
	"io/fs"
	"os"
	"path"
	"path/filepath"
	"sync"
	"time"

	"github.com/bmatcuk/doublestar/v4"
	"github.com/go-git/go-git/v5"
	"github.com/go-git/go-git/v5/plumbing"
	"github.com/go-git/go-git/v5/plumbing/transport/client"
	githttp "github.com/go-git/go-git/v5/plumbing/transport/http"
	"go.uber.org/zap"

	"github.com/teranos/azsku/docgraph"
	"github.com/teranos/azsku/errors"
	"github.com/teranos/azsku/internal/httpclient"
	"github.com/teranos/azsku/logger"
)

// DocumentPattern selects the files handed to the document graph.
const DocumentPattern = "**/*.md"

// Source is a checkout of the documentation repository.
type Source struct {
	root      string // repository root on disk
	sizesPath string // slash separated, relative to root
	repo      *git.Repository
	logger    *zap.SugaredLogger

	mu    sync.Mutex
	dates map[string]time.Time
}

// CloneOptions configures Clone.
type CloneOptions struct {
	URL     string
	Branch  string
	Dir     string
	Shallow bool
	// BlockPrivateHosts refuses remotes on loopback or private networks.
	BlockPrivateHosts bool
}

// Clone clones the repository into opts.Dir, or pulls it when a clone
// already exists there.
func Clone(ctx context.Context, opts CloneOptions, sizesPath string, log *zap.SugaredLogger) (*Source, error) {
	log = logger.OrNop(log)
	if opts.URL == "" || opts.Dir == "" {
		return nil, errors.Wrap(errors.ErrInvalidRequest, "clone needs a repository URL and a directory")
	}
	if err := installRemoteClient(opts); err != nil {
		return nil, err
	}

	if IsGitRepository(opts.Dir) {
		log.Infow("Updating existing clone", logger.FieldPath, opts.Dir, logger.FieldBranch, opts.Branch)
		repo, err := git.PlainOpen(opts.Dir)
		if err != nil {
			return nil, errors.Wrapf(err, "failed to open repository %s", opts.Dir)
		}
		wt, err := repo.Worktree()
		if err != nil {
			return nil, errors.Wrap(err, "failed to get worktree")
		}
		err = wt.PullContext(ctx, &git.PullOptions{
			RemoteName:    git.DefaultRemoteName,
			ReferenceName: branchRef(opts.Branch),
			SingleBranch:  true,
		})
		if err != nil && !errors.Is(err, git.NoErrAlreadyUpToDate) {
			return nil, errors.Wrapf(err, "failed to pull %s", opts.Dir)
		}
		return newSource(opts.Dir, sizesPath, repo, log), nil
	}

	depth := 0
	if opts.Shallow {
		depth = 1
	}
	log.Infow("Cloning repository",
		"url", opts.URL,
		logger.FieldBranch, opts.Branch,
		logger.FieldPath, opts.Dir,
		"shallow", opts.Shallow)
	repo, err := git.PlainCloneContext(ctx, opts.Dir, false, &git.CloneOptions{
		URL:           opts.URL,
		ReferenceName: branchRef(opts.Branch),
		SingleBranch:  true,
		Depth:         depth,
	})
	if err != nil {
		return nil, errors.Wrapf(err, "failed to clone %s", opts.URL)
	}
	return newSource(opts.Dir, sizesPath, repo, log), nil
}

// installRemoteClient routes go-git's smart-HTTP transport through a client
// restricted to the remote's scheme.
func installRemoteClient(opts CloneOptions) error {
	hc := httpclient.New(httpclient.Options{BlockPrivateHosts: opts.BlockPrivateHosts})
	remote, err := hc.ValidateRemote(opts.URL)
	if err != nil {
		return errors.Wrap(err, "refusing to clone")
	}
	client.InstallProtocol(remote.Scheme, githttp.NewClient(hc.Client))
	return nil
}

func branchRef(branch string) plumbing.ReferenceName {
	if branch == "" {
		return ""
	}
	return plumbing.NewBranchReferenceName(branch)
}

// Open uses an existing checkout at root. A directory that is not a git
// repository is accepted; its documents are dated by file modification time.
func Open(root, sizesPath string, log *zap.SugaredLogger) (*Source, error) {
	log = logger.OrNop(log)
	info, err := os.Stat(root)
	if err != nil {
		return nil, errors.Wrapf(err, "failed to open corpus %s", root)
	}
	if !info.IsDir() {
		return nil, errors.Wrapf(errors.ErrInvalidRequest, "corpus %s is not a directory", root)
	}

	repo, err := git.PlainOpen(root)
	switch {
	case errors.Is(err, git.ErrRepositoryNotExists):
		log.Warnw("Corpus is not a git repository, dating documents by modification time", logger.FieldPath, root)
		repo = nil
	case err != nil:
		return nil, errors.Wrapf(err, "failed to open repository %s", root)
	}
	return newSource(root, sizesPath, repo, log), nil
}

func newSource(root, sizesPath string, repo *git.Repository, log *zap.SugaredLogger) *Source {
	return &Source{
		root:      root,
		sizesPath: path.Clean(filepath.ToSlash(sizesPath)),
		repo:      repo,
		logger:    log,
		dates:     make(map[string]time.Time),
	}
}

// IsGitRepository checks if a path is a git repository
func IsGitRepository(path string) bool {
	_, err := git.PlainOpen(path)
	return err == nil
}

// Root returns the repository root on disk.
func (s *Source) Root() string { return s.root }

// corpusRoot is the repository-relative directory documents are addressed
// from: the parent of the sizes tree, so links to sibling trees resolve.
func (s *Source) corpusRoot() string { return path.Dir(s.sizesPath) }

// SizesDir returns the corpus-relative sizes directory.
func (s *Source) SizesDir() string { return path.Base(s.sizesPath) }

// Discover reads every markdown document below the corpus root. Only
// documents inside the sizes tree are dated.
func (s *Source) Discover(ctx context.Context) ([]docgraph.Document, error) {
	base := filepath.Join(s.root, filepath.FromSlash(s.corpusRoot()))
	fsys := os.DirFS(base)

	if _, err := fs.Stat(fsys, s.SizesDir()); err != nil {
		return nil, errors.Wrapf(errors.ErrNotFound, "sizes directory %s under %s", s.SizesDir(), base)
	}

	matches, err := doublestar.Glob(fsys, DocumentPattern, doublestar.WithFilesOnly())
	if err != nil {
		return nil, errors.Wrapf(err, "failed to discover documents under %s", base)
	}

	docs := make([]docgraph.Document, 0, len(matches))
	for _, rel := range matches {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		content, err := fs.ReadFile(fsys, rel)
		if err != nil {
			return nil, errors.Wrapf(err, "failed to read %s", rel)
		}
		doc := docgraph.Document{Path: rel, Content: content}
		if inTree(rel, s.SizesDir()) {
			if doc.LastModified, err = s.LastCommit(rel); err != nil {
				return nil, err
			}
		}
		docs = append(docs, doc)
	}

	s.logger.Infow("Discovered documents",
		logger.FieldCount, len(docs),
		logger.FieldPath, base)
	return docs, nil
}

// Load discovers the documents and builds the document graph corpus.
func (s *Source) Load(ctx context.Context) (*docgraph.Corpus, error) {
	docs, err := s.Discover(ctx)
	if err != nil {
		return nil, err
	}
	return docgraph.NewCorpus(s.SizesDir(), docs), nil
}

func inTree(rel, dir string) bool {
	return len(rel) > len(dir) && rel[:len(dir)] == dir && rel[len(dir)] == '/'
}

// LastCommit returns when the corpus-relative document was last changed:
// the committer time of the newest commit touching it, or the file
// modification time outside a git repository. Results are memoized.
func (s *Source) LastCommit(rel string) (time.Time, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if t, ok := s.dates[rel]; ok {
		return t, nil
	}
	repoPath := path.Join(s.corpusRoot(), rel)

	var t time.Time
	if s.repo == nil {
		info, err := os.Stat(filepath.Join(s.root, filepath.FromSlash(repoPath)))
		if err != nil {
			return time.Time{}, errors.Wrapf(err, "failed to stat %s", repoPath)
		}
		t = info.ModTime().UTC()
	} else {
		commits, err := s.repo.Log(&git.LogOptions{
			FileName: &repoPath,
			Order:    git.LogOrderCommitterTime,
		})
		if err != nil {
			return time.Time{}, errors.Wrapf(err, "failed to read history of %s", repoPath)
		}
		commit, err := commits.Next()
		commits.Close()
		if err != nil {
			// Untracked or uncommitted files have no history yet
			s.logger.Debugw("No commit touches document", logger.FieldPath, repoPath, logger.FieldError, err)
		} else {
			t = commit.Committer.When.UTC()
		}
	}

	s.dates[rel] = t
	return t, nil
}
