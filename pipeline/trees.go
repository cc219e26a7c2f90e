package pipeline

import (
	"context"
	"strconv"
	"sync"
	"sync/atomic"

	"golang.org/x/sync/singleflight"

	"github.com/teranos/azsku/ast"
	"github.com/teranos/azsku/docgraph"
	"github.com/teranos/azsku/errors"
)

// Trees parses corpus documents on demand. Every document is parsed at most
// once per run; concurrent requests for the same handle share one parse and
// the resulting tree is read-only afterwards.
type Trees struct {
	corpus *docgraph.Corpus
	group  singleflight.Group
	mu     sync.RWMutex
	cache  map[docgraph.Handle]*ast.Document
	parsed atomic.Int64
}

// NewTrees creates a tree cache over corpus.
func NewTrees(corpus *docgraph.Corpus) *Trees {
	return &Trees{
		corpus: corpus,
		cache:  make(map[docgraph.Handle]*ast.Document),
	}
}

// Tree implements docgraph.TreeSource.
func (t *Trees) Tree(ctx context.Context, h docgraph.Handle) (*ast.Document, error) {
	t.mu.RLock()
	tree, ok := t.cache[h]
	t.mu.RUnlock()
	if ok {
		return tree, nil
	}

	v, err, _ := t.group.Do(strconv.Itoa(int(h)), func() (any, error) {
		t.mu.RLock()
		tree, ok := t.cache[h]
		t.mu.RUnlock()
		if ok {
			return tree, nil
		}
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		doc := t.corpus.Get(h)
		if doc == nil {
			return nil, errors.NewResolutionError("unknown document handle %d", h)
		}
		tree, err := ast.Parse(doc.Content)
		if err != nil {
			return nil, errors.Wrapf(err, "parse %s", doc.Path)
		}
		t.parsed.Add(1)
		t.mu.Lock()
		t.cache[h] = tree
		t.mu.Unlock()
		return tree, nil
	})
	if err != nil {
		return nil, err
	}
	return v.(*ast.Document), nil
}

// Parsed returns how many documents were parsed so far.
func (t *Trees) Parsed() int { return int(t.parsed.Load()) }
