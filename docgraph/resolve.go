package docgraph

import (
	"context"
	"sort"
	"strconv"
	"strings"
	"sync"

	"go.uber.org/zap"
	"golang.org/x/sync/singleflight"

	"github.com/teranos/azsku/ast"
	"github.com/teranos/azsku/errors"
	"github.com/teranos/azsku/table"
)

// TreeSource yields the parsed tree of a corpus document.
type TreeSource interface {
	Tree(ctx context.Context, h Handle) (*ast.Document, error)
}

// SeriesView is everything the assembler needs about one series, with the
// documents it was read from.
type SeriesView struct {
	Unit     Unit
	Document *Document
	Name     string
	Family   *Family
	Tree     *ast.Document

	Summary            string
	Confidential       bool
	PreviousGeneration bool
	PublicPreview      bool

	SpecTable     *ast.Node
	Sheet         *table.Sheet
	InstanceNames []string

	// own host specs table, excluded from the size tables
	ownSpecTable *ast.Node

	// Sources lists every document read, series document first.
	Sources []Handle
}

func (v *SeriesView) addSource(h Handle) {
	for _, s := range v.Sources {
		if s == h {
			return
		}
	}
	v.Sources = append(v.Sources, h)
}

// Resolver builds series views over one corpus. Family pages are parsed once
// and shared between concurrent callers.
type Resolver struct {
	corpus *Corpus
	trees  TreeSource
	logger *zap.SugaredLogger

	group    singleflight.Group
	mu       sync.RWMutex
	families map[Handle]*Family
}

// NewResolver creates a resolver.
func NewResolver(corpus *Corpus, trees TreeSource, logger *zap.SugaredLogger) *Resolver {
	if logger == nil {
		logger = zap.NewNop().Sugar()
	}
	return &Resolver{
		corpus:   corpus,
		trees:    trees,
		logger:   logger,
		families: make(map[Handle]*Family),
	}
}

// Corpus returns the corpus the resolver works on.
func (r *Resolver) Corpus() *Corpus { return r.corpus }

// Family returns the parsed family page for a handle.
func (r *Resolver) Family(ctx context.Context, h Handle) (*Family, error) {
	r.mu.RLock()
	f, ok := r.families[h]
	r.mu.RUnlock()
	if ok {
		return f, nil
	}

	v, err, _ := r.group.Do(strconv.Itoa(int(h)), func() (any, error) {
		r.mu.RLock()
		f, ok := r.families[h]
		r.mu.RUnlock()
		if ok {
			return f, nil
		}
		doc := r.corpus.Get(h)
		if doc == nil {
			return nil, errors.NewResolutionError("unknown family handle %d", h)
		}
		tree, err := r.trees.Tree(ctx, h)
		if err != nil {
			return nil, err
		}
		f, err = LoadFamily(doc, tree)
		if err != nil {
			return nil, err
		}
		r.mu.Lock()
		r.families[h] = f
		r.mu.Unlock()
		return f, nil
	})
	if err != nil {
		return nil, err
	}
	return v.(*Family), nil
}

// FamilyOf resolves and loads the family of a series identifier.
func (r *Resolver) FamilyOf(ctx context.Context, identifier string) (*Family, error) {
	doc, err := ResolveFamily(identifier, r.corpus.Families())
	if err != nil {
		return nil, err
	}
	return r.Family(ctx, doc.Handle)
}

// Resolve builds the view of one series unit. A public-preview series comes
// back with PublicPreview set and nothing else resolved.
func (r *Resolver) Resolve(ctx context.Context, unit Unit) (*SeriesView, error) {
	doc := r.corpus.Get(unit.Handle)
	if doc == nil {
		return nil, errors.NewResolutionError("unknown series handle %d", unit.Handle)
	}
	full, err := r.trees.Tree(ctx, unit.Handle)
	if err != nil {
		return nil, err
	}

	name, err := NameFromTitle(full.Meta.Title, unit.Identifier, doc.Stem())
	if err != nil {
		return nil, err
	}
	multi := doc.Descriptor.Class == ClassMultiSeries
	tree := full
	if multi {
		tree = Reduce(full, name)
	}

	view := &SeriesView{Unit: unit, Document: doc, Name: name, Tree: tree}
	view.addSource(doc.Handle)

	if len(tree.Headings) > 0 && strings.Contains(strings.ToLower(ast.Text(tree.Headings[0])), "public preview") {
		view.PublicPreview = true
		return view, nil
	}

	family, err := r.FamilyOf(ctx, unit.Identifier)
	if err != nil {
		return nil, err
	}
	view.Family = family
	view.PreviousGeneration = !family.HasChild(unit.Identifier)
	view.addSource(family.Handle)

	// Current series read their companions from the family page; previous
	// generation series only from their own document.
	var companions linkSource
	if !view.PreviousGeneration {
		companions = linkSource{family.Handle, family.Tree}
	} else if !multi {
		companions = linkSource{doc.Handle, tree}
	}

	if err := r.summary(ctx, view, companions); err != nil {
		return nil, err
	}
	if err := r.specs(ctx, view, companions); err != nil {
		return nil, err
	}
	if err := instanceNames(view); err != nil {
		return nil, err
	}

	r.logger.Debugw("Resolved series",
		"series", view.Name,
		"family", family.Name,
		"previous_generation", view.PreviousGeneration,
		"sources", len(view.Sources))
	return view, nil
}

type linkSource struct {
	handle Handle
	tree   *ast.Document
}

func (r *Resolver) summary(ctx context.Context, view *SeriesView, src linkSource) error {
	tree := view.Tree
	if !view.PreviousGeneration {
		companion, err := r.requiredCompanion(ctx, src, "summary", view.Name)
		if err != nil {
			return err
		}
		tree = companion.tree
		view.addSource(companion.handle)
	}
	view.Summary = SummaryText(tree)
	view.Confidential = strings.Contains(strings.ToLower(view.Summary), "confidential")
	return nil
}

func (r *Resolver) specs(ctx context.Context, view *SeriesView, src linkSource) error {
	var companion *linkSource
	var err error
	if view.PreviousGeneration {
		companion, err = r.companion(ctx, src, "specs", view.Name)
	} else {
		companion, err = r.requiredCompanion(ctx, src, "specs", view.Name)
	}
	if err != nil {
		return err
	}
	switch {
	case companion != nil:
		if len(companion.tree.Tables) == 0 {
			return errors.NewGrammarViolation("specs companion %s has no table", r.corpus.Get(companion.handle).Path)
		}
		view.SpecTable = companion.tree.Tables[0]
		view.addSource(companion.handle)
	case len(view.Tree.Tables) > 0:
		view.SpecTable = view.Tree.Tables[0]
		view.ownSpecTable = view.SpecTable
	default:
		return errors.NewResolutionError("no host specs table for series %s", view.Name)
	}

	sheet, err := table.SpecSheet(view.SpecTable)
	if err != nil {
		return errors.Wrap(err, "host specs")
	}
	if table.IsAlternativeLayout(sheet) {
		sheet, err = r.alternativeSpecs(ctx, view)
		if err != nil {
			return err
		}
	}
	view.Sheet = sheet
	return nil
}

func (r *Resolver) alternativeSpecs(ctx context.Context, view *SeriesView) (*table.Sheet, error) {
	name := view.Document.Stem() + "-specs.md"
	candidates := r.corpus.ByName(name)
	if len(candidates) == 0 {
		return nil, errors.NewResolutionError("alternative specs %s not in corpus", name)
	}
	alt := candidates[0]
	tree, err := r.trees.Tree(ctx, alt.Handle)
	if err != nil {
		return nil, err
	}
	if len(tree.Tables) == 0 {
		return nil, errors.NewGrammarViolation("alternative specs %s has no table", alt.Path)
	}
	view.SpecTable = tree.Tables[0]
	view.addSource(alt.Handle)
	sheet, err := table.SpecSheet(view.SpecTable)
	if err != nil {
		return nil, errors.Wrapf(err, "alternative specs %s", alt.Path)
	}
	return sheet, nil
}

// companion follows the include link of the given kind in src. Among matching
// links the one with the shortest text wins. No match, or no src, yields nil.
func (r *Resolver) companion(ctx context.Context, src linkSource, kind, name string) (*linkSource, error) {
	if src.tree == nil {
		return nil, nil
	}
	link := MatchIncludeLink(src.tree.Links, kind, name)
	if link == nil {
		return nil, nil
	}
	doc, err := r.corpus.Resolve(src.handle, link.Destination)
	if err != nil {
		return nil, errors.Wrapf(err, "%s companion of %s", kind, name)
	}
	tree, err := r.trees.Tree(ctx, doc.Handle)
	if err != nil {
		return nil, err
	}
	return &linkSource{doc.Handle, tree}, nil
}

func (r *Resolver) requiredCompanion(ctx context.Context, src linkSource, kind, name string) (*linkSource, error) {
	companion, err := r.companion(ctx, src, kind, name)
	if err != nil {
		return nil, err
	}
	if companion == nil {
		return nil, errors.NewResolutionError("no %s include for series %s in %s", kind, name, r.corpus.Get(src.handle).Path)
	}
	return companion, nil
}

// MatchIncludeLink returns the include link of the given kind for a series
// name, preferring the shortest link text, or nil.
func MatchIncludeLink(links []*ast.Node, kind, name string) *ast.Node {
	key := strings.ReplaceAll(strings.ToLower(name), "_", "")
	var matches []*ast.Node
	for _, l := range links {
		url := l.Destination
		if strings.Contains(url, kind) && strings.Contains(url, "includes") &&
			strings.Contains(url, "series") && strings.Contains(url, key) {
			matches = append(matches, l)
		}
	}
	if len(matches) == 0 {
		return nil
	}
	sort.SliceStable(matches, func(i, j int) bool {
		return len(ast.Stringify(matches[i])) < len(ast.Stringify(matches[j]))
	})
	return matches[0]
}

// SummaryText returns the paragraphs directly after the first heading, or all
// paragraphs when the document has no heading.
func SummaryText(doc *ast.Document) string {
	var parts []string
	if len(doc.Headings) == 0 {
		for _, p := range doc.Paragraphs {
			parts = append(parts, ast.Text(p))
		}
		return strings.Join(parts, "\n")
	}
	for n := doc.Headings[0].Next(); n != nil && n.Is(ast.KindParagraph); n = n.Next() {
		parts = append(parts, ast.Text(n))
	}
	return strings.Join(parts, "\n")
}

func instanceNames(view *SeriesView) error {
	if len(view.Tree.Tables) == 0 {
		return errors.NewGrammarViolation("series %s has no size table", view.Name)
	}
	var best []string
	found := false
	for i, t := range view.Tree.Tables {
		if t == view.ownSpecTable && len(view.Tree.Tables) > 1 {
			continue
		}
		names, err := table.FirstColumn(t)
		if err != nil {
			return errors.Wrapf(err, "series %s table %d", view.Name, i)
		}
		if !found || len(names) < len(best) {
			best, found = names, true
		}
	}
	view.InstanceNames = best
	return nil
}
