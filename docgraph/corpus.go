package docgraph

import (
	"path"
	"regexp"
	"sort"
	"strings"
	"time"

	"github.com/teranos/azsku/errors"
)

// Handle refers to a document inside a Corpus.
type Handle int

// Document is one discovered file. Path is slash separated and relative to
// the corpus root.
type Document struct {
	Handle       Handle
	Path         string
	Descriptor   Descriptor
	Content      []byte
	LastModified time.Time
}

// Dir returns the directory of the document relative to the corpus root.
func (d *Document) Dir() string { return path.Dir(d.Path) }

// Stem returns the file name without extension.
func (d *Document) Stem() string {
	return strings.TrimSuffix(path.Base(d.Path), path.Ext(d.Path))
}

// Unit is one logical series: a document and one of its identifiers.
// Multi-series documents yield one unit per identifier.
type Unit struct {
	Handle     Handle
	Identifier string
}

var skuDirPattern = regexp.MustCompile(`^([a-z]*?-[a-z-]+)$`)

// Corpus is an immutable arena of classified documents.
type Corpus struct {
	sizesDir string
	docs     []*Document
	byPath   map[string]Handle
	byName   map[string][]Handle
	byDir    map[string][]Handle
}

// NewCorpus builds a corpus from documents. Duplicate paths are dropped,
// the rest are sorted by "<parent>/<name>" and receive handles in that order.
// sizesDir is the corpus-relative directory holding the SKU directories.
func NewCorpus(sizesDir string, docs []Document) *Corpus {
	c := &Corpus{
		sizesDir: path.Clean(sizesDir),
		byPath:   make(map[string]Handle),
		byName:   make(map[string][]Handle),
		byDir:    make(map[string][]Handle),
	}

	seen := make(map[string]bool, len(docs))
	unique := make([]Document, 0, len(docs))
	for _, d := range docs {
		d.Path = path.Clean(d.Path)
		if seen[d.Path] {
			continue
		}
		seen[d.Path] = true
		if d.Descriptor.Name == "" {
			d.Descriptor = Classify(path.Base(d.Path))
		}
		unique = append(unique, d)
	}
	sort.SliceStable(unique, func(i, j int) bool {
		ki, kj := sortKey(unique[i].Path), sortKey(unique[j].Path)
		if ki != kj {
			return ki < kj
		}
		return unique[i].Path < unique[j].Path
	})

	for i := range unique {
		d := unique[i]
		d.Handle = Handle(i)
		c.docs = append(c.docs, &d)
		c.byPath[d.Path] = d.Handle
		c.byName[path.Base(d.Path)] = append(c.byName[path.Base(d.Path)], d.Handle)
		c.byDir[d.Dir()] = append(c.byDir[d.Dir()], d.Handle)
	}
	return c
}

func sortKey(p string) string {
	return path.Base(path.Dir(p)) + "/" + path.Base(p)
}

// Len returns the number of documents.
func (c *Corpus) Len() int { return len(c.docs) }

// Get returns the document for h, or nil for an unknown handle.
func (c *Corpus) Get(h Handle) *Document {
	if h < 0 || int(h) >= len(c.docs) {
		return nil
	}
	return c.docs[h]
}

// Documents returns all documents in handle order.
func (c *Corpus) Documents() []*Document {
	return append([]*Document(nil), c.docs...)
}

// ByPath looks a document up by its corpus-relative path.
func (c *Corpus) ByPath(p string) (*Document, bool) {
	h, ok := c.byPath[path.Clean(p)]
	if !ok {
		return nil, false
	}
	return c.docs[h], true
}

// ByName returns every document with the given base name.
func (c *Corpus) ByName(name string) []*Document {
	return c.collect(c.byName[name])
}

// InDir returns the documents directly inside dir.
func (c *Corpus) InDir(dir string) []*Document {
	return c.collect(c.byDir[path.Clean(dir)])
}

func (c *Corpus) collect(handles []Handle) []*Document {
	out := make([]*Document, 0, len(handles))
	for _, h := range handles {
		out = append(out, c.docs[h])
	}
	return out
}

// Resolve follows a relative link from a document. Fragments and queries are
// ignored. A link leaving the corpus or naming a missing file is ErrResolution.
func (c *Corpus) Resolve(from Handle, link string) (*Document, error) {
	base := c.Get(from)
	if base == nil {
		return nil, errors.NewResolutionError("unknown document handle %d", from)
	}
	target := link
	if i := strings.IndexAny(target, "#?"); i >= 0 {
		target = target[:i]
	}
	if target == "" || strings.Contains(target, "://") {
		return nil, errors.NewResolutionError("link %q from %s is not a relative document link", link, base.Path)
	}
	resolved := path.Join(base.Dir(), target)
	if strings.HasPrefix(target, "/") {
		resolved = path.Clean(strings.TrimPrefix(target, "/"))
	}
	doc, ok := c.ByPath(resolved)
	if !ok {
		return nil, errors.NewResolutionError("link %q from %s: %s not in corpus", link, base.Path, resolved)
	}
	return doc, nil
}

// SKUDirs returns the corpus-relative SKU directories below the sizes
// directory, sorted.
func (c *Corpus) SKUDirs() []string {
	set := map[string]bool{}
	for dir := range c.byDir {
		if path.Dir(dir) != c.sizesDir {
			continue
		}
		name := path.Base(dir)
		if strings.HasPrefix(name, "migration") || !skuDirPattern.MatchString(name) {
			continue
		}
		set[dir] = true
	}
	dirs := make([]string, 0, len(set))
	for d := range set {
		dirs = append(dirs, d)
	}
	sort.Strings(dirs)
	return dirs
}

// Families returns the family documents found in SKU directories.
func (c *Corpus) Families() []*Document {
	var out []*Document
	for _, dir := range c.SKUDirs() {
		for _, d := range c.InDir(dir) {
			if d.Descriptor.Class == ClassFamily {
				out = append(out, d)
			}
		}
	}
	return out
}

// SeriesUnits returns one unit per identifier of every series and
// multi-series document, in handle order.
func (c *Corpus) SeriesUnits() []Unit {
	var units []Unit
	for _, d := range c.docs {
		if !d.Descriptor.IsSeriesLike() {
			continue
		}
		for _, id := range d.Descriptor.Identifiers {
			units = append(units, Unit{Handle: d.Handle, Identifier: id})
		}
	}
	return units
}
