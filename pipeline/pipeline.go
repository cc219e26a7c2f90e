// Package pipeline runs an extraction over a corpus: series units are
// resolved and assembled by a bounded worker pool, and a single collector
// writes the resulting records to the store and builds the run report.
package pipeline

import (
	"context"
	"runtime"
	"sort"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"
	"golang.org/x/time/rate"

	"github.com/teranos/azsku/assemble"
	"github.com/teranos/azsku/capability"
	"github.com/teranos/azsku/docgraph"
	"github.com/teranos/azsku/errors"
	"github.com/teranos/azsku/ledger"
	"github.com/teranos/azsku/logger"
	"github.com/teranos/azsku/storage"
	"github.com/teranos/azsku/version"
)

// ProgressInterval defines how often progress is logged during a run
const ProgressInterval = 2 * time.Second

// Store is what a run needs from persistence. *storage.SQLStore implements it.
type Store interface {
	Check(ctx context.Context, rec assemble.Record) (ledger.Verdict, error)
	Upsert(ctx context.Context, rec assemble.Record, runID string) (ledger.Verdict, error)
	PutDocumentFingerprint(ctx context.Context, path, fingerprint string) error
	SeriesSource(ctx context.Context, path string) (*storage.SeriesSource, error)
	PutSeriesSource(ctx context.Context, src storage.SeriesSource) error
	StartRun(ctx context.Context, run *storage.Run) error
	FinishRun(ctx context.Context, run *storage.Run) error
	LastRun(ctx context.Context) (*storage.Run, error)
}

// Options configures a Runner.
type Options struct {
	Workers          int  // 0 = one per CPU
	FailFast         bool // abort on the first failed series
	DryRun           bool // check verdicts, never write
	SkipUnchanged    bool // skip series whose documents did not change since the last run
	ExtractorVersion string
	MetricsTextfile  string
}

// Runner extracts a corpus into a store.
type Runner struct {
	corpus   *docgraph.Corpus
	store    Store
	opts     Options
	logger   *zap.SugaredLogger
	progress *rate.Sometimes
	now      func() time.Time
}

// New creates a runner.
func New(corpus *docgraph.Corpus, store Store, opts Options, log *zap.SugaredLogger) *Runner {
	if opts.ExtractorVersion == "" {
		opts.ExtractorVersion = version.Version
	}
	return &Runner{
		corpus:   corpus,
		store:    store,
		opts:     opts,
		logger:   logger.OrNop(log),
		progress: &rate.Sometimes{Interval: ProgressInterval},
		now:      time.Now,
	}
}

func (r *Runner) workers() int {
	if r.opts.Workers > 0 {
		return r.opts.Workers
	}
	return runtime.GOMAXPROCS(0)
}

// unitResult carries one series unit from a worker to the collector.
type unitResult struct {
	unit docgraph.Unit
	doc  *docgraph.Document
	key  string

	skipped bool
	preview bool
	err     error

	family   *assemble.FamilyRecord
	series   *assemble.SeriesRecord
	variants []*assemble.VariantRecord

	composite string
	deps      []string
	elapsed   time.Duration
}

// sourceKey addresses a unit in the series source ledger. Units of a
// multi-series document share its path.
func sourceKey(doc *docgraph.Document, unit docgraph.Unit) string {
	if doc.Descriptor.Class == docgraph.ClassMultiSeries {
		return doc.Path + "#" + unit.Identifier
	}
	return doc.Path
}

// Run extracts every series unit of the corpus. Per-series failures are
// collected in the report unless FailFast is set; infrastructure failures
// abort the run. A run that aborts is not marked finished in the run log.
func (r *Runner) Run(ctx context.Context) (*Report, error) {
	runID := uuid.NewString()
	ctx = logger.WithComponent(logger.WithRunID(ctx, runID), "pipeline")
	log := logger.LoggerFromContext(ctx, r.logger)

	start := r.now()
	report := &Report{
		RunID:            runID,
		ExtractorVersion: r.opts.ExtractorVersion,
		DryRun:           r.opts.DryRun,
		Documents:        r.corpus.Len(),
		StartTime:        start,
	}

	skip, err := r.canSkip(ctx, log)
	if err != nil {
		return nil, err
	}

	run := &storage.Run{
		ID:               runID,
		ExtractorVersion: r.opts.ExtractorVersion,
		StartedAt:        start,
		DryRun:           r.opts.DryRun,
	}
	if err := r.store.StartRun(ctx, run); err != nil {
		return nil, err
	}

	current := make(map[string]string, r.corpus.Len())
	for _, d := range r.corpus.Documents() {
		current[d.Path] = ledger.DocumentFingerprint(d.Content)
	}

	units := r.corpus.SeriesUnits()
	report.Units = len(units)
	log.Infow("Starting extraction",
		"documents", report.Documents,
		"units", report.Units,
		"workers", r.workers(),
		"dry_run", r.opts.DryRun,
		"skip_unchanged", skip)

	trees := NewTrees(r.corpus)
	resolver := docgraph.NewResolver(r.corpus, trees, log.Named("docgraph"))
	metrics := newRunMetrics()

	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	results := make(chan *unitResult)
	collected := make(chan error, 1)
	c := &collector{
		runner:   r,
		runID:    runID,
		report:   report,
		metrics:  metrics,
		current:  current,
		families: make(map[string]bool),
		log:      log,
	}
	go func() { collected <- c.collect(ctx, cancel, results) }()

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(r.workers())
	for _, u := range units {
		u := u
		g.Go(func() error {
			return r.extract(gctx, resolver, u, skip, current, results)
		})
	}
	werr := g.Wait()
	close(results)
	runErr := <-collected
	if runErr == nil {
		runErr = werr
	}

	report.sort()
	report.EndTime = r.now()
	metrics.finish(start, report.EndTime)
	if err := metrics.writeTextfile(r.opts.MetricsTextfile); err != nil {
		log.Warnw("Failed to write metrics", "error", err)
	}

	log.Infow("Extraction finished",
		"units", report.Units,
		"extracted", report.Extracted,
		"skipped", report.Skipped,
		"failed", report.Failed,
		"new", report.New,
		"changed", report.Changed,
		"unchanged", report.Unchanged,
		"parsed_documents", trees.Parsed(),
		logger.FieldDurationMS, report.EndTime.Sub(start).Milliseconds())

	if runErr != nil {
		return report, runErr
	}

	run.FinishedAt = &report.EndTime
	run.Documents = report.Units
	run.Skipped = report.Skipped
	run.Failed = report.Failed
	run.New, run.Changed, run.Unchanged = report.New, report.Changed, report.Unchanged
	if err := r.store.FinishRun(context.WithoutCancel(ctx), run); err != nil {
		return report, err
	}
	return report, nil
}

// canSkip reports whether unchanged series may be skipped: the option is on
// and the last finished run used a compatible extractor version.
func (r *Runner) canSkip(ctx context.Context, log *zap.SugaredLogger) (bool, error) {
	if !r.opts.SkipUnchanged {
		return false, nil
	}
	last, err := r.store.LastRun(ctx)
	if errors.IsNotFoundError(err) {
		return false, nil
	}
	if err != nil {
		return false, err
	}
	if !version.Compatible(last.ExtractorVersion, r.opts.ExtractorVersion) {
		log.Infow("Extractor version changed since the last run, extracting everything",
			"previous", last.ExtractorVersion,
			"current", r.opts.ExtractorVersion)
		return false, nil
	}
	return true, nil
}

func (r *Runner) extract(ctx context.Context, resolver *docgraph.Resolver, u docgraph.Unit, skip bool, current map[string]string, results chan<- *unitResult) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	doc := r.corpus.Get(u.Handle)
	res := &unitResult{unit: u, doc: doc, key: sourceKey(doc, u)}
	started := time.Now()

	if skip {
		src, err := r.store.SeriesSource(ctx, res.key)
		switch {
		case err == nil:
			if composite, ok := ledger.Recompute(src.Dependencies, current); ok && composite == src.Composite {
				res.skipped = true
				return send(ctx, results, res)
			}
		case !errors.IsNotFoundError(err):
			return err
		}
	}

	err := r.build(ctx, resolver, res, current)
	res.elapsed = time.Since(started)
	if err != nil {
		if !errors.IsExtractionFailure(err) {
			return errors.Wrapf(err, "%s (%s)", doc.Path, u.Identifier)
		}
		res.err = err
	}
	if err := send(ctx, results, res); err != nil {
		return err
	}
	if res.err != nil && r.opts.FailFast {
		return errors.Wrapf(res.err, "%s (%s)", doc.Path, u.Identifier)
	}
	return nil
}

func send(ctx context.Context, results chan<- *unitResult, res *unitResult) error {
	select {
	case results <- res:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

// build resolves a unit and assembles its records.
func (r *Runner) build(ctx context.Context, resolver *docgraph.Resolver, res *unitResult, current map[string]string) error {
	view, err := resolver.Resolve(ctx, res.unit)
	if err != nil {
		return err
	}
	if view.PublicPreview {
		res.preview = true
		return nil
	}

	caps, layout, err := capability.Parse(view.Tree, view.Confidential)
	if err != nil {
		return errors.Wrapf(err, "capabilities of %s", view.Name)
	}

	in := assemble.SeriesInput{
		Name:               view.Name,
		Sheet:              view.Sheet,
		Capabilities:       caps,
		Confidential:       view.Confidential,
		PreviousGeneration: view.PreviousGeneration,
		InstanceNames:      view.InstanceNames,
		LastUpdated:        res.doc.LastModified,
	}
	if res.series, err = assemble.Series(in); err != nil {
		return err
	}
	if res.variants, err = assemble.Variants(in); err != nil {
		return err
	}
	if res.family, err = assemble.Family(res.series.FamilyID); err != nil {
		return err
	}

	deps := make(map[string]string, len(view.Sources))
	for _, h := range view.Sources {
		p := r.corpus.Get(h).Path
		deps[p] = current[p]
		res.deps = append(res.deps, p)
	}
	sort.Strings(res.deps)
	res.composite = ledger.CompositeFingerprint(deps)

	r.logger.Debugw("Assembled series",
		logger.FieldSeries, view.Name,
		logger.FieldFamily, res.family.Name,
		logger.FieldLayout, layout.String(),
		logger.FieldCount, len(res.variants))
	return nil
}
