package pipeline

import (
	"context"

	"go.uber.org/zap"

	"github.com/teranos/azsku/assemble"
	"github.com/teranos/azsku/errors"
	"github.com/teranos/azsku/ledger"
	"github.com/teranos/azsku/logger"
	"github.com/teranos/azsku/storage"
)

// collector owns the report and every store write of a run.
type collector struct {
	runner   *Runner
	runID    string
	report   *Report
	metrics  *runMetrics
	current  map[string]string
	families map[string]bool
	log      *zap.SugaredLogger
	done     int
}

// collect drains results until the channel closes. After the first store
// error it cancels the workers and discards the rest.
func (c *collector) collect(ctx context.Context, cancel context.CancelFunc, results <-chan *unitResult) error {
	var firstErr error
	for res := range results {
		if firstErr != nil {
			continue
		}
		if err := c.handle(ctx, res); err != nil {
			firstErr = err
			cancel()
			continue
		}
		c.done++
		c.runner.progress.Do(func() {
			c.log.Infow("Extraction progress",
				"done", c.done,
				logger.FieldTotalCount, c.report.Units,
				"failed", c.report.Failed)
		})
	}
	return firstErr
}

func (c *collector) handle(ctx context.Context, res *unitResult) error {
	switch {
	case res.skipped:
		c.report.Skipped++
		c.metrics.units.WithLabelValues("skipped").Inc()
		return nil
	case res.preview:
		c.report.PublicPreview++
		c.metrics.units.WithLabelValues("preview").Inc()
		c.log.Infow("Skipping public preview series",
			logger.FieldDocument, res.doc.Path,
			logger.FieldIdentifier, res.unit.Identifier)
		return nil
	case res.err != nil:
		c.failed(res, res.err)
		return nil
	}

	c.metrics.duration.Observe(res.elapsed.Seconds())

	records := make([]assemble.Record, 0, len(res.variants)+2)
	if !c.families[res.family.Name] {
		c.families[res.family.Name] = true
		records = append(records, res.family)
	}
	records = append(records, res.series)
	for _, v := range res.variants {
		records = append(records, v)
	}

	for _, rec := range records {
		v, err := c.write(ctx, rec)
		if err != nil {
			if errors.Is(err, errors.ErrConflict) && !c.runner.opts.FailFast {
				c.failed(res, err)
				return nil
			}
			return err
		}
		c.report.count(rec.EntityKind(), rec.EntityName(), v)
		c.metrics.entities.WithLabelValues(rec.EntityKind(), v.String()).Inc()
	}
	c.report.Extracted++
	c.metrics.units.WithLabelValues("extracted").Inc()

	if c.runner.opts.DryRun {
		return nil
	}
	if err := c.runner.store.PutSeriesSource(ctx, storage.SeriesSource{
		Path:         res.key,
		Composite:    res.composite,
		Dependencies: res.deps,
	}); err != nil {
		return err
	}
	for _, p := range res.deps {
		if err := c.runner.store.PutDocumentFingerprint(ctx, p, c.current[p]); err != nil {
			return err
		}
	}
	return nil
}

func (c *collector) write(ctx context.Context, rec assemble.Record) (ledger.Verdict, error) {
	if c.runner.opts.DryRun {
		return c.runner.store.Check(ctx, rec)
	}
	return c.runner.store.Upsert(ctx, rec, c.runID)
}

func (c *collector) failed(res *unitResult, err error) {
	c.report.fail(res.doc.Path, res.unit.Identifier, err)
	c.metrics.units.WithLabelValues("failed").Inc()
	c.metrics.failures.WithLabelValues(errors.Kind(err)).Inc()
	c.log.Warnw("Series extraction failed",
		logger.FieldDocument, res.doc.Path,
		logger.FieldIdentifier, res.unit.Identifier,
		logger.FieldErrorKind, errors.Kind(err),
		logger.FieldError, err)
}
