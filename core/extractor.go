package core

import (
	"context"
	"math"
	"runtime"
	"sync"
	"time"

	"github.com/huangsam/tsfeat/core/features"
	"github.com/huangsam/tsfeat/core/table"
	"github.com/huangsam/tsfeat/schema"
	"go.uber.org/zap"
)

// Extractor runs the grouped and flat extraction paths over a worker pool.
// An Extractor is safe for concurrent use once built.
type Extractor struct {
	workers  int
	catalog  *features.Catalog
	fill     float64
	logger   *zap.Logger
	observer Observer
}

// Option configures an Extractor.
type Option func(*Extractor)

// WithWorkers sets the number of concurrent workers. Values below 1 are ignored.
func WithWorkers(n int) Option {
	return func(e *Extractor) {
		if n > 0 {
			e.workers = n
		}
	}
}

// WithCatalog sets the feature catalog applied to every series.
func WithCatalog(c *features.Catalog) Option {
	return func(e *Extractor) {
		if c != nil {
			e.catalog = c
		}
	}
}

// WithFillValue sets the value used for features a group did not produce.
func WithFillValue(v float64) Option {
	return func(e *Extractor) { e.fill = v }
}

// WithLogger sets the logger used for per-group warnings.
func WithLogger(l *zap.Logger) Option {
	return func(e *Extractor) {
		if l != nil {
			e.logger = l
		}
	}
}

// WithObserver adds an observer. It can be given several times.
func WithObserver(o Observer) Option {
	return func(e *Extractor) {
		if o == nil {
			return
		}
		if multi, ok := e.observer.(MultiObserver); ok {
			e.observer = append(multi, o)
			return
		}
		e.observer = MultiObserver{o}
	}
}

// NewExtractor builds an Extractor. Defaults: GOMAXPROCS workers, the minimal
// catalog, NaN fill and a no-op logger.
func NewExtractor(opts ...Option) *Extractor {
	e := &Extractor{
		workers:  runtime.GOMAXPROCS(0),
		catalog:  features.Minimal(),
		fill:     math.NaN(),
		logger:   zap.NewNop(),
		observer: nopObserver{},
	}
	for _, opt := range opts {
		opt(e)
	}
	return e
}

// Catalog returns the catalog applied by the extractor.
func (e *Extractor) Catalog() *features.Catalog {
	return e.catalog
}

// FillValue returns the gap-fill value.
func (e *Extractor) FillValue() float64 {
	return e.fill
}

// Extract runs the grouped path: validate, partition, process groups in parallel,
// drop failed groups and assemble. Schema and assembly errors abort the run.
func (e *Extractor) Extract(ctx context.Context, tbl *table.Table, idColumn, sortColumn string) (*schema.OutputTable, error) {
	out, _, err := e.extract(ctx, tbl, idColumn, sortColumn)
	return out, err
}

// groupOutcome is the result of one partition, in partition order.
type groupOutcome struct {
	ID       string
	Features int
	Err      error
}

// extract is Extract that also returns every group outcome. Outcomes are nil
// when the run aborts before any group is processed.
func (e *Extractor) extract(ctx context.Context, tbl *table.Table, idColumn, sortColumn string) (*schema.OutputTable, []groupOutcome, error) {
	start := time.Now()

	featureColumns, err := ValidateSchema(tbl, idColumn, sortColumn)
	if err != nil {
		return nil, nil, err
	}
	groups, err := Partition(tbl, idColumn)
	if err != nil {
		return nil, nil, err
	}

	results := make([]schema.GroupResult, len(groups))
	errs := make([]error, len(groups))
	e.runPool(ctx, len(groups), func(i int) {
		results[i], errs[i] = ProcessGroup(groups[i], sortColumn, featureColumns, e.catalog)
	})
	if err := ctx.Err(); err != nil {
		return nil, nil, err
	}

	outcomes := make([]groupOutcome, len(groups))
	succeeded := make([]schema.GroupResult, 0, len(groups))
	for i, g := range groups {
		outcomes[i] = groupOutcome{ID: g.ID, Err: errs[i]}
		if errs[i] == nil {
			outcomes[i].Features = len(results[i].Features)
			succeeded = append(succeeded, results[i])
		}
	}
	e.report(outcomes, time.Since(start))

	out, err := Assemble(succeeded, idColumn, e.fill)
	return out, outcomes, err
}

// report logs failed groups and notifies the observer in partition order.
func (e *Extractor) report(outcomes []groupOutcome, elapsed time.Duration) {
	failed := 0
	for _, o := range outcomes {
		if o.Err != nil {
			failed++
			e.logger.Warn("group processing failed",
				zap.String("group", o.ID),
				zap.Error(o.Err),
			)
			e.observer.GroupFailed(o.ID, o.Err)
			continue
		}
		e.observer.GroupSucceeded(o.ID, o.Features)
	}
	e.observer.RunCompleted(len(outcomes), failed, elapsed)
	e.logger.Debug("extraction finished",
		zap.Int("groups", len(outcomes)),
		zap.Int("failed", failed),
		zap.Duration("elapsed", elapsed),
	)
}

// seriesTask is one (record, column) unit of the flat path.
type seriesTask struct {
	record int
	column string
	series []float64
}

// ExtractRecords runs the flat path: the catalog is applied to every column of
// every record independently. Results keep record order and use unqualified
// feature names. The only error is context cancellation.
func (e *Extractor) ExtractRecords(ctx context.Context, records []schema.Record) ([]schema.RecordFeatures, error) {
	start := time.Now()

	var tasks []seriesTask
	for i, record := range records {
		for column, series := range record {
			tasks = append(tasks, seriesTask{record: i, column: column, series: series})
		}
	}

	outputs := make([][]schema.FeatureResult, len(tasks))
	e.runPool(ctx, len(tasks), func(i int) {
		outputs[i] = e.catalog.Apply(tasks[i].series)
	})
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	results := make([]schema.RecordFeatures, len(records))
	for i, record := range records {
		results[i] = make(schema.RecordFeatures, len(record))
	}
	for i, task := range tasks {
		values := make(map[string]float64, len(outputs[i]))
		for _, r := range outputs[i] {
			values[r.Name] = r.Value
		}
		results[task.record][task.column] = values
	}
	e.observer.RunCompleted(len(records), 0, time.Since(start))
	return results, nil
}

// runPool calls work for every index in [0, n) on a pool of e.workers goroutines.
// Each index is handled once and writes only its own slot. Remaining indexes are
// skipped once ctx is cancelled.
func (e *Extractor) runPool(ctx context.Context, n int, work func(i int)) {
	if n == 0 {
		return
	}
	indexCh := make(chan int, n)
	for i := range n {
		indexCh <- i
	}
	close(indexCh)

	var wg sync.WaitGroup
	for range min(e.workers, n) {
		wg.Go(func() {
			for i := range indexCh {
				if ctx.Err() != nil {
					continue
				}
				work(i)
			}
		})
	}
	wg.Wait()
}
