// Package core has the feature extraction pipeline: validation, partitioning,
// per-group processing, assembly and the entry points used by the CLI.
package core

import (
	"context"
	"fmt"
	"time"

	"github.com/huangsam/tsfeat/core/features"
	"github.com/huangsam/tsfeat/core/table"
	"github.com/huangsam/tsfeat/internal/contract"
	"github.com/huangsam/tsfeat/internal/logging"
	"github.com/huangsam/tsfeat/internal/outwriter"
	"github.com/huangsam/tsfeat/internal/tableio"
	"github.com/huangsam/tsfeat/internal/telemetry"
	"github.com/huangsam/tsfeat/schema"
	"go.uber.org/zap"
)

// ExecutorFunc defines the function signature for executing the different commands.
type ExecutorFunc func(ctx context.Context, cfg *contract.Config, mgr contract.CacheManager) error

// ExtractFeatures runs the grouped path on a table: one output row per id with
// one column per "{column}__{feature}" pair.
func ExtractFeatures(ctx context.Context, tbl *table.Table, idColumn, sortColumn string, opts ...Option) (*schema.OutputTable, error) {
	return NewExtractor(opts...).Extract(ctx, tbl, idColumn, sortColumn)
}

// ExtractRecordFeatures runs the flat path on independent records.
func ExtractRecordFeatures(ctx context.Context, records []schema.Record, opts ...Option) ([]schema.RecordFeatures, error) {
	return NewExtractor(opts...).ExtractRecords(ctx, records)
}

// ExecuteExtract runs the grouped extraction on the configured input file and prints the result.
// It serves as the main entry point for the 'extract' command.
func ExecuteExtract(ctx context.Context, cfg *contract.Config, mgr contract.CacheManager) error {
	out, duration, err := GetExtractionResults(ctx, cfg, mgr)
	if err != nil {
		return err
	}
	return outwriter.PrintOutputTable(out.Head(cfg.ResultLimit), cfg, duration)
}

// ExecuteBatch runs the flat extraction on a JSON records file and prints the result.
// It serves as the main entry point for the 'batch' command.
func ExecuteBatch(ctx context.Context, cfg *contract.Config, _ contract.CacheManager) error {
	start := time.Now()
	records, err := tableio.ReadRecords(cfg.InputPath)
	if err != nil {
		return err
	}
	results, err := GetBatchResults(ctx, cfg, records)
	if err != nil {
		return err
	}
	return outwriter.PrintRecordFeatures(results, cfg, time.Since(start))
}

// ExecuteFeatures prints the configured catalog.
// It serves as the main entry point for the 'features' command.
func ExecuteFeatures(_ context.Context, cfg *contract.Config, _ contract.CacheManager) error {
	catalog, err := features.Lookup(cfg.Catalog)
	if err != nil {
		return err
	}
	return outwriter.PrintCatalog(catalog.Name(), catalog.Describe(), cfg)
}

// GetExtractionResults reads the input table and runs the grouped extraction through
// the result cache, with run tracking and metrics when configured.
func GetExtractionResults(ctx context.Context, cfg *contract.Config, mgr contract.CacheManager) (*schema.OutputTable, time.Duration, error) {
	start := time.Now()
	quiet := shouldSuppressHeader(ctx)

	tbl, err := tableio.ReadTable(cfg.InputPath, cfg.InputFormat)
	if err != nil {
		return nil, 0, err
	}
	if !quiet {
		contract.LogStatus(cfg.UseEmojis, "📥", fmt.Sprintf("Loaded %d rows x %d columns from %s", tbl.NumRows(), tbl.NumColumns(), cfg.InputPath))
	}

	logger, err := logging.New(cfg.LogFormat)
	if err != nil {
		return nil, 0, err
	}
	defer func() { _ = logger.Sync() }()

	opts, err := extractorOptions(cfg, logger)
	if err != nil {
		return nil, 0, err
	}

	var metrics *telemetry.Metrics
	if cfg.MetricsFile != "" {
		metrics = telemetry.NewMetrics()
		opts = append(opts, WithObserver(metrics))
	}

	var resultStore contract.CacheStore
	var tracker *runTracker
	if mgr != nil {
		resultStore = mgr.GetResultStore()
		tracker = beginRunTracking(mgr.GetRunStore(), cfg)
	}
	if tracker != nil {
		opts = append(opts, WithObserver(tracker))
	}

	ex := NewExtractor(opts...)
	out, hit, err := ex.CachedExtract(ctx, resultStore, tbl, cfg.IDColumn, cfg.SortColumn)
	tracker.finish(err)
	if err != nil {
		return nil, 0, err
	}
	if hit && !quiet {
		contract.LogStatus(cfg.UseEmojis, "⚡", "Using cached extraction result")
	}

	if metrics != nil {
		if err := metrics.WriteToTextfile(cfg.MetricsFile); err != nil {
			contract.LogWarn("Writing metrics failed", err)
		} else if !quiet {
			contract.LogStatus(cfg.UseEmojis, "📈", fmt.Sprintf("Wrote metrics to %s", cfg.MetricsFile))
		}
	}

	return out, time.Since(start), nil
}

// GetBatchResults runs the flat extraction on already-loaded records.
func GetBatchResults(ctx context.Context, cfg *contract.Config, records []schema.Record) ([]schema.RecordFeatures, error) {
	logger, err := logging.New(cfg.LogFormat)
	if err != nil {
		return nil, err
	}
	defer func() { _ = logger.Sync() }()

	opts, err := extractorOptions(cfg, logger)
	if err != nil {
		return nil, err
	}
	return NewExtractor(opts...).ExtractRecords(ctx, records)
}

// extractorOptions maps the validated config onto extractor options.
func extractorOptions(cfg *contract.Config, logger *zap.Logger) ([]Option, error) {
	catalog, err := features.Lookup(cfg.Catalog)
	if err != nil {
		return nil, err
	}
	return []Option{
		WithWorkers(cfg.Workers),
		WithCatalog(catalog),
		WithFillValue(cfg.FillValue),
		WithLogger(logger),
	}, nil
}
