package iocache

import (
	"errors"
	"fmt"
	"io"

	"github.com/huangsam/tsfeat/internal/contract"
	"github.com/huangsam/tsfeat/internal/parquet"
)

// Export file suffixes appended to the output prefix.
const (
	runsExportSuffix     = ".extraction_runs.parquet"
	outcomesExportSuffix = ".group_outcomes.parquet"
)

// ExportRuns writes every tracked run and group outcome in store to two Parquet
// files named after outputPrefix. Progress lines go to w.
func ExportRuns(store contract.RunStore, outputPrefix string, w io.Writer) error {
	if outputPrefix == "" {
		return errors.New("--output-file is required for export command")
	}
	if store == nil {
		return errors.New("run tracking is disabled. Set --runs-backend to export runs")
	}

	status, err := store.GetStatus()
	if err != nil {
		return fmt.Errorf("failed to get run status: %w", err)
	}
	if status.TotalRuns == 0 {
		return errors.New("no run data found to export")
	}

	_, _ = fmt.Fprintf(w, "Exporting data from %s backend...\n", status.Backend)
	_, _ = fmt.Fprintf(w, "Total runs: %d\n", status.TotalRuns)
	_, _ = fmt.Fprintf(w, "Total group outcomes: %d\n", status.TableSizes[groupOutcomesTable])

	runs, err := store.GetAllRuns()
	if err != nil {
		return fmt.Errorf("failed to retrieve extraction runs: %w", err)
	}
	outcomes, err := store.GetAllGroupOutcomes()
	if err != nil {
		return fmt.Errorf("failed to retrieve group outcomes: %w", err)
	}

	runsFile := outputPrefix + runsExportSuffix
	parquetRuns := parquet.ConvertExtractionRunRecords(runs)
	if err := parquet.WriteExtractionRunsParquet(parquetRuns, runsFile); err != nil {
		return fmt.Errorf("failed to write extraction runs: %w", err)
	}
	_, _ = fmt.Fprintf(w, "Exported %d runs to: %s\n", len(parquetRuns), runsFile)

	outcomesFile := outputPrefix + outcomesExportSuffix
	parquetOutcomes := parquet.ConvertGroupOutcomeRecords(outcomes)
	if err := parquet.WriteGroupOutcomesParquet(parquetOutcomes, outcomesFile); err != nil {
		return fmt.Errorf("failed to write group outcomes: %w", err)
	}
	_, _ = fmt.Fprintf(w, "Exported %d group outcomes to: %s\n", len(parquetOutcomes), outcomesFile)

	return nil
}
