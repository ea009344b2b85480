package outwriter

import (
	"encoding/csv"
	"fmt"
	"io"
	"slices"
	"strconv"
	"time"

	"github.com/huangsam/tsfeat/internal/contract"
	"github.com/huangsam/tsfeat/internal/parquet"
	"github.com/huangsam/tsfeat/schema"
	"github.com/olekukonko/tablewriter"
	"github.com/olekukonko/tablewriter/tw"
)

// PrintRecordFeatures outputs flat-path results, dispatching based on the output format configured.
// JSON keeps the nested shape; the other formats use one row per record, column and feature.
func PrintRecordFeatures(results []schema.RecordFeatures, cfg *contract.Config, duration time.Duration) error {
	fmtPlain, fmtTable := createFormatters(cfg.Precision, cfg.UseColors)
	rows := flattenRecordFeatures(results)

	switch cfg.Output {
	case schema.JSONOut:
		if err := writeWithFile(cfg.OutputFile, func(w io.Writer) error {
			return writeJSON(w, results)
		}, "Wrote JSON"); err != nil {
			return fmt.Errorf("error writing JSON output: %w", err)
		}
	case schema.CSVOut:
		if err := writeWithFile(cfg.OutputFile, func(w io.Writer) error {
			return writeRecordFeaturesCSV(w, rows, fmtPlain)
		}, "Wrote CSV"); err != nil {
			return fmt.Errorf("error writing CSV output: %w", err)
		}
	case schema.ParquetOut:
		if err := writeWithFile(cfg.OutputFile, func(w io.Writer) error {
			return parquet.WriteRecordFeatures(w, rows)
		}, "Wrote Parquet"); err != nil {
			return fmt.Errorf("error writing Parquet output: %w", err)
		}
	default:
		return writeWithFile(cfg.OutputFile, func(w io.Writer) error {
			return writeRecordFeaturesText(w, rows, len(results), cfg, fmtTable, duration)
		}, "Wrote table")
	}
	return nil
}

// flattenRecordFeatures converts nested results to long form, ordered by
// record index, then column name, then feature name.
func flattenRecordFeatures(results []schema.RecordFeatures) []parquet.RecordFeature {
	var rows []parquet.RecordFeature
	for i, rf := range results {
		columns := make([]string, 0, len(rf))
		for column := range rf {
			columns = append(columns, column)
		}
		slices.Sort(columns)
		for _, column := range columns {
			values := rf[column]
			names := make([]string, 0, len(values))
			for name := range values {
				names = append(names, name)
			}
			slices.Sort(names)
			for _, name := range names {
				rows = append(rows, parquet.RecordFeature{
					Record:  int32(i),
					Column:  column,
					Feature: name,
					Value:   values[name],
				})
			}
		}
	}
	return rows
}

func writeRecordFeaturesCSV(w io.Writer, rows []parquet.RecordFeature, fmtFloat func(float64) string) error {
	header := []string{"record", "column", "feature", "value"}
	return writeCSVWithHeader(w, header, func(csvWriter *csv.Writer) error {
		for _, r := range rows {
			rec := []string{strconv.Itoa(int(r.Record)), r.Column, r.Feature, fmtFloat(r.Value)}
			if err := csvWriter.Write(rec); err != nil {
				return err
			}
		}
		return nil
	})
}

func writeRecordFeaturesText(writer io.Writer, rows []parquet.RecordFeature, records int, cfg *contract.Config, fmtFloat func(float64) string, duration time.Duration) error {
	table := tablewriter.NewWriter(writer)
	table.Header(headerText([]string{"Record", "Column", "Feature", "Value"}, cfg.UseColors))
	table.Configure(func(config *tablewriter.Config) {
		config.Row.Alignment.Global = tw.AlignRight
	})

	data := make([][]string, 0, len(rows))
	for _, r := range rows {
		data = append(data, []string{strconv.Itoa(int(r.Record)), r.Column, r.Feature, fmtFloat(r.Value)})
	}
	if err := table.Bulk(data); err != nil {
		return err
	}
	if err := table.Render(); err != nil {
		return err
	}
	if _, err := fmt.Fprintf(writer, "Showing %d values across %d records\n", len(rows), records); err != nil {
		return err
	}
	if _, err := fmt.Fprintf(writer, "Extraction completed in %v with %d workers\n", duration, cfg.Workers); err != nil {
		return err
	}
	return nil
}
