package outwriter

import (
	"encoding/csv"
	"fmt"
	"io"
	"time"
	"unicode/utf8"

	"github.com/huangsam/tsfeat/internal/contract"
	"github.com/huangsam/tsfeat/internal/parquet"
	"github.com/huangsam/tsfeat/schema"
	"github.com/olekukonko/tablewriter"
	"github.com/olekukonko/tablewriter/tw"
)

// PrintOutputTable outputs the assembled feature table, dispatching based on the output format configured.
func PrintOutputTable(out *schema.OutputTable, cfg *contract.Config, duration time.Duration) error {
	fmtPlain, fmtTable := createFormatters(cfg.Precision, cfg.UseColors)

	switch cfg.Output {
	case schema.JSONOut:
		if err := writeWithFile(cfg.OutputFile, func(w io.Writer) error {
			return writeJSON(w, out)
		}, "Wrote JSON"); err != nil {
			return fmt.Errorf("error writing JSON output: %w", err)
		}
	case schema.CSVOut:
		if err := writeWithFile(cfg.OutputFile, func(w io.Writer) error {
			return writeOutputTableCSV(w, out, fmtPlain)
		}, "Wrote CSV"); err != nil {
			return fmt.Errorf("error writing CSV output: %w", err)
		}
	case schema.ParquetOut:
		if err := writeWithFile(cfg.OutputFile, func(w io.Writer) error {
			return parquet.WriteOutputTable(w, out)
		}, "Wrote Parquet"); err != nil {
			return fmt.Errorf("error writing Parquet output: %w", err)
		}
	default:
		return writeWithFile(cfg.OutputFile, func(w io.Writer) error {
			return writeOutputTableText(w, out, cfg, fmtTable, duration)
		}, "Wrote table")
	}
	return nil
}

// writeOutputTableCSV writes the id column followed by every feature column.
func writeOutputTableCSV(w io.Writer, out *schema.OutputTable, fmtFloat func(float64) string) error {
	return writeCSVWithHeader(w, out.Columns(), func(csvWriter *csv.Writer) error {
		for _, row := range out.Rows {
			rec := make([]string, 0, out.Width())
			rec = append(rec, row.ID)
			for _, v := range row.Values {
				rec = append(rec, fmtFloat(v))
			}
			if err := csvWriter.Write(rec); err != nil {
				return err
			}
		}
		return nil
	})
}

// writeOutputTableText renders the table for humans. Feature columns that do not
// fit the terminal width continue on further pages, each repeating the id column.
func writeOutputTableText(writer io.Writer, out *schema.OutputTable, cfg *contract.Config, fmtFloat func(float64) string, duration time.Duration) error {
	idWidth := utf8.RuneCountInString(out.IDColumn)
	for _, row := range out.Rows {
		idWidth = max(idWidth, min(utf8.RuneCountInString(row.ID), maxIDWidth))
	}
	valueWidth := cfg.Precision + 8 // Sign, integer digits and the decimal point
	pages := paginateColumns(out.FeatureColumns, getTermWidth(cfg), idWidth, valueWidth)

	for p, page := range pages {
		if p > 0 {
			if _, err := fmt.Fprintln(writer); err != nil {
				return err
			}
		}
		if err := renderFeaturePage(writer, out, page, cfg, fmtFloat); err != nil {
			return err
		}
	}

	if _, err := fmt.Fprintf(writer, "Showing %d groups x %d features\n", out.NumRows(), len(out.FeatureColumns)); err != nil {
		return err
	}
	if _, err := fmt.Fprintf(writer, "Extraction completed in %v with %d workers. Cache backend: %s\n", duration, cfg.Workers, cfg.CacheBackend); err != nil {
		return err
	}
	return nil
}

// renderFeaturePage renders one page of feature columns.
func renderFeaturePage(writer io.Writer, out *schema.OutputTable, page []string, cfg *contract.Config, fmtFloat func(float64) string) error {
	table := tablewriter.NewTable(writer, tablewriter.WithHeaderAutoFormat(tw.Off))
	table.Header(headerText(append([]string{out.IDColumn}, page...), cfg.UseColors))
	table.Configure(func(config *tablewriter.Config) {
		config.Row.Alignment.Global = tw.AlignRight
	})

	indices := make([]int, len(page))
	for i, name := range page {
		indices[i] = out.ColumnIndex(name)
	}

	data := make([][]string, 0, len(out.Rows))
	for _, r := range out.Rows {
		row := make([]string, 0, len(page)+1)
		row = append(row, contract.TruncateText(r.ID, maxIDWidth))
		for _, idx := range indices {
			row = append(row, fmtFloat(r.Values[idx]))
		}
		data = append(data, row)
	}

	if err := table.Bulk(data); err != nil {
		return err
	}
	return table.Render()
}
