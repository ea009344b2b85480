package outwriter

import (
	"encoding/csv"
	"encoding/json"
	"fmt"
	"io"
	"os"

	"github.com/huangsam/tsfeat/internal/contract"
	"github.com/huangsam/tsfeat/schema"
)

// writeWithFile handles the common pattern of opening a file, writing to it, and cleaning up.
// It accepts a writer function that takes an io.Writer and returns an error.
func writeWithFile(outputFile string, writer func(io.Writer) error, successMsg string) error {
	file, err := contract.SelectOutputFile(outputFile)
	if err != nil {
		return err
	}
	// Only close if it's not stdout
	if file != os.Stdout {
		defer func() { _ = file.Close() }()
	}

	if err := writer(file); err != nil {
		return err
	}

	if file != os.Stdout {
		fmt.Fprintf(os.Stderr, "💾 %s to %s\n", successMsg, outputFile)
	}
	return nil
}

// writeJSON is a generic JSON encoder that handles indentation consistently.
func writeJSON(w io.Writer, data any) error {
	encoder := json.NewEncoder(w)
	encoder.SetIndent("", "  ")
	if err := encoder.Encode(data); err != nil {
		return fmt.Errorf("failed to encode JSON: %w", err)
	}
	return nil
}

// writeCSVWithHeader handles the common pattern of creating a CSV writer,
// writing a header, and writing data rows.
func writeCSVWithHeader(w io.Writer, header []string, writeRows func(*csv.Writer) error) error {
	csvWriter := csv.NewWriter(w)
	defer csvWriter.Flush()

	if err := csvWriter.Write(header); err != nil {
		return fmt.Errorf("failed to write CSV header: %w", err)
	}

	if err := writeRows(csvWriter); err != nil {
		return err
	}

	return nil
}

// createFormatters creates the value formatters shared by the output types:
// a plain one for CSV and one for console tables that mutes undefined values.
func createFormatters(precision int, useColors bool) (fmtPlain, fmtTable func(float64) string) {
	fmtPlain = func(v float64) string {
		return schema.FormatValue(v, precision)
	}
	fmtTable = func(v float64) string {
		s := schema.FormatValue(v, precision)
		if useColors && s == "NaN" {
			return contract.MutedColor.Sprint(s)
		}
		return s
	}
	return fmtPlain, fmtTable
}

// headerText returns the header labels, highlighted when colors are enabled.
func headerText(headers []string, useColors bool) []string {
	if !useColors {
		return headers
	}
	out := make([]string, len(headers))
	for i, h := range headers {
		out[i] = contract.HeaderColor.Sprint(h)
	}
	return out
}
