// Package tableio loads extraction inputs from disk: tables for the grouped path
// (CSV or Parquet) and JSON records for the flat path.
package tableio

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/huangsam/tsfeat/core/table"
	"github.com/huangsam/tsfeat/schema"
)

// ResolveFormat decides the concrete input format of path.
// AutoInput picks Parquet for .parquet/.pq files and CSV otherwise.
func ResolveFormat(path string, format schema.InputFormat) schema.InputFormat {
	if format != "" && format != schema.AutoInput {
		return format
	}
	switch strings.ToLower(filepath.Ext(path)) {
	case ".parquet", ".pq":
		return schema.ParquetInput
	default:
		return schema.CSVInput
	}
}

// ReadTable reads the table stored at path.
func ReadTable(path string, format schema.InputFormat) (*table.Table, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open input: %w", err)
	}
	defer func() { _ = f.Close() }()

	switch ResolveFormat(path, format) {
	case schema.ParquetInput:
		info, err := f.Stat()
		if err != nil {
			return nil, fmt.Errorf("failed to stat input: %w", err)
		}
		return DecodeParquet(f, info.Size())
	case schema.CSVInput:
		return DecodeCSV(f)
	default:
		return nil, fmt.Errorf("unsupported input format %q", format)
	}
}
