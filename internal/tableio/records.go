package tableio

import (
	"encoding/json"
	"fmt"
	"io"
	"os"

	"github.com/huangsam/tsfeat/schema"
)

// ReadRecords reads flat-path records from a JSON file.
func ReadRecords(path string) ([]schema.Record, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open records: %w", err)
	}
	defer func() { _ = f.Close() }()
	return DecodeRecords(f)
}

// DecodeRecords decodes a JSON array of {column: [numbers...]} objects.
func DecodeRecords(r io.Reader) ([]schema.Record, error) {
	var records []schema.Record
	if err := json.NewDecoder(r).Decode(&records); err != nil {
		return nil, fmt.Errorf("failed to decode records: %w", err)
	}
	return records, nil
}
