package tableio

import (
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/huangsam/tsfeat/core/table"
)

// DecodeCSV reads a CSV table with a header row. Column kinds are inferred:
// int when every present cell parses as an integer, float when every present
// cell parses as a number, string otherwise. Empty cells are nulls.
func DecodeCSV(r io.Reader) (*table.Table, error) {
	reader := csv.NewReader(r)
	reader.TrimLeadingSpace = true

	header, err := reader.Read()
	if errors.Is(err, io.EOF) {
		return nil, errors.New("csv input is empty")
	}
	if err != nil {
		return nil, fmt.Errorf("failed to read csv header: %w", err)
	}

	cells := make([][]string, len(header))
	for {
		record, err := reader.Read()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("failed to read csv row: %w", err)
		}
		for i, cell := range record {
			cells[i] = append(cells[i], strings.TrimSpace(cell))
		}
	}

	columns := make([]*table.Column, len(header))
	for i, name := range header {
		columns[i] = inferColumn(strings.TrimSpace(name), cells[i])
	}
	return table.New(columns...)
}

// inferColumn builds the narrowest column kind that holds every present cell.
func inferColumn(name string, cells []string) *table.Column {
	valid := make([]bool, len(cells))
	hasNull := false
	for i, cell := range cells {
		valid[i] = cell != ""
		hasNull = hasNull || cell == ""
	}
	if !hasNull {
		valid = nil
	}

	if ints, ok := parseInts(cells); ok {
		return table.NewIntColumn(name, ints, valid)
	}
	if floats, ok := parseFloats(cells); ok {
		return table.NewFloatColumn(name, floats, valid)
	}
	return table.NewStringColumn(name, cells, valid)
}

func parseInts(cells []string) ([]int64, bool) {
	out := make([]int64, len(cells))
	present := 0
	for i, cell := range cells {
		if cell == "" {
			continue
		}
		v, err := strconv.ParseInt(cell, 10, 64)
		if err != nil {
			return nil, false
		}
		out[i] = v
		present++
	}
	return out, present > 0
}

func parseFloats(cells []string) ([]float64, bool) {
	out := make([]float64, len(cells))
	for i, cell := range cells {
		if cell == "" {
			continue
		}
		v, err := strconv.ParseFloat(cell, 64)
		if err != nil {
			return nil, false
		}
		out[i] = v
	}
	return out, true
}
