package core

import (
	"slices"

	"github.com/huangsam/tsfeat/schema"
)

// Assemble builds the output table from successful group results. Columns are the
// sorted union of qualified names; absent cells take the fill value. Rows follow
// the order of results.
func Assemble(results []schema.GroupResult, idColumn string, fill float64) (*schema.OutputTable, error) {
	if len(results) == 0 {
		return nil, &AssemblyError{Reason: ErrNoGroupResults.Error(), Err: ErrNoGroupResults}
	}

	seen := make(map[string]struct{})
	for _, r := range results {
		for _, f := range r.Features {
			seen[f.Name] = struct{}{}
		}
	}
	columns := make([]string, 0, len(seen))
	for name := range seen {
		columns = append(columns, name)
	}
	slices.Sort(columns)

	position := make(map[string]int, len(columns))
	for i, name := range columns {
		position[name] = i
	}

	rows := make([]schema.OutputRow, len(results))
	for i, r := range results {
		values := make([]float64, len(columns))
		for j := range values {
			values[j] = fill
		}
		for _, f := range r.Features {
			values[position[f.Name]] = f.Value
		}
		rows[i] = schema.OutputRow{ID: r.ID, Values: values}
	}

	return &schema.OutputTable{
		IDColumn:       idColumn,
		FeatureColumns: columns,
		Rows:           rows,
	}, nil
}
