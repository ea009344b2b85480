package schema

import (
	"encoding/json"
	"math"
	"slices"
	"strconv"
)

// OutputRow is one row of the assembled output: a group id and one value per feature column.
type OutputRow struct {
	ID     string
	Values []float64 // Aligned with OutputTable.FeatureColumns
}

// OutputTable is the assembled feature matrix with one row per successful group.
// The id column comes first and feature columns are sorted lexicographically.
type OutputTable struct {
	IDColumn       string
	FeatureColumns []string
	Rows           []OutputRow
}

// Columns returns the id column followed by every feature column.
func (t *OutputTable) Columns() []string {
	return append([]string{t.IDColumn}, t.FeatureColumns...)
}

// NumRows returns the number of groups in the table.
func (t *OutputTable) NumRows() int {
	return len(t.Rows)
}

// Width returns the number of columns including the id column.
func (t *OutputTable) Width() int {
	return 1 + len(t.FeatureColumns)
}

// ColumnIndex returns the position of a feature column, or -1 when absent.
func (t *OutputTable) ColumnIndex(name string) int {
	idx, found := slices.BinarySearch(t.FeatureColumns, name)
	if !found {
		return -1
	}
	return idx
}

// Value returns the value of a feature column for the group with the given id.
func (t *OutputTable) Value(id, column string) (float64, bool) {
	idx := t.ColumnIndex(column)
	if idx < 0 {
		return 0, false
	}
	row, ok := t.Row(id)
	if !ok {
		return 0, false
	}
	return row.Values[idx], true
}

// Row returns the row for a group id.
func (t *OutputTable) Row(id string) (OutputRow, bool) {
	for _, row := range t.Rows {
		if row.ID == id {
			return row, true
		}
	}
	return OutputRow{}, false
}

// IDs returns the group ids in row order.
func (t *OutputTable) IDs() []string {
	ids := make([]string, len(t.Rows))
	for i, row := range t.Rows {
		ids[i] = row.ID
	}
	return ids
}

// Head returns a table limited to the first n rows. A non-positive n keeps everything.
func (t *OutputTable) Head(n int) *OutputTable {
	if n <= 0 || n >= len(t.Rows) {
		return t
	}
	return &OutputTable{
		IDColumn:       t.IDColumn,
		FeatureColumns: t.FeatureColumns,
		Rows:           t.Rows[:n],
	}
}

// outputRowJSON is the JSON form of one output row; map keys are emitted sorted.
type outputRowJSON struct {
	ID       string                   `json:"id"`
	Features map[string]NullableFloat `json:"features"`
}

// MarshalJSON renders the table with non-finite values as null.
func (t *OutputTable) MarshalJSON() ([]byte, error) {
	rows := make([]outputRowJSON, len(t.Rows))
	for i, row := range t.Rows {
		values := make(map[string]NullableFloat, len(t.FeatureColumns))
		for j, name := range t.FeatureColumns {
			values[name] = NullableFloat(row.Values[j])
		}
		rows[i] = outputRowJSON{ID: row.ID, Features: values}
	}
	return json.Marshal(struct {
		IDColumn string          `json:"id_column"`
		Columns  []string        `json:"columns"`
		Rows     []outputRowJSON `json:"rows"`
	}{t.IDColumn, t.Columns(), rows})
}

// NullableFloat marshals NaN and infinities as JSON null.
type NullableFloat float64

// MarshalJSON implements json.Marshaler.
func (f NullableFloat) MarshalJSON() ([]byte, error) {
	v := float64(f)
	if math.IsNaN(v) || math.IsInf(v, 0) {
		return []byte("null"), nil
	}
	return strconv.AppendFloat(nil, v, 'g', -1, 64), nil
}

// UnmarshalJSON implements json.Unmarshaler. A null becomes NaN.
func (f *NullableFloat) UnmarshalJSON(data []byte) error {
	if string(data) == "null" {
		*f = NullableFloat(math.NaN())
		return nil
	}
	var v float64
	if err := json.Unmarshal(data, &v); err != nil {
		return err
	}
	*f = NullableFloat(v)
	return nil
}

// FormatValue renders a feature value with the given precision, spelling out non-finite values.
func FormatValue(v float64, precision int) string {
	switch {
	case math.IsNaN(v):
		return "NaN"
	case math.IsInf(v, 1):
		return "+Inf"
	case math.IsInf(v, -1):
		return "-Inf"
	}
	return strconv.FormatFloat(v, 'f', precision, 64)
}
