package table

import (
	"encoding/binary"
	"errors"
	"fmt"
	"math"
	"slices"
	"sort"

	"github.com/cespare/xxhash/v2"
)

// Errors returned by table operations.
var (
	ErrColumnNotFound = errors.New("column not found")
	ErrNotNumeric     = errors.New("column is not numeric")
	ErrUnorderable    = errors.New("column has values that cannot be ordered")
)

// Table is an immutable set of equal-length named columns.
// Operations return new tables and never modify the receiver.
type Table struct {
	columns []*Column
	index   map[string]int
	rows    int
}

// New builds a table from named columns. Columns must have distinct names and equal lengths.
func New(columns ...*Column) (*Table, error) {
	t := &Table{
		columns: columns,
		index:   make(map[string]int, len(columns)),
	}
	for i, col := range columns {
		if _, dup := t.index[col.Name]; dup {
			return nil, fmt.Errorf("duplicate column %q", col.Name)
		}
		if i == 0 {
			t.rows = col.Len()
		} else if col.Len() != t.rows {
			return nil, fmt.Errorf("column %q has %d rows, expected %d", col.Name, col.Len(), t.rows)
		}
		if col.Valid != nil && len(col.Valid) != col.Len() {
			return nil, fmt.Errorf("column %q has a null mask of length %d, expected %d", col.Name, len(col.Valid), col.Len())
		}
		t.index[col.Name] = i
	}
	return t, nil
}

// NumRows returns the number of rows.
func (t *Table) NumRows() int {
	return t.rows
}

// NumColumns returns the number of columns.
func (t *Table) NumColumns() int {
	return len(t.columns)
}

// ColumnNames returns column names in table order.
func (t *Table) ColumnNames() []string {
	names := make([]string, len(t.columns))
	for i, col := range t.columns {
		names[i] = col.Name
	}
	return names
}

// HasColumn reports whether a column exists.
func (t *Table) HasColumn(name string) bool {
	_, ok := t.index[name]
	return ok
}

// Column returns a column by name.
func (t *Table) Column(name string) (*Column, error) {
	i, ok := t.index[name]
	if !ok {
		return nil, fmt.Errorf("%w: %s", ErrColumnNotFound, name)
	}
	return t.columns[i], nil
}

// Numeric returns the values of a numeric column with nulls dropped.
func (t *Table) Numeric(name string) ([]float64, error) {
	col, err := t.Column(name)
	if err != nil {
		return nil, err
	}
	if !col.IsNumeric() {
		return nil, fmt.Errorf("%w: %s has kind %s", ErrNotNumeric, name, col.Kind)
	}
	values := make([]float64, 0, col.Len())
	for i := range col.Len() {
		if v, ok := col.Float(i); ok {
			values = append(values, v)
		}
	}
	return values, nil
}

// Take returns the rows at indices, in that order.
func (t *Table) Take(indices []int) *Table {
	columns := make([]*Column, len(t.columns))
	for i, col := range t.columns {
		columns[i] = col.take(indices)
	}
	return &Table{columns: columns, index: t.index, rows: len(indices)}
}

// Drop returns the table without the named column. Unknown names are ignored.
func (t *Table) Drop(name string) *Table {
	i, ok := t.index[name]
	if !ok {
		return t
	}
	columns := slices.Delete(slices.Clone(t.columns), i, i+1)
	index := make(map[string]int, len(columns))
	for j, col := range columns {
		index[col.Name] = j
	}
	return &Table{columns: columns, index: index, rows: t.rows}
}

// Select returns the rows whose key in the named column equals key.
func (t *Table) Select(name, key string) (*Table, error) {
	col, err := t.Column(name)
	if err != nil {
		return nil, err
	}
	var indices []int
	for i := range col.Len() {
		if col.Key(i) == key {
			indices = append(indices, i)
		}
	}
	return t.Take(indices), nil
}

// GroupIndices maps every canonical key of the named column to its row indices
// in original order, and returns the keys sorted ascending.
func (t *Table) GroupIndices(name string) ([]string, map[string][]int, error) {
	col, err := t.Column(name)
	if err != nil {
		return nil, nil, err
	}
	groups := make(map[string][]int)
	for i := range col.Len() {
		key := col.Key(i)
		groups[key] = append(groups[key], i)
	}
	keys := make([]string, 0, len(groups))
	for key := range groups {
		keys = append(keys, key)
	}
	slices.Sort(keys)
	return keys, groups, nil
}

// SortBy returns the table stably sorted ascending by the named column.
// Nulls and NaN in the sort column make the table unorderable.
func (t *Table) SortBy(name string) (*Table, error) {
	col, err := t.Column(name)
	if err != nil {
		return nil, err
	}
	for i := range col.Len() {
		if !col.orderable(i) {
			return nil, fmt.Errorf("%w: %s row %d", ErrUnorderable, name, i)
		}
	}
	order := make([]int, t.rows)
	for i := range order {
		order[i] = i
	}
	sort.SliceStable(order, func(a, b int) bool {
		return col.less(order[a], order[b])
	})
	return t.Take(order), nil
}

// Fingerprint returns a content hash over column names, kinds, values and null masks.
func (t *Table) Fingerprint() uint64 {
	d := xxhash.New()
	buf := make([]byte, 0, 16)
	for _, col := range t.columns {
		_, _ = d.WriteString(col.Name)
		buf = binary.LittleEndian.AppendUint64(buf[:0], uint64(col.Kind))
		buf = binary.LittleEndian.AppendUint64(buf, uint64(col.Len()))
		_, _ = d.Write(buf)
		for i := range col.Len() {
			buf = buf[:0]
			if col.IsNull(i) {
				buf = append(buf, 0)
				_, _ = d.Write(buf)
				continue
			}
			buf = append(buf, 1)
			switch col.Kind {
			case KindFloat:
				buf = binary.LittleEndian.AppendUint64(buf, math.Float64bits(col.Floats[i]))
			case KindInt:
				buf = binary.LittleEndian.AppendUint64(buf, uint64(col.Ints[i]))
			default:
				buf = binary.LittleEndian.AppendUint64(buf, uint64(len(col.Strings[i])))
				buf = append(buf, col.Strings[i]...)
			}
			_, _ = d.Write(buf)
		}
	}
	return d.Sum64()
}
