// Package table is the in-memory columnar store the extraction pipeline reads from.
package table

import (
	"math"
	"strconv"
)

// Kind is the physical type of a column.
type Kind int

// Supported column kinds.
const (
	KindFloat Kind = iota
	KindInt
	KindString
)

// String returns the kind name.
func (k Kind) String() string {
	switch k {
	case KindFloat:
		return "float"
	case KindInt:
		return "int"
	case KindString:
		return "string"
	default:
		return "unknown"
	}
}

// Column is a named, typed sequence with an optional null mask.
// Exactly one of the value slices is populated, according to Kind.
type Column struct {
	Name    string
	Kind    Kind
	Floats  []float64
	Ints    []int64
	Strings []string
	Valid   []bool // nil means every entry is present
}

// NewFloatColumn creates a float column. valid may be nil.
func NewFloatColumn(name string, values []float64, valid []bool) *Column {
	return &Column{Name: name, Kind: KindFloat, Floats: values, Valid: valid}
}

// NewIntColumn creates an integer column. valid may be nil.
func NewIntColumn(name string, values []int64, valid []bool) *Column {
	return &Column{Name: name, Kind: KindInt, Ints: values, Valid: valid}
}

// NewStringColumn creates a string column. valid may be nil.
func NewStringColumn(name string, values []string, valid []bool) *Column {
	return &Column{Name: name, Kind: KindString, Strings: values, Valid: valid}
}

// Len returns the number of entries.
func (c *Column) Len() int {
	switch c.Kind {
	case KindFloat:
		return len(c.Floats)
	case KindInt:
		return len(c.Ints)
	default:
		return len(c.Strings)
	}
}

// IsNull reports whether entry i is missing.
func (c *Column) IsNull(i int) bool {
	return c.Valid != nil && !c.Valid[i]
}

// IsNumeric reports whether the column can be read as float64.
func (c *Column) IsNumeric() bool {
	return c.Kind == KindFloat || c.Kind == KindInt
}

// Float returns entry i widened to float64. ok is false for nulls and string columns.
func (c *Column) Float(i int) (float64, bool) {
	if c.IsNull(i) {
		return 0, false
	}
	switch c.Kind {
	case KindFloat:
		return c.Floats[i], true
	case KindInt:
		return float64(c.Ints[i]), true
	default:
		return 0, false
	}
}

// Key returns the canonical string form of entry i. Nulls map to "".
func (c *Column) Key(i int) string {
	if c.IsNull(i) {
		return ""
	}
	switch c.Kind {
	case KindFloat:
		return strconv.FormatFloat(c.Floats[i], 'f', -1, 64)
	case KindInt:
		return strconv.FormatInt(c.Ints[i], 10)
	default:
		return c.Strings[i]
	}
}

// orderable reports whether entry i has a well-defined position in a sort.
func (c *Column) orderable(i int) bool {
	if c.IsNull(i) {
		return false
	}
	return c.Kind != KindFloat || !math.IsNaN(c.Floats[i])
}

// less compares entries i and j of an orderable column.
func (c *Column) less(i, j int) bool {
	switch c.Kind {
	case KindFloat:
		return c.Floats[i] < c.Floats[j]
	case KindInt:
		return c.Ints[i] < c.Ints[j]
	default:
		return c.Strings[i] < c.Strings[j]
	}
}

// take returns a new column holding the entries at indices, in that order.
func (c *Column) take(indices []int) *Column {
	out := &Column{Name: c.Name, Kind: c.Kind}
	if c.Valid != nil {
		out.Valid = make([]bool, len(indices))
		for k, i := range indices {
			out.Valid[k] = c.Valid[i]
		}
	}
	switch c.Kind {
	case KindFloat:
		out.Floats = make([]float64, len(indices))
		for k, i := range indices {
			out.Floats[k] = c.Floats[i]
		}
	case KindInt:
		out.Ints = make([]int64, len(indices))
		for k, i := range indices {
			out.Ints[k] = c.Ints[i]
		}
	default:
		out.Strings = make([]string, len(indices))
		for k, i := range indices {
			out.Strings[k] = c.Strings[i]
		}
	}
	return out
}
