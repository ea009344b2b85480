package tableio

import (
	"errors"
	"fmt"
	"io"
	"strings"

	"github.com/huangsam/tsfeat/core/table"
	"github.com/parquet-go/parquet-go"
)

const rowBatchSize = 1024

// parquetColumn accumulates the values of one leaf column.
type parquetColumn struct {
	name    string
	kind    table.Kind
	floats  []float64
	ints    []int64
	strings []string
	valid   []bool
	hasNull bool
}

func (c *parquetColumn) append(v parquet.Value) {
	null := v.IsNull()
	c.valid = append(c.valid, !null)
	c.hasNull = c.hasNull || null
	switch c.kind {
	case table.KindFloat:
		var f float64
		if !null {
			if v.Kind() == parquet.Float {
				f = float64(v.Float())
			} else {
				f = v.Double()
			}
		}
		c.floats = append(c.floats, f)
	case table.KindInt:
		var n int64
		if !null {
			if v.Kind() == parquet.Int32 {
				n = int64(v.Int32())
			} else {
				n = v.Int64()
			}
		}
		c.ints = append(c.ints, n)
	default:
		var s string
		if !null {
			s = string(v.ByteArray())
		}
		c.strings = append(c.strings, s)
	}
}

func (c *parquetColumn) build() *table.Column {
	valid := c.valid
	if !c.hasNull {
		valid = nil
	}
	switch c.kind {
	case table.KindFloat:
		return table.NewFloatColumn(c.name, c.floats, valid)
	case table.KindInt:
		return table.NewIntColumn(c.name, c.ints, valid)
	default:
		return table.NewStringColumn(c.name, c.strings, valid)
	}
}

// DecodeParquet reads a flat Parquet file into a table. Float and double leaves
// become float columns, int32 and int64 leaves become int columns, and byte
// array leaves become string columns. Nested or repeated columns are rejected.
func DecodeParquet(r io.ReaderAt, size int64) (*table.Table, error) {
	file, err := parquet.OpenFile(r, size)
	if err != nil {
		return nil, fmt.Errorf("failed to open parquet input: %w", err)
	}

	fileSchema := file.Schema()
	paths := fileSchema.Columns()
	columns := make([]*parquetColumn, len(paths))
	for _, path := range paths {
		if len(path) != 1 {
			return nil, fmt.Errorf("nested parquet column %q is not supported", strings.Join(path, "."))
		}
		leaf, ok := fileSchema.Lookup(path...)
		if !ok {
			return nil, fmt.Errorf("parquet column %q not found", path[0])
		}
		if leaf.MaxRepetitionLevel > 0 {
			return nil, fmt.Errorf("repeated parquet column %q is not supported", path[0])
		}
		kind, err := leafKind(leaf.Node.Type().Kind())
		if err != nil {
			return nil, fmt.Errorf("parquet column %q: %w", path[0], err)
		}
		columns[leaf.ColumnIndex] = &parquetColumn{name: path[0], kind: kind}
	}

	reader := parquet.NewReader(file)
	defer func() { _ = reader.Close() }()

	rows := make([]parquet.Row, rowBatchSize)
	for {
		n, err := reader.ReadRows(rows)
		for _, row := range rows[:n] {
			for _, v := range row {
				columns[v.Column()].append(v)
			}
		}
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("failed to read parquet rows: %w", err)
		}
	}

	out := make([]*table.Column, len(columns))
	for i, c := range columns {
		out[i] = c.build()
	}
	return table.New(out...)
}

func leafKind(kind parquet.Kind) (table.Kind, error) {
	switch kind {
	case parquet.Float, parquet.Double:
		return table.KindFloat, nil
	case parquet.Int32, parquet.Int64:
		return table.KindInt, nil
	case parquet.ByteArray:
		return table.KindString, nil
	default:
		return 0, fmt.Errorf("unsupported physical type %s", kind)
	}
}
