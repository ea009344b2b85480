package core

import "github.com/huangsam/tsfeat/core/table"

// Group is the rows of the source table sharing one id value, with the id column removed.
type Group struct {
	ID   string
	Rows *table.Table
}

// Partition splits the table into one group per distinct canonical id.
// Groups are sorted by id and keep the original relative row order.
func Partition(tbl *table.Table, idColumn string) ([]Group, error) {
	keys, indices, err := tbl.GroupIndices(idColumn)
	if err != nil {
		return nil, &SchemaError{Column: idColumn, Reason: "cannot be partitioned", Err: err}
	}
	rest := tbl.Drop(idColumn)
	groups := make([]Group, len(keys))
	for i, key := range keys {
		groups[i] = Group{ID: key, Rows: rest.Take(indices[key])}
	}
	return groups, nil
}
