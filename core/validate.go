package core

import "github.com/huangsam/tsfeat/core/table"

// ValidateSchema checks that the id and sort columns exist and returns every
// other column, in table order, as the feature columns.
func ValidateSchema(tbl *table.Table, idColumn, sortColumn string) ([]string, error) {
	if !tbl.HasColumn(idColumn) {
		return nil, &SchemaError{Column: idColumn, Reason: "is missing (id column)", Err: table.ErrColumnNotFound}
	}
	if !tbl.HasColumn(sortColumn) {
		return nil, &SchemaError{Column: sortColumn, Reason: "is missing (sort column)", Err: table.ErrColumnNotFound}
	}
	if idColumn == sortColumn {
		return nil, &SchemaError{Column: idColumn, Reason: "cannot be both the id and the sort column"}
	}

	var featureColumns []string
	for _, name := range tbl.ColumnNames() {
		if name != idColumn && name != sortColumn {
			featureColumns = append(featureColumns, name)
		}
	}
	if len(featureColumns) == 0 {
		return nil, &SchemaError{Reason: ErrNoFeatureColumns.Error(), Err: ErrNoFeatureColumns}
	}
	return featureColumns, nil
}
