package core

import (
	"github.com/huangsam/tsfeat/core/features"
	"github.com/huangsam/tsfeat/schema"
)

// ProcessGroup sorts one group by the sort column, runs the capability over each
// feature column and qualifies every result as "{column}__{feature}".
// Results follow featureColumns order, then capability order.
func ProcessGroup(g Group, sortColumn string, featureColumns []string, capability features.Capability) (schema.GroupResult, error) {
	sorted, err := g.Rows.SortBy(sortColumn)
	if err != nil {
		return schema.GroupResult{}, &GroupProcessingError{GroupID: g.ID, Column: sortColumn, Err: err}
	}

	result := schema.GroupResult{ID: g.ID}
	for _, column := range featureColumns {
		series, err := sorted.Numeric(column)
		if err != nil {
			return schema.GroupResult{}, &GroupProcessingError{GroupID: g.ID, Column: column, Err: err}
		}
		for _, r := range capability.Apply(series) {
			result.Features = append(result.Features, schema.FeatureResult{
				Name:  schema.QualifiedName(column, r.Name),
				Value: r.Value,
			})
		}
	}
	return result, nil
}
