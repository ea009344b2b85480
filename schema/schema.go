// Package schema has the data model, enums and store records shared by all parts of tsfeat.
package schema

import "encoding/json"

// FeatureResult is a single named scalar produced by one feature capability.
type FeatureResult struct {
	Name  string  // Canonical feature name such as "mean" or "variance"
	Value float64 // Computed value, NaN when undefined for the input
}

// GroupResult holds every qualified feature computed for one group.
// Names follow the "{column}__{feature}" convention and keep column x catalog order.
type GroupResult struct {
	ID       string
	Features []FeatureResult
}

// Record is one independent input of the flat extraction path: a column name
// mapped to its already-ordered numeric series.
type Record map[string][]float64

// RecordFeatures is the result for one Record: column name -> feature name -> value.
type RecordFeatures map[string]map[string]float64

// MarshalJSON renders non-finite values as null.
func (r RecordFeatures) MarshalJSON() ([]byte, error) {
	out := make(map[string]map[string]NullableFloat, len(r))
	for column, values := range r {
		converted := make(map[string]NullableFloat, len(values))
		for name, v := range values {
			converted[name] = NullableFloat(v)
		}
		out[column] = converted
	}
	return json.Marshal(out)
}

// FeatureInfo describes one feature of a catalog for listings.
type FeatureInfo struct {
	Name        string `json:"name"`
	Description string `json:"description"`
}
