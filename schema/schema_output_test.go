package schema_test

import (
	"encoding/json"
	"math"
	"testing"

	"github.com/huangsam/tsfeat/schema"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func sampleTable() *schema.OutputTable {
	return &schema.OutputTable{
		IDColumn:       "id",
		FeatureColumns: []string{"a__mean", "b__mean"},
		Rows: []schema.OutputRow{
			{ID: "A", Values: []float64{1, 2}},
			{ID: "B", Values: []float64{3, math.NaN()}},
			{ID: "C", Values: []float64{5, 6}},
		},
	}
}

func TestOutputTableAccessors(t *testing.T) {
	tbl := sampleTable()

	assert.Equal(t, []string{"id", "a__mean", "b__mean"}, tbl.Columns())
	assert.Equal(t, 3, tbl.NumRows())
	assert.Equal(t, 3, tbl.Width())
	assert.Equal(t, []string{"A", "B", "C"}, tbl.IDs())

	assert.Equal(t, 1, tbl.ColumnIndex("b__mean"))
	assert.Equal(t, -1, tbl.ColumnIndex("c__mean"))

	v, ok := tbl.Value("C", "b__mean")
	require.True(t, ok)
	assert.Equal(t, 6.0, v)

	_, ok = tbl.Value("Z", "a__mean")
	assert.False(t, ok)
	_, ok = tbl.Value("A", "missing")
	assert.False(t, ok)
}

func TestOutputTableHead(t *testing.T) {
	tests := []struct {
		name     string
		n        int
		expected int
	}{
		{"Zero keeps all", 0, 3},
		{"Negative keeps all", -1, 3},
		{"Limit below size", 2, 2},
		{"Limit above size", 10, 3},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expected, sampleTable().Head(tt.n).NumRows())
		})
	}
}

func TestQualifiedName(t *testing.T) {
	assert.Equal(t, "value__mean", schema.QualifiedName("value", "mean"))
}

func TestNullableFloatJSON(t *testing.T) {
	data, err := json.Marshal([]schema.NullableFloat{1.5, schema.NullableFloat(math.NaN()), schema.NullableFloat(math.Inf(1)), 0})
	require.NoError(t, err)
	assert.Equal(t, "[1.5,null,null,0]", string(data))

	var back []schema.NullableFloat
	require.NoError(t, json.Unmarshal(data, &back))
	require.Len(t, back, 4)
	assert.Equal(t, 1.5, float64(back[0]))
	assert.True(t, math.IsNaN(float64(back[1])))
}

func TestFormatValue(t *testing.T) {
	tests := []struct {
		name      string
		value     float64
		precision int
		expected  string
	}{
		{"Finite", 2.0 / 3.0, 3, "0.667"},
		{"Integer", 4, 1, "4.0"},
		{"NaN", math.NaN(), 2, "NaN"},
		{"PosInf", math.Inf(1), 2, "+Inf"},
		{"NegInf", math.Inf(-1), 2, "-Inf"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expected, schema.FormatValue(tt.value, tt.precision))
		})
	}
}

func TestOutputTableJSON(t *testing.T) {
	data, err := json.Marshal(sampleTable().Head(2))
	require.NoError(t, err)
	assert.JSONEq(t, `{
		"id_column": "id",
		"columns": ["id", "a__mean", "b__mean"],
		"rows": [
			{"id": "A", "features": {"a__mean": 1, "b__mean": 2}},
			{"id": "B", "features": {"a__mean": 3, "b__mean": null}}
		]
	}`, string(data))
}

func TestRecordFeaturesJSON(t *testing.T) {
	rf := schema.RecordFeatures{"x": {"mean": 1.5, "median": math.NaN()}}
	data, err := json.Marshal([]schema.RecordFeatures{rf})
	require.NoError(t, err)
	assert.JSONEq(t, `[{"x": {"mean": 1.5, "median": null}}]`, string(data))
}
