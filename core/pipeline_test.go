package core

import (
	"errors"
	"math"
	"testing"

	"github.com/huangsam/tsfeat/core/features"
	"github.com/huangsam/tsfeat/core/table"
	"github.com/huangsam/tsfeat/schema"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// panelTable is the two-entity panel with shuffled time stamps.
func panelTable(t *testing.T) *table.Table {
	t.Helper()
	tbl, err := table.New(
		table.NewStringColumn("id", []string{"A", "A", "A", "B", "B", "B"}, nil),
		table.NewIntColumn("t", []int64{3, 1, 2, 6, 4, 5}, nil),
		table.NewFloatColumn("value", []float64{3, 1, 2, 6, 4, 5}, nil),
	)
	require.NoError(t, err)
	return tbl
}

func TestValidateSchema(t *testing.T) {
	tbl := panelTable(t)

	t.Run("Valid", func(t *testing.T) {
		cols, err := ValidateSchema(tbl, "id", "t")
		require.NoError(t, err)
		assert.Equal(t, []string{"value"}, cols)
	})

	t.Run("Missing id", func(t *testing.T) {
		_, err := ValidateSchema(tbl, "entity", "t")
		var schemaErr *SchemaError
		require.ErrorAs(t, err, &schemaErr)
		assert.Equal(t, "entity", schemaErr.Column)
		assert.ErrorIs(t, err, table.ErrColumnNotFound)
	})

	t.Run("Missing sort", func(t *testing.T) {
		_, err := ValidateSchema(tbl, "id", "timestamp")
		var schemaErr *SchemaError
		require.ErrorAs(t, err, &schemaErr)
		assert.Equal(t, "timestamp", schemaErr.Column)
	})

	t.Run("Same column", func(t *testing.T) {
		_, err := ValidateSchema(tbl, "id", "id")
		var schemaErr *SchemaError
		assert.ErrorAs(t, err, &schemaErr)
	})

	t.Run("No feature columns", func(t *testing.T) {
		narrow, err := table.New(
			table.NewStringColumn("id", []string{"A"}, nil),
			table.NewIntColumn("t", []int64{1}, nil),
		)
		require.NoError(t, err)
		_, err = ValidateSchema(narrow, "id", "t")
		var schemaErr *SchemaError
		require.ErrorAs(t, err, &schemaErr)
		assert.ErrorIs(t, err, ErrNoFeatureColumns)
	})
}

func TestPartition(t *testing.T) {
	tbl, err := table.New(
		table.NewIntColumn("id", []int64{2, 1, 2, 1}, nil),
		table.NewIntColumn("t", []int64{1, 2, 3, 4}, nil),
	)
	require.NoError(t, err)

	groups, err := Partition(tbl, "id")
	require.NoError(t, err)
	require.Len(t, groups, 2)

	assert.Equal(t, "1", groups[0].ID)
	assert.Equal(t, "2", groups[1].ID)
	assert.False(t, groups[0].Rows.HasColumn("id"))

	ts, err := groups[1].Rows.Numeric("t")
	require.NoError(t, err)
	assert.Equal(t, []float64{1, 3}, ts)

	// Source table is untouched
	assert.True(t, tbl.HasColumn("id"))
	assert.Equal(t, 4, tbl.NumRows())
}

func TestPartitionMergesEqualCanonicalIDs(t *testing.T) {
	tbl, err := table.New(
		table.NewFloatColumn("id", []float64{1, 1.0, 2}, nil),
		table.NewIntColumn("t", []int64{1, 2, 3}, nil),
	)
	require.NoError(t, err)
	groups, err := Partition(tbl, "id")
	require.NoError(t, err)
	require.Len(t, groups, 2)
	assert.Equal(t, 2, groups[0].Rows.NumRows())
}

func TestProcessGroup(t *testing.T) {
	tbl := panelTable(t)
	groups, err := Partition(tbl, "id")
	require.NoError(t, err)

	result, err := ProcessGroup(groups[0], "t", []string{"value"}, features.NewCatalog("test",
		features.LengthFeature,
		features.MeanFeature,
		features.AbsoluteSumOfChangesFeature,
	))
	require.NoError(t, err)
	assert.Equal(t, "A", result.ID)
	assert.Equal(t, []schema.FeatureResult{
		{Name: "value__length", Value: 3},
		{Name: "value__mean", Value: 2},
		{Name: "value__absolute_sum_of_changes", Value: 2},
	}, result.Features)
}

func TestProcessGroupColumnOrder(t *testing.T) {
	tbl, err := table.New(
		table.NewIntColumn("t", []int64{1, 2}, nil),
		table.NewFloatColumn("a", []float64{1, 2}, nil),
		table.NewFloatColumn("b", []float64{3, 4}, nil),
	)
	require.NoError(t, err)

	result, err := ProcessGroup(Group{ID: "g", Rows: tbl}, "t", []string{"b", "a"}, features.MeanFeature)
	require.NoError(t, err)
	require.Len(t, result.Features, 2)
	assert.Equal(t, "b__mean", result.Features[0].Name)
	assert.Equal(t, "a__mean", result.Features[1].Name)
}

func TestProcessGroupDropsNulls(t *testing.T) {
	tbl, err := table.New(
		table.NewIntColumn("t", []int64{1, 2, 3}, nil),
		table.NewFloatColumn("v", []float64{1, 100, 3}, []bool{true, false, true}),
	)
	require.NoError(t, err)

	result, err := ProcessGroup(Group{ID: "g", Rows: tbl}, "t", []string{"v"}, features.Minimal())
	require.NoError(t, err)
	values := map[string]float64{}
	for _, f := range result.Features {
		values[f.Name] = f.Value
	}
	assert.Equal(t, 2.0, values["v__length"])
	assert.Equal(t, 2.0, values["v__mean"])
}

func TestProcessGroupErrors(t *testing.T) {
	tests := []struct {
		name   string
		cols   []*table.Column
		column string
		cause  error
	}{
		{
			name: "Null sort key",
			cols: []*table.Column{
				table.NewIntColumn("t", []int64{1, 2}, []bool{true, false}),
				table.NewFloatColumn("v", []float64{1, 2}, nil),
			},
			column: "t",
			cause:  table.ErrUnorderable,
		},
		{
			name: "Non-numeric feature",
			cols: []*table.Column{
				table.NewIntColumn("t", []int64{1, 2}, nil),
				table.NewStringColumn("v", []string{"x", "y"}, nil),
			},
			column: "v",
			cause:  table.ErrNotNumeric,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			tbl, err := table.New(tt.cols...)
			require.NoError(t, err)

			_, err = ProcessGroup(Group{ID: "g", Rows: tbl}, "t", []string{"v"}, features.Minimal())
			var groupErr *GroupProcessingError
			require.ErrorAs(t, err, &groupErr)
			assert.Equal(t, "g", groupErr.GroupID)
			assert.Equal(t, tt.column, groupErr.Column)
			assert.ErrorIs(t, err, tt.cause)
		})
	}
}

func TestAssemble(t *testing.T) {
	results := []schema.GroupResult{
		{ID: "A", Features: []schema.FeatureResult{{Name: "x__mean", Value: 1}, {Name: "a__mean", Value: 2}}},
		{ID: "B", Features: []schema.FeatureResult{{Name: "x__mean", Value: 3}}},
	}

	t.Run("Sorted union with NaN fill", func(t *testing.T) {
		out, err := Assemble(results, "id", math.NaN())
		require.NoError(t, err)
		assert.Equal(t, []string{"id", "a__mean", "x__mean"}, out.Columns())
		assert.Equal(t, []string{"A", "B"}, out.IDs())
		assert.Equal(t, []float64{2, 1}, out.Rows[0].Values)

		v, ok := out.Value("B", "a__mean")
		require.True(t, ok)
		assert.True(t, math.IsNaN(v))
		for _, row := range out.Rows {
			assert.Len(t, row.Values, len(out.FeatureColumns))
		}
	})

	t.Run("Zero fill", func(t *testing.T) {
		out, err := Assemble(results, "id", 0)
		require.NoError(t, err)
		v, ok := out.Value("B", "a__mean")
		require.True(t, ok)
		assert.Equal(t, 0.0, v)
	})

	t.Run("Empty", func(t *testing.T) {
		_, err := Assemble(nil, "id", 0)
		var assemblyErr *AssemblyError
		require.ErrorAs(t, err, &assemblyErr)
		assert.True(t, errors.Is(err, ErrNoGroupResults))
	})
}
