package parquet

import (
	"bytes"
	"io"
	"math"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/huangsam/tsfeat/internal/tableio"
	"github.com/huangsam/tsfeat/schema"
	"github.com/parquet-go/parquet-go"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func sampleRuns() []ExtractionRun {
	now := time.Now()
	start := now.Add(-2 * time.Minute)
	end := now.Add(-time.Minute)
	duration := int32(end.Sub(start).Milliseconds())
	params := `{"catalog":"minimal","id_column":"id"}`

	return []ExtractionRun{
		{RunID: 1, StartTime: start, EndTime: &end, RunDurationMs: &duration, TotalGroups: 3, FailedGroups: 1, ConfigParams: &params},
		{RunID: 2, StartTime: now}, // still running
	}
}

func TestExtractionRunStructTags(t *testing.T) {
	sch := parquet.SchemaOf(new(ExtractionRun))
	for _, name := range []string{"run_id", "start_time", "end_time", "run_duration_ms", "total_groups", "failed_groups", "config_params"} {
		_, ok := sch.Lookup(name)
		assert.True(t, ok, "column %s should exist", name)
	}

	sch = parquet.SchemaOf(new(GroupOutcome))
	for _, name := range []string{"run_id", "group_id", "status", "feature_count", "error_message"} {
		_, ok := sch.Lookup(name)
		assert.True(t, ok, "column %s should exist", name)
	}
}

func TestWriteExtractionRunsParquet(t *testing.T) {
	outputPath := filepath.Join(t.TempDir(), "runs.parquet")
	data := sampleRuns()
	require.NoError(t, WriteExtractionRunsParquet(data, outputPath))

	file, err := os.Open(outputPath)
	require.NoError(t, err)
	defer func() { _ = file.Close() }()

	reader := parquet.NewGenericReader[ExtractionRun](file)
	defer func() { _ = reader.Close() }()

	readData := make([]ExtractionRun, reader.NumRows())
	n, err := reader.Read(readData)
	if err != nil && err != io.EOF {
		require.NoError(t, err)
	}
	require.Equal(t, len(data), n)

	assert.Equal(t, int64(1), readData[0].RunID)
	assert.Equal(t, int32(3), readData[0].TotalGroups)
	assert.Equal(t, int32(1), readData[0].FailedGroups)
	require.NotNil(t, readData[0].EndTime)
	assert.WithinDuration(t, *data[0].EndTime, *readData[0].EndTime, time.Microsecond)
	require.NotNil(t, readData[0].ConfigParams)
	assert.Equal(t, *data[0].ConfigParams, *readData[0].ConfigParams)

	assert.Nil(t, readData[1].EndTime)
	assert.Nil(t, readData[1].RunDurationMs)
	assert.Nil(t, readData[1].ConfigParams)
}

func TestWriteGroupOutcomesParquet(t *testing.T) {
	outputPath := filepath.Join(t.TempDir(), "outcomes.parquet")
	msg := "column x: not numeric"
	records := []schema.GroupOutcomeRecord{
		{RunID: 1, GroupID: "A", Status: string(schema.GroupOK), FeatureCount: 20},
		{RunID: 1, GroupID: "B", Status: string(schema.GroupFailed), ErrorMessage: &msg},
	}
	require.NoError(t, WriteGroupOutcomesParquet(ConvertGroupOutcomeRecords(records), outputPath))

	file, err := os.Open(outputPath)
	require.NoError(t, err)
	defer func() { _ = file.Close() }()

	reader := parquet.NewGenericReader[GroupOutcome](file)
	defer func() { _ = reader.Close() }()

	readData := make([]GroupOutcome, reader.NumRows())
	n, err := reader.Read(readData)
	if err != nil && err != io.EOF {
		require.NoError(t, err)
	}
	require.Equal(t, 2, n)
	assert.Equal(t, "A", readData[0].GroupID)
	assert.Nil(t, readData[0].ErrorMessage)
	require.NotNil(t, readData[1].ErrorMessage)
	assert.Equal(t, msg, *readData[1].ErrorMessage)
}

func TestWriteEmptyRuns(t *testing.T) {
	outputPath := filepath.Join(t.TempDir(), "empty.parquet")
	require.NoError(t, WriteExtractionRunsParquet([]ExtractionRun{}, outputPath))

	info, err := os.Stat(outputPath)
	require.NoError(t, err)
	assert.Greater(t, info.Size(), int64(0))
}

func TestConvertExtractionRunRecords(t *testing.T) {
	end := time.Now()
	records := []schema.ExtractionRunRecord{{RunID: 7, StartTime: end.Add(-time.Second), EndTime: &end, TotalGroups: 4}}

	got := ConvertExtractionRunRecords(records)
	require.Len(t, got, 1)
	assert.Equal(t, int64(7), got[0].RunID)
	assert.Equal(t, int32(4), got[0].TotalGroups)
	assert.Equal(t, &end, got[0].EndTime)
}

func TestWriteOutputTableRoundTrip(t *testing.T) {
	out := &schema.OutputTable{
		IDColumn:       "id",
		FeatureColumns: []string{"x__mean", "y__mean"},
		Rows: []schema.OutputRow{
			{ID: "A", Values: []float64{2, math.NaN()}},
			{ID: "B", Values: []float64{10, 6}},
		},
	}

	var buf bytes.Buffer
	require.NoError(t, WriteOutputTable(&buf, out))

	tbl, err := tableio.DecodeParquet(bytes.NewReader(buf.Bytes()), int64(buf.Len()))
	require.NoError(t, err)
	assert.Equal(t, 2, tbl.NumRows())
	assert.Equal(t, []string{"id", "x__mean", "y__mean"}, tbl.ColumnNames())

	ids, err := tbl.Column("id")
	require.NoError(t, err)
	assert.Equal(t, []string{"A", "B"}, ids.Strings)

	x, err := tbl.Column("x__mean")
	require.NoError(t, err)
	assert.Equal(t, []float64{2, 10}, x.Floats)

	y, err := tbl.Column("y__mean")
	require.NoError(t, err)
	assert.True(t, math.IsNaN(y.Floats[0]))
	assert.Equal(t, 6.0, y.Floats[1])
}

func TestWriteOutputTableIDColumnFirst(t *testing.T) {
	out := &schema.OutputTable{
		IDColumn:       "series",
		FeatureColumns: []string{"amp__mean", "value__mean"},
		Rows:           []schema.OutputRow{{ID: "A", Values: []float64{1, 2}}},
	}

	var buf bytes.Buffer
	require.NoError(t, WriteOutputTable(&buf, out))

	tbl, err := tableio.DecodeParquet(bytes.NewReader(buf.Bytes()), int64(buf.Len()))
	require.NoError(t, err)
	assert.Equal(t, []string{"series", "amp__mean", "value__mean"}, tbl.ColumnNames())

	amp, err := tbl.Column("amp__mean")
	require.NoError(t, err)
	assert.Equal(t, []float64{1}, amp.Floats)
}

func TestOutputTableSchemaRejectsBadNames(t *testing.T) {
	tests := []struct {
		name string
		out  *schema.OutputTable
	}{
		{"comma", &schema.OutputTable{IDColumn: "id", FeatureColumns: []string{"a,b__mean"}}},
		{"empty id", &schema.OutputTable{FeatureColumns: []string{"x__mean"}}},
		{"duplicate", &schema.OutputTable{IDColumn: "x__mean", FeatureColumns: []string{"x__mean"}}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := OutputTableSchema(tt.out)
			assert.Error(t, err)
		})
	}
}

func TestWriteOutputTableFile(t *testing.T) {
	outputPath := filepath.Join(t.TempDir(), "features.parquet")
	out := &schema.OutputTable{IDColumn: "id", FeatureColumns: []string{"x__length"}, Rows: []schema.OutputRow{{ID: "A", Values: []float64{3}}}}
	require.NoError(t, WriteOutputTableFile(out, outputPath))

	tbl, err := tableio.ReadTable(outputPath, schema.AutoInput)
	require.NoError(t, err)
	assert.Equal(t, 1, tbl.NumRows())
}

func TestWriteRecordFeatures(t *testing.T) {
	rows := []RecordFeature{
		{Record: 0, Column: "x", Feature: "mean", Value: 2},
		{Record: 1, Column: "x", Feature: "mean", Value: math.NaN()},
	}

	var buf bytes.Buffer
	require.NoError(t, WriteRecordFeatures(&buf, rows))

	reader := parquet.NewGenericReader[RecordFeature](bytes.NewReader(buf.Bytes()))
	defer func() { _ = reader.Close() }()

	got := make([]RecordFeature, reader.NumRows())
	n, err := reader.Read(got)
	if err != nil && err != io.EOF {
		require.NoError(t, err)
	}
	require.Equal(t, 2, n)
	assert.Equal(t, rows[0], got[0])
	assert.True(t, math.IsNaN(got[1].Value))
}
