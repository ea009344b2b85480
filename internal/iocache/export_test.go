package iocache

import (
	"bytes"
	"errors"
	"os"
	"path/filepath"
	"testing"
	"time"

	tsparquet "github.com/huangsam/tsfeat/internal/parquet"
	"github.com/huangsam/tsfeat/schema"
	"github.com/parquet-go/parquet-go"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestExportRunsValidation(t *testing.T) {
	var buf bytes.Buffer

	err := ExportRuns(&MockRunStore{}, "", &buf)
	assert.ErrorContains(t, err, "--output-file is required")

	err = ExportRuns(nil, "out", &buf)
	assert.ErrorContains(t, err, "run tracking is disabled")
}

func TestExportRunsEmpty(t *testing.T) {
	store := &MockRunStore{}
	store.On("GetStatus").Return(schema.RunStatus{Backend: "sqlite"}, nil)

	err := ExportRuns(store, filepath.Join(t.TempDir(), "out"), &bytes.Buffer{})
	assert.ErrorContains(t, err, "no run data found")
	store.AssertExpectations(t)
}

func TestExportRunsStoreError(t *testing.T) {
	store := &MockRunStore{}
	store.On("GetStatus").Return(schema.RunStatus{Backend: "sqlite", TotalRuns: 1}, nil)
	store.On("GetAllRuns").Return(nil, errors.New("boom"))

	err := ExportRuns(store, filepath.Join(t.TempDir(), "out"), &bytes.Buffer{})
	assert.ErrorContains(t, err, "failed to retrieve extraction runs")
	store.AssertNotCalled(t, "GetAllGroupOutcomes")
}

func TestExportRunsSQLite(t *testing.T) {
	store := newTestRunStore(t)

	start := time.Date(2024, 5, 1, 8, 0, 0, 0, time.UTC)
	runID, err := store.BeginRun(start, map[string]any{"workers": 4})
	require.NoError(t, err)
	require.NoError(t, store.RecordGroupOutcomes(runID, []schema.GroupOutcome{
		{GroupID: "a", Status: schema.GroupOK, FeatureCount: 10},
		{GroupID: "b", Status: schema.GroupFailed, Err: errors.New("unorderable")},
	}))
	require.NoError(t, store.EndRun(runID, start.Add(time.Second), 2, 1))

	prefix := filepath.Join(t.TempDir(), "export")
	var buf bytes.Buffer
	require.NoError(t, ExportRuns(store, prefix, &buf))

	assert.Contains(t, buf.String(), "Exporting data from sqlite backend")
	assert.Contains(t, buf.String(), "Exported 1 runs to: "+prefix+runsExportSuffix)
	assert.Contains(t, buf.String(), "Exported 2 group outcomes to: "+prefix+outcomesExportSuffix)

	runs := readParquetFile[tsparquet.ExtractionRun](t, prefix+runsExportSuffix)
	require.Len(t, runs, 1)
	assert.Equal(t, runID, runs[0].RunID)
	assert.Equal(t, int32(2), runs[0].TotalGroups)

	outcomes := readParquetFile[tsparquet.GroupOutcome](t, prefix+outcomesExportSuffix)
	require.Len(t, outcomes, 2)
	assert.Equal(t, "b", outcomes[1].GroupID)
	require.NotNil(t, outcomes[1].ErrorMessage)
	assert.Equal(t, "unorderable", *outcomes[1].ErrorMessage)
}

func readParquetFile[T any](t *testing.T, path string) []T {
	t.Helper()
	f, err := os.Open(path)
	require.NoError(t, err)
	defer func() { _ = f.Close() }()

	stat, err := f.Stat()
	require.NoError(t, err)
	rows, err := parquet.Read[T](f, stat.Size())
	require.NoError(t, err)
	return rows
}
