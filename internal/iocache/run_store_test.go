package iocache

import (
	"errors"
	"fmt"
	"path/filepath"
	"testing"
	"time"

	"github.com/huangsam/tsfeat/schema"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestRunStore(t *testing.T) *RunStoreImpl {
	t.Helper()
	store, err := NewRunStore(schema.SQLiteBackend, filepath.Join(t.TempDir(), "runs.db"))
	require.NoError(t, err)
	t.Cleanup(func() { _ = store.Close() })
	return store.(*RunStoreImpl)
}

func TestRunStoreNoneBackend(t *testing.T) {
	store, err := NewRunStore(schema.NoneBackend, "")
	require.NoError(t, err)

	runID, err := store.BeginRun(time.Now(), map[string]any{"workers": 2})
	assert.NoError(t, err)
	assert.Zero(t, runID)
	assert.NoError(t, store.EndRun(runID, time.Now(), 3, 1))
	assert.NoError(t, store.RecordGroupOutcomes(runID, []schema.GroupOutcome{{GroupID: "a", Status: schema.GroupOK}}))

	status, err := store.GetStatus()
	require.NoError(t, err)
	assert.Equal(t, "none", status.Backend)
	assert.False(t, status.Connected)

	runs, err := store.GetAllRuns()
	assert.NoError(t, err)
	assert.Empty(t, runs)
	outcomes, err := store.GetAllGroupOutcomes()
	assert.NoError(t, err)
	assert.Empty(t, outcomes)
	assert.NoError(t, store.Close())
}

func TestRunStoreLifecycle(t *testing.T) {
	store := newTestRunStore(t)

	start := time.Date(2024, 3, 1, 12, 0, 0, 0, time.UTC)
	runID, err := store.BeginRun(start, map[string]any{"catalog": "minimal"})
	require.NoError(t, err)
	assert.Positive(t, runID)

	outcomes := []schema.GroupOutcome{
		{GroupID: "a", Status: schema.GroupOK, FeatureCount: 20},
		{GroupID: "b", Status: schema.GroupFailed, Err: errors.New("column y is not numeric")},
	}
	require.NoError(t, store.RecordGroupOutcomes(runID, outcomes))
	require.NoError(t, store.EndRun(runID, start.Add(1500*time.Millisecond), 2, 1))

	runs, err := store.GetAllRuns()
	require.NoError(t, err)
	require.Len(t, runs, 1)
	run := runs[0]
	assert.Equal(t, runID, run.RunID)
	assert.True(t, start.Equal(run.StartTime))
	require.NotNil(t, run.EndTime)
	assert.True(t, start.Add(1500*time.Millisecond).Equal(*run.EndTime))
	require.NotNil(t, run.RunDurationMs)
	assert.Equal(t, int32(1500), *run.RunDurationMs)
	assert.Equal(t, int32(2), run.TotalGroups)
	assert.Equal(t, int32(1), run.FailedGroups)
	require.NotNil(t, run.ConfigParams)
	assert.JSONEq(t, `{"catalog":"minimal"}`, *run.ConfigParams)

	got, err := store.GetAllGroupOutcomes()
	require.NoError(t, err)
	require.Len(t, got, 2)
	assert.Equal(t, "a", got[0].GroupID)
	assert.Equal(t, "ok", got[0].Status)
	assert.Equal(t, int32(20), got[0].FeatureCount)
	assert.Nil(t, got[0].ErrorMessage)
	assert.Equal(t, "failed", got[1].Status)
	require.NotNil(t, got[1].ErrorMessage)
	assert.Equal(t, "column y is not numeric", *got[1].ErrorMessage)
}

func TestRunStoreRecordManyOutcomes(t *testing.T) {
	store := newTestRunStore(t)

	runID, err := store.BeginRun(time.Now(), nil)
	require.NoError(t, err)

	outcomes := make([]schema.GroupOutcome, outcomeBatchSize*2+7)
	for i := range outcomes {
		outcomes[i] = schema.GroupOutcome{GroupID: fmt.Sprintf("group-%04d", i), Status: schema.GroupOK, FeatureCount: 10}
	}
	require.NoError(t, store.RecordGroupOutcomes(runID, outcomes))

	got, err := store.GetAllGroupOutcomes()
	require.NoError(t, err)
	assert.Len(t, got, len(outcomes))

	assert.NoError(t, store.RecordGroupOutcomes(runID, nil))
}

func TestRunStoreEndRunUnknown(t *testing.T) {
	store := newTestRunStore(t)
	err := store.EndRun(42, time.Now(), 1, 0)
	assert.Error(t, err)
}

func TestRunStoreGetStatus(t *testing.T) {
	store := newTestRunStore(t)

	status, err := store.GetStatus()
	require.NoError(t, err)
	assert.Equal(t, "sqlite", status.Backend)
	assert.True(t, status.Connected)
	assert.Equal(t, 0, status.TotalRuns)
	assert.True(t, status.LastRunTime.IsZero())

	first := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
	second := first.Add(time.Hour)
	id1, err := store.BeginRun(first, nil)
	require.NoError(t, err)
	require.NoError(t, store.EndRun(id1, first.Add(time.Second), 4, 0))
	id2, err := store.BeginRun(second, nil)
	require.NoError(t, err)
	require.NoError(t, store.EndRun(id2, second.Add(time.Second), 3, 1))
	require.NoError(t, store.RecordGroupOutcomes(id2, []schema.GroupOutcome{
		{GroupID: "x", Status: schema.GroupOK, FeatureCount: 10},
	}))

	status, err = store.GetStatus()
	require.NoError(t, err)
	assert.Equal(t, 2, status.TotalRuns)
	assert.Equal(t, id2, status.LastRunID)
	assert.True(t, second.Equal(status.LastRunTime))
	assert.True(t, first.Equal(status.OldestRunTime))
	assert.Equal(t, 7, status.TotalGroupsTraced)
	assert.Equal(t, int64(2), status.TableSizes[extractionRunsTable])
	assert.Equal(t, int64(1), status.TableSizes[groupOutcomesTable])
}

func TestCreateRunQueries(t *testing.T) {
	assert.Contains(t, getCreateRunsQuery(schema.MySQLBackend), "AUTO_INCREMENT")
	assert.Contains(t, getCreateRunsQuery(schema.PostgreSQLBackend), "BIGSERIAL")
	assert.Contains(t, getCreateRunsQuery(schema.SQLiteBackend), "AUTOINCREMENT")
	assert.Contains(t, getCreateOutcomesQuery(schema.MySQLBackend), "VARCHAR(512)")
	assert.Contains(t, getCreateOutcomesQuery(schema.PostgreSQLBackend), "PRIMARY KEY (run_id, group_id)")
}

func TestClearRuns(t *testing.T) {
	dbPath := filepath.Join(t.TempDir(), "runs.db")
	store, err := NewRunStore(schema.SQLiteBackend, dbPath)
	require.NoError(t, err)
	_, err = store.BeginRun(time.Now(), nil)
	require.NoError(t, err)
	require.NoError(t, store.Close())

	require.NoError(t, ClearRuns(schema.SQLiteBackend, dbPath, ""))

	store, err = NewRunStore(schema.SQLiteBackend, dbPath)
	require.NoError(t, err)
	defer func() { _ = store.Close() }()
	status, err := store.GetStatus()
	require.NoError(t, err)
	assert.Equal(t, 0, status.TotalRuns)
}
