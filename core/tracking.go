package core

import (
	"fmt"
	"time"

	"github.com/huangsam/tsfeat/internal/contract"
	"github.com/huangsam/tsfeat/schema"
)

// runTracker records one extraction run and its group outcomes in a RunStore.
// It is an Observer so the extractor feeds it directly.
type runTracker struct {
	store     contract.RunStore
	runID     int64
	outcomes  []schema.GroupOutcome
	groups    int
	failed    int
	completed bool // RunCompleted was observed
}

// beginRunTracking opens a run record. It returns nil when tracking is disabled or fails.
func beginRunTracking(store contract.RunStore, cfg *contract.Config) *runTracker {
	if store == nil {
		return nil
	}
	configParams := map[string]any{
		"input":       cfg.InputPath,
		"id_column":   cfg.IDColumn,
		"sort_column": cfg.SortColumn,
		"catalog":     string(cfg.Catalog),
		"fill":        cfg.FillLabel,
		"workers":     cfg.Workers,
		"limit":       cfg.ResultLimit,
	}
	runID, err := store.BeginRun(time.Now(), configParams)
	if err != nil {
		contract.LogWarn("Run tracking initialization failed", err)
		return nil
	}
	if runID <= 0 {
		return nil
	}
	return &runTracker{store: store, runID: runID}
}

// GroupSucceeded implements Observer.
func (rt *runTracker) GroupSucceeded(id string, features int) {
	rt.outcomes = append(rt.outcomes, schema.GroupOutcome{
		GroupID:      id,
		Status:       schema.GroupOK,
		FeatureCount: features,
	})
}

// GroupFailed implements Observer.
func (rt *runTracker) GroupFailed(id string, err error) {
	rt.outcomes = append(rt.outcomes, schema.GroupOutcome{
		GroupID: id,
		Status:  schema.GroupFailed,
		Err:     err,
	})
}

// RunCompleted implements Observer.
func (rt *runTracker) RunCompleted(groups, failed int, _ time.Duration) {
	rt.groups = groups
	rt.failed = failed
	rt.completed = true
}

// finish persists the outcomes and closes the run record. A run that aborted
// before its groups were processed keeps no totals and stays unfinished.
// Store failures are warnings.
func (rt *runTracker) finish(runErr error) {
	if rt == nil {
		return
	}
	if len(rt.outcomes) > 0 {
		if err := rt.store.RecordGroupOutcomes(rt.runID, rt.outcomes); err != nil {
			logTrackingError("RecordGroupOutcomes", rt.runID, err)
		}
	}
	if !rt.completed {
		contract.LogWarn(fmt.Sprintf("Run %d aborted before processing groups", rt.runID), runErr)
		return
	}
	if err := rt.store.EndRun(rt.runID, time.Now(), rt.groups, rt.failed); err != nil {
		logTrackingError("EndRun", rt.runID, err)
	}
}

// logTrackingError logs run tracking errors to stderr without disrupting extraction.
func logTrackingError(operation string, runID int64, err error) {
	contract.LogWarn(fmt.Sprintf("Run tracking failed for %s on run %d", operation, runID), err)
}
