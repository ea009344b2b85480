// Package contract provides interfaces and shared utilities for internal architecture.
package contract

import (
	"time"

	"github.com/huangsam/tsfeat/schema"
)

// CacheManager defines the interface for managing the stores behind an extraction.
// This allows the storage layer to be mocked for testing.
type CacheManager interface {
	GetResultStore() CacheStore
	GetRunStore() RunStore
}

// CacheStore defines the interface for cached extraction results.
// This allows mocking the store for testing.
type CacheStore interface {
	Get(key string) ([]byte, int, int64, error)
	Set(key string, value []byte, version int, timestamp int64) error
	GetStatus() (schema.CacheStatus, error)
	Close() error
}

// RunStore defines the interface for tracking extraction runs and their per-group outcomes.
type RunStore interface {
	// BeginRun creates a new run record and returns its ID.
	BeginRun(startTime time.Time, configParams map[string]any) (int64, error)

	// EndRun closes a run record with its totals.
	EndRun(runID int64, endTime time.Time, totalGroups, failedGroups int) error

	// RecordGroupOutcomes stores the outcome of every group processed by a run.
	RecordGroupOutcomes(runID int64, outcomes []schema.GroupOutcome) error

	// GetStatus returns status information about the run store.
	GetStatus() (schema.RunStatus, error)

	// GetAllRuns returns every run record, oldest first.
	GetAllRuns() ([]schema.ExtractionRunRecord, error)

	// GetAllGroupOutcomes returns every group outcome record.
	GetAllGroupOutcomes() ([]schema.GroupOutcomeRecord, error)

	// Close closes the underlying connection.
	Close() error
}
