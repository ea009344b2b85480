package schema

import "time"

// ExtractionRunRecord represents a row from the tsfeat_extraction_runs table.
type ExtractionRunRecord struct {
	RunID         int64
	StartTime     time.Time
	EndTime       *time.Time
	RunDurationMs *int32
	TotalGroups   int32
	FailedGroups  int32
	ConfigParams  *string
}

// GroupOutcomeRecord represents a row from the tsfeat_group_outcomes table.
type GroupOutcomeRecord struct {
	RunID        int64
	GroupID      string
	Status       string
	FeatureCount int32
	ErrorMessage *string
}

// GroupOutcome is the in-memory outcome of one group within a run, before it is persisted.
type GroupOutcome struct {
	GroupID      string
	Status       GroupStatus
	FeatureCount int
	Err          error
}
