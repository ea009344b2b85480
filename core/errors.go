package core

import (
	"errors"
	"fmt"
)

// Sentinel causes carried by the typed errors below.
var (
	ErrNoFeatureColumns = errors.New("no feature columns remain after excluding id and sort columns")
	ErrNoGroupResults   = errors.New("no group produced a result")
)

// SchemaError reports a malformed extraction request. It aborts the whole run.
type SchemaError struct {
	Column string // Offending column, empty when the error is about the column set
	Reason string
	Err    error
}

func (e *SchemaError) Error() string {
	if e.Column == "" {
		return fmt.Sprintf("schema error: %s", e.Reason)
	}
	return fmt.Sprintf("schema error: column %q %s", e.Column, e.Reason)
}

func (e *SchemaError) Unwrap() error { return e.Err }

// GroupProcessingError reports a failure scoped to a single group.
type GroupProcessingError struct {
	GroupID string
	Column  string
	Err     error
}

func (e *GroupProcessingError) Error() string {
	if e.Column == "" {
		return fmt.Sprintf("group %q: %v", e.GroupID, e.Err)
	}
	return fmt.Sprintf("group %q column %q: %v", e.GroupID, e.Column, e.Err)
}

func (e *GroupProcessingError) Unwrap() error { return e.Err }

// AssemblyError reports that no output table could be built.
type AssemblyError struct {
	Reason string
	Err    error
}

func (e *AssemblyError) Error() string {
	return fmt.Sprintf("assembly error: %s", e.Reason)
}

func (e *AssemblyError) Unwrap() error { return e.Err }
