package domain

import (
	"time"
)

// Data sources tracked by FetchState.
const (
	SourceUtilization = "utilization"
	SourceOverview    = "overview"
	SourceNames       = "names"
	SourceRecords     = "records"
)

// FetchSources are the sources the dashboard loader records state for, in
// display order.
var FetchSources = []string{SourceNames, SourceUtilization, SourceOverview}

// FetchState stores the outcome of the most recent fetch from a data source.
type FetchState struct {
	Source     string
	LastRun    time.Time
	LastData   any
	ErrorCount int
	LastError  string
}

// NewFetchState creates a new fetch state.
func NewFetchState(source string) *FetchState {
	return &FetchState{
		Source: source,
	}
}

// RecordSuccess records a successful fetch.
func (s *FetchState) RecordSuccess(data any) {
	s.LastRun = time.Now()
	s.LastData = data
	s.ResetErrors()
}

// RecordError records a failed fetch.
func (s *FetchState) RecordError(errMsg string) {
	s.ErrorCount++
	s.LastError = errMsg
}

// ResetErrors clears the error state.
func (s *FetchState) ResetErrors() {
	s.ErrorCount = 0
	s.LastError = ""
}

// Healthy reports whether the last fetch succeeded.
func (s *FetchState) Healthy() bool {
	return s.ErrorCount == 0 && !s.LastRun.IsZero()
}
