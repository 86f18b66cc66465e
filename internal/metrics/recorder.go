package metrics

import (
	"context"
	"errors"
	"time"
)

// ResultLabel enumerates outcome categories for counters.
type ResultLabel string

const (
	ResultSuccess  ResultLabel = "success"
	ResultFailed   ResultLabel = "failed"
	ResultSkipped  ResultLabel = "skipped"
	ResultCanceled ResultLabel = "canceled"
)

// Recorder defines observability hooks for loading, checking and serving
// navigation data. Implementations may forward to Prometheus or any other
// backend.
type Recorder interface {
	ObserveLoadDuration(d time.Duration, result ResultLabel)
	SetSiteSize(nodes, symbols, entries int)
	SetViolations(n int)
	SetBrokenHrefs(n int)
	IncReload(result ResultLabel)
	IncSnapshot(created bool)
	IncGitSync(result ResultLabel)
	ObserveHTTPRequest(route string, status int, d time.Duration)
}

// NoopRecorder is a Recorder that does nothing (default when metrics not configured).
type NoopRecorder struct{}

func (NoopRecorder) ObserveLoadDuration(time.Duration, ResultLabel)    {}
func (NoopRecorder) SetSiteSize(int, int, int)                         {}
func (NoopRecorder) SetViolations(int)                                 {}
func (NoopRecorder) SetBrokenHrefs(int)                                {}
func (NoopRecorder) IncReload(ResultLabel)                             {}
func (NoopRecorder) IncSnapshot(bool)                                  {}
func (NoopRecorder) IncGitSync(ResultLabel)                            {}
func (NoopRecorder) ObserveHTTPRequest(string, int, time.Duration)     {}

// ResultFor maps an error to a result label.
func ResultFor(err error) ResultLabel {
	switch {
	case err == nil:
		return ResultSuccess
	case errors.Is(err, context.Canceled), errors.Is(err, context.DeadlineExceeded):
		return ResultCanceled
	default:
		return ResultFailed
	}
}
