package pipeline

import (
	"fmt"
	"slices"
	"time"

	"cleanload/internal/etlerr"
	"cleanload/internal/extract"
	"cleanload/internal/transformer"
)

// State is a step of the run state machine. Transitions only move forward:
// INIT, EXTRACTING, TRANSFORMING, LOADING, then SUCCEEDED or FAILED.
type State string

const (
	StateInit         State = "INIT"
	StateExtracting   State = "EXTRACTING"
	StateTransforming State = "TRANSFORMING"
	StateLoading      State = "LOADING"
	StateSucceeded    State = "SUCCEEDED"
	StateFailed       State = "FAILED"
)

// Outcome is the terminal value of one run: either a success with the number
// of rows loaded, or a failure naming the stage and the reason. It is built
// once by Run and cannot be changed afterwards.
type Outcome struct {
	runID    string
	state    State
	stage    State
	reason   etlerr.Reason
	err      error
	rows     int64
	source   extract.Result
	report   transformer.Report
	duration time.Duration
}

// RunID identifies the run in logs and metrics.
func (o Outcome) RunID() string { return o.runID }

// Succeeded reports whether the run reached SUCCEEDED.
func (o Outcome) Succeeded() bool { return o.state == StateSucceeded }

// State is SUCCEEDED or FAILED.
func (o Outcome) State() State { return o.state }

// Stage is the stage that failed; empty on success.
func (o Outcome) Stage() State { return o.stage }

// Reason is the failure reason; empty on success.
func (o Outcome) Reason() etlerr.Reason { return o.reason }

// Err is the failure cause; nil on success.
func (o Outcome) Err() error { return o.err }

// RowsLoaded is the number of rows written; zero on failure.
func (o Outcome) RowsLoaded() int64 { return o.rows }

// Source describes how the input was read; empty if extraction never ran.
func (o Outcome) Source() extract.Result {
	r := o.source
	r.Attempts = slices.Clone(r.Attempts)
	return r
}

// Report is the transformation report, possibly partial if the run failed
// during or before transformation.
func (o Outcome) Report() transformer.Report {
	r := o.report
	r.Stages = slices.Clone(r.Stages)
	for i := range r.Stages {
		r.Stages[i].Warnings = slices.Clone(r.Stages[i].Warnings)
		r.Stages[i].ColumnsStandardized = slices.Clone(r.Stages[i].ColumnsStandardized)
	}
	return r
}

// Duration is the wall time of the run.
func (o Outcome) Duration() time.Duration { return o.duration }

// String renders the outcome as Success(rows) or Failure(stage, reason).
func (o Outcome) String() string {
	if o.Succeeded() {
		return fmt.Sprintf("Success(%d)", o.rows)
	}
	return fmt.Sprintf("Failure(%s, %s)", o.stage, o.reason)
}
