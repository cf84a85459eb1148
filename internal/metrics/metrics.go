// Package metrics counts what cleanload runs do. The series are fixed here:
// stage executions with their wall time, row counts per kind, and finished
// runs by failure reason. The prompush and datadog subpackages translate them
// for a concrete system.
//
// The global backend is a no-op until SetBackend installs one, so the
// pipeline records unconditionally.
package metrics

import (
	"sync"
	"time"
)

// Series names, shared by every backend.
const (
	StepTotal   = "etl_step_total"
	StepSeconds = "etl_step_duration_seconds"
	RecordTotal = "etl_records_total"
	RunTotal    = "etl_runs_total"
)

// Kind is a bucket of RecordTotal.
type Kind string

const (
	Extracted Kind = "extracted"
	Imputed   Kind = "imputed" // cells, not rows
	Dropped   Kind = "dropped"
	Loaded    Kind = "loaded"
)

// Labels are string key/value pairs attached to a metric.
type Labels map[string]string

// Backend receives every observation.
type Backend interface {
	IncCounter(name string, delta float64, labels Labels)
	ObserveHistogram(name string, value float64, labels Labels)
	// Flush pushes buffered data, if the backend buffers.
	Flush() error
}

type nop struct{}

func (nop) IncCounter(string, float64, Labels)       {}
func (nop) ObserveHistogram(string, float64, Labels) {}
func (nop) Flush() error                             { return nil }

var (
	mu      sync.RWMutex
	backend Backend = nop{}
)

// SetBackend installs b and returns a function that reinstalls the backend it
// replaced. A nil b leaves the current backend in place.
func SetBackend(b Backend) (restore func()) {
	mu.Lock()
	defer mu.Unlock()
	prev := backend
	if b != nil {
		backend = b
	}
	return func() {
		mu.Lock()
		backend = prev
		mu.Unlock()
	}
}

func current() Backend {
	mu.RLock()
	defer mu.RUnlock()
	return backend
}

// Flush delegates to the current backend.
func Flush() error {
	return current().Flush()
}

// RecordStep counts one stage execution and observes its duration.
func RecordStep(job, step string, err error, d time.Duration) {
	l := Labels{"job": job, "step": step, "status": status(err == nil)}
	b := current()
	b.IncCounter(StepTotal, 1, l)
	b.ObserveHistogram(StepSeconds, d.Seconds(), l)
}

// RecordRow adds n to the kind bucket. Non-positive n records nothing, so a
// run that imputed no cells leaves no sample for "imputed".
func RecordRow(job string, kind Kind, n int64) {
	if n <= 0 {
		return
	}
	current().IncCounter(RecordTotal, float64(n), Labels{"job": job, "kind": string(kind)})
}

// RecordRun counts one finished run. An empty reason means it succeeded.
func RecordRun(job, reason string) {
	current().IncCounter(RunTotal, 1, Labels{
		"job":    job,
		"status": status(reason == ""),
		"reason": reason,
	})
}

func status(ok bool) string {
	if ok {
		return "success"
	}
	return "failure"
}
