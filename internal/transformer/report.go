package transformer

import (
	"time"

	"cleanload/internal/transformer/builtin"
)

// StageReport is the record of one step.
type StageReport struct {
	Stage string
	builtin.Result
	RowsOut  int
	Duration time.Duration
}

// Report collects what the chain did. It is observability only; nothing in the
// pipeline branches on it.
type Report struct {
	RowsIn  int
	RowsOut int
	Stages  []StageReport
}

// Warnings returns every warning in step order, prefixed with the step name.
func (r Report) Warnings() []string {
	var out []string
	for _, s := range r.Stages {
		for _, w := range s.Warnings {
			out = append(out, s.Stage+": "+w)
		}
	}
	return out
}

// CellsImputed sums imputed cells over all steps.
func (r Report) CellsImputed() int {
	n := 0
	for _, s := range r.Stages {
		n += s.CellsImputed
	}
	return n
}

// RowsRemoved sums removed rows over all steps.
func (r Report) RowsRemoved() int {
	n := 0
	for _, s := range r.Stages {
		n += s.RowsRemoved
	}
	return n
}
