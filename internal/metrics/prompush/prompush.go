// Package prompush sends cleanload metrics to a Prometheus Pushgateway. A
// batch job exits before any scrape could reach it, so the registry is pushed
// once when the run ends.
package prompush

import (
	"fmt"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/push"

	"cleanload/internal/metrics"
)

// counterSeries lists the counters and their Prometheus label names. The
// "job" label is the Pushgateway grouping key, so no series carries it.
var counterSeries = []struct {
	name   string
	help   string
	labels []string
}{
	{metrics.StepTotal, "Stage executions by step and status.", []string{"step", "status"}},
	{metrics.RecordTotal, "Rows by kind; imputed counts cells.", []string{"kind"}},
	{metrics.RunTotal, "Finished runs by status and failure reason.", []string{"status", "reason"}},
}

// stepBuckets spans 10ms to about 3 minutes.
var stepBuckets = prometheus.ExponentialBuckets(0.01, 4, 8)

type counter struct {
	vec    *prometheus.CounterVec
	labels []string
}

// Backend implements metrics.Backend on a private registry.
type Backend struct {
	reg      *prometheus.Registry
	pusher   *push.Pusher
	counters map[string]counter
	steps    *prometheus.HistogramVec
}

// NewBackend registers the cleanload series and targets gatewayURL under the
// grouping key job. An empty job groups under "cleanload".
func NewBackend(job, gatewayURL string) (*Backend, error) {
	if gatewayURL == "" {
		return nil, fmt.Errorf("prompush: gateway URL is required")
	}
	if job == "" {
		job = "cleanload"
	}

	reg := prometheus.NewRegistry()
	b := &Backend{reg: reg, counters: make(map[string]counter, len(counterSeries))}
	for _, s := range counterSeries {
		vec := prometheus.NewCounterVec(prometheus.CounterOpts{Name: s.name, Help: s.help}, s.labels)
		if err := reg.Register(vec); err != nil {
			return nil, fmt.Errorf("prompush: register %s: %w", s.name, err)
		}
		b.counters[s.name] = counter{vec: vec, labels: s.labels}
	}

	b.steps = prometheus.NewHistogramVec(prometheus.HistogramOpts{
		Name:    metrics.StepSeconds,
		Help:    "Stage wall time in seconds by step and status.",
		Buckets: stepBuckets,
	}, []string{"step", "status"})
	if err := reg.Register(b.steps); err != nil {
		return nil, fmt.Errorf("prompush: register %s: %w", metrics.StepSeconds, err)
	}

	b.pusher = push.New(gatewayURL, job).Gatherer(reg)
	return b, nil
}

// IncCounter adds delta to a known series. Unknown names are ignored.
func (b *Backend) IncCounter(name string, delta float64, labels metrics.Labels) {
	c, ok := b.counters[name]
	if !ok {
		return
	}
	c.vec.With(pick(c.labels, labels)).Add(delta)
}

// ObserveHistogram records step durations; other names are ignored.
func (b *Backend) ObserveHistogram(name string, value float64, labels metrics.Labels) {
	if name != metrics.StepSeconds {
		return
	}
	b.steps.With(pick([]string{"step", "status"}, labels)).Observe(value)
}

// Flush replaces the job's group on the Pushgateway with the registry.
func (b *Backend) Flush() error {
	if err := b.pusher.Push(); err != nil {
		return fmt.Errorf("prompush: push: %w", err)
	}
	return nil
}

// pick projects labels onto names. Missing keys become empty values, which
// Prometheus accepts.
func pick(names []string, labels metrics.Labels) prometheus.Labels {
	out := make(prometheus.Labels, len(names))
	for _, n := range names {
		out[n] = labels[n]
	}
	return out
}
