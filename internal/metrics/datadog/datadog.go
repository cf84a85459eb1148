// Package datadog sends cleanload metrics to a DogStatsD agent. Labels become
// "key:value" tags; step durations are sent as distributions so percentiles
// aggregate across hosts.
package datadog

import (
	"fmt"
	"maps"
	"math"
	"slices"

	"github.com/DataDog/datadog-go/v5/statsd"

	"cleanload/internal/metrics"
)

// DefaultNamespace prefixes metric names when Config.Namespace is empty.
const DefaultNamespace = "cleanload."

// Config holds Datadog backend configuration.
type Config struct {
	// Addr is the DogStatsD address, e.g. "127.0.0.1:8125" or "unix:///var/run/datadog/dsd.socket".
	Addr       string
	Namespace  string
	GlobalTags []string
}

// Backend implements metrics.Backend over a statsd client.
type Backend struct {
	client statsd.ClientInterface
}

// NewBackend dials the agent named by cfg.Addr.
func NewBackend(cfg Config) (*Backend, error) {
	if cfg.Addr == "" {
		return nil, fmt.Errorf("datadog: Addr is required")
	}
	ns := cfg.Namespace
	if ns == "" {
		ns = DefaultNamespace
	}
	opts := []statsd.Option{statsd.WithNamespace(ns)}
	if len(cfg.GlobalTags) > 0 {
		opts = append(opts, statsd.WithTags(cfg.GlobalTags))
	}
	c, err := statsd.New(cfg.Addr, opts...)
	if err != nil {
		return nil, fmt.Errorf("datadog: create client: %w", err)
	}
	return &Backend{client: c}, nil
}

// IncCounter sends a count. DogStatsD counts are integers; row and run
// counters always are, so rounding loses nothing in practice.
func (b *Backend) IncCounter(name string, delta float64, labels metrics.Labels) {
	_ = b.client.Count(name, int64(math.Round(delta)), tags(labels), 1)
}

// ObserveHistogram sends step durations as distributions and anything else
// as an agent-side histogram.
func (b *Backend) ObserveHistogram(name string, value float64, labels metrics.Labels) {
	if name == metrics.StepSeconds {
		_ = b.client.Distribution(name, value, tags(labels), 1)
		return
	}
	_ = b.client.Histogram(name, value, tags(labels), 1)
}

// Flush sends whatever the client has buffered.
func (b *Backend) Flush() error {
	if err := b.client.Flush(); err != nil {
		return fmt.Errorf("datadog: flush: %w", err)
	}
	return nil
}

// tags renders labels sorted by key. Empty values are dropped: a successful
// run has no reason.
func tags(labels metrics.Labels) []string {
	var out []string
	for _, k := range slices.Sorted(maps.Keys(labels)) {
		if v := labels[k]; v != "" {
			out = append(out, k+":"+v)
		}
	}
	return out
}
