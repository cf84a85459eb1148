package datadog

import (
	"net"
	"reflect"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/DataDog/datadog-go/v5/statsd"

	"cleanload/internal/metrics"
)

type sent struct {
	kind  string
	name  string
	value float64
	tags  []string
}

// fakeClient records the calls the backend makes.
type fakeClient struct {
	statsd.NoOpClient
	mu    sync.Mutex
	calls []sent
}

func (f *fakeClient) record(s sent) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.calls = append(f.calls, s)
	return nil
}

func (f *fakeClient) Count(name string, v int64, tags []string, _ float64) error {
	return f.record(sent{"count", name, float64(v), tags})
}

func (f *fakeClient) Distribution(name string, v float64, tags []string, _ float64) error {
	return f.record(sent{"distribution", name, v, tags})
}

func (f *fakeClient) Histogram(name string, v float64, tags []string, _ float64) error {
	return f.record(sent{"histogram", name, v, tags})
}

func TestNewBackendRequiresAddr(t *testing.T) {
	t.Parallel()

	if _, err := NewBackend(Config{}); err == nil {
		t.Fatalf("expected error for empty Addr")
	}
}

func TestBackendRoutesSeries(t *testing.T) {
	t.Parallel()

	fc := &fakeClient{}
	b := &Backend{client: fc}
	b.IncCounter(metrics.RecordTotal, 9, metrics.Labels{"job": "ai_jobs", "kind": string(metrics.Loaded)})
	b.IncCounter(metrics.RunTotal, 1, metrics.Labels{"job": "ai_jobs", "status": "success", "reason": ""})
	b.ObserveHistogram(metrics.StepSeconds, 0.5, metrics.Labels{"step": "transform", "status": "success"})
	b.ObserveHistogram("etl_batch_rows", 500, nil)

	want := []sent{
		{"count", metrics.RecordTotal, 9, []string{"job:ai_jobs", "kind:loaded"}},
		{"count", metrics.RunTotal, 1, []string{"job:ai_jobs", "status:success"}},
		{"distribution", metrics.StepSeconds, 0.5, []string{"status:success", "step:transform"}},
		{"histogram", "etl_batch_rows", 500, nil},
	}
	if !reflect.DeepEqual(fc.calls, want) {
		t.Fatalf("calls = %+v\nwant    %+v", fc.calls, want)
	}
}

func TestBackendSendsToAgent(t *testing.T) {
	t.Parallel()

	conn, err := net.ListenPacket("udp", "127.0.0.1:0")
	if err != nil {
		t.Fatalf("listen: %v", err)
	}
	defer conn.Close()

	b, err := NewBackend(Config{Addr: conn.LocalAddr().String(), GlobalTags: []string{"env:test"}})
	if err != nil {
		t.Fatalf("NewBackend: %v", err)
	}
	b.IncCounter(metrics.RunTotal, 1, metrics.Labels{"status": "failure", "reason": "CONNECT_FAILURE"})
	if err := b.Flush(); err != nil {
		t.Fatalf("Flush: %v", err)
	}

	_ = conn.SetReadDeadline(time.Now().Add(2 * time.Second))
	buf := make([]byte, 4096)
	n, _, err := conn.ReadFrom(buf)
	if err != nil {
		t.Fatalf("read: %v", err)
	}
	got := string(buf[:n])
	for _, want := range []string{"cleanload.etl_runs_total:1|c", "reason:CONNECT_FAILURE", "env:test"} {
		if !strings.Contains(got, want) {
			t.Fatalf("packet %q missing %q", got, want)
		}
	}
}
