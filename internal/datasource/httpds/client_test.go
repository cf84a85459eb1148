package httpds

import (
	"context"
	"errors"
	"io"
	"io/fs"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
	"time"
)

func noSleep(time.Duration) {}

func TestNewClientDefaults(t *testing.T) {
	t.Parallel()

	c := NewClient(Config{InsecureSkipVerify: true})
	if c.httpClient.Timeout != 30*time.Second {
		t.Fatalf("timeout = %v, want 30s", c.httpClient.Timeout)
	}
	if c.maxRetries != 0 {
		t.Fatalf("maxRetries = %d, want 0", c.maxRetries)
	}
	tr, ok := c.httpClient.Transport.(*http.Transport)
	if !ok {
		t.Fatalf("transport = %T, want *http.Transport", c.httpClient.Transport)
	}
	if tr.TLSClientConfig == nil || !tr.TLSClientConfig.InsecureSkipVerify {
		t.Fatalf("InsecureSkipVerify not applied")
	}
}

func TestGetDefaultMakesSingleAttempt(t *testing.T) {
	t.Parallel()

	var hits int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		atomic.AddInt32(&hits, 1)
		w.WriteHeader(http.StatusServiceUnavailable)
	}))
	defer srv.Close()

	c := NewClient(Config{})
	c.sleep = noSleep
	if _, err := c.Get(context.Background(), srv.URL, nil); err == nil {
		t.Fatalf("expected error for 503")
	}
	if got := atomic.LoadInt32(&hits); got != 1 {
		t.Fatalf("hits = %d, want 1", got)
	}
}

func TestGetRetriesWhenConfigured(t *testing.T) {
	t.Parallel()

	var hits int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		if atomic.AddInt32(&hits, 1) <= 2 {
			w.WriteHeader(http.StatusInternalServerError)
			return
		}
		_, _ = io.WriteString(w, "ok")
	}))
	defer srv.Close()

	c := NewClient(Config{MaxRetries: 3, InitialBackoff: time.Millisecond, MaxBackoff: 4 * time.Millisecond})
	var sleeps []time.Duration
	c.sleep = func(d time.Duration) { sleeps = append(sleeps, d) }

	resp, err := c.Get(context.Background(), srv.URL, nil)
	if err != nil {
		t.Fatalf("Get: %v", err)
	}
	resp.Body.Close()
	if got := atomic.LoadInt32(&hits); got != 3 {
		t.Fatalf("hits = %d, want 3", got)
	}
	want := []time.Duration{time.Millisecond, 2 * time.Millisecond}
	if len(sleeps) != len(want) || sleeps[0] != want[0] || sleeps[1] != want[1] {
		t.Fatalf("sleeps = %v, want %v", sleeps, want)
	}
}

func TestGetHeaders(t *testing.T) {
	t.Parallel()

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = io.WriteString(w, r.Header.Get("X-Env")+"|"+r.Header.Get("X-Base"))
	}))
	defer srv.Close()

	c := NewClient(Config{BaseHeaders: http.Header{"X-Env": {"base"}, "X-Base": {"b"}}})
	resp, err := c.Get(context.Background(), srv.URL, http.Header{"X-Env": {"override"}})
	if err != nil {
		t.Fatalf("Get: %v", err)
	}
	defer resp.Body.Close()
	body, _ := io.ReadAll(resp.Body)
	if string(body) != "override|b" {
		t.Fatalf("body = %q", body)
	}
}

func TestBackoffDuration(t *testing.T) {
	t.Parallel()

	cases := []struct {
		retry int
		want  time.Duration
	}{
		{0, 100 * time.Millisecond},
		{1, 200 * time.Millisecond},
		{3, 500 * time.Millisecond},
		{64, 500 * time.Millisecond},
	}
	for _, tc := range cases {
		if got := backoffDuration(100*time.Millisecond, tc.retry, 500*time.Millisecond); got != tc.want {
			t.Fatalf("backoffDuration(retry=%d) = %v, want %v", tc.retry, got, tc.want)
		}
	}
}

func TestSleepWithContextCanceled(t *testing.T) {
	t.Parallel()

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	if err := sleepWithContext(ctx, noSleep, time.Hour); !errors.Is(err, context.Canceled) {
		t.Fatalf("err = %v, want context.Canceled", err)
	}
}

func TestSourceOpen(t *testing.T) {
	t.Parallel()

	mux := http.NewServeMux()
	mux.HandleFunc("/data/jobs.csv", func(w http.ResponseWriter, _ *http.Request) {
		_, _ = io.WriteString(w, "a\n1\n")
	})
	mux.HandleFunc("/gone.csv", func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusGone)
	})
	mux.HandleFunc("/forbidden.csv", func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusForbidden)
	})
	srv := httptest.NewServer(mux)
	defer srv.Close()

	src := NewSource(nil, srv.URL+"/data/jobs.csv?v=1")
	if src.Name() != "jobs.csv" {
		t.Fatalf("Name = %q", src.Name())
	}
	rc, err := src.Open(context.Background())
	if err != nil {
		t.Fatalf("Open: %v", err)
	}
	body, _ := io.ReadAll(rc)
	rc.Close()
	if string(body) != "a\n1\n" {
		t.Fatalf("body = %q", body)
	}

	for _, p := range []string{"/missing.csv", "/gone.csv"} {
		if _, err := NewSource(nil, srv.URL+p).Open(context.Background()); !errors.Is(err, fs.ErrNotExist) {
			t.Fatalf("%s: err = %v, want fs.ErrNotExist", p, err)
		}
	}
	_, err = NewSource(nil, srv.URL+"/forbidden.csv").Open(context.Background())
	if err == nil || errors.Is(err, fs.ErrNotExist) {
		t.Fatalf("forbidden: err = %v, want non-NotExist error", err)
	}
}

func TestSourceOpenTransportFailure(t *testing.T) {
	t.Parallel()

	srv := httptest.NewServer(http.NotFoundHandler())
	url := srv.URL + "/x.csv"
	srv.Close()

	if _, err := NewSource(nil, url).Open(context.Background()); !errors.Is(err, fs.ErrNotExist) {
		t.Fatalf("err = %v, want fs.ErrNotExist", err)
	}
}
