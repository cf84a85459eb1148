package datasource

import (
	"bytes"
	"io"
	"testing"

	"github.com/klauspost/compress/gzip"
)

type closeTracker struct {
	io.Reader
	closed bool
}

func (c *closeTracker) Close() error { c.closed = true; return nil }

func TestDecompress(t *testing.T) {
	t.Parallel()

	var buf bytes.Buffer
	zw := gzip.NewWriter(&buf)
	if _, err := zw.Write([]byte("a,b\n1,2\n")); err != nil {
		t.Fatalf("gzip write: %v", err)
	}
	if err := zw.Close(); err != nil {
		t.Fatalf("gzip close: %v", err)
	}

	src := &closeTracker{Reader: &buf}
	rc, name, err := Decompress("jobs.CSV.gz", src)
	if err != nil {
		t.Fatalf("Decompress: %v", err)
	}
	if name != "jobs.CSV" {
		t.Fatalf("name = %q, want jobs.CSV", name)
	}
	got, err := io.ReadAll(rc)
	if err != nil {
		t.Fatalf("read: %v", err)
	}
	if string(got) != "a,b\n1,2\n" {
		t.Fatalf("content = %q", got)
	}
	if err := rc.Close(); err != nil {
		t.Fatalf("close: %v", err)
	}
	if !src.closed {
		t.Fatalf("underlying reader not closed")
	}
}

func TestDecompressPassThrough(t *testing.T) {
	t.Parallel()

	src := &closeTracker{Reader: bytes.NewBufferString("x")}
	rc, name, err := Decompress("jobs.csv", src)
	if err != nil {
		t.Fatalf("Decompress: %v", err)
	}
	if name != "jobs.csv" || rc != io.ReadCloser(src) {
		t.Fatalf("expected pass-through, got name=%q rc=%T", name, rc)
	}
}

func TestDecompressRejectsCorruptGzip(t *testing.T) {
	t.Parallel()

	src := &closeTracker{Reader: bytes.NewBufferString("not gzip")}
	if _, _, err := Decompress("x.gz", src); err == nil {
		t.Fatalf("expected error for corrupt gzip")
	}
	if !src.closed {
		t.Fatalf("source should be closed on error")
	}
}

func TestIsRemote(t *testing.T) {
	t.Parallel()

	cases := map[string]bool{
		"https://example.com/a.csv": true,
		"HTTP://example.com/a.csv":  true,
		"/data/a.csv":               false,
		"a.csv":                     false,
	}
	for in, want := range cases {
		if got := IsRemote(in); got != want {
			t.Fatalf("IsRemote(%q) = %v, want %v", in, got, want)
		}
	}
}
