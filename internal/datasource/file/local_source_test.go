package file

import (
	"context"
	"errors"
	"io"
	"io/fs"
	"os"
	"path/filepath"
	"testing"

	"github.com/go-git/go-billy/v5/memfs"
	"github.com/go-git/go-billy/v5/util"
)

func TestLocalOpen(t *testing.T) {
	t.Parallel()

	mem := memfs.New()
	if err := util.WriteFile(mem, "data/jobs.csv", []byte("a,b\n1,2\n"), 0o644); err != nil {
		t.Fatalf("seed memfs: %v", err)
	}
	if err := mem.MkdirAll("data/dir", 0o755); err != nil {
		t.Fatalf("mkdir: %v", err)
	}

	cases := []struct {
		name      string
		path      string
		wantErrIs error
		want      string
	}{
		{name: "reads_content", path: "data/jobs.csv", want: "a,b\n1,2\n"},
		{name: "missing_file", path: "data/missing.csv", wantErrIs: fs.ErrNotExist},
		{name: "directory", path: "data/dir", wantErrIs: fs.ErrNotExist},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			t.Parallel()
			rc, err := NewLocal(mem, tc.path).Open(context.Background())
			if tc.wantErrIs != nil {
				if !errors.Is(err, tc.wantErrIs) {
					t.Fatalf("err = %v, want errors.Is %v", err, tc.wantErrIs)
				}
				return
			}
			if err != nil {
				t.Fatalf("Open: %v", err)
			}
			defer rc.Close()
			got, err := io.ReadAll(rc)
			if err != nil {
				t.Fatalf("read: %v", err)
			}
			if string(got) != tc.want {
				t.Fatalf("content = %q, want %q", got, tc.want)
			}
		})
	}
}

func TestLocalOpenHostFilesystem(t *testing.T) {
	t.Parallel()

	p := filepath.Join(t.TempDir(), "x.csv")
	if err := os.WriteFile(p, []byte("h\n1\n"), 0o644); err != nil {
		t.Fatalf("write: %v", err)
	}
	rc, err := NewLocal(nil, p).Open(context.Background())
	if err != nil {
		t.Fatalf("Open: %v", err)
	}
	_ = rc.Close()
}

func TestLocalOpenCanceledContext(t *testing.T) {
	t.Parallel()

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	_, err := NewLocal(memfs.New(), "x.csv").Open(ctx)
	if !errors.Is(err, context.Canceled) {
		t.Fatalf("err = %v, want context.Canceled", err)
	}
}
