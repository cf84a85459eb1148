// Package file implements a filesystem-backed data source on top of go-billy,
// so the same code reads the host disk in production and an in-memory tree in
// tests.
package file

import (
	"context"
	"fmt"
	"io"
	"io/fs"
	"path/filepath"

	"github.com/go-git/go-billy/v5"
	"github.com/go-git/go-billy/v5/osfs"
)

// Local opens one path on a billy filesystem.
type Local struct {
	fs   billy.Basic
	path string
}

// OS returns a billy filesystem that resolves paths exactly like the os
// package does.
func OS() billy.Basic { return &osfs.ChrootOS{} }

// NewLocal binds path on fsys. A nil fsys means the host filesystem; relative
// paths are then resolved against the working directory.
func NewLocal(fsys billy.Basic, path string) *Local {
	if fsys == nil {
		fsys = OS()
		if abs, err := filepath.Abs(path); err == nil {
			path = abs
		}
	}
	return &Local{fs: fsys, path: path}
}

// Name returns the bound path.
func (l *Local) Name() string { return l.path }

// Open checks that the path is a regular file and opens it for reading.
// A missing path or a directory yields an error matching fs.ErrNotExist.
func (l *Local) Open(ctx context.Context) (io.ReadCloser, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	info, err := l.fs.Stat(l.path)
	if err != nil {
		return nil, fmt.Errorf("stat %s: %w", l.path, err)
	}
	if info.IsDir() {
		return nil, fmt.Errorf("open %s: is a directory: %w", l.path, fs.ErrNotExist)
	}
	f, err := l.fs.Open(l.path)
	if err != nil {
		return nil, fmt.Errorf("open %s: %w", l.path, err)
	}
	return f, nil
}
