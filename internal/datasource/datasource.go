// Package datasource defines where raw dataset bytes come from.
//
// A Source yields a byte stream and a name. The name carries the original file
// extension so callers can pick a decompressor or a parser. Sources report a
// missing or unreachable origin with an error matching fs.ErrNotExist.
package datasource

import (
	"context"
	"io"
	"strings"
)

type Source interface {
	Open(ctx context.Context) (io.ReadCloser, error)
	Name() string
}

// IsRemote reports whether path is an http(s) URL.
func IsRemote(path string) bool {
	p := strings.ToLower(path)
	return strings.HasPrefix(p, "http://") || strings.HasPrefix(p, "https://")
}
