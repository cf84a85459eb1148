package datasource

import (
	"fmt"
	"io"
	"strings"

	"github.com/klauspost/compress/gzip"
)

// Decompress wraps rc in a gzip reader when name ends in ".gz" and returns
// the name with that suffix removed. Other streams pass through unchanged.
// Closing the returned reader closes rc.
func Decompress(name string, rc io.ReadCloser) (io.ReadCloser, string, error) {
	if !strings.HasSuffix(strings.ToLower(name), ".gz") {
		return rc, name, nil
	}
	zr, err := gzip.NewReader(rc)
	if err != nil {
		_ = rc.Close()
		return nil, "", fmt.Errorf("gzip %s: %w", name, err)
	}
	return &gzipReadCloser{Reader: zr, src: rc}, name[:len(name)-len(".gz")], nil
}

type gzipReadCloser struct {
	*gzip.Reader
	src io.Closer
}

func (g *gzipReadCloser) Close() error {
	zerr := g.Reader.Close()
	if err := g.src.Close(); err != nil {
		return err
	}
	return zerr
}
