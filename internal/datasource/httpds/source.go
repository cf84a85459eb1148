package httpds

import (
	"context"
	"fmt"
	"io"
	"io/fs"
	"net/http"
	"net/url"
	"path"
)

// Source downloads one URL.
type Source struct {
	client *Client
	url    string
}

// NewSource binds rawURL to client. A nil client gets NewClient(Config{}).
func NewSource(client *Client, rawURL string) *Source {
	if client == nil {
		client = NewClient(Config{})
	}
	return &Source{client: client, url: rawURL}
}

// Name returns the last path element of the URL, which keeps the file
// extension visible to callers.
func (s *Source) Name() string {
	u, err := url.Parse(s.url)
	if err != nil || u.Path == "" {
		return s.url
	}
	return path.Base(u.Path)
}

// Open performs the GET. A transport failure or a 404/410 yields an error
// matching fs.ErrNotExist; other non-2xx statuses are plain errors.
func (s *Source) Open(ctx context.Context) (io.ReadCloser, error) {
	resp, err := s.client.Get(ctx, s.url, nil)
	if err != nil {
		if ctx.Err() != nil {
			return nil, err
		}
		return nil, fmt.Errorf("%w: %w", fs.ErrNotExist, err)
	}
	switch {
	case resp.StatusCode >= 200 && resp.StatusCode <= 299:
		return resp.Body, nil
	case resp.StatusCode == http.StatusNotFound || resp.StatusCode == http.StatusGone:
		_ = resp.Body.Close()
		return nil, fmt.Errorf("httpds: GET %s: status %d: %w", s.url, resp.StatusCode, fs.ErrNotExist)
	default:
		_ = resp.Body.Close()
		return nil, fmt.Errorf("httpds: GET %s: status %d", s.url, resp.StatusCode)
	}
}
