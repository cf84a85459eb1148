// Command fetch downloads remote source files into a local directory so that
// later etl runs read them from disk.
//
// Usage:
//
//	fetch -i urls.txt -o data -n 4
//
// The list holds one URL per line; blank lines and lines starting with # are
// ignored. One JSON record per URL is printed to stdout. The first failed
// download cancels the rest and the command exits 1.
package main

import (
	"bufio"
	"context"
	"encoding/json"
	"flag"
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"
	"sync"
	"time"

	"github.com/go-git/go-billy/v5"
	"github.com/go-git/go-billy/v5/osfs"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"cleanload/internal/datasource/httpds"
	"cleanload/internal/logging"
)

// record is one JSON line of output.
type record struct {
	URL        string `json:"url"`
	DurationMs int64  `json:"duration_ms"`
	Bytes      int64  `json:"download_size"`
	File       string `json:"file,omitempty"`
	Error      string `json:"error,omitempty"`
}

// job pairs a URL with the file name it is saved under.
type job struct {
	url  string
	name string
}

func main() {
	os.Exit(run(context.Background(), os.Args[1:], os.Stdout, os.Stderr))
}

func run(ctx context.Context, args []string, stdout, stderr io.Writer) int {
	fs := flag.NewFlagSet("fetch", flag.ContinueOnError)
	fs.SetOutput(stderr)
	var (
		urlFile  = fs.String("i", "", "path to a file with one URL per line")
		workers  = fs.Int("n", 4, "number of concurrent downloads")
		timeout  = fs.Duration("t", 30*time.Second, "HTTP timeout per request")
		retries  = fs.Int("retries", 2, "retries per URL for transport errors and 5xx/429")
		outDir   = fs.String("o", "out", "directory to save downloaded files")
		logLevel = fs.String("log-level", "info", "log level")
	)
	if err := fs.Parse(args); err != nil {
		return 2
	}
	if *urlFile == "" {
		fmt.Fprintln(stderr, "fetch: missing required -i <url_file>")
		return 2
	}
	if *workers <= 0 {
		fmt.Fprintln(stderr, "fetch: -n must be > 0")
		return 2
	}

	logger, err := logging.New(logging.Config{Level: *logLevel})
	if err != nil {
		fmt.Fprintln(stderr, err)
		return 1
	}
	defer func() { _ = logger.Sync() }()

	urls, err := readList(*urlFile)
	if err != nil {
		logger.Error("fetch: read list", zap.String("file", *urlFile), zap.Error(err))
		return 1
	}
	if len(urls) == 0 {
		logger.Warn("fetch: no URLs in list", zap.String("file", *urlFile))
		return 0
	}
	if err := os.MkdirAll(*outDir, 0o755); err != nil {
		logger.Error("fetch: create output dir", zap.String("dir", *outDir), zap.Error(err))
		return 1
	}

	client := httpds.NewClient(httpds.Config{
		Timeout:        *timeout,
		MaxRetries:     *retries,
		InitialBackoff: 200 * time.Millisecond,
		MaxBackoff:     5 * time.Second,
	})
	f := &fetcher{client: client, dst: osfs.New(*outDir), out: json.NewEncoder(stdout), log: logger}
	if err := f.fetchAll(ctx, plan(urls), *workers); err != nil {
		logger.Error("fetch: aborted", zap.Error(err))
		return 1
	}
	logger.Info("fetch: done", zap.Int("files", len(urls)), zap.String("dir", *outDir))
	return 0
}

// readList returns the URLs in path in file order.
func readList(path string) ([]string, error) {
	fh, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer fh.Close()

	var urls []string
	sc := bufio.NewScanner(fh)
	for sc.Scan() {
		line := strings.TrimSpace(sc.Text())
		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}
		urls = append(urls, line)
	}
	return urls, sc.Err()
}

// plan names each download after the last URL path element. Repeated names
// get a numeric suffix before the extension.
func plan(urls []string) []job {
	seen := make(map[string]int, len(urls))
	jobs := make([]job, 0, len(urls))
	for _, u := range urls {
		name := httpds.NewSource(nil, u).Name()
		name = strings.NewReplacer("/", "_", "\\", "_", ":", "_", "?", "_").Replace(name)
		if n := seen[name]; n > 0 {
			ext := ""
			if i := strings.LastIndexByte(name, '.'); i > 0 {
				name, ext = name[:i], name[i:]
			}
			seen[name+ext] = n + 1
			name = name + "." + strconv.Itoa(n) + ext
		} else {
			seen[name] = 1
		}
		jobs = append(jobs, job{url: u, name: name})
	}
	return jobs
}

type fetcher struct {
	client *httpds.Client
	dst    billy.Filesystem
	log    *zap.Logger

	mu  sync.Mutex
	out *json.Encoder
}

// fetchAll downloads jobs with at most workers in flight. The first failure
// cancels the downloads that have not finished.
func (f *fetcher) fetchAll(ctx context.Context, jobs []job, workers int) error {
	g, ctx := errgroup.WithContext(ctx)
	g.SetLimit(workers)
	for _, j := range jobs {
		if ctx.Err() != nil {
			break
		}
		g.Go(func() error { return f.fetch(ctx, j) })
	}
	return g.Wait()
}

func (f *fetcher) fetch(ctx context.Context, j job) error {
	start := time.Now()
	n, err := f.download(ctx, j)
	rec := record{URL: j.url, DurationMs: time.Since(start).Milliseconds(), Bytes: n}
	if err != nil {
		rec.Error = err.Error()
		f.log.Warn("fetch: download failed", zap.String("url", j.url), zap.Error(err))
	} else {
		rec.File = j.name
		f.log.Debug("fetch: saved", zap.String("url", j.url), zap.String("file", j.name), zap.Int64("bytes", n))
	}

	f.mu.Lock()
	_ = f.out.Encode(rec)
	f.mu.Unlock()
	if err != nil {
		return fmt.Errorf("%s: %w", j.url, err)
	}
	return nil
}

// download streams one URL into the destination. A partial file is removed.
func (f *fetcher) download(ctx context.Context, j job) (int64, error) {
	body, err := httpds.NewSource(f.client, j.url).Open(ctx)
	if err != nil {
		return 0, err
	}
	defer body.Close()

	dst, err := f.dst.Create(j.name)
	if err != nil {
		return 0, err
	}
	n, err := io.Copy(dst, body)
	if cerr := dst.Close(); err == nil {
		err = cerr
	}
	if err != nil {
		_ = f.dst.Remove(j.name)
		return n, err
	}
	return n, nil
}
