// Package extract reads a source file into a dataset.Dataset.
//
// Extraction never alters the source and never imputes. Text sources are tried
// against an ordered list of encodings (the preferred one, then UTF-8, Latin-1
// and Windows-1252); the first encoding that decodes and parses as a
// rectangular table with a header wins. Workbook sources (.xlsx) skip the
// encoding list. A trailing .gz is decompressed first.
package extract

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"path"
	"strings"
	"time"

	"github.com/gabriel-vasile/mimetype"
	"github.com/go-git/go-billy/v5"
	"go.uber.org/zap"

	"cleanload/internal/dataset"
	"cleanload/internal/datasource"
	"cleanload/internal/datasource/file"
	"cleanload/internal/datasource/httpds"
	"cleanload/internal/etlerr"
	"cleanload/internal/logging"
	"cleanload/internal/parser"
	pcsv "cleanload/internal/parser/csv"
	"cleanload/internal/parser/xlsx"
)

// Options configures an Extractor. The zero value reads comma-separated files
// from the host filesystem and URLs with a no-retry HTTP client.
type Options struct {
	// FS resolves local paths. Nil means the host filesystem.
	FS billy.Basic

	// HTTP fetches http(s) sources. Nil means httpds.NewClient(httpds.Config{}).
	HTTP *httpds.Client

	// Format forces "csv" or "xlsx". Empty picks by file extension.
	Format string

	CSV   pcsv.Options
	Sheet string

	Logger *zap.Logger
}

// Attempt records the outcome of one candidate encoding.
type Attempt struct {
	Encoding string `json:"encoding"`
	Err      string `json:"error,omitempty"`
}

// Result describes how a source was read. It is informational only.
type Result struct {
	Source             string        `json:"source"`
	Format             string        `json:"format"`
	Encoding           string        `json:"encoding,omitempty"`
	DetectedCharset    string        `json:"detected_charset,omitempty"`
	DetectedConfidence int           `json:"detected_confidence,omitempty"`
	MIME               string        `json:"mime,omitempty"`
	Attempts           []Attempt     `json:"attempts,omitempty"`
	Rows               int           `json:"rows"`
	Columns            int           `json:"columns"`
	Duration           time.Duration `json:"duration"`
}

// Extractor reads sources according to its Options.
type Extractor struct {
	opt Options
	log *zap.Logger
}

// New returns an Extractor.
func New(opt Options) *Extractor {
	return &Extractor{opt: opt, log: logging.OrNop(opt.Logger)}
}

// Extract reads sourcePath into a Dataset.
//
// Failures are *etlerr.Error values: SourceNotFound when the path cannot be
// opened, UnreadableSource when the bytes are not a table under any candidate
// encoding, EmptySource when the table has a header but no rows.
func (e *Extractor) Extract(ctx context.Context, sourcePath, preferredEncoding string) (*dataset.Dataset, Result, error) {
	start := time.Now()
	ds, res, err := e.extract(ctx, sourcePath, preferredEncoding)
	res.Duration = time.Since(start)
	return ds, res, err
}

func (e *Extractor) extract(ctx context.Context, sourcePath, preferredEncoding string) (*dataset.Dataset, Result, error) {
	res := Result{Source: sourcePath}
	src := e.resolve(sourcePath)
	rc, err := src.Open(ctx)
	if err != nil {
		return nil, res, etlerr.Wrap(etlerr.SourceNotFound, err)
	}
	rc, name, err := datasource.Decompress(src.Name(), rc)
	if err != nil {
		return nil, res, etlerr.Wrap(etlerr.UnreadableSource, err)
	}
	raw, err := io.ReadAll(rc)
	_ = rc.Close()
	if err != nil {
		return nil, res, etlerr.Wrap(etlerr.UnreadableSource, fmt.Errorf("read %s: %w", sourcePath, err))
	}

	var tbl *parser.Table
	if e.workbook(name) {
		res.Format = "xlsx"
		tbl, err = xlsx.NewParser(xlsx.Options{Sheet: e.opt.Sheet}).Parse(bytes.NewReader(raw))
		if err != nil {
			return nil, res, etlerr.Wrap(etlerr.UnreadableSource, err)
		}
	} else {
		res.Format = "csv"
		tbl, err = e.parseText(raw, preferredEncoding, &res)
		if err != nil {
			return nil, res, err
		}
	}

	ds, err := dataset.FromRecords(tbl.Header, tbl.Rows)
	if err != nil {
		return nil, res, etlerr.Wrap(etlerr.UnreadableSource, err)
	}
	res.Rows, res.Columns = ds.Len(), ds.Width()
	if ds.Len() == 0 {
		return nil, res, etlerr.New(etlerr.EmptySource, "%s: header without data rows", sourcePath)
	}

	e.log.Info("extract: loaded",
		zap.String("source", sourcePath),
		zap.String("format", res.Format),
		zap.String("encoding", res.Encoding),
		zap.Int("rows", res.Rows),
		zap.Int("columns", res.Columns),
	)
	return ds, res, nil
}

func (e *Extractor) workbook(name string) bool {
	switch e.opt.Format {
	case "xlsx":
		return true
	case "csv":
		return false
	}
	return strings.EqualFold(path.Ext(name), ".xlsx")
}

func (e *Extractor) resolve(sourcePath string) datasource.Source {
	if datasource.IsRemote(sourcePath) {
		return httpds.NewSource(e.opt.HTTP, sourcePath)
	}
	return file.NewLocal(e.opt.FS, sourcePath)
}

// parseText rejects binary content and then walks the attempt list.
func (e *Extractor) parseText(raw []byte, preferred string, res *Result) (*parser.Table, error) {
	mt := mimetype.Detect(raw)
	res.MIME = mt.String()
	if !isText(mt) {
		return nil, etlerr.New(etlerr.UnreadableSource, "%s: content is %s, not delimited text", res.Source, mt)
	}

	res.DetectedCharset, res.DetectedConfidence = detectCharset(raw)
	e.log.Debug("extract: charset detected",
		zap.String("source", res.Source),
		zap.String("charset", res.DetectedCharset),
		zap.Int("confidence", res.DetectedConfidence),
	)

	p := pcsv.NewParser(e.opt.CSV)
	var errs []error
	for _, c := range attemptOrder(preferred) {
		if c.err != nil {
			e.log.Warn("extract: skipping encoding", zap.String("encoding", c.label), zap.Error(c.err))
			res.Attempts = append(res.Attempts, Attempt{Encoding: c.label, Err: c.err.Error()})
			errs = append(errs, c.err)
			continue
		}
		tbl, err := parseWith(p, c, raw)
		if err != nil {
			e.log.Debug("extract: encoding rejected", zap.String("encoding", c.name), zap.Error(err))
			res.Attempts = append(res.Attempts, Attempt{Encoding: c.name, Err: err.Error()})
			errs = append(errs, fmt.Errorf("%s: %w", c.name, err))
			continue
		}
		res.Attempts = append(res.Attempts, Attempt{Encoding: c.name})
		res.Encoding = c.name
		return tbl, nil
	}
	return nil, etlerr.Wrap(etlerr.UnreadableSource, fmt.Errorf("%s: no candidate encoding produced a table: %w", res.Source, errors.Join(errs...)))
}

func parseWith(p *pcsv.Parser, c candidate, raw []byte) (*parser.Table, error) {
	r, err := c.decoder(raw)
	if err != nil {
		return nil, err
	}
	return p.Parse(r)
}

// isText reports whether mt is text/plain or derives from it (csv, tsv, json).
func isText(mt *mimetype.MIME) bool {
	for m := mt; m != nil; m = m.Parent() {
		if m.Is("text/plain") {
			return true
		}
	}
	return false
}
