// Package pipeline sequences extraction, transformation and load for one run
// and turns whatever happens into a single Outcome.
//
// Run never returns an error and never panics. The first failing stage moves
// the run to FAILED and skips the rest. The store connection, if one was
// acquired, is released exactly once on every exit path.
package pipeline

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"cleanload/internal/dataset"
	"cleanload/internal/etlerr"
	"cleanload/internal/extract"
	"cleanload/internal/logging"
	"cleanload/internal/metrics"
	"cleanload/internal/storage"
	"cleanload/internal/transformer"
)

// Extractor reads the source into a dataset.
type Extractor interface {
	Extract(ctx context.Context, sourcePath, preferredEncoding string) (*dataset.Dataset, extract.Result, error)
}

// Transformer cleans a dataset and returns a new one.
type Transformer interface {
	Transform(ctx context.Context, ds *dataset.Dataset) (*dataset.Dataset, transformer.Report, error)
}

// Loader writes the cleaned dataset. Disconnect must accept a nil connection.
type Loader interface {
	Connect(ctx context.Context) (*storage.Connection, error)
	Load(ctx context.Context, ds *dataset.Dataset, table string, conn *storage.Connection) (int64, error)
	Disconnect(conn *storage.Connection)
}

// Config names what one run reads and writes.
type Config struct {
	// Job labels logs and metrics. Empty means "cleanload".
	Job        string
	SourcePath string
	Encoding   string
	Table      string
}

// Pipeline runs the three stages in order.
type Pipeline struct {
	cfg         Config
	extractor   Extractor
	transformer Transformer
	loader      Loader
	log         *zap.Logger
}

// New returns a Pipeline wired to the given stages.
func New(cfg Config, ex Extractor, tr Transformer, ld Loader, logger *zap.Logger) *Pipeline {
	if cfg.Job == "" {
		cfg.Job = "cleanload"
	}
	return &Pipeline{
		cfg:         cfg,
		extractor:   ex,
		transformer: tr,
		loader:      ld,
		log:         logging.OrNop(logger),
	}
}

// run is the mutable state of one Run. Only Run touches it.
type run struct {
	job        string
	log        *zap.Logger
	out        Outcome
	start      time.Time
	stageStart time.Time
}

func (r *run) enter(s State) {
	r.out.state = s
	r.stageStart = time.Now()
	r.log.Debug("pipeline: stage started", zap.String("stage", string(s)))
}

// done records the metric for the current stage.
func (r *run) done(step string, err error) {
	metrics.RecordStep(r.job, step, err, time.Since(r.stageStart))
}

// fail moves the run to FAILED, remembering the stage it failed in. Only the
// first failure counts.
func (r *run) fail(err error) {
	if r.out.state == StateFailed {
		return
	}
	r.out.stage = r.out.state
	r.out.state = StateFailed
	r.out.reason = etlerr.ReasonOf(err)
	r.out.err = err
}

// Run executes one pipeline run.
func (p *Pipeline) Run(ctx context.Context) (out Outcome) {
	r := &run{job: p.cfg.Job, start: time.Now()}
	r.out.runID = uuid.NewString()
	r.out.state = StateInit
	r.log = p.log.With(zap.String("run_id", r.out.runID), zap.String("job", r.job))

	var conn *storage.Connection
	defer func() {
		if v := recover(); v != nil {
			r.log.Error("pipeline: recovered panic",
				zap.String("stage", string(r.out.state)),
				zap.Any("panic", v),
				zap.Stack("stack"),
			)
			r.fail(etlerr.Wrap(etlerr.Unexpected, fmt.Errorf("panic: %v", v)))
		}
		p.release(r, conn)
		out = p.finish(r)
	}()

	r.enter(StateExtracting)
	ds, src, err := p.extractor.Extract(ctx, p.cfg.SourcePath, p.cfg.Encoding)
	r.out.source = src
	r.done("extract", err)
	if err != nil {
		r.fail(err)
		return
	}
	metrics.RecordRow(r.job, metrics.Extracted, int64(ds.Len()))

	r.enter(StateTransforming)
	clean, rep, err := p.transformer.Transform(ctx, ds)
	r.out.report = rep
	r.done("transform", err)
	if err != nil {
		r.fail(err)
		return
	}
	metrics.RecordRow(r.job, metrics.Imputed, int64(rep.CellsImputed()))
	metrics.RecordRow(r.job, metrics.Dropped, int64(rep.RowsRemoved()))

	r.enter(StateLoading)
	conn, err = p.loader.Connect(ctx)
	if err != nil {
		r.done("load", err)
		r.fail(err)
		return
	}
	n, err := p.loader.Load(ctx, clean, p.cfg.Table, conn)
	r.done("load", err)
	if err != nil {
		r.fail(err)
		return
	}
	metrics.RecordRow(r.job, metrics.Loaded, n)

	r.out.rows = n
	r.out.state = StateSucceeded
	return
}

// release disconnects conn. A panicking Disconnect is logged and swallowed so
// that Run keeps its no-panic guarantee.
func (p *Pipeline) release(r *run, conn *storage.Connection) {
	defer func() {
		if v := recover(); v != nil {
			r.log.Error("pipeline: disconnect panicked", zap.Any("panic", v))
		}
	}()
	p.loader.Disconnect(conn)
}

func (p *Pipeline) finish(r *run) Outcome {
	r.out.duration = time.Since(r.start)
	o := r.out

	metrics.RecordRun(r.job, string(o.reason))

	if o.Succeeded() {
		r.log.Info("pipeline: run succeeded",
			zap.Int64("rows_loaded", o.rows),
			zap.Int("cells_imputed", o.report.CellsImputed()),
			zap.Int("rows_removed", o.report.RowsRemoved()),
			zap.Duration("took", o.duration),
		)
		return o
	}
	r.log.Error("pipeline: run failed",
		zap.String("stage", string(o.stage)),
		zap.String("reason", string(o.reason)),
		zap.Error(o.err),
		zap.Duration("took", o.duration),
	)
	return o
}
