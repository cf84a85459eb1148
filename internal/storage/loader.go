package storage

import (
	"context"
	"sync"
	"time"

	"go.uber.org/zap"

	"cleanload/internal/dataset"
	"cleanload/internal/etlerr"
	"cleanload/internal/logging"
)

// pingTimeout bounds the liveness check run by Connect.
const pingTimeout = 5 * time.Second

// Connection is a live, verified handle to the destination store.
type Connection struct {
	repo Repository
	kind string
	once sync.Once
}

// Kind reports the backend behind the connection.
func (c *Connection) Kind() string {
	if c == nil {
		return ""
	}
	return c.kind
}

// Loader is the load stage bound to one destination.
type Loader struct {
	cfg Config
	log *zap.Logger
}

// NewLoader returns a Loader for cfg.
func NewLoader(cfg Config, logger *zap.Logger) *Loader {
	return &Loader{cfg: cfg, log: logging.OrNop(logger)}
}

// Connect opens the store and runs a liveness query before returning. Any
// failure yields ConnectFailure and leaves nothing open.
func (l *Loader) Connect(ctx context.Context) (*Connection, error) {
	repo, err := New(ctx, l.cfg)
	if err != nil {
		l.log.Error("loader: open failed", zap.String("kind", l.cfg.Kind), zap.Error(err))
		return nil, etlerr.Wrap(etlerr.ConnectFailure, err)
	}
	pingCtx, cancel := context.WithTimeout(ctx, pingTimeout)
	defer cancel()
	if err := repo.Ping(pingCtx); err != nil {
		repo.Close()
		l.log.Error("loader: liveness check failed", zap.String("kind", l.cfg.Kind), zap.Error(err))
		return nil, etlerr.Wrap(etlerr.ConnectFailure, err)
	}
	l.log.Info("loader: connected", zap.String("kind", l.cfg.Kind))
	return &Connection{repo: repo, kind: l.cfg.Kind}, nil
}

// Load replaces table with ds. An empty dataset fails with NothingToLoad
// before the store is touched; any store error fails with LoadFailure after
// the backend has rolled back, leaving the table as it was.
func (l *Loader) Load(ctx context.Context, ds *dataset.Dataset, table string, conn *Connection) (int64, error) {
	if ds.Empty() {
		return 0, etlerr.New(etlerr.NothingToLoad, "dataset is nil or empty")
	}
	if conn == nil || conn.repo == nil {
		return 0, etlerr.New(etlerr.LoadFailure, "no open connection")
	}
	start := time.Now()
	n, err := conn.repo.ReplaceTable(ctx, table, ds)
	if err != nil {
		l.log.Error("loader: replace failed, rolled back",
			zap.String("table", table), zap.Error(err))
		return 0, etlerr.Wrap(etlerr.LoadFailure, err)
	}
	l.log.Info("loader: table replaced",
		zap.String("table", table),
		zap.Int64("rows", n),
		zap.Duration("took", time.Since(start)),
	)
	return n, nil
}

// Disconnect closes conn. It is safe on a nil connection and on repeated
// calls; only the first call closes.
func (l *Loader) Disconnect(conn *Connection) {
	if conn == nil {
		return
	}
	conn.once.Do(func() {
		if conn.repo != nil {
			conn.repo.Close()
		}
		l.log.Debug("loader: disconnected", zap.String("kind", conn.kind))
	})
}
