// Package sqlite implements a SQLite-backed storage.Repository using
// database/sql and the pure-Go modernc.org/sqlite driver.
//
// SQLite has no bulk-load API like Postgres COPY, so rows go through a
// prepared INSERT; running the whole replace inside one transaction keeps it
// atomic and fast enough for moderate volumes.
package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"time"

	"go.uber.org/zap"
	_ "modernc.org/sqlite"

	"cleanload/internal/dataset"
	gddl "cleanload/internal/ddl"
	"cleanload/internal/logging"
	"cleanload/internal/storage"
	sqliteddl "cleanload/internal/storage/sqlite/ddl"
)

// Repository is a SQLite-backed implementation of storage.Repository.
type Repository struct {
	db  *sql.DB
	cfg Config
	log *zap.Logger
}

// NewRepository opens a SQLite database and returns a Repository plus a
// Close function for cleanup. Opening is lazy; use Ping to verify the DSN.
func NewRepository(ctx context.Context, cfg Config) (*Repository, func(), error) {
	if strings.TrimSpace(cfg.DSN) == "" {
		return nil, nil, fmt.Errorf("sqlite: DSN must not be empty")
	}

	db, err := sql.Open("sqlite", cfg.DSN)
	if err != nil {
		return nil, nil, fmt.Errorf("sqlite: open: %w", err)
	}
	// One writer; also keeps ":memory:" databases on a single connection.
	db.SetMaxOpenConns(1)

	closeFn := func() { _ = db.Close() }
	return &Repository{db: db, cfg: cfg, log: logging.OrNop(cfg.Logger)}, closeFn, nil
}

// Ping runs SELECT 1.
func (r *Repository) Ping(ctx context.Context) error {
	var one int
	if err := r.db.QueryRowContext(ctx, "SELECT 1").Scan(&one); err != nil {
		return fmt.Errorf("sqlite: ping: %w", err)
	}
	return nil
}

// ReplaceTable builds a staging table shaped after ds, inserts every row,
// drops table and renames the staging table into its place, all in one
// transaction. Any error rolls the transaction back.
func (r *Repository) ReplaceTable(ctx context.Context, table string, ds *dataset.Dataset) (n int64, err error) {
	staging := gddl.StagingName(table)
	td, err := sqliteddl.FromDataset(staging, ds)
	if err != nil {
		return 0, err
	}
	create, err := sqliteddl.BuildCreateTableSQL(td)
	if err != nil {
		return 0, err
	}

	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return 0, fmt.Errorf("sqlite: begin tx: %w", err)
	}
	defer func() {
		if err != nil {
			if rbErr := tx.Rollback(); rbErr != nil && !errors.Is(rbErr, sql.ErrTxDone) {
				r.log.Warn("sqlite: rollback failed", zap.Error(rbErr))
			}
		}
	}()

	if _, err = tx.ExecContext(ctx, create); err != nil {
		return 0, fmt.Errorf("sqlite: create staging %s: %w", staging, err)
	}

	stmt, err := tx.PrepareContext(ctx, sqliteddl.InsertSQL(staging, td.Names()))
	if err != nil {
		return 0, fmt.Errorf("sqlite: prepare insert: %w", err)
	}
	defer stmt.Close()

	n, err = storage.CopyBatches(ctx, ds, r.cfg.BatchSize, encode,
		func(ctx context.Context, columns []string, rows [][]any) (int64, error) {
			var inserted int64
			for _, row := range rows {
				if _, err := stmt.ExecContext(ctx, row...); err != nil {
					return inserted, fmt.Errorf("sqlite: insert: %w", err)
				}
				inserted++
			}
			return inserted, nil
		}, r.log)
	if err != nil {
		return 0, err
	}

	if _, err = tx.ExecContext(ctx, sqliteddl.DropTableSQL(table)); err != nil {
		return 0, fmt.Errorf("sqlite: drop %s: %w", table, err)
	}
	if _, err = tx.ExecContext(ctx, sqliteddl.RenameTableSQL(staging, table)); err != nil {
		return 0, fmt.Errorf("sqlite: rename %s: %w", staging, err)
	}
	if err = tx.Commit(); err != nil {
		return 0, fmt.Errorf("sqlite: commit: %w", err)
	}
	return n, nil
}

// encode stores booleans as 0/1 and dates as ISO-8601 text. Calendar dates
// render as YYYY-MM-DD; anything with a time of day renders as RFC 3339.
func encode(v dataset.Value) any {
	switch v.Kind() {
	case dataset.Boolean:
		if v.Bool() {
			return int64(1)
		}
		return int64(0)
	case dataset.Date:
		t := v.Time()
		if h, m, s := t.Clock(); h == 0 && m == 0 && s == 0 && t.Nanosecond() == 0 {
			return t.Format(time.DateOnly)
		}
		return t.Format(time.RFC3339Nano)
	default:
		return v.Any()
	}
}
