// Package mysql implements a MySQL-backed storage.Repository using
// database/sql and github.com/go-sql-driver/mysql.
//
// Rows go into a staging table through multi-row INSERTs inside one
// transaction. The staging table then replaces the target with a single
// RENAME TABLE, so readers see either the old table or the new one.
package mysql

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"

	"github.com/go-sql-driver/mysql"
	"go.uber.org/zap"

	"cleanload/internal/dataset"
	gddl "cleanload/internal/ddl"
	"cleanload/internal/logging"
	"cleanload/internal/storage"
	myddl "cleanload/internal/storage/mysql/ddl"
)

// Config holds MySQL repository configuration.
type Config struct {
	// DSN uses the driver format, e.g. "etl:pw@tcp(localhost:3306)/etl".
	DSN       string
	BatchSize int
	Logger    *zap.Logger
}

// Repository is a MySQL-backed implementation of storage.Repository.
type Repository struct {
	db  *sql.DB
	cfg Config
	log *zap.Logger
}

// NewRepository parses the DSN and opens a pool. Opening is lazy; use Ping to
// verify the server is reachable.
func NewRepository(ctx context.Context, cfg Config) (*Repository, func(), error) {
	if strings.TrimSpace(cfg.DSN) == "" {
		return nil, nil, fmt.Errorf("mysql: DSN must not be empty")
	}
	if _, err := mysql.ParseDSN(cfg.DSN); err != nil {
		return nil, nil, fmt.Errorf("mysql dsn: %w", err)
	}
	db, err := sql.Open("mysql", cfg.DSN)
	if err != nil {
		return nil, nil, fmt.Errorf("mysql: open: %w", err)
	}
	closeFn := func() { _ = db.Close() }
	return &Repository{db: db, cfg: cfg, log: logging.OrNop(cfg.Logger)}, closeFn, nil
}

// Ping runs SELECT 1.
func (r *Repository) Ping(ctx context.Context) error {
	var one int
	if err := r.db.QueryRowContext(ctx, "SELECT 1").Scan(&one); err != nil {
		return fmt.Errorf("mysql: ping: %w", err)
	}
	return nil
}

// ReplaceTable fills a staging table and swaps it in for table. Until the
// swap the target is untouched; the staging table is dropped on failure.
func (r *Repository) ReplaceTable(ctx context.Context, table string, ds *dataset.Dataset) (n int64, err error) {
	staging := gddl.StagingName(table)
	td, err := myddl.FromDataset(staging, ds)
	if err != nil {
		return 0, err
	}
	create, err := myddl.BuildCreateTableSQL(td)
	if err != nil {
		return 0, err
	}

	if _, err = r.db.ExecContext(ctx, create); err != nil {
		return 0, fmt.Errorf("mysql: create staging %s: %w", staging, err)
	}
	defer func() {
		if err != nil {
			if _, dErr := r.db.ExecContext(context.WithoutCancel(ctx), myddl.DropTableSQL(staging)); dErr != nil {
				r.log.Warn("mysql: drop staging failed", zap.String("table", staging), zap.Error(dErr))
			}
		}
	}()

	if n, err = r.fill(ctx, staging, ds); err != nil {
		return 0, err
	}
	if err = r.swap(ctx, table, staging); err != nil {
		return 0, err
	}
	return n, nil
}

func (r *Repository) fill(ctx context.Context, staging string, ds *dataset.Dataset) (n int64, err error) {
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return 0, fmt.Errorf("mysql: begin tx: %w", err)
	}
	defer func() {
		if err != nil {
			if rbErr := tx.Rollback(); rbErr != nil && !errors.Is(rbErr, sql.ErrTxDone) {
				r.log.Warn("mysql: rollback failed", zap.Error(rbErr))
			}
		}
	}()

	n, err = storage.CopyBatches(ctx, ds, batchSize(r.cfg.BatchSize, ds.Width()), storage.Native,
		func(ctx context.Context, columns []string, rows [][]any) (int64, error) {
			args := make([]any, 0, len(rows)*len(columns))
			for _, row := range rows {
				args = append(args, row...)
			}
			res, err := tx.ExecContext(ctx, myddl.InsertSQL(staging, columns, len(rows)), args...)
			if err != nil {
				return 0, fmt.Errorf("mysql: insert: %w", err)
			}
			return res.RowsAffected()
		}, r.log)
	if err != nil {
		return 0, err
	}
	if err = tx.Commit(); err != nil {
		return 0, fmt.Errorf("mysql: commit: %w", err)
	}
	return n, nil
}

// swap renames staging into place. An existing table is moved aside in the
// same statement and dropped afterwards.
func (r *Repository) swap(ctx context.Context, table, staging string) error {
	schema, name := gddl.SplitFQN(table)
	var exists int
	if err := r.db.QueryRowContext(ctx,
		`SELECT COUNT(*) FROM information_schema.tables
		 WHERE table_schema = COALESCE(NULLIF(?, ''), DATABASE()) AND table_name = ?`,
		schema, name,
	).Scan(&exists); err != nil {
		return fmt.Errorf("mysql: lookup %s: %w", table, err)
	}

	if exists == 0 {
		if _, err := r.db.ExecContext(ctx, myddl.RenameSQL(staging, table)); err != nil {
			return fmt.Errorf("mysql: rename %s: %w", staging, err)
		}
		return nil
	}

	old := strings.Replace(staging, "__staging_", "__old_", 1)
	if _, err := r.db.ExecContext(ctx, myddl.SwapSQL(table, staging, old)); err != nil {
		return fmt.Errorf("mysql: swap %s: %w", table, err)
	}
	if _, err := r.db.ExecContext(ctx, myddl.DropTableSQL(old)); err != nil {
		r.log.Warn("mysql: drop previous table failed", zap.String("table", old), zap.Error(err))
	}
	return nil
}

// batchSize keeps one INSERT under the placeholder limit.
func batchSize(configured, width int) int {
	if configured <= 0 {
		configured = storage.DefaultBatchSize
	}
	if width > 0 && configured*width > myddl.MaxPlaceholders {
		configured = max(1, myddl.MaxPlaceholders/width)
	}
	return configured
}
