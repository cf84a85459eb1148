// Package postgres implements a Postgres repository using pgx v5. A load
// COPYs rows into a fresh staging table and swaps it in for the target, all
// inside one transaction.
package postgres

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"
	"go.uber.org/zap"

	"cleanload/internal/dataset"
	gddl "cleanload/internal/ddl"
	"cleanload/internal/logging"
	"cleanload/internal/storage"
	pgddl "cleanload/internal/storage/postgres/ddl"
)

// Config holds Postgres repository configuration.
type Config struct {
	DSN       string // connection string for pgxpool
	BatchSize int    // rows per COPY call; <= 0 uses the storage default
	Logger    *zap.Logger
}

// Repository is a Postgres-backed implementation of storage.Repository.
type Repository struct {
	pool *pgxpool.Pool
	cfg  Config
	log  *zap.Logger
}

// NewRepository constructs a Repository and returns a Close function for
// cleanup. The pool connects lazily; Ping verifies reachability.
func NewRepository(ctx context.Context, cfg Config) (*Repository, func(), error) {
	pool, err := pgxpool.New(ctx, cfg.DSN)
	if err != nil {
		return nil, nil, fmt.Errorf("pgxpool: %w", err)
	}
	closeFn := func() { pool.Close() }
	return &Repository{pool: pool, cfg: cfg, log: logging.OrNop(cfg.Logger)}, closeFn, nil
}

// Ping runs SELECT 1.
func (r *Repository) Ping(ctx context.Context) error {
	var one int
	if err := r.pool.QueryRow(ctx, "SELECT 1").Scan(&one); err != nil {
		return fmt.Errorf("postgres: ping: %w", err)
	}
	return nil
}

// ReplaceTable creates a staging table shaped after ds, COPYs every row into
// it, drops table and renames the staging table into place, then commits.
// Postgres DDL is transactional, so a failure at any step leaves table as it
// was.
func (r *Repository) ReplaceTable(ctx context.Context, table string, ds *dataset.Dataset) (int64, error) {
	staging := gddl.StagingName(table)
	td, err := pgddl.FromDataset(staging, ds)
	if err != nil {
		return 0, err
	}
	create, err := pgddl.BuildCreateTableSQL(td)
	if err != nil {
		return 0, err
	}

	tx, err := r.pool.Begin(ctx)
	if err != nil {
		return 0, fmt.Errorf("postgres: begin: %w", err)
	}
	// No-op after a successful Commit.
	defer func() { _ = tx.Rollback(ctx) }()

	if _, err := tx.Exec(ctx, create); err != nil {
		return 0, fmt.Errorf("postgres: create staging %s: %w", staging, err)
	}

	ident := identifier(staging)
	n, err := storage.CopyBatches(ctx, ds, r.cfg.BatchSize, storage.Native,
		func(ctx context.Context, columns []string, rows [][]any) (int64, error) {
			return tx.CopyFrom(ctx, ident, columns, pgx.CopyFromRows(rows))
		}, r.log)
	if err != nil {
		return 0, copyError(err)
	}

	if _, err := tx.Exec(ctx, pgddl.DropTableSQL(table)); err != nil {
		return 0, fmt.Errorf("postgres: drop %s: %w", table, err)
	}
	if _, err := tx.Exec(ctx, pgddl.RenameTableSQL(staging, table)); err != nil {
		return 0, fmt.Errorf("postgres: rename %s: %w", staging, err)
	}
	if err := tx.Commit(ctx); err != nil {
		return 0, fmt.Errorf("postgres: commit: %w", err)
	}
	return n, nil
}

// copyError surfaces the server-side detail of a failed COPY.
func copyError(err error) error {
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) && pgErr.Detail != "" {
		return fmt.Errorf("postgres: copy into staging: %s (%s): %w", pgErr.Detail, pgErr.SQLState(), err)
	}
	return fmt.Errorf("postgres: copy into staging: %w", err)
}

// identifier converts "schema.table" into a pgx.Identifier {"schema","table"}.
func identifier(fqn string) pgx.Identifier {
	schema, name := gddl.SplitFQN(fqn)
	if schema == "" {
		return pgx.Identifier{name}
	}
	return pgx.Identifier{schema, name}
}
