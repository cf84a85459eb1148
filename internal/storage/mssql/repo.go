// Package mssql implements a Microsoft SQL Server repository using the
// go-mssqldb bulk copy API. A load bulk-copies rows into a staging table,
// then drops the target and renames the staging table into place inside one
// transaction.
package mssql

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	mssql "github.com/microsoft/go-mssqldb"
	"github.com/microsoft/go-mssqldb/msdsn"
	"go.uber.org/zap"

	"cleanload/internal/dataset"
	gddl "cleanload/internal/ddl"
	"cleanload/internal/logging"
	"cleanload/internal/storage"
	msddl "cleanload/internal/storage/mssql/ddl"
)

// Config holds MSSQL repository configuration.
type Config struct {
	DSN       string
	BatchSize int
	Logger    *zap.Logger
}

// Repository is an MSSQL-backed implementation of storage.Repository.
type Repository struct {
	db  *sql.DB
	cfg Config
	log *zap.Logger
}

// NewRepository constructs a Repository and returns a Close function for
// cleanup. The DSN is parsed up front to fail fast on obvious mistakes.
func NewRepository(ctx context.Context, cfg Config) (*Repository, func(), error) {
	if _, err := msdsn.Parse(cfg.DSN); err != nil {
		return nil, nil, fmt.Errorf("mssql dsn: %w", err)
	}
	db, err := sql.Open("sqlserver", cfg.DSN)
	if err != nil {
		return nil, nil, fmt.Errorf("sql.Open: %w", err)
	}
	closeFn := func() { _ = db.Close() }
	return &Repository{db: db, cfg: cfg, log: logging.OrNop(cfg.Logger)}, closeFn, nil
}

// Ping runs SELECT 1.
func (r *Repository) Ping(ctx context.Context) error {
	var one int
	if err := r.db.QueryRowContext(ctx, "SELECT 1").Scan(&one); err != nil {
		return fmt.Errorf("mssql: ping: %w", err)
	}
	return nil
}

// ReplaceTable swaps table for a freshly bulk-loaded copy of ds. SQL Server
// DDL is transactional, so a failure rolls back to the previous table.
func (r *Repository) ReplaceTable(ctx context.Context, table string, ds *dataset.Dataset) (n int64, err error) {
	staging := gddl.StagingName(table)
	td, err := msddl.FromDataset(staging, ds)
	if err != nil {
		return 0, err
	}
	create, err := msddl.BuildCreateTableSQL(td)
	if err != nil {
		return 0, err
	}

	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return 0, fmt.Errorf("mssql: begin tx: %w", err)
	}
	defer func() {
		if err != nil {
			if rbErr := tx.Rollback(); rbErr != nil && !errors.Is(rbErr, sql.ErrTxDone) {
				r.log.Warn("mssql: rollback failed", zap.Error(rbErr))
			}
		}
	}()

	if _, err = tx.ExecContext(ctx, create); err != nil {
		return 0, fmt.Errorf("mssql: create staging %s: %w", staging, err)
	}

	target := msddl.QuoteFQN(staging)
	n, err = storage.CopyBatches(ctx, ds, r.cfg.BatchSize, storage.Native,
		func(ctx context.Context, columns []string, rows [][]any) (int64, error) {
			return bulkCopy(ctx, tx, target, columns, rows)
		}, r.log)
	if err != nil {
		return 0, err
	}

	if _, err = tx.ExecContext(ctx, msddl.DropTableSQL(table)); err != nil {
		return 0, fmt.Errorf("mssql: drop %s: %w", table, err)
	}
	rename, args := msddl.RenameTable(staging, table)
	if _, err = tx.ExecContext(ctx, rename, args...); err != nil {
		return 0, fmt.Errorf("mssql: rename %s: %w", staging, err)
	}
	if err = tx.Commit(); err != nil {
		return 0, fmt.Errorf("mssql: commit: %w", err)
	}
	return n, nil
}

// bulkCopy streams one batch through a CopyIn statement bound to tx.
func bulkCopy(ctx context.Context, tx *sql.Tx, table string, columns []string, rows [][]any) (int64, error) {
	stmt, err := tx.PrepareContext(ctx, mssql.CopyIn(table, mssql.BulkOptions{}, columns...))
	if err != nil {
		return 0, fmt.Errorf("mssql: prepare bulk: %w", err)
	}
	for i := range rows {
		if _, err := stmt.ExecContext(ctx, rows[i]...); err != nil {
			_ = stmt.Close()
			return 0, fmt.Errorf("mssql: bulk row %d: %w", i, err)
		}
	}
	res, err := stmt.ExecContext(ctx) // flush
	if cerr := stmt.Close(); cerr != nil && err == nil {
		err = cerr
	}
	if err != nil {
		return 0, fmt.Errorf("mssql: bulk finalize: %w", err)
	}
	return res.RowsAffected()
}
