// Command dbcreate creates the configured Postgres database when it does not
// exist yet. Connection settings come from the same config file and ETL_*
// environment as cmd/etl.
package main

import (
	"context"
	"flag"
	"fmt"
	"io"
	"os"
	"time"

	"go.uber.org/zap"

	"cleanload/internal/config"
	"cleanload/internal/logging"
	"cleanload/internal/storage/postgres"
)

var ensureDatabaseFn = postgres.EnsureDatabase

func main() {
	os.Exit(run(context.Background(), os.Args[1:], os.Stderr))
}

func run(ctx context.Context, args []string, stderr io.Writer) int {
	fs := flag.NewFlagSet("dbcreate", flag.ContinueOnError)
	fs.SetOutput(stderr)
	cfgPath := fs.String("config", "", "pipeline config (JSON or YAML); empty uses defaults and ETL_* env vars")
	timeout := fs.Duration("timeout", 30*time.Second, "connect and create timeout")
	if err := fs.Parse(args); err != nil {
		return 2
	}

	p, err := config.Load(*cfgPath)
	if err != nil {
		fmt.Fprintln(stderr, err)
		return 1
	}
	logger, err := logging.New(logging.Config{Level: p.Logging.Level, Development: p.Logging.Development, File: p.Logging.File})
	if err != nil {
		fmt.Fprintln(stderr, err)
		return 1
	}
	defer func() { _ = logger.Sync() }()

	if p.Storage.Kind != "postgres" {
		logger.Error("dbcreate: only postgres databases can be created", zap.String("kind", p.Storage.Kind))
		return 1
	}
	admin, err := p.Storage.DB.AdminConnString()
	if err != nil {
		logger.Error("dbcreate: build admin dsn", zap.Error(err))
		return 1
	}
	name := p.Storage.DB.DatabaseName()

	ctx, cancel := context.WithTimeout(ctx, *timeout)
	defer cancel()
	created, err := ensureDatabaseFn(ctx, admin, name)
	if err != nil {
		logger.Error("dbcreate: failed", zap.String("database", name), zap.Error(err))
		return 1
	}
	if created {
		logger.Info("dbcreate: database created", zap.String("database", name))
	} else {
		logger.Info("dbcreate: database already exists", zap.String("database", name))
	}
	return 0
}
