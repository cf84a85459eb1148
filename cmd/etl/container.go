// This file wires the pipeline from a config.Pipeline. It keeps the CLI
// layer thin: it depends on storage-agnostic interfaces and never imports
// backend packages except postgres for database bootstrap.

package main

import (
	"context"
	"fmt"

	"go.uber.org/zap"

	"cleanload/internal/config"
	"cleanload/internal/extract"
	"cleanload/internal/metrics"
	"cleanload/internal/metrics/datadog"
	"cleanload/internal/metrics/prompush"
	"cleanload/internal/pipeline"
	"cleanload/internal/storage"
	"cleanload/internal/storage/postgres"
	"cleanload/internal/transformer"
)

// Function variables used to introduce test seams.
// In production these point to real implementations; tests can override them.
var (
	ensureDatabaseFn = postgres.EnsureDatabase
	newPushBackend   = func(job, url string) (metrics.Backend, error) { return prompush.NewBackend(job, url) }
	newDDBackend     = func(cfg datadog.Config) (metrics.Backend, error) { return datadog.NewBackend(cfg) }
)

// buildPipeline constructs the three stages for a pipeline config.
func buildPipeline(pc config.Pipeline, logger *zap.Logger) (*pipeline.Pipeline, error) {
	dsn, err := pc.Storage.DB.ConnString(pc.Storage.Kind)
	if err != nil {
		return nil, fmt.Errorf("storage: %w", err)
	}

	ex := extract.New(extract.Options{
		Format: pc.Parser.Kind,
		CSV:    pc.Parser.CSV(),
		Sheet:  pc.Parser.Sheet(),
		Logger: logger,
	})
	tr := transformer.New(pc.Transform.Roles(), logger)
	ld := storage.NewLoader(storage.Config{
		Kind:      pc.Storage.Kind,
		DSN:       dsn,
		BatchSize: pc.Storage.DB.BatchSize,
		Logger:    logger,
	}, logger)

	logger.Info("etl: pipeline wired",
		zap.String("job", pc.Job),
		zap.String("source", pc.Source.Path),
		zap.String("storage", pc.Storage.Kind),
		zap.String("table", pc.Storage.DB.Table),
	)
	return pipeline.New(pipeline.Config{
		Job:        pc.Job,
		SourcePath: pc.Source.Path,
		Encoding:   pc.Source.Encoding,
		Table:      pc.Storage.DB.Table,
	}, ex, tr, ld, logger), nil
}

// initMetrics installs the configured metrics backend and returns the flush
// to run at exit. On error the nop backend stays in place and the returned
// flush is still safe to call.
func initMetrics(pc config.Pipeline, logger *zap.Logger) (func(), error) {
	noop := func() {}

	var (
		b   metrics.Backend
		err error
	)
	switch pc.Metrics.Backend {
	case "", "none":
		logger.Debug("metrics: disabled")
		return noop, nil
	case "pushgateway":
		b, err = newPushBackend(pc.Job, pc.Metrics.PushgatewayURL)
	case "datadog":
		b, err = newDDBackend(datadog.Config{
			Addr:       pc.Metrics.DatadogAddr,
			GlobalTags: append([]string{"job:" + pc.Job}, pc.Metrics.Tags...),
		})
	default:
		return noop, fmt.Errorf("metrics: unknown backend %q", pc.Metrics.Backend)
	}
	if err != nil {
		return noop, err
	}

	metrics.SetBackend(b)
	logger.Info("metrics: enabled", zap.String("backend", pc.Metrics.Backend))
	return func() {
		if err := metrics.Flush(); err != nil {
			logger.Warn("metrics: flush failed", zap.Error(err))
		}
	}, nil
}

// ensureDatabase creates the configured postgres database when it is missing.
// Other backends have nothing to bootstrap.
func ensureDatabase(ctx context.Context, pc config.Pipeline, logger *zap.Logger) error {
	if pc.Storage.Kind != "postgres" {
		logger.Info("dbcreate: skipped", zap.String("kind", pc.Storage.Kind))
		return nil
	}
	admin, err := pc.Storage.DB.AdminConnString()
	if err != nil {
		return err
	}
	name := pc.Storage.DB.DatabaseName()
	created, err := ensureDatabaseFn(ctx, admin, name)
	if err != nil {
		return err
	}
	logger.Info("dbcreate: done", zap.String("database", name), zap.Bool("created", created))
	return nil
}
