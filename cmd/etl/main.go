package main

import (
	"context"
	"encoding/json"
	"flag"
	"fmt"
	"io"
	"os"

	"go.uber.org/zap"

	"cleanload/internal/config"
	"cleanload/internal/logging"
	"cleanload/internal/pipeline"

	// register all backends with the storage factory.
	// config specifies which to use but we need to build in support for all of them.
	_ "cleanload/internal/storage/all"
)

// Exit codes.
const (
	exitOK     = 0
	exitFailed = 1
)

// main loads the pipeline config, wires the stages and runs them once. The
// exit status is 0 when the table was replaced and 1 otherwise.
func main() {
	os.Exit(run(context.Background(), os.Args[1:], os.Stdout, os.Stderr))
}

// run is main without the process exit, so tests can drive it.
func run(ctx context.Context, args []string, stdout, stderr io.Writer) int {
	fs := flag.NewFlagSet("etl", flag.ContinueOnError)
	fs.SetOutput(stderr)
	var (
		cfgPath     = fs.String("config", "", "pipeline config (JSON or YAML); empty uses defaults and ETL_* env vars")
		validate    = fs.Bool("validate", false, "validate the configuration and exit")
		logFile     = fs.String("log-file", "", "also write logs to this file")
		logLevel    = fs.String("log-level", "", "log level (debug, info, warn, error); overrides the config")
		createDB    = fs.Bool("create-db", false, "create the postgres database first if it does not exist")
		metricsFlag = fs.String("metrics-backend", "", "metrics backend (none, pushgateway, datadog); overrides the config")
		asJSON      = fs.Bool("json", false, "print the outcome as JSON")
	)
	if err := fs.Parse(args); err != nil {
		return exitFailed
	}

	p, err := config.Load(*cfgPath)
	if err != nil {
		fmt.Fprintf(stderr, "%v\n", err)
		return exitFailed
	}
	if *logFile != "" {
		p.Logging.File = *logFile
	}
	if *logLevel != "" {
		p.Logging.Level = *logLevel
	}
	if *metricsFlag != "" {
		p.Metrics.Backend = *metricsFlag
	}

	issues := config.ValidatePipeline(p)
	for _, iss := range issues {
		fmt.Fprintf(stderr, "%s: %s: %s\n", iss.Severity, iss.Path, iss.Message)
	}
	if config.HasErrors(issues) {
		fmt.Fprintf(stderr, "configuration is invalid: %s\n", describeSource(*cfgPath))
		return exitFailed
	}
	if *validate {
		fmt.Fprintf(stderr, "configuration is valid: %s\n", describeSource(*cfgPath))
		return exitOK
	}

	logger, err := logging.New(logging.Config{
		Level:       p.Logging.Level,
		Development: p.Logging.Development,
		File:        p.Logging.File,
	})
	if err != nil {
		fmt.Fprintf(stderr, "%v\n", err)
		return exitFailed
	}
	defer func() { _ = logger.Sync() }()

	flush, err := initMetrics(p, logger)
	if err != nil {
		logger.Warn("metrics: disabled", zap.Error(err))
	}
	defer flush()

	if *createDB {
		if err := ensureDatabase(ctx, p, logger); err != nil {
			logger.Error("dbcreate: failed", zap.Error(err))
			return exitFailed
		}
	}

	pl, err := buildPipeline(p, logger)
	if err != nil {
		logger.Error("etl: wiring failed", zap.Error(err))
		return exitFailed
	}
	out := pl.Run(ctx)

	if err := render(stdout, out, *asJSON); err != nil {
		logger.Error("etl: render outcome", zap.Error(err))
	}
	if !out.Succeeded() {
		return exitFailed
	}
	return exitOK
}

func describeSource(path string) string {
	if path == "" {
		return "defaults + environment"
	}
	return path
}

// summary is the JSON form of a pipeline.Outcome.
type summary struct {
	RunID      string        `json:"run_id"`
	State      string        `json:"state"`
	Stage      string        `json:"stage,omitempty"`
	Reason     string        `json:"reason,omitempty"`
	Error      string        `json:"error,omitempty"`
	RowsLoaded int64         `json:"rows_loaded"`
	Encoding   string        `json:"encoding,omitempty"`
	Steps      []stepSummary `json:"steps,omitempty"`
	Warnings   []string      `json:"warnings,omitempty"`
	DurationMS int64         `json:"duration_ms"`
}

type stepSummary struct {
	Step                string   `json:"step"`
	CellsImputed        int      `json:"cells_imputed"`
	RowsRemoved         int      `json:"rows_removed"`
	ColumnsStandardized []string `json:"columns_standardized,omitempty"`
	Rows                int      `json:"rows"`
}

func summarize(out pipeline.Outcome) summary {
	s := summary{
		RunID:      out.RunID(),
		State:      string(out.State()),
		Stage:      string(out.Stage()),
		Reason:     string(out.Reason()),
		RowsLoaded: out.RowsLoaded(),
		Encoding:   out.Source().Encoding,
		DurationMS: out.Duration().Milliseconds(),
	}
	if err := out.Err(); err != nil {
		s.Error = err.Error()
	}
	rep := out.Report()
	for _, st := range rep.Stages {
		s.Steps = append(s.Steps, stepSummary{
			Step:                st.Stage,
			CellsImputed:        st.CellsImputed,
			RowsRemoved:         st.RowsRemoved,
			ColumnsStandardized: st.ColumnsStandardized,
			Rows:                st.RowsOut,
		})
	}
	s.Warnings = rep.Warnings()
	return s
}

// render writes the outcome to w, as one JSON object or as a short text
// report.
func render(w io.Writer, out pipeline.Outcome, asJSON bool) error {
	s := summarize(out)
	if asJSON {
		enc := json.NewEncoder(w)
		enc.SetIndent("", "  ")
		return enc.Encode(s)
	}
	if _, err := fmt.Fprintf(w, "%s run=%s took=%dms\n", out, s.RunID, s.DurationMS); err != nil {
		return err
	}
	for _, st := range s.Steps {
		if _, err := fmt.Fprintf(w, "  %-12s imputed=%d removed=%d rows=%d\n",
			st.Step, st.CellsImputed, st.RowsRemoved, st.Rows); err != nil {
			return err
		}
	}
	for _, warn := range s.Warnings {
		if _, err := fmt.Fprintf(w, "  warning: %s\n", warn); err != nil {
			return err
		}
	}
	if s.Error != "" {
		if _, err := fmt.Fprintf(w, "  error: %s\n", s.Error); err != nil {
			return err
		}
	}
	return nil
}
