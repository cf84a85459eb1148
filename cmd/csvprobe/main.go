package main

import (
	"context"
	"encoding/json"
	"flag"
	"fmt"
	"io"
	"os"
	"time"
	"unicode/utf8"

	"cleanload/internal/config"
	"cleanload/internal/dataset"
	gddl "cleanload/internal/ddl"
	"cleanload/internal/extract"
	"cleanload/internal/logging"
	pcsv "cleanload/internal/parser/csv"
	msddl "cleanload/internal/storage/mssql/ddl"
	myddl "cleanload/internal/storage/mysql/ddl"
	pgddl "cleanload/internal/storage/postgres/ddl"
	sqliteddl "cleanload/internal/storage/sqlite/ddl"
	"cleanload/internal/transformer"
)

// ddlDialects maps -ddl values to the backend that renders the statement.
var ddlDialects = map[string]struct {
	infer  func(string, *dataset.Dataset) (gddl.TableDef, error)
	render func(gddl.TableDef) (string, error)
}{
	"postgres": {pgddl.FromDataset, pgddl.BuildCreateTableSQL},
	"sqlite":   {sqliteddl.FromDataset, sqliteddl.BuildCreateTableSQL},
	"mssql":    {msddl.FromDataset, msddl.BuildCreateTableSQL},
	"mysql":    {myddl.FromDataset, myddl.BuildCreateTableSQL},
}

// report is what csvprobe prints.
type report struct {
	Source      extract.Result          `json:"source"`
	Columns     []dataset.ColumnProfile `json:"columns"`
	Clean       *cleanReport            `json:"clean,omitempty"`
	CreateTable string                  `json:"create_table,omitempty"`
}

type cleanReport struct {
	RowsIn       int                     `json:"rows_in"`
	RowsOut      int                     `json:"rows_out"`
	CellsImputed int                     `json:"cells_imputed"`
	RowsRemoved  int                     `json:"rows_removed"`
	Warnings     []string                `json:"warnings,omitempty"`
	Columns      []dataset.ColumnProfile `json:"columns"`
}

func main() {
	os.Exit(run(context.Background(), os.Args[1:], os.Stdout, os.Stderr))
}

func run(ctx context.Context, args []string, stdout, stderr io.Writer) int {
	fs := flag.NewFlagSet("csvprobe", flag.ContinueOnError)
	fs.SetOutput(stderr)
	var (
		flagSource   = fs.String("source", "", "path or http(s) URL of the CSV/XLSX file to probe")
		flagEncoding = fs.String("encoding", config.DefaultEncoding, "preferred text encoding")
		flagComma    = fs.String("comma", ",", `field delimiter (single character or "tab")`)
		flagSheet    = fs.String("sheet", "", "workbook sheet (xlsx only; empty means the first)")
		flagFormat   = fs.String("format", "", "force csv or xlsx; empty picks by extension")
		flagClean    = fs.Bool("clean", false, "also run the default cleaning steps and profile the result")
		flagDDL      = fs.String("ddl", "", "render CREATE TABLE for this backend (postgres, sqlite, mssql, mysql)")
		flagTable    = fs.String("table", config.DefaultTable, "table name used in -ddl output")
		flagTimeout  = fs.Duration("timeout", time.Minute, "overall timeout")
	)
	if err := fs.Parse(args); err != nil {
		return 2
	}
	if *flagSource == "" {
		fmt.Fprintln(stderr, "csvprobe: -source is required")
		fs.Usage()
		return 2
	}

	if *flagComma != "tab" && utf8.RuneCountInString(*flagComma) != 1 {
		fmt.Fprintf(stderr, "csvprobe: invalid -comma %q\n", *flagComma)
		return 2
	}
	comma := config.Options{"comma": *flagComma}.Rune("comma", ',')
	dialect, ok := ddlDialects[*flagDDL]
	if *flagDDL != "" && !ok {
		fmt.Fprintf(stderr, "csvprobe: unknown -ddl %q\n", *flagDDL)
		return 2
	}

	logger, err := logging.New(logging.Config{Level: "warn"})
	if err != nil {
		fmt.Fprintln(stderr, err)
		return 1
	}
	defer func() { _ = logger.Sync() }()

	ctx, cancel := context.WithTimeout(ctx, *flagTimeout)
	defer cancel()

	ex := extract.New(extract.Options{
		Format: *flagFormat,
		CSV:    pcsv.Options{Comma: comma},
		Sheet:  *flagSheet,
		Logger: logger,
	})
	ds, res, err := ex.Extract(ctx, *flagSource, *flagEncoding)
	if err != nil {
		fmt.Fprintf(stderr, "csvprobe: %v\n", err)
		return 1
	}
	out := report{Source: res, Columns: ds.Profile()}

	target := ds
	if *flagClean {
		clean, rep, err := transformer.New(transformer.DefaultConfig(), logger).Transform(ctx, ds)
		if err != nil {
			fmt.Fprintf(stderr, "csvprobe: clean: %v\n", err)
			return 1
		}
		out.Clean = &cleanReport{
			RowsIn:       rep.RowsIn,
			RowsOut:      rep.RowsOut,
			CellsImputed: rep.CellsImputed(),
			RowsRemoved:  rep.RowsRemoved(),
			Warnings:     rep.Warnings(),
			Columns:      clean.Profile(),
		}
		target = clean
	}

	if *flagDDL != "" {
		td, err := dialect.infer(*flagTable, target)
		if err != nil {
			fmt.Fprintf(stderr, "csvprobe: ddl: %v\n", err)
			return 1
		}
		out.CreateTable, err = dialect.render(td)
		if err != nil {
			fmt.Fprintf(stderr, "csvprobe: ddl: %v\n", err)
			return 1
		}
	}

	enc := json.NewEncoder(stdout)
	enc.SetIndent("", "  ")
	if err := enc.Encode(out); err != nil {
		fmt.Fprintf(stderr, "csvprobe: %v\n", err)
		return 1
	}
	return 0
}
