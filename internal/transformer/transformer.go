// Package transformer runs the fixed cleaning chain over a dataset.
//
// The chain is imputation, deduplication, standardization, validation. It
// always runs in that order and no step can be skipped. The caller's dataset
// is never modified: the chain works on a clone and returns it.
package transformer

import (
	"context"
	"time"

	"go.uber.org/zap"

	"cleanload/internal/dataset"
	"cleanload/internal/etlerr"
	"cleanload/internal/logging"
	"cleanload/internal/transformer/builtin"
)

// Default column roles for the AI jobs salary dataset.
const DefaultNumericColumn = "salary_in_usd"

var defaultRoleColumns = []string{
	"employment_type",
	"company_location",
	"job_title",
	"experience_level",
	"company_size",
	"company_residence",
	"work_setting",
}

// Config names the columns each step works on. Columns the dataset lacks are
// skipped.
type Config struct {
	NumericColumn      string
	CategoricalColumns []string
	TextColumns        []string
}

// DefaultConfig returns the column roles of the AI jobs dataset.
func DefaultConfig() Config {
	return Config{
		NumericColumn:      DefaultNumericColumn,
		CategoricalColumns: append([]string(nil), defaultRoleColumns...),
		TextColumns:        append([]string(nil), defaultRoleColumns...),
	}
}

// Step is one cleaning step. Apply mutates ds.
type Step interface {
	Name() string
	Apply(ctx context.Context, ds *dataset.Dataset) (builtin.Result, error)
}

// Chain is an ordered list of steps.
type Chain []Step

// Apply runs each step in order on ds, stopping at the first error. The
// report holds one entry per step that ran, including the failing one.
func (c Chain) Apply(ctx context.Context, ds *dataset.Dataset) (Report, error) {
	rep := Report{RowsIn: ds.Len()}
	for _, s := range c {
		start := time.Now()
		res, err := s.Apply(ctx, ds)
		rep.Stages = append(rep.Stages, StageReport{
			Stage:    s.Name(),
			Result:   res,
			RowsOut:  ds.Len(),
			Duration: time.Since(start),
		})
		if err != nil {
			rep.RowsOut = ds.Len()
			return rep, err
		}
	}
	rep.RowsOut = ds.Len()
	return rep, nil
}

// Transformer applies the fixed cleaning chain.
type Transformer struct {
	chain Chain
	log   *zap.Logger
}

// New builds the chain for cfg.
func New(cfg Config, logger *zap.Logger) *Transformer {
	return &Transformer{
		chain: Chain{
			builtin.Impute{Numeric: cfg.NumericColumn, Categorical: cfg.CategoricalColumns},
			builtin.DeDup{},
			builtin.Standardize{Columns: cfg.TextColumns},
			builtin.Validate{},
		},
		log: logging.OrNop(logger),
	}
}

// Transform cleans a clone of ds and returns it. A nil or empty input fails
// with EmptyInput; a chain that removes every row fails with EmptyResult.
// Warnings never fail the run; they are logged and kept in the report.
func (t *Transformer) Transform(ctx context.Context, ds *dataset.Dataset) (*dataset.Dataset, Report, error) {
	if ds.Empty() {
		return nil, Report{}, etlerr.New(etlerr.EmptyInput, "dataset is nil or empty")
	}

	out := ds.Clone()
	rep, err := t.chain.Apply(ctx, out)
	for _, s := range rep.Stages {
		t.log.Info("transform: step done",
			zap.String("step", s.Stage),
			zap.Int("cells_imputed", s.CellsImputed),
			zap.Int("rows_removed", s.RowsRemoved),
			zap.Strings("columns_standardized", s.ColumnsStandardized),
			zap.Int("rows", s.RowsOut),
			zap.Duration("took", s.Duration),
		)
		for _, w := range s.Warnings {
			t.log.Warn("transform: "+s.Stage, zap.String("warning", w))
		}
	}
	if err != nil {
		return nil, rep, err
	}
	return out, rep, nil
}
