package builtin

import (
	"context"
	"fmt"

	"cleanload/internal/dataset"
	"cleanload/internal/etlerr"
)

// Validate checks the cleaned dataset. Residual Missing cells only produce a
// warning; an empty dataset fails with EmptyResult.
type Validate struct{}

func (Validate) Name() string { return "validate" }

func (Validate) Apply(_ context.Context, ds *dataset.Dataset) (Result, error) {
	var res Result
	if n := ds.MissingCount(); n > 0 {
		res.Warnings = append(res.Warnings, fmt.Sprintf("%d missing cells remain after cleaning", n))
	}
	if ds.Len() == 0 {
		return res, etlerr.New(etlerr.EmptyResult, "no rows left after cleaning")
	}
	return res, nil
}
