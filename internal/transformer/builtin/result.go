// Package builtin contains the cleaning steps run by the transformer.
//
// Each step mutates the dataset it is handed. The transformer gives the chain
// its own clone, so steps never touch the caller's data.
package builtin

// Result is what a step reports about its own run.
type Result struct {
	CellsImputed        int
	RowsRemoved         int
	ColumnsStandardized []string
	Warnings            []string
}
