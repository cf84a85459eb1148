package storage

import (
	"context"
	"fmt"
	"time"

	"go.uber.org/zap"

	"cleanload/internal/dataset"
	"cleanload/internal/logging"
)

// DefaultBatchSize is the number of rows handed to one CopyFn call.
const DefaultBatchSize = 5000

// CopyFn abstracts a backend's bulk insert capability. Implementations insert
// the rows (aligned to columns) and return the number of rows written.
type CopyFn func(ctx context.Context, columns []string, rows [][]any) (int64, error)

// EncodeFn converts one cell into the value the backend driver accepts.
// Missing cells arrive as dataset.Null().
type EncodeFn func(v dataset.Value) any

// Native hands cells to the driver as plain Go values (see dataset.Value.Any).
func Native(v dataset.Value) any { return v.Any() }

// CopyBatches walks ds in row order, encodes each row and calls copyFn once
// per batch of batchSize rows. It returns the total reported by copyFn and the
// first error. Progress is logged at debug level after every batch.
func CopyBatches(
	ctx context.Context,
	ds *dataset.Dataset,
	batchSize int,
	encode EncodeFn,
	copyFn CopyFn,
	logger *zap.Logger,
) (int64, error) {
	if batchSize <= 0 {
		batchSize = DefaultBatchSize
	}
	if copyFn == nil {
		return 0, fmt.Errorf("copyFn must not be nil")
	}
	if encode == nil {
		encode = Native
	}
	log := logging.OrNop(logger)

	var (
		columns = ds.Names()
		cols    = ds.Columns()
		n       = ds.Len()
		total   int64
		batches int
		start   = time.Now()
		batch   = make([][]any, 0, min(batchSize, n))
	)

	flush := func() error {
		if len(batch) == 0 {
			return nil
		}
		got, err := copyFn(ctx, columns, batch)
		total += got
		batch = batch[:0]
		if err != nil {
			return err
		}
		batches++
		log.Debug("loader: batch copied",
			zap.Int("batch", batches),
			zap.Int64("inserted", got),
			zap.Int64("total", total),
			zap.Duration("elapsed", time.Since(start)),
		)
		return nil
	}

	for i := 0; i < n; i++ {
		if err := ctx.Err(); err != nil {
			return total, err
		}
		row := make([]any, len(cols))
		for j, c := range cols {
			row[j] = encode(c.Cells[i])
		}
		batch = append(batch, row)
		if len(batch) >= batchSize {
			if err := flush(); err != nil {
				return total, err
			}
		}
	}
	if err := flush(); err != nil {
		return total, err
	}
	return total, nil
}
