// Package storage holds the backend-agnostic side of the load stage: the
// Repository contract each backend implements, a kind-keyed factory registry,
// and the Connect/Load/Disconnect operations the pipeline drives.
//
// Backends register themselves from init(); import
// cleanload/internal/storage/all to enable every built-in one.
package storage

import (
	"context"
	"fmt"
	"sort"
	"sync"

	"go.uber.org/zap"

	"cleanload/internal/dataset"
)

// Repository is one open connection to a relational store.
type Repository interface {
	// Ping runs a trivial query (SELECT 1) against the store.
	Ping(ctx context.Context) error
	// ReplaceTable atomically replaces table with the contents of ds and
	// reports the number of rows written. On error the table is unchanged.
	ReplaceTable(ctx context.Context, table string, ds *dataset.Dataset) (int64, error)
	// Close releases the connection. It must be safe to call once.
	Close()
}

// Config selects a backend and how to reach it.
type Config struct {
	// Kind names a registered backend: "postgres", "sqlite", "mssql" or "mysql".
	Kind string
	// DSN is passed to the backend driver as-is.
	DSN string
	// BatchSize bounds rows per bulk-copy call; <= 0 uses DefaultBatchSize.
	BatchSize int
	// Logger receives backend progress; nil discards it.
	Logger *zap.Logger
}

// Factory opens a Repository for cfg.
type Factory func(ctx context.Context, cfg Config) (Repository, error)

var (
	regMu     sync.RWMutex
	factories = map[string]Factory{}
)

// Register registers (or replaces) the factory for kind. Backends call it from
// init().
func Register(kind string, f Factory) {
	regMu.Lock()
	defer regMu.Unlock()
	factories[kind] = f
}

// New opens a Repository through the factory registered for cfg.Kind.
func New(ctx context.Context, cfg Config) (Repository, error) {
	regMu.RLock()
	f, ok := factories[cfg.Kind]
	regMu.RUnlock()
	if !ok {
		return nil, fmt.Errorf("unsupported storage.kind=%s", cfg.Kind)
	}
	return f(ctx, cfg)
}

// ListKinds returns the registered kinds, sorted. The slice is a copy.
func ListKinds() []string {
	regMu.RLock()
	defer regMu.RUnlock()
	out := make([]string, 0, len(factories))
	for k := range factories {
		out = append(out, k)
	}
	sort.Strings(out)
	return out
}
