package mysql

import (
	"context"
	"fmt"
	"os"
	"sync/atomic"
	"testing"
	"time"

	"cleanload/internal/dataset"
	"cleanload/internal/storage"
)

func TestAdapterRegistrationAndClose(t *testing.T) {
	orig := newRepository
	defer func() { newRepository = orig }()

	var gotCfg Config
	var closed int32
	newRepository = func(ctx context.Context, cfg Config) (*Repository, func(), error) {
		gotCfg = cfg
		return &Repository{}, func() { atomic.AddInt32(&closed, 1) }, nil
	}

	dsn := "etl:pw@tcp(localhost:3306)/etl"
	repo, err := storage.New(context.Background(), storage.Config{Kind: "mysql", DSN: dsn, BatchSize: 7})
	if err != nil {
		t.Fatalf("storage.New error: %v", err)
	}
	if gotCfg.DSN != dsn || gotCfg.BatchSize != 7 {
		t.Errorf("cfg = %+v", gotCfg)
	}
	repo.Close()
	if atomic.LoadInt32(&closed) != 1 {
		t.Fatalf("Close() did not invoke closeFn")
	}
}

func TestNewRepositoryRejectsBadDSN(t *testing.T) {
	t.Parallel()

	for _, dsn := range []string{"", "etl:pw@tcp(localhost:3306"} {
		if _, _, err := NewRepository(context.Background(), Config{DSN: dsn}); err == nil {
			t.Errorf("expected error for DSN %q", dsn)
		}
	}
}

func TestBatchSizeRespectsPlaceholderLimit(t *testing.T) {
	t.Parallel()

	tests := []struct {
		configured, width, want int
	}{
		{0, 4, storage.DefaultBatchSize},
		{100, 4, 100},
		{50000, 4, 16383},
		{10, 100000, 1},
	}
	for _, tt := range tests {
		if got := batchSize(tt.configured, tt.width); got != tt.want {
			t.Errorf("batchSize(%d, %d) = %d, want %d", tt.configured, tt.width, got, tt.want)
		}
	}
}

// TestReplaceTableIntegration runs against a live server when TEST_MYSQL_DSN
// is set.
func TestReplaceTableIntegration(t *testing.T) {
	dsn := os.Getenv("TEST_MYSQL_DSN")
	if dsn == "" {
		t.Skip("skipping integration test: set TEST_MYSQL_DSN to run")
	}
	ctx := context.Background()

	r, closeFn, err := NewRepository(ctx, Config{DSN: dsn, BatchSize: 1})
	if err != nil {
		t.Fatalf("NewRepository: %v", err)
	}
	defer closeFn()
	if err := r.Ping(ctx); err != nil {
		t.Fatalf("Ping: %v", err)
	}

	table := fmt.Sprintf("cleanload_it_%d", time.Now().UnixNano())
	defer func() { _, _ = r.db.ExecContext(ctx, "DROP TABLE IF EXISTS "+table) }()
	if _, err := r.db.ExecContext(ctx, "CREATE TABLE "+table+" (legacy TEXT)"); err != nil {
		t.Fatalf("create legacy: %v", err)
	}

	ds, err := dataset.New(
		dataset.Column{Name: "job_title", Kind: dataset.Text, Cells: []dataset.Value{dataset.TextValue("a"), dataset.TextValue("b")}},
		dataset.Column{Name: "remote", Kind: dataset.Boolean, Cells: []dataset.Value{dataset.BoolValue(true), dataset.BoolValue(false)}},
	)
	if err != nil {
		t.Fatalf("dataset.New: %v", err)
	}
	n, err := r.ReplaceTable(ctx, table, ds)
	if err != nil {
		t.Fatalf("ReplaceTable: %v", err)
	}
	if n != 2 {
		t.Fatalf("rows = %d, want 2", n)
	}
	var count int
	if err := r.db.QueryRowContext(ctx, "SELECT COUNT(*) FROM "+table+" WHERE job_title IN ('a', 'b')").Scan(&count); err != nil {
		t.Fatalf("count: %v", err)
	}
	if count != 2 {
		t.Fatalf("count = %d, want 2", count)
	}
}
