package sqlite

import "go.uber.org/zap"

// Config holds SQLite repository configuration derived from storage.Config.
type Config struct {
	// DSN is a SQLite connection string or file path, e.g.:
	//   "file:etl.db?cache=shared&_pragma=foreign_keys(1)"
	//   "etl.db"
	//   ":memory:"
	DSN string

	// BatchSize bounds rows per insert batch; <= 0 uses the storage default.
	BatchSize int

	Logger *zap.Logger
}
