package postgres

import (
	"context"
	"fmt"
	"strings"

	"github.com/jackc/pgx/v5"
)

// EnsureDatabase connects with adminDSN (usually pointing at the "postgres"
// maintenance database) and creates name unless pg_database already lists
// it. It reports whether the database was created.
func EnsureDatabase(ctx context.Context, adminDSN, name string) (bool, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		return false, fmt.Errorf("postgres: database name must not be empty")
	}
	conn, err := pgx.Connect(ctx, adminDSN)
	if err != nil {
		return false, fmt.Errorf("postgres: connect: %w", err)
	}
	defer conn.Close(ctx)

	var exists bool
	if err := conn.QueryRow(ctx,
		"SELECT EXISTS (SELECT 1 FROM pg_database WHERE datname = $1)", name,
	).Scan(&exists); err != nil {
		return false, fmt.Errorf("postgres: lookup database: %w", err)
	}
	if exists {
		return false, nil
	}
	// CREATE DATABASE cannot take bind parameters or run inside a transaction.
	if _, err := conn.Exec(ctx, createDatabaseSQL(name)); err != nil {
		return false, fmt.Errorf("postgres: create database %s: %w", name, err)
	}
	return true, nil
}

func createDatabaseSQL(name string) string {
	return "CREATE DATABASE " + pgx.Identifier{name}.Sanitize()
}
