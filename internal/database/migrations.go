package database

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"
)

const createMigrationsTableSQL = `
	CREATE TABLE IF NOT EXISTS schema_migrations (
		id SERIAL PRIMARY KEY,
		migration_name VARCHAR(255) NOT NULL UNIQUE,
		applied_at TIMESTAMPTZ DEFAULT NOW()
	)`

// RunMigrations applies every pending *.sql file in migrationsPath in
// lexical order. Each file and its schema_migrations row are committed in
// one transaction.
func (db *DB) RunMigrations(ctx context.Context, migrationsPath string) (int, error) {
	if err := db.Exec(ctx, createMigrationsTableSQL); err != nil {
		return 0, fmt.Errorf("failed to create migrations table: %w", err)
	}

	migrationFiles, err := MigrationFiles(migrationsPath)
	if err != nil {
		return 0, fmt.Errorf("failed to get migration files: %w", err)
	}

	appliedMigrations, err := db.appliedMigrations(ctx)
	if err != nil {
		return 0, fmt.Errorf("failed to get applied migrations: %w", err)
	}

	applied := 0
	for _, file := range PendingMigrations(migrationFiles, appliedMigrations) {
		if err := db.runMigration(ctx, migrationsPath, file); err != nil {
			return applied, fmt.Errorf("failed to run migration %s: %w", file, err)
		}
		applied++

		db.logger.Info("migration_applied", fmt.Sprintf("Applied migration: %s", file), "startup", nil)
	}

	return applied, nil
}

// MigrationFiles returns the sorted names of the *.sql files directly
// inside migrationsPath
func MigrationFiles(migrationsPath string) ([]string, error) {
	entries, err := os.ReadDir(migrationsPath)
	if err != nil {
		return nil, err
	}

	var files []string
	for _, entry := range entries {
		if entry.IsDir() || !strings.HasSuffix(entry.Name(), ".sql") {
			continue
		}
		files = append(files, entry.Name())
	}

	sort.Strings(files)
	return files, nil
}

// PendingMigrations filters out files that were already applied, keeping order
func PendingMigrations(files []string, applied map[string]bool) []string {
	pending := make([]string, 0, len(files))
	for _, file := range files {
		if !applied[file] {
			pending = append(pending, file)
		}
	}
	return pending
}

func (db *DB) appliedMigrations(ctx context.Context) (map[string]bool, error) {
	applied := make(map[string]bool)

	rows, err := db.Query(ctx, "SELECT migration_name FROM schema_migrations")
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	for rows.Next() {
		var migrationName string
		if err := rows.Scan(&migrationName); err != nil {
			return nil, err
		}
		applied[migrationName] = true
	}

	return applied, rows.Err()
}

func (db *DB) runMigration(ctx context.Context, migrationsPath, filename string) error {
	content, err := os.ReadFile(filepath.Join(migrationsPath, filename))
	if err != nil {
		return fmt.Errorf("failed to read migration file: %w", err)
	}

	tx, err := db.Pool.Begin(ctx)
	if err != nil {
		return fmt.Errorf("failed to start transaction: %w", err)
	}
	defer tx.Rollback(ctx)

	if _, err := tx.Exec(ctx, string(content)); err != nil {
		return fmt.Errorf("failed to execute migration: %w", err)
	}

	if _, err := tx.Exec(ctx, "INSERT INTO schema_migrations (migration_name) VALUES ($1)", filename); err != nil {
		return fmt.Errorf("failed to record migration: %w", err)
	}

	return tx.Commit(ctx)
}
