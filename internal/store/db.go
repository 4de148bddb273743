// Package store is the relational store holding prompt drafts, model
// configurations and usage logs.
package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"os"
	"path/filepath"

	// sqlite driver
	_ "modernc.org/sqlite"
)

// ErrNotFound is returned when a looked-up row does not exist.
var ErrNotFound = errors.New("not found")

// DB wraps the SQL database connection with pipeline-specific queries.
type DB struct {
	*sql.DB
	path string
}

// New opens the database at path and initializes the schema.
func New(ctx context.Context, path string) (*DB, error) {
	dir := filepath.Dir(path)
	if dir != "" && dir != "." {
		if err := os.MkdirAll(dir, 0o750); err != nil {
			return nil, fmt.Errorf("failed to create database directory: %w", err)
		}
	}

	sqlDB, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	if err := sqlDB.PingContext(ctx); err != nil {
		_ = sqlDB.Close()
		return nil, fmt.Errorf("failed to connect to database: %w", err)
	}

	db := &DB{
		DB:   sqlDB,
		path: path,
	}

	if err := db.configure(ctx); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("failed to configure database: %w", err)
	}

	if err := db.createSchema(ctx); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("failed to create schema: %w", err)
	}

	return db, nil
}

// Path returns the database file path.
func (db *DB) Path() string {
	return db.path
}

func (db *DB) configure(ctx context.Context) error {
	pragmas := []string{
		"PRAGMA journal_mode=WAL",
		"PRAGMA synchronous=NORMAL",
		"PRAGMA busy_timeout=5000",
		"PRAGMA foreign_keys=ON",
	}

	for _, pragma := range pragmas {
		if _, err := db.ExecContext(ctx, pragma); err != nil {
			return fmt.Errorf("failed to execute %s: %w", pragma, err)
		}
	}

	return nil
}

func (db *DB) createSchema(ctx context.Context) error {
	query := `
	CREATE TABLE IF NOT EXISTS model_configs (
		id TEXT PRIMARY KEY,
		provider TEXT NOT NULL,
		provider_model_name TEXT NOT NULL,
		status TEXT NOT NULL DEFAULT 'active',
		credential TEXT NOT NULL DEFAULT '',
		max_tokens INTEGER NOT NULL DEFAULT 0
	);

	CREATE TABLE IF NOT EXISTS prompt_drafts (
		id TEXT PRIMARY KEY,
		prompt_text TEXT NOT NULL DEFAULT '',
		model_id TEXT NOT NULL DEFAULT '',
		variables TEXT NOT NULL DEFAULT '[]'
	);

	CREATE TABLE IF NOT EXISTS usage_logs (
		id TEXT PRIMARY KEY,
		user_id TEXT NOT NULL,
		model_id TEXT NOT NULL,
		draft_ref TEXT,
		token_count INTEGER NOT NULL DEFAULT 0,
		created_at INTEGER NOT NULL
	);
	CREATE INDEX IF NOT EXISTS idx_usage_logs_user_time ON usage_logs(user_id, created_at);
	`
	_, err := db.ExecContext(ctx, query)
	return err
}

// Close checkpoints the WAL and closes the connection.
func (db *DB) Close() error {
	_, _ = db.ExecContext(context.Background(), "PRAGMA wal_checkpoint(TRUNCATE)")
	return db.DB.Close()
}
