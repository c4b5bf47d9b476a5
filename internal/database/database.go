// Package database keeps the audit records of anchors and certificates in
// SQLite. It is a log, not the source of truth: the ledger is.
package database

import (
	"database/sql"
	"log/slog"
	"os"
	"path/filepath"
	"strings"

	_ "github.com/mattn/go-sqlite3"

	"github.com/evidenceledger/veritas/internal/errl"
)

// Database manages SQLite operations
type Database struct {
	path string
	db   *sql.DB
}

// New creates a database stored at path. ":memory:" keeps it in memory.
func New(path string) *Database {
	return &Database{path: path}
}

// Initialize opens the database and creates the tables
func (d *Database) Initialize() error {
	inMemory := d.path == ":memory:" || strings.HasPrefix(d.path, "file::memory:")
	if !inMemory {
		if err := os.MkdirAll(filepath.Dir(d.path), 0o755); err != nil {
			return errl.Errorf("failed to create database directory: %w", err)
		}
	}

	db, err := sql.Open("sqlite3", d.path)
	if err != nil {
		return errl.Errorf("failed to open database: %w", err)
	}
	if inMemory {
		// each connection would get its own empty database
		db.SetMaxOpenConns(1)
	}
	d.db = db

	if err := d.createTables(); err != nil {
		return errl.Errorf("failed to create tables: %w", err)
	}

	slog.Info("Database initialized", "path", d.path)
	return nil
}

// createTables creates all necessary tables
func (d *Database) createTables() error {
	queries := []string{
		`CREATE TABLE IF NOT EXISTS anchors (
			hash TEXT PRIMARY KEY,
			file_name TEXT NOT NULL DEFAULT '',
			tx_hash TEXT NOT NULL,
			author TEXT NOT NULL,
			anchored_at INTEGER NOT NULL,
			network TEXT NOT NULL,
			simulated INTEGER NOT NULL DEFAULT 0,
			created_at DATETIME DEFAULT CURRENT_TIMESTAMP
		)`,
		`CREATE TABLE IF NOT EXISTS certificates (
			serial TEXT PRIMARY KEY,
			id TEXT NOT NULL,
			hash TEXT NOT NULL,
			tx_hash TEXT NOT NULL,
			network TEXT NOT NULL,
			filename TEXT NOT NULL,
			created_at DATETIME DEFAULT CURRENT_TIMESTAMP
		)`,
		`CREATE INDEX IF NOT EXISTS certificates_hash ON certificates(hash)`,
	}

	for _, query := range queries {
		if _, err := d.db.Exec(query); err != nil {
			return errl.Errorf("failed to execute query: %w", err)
		}
	}

	return nil
}

// Ping checks that the database answers.
func (d *Database) Ping() error {
	if d.db == nil {
		return errl.Errorf("database not initialized")
	}
	return d.db.Ping()
}

// Close closes the database connection
func (d *Database) Close() error {
	if d.db != nil {
		return d.db.Close()
	}
	return nil
}
