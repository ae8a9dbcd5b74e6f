/*
 * Copyright (c) 2025 by Alexander Drost, Oldenburg, Germany.
 * This file is licensed to you under the Apache License, Version 2.0 (the "License"); you may not use this file except in compliance with the License.  You may obtain a copy of the License at
 *   http://www.apache.org/licenses/LICENSE-2.0
 * Unless required by applicable law or agreed to in writing, software distributed under the License is distributed on an
 * "AS IS" BASIS, WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.  See the License for the specific language governing permissions and limitations under the License.
 */

package storage

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"time"

	applog "threads/internal/log"
	"threads/internal/version"

	// Pure-Go SQLite driver (CGO-free)
	_ "modernc.org/sqlite"
)

const (
	// DatabaseFileName is the SQLite file inside the data directory.
	DatabaseFileName = "threads.db"

	// schemaVersion tracks the SQLite schema. The full schema is created at
	// initialization; there is no incremental upgrade path.
	schemaVersion = 1
)

// Options configures Open.
type Options struct {
	// Dir is the data directory holding the database, backups and reports.
	Dir string
	// BackupKeep bounds the rotation: only the newest N backups are kept.
	// 0 keeps everything.
	BackupKeep int
}

// Store is a handle on the threads database. It is not safe for concurrent
// use; each CLI invocation owns one Store for its lifetime.
type Store struct {
	db         *sql.DB
	dir        string
	path       string
	backupKeep int
}

// DatabasePath returns the full path of the database file inside dir.
func DatabasePath(dir string) string {
	return filepath.Join(dir, DatabaseFileName)
}

// Open ensures the data directory and the database with its schema exist,
// and returns a ready Store. Idempotent: safe to call on an existing store.
// Directory or file-open failures are reported as ErrUnavailable; schema
// failures (including a corrupt database file) surface as plain storage
// errors.
func Open(ctx context.Context, opts Options) (*Store, error) {
	l := applog.WithOperation(applog.WithComponent("storage"), "open").With(
		slog.String("dir", opts.Dir),
	)
	if strings.TrimSpace(opts.Dir) == "" {
		return nil, fmt.Errorf("%w: data directory is required", ErrInvalid)
	}
	if err := os.MkdirAll(opts.Dir, 0o755); err != nil {
		l.Error("create data dir failed", slog.Any("err", err))
		return nil, fmt.Errorf("create data dir: %w: %w", ErrUnavailable, err)
	}

	path := DatabasePath(opts.Dir)
	// URI with shared cache and a busy timeout; forward slashes for SQLite.
	dsn := fmt.Sprintf("file:%s?cache=shared&_pragma=busy_timeout(5000)", filepath.ToSlash(path))
	db, err := sql.Open("sqlite", dsn)
	if err != nil {
		l.Error("sqlite open failed", slog.Any("err", err))
		return nil, fmt.Errorf("open sqlite: %w: %w", ErrUnavailable, err)
	}
	// Single connection: the store is the sole writer and SQLite serializes
	// anyway.
	db.SetMaxOpenConns(1)
	db.SetMaxIdleConns(1)

	if _, err := db.ExecContext(ctx, "PRAGMA journal_mode=WAL;"); err != nil {
		_ = db.Close()
		l.Error("enable WAL failed", slog.Any("err", err))
		return nil, fmt.Errorf("enable WAL: %w", err)
	}
	if _, err := db.ExecContext(ctx, "PRAGMA foreign_keys=ON;"); err != nil {
		l.Warn("enable foreign_keys failed", slog.Any("err", err))
	}

	if err := ensureSchema(ctx, db); err != nil {
		_ = db.Close()
		l.Error("ensure schema failed", slog.Any("err", err))
		return nil, err
	}
	if err := ensureVersion(ctx, db); err != nil {
		_ = db.Close()
		l.Error("ensure version failed", slog.Any("err", err))
		return nil, err
	}

	l.Debug("store ready", slog.String("path", path))
	return &Store{db: db, dir: opts.Dir, path: path, backupKeep: opts.BackupKeep}, nil
}

// Close releases the database handle.
func (s *Store) Close() error {
	if s == nil || s.db == nil {
		return nil
	}
	return s.db.Close()
}

// Path returns the database file location.
func (s *Store) Path() string { return s.path }

// Dir returns the data directory.
func (s *Store) Dir() string { return s.dir }

func ensureSchema(ctx context.Context, db *sql.DB) error {
	ddl := []string{
		`CREATE TABLE IF NOT EXISTS threads (
			id             INTEGER PRIMARY KEY AUTOINCREMENT,
			question       TEXT    NOT NULL,
			created_at     INTEGER NOT NULL,
			last_active_at INTEGER NOT NULL,
			archived       INTEGER NOT NULL DEFAULT 0
		);`,
		`CREATE INDEX IF NOT EXISTS idx_threads_last_active ON threads(last_active_at);`,

		`CREATE TABLE IF NOT EXISTS resources (
			id         INTEGER PRIMARY KEY AUTOINCREMENT,
			thread_id  INTEGER NOT NULL,
			content    TEXT    NOT NULL,
			created_at INTEGER NOT NULL,
			FOREIGN KEY(thread_id) REFERENCES threads(id) ON DELETE CASCADE
		);`,
		`CREATE INDEX IF NOT EXISTS idx_resources_thread ON resources(thread_id);`,

		`CREATE TABLE IF NOT EXISTS tags (
			id         INTEGER PRIMARY KEY AUTOINCREMENT,
			thread_id  INTEGER NOT NULL,
			name       TEXT    NOT NULL,
			created_at INTEGER NOT NULL,
			UNIQUE(thread_id, name),
			FOREIGN KEY(thread_id) REFERENCES threads(id) ON DELETE CASCADE
		);`,

		`CREATE TABLE IF NOT EXISTS version (
			id          INTEGER PRIMARY KEY CHECK(id=1),
			schema      INTEGER NOT NULL,
			app         TEXT,
			created_at  TEXT NOT NULL,
			updated_at  TEXT NOT NULL
		);`,
	}
	for _, q := range ddl {
		if _, err := db.ExecContext(ctx, q); err != nil {
			return fmt.Errorf("ensure schema: %w", err)
		}
	}
	return nil
}

// ensureVersion seeds or refreshes the single-row version bookkeeping. A
// database written by a newer schema than this binary supports is rejected.
func ensureVersion(ctx context.Context, db *sql.DB) error {
	now := time.Now().UTC().Format(time.RFC3339)
	appv := version.String()
	var curSchema int
	err := db.QueryRowContext(ctx, `SELECT schema FROM version WHERE id=1`).Scan(&curSchema)
	switch {
	case errors.Is(err, sql.ErrNoRows):
		if _, err := db.ExecContext(ctx, `INSERT INTO version (id, schema, app, created_at, updated_at) VALUES(1, ?, ?, ?, ?)`, schemaVersion, appv, now, now); err != nil {
			return fmt.Errorf("insert version: %w", err)
		}
	case err != nil:
		return fmt.Errorf("read version: %w", err)
	case curSchema > schemaVersion:
		return fmt.Errorf("database schema %d is newer than supported %d", curSchema, schemaVersion)
	default:
		if _, err := db.ExecContext(ctx, `UPDATE version SET app=?, updated_at=? WHERE id=1`, appv, now); err != nil {
			return fmt.Errorf("update version: %w", err)
		}
	}
	return nil
}

// nowNanos is the single time source for row timestamps: Unix nanoseconds,
// stored as INTEGER so ordering stays numeric.
func nowNanos() int64 { return time.Now().UnixNano() }

func fromNanos(n int64) time.Time { return time.Unix(0, n) }

func boolToInt(b bool) int {
	if b {
		return 1
	}
	return 0
}
