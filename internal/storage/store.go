/*
 * Copyright (c) 2025 by Alexander Drost, Oldenburg, Germany.
 * This file is licensed to you under the Apache License, Version 2.0 (the "License"); you may not use this file except in compliance with the License.  You may obtain a copy of the License at
 *   http://www.apache.org/licenses/LICENSE-2.0
 * Unless required by applicable law or agreed to in writing, software distributed under the License is distributed on an
 * "AS IS" BASIS, WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.  See the License for the specific language governing permissions and limitations under the License.
 */

// Package storage provides local persistence: the SQLite fallback scene
// store used when no host bridge is present, atomic scene-file writes with
// timestamped backups, and the crash autosave path.
package storage

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"runtime"
	"time"

	applog "gosketchpad/internal/log"
	"gosketchpad/internal/version"

	// Pure-Go SQLite driver (CGO-free)
	_ "modernc.org/sqlite"
)

const (
	StoreFileName = "scenes.sqlite"

	// schemaVersion tracks the local SQLite schema. Bump on breaking changes
	// and add a migration step in runMigrations.
	schemaVersion = 1
)

// DefaultStoreDir returns the per-user directory holding the scene store.
func DefaultStoreDir() (string, error) {
	var base string
	switch runtime.GOOS {
	case "windows":
		base = os.Getenv("AppData")
		if base == "" {
			base = filepath.Join(os.Getenv("USERPROFILE"), "AppData", "Roaming")
		}
		base = filepath.Join(base, "GoSketchpad")
	case "darwin":
		base = filepath.Join(os.Getenv("HOME"), "Library", "Application Support", "GoSketchpad")
	default: // linux and others
		base = filepath.Join(os.Getenv("HOME"), ".local", "share", "gosketchpad")
	}
	if base == "" {
		return "", errors.New("cannot resolve data directory")
	}
	return base, nil
}

// Store is the local key-value scene store: the last open scene plus a
// small map of named scenes, interchangeable with the host bridge's
// synchronous scene read at startup.
type Store struct {
	db  *sql.DB
	log *slog.Logger
}

// Open creates or opens the store under dir, enables WAL mode, and brings
// the schema up to date.
func Open(dir string) (*Store, error) {
	l := applog.WithOperation(applog.WithComponent("storage"), "store_open").With(slog.String("dir", dir))
	if dir == "" {
		return nil, errors.New("store directory is required")
	}
	if err := os.MkdirAll(dir, 0o755); err != nil {
		l.Error("create store dir failed", slog.Any("err", err))
		return nil, fmt.Errorf("create store dir: %w", err)
	}

	path := filepath.Join(dir, StoreFileName)
	dsn := fmt.Sprintf("file:%s?cache=shared&_pragma=busy_timeout(5000)", filepath.ToSlash(path))
	db, err := sql.Open("sqlite", dsn)
	if err != nil {
		l.Error("sqlite open failed", slog.Any("err", err))
		return nil, fmt.Errorf("open sqlite: %w", err)
	}
	db.SetMaxOpenConns(1)
	db.SetMaxIdleConns(1)

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if _, err := db.ExecContext(ctx, "PRAGMA journal_mode=WAL;"); err != nil {
		_ = db.Close()
		l.Error("enable WAL failed", slog.Any("err", err))
		return nil, fmt.Errorf("enable WAL: %w", err)
	}
	if err := ensureSchema(ctx, db); err != nil {
		_ = db.Close()
		l.Error("ensure schema failed", slog.Any("err", err))
		return nil, err
	}
	if err := runMigrations(ctx, db); err != nil {
		_ = db.Close()
		l.Error("run migrations failed", slog.Any("err", err))
		return nil, err
	}

	l.Info("scene store ready", slog.String("path", path))
	return &Store{db: db, log: applog.WithComponent("storage")}, nil
}

// Close releases the underlying database.
func (s *Store) Close() error { return s.db.Close() }

// SaveLastScene records the most recent scene JSON for startup hydration.
func (s *Store) SaveLastScene(ctx context.Context, sceneJSON string) error {
	now := time.Now().UTC().Format(time.RFC3339Nano)
	_, err := s.db.ExecContext(ctx,
		`INSERT INTO last_scene (id, json, updated_at) VALUES (1, ?, ?)
		 ON CONFLICT(id) DO UPDATE SET json=excluded.json, updated_at=excluded.updated_at`,
		sceneJSON, now)
	if err != nil {
		return fmt.Errorf("save last scene: %w", err)
	}
	return nil
}

// LastScene returns the most recent scene JSON, ok=false when none exists.
func (s *Store) LastScene(ctx context.Context) (string, bool, error) {
	var js string
	err := s.db.QueryRowContext(ctx, `SELECT json FROM last_scene WHERE id=1`).Scan(&js)
	if errors.Is(err, sql.ErrNoRows) {
		return "", false, nil
	}
	if err != nil {
		return "", false, fmt.Errorf("read last scene: %w", err)
	}
	return js, true, nil
}

// NamedScene is one entry of the named-scene map.
type NamedScene struct {
	Name      string
	JSON      string
	UpdatedAt time.Time
}

// PutScene stores or replaces a named scene.
func (s *Store) PutScene(ctx context.Context, name, sceneJSON string) error {
	if name == "" {
		return errors.New("scene name is required")
	}
	now := time.Now().UTC().Format(time.RFC3339Nano)
	_, err := s.db.ExecContext(ctx,
		`INSERT INTO scenes (name, json, updated_at) VALUES (?, ?, ?)
		 ON CONFLICT(name) DO UPDATE SET json=excluded.json, updated_at=excluded.updated_at`,
		name, sceneJSON, now)
	if err != nil {
		return fmt.Errorf("put scene %q: %w", name, err)
	}
	return nil
}

// GetScene fetches a named scene, ok=false when absent.
func (s *Store) GetScene(ctx context.Context, name string) (string, bool, error) {
	var js string
	err := s.db.QueryRowContext(ctx, `SELECT json FROM scenes WHERE name=?`, name).Scan(&js)
	if errors.Is(err, sql.ErrNoRows) {
		return "", false, nil
	}
	if err != nil {
		return "", false, fmt.Errorf("get scene %q: %w", name, err)
	}
	return js, true, nil
}

// ListScenes returns all named scenes, newest first.
func (s *Store) ListScenes(ctx context.Context) ([]NamedScene, error) {
	rows, err := s.db.QueryContext(ctx, `SELECT name, json, updated_at FROM scenes ORDER BY updated_at DESC`)
	if err != nil {
		return nil, fmt.Errorf("list scenes: %w", err)
	}
	defer func() { _ = rows.Close() }()
	var out []NamedScene
	for rows.Next() {
		var ns NamedScene
		var tsStr string
		if err := rows.Scan(&ns.Name, &ns.JSON, &tsStr); err != nil {
			return nil, err
		}
		ns.UpdatedAt, _ = time.Parse(time.RFC3339Nano, tsStr)
		out = append(out, ns)
	}
	return out, rows.Err()
}

// DeleteScene removes a named scene; deleting a missing name is not an error.
func (s *Store) DeleteScene(ctx context.Context, name string) error {
	_, err := s.db.ExecContext(ctx, `DELETE FROM scenes WHERE name=?`, name)
	if err != nil {
		return fmt.Errorf("delete scene %q: %w", name, err)
	}
	return nil
}

func ensureSchema(ctx context.Context, db *sql.DB) error {
	ddl := []string{
		`CREATE TABLE IF NOT EXISTS meta (
			key   TEXT PRIMARY KEY,
			value TEXT NOT NULL
		);`,
		`CREATE TABLE IF NOT EXISTS version (
			id          INTEGER PRIMARY KEY CHECK(id=1),
			schema      INTEGER NOT NULL,
			app         TEXT,
			created_at  TEXT NOT NULL,
			updated_at  TEXT NOT NULL
		);`,
		`CREATE TABLE IF NOT EXISTS last_scene (
			id          INTEGER PRIMARY KEY CHECK(id=1),
			json        TEXT NOT NULL,
			updated_at  TEXT NOT NULL
		);`,
		`CREATE TABLE IF NOT EXISTS scenes (
			name        TEXT PRIMARY KEY,
			json        TEXT NOT NULL,
			updated_at  TEXT NOT NULL
		);`,
	}
	for _, q := range ddl {
		if _, err := db.ExecContext(ctx, q); err != nil {
			return fmt.Errorf("create table: %w", err)
		}
	}

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
	default:
		if _, err := db.ExecContext(ctx, `UPDATE version SET app=?, updated_at=? WHERE id=1`, appv, now); err != nil {
			return fmt.Errorf("update version: %w", err)
		}
	}
	return nil
}

// runMigrations applies incremental schema migrations up to schemaVersion.
func runMigrations(ctx context.Context, db *sql.DB) error {
	var cur int
	if err := db.QueryRowContext(ctx, `SELECT schema FROM version WHERE id=1`).Scan(&cur); err != nil {
		return fmt.Errorf("read schema version: %w", err)
	}
	if cur >= schemaVersion {
		// Never downgrade.
		return nil
	}
	for cur < schemaVersion {
		next := cur + 1
		switch next {
		default:
			// No incremental steps yet; schema 1 is created by ensureSchema.
		}
		if _, err := db.ExecContext(ctx, `UPDATE version SET schema=?, updated_at=? WHERE id=1`, next, time.Now().UTC().Format(time.RFC3339)); err != nil {
			return fmt.Errorf("migration %d update version: %w", next, err)
		}
		cur = next
	}
	return nil
}
