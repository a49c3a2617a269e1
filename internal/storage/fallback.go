package storage

import (
	"context"
	"database/sql"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/pressly/goose/v3"
	_ "modernc.org/sqlite"

	"github.com/skanerxe/nutrition-helper/internal/storage/migrations"
)

// FallbackStore is the durable local mirror of the last-known document bytes.
// It is written after every successful remote write, opportunistically after
// failed ones, and read only when the remote store is unreachable. It is not
// a cache: entries have no TTL.
type FallbackStore struct {
	db *sql.DB
}

// NewFallbackStore wraps an already-migrated database handle
func NewFallbackStore(db *sql.DB) *FallbackStore {
	return &FallbackStore{db: db}
}

// OpenFallbackDB opens (creating if needed) the local sqlite database and
// brings its schema up to date.
func OpenFallbackDB(ctx context.Context, path string) (*sql.DB, error) {
	if dir := filepath.Dir(path); dir != "." {
		if err := os.MkdirAll(dir, 0755); err != nil {
			return nil, fmt.Errorf("create fallback directory: %w", err)
		}
	}

	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("open fallback database: %w", err)
	}

	if err := runMigrations(ctx, db); err != nil {
		db.Close()
		return nil, err
	}

	return db, nil
}

func runMigrations(ctx context.Context, db *sql.DB) error {
	goose.SetBaseFS(migrations.Migrations)

	if err := goose.SetDialect("sqlite3"); err != nil {
		return fmt.Errorf("set goose dialect: %w", err)
	}

	if err := goose.UpContext(ctx, db, "."); err != nil {
		return fmt.Errorf("run fallback migrations: %w", err)
	}

	return nil
}

// Read returns the mirrored bytes for a document, or (nil, nil) when the
// document was never mirrored.
func (s *FallbackStore) Read(ctx context.Context, name string) ([]byte, error) {
	var body []byte
	err := s.db.QueryRowContext(ctx, `SELECT body FROM documents WHERE name = ?`, name).Scan(&body)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to read fallback document %q: %w", name, err)
	}
	return body, nil
}

// Write mirrors the given document bytes, replacing any previous copy
func (s *FallbackStore) Write(ctx context.Context, name string, body []byte) error {
	_, err := s.db.ExecContext(ctx, `
		INSERT INTO documents (name, body, updated_at) VALUES (?, ?, ?)
		ON CONFLICT(name) DO UPDATE SET body = excluded.body, updated_at = excluded.updated_at
	`, name, body, time.Now().UTC().Format(time.RFC3339))
	if err != nil {
		return fmt.Errorf("failed to write fallback document %q: %w", name, err)
	}
	return nil
}
