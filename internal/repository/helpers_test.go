package repository

import (
	"database/sql"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/skanerxe/nutrition-helper/internal/storage"

	_ "modernc.org/sqlite"
)

func newTestStore(t *testing.T) (*storage.DocumentStore, *storage.MemoryRemote) {
	t.Helper()

	db, err := sql.Open("sqlite", ":memory:")
	require.NoError(t, err)
	t.Cleanup(func() { _ = db.Close() })

	_, err = db.Exec(`
CREATE TABLE documents (
  name       TEXT PRIMARY KEY,
  body       BLOB NOT NULL,
  updated_at TEXT NOT NULL
);`)
	require.NoError(t, err)

	remote := storage.NewMemoryRemote()
	store := storage.NewDocumentStore(remote, storage.NewFallbackStore(db), storage.NewTTLCache(5*time.Minute))
	return store, remote
}
