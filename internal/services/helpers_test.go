package services

import (
	"database/sql"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/skanerxe/nutrition-helper/internal/repository"
	"github.com/skanerxe/nutrition-helper/internal/storage"

	_ "modernc.org/sqlite"
)

type testRepos struct {
	users    *repository.UserRepository
	analyses *repository.AnalysisRepository
	payments *repository.PaymentRepository
	settings *repository.SettingsRepository
}

func newTestRepos(t *testing.T) testRepos {
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

	store := storage.NewDocumentStore(
		storage.NewMemoryRemote(),
		storage.NewFallbackStore(db),
		storage.NewTTLCache(5*time.Minute),
	)

	return testRepos{
		users:    repository.NewUserRepository(store),
		analyses: repository.NewAnalysisRepository(store),
		payments: repository.NewPaymentRepository(store),
		settings: repository.NewSettingsRepository(store),
	}
}
