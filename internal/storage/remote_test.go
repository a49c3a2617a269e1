package storage

import (
	"context"
	"encoding/base64"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/skanerxe/nutrition-helper/internal/config"
	apperrors "github.com/skanerxe/nutrition-helper/internal/errors"
)

func newTestGitHubStore(t *testing.T, handler http.HandlerFunc) *GitHubStore {
	t.Helper()
	srv := httptest.NewServer(handler)
	t.Cleanup(srv.Close)

	store := NewGitHubStore(config.GitHubConfig{
		Token:    "test-token",
		Owner:    "skanerxe",
		Repo:     "db",
		Branch:   "main",
		BasePath: "Database",
	})
	store.baseURL = srv.URL
	return store
}

func TestGitHubStore_FetchDecodesContentAndToken(t *testing.T) {
	// The contents API wraps base64 payloads across lines.
	encoded := base64.StdEncoding.EncodeToString([]byte(`{"k":"v"}`))
	wrapped := encoded[:4] + "\n" + encoded[4:]

	store := newTestGitHubStore(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodGet, r.Method)
		assert.Equal(t, "/repos/skanerxe/db/contents/Database/users.json", r.URL.Path)
		assert.Equal(t, "main", r.URL.Query().Get("ref"))
		assert.Equal(t, "token test-token", r.Header.Get("Authorization"))

		json.NewEncoder(w).Encode(map[string]string{
			"content": wrapped,
			"sha":     "abc123",
		})
	})

	body, token, err := store.Fetch(context.Background(), "users")
	require.NoError(t, err)
	assert.Equal(t, []byte(`{"k":"v"}`), body)
	assert.Equal(t, "abc123", token)
}

func TestGitHubStore_FetchMissingDocumentIsNotFound(t *testing.T) {
	store := newTestGitHubStore(t, func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusNotFound)
	})

	_, _, err := store.Fetch(context.Background(), "users")
	require.Error(t, err)
	assert.True(t, apperrors.IsType(err, apperrors.ErrorTypeNotFound))
}

func TestGitHubStore_FetchServerErrorIsTransport(t *testing.T) {
	store := newTestGitHubStore(t, func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusInternalServerError)
	})

	_, _, err := store.Fetch(context.Background(), "users")
	require.Error(t, err)
	assert.True(t, apperrors.IsType(err, apperrors.ErrorTypeTransport))
}

func TestGitHubStore_FetchUnreachableHostIsTransport(t *testing.T) {
	srv := httptest.NewServer(http.NotFoundHandler())
	store := NewGitHubStore(config.GitHubConfig{Owner: "o", Repo: "r", Branch: "main", BasePath: "Database"})
	store.baseURL = srv.URL
	srv.Close()

	_, _, err := store.Fetch(context.Background(), "users")
	require.Error(t, err)
	assert.True(t, apperrors.IsType(err, apperrors.ErrorTypeTransport))
}

func TestGitHubStore_StoreSendsExpectedTokenAndReturnsNewOne(t *testing.T) {
	store := newTestGitHubStore(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodPut, r.Method)
		assert.Equal(t, "/repos/skanerxe/db/contents/Database/settings.json", r.URL.Path)

		var req storeRequest
		require.NoError(t, json.NewDecoder(r.Body).Decode(&req))
		assert.Equal(t, "old-sha", req.SHA)
		assert.Equal(t, "main", req.Branch)

		decoded, err := base64.StdEncoding.DecodeString(req.Content)
		require.NoError(t, err)
		assert.Equal(t, []byte(`{"min_payment":50}`), decoded)

		w.WriteHeader(http.StatusOK)
		json.NewEncoder(w).Encode(map[string]interface{}{
			"content": map[string]string{"sha": "new-sha"},
		})
	})

	token, err := store.Store(context.Background(), "settings", []byte(`{"min_payment":50}`), "old-sha")
	require.NoError(t, err)
	assert.Equal(t, "new-sha", token)
}

func TestGitHubStore_StoreOmitsTokenOnCreate(t *testing.T) {
	store := newTestGitHubStore(t, func(w http.ResponseWriter, r *http.Request) {
		var raw map[string]interface{}
		require.NoError(t, json.NewDecoder(r.Body).Decode(&raw))
		_, hasSHA := raw["sha"]
		assert.False(t, hasSHA)

		w.WriteHeader(http.StatusCreated)
		json.NewEncoder(w).Encode(map[string]interface{}{
			"content": map[string]string{"sha": "first-sha"},
		})
	})

	token, err := store.Store(context.Background(), "users", []byte(`{}`), "")
	require.NoError(t, err)
	assert.Equal(t, "first-sha", token)
}

func TestGitHubStore_StoreStaleTokenIsVersionConflict(t *testing.T) {
	for _, status := range []int{http.StatusConflict, http.StatusUnprocessableEntity} {
		store := newTestGitHubStore(t, func(w http.ResponseWriter, r *http.Request) {
			w.WriteHeader(status)
		})

		_, err := store.Store(context.Background(), "settings", []byte(`{}`), "stale")
		require.Error(t, err)
		assert.True(t, apperrors.IsType(err, apperrors.ErrorTypeVersionConflict))
	}
}

func TestGitHubStore_StoreServerErrorIsTransport(t *testing.T) {
	store := newTestGitHubStore(t, func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusBadGateway)
	})

	_, err := store.Store(context.Background(), "settings", []byte(`{}`), "v1")
	require.Error(t, err)
	assert.True(t, apperrors.IsType(err, apperrors.ErrorTypeTransport))
}
