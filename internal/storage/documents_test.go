package storage

import (
	"context"
	"encoding/json"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/skanerxe/nutrition-helper/internal/domain"
	apperrors "github.com/skanerxe/nutrition-helper/internal/errors"
)

func newTestDocumentStore(t *testing.T) (*DocumentStore, *MemoryRemote, *FallbackStore) {
	t.Helper()
	remote := NewMemoryRemote()
	fallback := setupFallback(t)
	store := NewDocumentStore(remote, fallback, NewTTLCache(5*time.Minute))
	return store, remote, fallback
}

func decodeSettings(t *testing.T, body []byte) domain.Settings {
	t.Helper()
	var settings domain.Settings
	require.NoError(t, json.Unmarshal(body, &settings))
	return settings
}

func TestDocumentStore_ReadAfterWriteRoundTrip(t *testing.T) {
	store, _, _ := newTestDocumentStore(t)
	ctx := context.Background()

	outcome, err := store.Write(ctx, DocSettings, domain.Settings{MinPayment: 75, AnalysisCost: 2})
	require.NoError(t, err)
	assert.Equal(t, WriteConfirmed, outcome)

	body, err := store.Read(ctx, DocSettings)
	require.NoError(t, err)
	settings := decodeSettings(t, body)
	assert.Equal(t, 75.0, settings.MinPayment)
	assert.Equal(t, 2.0, settings.AnalysisCost)
}

func TestDocumentStore_ReadEstablishesDefaultsWhenMissing(t *testing.T) {
	store, remote, _ := newTestDocumentStore(t)
	ctx := context.Background()

	body, err := store.Read(ctx, DocSettings)
	require.NoError(t, err)
	settings := decodeSettings(t, body)
	assert.Equal(t, 50.0, settings.MinPayment)
	assert.Equal(t, 5.0, settings.Bonuses["100"])

	// The default must now exist remotely too.
	remoteBody, _, err := remote.Fetch(ctx, DocSettings)
	require.NoError(t, err)
	assert.Equal(t, body, remoteBody)
}

func TestDocumentStore_ReadUsesDefaultUsersSeed(t *testing.T) {
	store, _, _ := newTestDocumentStore(t)

	body, err := store.Read(context.Background(), DocUsers)
	require.NoError(t, err)

	var users map[string]domain.User
	require.NoError(t, json.Unmarshal(body, &users))
	admin, ok := users["admin@skanerxe.ru"]
	require.True(t, ok)
	assert.True(t, admin.IsAdmin)
	assert.Equal(t, 999, admin.FreeRequests)
}

func TestDocumentStore_ReadFallsBackWhenRemoteUnreachable(t *testing.T) {
	store, remote, fallback := newTestDocumentStore(t)
	ctx := context.Background()

	_, err := store.Write(ctx, DocSettings, domain.Settings{MinPayment: 75})
	require.NoError(t, err)

	// A cold process with the same fallback mirror and a dead remote.
	remote.SetOffline(true)
	coldStore := NewDocumentStore(remote, fallback, NewTTLCache(5*time.Minute))

	body, err := coldStore.Read(ctx, DocSettings)
	require.NoError(t, err)
	assert.Equal(t, 75.0, decodeSettings(t, body).MinPayment)
}

func TestDocumentStore_ReadReturnsDefaultsWhenEverythingIsGone(t *testing.T) {
	store, remote, _ := newTestDocumentStore(t)
	remote.SetOffline(true)

	body, err := store.Read(context.Background(), DocSettings)
	require.NoError(t, err)
	assert.Equal(t, 50.0, decodeSettings(t, body).MinPayment)

	// Nothing was persisted anywhere while the remote was down.
	remote.SetOffline(false)
	_, _, err = remote.Fetch(context.Background(), DocSettings)
	assert.True(t, apperrors.IsType(err, apperrors.ErrorTypeNotFound))
}

func TestDocumentStore_WriteWithStaleTokenReportsConflict(t *testing.T) {
	store, remote, _ := newTestDocumentStore(t)
	ctx := context.Background()

	_, err := store.Write(ctx, DocSettings, domain.Settings{MinPayment: 50, AnalysisCost: 1})
	require.NoError(t, err)

	// A concurrent writer moves the remote document to a new revision.
	external, err := MarshalDocument(domain.Settings{MinPayment: 100})
	require.NoError(t, err)
	remote.Seed(DocSettings, external)

	_, err = store.Write(ctx, DocSettings, domain.Settings{MinPayment: 60})
	require.Error(t, err)
	assert.True(t, apperrors.IsType(err, apperrors.ErrorTypeVersionConflict))

	// The stale cache entry is gone; the next read sees the external write.
	body, err := store.Read(ctx, DocSettings)
	require.NoError(t, err)
	assert.Equal(t, 100.0, decodeSettings(t, body).MinPayment)
}

func TestDocumentStore_WriteDuringOutageIsDegradedButDurable(t *testing.T) {
	store, remote, fallback := newTestDocumentStore(t)
	ctx := context.Background()

	_, err := store.Write(ctx, DocSettings, domain.Settings{MinPayment: 50})
	require.NoError(t, err)

	remote.SetOffline(true)

	outcome, err := store.Write(ctx, DocSettings, domain.Settings{MinPayment: 80})
	require.NoError(t, err)
	assert.Equal(t, WriteDegraded, outcome)

	// The write is visible to the next read in this process.
	body, err := store.Read(ctx, DocSettings)
	require.NoError(t, err)
	assert.Equal(t, 80.0, decodeSettings(t, body).MinPayment)

	// And durable in the local mirror.
	mirrored, err := fallback.Read(ctx, DocSettings)
	require.NoError(t, err)
	assert.Equal(t, 80.0, decodeSettings(t, mirrored).MinPayment)
}

func TestDocumentStore_WriteAfterOutageRecoversCleanly(t *testing.T) {
	store, remote, _ := newTestDocumentStore(t)
	ctx := context.Background()

	_, err := store.Write(ctx, DocSettings, domain.Settings{MinPayment: 50})
	require.NoError(t, err)

	remote.SetOffline(true)
	outcome, err := store.Write(ctx, DocSettings, domain.Settings{MinPayment: 80})
	require.NoError(t, err)
	require.Equal(t, WriteDegraded, outcome)

	// Nobody else wrote remotely, so the retained token is still current and
	// the next write lands.
	remote.SetOffline(false)
	outcome, err = store.Write(ctx, DocSettings, domain.Settings{MinPayment: 90})
	require.NoError(t, err)
	assert.Equal(t, WriteConfirmed, outcome)

	remoteBody, _, err := remote.Fetch(ctx, DocSettings)
	require.NoError(t, err)
	assert.Equal(t, 90.0, decodeSettings(t, remoteBody).MinPayment)
}

func TestDocumentStore_UpdateRetriesOnceOnConflict(t *testing.T) {
	store, remote, _ := newTestDocumentStore(t)
	ctx := context.Background()

	_, err := store.Write(ctx, DocSettings, domain.Settings{MinPayment: 50, AnalysisCost: 1})
	require.NoError(t, err)

	// External writer bumps min_payment behind our back.
	external, err := MarshalDocument(domain.Settings{MinPayment: 100, AnalysisCost: 1})
	require.NoError(t, err)
	remote.Seed(DocSettings, external)

	outcome, err := store.Update(ctx, DocSettings, func(body []byte) ([]byte, error) {
		var settings domain.Settings
		if err := json.Unmarshal(body, &settings); err != nil {
			return nil, err
		}
		settings.RecalcCost = 3
		return MarshalDocument(settings)
	})
	require.NoError(t, err)
	assert.Equal(t, WriteConfirmed, outcome)

	// Both the external change and ours survived.
	remoteBody, _, err := remote.Fetch(ctx, DocSettings)
	require.NoError(t, err)
	settings := decodeSettings(t, remoteBody)
	assert.Equal(t, 100.0, settings.MinPayment)
	assert.Equal(t, 3.0, settings.RecalcCost)
}

func TestDocumentStore_UpdateAbortsWithoutWritingWhenTransformFails(t *testing.T) {
	store, remote, _ := newTestDocumentStore(t)
	ctx := context.Background()

	_, err := store.Write(ctx, DocSettings, domain.Settings{MinPayment: 50})
	require.NoError(t, err)

	_, err = store.Update(ctx, DocSettings, func([]byte) ([]byte, error) {
		return nil, apperrors.ErrDuplicateEmail
	})
	require.Error(t, err)
	assert.True(t, apperrors.IsType(err, apperrors.ErrorTypeDuplicateKey))

	remoteBody, _, err := remote.Fetch(ctx, DocSettings)
	require.NoError(t, err)
	assert.Equal(t, 50.0, decodeSettings(t, remoteBody).MinPayment)
}

func TestDocumentStore_CachedReadSkipsRemote(t *testing.T) {
	store, remote, _ := newTestDocumentStore(t)
	ctx := context.Background()

	_, err := store.Write(ctx, DocSettings, domain.Settings{MinPayment: 50})
	require.NoError(t, err)

	// Within the TTL the cached copy is served even if the remote changed.
	external, err := MarshalDocument(domain.Settings{MinPayment: 999})
	require.NoError(t, err)
	remote.Seed(DocSettings, external)

	body, err := store.Read(ctx, DocSettings)
	require.NoError(t, err)
	assert.Equal(t, 50.0, decodeSettings(t, body).MinPayment)
}
