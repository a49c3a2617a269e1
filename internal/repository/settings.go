package repository

import (
	"context"

	"github.com/skanerxe/nutrition-helper/internal/domain"
	"github.com/skanerxe/nutrition-helper/internal/storage"
)

// SettingsRepository handles the singleton global settings document
type SettingsRepository struct {
	store *storage.DocumentStore
}

// NewSettingsRepository creates a new settings repository
func NewSettingsRepository(store *storage.DocumentStore) *SettingsRepository {
	return &SettingsRepository{store: store}
}

// Get returns the global settings
func (r *SettingsRepository) Get(ctx context.Context) (*domain.Settings, error) {
	body, err := r.store.Read(ctx, storage.DocSettings)
	if err != nil {
		return nil, err
	}

	var settings domain.Settings
	if err := storage.UnmarshalDocument(storage.DocSettings, body, &settings); err != nil {
		return nil, err
	}
	return &settings, nil
}

// Update applies mutate to the stored settings and writes them back
func (r *SettingsRepository) Update(ctx context.Context, mutate func(*domain.Settings) error) (*domain.Settings, error) {
	var updated domain.Settings

	_, err := r.store.Update(ctx, storage.DocSettings, func(body []byte) ([]byte, error) {
		var settings domain.Settings
		if err := storage.UnmarshalDocument(storage.DocSettings, body, &settings); err != nil {
			return nil, err
		}

		if err := mutate(&settings); err != nil {
			return nil, err
		}

		updated = settings
		return storage.MarshalDocument(settings)
	})
	if err != nil {
		return nil, err
	}

	return &updated, nil
}
