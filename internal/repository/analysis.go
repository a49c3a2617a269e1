package repository

import (
	"context"
	"sort"
	"time"

	"github.com/skanerxe/nutrition-helper/internal/domain"
	apperrors "github.com/skanerxe/nutrition-helper/internal/errors"
	"github.com/skanerxe/nutrition-helper/internal/storage"
	"github.com/skanerxe/nutrition-helper/internal/utils"
)

// AnalysisRepository handles food analysis records in the analyses document
type AnalysisRepository struct {
	store *storage.DocumentStore
}

// NewAnalysisRepository creates a new analysis repository
func NewAnalysisRepository(store *storage.DocumentStore) *AnalysisRepository {
	return &AnalysisRepository{store: store}
}

// All returns the full id-to-analysis mapping
func (r *AnalysisRepository) All(ctx context.Context) (map[string]domain.Analysis, error) {
	body, err := r.store.Read(ctx, storage.DocAnalyses)
	if err != nil {
		return nil, err
	}

	var analyses map[string]domain.Analysis
	if err := storage.UnmarshalDocument(storage.DocAnalyses, body, &analyses); err != nil {
		return nil, err
	}
	if analyses == nil {
		analyses = make(map[string]domain.Analysis)
	}
	return analyses, nil
}

// Get returns one analysis by id
func (r *AnalysisRepository) Get(ctx context.Context, id string) (*domain.Analysis, error) {
	analyses, err := r.All(ctx)
	if err != nil {
		return nil, err
	}

	analysis, exists := analyses[id]
	if !exists {
		return nil, apperrors.ErrAnalysisNotFound
	}
	return &analysis, nil
}

// Add stores a new analysis under a freshly generated id and returns it
func (r *AnalysisRepository) Add(ctx context.Context, analysis domain.Analysis) (*domain.Analysis, error) {
	now := time.Now().UTC()
	analysis.ID = utils.NewID()
	analysis.CreatedAt = now
	analysis.UpdatedAt = now

	_, err := r.store.Update(ctx, storage.DocAnalyses, func(body []byte) ([]byte, error) {
		var analyses map[string]domain.Analysis
		if err := storage.UnmarshalDocument(storage.DocAnalyses, body, &analyses); err != nil {
			return nil, err
		}
		if analyses == nil {
			analyses = make(map[string]domain.Analysis)
		}

		analyses[analysis.ID] = analysis
		return marshalMap(analyses)
	})
	if err != nil {
		return nil, err
	}

	return &analysis, nil
}

// Update applies mutate to a stored analysis; a missing id fails with
// not_found and writes nothing.
func (r *AnalysisRepository) Update(ctx context.Context, id string, mutate func(*domain.Analysis) error) (*domain.Analysis, error) {
	var updated domain.Analysis

	_, err := r.store.Update(ctx, storage.DocAnalyses, func(body []byte) ([]byte, error) {
		var analyses map[string]domain.Analysis
		if err := storage.UnmarshalDocument(storage.DocAnalyses, body, &analyses); err != nil {
			return nil, err
		}

		analysis, exists := analyses[id]
		if !exists {
			return nil, apperrors.ErrAnalysisNotFound
		}

		if err := mutate(&analysis); err != nil {
			return nil, err
		}
		analysis.UpdatedAt = time.Now().UTC()

		analyses[id] = analysis
		updated = analysis

		return marshalMap(analyses)
	})
	if err != nil {
		return nil, err
	}

	return &updated, nil
}

// ListByUser returns a user's analyses, newest first, truncated to limit
// (limit <= 0 means no truncation).
func (r *AnalysisRepository) ListByUser(ctx context.Context, userEmail string, limit int) ([]domain.Analysis, error) {
	analyses, err := r.All(ctx)
	if err != nil {
		return nil, err
	}

	result := make([]domain.Analysis, 0, len(analyses))
	for _, analysis := range analyses {
		if analysis.UserEmail == userEmail {
			result = append(result, analysis)
		}
	}
	sort.Slice(result, func(i, j int) bool {
		return result[i].CreatedAt.After(result[j].CreatedAt)
	})

	if limit > 0 && len(result) > limit {
		result = result[:limit]
	}
	return result, nil
}

// ReplaceAll overwrites the whole analyses document, used by the maintenance
// sweep after filtering.
func (r *AnalysisRepository) ReplaceAll(ctx context.Context, analyses map[string]domain.Analysis) (storage.WriteOutcome, error) {
	return r.store.Write(ctx, storage.DocAnalyses, analyses)
}
