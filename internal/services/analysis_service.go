package services

import (
	"context"
	"fmt"
	"math"

	"github.com/skanerxe/nutrition-helper/internal/domain"
	apperrors "github.com/skanerxe/nutrition-helper/internal/errors"
	"github.com/skanerxe/nutrition-helper/internal/logger"
	"github.com/skanerxe/nutrition-helper/internal/repository"
)

// AnalysisService persists analysis results produced by the external
// analysis generator and derives recalculated records from existing ones.
type AnalysisService struct {
	analyses *repository.AnalysisRepository
	users    *repository.UserRepository
}

func NewAnalysisService(analyses *repository.AnalysisRepository, users *repository.UserRepository) *AnalysisService {
	return &AnalysisService{
		analyses: analyses,
		users:    users,
	}
}

// AddAnalysis stores a new analysis for the user and bumps the user's usage
// statistics. The analysis payload is taken as-is; this layer makes no
// assumptions about its content beyond the schema.
func (s *AnalysisService) AddAnalysis(ctx context.Context, userEmail string, analysis domain.Analysis) (*domain.Analysis, error) {
	analysis.UserEmail = userEmail

	saved, err := s.analyses.Add(ctx, analysis)
	if err != nil {
		return nil, fmt.Errorf("failed to save analysis: %w", err)
	}

	if _, err := s.users.Update(ctx, userEmail, func(u *domain.User) error {
		u.Stats.TotalAnalyses++
		u.Stats.TotalCalories += float64(saved.Calories)
		return nil
	}); err != nil {
		// The analysis itself is stored; stale counters are recoverable.
		logger.Warn("Failed to update user stats after analysis", "user", userEmail, "error", err.Error())
	}

	return saved, nil
}

// Recalculate derives a new analysis record from an existing one, scaling
// every macro field and ingredient by newWeight/oldWeight. The original
// record is never mutated; both remain listed afterwards.
func (s *AnalysisService) Recalculate(ctx context.Context, analysisID string, newWeight float64) (*domain.Analysis, error) {
	if newWeight <= 0 {
		return nil, apperrors.NewValidationError("weight must be positive")
	}

	original, err := s.analyses.Get(ctx, analysisID)
	if err != nil {
		return nil, err
	}
	if original.Weight <= 0 {
		return nil, apperrors.NewValidationError("original analysis has no weight to scale from")
	}

	ratio := newWeight / original.Weight

	derived := *original
	derived.ID = ""
	derived.Weight = newWeight
	derived.Calories = int(math.Round(float64(original.Calories) * ratio))
	derived.Protein = roundTenth(original.Protein * ratio)
	derived.Fat = roundTenth(original.Fat * ratio)
	derived.Carbs = roundTenth(original.Carbs * ratio)
	derived.BreadUnits = roundTenth(original.BreadUnits * ratio)
	derived.Recalculated = true

	derived.Ingredients = make([]domain.Ingredient, len(original.Ingredients))
	for i, ing := range original.Ingredients {
		derived.Ingredients[i] = domain.Ingredient{
			Name:        ing.Name,
			WeightGrams: int(math.Round(float64(ing.WeightGrams) * ratio)),
			Calories:    int(math.Round(float64(ing.Calories) * ratio)),
		}
	}

	saved, err := s.analyses.Add(ctx, derived)
	if err != nil {
		return nil, fmt.Errorf("failed to save recalculated analysis: %w", err)
	}
	return saved, nil
}

// UserAnalyses returns the user's analyses, newest first
func (s *AnalysisService) UserAnalyses(ctx context.Context, userEmail string, limit int) ([]domain.Analysis, error) {
	return s.analyses.ListByUser(ctx, userEmail, limit)
}

func roundTenth(v float64) float64 {
	return math.Round(v*10) / 10
}
