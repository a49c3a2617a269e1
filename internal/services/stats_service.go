package services

import (
	"context"
	"fmt"

	"github.com/skanerxe/nutrition-helper/internal/domain"
	"github.com/skanerxe/nutrition-helper/internal/repository"
)

// StatsService aggregates admin-facing totals across all documents
type StatsService struct {
	users    *repository.UserRepository
	analyses *repository.AnalysisRepository
	payments *repository.PaymentRepository
}

func NewStatsService(users *repository.UserRepository, analyses *repository.AnalysisRepository, payments *repository.PaymentRepository) *StatsService {
	return &StatsService{
		users:    users,
		analyses: analyses,
		payments: payments,
	}
}

// Stats returns totals over users, analyses and pending payments
func (s *StatsService) Stats(ctx context.Context) (*domain.Stats, error) {
	users, err := s.users.List(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to load users: %w", err)
	}

	analyses, err := s.analyses.All(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to load analyses: %w", err)
	}

	payments, err := s.payments.All(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to load payments: %w", err)
	}

	stats := &domain.Stats{
		TotalUsers:    len(users),
		TotalAnalyses: len(analyses),
	}
	for _, user := range users {
		stats.TotalBalance += user.Balance
	}
	for _, payment := range payments {
		if payment.Status == domain.PaymentStatusPending {
			stats.PendingPayments++
		}
	}

	return stats, nil
}
