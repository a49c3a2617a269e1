package services

import (
	"context"
	"fmt"
	"time"

	"github.com/robfig/cron/v3"

	"github.com/skanerxe/nutrition-helper/internal/domain"
	"github.com/skanerxe/nutrition-helper/internal/logger"
	"github.com/skanerxe/nutrition-helper/internal/repository"
)

// Settled payments are kept for a short fixed window independent of the
// analysis retention. Pending payments are never pruned.
const settledPaymentRetention = 7 * 24 * time.Hour

// MaintenanceService prunes expired analyses and settled payments in a
// single idempotent sweep.
type MaintenanceService struct {
	analyses *repository.AnalysisRepository
	payments *repository.PaymentRepository
}

func NewMaintenanceService(analyses *repository.AnalysisRepository, payments *repository.PaymentRepository) *MaintenanceService {
	return &MaintenanceService{
		analyses: analyses,
		payments: payments,
	}
}

// Cleanup removes analyses older than retentionDays and payments that are
// both settled and older than the fixed settled-payment window, then writes
// both documents back. Returns the removed counts.
func (s *MaintenanceService) Cleanup(ctx context.Context, retentionDays int) (*domain.CleanupResult, error) {
	now := time.Now().UTC()
	analysisCutoff := now.AddDate(0, 0, -retentionDays)
	paymentCutoff := now.Add(-settledPaymentRetention)

	analyses, err := s.analyses.All(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to load analyses: %w", err)
	}

	keptAnalyses := make(map[string]domain.Analysis, len(analyses))
	for id, analysis := range analyses {
		if analysis.CreatedAt.After(analysisCutoff) {
			keptAnalyses[id] = analysis
		}
	}

	payments, err := s.payments.All(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to load payments: %w", err)
	}

	keptPayments := make(map[string]domain.Payment, len(payments))
	for id, payment := range payments {
		if !payment.Terminal() || payment.CreatedAt.After(paymentCutoff) {
			keptPayments[id] = payment
		}
	}

	result := &domain.CleanupResult{
		AnalysesRemoved: len(analyses) - len(keptAnalyses),
		PaymentsRemoved: len(payments) - len(keptPayments),
	}

	if result.AnalysesRemoved > 0 {
		if _, err := s.analyses.ReplaceAll(ctx, keptAnalyses); err != nil {
			return nil, fmt.Errorf("failed to write pruned analyses: %w", err)
		}
	}
	if result.PaymentsRemoved > 0 {
		if _, err := s.payments.ReplaceAll(ctx, keptPayments); err != nil {
			return nil, fmt.Errorf("failed to write pruned payments: %w", err)
		}
	}

	logger.Info("Cleanup sweep finished",
		"analyses_removed", result.AnalysesRemoved,
		"payments_removed", result.PaymentsRemoved)

	return result, nil
}

// MaintenanceRunner triggers the cleanup sweep on a cron schedule
type MaintenanceRunner struct {
	service       domain.MaintenanceService
	cron          *cron.Cron
	schedule      string
	retentionDays int
}

func NewMaintenanceRunner(service domain.MaintenanceService, schedule string, retentionDays int) *MaintenanceRunner {
	return &MaintenanceRunner{
		service:       service,
		cron:          cron.New(),
		schedule:      schedule,
		retentionDays: retentionDays,
	}
}

// Start registers the sweep and starts the scheduler
func (r *MaintenanceRunner) Start() error {
	_, err := r.cron.AddFunc(r.schedule, func() {
		if _, err := r.service.Cleanup(context.Background(), r.retentionDays); err != nil {
			logger.Error("Scheduled cleanup failed", "error", err.Error())
		}
	})
	if err != nil {
		return fmt.Errorf("invalid cleanup schedule %q: %w", r.schedule, err)
	}

	r.cron.Start()
	logger.Info("Maintenance scheduler started", "schedule", r.schedule, "retention_days", r.retentionDays)
	return nil
}

// Stop stops the scheduler, waiting for a running sweep to finish
func (r *MaintenanceRunner) Stop() {
	ctx := r.cron.Stop()
	<-ctx.Done()
}
