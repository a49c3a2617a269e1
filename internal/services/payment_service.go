package services

import (
	"context"
	"fmt"
	"strconv"

	"github.com/skanerxe/nutrition-helper/internal/domain"
	apperrors "github.com/skanerxe/nutrition-helper/internal/errors"
	"github.com/skanerxe/nutrition-helper/internal/repository"
)

// PaymentService handles balance top-ups: creation against the configured
// minimum, settling with bonus crediting, and listing.
type PaymentService struct {
	payments *repository.PaymentRepository
	users    *repository.UserRepository
	settings *repository.SettingsRepository
}

func NewPaymentService(payments *repository.PaymentRepository, users *repository.UserRepository, settings *repository.SettingsRepository) *PaymentService {
	return &PaymentService{
		payments: payments,
		users:    users,
		settings: settings,
	}
}

// CreatePayment opens a pending payment for the user. The amount must meet
// the configured minimum, and the user must exist.
func (s *PaymentService) CreatePayment(ctx context.Context, userEmail string, amount float64, description string) (*domain.Payment, error) {
	if _, err := s.users.Get(ctx, userEmail); err != nil {
		return nil, err
	}

	settings, err := s.settings.Get(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to load settings: %w", err)
	}
	if amount < settings.MinPayment {
		return nil, apperrors.NewValidationError(
			fmt.Sprintf("minimum payment is %g", settings.MinPayment))
	}

	if description == "" {
		description = "Balance top-up"
	}

	return s.payments.Create(ctx, userEmail, amount, description)
}

// CompletePayment marks a pending payment as completed and credits the
// user's balance with the amount plus the bonus tier for that exact amount.
func (s *PaymentService) CompletePayment(ctx context.Context, paymentID string) (*domain.Payment, error) {
	payment, err := s.payments.Update(ctx, paymentID, func(p *domain.Payment) error {
		if p.Terminal() {
			return apperrors.NewValidationError("payment is already settled")
		}
		p.Status = domain.PaymentStatusCompleted
		return nil
	})
	if err != nil {
		return nil, err
	}

	settings, err := s.settings.Get(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to load settings: %w", err)
	}
	bonus := settings.Bonuses[formatAmount(payment.Amount)]

	if _, err := s.users.Update(ctx, payment.UserEmail, func(u *domain.User) error {
		u.Balance += payment.Amount + bonus
		return nil
	}); err != nil {
		return nil, fmt.Errorf("failed to credit user balance: %w", err)
	}

	return payment, nil
}

// FailPayment marks a pending payment as failed without crediting anything
func (s *PaymentService) FailPayment(ctx context.Context, paymentID string) (*domain.Payment, error) {
	return s.payments.Update(ctx, paymentID, func(p *domain.Payment) error {
		if p.Terminal() {
			return apperrors.NewValidationError("payment is already settled")
		}
		p.Status = domain.PaymentStatusFailed
		return nil
	})
}

// PendingPayments returns the user's open payments, newest first
func (s *PaymentService) PendingPayments(ctx context.Context, userEmail string) ([]domain.Payment, error) {
	return s.payments.PendingByUser(ctx, userEmail)
}

// formatAmount renders an amount the way the bonus tiers are keyed: whole
// numbers without a fractional part ("100", not "100.00").
func formatAmount(amount float64) string {
	return strconv.FormatFloat(amount, 'f', -1, 64)
}
