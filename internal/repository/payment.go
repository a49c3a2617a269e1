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

// PaymentRepository handles top-up records in the payments document
type PaymentRepository struct {
	store *storage.DocumentStore
}

// NewPaymentRepository creates a new payment repository
func NewPaymentRepository(store *storage.DocumentStore) *PaymentRepository {
	return &PaymentRepository{store: store}
}

// All returns the full id-to-payment mapping
func (r *PaymentRepository) All(ctx context.Context) (map[string]domain.Payment, error) {
	body, err := r.store.Read(ctx, storage.DocPayments)
	if err != nil {
		return nil, err
	}

	var payments map[string]domain.Payment
	if err := storage.UnmarshalDocument(storage.DocPayments, body, &payments); err != nil {
		return nil, err
	}
	if payments == nil {
		payments = make(map[string]domain.Payment)
	}
	return payments, nil
}

// Get returns one payment by id
func (r *PaymentRepository) Get(ctx context.Context, id string) (*domain.Payment, error) {
	payments, err := r.All(ctx)
	if err != nil {
		return nil, err
	}

	payment, exists := payments[id]
	if !exists {
		return nil, apperrors.ErrPaymentNotFound
	}
	return &payment, nil
}

// Create stores a new pending payment and returns it
func (r *PaymentRepository) Create(ctx context.Context, userEmail string, amount float64, description string) (*domain.Payment, error) {
	id := utils.NewID()
	payment := domain.Payment{
		ID:          id,
		UserEmail:   userEmail,
		Amount:      amount,
		Description: description,
		Status:      domain.PaymentStatusPending,
		RobokassaID: "rk_" + id,
		CreatedAt:   time.Now().UTC(),
	}

	_, err := r.store.Update(ctx, storage.DocPayments, func(body []byte) ([]byte, error) {
		var payments map[string]domain.Payment
		if err := storage.UnmarshalDocument(storage.DocPayments, body, &payments); err != nil {
			return nil, err
		}
		if payments == nil {
			payments = make(map[string]domain.Payment)
		}

		payments[payment.ID] = payment
		return marshalMap(payments)
	})
	if err != nil {
		return nil, err
	}

	return &payment, nil
}

// Update applies mutate to a stored payment; a missing id fails with
// not_found and writes nothing.
func (r *PaymentRepository) Update(ctx context.Context, id string, mutate func(*domain.Payment) error) (*domain.Payment, error) {
	var updated domain.Payment

	_, err := r.store.Update(ctx, storage.DocPayments, func(body []byte) ([]byte, error) {
		var payments map[string]domain.Payment
		if err := storage.UnmarshalDocument(storage.DocPayments, body, &payments); err != nil {
			return nil, err
		}

		payment, exists := payments[id]
		if !exists {
			return nil, apperrors.ErrPaymentNotFound
		}

		if err := mutate(&payment); err != nil {
			return nil, err
		}
		payment.UpdatedAt = time.Now().UTC()

		payments[id] = payment
		updated = payment

		return marshalMap(payments)
	})
	if err != nil {
		return nil, err
	}

	return &updated, nil
}

// PendingByUser returns a user's pending payments, newest first
func (r *PaymentRepository) PendingByUser(ctx context.Context, userEmail string) ([]domain.Payment, error) {
	payments, err := r.All(ctx)
	if err != nil {
		return nil, err
	}

	result := make([]domain.Payment, 0)
	for _, payment := range payments {
		if payment.UserEmail == userEmail && payment.Status == domain.PaymentStatusPending {
			result = append(result, payment)
		}
	}
	sort.Slice(result, func(i, j int) bool {
		return result[i].CreatedAt.After(result[j].CreatedAt)
	})
	return result, nil
}

// ReplaceAll overwrites the whole payments document, used by the maintenance
// sweep after filtering.
func (r *PaymentRepository) ReplaceAll(ctx context.Context, payments map[string]domain.Payment) (storage.WriteOutcome, error) {
	return r.store.Write(ctx, storage.DocPayments, payments)
}
