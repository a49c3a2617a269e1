package domain

import (
	"context"
)

// UserRepository handles account records in the users document
type UserRepository interface {
	Get(ctx context.Context, email string) (*User, error)
	Create(ctx context.Context, email, password string) (*User, error)
	Update(ctx context.Context, email string, mutate func(*User) error) (*User, error)
	List(ctx context.Context) ([]User, error)
}

// AnalysisService handles food analysis records and derived records
type AnalysisService interface {
	AddAnalysis(ctx context.Context, userEmail string, analysis Analysis) (*Analysis, error)
	Recalculate(ctx context.Context, analysisID string, newWeight float64) (*Analysis, error)
	UserAnalyses(ctx context.Context, userEmail string, limit int) ([]Analysis, error)
}

// PaymentService handles balance top-ups
type PaymentService interface {
	CreatePayment(ctx context.Context, userEmail string, amount float64, description string) (*Payment, error)
	CompletePayment(ctx context.Context, paymentID string) (*Payment, error)
	FailPayment(ctx context.Context, paymentID string) (*Payment, error)
	PendingPayments(ctx context.Context, userEmail string) ([]Payment, error)
}

// StatsService aggregates totals across documents
type StatsService interface {
	Stats(ctx context.Context) (*Stats, error)
}

// MaintenanceService prunes expired analyses and settled payments
type MaintenanceService interface {
	Cleanup(ctx context.Context, retentionDays int) (*CleanupResult, error)
}
