package domain

import (
	"time"
)

// Payment statuses. Only pending is non-terminal.
const (
	PaymentStatusPending   = "pending"
	PaymentStatusCompleted = "completed"
	PaymentStatusFailed    = "failed"
)

// UserSettings holds per-user preferences stored inside the user record
type UserSettings struct {
	Theme         string `json:"theme"`
	Notifications bool   `json:"notifications"`
}

// UserStats holds usage counters accumulated per user
type UserStats struct {
	TotalAnalyses int     `json:"total_analyses"`
	TotalCalories float64 `json:"total_calories"`
	JoinedDays    int     `json:"joined_days"`
}

// User represents an account in the users document, keyed by email.
// The email itself is the map key and is filled in on load.
type User struct {
	Email        string       `json:"-"`
	PasswordHash string       `json:"password"`
	Balance      float64      `json:"balance"`
	FreeRequests int          `json:"free_requests"`
	IsAdmin      bool         `json:"is_admin"`
	CreatedAt    time.Time    `json:"created_at"`
	LastLogin    time.Time    `json:"last_login"`
	Settings     UserSettings `json:"settings"`
	Stats        UserStats    `json:"stats"`
}

// Ingredient is a single component of an analyzed dish
type Ingredient struct {
	Name        string `json:"name"`
	WeightGrams int    `json:"weight_grams"`
	Calories    int    `json:"calories"`
}

// Analysis represents one food analysis result
type Analysis struct {
	ID              string       `json:"id"`
	UserEmail       string       `json:"user_email"`
	DishName        string       `json:"dish_name"`
	DishType        string       `json:"dish_type"`
	HealthLevel     string       `json:"health_level"`
	Weight          float64      `json:"weight"`
	Calories        int          `json:"calories"`
	Protein         float64      `json:"protein"`
	Fat             float64      `json:"fat"`
	Carbs           float64      `json:"carbs"`
	BreadUnits      float64      `json:"bread_units"`
	Ingredients     []Ingredient `json:"ingredients"`
	Confidence      int          `json:"analysis_confidence"`
	Recommendations string       `json:"recommendations"`
	CreatedAt       time.Time    `json:"created_at"`
	UpdatedAt       time.Time    `json:"updated_at"`
	Recalculated    bool         `json:"recalculated,omitempty"`
}

// Payment represents a balance top-up attempt
type Payment struct {
	ID          string    `json:"id"`
	UserEmail   string    `json:"user_email"`
	Amount      float64   `json:"amount"`
	Description string    `json:"description"`
	Status      string    `json:"status"`
	RobokassaID string    `json:"robokassa_id"`
	CreatedAt   time.Time `json:"created_at"`
	UpdatedAt   time.Time `json:"updated_at,omitempty"`
}

// Terminal reports whether the payment reached a final status
func (p Payment) Terminal() bool {
	return p.Status != PaymentStatusPending
}

// Settings is the global configuration document (singleton, no id).
// Bonus tiers are keyed by the exact top-up amount.
type Settings struct {
	MinPayment   float64            `json:"min_payment"`
	AnalysisCost float64            `json:"analysis_cost"`
	RecalcCost   float64            `json:"recalc_cost"`
	Bonuses      map[string]float64 `json:"bonuses"`
}

// ChatMessage is one entry of a user's conversation history
type ChatMessage struct {
	Role      string    `json:"role"`
	Content   string    `json:"content"`
	Type      string    `json:"type,omitempty"`
	Timestamp time.Time `json:"timestamp"`
}

// Stats is the aggregate admin view across all documents
type Stats struct {
	TotalUsers      int     `json:"total_users"`
	TotalAnalyses   int     `json:"total_analyses"`
	TotalBalance    float64 `json:"total_balance"`
	PendingPayments int     `json:"pending_payments"`
}

// CleanupResult reports how many records a maintenance sweep removed
type CleanupResult struct {
	AnalysesRemoved int `json:"analyses_removed"`
	PaymentsRemoved int `json:"payments_removed"`
}
