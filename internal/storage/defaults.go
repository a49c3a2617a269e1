package storage

import (
	"time"

	"github.com/skanerxe/nutrition-helper/internal/domain"
	"github.com/skanerxe/nutrition-helper/internal/utils"
)

// Document names. Each is one whole-JSON file in the remote repository.
const (
	DocUsers    = "users"
	DocAnalyses = "analyses"
	DocPayments = "payments"
	DocSettings = "settings"
)

// defaultDocument builds the defined initial content for a document. The
// users document is seeded with the bootstrap admin account; settings carry
// the default pricing and bonus tiers.
func defaultDocument(name string) ([]byte, error) {
	now := time.Now().UTC()

	switch name {
	case DocUsers:
		return MarshalDocument(map[string]domain.User{
			"admin@skanerxe.ru": {
				PasswordHash: utils.HashPassword("admin123"),
				Balance:      0,
				FreeRequests: 999,
				IsAdmin:      true,
				CreatedAt:    now,
				LastLogin:    now,
				Settings: domain.UserSettings{
					Theme:         "light",
					Notifications: true,
				},
			},
		})
	case DocAnalyses:
		return MarshalDocument(map[string]domain.Analysis{})
	case DocPayments:
		return MarshalDocument(map[string]domain.Payment{})
	case DocSettings:
		return MarshalDocument(domain.Settings{
			MinPayment:   50,
			AnalysisCost: 1,
			RecalcCost:   1,
			Bonuses: map[string]float64{
				"100":  5,
				"500":  30,
				"1000": 70,
			},
		})
	default:
		return MarshalDocument(map[string]interface{}{})
	}
}
