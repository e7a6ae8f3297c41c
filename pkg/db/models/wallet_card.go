package models

import (
	"time"

	"github.com/google/uuid"
)

// WalletCard references a payment method stored with the provider.
// At most one card per wallet is flagged primary.
type WalletCard struct {
	ID               uuid.UUID `gorm:"column:id;type:uuid;default:gen_random_uuid();primaryKey"`
	WalletID         uuid.UUID `gorm:"column:wallet_id;type:uuid;not null;index"`
	ProviderMethodID string    `gorm:"column:provider_method_id;not null"`
	Brand            string    `gorm:"column:brand"`
	Last4            string    `gorm:"column:last4"`
	IsPrimary        bool      `gorm:"column:is_primary;not null;default:false"`
	CreatedAt        time.Time `gorm:"column:created_at;autoCreateTime"`
	UpdatedAt        time.Time `gorm:"column:updated_at;autoUpdateTime"`
}
