package models

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// Wallet is the per-user stored-value account. Balance is a maintained cache
// over the transaction log; both are always written in the same transaction.
type Wallet struct {
	ID                 uuid.UUID           `gorm:"column:id;type:uuid;default:gen_random_uuid();primaryKey"`
	UserID             uuid.UUID           `gorm:"column:user_id;type:uuid;not null;uniqueIndex"`
	Balance            decimal.Decimal     `gorm:"column:balance;type:numeric(12,2);not null;default:0"`
	ProviderCustomerID *string             `gorm:"column:provider_customer_id"`
	Transactions       []WalletTransaction `gorm:"foreignKey:WalletID;constraint:OnDelete:CASCADE"`
	Cards              []WalletCard        `gorm:"foreignKey:WalletID;constraint:OnDelete:CASCADE"`
	Referrals          []Referral          `gorm:"foreignKey:WalletID;constraint:OnDelete:CASCADE"`
	CreatedAt          time.Time           `gorm:"column:created_at;autoCreateTime"`
	UpdatedAt          time.Time           `gorm:"column:updated_at;autoUpdateTime"`
}
