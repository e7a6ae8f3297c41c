package models

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// Referral records a reward credited to a referrer's wallet for a completed
// order. The unique order id makes the post-commit credit idempotent.
type Referral struct {
	ID             uuid.UUID       `gorm:"column:id;type:uuid;default:gen_random_uuid();primaryKey"`
	WalletID       uuid.UUID       `gorm:"column:wallet_id;type:uuid;not null;index"`
	ReferredUserID uuid.UUID       `gorm:"column:referred_user_id;type:uuid;not null"`
	OrderID        uuid.UUID       `gorm:"column:order_id;type:uuid;not null;uniqueIndex"`
	CreditsEarned  decimal.Decimal `gorm:"column:credits_earned;type:numeric(12,2);not null"`
	CreatedAt      time.Time       `gorm:"column:created_at;autoCreateTime"`
}
