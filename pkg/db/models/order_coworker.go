package models

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/giglane/giglane-backend/pkg/enums"
)

// OrderCoworker is a secondary seller invited into an order under its own
// rate agreement. Its status machine is independent of the order status.
type OrderCoworker struct {
	ID          uuid.UUID               `gorm:"column:id;type:uuid;default:gen_random_uuid();primaryKey"`
	OrderID     uuid.UUID               `gorm:"column:order_id;type:uuid;not null;uniqueIndex:uq_order_coworkers_order_seller"`
	SellerID    uuid.UUID               `gorm:"column:seller_id;type:uuid;not null;uniqueIndex:uq_order_coworkers_order_seller"`
	PriceType   enums.CoworkerPriceType `gorm:"column:price_type;type:text;not null"`
	Rate        decimal.Decimal         `gorm:"column:rate;type:numeric(12,2);not null"`
	MaxHours    *int                    `gorm:"column:max_hours"`
	Status      enums.CoworkerStatus    `gorm:"column:status;type:text;not null;default:'pending'"`
	InvitedAt   time.Time               `gorm:"column:invited_at;not null"`
	RespondedAt *time.Time              `gorm:"column:responded_at"`
	CreatedAt   time.Time               `gorm:"column:created_at;autoCreateTime"`
	UpdatedAt   time.Time               `gorm:"column:updated_at;autoUpdateTime"`
}
