package models

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/giglane/giglane-backend/pkg/enums"
	"github.com/giglane/giglane-backend/pkg/types"
)

// Order is the aggregate root of the lifecycle state machine. Child rows
// (deliveries, revision requests, coworkers, files) are append-only and only
// mutated through the orders service.
type Order struct {
	ID             uuid.UUID             `gorm:"column:id;type:uuid;default:gen_random_uuid();primaryKey"`
	GigID          uuid.UUID             `gorm:"column:gig_id;type:uuid;not null;index"`
	BuyerID        uuid.UUID             `gorm:"column:buyer_id;type:uuid;not null;index"`
	SellerID       uuid.UUID             `gorm:"column:seller_id;type:uuid;not null;index"`
	ReferrerID     *uuid.UUID            `gorm:"column:referrer_id;type:uuid"`
	PackageType    enums.PackageType     `gorm:"column:package_type;type:text;not null"`
	PackageDetails types.PackageSnapshot `gorm:"column:package_details;type:jsonb;serializer:json;not null"`
	Requirements   string                `gorm:"column:requirements;not null"`
	Status         enums.OrderStatus     `gorm:"column:status;type:text;not null;default:'pending';index"`
	TotalAmount    decimal.Decimal       `gorm:"column:total_amount;type:numeric(12,2);not null"`
	PaymentMethod  enums.PaymentMethod   `gorm:"column:payment_method;type:text;not null"`
	PaymentRef     *string               `gorm:"column:payment_ref"`
	IsPaid         bool                  `gorm:"column:is_paid;not null;default:false"`
	PaidAt         *time.Time            `gorm:"column:paid_at"`

	DeliveryDueDate time.Time `gorm:"column:delivery_due_date;not null"`

	// Timeline timestamps are ratchet-only: once set they are never cleared.
	RequirementsReviewedAt *time.Time `gorm:"column:requirements_reviewed_at"`
	DeliveredAt            *time.Time `gorm:"column:delivered_at"`
	ApprovedAt             *time.Time `gorm:"column:approved_at"`
	CompletedAt            *time.Time `gorm:"column:completed_at"`
	CancelledAt            *time.Time `gorm:"column:cancelled_at"`
	AutoCompletedAt        *time.Time `gorm:"column:auto_completed_at"`
	SystemNote             *string    `gorm:"column:system_note"`

	BuyerReview  *types.Review `gorm:"column:buyer_review;type:jsonb;serializer:json"`
	SellerReview *types.Review `gorm:"column:seller_review;type:jsonb;serializer:json"`

	Files            []OrderFile            `gorm:"foreignKey:OrderID;constraint:OnDelete:CASCADE"`
	Deliveries       []OrderDelivery        `gorm:"foreignKey:OrderID;constraint:OnDelete:CASCADE"`
	RevisionRequests []OrderRevisionRequest `gorm:"foreignKey:OrderID;constraint:OnDelete:CASCADE"`
	Coworkers        []OrderCoworker        `gorm:"foreignKey:OrderID;constraint:OnDelete:CASCADE"`
	Resolution       *ResolutionRequest     `gorm:"foreignKey:OrderID;constraint:OnDelete:CASCADE"`

	CreatedAt time.Time `gorm:"column:created_at;autoCreateTime"`
	UpdatedAt time.Time `gorm:"column:updated_at;autoUpdateTime"`
}
