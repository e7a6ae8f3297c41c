package models

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/giglane/giglane-backend/pkg/enums"
)

// GigPackage is a fixed-price tier on a gig.
type GigPackage struct {
	ID           uuid.UUID         `gorm:"column:id;type:uuid;default:gen_random_uuid();primaryKey"`
	GigID        uuid.UUID         `gorm:"column:gig_id;type:uuid;not null;uniqueIndex:uq_gig_packages_gig_type"`
	Type         enums.PackageType `gorm:"column:type;type:text;not null;uniqueIndex:uq_gig_packages_gig_type"`
	Name         string            `gorm:"column:name;not null"`
	Description  string            `gorm:"column:description;not null"`
	Price        decimal.Decimal   `gorm:"column:price;type:numeric(12,2);not null"`
	DeliveryDays int               `gorm:"column:delivery_days;not null"`
	Revisions    int               `gorm:"column:revisions;not null;default:0"`
	CreatedAt    time.Time         `gorm:"column:created_at;autoCreateTime"`
	UpdatedAt    time.Time         `gorm:"column:updated_at;autoUpdateTime"`
}
