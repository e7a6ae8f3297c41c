package models

import (
	"time"

	"github.com/google/uuid"
)

// Gig is a seller's service listing. The order core only reads it to
// validate ownership and snapshot a package at creation time.
type Gig struct {
	ID        uuid.UUID    `gorm:"column:id;type:uuid;default:gen_random_uuid();primaryKey"`
	SellerID  uuid.UUID    `gorm:"column:seller_id;type:uuid;not null;index"`
	Title     string       `gorm:"column:title;not null"`
	Active    bool         `gorm:"column:active;not null;default:true"`
	Packages  []GigPackage `gorm:"foreignKey:GigID;constraint:OnDelete:CASCADE"`
	CreatedAt time.Time    `gorm:"column:created_at;autoCreateTime"`
	UpdatedAt time.Time    `gorm:"column:updated_at;autoUpdateTime"`
}
