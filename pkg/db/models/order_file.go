package models

import (
	"time"

	"github.com/google/uuid"
)

// OrderFile references an uploaded requirement attachment on an order.
type OrderFile struct {
	ID        uuid.UUID `gorm:"column:id;type:uuid;default:gen_random_uuid();primaryKey"`
	OrderID   uuid.UUID `gorm:"column:order_id;type:uuid;not null;index"`
	URL       string    `gorm:"column:url;not null"`
	StorageID string    `gorm:"column:storage_id;not null"`
	Position  int       `gorm:"column:position;not null;default:0"`
	CreatedAt time.Time `gorm:"column:created_at;autoCreateTime"`
}
