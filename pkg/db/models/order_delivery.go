package models

import (
	"time"

	"github.com/google/uuid"
)

// OrderDelivery is one appended delivery. RevisionNumber zero is the first
// delivery; later entries carry the revision request count at delivery time.
type OrderDelivery struct {
	ID             uuid.UUID `gorm:"column:id;type:uuid;default:gen_random_uuid();primaryKey"`
	OrderID        uuid.UUID `gorm:"column:order_id;type:uuid;not null;index"`
	RevisionNumber int       `gorm:"column:revision_number;not null;default:0"`
	Message        string    `gorm:"column:message;not null"`
	FileURL        *string   `gorm:"column:file_url"`
	FileStorageID  *string   `gorm:"column:file_storage_id"`
	DeliveredAt    time.Time `gorm:"column:delivered_at;not null"`
	CreatedAt      time.Time `gorm:"column:created_at;autoCreateTime"`
}
