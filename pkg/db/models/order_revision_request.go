package models

import (
	"time"

	"github.com/google/uuid"
)

// OrderRevisionRequest is one appended buyer revision request. The row count
// per order is the authoritative revision counter.
type OrderRevisionRequest struct {
	ID             uuid.UUID `gorm:"column:id;type:uuid;default:gen_random_uuid();primaryKey"`
	OrderID        uuid.UUID `gorm:"column:order_id;type:uuid;not null;index"`
	RevisionNumber int       `gorm:"column:revision_number;not null"`
	Message        string    `gorm:"column:message;not null"`
	RequestedAt    time.Time `gorm:"column:requested_at;not null"`
	CreatedAt      time.Time `gorm:"column:created_at;autoCreateTime"`
}
