package models

import (
	"time"

	"github.com/google/uuid"

	"github.com/giglane/giglane-backend/pkg/enums"
)

// ResolutionRequest is the at-most-one active dispute on an order.
// Re-raising a dispute overwrites the previous row.
type ResolutionRequest struct {
	ID            uuid.UUID              `gorm:"column:id;type:uuid;default:gen_random_uuid();primaryKey"`
	OrderID       uuid.UUID              `gorm:"column:order_id;type:uuid;not null;uniqueIndex"`
	TicketID      string                 `gorm:"column:ticket_id;not null;uniqueIndex"`
	Reason        string                 `gorm:"column:reason;not null"`
	Message       string                 `gorm:"column:message;not null"`
	RequestedBy   uuid.UUID              `gorm:"column:requested_by;type:uuid;not null"`
	RequestedAt   time.Time              `gorm:"column:requested_at;not null"`
	Status        enums.ResolutionStatus `gorm:"column:status;type:text;not null;default:'open'"`
	AdminResponse *string                `gorm:"column:admin_response"`
	RespondedBy   *uuid.UUID             `gorm:"column:responded_by;type:uuid"`
	ResolvedAt    *time.Time             `gorm:"column:resolved_at"`
	CreatedAt     time.Time              `gorm:"column:created_at;autoCreateTime"`
	UpdatedAt     time.Time              `gorm:"column:updated_at;autoUpdateTime"`
}
