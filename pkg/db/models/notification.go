package models

import (
	"time"

	"github.com/google/uuid"

	"github.com/giglane/giglane-backend/pkg/enums"
)

// Notification is a persisted in-app notification, written fire-and-forget
// after a state transition commits.
type Notification struct {
	ID          uuid.UUID              `gorm:"column:id;type:uuid;default:gen_random_uuid();primaryKey"`
	UserID      uuid.UUID              `gorm:"column:user_id;type:uuid;not null;index"`
	Title       string                 `gorm:"column:title;not null"`
	Description string                 `gorm:"column:description;not null"`
	Type        enums.NotificationType `gorm:"column:type;type:text;not null"`
	TargetRole  enums.UserRole         `gorm:"column:target_role;type:text;not null"`
	Link        *string                `gorm:"column:link"`
	ReadAt      *time.Time             `gorm:"column:read_at"`
	CreatedAt   time.Time              `gorm:"column:created_at;autoCreateTime"`
}
