package models

import (
	"time"

	"github.com/google/uuid"

	"github.com/giglane/giglane-backend/pkg/enums"
)

// User is the minimal identity record the order core needs; account
// management itself lives behind the auth gateway.
type User struct {
	ID         uuid.UUID      `gorm:"column:id;type:uuid;default:gen_random_uuid();primaryKey"`
	Email      string         `gorm:"column:email;not null;uniqueIndex"`
	Name       string         `gorm:"column:name;not null"`
	Role       enums.UserRole `gorm:"column:role;type:text;not null;default:'buyer'"`
	IsSeller   bool           `gorm:"column:is_seller;not null;default:false"`
	ReferrerID *uuid.UUID     `gorm:"column:referrer_id;type:uuid"`
	CreatedAt  time.Time      `gorm:"column:created_at;autoCreateTime"`
	UpdatedAt  time.Time      `gorm:"column:updated_at;autoUpdateTime"`
}
