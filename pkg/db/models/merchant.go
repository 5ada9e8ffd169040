package models

import (
	"time"

	"github.com/google/uuid"

	"github.com/offerhive/offerhive-backend/pkg/enums"
)

// Merchant is an account that publishes bid forms and receives payouts.
type Merchant struct {
	ID               uuid.UUID      `gorm:"column:id;type:uuid;default:gen_random_uuid();primaryKey"`
	Email            string         `gorm:"column:email;not null;uniqueIndex"`
	PasswordHash     string         `gorm:"column:password_hash;not null"`
	BusinessName     string         `gorm:"column:business_name;not null"`
	PlanTier         enums.PlanTier `gorm:"column:plan_tier;type:plan_tier;not null;default:'free'"`
	SquareLocationID *string        `gorm:"column:square_location_id"`
	CreatedAt        time.Time      `gorm:"column:created_at;autoCreateTime"`
	UpdatedAt        time.Time      `gorm:"column:updated_at;autoUpdateTime"`
}
