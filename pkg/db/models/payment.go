package models

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/offerhive/offerhive-backend/pkg/enums"
)

// Payment records one money movement attempt against an offer. Rows
// reaching succeeded or cancelled are never mutated again.
type Payment struct {
	ID               uuid.UUID           `gorm:"column:id;type:uuid;default:gen_random_uuid();primaryKey"`
	OfferID          uuid.UUID           `gorm:"column:offer_id;type:uuid;not null;index"`
	MerchantID       uuid.UUID           `gorm:"column:merchant_id;type:uuid;not null;index"`
	ExternalIntentID string              `gorm:"column:external_intent_id;not null;uniqueIndex"`
	Amount           decimal.Decimal     `gorm:"column:amount;type:numeric(12,2);not null"`
	Currency         enums.Currency      `gorm:"column:currency;type:text;not null;default:'USD'"`
	Type             enums.PaymentType   `gorm:"column:type;type:payment_type;not null"`
	Status           enums.PaymentStatus `gorm:"column:status;type:payment_record_status;not null;default:'pending'"`
	ProcessorFee     decimal.Decimal     `gorm:"column:processor_fee;type:numeric(12,2);not null"`
	PlatformFee      decimal.Decimal     `gorm:"column:platform_fee;type:numeric(12,2);not null"`
	MerchantNet      decimal.Decimal     `gorm:"column:merchant_net;type:numeric(12,2);not null"`
	FailureReason    *string             `gorm:"column:failure_reason"`
	ProcessedAt      *time.Time          `gorm:"column:processed_at"`
	CreatedAt        time.Time           `gorm:"column:created_at;autoCreateTime"`
	UpdatedAt        time.Time           `gorm:"column:updated_at;autoUpdateTime"`
}
