package models

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/offerhive/offerhive-backend/pkg/enums"
)

// BidForm is a listing buyers submit offers against. TotalBids and
// HighestBid are denormalized counters refreshed on each submission;
// they are eventually consistent and never authoritative.
type BidForm struct {
	ID                  uuid.UUID        `gorm:"column:id;type:uuid;default:gen_random_uuid();primaryKey"`
	MerchantID          uuid.UUID        `gorm:"column:merchant_id;type:uuid;not null;index"`
	Title               string           `gorm:"column:title;not null"`
	Description         *string          `gorm:"column:description"`
	BasePrice           decimal.Decimal  `gorm:"column:base_price;type:numeric(12,2);not null"`
	Currency            enums.Currency   `gorm:"column:currency;type:text;not null;default:'USD'"`
	MinBidAmount        *decimal.Decimal `gorm:"column:min_bid_amount;type:numeric(12,2)"`
	MaxBidAmount        *decimal.Decimal `gorm:"column:max_bid_amount;type:numeric(12,2)"`
	QuantityAvailable   int              `gorm:"column:quantity_available;not null;default:1"`
	DepositPercentage   decimal.Decimal  `gorm:"column:deposit_percentage;type:numeric(5,2);not null"`
	AutoAcceptThreshold *decimal.Decimal `gorm:"column:auto_accept_threshold;type:numeric(12,2)"`
	EndDate             *time.Time       `gorm:"column:end_date"`
	Status              enums.FormStatus `gorm:"column:status;type:form_status;not null;default:'active'"`
	TotalBids           int              `gorm:"column:total_bids;not null;default:0"`
	HighestBid          decimal.Decimal  `gorm:"column:highest_bid;type:numeric(12,2);not null;default:0"`
	CreatedAt           time.Time        `gorm:"column:created_at;autoCreateTime"`
	UpdatedAt           time.Time        `gorm:"column:updated_at;autoUpdateTime"`
}
