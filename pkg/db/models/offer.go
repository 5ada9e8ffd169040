package models

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/offerhive/offerhive-backend/pkg/enums"
)

// Offer is a buyer's bid against a BidForm. DepositAmount and
// RemainingAmount are fixed at creation; the deposit percentage on the
// form may change later without touching existing offers.
type Offer struct {
	ID              uuid.UUID         `gorm:"column:id;type:uuid;default:gen_random_uuid();primaryKey"`
	BidFormID       uuid.UUID         `gorm:"column:bid_form_id;type:uuid;not null;index"`
	BuyerName       string            `gorm:"column:buyer_name;not null"`
	BuyerEmail      string            `gorm:"column:buyer_email;not null"`
	BuyerPhone      *string           `gorm:"column:buyer_phone"`
	Message         *string           `gorm:"column:message"`
	BidAmount       decimal.Decimal   `gorm:"column:bid_amount;type:numeric(12,2);not null"`
	Quantity        int               `gorm:"column:quantity;not null;default:1"`
	Currency        enums.Currency    `gorm:"column:currency;type:text;not null;default:'USD'"`
	DepositAmount   decimal.Decimal   `gorm:"column:deposit_amount;type:numeric(12,2);not null"`
	RemainingAmount decimal.Decimal   `gorm:"column:remaining_amount;type:numeric(12,2);not null"`
	Status          enums.OfferStatus `gorm:"column:status;type:offer_status;not null;default:'pending'"`
	DepositStatus   enums.PaymentFlag `gorm:"column:deposit_status;type:payment_flag;not null;default:'pending'"`
	FinalStatus     enums.PaymentFlag `gorm:"column:final_status;type:payment_flag;not null;default:'pending'"`
	PaymentSourceID string            `gorm:"column:payment_source_id;not null"`
	DepositIntentID *string           `gorm:"column:deposit_intent_id"`
	FinalIntentID   *string           `gorm:"column:final_intent_id"`
	Version         int64             `gorm:"column:version;not null;default:0"`
	AcceptedAt      *time.Time        `gorm:"column:accepted_at"`
	CompletedAt     *time.Time        `gorm:"column:completed_at"`
	Payments        []Payment         `gorm:"foreignKey:OfferID;constraint:OnDelete:CASCADE"`
	CreatedAt       time.Time         `gorm:"column:created_at;autoCreateTime"`
	UpdatedAt       time.Time         `gorm:"column:updated_at;autoUpdateTime"`
}

// Total returns the full consideration for the offer.
func (o Offer) Total() decimal.Decimal {
	return o.BidAmount.Mul(decimal.NewFromInt(int64(o.Quantity)))
}
