package offers

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/offerhive/offerhive-backend/pkg/db/models"
	"github.com/offerhive/offerhive-backend/pkg/enums"
)

// SubmitOfferRequest is the buyer-facing payload for bidding on a form.
// PaymentSourceID is the tokenized payment method the deposit and the
// final balance are charged against.
type SubmitOfferRequest struct {
	BuyerName       string          `json:"buyer_name" validate:"required"`
	BuyerEmail      string          `json:"buyer_email" validate:"required,email"`
	BuyerPhone      *string         `json:"buyer_phone,omitempty"`
	Message         *string         `json:"message,omitempty"`
	BidAmount       decimal.Decimal `json:"bid_amount" validate:"required"`
	Quantity        int             `json:"quantity"`
	TermsAccepted   bool            `json:"terms_accepted"`
	PaymentSourceID string          `json:"payment_source_id" validate:"required"`
}

// RejectOfferRequest carries the optional merchant-supplied reason.
type RejectOfferRequest struct {
	Reason *string `json:"reason,omitempty"`
}

// OfferDTO is the public shape of an offer.
type OfferDTO struct {
	ID              uuid.UUID         `json:"id"`
	BidFormID       uuid.UUID         `json:"bid_form_id"`
	BuyerName       string            `json:"buyer_name"`
	BuyerEmail      string            `json:"buyer_email"`
	BuyerPhone      *string           `json:"buyer_phone,omitempty"`
	Message         *string           `json:"message,omitempty"`
	BidAmount       decimal.Decimal   `json:"bid_amount"`
	Quantity        int               `json:"quantity"`
	Currency        enums.Currency    `json:"currency"`
	DepositAmount   decimal.Decimal   `json:"deposit_amount"`
	RemainingAmount decimal.Decimal   `json:"remaining_amount"`
	Status          enums.OfferStatus `json:"status"`
	DepositStatus   enums.PaymentFlag `json:"deposit_status"`
	FinalStatus     enums.PaymentFlag `json:"final_status"`
	AcceptedAt      *time.Time        `json:"accepted_at,omitempty"`
	CompletedAt     *time.Time        `json:"completed_at,omitempty"`
	CreatedAt       time.Time         `json:"created_at"`
}

// SubmitResult reports the outcome of an offer submission. When the bid
// cleared the form's auto-accept threshold, AutoAccepted is true and
// DepositIntentID carries the deposit charge handle if one could be
// created.
type SubmitResult struct {
	Offer           *OfferDTO `json:"offer"`
	AutoAccepted    bool      `json:"auto_accepted"`
	DepositIntentID string    `json:"deposit_intent_id,omitempty"`
}

// PaymentIntentDTO is the client-usable handle for a created charge.
type PaymentIntentDTO struct {
	IntentID string            `json:"intent_id"`
	Amount   decimal.Decimal   `json:"amount"`
	Currency enums.Currency    `json:"currency"`
	Type     enums.PaymentType `json:"type"`
}

// AcceptResult pairs the accepted offer with the final-payment handle.
type AcceptResult struct {
	Offer  *OfferDTO         `json:"offer"`
	Intent *PaymentIntentDTO `json:"intent"`
}

// ListResult wraps a page of offers and the cursor for the next page.
type ListResult struct {
	Items  []OfferDTO `json:"items"`
	Cursor string     `json:"cursor"`
}

// FromModel maps an offer row to its DTO. The stored payment source and
// intent ids stay internal.
func FromModel(offer *models.Offer) *OfferDTO {
	if offer == nil {
		return nil
	}
	return &OfferDTO{
		ID:              offer.ID,
		BidFormID:       offer.BidFormID,
		BuyerName:       offer.BuyerName,
		BuyerEmail:      offer.BuyerEmail,
		BuyerPhone:      offer.BuyerPhone,
		Message:         offer.Message,
		BidAmount:       offer.BidAmount,
		Quantity:        offer.Quantity,
		Currency:        offer.Currency,
		DepositAmount:   offer.DepositAmount,
		RemainingAmount: offer.RemainingAmount,
		Status:          offer.Status,
		DepositStatus:   offer.DepositStatus,
		FinalStatus:     offer.FinalStatus,
		AcceptedAt:      offer.AcceptedAt,
		CompletedAt:     offer.CompletedAt,
		CreatedAt:       offer.CreatedAt,
	}
}
