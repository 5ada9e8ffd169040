package forms

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/offerhive/offerhive-backend/pkg/db/models"
	"github.com/offerhive/offerhive-backend/pkg/enums"
)

// CreateFormRequest is the payload for publishing a new bid form.
type CreateFormRequest struct {
	Title               string           `json:"title" validate:"required"`
	Description         *string          `json:"description,omitempty"`
	BasePrice           decimal.Decimal  `json:"base_price" validate:"required"`
	Currency            enums.Currency   `json:"currency"`
	MinBidAmount        *decimal.Decimal `json:"min_bid_amount,omitempty"`
	MaxBidAmount        *decimal.Decimal `json:"max_bid_amount,omitempty"`
	QuantityAvailable   int              `json:"quantity_available"`
	DepositPercentage   decimal.Decimal  `json:"deposit_percentage" validate:"required"`
	AutoAcceptThreshold *decimal.Decimal `json:"auto_accept_threshold,omitempty"`
	EndDate             *time.Time       `json:"end_date,omitempty"`
}

// SetStatusRequest changes a form's lifecycle status.
type SetStatusRequest struct {
	Status enums.FormStatus `json:"status" validate:"required"`
}

// FormDTO is the public shape of a bid form.
type FormDTO struct {
	ID                  uuid.UUID        `json:"id"`
	MerchantID          uuid.UUID        `json:"merchant_id"`
	Title               string           `json:"title"`
	Description         *string          `json:"description,omitempty"`
	BasePrice           decimal.Decimal  `json:"base_price"`
	Currency            enums.Currency   `json:"currency"`
	MinBidAmount        *decimal.Decimal `json:"min_bid_amount,omitempty"`
	MaxBidAmount        *decimal.Decimal `json:"max_bid_amount,omitempty"`
	QuantityAvailable   int              `json:"quantity_available"`
	DepositPercentage   decimal.Decimal  `json:"deposit_percentage"`
	AutoAcceptThreshold *decimal.Decimal `json:"auto_accept_threshold,omitempty"`
	EndDate             *time.Time       `json:"end_date,omitempty"`
	Status              enums.FormStatus `json:"status"`
	TotalBids           int              `json:"total_bids"`
	HighestBid          decimal.Decimal  `json:"highest_bid"`
	CreatedAt           time.Time        `json:"created_at"`
}

// ListResult wraps a page of forms and the cursor for the next page.
type ListResult struct {
	Items  []FormDTO `json:"items"`
	Cursor string    `json:"cursor"`
}

// FromModel maps a bid form row to its DTO.
func FromModel(form *models.BidForm) *FormDTO {
	if form == nil {
		return nil
	}
	return &FormDTO{
		ID:                  form.ID,
		MerchantID:          form.MerchantID,
		Title:               form.Title,
		Description:         form.Description,
		BasePrice:           form.BasePrice,
		Currency:            form.Currency,
		MinBidAmount:        form.MinBidAmount,
		MaxBidAmount:        form.MaxBidAmount,
		QuantityAvailable:   form.QuantityAvailable,
		DepositPercentage:   form.DepositPercentage,
		AutoAcceptThreshold: form.AutoAcceptThreshold,
		EndDate:             form.EndDate,
		Status:              form.Status,
		TotalBids:           form.TotalBids,
		HighestBid:          form.HighestBid,
		CreatedAt:           form.CreatedAt,
	}
}
