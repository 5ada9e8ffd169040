package square

import (
	"strings"

	"github.com/shopspring/decimal"
	sq "github.com/square/square-go-sdk"

	"github.com/offerhive/offerhive-backend/pkg/enums"
)

// IntentCreateParams carries everything needed to charge a buyer for a
// deposit or a final payment. Amounts are in major units; conversion to
// cents happens only inside this package.
type IntentCreateParams struct {
	Amount         decimal.Decimal
	PlatformFee    decimal.Decimal
	Currency       enums.Currency
	LocationID     string
	SourceID       string
	BuyerEmail     string
	Note           string
	ReferenceID    string
	IdempotencyKey string
}

func (p IntentCreateParams) toSquareRequest(idempotencyKey string) *sq.CreatePaymentRequest {
	autocomplete := true
	req := &sq.CreatePaymentRequest{
		IdempotencyKey: idempotencyKey,
		SourceID:       p.SourceID,
		LocationID:     ptrString(p.LocationID),
		Autocomplete:   &autocomplete,
	}
	req.AmountMoney = moneyPtr(toCents(p.Amount), string(p.Currency))
	if p.PlatformFee.IsPositive() {
		req.AppFeeMoney = moneyPtr(toCents(p.PlatformFee), string(p.Currency))
	}
	if trimmed := strings.TrimSpace(p.BuyerEmail); trimmed != "" {
		req.BuyerEmailAddress = ptrString(trimmed)
	}
	if trimmed := strings.TrimSpace(p.Note); trimmed != "" {
		req.Note = ptrString(trimmed)
	}
	if trimmed := strings.TrimSpace(p.ReferenceID); trimmed != "" {
		req.ReferenceID = ptrString(trimmed)
	}
	return req
}

// RefundParams describes a full or partial refund of a previous intent.
type RefundParams struct {
	IntentID       string
	Amount         decimal.Decimal
	Currency       enums.Currency
	Reason         string
	IdempotencyKey string
}

func (p RefundParams) toSquareRequest(idempotencyKey string) *sq.RefundPaymentRequest {
	req := &sq.RefundPaymentRequest{
		IdempotencyKey: idempotencyKey,
		PaymentID:      ptrString(p.IntentID),
		AmountMoney:    moneyPtr(toCents(p.Amount), string(p.Currency)),
	}
	if trimmed := strings.TrimSpace(p.Reason); trimmed != "" {
		req.Reason = ptrString(trimmed)
	}
	return req
}

// toCents converts a major-unit decimal amount into minor units.
func toCents(amount decimal.Decimal) int64 {
	return amount.Shift(2).Round(0).IntPart()
}

func ptrString(value string) *string {
	if strings.TrimSpace(value) == "" {
		return nil
	}
	return &value
}

func int64Ptr(value int64) *int64 {
	return &value
}

func currencyPtr(code string) *sq.Currency {
	trimmed := strings.ToUpper(strings.TrimSpace(code))
	if trimmed == "" {
		trimmed = "USD"
	}
	c := sq.Currency(trimmed)
	return &c
}

func moneyPtr(amount int64, currency string) *sq.Money {
	if amount == 0 {
		return nil
	}
	return &sq.Money{
		Amount:   int64Ptr(amount),
		Currency: currencyPtr(currency),
	}
}
