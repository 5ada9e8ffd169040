package offers

import (
	"fmt"
	"strings"
	"time"

	"github.com/shopspring/decimal"

	"github.com/offerhive/offerhive-backend/pkg/db/models"
	"github.com/offerhive/offerhive-backend/pkg/enums"
	pkgerrors "github.com/offerhive/offerhive-backend/pkg/errors"
)

var hundred = decimal.NewFromInt(100)

// Rule names surfaced in error details so clients can render the right
// prompt next to the right field.
const (
	ruleFormNotAvailable = "form_not_available"
	ruleBidTooLow        = "bid_too_low"
	ruleBidTooHigh       = "bid_too_high"
	ruleQuantityExceeded = "quantity_exceeded"
	ruleTermsNotAccepted = "terms_not_accepted"
)

// Validator checks a prospective offer against its form's constraints.
// Checks run in a fixed order and the first violation wins.
type Validator struct{}

func NewValidator() *Validator {
	return &Validator{}
}

// ValidateSubmission vets the payload against the form snapshot. Error
// messages carry the numeric threshold that was violated.
func (v *Validator) ValidateSubmission(form *models.BidForm, req SubmitOfferRequest, now time.Time) error {
	if form == nil {
		return pkgerrors.New(pkgerrors.CodeValidation, "bid form required")
	}
	if err := validatePayload(req); err != nil {
		return err
	}

	if form.Status != enums.FormStatusActive || (form.EndDate != nil && !form.EndDate.After(now)) {
		return pkgerrors.New(pkgerrors.CodeStateConflict, "form is not accepting offers").
			WithDetails(map[string]any{"rule": ruleFormNotAvailable, "status": form.Status.String()})
	}

	minimum := decimal.Zero
	if form.MinBidAmount != nil {
		minimum = *form.MinBidAmount
	}
	if req.BidAmount.LessThan(minimum) {
		return pkgerrors.New(pkgerrors.CodeValidation,
			fmt.Sprintf("bid must be at least %s", minimum.StringFixed(2))).
			WithDetails(map[string]any{"rule": ruleBidTooLow, "minimum": minimum.StringFixed(2)})
	}

	if form.MaxBidAmount != nil && req.BidAmount.GreaterThan(*form.MaxBidAmount) {
		return pkgerrors.New(pkgerrors.CodeValidation,
			fmt.Sprintf("bid must not exceed %s", form.MaxBidAmount.StringFixed(2))).
			WithDetails(map[string]any{"rule": ruleBidTooHigh, "maximum": form.MaxBidAmount.StringFixed(2)})
	}

	if req.Quantity > form.QuantityAvailable {
		return pkgerrors.New(pkgerrors.CodeValidation,
			fmt.Sprintf("only %d available", form.QuantityAvailable)).
			WithDetails(map[string]any{"rule": ruleQuantityExceeded, "available": form.QuantityAvailable})
	}

	if !req.TermsAccepted {
		return pkgerrors.New(pkgerrors.CodeValidation, "terms must be accepted").
			WithDetails(map[string]any{"rule": ruleTermsNotAccepted})
	}

	return nil
}

func validatePayload(req SubmitOfferRequest) error {
	if strings.TrimSpace(req.BuyerName) == "" {
		return pkgerrors.New(pkgerrors.CodeValidation, "buyer name required")
	}
	if strings.TrimSpace(req.BuyerEmail) == "" {
		return pkgerrors.New(pkgerrors.CodeValidation, "buyer email required")
	}
	if strings.TrimSpace(req.PaymentSourceID) == "" {
		return pkgerrors.New(pkgerrors.CodeValidation, "payment source required")
	}
	if !req.BidAmount.IsPositive() {
		return pkgerrors.New(pkgerrors.CodeValidation, "bid amount must be positive")
	}
	if req.Quantity < 1 {
		return pkgerrors.New(pkgerrors.CodeValidation, "quantity must be at least 1")
	}
	return nil
}

// splitDeposit fixes the deposit and remaining amounts for an offer at
// creation. The deposit rounds up to the cent and the remainder absorbs
// the difference so the two always sum to bid x quantity exactly.
func splitDeposit(bidAmount decimal.Decimal, quantity int, depositPercentage decimal.Decimal) (deposit, remaining decimal.Decimal) {
	total := bidAmount.Mul(decimal.NewFromInt(int64(quantity)))
	deposit = total.Mul(depositPercentage).Div(hundred).RoundCeil(2)
	if deposit.GreaterThan(total) {
		deposit = total
	}
	remaining = total.Sub(deposit)
	return deposit, remaining
}
