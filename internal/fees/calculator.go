package fees

import (
	"github.com/shopspring/decimal"

	"github.com/offerhive/offerhive-backend/pkg/enums"
	pkgerrors "github.com/offerhive/offerhive-backend/pkg/errors"
)

var (
	processorRate = decimal.RequireFromString("0.029")
	processorFlat = decimal.RequireFromString("0.30")
	platformRate  = decimal.RequireFromString("0.05")
)

// Breakdown splits a captured amount into fees and the merchant's take.
type Breakdown struct {
	Amount       decimal.Decimal
	ProcessorFee decimal.Decimal
	PlatformFee  decimal.Decimal
	TotalFee     decimal.Decimal
	MerchantNet  decimal.Decimal
}

// Calculator derives the fee split for captured payments. The platform
// fee applies only to free-tier merchants; paid tiers cover it through
// their subscription.
type Calculator struct{}

func NewCalculator() *Calculator {
	return &Calculator{}
}

// Calculate returns the fee breakdown for a captured amount.
func (c *Calculator) Calculate(amount decimal.Decimal, tier enums.PlanTier) (Breakdown, error) {
	if !amount.IsPositive() {
		return Breakdown{}, pkgerrors.New(pkgerrors.CodeValidation, "amount must be positive")
	}
	if !tier.IsValid() {
		return Breakdown{}, pkgerrors.New(pkgerrors.CodeValidation, "unknown plan tier")
	}

	processorFee := amount.Mul(processorRate).Add(processorFlat).Round(2)

	platformFee := decimal.Zero
	if tier == enums.PlanTierFree {
		platformFee = amount.Mul(platformRate).Round(2)
	}

	totalFee := processorFee.Add(platformFee)
	return Breakdown{
		Amount:       amount,
		ProcessorFee: processorFee,
		PlatformFee:  platformFee,
		TotalFee:     totalFee,
		MerchantNet:  amount.Sub(totalFee),
	}, nil
}
