package enums

import "fmt"

// PaymentFlag tracks the settlement state of one leg (deposit or final)
// of an offer, independent of the offer's own status.
type PaymentFlag string

const (
	PaymentFlagPending PaymentFlag = "pending"
	PaymentFlagPaid    PaymentFlag = "paid"
	PaymentFlagFailed  PaymentFlag = "failed"
)

var validPaymentFlags = []PaymentFlag{
	PaymentFlagPending,
	PaymentFlagPaid,
	PaymentFlagFailed,
}

// String implements fmt.Stringer.
func (p PaymentFlag) String() string {
	return string(p)
}

// IsValid reports whether the value is a known PaymentFlag.
func (p PaymentFlag) IsValid() bool {
	for _, candidate := range validPaymentFlags {
		if candidate == p {
			return true
		}
	}
	return false
}

// ParsePaymentFlag converts raw input into a PaymentFlag.
func ParsePaymentFlag(value string) (PaymentFlag, error) {
	for _, candidate := range validPaymentFlags {
		if string(candidate) == value {
			return candidate, nil
		}
	}
	return "", fmt.Errorf("invalid payment flag %q", value)
}
