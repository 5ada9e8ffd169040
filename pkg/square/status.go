package square

import (
	"strings"

	"github.com/offerhive/offerhive-backend/pkg/enums"
)

// MapPaymentStatus translates a Square payment status string into the
// platform's payment status.
func MapPaymentStatus(raw string) enums.PaymentStatus {
	switch strings.ToUpper(strings.TrimSpace(raw)) {
	case "COMPLETED":
		return enums.PaymentStatusSucceeded
	case "CANCELED":
		return enums.PaymentStatusCancelled
	case "FAILED":
		return enums.PaymentStatusFailed
	default:
		// APPROVED and PENDING are both still in flight.
		return enums.PaymentStatusPending
	}
}

// MapRefundStatus translates a Square refund status string.
func MapRefundStatus(raw string) enums.PaymentStatus {
	switch strings.ToUpper(strings.TrimSpace(raw)) {
	case "COMPLETED":
		return enums.PaymentStatusSucceeded
	case "REJECTED", "FAILED":
		return enums.PaymentStatusFailed
	default:
		return enums.PaymentStatusPending
	}
}
