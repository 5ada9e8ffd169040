package enums

import "fmt"

// NotificationType maps to the notification_type enum in Postgres.
type NotificationType string

const (
	NotificationTypeOfferReceived   NotificationType = "offer_received"
	NotificationTypeOfferAccepted   NotificationType = "offer_accepted"
	NotificationTypeOfferRejected   NotificationType = "offer_rejected"
	NotificationTypeDepositPaid     NotificationType = "deposit_paid"
	NotificationTypePaymentReceived NotificationType = "payment_received"
	NotificationTypePaymentFailed   NotificationType = "payment_failed"
)

var validNotificationTypes = []NotificationType{
	NotificationTypeOfferReceived,
	NotificationTypeOfferAccepted,
	NotificationTypeOfferRejected,
	NotificationTypeDepositPaid,
	NotificationTypePaymentReceived,
	NotificationTypePaymentFailed,
}

// IsValid checks whether the given type matches the canonical enum.
func (n NotificationType) IsValid() bool {
	for _, candidate := range validNotificationTypes {
		if candidate == n {
			return true
		}
	}
	return false
}

// ParseNotificationType converts raw strings into NotificationType.
func ParseNotificationType(value string) (NotificationType, error) {
	for _, candidate := range validNotificationTypes {
		if string(candidate) == value {
			return candidate, nil
		}
	}
	return "", fmt.Errorf("invalid notification type %q", value)
}
