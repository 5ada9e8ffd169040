package notifications

import (
	"context"
	"fmt"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"go.uber.org/multierr"

	"github.com/offerhive/offerhive-backend/pkg/db/models"
	"github.com/offerhive/offerhive-backend/pkg/enums"
	pkgerrors "github.com/offerhive/offerhive-backend/pkg/errors"
	"github.com/offerhive/offerhive-backend/pkg/logger"
)

// Event captures one offer lifecycle moment worth telling the merchant about.
type Event struct {
	Type       enums.NotificationType
	MerchantID uuid.UUID
	OfferID    *uuid.UUID
	FormTitle  string
	BuyerName  string
	Amount     decimal.Decimal
}

// Dispatcher persists in-app notifications for offer events. Dispatch is
// fire-and-forget from the caller's point of view: failures are logged
// and never block the payment path.
type Dispatcher struct {
	repo Repository
	logg *logger.Logger
}

// NewDispatcher wires the dispatcher dependencies.
func NewDispatcher(repo Repository, logg *logger.Logger) (*Dispatcher, error) {
	if repo == nil {
		return nil, pkgerrors.New(pkgerrors.CodeDependency, "notifications repository required")
	}
	if logg == nil {
		return nil, pkgerrors.New(pkgerrors.CodeDependency, "notifications logger required")
	}
	return &Dispatcher{repo: repo, logg: logg}, nil
}

// Dispatch stores notifications for the given events. All events are
// attempted; errors are aggregated, logged, and swallowed.
func (d *Dispatcher) Dispatch(ctx context.Context, events ...Event) {
	var errs error
	for _, event := range events {
		if err := d.dispatchOne(ctx, event); err != nil {
			errs = multierr.Append(errs, fmt.Errorf("dispatch %s: %w", event.Type, err))
		}
	}
	if errs != nil {
		d.logg.Error(ctx, "notification dispatch failed", errs)
	}
}

func (d *Dispatcher) dispatchOne(ctx context.Context, event Event) error {
	if !event.Type.IsValid() {
		return pkgerrors.New(pkgerrors.CodeValidation, fmt.Sprintf("unknown notification type %q", event.Type))
	}
	if event.MerchantID == uuid.Nil {
		return pkgerrors.New(pkgerrors.CodeValidation, "merchant id required")
	}

	title, message := renderEvent(event)
	notification := &models.Notification{
		MerchantID: event.MerchantID,
		Type:       event.Type,
		Title:      title,
		Message:    message,
		OfferID:    event.OfferID,
	}
	return d.repo.Create(ctx, notification)
}

func renderEvent(event Event) (string, string) {
	amount := event.Amount.StringFixed(2)
	switch event.Type {
	case enums.NotificationTypeOfferReceived:
		return "New offer received",
			fmt.Sprintf("%s offered %s on %q", event.BuyerName, amount, event.FormTitle)
	case enums.NotificationTypeOfferAccepted:
		return "Offer accepted",
			fmt.Sprintf("The offer from %s on %q was accepted", event.BuyerName, event.FormTitle)
	case enums.NotificationTypeOfferRejected:
		return "Offer rejected",
			fmt.Sprintf("The offer from %s on %q was rejected", event.BuyerName, event.FormTitle)
	case enums.NotificationTypeDepositPaid:
		return "Deposit received",
			fmt.Sprintf("%s paid a %s deposit on %q", event.BuyerName, amount, event.FormTitle)
	case enums.NotificationTypePaymentReceived:
		return "Payment received",
			fmt.Sprintf("%s completed a %s payment on %q", event.BuyerName, amount, event.FormTitle)
	case enums.NotificationTypePaymentFailed:
		return "Payment failed",
			fmt.Sprintf("A %s payment from %s on %q failed", amount, event.BuyerName, event.FormTitle)
	default:
		return string(event.Type), ""
	}
}
