package squarewebhook

import (
	"context"
	"strings"

	"github.com/offerhive/offerhive-backend/pkg/enums"
	pkgerrors "github.com/offerhive/offerhive-backend/pkg/errors"
	"github.com/offerhive/offerhive-backend/pkg/logger"
	"github.com/offerhive/offerhive-backend/pkg/square"
)

// offerLedger is the slice of the offer service webhooks drive.
type offerLedger interface {
	HandlePaymentSucceeded(ctx context.Context, externalIntentID string) error
	HandlePaymentFailed(ctx context.Context, externalIntentID string, reason *string) error
}

type ServiceParams struct {
	Ledger offerLedger
	Logger *logger.Logger
}

type Service struct {
	ledger offerLedger
	logg   *logger.Logger
}

func NewService(params ServiceParams) (*Service, error) {
	if params.Ledger == nil {
		return nil, pkgerrors.New(pkgerrors.CodeInternal, "offer ledger required")
	}
	if params.Logger == nil {
		return nil, pkgerrors.New(pkgerrors.CodeInternal, "logger required")
	}
	return &Service{ledger: params.Ledger, logg: params.Logger}, nil
}

type PaymentEvent struct {
	MerchantID string           `json:"merchant_id"`
	EventID    string           `json:"event_id"`
	Type       string           `json:"type"`
	CreatedAt  string           `json:"created_at"`
	Data       PaymentEventData `json:"data"`
}

type PaymentEventData struct {
	Type   string             `json:"type"`
	ID     string             `json:"id"`
	Object PaymentEventObject `json:"object"`
}

type PaymentEventObject struct {
	Payment *PaymentPayload `json:"payment"`
}

type PaymentPayload struct {
	ID     string `json:"id"`
	Status string `json:"status"`
}

// HandleEvent routes Square payment events into the offer ledger.
// Unknown event types and non-terminal statuses are acknowledged
// without action so Square stops redelivering them.
func (s *Service) HandleEvent(ctx context.Context, event *PaymentEvent) error {
	if event == nil {
		return pkgerrors.New(pkgerrors.CodeValidation, "square event required")
	}

	switch strings.ToLower(event.Type) {
	case "payment.created", "payment.updated":
		payment := event.Data.Object.Payment
		if payment == nil || payment.ID == "" {
			return pkgerrors.New(pkgerrors.CodeValidation, "payment payload missing")
		}
		return s.applyOutcome(ctx, payment)
	default:
		return nil
	}
}

func (s *Service) applyOutcome(ctx context.Context, payment *PaymentPayload) error {
	var err error
	switch square.MapPaymentStatus(payment.Status) {
	case enums.PaymentStatusSucceeded:
		err = s.ledger.HandlePaymentSucceeded(ctx, payment.ID)
	case enums.PaymentStatusFailed, enums.PaymentStatusCancelled:
		err = s.ledger.HandlePaymentFailed(ctx, payment.ID, nil)
	default:
		return nil
	}
	if err != nil {
		// Intents we never issued show up when other tools charge the
		// same Square account. Acknowledge so delivery stops.
		if typed := pkgerrors.As(err); typed != nil && typed.Code() == pkgerrors.CodeNotFound {
			s.logg.Warn(ctx, "square event for unknown intent "+payment.ID)
			return nil
		}
		return err
	}
	return nil
}
