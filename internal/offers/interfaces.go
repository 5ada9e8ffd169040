package offers

import (
	"context"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"

	"github.com/offerhive/offerhive-backend/internal/fees"
	"github.com/offerhive/offerhive-backend/internal/notifications"
	"github.com/offerhive/offerhive-backend/pkg/db/models"
	"github.com/offerhive/offerhive-backend/pkg/enums"
	"github.com/offerhive/offerhive-backend/pkg/square"
)

// txRunner abstracts the db client's transaction helper.
type txRunner interface {
	WithTx(ctx context.Context, fn func(tx *gorm.DB) error) error
}

// paymentGateway is the slice of the Square client the ledger needs.
type paymentGateway interface {
	CreateIntent(ctx context.Context, params square.IntentCreateParams) (*square.Intent, error)
	Refund(ctx context.Context, params square.RefundParams) (*square.RefundResult, error)
	DefaultLocationID() string
}

// formStore reads form snapshots and bumps the denormalized bid
// counters. The counters are eventually consistent, so RecordBid runs
// outside the offer transaction.
type formStore interface {
	FindByID(ctx context.Context, id uuid.UUID) (*models.BidForm, error)
	RecordBid(ctx context.Context, formID uuid.UUID, amount decimal.Decimal) error
}

type merchantLookup interface {
	FindByID(ctx context.Context, id uuid.UUID) (*models.Merchant, error)
}

type feeCalculator interface {
	Calculate(amount decimal.Decimal, tier enums.PlanTier) (fees.Breakdown, error)
}

// notifier persists merchant notifications. Dispatch never returns an
// error; failures must not reach the payment path.
type notifier interface {
	Dispatch(ctx context.Context, events ...notifications.Event)
}
