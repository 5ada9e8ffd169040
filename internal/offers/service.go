package offers

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"

	"github.com/offerhive/offerhive-backend/internal/notifications"
	"github.com/offerhive/offerhive-backend/pkg/db/models"
	"github.com/offerhive/offerhive-backend/pkg/enums"
	pkgerrors "github.com/offerhive/offerhive-backend/pkg/errors"
	"github.com/offerhive/offerhive-backend/pkg/logger"
	"github.com/offerhive/offerhive-backend/pkg/pagination"
	"github.com/offerhive/offerhive-backend/pkg/square"
)

// Service is the offer ledger: it owns offer records and drives every
// state transition from submission through settlement.
type Service interface {
	SubmitOffer(ctx context.Context, formID uuid.UUID, req SubmitOfferRequest) (*SubmitResult, error)
	CreateDepositIntent(ctx context.Context, offerID uuid.UUID) (*PaymentIntentDTO, error)
	AcceptOffer(ctx context.Context, offerID, merchantID uuid.UUID) (*AcceptResult, error)
	RejectOffer(ctx context.Context, offerID, merchantID uuid.UUID, req RejectOfferRequest) (*OfferDTO, error)
	CancelOffer(ctx context.Context, offerID uuid.UUID) (*OfferDTO, error)
	CompensateFailedDeposit(ctx context.Context, offerID, merchantID uuid.UUID) (*OfferDTO, error)
	HandlePaymentSucceeded(ctx context.Context, externalIntentID string) error
	HandlePaymentFailed(ctx context.Context, externalIntentID string, reason *string) error
	GetOffer(ctx context.Context, offerID uuid.UUID) (*OfferDTO, error)
	ListFormOffers(ctx context.Context, formID, merchantID uuid.UUID, status *enums.OfferStatus, limit int, cursor string) (*ListResult, error)
	ListMerchantOffers(ctx context.Context, merchantID uuid.UUID, status *enums.OfferStatus, limit int, cursor string) (*ListResult, error)
}

// ServiceParams bundles the ledger dependencies.
type ServiceParams struct {
	Repo      Repository
	Forms     formStore
	Merchants merchantLookup
	Gateway   paymentGateway
	Fees      feeCalculator
	Notifier  notifier
	Tx        txRunner
	Logger    *logger.Logger
}

type service struct {
	repo      Repository
	forms     formStore
	merchants merchantLookup
	gateway   paymentGateway
	fees      feeCalculator
	notifier  notifier
	tx        txRunner
	logg      *logger.Logger
	validator *Validator
}

// NewService constructs the offer ledger.
func NewService(params ServiceParams) (Service, error) {
	if params.Repo == nil {
		return nil, pkgerrors.New(pkgerrors.CodeDependency, "offers repository required")
	}
	if params.Forms == nil {
		return nil, pkgerrors.New(pkgerrors.CodeDependency, "form store required")
	}
	if params.Merchants == nil {
		return nil, pkgerrors.New(pkgerrors.CodeDependency, "merchant lookup required")
	}
	if params.Gateway == nil {
		return nil, pkgerrors.New(pkgerrors.CodeDependency, "payment gateway required")
	}
	if params.Fees == nil {
		return nil, pkgerrors.New(pkgerrors.CodeDependency, "fee calculator required")
	}
	if params.Notifier == nil {
		return nil, pkgerrors.New(pkgerrors.CodeDependency, "notifier required")
	}
	if params.Tx == nil {
		return nil, pkgerrors.New(pkgerrors.CodeDependency, "transaction runner required")
	}
	if params.Logger == nil {
		return nil, pkgerrors.New(pkgerrors.CodeDependency, "logger required")
	}
	return &service{
		repo:      params.Repo,
		forms:     params.Forms,
		merchants: params.Merchants,
		gateway:   params.Gateway,
		fees:      params.Fees,
		notifier:  params.Notifier,
		tx:        params.Tx,
		logg:      params.Logger,
		validator: NewValidator(),
	}, nil
}

func (s *service) SubmitOffer(ctx context.Context, formID uuid.UUID, req SubmitOfferRequest) (*SubmitResult, error) {
	form, err := s.findForm(ctx, formID)
	if err != nil {
		return nil, err
	}
	if err := s.validator.ValidateSubmission(form, req, time.Now()); err != nil {
		return nil, err
	}

	deposit, remaining := splitDeposit(req.BidAmount, req.Quantity, form.DepositPercentage)

	offer := &models.Offer{
		BidFormID:       form.ID,
		BuyerName:       req.BuyerName,
		BuyerEmail:      req.BuyerEmail,
		BuyerPhone:      req.BuyerPhone,
		Message:         req.Message,
		BidAmount:       req.BidAmount,
		Quantity:        req.Quantity,
		Currency:        form.Currency,
		DepositAmount:   deposit,
		RemainingAmount: remaining,
		Status:          enums.OfferStatusPending,
		DepositStatus:   enums.PaymentFlagPending,
		FinalStatus:     enums.PaymentFlagPending,
		PaymentSourceID: req.PaymentSourceID,
	}
	err = s.tx.WithTx(ctx, func(tx *gorm.DB) error {
		return s.repo.WithTx(tx).Create(ctx, offer)
	})
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "create offer")
	}
	ctx = s.logg.WithOfferID(ctx, offer.ID.String())

	// Counters are advisory; a failed bump never fails the submission.
	if err := s.forms.RecordBid(ctx, form.ID, offer.Total()); err != nil {
		s.logg.Error(ctx, "record bid counters", err)
	}

	result := &SubmitResult{}
	if form.AutoAcceptThreshold != nil && req.BidAmount.GreaterThanOrEqual(*form.AutoAcceptThreshold) {
		result.AutoAccepted = true
		s.autoAccept(ctx, offer, form, result)
	}
	result.Offer = FromModel(offer)

	s.notifier.Dispatch(ctx, notifications.Event{
		Type:       enums.NotificationTypeOfferReceived,
		MerchantID: form.MerchantID,
		OfferID:    &offer.ID,
		FormTitle:  form.Title,
		BuyerName:  offer.BuyerName,
		Amount:     offer.Total(),
	})
	return result, nil
}

// autoAccept moves a fresh offer straight to accepted and then charges
// the deposit. Acceptance is optimistic: the deposit is still pending
// when we commit, and a deposit that later fails is unwound through
// CompensateFailedDeposit. Failures here leave the offer in a
// well-defined state and never fail the submission.
func (s *service) autoAccept(ctx context.Context, offer *models.Offer, form *models.BidForm, result *SubmitResult) {
	now := time.Now()
	err := s.commitOffer(ctx, offer, func(_ Repository, locked *models.Offer) error {
		locked.Status = enums.OfferStatusAccepted
		locked.AcceptedAt = &now
		return nil
	})
	if err != nil {
		s.logg.Error(ctx, "auto-accept transition", err)
		return
	}

	intent, err := s.chargeDeposit(ctx, offer, form)
	if err != nil {
		// Known gap: the offer stays accepted with the deposit pending.
		// The buyer retries through CreateDepositIntent.
		s.logg.Error(ctx, "deposit charge after auto-accept", err)
		return
	}
	result.DepositIntentID = intent.IntentID
}

func (s *service) CreateDepositIntent(ctx context.Context, offerID uuid.UUID) (*PaymentIntentDTO, error) {
	offer, err := s.repo.FindByID(ctx, offerID)
	if err != nil {
		return nil, mapStoreErr(err, "load offer")
	}
	ctx = s.logg.WithOfferID(ctx, offer.ID.String())

	if offer.Status != enums.OfferStatusPending && offer.Status != enums.OfferStatusAccepted {
		return nil, pkgerrors.New(pkgerrors.CodeStateConflict, fmt.Sprintf("offer is %s", offer.Status))
	}
	if offer.DepositStatus == enums.PaymentFlagPaid {
		return nil, pkgerrors.New(pkgerrors.CodeStateConflict, "deposit already paid")
	}
	if offer.DepositIntentID != nil && offer.DepositStatus == enums.PaymentFlagPending {
		return &PaymentIntentDTO{
			IntentID: *offer.DepositIntentID,
			Amount:   offer.DepositAmount,
			Currency: offer.Currency,
			Type:     enums.PaymentTypeDeposit,
		}, nil
	}

	form, err := s.findForm(ctx, offer.BidFormID)
	if err != nil {
		return nil, err
	}
	return s.chargeDeposit(ctx, offer, form)
}

// chargeDeposit creates the deposit intent at the gateway and persists
// the correlation id plus a pending Payment row. The gateway call runs
// without holding the offer lock; the commit re-validates that the
// offer did not move in the meantime.
func (s *service) chargeDeposit(ctx context.Context, offer *models.Offer, form *models.BidForm) (*PaymentIntentDTO, error) {
	merchant, err := s.findMerchant(ctx, form.MerchantID)
	if err != nil {
		return nil, err
	}
	breakdown, err := s.fees.Calculate(offer.DepositAmount, merchant.PlanTier)
	if err != nil {
		return nil, err
	}

	intent, err := s.gateway.CreateIntent(ctx, square.IntentCreateParams{
		Amount:         offer.DepositAmount,
		PlatformFee:    breakdown.PlatformFee,
		Currency:       offer.Currency,
		LocationID:     s.gateway.DefaultLocationID(),
		SourceID:       offer.PaymentSourceID,
		BuyerEmail:     offer.BuyerEmail,
		Note:           fmt.Sprintf("Deposit for %s", form.Title),
		ReferenceID:    offer.ID.String(),
		IdempotencyKey: fmt.Sprintf("deposit-%s-%d", offer.ID, offer.Version),
	})
	if err != nil {
		return nil, err
	}

	err = s.commitOffer(ctx, offer, func(r Repository, locked *models.Offer) error {
		if locked.DepositStatus == enums.PaymentFlagPaid {
			return pkgerrors.New(pkgerrors.CodeStateConflict, "deposit already paid")
		}
		locked.DepositIntentID = &intent.ID
		return r.CreatePayment(ctx, &models.Payment{
			OfferID:          locked.ID,
			MerchantID:       merchant.ID,
			ExternalIntentID: intent.ID,
			Amount:           offer.DepositAmount,
			Currency:         offer.Currency,
			Type:             enums.PaymentTypeDeposit,
			Status:           enums.PaymentStatusPending,
			ProcessorFee:     breakdown.ProcessorFee,
			PlatformFee:      breakdown.PlatformFee,
			MerchantNet:      breakdown.MerchantNet,
		})
	})
	if err != nil {
		s.unwindIntent(ctx, offer, merchant.ID, intent.ID, offer.DepositAmount, enums.PaymentTypeDeposit)
		return nil, err
	}
	return &PaymentIntentDTO{
		IntentID: intent.ID,
		Amount:   offer.DepositAmount,
		Currency: offer.Currency,
		Type:     enums.PaymentTypeDeposit,
	}, nil
}

func (s *service) AcceptOffer(ctx context.Context, offerID, merchantID uuid.UUID) (*AcceptResult, error) {
	offer, err := s.ownedOffer(ctx, offerID, merchantID)
	if err != nil {
		return nil, err
	}
	ctx = s.logg.WithOfferID(ctx, offer.ID.String())

	if offer.Status != enums.OfferStatusPending {
		return nil, pkgerrors.New(pkgerrors.CodeStateConflict, fmt.Sprintf("offer is %s", offer.Status))
	}
	if offer.DepositStatus != enums.PaymentFlagPaid {
		return nil, pkgerrors.New(pkgerrors.CodeStateConflict, "deposit not paid").
			WithDetails(map[string]any{"rule": "deposit_not_paid"})
	}

	merchant, err := s.findMerchant(ctx, merchantID)
	if err != nil {
		return nil, err
	}
	form, err := s.findForm(ctx, offer.BidFormID)
	if err != nil {
		return nil, err
	}
	breakdown, err := s.fees.Calculate(offer.RemainingAmount, merchant.PlanTier)
	if err != nil {
		return nil, err
	}

	intent, err := s.gateway.CreateIntent(ctx, square.IntentCreateParams{
		Amount:         offer.RemainingAmount,
		PlatformFee:    breakdown.PlatformFee,
		Currency:       offer.Currency,
		LocationID:     s.gateway.DefaultLocationID(),
		SourceID:       offer.PaymentSourceID,
		BuyerEmail:     offer.BuyerEmail,
		Note:           fmt.Sprintf("Balance for %s", form.Title),
		ReferenceID:    offer.ID.String(),
		IdempotencyKey: fmt.Sprintf("final-%s-%d", offer.ID, offer.Version),
	})
	if err != nil {
		return nil, err
	}

	now := time.Now()
	err = s.commitOffer(ctx, offer, func(r Repository, locked *models.Offer) error {
		if locked.Status != enums.OfferStatusPending {
			return pkgerrors.New(pkgerrors.CodeConflict, "offer changed while the payment was being created")
		}
		locked.Status = enums.OfferStatusAccepted
		locked.AcceptedAt = &now
		locked.FinalIntentID = &intent.ID
		return r.CreatePayment(ctx, &models.Payment{
			OfferID:          locked.ID,
			MerchantID:       merchant.ID,
			ExternalIntentID: intent.ID,
			Amount:           offer.RemainingAmount,
			Currency:         offer.Currency,
			Type:             enums.PaymentTypeFinal,
			Status:           enums.PaymentStatusPending,
			ProcessorFee:     breakdown.ProcessorFee,
			PlatformFee:      breakdown.PlatformFee,
			MerchantNet:      breakdown.MerchantNet,
		})
	})
	if err != nil {
		s.unwindIntent(ctx, offer, merchant.ID, intent.ID, offer.RemainingAmount, enums.PaymentTypeFinal)
		return nil, err
	}

	s.notifier.Dispatch(ctx, notifications.Event{
		Type:       enums.NotificationTypeOfferAccepted,
		MerchantID: merchant.ID,
		OfferID:    &offer.ID,
		FormTitle:  form.Title,
		BuyerName:  offer.BuyerName,
		Amount:     offer.Total(),
	})
	return &AcceptResult{
		Offer: FromModel(offer),
		Intent: &PaymentIntentDTO{
			IntentID: intent.ID,
			Amount:   offer.RemainingAmount,
			Currency: offer.Currency,
			Type:     enums.PaymentTypeFinal,
		},
	}, nil
}

func (s *service) RejectOffer(ctx context.Context, offerID, merchantID uuid.UUID, req RejectOfferRequest) (*OfferDTO, error) {
	offer, err := s.ownedOffer(ctx, offerID, merchantID)
	if err != nil {
		return nil, err
	}
	ctx = s.logg.WithOfferID(ctx, offer.ID.String())

	if offer.Status != enums.OfferStatusPending {
		return nil, pkgerrors.New(pkgerrors.CodeStateConflict, fmt.Sprintf("offer is %s", offer.Status))
	}

	// The refund must land before the offer leaves pending. A refund
	// failure keeps the offer retryable and the merchant's liability
	// on the books.
	var refundRecord *models.Payment
	if offer.DepositStatus == enums.PaymentFlagPaid {
		depositPayment, err := s.repo.FindPaymentByType(ctx, offer.ID, enums.PaymentTypeDeposit)
		if err != nil {
			return nil, mapStoreErr(err, "load deposit payment")
		}
		reason := "offer rejected"
		if req.Reason != nil && *req.Reason != "" {
			reason = *req.Reason
		}
		refund, err := s.gateway.Refund(ctx, square.RefundParams{
			IntentID:       depositPayment.ExternalIntentID,
			Amount:         depositPayment.Amount,
			Currency:       depositPayment.Currency,
			Reason:         reason,
			IdempotencyKey: fmt.Sprintf("refund-%s", offer.ID),
		})
		if err != nil {
			return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "deposit refund failed").
				WithDetails(map[string]any{"step": "refund"})
		}
		now := time.Now()
		refundRecord = &models.Payment{
			OfferID:          offer.ID,
			MerchantID:       merchantID,
			ExternalIntentID: refund.ID,
			Amount:           depositPayment.Amount,
			Currency:         depositPayment.Currency,
			Type:             enums.PaymentTypeDeposit,
			Status:           enums.PaymentStatusCancelled,
			ProcessedAt:      &now,
		}
	}

	err = s.commitOffer(ctx, offer, func(r Repository, locked *models.Offer) error {
		if locked.Status != enums.OfferStatusPending {
			return pkgerrors.New(pkgerrors.CodeConflict, "offer changed while the refund was in flight")
		}
		locked.Status = enums.OfferStatusRejected
		if refundRecord == nil {
			return nil
		}
		return r.CreatePayment(ctx, refundRecord)
	})
	if err != nil {
		return nil, err
	}

	form, _ := s.forms.FindByID(ctx, offer.BidFormID)
	s.notifier.Dispatch(ctx, notifications.Event{
		Type:       enums.NotificationTypeOfferRejected,
		MerchantID: merchantID,
		OfferID:    &offer.ID,
		FormTitle:  formTitle(form),
		BuyerName:  offer.BuyerName,
		Amount:     offer.Total(),
	})
	return FromModel(offer), nil
}

func (s *service) CancelOffer(ctx context.Context, offerID uuid.UUID) (*OfferDTO, error) {
	offer, err := s.repo.FindByID(ctx, offerID)
	if err != nil {
		return nil, mapStoreErr(err, "load offer")
	}
	ctx = s.logg.WithOfferID(ctx, offer.ID.String())

	if offer.Status != enums.OfferStatusPending {
		return nil, pkgerrors.New(pkgerrors.CodeStateConflict, fmt.Sprintf("offer is %s", offer.Status))
	}
	if offer.DepositStatus == enums.PaymentFlagPaid {
		return nil, pkgerrors.New(pkgerrors.CodeStateConflict,
			"paid deposits are refunded through merchant rejection").
			WithDetails(map[string]any{"rule": "deposit_paid"})
	}

	err = s.commitOffer(ctx, offer, func(_ Repository, locked *models.Offer) error {
		if locked.Status != enums.OfferStatusPending || locked.DepositStatus == enums.PaymentFlagPaid {
			return pkgerrors.New(pkgerrors.CodeConflict, "offer changed while cancelling")
		}
		locked.Status = enums.OfferStatusCancelled
		return nil
	})
	if err != nil {
		return nil, err
	}
	return FromModel(offer), nil
}

// CompensateFailedDeposit unwinds an auto-accepted offer whose deposit
// charge failed. The optimistic accept leaves status=accepted with a
// failed deposit; this moves it to rejected without a refund since no
// money was captured.
func (s *service) CompensateFailedDeposit(ctx context.Context, offerID, merchantID uuid.UUID) (*OfferDTO, error) {
	offer, err := s.ownedOffer(ctx, offerID, merchantID)
	if err != nil {
		return nil, err
	}
	ctx = s.logg.WithOfferID(ctx, offer.ID.String())

	if offer.Status != enums.OfferStatusAccepted || offer.DepositStatus != enums.PaymentFlagFailed {
		return nil, pkgerrors.New(pkgerrors.CodeStateConflict, "offer is not awaiting deposit compensation")
	}

	err = s.commitOffer(ctx, offer, func(_ Repository, locked *models.Offer) error {
		if locked.Status != enums.OfferStatusAccepted || locked.DepositStatus != enums.PaymentFlagFailed {
			return pkgerrors.New(pkgerrors.CodeConflict, "offer changed while compensating")
		}
		locked.Status = enums.OfferStatusRejected
		return nil
	})
	if err != nil {
		return nil, err
	}

	form, _ := s.forms.FindByID(ctx, offer.BidFormID)
	s.notifier.Dispatch(ctx, notifications.Event{
		Type:       enums.NotificationTypeOfferRejected,
		MerchantID: merchantID,
		OfferID:    &offer.ID,
		FormTitle:  formTitle(form),
		BuyerName:  offer.BuyerName,
		Amount:     offer.Total(),
	})
	return FromModel(offer), nil
}

func (s *service) HandlePaymentSucceeded(ctx context.Context, externalIntentID string) error {
	return s.settlePayment(ctx, externalIntentID, enums.PaymentStatusSucceeded, nil)
}

func (s *service) HandlePaymentFailed(ctx context.Context, externalIntentID string, reason *string) error {
	return s.settlePayment(ctx, externalIntentID, enums.PaymentStatusFailed, reason)
}

// settlePayment applies a terminal processor outcome to the payment row
// and the owning offer. Safe under at-least-once webhook delivery: a
// payment already in a terminal state is a no-op, with no state change
// and no duplicate notification.
func (s *service) settlePayment(ctx context.Context, externalIntentID string, outcome enums.PaymentStatus, reason *string) error {
	payment, err := s.repo.FindPaymentByIntentID(ctx, externalIntentID)
	if err != nil {
		return mapStoreErr(err, "load payment")
	}
	if payment.Status != enums.PaymentStatusPending {
		return nil
	}
	ctx = s.logg.WithOfferID(ctx, payment.OfferID.String())

	now := time.Now()
	var settled *models.Offer
	already := false
	err = s.tx.WithTx(ctx, func(tx *gorm.DB) error {
		r := s.repo.WithTx(tx)
		locked, err := r.FindByIDLocked(ctx, payment.OfferID)
		if err != nil {
			return err
		}
		current, err := r.FindPaymentByIntentID(ctx, externalIntentID)
		if err != nil {
			return err
		}
		if current.Status != enums.PaymentStatusPending {
			already = true
			return nil
		}

		current.Status = outcome
		current.ProcessedAt = &now
		if reason != nil {
			current.FailureReason = reason
		}
		if err := r.UpdatePayment(ctx, current); err != nil {
			return err
		}

		flag := enums.PaymentFlagPaid
		if outcome == enums.PaymentStatusFailed {
			flag = enums.PaymentFlagFailed
		}
		switch current.Type {
		case enums.PaymentTypeDeposit:
			locked.DepositStatus = flag
		case enums.PaymentTypeFinal:
			locked.FinalStatus = flag
			if flag == enums.PaymentFlagPaid && locked.Status == enums.OfferStatusAccepted {
				locked.Status = enums.OfferStatusCompleted
				locked.CompletedAt = &now
			}
		}
		if err := r.Update(ctx, locked); err != nil {
			return err
		}
		settled = locked
		payment = current
		return nil
	})
	if err != nil {
		return mapStoreErr(err, "settle payment")
	}
	if already || settled == nil {
		return nil
	}

	form, _ := s.forms.FindByID(ctx, settled.BidFormID)
	s.notifier.Dispatch(ctx, notifications.Event{
		Type:       settlementEventType(payment.Type, outcome),
		MerchantID: payment.MerchantID,
		OfferID:    &settled.ID,
		FormTitle:  formTitle(form),
		BuyerName:  settled.BuyerName,
		Amount:     payment.Amount,
	})
	return nil
}

func (s *service) GetOffer(ctx context.Context, offerID uuid.UUID) (*OfferDTO, error) {
	offer, err := s.repo.FindByID(ctx, offerID)
	if err != nil {
		return nil, mapStoreErr(err, "load offer")
	}
	return FromModel(offer), nil
}

func (s *service) ListFormOffers(ctx context.Context, formID, merchantID uuid.UUID, status *enums.OfferStatus, limit int, cursor string) (*ListResult, error) {
	form, err := s.findForm(ctx, formID)
	if err != nil {
		return nil, err
	}
	if form.MerchantID != merchantID {
		return nil, pkgerrors.New(pkgerrors.CodeNotFound, "form not found")
	}

	parsed, err := pagination.ParseCursor(cursor)
	if err != nil {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "invalid cursor")
	}
	rows, next, err := s.repo.ListByForm(ctx, listOffersParams{
		FormID: formID,
		Status: status,
		Limit:  limit,
		Cursor: parsed,
	})
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "list offers")
	}
	return buildListResult(rows, next), nil
}

func (s *service) ListMerchantOffers(ctx context.Context, merchantID uuid.UUID, status *enums.OfferStatus, limit int, cursor string) (*ListResult, error) {
	parsed, err := pagination.ParseCursor(cursor)
	if err != nil {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "invalid cursor")
	}
	rows, next, err := s.repo.ListByMerchant(ctx, listOffersParams{
		MerchantID: merchantID,
		Status:     status,
		Limit:      limit,
		Cursor:     parsed,
	})
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "list offers")
	}
	return buildListResult(rows, next), nil
}

// unwindIntent refunds a charge that was captured at the gateway but
// whose offer transition lost the version race. Without it the buyer
// stays charged with no payment row anything can settle. The refund is
// recorded as a cancelled payment so reconciliation can see it; a
// refund failure is logged with the intent id for manual follow-up.
func (s *service) unwindIntent(ctx context.Context, offer *models.Offer, merchantID uuid.UUID, intentID string, amount decimal.Decimal, paymentType enums.PaymentType) {
	ctx = s.logg.WithField(ctx, "intent_id", intentID)
	refund, err := s.gateway.Refund(ctx, square.RefundParams{
		IntentID:       intentID,
		Amount:         amount,
		Currency:       offer.Currency,
		Reason:         "offer changed before the charge was recorded",
		IdempotencyKey: fmt.Sprintf("unwind-%s", intentID),
	})
	if err != nil {
		s.logg.Error(ctx, "unwind captured charge", err)
		return
	}
	now := time.Now()
	record := &models.Payment{
		OfferID:          offer.ID,
		MerchantID:       merchantID,
		ExternalIntentID: refund.ID,
		Amount:           amount,
		Currency:         offer.Currency,
		Type:             paymentType,
		Status:           enums.PaymentStatusCancelled,
		ProcessedAt:      &now,
	}
	if err := s.repo.CreatePayment(ctx, record); err != nil {
		s.logg.Error(ctx, "record charge unwind", err)
	}
}

// commitOffer runs a locked read-decide-write cycle on the offer. The
// caller's view must still match the stored version; drift surfaces as
// a Conflict. On success the caller's copy is refreshed.
func (s *service) commitOffer(ctx context.Context, offer *models.Offer, mutate func(r Repository, locked *models.Offer) error) error {
	err := s.tx.WithTx(ctx, func(tx *gorm.DB) error {
		r := s.repo.WithTx(tx)
		locked, err := r.FindByIDLocked(ctx, offer.ID)
		if err != nil {
			return err
		}
		if locked.Version != offer.Version {
			return ErrVersionConflict
		}
		if err := mutate(r, locked); err != nil {
			return err
		}
		if err := r.Update(ctx, locked); err != nil {
			return err
		}
		*offer = *locked
		return nil
	})
	return mapStoreErr(err, "update offer")
}

func (s *service) ownedOffer(ctx context.Context, offerID, merchantID uuid.UUID) (*models.Offer, error) {
	offer, err := s.repo.FindOwned(ctx, offerID, merchantID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			// Ownership failures read as not-found so callers cannot
			// enumerate other merchants' offers.
			return nil, pkgerrors.New(pkgerrors.CodeNotFound, "offer not found")
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load offer")
	}
	return offer, nil
}

func (s *service) findForm(ctx context.Context, formID uuid.UUID) (*models.BidForm, error) {
	form, err := s.forms.FindByID(ctx, formID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, pkgerrors.New(pkgerrors.CodeNotFound, "form not found")
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load form")
	}
	return form, nil
}

func (s *service) findMerchant(ctx context.Context, merchantID uuid.UUID) (*models.Merchant, error) {
	merchant, err := s.merchants.FindByID(ctx, merchantID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, pkgerrors.New(pkgerrors.CodeNotFound, "merchant not found")
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load merchant")
	}
	return merchant, nil
}

func mapStoreErr(err error, op string) error {
	switch {
	case err == nil:
		return nil
	case pkgerrors.As(err) != nil:
		return err
	case errors.Is(err, ErrVersionConflict):
		return pkgerrors.New(pkgerrors.CodeConflict, "offer was modified concurrently")
	case errors.Is(err, gorm.ErrRecordNotFound):
		return pkgerrors.New(pkgerrors.CodeNotFound, "record not found")
	default:
		return pkgerrors.Wrap(pkgerrors.CodeDependency, err, op)
	}
}

func settlementEventType(paymentType enums.PaymentType, outcome enums.PaymentStatus) enums.NotificationType {
	if outcome == enums.PaymentStatusFailed {
		return enums.NotificationTypePaymentFailed
	}
	if paymentType == enums.PaymentTypeDeposit {
		return enums.NotificationTypeDepositPaid
	}
	return enums.NotificationTypePaymentReceived
}

func formTitle(form *models.BidForm) string {
	if form == nil {
		return ""
	}
	return form.Title
}

func buildListResult(rows []models.Offer, next *pagination.Cursor) *ListResult {
	items := make([]OfferDTO, 0, len(rows))
	for _, row := range rows {
		items = append(items, *FromModel(&row))
	}
	result := &ListResult{Items: items}
	if next != nil {
		result.Cursor = pagination.EncodeCursor(*next)
	}
	return result
}
