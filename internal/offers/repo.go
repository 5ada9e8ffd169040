package offers

import (
	"context"
	"errors"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/offerhive/offerhive-backend/pkg/db/models"
	"github.com/offerhive/offerhive-backend/pkg/enums"
	"github.com/offerhive/offerhive-backend/pkg/pagination"
)

// ErrVersionConflict signals that another writer modified the offer
// between the read and the compare-and-swap update.
var ErrVersionConflict = errors.New("offer version conflict")

// Repository exposes offer and payment persistence operations.
type Repository interface {
	WithTx(tx *gorm.DB) Repository
	Create(ctx context.Context, offer *models.Offer) error
	FindByID(ctx context.Context, id uuid.UUID) (*models.Offer, error)
	FindByIDLocked(ctx context.Context, id uuid.UUID) (*models.Offer, error)
	FindOwned(ctx context.Context, offerID, merchantID uuid.UUID) (*models.Offer, error)
	Update(ctx context.Context, offer *models.Offer) error
	CreatePayment(ctx context.Context, payment *models.Payment) error
	FindPaymentByIntentID(ctx context.Context, externalIntentID string) (*models.Payment, error)
	FindPaymentByType(ctx context.Context, offerID uuid.UUID, paymentType enums.PaymentType) (*models.Payment, error)
	UpdatePayment(ctx context.Context, payment *models.Payment) error
	ListByForm(ctx context.Context, params listOffersParams) ([]models.Offer, *pagination.Cursor, error)
	ListByMerchant(ctx context.Context, params listOffersParams) ([]models.Offer, *pagination.Cursor, error)
}

type repositoryImpl struct {
	db *gorm.DB
}

// NewRepository returns an offers repository bound to the provided database.
func NewRepository(db *gorm.DB) Repository {
	return &repositoryImpl{db: db}
}

type listOffersParams struct {
	FormID     uuid.UUID
	MerchantID uuid.UUID
	Status     *enums.OfferStatus
	Limit      int
	Cursor     *pagination.Cursor
}

func (r *repositoryImpl) WithTx(tx *gorm.DB) Repository {
	if tx == nil {
		return r
	}
	return &repositoryImpl{db: tx}
}

func (r *repositoryImpl) Create(ctx context.Context, offer *models.Offer) error {
	return r.db.WithContext(ctx).Create(offer).Error
}

func (r *repositoryImpl) FindByID(ctx context.Context, id uuid.UUID) (*models.Offer, error) {
	var offer models.Offer
	if err := r.db.WithContext(ctx).First(&offer, "id = ?", id).Error; err != nil {
		return nil, err
	}
	return &offer, nil
}

// FindByIDLocked takes a row lock on the offer for the duration of the
// surrounding transaction. Callers must run inside WithTx.
func (r *repositoryImpl) FindByIDLocked(ctx context.Context, id uuid.UUID) (*models.Offer, error) {
	var offer models.Offer
	err := r.db.WithContext(ctx).
		Set("gorm:query_option", "FOR UPDATE").
		First(&offer, "id = ?", id).Error
	if err != nil {
		return nil, err
	}
	return &offer, nil
}

// FindOwned resolves an offer through its parent form's merchant. Offers
// belong to forms, not merchants, so access control joins through
// bid_forms.
func (r *repositoryImpl) FindOwned(ctx context.Context, offerID, merchantID uuid.UUID) (*models.Offer, error) {
	var offer models.Offer
	err := r.db.WithContext(ctx).
		Joins("JOIN bid_forms ON bid_forms.id = offers.bid_form_id").
		Where("offers.id = ? AND bid_forms.merchant_id = ?", offerID, merchantID).
		First(&offer).Error
	if err != nil {
		return nil, err
	}
	return &offer, nil
}

// Update persists the offer's mutable fields guarded by a version
// compare-and-swap. On success the in-memory version is bumped to match
// the stored row.
func (r *repositoryImpl) Update(ctx context.Context, offer *models.Offer) error {
	result := r.db.WithContext(ctx).
		Model(&models.Offer{}).
		Where("id = ? AND version = ?", offer.ID, offer.Version).
		Updates(map[string]any{
			"status":            offer.Status,
			"deposit_status":    offer.DepositStatus,
			"final_status":      offer.FinalStatus,
			"deposit_intent_id": offer.DepositIntentID,
			"final_intent_id":   offer.FinalIntentID,
			"accepted_at":       offer.AcceptedAt,
			"completed_at":      offer.CompletedAt,
			"version":           offer.Version + 1,
		})
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return ErrVersionConflict
	}
	offer.Version++
	return nil
}

func (r *repositoryImpl) CreatePayment(ctx context.Context, payment *models.Payment) error {
	return r.db.WithContext(ctx).Create(payment).Error
}

func (r *repositoryImpl) FindPaymentByIntentID(ctx context.Context, externalIntentID string) (*models.Payment, error) {
	var payment models.Payment
	if err := r.db.WithContext(ctx).First(&payment, "external_intent_id = ?", externalIntentID).Error; err != nil {
		return nil, err
	}
	return &payment, nil
}

func (r *repositoryImpl) FindPaymentByType(ctx context.Context, offerID uuid.UUID, paymentType enums.PaymentType) (*models.Payment, error) {
	var payment models.Payment
	err := r.db.WithContext(ctx).
		Where("offer_id = ? AND type = ? AND status = ?", offerID, paymentType, enums.PaymentStatusSucceeded).
		Order("created_at DESC").
		First(&payment).Error
	if err != nil {
		return nil, err
	}
	return &payment, nil
}

func (r *repositoryImpl) UpdatePayment(ctx context.Context, payment *models.Payment) error {
	return r.db.WithContext(ctx).
		Model(&models.Payment{}).
		Where("id = ?", payment.ID).
		Updates(map[string]any{
			"status":         payment.Status,
			"failure_reason": payment.FailureReason,
			"processed_at":   payment.ProcessedAt,
		}).Error
}

func (r *repositoryImpl) ListByForm(ctx context.Context, params listOffersParams) ([]models.Offer, *pagination.Cursor, error) {
	query := r.db.WithContext(ctx).Model(&models.Offer{}).Where("bid_form_id = ?", params.FormID)
	if params.Status != nil {
		query = query.Where("status = ?", *params.Status)
	}
	return r.page(query, params)
}

func (r *repositoryImpl) ListByMerchant(ctx context.Context, params listOffersParams) ([]models.Offer, *pagination.Cursor, error) {
	query := r.db.WithContext(ctx).Model(&models.Offer{}).
		Joins("JOIN bid_forms ON bid_forms.id = offers.bid_form_id").
		Where("bid_forms.merchant_id = ?", params.MerchantID)
	if params.Status != nil {
		query = query.Where("offers.status = ?", *params.Status)
	}
	return r.page(query, params)
}

func (r *repositoryImpl) page(query *gorm.DB, params listOffersParams) ([]models.Offer, *pagination.Cursor, error) {
	limit := pagination.LimitWithBuffer(params.Limit)
	normalized := pagination.NormalizeLimit(params.Limit)
	// The cursor names the first row of the requested page, so the
	// comparison is inclusive.
	if params.Cursor != nil {
		query = query.Where("(offers.created_at, offers.id) <= (?, ?)", params.Cursor.CreatedAt, params.Cursor.ID)
	}

	var rows []models.Offer
	if err := query.Order("offers.created_at DESC, offers.id DESC").Limit(limit).Find(&rows).Error; err != nil {
		return nil, nil, err
	}

	if len(rows) > normalized {
		next := rows[normalized]
		rows = rows[:normalized]
		return rows, &pagination.Cursor{CreatedAt: next.CreatedAt, ID: next.ID}, nil
	}
	return rows, nil, nil
}
