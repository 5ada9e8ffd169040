package forms

import (
	"context"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"

	"github.com/offerhive/offerhive-backend/pkg/db/models"
	"github.com/offerhive/offerhive-backend/pkg/enums"
	"github.com/offerhive/offerhive-backend/pkg/pagination"
)

// Repository exposes bid form persistence operations.
type Repository interface {
	WithTx(tx *gorm.DB) Repository
	Create(ctx context.Context, form *models.BidForm) error
	FindByID(ctx context.Context, id uuid.UUID) (*models.BidForm, error)
	ListByMerchant(ctx context.Context, params listFormsParams) ([]models.BidForm, *pagination.Cursor, error)
	CountActiveByMerchant(ctx context.Context, merchantID uuid.UUID) (int64, error)
	CountOpenOffers(ctx context.Context, formID uuid.UUID) (int64, error)
	UpdateStatus(ctx context.Context, formID uuid.UUID, status enums.FormStatus) error
	Delete(ctx context.Context, formID uuid.UUID) error
	RecordBid(ctx context.Context, formID uuid.UUID, amount decimal.Decimal) error
}

type repositoryImpl struct {
	db *gorm.DB
}

// NewRepository returns a forms repository bound to the provided database.
func NewRepository(db *gorm.DB) Repository {
	return &repositoryImpl{db: db}
}

type listFormsParams struct {
	MerchantID uuid.UUID
	Limit      int
	Cursor     *pagination.Cursor
}

func (r *repositoryImpl) WithTx(tx *gorm.DB) Repository {
	if tx == nil {
		return r
	}
	return &repositoryImpl{db: tx}
}

func (r *repositoryImpl) Create(ctx context.Context, form *models.BidForm) error {
	return r.db.WithContext(ctx).Create(form).Error
}

func (r *repositoryImpl) FindByID(ctx context.Context, id uuid.UUID) (*models.BidForm, error) {
	var form models.BidForm
	if err := r.db.WithContext(ctx).First(&form, "id = ?", id).Error; err != nil {
		return nil, err
	}
	return &form, nil
}

func (r *repositoryImpl) ListByMerchant(ctx context.Context, params listFormsParams) ([]models.BidForm, *pagination.Cursor, error) {
	limit := pagination.LimitWithBuffer(params.Limit)
	normalized := pagination.NormalizeLimit(params.Limit)
	query := r.db.WithContext(ctx).Model(&models.BidForm{}).Where("merchant_id = ?", params.MerchantID)
	// Inclusive: the cursor names the first row of the requested page.
	if params.Cursor != nil {
		query = query.Where("(created_at, id) <= (?, ?)", params.Cursor.CreatedAt, params.Cursor.ID)
	}

	var rows []models.BidForm
	if err := query.Order("created_at DESC, id DESC").Limit(limit).Find(&rows).Error; err != nil {
		return nil, nil, err
	}

	if len(rows) > normalized {
		next := rows[normalized]
		rows = rows[:normalized]
		return rows, &pagination.Cursor{CreatedAt: next.CreatedAt, ID: next.ID}, nil
	}
	return rows, nil, nil
}

func (r *repositoryImpl) CountActiveByMerchant(ctx context.Context, merchantID uuid.UUID) (int64, error) {
	var count int64
	err := r.db.WithContext(ctx).
		Model(&models.BidForm{}).
		Where("merchant_id = ? AND status = ?", merchantID, enums.FormStatusActive).
		Count(&count).Error
	return count, err
}

func (r *repositoryImpl) CountOpenOffers(ctx context.Context, formID uuid.UUID) (int64, error) {
	var count int64
	err := r.db.WithContext(ctx).
		Model(&models.Offer{}).
		Where("bid_form_id = ? AND status IN ?", formID, []enums.OfferStatus{enums.OfferStatusPending, enums.OfferStatusAccepted}).
		Count(&count).Error
	return count, err
}

func (r *repositoryImpl) UpdateStatus(ctx context.Context, formID uuid.UUID, status enums.FormStatus) error {
	return r.db.WithContext(ctx).
		Model(&models.BidForm{}).
		Where("id = ?", formID).
		UpdateColumn("status", status).Error
}

func (r *repositoryImpl) Delete(ctx context.Context, formID uuid.UUID) error {
	return r.db.WithContext(ctx).Delete(&models.BidForm{}, "id = ?", formID).Error
}

// RecordBid bumps the denormalized submission counters. The values are
// advisory; offers remain the source of truth.
func (r *repositoryImpl) RecordBid(ctx context.Context, formID uuid.UUID, amount decimal.Decimal) error {
	return r.db.WithContext(ctx).
		Model(&models.BidForm{}).
		Where("id = ?", formID).
		Updates(map[string]any{
			"total_bids":  gorm.Expr("total_bids + 1"),
			"highest_bid": gorm.Expr("CASE WHEN ? > highest_bid THEN ? ELSE highest_bid END", amount, amount),
		}).Error
}
