package forms

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"

	"github.com/offerhive/offerhive-backend/pkg/db/models"
	"github.com/offerhive/offerhive-backend/pkg/enums"
	pkgerrors "github.com/offerhive/offerhive-backend/pkg/errors"
	"github.com/offerhive/offerhive-backend/pkg/pagination"
)

var hundred = decimal.NewFromInt(100)

// Service defines the bid form registry operations.
type Service interface {
	CreateForm(ctx context.Context, merchantID uuid.UUID, req CreateFormRequest) (*FormDTO, error)
	SetStatus(ctx context.Context, formID, merchantID uuid.UUID, status enums.FormStatus) (*FormDTO, error)
	DeleteForm(ctx context.Context, formID, merchantID uuid.UUID) error
	GetForm(ctx context.Context, formID uuid.UUID) (*FormDTO, error)
	ListMerchantForms(ctx context.Context, merchantID uuid.UUID, limit int, cursor string) (*ListResult, error)
}

type merchantLookup interface {
	FindByID(ctx context.Context, id uuid.UUID) (*models.Merchant, error)
}

// ServiceParams bundles the registry dependencies.
type ServiceParams struct {
	Repo      Repository
	Merchants merchantLookup
}

type service struct {
	repo      Repository
	merchants merchantLookup
}

// NewService constructs the bid form registry.
func NewService(params ServiceParams) (Service, error) {
	if params.Repo == nil {
		return nil, pkgerrors.New(pkgerrors.CodeDependency, "forms repository required")
	}
	if params.Merchants == nil {
		return nil, pkgerrors.New(pkgerrors.CodeDependency, "merchant lookup required")
	}
	return &service{repo: params.Repo, merchants: params.Merchants}, nil
}

func (s *service) CreateForm(ctx context.Context, merchantID uuid.UUID, req CreateFormRequest) (*FormDTO, error) {
	if merchantID == uuid.Nil {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "merchant id required")
	}
	if err := validateCreateRequest(req); err != nil {
		return nil, err
	}

	merchant, err := s.merchants.FindByID(ctx, merchantID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, pkgerrors.New(pkgerrors.CodeNotFound, "merchant not found")
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "lookup merchant")
	}

	activeCount, err := s.repo.CountActiveByMerchant(ctx, merchantID)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "count active forms")
	}
	limit := merchant.PlanTier.ActiveFormLimit()
	if activeCount >= int64(limit) {
		return nil, pkgerrors.New(pkgerrors.CodePlanLimit,
			fmt.Sprintf("plan %s allows at most %d active forms", merchant.PlanTier, limit)).
			WithDetails(map[string]any{"limit": limit, "active": activeCount})
	}

	currency := req.Currency
	if currency == "" {
		currency = enums.CurrencyUSD
	}
	quantity := req.QuantityAvailable
	if quantity == 0 {
		quantity = 1
	}

	form := &models.BidForm{
		MerchantID:          merchantID,
		Title:               strings.TrimSpace(req.Title),
		Description:         req.Description,
		BasePrice:           req.BasePrice,
		Currency:            currency,
		MinBidAmount:        req.MinBidAmount,
		MaxBidAmount:        req.MaxBidAmount,
		QuantityAvailable:   quantity,
		DepositPercentage:   req.DepositPercentage,
		AutoAcceptThreshold: req.AutoAcceptThreshold,
		EndDate:             req.EndDate,
		Status:              enums.FormStatusActive,
	}
	if err := s.repo.Create(ctx, form); err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "create form")
	}
	return FromModel(form), nil
}

func (s *service) SetStatus(ctx context.Context, formID, merchantID uuid.UUID, status enums.FormStatus) (*FormDTO, error) {
	if !status.IsValid() {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, fmt.Sprintf("invalid form status %q", status))
	}

	form, err := s.ownedForm(ctx, formID, merchantID)
	if err != nil {
		return nil, err
	}
	if form.Status.IsTerminal() {
		return nil, pkgerrors.New(pkgerrors.CodeStateConflict, "ended forms cannot change status")
	}
	if form.Status == status {
		return FromModel(form), nil
	}

	if err := s.repo.UpdateStatus(ctx, form.ID, status); err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "update form status")
	}
	form.Status = status
	return FromModel(form), nil
}

func (s *service) DeleteForm(ctx context.Context, formID, merchantID uuid.UUID) error {
	form, err := s.ownedForm(ctx, formID, merchantID)
	if err != nil {
		return err
	}

	open, err := s.repo.CountOpenOffers(ctx, form.ID)
	if err != nil {
		return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "count open offers")
	}
	if open > 0 {
		return pkgerrors.New(pkgerrors.CodeConflict,
			fmt.Sprintf("form has %d unresolved offers", open)).
			WithDetails(map[string]any{"open_offers": open})
	}

	if err := s.repo.Delete(ctx, form.ID); err != nil {
		return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "delete form")
	}
	return nil
}

func (s *service) GetForm(ctx context.Context, formID uuid.UUID) (*FormDTO, error) {
	if formID == uuid.Nil {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "form id required")
	}
	form, err := s.repo.FindByID(ctx, formID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, pkgerrors.New(pkgerrors.CodeNotFound, "form not found")
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "lookup form")
	}
	return FromModel(form), nil
}

func (s *service) ListMerchantForms(ctx context.Context, merchantID uuid.UUID, limit int, cursor string) (*ListResult, error) {
	if merchantID == uuid.Nil {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "merchant id required")
	}

	params := listFormsParams{MerchantID: merchantID, Limit: limit}
	if cursor != "" {
		parsed, err := pagination.ParseCursor(cursor)
		if err != nil {
			return nil, pkgerrors.Wrap(pkgerrors.CodeValidation, err, "invalid cursor")
		}
		params.Cursor = parsed
	}

	rows, next, err := s.repo.ListByMerchant(ctx, params)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "list forms")
	}

	items := make([]FormDTO, 0, len(rows))
	for i := range rows {
		items = append(items, *FromModel(&rows[i]))
	}

	result := &ListResult{Items: items}
	if next != nil {
		result.Cursor = pagination.EncodeCursor(*next)
	}
	return result, nil
}

func (s *service) ownedForm(ctx context.Context, formID, merchantID uuid.UUID) (*models.BidForm, error) {
	if formID == uuid.Nil || merchantID == uuid.Nil {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "form id and merchant id required")
	}
	form, err := s.repo.FindByID(ctx, formID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, pkgerrors.New(pkgerrors.CodeNotFound, "form not found")
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "lookup form")
	}
	// Ownership failures read as not-found so probes cannot map other
	// merchants' forms.
	if form.MerchantID != merchantID {
		return nil, pkgerrors.New(pkgerrors.CodeNotFound, "form not found")
	}
	return form, nil
}

func validateCreateRequest(req CreateFormRequest) error {
	if strings.TrimSpace(req.Title) == "" {
		return pkgerrors.New(pkgerrors.CodeValidation, "title is required")
	}
	if !req.BasePrice.IsPositive() {
		return pkgerrors.New(pkgerrors.CodeValidation, "base price must be positive")
	}
	if req.Currency != "" && !req.Currency.IsValid() {
		return pkgerrors.New(pkgerrors.CodeValidation, fmt.Sprintf("unsupported currency %q", req.Currency))
	}
	if req.QuantityAvailable < 0 {
		return pkgerrors.New(pkgerrors.CodeValidation, "quantity must be at least 1")
	}
	if !req.DepositPercentage.IsPositive() || req.DepositPercentage.GreaterThan(hundred) {
		return pkgerrors.New(pkgerrors.CodeValidation, "deposit percentage must be in (0,100]")
	}
	if req.MinBidAmount != nil && req.MaxBidAmount != nil && req.MinBidAmount.GreaterThan(*req.MaxBidAmount) {
		return pkgerrors.New(pkgerrors.CodeValidation, "min bid cannot exceed max bid")
	}
	if req.EndDate != nil && req.EndDate.Before(time.Now()) {
		return pkgerrors.New(pkgerrors.CodeValidation, "end date must be in the future")
	}
	return nil
}
