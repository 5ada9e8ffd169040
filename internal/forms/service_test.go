package forms

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"

	"github.com/offerhive/offerhive-backend/pkg/db/models"
	"github.com/offerhive/offerhive-backend/pkg/enums"
	pkgerrors "github.com/offerhive/offerhive-backend/pkg/errors"
	"github.com/offerhive/offerhive-backend/pkg/pagination"
)

type fakeRepo struct {
	forms       map[uuid.UUID]*models.BidForm
	activeCount int64
	openOffers  int64
	deleted     []uuid.UUID
}

func newFakeRepo() *fakeRepo {
	return &fakeRepo{forms: make(map[uuid.UUID]*models.BidForm)}
}

func (f *fakeRepo) WithTx(tx *gorm.DB) Repository { return f }

func (f *fakeRepo) Create(ctx context.Context, form *models.BidForm) error {
	if form.ID == uuid.Nil {
		form.ID = uuid.New()
	}
	form.CreatedAt = time.Now()
	f.forms[form.ID] = form
	return nil
}

func (f *fakeRepo) FindByID(ctx context.Context, id uuid.UUID) (*models.BidForm, error) {
	if form, ok := f.forms[id]; ok {
		copied := *form
		return &copied, nil
	}
	return nil, gorm.ErrRecordNotFound
}

func (f *fakeRepo) ListByMerchant(ctx context.Context, params listFormsParams) ([]models.BidForm, *pagination.Cursor, error) {
	var rows []models.BidForm
	for _, form := range f.forms {
		if form.MerchantID == params.MerchantID {
			rows = append(rows, *form)
		}
	}
	return rows, nil, nil
}

func (f *fakeRepo) CountActiveByMerchant(ctx context.Context, merchantID uuid.UUID) (int64, error) {
	return f.activeCount, nil
}

func (f *fakeRepo) CountOpenOffers(ctx context.Context, formID uuid.UUID) (int64, error) {
	return f.openOffers, nil
}

func (f *fakeRepo) UpdateStatus(ctx context.Context, formID uuid.UUID, status enums.FormStatus) error {
	if form, ok := f.forms[formID]; ok {
		form.Status = status
	}
	return nil
}

func (f *fakeRepo) Delete(ctx context.Context, formID uuid.UUID) error {
	delete(f.forms, formID)
	f.deleted = append(f.deleted, formID)
	return nil
}

func (f *fakeRepo) RecordBid(ctx context.Context, formID uuid.UUID, amount decimal.Decimal) error {
	return nil
}

type fakeMerchants struct {
	merchant *models.Merchant
}

func (f *fakeMerchants) FindByID(ctx context.Context, id uuid.UUID) (*models.Merchant, error) {
	if f.merchant != nil && f.merchant.ID == id {
		return f.merchant, nil
	}
	return nil, gorm.ErrRecordNotFound
}

func newTestService(t *testing.T, repo Repository, merchants merchantLookup) Service {
	t.Helper()
	svc, err := NewService(ServiceParams{Repo: repo, Merchants: merchants})
	if err != nil {
		t.Fatalf("new service: %v", err)
	}
	return svc
}

func validRequest() CreateFormRequest {
	return CreateFormRequest{
		Title:             "Vintage amp",
		BasePrice:         decimal.RequireFromString("200.00"),
		QuantityAvailable: 3,
		DepositPercentage: decimal.RequireFromString("25"),
	}
}

func TestCreateForm(t *testing.T) {
	merchant := &models.Merchant{ID: uuid.New(), PlanTier: enums.PlanTierFree}
	repo := newFakeRepo()
	svc := newTestService(t, repo, &fakeMerchants{merchant: merchant})

	form, err := svc.CreateForm(context.Background(), merchant.ID, validRequest())
	if err != nil {
		t.Fatalf("create form: %v", err)
	}
	if form.Status != enums.FormStatusActive {
		t.Fatalf("new forms should start active, got %s", form.Status)
	}
	if form.Currency != enums.CurrencyUSD {
		t.Fatalf("expected default currency USD, got %s", form.Currency)
	}
	if len(repo.forms) != 1 {
		t.Fatalf("form not persisted")
	}
}

func TestCreateFormPlanLimit(t *testing.T) {
	merchant := &models.Merchant{ID: uuid.New(), PlanTier: enums.PlanTierFree}
	repo := newFakeRepo()
	repo.activeCount = 5
	svc := newTestService(t, repo, &fakeMerchants{merchant: merchant})

	_, err := svc.CreateForm(context.Background(), merchant.ID, validRequest())
	typed := pkgerrors.As(err)
	if typed == nil || typed.Code() != pkgerrors.CodePlanLimit {
		t.Fatalf("expected plan limit error, got %v", err)
	}
}

func TestCreateFormValidation(t *testing.T) {
	merchant := &models.Merchant{ID: uuid.New(), PlanTier: enums.PlanTierPro}
	svc := newTestService(t, newFakeRepo(), &fakeMerchants{merchant: merchant})

	lo := decimal.RequireFromString("50")
	hi := decimal.RequireFromString("20")
	past := time.Now().Add(-time.Hour)

	cases := []struct {
		name   string
		mutate func(*CreateFormRequest)
	}{
		{"empty title", func(r *CreateFormRequest) { r.Title = "  " }},
		{"zero base price", func(r *CreateFormRequest) { r.BasePrice = decimal.Zero }},
		{"zero deposit pct", func(r *CreateFormRequest) { r.DepositPercentage = decimal.Zero }},
		{"deposit pct over 100", func(r *CreateFormRequest) { r.DepositPercentage = decimal.RequireFromString("101") }},
		{"min over max", func(r *CreateFormRequest) { r.MinBidAmount = &lo; r.MaxBidAmount = &hi }},
		{"past end date", func(r *CreateFormRequest) { r.EndDate = &past }},
		{"bad currency", func(r *CreateFormRequest) { r.Currency = enums.Currency("BTC") }},
	}
	for _, tc := range cases {
		req := validRequest()
		tc.mutate(&req)
		_, err := svc.CreateForm(context.Background(), merchant.ID, req)
		typed := pkgerrors.As(err)
		if typed == nil || typed.Code() != pkgerrors.CodeValidation {
			t.Fatalf("%s: expected validation error, got %v", tc.name, err)
		}
	}
}

func TestSetStatusTerminal(t *testing.T) {
	merchant := &models.Merchant{ID: uuid.New(), PlanTier: enums.PlanTierBasic}
	repo := newFakeRepo()
	svc := newTestService(t, repo, &fakeMerchants{merchant: merchant})

	form := &models.BidForm{MerchantID: merchant.ID, Status: enums.FormStatusEnded}
	_ = repo.Create(context.Background(), form)

	_, err := svc.SetStatus(context.Background(), form.ID, merchant.ID, enums.FormStatusActive)
	typed := pkgerrors.As(err)
	if typed == nil || typed.Code() != pkgerrors.CodeStateConflict {
		t.Fatalf("expected state conflict, got %v", err)
	}
}

func TestSetStatusPauseAndResume(t *testing.T) {
	merchant := &models.Merchant{ID: uuid.New(), PlanTier: enums.PlanTierBasic}
	repo := newFakeRepo()
	svc := newTestService(t, repo, &fakeMerchants{merchant: merchant})

	form := &models.BidForm{MerchantID: merchant.ID, Status: enums.FormStatusActive}
	_ = repo.Create(context.Background(), form)

	updated, err := svc.SetStatus(context.Background(), form.ID, merchant.ID, enums.FormStatusPaused)
	if err != nil {
		t.Fatalf("pause: %v", err)
	}
	if updated.Status != enums.FormStatusPaused {
		t.Fatalf("expected paused, got %s", updated.Status)
	}

	updated, err = svc.SetStatus(context.Background(), form.ID, merchant.ID, enums.FormStatusActive)
	if err != nil {
		t.Fatalf("resume: %v", err)
	}
	if updated.Status != enums.FormStatusActive {
		t.Fatalf("expected active, got %s", updated.Status)
	}
}

func TestSetStatusWrongOwner(t *testing.T) {
	merchant := &models.Merchant{ID: uuid.New(), PlanTier: enums.PlanTierBasic}
	repo := newFakeRepo()
	svc := newTestService(t, repo, &fakeMerchants{merchant: merchant})

	form := &models.BidForm{MerchantID: uuid.New(), Status: enums.FormStatusActive}
	_ = repo.Create(context.Background(), form)

	_, err := svc.SetStatus(context.Background(), form.ID, merchant.ID, enums.FormStatusPaused)
	typed := pkgerrors.As(err)
	if typed == nil || typed.Code() != pkgerrors.CodeNotFound {
		t.Fatalf("expected not found for foreign form, got %v", err)
	}
}

func TestDeleteFormHasOpenOffers(t *testing.T) {
	merchant := &models.Merchant{ID: uuid.New(), PlanTier: enums.PlanTierBasic}
	repo := newFakeRepo()
	repo.openOffers = 2
	svc := newTestService(t, repo, &fakeMerchants{merchant: merchant})

	form := &models.BidForm{MerchantID: merchant.ID, Status: enums.FormStatusActive}
	_ = repo.Create(context.Background(), form)

	err := svc.DeleteForm(context.Background(), form.ID, merchant.ID)
	typed := pkgerrors.As(err)
	if typed == nil || typed.Code() != pkgerrors.CodeConflict {
		t.Fatalf("expected conflict for open offers, got %v", err)
	}
	if len(repo.deleted) != 0 {
		t.Fatal("form must not be deleted with open offers")
	}
}

func TestDeleteForm(t *testing.T) {
	merchant := &models.Merchant{ID: uuid.New(), PlanTier: enums.PlanTierBasic}
	repo := newFakeRepo()
	svc := newTestService(t, repo, &fakeMerchants{merchant: merchant})

	form := &models.BidForm{MerchantID: merchant.ID, Status: enums.FormStatusEnded}
	_ = repo.Create(context.Background(), form)

	if err := svc.DeleteForm(context.Background(), form.ID, merchant.ID); err != nil {
		t.Fatalf("delete form: %v", err)
	}
	if len(repo.deleted) != 1 {
		t.Fatal("expected form to be deleted")
	}
}
