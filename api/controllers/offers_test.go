package controllers

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/offerhive/offerhive-backend/api/middleware"
	"github.com/offerhive/offerhive-backend/internal/offers"
	"github.com/offerhive/offerhive-backend/pkg/enums"
	pkgerrors "github.com/offerhive/offerhive-backend/pkg/errors"
	"github.com/offerhive/offerhive-backend/pkg/types"
)

type fakeOffersService struct {
	offers.Service

	submitCalls int
	submitForm  uuid.UUID
	submitReq   offers.SubmitOfferRequest
	submitResp  *offers.SubmitResult
	submitErr   error

	acceptCalls    int
	acceptOffer    uuid.UUID
	acceptMerchant uuid.UUID
	acceptResp     *offers.AcceptResult
	acceptErr      error
}

func (f *fakeOffersService) SubmitOffer(_ context.Context, formID uuid.UUID, req offers.SubmitOfferRequest) (*offers.SubmitResult, error) {
	f.submitCalls++
	f.submitForm = formID
	f.submitReq = req
	return f.submitResp, f.submitErr
}

func (f *fakeOffersService) AcceptOffer(_ context.Context, offerID, merchantID uuid.UUID) (*offers.AcceptResult, error) {
	f.acceptCalls++
	f.acceptOffer = offerID
	f.acceptMerchant = merchantID
	return f.acceptResp, f.acceptErr
}

func requestWithParam(method, url, param, value string, body string) *http.Request {
	var req *http.Request
	if body == "" {
		req = httptest.NewRequest(method, url, nil)
	} else {
		req = httptest.NewRequest(method, url, strings.NewReader(body))
	}
	rc := chi.NewRouteContext()
	rc.URLParams.Add(param, value)
	return req.WithContext(context.WithValue(req.Context(), chi.RouteCtxKey, rc))
}

func TestOfferSubmit(t *testing.T) {
	formID := uuid.New()
	svc := &fakeOffersService{
		submitResp: &offers.SubmitResult{
			Offer: &offers.OfferDTO{ID: uuid.New(), Status: enums.OfferStatusPending},
		},
	}
	handler := OfferSubmit(svc, nil)

	body := `{"buyer_name":"Ana","buyer_email":"ana@example.com","bid_amount":"500","quantity":1,"terms_accepted":true,"payment_source_id":"cnon_1"}`
	req := requestWithParam(http.MethodPost, "/api/public/forms/"+formID.String()+"/offers", "formId", formID.String(), body)
	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, req)

	if rec.Code != http.StatusCreated {
		t.Fatalf("expected 201, got %d (%s)", rec.Code, rec.Body.String())
	}
	if svc.submitCalls != 1 {
		t.Fatalf("expected one submit call, got %d", svc.submitCalls)
	}
	if svc.submitForm != formID {
		t.Fatalf("form id mismatch: %s", svc.submitForm)
	}
	if svc.submitReq.BuyerName != "Ana" {
		t.Fatalf("unexpected decoded request %+v", svc.submitReq)
	}
	if !svc.submitReq.BidAmount.Equal(decimal.NewFromInt(500)) {
		t.Fatalf("unexpected bid amount %s", svc.submitReq.BidAmount)
	}
}

func TestOfferSubmitInvalidFormID(t *testing.T) {
	svc := &fakeOffersService{}
	handler := OfferSubmit(svc, nil)

	req := requestWithParam(http.MethodPost, "/api/public/forms/not-a-uuid/offers", "formId", "not-a-uuid", `{}`)
	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, req)

	if rec.Code != http.StatusBadRequest {
		t.Fatalf("expected 400, got %d", rec.Code)
	}
	if svc.submitCalls != 0 {
		t.Fatalf("service should not be called for invalid id")
	}
}

func TestOfferSubmitRejectsUnknownFields(t *testing.T) {
	formID := uuid.New()
	svc := &fakeOffersService{}
	handler := OfferSubmit(svc, nil)

	body := `{"buyer_name":"Ana","buyer_email":"ana@example.com","bid_amount":"500","payment_source_id":"cnon_1","bogus":true}`
	req := requestWithParam(http.MethodPost, "/api/public/forms/"+formID.String()+"/offers", "formId", formID.String(), body)
	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, req)

	if rec.Code != http.StatusBadRequest {
		t.Fatalf("expected 400 for unknown field, got %d", rec.Code)
	}
}

func TestOfferAcceptRequiresMerchantContext(t *testing.T) {
	offerID := uuid.New()
	svc := &fakeOffersService{}
	handler := OfferAccept(svc, nil)

	req := requestWithParam(http.MethodPost, "/api/v1/offers/"+offerID.String()+"/accept", "offerId", offerID.String(), "")
	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, req)

	if rec.Code != http.StatusUnauthorized {
		t.Fatalf("expected 401 without merchant context, got %d", rec.Code)
	}
	if svc.acceptCalls != 0 {
		t.Fatalf("service should not be called without merchant context")
	}
}

func TestOfferAccept(t *testing.T) {
	offerID := uuid.New()
	merchantID := uuid.New()
	svc := &fakeOffersService{
		acceptResp: &offers.AcceptResult{
			Offer:  &offers.OfferDTO{ID: offerID, Status: enums.OfferStatusAccepted},
			Intent: &offers.PaymentIntentDTO{IntentID: "int_9"},
		},
	}
	handler := OfferAccept(svc, nil)

	req := requestWithParam(http.MethodPost, "/api/v1/offers/"+offerID.String()+"/accept", "offerId", offerID.String(), "")
	req = req.WithContext(middleware.WithMerchantID(req.Context(), merchantID.String()))
	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d (%s)", rec.Code, rec.Body.String())
	}
	if svc.acceptOffer != offerID || svc.acceptMerchant != merchantID {
		t.Fatalf("ids not forwarded: offer=%s merchant=%s", svc.acceptOffer, svc.acceptMerchant)
	}

	var envelope types.SuccessEnvelope
	if err := json.Unmarshal(rec.Body.Bytes(), &envelope); err != nil {
		t.Fatalf("decode envelope: %v", err)
	}
}

func TestOfferAcceptServiceErrorMapped(t *testing.T) {
	offerID := uuid.New()
	svc := &fakeOffersService{
		acceptErr: pkgerrors.New(pkgerrors.CodeStateConflict, "offer is not pending"),
	}
	handler := OfferAccept(svc, nil)

	req := requestWithParam(http.MethodPost, "/api/v1/offers/"+offerID.String()+"/accept", "offerId", offerID.String(), "")
	req = req.WithContext(middleware.WithMerchantID(req.Context(), uuid.NewString()))
	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, req)

	if rec.Code != http.StatusUnprocessableEntity {
		t.Fatalf("expected 422 for state conflict, got %d", rec.Code)
	}

	var envelope types.ErrorEnvelope
	if err := json.Unmarshal(rec.Body.Bytes(), &envelope); err != nil {
		t.Fatalf("decode envelope: %v", err)
	}
	if envelope.Error.Message != "offer is not pending" {
		t.Fatalf("expected message passthrough, got %q", envelope.Error.Message)
	}
}
