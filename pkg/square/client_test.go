package square

import (
	"errors"
	"net/http"
	"strings"
	"testing"

	"github.com/shopspring/decimal"
	sq "github.com/square/square-go-sdk"
	sqcore "github.com/square/square-go-sdk/core"

	"github.com/offerhive/offerhive-backend/pkg/enums"
	pkgerrors "github.com/offerhive/offerhive-backend/pkg/errors"
)

func TestEnsureIdempotencyKey(t *testing.T) {
	c := &Client{}
	// Provided key should be used verbatim.
	if got := c.ensureIdempotencyKey("pref", "custom-key"); got != "custom-key" {
		t.Fatalf("expected provided key, got %q", got)
	}
	// Empty key should be generated and include prefix.
	if got := c.ensureIdempotencyKey("prefix", ""); !strings.HasPrefix(got, "prefix-") {
		t.Fatalf("generated idempotency key %q missing prefix", got)
	}
}

func TestRedact(t *testing.T) {
	c := &Client{}
	out := c.redact("payment_token", "abc123")
	if out != "[REDACTED]" {
		t.Fatalf("expected redacted value, got %v", out)
	}
	if v := c.redact("status", "ok"); v != "ok" {
		t.Fatalf("unexpected redaction for safe key")
	}
	if v := c.redact("buyer_email", "a@b.c"); v != "[REDACTED]" {
		t.Fatalf("expected email to be redacted, got %v", v)
	}
}

func TestToCents(t *testing.T) {
	tests := []struct {
		amount string
		cents  int64
	}{
		{"0", 0},
		{"1", 100},
		{"99.99", 9999},
		{"120.50", 12050},
		{"0.01", 1},
	}
	for _, tt := range tests {
		if got := toCents(decimal.RequireFromString(tt.amount)); got != tt.cents {
			t.Fatalf("toCents(%s) expected %d got %d", tt.amount, tt.cents, got)
		}
	}
}

func TestIntentCreateParamsToRequest(t *testing.T) {
	params := IntentCreateParams{
		Amount:      decimal.RequireFromString("120.50"),
		PlatformFee: decimal.RequireFromString("6.03"),
		Currency:    enums.CurrencyUSD,
		LocationID:  "loc-1",
		SourceID:    "cnon:card-nonce",
		ReferenceID: "offer-123",
	}
	req := params.toSquareRequest("key-1")

	if req.IdempotencyKey != "key-1" {
		t.Fatalf("unexpected idempotency key %s", req.IdempotencyKey)
	}
	if req.AmountMoney == nil || *req.AmountMoney.Amount != 12050 {
		t.Fatalf("amount money not converted to cents")
	}
	if req.AppFeeMoney == nil || *req.AppFeeMoney.Amount != 603 {
		t.Fatalf("app fee money not converted to cents")
	}
	if req.Autocomplete == nil || !*req.Autocomplete {
		t.Fatalf("expected autocomplete payments")
	}
	if req.ReferenceID == nil || *req.ReferenceID != "offer-123" {
		t.Fatalf("missing reference id")
	}
}

func TestIntentCreateParamsOmitsZeroFee(t *testing.T) {
	params := IntentCreateParams{
		Amount:   decimal.RequireFromString("10.00"),
		Currency: enums.CurrencyUSD,
		SourceID: "cnon:card-nonce",
	}
	req := params.toSquareRequest("key-1")
	if req.AppFeeMoney != nil {
		t.Fatalf("expected no app fee for zero platform fee")
	}
}

func TestMapPaymentStatus(t *testing.T) {
	tests := []struct {
		raw  string
		want enums.PaymentStatus
	}{
		{"COMPLETED", enums.PaymentStatusSucceeded},
		{"completed", enums.PaymentStatusSucceeded},
		{"CANCELED", enums.PaymentStatusCancelled},
		{"FAILED", enums.PaymentStatusFailed},
		{"APPROVED", enums.PaymentStatusPending},
		{"PENDING", enums.PaymentStatusPending},
		{"", enums.PaymentStatusPending},
	}
	for _, tt := range tests {
		if got := MapPaymentStatus(tt.raw); got != tt.want {
			t.Fatalf("MapPaymentStatus(%q) expected %s got %s", tt.raw, tt.want, got)
		}
	}
}

func TestDomainCodeForStatus(t *testing.T) {
	tests := []struct {
		status int
		code   pkgerrors.Code
	}{
		{http.StatusUnauthorized, pkgerrors.CodeUnauthorized},
		{http.StatusForbidden, pkgerrors.CodeForbidden},
		{http.StatusNotFound, pkgerrors.CodeNotFound},
		{http.StatusConflict, pkgerrors.CodeConflict},
		{http.StatusTooManyRequests, pkgerrors.CodeRateLimit},
		{http.StatusBadRequest, pkgerrors.CodeValidation},
		{http.StatusUnprocessableEntity, pkgerrors.CodeStateConflict},
		{http.StatusInternalServerError, pkgerrors.CodeDependency},
	}
	for _, tt := range tests {
		if got := domainCodeForStatus(tt.status); got != tt.code {
			t.Fatalf("status %d expected %s got %s", tt.status, tt.code, got)
		}
	}
}

func TestMapSquareError(t *testing.T) {
	c := &Client{}
	table := []struct {
		name     string
		status   int
		payload  string
		wantCode pkgerrors.Code
	}{
		{
			name:     "authentication error",
			status:   http.StatusUnauthorized,
			payload:  `{"errors":[{"category":"AUTHENTICATION_ERROR","code":"UNAUTHORIZED"}]}`,
			wantCode: pkgerrors.CodeUnauthorized,
		},
		{
			name:     "idempotency key reused",
			status:   http.StatusConflict,
			payload:  `{"errors":[{"category":"API_ERROR","code":"IDEMPOTENCY_KEY_REUSED"}]}`,
			wantCode: pkgerrors.CodeIdempotency,
		},
		{
			name:     "server error",
			status:   http.StatusBadGateway,
			payload:  `{"errors":[{"category":"API_ERROR","code":"INTERNAL_SERVER_ERROR"}]}`,
			wantCode: pkgerrors.CodeDependency,
		},
	}
	for _, tt := range table {
		err := sqcore.NewAPIError(tt.status, errors.New(tt.payload))
		mapped := c.mapSquareError(err, "operation")
		if mapped == nil {
			t.Fatalf("%s: expected error", tt.name)
		}
		typed := pkgerrors.As(mapped)
		if typed == nil {
			t.Fatalf("%s: result is not pkgerror", tt.name)
		}
		if typed.Code() != tt.wantCode {
			t.Fatalf("%s: expected code %s, got %s", tt.name, tt.wantCode, typed.Code())
		}
	}
}

func TestExtractSquareErrors(t *testing.T) {
	c := &Client{}
	payload := `{"errors":[{"category":"API_ERROR","code":"BAD_REQUEST","detail":"oops"}]}`
	apiErr := sqcore.NewAPIError(http.StatusBadRequest, errors.New(payload))
	got := c.extractSquareErrors(apiErr)
	if len(got) != 1 {
		t.Fatalf("expected 1 error, got %d", len(got))
	}
	if got[0].GetCode() != sq.ErrorCodeBadRequest {
		t.Fatalf("unexpected error code %s", got[0].GetCode())
	}
}
