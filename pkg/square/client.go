package square

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	sq "github.com/square/square-go-sdk"
	sqclient "github.com/square/square-go-sdk/client"
	sqcore "github.com/square/square-go-sdk/core"
	sqoption "github.com/square/square-go-sdk/option"

	"github.com/offerhive/offerhive-backend/pkg/config"
	"github.com/offerhive/offerhive-backend/pkg/enums"
	pkgerrors "github.com/offerhive/offerhive-backend/pkg/errors"
	"github.com/offerhive/offerhive-backend/pkg/logger"
	"github.com/offerhive/offerhive-backend/pkg/metrics"
)

const (
	sandboxEnv    = "sandbox"
	productionEnv = "production"
)

var (
	errAccessTokenRequired   = errors.New("square access token is required")
	errWebhookSecretRequired = errors.New("square webhook secret is required")
	errInvalidSquareEnv      = fmt.Errorf("square environment must be %q or %q", sandboxEnv, productionEnv)
	errLoggerRequired        = errors.New("square logger is required")
)

var baseURLs = map[string]string{
	sandboxEnv:    "https://connect.squareupsandbox.com",
	productionEnv: "https://connect.squareup.com",
}

// Intent is the platform's view of one gateway payment attempt.
type Intent struct {
	ID       string
	Status   enums.PaymentStatus
	Amount   decimal.Decimal
	Currency enums.Currency
}

// RefundResult reports the outcome of a refund request.
type RefundResult struct {
	ID     string
	Status enums.PaymentStatus
}

// Client exposes the Square payment primitives with centralized auth,
// logging, idempotency, timeouts, and error mapping.
type Client struct {
	sdk           *sqclient.Client
	accessToken   string
	environment   string
	webhookSecret string
	locationID    string
	baseURL       string
	callTimeout   time.Duration
	logger        *logger.Logger
	metrics       *metrics.GatewayMetrics
}

// NewClient initializes the Square wrapper and validates the credentials.
func NewClient(ctx context.Context, cfg config.SquareConfig, gw config.GatewayConfig, logg *logger.Logger, gm *metrics.GatewayMetrics) (*Client, error) {
	if logg == nil {
		return nil, errLoggerRequired
	}
	env, err := normalizeEnv(cfg.Env())
	if err != nil {
		return nil, err
	}

	accessToken := strings.TrimSpace(cfg.AccessToken)
	if accessToken == "" {
		return nil, errAccessTokenRequired
	}

	webhookSecret := strings.TrimSpace(cfg.WebhookSecret)
	if webhookSecret == "" {
		return nil, errWebhookSecretRequired
	}

	baseURL := baseURLs[env]
	sdk := sqclient.NewClient(
		sqoption.WithBaseURL(baseURL),
		sqoption.WithToken(accessToken),
	)

	c := &Client{
		sdk:           sdk,
		accessToken:   accessToken,
		environment:   env,
		webhookSecret: webhookSecret,
		locationID:    strings.TrimSpace(cfg.LocationID),
		baseURL:       baseURL,
		callTimeout:   gw.CallTimeout,
		logger:        logg,
		metrics:       gm,
	}

	logg.Info(ctx, "square client initialized")
	return c, nil
}

// Environment reports the normalized Square environment.
func (c *Client) Environment() string {
	if c == nil {
		return ""
	}
	return c.environment
}

// SigningSecret returns the Square webhook secret.
func (c *Client) SigningSecret() string {
	if c == nil {
		return ""
	}
	return c.webhookSecret
}

// DefaultLocationID returns the fallback location when a merchant has none.
func (c *Client) DefaultLocationID() string {
	if c == nil {
		return ""
	}
	return c.locationID
}

// NewIdempotencyKey returns a unique key for Square operations.
func (c *Client) NewIdempotencyKey(prefix string) string {
	key := strings.TrimSpace(prefix)
	if key == "" {
		key = "oh"
	}
	return fmt.Sprintf("%s-%s", key, uuid.NewString())
}

// CreateIntent charges the buyer and splits the platform fee off the
// merchant's take via AppFeeMoney.
func (c *Client) CreateIntent(ctx context.Context, params IntentCreateParams) (*Intent, error) {
	req := params.toSquareRequest(c.ensureIdempotencyKey("payment.create", params.IdempotencyKey))
	if req.LocationID == nil && c.locationID != "" {
		req.LocationID = &c.locationID
	}
	c.log(ctx, "request", "create_intent", map[string]any{
		"amount":       params.Amount.String(),
		"platform_fee": params.PlatformFee.String(),
		"currency":     string(params.Currency),
		"reference_id": params.ReferenceID,
	})

	ctx, cancel := c.withTimeout(ctx)
	defer cancel()

	started := time.Now()
	resp, err := c.sdk.Payments.Create(ctx, req)
	c.metrics.ObserveCall("create_intent", time.Since(started), err)
	if err != nil {
		c.log(ctx, "error", "create_intent", map[string]any{"error": err.Error()})
		return nil, c.mapSquareError(err, "create payment")
	}

	payment := resp.GetPayment()
	intent := &Intent{
		ID:       stringValue(payment.GetID()),
		Status:   MapPaymentStatus(stringValue(payment.GetStatus())),
		Amount:   params.Amount,
		Currency: params.Currency,
	}
	c.log(ctx, "response", "create_intent", map[string]any{
		"intent_id": intent.ID,
		"status":    string(intent.Status),
	})
	return intent, nil
}

// RetrieveStatus looks up the current state of an intent at the gateway.
func (c *Client) RetrieveStatus(ctx context.Context, intentID string) (*Intent, error) {
	req := &sq.GetPaymentsRequest{PaymentID: intentID}
	c.log(ctx, "request", "retrieve_status", map[string]any{"intent_id": intentID})

	ctx, cancel := c.withTimeout(ctx)
	defer cancel()

	started := time.Now()
	resp, err := c.sdk.Payments.Get(ctx, req)
	c.metrics.ObserveCall("retrieve_status", time.Since(started), err)
	if err != nil {
		c.log(ctx, "error", "retrieve_status", map[string]any{"error": err.Error()})
		return nil, c.mapSquareError(err, "get payment")
	}

	payment := resp.GetPayment()
	intent := &Intent{
		ID:     stringValue(payment.GetID()),
		Status: MapPaymentStatus(stringValue(payment.GetStatus())),
	}
	if money := payment.GetAmountMoney(); money != nil {
		intent.Amount = fromCents(int64Value(money.GetAmount()))
		if money.GetCurrency() != nil {
			intent.Currency = enums.Currency(*money.GetCurrency())
		}
	}
	c.log(ctx, "response", "retrieve_status", map[string]any{
		"intent_id": intent.ID,
		"status":    string(intent.Status),
	})
	return intent, nil
}

// Refund returns money to the buyer for a previously captured intent.
func (c *Client) Refund(ctx context.Context, params RefundParams) (*RefundResult, error) {
	req := params.toSquareRequest(c.ensureIdempotencyKey("refund.create", params.IdempotencyKey))
	c.log(ctx, "request", "refund", map[string]any{
		"intent_id": params.IntentID,
		"amount":    params.Amount.String(),
	})

	ctx, cancel := c.withTimeout(ctx)
	defer cancel()

	started := time.Now()
	resp, err := c.sdk.Refunds.RefundPayment(ctx, req)
	c.metrics.ObserveCall("refund", time.Since(started), err)
	if err != nil {
		c.log(ctx, "error", "refund", map[string]any{"error": err.Error()})
		return nil, c.mapSquareError(err, "refund payment")
	}

	refund := resp.GetRefund()
	result := &RefundResult{
		ID:     refund.GetID(),
		Status: MapRefundStatus(stringValue(refund.GetStatus())),
	}
	c.log(ctx, "response", "refund", map[string]any{
		"refund_id": result.ID,
		"status":    string(result.Status),
	})
	return result, nil
}

func (c *Client) withTimeout(ctx context.Context) (context.Context, context.CancelFunc) {
	if c.callTimeout <= 0 {
		return ctx, func() {}
	}
	return context.WithTimeout(ctx, c.callTimeout)
}

func (c *Client) ensureIdempotencyKey(prefix, provided string) string {
	if strings.TrimSpace(provided) != "" {
		return provided
	}
	return c.NewIdempotencyKey(prefix)
}

func (c *Client) log(ctx context.Context, phase, op string, fields map[string]any) {
	if c == nil || c.logger == nil {
		return
	}
	logFields := map[string]any{
		"operation": op,
		"phase":     phase,
	}
	for k, v := range fields {
		logFields[k] = c.redact(k, v)
	}
	ctx = c.logger.WithFields(ctx, logFields)
	switch phase {
	case "error":
		c.logger.Error(ctx, fmt.Sprintf("square %s", op), errors.New(fmt.Sprint(fields["error"])))
	default:
		c.logger.Info(ctx, fmt.Sprintf("square %s", phase))
	}
}

func (c *Client) redact(key string, value any) any {
	lower := strings.ToLower(key)
	for _, sensitive := range []string{"card", "nonce", "token", "cvv", "cvc", "secret", "email", "phone"} {
		if strings.Contains(lower, sensitive) {
			return "[REDACTED]"
		}
	}
	return value
}

func (c *Client) mapSquareError(err error, op string) error {
	if err == nil {
		return nil
	}
	if errors.Is(err, context.DeadlineExceeded) {
		return pkgerrors.Wrap(pkgerrors.CodeDependency, err, fmt.Sprintf("square %s timed out", op))
	}
	var apiErr *sqcore.APIError
	if errors.As(err, &apiErr) {
		code := domainCodeForStatus(apiErr.StatusCode)
		for _, sqErr := range c.extractSquareErrors(apiErr) {
			if sqErr == nil {
				continue
			}
			if sqErr.Code == sq.ErrorCodeIdempotencyKeyReused {
				code = pkgerrors.CodeIdempotency
				break
			}
			if sqErr.Category == sq.ErrorCategoryAuthenticationError {
				code = pkgerrors.CodeUnauthorized
				break
			}
		}
		return pkgerrors.Wrap(code, err, fmt.Sprintf("square %s failed", op))
	}
	return pkgerrors.Wrap(pkgerrors.CodeDependency, err, fmt.Sprintf("square %s failed", op))
}

func (c *Client) extractSquareErrors(apiErr *sqcore.APIError) []*sq.Error {
	if apiErr == nil {
		return nil
	}
	inner := apiErr.Unwrap()
	if inner == nil {
		return nil
	}
	raw := strings.TrimSpace(inner.Error())
	if raw == "" {
		return nil
	}
	var payload struct {
		Errors []*sq.Error `json:"errors"`
	}
	if err := json.Unmarshal([]byte(raw), &payload); err != nil {
		return nil
	}
	return payload.Errors
}

func domainCodeForStatus(status int) pkgerrors.Code {
	switch status {
	case http.StatusUnauthorized:
		return pkgerrors.CodeUnauthorized
	case http.StatusForbidden:
		return pkgerrors.CodeForbidden
	case http.StatusNotFound:
		return pkgerrors.CodeNotFound
	case http.StatusConflict:
		return pkgerrors.CodeConflict
	case http.StatusTooManyRequests:
		return pkgerrors.CodeRateLimit
	case http.StatusBadRequest:
		return pkgerrors.CodeValidation
	case http.StatusUnprocessableEntity:
		return pkgerrors.CodeStateConflict
	default:
		if status >= 400 && status < 500 {
			return pkgerrors.CodeValidation
		}
		return pkgerrors.CodeDependency
	}
}

func stringValue(ptr *string) string {
	if ptr == nil {
		return ""
	}
	return *ptr
}

func int64Value(ptr *int64) int64 {
	if ptr == nil {
		return 0
	}
	return *ptr
}

func fromCents(cents int64) decimal.Decimal {
	return decimal.New(cents, -2)
}

func normalizeEnv(raw string) (string, error) {
	env := strings.TrimSpace(strings.ToLower(raw))
	if env == "" {
		env = sandboxEnv
	}
	switch env {
	case sandboxEnv, productionEnv:
		return env, nil
	default:
		return "", errInvalidSquareEnv
	}
}
