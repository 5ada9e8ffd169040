package routes

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/offerhive/offerhive-backend/api/controllers"
	webhookcontrollers "github.com/offerhive/offerhive-backend/api/controllers/webhooks"
	"github.com/offerhive/offerhive-backend/api/middleware"
	"github.com/offerhive/offerhive-backend/internal/forms"
	"github.com/offerhive/offerhive-backend/internal/merchants"
	"github.com/offerhive/offerhive-backend/internal/notifications"
	"github.com/offerhive/offerhive-backend/internal/offers"
	squarewebhook "github.com/offerhive/offerhive-backend/internal/webhooks/square"
	"github.com/offerhive/offerhive-backend/pkg/config"
	"github.com/offerhive/offerhive-backend/pkg/db"
	"github.com/offerhive/offerhive-backend/pkg/logger"
	"github.com/offerhive/offerhive-backend/pkg/metrics"
	"github.com/offerhive/offerhive-backend/pkg/redis"
	"github.com/offerhive/offerhive-backend/pkg/square"
)

// Deps carries everything the router wires into handlers.
type Deps struct {
	Config        *config.Config
	Logger        *logger.Logger
	DB            db.Pinger
	Redis         *redis.Client
	Square        *square.Client
	Merchants     merchants.Service
	Forms         forms.Service
	Offers        offers.Service
	Notifications notifications.Service
	WebhookSvc    webhookcontrollers.SquareWebhookService
	WebhookGuard  *squarewebhook.IdempotencyGuard
	WebhookMx     *metrics.WebhookMetrics
	PromRegistry  *prometheus.Registry
}

func NewRouter(d Deps) http.Handler {
	cfg := d.Config
	logg := d.Logger

	r := chi.NewRouter()
	r.Use(
		middleware.Recoverer(logg),
		middleware.RequestID(logg),
		middleware.Logging(logg),
		middleware.CORS(cfg.CORS),
	)

	loginPolicy := middleware.NewAuthRateLimitPolicy(
		"login",
		cfg.RateLimit.LoginWindow,
		cfg.RateLimit.LoginIPLimit,
		cfg.RateLimit.LoginEmailLimit,
	)
	registerPolicy := middleware.NewAuthRateLimitPolicy(
		"register",
		cfg.RateLimit.RegisterWindow,
		cfg.RateLimit.RegisterIPLimit,
		cfg.RateLimit.RegisterEmailLimit,
	)

	r.Route("/health", func(r chi.Router) {
		r.Get("/live", controllers.HealthLive(cfg))
		r.Get("/ready", controllers.HealthReady(cfg, logg, d.DB, d.Redis))
	})

	if d.PromRegistry != nil {
		r.Method(http.MethodGet, "/metrics", promhttp.HandlerFor(d.PromRegistry, promhttp.HandlerOpts{}))
	}

	r.Route("/api/v1/webhooks", func(r chi.Router) {
		r.Post("/square", webhookcontrollers.SquareWebhook(d.WebhookSvc, d.Square, d.WebhookGuard, d.WebhookMx, logg))
	})

	r.Route("/api/v1/auth", func(r chi.Router) {
		r.With(middleware.AuthRateLimit(loginPolicy, d.Redis, logg)).Post("/login", controllers.AuthLogin(d.Merchants, logg))
		r.With(middleware.AuthRateLimit(registerPolicy, d.Redis, logg)).Post("/register", controllers.AuthRegister(d.Merchants, logg))
	})

	// Buyer-facing surface for the embedded widget. No auth, throttled
	// per IP, idempotent on the money-moving posts.
	r.Route("/api/public", func(r chi.Router) {
		r.Use(middleware.SubmitRateLimit(d.Redis, cfg.RateLimit.SubmitIPLimit, cfg.RateLimit.SubmitWindow, logg))
		r.Use(middleware.Idempotency(d.Redis, logg))

		r.Route("/forms/{formId}", func(r chi.Router) {
			r.Get("/", controllers.FormGet(d.Forms, logg))
			r.Post("/offers", controllers.OfferSubmit(d.Offers, logg))
		})
		r.Route("/offers/{offerId}", func(r chi.Router) {
			r.Get("/", controllers.OfferGet(d.Offers, logg))
			r.Post("/deposit-intent", controllers.OfferDepositIntent(d.Offers, logg))
			r.Post("/cancel", controllers.OfferCancel(d.Offers, logg))
		})
	})

	// Merchant dashboard surface.
	r.Route("/api/v1", func(r chi.Router) {
		r.Use(middleware.Auth(cfg.JWT, logg))
		r.Use(middleware.Idempotency(d.Redis, logg))

		r.Get("/me", controllers.MerchantProfile(d.Merchants, logg))

		r.Route("/forms", func(r chi.Router) {
			r.Get("/", controllers.FormList(d.Forms, logg))
			r.Post("/", controllers.FormCreate(d.Forms, logg))
			r.Patch("/{formId}/status", controllers.FormSetStatus(d.Forms, logg))
			r.Delete("/{formId}", controllers.FormDelete(d.Forms, logg))
			r.Get("/{formId}/offers", controllers.FormOfferList(d.Offers, logg))
		})

		r.Route("/offers", func(r chi.Router) {
			r.Get("/", controllers.MerchantOfferList(d.Offers, logg))
			r.Post("/{offerId}/accept", controllers.OfferAccept(d.Offers, logg))
			r.Post("/{offerId}/reject", controllers.OfferReject(d.Offers, logg))
			r.Post("/{offerId}/compensate", controllers.OfferCompensate(d.Offers, logg))
		})

		r.Route("/notifications", func(r chi.Router) {
			r.Get("/", controllers.ListNotifications(d.Notifications, logg))
			r.Post("/{notificationId}/read", controllers.MarkNotificationRead(d.Notifications, logg))
			r.Post("/read-all", controllers.MarkAllNotificationsRead(d.Notifications, logg))
		})
	})

	return r
}
