package middleware

import (
	"context"
	"net/http"
	"strings"

	"github.com/offerhive/offerhive-backend/api/responses"
	pkgauth "github.com/offerhive/offerhive-backend/pkg/auth"
	"github.com/offerhive/offerhive-backend/pkg/config"
	pkgerrors "github.com/offerhive/offerhive-backend/pkg/errors"
	"github.com/offerhive/offerhive-backend/pkg/logger"
)

// Auth validates a bearer token and seeds the request context with the claims.
func Auth(cfg config.JWTConfig, logg *logger.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			raw := strings.TrimSpace(r.Header.Get("Authorization"))
			if raw == "" {
				responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeUnauthorized, "missing credentials"))
				return
			}

			token := raw
			if strings.HasPrefix(strings.ToLower(token), "bearer ") {
				token = strings.TrimSpace(token[7:])
			}
			if token == "" {
				responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeUnauthorized, "missing credentials"))
				return
			}

			claims, err := pkgauth.ParseAccessToken(cfg, token)
			if err != nil {
				responses.WriteError(r.Context(), logg, w, pkgerrors.Wrap(pkgerrors.CodeUnauthorized, err, "invalid token"))
				return
			}

			ctx := context.WithValue(r.Context(), ctxMerchantID, claims.MerchantID.String())
			ctx = context.WithValue(ctx, ctxPlanTier, string(claims.PlanTier))

			if logg != nil {
				ctx = logg.WithMerchantID(ctx, claims.MerchantID.String())
				ctx = logg.WithFields(ctx, map[string]any{
					"plan_tier": string(claims.PlanTier),
				})
			}

			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}
