package auth

import (
	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
	"github.com/offerhive/offerhive-backend/pkg/enums"
)

// AccessTokenPayload captures the data available when minting a JWT.
type AccessTokenPayload struct {
	MerchantID uuid.UUID
	PlanTier   enums.PlanTier
	JTI        string
}

// AccessTokenClaims represents the typed JWT issued to merchants.
type AccessTokenClaims struct {
	MerchantID uuid.UUID      `json:"merchant_id"`
	PlanTier   enums.PlanTier `json:"plan_tier"`
	jwt.RegisteredClaims
}
