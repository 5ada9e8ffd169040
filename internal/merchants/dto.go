package merchants

import (
	"time"

	"github.com/google/uuid"

	"github.com/offerhive/offerhive-backend/pkg/db/models"
	"github.com/offerhive/offerhive-backend/pkg/enums"
)

// RegisterRequest contains the payload for onboarding a new merchant.
type RegisterRequest struct {
	Email        string `json:"email" validate:"required,email"`
	Password     string `json:"password" validate:"required,min=8"`
	BusinessName string `json:"business_name" validate:"required"`
}

// LoginRequest captures the credentials sent to the login endpoint.
type LoginRequest struct {
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password" validate:"required"`
}

// MerchantDTO is the public shape of a merchant account.
type MerchantDTO struct {
	ID               uuid.UUID      `json:"id"`
	Email            string         `json:"email"`
	BusinessName     string         `json:"business_name"`
	PlanTier         enums.PlanTier `json:"plan_tier"`
	SquareLocationID *string        `json:"square_location_id,omitempty"`
	CreatedAt        time.Time      `json:"created_at"`
}

// AuthResponse contains the token and merchant produced by register/login.
type AuthResponse struct {
	AccessToken string       `json:"access_token"`
	Merchant    *MerchantDTO `json:"merchant"`
}

// FromModel maps a merchant row to its DTO.
func FromModel(m *models.Merchant) *MerchantDTO {
	if m == nil {
		return nil
	}
	return &MerchantDTO{
		ID:               m.ID,
		Email:            m.Email,
		BusinessName:     m.BusinessName,
		PlanTier:         m.PlanTier,
		SquareLocationID: m.SquareLocationID,
		CreatedAt:        m.CreatedAt,
	}
}
