package auth

import (
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/offerhive/offerhive-backend/pkg/config"
	"github.com/offerhive/offerhive-backend/pkg/enums"
)

func TestMintAndParseAccessToken(t *testing.T) {
	cfg := config.JWTConfig{
		Secret:            "secret",
		Issuer:            "offerhive",
		ExpirationMinutes: 30,
	}
	now := time.Now().UTC()
	merchantID := uuid.New()

	payload := AccessTokenPayload{
		MerchantID: merchantID,
		PlanTier:   enums.PlanTierPro,
	}

	token, err := MintAccessToken(cfg, now, payload)
	if err != nil {
		t.Fatalf("mint access token: %v", err)
	}

	claims, err := ParseAccessToken(cfg, token)
	if err != nil {
		t.Fatalf("parse access token: %v", err)
	}

	if claims.MerchantID != merchantID {
		t.Fatalf("expected merchant_id %s, got %s", merchantID, claims.MerchantID)
	}
	if claims.PlanTier != enums.PlanTierPro {
		t.Fatalf("unexpected plan tier %s", claims.PlanTier)
	}
	if claims.Issuer != cfg.Issuer {
		t.Fatalf("expected issuer %s, got %s", cfg.Issuer, claims.Issuer)
	}
	if claims.ID == "" {
		t.Fatal("expected generated jti")
	}

	exp := now.Add(time.Duration(cfg.ExpirationMinutes) * time.Minute)
	diff := claims.ExpiresAt.Sub(exp)
	if diff < 0 {
		diff = -diff
	}
	if diff >= time.Second {
		t.Fatalf("expected exp roughly %v, got %v (diff %v)", exp.UTC(), claims.ExpiresAt.UTC(), diff)
	}
}

func TestMintAccessTokenRejectsInvalidTier(t *testing.T) {
	cfg := config.JWTConfig{
		Secret:            "secret",
		Issuer:            "offerhive",
		ExpirationMinutes: 30,
	}
	_, err := MintAccessToken(cfg, time.Now(), AccessTokenPayload{
		MerchantID: uuid.New(),
		PlanTier:   enums.PlanTier("platinum"),
	})
	if err == nil {
		t.Fatal("expected invalid plan tier error")
	}
}

func TestParseAccessTokenInvalidSignature(t *testing.T) {
	cfg := config.JWTConfig{
		Secret:            "secret",
		Issuer:            "offerhive",
		ExpirationMinutes: 10,
	}
	token, err := MintAccessToken(cfg, time.Now(), AccessTokenPayload{
		MerchantID: uuid.New(),
		PlanTier:   enums.PlanTierFree,
	})
	if err != nil {
		t.Fatalf("mint access token: %v", err)
	}

	if _, err = ParseAccessToken(cfg, token+"x"); err == nil {
		t.Fatal("expected invalid signature error")
	}
}

func TestParseAccessTokenExpired(t *testing.T) {
	cfg := config.JWTConfig{
		Secret:            "secret",
		Issuer:            "offerhive",
		ExpirationMinutes: 15,
	}
	token, err := MintAccessToken(cfg, time.Now().Add(-time.Hour), AccessTokenPayload{
		MerchantID: uuid.New(),
		PlanTier:   enums.PlanTierBasic,
	})
	if err != nil {
		t.Fatalf("mint access token: %v", err)
	}

	if _, err = ParseAccessToken(cfg, token); err == nil {
		t.Fatal("expected expired token error")
	}
}
