package merchants

import (
	"context"
	"strings"
	"testing"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/offerhive/offerhive-backend/pkg/config"
	"github.com/offerhive/offerhive-backend/pkg/db/models"
	"github.com/offerhive/offerhive-backend/pkg/enums"
	pkgerrors "github.com/offerhive/offerhive-backend/pkg/errors"
)

type stubRepo struct {
	byEmail   map[string]*models.Merchant
	byID      map[uuid.UUID]*models.Merchant
	createErr error
}

func newStubRepo() *stubRepo {
	return &stubRepo{
		byEmail: make(map[string]*models.Merchant),
		byID:    make(map[uuid.UUID]*models.Merchant),
	}
}

func (s *stubRepo) Create(ctx context.Context, merchant *models.Merchant) error {
	if s.createErr != nil {
		return s.createErr
	}
	if merchant.ID == uuid.Nil {
		merchant.ID = uuid.New()
	}
	s.byEmail[merchant.Email] = merchant
	s.byID[merchant.ID] = merchant
	return nil
}

func (s *stubRepo) FindByEmail(ctx context.Context, email string) (*models.Merchant, error) {
	if merchant, ok := s.byEmail[email]; ok {
		return merchant, nil
	}
	return nil, gorm.ErrRecordNotFound
}

func (s *stubRepo) FindByID(ctx context.Context, id uuid.UUID) (*models.Merchant, error) {
	if merchant, ok := s.byID[id]; ok {
		return merchant, nil
	}
	return nil, gorm.ErrRecordNotFound
}

func testServiceParams(repo merchantRepository) ServiceParams {
	return ServiceParams{
		Repo: repo,
		JWTConfig: config.JWTConfig{
			Secret:            "test-secret",
			Issuer:            "offerhive",
			ExpirationMinutes: 30,
		},
		PasswordConfig: config.PasswordConfig{
			ArgonMemoryKB:    8192,
			ArgonTime:        1,
			ArgonParallelism: 1,
			ArgonSaltLen:     16,
			ArgonKeyLen:      32,
		},
	}
}

func TestRegisterAndLogin(t *testing.T) {
	repo := newStubRepo()
	svc, err := NewService(testServiceParams(repo))
	if err != nil {
		t.Fatalf("new service: %v", err)
	}

	resp, err := svc.Register(context.Background(), RegisterRequest{
		Email:        "Owner@Example.COM",
		Password:     "hunter2hunter2",
		BusinessName: "Ada's Amps",
	})
	if err != nil {
		t.Fatalf("register: %v", err)
	}
	if resp.AccessToken == "" {
		t.Fatal("expected access token")
	}
	if resp.Merchant.Email != "owner@example.com" {
		t.Fatalf("email not normalized: %s", resp.Merchant.Email)
	}
	if resp.Merchant.PlanTier != enums.PlanTierFree {
		t.Fatalf("new merchants should start on free tier, got %s", resp.Merchant.PlanTier)
	}
	if stored := repo.byEmail["owner@example.com"]; stored == nil || strings.Contains(stored.PasswordHash, "hunter2") {
		t.Fatal("password must be stored hashed")
	}

	login, err := svc.Login(context.Background(), LoginRequest{
		Email:    "owner@example.com",
		Password: "hunter2hunter2",
	})
	if err != nil {
		t.Fatalf("login: %v", err)
	}
	if login.Merchant.ID != resp.Merchant.ID {
		t.Fatal("login returned a different merchant")
	}
}

func TestRegisterValidation(t *testing.T) {
	svc, _ := NewService(testServiceParams(newStubRepo()))
	cases := []struct {
		name string
		req  RegisterRequest
	}{
		{"missing email", RegisterRequest{Password: "hunter2hunter2", BusinessName: "A"}},
		{"missing business name", RegisterRequest{Email: "a@b.c", Password: "hunter2hunter2"}},
		{"short password", RegisterRequest{Email: "a@b.c", Password: "short", BusinessName: "A"}},
	}
	for _, tc := range cases {
		_, err := svc.Register(context.Background(), tc.req)
		typed := pkgerrors.As(err)
		if typed == nil || typed.Code() != pkgerrors.CodeValidation {
			t.Fatalf("%s: expected validation error, got %v", tc.name, err)
		}
	}
}

func TestLoginWrongPassword(t *testing.T) {
	repo := newStubRepo()
	svc, _ := NewService(testServiceParams(repo))
	if _, err := svc.Register(context.Background(), RegisterRequest{
		Email:        "owner@example.com",
		Password:     "hunter2hunter2",
		BusinessName: "Ada's Amps",
	}); err != nil {
		t.Fatalf("register: %v", err)
	}

	_, err := svc.Login(context.Background(), LoginRequest{
		Email:    "owner@example.com",
		Password: "wrong-password",
	})
	typed := pkgerrors.As(err)
	if typed == nil || typed.Code() != pkgerrors.CodeUnauthorized {
		t.Fatalf("expected unauthorized, got %v", err)
	}
}

func TestLoginUnknownEmail(t *testing.T) {
	svc, _ := NewService(testServiceParams(newStubRepo()))
	_, err := svc.Login(context.Background(), LoginRequest{
		Email:    "ghost@example.com",
		Password: "whatever123",
	})
	typed := pkgerrors.As(err)
	if typed == nil || typed.Code() != pkgerrors.CodeUnauthorized {
		t.Fatalf("expected unauthorized, got %v", err)
	}
}

func TestGetProfile(t *testing.T) {
	repo := newStubRepo()
	svc, _ := NewService(testServiceParams(repo))
	resp, err := svc.Register(context.Background(), RegisterRequest{
		Email:        "owner@example.com",
		Password:     "hunter2hunter2",
		BusinessName: "Ada's Amps",
	})
	if err != nil {
		t.Fatalf("register: %v", err)
	}

	profile, err := svc.GetProfile(context.Background(), resp.Merchant.ID)
	if err != nil {
		t.Fatalf("get profile: %v", err)
	}
	if profile.BusinessName != "Ada's Amps" {
		t.Fatalf("unexpected business name %q", profile.BusinessName)
	}

	_, err = svc.GetProfile(context.Background(), uuid.New())
	typed := pkgerrors.As(err)
	if typed == nil || typed.Code() != pkgerrors.CodeNotFound {
		t.Fatalf("expected not found, got %v", err)
	}
}
