package service

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"

	"github.com/fixmarket/marketplace-system/internal/core/domain"
	"github.com/fixmarket/marketplace-system/internal/core/ports"
)

const testSecret = "test-secret"

func newAuthService(users *stubUserRepo) *AuthService {
	return NewAuthService(users, testSecret, time.Hour)
}

func TestRegisterAndLogin_Roundtrip(t *testing.T) {
	users := newStubUserRepo()
	svc := newAuthService(users)
	ctx := context.Background()

	user, err := svc.Register(ctx, ports.RegisterInput{
		DisplayName: "Ana Torres",
		Email:       "Ana@Example.com",
		Password:    "s3cret-password",
		Role:        domain.RoleClient,
		City:        "Monterrey",
	})
	if err != nil {
		t.Fatalf("register: %v", err)
	}
	if user.Email != "ana@example.com" {
		t.Fatalf("email should be normalized lowercase, got %q", user.Email)
	}
	if user.PasswordHash == "s3cret-password" || user.PasswordHash == "" {
		t.Fatalf("password must be stored hashed")
	}

	token, logged, err := svc.Login(ctx, "ana@example.com", "s3cret-password")
	if err != nil {
		t.Fatalf("login: %v", err)
	}
	if logged.ID != user.ID {
		t.Fatalf("login returned a different user")
	}

	parsed, err := jwt.Parse(token, func(t *jwt.Token) (any, error) {
		return []byte(testSecret), nil
	})
	if err != nil || !parsed.Valid {
		t.Fatalf("token does not verify: %v", err)
	}
	claims := parsed.Claims.(jwt.MapClaims)
	if claims["sub"] != user.ID {
		t.Fatalf("expected sub=%s, got %v", user.ID, claims["sub"])
	}
	if claims["role"] != string(domain.RoleClient) {
		t.Fatalf("expected role claim client, got %v", claims["role"])
	}
}

func TestLogin_WrongPassword(t *testing.T) {
	users := newStubUserRepo()
	svc := newAuthService(users)
	ctx := context.Background()

	if _, err := svc.Register(ctx, ports.RegisterInput{
		DisplayName: "Ana", Email: "ana@example.com", Password: "s3cret-password", Role: domain.RoleClient,
	}); err != nil {
		t.Fatalf("register: %v", err)
	}

	_, _, err := svc.Login(ctx, "ana@example.com", "wrong-password")
	if !errors.Is(err, domain.ErrInvalidCredentials) {
		t.Fatalf("expected ErrInvalidCredentials, got %v", err)
	}
}

func TestLogin_UnknownEmailSameError(t *testing.T) {
	svc := newAuthService(newStubUserRepo())

	// Unknown accounts and bad passwords are indistinguishable to the caller.
	_, _, err := svc.Login(context.Background(), "ghost@example.com", "whatever1")
	if !errors.Is(err, domain.ErrInvalidCredentials) {
		t.Fatalf("expected ErrInvalidCredentials, got %v", err)
	}
}

func TestRegister_Validation(t *testing.T) {
	svc := newAuthService(newStubUserRepo())
	ctx := context.Background()

	cases := []struct {
		name  string
		input ports.RegisterInput
	}{
		{"missing name", ports.RegisterInput{Email: "a@b.com", Password: "longenough", Role: domain.RoleClient}},
		{"short password", ports.RegisterInput{DisplayName: "A", Email: "a@b.com", Password: "short", Role: domain.RoleClient}},
		{"admin self-assignment", ports.RegisterInput{DisplayName: "A", Email: "a@b.com", Password: "longenough", Role: domain.RoleAdmin}},
		{"unknown role", ports.RegisterInput{DisplayName: "A", Email: "a@b.com", Password: "longenough", Role: "plumber"}},
	}
	for _, tc := range cases {
		if _, err := svc.Register(ctx, tc.input); !errors.Is(err, domain.ErrValidation) {
			t.Fatalf("%s: expected ErrValidation, got %v", tc.name, err)
		}
	}
}

func TestRegister_DuplicateEmail(t *testing.T) {
	svc := newAuthService(newStubUserRepo())
	ctx := context.Background()

	input := ports.RegisterInput{
		DisplayName: "Ana", Email: "ana@example.com", Password: "s3cret-password", Role: domain.RoleProfessional,
	}
	if _, err := svc.Register(ctx, input); err != nil {
		t.Fatalf("first register: %v", err)
	}
	_, err := svc.Register(ctx, input)
	if !errors.Is(err, domain.ErrUserExists) {
		t.Fatalf("expected ErrUserExists, got %v", err)
	}
}
