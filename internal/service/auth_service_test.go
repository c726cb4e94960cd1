package service

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/rosterly/rosterly-backend/internal/config"
	"golang.org/x/crypto/bcrypt"
)

func newAuthFixture(t *testing.T) *AuthService {
	t.Helper()
	cfg := &config.Config{
		JWTSecret:     "test-secret",
		JWTExpiry:     time.Hour,
		BcryptCost:    bcrypt.MinCost,
		AdminEmail:    "admin@example.com",
		AdminPassword: "correct-horse",
	}
	auth, err := NewAuthService(cfg, nil)
	if err != nil {
		t.Fatalf("NewAuthService: %v", err)
	}
	return auth
}

func TestLoginAndValidateToken(t *testing.T) {
	auth := newAuthFixture(t)
	ctx := context.Background()

	token, err := auth.Login(ctx, "admin@example.com", "correct-horse")
	if err != nil {
		t.Fatalf("Login: %v", err)
	}
	if token == "" {
		t.Fatal("Login returned empty token")
	}

	claims, err := auth.ValidateToken(token)
	if err != nil {
		t.Fatalf("ValidateToken: %v", err)
	}
	if claims.Email != "admin@example.com" {
		t.Errorf("Email = %q", claims.Email)
	}
	if claims.ID == "" {
		t.Error("token has no JTI")
	}

	// Without Redis there is no session store to consult.
	if err := auth.ValidateSession(ctx, claims); err != nil {
		t.Errorf("ValidateSession: %v", err)
	}
}

func TestLoginRejectsBadCredentials(t *testing.T) {
	auth := newAuthFixture(t)
	ctx := context.Background()

	if _, err := auth.Login(ctx, "admin@example.com", "wrong"); !errors.Is(err, ErrInvalidCredentials) {
		t.Errorf("wrong password: got %v, want ErrInvalidCredentials", err)
	}
	if _, err := auth.Login(ctx, "intruder@example.com", "correct-horse"); !errors.Is(err, ErrInvalidCredentials) {
		t.Errorf("wrong email: got %v, want ErrInvalidCredentials", err)
	}
}

func TestValidateTokenRejectsForgedToken(t *testing.T) {
	auth := newAuthFixture(t)

	if _, err := auth.ValidateToken("not.a.token"); err == nil {
		t.Error("garbage token accepted")
	}

	// Token signed with a different secret must be rejected.
	otherCfg := &config.Config{
		JWTSecret:     "other-secret",
		JWTExpiry:     time.Hour,
		BcryptCost:    bcrypt.MinCost,
		AdminEmail:    "admin@example.com",
		AdminPassword: "correct-horse",
	}
	other, err := NewAuthService(otherCfg, nil)
	if err != nil {
		t.Fatalf("NewAuthService: %v", err)
	}
	forged, err := other.Login(context.Background(), "admin@example.com", "correct-horse")
	if err != nil {
		t.Fatalf("Login: %v", err)
	}
	if _, err := auth.ValidateToken(forged); err == nil {
		t.Error("token with wrong signature accepted")
	}
}
