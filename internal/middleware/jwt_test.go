package middleware

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/rosterly/rosterly-backend/internal/config"
	"github.com/rosterly/rosterly-backend/internal/service"
	"golang.org/x/crypto/bcrypt"
)

func newAuthRouter(t *testing.T) (*gin.Engine, *service.AuthService) {
	t.Helper()
	gin.SetMode(gin.TestMode)

	cfg := &config.Config{
		JWTSecret:     "test-secret",
		JWTExpiry:     time.Hour,
		BcryptCost:    bcrypt.MinCost,
		AdminEmail:    "admin@example.com",
		AdminPassword: "correct-horse",
	}
	auth, err := service.NewAuthService(cfg, nil)
	if err != nil {
		t.Fatalf("NewAuthService: %v", err)
	}

	r := gin.New()
	r.GET("/protected", RequireAdminJWT(auth), func(c *gin.Context) {
		claims := GetClaims(c)
		c.JSON(http.StatusOK, gin.H{"email": claims.Email})
	})
	return r, auth
}

func TestRequireAdminJWT(t *testing.T) {
	r, auth := newAuthRouter(t)

	token, err := auth.Login(context.Background(),"admin@example.com", "correct-horse")
	if err != nil {
		t.Fatalf("Login: %v", err)
	}

	// Valid token passes and exposes the claims.
	req := httptest.NewRequest(http.MethodGet, "/protected", nil)
	req.Header.Set("Authorization", "Bearer "+token)
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	if w.Code != http.StatusOK {
		t.Errorf("valid token status = %d, body: %s", w.Code, w.Body.String())
	}

	// Missing header is rejected.
	req = httptest.NewRequest(http.MethodGet, "/protected", nil)
	w = httptest.NewRecorder()
	r.ServeHTTP(w, req)
	if w.Code != http.StatusUnauthorized {
		t.Errorf("missing header status = %d, want 401", w.Code)
	}

	// Malformed token is rejected.
	req = httptest.NewRequest(http.MethodGet, "/protected", nil)
	req.Header.Set("Authorization", "Bearer garbage")
	w = httptest.NewRecorder()
	r.ServeHTTP(w, req)
	if w.Code != http.StatusUnauthorized {
		t.Errorf("garbage token status = %d, want 401", w.Code)
	}

	// Wrong scheme is rejected.
	req = httptest.NewRequest(http.MethodGet, "/protected", nil)
	req.Header.Set("Authorization", "Basic "+token)
	w = httptest.NewRecorder()
	r.ServeHTTP(w, req)
	if w.Code != http.StatusUnauthorized {
		t.Errorf("wrong scheme status = %d, want 401", w.Code)
	}
}
