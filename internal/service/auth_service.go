package service

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
	"github.com/rosterly/rosterly-backend/internal/config"
	"golang.org/x/crypto/bcrypt"
)

// Common auth errors.
var (
	ErrInvalidCredentials = errors.New("invalid credentials")
	ErrNoActiveSession    = errors.New("no active session")
)

// Claims extends JWT standard claims with app-specific fields.
type Claims struct {
	jwt.RegisteredClaims
	Email string `json:"email"`
}

// AuthService handles authentication for the single admin account
// provisioned through configuration. Sessions are tracked in Redis so a
// logout invalidates outstanding tokens; with a nil Redis client the
// session check is skipped (tests).
type AuthService struct {
	cfg          *config.Config
	rdb          *redis.Client
	passwordHash string
}

// NewAuthService creates a new AuthService, hashing the configured admin
// password so the plaintext is not kept around.
func NewAuthService(cfg *config.Config, rdb *redis.Client) (*AuthService, error) {
	hash, err := bcrypt.GenerateFromPassword([]byte(cfg.AdminPassword), cfg.BcryptCost)
	if err != nil {
		return nil, fmt.Errorf("hash admin password: %w", err)
	}
	return &AuthService{cfg: cfg, rdb: rdb, passwordHash: string(hash)}, nil
}

// Login checks the credentials and issues a JWT, registering its session.
// A new login replaces any previous session for the account.
func (s *AuthService) Login(ctx context.Context, email, password string) (string, error) {
	if email != s.cfg.AdminEmail {
		return "", ErrInvalidCredentials
	}
	if err := bcrypt.CompareHashAndPassword([]byte(s.passwordHash), []byte(password)); err != nil {
		return "", ErrInvalidCredentials
	}

	jti := uuid.New().String()
	now := time.Now()

	claims := Claims{
		RegisteredClaims: jwt.RegisteredClaims{
			ID:        jti,
			Subject:   email,
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(s.cfg.JWTExpiry)),
		},
		Email: email,
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	signed, err := token.SignedString([]byte(s.cfg.JWTSecret))
	if err != nil {
		return "", fmt.Errorf("sign token: %w", err)
	}

	if s.rdb != nil {
		key := config.CacheKey.AdminSessionKey(email)
		if err := s.rdb.Set(ctx, key, jti, s.cfg.JWTExpiry).Err(); err != nil {
			return "", fmt.Errorf("store session: %w", err)
		}
	}

	return signed, nil
}

// Logout removes the session, invalidating the outstanding token.
func (s *AuthService) Logout(ctx context.Context, claims *Claims) error {
	if s.rdb == nil {
		return nil
	}
	return s.rdb.Del(ctx, config.CacheKey.AdminSessionKey(claims.Email)).Err()
}

// ValidateToken parses and validates a JWT, returning the claims.
func (s *AuthService) ValidateToken(tokenStr string) (*Claims, error) {
	token, err := jwt.ParseWithClaims(tokenStr, &Claims{}, func(t *jwt.Token) (interface{}, error) {
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method: %v", t.Header["alg"])
		}
		return []byte(s.cfg.JWTSecret), nil
	})
	if err != nil {
		return nil, fmt.Errorf("parse token: %w", err)
	}

	claims, ok := token.Claims.(*Claims)
	if !ok || !token.Valid {
		return nil, errors.New("invalid token claims")
	}

	return claims, nil
}

// ValidateSession checks that the token's JTI matches the active session.
func (s *AuthService) ValidateSession(ctx context.Context, claims *Claims) error {
	if s.rdb == nil {
		return nil
	}

	stored, err := s.rdb.Get(ctx, config.CacheKey.AdminSessionKey(claims.Email)).Result()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return ErrNoActiveSession
		}
		return fmt.Errorf("check session: %w", err)
	}
	if stored != claims.ID {
		return errors.New("session invalidated")
	}
	return nil
}
