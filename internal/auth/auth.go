package auth

import (
	"context"
	"crypto/subtle"
	"errors"
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
	"golang.org/x/crypto/bcrypt"
)

const RoleAdmin = "admin"

var (
	ErrInvalidCredentials = errors.New("invalid email or password")
	ErrInvalidToken       = errors.New("invalid or expired token")
	ErrSessionRevoked     = errors.New("session revoked")
)

type Claims struct {
	Email string `json:"email"`
	Role  string `json:"role"`
	jwt.RegisteredClaims
}

// SessionStore is the server-side allowlist backing token revocation.
// Entries expire with the token; dropping one logs the session out for real.
type SessionStore interface {
	Put(ctx context.Context, id, email string, ttl time.Duration) error
	Alive(ctx context.Context, id string) (bool, error)
	Drop(ctx context.Context, id string) error
}

// Auth issues and verifies the admin credential. There is exactly one admin
// principal, configured by email + bcrypt hash; every mutating route checks
// the resulting token server-side.
type Auth struct {
	Secret            []byte
	AdminEmail        string
	AdminPasswordHash string
	TTL               time.Duration
	Sessions          SessionStore
}

func (a *Auth) Login(ctx context.Context, email, password string) (string, time.Time, error) {
	if subtle.ConstantTimeCompare([]byte(email), []byte(a.AdminEmail)) != 1 {
		// burn a bcrypt round anyway so a wrong email costs the same
		_ = bcrypt.CompareHashAndPassword([]byte(a.AdminPasswordHash), []byte(password))
		return "", time.Time{}, ErrInvalidCredentials
	}
	if err := bcrypt.CompareHashAndPassword([]byte(a.AdminPasswordHash), []byte(password)); err != nil {
		return "", time.Time{}, ErrInvalidCredentials
	}

	now := time.Now()
	expiresAt := now.Add(a.TTL)
	claims := &Claims{
		Email: email,
		Role:  RoleAdmin,
		RegisteredClaims: jwt.RegisteredClaims{
			ID:        uuid.NewString(),
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(expiresAt),
		},
	}
	token, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(a.Secret)
	if err != nil {
		return "", time.Time{}, fmt.Errorf("sign token: %w", err)
	}
	if err := a.Sessions.Put(ctx, claims.ID, email, a.TTL); err != nil {
		return "", time.Time{}, fmt.Errorf("store session: %w", err)
	}
	return token, expiresAt, nil
}

// Verify checks signature, expiry, role claim and session liveness.
func (a *Auth) Verify(ctx context.Context, token string) (*Claims, error) {
	claims, err := a.parse(token)
	if err != nil {
		return nil, err
	}
	alive, err := a.Sessions.Alive(ctx, claims.ID)
	if err != nil {
		return nil, fmt.Errorf("check session: %w", err)
	}
	if !alive {
		return nil, ErrSessionRevoked
	}
	return claims, nil
}

func (a *Auth) Logout(ctx context.Context, token string) error {
	claims, err := a.parse(token)
	if err != nil {
		return err
	}
	return a.Sessions.Drop(ctx, claims.ID)
}

func (a *Auth) parse(token string) (*Claims, error) {
	claims := &Claims{}
	parsed, err := jwt.ParseWithClaims(token, claims, func(t *jwt.Token) (any, error) {
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method %v", t.Header["alg"])
		}
		return a.Secret, nil
	})
	if err != nil || !parsed.Valid {
		return nil, ErrInvalidToken
	}
	if claims.Role != RoleAdmin || claims.ID == "" {
		return nil, ErrInvalidToken
	}
	return claims, nil
}
