// Package auth issues and validates the signed session tokens carried in
// the dashboard cookie. Tokens are stateless JWTs, so no session table is
// needed and any instance can validate a cookie minted by another.
package auth

import (
	"crypto/rand"
	"encoding/hex"
	"errors"
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

const issuer = "pulse"

// Claims is the session payload stored in the cookie token.
type Claims struct {
	UserID string `json:"uid"`
	Email  string `json:"email"`
	jwt.RegisteredClaims
}

// TokenService mints and validates session tokens. Safe for concurrent use.
type TokenService struct {
	secret []byte
	ttl    time.Duration
}

// NewTokenService creates a token service signing with the given secret.
// An empty secret is replaced with a random one, which keeps a dev setup
// working but invalidates all sessions on restart; production deployments
// should configure auth.jwt_secret.
func NewTokenService(secret string, ttl time.Duration) *TokenService {
	if secret == "" {
		secret = GenerateSecret()
	}
	if ttl <= 0 {
		ttl = 24 * time.Hour
	}

	return &TokenService{
		secret: []byte(secret),
		ttl:    ttl,
	}
}

// GenerateToken mints a session token for the given account.
func (s *TokenService) GenerateToken(userID, email string) (string, time.Time, error) {
	now := time.Now().UTC()
	expiresAt := now.Add(s.ttl)

	claims := Claims{
		UserID: userID,
		Email:  email,
		RegisteredClaims: jwt.RegisteredClaims{
			Issuer:    issuer,
			Subject:   userID,
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(expiresAt),
		},
	}

	signed, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(s.secret)
	if err != nil {
		return "", time.Time{}, fmt.Errorf("sign token: %w", err)
	}
	return signed, expiresAt, nil
}

// ValidateToken parses and verifies a session token.
func (s *TokenService) ValidateToken(token string) (*Claims, error) {
	parsed, err := jwt.ParseWithClaims(token, &Claims{}, func(t *jwt.Token) (any, error) {
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method %q", t.Method.Alg())
		}
		return s.secret, nil
	})
	if err != nil {
		return nil, err
	}

	claims, ok := parsed.Claims.(*Claims)
	if !ok || !parsed.Valid {
		return nil, errors.New("invalid token")
	}
	return claims, nil
}

// ShouldRefresh reports whether a validated session has crossed the halfway
// point of its lifetime. The auth middleware uses this to slide active
// sessions forward instead of logging users out mid-visit.
func (s *TokenService) ShouldRefresh(c *Claims) bool {
	if c.ExpiresAt == nil {
		return false
	}
	return time.Until(c.ExpiresAt.Time) < s.ttl/2
}

// GenerateSecret returns a random hex-encoded signing secret.
func GenerateSecret() string {
	b := make([]byte, 32)
	rand.Read(b)
	return hex.EncodeToString(b)
}
