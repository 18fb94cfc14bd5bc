// Package auth issues and verifies the bearer tokens that gate the HTTP and
// socket surfaces. Identity is a wallet address; the admin role unlocks
// session creation.
package auth

import (
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/jonboulle/clockwork"
)

const (
	RoleAdmin = "admin"
	RoleUser  = "user"

	tokenTTL = 24 * time.Hour
)

// Claims is the token payload. SessionID is optional: registering and
// binding to a session can happen in one step.
type Claims struct {
	jwt.RegisteredClaims
	Wallet    string `json:"wallet"`
	Role      string `json:"role"`
	SessionID string `json:"sessionId,omitempty"`
}

// TokenService signs and verifies HS256 tokens.
type TokenService struct {
	secret []byte
	clock  clockwork.Clock
}

func NewTokenService(secret string, clock clockwork.Clock) *TokenService {
	return &TokenService{secret: []byte(secret), clock: clock}
}

// Issue signs a token for the wallet with the given role and optional
// session binding.
func (s *TokenService) Issue(wallet, role, sessionID string) (string, error) {
	now := s.clock.Now()
	claims := Claims{
		RegisteredClaims: jwt.RegisteredClaims{
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(tokenTTL)),
		},
		Wallet:    wallet,
		Role:      role,
		SessionID: sessionID,
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	signed, err := token.SignedString(s.secret)
	if err != nil {
		return "", fmt.Errorf("sign token: %w", err)
	}
	return signed, nil
}

// Verify parses and validates a token, returning its claims.
func (s *TokenService) Verify(tokenString string) (*Claims, error) {
	claims := &Claims{}
	_, err := jwt.ParseWithClaims(tokenString, claims,
		func(t *jwt.Token) (any, error) { return s.secret, nil },
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
		jwt.WithTimeFunc(s.clock.Now),
	)
	if err != nil {
		return nil, fmt.Errorf("verify token: %w", err)
	}
	if claims.Wallet == "" {
		return nil, fmt.Errorf("verify token: missing wallet claim")
	}
	return claims, nil
}
