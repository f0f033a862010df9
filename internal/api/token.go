package api

import (
	"context"
	"encoding/hex"
	"fmt"
	"strings"
	"sync"
	"time"

	"lembas/internal/config"

	"github.com/golang-jwt/jwt/v5"
)

const (
	tokenLifetime = 5 * time.Minute
	tokenLeeway   = 30 * time.Second
	tokenAudience = "lembas-api"
)

// TokenSource supplies the bearer token sent with every request.
type TokenSource interface {
	Token(ctx context.Context) (string, error)
}

// StaticToken is a fixed bearer token.
type StaticToken string

// Token returns the token unchanged.
func (s StaticToken) Token(context.Context) (string, error) {
	if s == "" {
		return "", fmt.Errorf("empty API token")
	}
	return string(s), nil
}

// SignedTokenSource mints short-lived HS256 tokens from an "id:hexsecret" key and
// reuses each one until it is close to expiry.
type SignedTokenSource struct {
	keyID  string
	secret []byte
	now    func() time.Time

	mu      sync.Mutex
	token   string
	expires time.Time
}

// NewSignedTokenSource parses a signing key of the form "id:hexsecret".
func NewSignedTokenSource(key string) (*SignedTokenSource, error) {
	keyParts := strings.Split(key, ":")
	if len(keyParts) != 2 || keyParts[0] == "" {
		return nil, fmt.Errorf("invalid signing key format: expected id:secret")
	}

	secret, err := hex.DecodeString(keyParts[1])
	if err != nil {
		return nil, fmt.Errorf("failed to decode secret hex: %w", err)
	}
	if len(secret) == 0 {
		return nil, fmt.Errorf("invalid signing key: empty secret")
	}

	return &SignedTokenSource{keyID: keyParts[0], secret: secret, now: time.Now}, nil
}

// Token returns a cached token or signs a new one.
func (s *SignedTokenSource) Token(context.Context) (string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	now := s.now()
	if s.token != "" && now.Add(tokenLeeway).Before(s.expires) {
		return s.token, nil
	}

	expires := now.Add(tokenLifetime)
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.RegisteredClaims{
		IssuedAt:  jwt.NewNumericDate(now),
		ExpiresAt: jwt.NewNumericDate(expires),
		Audience:  jwt.ClaimStrings{tokenAudience},
		Subject:   s.keyID,
	})
	token.Header["kid"] = s.keyID

	signed, err := token.SignedString(s.secret)
	if err != nil {
		return "", fmt.Errorf("failed to sign token: %w", err)
	}

	s.token = signed
	s.expires = expires
	return signed, nil
}

// TokenSourceFromConfig prefers the signing key and falls back to the static token.
func TokenSourceFromConfig(cfg *config.Config) (TokenSource, error) {
	if cfg.APISigningKey != "" {
		return NewSignedTokenSource(cfg.APISigningKey)
	}
	return StaticToken(cfg.APIToken), nil
}
