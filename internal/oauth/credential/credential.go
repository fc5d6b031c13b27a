// Package credential mints the short-lived signed token handed to the
// front-end after a completed login. The service only issues these; it never
// verifies them itself.
package credential

import (
	"crypto/ecdsa"
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"

	"leagueledger/internal/platform/config"
)

// Claims is the claim set carried by an outbound credential.
type Claims struct {
	DisplayName string `json:"name"`
	jwt.RegisteredClaims
}

// Issuer signs outbound credentials with an ECDSA key (ES256).
type Issuer struct {
	key    *ecdsa.PrivateKey
	issuer string
	ttl    time.Duration
}

// NewIssuer builds an issuer from configuration. Returns nil when no signing
// key is configured; callers then fall back to attaching the raw subject id.
func NewIssuer(cfg config.CredentialConfig) (*Issuer, error) {
	if cfg.SigningKeyPEM == "" {
		return nil, nil
	}

	key, err := jwt.ParseECPrivateKeyFromPEM([]byte(cfg.SigningKeyPEM))
	if err != nil {
		return nil, fmt.Errorf("parse credential signing key: %w", err)
	}

	ttl := cfg.TTL
	if ttl <= 0 {
		ttl = time.Minute
	}
	return &Issuer{key: key, issuer: cfg.Issuer, ttl: ttl}, nil
}

// Issue signs a credential for the given subject. Lifetime is short (around
// one minute); the front-end consumes it once to bootstrap its own session.
func (i *Issuer) Issue(sub, displayName string) (string, error) {
	now := time.Now()
	token := jwt.NewWithClaims(jwt.SigningMethodES256, Claims{
		DisplayName: displayName,
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   sub,
			Issuer:    i.issuer,
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(i.ttl)),
			ID:        uuid.NewString(),
		},
	})

	signed, err := token.SignedString(i.key)
	if err != nil {
		return "", fmt.Errorf("sign credential for %q: %w", sub, err)
	}
	return signed, nil
}
