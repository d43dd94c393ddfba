package token

import (
	"crypto/rsa"
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
)

// NowFunc returns the current time for assertion claims. It can be
// overridden in tests.
var NowFunc = time.Now

// Signer produces the short-lived signed assertion that authenticates
// minting requests. The assertion is a distinct credential from the bearer
// token being cached and is never stored.
type Signer interface {
	SignAssertion() (string, error)
}

// AppSigner signs RS256 assertions on behalf of a registered provider app
// (e.g. a GitHub App), using the app's private key.
type AppSigner struct {
	issuer string
	key    *rsa.PrivateKey
	ttl    time.Duration
}

// NewAppSigner creates a signer from a PEM-encoded RSA private key. issuer is
// the provider-assigned app identifier, ttl the assertion validity window
// (providers commonly cap it at 10 minutes).
func NewAppSigner(issuer string, pemKey []byte, ttl time.Duration) (*AppSigner, error) {
	if issuer == "" {
		return nil, fmt.Errorf("issuer is required")
	}

	key, err := jwt.ParseRSAPrivateKeyFromPEM(pemKey)
	if err != nil {
		return nil, fmt.Errorf("parse private key: %w", err)
	}

	if ttl <= 0 {
		ttl = 10 * time.Minute
	}

	return &AppSigner{
		issuer: issuer,
		key:    key,
		ttl:    ttl,
	}, nil
}

// SignAssertion produces a signed assertion valid from slightly in the past
// (to absorb clock skew against the provider) until now+ttl.
func (s *AppSigner) SignAssertion() (string, error) {
	now := NowFunc()
	claims := jwt.MapClaims{
		"iss": s.issuer,
		"iat": now.Add(-30 * time.Second).Unix(),
		"exp": now.Add(s.ttl).Unix(),
		"jti": uuid.New().String(),
	}

	signed, err := jwt.NewWithClaims(jwt.SigningMethodRS256, claims).SignedString(s.key)
	if err != nil {
		return "", fmt.Errorf("sign assertion: %w", err)
	}
	return signed, nil
}
