// Package token manages short-lived bearer credentials: caching a token with
// its expiry, deciding when a refresh is due, and minting replacements via an
// injected minting function.
package token

import "time"

// Token is a bearer credential with its absolute expiry. A zero Value means
// no token has been minted yet.
type Token struct {
	Value     string     `json:"token"`
	ExpiresAt *time.Time `json:"expires_at"`
}

// Expired reports whether the token must be refreshed as of now. A missing
// token always needs a refresh. A nil expiry is treated as already expired:
// a token whose lifetime is unknown must not be trusted.
func (t Token) Expired(now time.Time) bool {
	if t.Value == "" {
		return true
	}
	if t.ExpiresAt == nil {
		return true
	}
	return !now.Before(*t.ExpiresAt)
}
