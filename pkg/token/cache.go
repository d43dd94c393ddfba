package token

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
)

// Prometheus metrics for token lifecycle operations.
var (
	refreshesTotal = promauto.NewCounter(prometheus.CounterOpts{
		Name: "integration_token_refreshes_total",
		Help: "Total successful token refreshes",
	})

	refreshFailuresTotal = promauto.NewCounter(prometheus.CounterOpts{
		Name: "integration_token_refresh_failures_total",
		Help: "Total failed token refresh attempts",
	})
)

// ErrRefreshFailed marks a failed token refresh. The minting failure is not
// retried internally; it is fatal to the token-fetch operation.
var ErrRefreshFailed = errors.New("token refresh failed")

// Minter exchanges a longer-lived credential for a new short-lived bearer
// token. The minting request authenticates with its own signed assertion,
// never with the bearer token being replaced.
type Minter func(ctx context.Context) (Token, error)

// Cache holds a bearer token and transparently mints a replacement when the
// cached token is missing, expired, or force-invalidated. Refreshes are
// serialized so concurrent callers sharing one Cache cannot race redundant
// minting calls against each other.
type Cache struct {
	store  Store
	mint   Minter
	logger zerolog.Logger

	mu  sync.Mutex
	now func() time.Time
}

// NewCache creates a token cache over the given store and minting function.
func NewCache(store Store, mint Minter) *Cache {
	return &Cache{
		store:  store,
		mint:   mint,
		logger: log.With().Str("component", "token-cache").Logger(),
		now:    time.Now,
	}
}

// Token returns the active bearer token, refreshing it if needed. It
// satisfies the client package's TokenSource interface.
func (c *Cache) Token(ctx context.Context) (string, error) {
	return c.Get(ctx, false)
}

// Get returns the active bearer token. When forceRefresh is true, or the
// stored token is missing or past its expiry, a new token is minted and
// persisted before it is returned. Otherwise the stored value is returned
// with no side effect.
func (c *Cache) Get(ctx context.Context, forceRefresh bool) (string, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	tok, err := c.store.Load(ctx)
	if err != nil {
		return "", fmt.Errorf("load token: %w", err)
	}

	if !forceRefresh && !tok.Expired(c.now()) {
		c.logger.Debug().Msg("Cached token still fresh")
		return tok.Value, nil
	}

	minted, err := c.mint(ctx)
	if err != nil {
		refreshFailuresTotal.Inc()
		c.logger.Error().Err(err).Msg("Token mint failed")
		return "", fmt.Errorf("%w: %w", ErrRefreshFailed, err)
	}

	if err := c.store.Save(ctx, minted); err != nil {
		refreshFailuresTotal.Inc()
		c.logger.Error().Err(err).Msg("Persisting minted token failed")
		return "", fmt.Errorf("%w: save: %w", ErrRefreshFailed, err)
	}

	refreshesTotal.Inc()
	event := c.logger.Info().Bool("forced", forceRefresh)
	if minted.ExpiresAt != nil {
		event = event.Time("expires_at", *minted.ExpiresAt)
	}
	event.Msg("Minted new bearer token")

	return minted.Value, nil
}
