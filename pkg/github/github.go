// Package github implements the GitHub App side of the integration:
// enumeration of installation repositories via Link-header pagination, and
// minting of installation access tokens authenticated by a signed app
// assertion.
package github

import (
	"context"
	"fmt"
	"net/http"
	"net/url"
	"strconv"
	"time"

	"github.com/rs/zerolog"

	"github.com/atriumhq/integration-client/pkg/client"
	"github.com/atriumhq/integration-client/pkg/logging"
	"github.com/atriumhq/integration-client/pkg/pagination"
	"github.com/atriumhq/integration-client/pkg/token"
)

// DefaultBaseURL is the public GitHub API origin.
const DefaultBaseURL = "https://api.github.com"

// perPage is the page size requested on listing endpoints.
const perPage = 100

// Repository is an installation-accessible repository.
type Repository struct {
	ID       int64  `json:"id"`
	Name     string `json:"name"`
	FullName string `json:"full_name"`
	Private  bool   `json:"private"`
}

// Client wraps the HTTP collaborator with GitHub-specific operations.
type Client struct {
	http   *client.Client
	logger zerolog.Logger
}

// New creates a GitHub client over an HTTP collaborator anchored at the
// GitHub API origin.
func New(httpClient *client.Client) *Client {
	return &Client{
		http:   httpClient,
		logger: logging.NewLogger("github-client"),
	}
}

// repositoriesPage is the wire shape of one /installation/repositories page.
type repositoriesPage struct {
	TotalCount   int          `json:"total_count"`
	Repositories []Repository `json:"repositories"`
}

// Repositories enumerates every repository the installation can access,
// following the Link header rel="next" chain until exhaustion or the
// iteration cap. The cap truncates silently; a rel="next" URL pointing off
// the configured origin stops the traversal with the pages accumulated so
// far.
func (c *Client) Repositories(ctx context.Context) ([]Repository, error) {
	firstPath := "/installation/repositories?" + url.Values{
		"per_page": []string{strconv.Itoa(perPage)},
	}.Encode()

	result, err := pagination.Collect(ctx, "/installation/repositories",
		func(ctx context.Context, cursor string) ([]Repository, string, error) {
			path := cursor
			if path == "" {
				path = firstPath
			}

			resp, err := c.http.Get(ctx, path, nil)
			if err != nil {
				return nil, "", err
			}

			var page repositoriesPage
			if err := resp.Decode(&page); err != nil {
				return nil, "", fmt.Errorf("decode repositories page: %w", err)
			}

			next := pagination.NextPath(c.http.BaseURL(), resp.Rel, resp.Header.Get("Link"))
			return page.Repositories, next, nil
		})
	if err != nil {
		return nil, err
	}

	c.logger.Debug().
		Int("repositories", len(result.Items)).
		Int("pages", result.Pages).
		Str("outcome", result.Outcome.String()).
		Msg("Enumerated installation repositories")

	return result.Items, nil
}

// mintResponse is the wire shape of an access token minting response.
// expires_at is an ISO8601 Z-suffixed timestamp, which is RFC 3339 as far as
// decoding is concerned.
type mintResponse struct {
	Token     string    `json:"token"`
	ExpiresAt time.Time `json:"expires_at"`
}

// NewTokenMinter returns a token.Minter that exchanges a signed app
// assertion for a fresh installation access token. The assertion is the
// minting request's own credential; it is never cached and never confused
// with the bearer token being minted.
func NewTokenMinter(httpClient *client.Client, signer token.Signer, installationID string) token.Minter {
	return func(ctx context.Context) (token.Token, error) {
		assertion, err := signer.SignAssertion()
		if err != nil {
			return token.Token{}, fmt.Errorf("sign app assertion: %w", err)
		}

		headers := http.Header{}
		headers.Set("Authorization", "Bearer "+assertion)

		path := fmt.Sprintf("/app/installations/%s/access_tokens", installationID)
		resp, err := httpClient.Do(ctx, http.MethodPost, path, headers, nil, nil)
		if err != nil {
			return token.Token{}, fmt.Errorf("mint installation token: %w", err)
		}

		var minted mintResponse
		if err := resp.Decode(&minted); err != nil {
			return token.Token{}, fmt.Errorf("decode mint response: %w", err)
		}

		if minted.Token == "" {
			return token.Token{}, fmt.Errorf("mint response missing token")
		}
		if minted.ExpiresAt.IsZero() {
			return token.Token{}, fmt.Errorf("mint response missing expires_at")
		}

		expiresAt := minted.ExpiresAt
		return token.Token{Value: minted.Token, ExpiresAt: &expiresAt}, nil
	}
}
