package github

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/atriumhq/integration-client/internal/testutil"
	"github.com/atriumhq/integration-client/pkg/client"
	"github.com/atriumhq/integration-client/pkg/token"
)

func newTestHTTPClient(t *testing.T, mock *testutil.MockProvider, source client.TokenSource) *client.Client {
	t.Helper()

	cfg := client.DefaultConfig(mock.URL(), "integration-client-test/1.0")
	cfg.TokenSource = source
	cfg.Retry = client.RetryConfig{
		MaxAttempts:       1,
		InitialBackoff:    time.Millisecond,
		MaxBackoff:        time.Millisecond,
		BackoffMultiplier: 1.0,
	}

	c, err := client.New(cfg)
	require.NoError(t, err)
	return c
}

// repositoriesBody builds one /installation/repositories page body with n
// repositories numbered from first.
func repositoriesBody(first, n, total int) string {
	repos := make([]Repository, 0, n)
	for i := 0; i < n; i++ {
		id := first + i
		repos = append(repos, Repository{
			ID:       int64(id),
			Name:     fmt.Sprintf("repo-%d", id),
			FullName: fmt.Sprintf("acme/repo-%d", id),
		})
	}

	body, _ := json.Marshal(map[string]any{
		"total_count":  total,
		"repositories": repos,
	})
	return string(body)
}

func TestClient_Repositories_TwoPages(t *testing.T) {
	mock := testutil.NewMockProvider()
	defer mock.Close()

	// Page 1: 100 repositories plus a rel="next" link; page 2: 30 and no link.
	mock.SetLinkPages("/installation/repositories", []string{
		repositoriesBody(1, 100, 130),
		repositoriesBody(101, 30, 130),
	})

	gh := New(newTestHTTPClient(t, mock, nil))

	repos, err := gh.Repositories(context.Background())
	require.NoError(t, err)

	assert.Len(t, repos, 130)
	assert.Equal(t, 2, mock.GetRequestCount())

	// Order preserved across pages.
	assert.Equal(t, "repo-1", repos[0].Name)
	assert.Equal(t, "repo-100", repos[99].Name)
	assert.Equal(t, "repo-130", repos[129].Name)

	// The second request followed the rel="next" link.
	assert.Equal(t, "2", mock.LastRequestQuery["page"])
}

func TestClient_Repositories_RequestsFullPageSize(t *testing.T) {
	mock := testutil.NewMockProvider()
	defer mock.Close()

	mock.SetLinkPages("/installation/repositories", []string{
		repositoriesBody(1, 5, 5),
	})

	gh := New(newTestHTTPClient(t, mock, nil))

	_, err := gh.Repositories(context.Background())
	require.NoError(t, err)

	assert.Equal(t, 1, mock.GetRequestCount())
	assert.Equal(t, "100", mock.LastRequestQuery["per_page"])
}

func TestClient_Repositories_ForeignNextLinkStopsTraversal(t *testing.T) {
	mock := testutil.NewMockProvider()
	defer mock.Close()

	mock.SetHandler("/installation/repositories", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Link", `<https://evil.example.com/installation/repositories?page=2>; rel="next"`)
		w.Header().Set("Content-Type", "application/json; charset=utf-8")
		w.WriteHeader(http.StatusOK)
		w.Write([]byte(repositoriesBody(1, 3, 6)))
	})

	gh := New(newTestHTTPClient(t, mock, nil))

	repos, err := gh.Repositories(context.Background())
	require.NoError(t, err, "protocol violation is recovered locally, not an error")

	assert.Len(t, repos, 3, "partial result from the pages before the violation")
	assert.Equal(t, 1, mock.GetRequestCount())
}

// staticSigner returns a fixed assertion.
type staticSigner string

func (s staticSigner) SignAssertion() (string, error) {
	return string(s), nil
}

func TestNewTokenMinter(t *testing.T) {
	mock := testutil.NewMockProvider()
	defer mock.Close()

	mock.SetResponse("/app/installations/42/access_tokens", testutil.MockResponse{
		StatusCode: http.StatusCreated,
		Body:       `{"token": "ghs_minted", "expires_at": "2024-05-01T13:00:00Z"}`,
	})

	httpClient := newTestHTTPClient(t, mock, nil)
	mint := NewTokenMinter(httpClient, staticSigner("assertion-jwt"), "42")

	minted, err := mint(context.Background())
	require.NoError(t, err)

	assert.Equal(t, "ghs_minted", minted.Value)
	require.NotNil(t, minted.ExpiresAt)
	assert.Equal(t, time.Date(2024, 5, 1, 13, 0, 0, 0, time.UTC), minted.ExpiresAt.UTC())

	// The minting request authenticates with the assertion, not a bearer
	// token from any cache.
	assert.Equal(t, "Bearer assertion-jwt", mock.LastRequestHeader.Get("Authorization"))
}

func TestNewTokenMinter_MalformedResponse(t *testing.T) {
	tests := []struct {
		name string
		body string
	}{
		{"missing token", `{"expires_at": "2024-05-01T13:00:00Z"}`},
		{"missing expires_at", `{"token": "ghs_minted"}`},
		{"unparseable expiry", `{"token": "ghs_minted", "expires_at": "yesterday"}`},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			mock := testutil.NewMockProvider()
			defer mock.Close()

			mock.SetResponse("/app/installations/42/access_tokens", testutil.MockResponse{
				StatusCode: http.StatusCreated,
				Body:       tt.body,
			})

			mint := NewTokenMinter(newTestHTTPClient(t, mock, nil), staticSigner("assertion-jwt"), "42")

			_, err := mint(context.Background())
			require.Error(t, err)
		})
	}
}

func TestNewTokenMinter_FeedsTokenCache(t *testing.T) {
	mock := testutil.NewMockProvider()
	defer mock.Close()

	expiry := time.Now().Add(time.Hour).UTC().Format(time.RFC3339)
	mock.SetResponse("/app/installations/42/access_tokens", testutil.MockResponse{
		StatusCode: http.StatusCreated,
		Body:       fmt.Sprintf(`{"token": "ghs_minted", "expires_at": %q}`, expiry),
	})

	mint := NewTokenMinter(newTestHTTPClient(t, mock, nil), staticSigner("assertion-jwt"), "42")
	cache := token.NewCache(token.NewMemoryStore(), mint)

	got, err := cache.Get(context.Background(), false)
	require.NoError(t, err)
	assert.Equal(t, "ghs_minted", got)
	assert.Equal(t, 1, mock.GetPathCount("/app/installations/42/access_tokens"))

	// Fresh token: no second mint.
	_, err = cache.Get(context.Background(), false)
	require.NoError(t, err)
	assert.Equal(t, 1, mock.GetPathCount("/app/installations/42/access_tokens"))
}

func TestDefaultBaseURL(t *testing.T) {
	if !strings.HasPrefix(DefaultBaseURL, "https://") {
		t.Errorf("DefaultBaseURL = %q, want an https origin", DefaultBaseURL)
	}
}
