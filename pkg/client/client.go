// Package client provides the HTTP collaborator for third-party provider
// APIs: base-URL-anchored requests with bearer injection, retries, and
// error classification.
package client

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
)

// Prometheus metrics for provider request operations.
var (
	requestsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "integration_requests_total",
		Help: "Total provider requests by endpoint and status",
	}, []string{"endpoint", "status"})

	requestDuration = promauto.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "integration_request_duration_seconds",
		Help:    "Provider request duration in seconds by endpoint",
		Buckets: []float64{0.1, 0.5, 1, 2, 5, 10},
	}, []string{"endpoint"})

	errorsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "integration_errors_total",
		Help: "Total provider errors by class",
	}, []string{"class"})
)

// ErrorClass represents a classification of HTTP errors.
type ErrorClass string

const (
	// ErrorClassClient represents 4xx client errors.
	ErrorClassClient ErrorClass = "client"

	// ErrorClassServer represents 5xx server errors.
	ErrorClassServer ErrorClass = "server"

	// ErrorClassNetwork represents network/timeout errors.
	ErrorClassNetwork ErrorClass = "network"
)

// TokenSource supplies the bearer token attached to outgoing requests.
// Implementations are expected to keep the token fresh themselves.
type TokenSource interface {
	Token(ctx context.Context) (string, error)
}

// Client is a provider HTTP client anchored to a single base URL.
type Client struct {
	httpClient *http.Client
	config     Config
	logger     zerolog.Logger
}

// Config holds the client configuration.
type Config struct {
	// BaseURL is the provider API origin, e.g. "https://api.github.com".
	// Requests are issued against BaseURL + path.
	BaseURL string

	// User-Agent header sent on every request.
	UserAgent string

	// TokenSource supplies bearer tokens. Optional; requests carrying an
	// explicit Authorization header bypass it.
	TokenSource TokenSource

	// Timeout per HTTP request.
	Timeout time.Duration

	// Retry behavior for server and network errors.
	Retry RetryConfig
}

// DefaultConfig returns a safe default configuration.
func DefaultConfig(baseURL, userAgent string) Config {
	return Config{
		BaseURL:   baseURL,
		UserAgent: userAgent,
		Timeout:   30 * time.Second,
		Retry:     DefaultRetryConfig(),
	}
}

// New creates a new provider client.
func New(cfg Config) (*Client, error) {
	if cfg.BaseURL == "" {
		return nil, fmt.Errorf("base URL is required")
	}

	if _, err := url.Parse(cfg.BaseURL); err != nil {
		return nil, fmt.Errorf("invalid base URL: %w", err)
	}

	if cfg.UserAgent == "" {
		return nil, fmt.Errorf("user-agent is required")
	}

	if cfg.Timeout <= 0 {
		cfg.Timeout = 30 * time.Second
	}

	if cfg.Retry.MaxAttempts <= 0 {
		cfg.Retry = DefaultRetryConfig()
	}

	cfg.BaseURL = strings.TrimSuffix(cfg.BaseURL, "/")

	logger := log.With().Str("component", "provider-client").Str("base_url", cfg.BaseURL).Logger()

	return &Client{
		httpClient: &http.Client{
			Timeout: cfg.Timeout,
		},
		config: cfg,
		logger: logger,
	}, nil
}

// BaseURL returns the configured provider origin.
func (c *Client) BaseURL() string {
	return c.config.BaseURL
}

// Get performs a GET request against a base-URL-relative path.
func (c *Client) Get(ctx context.Context, path string, params url.Values) (*Response, error) {
	return c.Do(ctx, http.MethodGet, path, nil, params, nil)
}

// Post performs a POST request with a JSON body against a base-URL-relative path.
func (c *Client) Post(ctx context.Context, path string, data any) (*Response, error) {
	return c.Do(ctx, http.MethodPost, path, nil, nil, data)
}

// Do performs an HTTP request with bearer injection, retry, and error
// classification. An Authorization header in headers suppresses the
// configured TokenSource for this request.
func (c *Client) Do(ctx context.Context, method, path string, headers http.Header, params url.Values, data any) (*Response, error) {
	endpoint := requestPath(path)

	startTime := time.Now()
	defer func() {
		requestDuration.WithLabelValues(endpoint).Observe(time.Since(startTime).Seconds())
	}()

	target := c.config.BaseURL + path
	if len(params) > 0 {
		sep := "?"
		if strings.Contains(path, "?") {
			sep = "&"
		}
		target += sep + params.Encode()
	}

	var body []byte
	if data != nil {
		encoded, err := json.Marshal(data)
		if err != nil {
			return nil, fmt.Errorf("encode request body: %w", err)
		}
		body = encoded
	}

	c.logger.Debug().
		Str("endpoint", endpoint).
		Str("method", method).
		Msg("Executing provider request")

	// Resolve the bearer token before the retry loop: a failed token
	// refresh is fatal to the operation, not a retriable transport error.
	authorization := headers.Get("Authorization")
	if authorization == "" && c.config.TokenSource != nil {
		tok, err := c.config.TokenSource.Token(ctx)
		if err != nil {
			return nil, fmt.Errorf("obtain bearer token: %w", err)
		}
		authorization = "Bearer " + tok
	}

	var resp *Response
	retryErr := retryWithBackoff(ctx, c.config.Retry, func() error {
		var attemptErr error
		resp, attemptErr = c.doOnce(ctx, method, target, endpoint, headers, authorization, body)
		return attemptErr
	}, func(err error) ErrorClass {
		return classifyError(err)
	})
	if retryErr != nil {
		return nil, retryErr
	}

	return resp, nil
}

// doOnce issues a single HTTP attempt and converts non-2xx statuses into
// classified ProviderError values.
func (c *Client) doOnce(ctx context.Context, method, target, endpoint string, headers http.Header, authorization string, body []byte) (*Response, error) {
	var reader io.Reader
	if body != nil {
		reader = bytes.NewReader(body)
	}

	req, err := http.NewRequestWithContext(ctx, method, target, reader)
	if err != nil {
		return nil, fmt.Errorf("create request: %w", err)
	}

	for key, values := range headers {
		for _, value := range values {
			req.Header.Add(key, value)
		}
	}

	if authorization != "" {
		req.Header.Set("Authorization", authorization)
	}

	req.Header.Set("User-Agent", c.config.UserAgent)
	req.Header.Set("Accept", "application/json")
	if body != nil && req.Header.Get("Content-Type") == "" {
		req.Header.Set("Content-Type", "application/json")
	}

	httpResp, err := c.httpClient.Do(req)
	if err != nil {
		c.logger.Error().Err(err).Str("endpoint", endpoint).Msg("HTTP request failed")
		errorsTotal.WithLabelValues(string(ErrorClassNetwork)).Inc()
		requestsTotal.WithLabelValues(endpoint, "network_error").Inc()
		return nil, &ProviderError{
			ErrorClass: ErrorClassNetwork,
			Message:    "transport failure",
			Err:        err,
		}
	}
	defer httpResp.Body.Close()

	payload, err := io.ReadAll(httpResp.Body)
	if err != nil {
		errorsTotal.WithLabelValues(string(ErrorClassNetwork)).Inc()
		requestsTotal.WithLabelValues(endpoint, "network_error").Inc()
		return nil, &ProviderError{
			ErrorClass: ErrorClassNetwork,
			Message:    "read response body",
			Err:        err,
		}
	}

	requestsTotal.WithLabelValues(endpoint, fmt.Sprintf("%d", httpResp.StatusCode)).Inc()

	if httpResp.StatusCode >= 400 {
		errClass := classifyStatus(httpResp.StatusCode)
		errorsTotal.WithLabelValues(string(errClass)).Inc()

		c.logger.Warn().
			Str("endpoint", endpoint).
			Int("status", httpResp.StatusCode).
			Str("error_class", string(errClass)).
			Msg("Provider request error")

		return nil, &ProviderError{
			StatusCode: httpResp.StatusCode,
			ErrorClass: errClass,
			Message:    httpResp.Status,
		}
	}

	return &Response{
		StatusCode: httpResp.StatusCode,
		Header:     httpResp.Header,
		Body:       payload,
		Rel:        parseLinkHeader(httpResp.Header.Get("Link")),
	}, nil
}

// classifyStatus categorizes an HTTP status code.
func classifyStatus(status int) ErrorClass {
	switch {
	case status >= 400 && status < 500:
		return ErrorClassClient
	case status >= 500:
		return ErrorClassServer
	default:
		return ""
	}
}

// classifyError extracts the error class from a request error.
func classifyError(err error) ErrorClass {
	var provErr *ProviderError
	if errors.As(err, &provErr) {
		return provErr.ErrorClass
	}
	return ErrorClassNetwork
}

// requestPath strips the query string from a path for metric labels.
func requestPath(path string) string {
	if idx := strings.Index(path, "?"); idx >= 0 {
		return path[:idx]
	}
	return path
}
