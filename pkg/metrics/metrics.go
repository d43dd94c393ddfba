// Package metrics provides the centralized Prometheus metrics registry for
// the integration client. All metrics are defined in their respective
// packages (client, pagination, token) to maintain modularity and avoid
// circular dependencies.
//
// This package provides documentation and reference for all available metrics.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
)

// Registry is the default Prometheus registry used by the integration client.
// All metrics are automatically registered via promauto in their respective
// packages.
var Registry = prometheus.DefaultRegisterer

// Metrics Documentation
//
// Request Metrics (pkg/client):
//   - integration_requests_total{endpoint, status} (Counter): Total requests by endpoint and HTTP status
//   - integration_request_duration_seconds{endpoint} (Histogram): Request duration by endpoint
//   - integration_errors_total{class} (Counter): Errors by class (client, server, network)
//
// Retry Metrics (pkg/client):
//   - integration_retries_total{error_class} (Counter): Retry attempts by error class
//   - integration_retry_backoff_seconds{error_class} (Histogram): Backoff duration by error class
//   - integration_retry_exhausted_total{error_class} (Counter): Requests that exhausted max retries
//
// Pagination Metrics (pkg/pagination):
//   - integration_pagination_pages_fetched{endpoint} (Histogram): Pages fetched per traversal
//   - integration_pagination_cap_reached_total{endpoint} (Counter): Traversals truncated by the iteration cap
//   - integration_pagination_rejected_total{endpoint} (Counter): Traversals aborted by a rejected page
//   - integration_pagination_protocol_violations_total (Counter): rel=next URLs failing the origin check
//
// Token Metrics (pkg/token):
//   - integration_token_refreshes_total (Counter): Successful token refreshes
//   - integration_token_refresh_failures_total (Counter): Failed refresh attempts
//
// Example Prometheus Queries:
//
//   # Runaway pagination detection
//   rate(integration_pagination_cap_reached_total[15m]) > 0
//
//   # Provider rejection rate
//   rate(integration_pagination_rejected_total[5m])
//
//   # Token refresh failure ratio
//   rate(integration_token_refresh_failures_total[5m]) /
//   rate(integration_token_refreshes_total[5m])
//
//   # P95 Request Latency
//   histogram_quantile(0.95, rate(integration_request_duration_seconds_bucket[5m]))
