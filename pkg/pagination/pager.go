package pagination

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/rs/zerolog/log"
)

// MaxIterations is the hard cap on page fetches per traversal. It is a safety
// valve against malicious or buggy infinite pagination, not a business limit,
// and is deliberately not caller-overridable.
const MaxIterations = 100

var (
	pagesFetched = promauto.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "integration_pagination_pages_fetched",
		Help:    "Pages fetched per traversal by endpoint",
		Buckets: []float64{1, 2, 5, 10, 25, 50, 100},
	}, []string{"endpoint"})

	capReachedTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "integration_pagination_cap_reached_total",
		Help: "Traversals truncated by the iteration cap, by endpoint",
	}, []string{"endpoint"})

	rejectedTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "integration_pagination_rejected_total",
		Help: "Traversals aborted by a provider-rejected page, by endpoint",
	}, []string{"endpoint"})
)

// ErrProviderRejected marks a page response the provider explicitly refused
// (an ok:false payload or equivalent). Match with errors.Is.
var ErrProviderRejected = errors.New("provider rejected request")

// RejectedError carries the provider's stated reason for refusing a page.
type RejectedError struct {
	Endpoint string
	Reason   string
}

// Error implements the error interface.
func (e *RejectedError) Error() string {
	return fmt.Sprintf("provider rejected request to %s: %s", e.Endpoint, e.Reason)
}

// Is reports whether target is ErrProviderRejected.
func (e *RejectedError) Is(target error) bool {
	return target == ErrProviderRejected
}

// Outcome identifies how a traversal terminated.
type Outcome int

const (
	// OutcomeExhausted means the provider reported no further pages.
	OutcomeExhausted Outcome = iota

	// OutcomeCapReached means the traversal stopped at MaxIterations fetches.
	OutcomeCapReached

	// OutcomeRejected means a page response was refused by the provider.
	OutcomeRejected
)

// String returns the outcome name.
func (o Outcome) String() string {
	switch o {
	case OutcomeExhausted:
		return "exhausted"
	case OutcomeCapReached:
		return "cap_reached"
	case OutcomeRejected:
		return "rejected"
	default:
		return "unknown"
	}
}

// PageFunc fetches a single page. cursor is "" for the first request and the
// provider-supplied locator afterwards (an opaque cursor token, or a
// base-URL-relative path produced by NextPath). It returns the page's items
// and the locator of the next page, "" when pagination is exhausted.
type PageFunc[T any] func(ctx context.Context, cursor string) (items []T, nextCursor string, err error)

// Result is the aggregate of a traversal. Items preserves page order and
// intra-page order. On error, Items holds everything accumulated before the
// failing page so the caller can decide whether partial data is usable.
type Result[T any] struct {
	Items   []T
	Pages   int
	Outcome Outcome
}

// Collect drives a bounded sequential traversal over a paginated endpoint,
// aggregating all pages into one list. The full aggregated list is returned
// rather than a lazy sequence.
//
// Termination is threefold and distinguishable:
//   - exhausted: no error, Outcome is OutcomeExhausted
//   - cap reached: no error, Outcome is OutcomeCapReached (graceful truncation)
//   - rejected: error matches ErrProviderRejected, Outcome is OutcomeRejected
//
// Transport errors from fetch propagate unchanged alongside the partial
// accumulation; no retry wrapping happens here.
func Collect[T any](ctx context.Context, endpoint string, fetch PageFunc[T]) (Result[T], error) {
	start := time.Now()

	var items []T
	cursor := ""
	outcome := OutcomeCapReached

	pages := 0
	// Bounded for loop rather than a while loop: the cap must hold even
	// when the provider claims pagination continues forever.
	for ; pages < MaxIterations; pages++ {
		pageItems, next, err := fetch(ctx, cursor)
		if err != nil {
			result := Result[T]{Items: items, Pages: pages + 1, Outcome: OutcomeExhausted}
			var rejected *RejectedError
			if errors.As(err, &rejected) {
				result.Outcome = OutcomeRejected
				rejectedTotal.WithLabelValues(endpoint).Inc()
				log.Error().
					Str("endpoint", endpoint).
					Str("reason", rejected.Reason).
					Int("pages", result.Pages).
					Msg("Provider rejected page request")
			}
			return result, err
		}

		items = append(items, pageItems...)

		if next == "" {
			outcome = OutcomeExhausted
			pages++
			break
		}
		cursor = next
	}

	pagesFetched.WithLabelValues(endpoint).Observe(float64(pages))

	if outcome == OutcomeCapReached {
		capReachedTotal.WithLabelValues(endpoint).Inc()
		log.Warn().
			Str("endpoint", endpoint).
			Int("pages", pages).
			Int("items", len(items)).
			Msg("Iteration cap reached; returning truncated enumeration")
	} else {
		log.Debug().
			Str("endpoint", endpoint).
			Int("pages", pages).
			Int("items", len(items)).
			Dur("duration", time.Since(start)).
			Msg("Enumeration complete")
	}

	return Result[T]{Items: items, Pages: pages, Outcome: outcome}, nil
}
