package pagination

import (
	"strings"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/rs/zerolog/log"
)

var protocolViolationsTotal = promauto.NewCounter(prometheus.CounterOpts{
	Name: "integration_pagination_protocol_violations_total",
	Help: "Total rel=next URLs rejected for failing the base URL origin check",
})

// NextPath extracts the base-URL-relative path of the next page from a
// provider's pagination relation map.
//
// It returns "" when no rel="next" relation exists (pagination exhausted).
// A rel="next" URL that does not start with baseURL is a protocol violation:
// a diagnostic is logged with the raw Link header, the offending URL, and the
// expected base, and "" is returned so the traversal stops with the pages
// accumulated so far. Partial results are preferred over failing the whole
// operation.
func NextPath(baseURL string, rel map[string]string, rawLink string) string {
	next, ok := rel["next"]
	if !ok {
		return ""
	}

	if !strings.HasPrefix(next, baseURL) {
		protocolViolationsTotal.Inc()
		log.Warn().
			Str("link_header", rawLink).
			Str("next_url", next).
			Str("base_url", baseURL).
			Msg("Link header rel=next did not start with base URL; stopping pagination")
		return ""
	}

	return strings.TrimPrefix(next, baseURL)
}
