package client

import (
	"encoding/json"
	"net/http"
	"strings"
)

// Response is a decoded provider response. Body holds the raw JSON payload;
// Rel holds the pagination relation map parsed from the Link header, when the
// provider sent one.
type Response struct {
	StatusCode int
	Header     http.Header
	Body       json.RawMessage
	Rel        map[string]string
}

// Decode unmarshals the response body into v.
func (r *Response) Decode(v any) error {
	return json.Unmarshal(r.Body, v)
}

// parseLinkHeader parses a Link header of the form
//
//	<https://api.example.com/resource?page=2>; rel="next",
//	<https://api.example.com/resource?page=5>; rel="last"
//
// into a relation map. Entries without a rel parameter or a bracketed URL are
// skipped.
func parseLinkHeader(header string) map[string]string {
	if header == "" {
		return nil
	}

	rel := make(map[string]string)
	for _, part := range strings.Split(header, ",") {
		segments := strings.Split(strings.TrimSpace(part), ";")
		if len(segments) < 2 {
			continue
		}

		target := strings.TrimSpace(segments[0])
		if !strings.HasPrefix(target, "<") || !strings.HasSuffix(target, ">") {
			continue
		}
		target = strings.Trim(target, "<>")

		for _, param := range segments[1:] {
			key, value, found := strings.Cut(strings.TrimSpace(param), "=")
			if !found || strings.TrimSpace(key) != "rel" {
				continue
			}
			rel[strings.Trim(strings.TrimSpace(value), `"`)] = target
		}
	}

	if len(rel) == 0 {
		return nil
	}
	return rel
}
