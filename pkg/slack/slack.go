// Package slack implements conversation lookup over Slack's cursor-paginated
// list endpoints, and message posting.
//
// Lookup resolves a conversation name to its ID by scanning public channels,
// then private groups, then workspace members, in that fixed order. The first
// kind to match wins; later kinds are never queried once a match is found.
package slack

import (
	"context"
	"fmt"
	"net/url"
	"strings"

	"github.com/rs/zerolog"

	"github.com/atriumhq/integration-client/pkg/client"
	"github.com/atriumhq/integration-client/pkg/logging"
	"github.com/atriumhq/integration-client/pkg/pagination"
)

// DefaultBaseURL is the public Slack API origin.
const DefaultBaseURL = "https://slack.com"

// Kind identifies the resource kind a lookup matched.
type Kind string

const (
	// KindChannel is a public channel.
	KindChannel Kind = "channel"

	// KindGroup is a private group.
	KindGroup Kind = "group"

	// KindMember is a workspace member (direct message target).
	KindMember Kind = "member"
)

// Display prefixes for matched resources.
const (
	ChannelPrefix = "#"
	MemberPrefix  = "@"
)

// TrimNamePrefix strips a leading channel or member prefix from a
// user-entered name, e.g. "#critical" -> "critical".
func TrimNamePrefix(name string) string {
	return strings.TrimLeft(name, ChannelPrefix+MemberPrefix)
}

// Match is the result of a successful lookup.
type Match struct {
	Kind   Kind
	ID     string
	Prefix string
}

// Conversation is the name/id pair common to channels, groups, and members.
type Conversation struct {
	ID   string `json:"id"`
	Name string `json:"name"`
}

// listPage is the wire shape of one Slack list response. Exactly one of the
// collection fields is populated, depending on the endpoint.
type listPage struct {
	OK               bool           `json:"ok"`
	Error            string         `json:"error"`
	Channels         []Conversation `json:"channels"`
	Groups           []Conversation `json:"groups"`
	Members          []Conversation `json:"members"`
	ResponseMetadata struct {
		NextCursor string `json:"next_cursor"`
	} `json:"response_metadata"`
}

// lookupStep describes one step of the lookup chain: which endpoint to scan,
// which collection field holds its items, and how to tag a match.
type lookupStep struct {
	kind     Kind
	endpoint string
	items    func(p *listPage) []Conversation
	prefix   string
}

// lookupOrder is the fixed precedence of the chain: channel, then group,
// then member.
var lookupOrder = []lookupStep{
	{KindChannel, "/api/channels.list", func(p *listPage) []Conversation { return p.Channels }, ChannelPrefix},
	{KindGroup, "/api/groups.list", func(p *listPage) []Conversation { return p.Groups }, ChannelPrefix},
	{KindMember, "/api/users.list", func(p *listPage) []Conversation { return p.Members }, MemberPrefix},
}

// Client wraps the HTTP collaborator with Slack-specific operations.
type Client struct {
	http   *client.Client
	logger zerolog.Logger
}

// New creates a Slack client over an HTTP collaborator anchored at the Slack
// API origin.
func New(httpClient *client.Client) *Client {
	return &Client{
		http:   httpClient,
		logger: logging.NewLogger("slack-client"),
	}
}

// Lookup resolves name to a conversation, scanning kinds in lookupOrder and
// returning the first exact, case-sensitive match. It returns nil with no
// error when no kind matches.
//
// A provider-rejected list response (ok:false) aborts the whole chain: the
// error matches pagination.ErrProviderRejected and is distinct from "not
// found", so callers can tell "give up" apart from "the name doesn't exist".
func (c *Client) Lookup(ctx context.Context, name string) (*Match, error) {
	for _, step := range lookupOrder {
		match, err := c.scanKind(ctx, step, name)
		if err != nil {
			return nil, err
		}
		if match != nil {
			c.logger.Debug().
				Str("name", name).
				Str("kind", string(match.Kind)).
				Str("id", match.ID).
				Msg("Resolved conversation")
			return match, nil
		}
	}

	return nil, nil
}

// scanKind pages through one kind's listing endpoint looking for name,
// stopping at the first matching item.
func (c *Client) scanKind(ctx context.Context, step lookupStep, name string) (*Match, error) {
	var match *Match

	_, err := pagination.Collect(ctx, step.endpoint,
		func(ctx context.Context, cursor string) ([]Conversation, string, error) {
			page, err := c.fetchListPage(ctx, step.endpoint, cursor)
			if err != nil {
				return nil, "", err
			}

			for _, item := range step.items(page) {
				if item.Name == name {
					match = &Match{Kind: step.kind, ID: item.ID, Prefix: step.prefix}
					// Early exit: report no further pages.
					return nil, "", nil
				}
			}

			return nil, page.ResponseMetadata.NextCursor, nil
		})
	if err != nil {
		return nil, err
	}

	return match, nil
}

// fetchListPage issues one list request. The request parameters are built
// fresh each page; the cursor is never merged into a shared parameter map.
func (c *Client) fetchListPage(ctx context.Context, endpoint, cursor string) (*listPage, error) {
	params := url.Values{
		"exclude_archived": []string{"false"},
		"exclude_members":  []string{"true"},
	}
	if cursor != "" {
		params.Set("cursor", cursor)
	}

	resp, err := c.http.Get(ctx, endpoint, params)
	if err != nil {
		return nil, err
	}

	var page listPage
	if err := resp.Decode(&page); err != nil {
		return nil, fmt.Errorf("decode list page: %w", err)
	}

	if !page.OK {
		return nil, &pagination.RejectedError{Endpoint: endpoint, Reason: page.Error}
	}

	return &page, nil
}
