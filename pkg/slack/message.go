package slack

import (
	"context"
	"fmt"

	"github.com/atriumhq/integration-client/pkg/pagination"
)

// Attachment is a free-form Slack message attachment.
type Attachment map[string]any

// Message is a chat.postMessage payload.
type Message struct {
	Channel     string       `json:"channel"`
	Text        string       `json:"text,omitempty"`
	Attachments []Attachment `json:"attachments,omitempty"`
}

// postResponse is the wire shape of a chat.postMessage response.
type postResponse struct {
	OK    bool   `json:"ok"`
	Error string `json:"error"`
	TS    string `json:"ts"`
}

// PostMessage posts a message to a channel. An ok:false response surfaces as
// a provider-rejected error, matching pagination.ErrProviderRejected.
func (c *Client) PostMessage(ctx context.Context, msg Message) error {
	const endpoint = "/api/chat.postMessage"

	resp, err := c.http.Post(ctx, endpoint, msg)
	if err != nil {
		return err
	}

	var posted postResponse
	if err := resp.Decode(&posted); err != nil {
		return fmt.Errorf("decode post response: %w", err)
	}

	if !posted.OK {
		c.logger.Info().
			Str("channel", msg.Channel).
			Str("error", posted.Error).
			Msg("Slack message post rejected")
		return &pagination.RejectedError{Endpoint: endpoint, Reason: posted.Error}
	}

	return nil
}
