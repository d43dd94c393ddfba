package slack

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/atriumhq/integration-client/internal/testutil"
	"github.com/atriumhq/integration-client/pkg/pagination"
)

func TestPostMessage(t *testing.T) {
	mock := testutil.NewMockProvider()
	defer mock.Close()

	var received Message
	mock.SetHandler("/api/chat.postMessage", func(w http.ResponseWriter, r *http.Request) {
		body, _ := io.ReadAll(r.Body)
		json.Unmarshal(body, &received)

		w.Header().Set("Content-Type", "application/json; charset=utf-8")
		w.Write([]byte(`{"ok": true, "ts": "1714564800.000100"}`))
	})

	sl := newTestSlackClient(t, mock)

	err := sl.PostMessage(context.Background(), Message{
		Channel: "C123",
		Text:    "deploy finished",
		Attachments: []Attachment{
			{"title": "release", "color": "#36a64f"},
		},
	})
	require.NoError(t, err)

	assert.Equal(t, "C123", received.Channel)
	assert.Equal(t, "deploy finished", received.Text)
	require.Len(t, received.Attachments, 1)
	assert.Equal(t, "release", received.Attachments[0]["title"])
}

func TestPostMessage_RejectedResponse(t *testing.T) {
	mock := testutil.NewMockProvider()
	defer mock.Close()

	mock.SetResponse("/api/chat.postMessage", testutil.MockResponse{
		StatusCode: http.StatusOK,
		Body:       `{"ok": false, "error": "channel_not_found"}`,
	})

	sl := newTestSlackClient(t, mock)

	err := sl.PostMessage(context.Background(), Message{Channel: "C404", Text: "hello"})
	require.Error(t, err)
	assert.True(t, errors.Is(err, pagination.ErrProviderRejected))

	var rejected *pagination.RejectedError
	require.True(t, errors.As(err, &rejected))
	assert.Equal(t, "channel_not_found", rejected.Reason)
}
