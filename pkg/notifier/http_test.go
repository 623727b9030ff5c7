package notifier

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/docpipe/docpipe/pkg/models"
	"github.com/docpipe/docpipe/pkg/protocol"
)

func TestHTTPNotifier_SendDeliversEmail(t *testing.T) {
	var (
		gotAuth    string
		gotPayload sendRequest
	)

	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotAuth = r.Header.Get("Authorization")

		body, _ := io.ReadAll(r.Body)
		_ = json.Unmarshal(body, &gotPayload)

		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte(`{"id":"email-123"}`))
	}))
	defer server.Close()

	notifier := NewHTTPNotifier(server.URL, "secret", "docpipe@acme.test")

	messageID, err := notifier.Send(context.Background(), protocol.Notification{
		Event:   models.NotificationEventNeedsReview,
		To:      []string{"reviewer@acme.test"},
		Subject: "Document needs review",
		HTML:    "<p>review me</p>",
		Text:    "review me",
	})
	require.NoError(t, err)

	assert.Equal(t, "email-123", messageID)
	assert.Equal(t, "Bearer secret", gotAuth)
	assert.Equal(t, "docpipe@acme.test", gotPayload.From)
	assert.Equal(t, []string{"reviewer@acme.test"}, gotPayload.To)
	assert.Equal(t, "Document needs review", gotPayload.Subject)
}

func TestHTTPNotifier_SendToleratesEmptyResponseBody(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusAccepted)
	}))
	defer server.Close()

	notifier := NewHTTPNotifier(server.URL, "secret", "docpipe@acme.test")

	messageID, err := notifier.Send(context.Background(), protocol.Notification{
		To:      []string{"reviewer@acme.test"},
		Subject: "Document needs review",
	})
	require.NoError(t, err)
	assert.Empty(t, messageID)
}

func TestHTTPNotifier_SendProviderErrorFails(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusUnprocessableEntity)
		_, _ = w.Write([]byte(`{"message":"invalid recipient"}`))
	}))
	defer server.Close()

	notifier := NewHTTPNotifier(server.URL, "secret", "docpipe@acme.test")

	_, err := notifier.Send(context.Background(), protocol.Notification{
		To: []string{"not-an-email"},
	})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "422")
}
