package notifier

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/docpipe/docpipe/pkg/protocol"
)

const defaultSendTimeout = 30 * time.Second

// HTTPNotifier delivers notifications through an HTTP email API (Resend and
// compatible services).
type HTTPNotifier struct {
	endpoint string
	apiKey   string
	from     string
	client   *http.Client
}

func NewHTTPNotifier(endpoint, apiKey, from string) *HTTPNotifier {
	return &HTTPNotifier{
		endpoint: endpoint,
		apiKey:   apiKey,
		from:     from,
		client:   &http.Client{Timeout: defaultSendTimeout},
	}
}

type sendRequest struct {
	From    string   `json:"from"`
	To      []string `json:"to"`
	Subject string   `json:"subject"`
	HTML    string   `json:"html,omitempty"`
	Text    string   `json:"text,omitempty"`
}

type sendResponse struct {
	ID string `json:"id"`
}

func (n *HTTPNotifier) Send(ctx context.Context, notification protocol.Notification) (string, error) {
	payload, err := json.Marshal(sendRequest{
		From:    n.from,
		To:      notification.To,
		Subject: notification.Subject,
		HTML:    notification.HTML,
		Text:    notification.Text,
	})
	if err != nil {
		return "", fmt.Errorf("failed to encode notification: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, n.endpoint, bytes.NewReader(payload))
	if err != nil {
		return "", fmt.Errorf("failed to create notification request: %w", err)
	}

	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Authorization", "Bearer "+n.apiKey)

	resp, err := n.client.Do(req)
	if err != nil {
		return "", fmt.Errorf("notification request failed: %w", err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return "", fmt.Errorf("failed to read notification response: %w", err)
	}

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return "", fmt.Errorf("notification provider returned status %d: %s", resp.StatusCode, body)
	}

	var decoded sendResponse
	if err := json.Unmarshal(body, &decoded); err != nil {
		// Some providers return an empty body on success.
		return "", nil //nolint:nilerr
	}

	return decoded.ID, nil
}
