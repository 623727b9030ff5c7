package protocol

import (
	"context"

	"github.com/docpipe/docpipe/pkg/models"
)

// Notification is one rendered email handed to the notification provider.
type Notification struct {
	Event   models.NotificationEvent `json:"event"`
	To      []string                 `json:"to"`
	Subject string                   `json:"subject"`
	HTML    string                   `json:"html"`
	Text    string                   `json:"text"`
}

// Notifier is the external notification provider. Send returns the
// provider-assigned message id when available.
type Notifier interface {
	Send(ctx context.Context, notification Notification) (string, error)
}
