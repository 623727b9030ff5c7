package notify

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/docpipe/docpipe/pkg/models"
	"github.com/docpipe/docpipe/pkg/persistence/file"
	"github.com/docpipe/docpipe/pkg/protocol"
)

type recordingSender struct {
	sent []protocol.Notification
	err  error
}

func (s *recordingSender) Send(_ context.Context, notification protocol.Notification) (string, error) {
	if s.err != nil {
		return "", s.err
	}

	s.sent = append(s.sent, notification)

	return "msg-1", nil
}

func seedPreferences(t *testing.T, p *file.Persistence) {
	t.Helper()

	repo, ok := p.NotificationPreferenceRepository().(*file.PreferenceRepository)
	require.True(t, ok)

	err := repo.SavePreferences(context.Background(), "org-1", []*models.NotificationPreference{
		{OrgID: "org-1", Email: "reviewer@acme.test", NeedsReview: true},
		{OrgID: "org-1", Email: "accounting@acme.test", DocumentApproved: true},
	})
	require.NoError(t, err)
}

func TestNotifyStep_UnionsPreferenceAndStaticRecipients(t *testing.T) {
	p := file.NewPersistence(t.TempDir())
	seedPreferences(t, p)

	sender := &recordingSender{}
	step := NewNotifyStep("node-notify", map[string]any{
		"event":      "needs_review",
		"recipients": []any{"ops@acme.test", "reviewer@acme.test"},
	}, p.DocumentRepository(), p.NotificationPreferenceRepository(), sender)

	execCtx := models.NewExecutionContext("wf-1", "run-1", "doc-1", "org-1")

	result, err := step.Execute(context.Background(), execCtx)
	require.NoError(t, err)

	assert.Equal(t, models.StepStatusSuccess, result.Status)
	require.Len(t, sender.sent, 1)
	assert.Equal(t, []string{"ops@acme.test", "reviewer@acme.test"}, sender.sent[0].To)
	assert.Equal(t, "msg-1", result.Data["message_id"])
	assert.Equal(t, 2, result.Data["recipients"])
}

func TestNotifyStep_NoRecipientsFails(t *testing.T) {
	p := file.NewPersistence(t.TempDir())

	sender := &recordingSender{}
	step := NewNotifyStep("node-notify", map[string]any{
		"event": "document_approved",
	}, p.DocumentRepository(), p.NotificationPreferenceRepository(), sender)

	execCtx := models.NewExecutionContext("wf-1", "run-1", "doc-1", "org-1")

	result, err := step.Execute(context.Background(), execCtx)
	require.NoError(t, err)

	assert.Equal(t, models.StepStatusFailed, result.Status)
	assert.Empty(t, sender.sent)
}

func TestNotifyStep_SenderErrorFailsStep(t *testing.T) {
	p := file.NewPersistence(t.TempDir())
	seedPreferences(t, p)

	sender := &recordingSender{err: errors.New("smtp unavailable")}
	step := NewNotifyStep("node-notify", map[string]any{
		"event": "needs_review",
	}, p.DocumentRepository(), p.NotificationPreferenceRepository(), sender)

	execCtx := models.NewExecutionContext("wf-1", "run-1", "doc-1", "org-1")

	result, err := step.Execute(context.Background(), execCtx)
	require.NoError(t, err)

	assert.Equal(t, models.StepStatusFailed, result.Status)
	assert.Contains(t, result.Message, "smtp unavailable")
}
