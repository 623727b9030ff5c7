package services

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/docpipe/docpipe/pkg/eventbus"
	"github.com/docpipe/docpipe/pkg/events"
	"github.com/docpipe/docpipe/pkg/models"
	"github.com/docpipe/docpipe/pkg/persistence"
	"github.com/docpipe/docpipe/pkg/persistence/file"
)

type capturingPublisher struct {
	keys   []string
	events []eventbus.Event
}

func (p *capturingPublisher) Publish(_ context.Context, key string, event eventbus.Event) error {
	p.keys = append(p.keys, key)
	p.events = append(p.events, event)

	return nil
}

func TestDocumentService_IngestPersistsAndAnnounces(t *testing.T) {
	p := file.NewPersistence(t.TempDir())
	publisher := &capturingPublisher{}
	service := NewDocument(p, publisher)

	ctx := context.Background()

	ingested, err := service.Ingest(ctx, &models.Document{
		OrgID:    "org-1",
		Filename: "invoice.pdf",
		MimeType: "application/pdf",
	}, "api_ingest")
	require.NoError(t, err)

	assert.NotEmpty(t, ingested.ID)
	assert.Equal(t, models.DocumentStatusUploaded, ingested.Status)
	assert.False(t, ingested.CreatedAt.IsZero())

	loaded, err := p.DocumentRepository().DocumentByID(ctx, ingested.ID)
	require.NoError(t, err)
	assert.Equal(t, "invoice.pdf", loaded.Filename)

	require.Len(t, publisher.events, 1)
	assert.Equal(t, events.DocumentReceivedEvent, publisher.events[0].GetType())
	assert.Equal(t, ingested.ID, publisher.keys[0])

	received, ok := publisher.events[0].(events.DocumentReceived)
	require.True(t, ok)
	assert.Equal(t, "api_ingest", received.Source)
	assert.Equal(t, "org-1", received.OrgID)
}

func TestDocumentService_IngestRejectsMissingOrg(t *testing.T) {
	service := NewDocument(file.NewPersistence(t.TempDir()), nil)

	_, err := service.Ingest(context.Background(), &models.Document{Filename: "invoice.pdf"}, "upload")
	require.ErrorIs(t, err, ErrEmptyOrgID)
}

func TestDocumentService_IngestRejectsNilDocument(t *testing.T) {
	service := NewDocument(file.NewPersistence(t.TempDir()), nil)

	_, err := service.Ingest(context.Background(), nil, "upload")
	require.ErrorIs(t, err, ErrDocumentNil)
}

func TestDocumentService_DecideApproves(t *testing.T) {
	p := file.NewPersistence(t.TempDir())
	service := NewDocument(p, nil)

	ctx := context.Background()

	ingested, err := service.Ingest(ctx, &models.Document{
		OrgID:    "org-1",
		Filename: "invoice.pdf",
	}, "upload")
	require.NoError(t, err)

	require.NoError(t, service.Decide(ctx, ingested.ID, "reviewer@acme.test", true))

	loaded, err := service.FetchByID(ctx, ingested.ID)
	require.NoError(t, err)
	assert.Equal(t, models.DocumentStatusApproved, loaded.Status)
}

func TestDocumentService_DecideRejects(t *testing.T) {
	p := file.NewPersistence(t.TempDir())
	service := NewDocument(p, nil)

	ctx := context.Background()

	ingested, err := service.Ingest(ctx, &models.Document{
		OrgID:    "org-1",
		Filename: "invoice.pdf",
	}, "upload")
	require.NoError(t, err)

	require.NoError(t, service.Decide(ctx, ingested.ID, "reviewer@acme.test", false))

	loaded, err := service.FetchByID(ctx, ingested.ID)
	require.NoError(t, err)
	assert.Equal(t, models.DocumentStatusRejected, loaded.Status)
}

func TestDocumentService_DecideUnknownDocumentErrors(t *testing.T) {
	service := NewDocument(file.NewPersistence(t.TempDir()), nil)

	err := service.Decide(context.Background(), "doc-missing", "reviewer@acme.test", true)
	require.Error(t, err)
	assert.True(t, persistence.IsDocumentNotFound(err))
}

func TestRunService_LogsUnknownRunErrors(t *testing.T) {
	service := NewRun(file.NewPersistence(t.TempDir()))

	_, err := service.Logs(context.Background(), "run-missing")
	require.Error(t, err)
	assert.True(t, persistence.IsRunNotFound(err))
}
