package eventbus

import (
	"context"
	"testing"
	"time"

	"github.com/ThreeDotsLabs/watermill"
	"github.com/ThreeDotsLabs/watermill/pubsub/gochannel"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/docpipe/docpipe/pkg/events"
)

func newGoChannelBus(t *testing.T) EventBus {
	t.Helper()

	channel := gochannel.NewGoChannel(gochannel.Config{}, watermill.NopLogger{})
	bus := NewWatermillEventBus(channel, channel)

	t.Cleanup(func() {
		_ = bus.Close()
	})

	return bus
}

func TestWatermillEventBus_PublishAndHandle(t *testing.T) {
	bus := newGoChannelBus(t)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	received := make(chan *events.DocumentReceived, 1)

	err := bus.Handle(events.DocumentReceivedEvent, func(_ context.Context, event any) error {
		decoded, ok := event.(*events.DocumentReceived)
		if ok {
			received <- decoded
		}

		return nil
	})
	require.NoError(t, err)
	require.NoError(t, bus.Subscribe(ctx))

	err = bus.Publish(ctx, "doc-1", events.DocumentReceived{
		BaseEvent: events.BaseEvent{
			ID:        bus.GenerateID(),
			Type:      events.DocumentReceivedEvent,
			Timestamp: time.Now().UTC(),
			OrgID:     "org-1",
		},
		DocumentID: "doc-1",
		Filename:   "invoice.pdf",
		Source:     "api_ingest",
	})
	require.NoError(t, err)

	select {
	case decoded := <-received:
		assert.Equal(t, "doc-1", decoded.DocumentID)
		assert.Equal(t, "org-1", decoded.OrgID)
		assert.Equal(t, "api_ingest", decoded.Source)
	case <-time.After(2 * time.Second):
		t.Fatal("timed out waiting for document received event")
	}
}

func TestWatermillEventBus_IgnoresUnhandledEventTypes(t *testing.T) {
	bus := newGoChannelBus(t)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	received := make(chan *events.RunCompleted, 1)

	err := bus.Handle(events.RunCompletedEvent, func(_ context.Context, event any) error {
		decoded, ok := event.(*events.RunCompleted)
		if ok {
			received <- decoded
		}

		return nil
	})
	require.NoError(t, err)
	require.NoError(t, bus.Subscribe(ctx))

	base := events.BaseEvent{Timestamp: time.Now().UTC(), OrgID: "org-1", WorkflowID: "wf-1"}

	base.Type = events.RunStartedEvent
	require.NoError(t, bus.Publish(ctx, "run-1", events.RunStarted{BaseEvent: base, RunID: "run-1", DocumentID: "doc-1"}))

	base.Type = events.RunCompletedEvent
	require.NoError(t, bus.Publish(ctx, "run-1", events.RunCompleted{BaseEvent: base, RunID: "run-1", DocumentID: "doc-1"}))

	select {
	case decoded := <-received:
		assert.Equal(t, "run-1", decoded.RunID)
	case <-time.After(2 * time.Second):
		t.Fatal("timed out waiting for run completed event")
	}

	assert.Empty(t, received)
}

func TestWatermillEventBus_GenerateIDIsUnique(t *testing.T) {
	bus := newGoChannelBus(t)

	first := bus.GenerateID()
	second := bus.GenerateID()

	assert.NotEmpty(t, first)
	assert.NotEqual(t, first, second)
}
