package eventbus

import (
	"context"
	"encoding/json"

	"github.com/ThreeDotsLabs/watermill"
	"github.com/ThreeDotsLabs/watermill/message"
	"github.com/docpipe/docpipe/pkg/events"
)

// eventConstructors maps wire event types to empty payload values for
// unmarshaling. Types missing here cannot be consumed, only published.
var eventConstructors = map[events.EventType]func() any{
	events.DocumentReceivedEvent: func() any { return &events.DocumentReceived{} },
	events.RunStartedEvent:       func() any { return &events.RunStarted{} },
	events.RunCompletedEvent:     func() any { return &events.RunCompleted{} },
	events.RunFailedEvent:        func() any { return &events.RunFailed{} },
	events.RunPausedEvent:        func() any { return &events.RunPaused{} },
}

type WatermillEventBus struct {
	publisher     message.Publisher
	subscriber    message.Subscriber
	subscriptions map[events.EventType]EventHandler
}

func NewWatermillEventBus(pub message.Publisher, sub message.Subscriber) EventBus {
	return &WatermillEventBus{
		publisher:     pub,
		subscriber:    sub,
		subscriptions: make(map[events.EventType]EventHandler),
	}
}

func (eb *WatermillEventBus) GenerateID() string {
	return watermill.NewULID()
}

func (eb *WatermillEventBus) Publish(ctx context.Context, key string, event Event) error {
	payload, err := json.Marshal(event)
	if err != nil {
		return err
	}

	msg := message.NewMessage("msg-"+eb.GenerateID(), payload)
	msg.Metadata.Set(events.EventMetadataKey, key)
	msg.Metadata.Set(events.EventTypeMetadataKey, string(event.GetType()))

	return eb.publisher.Publish(events.Topic, msg)
}

func (eb *WatermillEventBus) Subscribe(ctx context.Context) error {
	messages, err := eb.subscriber.Subscribe(ctx, events.Topic)
	if err != nil {
		return err
	}

	go func() {
		for msg := range messages {
			eb.dispatch(ctx, msg)
		}
	}()

	return nil
}

// dispatch routes one message to its registered handler. Messages without a
// handler are acked so they do not pile up behind services that only care
// about a subset of event types; undecodable or failed messages are nacked.
func (eb *WatermillEventBus) dispatch(ctx context.Context, msg *message.Message) {
	eventType := events.EventType(msg.Metadata.Get(events.EventTypeMetadataKey))

	handler, subscribed := eb.subscriptions[eventType]
	if !subscribed {
		msg.Ack()

		return
	}

	construct, known := eventConstructors[eventType]
	if !known {
		msg.Nack()

		return
	}

	event := construct()
	if err := json.Unmarshal(msg.Payload, event); err != nil {
		msg.Nack()

		return
	}

	if err := handler(ctx, event); err != nil {
		msg.Nack()

		return
	}

	msg.Ack()
}

func (eb *WatermillEventBus) Handle(eventType events.EventType, handler EventHandler) error {
	eb.subscriptions[eventType] = handler

	return nil
}

func (eb *WatermillEventBus) Close() error {
	if err := eb.publisher.Close(); err != nil {
		return err
	}

	return eb.subscriber.Close()
}
