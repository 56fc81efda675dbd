package watermilldb

import (
	"context"
	"encoding/json"
	"fmt"
	"sync"

	"github.com/ark-network/raffle/internal/core/domain"

	"github.com/ThreeDotsLabs/watermill"
	"github.com/ThreeDotsLabs/watermill/message"
	log "github.com/sirupsen/logrus"
)

const (
	MetadataEventType = "event_type"
	MetadataEntityId  = "entity_id"
)

type subscriber struct {
	topic   string
	handler func(events []domain.Event)
}

type eventRepository struct {
	publisher message.Publisher

	subscribers    map[string][]subscriber // topic -> subscribers
	subscriberLock *sync.Mutex
}

// NewWatermillEventRepository publishes every saved event as a json message
// on the given publisher and fans the batch out to the registered handlers.
func NewWatermillEventRepository(publisher message.Publisher) domain.EventRepository {
	return &eventRepository{
		publisher:      publisher,
		subscribers:    make(map[string][]subscriber),
		subscriberLock: &sync.Mutex{},
	}
}

func (e *eventRepository) ClearRegisteredHandlers(topics ...string) {
	e.subscriberLock.Lock()
	defer e.subscriberLock.Unlock()

	if len(topics) == 0 {
		e.subscribers = make(map[string][]subscriber)
		return
	}

	for _, topic := range topics {
		delete(e.subscribers, topic)
	}
}

func (e *eventRepository) Close() {
	//nolint:errcheck
	e.publisher.Close()
}

func (e *eventRepository) RegisterEventsHandler(topic string, handler func(events []domain.Event)) {
	e.subscriberLock.Lock()
	defer e.subscriberLock.Unlock()

	if _, ok := e.subscribers[topic]; !ok {
		e.subscribers[topic] = make([]subscriber, 0)
	}

	e.subscribers[topic] = append(e.subscribers[topic], subscriber{
		topic:   topic,
		handler: handler,
	})
}

func (e *eventRepository) Save(_ context.Context, topic string, id string, events []domain.Event) error {
	if len(events) <= 0 {
		return nil
	}

	if err := e.publish(topic, id, events); err != nil {
		return err
	}

	e.dispatch(topic, events)
	return nil
}

func (e *eventRepository) dispatch(topic string, events []domain.Event) {
	e.subscriberLock.Lock()
	defer e.subscriberLock.Unlock()

	// run the handlers in go routines
	for _, subscriber := range e.subscribers[topic] {
		go subscriber.handler(events)
	}
}

func (e *eventRepository) publish(topic, id string, events []domain.Event) error {
	watermillMessages, err := toWatermillMessages(id, events)
	if err != nil {
		return err
	}
	return e.publisher.Publish(topic, watermillMessages...)
}

func toWatermillMessages(id string, events []domain.Event) ([]*message.Message, error) {
	watermillMessages := make([]*message.Message, 0, len(events))
	for _, event := range events {
		payload, err := json.Marshal(event)
		if err != nil {
			return nil, fmt.Errorf("failed to serialize %s event: %w", event.GetType(), err)
		}

		msg := message.NewMessage(watermill.NewUUID(), payload)
		msg.Metadata.Set(MetadataEventType, event.GetType().String())
		msg.Metadata.Set(MetadataEntityId, id)
		watermillMessages = append(watermillMessages, msg)
	}

	log.Tracef("publishing %d events for %s", len(watermillMessages), id)
	return watermillMessages, nil
}
