package httpservice

import (
	"context"
	"fmt"
	"sync"

	"github.com/ThreeDotsLabs/watermill/message"
	"github.com/ark-network/raffle/internal/core/domain"
	watermilldb "github.com/ark-network/raffle/internal/infrastructure/db/watermill"
	"github.com/google/uuid"
	log "github.com/sirupsen/logrus"
)

const listenerBuffer = 64

type sseEvent struct {
	eventType string
	data      string
}

// broker fans out the raffle events read from the bus to the connected SSE
// clients. Slow clients miss events rather than blocking the others.
type broker struct {
	subscriber message.Subscriber

	lock      *sync.Mutex
	listeners map[string]chan sseEvent
	cancel    context.CancelFunc
	done      chan struct{}
}

func newBroker(subscriber message.Subscriber) *broker {
	return &broker{
		subscriber: subscriber,
		lock:       &sync.Mutex{},
		listeners:  make(map[string]chan sseEvent),
	}
}

func (b *broker) start() error {
	if b.subscriber == nil {
		return nil
	}

	ctx, cancel := context.WithCancel(context.Background())
	messages, err := b.subscriber.Subscribe(ctx, domain.RaffleTopic)
	if err != nil {
		cancel()
		return fmt.Errorf("failed to subscribe to raffle events: %w", err)
	}

	b.cancel = cancel
	b.done = make(chan struct{})
	go b.listen(messages)
	return nil
}

func (b *broker) stop() {
	if b.cancel == nil {
		return
	}
	b.cancel()
	<-b.done

	b.lock.Lock()
	defer b.lock.Unlock()
	for id, ch := range b.listeners {
		close(ch)
		delete(b.listeners, id)
	}
}

func (b *broker) listen(messages <-chan *message.Message) {
	defer close(b.done)

	for msg := range messages {
		b.broadcast(sseEvent{
			eventType: msg.Metadata.Get(watermilldb.MetadataEventType),
			data:      string(msg.Payload),
		})
		msg.Ack()
	}
}

func (b *broker) subscribe() (string, <-chan sseEvent) {
	b.lock.Lock()
	defer b.lock.Unlock()

	id := uuid.New().String()
	ch := make(chan sseEvent, listenerBuffer)
	b.listeners[id] = ch
	return id, ch
}

func (b *broker) unsubscribe(id string) {
	b.lock.Lock()
	defer b.lock.Unlock()

	if ch, ok := b.listeners[id]; ok {
		close(ch)
		delete(b.listeners, id)
	}
}

func (b *broker) broadcast(event sseEvent) {
	b.lock.Lock()
	defer b.lock.Unlock()

	for id, ch := range b.listeners {
		select {
		case ch <- event:
		default:
			log.Debugf("dropping %s event for slow listener %s", event.eventType, id)
		}
	}
}
