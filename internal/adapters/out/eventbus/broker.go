// Package eventbus provides an in-process event feed for committed order
// transitions. The broker fans events out to subscribers over buffered
// channels; delivery is best effort and a slow subscriber loses events rather
// than stalling the publisher.
package eventbus

import (
	"context"
	"sync"

	"blockdelivery/internal/core/domain/model/order"
	"blockdelivery/internal/core/ports"

	"github.com/google/uuid"
)

// DefaultSubscriberBuffer is the per-subscriber channel capacity.
const DefaultSubscriberBuffer = 64

// Broker is an in-memory implementation of EventPublisher and EventStream.
// Subscribers registered after an event was published never see it; observers
// that need a complete picture re-read authoritative state instead.
type Broker struct {
	mu          sync.RWMutex
	subscribers map[uuid.UUID]*subscriber
	buffer      int
	closed      bool
}

type subscriber struct {
	ch   chan order.Event
	done chan struct{}
}

// NewBroker creates a broker with the default per-subscriber buffer.
func NewBroker() *Broker {
	return NewBrokerWithBuffer(DefaultSubscriberBuffer)
}

// NewBrokerWithBuffer creates a broker with an explicit per-subscriber buffer size.
func NewBrokerWithBuffer(buffer int) *Broker {
	if buffer <= 0 {
		buffer = DefaultSubscriberBuffer
	}
	return &Broker{
		subscribers: make(map[uuid.UUID]*subscriber),
		buffer:      buffer,
	}
}

// Publish fans the event out to all current subscribers.
// A subscriber whose buffer is full is skipped; the publisher never blocks on
// a slow consumer.
func (b *Broker) Publish(_ context.Context, event order.Event) error {
	b.mu.RLock()
	defer b.mu.RUnlock()

	if b.closed {
		return nil
	}

	for _, sub := range b.subscribers {
		select {
		case sub.ch <- event:
		default:
		}
	}

	return nil
}

// Subscribe registers a handler for events published from this moment on.
// The handler runs on a dedicated goroutine until Unsubscribe or Close.
func (b *Broker) Subscribe(handler ports.EventHandler) (ports.Subscription, error) {
	b.mu.Lock()
	defer b.mu.Unlock()

	sub := &subscriber{
		ch:   make(chan order.Event, b.buffer),
		done: make(chan struct{}),
	}
	id := uuid.New()
	b.subscribers[id] = sub

	go func() {
		for {
			select {
			case event := <-sub.ch:
				handler(event)
			case <-sub.done:
				return
			}
		}
	}()

	return &brokerSubscription{broker: b, id: id}, nil
}

// Close stops delivery to all subscribers. Publish becomes a no-op.
func (b *Broker) Close() {
	b.mu.Lock()
	defer b.mu.Unlock()

	if b.closed {
		return
	}
	b.closed = true

	for id, sub := range b.subscribers {
		close(sub.done)
		delete(b.subscribers, id)
	}
}

func (b *Broker) unsubscribe(id uuid.UUID) {
	b.mu.Lock()
	defer b.mu.Unlock()

	sub, ok := b.subscribers[id]
	if !ok {
		return
	}

	close(sub.done)
	delete(b.subscribers, id)
}

type brokerSubscription struct {
	broker *Broker
	id     uuid.UUID
	once   sync.Once
}

// Unsubscribe stops delivery for this subscription. Safe to call more than once.
func (s *brokerSubscription) Unsubscribe() {
	s.once.Do(func() {
		s.broker.unsubscribe(s.id)
	})
}
