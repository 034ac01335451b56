package eventbus_test

import (
	"sync"
	"testing"
	"time"

	"blockdelivery/internal/adapters/out/eventbus"
	"blockdelivery/internal/core/domain/model/kernel"
	"blockdelivery/internal/core/domain/model/order"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newCreatedEvent(t *testing.T, id uint64) order.OrderCreated {
	t.Helper()
	record, err := order.NewOrder(id, kernel.NewRandomIdentity(), 1000, time.Now())
	require.NoError(t, err)
	return order.NewOrderCreatedEvent(record)
}

func TestBroker_DeliversToSubscriber(t *testing.T) {
	broker := eventbus.NewBroker()
	defer broker.Close()

	received := make(chan order.Event, 1)
	sub, err := broker.Subscribe(func(event order.Event) {
		received <- event
	})
	require.NoError(t, err)
	defer sub.Unsubscribe()

	event := newCreatedEvent(t, 1)
	require.NoError(t, broker.Publish(t.Context(), event))

	select {
	case got := <-received:
		assert.Equal(t, order.EventKindOrderCreated, got.Kind())
		assert.Equal(t, uint64(1), got.OrderID())
	case <-time.After(time.Second):
		t.Fatal("event was not delivered")
	}
}

func TestBroker_FansOutToAllSubscribers(t *testing.T) {
	broker := eventbus.NewBroker()
	defer broker.Close()

	const subscribers = 5
	var wg sync.WaitGroup
	wg.Add(subscribers)

	for i := 0; i < subscribers; i++ {
		_, err := broker.Subscribe(func(order.Event) {
			wg.Done()
		})
		require.NoError(t, err)
	}

	require.NoError(t, broker.Publish(t.Context(), newCreatedEvent(t, 2)))

	done := make(chan struct{})
	go func() {
		wg.Wait()
		close(done)
	}()

	select {
	case <-done:
	case <-time.After(time.Second):
		t.Fatal("not all subscribers received the event")
	}
}

func TestBroker_UnsubscribedHandlerStopsReceiving(t *testing.T) {
	broker := eventbus.NewBroker()
	defer broker.Close()

	received := make(chan order.Event, 8)
	sub, err := broker.Subscribe(func(event order.Event) {
		received <- event
	})
	require.NoError(t, err)

	sub.Unsubscribe()
	// Calling twice must be safe
	sub.Unsubscribe()

	require.NoError(t, broker.Publish(t.Context(), newCreatedEvent(t, 3)))

	select {
	case <-received:
		t.Fatal("unsubscribed handler received an event")
	case <-time.After(100 * time.Millisecond):
	}
}

func TestBroker_SlowSubscriberDoesNotBlockPublisher(t *testing.T) {
	broker := eventbus.NewBrokerWithBuffer(1)
	defer broker.Close()

	block := make(chan struct{})
	sub, err := broker.Subscribe(func(order.Event) {
		<-block
	})
	require.NoError(t, err)
	defer sub.Unsubscribe()

	// The first event occupies the handler, the second fills the buffer,
	// further publishes must drop rather than block.
	done := make(chan struct{})
	go func() {
		for i := uint64(0); i < 10; i++ {
			_ = broker.Publish(t.Context(), newCreatedEvent(t, i+10))
		}
		close(done)
	}()

	select {
	case <-done:
	case <-time.After(time.Second):
		t.Fatal("publisher blocked on a slow subscriber")
	}

	close(block)
}

func TestBroker_SubscriberJoinedAfterPublishMissesEvent(t *testing.T) {
	broker := eventbus.NewBroker()
	defer broker.Close()

	require.NoError(t, broker.Publish(t.Context(), newCreatedEvent(t, 20)))

	received := make(chan order.Event, 1)
	sub, err := broker.Subscribe(func(event order.Event) {
		received <- event
	})
	require.NoError(t, err)
	defer sub.Unsubscribe()

	select {
	case <-received:
		t.Fatal("late subscriber must not see earlier events")
	case <-time.After(100 * time.Millisecond):
	}
}

func TestBroker_PublishAfterCloseIsNoop(t *testing.T) {
	broker := eventbus.NewBroker()

	received := make(chan order.Event, 1)
	_, err := broker.Subscribe(func(event order.Event) {
		received <- event
	})
	require.NoError(t, err)

	broker.Close()

	require.NoError(t, broker.Publish(t.Context(), newCreatedEvent(t, 30)))

	select {
	case <-received:
		t.Fatal("closed broker delivered an event")
	case <-time.After(100 * time.Millisecond):
	}
}

func TestBroker_ConcurrentPublishAndSubscribe(t *testing.T) {
	broker := eventbus.NewBroker()
	defer broker.Close()

	var wg sync.WaitGroup
	for i := 0; i < 8; i++ {
		wg.Add(1)
		go func(n uint64) {
			defer wg.Done()
			sub, err := broker.Subscribe(func(order.Event) {})
			assert.NoError(t, err)
			_ = broker.Publish(t.Context(), newCreatedEvent(t, n+100))
			sub.Unsubscribe()
		}(uint64(i))
	}
	wg.Wait()
}
