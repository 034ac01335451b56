package ports

import (
	"context"
	"errors"

	"blockdelivery/internal/core/domain/model/order"
)

// ErrIndeterminate signals a submitted transition whose commit outcome is
// unknown, typically after a timeout. It must never be treated as success or
// failure; callers resolve it by re-reading authoritative state before acting,
// and in particular must re-query before retrying a creation to avoid
// duplicate issuance.
var ErrIndeterminate = errors.New("transition outcome indeterminate")

// EventPublisher pushes a typed event derived from a committed transition onto
// the event feed. Delivery is best effort; the feed is a liveness optimization
// for observers, never the source of truth.
type EventPublisher interface {
	Publish(ctx context.Context, event order.Event) error
}

// EventHandler consumes one typed event. Handlers run on the delivery
// goroutine of their subscription and should return quickly.
type EventHandler func(event order.Event)

// Subscription is the cancellation handle returned by Subscribe.
type Subscription interface {
	// Unsubscribe stops delivery and releases the subscriber's resources.
	// Safe to call more than once.
	Unsubscribe()
}

// EventStream fans committed-transition events out to registered subscribers.
//
// A subscriber receives events committed from the moment of subscription
// onward, in commit order for its connection. Events committed while a
// subscriber is disconnected are not replayed; the gap is recovered only by
// re-reading authoritative state.
type EventStream interface {
	Subscribe(handler EventHandler) (Subscription, error)
}
