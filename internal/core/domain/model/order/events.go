package order

import (
	"encoding/json"
	"fmt"
	"time"

	"blockdelivery/internal/core/domain/model/kernel"

	"github.com/google/uuid"
)

// EventKind tags the closed set of domain events derived from committed transitions.
type EventKind string

const (
	EventKindOrderCreated   EventKind = "order.created"
	EventKindOrderAccepted  EventKind = "order.accepted"
	EventKindOrderCompleted EventKind = "order.completed"
)

// ErrUnknownEventKind is returned when decoding an envelope whose kind tag is
// not part of the closed event set. Consumers are expected to skip such
// payloads rather than propagate them untyped.
var ErrUnknownEventKind = fmt.Errorf("unknown event kind")

// Event is a typed notification derived from exactly one committed transition.
// Events are a liveness optimization for observers, never a source of truth:
// a subscriber that missed events recovers by re-reading authoritative state.
type Event interface {
	// Kind returns the event's tag within the closed event set.
	Kind() EventKind

	// OrderID returns the id of the affected order record.
	OrderID() uint64

	// OrderAddress returns the ledger address of the affected order record.
	OrderAddress() kernel.Address
}

// OrderCreated is emitted when a create transition commits.
type OrderCreated struct {
	ID       uint64
	Address  kernel.Address
	Customer kernel.Identity
	Amount   uint64
}

func (e OrderCreated) Kind() EventKind              { return EventKindOrderCreated }
func (e OrderCreated) OrderID() uint64              { return e.ID }
func (e OrderCreated) OrderAddress() kernel.Address { return e.Address }

// OrderAccepted is emitted when an accept transition commits.
type OrderAccepted struct {
	ID      uint64
	Address kernel.Address
	Courier kernel.Identity
}

func (e OrderAccepted) Kind() EventKind              { return EventKindOrderAccepted }
func (e OrderAccepted) OrderID() uint64              { return e.ID }
func (e OrderAccepted) OrderAddress() kernel.Address { return e.Address }

// OrderCompleted is emitted when a complete transition commits.
type OrderCompleted struct {
	ID      uint64
	Address kernel.Address
}

func (e OrderCompleted) Kind() EventKind              { return EventKindOrderCompleted }
func (e OrderCompleted) OrderID() uint64              { return e.ID }
func (e OrderCompleted) OrderAddress() kernel.Address { return e.Address }

// NewOrderCreatedEvent builds the OrderCreated event for a committed record.
func NewOrderCreatedEvent(o *Order) OrderCreated {
	return OrderCreated{
		ID:       o.ID(),
		Address:  o.Address(),
		Customer: o.Customer(),
		Amount:   o.Amount(),
	}
}

// NewOrderAcceptedEvent builds the OrderAccepted event for a committed record.
func NewOrderAcceptedEvent(o *Order) OrderAccepted {
	return OrderAccepted{
		ID:      o.ID(),
		Address: o.Address(),
		Courier: *o.Courier(),
	}
}

// NewOrderCompletedEvent builds the OrderCompleted event for a committed record.
func NewOrderCompletedEvent(o *Order) OrderCompleted {
	return OrderCompleted{
		ID:      o.ID(),
		Address: o.Address(),
	}
}

// eventEnvelope is the wire representation of an event: a kind tag plus the
// fields of the tagged variant. Identity and address values travel as hex.
type eventEnvelope struct {
	EventID   string    `json:"event_id"`
	Kind      EventKind `json:"kind"`
	OrderID   uint64    `json:"order_id"`
	Address   string    `json:"address"`
	Customer  string    `json:"customer,omitempty"`
	Courier   string    `json:"courier,omitempty"`
	Amount    uint64    `json:"amount,omitempty"`
	EmittedAt time.Time `json:"emitted_at"`
}

// EncodeEvent serializes an event into its JSON wire envelope.
// Each envelope carries a fresh unique event id for consumer-side deduplication.
func EncodeEvent(e Event) ([]byte, error) {
	env := eventEnvelope{
		EventID:   uuid.NewString(),
		Kind:      e.Kind(),
		OrderID:   e.OrderID(),
		Address:   e.OrderAddress().String(),
		EmittedAt: time.Now().UTC(),
	}

	switch ev := e.(type) {
	case OrderCreated:
		env.Customer = ev.Customer.String()
		env.Amount = ev.Amount
	case OrderAccepted:
		env.Courier = ev.Courier.String()
	case OrderCompleted:
	default:
		return nil, fmt.Errorf("%w: %T", ErrUnknownEventKind, e)
	}

	return json.Marshal(env)
}

// DecodeEvent parses a JSON wire envelope into its typed event variant.
// Returns ErrUnknownEventKind for kind tags outside the closed set; callers
// are expected to skip such payloads.
func DecodeEvent(raw []byte) (Event, error) {
	var env eventEnvelope
	if err := json.Unmarshal(raw, &env); err != nil {
		return nil, fmt.Errorf("malformed event envelope: %w", err)
	}

	address, err := kernel.AddressFromString(env.Address)
	if err != nil {
		return nil, fmt.Errorf("malformed event address: %w", err)
	}

	switch env.Kind {
	case EventKindOrderCreated:
		customer, idErr := kernel.IdentityFromString(env.Customer)
		if idErr != nil {
			return nil, fmt.Errorf("malformed event customer: %w", idErr)
		}
		return OrderCreated{ID: env.OrderID, Address: address, Customer: customer, Amount: env.Amount}, nil
	case EventKindOrderAccepted:
		courier, idErr := kernel.IdentityFromString(env.Courier)
		if idErr != nil {
			return nil, fmt.Errorf("malformed event courier: %w", idErr)
		}
		return OrderAccepted{ID: env.OrderID, Address: address, Courier: courier}, nil
	case EventKindOrderCompleted:
		return OrderCompleted{ID: env.OrderID, Address: address}, nil
	default:
		return nil, fmt.Errorf("%w: %q", ErrUnknownEventKind, env.Kind)
	}
}
