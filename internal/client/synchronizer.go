// Package client maintains an advisory read-side projection of order records.
//
// The projection is fed by the best-effort event stream and trued up by
// periodic resynchronization against authoritative state. It may briefly lag
// or miss events; it is never consulted to decide a transition.
package client

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sort"
	"sync"

	"blockdelivery/internal/core/application/usecases/queries"
	"blockdelivery/internal/core/domain/model/kernel"
	"blockdelivery/internal/core/domain/model/order"
	"blockdelivery/internal/core/ports"
)

// OrderView is the projection's snapshot of one active order record.
type OrderView struct {
	ID       uint64
	Address  kernel.Address
	Customer kernel.Identity
	Courier  *kernel.Identity
	Amount   uint64
	Status   order.Status
}

// ActiveOrdersReader reads the authoritative set of non-completed orders.
// Satisfied by queries.GetUncompletedOrdersQueryHandler.
type ActiveOrdersReader interface {
	Handle(ctx context.Context, query queries.GetUncompletedOrdersQuery) ([]queries.OrderQueryResponse, error)
}

// Synchronizer keeps an in-memory projection of active orders current by
// applying feed events as they arrive and replacing the whole projection on
// Resync. Completed orders leave the projection.
type Synchronizer struct {
	stream ports.EventStream
	reader ActiveOrdersReader
	logger *slog.Logger

	mu         sync.RWMutex
	projection map[kernel.Address]OrderView
}

// NewSynchronizer creates a synchronizer over the given event stream and reader.
func NewSynchronizer(stream ports.EventStream, reader ActiveOrdersReader, logger *slog.Logger) *Synchronizer {
	return &Synchronizer{
		stream:     stream,
		reader:     reader,
		logger:     logger,
		projection: make(map[kernel.Address]OrderView),
	}
}

// Start subscribes to the event stream and applies events until ctx is done.
// Events committed before Start are not replayed; call Resync to pick them up.
func (s *Synchronizer) Start(ctx context.Context) error {
	sub, err := s.stream.Subscribe(s.apply)
	if err != nil {
		return err
	}

	go func() {
		<-ctx.Done()
		sub.Unsubscribe()
	}()

	return nil
}

// Resync replaces the projection with the authoritative set of active orders.
// This is the recovery path for missed feed events and for indeterminate
// submission outcomes.
func (s *Synchronizer) Resync(ctx context.Context) error {
	responses, err := s.reader.Handle(ctx, queries.NewGetUncompletedOrdersQuery())
	if err != nil {
		return err
	}

	fresh := make(map[kernel.Address]OrderView, len(responses))
	for _, r := range responses {
		fresh[r.Address] = OrderView{
			ID:       r.ID,
			Address:  r.Address,
			Customer: r.Customer,
			Courier:  r.Courier,
			Amount:   r.Amount,
			Status:   r.Status,
		}
	}

	s.mu.Lock()
	s.projection = fresh
	s.mu.Unlock()

	return nil
}

// Get returns the projected view of the record at address, if present.
func (s *Synchronizer) Get(address kernel.Address) (OrderView, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	view, ok := s.projection[address]
	return view, ok
}

// Snapshot returns all projected views sorted by issuance id.
func (s *Synchronizer) Snapshot() []OrderView {
	s.mu.RLock()
	views := make([]OrderView, 0, len(s.projection))
	for _, view := range s.projection {
		views = append(views, view)
	}
	s.mu.RUnlock()

	sort.Slice(views, func(i, j int) bool { return views[i].ID < views[j].ID })
	return views
}

func (s *Synchronizer) apply(event order.Event) {
	s.mu.Lock()
	defer s.mu.Unlock()

	switch e := event.(type) {
	case order.OrderCreated:
		s.projection[e.Address] = OrderView{
			ID:       e.ID,
			Address:  e.Address,
			Customer: e.Customer,
			Amount:   e.Amount,
			Status:   order.Created,
		}
	case order.OrderAccepted:
		view, ok := s.projection[e.Address]
		if !ok {
			// The creation event was missed; the next resync fills the gap
			s.logger.Debug("accept event for unknown record",
				slog.String("address", e.Address.String()))
			return
		}
		courier := e.Courier
		view.Courier = &courier
		view.Status = order.Accepted
		s.projection[e.Address] = view
	case order.OrderCompleted:
		delete(s.projection, e.Address)
	default:
		s.logger.Debug("ignoring unhandled event kind",
			slog.String("kind", string(event.Kind())))
	}
}

// Submit runs a transition submission and classifies an expired or canceled
// context as indeterminate: the commit may or may not have happened, and the
// caller must re-read authoritative state before acting on the outcome.
//
// Submit is the client-side wrapper for consumers submitting transitions over
// a network boundary (an HTTP call against the API, a NATS request). In-process
// callers invoke the command handlers directly and never see an indeterminate
// outcome, because a handler's transaction either committed or rolled back by
// the time it returns. A caller that receives ports.ErrIndeterminate should
// follow up with Resync before retrying the submission.
func Submit(ctx context.Context, submit func(context.Context) error) error {
	err := submit(ctx)
	if err == nil {
		return nil
	}

	if errors.Is(err, context.DeadlineExceeded) || errors.Is(err, context.Canceled) {
		return fmt.Errorf("%w: %w", ports.ErrIndeterminate, err)
	}

	return err
}
