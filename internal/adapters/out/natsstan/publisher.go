// Package natsstan bridges the order event feed to NATS Streaming.
// Committed-transition events are published as JSON envelopes on a single
// subject; remote observers subscribe to the same subject and feed decoded
// events into their projections.
package natsstan

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"blockdelivery/internal/core/domain/model/order"
	"blockdelivery/internal/core/ports"

	stan "github.com/nats-io/stan.go"
)

// Connect opens a NATS Streaming connection for the feed.
// An empty clientID gets a unique generated one so multiple processes can
// share the same configuration.
func Connect(clusterID, clientID, url string) (stan.Conn, error) {
	if clientID == "" {
		clientID = fmt.Sprintf("blockdelivery-%d", time.Now().UnixNano())
	}
	return stan.Connect(clusterID, clientID, stan.NatsURL(url))
}

// Publisher pushes committed-transition events onto a NATS Streaming subject.
// Delivery is best effort: a failed publish is logged by the caller and never
// rolls back the committed transition.
type Publisher struct {
	sc      stan.Conn
	subject string
}

// NewPublisher creates a publisher bound to a connection and subject.
func NewPublisher(sc stan.Conn, subject string) *Publisher {
	return &Publisher{sc: sc, subject: subject}
}

// Publish encodes the event and publishes it on the configured subject.
func (p *Publisher) Publish(_ context.Context, event order.Event) error {
	raw, err := order.EncodeEvent(event)
	if err != nil {
		return err
	}
	return p.sc.Publish(p.subject, raw)
}

// Subscriber delivers feed events from a NATS Streaming subject to a handler.
// Only events published after the subscription starts are delivered; a gap
// after a disconnect is recovered by re-reading authoritative state, not by
// replay.
type Subscriber struct {
	sc      stan.Conn
	subject string
	logger  *slog.Logger
}

// NewSubscriber creates a subscriber bound to a connection and subject.
func NewSubscriber(sc stan.Conn, subject string, logger *slog.Logger) *Subscriber {
	return &Subscriber{sc: sc, subject: subject, logger: logger}
}

// Subscribe registers a handler for events arriving on the subject.
// Malformed envelopes and unknown event kinds are logged and skipped so one
// bad message cannot wedge the feed.
func (s *Subscriber) Subscribe(handler ports.EventHandler) (ports.Subscription, error) {
	sub, err := s.sc.Subscribe(s.subject, func(m *stan.Msg) {
		event, decodeErr := order.DecodeEvent(m.Data)
		if decodeErr != nil {
			s.logger.Warn("skipping undecodable feed message",
				slog.String("subject", s.subject),
				slog.Any("error", decodeErr),
			)
			return
		}
		handler(event)
	})
	if err != nil {
		return nil, err
	}
	return stanSubscription{sub: sub}, nil
}

type stanSubscription struct {
	sub stan.Subscription
}

// Unsubscribe stops delivery. Safe to call more than once.
func (s stanSubscription) Unsubscribe() {
	if s.sub == nil {
		return
	}
	_ = s.sub.Unsubscribe()
}
