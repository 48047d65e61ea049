package nats

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"storefront-backend/internal/realtime"

	"github.com/nats-io/nats.go"
	"go.uber.org/zap"
)

const (
	connectWait   = 5 * time.Second
	maxReconnects = -1
	reconnectWait = 2 * time.Second
)

func NewConnection(url string, log *zap.Logger) (*nats.Conn, error) {
	opts := []nats.Option{
		nats.Name("storefront realtime relay"),
		nats.Timeout(connectWait),
		nats.MaxReconnects(maxReconnects),
		nats.ReconnectWait(reconnectWait),
		nats.DisconnectErrHandler(func(nc *nats.Conn, err error) {
			log.Warn("NATS disconnected", zap.Error(err))
		}),
		nats.ReconnectHandler(func(nc *nats.Conn) {
			log.Info("NATS reconnected", zap.String("url", nc.ConnectedUrl()))
		}),
		nats.ClosedHandler(func(nc *nats.Conn) {
			log.Info("NATS connection closed")
		}),
	}

	nc, err := nats.Connect(url, opts...)
	if err != nil {
		return nil, fmt.Errorf("failed to connect to NATS at %s: %w", url, err)
	}
	log.Info("Successfully connected to NATS", zap.String("url", nc.ConnectedUrl()))
	return nc, nil
}

// Deliverer hands an event to the listeners of this process.
type Deliverer interface {
	Deliver(ev realtime.Event)
}

// Relay publishes broadcasts on a core NATS subject and delivers every event
// seen on that subject to the local listeners, so all instances share one
// fan-out. Core NATS is at-most-once; nothing is persisted.
type Relay struct {
	conn    *nats.Conn
	subject string
	local   Deliverer
	log     *zap.Logger
	sub     *nats.Subscription
}

func NewRelay(conn *nats.Conn, subject string, local Deliverer, log *zap.Logger) (*Relay, error) {
	if conn == nil {
		return nil, fmt.Errorf("NATS connection cannot be nil")
	}
	r := &Relay{
		conn:    conn,
		subject: subject,
		local:   local,
		log:     log.Named("nats_relay"),
	}

	sub, err := conn.Subscribe(subject, r.handle)
	if err != nil {
		return nil, fmt.Errorf("failed to subscribe to %s: %w", subject, err)
	}
	r.sub = sub
	return r, nil
}

func (r *Relay) Broadcast(_ context.Context, ev realtime.Event) {
	data, err := json.Marshal(ev)
	if err != nil {
		r.log.Error("Failed to marshal event", zap.String("event", ev.Name), zap.Error(err))
		return
	}

	if err := r.conn.Publish(r.subject, data); err != nil {
		r.log.Warn("Failed to publish event, delivering locally only",
			zap.String("subject", r.subject),
			zap.String("event", ev.Name),
			zap.Error(err),
		)
		r.local.Deliver(ev)
	}
}

func (r *Relay) handle(msg *nats.Msg) {
	var ev realtime.Event
	if err := json.Unmarshal(msg.Data, &ev); err != nil {
		r.log.Warn("Discarding malformed relay message", zap.String("subject", msg.Subject), zap.Error(err))
		return
	}
	r.local.Deliver(ev)
}

func (r *Relay) Close() error {
	if r.sub == nil {
		return nil
	}
	return r.sub.Unsubscribe()
}
