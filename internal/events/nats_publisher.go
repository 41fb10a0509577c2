package events

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/nats-io/nats.go"

	"github.com/pesio-ai/erp-client/internal/logger"
)

// NATSPublisher mirrors client events to NATS so that other tooling (chat
// alerts, dashboards) can react to session failures of unattended jobs.
//
// Subject convention: <prefix>.<event name>, e.g. erp.client.api-error
//
// Publish failures are logged and never propagated: losing a mirror event
// must not change the outcome of the request that raised it.
type NATSPublisher struct {
	conn   *nats.Conn
	prefix string
	log    *logger.Logger
}

// NewNATSPublisher connects to the NATS server at url
func NewNATSPublisher(url, prefix string, log *logger.Logger) (*NATSPublisher, error) {
	conn, err := nats.Connect(url, nats.Name("erpctl"))
	if err != nil {
		return nil, fmt.Errorf("failed to connect to nats: %w", err)
	}
	return &NATSPublisher{conn: conn, prefix: prefix, log: log}, nil
}

// Forward subscribes the publisher to the named events on bus
func (p *NATSPublisher) Forward(bus *Bus, names ...string) func() {
	unsubs := make([]func(), 0, len(names))
	for _, name := range names {
		unsubs = append(unsubs, bus.Subscribe(name, p.Publish))
	}
	return func() {
		for _, u := range unsubs {
			u()
		}
	}
}

// Publish sends one event. It matches Handler so it can be subscribed directly.
func (p *NATSPublisher) Publish(_ context.Context, ev Event) {
	if p.conn == nil {
		return
	}

	data, err := json.Marshal(ev)
	if err != nil {
		p.log.Warn().Err(err).Str("event", ev.Name).Msg("events: failed to marshal event")
		return
	}

	subject := fmt.Sprintf("%s.%s", p.prefix, ev.Name)
	if err := p.conn.Publish(subject, data); err != nil {
		p.log.Warn().Err(err).
			Str("subject", subject).
			Str("code", ev.Code).
			Msg("events: failed to publish NATS event (non-fatal)")
		return
	}

	p.log.Debug().
		Str("subject", subject).
		Str("code", ev.Code).
		Msg("events: event published")
}

// Close flushes pending messages and closes the connection
func (p *NATSPublisher) Close() error {
	if p.conn == nil {
		return nil
	}
	if err := p.conn.Drain(); err != nil {
		p.conn.Close()
		return err
	}
	return nil
}
