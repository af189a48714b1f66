package actions

import (
	"context"

	"github.com/nats-io/nats.go"
)

// NatsTransport publishes webhook payloads to a NATS subject, grounded on
// lib/nats_io.Server.Publish — the same Connect-once/Publish-many shape,
// adapted here to the Transport interface instead of plane.watch's
// dedicated server wrapper.
type NatsTransport struct {
	conn *nats.Conn
}

// NewNatsTransport connects to the NATS server at url.
func NewNatsTransport(url string) (*NatsTransport, error) {
	conn, err := nats.Connect(url)
	if err != nil {
		return nil, err
	}
	return &NatsTransport{conn: conn}, nil
}

func (t *NatsTransport) Name() string { return "nats" }

func (t *NatsTransport) Send(_ context.Context, target string, payload []byte) error {
	return t.conn.Publish(target, payload)
}

func (t *NatsTransport) Close() error {
	if t.conn.IsConnected() {
		return t.conn.Drain()
	}
	t.conn.Close()
	return nil
}

// HealthCheckName/HealthCheck satisfy monitoring.HealthCheck, grounded on
// lib/nats_io.Server's own health reporting.
func (t *NatsTransport) HealthCheckName() string { return "nats-webhook" }
func (t *NatsTransport) HealthCheck() bool       { return t.conn.IsConnected() }
