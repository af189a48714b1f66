package actions

import (
	"context"
	"sync"

	"github.com/streadway/amqp"
)

// AmqpTransport publishes webhook payloads to a RabbitMQ exchange, using
// target as the routing key. One channel is shared across sends; AMQP
// channels are not safe for concurrent Publish calls from multiple
// goroutines, and the webhookQueue runs several workers, so Send
// serializes publishes with a mutex.
type AmqpTransport struct {
	mu       sync.Mutex
	conn     *amqp.Connection
	channel  *amqp.Channel
	exchange string
}

// NewAmqpTransport connects to the broker at url and declares exchange as
// a fanout exchange, matching the simplest publish topology a rule-set
// webhook target would need.
func NewAmqpTransport(url, exchange string) (*AmqpTransport, error) {
	conn, err := amqp.Dial(url)
	if err != nil {
		return nil, err
	}
	ch, err := conn.Channel()
	if err != nil {
		conn.Close()
		return nil, err
	}
	if err := ch.ExchangeDeclare(exchange, "fanout", true, false, false, false, nil); err != nil {
		ch.Close()
		conn.Close()
		return nil, err
	}
	return &AmqpTransport{conn: conn, channel: ch, exchange: exchange}, nil
}

func (t *AmqpTransport) Name() string { return "amqp" }

func (t *AmqpTransport) Send(_ context.Context, target string, payload []byte) error {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.channel.Publish(t.exchange, target, false, false, amqp.Publishing{
		ContentType: "application/json",
		Body:        payload,
	})
}

func (t *AmqpTransport) Close() error {
	t.channel.Close()
	return t.conn.Close()
}

func (t *AmqpTransport) HealthCheckName() string { return "amqp-webhook" }
func (t *AmqpTransport) HealthCheck() bool        { return !t.conn.IsClosed() }
