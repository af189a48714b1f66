package actions

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
)

// Transport is a pluggable outbound webhook sink, generalizing the
// original tool's TODO'd single Slack/pager hook (webhooks.py) into the
// registry spec.md §4.6 calls for: "enqueue an outbound message to the
// named external transport; non-blocking best-effort; failures are
// logged, not retried at this layer."
type Transport interface {
	Name() string
	Send(ctx context.Context, target string, payload []byte) error
	Close() error
}

// webhookMsg is one queued outbound message.
type webhookMsg struct {
	id      string
	kind    string
	target  string
	payload []byte
	queuedAt time.Time
}

// webhookQueue is the bounded, drop-on-full worker pool every enqueued
// webhook action flows through. Modeled on lib/sink's send-list/ticker
// shape, simplified to a channel since webhook sends here are
// fire-and-forget rather than batched.
type webhookQueue struct {
	transports map[string]Transport
	ch         chan webhookMsg
	log        zerolog.Logger
}

// defaultQueueDepth is the bounded queue size spec.md §5 calls for;
// beyond this, enqueues are dropped with a logged warning rather than
// blocking the driver loop.
const defaultQueueDepth = 1024

func newWebhookQueue(log zerolog.Logger, workers int, transports map[string]Transport) *webhookQueue {
	q := &webhookQueue{
		transports: transports,
		ch:         make(chan webhookMsg, defaultQueueDepth),
		log:        log,
	}
	if workers < 1 {
		workers = 1
	}
	for i := 0; i < workers; i++ {
		go q.worker()
	}
	return q
}

func (q *webhookQueue) worker() {
	for msg := range q.ch {
		t, ok := q.transports[msg.kind]
		if !ok {
			q.log.Warn().Str("kind", msg.kind).Msg("webhook: unknown transport kind")
			continue
		}
		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		err := t.Send(ctx, msg.target, msg.payload)
		cancel()
		if err != nil {
			q.log.Warn().Err(err).Str("kind", msg.kind).Str("target", msg.target).
				Str("id", msg.id).Msg("webhook: send failed")
		}
	}
}

// enqueue drops the message and logs rather than blocking when the queue
// is full, per spec.md §5's "non-blocking best-effort" requirement.
func (q *webhookQueue) enqueue(kind, target string, payload []byte) {
	msg := webhookMsg{id: uuid.NewString(), kind: kind, target: target, payload: payload, queuedAt: time.Now()}
	select {
	case q.ch <- msg:
	default:
		q.log.Warn().Str("kind", kind).Str("target", target).Str("id", msg.id).
			Msg("webhook: queue full, dropping message")
	}
}

func (q *webhookQueue) close() {
	close(q.ch)
	for _, t := range q.transports {
		_ = t.Close()
	}
}
