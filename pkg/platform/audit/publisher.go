package audit

import (
	"context"
	"time"
)

// Sink receives emitted events. Implementations: the in-memory store for tests
// and single-node runs, the Kafka producer for deployments with a broker.
type Sink interface {
	Append(ctx context.Context, event Event) error
}

// Publisher captures structured audit events. It is append-only and nil-safe so
// services can emit unconditionally.
type Publisher struct {
	sink Sink
}

func NewPublisher(sink Sink) *Publisher {
	return &Publisher{sink: sink}
}

// Emit records an event, stamping the time when the caller left it zero.
// Errors are returned for logging only; callers must not fail the request.
func (p *Publisher) Emit(ctx context.Context, event Event) error {
	if p == nil || p.sink == nil {
		return nil
	}
	if event.Timestamp.IsZero() {
		event.Timestamp = time.Now()
	}
	return p.sink.Append(ctx, event)
}
