package sink

import (
	"context"
	"sync"

	"chat-relay/domain/event"
	"chat-relay/errors"
)

// QueueSink is the bounded outbound queue of one connection. The
// dispatcher enqueues into it without ever blocking; the connection's
// write loop drains Events at whatever pace the transport allows. When
// the queue is full the enqueue fails with a DeliveryError and the
// dispatcher disconnects the session instead of buffering without
// limit.
type QueueSink struct {
	Events chan event.DomainEvent

	once   sync.Once
	closed chan struct{}
}

func NewQueueSink(capacity int) *QueueSink {
	return &QueueSink{
		Events: make(chan event.DomainEvent, capacity),
		closed: make(chan struct{}),
	}
}

func (s *QueueSink) Consume(_ context.Context, e event.DomainEvent) error {
	select {
	case <-s.closed:
		return errors.DeliveryError{Err: errors.ErrSinkClosed}
	default:
	}

	select {
	case s.Events <- e:
		return nil
	case <-s.closed:
		return errors.DeliveryError{Err: errors.ErrSinkClosed}
	default:
		return errors.DeliveryError{Err: errors.ErrQueueOverflow}
	}
}

// Close marks the sink dead. Enqueue attempts racing a disconnect fail
// cleanly instead of writing to a queue nobody drains anymore.
func (s *QueueSink) Close() {
	s.once.Do(func() {
		close(s.closed)
	})
}

// Closed exposes the termination signal to the connection write loop.
func (s *QueueSink) Closed() <-chan struct{} {
	return s.closed
}
