package sink

import (
	"context"
	"sync"
	"wa-gateway/domain/event"
)

// QueueSink is the ordered queue owned by one realtime connection.
// The fan-out writes into it, the connection writer drains Events.
type QueueSink struct {
	events    chan event.LifecycleEvent
	done      chan struct{}
	closeOnce sync.Once
}

func NewQueueSink(bufferSize int) *QueueSink {
	return &QueueSink{
		events: make(chan event.LifecycleEvent, bufferSize),
		done:   make(chan struct{}),
	}
}

// Consume is called by fanout
// It blocks while the queue is full, until ctx ends or the sink is closed,
// so an event is either queued or reported as not delivered.
func (s *QueueSink) Consume(ctx context.Context, e event.LifecycleEvent) error {
	select {
	case <-s.done:
		return ErrSinkClosed
	default:
	}
	select {
	case s.events <- e:
		return nil
	case <-s.done:
		return ErrSinkClosed
	case <-ctx.Done():
		return ctx.Err()
	}
}

func (s *QueueSink) Events() <-chan event.LifecycleEvent { return s.events }

// Done is closed once the sink has been evicted or released.
func (s *QueueSink) Done() <-chan struct{} { return s.done }

func (s *QueueSink) Close() error {
	s.closeOnce.Do(func() { close(s.done) })
	return nil
}
