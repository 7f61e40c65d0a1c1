package broadcast

import (
	"context"
	"sync"
)

// Message wraps a value of type T for type-safe fan-out.
type Message[T any] struct {
	Data T
}

// Subscriber receives messages from a Broadcaster.
// Implementations must be safe for concurrent use.
type Subscriber[T any] interface {
	// Receive returns the channel on which broadcast messages arrive.
	// The context is accepted for interface symmetry with adapters that
	// block on external transports; the in-memory implementation ignores it.
	Receive(ctx context.Context) <-chan Message[T]

	// Close closes the subscriber and its receive channel.
	// Close is idempotent.
	Close() error
}

// Broadcaster fans messages out to every active subscriber.
// Implementations must not block on slow consumers; dropping a message
// for a full subscriber is the expected behavior.
type Broadcaster[T any] interface {
	// Subscribe registers a new subscriber. The subscription is torn down
	// automatically when ctx is cancelled.
	Subscribe(ctx context.Context) Subscriber[T]

	// Broadcast delivers msg to all active subscribers. Subscribers whose
	// buffers are full miss the message.
	Broadcast(ctx context.Context, msg Message[T]) error

	// Close shuts down the broadcaster and closes every subscriber.
	// Afterwards Subscribe returns already-closed subscribers and
	// Broadcast is a no-op.
	Close() error
}

type subscriber[T any] struct {
	ch     chan Message[T]
	closed bool
	mu     sync.RWMutex
}

func newSubscriber[T any](bufferSize int) *subscriber[T] {
	return &subscriber[T]{
		ch: make(chan Message[T], bufferSize),
	}
}

func (s *subscriber[T]) Receive(ctx context.Context) <-chan Message[T] {
	return s.ch
}

func (s *subscriber[T]) Close() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if !s.closed {
		close(s.ch)
		s.closed = true
	}
	return nil
}

// send attempts a non-blocking delivery. It reports false when the
// subscriber is closed or its buffer is full.
func (s *subscriber[T]) send(msg Message[T]) bool {
	s.mu.RLock()
	defer s.mu.RUnlock()

	if s.closed {
		return false
	}

	select {
	case s.ch <- msg:
		return true
	default:
		return false
	}
}
