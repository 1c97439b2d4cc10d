package stream

import (
	"context"
	"time"
)

// Message is one payload received on a topic.
type Message struct {
	Topic    string
	Payload  []byte
	Received time.Time
}

// Handler receives messages for one subscription. Transports call it from
// their own goroutines, one message at a time per topic.
type Handler func(Message)

// Transport opens connections to the broker.
type Transport interface {
	// Dial connects and completes the protocol handshake.
	Dial(ctx context.Context) (Conn, error)
}

// Conn is one established broker connection.
type Conn interface {
	// Subscribe starts delivering messages on topic to h.
	Subscribe(ctx context.Context, topic string, h Handler) error
	// Unsubscribe stops delivery on topic. Unknown topics are not an error.
	Unsubscribe(ctx context.Context, topic string) error
	// Active reports whether the connection is still usable.
	Active() bool
	// Done is closed when the connection ends for any reason.
	Done() <-chan struct{}
	// Err reports why Done closed; nil after a clean Close.
	Err() error
	// Close ends the connection. Safe to call more than once.
	Close() error
}
