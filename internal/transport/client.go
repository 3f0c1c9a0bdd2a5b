package transport

import "context"

// Client is a publish/subscribe connection. Publish is safe for concurrent use;
// the implementation serializes network writes.
type Client interface {
	// Publish hands payload to the client for delivery on topic. It may block
	// while the client's outbound queue is full.
	Publish(ctx context.Context, topic string, payload []byte, qos QoS, retain bool) error

	// Poll returns the next connection notification. It returns ErrClosed
	// once the client is closed and no buffered events remain.
	Poll(ctx context.Context) (Event, error)

	// Close tears the connection down.
	Close() error
}

// Flusher is implemented by clients that can wait for in-flight publishes.
type Flusher interface {
	Flush(ctx context.Context) error
}

// Dialer constructs a client from Options without waiting for the broker.
type Dialer func(opts Options) (Client, error)
