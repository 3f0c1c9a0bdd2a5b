// Package transporttest provides an in-memory transport.Client that records
// publishes and lets tests inject failures and notifications.
package transporttest

import (
	"context"
	"sync"

	"git.home.luguber.info/inful/kostelemetry/internal/transport"
)

// Message is one recorded publish.
type Message struct {
	Topic   string
	Payload []byte
	QoS     transport.QoS
	Retain  bool
}

// Client records every successful publish.
type Client struct {
	Options transport.Options

	mu        sync.Mutex
	published []Message
	failWith  error
	flushErr  error
	closed    bool
	events    *transport.EventQueue
}

// NewClient returns a recording client with a small event buffer.
func NewClient(opts transport.Options) *Client {
	return &Client{Options: opts, events: transport.NewEventQueue(16)}
}

func (c *Client) Publish(ctx context.Context, topic string, payload []byte, qos transport.QoS, retain bool) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.closed {
		return transport.ErrClosed
	}
	if c.failWith != nil {
		return c.failWith
	}
	c.published = append(c.published, Message{
		Topic:   topic,
		Payload: append([]byte(nil), payload...),
		QoS:     qos,
		Retain:  retain,
	})
	return nil
}

// FailWith makes subsequent publishes return err (nil restores success).
func (c *Client) FailWith(err error) {
	c.mu.Lock()
	c.failWith = err
	c.mu.Unlock()
}

// FailFlushWith makes the next Flush return err, as a broker rejecting an
// acknowledged publish would.
func (c *Client) FailFlushWith(err error) {
	c.mu.Lock()
	c.flushErr = err
	c.mu.Unlock()
}

// Flush satisfies transport.Flusher. It reports and clears the injected error.
func (c *Client) Flush(ctx context.Context) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	c.mu.Lock()
	defer c.mu.Unlock()
	err := c.flushErr
	c.flushErr = nil
	return err
}

// Published returns a copy of the recorded messages.
func (c *Client) Published() []Message {
	c.mu.Lock()
	defer c.mu.Unlock()
	return append([]Message(nil), c.published...)
}

// Emit queues a notification for Poll.
func (c *Client) Emit(ev transport.Event) bool {
	return c.events.Push(ev)
}

func (c *Client) Poll(ctx context.Context) (transport.Event, error) {
	return c.events.Poll(ctx)
}

func (c *Client) Close() error {
	c.mu.Lock()
	c.closed = true
	c.mu.Unlock()
	c.events.Close()
	return nil
}

// Closed reports whether Close was called.
func (c *Client) Closed() bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.closed
}

// Dialer hands out recording clients and remembers them in dial order.
type Dialer struct {
	// Err, when set, is returned instead of a client.
	Err error

	mu      sync.Mutex
	clients []*Client
}

// Dial satisfies transport.Dialer.
func (d *Dialer) Dial(opts transport.Options) (transport.Client, error) {
	d.mu.Lock()
	defer d.mu.Unlock()
	if d.Err != nil {
		return nil, d.Err
	}
	if err := opts.Validate(); err != nil {
		return nil, err
	}
	c := NewClient(opts)
	d.clients = append(d.clients, c)
	return c, nil
}

// Clients returns every client dialed so far.
func (d *Dialer) Clients() []*Client {
	d.mu.Lock()
	defer d.mu.Unlock()
	return append([]*Client(nil), d.clients...)
}

// Last returns the most recently dialed client, or nil.
func (d *Dialer) Last() *Client {
	d.mu.Lock()
	defer d.mu.Unlock()
	if len(d.clients) == 0 {
		return nil
	}
	return d.clients[len(d.clients)-1]
}
