// Package natsbus implements transport.Client on NATS. Core NATS carries
// at-most-once publishes; JetStream carries acknowledged ones and keeps
// retained payloads in a KeyValue bucket.
package natsbus

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/nats-io/nats.go"
	"github.com/nats-io/nats.go/jetstream"

	"git.home.luguber.info/inful/kostelemetry/internal/logfields"
	"git.home.luguber.info/inful/kostelemetry/internal/transport"
)

// StreamSubjects is the subject filter of the provisioned telemetry stream.
const StreamSubjects = "robots.>"

const (
	eventBuffer      = 64
	provisionTimeout = 5 * time.Second
)

// Client is a NATS connection satisfying transport.Client.
type Client struct {
	conn   *nats.Conn
	js     jetstream.JetStream
	events *transport.EventQueue
	opts   transport.Options

	// ready is closed once js is set; connection callbacks may run before that.
	ready         chan struct{}
	provisionOnce sync.Once

	kvMu sync.Mutex
	kv   jetstream.KeyValue

	acks ackTracker
}

// SubjectFor maps a slash-separated topic onto a dot-separated NATS subject,
// the same conversion the NATS MQTT gateway applies.
func SubjectFor(topic string) string {
	return strings.ReplaceAll(topic, "/", ".")
}

// Dial builds a client. It does not wait for the broker: when the first
// connect fails the connection keeps retrying in the background.
func Dial(opts transport.Options) (*Client, error) {
	opts = opts.WithDefaults()
	if err := opts.Validate(); err != nil {
		return nil, err
	}

	c := &Client{
		events: transport.NewEventQueue(eventBuffer),
		opts:   opts,
		ready:  make(chan struct{}),
	}
	defer close(c.ready)

	conn, err := nats.Connect(opts.URL("nats"), c.natsOptions()...)
	if err != nil {
		return nil, fmt.Errorf("failed to connect to NATS: %w", err)
	}
	c.conn = conn

	js, err := jetstream.New(conn,
		jetstream.WithPublishAsyncMaxPending(opts.QueueSize),
		jetstream.WithPublishAsyncErrHandler(c.onAsyncPublishError),
	)
	if err != nil {
		conn.Close()
		return nil, fmt.Errorf("failed to create JetStream context: %w", err)
	}
	c.js = js

	if opts.ProvisionStream && conn.IsConnected() {
		c.provisionOnce.Do(c.provisionStream)
	}

	slog.Debug("NATS client created",
		logfields.ClientID(opts.ClientID),
		logfields.Broker(opts.Address()),
		slog.Bool("connected", conn.IsConnected()))

	return c, nil
}

// Dialer adapts Dial to transport.Dialer.
func Dialer(opts transport.Options) (transport.Client, error) {
	c, err := Dial(opts)
	if err != nil {
		return nil, err
	}
	return c, nil
}

func (c *Client) natsOptions() []nats.Option {
	o := []nats.Option{
		nats.Name(c.opts.ClientID),
		nats.PingInterval(c.opts.KeepAlive),
		nats.MaxPingsOutstanding(2),
		nats.RetryOnFailedConnect(true),
		nats.MaxReconnects(-1),
		// No buffering across disconnects: publishes fail while reconnecting.
		nats.ReconnectBufSize(-1),
		nats.ConnectHandler(func(nc *nats.Conn) {
			c.events.Push(transport.Event{Kind: transport.EventConnected, Server: nc.ConnectedUrlRedacted()})
			if c.opts.ProvisionStream {
				go func() {
					<-c.ready
					if c.js != nil {
						c.provisionOnce.Do(c.provisionStream)
					}
				}()
			}
		}),
		nats.DisconnectErrHandler(func(_ *nats.Conn, err error) {
			c.events.Push(transport.Event{Kind: transport.EventDisconnected, Err: err})
		}),
		nats.ReconnectHandler(func(nc *nats.Conn) {
			c.events.Push(transport.Event{Kind: transport.EventReconnected, Server: nc.ConnectedUrlRedacted()})
		}),
		nats.ClosedHandler(func(_ *nats.Conn) {
			c.events.Push(transport.Event{Kind: transport.EventClosed})
			c.events.Close()
		}),
		nats.ErrorHandler(func(_ *nats.Conn, sub *nats.Subscription, err error) {
			ev := transport.Event{Kind: transport.EventAsyncError, Err: err}
			if sub != nil {
				ev.Subject = sub.Subject
			}
			c.events.Push(ev)
		}),
	}
	if c.opts.ReconnectDelay != nil {
		o = append(o, nats.CustomReconnectDelay(c.opts.ReconnectDelay))
	}
	return o
}

func (c *Client) onAsyncPublishError(_ jetstream.JetStream, msg *nats.Msg, err error) {
	ev := transport.Event{Kind: transport.EventPublishError, Err: err}
	if msg != nil {
		ev.Subject = msg.Subject
	}
	c.events.Push(ev)
}

// provisionStream creates or updates the stream capturing robots.>. Failure is
// reported as an event; publishing still works against an existing stream.
func (c *Client) provisionStream() {
	ctx, cancel := context.WithTimeout(context.Background(), provisionTimeout)
	defer cancel()

	_, err := c.js.CreateOrUpdateStream(ctx, jetstream.StreamConfig{
		Name:        c.opts.Stream,
		Description: "Robot telemetry captured for correlation with recorded video",
		Subjects:    []string{StreamSubjects},
		Duplicates:  2 * time.Minute,
	})
	if err != nil {
		c.events.Push(transport.Event{Kind: transport.EventProvisionError, Err: err})
		slog.Warn("Failed to provision telemetry stream", slog.String("stream", c.opts.Stream), logfields.Error(err))
		return
	}
	slog.Debug("Telemetry stream ready", slog.String("stream", c.opts.Stream))
}

// Publish sends payload on the subject derived from topic.
//
// At-most-once uses a core NATS publish. At-least-once uses an asynchronous
// JetStream publish acknowledged by the broker; it stalls while QueueSize
// acknowledgements are outstanding. Exactly-once adds a message id so the
// broker discards duplicates.
func (c *Client) Publish(ctx context.Context, topic string, payload []byte, qos transport.QoS, retain bool) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	subject := SubjectFor(topic)

	var err error
	switch qos {
	case transport.AtMostOnce:
		err = c.conn.Publish(subject, payload)
	case transport.AtLeastOnce:
		var f jetstream.PubAckFuture
		if f, err = c.js.PublishAsync(subject, payload); err == nil {
			c.acks.add(f)
		}
	case transport.ExactlyOnce:
		var f jetstream.PubAckFuture
		if f, err = c.js.PublishAsync(subject, payload, jetstream.WithMsgID(uuid.NewString())); err == nil {
			c.acks.add(f)
		}
	default:
		err = fmt.Errorf("unsupported qos %s", qos)
	}
	if err != nil {
		return fmt.Errorf("failed to publish to %s: %w", subject, err)
	}

	if retain {
		if err := c.retain(ctx, subject, payload); err != nil {
			return err
		}
	}
	return nil
}

// retain stores the latest payload for subject in the retain bucket.
func (c *Client) retain(ctx context.Context, subject string, payload []byte) error {
	kv, err := c.retainBucket(ctx)
	if err != nil {
		return err
	}
	if _, err := kv.Put(ctx, subject, payload); err != nil {
		return fmt.Errorf("failed to store retained payload: %w", err)
	}
	return nil
}

func (c *Client) retainBucket(ctx context.Context) (jetstream.KeyValue, error) {
	c.kvMu.Lock()
	defer c.kvMu.Unlock()

	if c.kv != nil {
		return c.kv, nil
	}
	if c.opts.RetainBucket == "" {
		return nil, errors.New("retain requested but no retain bucket configured")
	}
	kv, err := c.js.CreateOrUpdateKeyValue(ctx, jetstream.KeyValueConfig{
		Bucket:      c.opts.RetainBucket,
		Description: "Latest retained telemetry payload per subject",
		History:     1,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to open retain bucket: %w", err)
	}
	c.kv = kv
	return kv, nil
}

// Poll returns the next connection or delivery notification.
func (c *Client) Poll(ctx context.Context) (transport.Event, error) {
	return c.events.Poll(ctx)
}

// Flush waits for outstanding JetStream acknowledgements and the core NATS
// write buffer, bounded by ctx. It returns the first publish the broker
// rejected since the previous Flush.
func (c *Client) Flush(ctx context.Context) error {
	select {
	case <-c.js.PublishAsyncComplete():
	case <-ctx.Done():
		return fmt.Errorf("waiting for publish acknowledgements: %w", ctx.Err())
	}
	if err := c.acks.wait(ctx); err != nil {
		return err
	}
	if !c.conn.IsConnected() {
		return nats.ErrConnectionClosed
	}
	return c.conn.FlushWithContext(ctx)
}

// Close closes the NATS connection and the event queue.
func (c *Client) Close() error {
	if c.conn != nil {
		c.conn.Close()
	}
	c.events.Close()
	return nil
}

// DroppedEvents reports notifications discarded because nobody drained them in time.
func (c *Client) DroppedEvents() uint64 {
	return c.events.Dropped()
}
