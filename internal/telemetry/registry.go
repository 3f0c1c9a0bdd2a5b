package telemetry

import (
	"context"
	"sync"

	ferrors "git.home.luguber.info/inful/kostelemetry/internal/errors"
	"git.home.luguber.info/inful/kostelemetry/internal/logfields"
	"git.home.luguber.info/inful/kostelemetry/internal/metrics"
	"git.home.luguber.info/inful/kostelemetry/internal/observability"
	"git.home.luguber.info/inful/kostelemetry/internal/transport"
	"git.home.luguber.info/inful/kostelemetry/internal/transport/natsbus"
)

// Registry is the synchronized slot holding the current Publisher.
type Registry struct {
	enabled  bool
	dial     transport.Dialer
	recorder metrics.Recorder
	template transport.Options

	mu      sync.Mutex
	current *Publisher
}

// Option configures a Registry.
type Option func(*Registry)

// WithEnabled sets the enable gate consulted by Get and TryGet.
func WithEnabled(enabled bool) Option {
	return func(r *Registry) { r.enabled = enabled }
}

// WithDialer replaces the NATS dialer.
func WithDialer(d transport.Dialer) Option {
	return func(r *Registry) {
		if d != nil {
			r.dial = d
		}
	}
}

// WithRecorder injects a metrics recorder shared by every publisher.
func WithRecorder(rec metrics.Recorder) Option {
	return func(r *Registry) {
		if rec != nil {
			r.recorder = rec
		}
	}
}

// WithTransportOptions sets broker settings (keep-alive, queue size, stream,
// retain bucket, reconnect delay). Host, port and client id are always taken
// from Initialize.
func WithTransportOptions(o transport.Options) Option {
	return func(r *Registry) { r.template = o }
}

// NewRegistry returns an empty, enabled registry using the NATS dialer.
func NewRegistry(opts ...Option) *Registry {
	r := &Registry{
		enabled:  true,
		dial:     natsbus.Dialer,
		recorder: metrics.NoopRecorder{},
	}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

// Enabled reports the registry's enable gate.
func (r *Registry) Enabled() bool { return r.enabled }

// Initialize dials the broker as "kos-<robotID>", starts the event drain loop
// and installs a fresh Publisher with zeroed counters, replacing any previous
// one. The previous publisher's connection is left as is.
func (r *Registry) Initialize(ctx context.Context, robotID, host string, port int) error {
	ctx = observability.WithRobotID(ctx, robotID)

	if err := ValidateRobotID(robotID); err != nil {
		r.recorder.IncInitialize(false)
		return err
	}

	opts := r.template
	opts.Host = host
	opts.Port = port
	opts.ClientID = ClientIDPrefix + robotID
	opts = opts.WithDefaults()

	client, err := r.dial(opts)
	if err != nil {
		r.recorder.IncInitialize(false)
		return ferrors.InitializationFailed(robotID, err).
			WithContext("broker", opts.Address())
	}

	go drainEvents(client, robotID, r.recorder)

	pub := NewPublisher(robotID, client, r.recorder)

	observability.DebugContext(ctx, "Initializing telemetry",
		logfields.ClientID(opts.ClientID),
		logfields.Broker(opts.Address()))

	r.mu.Lock()
	r.current = pub
	r.mu.Unlock()

	r.recorder.IncInitialize(true)
	return nil
}

// Get returns the current publisher, waiting for the registry lock. It
// returns nil when telemetry is disabled or Initialize has not succeeded.
func (r *Registry) Get() *Publisher {
	if !r.enabled {
		return nil
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.current
}

// TryGet is Get without waiting: it returns nil if the lock is held.
func (r *Registry) TryGet() *Publisher {
	if !r.enabled {
		return nil
	}
	if !r.mu.TryLock() {
		return nil
	}
	defer r.mu.Unlock()
	return r.current
}

// Reset empties the slot and returns the publisher it held, or nil. Like
// Initialize, it leaves that publisher's connection open for the caller.
func (r *Registry) Reset() *Publisher {
	r.mu.Lock()
	defer r.mu.Unlock()
	prev := r.current
	r.current = nil
	return prev
}
