// Package daemon runs the long-lived telemetry service: a publisher kept
// initialized from the config file, a periodic heartbeat and an optional
// Prometheus endpoint.
package daemon

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"sync"
	"sync/atomic"
	"time"

	"github.com/google/uuid"
	prom "github.com/prometheus/client_golang/prometheus"

	"git.home.luguber.info/inful/kostelemetry/internal/config"
	"git.home.luguber.info/inful/kostelemetry/internal/logfields"
	"git.home.luguber.info/inful/kostelemetry/internal/metrics"
	"git.home.luguber.info/inful/kostelemetry/internal/retry"
	"git.home.luguber.info/inful/kostelemetry/internal/samples"
	"git.home.luguber.info/inful/kostelemetry/internal/telemetry"
	"git.home.luguber.info/inful/kostelemetry/internal/transport"
	"git.home.luguber.info/inful/kostelemetry/internal/version"
)

const (
	heartbeatJob      = "heartbeat"
	heartbeatTimeout  = 2 * time.Second
	defaultDebounce   = 500 * time.Millisecond
	readHeaderTimeout = 5 * time.Second

	startRollbackTimeout = 5 * time.Second
)

// Status is the daemon lifecycle state.
type Status string

const (
	StatusStopped  Status = "stopped"
	StatusStarting Status = "starting"
	StatusRunning  Status = "running"
	StatusStopping Status = "stopping"
)

// Options tunes a Daemon beyond its configuration.
type Options struct {
	// ConfigPath enables the config watcher when non-empty.
	ConfigPath string
	// Debounce delays reloads after file events; zero selects 500ms.
	Debounce time.Duration
	// RegistryOptions are appended after the config-derived ones.
	RegistryOptions []telemetry.Option
}

// Daemon owns the process-wide publisher for the serve command.
type Daemon struct {
	opts     Options
	registry *telemetry.Registry
	promReg  *prom.Registry

	mu        sync.RWMutex
	cfg       *config.Config
	status    Status
	startTime time.Time
	heartbeat uuid.UUID

	// Set by start, released by teardown; guarded by mu.
	scheduler *Scheduler
	watcher   *ConfigWatcher
	server    *http.Server

	sequence atomic.Uint64
}

// New builds a daemon for cfg. The enable gate is fixed here; later reloads
// cannot turn telemetry on or off.
func New(cfg *config.Config, opts Options) (*Daemon, error) {
	if cfg == nil {
		return nil, errors.New("configuration is required")
	}
	if opts.Debounce <= 0 {
		opts.Debounce = defaultDebounce
	}

	promReg := prom.NewRegistry()
	recorder := metrics.NewPrometheusRecorder(promReg)

	regOpts := append([]telemetry.Option{
		telemetry.WithEnabled(cfg.IsTelemetryEnabled()),
		telemetry.WithRecorder(recorder),
		telemetry.WithTransportOptions(TransportOptions(cfg)),
	}, opts.RegistryOptions...)

	return &Daemon{
		opts:     opts,
		registry: telemetry.NewRegistry(regOpts...),
		promReg:  promReg,
		cfg:      cfg,
		status:   StatusStopped,
	}, nil
}

// TransportOptions derives broker settings from cfg. Host, port and client id
// are supplied by Registry.Initialize.
func TransportOptions(cfg *config.Config) transport.Options {
	return transport.Options{
		KeepAlive:       cfg.KeepAliveDuration(),
		QueueSize:       cfg.Broker.QueueSize,
		Stream:          cfg.Broker.Stream,
		ProvisionStream: cfg.Broker.ProvisionStream,
		RetainBucket:    cfg.Broker.RetainBucket,
		ReconnectDelay:  retry.FromConfig(cfg).Delay,
	}
}

// Registry exposes the publisher slot.
func (d *Daemon) Registry() *telemetry.Registry { return d.registry }

// Config returns the configuration currently applied.
func (d *Daemon) Config() *config.Config {
	d.mu.RLock()
	defer d.mu.RUnlock()
	return d.cfg
}

// Status returns the lifecycle state.
func (d *Daemon) Status() Status {
	d.mu.RLock()
	defer d.mu.RUnlock()
	return d.status
}

// Start initializes the publisher and starts the heartbeat, the metrics
// endpoint and the config watcher. On failure everything already started is
// released again and the daemon can be started anew.
func (d *Daemon) Start(ctx context.Context) error {
	d.mu.Lock()
	if d.status != StatusStopped {
		d.mu.Unlock()
		return fmt.Errorf("daemon is %s", d.status)
	}
	d.status = StatusStarting
	d.startTime = time.Now()
	cfg := d.cfg
	d.mu.Unlock()

	if err := d.start(ctx, cfg); err != nil {
		stopCtx, cancel := context.WithTimeout(context.Background(), startRollbackTimeout)
		defer cancel()
		if terr := d.teardown(stopCtx); terr != nil {
			slog.Warn("Cleanup after failed start was incomplete", logfields.Error(terr))
		}
		d.setStatus(StatusStopped)
		return err
	}
	d.setStatus(StatusRunning)

	slog.Info("Telemetry daemon started",
		logfields.RobotID(cfg.Robot.ID),
		logfields.Broker(fmt.Sprintf("%s:%d", cfg.Broker.Host, cfg.Broker.Port)),
		slog.Bool("enabled", d.registry.Enabled()))
	return nil
}

func (d *Daemon) setStatus(s Status) {
	d.mu.Lock()
	d.status = s
	d.mu.Unlock()
}

// start brings components up in order, recording each one as soon as it
// exists so teardown can release a partial start.
func (d *Daemon) start(ctx context.Context, cfg *config.Config) error {
	if d.registry.Enabled() {
		if err := d.registry.Initialize(ctx, cfg.Robot.ID, cfg.Broker.Host, cfg.Broker.Port); err != nil {
			return err
		}
	} else {
		slog.Info("Telemetry disabled; publisher not initialized", logfields.RobotID(cfg.Robot.ID))
	}

	scheduler, err := NewScheduler()
	if err != nil {
		return err
	}
	d.mu.Lock()
	d.scheduler = scheduler
	d.mu.Unlock()

	id, err := scheduler.Every(heartbeatJob, cfg.HeartbeatInterval(), d.publishHeartbeat)
	if err != nil {
		return err
	}
	d.mu.Lock()
	d.heartbeat = id
	d.mu.Unlock()
	scheduler.Start()

	if cfg.Metrics.Enabled {
		d.startMetricsServer(cfg.Metrics.Listen)
	}

	if d.opts.ConfigPath != "" {
		watcher, err := NewConfigWatcher(d.opts.ConfigPath, d, d.opts.Debounce)
		if err != nil {
			return err
		}
		d.mu.Lock()
		d.watcher = watcher
		d.mu.Unlock()
		if err := watcher.Start(ctx); err != nil {
			return err
		}
	}
	return nil
}

func (d *Daemon) startMetricsServer(addr string) {
	mux := metrics.NewServeMux(d.promReg, func() bool {
		return !d.registry.Enabled() || d.registry.Get() != nil
	})

	server := &http.Server{Addr: addr, Handler: mux, ReadHeaderTimeout: readHeaderTimeout}
	d.mu.Lock()
	d.server = server
	d.mu.Unlock()
	go func() {
		slog.Info("Metrics endpoint listening", slog.String("addr", addr))
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			slog.Error("Metrics server failed", logfields.Error(err))
		}
	}()
}

// publishHeartbeat runs on the scheduler. It uses TryGet so a concurrent
// re-initialization skips a beat instead of blocking the job.
func (d *Daemon) publishHeartbeat() {
	p := d.registry.TryGet()
	if p == nil {
		return
	}

	d.mu.RLock()
	started := d.startTime
	d.mu.RUnlock()

	hb := samples.Heartbeat{
		Version:  version.Version,
		Uptime:   time.Since(started).Seconds(),
		SentAt:   time.Now().UTC(),
		Sequence: d.sequence.Add(1),
	}

	ctx, cancel := context.WithTimeout(context.Background(), heartbeatTimeout)
	defer cancel()
	if err := p.Publish(ctx, samples.TopicHeartbeat, hb); err != nil {
		slog.Warn("Heartbeat publish failed", logfields.RobotID(p.RobotID()), logfields.Error(err))
	}
}

// ReloadConfig applies cfg. A changed robot id or broker address replaces the
// publisher and closes the old connection; a changed heartbeat interval
// reschedules the job.
func (d *Daemon) ReloadConfig(ctx context.Context, cfg *config.Config) error {
	d.mu.Lock()
	old := d.cfg
	d.cfg = cfg
	heartbeat := d.heartbeat
	scheduler := d.scheduler
	d.mu.Unlock()

	if old.IsTelemetryEnabled() != cfg.IsTelemetryEnabled() {
		slog.Warn("Telemetry enable gate changes require a restart")
	}
	if old.Metrics != cfg.Metrics {
		slog.Warn("Metrics endpoint changes require a restart")
	}

	if d.registry.Enabled() && (old.Robot != cfg.Robot || old.Broker.Host != cfg.Broker.Host || old.Broker.Port != cfg.Broker.Port) {
		previous := d.registry.Get()
		if err := d.registry.Initialize(ctx, cfg.Robot.ID, cfg.Broker.Host, cfg.Broker.Port); err != nil {
			d.mu.Lock()
			d.cfg = old
			d.mu.Unlock()
			return err
		}
		if previous != nil {
			if err := previous.Close(); err != nil {
				slog.Warn("Failed to close replaced publisher", logfields.Error(err))
			}
		}
		slog.Info("Publisher re-initialized", logfields.RobotID(cfg.Robot.ID))
	}

	if interval := cfg.HeartbeatInterval(); interval != old.HeartbeatInterval() && scheduler != nil && heartbeat != uuid.Nil {
		if err := scheduler.Reschedule(heartbeat, heartbeatJob, interval, d.publishHeartbeat); err != nil {
			return err
		}
		slog.Info("Heartbeat rescheduled", slog.Duration("interval", interval))
	}
	return nil
}

// Stop flushes and closes the publisher and shuts down background work.
func (d *Daemon) Stop(ctx context.Context) error {
	d.mu.Lock()
	if d.status != StatusRunning {
		d.mu.Unlock()
		return nil
	}
	d.status = StatusStopping
	d.mu.Unlock()

	err := d.teardown(ctx)
	d.setStatus(StatusStopped)

	slog.Info("Telemetry daemon stopped")
	return err
}

// teardown releases whatever start has set up, in reverse order. Each
// component is detached under mu first, so a second teardown finds nothing.
func (d *Daemon) teardown(ctx context.Context) error {
	d.mu.Lock()
	watcher, server, scheduler := d.watcher, d.server, d.scheduler
	d.watcher, d.server, d.scheduler = nil, nil, nil
	d.heartbeat = uuid.Nil
	d.mu.Unlock()

	var errs []error
	if watcher != nil {
		if err := watcher.Stop(); err != nil {
			errs = append(errs, fmt.Errorf("config watcher: %w", err))
		}
	}
	if server != nil {
		if err := server.Shutdown(ctx); err != nil {
			errs = append(errs, fmt.Errorf("metrics server shutdown: %w", err))
		}
	}
	if scheduler != nil {
		if err := scheduler.Stop(); err != nil {
			errs = append(errs, err)
		}
	}
	if p := d.registry.Reset(); p != nil {
		if err := p.Flush(ctx); err != nil {
			slog.Warn("Failed to flush publisher", logfields.Error(err))
		}
		if err := p.Close(); err != nil {
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}
