package daemon

import (
	"context"
	"crypto/sha256"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"sync"
	"sync/atomic"
	"time"

	"github.com/fsnotify/fsnotify"

	"git.home.luguber.info/inful/kostelemetry/internal/config"
	"git.home.luguber.info/inful/kostelemetry/internal/logfields"
)

// reloader applies a freshly loaded configuration.
type reloader interface {
	ReloadConfig(ctx context.Context, cfg *config.Config) error
}

// ConfigWatcher reloads the daemon when its config file changes. Bursts of
// file events within the debounce window collapse into one reload, and
// rewrites that leave the content unchanged are ignored.
type ConfigWatcher struct {
	path     string
	target   reloader
	debounce time.Duration
	fsw      *fsnotify.Watcher

	fingerprint [sha256.Size]byte

	started  atomic.Bool
	stop     chan struct{}
	done     chan struct{}
	stopOnce sync.Once
}

// NewConfigWatcher prepares a watcher for path; Start begins watching.
func NewConfigWatcher(path string, target reloader, debounce time.Duration) (*ConfigWatcher, error) {
	abs, err := filepath.Abs(path)
	if err != nil {
		return nil, fmt.Errorf("failed to resolve config path: %w", err)
	}
	fsw, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, fmt.Errorf("failed to create file watcher: %w", err)
	}

	cw := &ConfigWatcher{
		path:     abs,
		target:   target,
		debounce: debounce,
		fsw:      fsw,
		stop:     make(chan struct{}),
		done:     make(chan struct{}),
	}
	if data, err := os.ReadFile(abs); err == nil {
		cw.fingerprint = sha256.Sum256(data)
	}
	return cw, nil
}

// Start watches the file's directory (editors often replace the file rather
// than write it) and runs the event loop until ctx ends or Stop is called.
func (cw *ConfigWatcher) Start(ctx context.Context) error {
	dir := filepath.Dir(cw.path)
	if err := cw.fsw.Add(dir); err != nil {
		return fmt.Errorf("failed to watch config directory %s: %w", dir, err)
	}
	slog.Info("Watching configuration", logfields.Path(cw.path), slog.Duration("debounce", cw.debounce))
	cw.started.Store(true)
	go cw.loop(ctx)
	return nil
}

// Stop releases the file watcher and waits for the event loop, if Start
// launched one, to exit.
func (cw *ConfigWatcher) Stop() error {
	var err error
	cw.stopOnce.Do(func() {
		close(cw.stop)
		err = cw.fsw.Close()
		if !cw.started.Load() {
			close(cw.done)
		}
	})
	<-cw.done
	return err
}

func (cw *ConfigWatcher) loop(ctx context.Context) {
	defer close(cw.done)

	timer := time.NewTimer(time.Hour)
	timer.Stop()
	defer timer.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-cw.stop:
			return
		case ev, ok := <-cw.fsw.Events:
			if !ok {
				return
			}
			if !cw.relevant(ev) {
				continue
			}
			slog.Debug("Config file event", logfields.Path(ev.Name), logfields.Event(ev.Op.String()))
			timer.Reset(cw.debounce)
		case err, ok := <-cw.fsw.Errors:
			if !ok {
				return
			}
			slog.Warn("Config watcher error", logfields.Error(err))
		case <-timer.C:
			if err := cw.reload(ctx); err != nil {
				slog.Error("Configuration reload rejected", logfields.Path(cw.path), logfields.Error(err))
			}
		}
	}
}

func (cw *ConfigWatcher) relevant(ev fsnotify.Event) bool {
	if filepath.Clean(ev.Name) != cw.path {
		return false
	}
	if ev.Has(fsnotify.Remove) {
		slog.Warn("Config file removed; keeping current configuration", logfields.Path(cw.path))
		return false
	}
	return ev.Has(fsnotify.Write) || ev.Has(fsnotify.Create) || ev.Has(fsnotify.Rename)
}

func (cw *ConfigWatcher) reload(ctx context.Context) error {
	data, err := os.ReadFile(cw.path)
	if err != nil {
		return fmt.Errorf("read config: %w", err)
	}
	sum := sha256.Sum256(data)
	if sum == cw.fingerprint {
		slog.Debug("Config content unchanged", logfields.Path(cw.path))
		return nil
	}

	cfg, err := config.Load(cw.path)
	if err != nil {
		return err
	}
	if err := cfg.Validate(); err != nil {
		return err
	}
	if err := cw.target.ReloadConfig(ctx, cfg); err != nil {
		return err
	}

	cw.fingerprint = sum
	slog.Info("Configuration reloaded", logfields.Path(cw.path), logfields.RobotID(cfg.Robot.ID))
	return nil
}
