package commands

import (
	"context"
	"fmt"
	"log/slog"
	"os/signal"
	"syscall"
	"time"

	"git.home.luguber.info/inful/kostelemetry/internal/config"
	"git.home.luguber.info/inful/kostelemetry/internal/daemon"
)

// ServeCmd implements the 'serve' command.
type ServeCmd struct {
	NoWatch  bool          `help:"Do not reload when the config file changes"`
	Debounce time.Duration `help:"Delay before applying a changed config file" default:"500ms"`
}

func (s *ServeCmd) Run(_ *Global, root *CLI) error {
	cfg, err := loadConfig(root, false)
	if err != nil {
		return fmt.Errorf("load config: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return err
	}

	ctx, cancel := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer cancel()

	opts := daemon.Options{Debounce: s.Debounce}
	if !s.NoWatch {
		opts.ConfigPath = root.Config
	}
	return RunDaemon(ctx, cfg, opts)
}

// RunDaemon starts the daemon and blocks until ctx is done.
func RunDaemon(ctx context.Context, cfg *config.Config, opts daemon.Options) error {
	d, err := daemon.New(cfg, opts)
	if err != nil {
		return fmt.Errorf("failed to create daemon: %w", err)
	}
	if err := d.Start(ctx); err != nil {
		return err
	}

	slog.Info("Daemon started, waiting for shutdown signal...")
	<-ctx.Done()
	slog.Info("Shutdown signal received, stopping daemon...")

	stopCtx, stopCancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer stopCancel()

	if err := d.Stop(stopCtx); err != nil {
		return fmt.Errorf("failed to stop daemon: %w", err)
	}
	slog.Info("Daemon stopped successfully")
	return nil
}
