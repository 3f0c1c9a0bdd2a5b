package commands

import (
	"errors"
	"io/fs"
	"log/slog"
	"os"

	"github.com/alecthomas/kong"

	"git.home.luguber.info/inful/kostelemetry/internal/config"
	"git.home.luguber.info/inful/kostelemetry/internal/observability"
)

// DefaultConfigPath is used when -c is not given.
const DefaultConfigPath = "kos-telemetry.yaml"

// Global context passed to subcommands.
type Global struct {
	Logger *slog.Logger
}

// CLI definition & global flags.
type CLI struct {
	Config  string           `short:"c" help:"Configuration file path" default:"kos-telemetry.yaml" env:"KOS_CONFIG"`
	Verbose bool             `short:"v" help:"Enable verbose logging"`
	Version kong.VersionFlag `name:"version" help:"Show version and exit"`

	Publish     PublishCmd     `cmd:"" help:"Publish one JSON payload on a robot topic"`
	Serve       ServeCmd       `cmd:"" help:"Keep a publisher connected and send periodic heartbeats"`
	CheckConfig CheckConfigCmd `cmd:"" help:"Validate the configuration and print the resolved values"`
}

// AfterApply runs after flag parsing; sets a provisional logger until the
// config file's logging section is known.
// nolint:unparam // AfterApply currently never returns an error.
func (c *CLI) AfterApply() error {
	level := slog.LevelInfo
	if c.Verbose {
		level = slog.LevelDebug
	}
	slog.SetDefault(observability.NewLogger(level, "text", os.Stderr))
	return nil
}

// loadConfig reads the configuration. When optional is set, a missing file at
// the default path yields defaults plus environment overrides.
func loadConfig(root *CLI, optional bool) (*config.Config, error) {
	if optional && root.Config == DefaultConfigPath {
		if _, err := os.Stat(root.Config); errors.Is(err, fs.ErrNotExist) {
			cfg := config.Default()
			if err := cfg.ApplyEnv(os.LookupEnv); err != nil {
				return nil, err
			}
			configureLogging(cfg, root.Verbose)
			return cfg, nil
		}
	}

	cfg, err := config.Load(root.Config)
	if err != nil {
		return nil, err
	}
	configureLogging(cfg, root.Verbose)
	return cfg, nil
}

// configureLogging installs the logger described by cfg; -v forces debug.
func configureLogging(cfg *config.Config, verbose bool) {
	level := observability.ParseLevel(string(cfg.Logging.Level))
	if verbose && level > slog.LevelDebug {
		level = slog.LevelDebug
	}
	slog.SetDefault(observability.NewLogger(level, string(cfg.Logging.Format), os.Stderr))
}
