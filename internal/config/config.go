package config

import (
	"fmt"
	"os"
	"strconv"
	"time"

	"gopkg.in/yaml.v3"

	ferrors "git.home.luguber.info/inful/kostelemetry/internal/errors"
)

// Environment variables that override file values.
const (
	EnvRobotID    = "KOS_ROBOT_ID"
	EnvBrokerHost = "KOS_BROKER_HOST"
	EnvBrokerPort = "KOS_BROKER_PORT"
)

// Config represents the telemetry publisher configuration
type Config struct {
	Robot     RobotConfig     `yaml:"robot"`
	Broker    BrokerConfig    `yaml:"broker"`
	Telemetry TelemetryConfig `yaml:"telemetry"`
	Logging   LoggingConfig   `yaml:"logging"`
	Metrics   MetricsConfig   `yaml:"metrics"`
	Heartbeat HeartbeatConfig `yaml:"heartbeat"`
}

// RobotConfig identifies the robot; the id is the topic namespace root.
type RobotConfig struct {
	ID string `yaml:"id"`
}

// BrokerConfig describes the pub/sub broker connection
type BrokerConfig struct {
	Host            string          `yaml:"host"`
	Port            int             `yaml:"port"`
	KeepAlive       string          `yaml:"keep_alive"`       // duration, e.g. "5s"
	QueueSize       int             `yaml:"queue_size"`       // max in-flight acknowledged publishes
	Stream          string          `yaml:"stream"`           // JetStream stream capturing robots.>
	ProvisionStream bool            `yaml:"provision_stream"` // create/update the stream on connect
	RetainBucket    string          `yaml:"retain_bucket"`    // KV bucket holding retained payloads
	Reconnect       ReconnectConfig `yaml:"reconnect"`
}

// ReconnectConfig controls the delay between broker reconnect attempts
type ReconnectConfig struct {
	Mode    BackoffMode `yaml:"mode"`
	Initial string      `yaml:"initial"`
	Max     string      `yaml:"max"`
}

// TelemetryConfig gates publishing. Nil Enabled means "not set" (enabled).
type TelemetryConfig struct {
	Enabled *bool `yaml:"enabled,omitempty"`
}

// LoggingConfig selects slog level and handler format
type LoggingConfig struct {
	Level  LogLevel  `yaml:"level"`
	Format LogFormat `yaml:"format"`
}

// MetricsConfig controls the Prometheus endpoint served by the CLI
type MetricsConfig struct {
	Enabled bool   `yaml:"enabled"`
	Listen  string `yaml:"listen"`
}

// HeartbeatConfig controls the periodic heartbeat publish of the serve command
type HeartbeatConfig struct {
	Interval string `yaml:"interval"`
}

// Load loads configuration from the specified file, applying .env files,
// ${VAR} expansion, defaults and environment overrides.
func Load(configPath string) (*Config, error) {
	if err := loadEnvFile(); err != nil {
		// Missing .env files are normal.
		fmt.Fprintf(os.Stderr, "Note: .env file not found or couldn't be loaded: %v\n", err)
	}

	if _, err := os.Stat(configPath); os.IsNotExist(err) {
		return nil, ferrors.ConfigNotFound(configPath)
	}

	data, err := os.ReadFile(configPath)
	if err != nil {
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}

	cfg, err := Parse(data)
	if err != nil {
		return nil, err
	}
	if err := cfg.ApplyEnv(os.LookupEnv); err != nil {
		return nil, err
	}
	return cfg, nil
}

// Parse decodes YAML content (after environment expansion) and applies defaults.
func Parse(data []byte) (*Config, error) {
	expanded := os.ExpandEnv(string(data))

	var cfg Config
	if err := yaml.Unmarshal([]byte(expanded), &cfg); err != nil {
		return nil, ferrors.Wrap(err, ferrors.CategoryConfig, ferrors.SeverityFatal, "failed to unmarshal config")
	}
	cfg.ApplyDefaults()
	return &cfg, nil
}

// Default returns a configuration with every default applied.
func Default() *Config {
	cfg := &Config{}
	cfg.ApplyDefaults()
	return cfg
}

// ApplyEnv overrides robot id, broker address and the enable gate from lookup.
func (c *Config) ApplyEnv(lookup func(string) (string, bool)) error {
	if v, ok := lookup(EnvRobotID); ok && v != "" {
		c.Robot.ID = v
	}
	if v, ok := lookup(EnvBrokerHost); ok && v != "" {
		c.Broker.Host = v
	}
	if v, ok := lookup(EnvBrokerPort); ok && v != "" {
		port, err := strconv.Atoi(v)
		if err != nil {
			return ferrors.ValidationFailed(EnvBrokerPort, "not an integer")
		}
		c.Broker.Port = port
	}
	if _, ok := lookup(EnvEnableTelemetry); ok {
		enabled := TelemetryEnabled(lookup)
		c.Telemetry.Enabled = &enabled
	}
	return nil
}

// IsTelemetryEnabled reports the resolved enable gate.
func (c *Config) IsTelemetryEnabled() bool {
	return c.Telemetry.Enabled == nil || *c.Telemetry.Enabled
}

// KeepAliveDuration returns the parsed keep-alive, falling back to the default.
func (c *Config) KeepAliveDuration() time.Duration {
	return parseDurationOr(c.Broker.KeepAlive, DefaultKeepAlive)
}

// HeartbeatInterval returns the parsed heartbeat interval, falling back to the default.
func (c *Config) HeartbeatInterval() time.Duration {
	return parseDurationOr(c.Heartbeat.Interval, DefaultHeartbeatInterval)
}

// ReconnectDelays returns the parsed initial and max reconnect delays.
func (c *Config) ReconnectDelays() (initial, maxDelay time.Duration) {
	return parseDurationOr(c.Broker.Reconnect.Initial, DefaultReconnectInitial),
		parseDurationOr(c.Broker.Reconnect.Max, DefaultReconnectMax)
}

func parseDurationOr(raw string, fallback time.Duration) time.Duration {
	if raw == "" {
		return fallback
	}
	d, err := time.ParseDuration(raw)
	if err != nil || d <= 0 {
		return fallback
	}
	return d
}
