package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	ferrors "git.home.luguber.info/inful/kostelemetry/internal/errors"
)

func lookupFrom(env map[string]string) func(string) (string, bool) {
	return func(k string) (string, bool) {
		v, ok := env[k]
		return v, ok
	}
}

func TestTelemetryEnabled(t *testing.T) {
	tests := []struct {
		name string
		env  map[string]string
		want bool
	}{
		{"unset", map[string]string{}, true},
		{"false", map[string]string{EnvEnableTelemetry: "false"}, false},
		{"FALSE", map[string]string{EnvEnableTelemetry: "FALSE"}, false},
		{"FaLsE", map[string]string{EnvEnableTelemetry: "FaLsE"}, false},
		{"true", map[string]string{EnvEnableTelemetry: "true"}, true},
		{"zero is not false", map[string]string{EnvEnableTelemetry: "0"}, true},
		{"no is not false", map[string]string{EnvEnableTelemetry: "no"}, true},
		{"empty", map[string]string{EnvEnableTelemetry: ""}, true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, TelemetryEnabled(lookupFrom(tt.env)))
		})
	}
}

func TestParseAppliesDefaults(t *testing.T) {
	cfg, err := Parse([]byte("robot:\n  id: r1\n"))
	require.NoError(t, err)

	assert.Equal(t, "r1", cfg.Robot.ID)
	assert.Equal(t, DefaultBrokerHost, cfg.Broker.Host)
	assert.Equal(t, DefaultBrokerPort, cfg.Broker.Port)
	assert.Equal(t, 5*time.Second, cfg.KeepAliveDuration())
	assert.Equal(t, DefaultQueueSize, cfg.Broker.QueueSize)
	assert.Equal(t, DefaultStream, cfg.Broker.Stream)
	assert.Equal(t, BackoffExponential, cfg.Broker.Reconnect.Mode)
	assert.Equal(t, LogLevelInfo, cfg.Logging.Level)
	assert.Equal(t, LogFormatText, cfg.Logging.Format)
	assert.True(t, cfg.IsTelemetryEnabled())
	require.NoError(t, cfg.Validate())
}

func TestParseFullDocument(t *testing.T) {
	t.Setenv("TEST_KOS_HOST", "broker.lan")
	doc := `
robot:
  id: zbot-07
broker:
  host: ${TEST_KOS_HOST}
  port: 4333
  keep_alive: 2s
  queue_size: 64
  provision_stream: true
  reconnect:
    mode: Linear
    initial: 250ms
    max: 5s
telemetry:
  enabled: false
logging:
  level: DEBUG
  format: json
heartbeat:
  interval: 1s
`
	cfg, err := Parse([]byte(doc))
	require.NoError(t, err)

	assert.Equal(t, "broker.lan", cfg.Broker.Host)
	assert.Equal(t, 4333, cfg.Broker.Port)
	assert.Equal(t, 2*time.Second, cfg.KeepAliveDuration())
	assert.Equal(t, 64, cfg.Broker.QueueSize)
	assert.True(t, cfg.Broker.ProvisionStream)
	assert.Equal(t, BackoffLinear, cfg.Broker.Reconnect.Mode)
	initial, maxDelay := cfg.ReconnectDelays()
	assert.Equal(t, 250*time.Millisecond, initial)
	assert.Equal(t, 5*time.Second, maxDelay)
	assert.False(t, cfg.IsTelemetryEnabled())
	assert.Equal(t, LogLevelDebug, cfg.Logging.Level)
	assert.Equal(t, LogFormatJSON, cfg.Logging.Format)
	assert.Equal(t, time.Second, cfg.HeartbeatInterval())
}

func TestApplyEnvOverrides(t *testing.T) {
	cfg := Default()
	cfg.Robot.ID = "from-file"

	err := cfg.ApplyEnv(lookupFrom(map[string]string{
		EnvRobotID:         "from-env",
		EnvBrokerHost:      "10.0.0.2",
		EnvBrokerPort:      "1883",
		EnvEnableTelemetry: "False",
	}))
	require.NoError(t, err)

	assert.Equal(t, "from-env", cfg.Robot.ID)
	assert.Equal(t, "10.0.0.2", cfg.Broker.Host)
	assert.Equal(t, 1883, cfg.Broker.Port)
	assert.False(t, cfg.IsTelemetryEnabled())
}

func TestApplyEnvRejectsBadPort(t *testing.T) {
	cfg := Default()
	err := cfg.ApplyEnv(lookupFrom(map[string]string{EnvBrokerPort: "eighty"}))
	require.Error(t, err)
	assert.True(t, ferrors.IsCategory(err, ferrors.CategoryValidation))
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(*Config)
		cat    ferrors.ErrorCategory
	}{
		{"missing robot id", func(c *Config) { c.Robot.ID = "" }, ferrors.CategoryConfig},
		{"port out of range", func(c *Config) { c.Broker.Port = 70000 }, ferrors.CategoryValidation},
		{"bad keep alive", func(c *Config) { c.Broker.KeepAlive = "soon" }, ferrors.CategoryValidation},
		{"negative queue", func(c *Config) { c.Broker.QueueSize = -1 }, ferrors.CategoryValidation},
		{"bad backoff mode", func(c *Config) { c.Broker.Reconnect.Mode = "random" }, ferrors.CategoryValidation},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := Default()
			cfg.Robot.ID = "r1"
			tt.mutate(cfg)
			err := cfg.Validate()
			require.Error(t, err)
			assert.True(t, ferrors.IsCategory(err, tt.cat), "got %v", err)
		})
	}
}

func TestLoadMissingFile(t *testing.T) {
	_, err := Load(filepath.Join(t.TempDir(), "nope.yaml"))
	require.Error(t, err)
	assert.True(t, ferrors.IsCategory(err, ferrors.CategoryConfig))
}

func TestLoadReadsFileAndEnv(t *testing.T) {
	path := filepath.Join(t.TempDir(), "kos.yaml")
	require.NoError(t, os.WriteFile(path, []byte("robot:\n  id: file-bot\nbroker:\n  port: 4999\n"), 0o600))
	t.Setenv(EnvRobotID, "env-bot")

	cfg, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, "env-bot", cfg.Robot.ID)
	assert.Equal(t, 4999, cfg.Broker.Port)
}

func TestNormalizers(t *testing.T) {
	assert.Equal(t, LogLevelWarn, NormalizeLogLevel(" WARN "))
	assert.Equal(t, LogLevelInfo, NormalizeLogLevel("verbose"))
	assert.Equal(t, LogFormatJSON, NormalizeLogFormat("Json"))
	assert.Equal(t, BackoffFixed, NormalizeBackoffMode("fixed"))
	assert.Equal(t, BackoffExponential, NormalizeBackoffMode(""))
}
