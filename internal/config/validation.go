package config

import (
	"time"

	ferrors "git.home.luguber.info/inful/kostelemetry/internal/errors"
)

// Validate checks the fields needed to initialize a publisher.
func (c *Config) Validate() error {
	if c.Robot.ID == "" {
		return ferrors.ConfigRequired("robot.id")
	}
	if c.Broker.Host == "" {
		return ferrors.ConfigRequired("broker.host")
	}
	if c.Broker.Port <= 0 || c.Broker.Port > 65535 {
		return ferrors.ValidationFailed("broker.port", "must be between 1 and 65535")
	}
	if c.Broker.QueueSize < 0 {
		return ferrors.ValidationFailed("broker.queue_size", "cannot be negative")
	}
	durations := map[string]string{
		"broker.keep_alive":        c.Broker.KeepAlive,
		"broker.reconnect.initial": c.Broker.Reconnect.Initial,
		"broker.reconnect.max":     c.Broker.Reconnect.Max,
		"heartbeat.interval":       c.Heartbeat.Interval,
	}
	for field, raw := range durations {
		if raw == "" {
			continue
		}
		if d, err := time.ParseDuration(raw); err != nil || d <= 0 {
			return ferrors.ValidationFailed(field, "must be a positive duration")
		}
	}
	if raw := string(c.Broker.Reconnect.Mode); raw != "" && !backoffModes.isValid(raw) {
		return ferrors.ValidationFailed("broker.reconnect.mode", "must be fixed, linear or exponential")
	}
	return nil
}
