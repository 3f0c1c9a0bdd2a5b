package config

import "time"

const (
	DefaultBrokerHost        = "localhost"
	DefaultBrokerPort        = 4222
	DefaultKeepAlive         = 5 * time.Second
	DefaultQueueSize         = 10
	DefaultStream            = "KOS_TELEMETRY"
	DefaultRetainBucket      = "kos-telemetry-retained"
	DefaultReconnectInitial  = time.Second
	DefaultReconnectMax      = 30 * time.Second
	DefaultHeartbeatInterval = 10 * time.Second
	DefaultMetricsListen     = ":9464"
)

// ApplyDefaults fills zero-valued fields with their defaults.
func (c *Config) ApplyDefaults() {
	if c.Broker.Host == "" {
		c.Broker.Host = DefaultBrokerHost
	}
	if c.Broker.Port == 0 {
		c.Broker.Port = DefaultBrokerPort
	}
	if c.Broker.KeepAlive == "" {
		c.Broker.KeepAlive = DefaultKeepAlive.String()
	}
	if c.Broker.QueueSize == 0 {
		c.Broker.QueueSize = DefaultQueueSize
	}
	if c.Broker.Stream == "" {
		c.Broker.Stream = DefaultStream
	}
	if c.Broker.RetainBucket == "" {
		c.Broker.RetainBucket = DefaultRetainBucket
	}
	c.Broker.Reconnect.Mode = NormalizeBackoffMode(string(c.Broker.Reconnect.Mode))
	if c.Broker.Reconnect.Initial == "" {
		c.Broker.Reconnect.Initial = DefaultReconnectInitial.String()
	}
	if c.Broker.Reconnect.Max == "" {
		c.Broker.Reconnect.Max = DefaultReconnectMax.String()
	}
	c.Logging.Level = NormalizeLogLevel(string(c.Logging.Level))
	c.Logging.Format = NormalizeLogFormat(string(c.Logging.Format))
	if c.Metrics.Listen == "" {
		c.Metrics.Listen = DefaultMetricsListen
	}
	if c.Heartbeat.Interval == "" {
		c.Heartbeat.Interval = DefaultHeartbeatInterval.String()
	}
}
