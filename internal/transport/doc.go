// Package transport defines the publish/subscribe capability the telemetry
// publisher depends on: publish(topic, bytes, qos, retain) plus a stream of
// connection notifications that must be drained continuously.
//
// Implementations live in sub-packages (natsbus for NATS/JetStream,
// transporttest for an in-memory recorder used in tests).
package transport
