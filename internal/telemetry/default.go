package telemetry

import (
	"context"
	"os"
	"sync"

	"git.home.luguber.info/inful/kostelemetry/internal/config"
)

var defaultRegistry = sync.OnceValue(func() *Registry {
	return NewRegistry(WithEnabled(config.TelemetryEnabled(os.LookupEnv)))
})

// Default returns the process-wide registry. ENABLE_TELEMETRY is read on first use.
func Default() *Registry { return defaultRegistry() }

// Initialize initializes the process-wide registry.
func Initialize(ctx context.Context, robotID, host string, port int) error {
	return Default().Initialize(ctx, robotID, host, port)
}

// Get returns the process-wide publisher, or nil.
func Get() *Publisher { return Default().Get() }

// TryGet returns the process-wide publisher without waiting, or nil.
func TryGet() *Publisher { return Default().TryGet() }
