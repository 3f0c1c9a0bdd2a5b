package retry

import (
	"fmt"
	"time"

	"git.home.luguber.info/inful/kostelemetry/internal/config"
)

// Policy encapsulates backoff settings for broker reconnect attempts.
// It is immutable after construction.
type Policy struct {
	Mode    config.BackoffMode // fixed|linear|exponential
	Initial time.Duration      // base delay
	Max     time.Duration      // cap for growth
}

// DefaultPolicy returns the default reconnect policy (exponential, 1s initial, 30s cap).
func DefaultPolicy() Policy {
	return Policy{Mode: config.BackoffExponential, Initial: config.DefaultReconnectInitial, Max: config.DefaultReconnectMax}
}

// NewPolicy builds a policy from raw config fields; zero/invalid values fall back to defaults.
func NewPolicy(mode config.BackoffMode, initial, maxDuration time.Duration) Policy {
	p := DefaultPolicy()
	if initial > 0 {
		p.Initial = initial
	}
	if maxDuration > 0 {
		p.Max = maxDuration
	}
	switch mode {
	case config.BackoffFixed, config.BackoffLinear, config.BackoffExponential:
		p.Mode = mode
	}
	if p.Initial > p.Max {
		p.Initial = p.Max
	}
	return p
}

// FromConfig builds the reconnect policy described by cfg.
func FromConfig(cfg *config.Config) Policy {
	initial, maxDelay := cfg.ReconnectDelays()
	return NewPolicy(cfg.Broker.Reconnect.Mode, initial, maxDelay)
}

// Delay returns the backoff delay for the given attempt number (1-based).
func (p Policy) Delay(attempt int) time.Duration {
	if attempt <= 0 {
		return 0
	}
	switch p.Mode {
	case config.BackoffFixed:
		return p.Initial
	case config.BackoffLinear:
		d := time.Duration(attempt) * p.Initial
		if d > p.Max || d <= 0 {
			return p.Max
		}
		return d
	default: // exponential
		if attempt > 32 {
			return p.Max
		}
		d := p.Initial * (1 << (attempt - 1))
		if d > p.Max || d <= 0 {
			return p.Max
		}
		return d
	}
}

// Validate ensures invariants; returns error if policy impossible to apply.
func (p Policy) Validate() error {
	if p.Initial <= 0 {
		return fmt.Errorf("initial must be >0")
	}
	if p.Max <= 0 {
		return fmt.Errorf("max must be >0")
	}
	return nil
}
