package config

import "strings"

// LogLevel enumerates supported logging levels.
type LogLevel string

const (
	LogLevelTrace LogLevel = "trace"
	LogLevelDebug LogLevel = "debug"
	LogLevelInfo  LogLevel = "info"
	LogLevelWarn  LogLevel = "warn"
	LogLevelError LogLevel = "error"
)

// LogFormat enumerates supported log output formats.
type LogFormat string

const (
	LogFormatJSON LogFormat = "json"
	LogFormatText LogFormat = "text"
)

// BackoffMode enumerates supported reconnect backoff strategies.
type BackoffMode string

const (
	BackoffFixed       BackoffMode = "fixed"
	BackoffLinear      BackoffMode = "linear"
	BackoffExponential BackoffMode = "exponential"
)

// normalizer maps trimmed, lower-cased input onto a closed set of values.
type normalizer[T ~string] struct {
	valid    map[string]T
	fallback T
}

func newNormalizer[T ~string](fallback T, values ...T) normalizer[T] {
	valid := make(map[string]T, len(values))
	for _, v := range values {
		valid[string(v)] = v
	}
	return normalizer[T]{valid: valid, fallback: fallback}
}

func (n normalizer[T]) normalize(raw string) T {
	if v, ok := n.valid[strings.ToLower(strings.TrimSpace(raw))]; ok {
		return v
	}
	return n.fallback
}

func (n normalizer[T]) isValid(raw string) bool {
	_, ok := n.valid[strings.ToLower(strings.TrimSpace(raw))]
	return ok
}

var (
	logLevels    = newNormalizer(LogLevelInfo, LogLevelTrace, LogLevelDebug, LogLevelInfo, LogLevelWarn, LogLevelError)
	logFormats   = newNormalizer(LogFormatText, LogFormatJSON, LogFormatText)
	backoffModes = newNormalizer(BackoffExponential, BackoffFixed, BackoffLinear, BackoffExponential)
)

func NormalizeLogLevel(raw string) LogLevel { return logLevels.normalize(raw) }

func NormalizeLogFormat(raw string) LogFormat { return logFormats.normalize(raw) }

func NormalizeBackoffMode(raw string) BackoffMode { return backoffModes.normalize(raw) }
