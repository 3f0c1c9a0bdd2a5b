package metrics

import "time"

// ResultLabel enumerates publish outcomes for counters.
type ResultLabel string

const (
	ResultSuccess       ResultLabel = "success"
	ResultInvalid       ResultLabel = "invalid"
	ResultSerialization ResultLabel = "serialization_error"
	ResultTransport     ResultLabel = "transport_error"
)

// Recorder defines observability hooks for publisher lifecycle and publish metrics.
type Recorder interface {
	IncInitialize(success bool)
	IncPublish(result ResultLabel)
	ObservePublishDuration(qos string, d time.Duration)
	IncCounterDropped(counter string)
	IncTransportEvent(kind string)
}

// NoopRecorder is a Recorder that does nothing (default when metrics not configured).
type NoopRecorder struct{}

func (NoopRecorder) IncInitialize(bool)                          {}
func (NoopRecorder) IncPublish(ResultLabel)                      {}
func (NoopRecorder) ObservePublishDuration(string, time.Duration) {}
func (NoopRecorder) IncCounterDropped(string)                    {}
func (NoopRecorder) IncTransportEvent(string)                    {}
