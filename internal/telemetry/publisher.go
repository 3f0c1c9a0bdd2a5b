package telemetry

import (
	"context"
	"encoding/json"
	"sync/atomic"
	"time"

	ferrors "git.home.luguber.info/inful/kostelemetry/internal/errors"
	"git.home.luguber.info/inful/kostelemetry/internal/logfields"
	"git.home.luguber.info/inful/kostelemetry/internal/metrics"
	"git.home.luguber.info/inful/kostelemetry/internal/observability"
	"git.home.luguber.info/inful/kostelemetry/internal/transport"
)

// Counter names used for dropped-operation metrics.
const (
	counterFrameNumber    = "frame_number"
	counterVideoTimestamp = "video_timestamp"
)

// publishQoS is the delivery level of every telemetry publish.
const publishQoS = transport.AtLeastOnce

// Publisher is a shared handle to a broker connection plus the synchronization
// counters stamped onto every payload. It is safe for concurrent use and must
// not be copied.
type Publisher struct {
	robotID  string
	client   transport.Client
	recorder metrics.Recorder

	frameNumber    tryCell
	videoTimestamp tryCell
	inferenceStep  atomic.Uint64
}

// NewPublisher wraps an already-dialed client. Counters start at zero.
func NewPublisher(robotID string, client transport.Client, recorder metrics.Recorder) *Publisher {
	if recorder == nil {
		recorder = metrics.NoopRecorder{}
	}
	return &Publisher{robotID: robotID, client: client, recorder: recorder}
}

// RobotID returns the topic namespace root.
func (p *Publisher) RobotID() string { return p.robotID }

// UpdateFrameNumber sets the frame number unless the counter is busy.
func (p *Publisher) UpdateFrameNumber(n uint64) {
	if !p.frameNumber.store(n) {
		p.recorder.IncCounterDropped(counterFrameNumber)
	}
}

// IncrementFrameNumber adds one to the frame number unless the counter is busy.
func (p *Publisher) IncrementFrameNumber() {
	if !p.frameNumber.add(1) {
		p.recorder.IncCounterDropped(counterFrameNumber)
	}
}

// FrameNumber returns the frame number, or 0 if the counter is busy.
func (p *Publisher) FrameNumber() uint64 {
	v, ok := p.frameNumber.load()
	if !ok {
		p.recorder.IncCounterDropped(counterFrameNumber)
	}
	return v
}

// UpdateVideoTimestamp sets the video timestamp unless the counter is busy.
func (p *Publisher) UpdateVideoTimestamp(t uint64) {
	if !p.videoTimestamp.store(t) {
		p.recorder.IncCounterDropped(counterVideoTimestamp)
	}
}

// VideoTimestamp returns the video timestamp, or 0 if the counter is busy.
func (p *Publisher) VideoTimestamp() uint64 {
	v, ok := p.videoTimestamp.load()
	if !ok {
		p.recorder.IncCounterDropped(counterVideoTimestamp)
	}
	return v
}

// UpdateInferenceStep sets the inference step. It never drops.
func (p *Publisher) UpdateInferenceStep(n uint64) { p.inferenceStep.Store(n) }

// IncrementInferenceStep adds one to the inference step. Concurrent
// increments are never lost.
func (p *Publisher) IncrementInferenceStep() { p.inferenceStep.Add(1) }

// InferenceStep returns the current inference step.
func (p *Publisher) InferenceStep() uint64 { return p.inferenceStep.Load() }

// Snapshot reads the three counters independently; the triple is not a
// consistent point in time.
func (p *Publisher) Snapshot() Counters {
	return Counters{
		FrameNumber:    p.FrameNumber(),
		VideoTimestamp: p.VideoTimestamp(),
		InferenceStep:  p.InferenceStep(),
	}
}

// Publish stamps payload with the current counters and sends it on
// robots/<robot id>/<topic>. It blocks while the transport queue is full and
// returns serialization and transport failures without retrying.
func (p *Publisher) Publish(ctx context.Context, topic string, payload any) error {
	start := time.Now()
	ctx = observability.WithTopic(observability.WithRobotID(ctx, p.robotID), topic)

	if err := ValidateTopic(topic); err != nil {
		p.recorder.IncPublish(metrics.ResultInvalid)
		return err
	}

	c := p.Snapshot()
	body, err := json.Marshal(Payload[any]{
		FrameNumber:    c.FrameNumber,
		VideoTimestamp: c.VideoTimestamp,
		InferenceStep:  c.InferenceStep,
		Data:           payload,
	})
	if err != nil {
		p.recorder.IncPublish(metrics.ResultSerialization)
		observability.DebugContext(ctx, "Dropping telemetry payload", logfields.Error(err))
		return ferrors.SerializationFailed(topic, err)
	}

	full := FullTopic(p.robotID, topic)
	if err := p.client.Publish(ctx, full, body, publishQoS, false); err != nil {
		p.recorder.IncPublish(metrics.ResultTransport)
		observability.DebugContext(ctx, "Telemetry publish failed", logfields.Error(err))
		return ferrors.PublishFailed(full, err)
	}

	elapsed := time.Since(start)
	p.recorder.IncPublish(metrics.ResultSuccess)
	p.recorder.ObservePublishDuration(publishQoS.String(), elapsed)
	observability.TraceContext(ctx, "Published telemetry",
		logfields.Bytes(len(body)),
		logfields.DurationMS(float64(elapsed.Microseconds())/1000))
	return nil
}

// Flush waits for in-flight publishes when the transport supports it.
func (p *Publisher) Flush(ctx context.Context) error {
	if f, ok := p.client.(transport.Flusher); ok {
		return f.Flush(ctx)
	}
	return nil
}

// Close closes the underlying connection. The registry never calls it; the
// owner of a replaced publisher may.
func (p *Publisher) Close() error {
	return p.client.Close()
}
