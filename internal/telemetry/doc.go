// Package telemetry tags outgoing diagnostic events with video/inference
// synchronization metadata and publishes them to the broker.
//
// A Registry holds at most one live Publisher. Initialize dials the broker,
// starts a background loop draining transport notifications, and replaces
// any previous Publisher (which is not closed). Get and TryGet return the
// current Publisher, or nil when telemetry is disabled or uninitialized;
// TryGet never waits for the registry lock.
//
// Publisher counters come in two tiers. Frame number and video timestamp are
// best effort: an update is dropped and a read returns 0 when the counter is
// busy, so callers never block. The inference step is a lock-free atomic and
// is always exact.
//
// Publish snapshots the three counters independently, wraps the payload as
//
//	{"frame_number":5,"video_timestamp":1000,"inference_step":3,"data":{...}}
//
// and sends it at-least-once, non-retained, on robots/<robot id>/<topic>.
// The triple is approximate: no ordering holds between counter updates and
// the snapshot.
//
// The process-wide registry used by Initialize, Get and TryGet reads
// ENABLE_TELEMETRY once; tests and embedders can build their own with
// NewRegistry.
package telemetry
