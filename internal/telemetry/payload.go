package telemetry

// Payload is the wire envelope of every published message.
type Payload[T any] struct {
	FrameNumber    uint64 `json:"frame_number"`
	VideoTimestamp uint64 `json:"video_timestamp"`
	InferenceStep  uint64 `json:"inference_step"`
	Data           T      `json:"data"`
}

// Counters is a snapshot of a publisher's synchronization counters.
type Counters struct {
	FrameNumber    uint64
	VideoTimestamp uint64
	InferenceStep  uint64
}
