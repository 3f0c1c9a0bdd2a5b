// Package samples defines the diagnostic payloads robot subsystems publish
// and the topics they are published on.
package samples

import (
	"context"
	"time"
)

// Well-known topics beneath robots/<robot id>/.
const (
	TopicJoints    = "joints"
	TopicIMU       = "imu"
	TopicInference = "inference"
	TopicHeartbeat = "heartbeat"
)

// JointState compares the commanded and measured state of one actuator.
// Optional quantities are omitted when the actuator does not report them.
type JointState struct {
	ActuatorID      uint32   `json:"actuator_id"`
	DesiredPosition *float64 `json:"desired_position,omitempty"`
	ActualPosition  *float64 `json:"actual_position,omitempty"`
	DesiredVelocity *float64 `json:"desired_velocity,omitempty"`
	ActualVelocity  *float64 `json:"actual_velocity,omitempty"`
	DesiredTorque   *float64 `json:"desired_torque,omitempty"`
	ActualTorque    *float64 `json:"actual_torque,omitempty"`
}

// JointStates is one control-loop tick worth of joint samples.
type JointStates struct {
	Joints []JointState `json:"joints"`
}

// Vector3 is a three-axis reading.
type Vector3 struct {
	X float64 `json:"x"`
	Y float64 `json:"y"`
	Z float64 `json:"z"`
}

// Quaternion is an orientation estimate.
type Quaternion struct {
	W float64 `json:"w"`
	X float64 `json:"x"`
	Y float64 `json:"y"`
	Z float64 `json:"z"`
}

// IMUSample is one inertial measurement.
type IMUSample struct {
	Accel       Vector3     `json:"accel"`
	Gyro        Vector3     `json:"gyro"`
	Mag         *Vector3    `json:"mag,omitempty"`
	Orientation *Quaternion `json:"orientation,omitempty"`
}

// InferenceProgress reports a policy step of the onboard inference loop.
type InferenceProgress struct {
	Model     string  `json:"model,omitempty"`
	LatencyMS float64 `json:"latency_ms"`
	Actions   int     `json:"actions"`
}

// Heartbeat is published periodically so consumers can detect a silent robot.
type Heartbeat struct {
	Version  string    `json:"version"`
	Uptime   float64   `json:"uptime_s"`
	SentAt   time.Time `json:"sent_at"`
	Sequence uint64    `json:"sequence"`
}

// Publisher is the slice of telemetry.Publisher the helpers need.
type Publisher interface {
	Publish(ctx context.Context, topic string, payload any) error
}

// PublishJoints publishes a control tick of joint states.
func PublishJoints(ctx context.Context, p Publisher, joints []JointState) error {
	return p.Publish(ctx, TopicJoints, JointStates{Joints: joints})
}

// PublishIMU publishes one IMU sample.
func PublishIMU(ctx context.Context, p Publisher, s IMUSample) error {
	return p.Publish(ctx, TopicIMU, s)
}

// PublishInference publishes inference loop progress.
func PublishInference(ctx context.Context, p Publisher, s InferenceProgress) error {
	return p.Publish(ctx, TopicInference, s)
}

// Float returns a pointer to v, for optional JointState fields.
func Float(v float64) *float64 { return &v }
