package logfields

import "log/slog"

// Canonical log field name constants to avoid drift across packages.
const (
	KeyRobotID    = "robot_id"
	KeyClientID   = "client_id"
	KeyBroker     = "broker"
	KeyTopic      = "topic"
	KeySubject    = "subject"
	KeyQoS        = "qos"
	KeyRetain     = "retain"
	KeyEvent      = "event"
	KeyBytes      = "bytes"
	KeyDurationMS = "duration_ms"
	KeyPath       = "path"
	KeyError      = "error"
)

// Simple helpers returning slog.Attr. Keeping each granular means callers can compose.
func RobotID(id string) slog.Attr     { return slog.String(KeyRobotID, id) }
func ClientID(id string) slog.Attr    { return slog.String(KeyClientID, id) }
func Broker(addr string) slog.Attr    { return slog.String(KeyBroker, addr) }
func Topic(t string) slog.Attr        { return slog.String(KeyTopic, t) }
func Subject(s string) slog.Attr      { return slog.String(KeySubject, s) }
func QoS(q string) slog.Attr          { return slog.String(KeyQoS, q) }
func Retain(r bool) slog.Attr         { return slog.Bool(KeyRetain, r) }
func Event(kind string) slog.Attr     { return slog.String(KeyEvent, kind) }
func Bytes(n int) slog.Attr           { return slog.Int(KeyBytes, n) }
func DurationMS(ms float64) slog.Attr { return slog.Float64(KeyDurationMS, ms) }
func Path(p string) slog.Attr         { return slog.String(KeyPath, p) }
func Error(err error) slog.Attr {
	if err == nil {
		return slog.String(KeyError, "")
	}
	return slog.String(KeyError, err.Error())
}
