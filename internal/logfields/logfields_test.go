package logfields

import (
	"errors"
	"log/slog"
	"testing"
)

// TestHelperKeyNames verifies string-based helper key/value stability.
func TestHelperKeyNames(t *testing.T) {
	cases := []struct {
		name    string
		attrKey string
		attrVal string
		attr    slog.Attr
	}{
		{"RobotID", KeyRobotID, "r1", RobotID("r1")},
		{"ClientID", KeyClientID, "kos-r1", ClientID("kos-r1")},
		{"Broker", KeyBroker, "nats://localhost:4222", Broker("nats://localhost:4222")},
		{"Topic", KeyTopic, "robots/r1/joints", Topic("robots/r1/joints")},
		{"Subject", KeySubject, "robots.r1.joints", Subject("robots.r1.joints")},
		{"QoS", KeyQoS, "at-least-once", QoS("at-least-once")},
		{"Event", KeyEvent, "disconnected", Event("disconnected")},
		{"Path", KeyPath, "/etc/kos.yaml", Path("/etc/kos.yaml")},
	}
	for _, c := range cases {
		t.Run(c.name, func(t *testing.T) {
			if c.attr.Key != c.attrKey {
				t.Fatalf("expected key %s got %s", c.attrKey, c.attr.Key)
			}
			if c.attr.Value.String() != c.attrVal {
				t.Fatalf("expected value %s got %s", c.attrVal, c.attr.Value.String())
			}
		})
	}
}

func TestNumericAndBoolHelpers(t *testing.T) {
	if a := Bytes(42); a.Key != KeyBytes || a.Value.Int64() != 42 {
		t.Fatalf("unexpected bytes attr %v", a)
	}
	if a := DurationMS(1.5); a.Key != KeyDurationMS || a.Value.Float64() != 1.5 {
		t.Fatalf("unexpected duration attr %v", a)
	}
	if a := Retain(true); a.Key != KeyRetain || !a.Value.Bool() {
		t.Fatalf("unexpected retain attr %v", a)
	}
}

func TestErrorHelper(t *testing.T) {
	if a := Error(nil); a.Value.String() != "" {
		t.Fatalf("nil error should produce empty value, got %q", a.Value.String())
	}
	if a := Error(errors.New("boom")); a.Key != KeyError || a.Value.String() != "boom" {
		t.Fatalf("unexpected error attr %v", a)
	}
}
