package transport

import (
	"fmt"
	"strings"
)

// QoS is the delivery guarantee requested for a single publish.
type QoS uint8

const (
	AtMostOnce QoS = iota
	AtLeastOnce
	ExactlyOnce
)

func (q QoS) String() string {
	switch q {
	case AtMostOnce:
		return "at-most-once"
	case AtLeastOnce:
		return "at-least-once"
	case ExactlyOnce:
		return "exactly-once"
	default:
		return fmt.Sprintf("qos(%d)", uint8(q))
	}
}

// ParseQoS accepts numeric MQTT-style levels (0, 1, 2) or the names returned by String.
func ParseQoS(raw string) (QoS, error) {
	switch strings.ToLower(strings.TrimSpace(raw)) {
	case "0", "at-most-once":
		return AtMostOnce, nil
	case "1", "at-least-once":
		return AtLeastOnce, nil
	case "2", "exactly-once":
		return ExactlyOnce, nil
	default:
		return 0, fmt.Errorf("unknown qos %q", raw)
	}
}
