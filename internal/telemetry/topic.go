package telemetry

import (
	"strings"
	"unicode"

	ferrors "git.home.luguber.info/inful/kostelemetry/internal/errors"
)

const (
	// TopicRoot prefixes every published topic.
	TopicRoot = "robots"

	// ClientIDPrefix is prepended to the robot id to name the broker connection.
	ClientIDPrefix = "kos-"
)

// wildcards are reserved by MQTT (+ #) and NATS (* >) subscriptions.
const wildcards = "+#*>"

// ValidateRobotID rejects ids that cannot serve as a single topic level.
func ValidateRobotID(id string) error {
	switch {
	case id == "":
		return ferrors.InvalidRobotID(id, "empty")
	case strings.ContainsAny(id, "/."):
		return ferrors.InvalidRobotID(id, "contains a level separator")
	case strings.ContainsAny(id, wildcards):
		return ferrors.InvalidRobotID(id, "contains a wildcard character")
	case strings.IndexFunc(id, unicode.IsSpace) >= 0:
		return ferrors.InvalidRobotID(id, "contains whitespace")
	}
	return nil
}

// ValidateTopic rejects topics that are empty, carry wildcards, whitespace or
// dots, or have empty levels. Sub-levels such as "imu/raw" are allowed; a dot
// would alias a level once the topic is mapped onto a NATS subject.
func ValidateTopic(topic string) error {
	switch {
	case topic == "":
		return ferrors.InvalidTopic(topic, "empty")
	case strings.HasPrefix(topic, "/") || strings.HasSuffix(topic, "/") || strings.Contains(topic, "//"):
		return ferrors.InvalidTopic(topic, "empty topic level")
	case strings.Contains(topic, "."):
		return ferrors.InvalidTopic(topic, "contains a dot")
	case strings.ContainsAny(topic, wildcards):
		return ferrors.InvalidTopic(topic, "contains a wildcard character")
	case strings.IndexFunc(topic, unicode.IsSpace) >= 0:
		return ferrors.InvalidTopic(topic, "contains whitespace")
	}
	return nil
}

// FullTopic returns robots/<robotID>/<topic>.
func FullTopic(robotID, topic string) string {
	return TopicRoot + "/" + robotID + "/" + topic
}

