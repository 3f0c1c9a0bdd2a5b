package errors

// Convenience functions for common error patterns

// Config errors

func ConfigNotFound(path string) *TelemetryError {
	return New(CategoryConfig, SeverityFatal, "configuration file not found").
		WithContext("path", path)
}

func ConfigRequired(field string) *TelemetryError {
	return New(CategoryConfig, SeverityFatal, "required configuration missing").
		WithContext("field", field)
}

func ValidationFailed(field, reason string) *TelemetryError {
	return New(CategoryValidation, SeverityError, "validation failed").
		WithContext("field", field).
		WithContext("reason", reason)
}

// Telemetry errors

func InvalidRobotID(id, reason string) *TelemetryError {
	return New(CategoryValidation, SeverityError, "invalid robot identifier").
		WithContext("robot_id", id).
		WithContext("reason", reason)
}

func InvalidTopic(topic, reason string) *TelemetryError {
	return New(CategoryValidation, SeverityError, "invalid topic").
		WithContext("topic", topic).
		WithContext("reason", reason)
}

func InitializationFailed(robotID string, cause error) *TelemetryError {
	return Wrap(cause, CategoryTransport, SeverityError, "telemetry initialization failed").
		WithContext("robot_id", robotID)
}

func SerializationFailed(topic string, cause error) *TelemetryError {
	return Wrap(cause, CategorySerialization, SeverityError, "payload serialization failed").
		WithContext("topic", topic)
}

func PublishFailed(topic string, cause error) *TelemetryError {
	return Wrap(cause, CategoryTransport, SeverityError, "publish failed").
		WithContext("topic", topic)
}

// Internal errors

func InternalError(message string, cause error) *TelemetryError {
	return Wrap(cause, CategoryInternal, SeverityFatal, message)
}
