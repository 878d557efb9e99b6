package utils

const (
	// LoggerInitializationFailedMessageFormat reports that the application logger could not be built.
	LoggerInitializationFailedMessageFormat = "failed to initialize logger: %w"
	// ApplicationExecutionFailedMessage prefixes fatal errors logged by the entry point.
	ApplicationExecutionFailedMessage = "ctxt failed"
)
