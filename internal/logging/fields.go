package logging

const (
	// FieldComponent is the standardized structured logging key for component names.
	FieldComponent = "component"
	// FieldRunID identifies one vidup invocation.
	FieldRunID = "run_id"
	// FieldFile is the index name of the file being processed.
	FieldFile = "file"
	// FieldFileID is the store identifier of the file being processed.
	FieldFileID = "file_id"
	// FieldEventType classifies warnings and errors for filtering.
	FieldEventType = "event_type"
	// FieldErrorHint suggests a next step to the operator.
	FieldErrorHint = "error_hint"
	// FieldImpact is the standardized key for user-facing consequence of a warning.
	FieldImpact = "impact"
)
