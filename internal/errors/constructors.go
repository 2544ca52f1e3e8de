package errors

// Convenience functions for common error patterns

// Config errors

func ConfigNotFound(path string) *KixportError {
	return New(CategoryConfig, SeverityFatal, "configuration file not found").
		WithContext("path", path)
}

func ConfigParse(path string, cause error) *KixportError {
	return Wrap(cause, CategoryConfig, SeverityFatal, "configuration could not be parsed").
		WithContext("path", path)
}

func ConfigRequired(field string) *KixportError {
	return New(CategoryConfig, SeverityFatal, "required configuration missing: "+field).
		WithContext("field", field)
}

func ValidationFailed(field, reason string) *KixportError {
	return New(CategoryValidation, SeverityFatal, reason).
		WithContext("field", field).
		WithContext("reason", reason)
}

// Board project errors

func MissingVersion(project, reason string) *KixportError {
	return New(CategoryVersion, SeverityFatal, "project version not found: "+reason).
		WithContext("project", project)
}

// External tool errors

func ExternalTool(tool string, cause error) *KixportError {
	return Wrap(cause, CategoryTool, SeverityFatal, "external tool failed").
		WithContext("tool", tool)
}

// Build pipeline errors

func FileSystem(operation, path string, cause error) *KixportError {
	return Wrap(cause, CategoryFileSystem, SeverityFatal, "filesystem operation failed").
		WithContext("operation", operation).
		WithContext("path", path)
}

// Internal errors

func InternalError(message string, cause error) *KixportError {
	return Wrap(cause, CategoryInternal, SeverityFatal, message)
}
