package errors

// Convenience functions for common error patterns

// Config errors

func ConfigNotFound(path string) *ClassifiedError {
	return New(CategoryConfig, SeverityFatal, "configuration file not found").
		WithContext("path", path)
}

func ConfigInvalid(path string, cause error) *ClassifiedError {
	return Wrap(cause, CategoryConfig, SeverityFatal, "configuration file is invalid").
		WithContext("path", path)
}

func ValidationFailed(field, reason string) *ClassifiedError {
	return New(CategoryValidation, SeverityFatal, "validation failed").
		WithContext("field", field).
		WithContext("reason", reason)
}

// Bibliography errors

func BibTeXParse(source string, cause error) *ClassifiedError {
	return Wrap(cause, CategoryBibTeX, SeverityError, "failed to parse BibTeX source").
		WithContext("source", source)
}

func StyleOption(option string, cause error) *ClassifiedError {
	return Wrap(cause, CategoryStyle, SeverityError, "invalid style option").
		WithContext("option", option)
}

// Directive errors

// DirectiveInput reports a directive invocation that cannot run with the
// arguments it was given.
func DirectiveInput(message string) *ClassifiedError {
	return New(CategoryDirective, SeverityError, message)
}

// DirectiveRender reports a failed template lookup, filter or render inside a
// directive. The message names the template so the author can find it.
func DirectiveRender(template string, cause error) *ClassifiedError {
	return Wrap(cause, CategoryDirective, SeverityError, "error rendering template `"+template+"`").
		WithContext("template", template)
}

// Template errors

func TemplateNotFound(name string) *ClassifiedError {
	return New(CategoryTemplate, SeverityError, "template not found").
		WithContext("template", name)
}

func TemplateRender(name string, cause error) *ClassifiedError {
	return Wrap(cause, CategoryTemplate, SeverityError, "template rendering failed").
		WithContext("template", name)
}

// Build errors

func DocumentFailed(path string, cause error) *ClassifiedError {
	return Wrap(cause, CategoryBuild, SeverityError, "document "+path+" failed").
		WithContext("document", path)
}

func FileSystem(operation string, cause error) *ClassifiedError {
	return Wrap(cause, CategoryFileSystem, SeverityFatal, "filesystem operation failed").
		WithContext("operation", operation)
}

// Internal errors

func InternalError(message string, cause error) *ClassifiedError {
	return Wrap(cause, CategoryInternal, SeverityFatal, message)
}
