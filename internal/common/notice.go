package common

import (
	"errors"
	"fmt"
)

// Severity classifies a user-visible outcome.
type Severity string

const (
	// SeverityInfo marks a successful or neutral outcome.
	SeverityInfo Severity = "info"
	// SeverityWarning marks a partial success the user should know about.
	SeverityWarning Severity = "warning"
	// SeverityError marks a failed operation.
	SeverityError Severity = "error"
)

// Notice is a single human-readable message with a severity.
type Notice struct {
	Severity Severity
	Message  string
}

// Info creates an informational notice.
func Info(format string, args ...any) Notice {
	return Notice{Severity: SeverityInfo, Message: fmt.Sprintf(format, args...)}
}

// Warning creates a warning notice.
func Warning(format string, args ...any) Notice {
	return Notice{Severity: SeverityWarning, Message: fmt.Sprintf(format, args...)}
}

// NoticeFor maps an error from any core operation to the notice shown to
// the user.
func NoticeFor(err error) Notice {
	if err == nil {
		return Notice{Severity: SeverityInfo}
	}

	var persistErr *PersistenceError
	if errors.As(err, &persistErr) {
		return Notice{
			Severity: SeverityWarning,
			Message:  fmt.Sprintf("Saved locally only: could not write %s", persistErr.Target),
		}
	}

	var schemaErr *SchemaError
	if errors.As(err, &schemaErr) {
		return Notice{Severity: SeverityError, Message: "Could not read the file: " + schemaErr.Error()}
	}

	var callErr *ExternalCallError
	if errors.As(err, &callErr) {
		return Notice{Severity: SeverityError, Message: "Extraction service unavailable: " + callErr.Err.Error()}
	}

	var userErr *UserError
	if errors.As(err, &userErr) {
		return Notice{Severity: SeverityError, Message: userErr.UserMessage}
	}

	if errors.Is(err, ErrEmptyStaging) {
		return Notice{Severity: SeverityWarning, Message: "There are no new transactions to save"}
	}

	return Notice{Severity: SeverityError, Message: err.Error()}
}
