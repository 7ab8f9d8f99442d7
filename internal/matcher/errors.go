package matcher

import "errors"

// ValidationError reports an invalid matcher configuration. It is returned
// only by the construction factories; Match never fails.
type ValidationError struct {
	// Reason is a human-readable description of the defect.
	Reason string

	// Err is the underlying error, if any (e.g. a regexp compile error).
	Err error
}

// Error returns the error message.
func (e *ValidationError) Error() string {
	if e.Err != nil {
		return e.Reason + ": " + e.Err.Error()
	}
	return e.Reason
}

// Unwrap returns the underlying error.
func (e *ValidationError) Unwrap() error {
	return e.Err
}

// IsValidationError checks if an error is a matcher validation error.
func IsValidationError(err error) bool {
	var ve *ValidationError
	return errors.As(err, &ve)
}
