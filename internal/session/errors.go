package session

import "errors"

// ErrNoCategorization is returned when a validation operation is
// requested before variable roles have been assigned.
var ErrNoCategorization = errors.New("session has no variable categorization")

// ErrNoReport is returned when a report is requested before a
// successful validation run.
var ErrNoReport = errors.New("session has no validation report")

// UploadError wraps a rejected or unparseable upload.
type UploadError struct {
	Reason error
}

func (e *UploadError) Error() string {
	return "invalid upload: " + e.Reason.Error()
}

func (e *UploadError) Unwrap() error {
	return e.Reason
}

// CategorizationError wraps an invalid role assignment.
type CategorizationError struct {
	Reason error
}

func (e *CategorizationError) Error() string {
	return "invalid categorization: " + e.Reason.Error()
}

func (e *CategorizationError) Unwrap() error {
	return e.Reason
}
