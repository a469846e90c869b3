package domain

import (
	"errors"
	"fmt"
)

// Error categories. Every error returned by the core wraps exactly one.
var (
	// ErrValidation indicates caller input violated a precondition.
	// No network call was made.
	ErrValidation = errors.New("validation failed")

	// ErrConflict indicates an operation of the same kind is already in flight.
	ErrConflict = errors.New("conflicting operation in progress")

	// ErrNetwork indicates the remote service could not be reached.
	ErrNetwork = errors.New("network error")

	// ErrService indicates the remote service answered with a non-2xx status.
	ErrService = errors.New("service error")
)

// Validation errors.
var (
	// ErrEmptySelection indicates an upload was started with no files selected.
	ErrEmptySelection = fmt.Errorf("%w: empty selection", ErrValidation)

	// ErrEmptyQuestion indicates a blank question.
	ErrEmptyQuestion = fmt.Errorf("%w: empty question", ErrValidation)

	// ErrNoDocuments indicates a question was asked with an empty roster.
	ErrNoDocuments = fmt.Errorf("%w: no documents", ErrValidation)

	// ErrNotConfirmed indicates a destructive operation lacked confirmation.
	ErrNotConfirmed = fmt.Errorf("%w: confirmation required", ErrValidation)
)

// Conflict errors.
var (
	// ErrUploadInProgress indicates an upload is already in flight.
	ErrUploadInProgress = fmt.Errorf("%w: upload in progress", ErrConflict)

	// ErrQuestionPending indicates the session is waiting for an answer.
	ErrQuestionPending = fmt.Errorf("%w: question pending", ErrConflict)

	// ErrDeleteInProgress indicates a delete-all is already in flight.
	ErrDeleteInProgress = fmt.Errorf("%w: delete in progress", ErrConflict)
)

// NetworkError wraps a transport-level failure.
type NetworkError struct {
	Op  string
	Err error
}

// Error implements error.
func (e *NetworkError) Error() string {
	return fmt.Sprintf("%s: %v", e.Op, e.Err)
}

// Unwrap returns the underlying transport error.
func (e *NetworkError) Unwrap() error {
	return e.Err
}

// Is matches ErrNetwork.
func (e *NetworkError) Is(target error) bool {
	return target == ErrNetwork
}

// ServiceError carries a non-2xx response from the remote service.
type ServiceError struct {
	Op     string
	Status int
	Body   string
}

// Error implements error.
func (e *ServiceError) Error() string {
	if e.Body == "" {
		return fmt.Sprintf("%s: service returned status %d", e.Op, e.Status)
	}
	return fmt.Sprintf("%s: service returned status %d: %s", e.Op, e.Status, e.Body)
}

// Is matches ErrService.
func (e *ServiceError) Is(target error) bool {
	return target == ErrService
}

// IsRemote reports whether err is a network or service failure.
func IsRemote(err error) bool {
	return errors.Is(err, ErrNetwork) || errors.Is(err, ErrService)
}
