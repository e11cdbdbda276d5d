package services

import (
	"errors"
	"fmt"
)

// ErrConflict is wrapped by every error that reports a state conflict, so
// callers can match the whole family with errors.Is.
var ErrConflict = errors.New("conflict")

var (
	// ErrNotAuthorized is returned when the actor lacks the capability for an operation
	ErrNotAuthorized = errors.New("actor is not authorized for this operation")

	ErrAlreadyApproved      = fmt.Errorf("post already approved: %w", ErrConflict)
	ErrDuplicateReport      = fmt.Errorf("report already exists for this post: %w", ErrConflict)
	ErrNotDeactivated       = fmt.Errorf("post not deactivated: %w", ErrConflict)
	ErrReportAlreadyHandled = fmt.Errorf("report already handled: %w", ErrConflict)

	// ErrInactive is returned when approving a post that has been deactivated
	ErrInactive = errors.New("post is not active")

	ErrSelfReport     = errors.New("cannot report your own post")
	ErrPostInactive   = errors.New("post is already deactivated")
	ErrPostUnapproved = errors.New("post needs to be approved before reporting")
	ErrInvalidStatus  = errors.New("invalid status")
)

// ValidationError represents malformed or missing input
type ValidationError struct {
	Field   string
	Message string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("validation error (%s): %s", e.Field, e.Message)
}

func NewValidationError(field, message string) error {
	return &ValidationError{Field: field, Message: message}
}

func IsValidationError(err error) bool {
	var valErr *ValidationError
	return errors.As(err, &valErr)
}

// NotFoundError represents a missing resource
type NotFoundError struct {
	Resource string
	ID       string
}

func (e *NotFoundError) Error() string {
	if e.ID == "" {
		return fmt.Sprintf("%s not found", e.Resource)
	}
	return fmt.Sprintf("%s not found: %s", e.Resource, e.ID)
}

func NewNotFoundError(resource string, id interface{}) error {
	return &NotFoundError{Resource: resource, ID: fmt.Sprint(id)}
}

func IsNotFound(err error) bool {
	var nf *NotFoundError
	return errors.As(err, &nf)
}

// UploadError wraps a photo storage failure
type UploadError struct {
	File string
	Err  error
}

func (e *UploadError) Error() string {
	if e.File != "" {
		return fmt.Sprintf("upload of %s failed: %v", e.File, e.Err)
	}
	return fmt.Sprintf("upload failed: %v", e.Err)
}

func (e *UploadError) Unwrap() error { return e.Err }

func IsUploadError(err error) bool {
	var upErr *UploadError
	return errors.As(err, &upErr)
}

// TransientError wraps persistence or network failures that may succeed on retry
type TransientError struct {
	Op  string
	Err error
}

func (e *TransientError) Error() string {
	return fmt.Sprintf("%s: %v", e.Op, e.Err)
}

func (e *TransientError) Unwrap() error { return e.Err }

func NewTransientError(op string, err error) error {
	return &TransientError{Op: op, Err: err}
}

func IsTransient(err error) bool {
	var tErr *TransientError
	return errors.As(err, &tErr)
}

func IsConflict(err error) bool {
	return errors.Is(err, ErrConflict)
}
