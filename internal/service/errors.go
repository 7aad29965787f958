package service

import (
	"errors"
	"fmt"
)

// Service error taxonomy. Callers distinguish the classes with errors.As and
// map them to distinct UI treatments: inline validation, access denied,
// refresh-and-retry, missing resource, or a retryable backend failure.

// ValidationError reports missing or malformed caller input.
type ValidationError struct {
	Message string
}

func (e *ValidationError) Error() string {
	return e.Message
}

// NewValidationError creates a validation error.
func NewValidationError(format string, args ...interface{}) *ValidationError {
	return &ValidationError{Message: fmt.Sprintf(format, args...)}
}

// AuthorizationError reports that the actor lacks the role or ownership the
// action requires.
type AuthorizationError struct {
	Message string
}

func (e *AuthorizationError) Error() string {
	return e.Message
}

// NewAuthorizationError creates an authorization error.
func NewAuthorizationError(format string, args ...interface{}) *AuthorizationError {
	return &AuthorizationError{Message: fmt.Sprintf(format, args...)}
}

// InvalidStateError reports a transition that is not legal from the entity's
// current state. The caller must refresh before retrying.
type InvalidStateError struct {
	Current string
	Message string
}

func (e *InvalidStateError) Error() string {
	return e.Message
}

// NewInvalidStateError creates an invalid state error.
func NewInvalidStateError(current string, format string, args ...interface{}) *InvalidStateError {
	return &InvalidStateError{Current: current, Message: fmt.Sprintf(format, args...)}
}

// NotFoundError reports an absent referenced entity.
type NotFoundError struct {
	Resource string
	ID       string
}

func (e *NotFoundError) Error() string {
	return fmt.Sprintf("%s not found: %s", e.Resource, e.ID)
}

// NewNotFoundError creates a not found error.
func NewNotFoundError(resource, id string) *NotFoundError {
	return &NotFoundError{Resource: resource, ID: id}
}

// StorageError wraps a persistence layer failure. Reads may be retried;
// lifecycle writes must re-check current status first to avoid a double
// transition.
type StorageError struct {
	Op  string
	Err error
}

func (e *StorageError) Error() string {
	return fmt.Sprintf("storage failure during %s: %v", e.Op, e.Err)
}

func (e *StorageError) Unwrap() error {
	return e.Err
}

// NewStorageError wraps err as a storage error.
func NewStorageError(op string, err error) *StorageError {
	return &StorageError{Op: op, Err: err}
}

// IsValidation reports whether err is a ValidationError.
func IsValidation(err error) bool {
	var e *ValidationError
	return errors.As(err, &e)
}

// IsAuthorization reports whether err is an AuthorizationError.
func IsAuthorization(err error) bool {
	var e *AuthorizationError
	return errors.As(err, &e)
}

// IsInvalidState reports whether err is an InvalidStateError.
func IsInvalidState(err error) bool {
	var e *InvalidStateError
	return errors.As(err, &e)
}

// IsNotFound reports whether err is a NotFoundError.
func IsNotFound(err error) bool {
	var e *NotFoundError
	return errors.As(err, &e)
}
