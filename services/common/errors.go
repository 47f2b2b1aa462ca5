package common

import (
	"github.com/pkg/errors"
)

// ValidationError reports missing or malformed user input.
type ValidationError struct {
	Field   string
	Message string
}

func (e *ValidationError) Error() string {
	if e.Field == "" {
		return e.Message
	}
	return e.Field + ": " + e.Message
}

func NewValidationError(field, message string) error {
	return &ValidationError{Field: field, Message: message}
}

// AuthError reports rejected credentials or a rejection by the identity backend.
type AuthError struct {
	Message string
	cause   error
}

func (e *AuthError) Error() string {
	if e.cause == nil {
		return e.Message
	}
	return e.Message + ": " + e.cause.Error()
}

func (e *AuthError) Unwrap() error {
	return e.cause
}

func NewAuthError(cause error, message string) error {
	return &AuthError{Message: message, cause: cause}
}

// StorageError reports an object storage or persistence failure.
type StorageError struct {
	Op    string
	Path  string
	cause error
}

func (e *StorageError) Error() string {
	msg := "storage " + e.Op + " failed"
	if e.Path != "" {
		msg += " for " + e.Path
	}
	if e.cause != nil {
		msg += ": " + e.cause.Error()
	}
	return msg
}

func (e *StorageError) Unwrap() error {
	return e.cause
}

func NewStorageError(cause error, op string, path string) error {
	return &StorageError{Op: op, Path: path, cause: cause}
}

// ClipboardError reports that a link could not be copied.
type ClipboardError struct {
	cause error
}

func (e *ClipboardError) Error() string {
	if e.cause == nil {
		return "failed to copy link"
	}
	return "failed to copy link: " + e.cause.Error()
}

func (e *ClipboardError) Unwrap() error {
	return e.cause
}

func NewClipboardError(cause error) error {
	return &ClipboardError{cause: cause}
}

func IsValidation(err error) bool {
	var e *ValidationError
	return errors.As(err, &e)
}

func IsAuth(err error) bool {
	var e *AuthError
	return errors.As(err, &e)
}

func IsStorage(err error) bool {
	var e *StorageError
	return errors.As(err, &e)
}

func IsClipboard(err error) bool {
	var e *ClipboardError
	return errors.As(err, &e)
}

// UserMessage turns an error into the text shown to the viewer. Only the
// validation and auth messages are surfaced verbatim, everything else gets a
// fixed text without internal detail.
func UserMessage(err error) string {
	var ve *ValidationError
	var ae *AuthError
	switch {
	case err == nil:
		return ""
	case errors.As(err, &ve):
		return ve.Message
	case errors.As(err, &ae):
		return ae.Message
	case IsStorage(err):
		return "Upload failed. Please try again."
	case IsClipboard(err):
		return "Could not copy the link."
	default:
		return "Something went wrong. Please try again."
	}
}
