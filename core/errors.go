package core

import (
	stderrors "errors"

	"github.com/pkg/errors"
)

// ErrDataUnavailable signals that the remote store could not be reached.
// Consumers degrade to cached or empty collections instead of failing hard.
var ErrDataUnavailable = stderrors.New("data unavailable")

func IsDataUnavailable(err error) bool {
	return stderrors.Is(err, ErrDataUnavailable)
}

// FieldError is used to indicate an error with a specific struct field.
type FieldError struct {
	Field string
	Error string
}

type ValidationError struct {
	Err    error
	Fields []FieldError
}

func NewValidationError(err error, flds ...FieldError) error {
	return &ValidationError{err, flds}
}

func (err ValidationError) Error() string {
	if err.Err == nil {
		return ""
	}
	return err.Err.Error()
}

type shutdown struct {
	message string
}

// NewShutdownError returns an error signalling that the application integrity
// is compromised and the service should stop.
func NewShutdownError(msg string) error {
	return &shutdown{message: msg}
}

func (s shutdown) Error() string {
	return s.message
}

func IsShutdown(err error) bool {
	_, ok := errors.Cause(err).(*shutdown)
	return ok
}
