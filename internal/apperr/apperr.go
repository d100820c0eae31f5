// Package apperr defines the stable error taxonomy reported to callers.
//
// Every failure that crosses the pipeline boundary is an *AppError carrying
// one of the Code constants below and a human-readable message. Lower layers
// keep returning plain wrapped errors; the pipeline classifies them.
package apperr

import (
	"errors"
	"fmt"
)

// Code is a stable, machine-readable error category.
type Code string

const (
	// CodeDecode means the input could not be decoded into a raster image.
	CodeDecode Code = "DECODE_ERROR"

	// CodeInvalidArguments means a required field was missing or malformed.
	CodeInvalidArguments Code = "INVALID_ARGUMENTS"

	// CodeDegenerateQuad means the quadrilateral has zero or near-zero area.
	CodeDegenerateQuad Code = "DEGENERATE_QUADRILATERAL"

	// CodeEncode means the result could not be serialized or written.
	CodeEncode Code = "ENCODE_ERROR"

	// CodeInternal is a catch-all outside the four codes above, for errors
	// that escaped classification.
	CodeInternal Code = "INTERNAL_ERROR"
)

// AppError is a classified error with a stable code.
type AppError struct {
	Code    Code   `json:"code"`
	Message string `json:"message"`
	Cause   error  `json:"-"`
}

// Error implements the error interface
func (e *AppError) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("%s: %s (caused by: %v)", e.Code, e.Message, e.Cause)
	}
	return fmt.Sprintf("%s: %s", e.Code, e.Message)
}

// Unwrap returns the underlying error
func (e *AppError) Unwrap() error {
	return e.Cause
}

// New creates an AppError with the given code.
func New(code Code, message string, cause error) *AppError {
	return &AppError{Code: code, Message: message, Cause: cause}
}

// Decode creates a DECODE_ERROR.
func Decode(message string, cause error) *AppError {
	return New(CodeDecode, message, cause)
}

// InvalidArguments creates an INVALID_ARGUMENTS error.
func InvalidArguments(message string, cause error) *AppError {
	return New(CodeInvalidArguments, message, cause)
}

// InvalidArgumentsf creates an INVALID_ARGUMENTS error with a formatted message.
func InvalidArgumentsf(format string, args ...interface{}) *AppError {
	return New(CodeInvalidArguments, fmt.Sprintf(format, args...), nil)
}

// DegenerateQuad creates a DEGENERATE_QUADRILATERAL error.
func DegenerateQuad(message string, cause error) *AppError {
	return New(CodeDegenerateQuad, message, cause)
}

// Encode creates an ENCODE_ERROR.
func Encode(message string, cause error) *AppError {
	return New(CodeEncode, message, cause)
}

// CodeOf extracts the code from err, or CodeInternal when err is not an AppError.
func CodeOf(err error) Code {
	var appErr *AppError
	if errors.As(err, &appErr) {
		return appErr.Code
	}
	return CodeInternal
}

// Is reports whether err carries the given code.
func Is(err error, code Code) bool {
	return err != nil && CodeOf(err) == code
}

// Message returns the AppError message, or err.Error() for unclassified errors.
func Message(err error) string {
	var appErr *AppError
	if errors.As(err, &appErr) {
		return appErr.Message
	}
	return err.Error()
}
