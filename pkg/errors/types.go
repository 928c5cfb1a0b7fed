package errors

import (
	"fmt"
	"strings"

	"github.com/pkg/errors"
)

// ErrorCode represents the type of error that occurred
type ErrorCode string

const (
	// Schema errors: the specification document itself is unusable. These
	// are fatal and never retried.
	ErrorCodeNoSuchDefinition  ErrorCode = "NO_SUCH_DEFINITION"
	ErrorCodeNotClassLike      ErrorCode = "NOT_CLASS_LIKE"
	ErrorCodeUnrecognizedType  ErrorCode = "UNRECOGNIZED_TYPE_FORMAT"
	ErrorCodeMalformedSchema   ErrorCode = "MALFORMED_SCHEMA"
	ErrorCodeMalformedDocument ErrorCode = "MALFORMED_DOCUMENT"

	// Decode errors
	ErrorCodeUnrecognizedKind ErrorCode = "UNRECOGNIZED_KIND"
	ErrorCodeMalformedObject  ErrorCode = "MALFORMED_OBJECT"

	// Validation errors
	ErrorCodeInvalidField   ErrorCode = "INVALID_FIELD"
	ErrorCodeMissingField   ErrorCode = "MISSING_FIELD"
	ErrorCodeInvalidObject  ErrorCode = "INVALID_OBJECT"
	ErrorCodeInvalidName    ErrorCode = "INVALID_NAME"

	// Credential errors
	ErrorCodeInvalidCredentials ErrorCode = "INVALID_CREDENTIALS"
	ErrorCodeNoCredentials      ErrorCode = "NO_CREDENTIALS"

	// System errors
	ErrorCodeInternalError ErrorCode = "INTERNAL_ERROR"
)

// ClientError represents an error with a code and structured context
type ClientError struct {
	Code    ErrorCode         `json:"code"`
	Message string            `json:"message"`
	Context map[string]string `json:"context,omitempty"`
	Cause   error             `json:"-"`
}

// Error implements the error interface
func (e *ClientError) Error() string {
	parts := []string{string(e.Code), e.Message}
	if e.Cause != nil {
		parts = append(parts, fmt.Sprintf("cause: %s", e.Cause.Error()))
	}
	return strings.Join(parts, ": ")
}

// Unwrap returns the underlying cause
func (e *ClientError) Unwrap() error {
	return e.Cause
}

// New creates a new ClientError
func New(code ErrorCode, message string) *ClientError {
	return &ClientError{
		Code:    code,
		Message: message,
	}
}

// Newf creates a new ClientError with a formatted message
func Newf(code ErrorCode, format string, args ...interface{}) *ClientError {
	return New(code, fmt.Sprintf(format, args...))
}

// Wrap creates a ClientError wrapping another error
func Wrap(err error, code ErrorCode, message string) error {
	if err == nil {
		return nil
	}
	return &ClientError{
		Code:    code,
		Message: message,
		Cause:   err,
	}
}

// Wrapf wraps an error with a formatted message, preserving the cause chain
func Wrapf(err error, format string, args ...interface{}) error {
	return errors.Wrapf(err, format, args...)
}

// WithContext adds additional context
func (e *ClientError) WithContext(key, value string) *ClientError {
	if e.Context == nil {
		e.Context = make(map[string]string)
	}
	e.Context[key] = value
	return e
}

// IsErrorCode checks if an error has a specific error code
func IsErrorCode(err error, code ErrorCode) bool {
	var ce *ClientError
	if errors.As(err, &ce) {
		return ce.Code == code
	}
	return false
}

// GetErrorCode extracts the error code from an error
func GetErrorCode(err error) ErrorCode {
	var ce *ClientError
	if errors.As(err, &ce) {
		return ce.Code
	}
	return ErrorCodeInternalError
}

// FieldError describes a single field that failed validation. Expected
// names the admissible types, Actual the type of the rejected value.
type FieldError struct {
	Field    string      `json:"field"`
	Expected string      `json:"expected"`
	Actual   string      `json:"actual,omitempty"`
	Value    interface{} `json:"value,omitempty"`
	Missing  bool        `json:"missing,omitempty"`
	Detail   string      `json:"detail,omitempty"`
}

func (f FieldError) String() string {
	switch {
	case f.Missing:
		return fmt.Sprintf("%s: required field missing (expected %s)", f.Field, f.Expected)
	case f.Detail != "":
		return fmt.Sprintf("%s: %s", f.Field, f.Detail)
	default:
		return fmt.Sprintf("%s: %v (%s) does not satisfy %s", f.Field, f.Value, f.Actual, f.Expected)
	}
}

// ValidationError aggregates every field violation found while
// constructing a record or resource. Construction is all-or-nothing, so a
// single ValidationError reports all offending fields at once.
type ValidationError struct {
	TypeName string       `json:"typeName"`
	Fields   []FieldError `json:"fields"`
}

// Error implements the error interface
func (e *ValidationError) Error() string {
	msgs := make([]string, 0, len(e.Fields))
	for _, f := range e.Fields {
		msgs = append(msgs, f.String())
	}
	return fmt.Sprintf("invalid %s: %s", e.TypeName, strings.Join(msgs, "; "))
}

// NewValidationError creates a ValidationError for the named type
func NewValidationError(typeName string, fields ...FieldError) *ValidationError {
	return &ValidationError{TypeName: typeName, Fields: fields}
}

// IsValidationError reports whether err is (or wraps) a ValidationError
func IsValidationError(err error) bool {
	var ve *ValidationError
	return errors.As(err, &ve)
}
