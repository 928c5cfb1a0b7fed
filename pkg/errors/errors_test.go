package errors

import (
	stderrors "errors"
	"testing"

	pkgerrors "github.com/pkg/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestClientErrorCodes(t *testing.T) {
	err := New(ErrorCodeUnrecognizedKind, "unrecognized kind")
	assert.True(t, IsErrorCode(err, ErrorCodeUnrecognizedKind))
	assert.False(t, IsErrorCode(err, ErrorCodeInvalidName))
	assert.Equal(t, ErrorCodeUnrecognizedKind, GetErrorCode(err))

	// Codes survive wrapping.
	wrapped := pkgerrors.Wrap(err, "while decoding")
	assert.True(t, IsErrorCode(wrapped, ErrorCodeUnrecognizedKind))
	assert.Equal(t, ErrorCodeUnrecognizedKind, GetErrorCode(wrapped))

	assert.Equal(t, ErrorCodeInternalError, GetErrorCode(stderrors.New("plain")))
	assert.False(t, IsErrorCode(nil, ErrorCodeUnrecognizedKind))
}

func TestClientErrorWrapPreservesCause(t *testing.T) {
	cause := stderrors.New("underlying")
	err := Wrap(cause, ErrorCodeMalformedDocument, "cannot parse")

	assert.ErrorIs(t, err, cause)
	assert.Contains(t, err.Error(), "cannot parse")
	assert.Contains(t, err.Error(), "underlying")
}

func TestClientErrorContext(t *testing.T) {
	err := New(ErrorCodeInvalidName, "bad name").WithContext("name", "Not_Valid")
	assert.Equal(t, "Not_Valid", err.Context["name"])
}

func TestValidationErrorAggregation(t *testing.T) {
	err := NewValidationError("v1.ContainerPort",
		FieldError{Field: "containerPort", Expected: "integer in [0, 4294967295]", Missing: true},
		FieldError{Field: "name", Expected: "string", Actual: "int", Value: 42},
	)

	assert.True(t, IsValidationError(err))
	msg := err.Error()
	assert.Contains(t, msg, "invalid v1.ContainerPort")
	assert.Contains(t, msg, "containerPort: required field missing")
	assert.Contains(t, msg, "name: 42 (int) does not satisfy string")

	assert.False(t, IsValidationError(stderrors.New("plain")))
}

func TestFieldErrorDetail(t *testing.T) {
	fe := FieldError{Field: "ts", Detail: "cannot parse timestamp"}
	assert.Equal(t, "ts: cannot parse timestamp", fe.String())
}

func TestStatusErrorPredicates(t *testing.T) {
	notFound := NewNotFound("Namespace", "ghost")
	assert.True(t, IsNotFound(notFound))
	assert.False(t, IsAlreadyExists(notFound))
	assert.Equal(t, int32(404), notFound.ErrStatus.Code)
	assert.Equal(t, `Namespace "ghost" not found`, notFound.Error())
	require.NotNil(t, notFound.ErrStatus.Details)
	assert.Equal(t, "ghost", notFound.ErrStatus.Details.Name)

	exists := NewAlreadyExists("Namespace", "dup")
	assert.True(t, IsAlreadyExists(exists))
	assert.Equal(t, int32(409), exists.ErrStatus.Code)

	conflict := NewConflict("ConfigMap", "settings", "stale version")
	assert.True(t, IsConflict(conflict))
	assert.Contains(t, conflict.Error(), `operation cannot be fulfilled on ConfigMap "settings"`)

	// Predicates see through wrapping.
	assert.True(t, IsNotFound(pkgerrors.Wrap(notFound, "during delete")))
	assert.Equal(t, StatusReasonUnknown, ReasonForError(stderrors.New("plain")))
}

func TestFromStatusVerbatim(t *testing.T) {
	status := Status{
		Kind:    "Status",
		Status:  "Failure",
		Message: "as the server said it",
		Reason:  StatusReasonNotFound,
		Code:    404,
	}
	err := FromStatus(404, status)
	assert.Equal(t, status, err.Status())
	assert.True(t, IsNotFound(err))

	// A payload without its own code inherits the HTTP one.
	err = FromStatus(500, Status{Status: "Failure"})
	assert.Equal(t, int32(500), err.ErrStatus.Code)
}
