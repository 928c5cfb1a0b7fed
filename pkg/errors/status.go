package errors

import (
	"fmt"
	"net/http"

	"github.com/pkg/errors"
)

// StatusReason is the machine-readable tag carried by a Status payload.
// Callers branch on it rather than on message text.
type StatusReason string

const (
	StatusReasonNotFound      StatusReason = "NotFound"
	StatusReasonAlreadyExists StatusReason = "AlreadyExists"
	StatusReasonConflict      StatusReason = "Conflict"
	StatusReasonUnknown       StatusReason = ""
)

// StatusDetails identifies the object a Status refers to
type StatusDetails struct {
	Name  string `json:"name,omitempty"`
	Kind  string `json:"kind,omitempty"`
	Group string `json:"group,omitempty"`
}

// Status is the Kubernetes error payload returned by the API server for
// failed operations. Both backends construct the same shape so callers
// cannot distinguish the backend by error structure.
type Status struct {
	Kind       string         `json:"kind,omitempty"`
	APIVersion string         `json:"apiVersion,omitempty"`
	Status     string         `json:"status"`
	Message    string         `json:"message,omitempty"`
	Reason     StatusReason   `json:"reason,omitempty"`
	Details    *StatusDetails `json:"details,omitempty"`
	Code       int32          `json:"code,omitempty"`
}

// StatusError carries a Status payload through the error channel
type StatusError struct {
	ErrStatus Status
}

// Error implements the error interface
func (e *StatusError) Error() string {
	return e.ErrStatus.Message
}

// Status returns the underlying Status payload
func (e *StatusError) Status() Status {
	return e.ErrStatus
}

func newStatusError(code int32, reason StatusReason, message string, details *StatusDetails) *StatusError {
	return &StatusError{
		ErrStatus: Status{
			Kind:       "Status",
			APIVersion: "v1",
			Status:     "Failure",
			Message:    message,
			Reason:     reason,
			Details:    details,
			Code:       code,
		},
	}
}

// NewNotFound returns an error indicating the named object does not exist
func NewNotFound(kind, name string) *StatusError {
	return newStatusError(
		http.StatusNotFound,
		StatusReasonNotFound,
		fmt.Sprintf("%s %q not found", kind, name),
		&StatusDetails{Name: name, Kind: kind},
	)
}

// NewAlreadyExists returns an error indicating an object with the same
// (kind, namespace, name) key is already present
func NewAlreadyExists(kind, name string) *StatusError {
	return newStatusError(
		http.StatusConflict,
		StatusReasonAlreadyExists,
		fmt.Sprintf("%s %q already exists", kind, name),
		&StatusDetails{Name: name, Kind: kind},
	)
}

// NewConflict returns an error indicating the operation lost an optimistic
// concurrency race, usually because the supplied resource version is stale
func NewConflict(kind, name, message string) *StatusError {
	return newStatusError(
		http.StatusConflict,
		StatusReasonConflict,
		fmt.Sprintf("operation cannot be fulfilled on %s %q: %s", kind, name, message),
		&StatusDetails{Name: name, Kind: kind},
	)
}

// FromStatus wraps a Status payload decoded from a server response. The
// payload is carried verbatim; the network backend performs no local error
// synthesis.
func FromStatus(code int32, status Status) *StatusError {
	if status.Code == 0 {
		status.Code = code
	}
	return &StatusError{ErrStatus: status}
}

// ReasonForError returns the StatusReason of err, or StatusReasonUnknown
func ReasonForError(err error) StatusReason {
	var se *StatusError
	if errors.As(err, &se) {
		return se.ErrStatus.Reason
	}
	return StatusReasonUnknown
}

// IsNotFound reports whether err indicates the object was not found
func IsNotFound(err error) bool {
	return ReasonForError(err) == StatusReasonNotFound
}

// IsAlreadyExists reports whether err indicates the object already exists
func IsAlreadyExists(err error) bool {
	return ReasonForError(err) == StatusReasonAlreadyExists
}

// IsConflict reports whether err indicates an optimistic concurrency conflict
func IsConflict(err error) bool {
	return ReasonForError(err) == StatusReasonConflict
}
