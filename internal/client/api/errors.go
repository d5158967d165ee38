// Package api implements the client's HTTP surface against the VitalTrack
// backend: a request gateway (timeouts, header injection, status-to-error
// translation) and the typed authentication client built on top of it.
package api

import (
	"errors"
	"net/http"
)

// Kind classifies a failed operation. Validation kinds are produced before
// any network I/O; status kinds are mapped from HTTP responses; transport
// kinds mean no usable response was received.
type Kind int

const (
	KindUnknown Kind = iota

	// Client-side validation, no network attempted.
	KindMissingFields
	KindInvalidEmail
	KindPasswordMismatch
	KindWeakPassword

	// Server-rejected request, mapped from the HTTP status code.
	KindInvalidInput
	KindSessionExpired
	KindForbidden
	KindNotFound
	KindConflict
	KindUnprocessableInput
	KindServerError

	// Transport-level failure, no response received.
	KindTimeout
	KindNetworkUnavailable
)

var kindNames = map[Kind]string{
	KindUnknown:            "unknown",
	KindMissingFields:      "missing_fields",
	KindInvalidEmail:       "invalid_email",
	KindPasswordMismatch:   "password_mismatch",
	KindWeakPassword:       "weak_password",
	KindInvalidInput:       "invalid_input",
	KindSessionExpired:     "session_expired",
	KindForbidden:          "forbidden",
	KindNotFound:           "not_found",
	KindConflict:           "conflict",
	KindUnprocessableInput: "unprocessable_input",
	KindServerError:        "server_error",
	KindTimeout:            "timeout",
	KindNetworkUnavailable: "network_unavailable",
}

func (k Kind) String() string {
	if name, ok := kindNames[k]; ok {
		return name
	}
	return "unknown"
}

// Error is the typed failure returned by the gateway and the auth client.
// Message is user-facing; Status is zero for validation and transport kinds.
type Error struct {
	Kind    Kind
	Message string
	Status  int
}

func (e *Error) Error() string {
	return e.Message
}

func newError(kind Kind, message string) *Error {
	return &Error{Kind: kind, Message: message}
}

// statusKinds maps HTTP status codes to error kinds. Unlisted 5xx codes
// collapse to KindServerError; everything else is KindUnknown.
var statusKinds = map[int]Kind{
	http.StatusBadRequest:          KindInvalidInput,
	http.StatusUnauthorized:        KindSessionExpired,
	http.StatusForbidden:           KindForbidden,
	http.StatusNotFound:            KindNotFound,
	http.StatusConflict:            KindConflict,
	http.StatusUnprocessableEntity: KindUnprocessableInput,
	http.StatusInternalServerError: KindServerError,
}

func kindForStatus(status int) Kind {
	if kind, ok := statusKinds[status]; ok {
		return kind
	}
	if status >= 500 {
		return KindServerError
	}
	return KindUnknown
}

// ErrorKind extracts the Kind from err, or KindUnknown for errors that
// did not originate in this package.
func ErrorKind(err error) Kind {
	var apiErr *Error
	if errors.As(err, &apiErr) {
		return apiErr.Kind
	}
	return KindUnknown
}

// IsKind reports whether err is an *Error of the given kind.
func IsKind(err error, kind Kind) bool {
	var apiErr *Error
	return errors.As(err, &apiErr) && apiErr.Kind == kind
}
