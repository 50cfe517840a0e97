package api

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strings"
)

// Kind classifies a failed backend call.
type Kind int

const (
	// KindTransport means no response reached the client (network, DNS,
	// timeout, cancelled context).
	KindTransport Kind = iota
	// KindAuthRejected means the token was missing, invalid or expired.
	KindAuthRejected
	// KindValidation means the backend rejected malformed input.
	KindValidation
	// KindConflict means the mutation target was already in a terminal
	// state, e.g. an approval decided by another operator.
	KindConflict
	// KindServer covers the 5xx class. Not retried by this layer.
	KindServer
)

func (k Kind) String() string {
	switch k {
	case KindTransport:
		return "transport"
	case KindAuthRejected:
		return "auth_rejected"
	case KindValidation:
		return "validation"
	case KindConflict:
		return "conflict"
	case KindServer:
		return "server"
	}
	return "unknown"
}

// Error is the typed failure surfaced by the client adapter. Status is
// zero when no HTTP response was received.
type Error struct {
	Kind    Kind
	Status  int
	Message string
	Err     error
}

func (e *Error) Error() string {
	if e.Status > 0 {
		return fmt.Sprintf("backend error (%d): %s", e.Status, e.Message)
	}
	return e.Message
}

func (e *Error) Unwrap() error { return e.Err }

// IsAuthRejected reports whether err is an authentication-rejected
// backend response. Callers use it to trigger the logout transition.
func IsAuthRejected(err error) bool { return hasKind(err, KindAuthRejected) }

// IsConflict reports whether err is a conflict-class backend response.
func IsConflict(err error) bool { return hasKind(err, KindConflict) }

// IsValidation reports whether err is a validation rejection.
func IsValidation(err error) bool { return hasKind(err, KindValidation) }

// IsTransport reports whether err is a transport-level failure.
func IsTransport(err error) bool { return hasKind(err, KindTransport) }

func hasKind(err error, k Kind) bool {
	var apiErr *Error
	return errors.As(err, &apiErr) && apiErr.Kind == k
}

func classifyStatus(status int) Kind {
	switch {
	case status == http.StatusUnauthorized:
		return KindAuthRejected
	case status == http.StatusConflict:
		return KindConflict
	case status >= 500:
		return KindServer
	default:
		return KindValidation
	}
}

// responseError builds an *Error from a non-2xx response body. The
// backend wraps messages as {"message": ...} (string or array) or
// {"error": ...}; anything else falls back to the HTTP status text.
func responseError(status int, body []byte) *Error {
	return &Error{
		Kind:    classifyStatus(status),
		Status:  status,
		Message: extractMessage(status, body),
	}
}

func extractMessage(status int, body []byte) string {
	var envelope struct {
		Message json.RawMessage `json:"message"`
		Error   string          `json:"error"`
	}
	if err := json.Unmarshal(body, &envelope); err == nil {
		if len(envelope.Message) > 0 {
			var single string
			if json.Unmarshal(envelope.Message, &single) == nil && single != "" {
				return single
			}
			var many []string
			if json.Unmarshal(envelope.Message, &many) == nil && len(many) > 0 {
				return strings.Join(many, "; ")
			}
		}
		if envelope.Error != "" {
			return envelope.Error
		}
	}
	return fmt.Sprintf("request failed with status %d (%s)", status, http.StatusText(status))
}

func transportError(err error) *Error {
	return &Error{
		Kind:    KindTransport,
		Message: "could not reach backend: " + err.Error(),
		Err:     err,
	}
}
