package dockstream

import (
	"context"
	"errors"
	"io"
	"net"
	"net/http"
)

// ErrorKind is the closed set of failure classifications for a streaming
// session.
type ErrorKind string

const (
	KindNetworkUnavailable ErrorKind = "network_unavailable"
	KindTimeout            ErrorKind = "timeout"
	KindServerRejected     ErrorKind = "server_rejected"
	KindProtocolViolation  ErrorKind = "protocol_violation"
	KindUnauthorized       ErrorKind = "unauthorized"
	KindUnknown            ErrorKind = "unknown"
)

// retryable reports whether a failure of this kind is worth replaying the
// same request over the streaming path.
func (k ErrorKind) retryable() bool {
	return k == KindNetworkUnavailable || k == KindTimeout
}

// StreamError is the structured failure attached to an errored session.
// Retryable means the same request may be replayed over the streaming
// path; ShouldFallback means the caller should abandon streaming and
// re-issue the request through the non-streaming call path. The
// controller only classifies; acting on either flag is the caller's
// decision.
type StreamError struct {
	Kind           ErrorKind
	Message        string
	Retryable      bool
	ShouldFallback bool

	cause error
}

func (e *StreamError) Error() string {
	return string(e.Kind) + ": " + e.Message
}

// Unwrap returns the underlying cause.
func (e *StreamError) Unwrap() error {
	return e.cause
}

// fallbackCode is the gateway's error code indicating the selected
// configuration does not support streaming. The same request will
// succeed on the non-streaming endpoint.
const fallbackCode = "streaming_unsupported"

// Classify maps a transport, protocol, or server failure into a
// StreamError. Context cancellation is deliberately absent: a cancelled
// session terminates in the cancelled state and carries no error.
func Classify(err error) *StreamError {
	se := &StreamError{cause: err}

	var netErr net.Error
	var httpErr *HTTPError
	var srvErr *ServerError

	switch {
	case errors.Is(err, context.DeadlineExceeded):
		se.Kind = KindTimeout
		se.Message = "the request timed out"

	case errors.As(err, &netErr) && netErr.Timeout():
		se.Kind = KindTimeout
		se.Message = "the connection timed out"

	case errors.As(err, &httpErr):
		classifyHTTP(se, httpErr)

	case errors.As(err, &srvErr):
		se.Kind = KindServerRejected
		se.Message = srvErr.Message
		se.ShouldFallback = srvErr.Code == fallbackCode

	case errors.Is(err, ErrMalformedChunk):
		se.Kind = KindProtocolViolation
		se.Message = "the server sent a malformed response"

	case errors.Is(err, ErrUnexpectedEnd),
		errors.Is(err, io.EOF),
		errors.Is(err, io.ErrUnexpectedEOF),
		errors.As(err, new(*net.OpError)):
		se.Kind = KindNetworkUnavailable
		se.Message = "the connection was lost"

	default:
		se.Kind = KindUnknown
		se.Message = err.Error()
	}

	se.Retryable = se.Kind.retryable()
	return se
}

func classifyHTTP(se *StreamError, httpErr *HTTPError) {
	switch httpErr.Status {
	case http.StatusUnauthorized, http.StatusForbidden:
		se.Kind = KindUnauthorized
		se.Message = "not authorized to use this configuration"
	case http.StatusNotImplemented:
		se.Kind = KindServerRejected
		se.Message = rejectionMessage(httpErr)
		se.ShouldFallback = true
	default:
		se.Kind = KindServerRejected
		se.Message = rejectionMessage(httpErr)
		se.ShouldFallback = httpErr.Code == fallbackCode
	}
}

// rejectionMessage prefers the human-readable message from the server
// payload, falling back to a generic one.
func rejectionMessage(httpErr *HTTPError) string {
	if httpErr.Message != "" {
		return httpErr.Message
	}
	return "the server rejected the streaming request"
}
