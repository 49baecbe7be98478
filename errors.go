package dockstream

import (
	"errors"
	"fmt"
)

// Sentinel errors for common failure modes.
var (
	// ErrValidation indicates a request failed validation.
	ErrValidation = errors.New("validation error")

	// ErrSkipChunk indicates a chunk with no recognizable payload
	// (a malformed keep-alive). Callers log and keep reading.
	ErrSkipChunk = errors.New("skip chunk")

	// ErrMalformedChunk indicates a chunk that declared a known type but
	// could not be decoded. Classified as a protocol violation.
	ErrMalformedChunk = errors.New("malformed chunk")

	// ErrUnexpectedEnd indicates the transport closed mid-stream without
	// delivering a done chunk.
	ErrUnexpectedEnd = errors.New("unexpected end of stream")

	// ErrStreamClosed indicates an operation on a closed stream.
	ErrStreamClosed = errors.New("stream closed")
)

// ServerError is an error chunk reported in-band by the gateway during a
// stream. Code carries the gateway's machine-readable error code when one
// was sent.
type ServerError struct {
	Code    string
	Message string
}

func (e *ServerError) Error() string {
	if e.Code != "" {
		return fmt.Sprintf("%s: %s", e.Code, e.Message)
	}
	return e.Message
}

// HTTPError is a non-200 response from the gateway before any streaming
// began. Code and Message are extracted from the gateway's error payload
// when the body was parseable.
type HTTPError struct {
	Status  int
	Code    string
	Message string
}

func (e *HTTPError) Error() string {
	if e.Message != "" {
		return fmt.Sprintf("HTTP %d: %s", e.Status, e.Message)
	}
	return fmt.Sprintf("HTTP %d", e.Status)
}
