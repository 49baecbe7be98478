package dockstream

import "context"

// Stream delivers decoded chunk events in arrival order, pull-based.
// Cancellation flows through the context passed to Transport.Stream().
//
// Next() returns the next semantic event, or:
//   - io.EOF when the transport's frame source is exhausted. A clean
//     stream delivers [EventDone] before EOF; EOF without a prior done
//     event means the stream was cut off.
//   - an error wrapping [ErrSkipChunk] for a malformed keep-alive frame.
//     The caller logs it and calls Next() again; the stream stays usable.
//   - any other error for transport, protocol, or server failures.
//
// Close() releases the underlying connection. It must be safe to call
// more than once and concurrently with a blocked Next().
type Stream interface {
	Next() (Event, error)
	Close() error
}

// Transport is a strategy pattern interface for streaming chat backends:
// the gateway's SSE endpoint, its WebSocket endpoint, or a direct
// provider connection.
type Transport interface {
	Stream(ctx context.Context, req Request) (Stream, error)
}
