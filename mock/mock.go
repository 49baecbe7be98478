// Package mock provides test doubles for dockstream interfaces using
// function fields.
package mock

import (
	"context"

	"github.com/sujumayas/dockstream"
)

// Interface compliance checks.
var (
	_ dockstream.Transport = (*Transport)(nil)
	_ dockstream.Stream    = (*Stream)(nil)
)

// Transport is a test double for dockstream.Transport.
// Set StreamFn before calling Stream.
type Transport struct {
	StreamFn func(ctx context.Context, req dockstream.Request) (dockstream.Stream, error)
}

// Stream delegates to StreamFn.
func (t *Transport) Stream(ctx context.Context, req dockstream.Request) (dockstream.Stream, error) {
	return t.StreamFn(ctx, req)
}

// Stream is a test double for dockstream.Stream.
// NextFn panics when nil to catch missing setup. CloseFn is nil-safe
// (no-op) because test code commonly calls defer stream.Close() and it
// rarely needs custom behavior.
type Stream struct {
	NextFn  func() (dockstream.Event, error)
	CloseFn func() error
}

// Next delegates to NextFn.
func (s *Stream) Next() (dockstream.Event, error) {
	return s.NextFn()
}

// Close delegates to CloseFn. Returns nil when CloseFn is not set.
func (s *Stream) Close() error {
	if s.CloseFn == nil {
		return nil
	}
	return s.CloseFn()
}
