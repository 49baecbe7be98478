package mock

import (
	"io"
	"sync"

	"github.com/sujumayas/dockstream"
)

// ScriptedStream replays a fixed event sequence, then terminates with
// final (io.EOF for a clean end). A nil final defaults to io.EOF.
// Safe for concurrent use so tests can observe Closed from another
// goroutine.
type ScriptedStream struct {
	mu     sync.Mutex
	events []dockstream.Event
	final  error
	pos    int
	closed bool
}

// Interface compliance check.
var _ dockstream.Stream = (*ScriptedStream)(nil)

// Script creates a ScriptedStream delivering events then final.
func Script(final error, events ...dockstream.Event) *ScriptedStream {
	if final == nil {
		final = io.EOF
	}
	return &ScriptedStream{events: events, final: final}
}

// Next returns the next scripted event, or the terminal error once the
// script is exhausted or the stream was closed.
func (s *ScriptedStream) Next() (dockstream.Event, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed {
		return nil, dockstream.ErrStreamClosed
	}
	if s.pos >= len(s.events) {
		return nil, s.final
	}
	evt := s.events[s.pos]
	s.pos++
	return evt, nil
}

// Close marks the stream closed. Subsequent Next calls fail.
func (s *ScriptedStream) Close() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.closed = true
	return nil
}

// Closed reports whether Close was called.
func (s *ScriptedStream) Closed() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.closed
}
