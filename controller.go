package dockstream

import (
	"context"
	"errors"
	"io"
	"sync"
	"time"

	"github.com/charmbracelet/log"
)

// session is the unit of work for one in-flight or completed streaming
// exchange. All fields are guarded by the controller's mutex except req,
// which is immutable once the session is created.
type session struct {
	req   Request
	state ConnectionState

	acc      Accumulator
	model    string
	provider string

	startedAt time.Time
	endedAt   time.Time

	lastErr *StreamError // set only in StateErrored
	final   *Response    // set only in StateCompleted

	cancel     context.CancelFunc
	stream     Stream // set by the pump once the transport opens
	onComplete func(Response)
}

// Controller drives streaming chat sessions over a Transport. At most one
// session is live (non-terminal) per controller at any time; starting a
// second stream while one is live is rejected rather than interleaved, so
// the accumulator can never mix two responses.
//
// All mutation happens either under the controller's mutex or from the
// single pump goroutine a session owns. Observers reflect the current (or
// most recently terminal) session.
type Controller struct {
	transport Transport
	logger    *log.Logger

	mu  sync.Mutex
	cur *session // nil until the first StreamMessage
}

// Option configures a [Controller].
type Option func(*Controller)

// WithLogger sets the diagnostic logger. Diagnostics never include
// message content; the default logger discards everything.
func WithLogger(logger *log.Logger) Option {
	return func(c *Controller) { c.logger = logger }
}

// NewController creates a Controller that opens sessions on the given
// transport.
func NewController(transport Transport, opts ...Option) *Controller {
	c := &Controller{
		transport: transport,
		logger:    log.New(io.Discard),
	}
	for _, o := range opts {
		o(c)
	}
	return c
}

// StreamMessage starts a new streaming session for req. It returns false
// synchronously when req fails validation or a live session exists (the
// caller must cancel first); otherwise it initiates the transport open
// and returns immediately. On normal completion onComplete is invoked
// exactly once, from the session's own goroutine, after the state reaches
// StateCompleted. onComplete never runs before StreamMessage returns.
func (c *Controller) StreamMessage(ctx context.Context, req Request, onComplete func(Response)) bool {
	if err := req.Validate(); err != nil {
		c.logger.Debug("rejecting stream request", "err", err)
		return false
	}

	c.mu.Lock()
	defer c.mu.Unlock()
	if c.cur != nil && !c.cur.state.Terminal() {
		return false
	}
	c.startLocked(ctx, req, onComplete)
	return true
}

// RetryStreaming starts a brand-new session reusing the streaming path
// after a retryable failure. It returns false when no prior session
// exists or the prior session did not end in a retryable error. The
// supplied request is used verbatim; callers may legitimately retry with
// a modified request.
func (c *Controller) RetryStreaming(ctx context.Context, req Request, onComplete func(Response)) bool {
	if err := req.Validate(); err != nil {
		c.logger.Debug("rejecting retry request", "err", err)
		return false
	}

	c.mu.Lock()
	defer c.mu.Unlock()
	prev := c.cur
	if prev == nil || prev.state != StateErrored || prev.lastErr == nil || !prev.lastErr.Retryable {
		return false
	}
	c.startLocked(ctx, req, onComplete)
	return true
}

// startLocked spawns a fresh session. Callers hold c.mu and have verified
// no live session exists.
func (c *Controller) startLocked(ctx context.Context, req Request, onComplete func(Response)) {
	sctx, cancel := context.WithCancel(ctx)
	s := &session{
		req:        req,
		state:      StateConnecting,
		startedAt:  time.Now(),
		cancel:     cancel,
		onComplete: onComplete,
	}
	c.cur = s
	go c.pump(sctx, s)
}

// StopStreaming cancels the live session, if any: the state becomes
// StateCancelled immediately, the transport is signalled to close, and
// onComplete is never invoked. Idempotent; calling it with no live
// session is a no-op.
func (c *Controller) StopStreaming() {
	c.mu.Lock()
	s := c.cur
	if s == nil || s.state.Terminal() {
		c.mu.Unlock()
		return
	}
	s.state = StateCancelled
	s.endedAt = time.Now()
	stream := s.stream
	c.mu.Unlock()

	// Unblock the pump. Frames still in flight are discarded by apply():
	// the session is already terminal.
	s.cancel()
	if stream != nil {
		if err := stream.Close(); err != nil {
			c.logger.Debug("closing cancelled stream", "err", err)
		}
	}
}

// pump owns a session's event loop: it opens the transport, feeds decoded
// events through apply, and terminates the session exactly once.
func (c *Controller) pump(ctx context.Context, s *session) {
	defer s.cancel()

	stream, err := c.transport.Stream(ctx, s.req)
	if err != nil {
		c.fail(s, err)
		return
	}

	c.mu.Lock()
	if s.state.Terminal() {
		// Cancelled while the transport was opening.
		c.mu.Unlock()
		stream.Close()
		return
	}
	s.stream = stream
	c.mu.Unlock()
	defer stream.Close()

	for {
		evt, err := stream.Next()
		if err != nil {
			if errors.Is(err, io.EOF) {
				// Frame source exhausted without a done chunk.
				err = ErrUnexpectedEnd
			}
			if errors.Is(err, ErrSkipChunk) {
				c.logger.Debug("skipping undecodable chunk", "err", err)
				continue
			}
			c.fail(s, err)
			return
		}
		if c.apply(s, evt) {
			return
		}
	}
}

// apply folds one event into the session. It returns true when the
// session reached a terminal state and the pump should stop. Events for a
// terminal or superseded session are discarded.
func (c *Controller) apply(s *session, evt Event) bool {
	c.mu.Lock()

	if c.cur != s || s.state.Terminal() {
		c.mu.Unlock()
		return true
	}

	// First event of any kind moves the session out of connecting.
	if canTransition(s.state, StateStreaming) {
		s.state = StateStreaming
	}

	switch e := evt.(type) {
	case EventMetadata:
		s.model = e.Model
		s.provider = e.Provider

	case EventContentDelta:
		s.acc.Append(e.Text)

	case EventDone:
		if e.ContentLength > 0 && !s.acc.VerifyLength(e.ContentLength) {
			c.logger.Warn("content length mismatch",
				"reported", e.ContentLength, "accumulated", len(s.acc.Content()))
		}
		s.state = StateCompleted
		s.endedAt = time.Now()
		resp := Response{
			Content:  s.acc.Content(),
			Model:    s.model,
			Provider: s.provider,
			Usage:    e.Usage,
			Cost:     e.Cost,
			Chunks:   s.acc.Chunks(),
			Elapsed:  s.endedAt.Sub(s.startedAt),
		}
		s.final = &resp
		cb := s.onComplete
		c.mu.Unlock()
		if cb != nil {
			cb(resp)
		}
		return true
	}

	c.mu.Unlock()
	return false
}

// fail terminates the session with a classified error. Cancellation is
// not a failure: a session torn down through its context ends cancelled
// and carries no error.
func (c *Controller) fail(s *session, err error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if s.state.Terminal() {
		return
	}
	s.endedAt = time.Now()
	if errors.Is(err, context.Canceled) {
		s.state = StateCancelled
		return
	}
	s.lastErr = Classify(err)
	s.state = StateErrored
	c.logger.Debug("session errored",
		"kind", s.lastErr.Kind, "retryable", s.lastErr.Retryable, "fallback", s.lastErr.ShouldFallback)
}

// AccumulatedContent returns the content received so far, or the full
// content once the session is terminal. Partial content survives errors
// and cancellation.
func (c *Controller) AccumulatedContent() string {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.cur == nil {
		return ""
	}
	return c.cur.acc.Content()
}

// ConnectionState returns the current session's state, or StateIdle
// before the first session.
func (c *Controller) ConnectionState() ConnectionState {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.cur == nil {
		return StateIdle
	}
	return c.cur.state
}

// IsStreaming reports whether the current session is mid-stream.
func (c *Controller) IsStreaming() bool {
	return c.ConnectionState() == StateStreaming
}

// Err returns the structured error of an errored session, nil otherwise.
func (c *Controller) Err() *StreamError {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.cur == nil {
		return nil
	}
	return c.cur.lastErr
}

// HasError reports whether the current session ended in an error.
func (c *Controller) HasError() bool {
	return c.Err() != nil
}

// CanRetry reports whether RetryStreaming would be accepted.
func (c *Controller) CanRetry() bool {
	err := c.Err()
	return err != nil && err.Retryable
}

// ChunksReceived returns the number of content-bearing chunks processed
// by the current session. It never changes after a terminal state.
func (c *Controller) ChunksReceived() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.cur == nil {
		return 0
	}
	return c.cur.acc.Chunks()
}

// StreamingDuration returns the elapsed time of the current session:
// endedAt-startedAt once terminal, now-startedAt while live, zero before
// the first session.
func (c *Controller) StreamingDuration() time.Duration {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.cur == nil {
		return 0
	}
	if c.cur.endedAt.IsZero() {
		return time.Since(c.cur.startedAt)
	}
	return c.cur.endedAt.Sub(c.cur.startedAt)
}
