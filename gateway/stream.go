package gateway

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"strings"
	"sync"

	"github.com/sujumayas/dockstream"
)

// stream implements [dockstream.Stream] by reassembling SSE frames from
// an HTTP response body and decoding each data payload as one chunk.
type stream struct {
	body    io.ReadCloser
	scanner *bufio.Scanner
	ctx     context.Context

	done      bool  // EventDone delivered; next call returns io.EOF
	err       error // terminal error, if any
	closeOnce sync.Once
}

// Interface compliance check.
var _ dockstream.Stream = (*stream)(nil)

func newStream(ctx context.Context, body io.ReadCloser) *stream {
	return &stream{
		body:    body,
		scanner: bufio.NewScanner(body),
		ctx:     ctx,
	}
}

// Next reads the next chunk from the SSE stream. After the done chunk it
// returns io.EOF. A skippable keep-alive surfaces as an error wrapping
// [dockstream.ErrSkipChunk] and leaves the stream usable.
func (s *stream) Next() (dockstream.Event, error) {
	if s.done {
		return nil, io.EOF
	}
	if s.err != nil {
		return nil, s.err
	}

	data, err := s.readSSEData()
	if err != nil {
		s.err = s.terminalError(err)
		return nil, s.err
	}

	evt, err := dockstream.ParseChunk(data)
	if err != nil {
		if errors.Is(err, dockstream.ErrSkipChunk) {
			return nil, err
		}
		s.err = err
		return nil, s.err
	}
	if _, ok := evt.(dockstream.EventDone); ok {
		s.done = true
	}
	return evt, nil
}

// Close closes the underlying HTTP response body. Safe to call more than
// once and concurrently with a blocked Next.
func (s *stream) Close() error {
	var err error
	s.closeOnce.Do(func() {
		err = s.body.Close()
	})
	return err
}

// terminalError maps a raw read failure to the stream's terminal error.
// Context errors win so that a cancelled session is not misclassified as
// a lost connection.
func (s *stream) terminalError(err error) error {
	if ctxErr := s.ctx.Err(); ctxErr != nil {
		return ctxErr
	}
	if err == io.EOF {
		return dockstream.ErrUnexpectedEnd
	}
	return fmt.Errorf("gateway: %w", err)
}

// readSSEData reads lines until a complete SSE event is assembled and
// returns its data payload. The gateway discriminates chunk types inside
// the JSON payload, so the SSE event field is ignored.
func (s *stream) readSSEData() ([]byte, error) {
	var dataBuf strings.Builder

	for s.scanner.Scan() {
		line := s.scanner.Text()

		if line == "" {
			// Empty line signals end of event.
			if dataBuf.Len() > 0 {
				return []byte(dataBuf.String()), nil
			}
			// Empty event, keep reading.
			continue
		}

		if strings.HasPrefix(line, "data: ") {
			if dataBuf.Len() > 0 {
				dataBuf.WriteByte('\n')
			}
			dataBuf.WriteString(strings.TrimPrefix(line, "data: "))
		}
		// Ignore comments (lines starting with ':') and other fields.
	}

	if err := s.scanner.Err(); err != nil {
		return nil, err
	}

	// Scanner exhausted without error = EOF.
	if dataBuf.Len() > 0 {
		return []byte(dataBuf.String()), nil
	}
	return nil, io.EOF
}
