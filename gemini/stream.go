package gemini

import (
	"context"
	"fmt"
	"io"
	"iter"

	"github.com/sujumayas/dockstream"
	"google.golang.org/genai"
)

// stream implements [dockstream.Stream] by wrapping the genai SDK's
// streaming iterator. SDK chunks can carry several text parts; pending
// deltas are drained one event at a time to preserve arrival order.
type stream struct {
	pull  func() (*genai.GenerateContentResponse, error, bool)
	stop  func()
	ctx   context.Context
	model string

	pending  []dockstream.Event
	metaSent bool
	usage    dockstream.Usage
	done     bool
	err      error
}

// Interface compliance check.
var _ dockstream.Stream = (*stream)(nil)

func newStream(ctx context.Context, model string, iterFn iter.Seq2[*genai.GenerateContentResponse, error]) *stream {
	next, stop := iter.Pull2(iterFn)
	return &stream{
		pull:  next,
		stop:  stop,
		ctx:   ctx,
		model: model,
	}
}

func (s *stream) Next() (dockstream.Event, error) {
	for {
		if len(s.pending) > 0 {
			evt := s.pending[0]
			s.pending = s.pending[1:]
			return evt, nil
		}
		if s.done {
			return nil, io.EOF
		}
		if s.err != nil {
			return nil, s.err
		}

		resp, err, ok := s.pull()
		if !ok {
			// Iterator exhausted: emit the terminal done event once,
			// then EOF on the following call.
			s.done = true
			return dockstream.EventDone{Usage: s.usage}, nil
		}
		if err != nil {
			s.err = s.terminalError(err)
			return nil, s.err
		}
		s.ingest(resp)
	}
}

// ingest queues the semantic events carried by one SDK chunk.
func (s *stream) ingest(resp *genai.GenerateContentResponse) {
	if !s.metaSent {
		s.metaSent = true
		s.pending = append(s.pending, dockstream.EventMetadata{
			Model:    s.model,
			Provider: "google",
		})
	}

	for _, cand := range resp.Candidates {
		if cand.Content == nil {
			continue
		}
		for _, part := range cand.Content.Parts {
			if part.Text != "" && !part.Thought {
				s.pending = append(s.pending, dockstream.EventContentDelta{Text: part.Text})
			}
		}
	}

	// Usage metadata arrives cumulatively; the last chunk's values win.
	if um := resp.UsageMetadata; um != nil {
		s.usage = dockstream.Usage{
			InputTokens:  int(um.PromptTokenCount),
			OutputTokens: int(um.CandidatesTokenCount),
			TotalTokens:  int(um.TotalTokenCount),
		}
	}
}

func (s *stream) terminalError(err error) error {
	if ctxErr := s.ctx.Err(); ctxErr != nil {
		return ctxErr
	}
	return fmt.Errorf("gemini: %w", err)
}

// Close releases the SDK iterator. Safe to call more than once.
func (s *stream) Close() error {
	s.stop()
	return nil
}
