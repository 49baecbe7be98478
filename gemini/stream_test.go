package gemini

import (
	"context"
	"errors"
	"io"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"google.golang.org/genai"

	"github.com/sujumayas/dockstream"
)

func textChunk(parts ...*genai.Part) *genai.GenerateContentResponse {
	return &genai.GenerateContentResponse{
		Candidates: []*genai.Candidate{
			{Content: &genai.Content{Role: "model", Parts: parts}},
		},
	}
}

func collect(t *testing.T, s dockstream.Stream) []dockstream.Event {
	t.Helper()
	var events []dockstream.Event
	for {
		evt, err := s.Next()
		if err == io.EOF {
			return events
		}
		require.NoError(t, err)
		events = append(events, evt)
	}
}

func TestStream_EmitsMetadataDeltasAndDone(t *testing.T) {
	t.Parallel()
	chunks := []*genai.GenerateContentResponse{
		textChunk(&genai.Part{Text: "Hel"}),
		textChunk(&genai.Part{Text: "lo"}),
	}
	chunks[1].UsageMetadata = &genai.GenerateContentResponseUsageMetadata{
		PromptTokenCount:     10,
		CandidatesTokenCount: 2,
		TotalTokenCount:      12,
	}

	s := newStream(context.Background(), "gemini-test", func(yield func(*genai.GenerateContentResponse, error) bool) {
		for _, c := range chunks {
			if !yield(c, nil) {
				return
			}
		}
	})
	defer s.Close()

	events := collect(t, s)
	require.Len(t, events, 4)
	assert.Equal(t, dockstream.EventMetadata{Model: "gemini-test", Provider: "google"}, events[0])
	assert.Equal(t, dockstream.EventContentDelta{Text: "Hel"}, events[1])
	assert.Equal(t, dockstream.EventContentDelta{Text: "lo"}, events[2])
	assert.Equal(t, dockstream.EventDone{
		Usage: dockstream.Usage{InputTokens: 10, OutputTokens: 2, TotalTokens: 12},
	}, events[3])
}

func TestStream_SkipsThoughtParts(t *testing.T) {
	t.Parallel()
	s := newStream(context.Background(), "gemini-test", func(yield func(*genai.GenerateContentResponse, error) bool) {
		yield(textChunk(
			&genai.Part{Text: "internal reasoning", Thought: true},
			&genai.Part{Text: "visible answer"},
		), nil)
	})
	defer s.Close()

	events := collect(t, s)
	require.Len(t, events, 3)
	assert.Equal(t, dockstream.EventContentDelta{Text: "visible answer"}, events[1])
}

func TestStream_IteratorError(t *testing.T) {
	t.Parallel()
	cause := errors.New("quota exceeded")
	s := newStream(context.Background(), "gemini-test", func(yield func(*genai.GenerateContentResponse, error) bool) {
		if !yield(textChunk(&genai.Part{Text: "par"}), nil) {
			return
		}
		yield(nil, cause)
	})
	defer s.Close()

	// Metadata, then the delta.
	_, err := s.Next()
	require.NoError(t, err)
	evt, err := s.Next()
	require.NoError(t, err)
	assert.Equal(t, dockstream.EventContentDelta{Text: "par"}, evt)

	_, err = s.Next()
	require.ErrorIs(t, err, cause)

	// The terminal error is sticky.
	_, err = s.Next()
	assert.ErrorIs(t, err, cause)
}

func TestStream_CloseReleasesIterator(t *testing.T) {
	t.Parallel()
	s := newStream(context.Background(), "gemini-test", func(yield func(*genai.GenerateContentResponse, error) bool) {
		for {
			if !yield(textChunk(&genai.Part{Text: "x"}), nil) {
				return
			}
		}
	})

	_, err := s.Next()
	require.NoError(t, err)

	assert.NoError(t, s.Close())
	assert.NoError(t, s.Close(), "close is idempotent")
}
