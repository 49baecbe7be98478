package dockstream

import (
	"encoding/json"
	"fmt"
)

// wireChunk is the JSON envelope of one gateway streaming chunk. The Type
// discriminator selects which of the remaining fields are meaningful.
type wireChunk struct {
	Type string `json:"type"`

	// type == "content"
	Content *string `json:"content,omitempty"`

	// type == "metadata"
	Model    string `json:"model,omitempty"`
	Provider string `json:"provider,omitempty"`

	// type == "done"
	Usage         *Usage   `json:"usage,omitempty"`
	Cost          *float64 `json:"cost,omitempty"`
	ContentLength int      `json:"content_length,omitempty"`

	// type == "error"
	Message string `json:"message,omitempty"`
	Code    string `json:"code,omitempty"`
}

// ParseChunk decodes one raw chunk payload into a semantic [Event].
// Chunks are decoded strictly in arrival order; the parser holds no state
// between calls.
//
// Error contract:
//   - [ErrSkipChunk]: the payload carries no recognizable discriminator
//     (an unparseable keep-alive). Callers log and keep reading.
//   - [ErrMalformedChunk]: the payload declared a known type but its
//     required fields are missing or undecodable. Surfaced, not skipped.
//   - [*ServerError]: the gateway reported an in-band error chunk.
func ParseChunk(data []byte) (Event, error) {
	var chunk wireChunk
	if err := json.Unmarshal(data, &chunk); err != nil {
		return nil, fmt.Errorf("undecodable chunk: %w", ErrSkipChunk)
	}

	switch chunk.Type {
	case "content":
		if chunk.Content == nil {
			return nil, fmt.Errorf("content chunk without content field: %w", ErrMalformedChunk)
		}
		return EventContentDelta{Text: *chunk.Content}, nil

	case "metadata":
		return EventMetadata{Model: chunk.Model, Provider: chunk.Provider}, nil

	case "done":
		// The done chunk is the session's terminal signal; a broken one
		// is a protocol violation, never a skippable keep-alive.
		if chunk.Usage == nil || chunk.Cost == nil {
			return nil, fmt.Errorf("done chunk missing usage or cost: %w", ErrMalformedChunk)
		}
		return EventDone{
			Usage:         *chunk.Usage,
			Cost:          *chunk.Cost,
			ContentLength: chunk.ContentLength,
		}, nil

	case "error":
		msg := chunk.Message
		if msg == "" {
			msg = "the server reported an error"
		}
		return nil, &ServerError{Code: chunk.Code, Message: msg}

	default:
		// No or unknown discriminator. Unknown chunk types are tolerated
		// for forward compatibility, the same way unknown SSE event types
		// are ignored by streaming API clients.
		return nil, fmt.Errorf("unknown chunk type %q: %w", chunk.Type, ErrSkipChunk)
	}
}
