// Package gateway implements [dockstream.Transport] for the AI Dock
// gateway's chat API.
//
// The streaming endpoint delivers chunks over SSE; each data payload is
// one JSON chunk decoded by [dockstream.ParseChunk]. The package also
// exposes the non-streaming endpoint as [Client.Complete], the fallback
// call path callers use when a failure is classified with ShouldFallback.
package gateway

import "github.com/sujumayas/dockstream"

const (
	defaultBaseURL = "http://localhost:8000"
	streamPath     = "/api/chat/stream"
	chatPath       = "/api/chat"
)

// apiErrorResponse is the error payload of a non-200 response.
type apiErrorResponse struct {
	Detail string `json:"detail"`
	Code   string `json:"code"`
}

// apiChatResponse is the body of the non-streaming chat endpoint.
type apiChatResponse struct {
	Content  string           `json:"content"`
	Model    string           `json:"model"`
	Provider string           `json:"provider"`
	Usage    dockstream.Usage `json:"usage"`
	Cost     float64          `json:"cost"`
}
