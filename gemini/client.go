package gemini

import (
	"context"
	"fmt"

	"github.com/sujumayas/dockstream"
	"google.golang.org/genai"
)

// Interface compliance check.
var _ dockstream.Transport = (*Client)(nil)

// Client implements [dockstream.Transport] for the Google Gemini API.
type Client struct {
	client *genai.Client
	model  string
}

// Option configures a [Client].
type Option func(*Client)

// WithModel sets the default model ID used when the request has none.
func WithModel(model string) Option {
	return func(c *Client) { c.model = model }
}

// New creates a Gemini [Client] with the given API key and options.
func New(ctx context.Context, apiKey string, opts ...Option) (*Client, error) {
	gc, err := genai.NewClient(ctx, &genai.ClientConfig{
		APIKey:  apiKey,
		Backend: genai.BackendGeminiAPI,
	})
	if err != nil {
		return nil, fmt.Errorf("gemini: %w", err)
	}
	c := &Client{
		client: gc,
		model:  defaultModel,
	}
	for _, o := range opts {
		o(c)
	}
	return c, nil
}

// Stream sends a streaming request to the Gemini API. The request's
// ConfigID has no meaning here; model selection comes from the request's
// Model field or the client default.
func (c *Client) Stream(ctx context.Context, req dockstream.Request) (dockstream.Stream, error) {
	if err := req.Validate(); err != nil {
		return nil, fmt.Errorf("gemini: %w", err)
	}

	model := req.Model
	if model == "" {
		model = c.model
	}

	contents, system := ConvertMessages(req.Messages)
	config := buildConfig(req, system)

	iter := c.client.Models.GenerateContentStream(ctx, model, contents, config)
	return newStream(ctx, model, iter), nil
}

func buildConfig(req dockstream.Request, system string) *genai.GenerateContentConfig {
	maxTokens := req.MaxTokens
	if maxTokens == 0 {
		maxTokens = defaultMaxTokens
	}

	config := &genai.GenerateContentConfig{
		MaxOutputTokens: int32(maxTokens),
	}

	if system != "" {
		config.SystemInstruction = &genai.Content{
			Parts: []*genai.Part{{Text: system}},
		}
	}

	if req.Temperature != nil {
		temp := float32(*req.Temperature)
		config.Temperature = &temp
	}

	return config
}

// ConvertMessages converts chat messages to genai Contents, splitting out
// the system prompt (Gemini carries it in the request config, not the
// content list). Exported for testing.
func ConvertMessages(msgs []dockstream.Message) ([]*genai.Content, string) {
	var result []*genai.Content
	var system string
	for _, msg := range msgs {
		switch msg.Role {
		case dockstream.RoleSystem:
			if system != "" {
				system += "\n"
			}
			system += msg.Content
		case dockstream.RoleAssistant:
			result = append(result, &genai.Content{
				Role:  "model",
				Parts: []*genai.Part{{Text: msg.Content}},
			})
		default:
			result = append(result, &genai.Content{
				Role:  "user",
				Parts: []*genai.Part{{Text: msg.Content}},
			})
		}
	}
	return result, system
}
