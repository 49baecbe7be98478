package gateway

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"

	"github.com/sujumayas/dockstream"
)

// Interface compliance check.
var _ dockstream.Transport = (*Client)(nil)

// Client talks to the AI Dock gateway's chat API.
type Client struct {
	token      string
	baseURL    string
	httpClient *http.Client
}

// Option configures a [Client].
type Option func(*Client)

// WithBaseURL sets the gateway base URL. Useful for testing with httptest.
func WithBaseURL(url string) Option {
	return func(c *Client) { c.baseURL = url }
}

// WithHTTPClient sets a custom HTTP client.
func WithHTTPClient(hc *http.Client) Option {
	return func(c *Client) { c.httpClient = hc }
}

// New creates a gateway [Client] with the given API token and options.
func New(token string, opts ...Option) *Client {
	c := &Client{
		token:      token,
		baseURL:    defaultBaseURL,
		httpClient: http.DefaultClient,
	}
	for _, o := range opts {
		o(c)
	}
	return c
}

// Stream opens the gateway's SSE streaming endpoint and returns a
// [dockstream.Stream] of decoded chunk events.
func (c *Client) Stream(ctx context.Context, req dockstream.Request) (dockstream.Stream, error) {
	resp, err := c.post(ctx, streamPath, req, "text/event-stream")
	if err != nil {
		return nil, err
	}
	return newStream(ctx, resp.Body), nil
}

// Complete sends the same logical request through the non-streaming chat
// endpoint. This is the fallback call path; the controller never invokes
// it on its own.
func (c *Client) Complete(ctx context.Context, req dockstream.Request) (dockstream.Response, error) {
	if err := req.Validate(); err != nil {
		return dockstream.Response{}, fmt.Errorf("gateway: %w", err)
	}

	resp, err := c.post(ctx, chatPath, req, "application/json")
	if err != nil {
		return dockstream.Response{}, err
	}
	defer resp.Body.Close()

	var body apiChatResponse
	if err := json.NewDecoder(resp.Body).Decode(&body); err != nil {
		return dockstream.Response{}, fmt.Errorf("gateway: decode response: %w", err)
	}
	return dockstream.Response{
		Content:  body.Content,
		Model:    body.Model,
		Provider: body.Provider,
		Usage:    body.Usage,
		Cost:     body.Cost,
	}, nil
}

// post issues the request and maps non-200 responses to
// [*dockstream.HTTPError] for the classifier. On success the caller owns
// the response body.
func (c *Client) post(ctx context.Context, path string, req dockstream.Request, accept string) (*http.Response, error) {
	body, err := json.Marshal(req)
	if err != nil {
		return nil, fmt.Errorf("gateway: %w", err)
	}

	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+path, bytes.NewReader(body))
	if err != nil {
		return nil, fmt.Errorf("gateway: %w", err)
	}
	httpReq.Header.Set("Content-Type", "application/json")
	httpReq.Header.Set("Accept", accept)
	if c.token != "" {
		httpReq.Header.Set("Authorization", "Bearer "+c.token)
	}

	resp, err := c.httpClient.Do(httpReq)
	if err != nil {
		return nil, fmt.Errorf("gateway: %w", err)
	}
	if resp.StatusCode != http.StatusOK {
		defer resp.Body.Close()
		return nil, parseHTTPError(resp)
	}
	return resp, nil
}

func parseHTTPError(resp *http.Response) error {
	httpErr := &dockstream.HTTPError{Status: resp.StatusCode}
	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return httpErr
	}
	var apiErr apiErrorResponse
	if err := json.Unmarshal(body, &apiErr); err != nil {
		httpErr.Message = string(body)
		return httpErr
	}
	httpErr.Code = apiErr.Code
	httpErr.Message = apiErr.Detail
	return httpErr
}
