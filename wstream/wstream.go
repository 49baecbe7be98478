// Package wstream implements [dockstream.Transport] for the AI Dock
// gateway's WebSocket streaming endpoint.
//
// The request travels as the first text message on the socket; every
// following server message is one JSON chunk in the same schema the SSE
// endpoint uses, decoded by [dockstream.ParseChunk]. A normal closure
// after the done chunk ends the stream cleanly; any other closure is a
// transport failure.
package wstream

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"

	"github.com/coder/websocket"
	"github.com/sujumayas/dockstream"
)

// Interface compliance check.
var _ dockstream.Transport = (*Client)(nil)

// Client dials the gateway's WebSocket chat endpoint.
type Client struct {
	url        string
	token      string
	httpClient *http.Client
}

// Option configures a [Client].
type Option func(*Client)

// WithHTTPClient sets the HTTP client used for the WebSocket handshake.
func WithHTTPClient(hc *http.Client) Option {
	return func(c *Client) { c.httpClient = hc }
}

// New creates a WebSocket [Client] for the given endpoint URL (ws:// or
// wss://) and API token.
func New(url, token string, opts ...Option) *Client {
	c := &Client{
		url:        url,
		token:      token,
		httpClient: http.DefaultClient,
	}
	for _, o := range opts {
		o(c)
	}
	return c
}

// Stream dials the endpoint, sends the request, and returns a
// [dockstream.Stream] of decoded chunk events.
func (c *Client) Stream(ctx context.Context, req dockstream.Request) (dockstream.Stream, error) {
	header := http.Header{}
	if c.token != "" {
		header.Set("Authorization", "Bearer "+c.token)
	}

	conn, resp, err := websocket.Dial(ctx, c.url, &websocket.DialOptions{
		HTTPClient: c.httpClient,
		HTTPHeader: header,
	})
	if err != nil {
		if resp != nil && resp.StatusCode != http.StatusSwitchingProtocols {
			return nil, &dockstream.HTTPError{Status: resp.StatusCode}
		}
		return nil, fmt.Errorf("wstream: dial: %w", err)
	}

	body, err := json.Marshal(req)
	if err != nil {
		conn.Close(websocket.StatusInternalError, "encode request")
		return nil, fmt.Errorf("wstream: %w", err)
	}
	if err := conn.Write(ctx, websocket.MessageText, body); err != nil {
		conn.Close(websocket.StatusInternalError, "send request")
		return nil, fmt.Errorf("wstream: send request: %w", err)
	}

	return &stream{conn: conn, ctx: ctx}, nil
}

// stream implements [dockstream.Stream] over one WebSocket connection.
type stream struct {
	conn *websocket.Conn
	ctx  context.Context

	done bool
	err  error
}

// Interface compliance check.
var _ dockstream.Stream = (*stream)(nil)

func (s *stream) Next() (dockstream.Event, error) {
	if s.done {
		return nil, io.EOF
	}
	if s.err != nil {
		return nil, s.err
	}

	_, data, err := s.conn.Read(s.ctx)
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

// Close tears the connection down. Safe to call more than once and
// concurrently with a blocked Next.
func (s *stream) Close() error {
	// coder/websocket tolerates Close after close; the error from a
	// second call is not actionable.
	s.conn.Close(websocket.StatusNormalClosure, "client closed")
	return nil
}

func (s *stream) terminalError(err error) error {
	if ctxErr := s.ctx.Err(); ctxErr != nil {
		return ctxErr
	}
	if websocket.CloseStatus(err) == websocket.StatusNormalClosure {
		// Server closed cleanly without a done chunk: the stream was
		// still cut short from the session's point of view.
		return dockstream.ErrUnexpectedEnd
	}
	return fmt.Errorf("wstream: %w", err)
}
