package wstream_test

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/coder/websocket"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/sujumayas/dockstream"
	"github.com/sujumayas/dockstream/wstream"
)

func testRequest() dockstream.Request {
	return dockstream.Request{
		ConfigID: 1,
		Messages: []dockstream.Message{
			{Role: dockstream.RoleUser, Content: "hello"},
		},
	}
}

// wsServer accepts one WebSocket connection, reads the request message,
// and hands the connection to serve.
func wsServer(t *testing.T, serve func(ctx context.Context, conn *websocket.Conn, req dockstream.Request)) string {
	t.Helper()
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "Bearer test-token", r.Header.Get("Authorization"))

		conn, err := websocket.Accept(w, r, nil)
		if !assert.NoError(t, err) {
			return
		}
		defer conn.CloseNow()

		ctx := r.Context()
		_, data, err := conn.Read(ctx)
		if !assert.NoError(t, err) {
			return
		}
		var req dockstream.Request
		if !assert.NoError(t, json.Unmarshal(data, &req)) {
			return
		}

		serve(ctx, conn, req)
	}))
	t.Cleanup(srv.Close)
	return "ws" + strings.TrimPrefix(srv.URL, "http")
}

func writeChunk(ctx context.Context, t *testing.T, conn *websocket.Conn, payload string) {
	t.Helper()
	assert.NoError(t, conn.Write(ctx, websocket.MessageText, []byte(payload)))
}

func TestClient_Stream(t *testing.T) {
	t.Parallel()
	url := wsServer(t, func(ctx context.Context, conn *websocket.Conn, req dockstream.Request) {
		assert.Equal(t, 1, req.ConfigID)
		writeChunk(ctx, t, conn, `{"type":"metadata","model":"gpt-4o","provider":"openai"}`)
		writeChunk(ctx, t, conn, `{"type":"content","content":"Hel"}`)
		writeChunk(ctx, t, conn, `{"type":"content","content":"lo"}`)
		writeChunk(ctx, t, conn, `{"type":"done","usage":{"total_tokens":3},"cost":0.001}`)
		conn.Close(websocket.StatusNormalClosure, "")
	})

	client := wstream.New(url, "test-token")
	stream, err := client.Stream(context.Background(), testRequest())
	require.NoError(t, err)
	defer stream.Close()

	var events []dockstream.Event
	for {
		evt, err := stream.Next()
		if err == io.EOF {
			break
		}
		require.NoError(t, err)
		events = append(events, evt)
	}

	require.Len(t, events, 4)
	assert.Equal(t, dockstream.EventMetadata{Model: "gpt-4o", Provider: "openai"}, events[0])
	assert.Equal(t, dockstream.EventContentDelta{Text: "Hel"}, events[1])
	assert.Equal(t, dockstream.EventContentDelta{Text: "lo"}, events[2])
	assert.Equal(t, dockstream.EventDone{
		Usage: dockstream.Usage{TotalTokens: 3},
		Cost:  0.001,
	}, events[3])
}

func TestClient_Stream_NormalCloseWithoutDone(t *testing.T) {
	t.Parallel()
	url := wsServer(t, func(ctx context.Context, conn *websocket.Conn, req dockstream.Request) {
		writeChunk(ctx, t, conn, `{"type":"content","content":"par"}`)
		conn.Close(websocket.StatusNormalClosure, "")
	})

	client := wstream.New(url, "test-token")
	stream, err := client.Stream(context.Background(), testRequest())
	require.NoError(t, err)
	defer stream.Close()

	evt, err := stream.Next()
	require.NoError(t, err)
	assert.Equal(t, dockstream.EventContentDelta{Text: "par"}, evt)

	// Clean closure before the done chunk still cut the stream short.
	_, err = stream.Next()
	assert.ErrorIs(t, err, dockstream.ErrUnexpectedEnd)
}

func TestClient_Stream_SkippableKeepAlive(t *testing.T) {
	t.Parallel()
	url := wsServer(t, func(ctx context.Context, conn *websocket.Conn, req dockstream.Request) {
		writeChunk(ctx, t, conn, `{"type":"ping"}`)
		writeChunk(ctx, t, conn, `{"type":"done","usage":{},"cost":0}`)
		conn.Close(websocket.StatusNormalClosure, "")
	})

	client := wstream.New(url, "test-token")
	stream, err := client.Stream(context.Background(), testRequest())
	require.NoError(t, err)
	defer stream.Close()

	_, err = stream.Next()
	require.ErrorIs(t, err, dockstream.ErrSkipChunk)

	evt, err := stream.Next()
	require.NoError(t, err)
	assert.IsType(t, dockstream.EventDone{}, evt)
}

func TestClient_Stream_ContextCancellation(t *testing.T) {
	t.Parallel()
	url := wsServer(t, func(ctx context.Context, conn *websocket.Conn, req dockstream.Request) {
		// Send nothing; wait for the client to go away.
		<-ctx.Done()
	})

	ctx, cancel := context.WithCancel(context.Background())
	client := wstream.New(url, "test-token")
	stream, err := client.Stream(ctx, testRequest())
	require.NoError(t, err)
	defer stream.Close()

	cancel()
	_, err = stream.Next()
	assert.ErrorIs(t, err, context.Canceled)
}

func TestClient_Stream_DialFailure(t *testing.T) {
	t.Parallel()
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "no", http.StatusForbidden)
	}))
	t.Cleanup(srv.Close)

	client := wstream.New("ws"+strings.TrimPrefix(srv.URL, "http"), "test-token")
	_, err := client.Stream(context.Background(), testRequest())

	var httpErr *dockstream.HTTPError
	require.ErrorAs(t, err, &httpErr)
	assert.Equal(t, http.StatusForbidden, httpErr.Status)
}
