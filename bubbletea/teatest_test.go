package bubbletea_test

import (
	"bytes"
	"context"
	"io"
	"testing"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/x/exp/teatest"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/sujumayas/dockstream"
	bt "github.com/sujumayas/dockstream/bubbletea"
	"github.com/sujumayas/dockstream/mock"
	"github.com/sujumayas/dockstream/transcript"
)

func scriptedTransport(s dockstream.Stream) *mock.Transport {
	return &mock.Transport{
		StreamFn: func(ctx context.Context, req dockstream.Request) (dockstream.Stream, error) {
			return s, nil
		},
	}
}

func TestModel_Teatest(t *testing.T) {
	t.Parallel()

	t.Run("full streaming cycle", func(t *testing.T) {
		t.Parallel()

		stream := mock.Script(nil,
			dockstream.EventMetadata{Model: "gpt-4o", Provider: "openai"},
			dockstream.EventContentDelta{Text: "Hello "},
			dockstream.EventContentDelta{Text: "there!"},
			dockstream.EventDone{Usage: dockstream.Usage{TotalTokens: 5}, Cost: 0.001},
		)
		tr := &transcript.Transcript{ID: "tr-1", ConfigID: 1}
		controller := dockstream.NewController(scriptedTransport(stream))
		m := bt.New(controller, nil, tr, dockstream.DefaultTheme(), "")

		tm := teatest.NewTestModel(t, m,
			teatest.WithInitialTermSize(80, 24),
		)

		tm.Type("hi")
		tm.Send(tea.KeyMsg{Type: tea.KeyEnter})

		teatest.WaitFor(t, tm.Output(), func(out []byte) bool {
			return bytes.Contains(out, []byte("Hello there!")) &&
				bytes.Contains(out, []byte("chunks"))
		}, teatest.WithDuration(5*time.Second))

		tm.Send(tea.KeyMsg{Type: tea.KeyCtrlC})

		fm := tm.FinalModel(t, teatest.WithFinalTimeout(5*time.Second))
		final, ok := fm.(bt.Model)
		require.True(t, ok)
		assert.False(t, final.Streaming())
		assert.Nil(t, final.Err())

		require.Len(t, tr.Messages, 2)
		assert.Equal(t, "Hello there!", tr.Messages[1].Content)
	})

	t.Run("existing transcript renders on init", func(t *testing.T) {
		t.Parallel()

		tr := &transcript.Transcript{
			ID:       "tr-2",
			ConfigID: 1,
			Messages: []dockstream.Message{
				{Role: dockstream.RoleUser, Content: "earlier question"},
				{Role: dockstream.RoleAssistant, Content: "earlier answer"},
			},
		}
		controller := dockstream.NewController(&mock.Transport{})
		m := bt.New(controller, nil, tr, dockstream.DefaultTheme(), "")

		tm := teatest.NewTestModel(t, m,
			teatest.WithInitialTermSize(80, 24),
		)

		teatest.WaitFor(t, tm.Output(), func(out []byte) bool {
			return bytes.Contains(out, []byte("earlier question")) &&
				bytes.Contains(out, []byte("earlier answer"))
		}, teatest.WithDuration(5*time.Second))

		tm.Send(tea.KeyMsg{Type: tea.KeyCtrlC})
		tm.WaitFinished(t, teatest.WithFinalTimeout(5*time.Second))
	})

	t.Run("stream failure shows retry hint", func(t *testing.T) {
		t.Parallel()

		stream := mock.Script(io.EOF, dockstream.EventContentDelta{Text: "partial answer"})
		tr := &transcript.Transcript{ID: "tr-3", ConfigID: 1}
		controller := dockstream.NewController(scriptedTransport(stream))
		m := bt.New(controller, nil, tr, dockstream.DefaultTheme(), "")

		tm := teatest.NewTestModel(t, m,
			teatest.WithInitialTermSize(80, 24),
		)

		tm.Type("hi")
		tm.Send(tea.KeyMsg{Type: tea.KeyEnter})

		teatest.WaitFor(t, tm.Output(), func(out []byte) bool {
			return bytes.Contains(out, []byte("partial answer")) &&
				bytes.Contains(out, []byte("press r to retry"))
		}, teatest.WithDuration(5*time.Second))

		tm.Send(tea.KeyMsg{Type: tea.KeyCtrlC})

		fm := tm.FinalModel(t, teatest.WithFinalTimeout(5*time.Second))
		final, ok := fm.(bt.Model)
		require.True(t, ok)
		require.NotNil(t, final.Err())
		assert.True(t, final.Err().Retryable)
	})
}
