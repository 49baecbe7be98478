// Package bubbletea provides a Bubble Tea chat UI over a streaming
// [dockstream.Controller].
//
// The UI consumes only the controller's public surface: commands to
// start, stop, and retry a stream, and the read-only observers it polls
// on a short tick while a session is live. Retry pacing and the
// non-streaming fallback are caller policy and live here, not in the
// controller.
package bubbletea

import (
	"context"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/sujumayas/dockstream"
)

// Fallback re-issues a request through the non-streaming call path. Used
// when a failure is classified with ShouldFallback.
type Fallback func(ctx context.Context, req dockstream.Request) (dockstream.Response, error)

// Run creates and runs the Bubble Tea TUI program. It blocks until the
// program exits. The context is used for graceful shutdown — when
// cancelled, the program quits.
func Run(ctx context.Context, m Model) error {
	p := tea.NewProgram(m, tea.WithAltScreen())
	go func() {
		<-ctx.Done()
		p.Quit()
	}()
	_, err := p.Run()
	return err
}

// FallbackDoneMsg signals that the non-streaming fallback finished.
type FallbackDoneMsg struct {
	Resp dockstream.Response
	Err  error
}

// tickMsg drives observer polling while a session is live.
type tickMsg time.Time

// retryMsg fires after the backoff wait preceding a retry.
type retryMsg struct{}

const pollInterval = 80 * time.Millisecond

func tick() tea.Cmd {
	return tea.Tick(pollInterval, func(t time.Time) tea.Msg {
		return tickMsg(t)
	})
}
