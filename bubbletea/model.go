package bubbletea

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/cenkalti/backoff/v4"
	"github.com/charmbracelet/bubbles/textinput"
	"github.com/charmbracelet/bubbles/viewport"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/sujumayas/dockstream"
	"github.com/sujumayas/dockstream/markdown"
	"github.com/sujumayas/dockstream/transcript"
)

var _ tea.Model = Model{}

// Model is the Bubble Tea model for the dockchat UI.
type Model struct {
	// Input is the text input component. Exported for test access.
	Input textinput.Model
	// Viewport is the scrollable output area. Exported for test access.
	Viewport viewport.Model

	controller *dockstream.Controller
	fallback   Fallback
	configID   int
	modelID    string
	theme      dockstream.Theme
	styles     Styles

	transcript *transcript.Transcript
	lastReq    dockstream.Request
	doneCh     chan dockstream.Response

	streaming bool   // a session is in flight (connecting or streaming)
	fellBack  bool   // fallback attempted for the current error
	partial   string // accumulated content of the live/failed session
	status    string
	err       *dockstream.StreamError
	retryWait *backoff.ExponentialBackOff
	ready     bool
}

// New creates a TUI Model driving the given controller. fallback may be
// nil when no non-streaming path exists (e.g. direct provider mode).
func New(controller *dockstream.Controller, fallback Fallback, tr *transcript.Transcript, theme dockstream.Theme, modelID string) Model {
	ti := textinput.New()
	ti.Placeholder = "Type a message..."
	ti.Prompt = ""
	ti.Focus()
	ti.CharLimit = 0

	wait := backoff.NewExponentialBackOff()
	wait.InitialInterval = 500 * time.Millisecond
	wait.MaxInterval = 10 * time.Second

	return Model{
		Input:      ti,
		controller: controller,
		fallback:   fallback,
		configID:   tr.ConfigID,
		modelID:    modelID,
		theme:      theme,
		styles:     NewStyles(theme),
		transcript: tr,
		retryWait:  wait,
	}
}

// Streaming returns whether a session is in flight.
func (m Model) Streaming() bool { return m.streaming }

// Err returns the last classified stream error, if any.
func (m Model) Err() *dockstream.StreamError { return m.err }

// Init implements tea.Model.
func (m Model) Init() tea.Cmd {
	return textinput.Blink
}

// Update implements tea.Model.
func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	var cmds []tea.Cmd

	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		return m.handleWindowSize(msg), nil

	case tea.KeyMsg:
		return m.handleKey(msg)

	case tickMsg:
		return m.handleTick()

	case retryMsg:
		return m.startRetry()

	case FallbackDoneMsg:
		return m.handleFallbackDone(msg)
	}

	// Pass remaining messages to sub-components. Viewport always
	// receives messages for scrolling.
	var cmd tea.Cmd
	m.Viewport, cmd = m.Viewport.Update(msg)
	cmds = append(cmds, cmd)

	if !m.streaming {
		m.Input, cmd = m.Input.Update(msg)
		cmds = append(cmds, cmd)
	}

	return m, tea.Batch(cmds...)
}

// View implements tea.Model.
func (m Model) View() string {
	if !m.ready {
		return "Initializing..."
	}

	var b strings.Builder
	b.WriteString(m.Viewport.View())
	b.WriteString("\n")
	b.WriteString(m.statusLine())
	b.WriteString("\n")
	b.WriteString(m.Input.View())
	return b.String()
}

func (m Model) handleWindowSize(msg tea.WindowSizeMsg) Model {
	const chromeHeight = 4 // status line, input line, separators
	vpHeight := msg.Height - chromeHeight
	if vpHeight < 1 {
		vpHeight = 1
	}

	if !m.ready {
		m.Viewport = viewport.New(msg.Width, vpHeight)
		m.Viewport.SetContent(m.renderContent())
		m.Viewport.GotoBottom()
		m.ready = true
	} else {
		m.Viewport.Width = msg.Width
		m.Viewport.Height = vpHeight
	}

	m.Input.Width = msg.Width
	return m
}

func (m Model) handleKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.Type {
	case tea.KeyCtrlC:
		if m.streaming {
			m.controller.StopStreaming()
			return m, nil
		}
		return m, tea.Quit

	case tea.KeyEsc:
		// Safe to press redundantly; StopStreaming is idempotent.
		m.controller.StopStreaming()
		return m, nil

	case tea.KeyEnter:
		if m.streaming {
			return m, nil
		}
		text := strings.TrimSpace(m.Input.Value())
		if text == "" {
			return m, nil
		}
		return m.submitInput(text)

	case tea.KeyRunes:
		if !m.streaming && string(msg.Runes) == "r" && m.Input.Value() == "" && m.controller.CanRetry() {
			wait := m.retryWait.NextBackOff()
			m.status = fmt.Sprintf("retrying in %s...", wait.Round(time.Millisecond))
			return m, tea.Tick(wait, func(time.Time) tea.Msg { return retryMsg{} })
		}
	}

	if !m.streaming {
		var cmd tea.Cmd
		m.Input, cmd = m.Input.Update(msg)
		return m, cmd
	}
	return m, nil
}

func (m Model) submitInput(text string) (tea.Model, tea.Cmd) {
	m.Input.SetValue("")
	m.err = nil
	m.status = ""
	m.fellBack = false
	m.partial = ""

	m.transcript.Messages = append(m.transcript.Messages, dockstream.Message{
		Role:    dockstream.RoleUser,
		Content: text,
	})
	m.transcript.UpdatedAt = time.Now()

	req := dockstream.Request{
		ConfigID: m.configID,
		Model:    m.modelID,
		Messages: m.transcript.Messages,
	}

	ch := make(chan dockstream.Response, 1)
	if !m.controller.StreamMessage(context.Background(), req, func(r dockstream.Response) { ch <- r }) {
		m.status = "a response is already in flight"
		return m, nil
	}

	m.lastReq = req
	m.doneCh = ch
	m.streaming = true
	m.Input.Blur()
	m.Viewport.SetContent(m.renderContent())
	m.Viewport.GotoBottom()
	return m, tick()
}

func (m Model) startRetry() (tea.Model, tea.Cmd) {
	ch := make(chan dockstream.Response, 1)
	if !m.controller.RetryStreaming(context.Background(), m.lastReq, func(r dockstream.Response) { ch <- r }) {
		m.status = "retry not available"
		return m, nil
	}
	m.err = nil
	m.status = ""
	m.partial = ""
	m.doneCh = ch
	m.streaming = true
	m.Input.Blur()
	return m, tick()
}

// handleTick polls the controller's observers and re-renders. Completion
// is delivered through the onComplete channel; errors and cancellation
// are read from the observers once the session turns terminal.
func (m Model) handleTick() (tea.Model, tea.Cmd) {
	if !m.streaming {
		return m, nil
	}

	select {
	case resp := <-m.doneCh:
		return m.finishStream(resp)
	default:
	}

	m.partial = m.controller.AccumulatedContent()

	state := m.controller.ConnectionState()
	if !state.Terminal() {
		m.Viewport.SetContent(m.renderContent())
		m.Viewport.GotoBottom()
		return m, tick()
	}

	switch state {
	case dockstream.StateErrored:
		return m.failStream()
	case dockstream.StateCancelled:
		m.streaming = false
		m.status = "cancelled"
		m.Viewport.SetContent(m.renderContent())
		return m, m.Input.Focus()
	default:
		// Completed: onComplete has fired or is about to; keep ticking
		// until the channel delivers.
		return m, tick()
	}
}

func (m Model) finishStream(resp dockstream.Response) (tea.Model, tea.Cmd) {
	m.streaming = false
	m.partial = ""
	m.retryWait.Reset()
	m.transcript.Messages = append(m.transcript.Messages, dockstream.Message{
		Role:    dockstream.RoleAssistant,
		Content: resp.Content,
	})
	m.transcript.UpdatedAt = time.Now()
	m.status = m.styles.Success.Render(
		fmt.Sprintf("%d chunks · %d tokens · $%.4f", resp.Chunks, resp.Usage.TotalTokens, resp.Cost))
	m.Viewport.SetContent(m.renderContent())
	m.Viewport.GotoBottom()
	return m, m.Input.Focus()
}

func (m Model) failStream() (tea.Model, tea.Cmd) {
	m.streaming = false
	m.err = m.controller.Err()
	m.Viewport.SetContent(m.renderContent())

	if m.err != nil && m.err.ShouldFallback && m.fallback != nil && !m.fellBack {
		m.fellBack = true
		m.status = "streaming unavailable, falling back..."
		return m, tea.Batch(m.Input.Focus(), fallbackCmd(m.fallback, m.lastReq))
	}
	return m, m.Input.Focus()
}

func (m Model) handleFallbackDone(msg FallbackDoneMsg) (tea.Model, tea.Cmd) {
	if msg.Err != nil {
		m.status = m.styles.Error.Render(fmt.Sprintf("fallback failed: %v", msg.Err))
		return m, nil
	}
	m.err = nil
	return m.finishStream(msg.Resp)
}

func fallbackCmd(f Fallback, req dockstream.Request) tea.Cmd {
	return func() tea.Msg {
		resp, err := f(context.Background(), req)
		return FallbackDoneMsg{Resp: resp, Err: err}
	}
}

func (m Model) renderContent() string {
	var b strings.Builder
	for i, msg := range m.transcript.Messages {
		if i > 0 {
			b.WriteString("\n\n")
		}
		switch msg.Role {
		case dockstream.RoleUser:
			b.WriteString(m.styles.UserMsg.Render("You: "))
			b.WriteString(msg.Content)
		case dockstream.RoleAssistant:
			b.WriteString(markdown.Render(msg.Content, m.Viewport.Width, m.theme))
		default:
			b.WriteString(m.styles.Muted.Render(msg.Content))
		}
	}

	// Live or partial content from the current session. Kept visible on
	// error and cancellation; partial responses are not discarded.
	if m.partial != "" {
		if b.Len() > 0 {
			b.WriteString("\n\n")
		}
		b.WriteString(m.partial)
		if m.streaming {
			b.WriteString("▌")
		}
	}
	return b.String()
}

func (m Model) statusLine() string {
	if m.err != nil {
		text := fmt.Sprintf("Error: %s", m.err.Message)
		if m.err.Retryable {
			text += " — press r to retry"
		}
		return m.styles.Error.Render(text)
	}
	if m.streaming {
		return m.styles.Muted.Render(fmt.Sprintf("%s... %d chunks · Esc to cancel",
			m.controller.ConnectionState(), m.controller.ChunksReceived()))
	}
	if m.status != "" {
		return m.status
	}
	return m.styles.Muted.Render("Enter to send, Ctrl+C to quit")
}
