package ui

import (
	"chatapp/domain"
	"chatapp/domain/event"
	"chatapp/errors"
	"context"
	"fmt"
	"strings"

	"github.com/charmbracelet/bubbles/textinput"
	"github.com/charmbracelet/bubbles/viewport"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/samber/lo"
)

const (
	inputHeight = 1
	// borders plus titles of both boxes
	chromeHeight = 6
	inputLimit   = 4000
)

type (
	snapshotMsg      event.LogSnapshot
	shutdownAckMsg   struct{}
	channelClosedMsg struct{}
)

// Model is the Bubble Tea model of the chat terminal.
// It keeps the last log received from the coordinator and the line being typed,
// nothing else: the conversation itself is owned by the coordinator.
type Model struct {
	ctx      context.Context
	identity string
	in       <-chan event.InterfaceIn
	out      chan<- event.InterfaceOut
	outbox   *outbox

	messages     []domain.ChatMessage
	input        textinput.Model
	viewport     viewport.Model
	styles       styles
	width        int
	shuttingDown bool
	err          error
}

func NewModel(ctx context.Context, identity string, channels event.Channels) Model {
	input := textinput.New()
	input.Prompt = "❯ "
	input.Placeholder = "Type a message, Enter to send, Ctrl+C to quit"
	input.CharLimit = inputLimit
	input.Focus()

	return Model{
		ctx:      ctx,
		identity: identity,
		in:       channels.ToInterface,
		out:      channels.FromInterface,
		outbox:   newOutbox(),
		input:    input,
		viewport: viewport.New(0, 0),
		styles:   newStyles(),
	}
}

func (m Model) Init() tea.Cmd {
	return tea.Batch(textinput.Blink, m.waitEvent())
}

func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		switch msg.Type {
		case tea.KeyCtrlC, tea.KeyEsc:
			return m.shutdown()
		case tea.KeyEnter:
			return m.submit()
		case tea.KeyPgUp, tea.KeyPgDown:
			var cmd tea.Cmd
			m.viewport, cmd = m.viewport.Update(msg)
			return m, cmd
		}
	case tea.WindowSizeMsg:
		m.resize(msg.Width, msg.Height)
		return m, nil
	case snapshotMsg:
		m.messages = msg.Messages
		m.refresh()
		return m, m.waitEvent()
	case shutdownAckMsg:
		return m, tea.Quit
	case channelClosedMsg:
		m.err = fmt.Errorf("%w: coordinator events", errors.ErrChannelClosed)
		return m, tea.Quit
	}

	var cmd tea.Cmd
	m.input, cmd = m.input.Update(msg)
	return m, cmd
}

func (m Model) View() string {
	title := m.styles.title.Render("Messages")
	if m.shuttingDown {
		title += " " + m.styles.status.Render("(closing…)")
	}
	log := m.styles.logBox.Width(m.boxWidth()).Render(lipgloss.JoinVertical(lipgloss.Left, title, m.viewport.View()))
	compose := m.styles.inputBox.Width(m.boxWidth()).Render(lipgloss.JoinVertical(lipgloss.Left,
		m.styles.title.Render("Compose message"), m.input.View()))
	return lipgloss.JoinVertical(lipgloss.Left, log, compose)
}

// Err reports why the model quit, if it was not a user shutdown.
func (m Model) Err() error { return m.err }

// Messages returns the log currently displayed.
func (m Model) Messages() []domain.ChatMessage { return m.messages }

// submit clears the input buffer before the line leaves the model, so the
// same line can never be submitted twice.
func (m Model) submit() (tea.Model, tea.Cmd) {
	body := m.input.Value()
	m.input.Reset()
	if m.shuttingDown || strings.TrimSpace(body) == "" {
		return m, nil
	}
	return m.send(event.Submit{Body: body})
}

// shutdown emits the quit request once; the model then waits for the
// coordinator's acknowledgment before quitting.
func (m Model) shutdown() (tea.Model, tea.Cmd) {
	if m.shuttingDown {
		return m, nil
	}
	m.shuttingDown = true
	m.input.Blur()
	return m.send(event.Shutdown{})
}

// send queues evt and returns at once; Forward delivers it.
// Queuing from Update keeps the order the user produced the events in.
func (m Model) send(evt event.InterfaceOut) (tea.Model, tea.Cmd) {
	m.outbox.push(evt)
	return m, nil
}

// Forward hands the events queued by the model to the coordinator, in order,
// until ctx is done. It runs next to the Bubble Tea program.
func (m Model) Forward(ctx context.Context) {
	m.outbox.forward(ctx, m.out)
}

// waitEvent pulls the next event from the coordinator. It is re-armed after
// every snapshot.
func (m Model) waitEvent() tea.Cmd {
	in, ctx := m.in, m.ctx
	return func() tea.Msg {
		select {
		case evt, ok := <-in:
			if !ok {
				return channelClosedMsg{}
			}
			switch e := evt.(type) {
			case event.LogSnapshot:
				return snapshotMsg(e)
			case event.ShutdownAck:
				return shutdownAckMsg{}
			}
			return nil
		case <-ctx.Done():
			return nil
		}
	}
}

func (m *Model) resize(width, height int) {
	m.width = width
	inner := max(m.boxWidth()-4, 1)
	m.viewport.Width = inner
	m.viewport.Height = max(height-chromeHeight-inputHeight, 1)
	m.input.Width = max(inner-lipgloss.Width(m.input.Prompt)-1, 1)
	m.refresh()
}

func (m Model) boxWidth() int {
	return max(m.width-2, 10)
}

func (m *Model) refresh() {
	lines := lo.Map(m.messages, func(item domain.ChatMessage, _ int) string {
		sender := m.styles.remote
		if item.Sender == m.identity {
			sender = m.styles.local
		}
		return fmt.Sprintf("%s: %s", sender.Render(item.Sender), item.Body)
	})
	m.viewport.SetContent(strings.Join(lines, "\n"))
	m.viewport.GotoBottom()
}
