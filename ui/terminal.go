// Package ui is the terminal front of the chat client.
// It turns keystrokes into events for the coordinator and renders the log it
// receives back. It never holds the conversation.
package ui

import (
	"chatapp/domain/event"
	"chatapp/errors"
	"context"
	"fmt"
	"log/slog"
	"os"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/mattn/go-isatty"
)

// CheckTerminal fails when the process is not attached to a terminal.
// It runs before any worker starts.
func CheckTerminal() error {
	for _, f := range []*os.File{os.Stdin, os.Stdout} {
		if !isatty.IsTerminal(f.Fd()) && !isatty.IsCygwinTerminal(f.Fd()) {
			return fmt.Errorf("%w: %s", errors.ErrNoTerminal, f.Name())
		}
	}
	return nil
}

// TerminalWorker runs the Bubble Tea program for the lifetime of the session.
// The terminal is put in raw mode on the alternate screen and restored by
// Bubble Tea on every exit path.
type TerminalWorker struct {
	log      *slog.Logger
	identity string
	channels event.Channels
	options  []tea.ProgramOption
}

func NewTerminalWorker(log *slog.Logger, identity string, channels event.Channels, options ...tea.ProgramOption) *TerminalWorker {
	return &TerminalWorker{log: log, identity: identity, channels: channels, options: options}
}

func (w *TerminalWorker) Run(ctx context.Context) error {
	options := append([]tea.ProgramOption{tea.WithContext(ctx), tea.WithAltScreen()}, w.options...)
	model := NewModel(ctx, w.identity, w.channels)
	program := tea.NewProgram(model, options...)

	forwardCtx, stopForward := context.WithCancel(ctx)
	forwarded := make(chan struct{})
	go func() {
		defer close(forwarded)
		model.Forward(forwardCtx)
	}()

	w.log.Debug("Terminal started")
	final, err := program.Run()
	stopForward()
	<-forwarded
	if err != nil {
		if ctx.Err() != nil {
			return ctx.Err()
		}
		return fmt.Errorf("terminal: %w", err)
	}
	w.log.Debug("Terminal restored")

	if m, ok := final.(Model); ok {
		return m.Err()
	}
	return nil
}
