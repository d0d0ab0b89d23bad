package workers

import (
	"chatapp/domain"
	"chatapp/domain/event"
	"chatapp/errors"
	"context"
	"fmt"
	"log/slog"
)

// CoordinatorWorker is the only owner of the conversation.
// It multiplexes the interface and transport events, commits new messages
// and publishes the outcome to both sides.
//
// Appends happen on a single goroutine, so the log order is the order in
// which events were taken from the two inbound channels.
type CoordinatorWorker struct {
	log           *slog.Logger
	identity      string
	conversation  *domain.Conversation
	fromInterface <-chan event.InterfaceOut
	fromTransport <-chan event.TransportOut
	toInterface   chan<- event.InterfaceIn
	toTransport   chan<- event.TransportIn
}

func NewCoordinatorWorker(log *slog.Logger, identity string, channels event.Channels) *CoordinatorWorker {
	return &CoordinatorWorker{
		log:           log,
		identity:      identity,
		conversation:  domain.NewConversation(),
		fromInterface: channels.FromInterface,
		fromTransport: channels.FromTransport,
		toInterface:   channels.ToInterface,
		toTransport:   channels.ToTransport,
	}
}

// Run processes events until the user asks to shut down.
// Events still queued at that point are left unprocessed.
func (w *CoordinatorWorker) Run(ctx context.Context) error {
	for w.conversation.Active() {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case evt, ok := <-w.fromInterface:
			if !ok {
				return fmt.Errorf("%w: interface events", errors.ErrChannelClosed)
			}
			if err := w.handleInterface(ctx, evt); err != nil {
				return err
			}
		case evt, ok := <-w.fromTransport:
			if !ok {
				return fmt.Errorf("%w: transport events", errors.ErrChannelClosed)
			}
			if err := w.handleTransport(ctx, evt); err != nil {
				return err
			}
		}
	}
	return nil
}

// Conversation returns a copy of the log.
// It must not be called while Run is in progress.
func (w *CoordinatorWorker) Conversation() []domain.ChatMessage {
	return w.conversation.Snapshot()
}

func (w *CoordinatorWorker) handleInterface(ctx context.Context, evt event.InterfaceOut) error {
	switch e := evt.(type) {
	case event.Submit:
		return w.submit(ctx, e)
	case event.Shutdown:
		return w.shutdown(ctx)
	default:
		return fmt.Errorf("unexpected interface event %T", evt)
	}
}

func (w *CoordinatorWorker) handleTransport(ctx context.Context, evt event.TransportOut) error {
	switch e := evt.(type) {
	case event.Received:
		// No echo: a received message is never sent back to the transport.
		return w.commit(ctx, domain.NewChatMessage(e.Sender, e.Body))
	default:
		return fmt.Errorf("unexpected transport event %T", evt)
	}
}

func (w *CoordinatorWorker) submit(ctx context.Context, e event.Submit) error {
	message := domain.NewChatMessage(w.identity, e.Body)
	if err := w.commit(ctx, message); err != nil {
		return err
	}
	return emit[event.TransportIn](ctx, w.toTransport, event.Send{Sender: message.Sender, Body: message.Body})
}

// commit appends before publishing: the interface never displays a message
// that is not in the log.
func (w *CoordinatorWorker) commit(ctx context.Context, message domain.ChatMessage) error {
	if err := w.conversation.Append(message); err != nil {
		return err
	}
	w.log.Debug("Message committed", "sender", message.Sender, "size", w.conversation.Len())
	return emit[event.InterfaceIn](ctx, w.toInterface, event.LogSnapshot{Messages: w.conversation.Snapshot()})
}

// shutdown notifies the transport first: its socket is the only OS resource
// owned by the run.
func (w *CoordinatorWorker) shutdown(ctx context.Context) error {
	w.log.Info("Shutdown requested", "messages", w.conversation.Len())
	if err := emit[event.TransportIn](ctx, w.toTransport, event.Close{}); err != nil {
		return err
	}
	w.conversation.Close()
	return emit[event.InterfaceIn](ctx, w.toInterface, event.ShutdownAck{})
}
