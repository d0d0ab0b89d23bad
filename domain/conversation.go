package domain

import (
	"chatapp/errors"
	"slices"
)

// Conversation is the authoritative state of a chat session.
// It is owned by a single goroutine (the coordinator) and is never shared:
// readers only ever get a copy through Snapshot.
type Conversation struct {
	messages []ChatMessage
	active   bool
}

func NewConversation() *Conversation {
	return &Conversation{active: true}
}

// Append commits a message at the end of the log.
// The log is append-only, nothing is ever removed or rewritten.
func (c *Conversation) Append(message ChatMessage) error {
	if !c.active {
		return errors.ErrConversationClosed
	}
	c.messages = append(c.messages, message)
	return nil
}

// Snapshot returns a copy of the log, safe to hand over to another goroutine.
func (c *Conversation) Snapshot() []ChatMessage {
	return slices.Clone(c.messages)
}

func (c *Conversation) Len() int { return len(c.messages) }

func (c *Conversation) Active() bool { return c.active }

// Close ends the session. Close is idempotent.
func (c *Conversation) Close() {
	c.active = false
}
