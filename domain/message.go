// Package domain contains core concepts of the chat client.
// This file defines ChatMessage, the record kept in the conversation log.
package domain

// ChatMessage is an immutable entry of the conversation log.
// It is always passed by value so no component can alias another's copy.
type ChatMessage struct {
	Sender string
	Body   string
}

func NewChatMessage(sender, body string) ChatMessage {
	return ChatMessage{Sender: sender, Body: body}
}
