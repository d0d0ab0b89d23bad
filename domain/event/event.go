// Package event defines the typed messages exchanged between the interface,
// the coordinator and the transport.
//
// Each channel carries a closed set of variants: the interfaces below are
// sealed by an unexported method, so only this package can add a variant and
// consumers can switch on them exhaustively.
// Events only carry success-path data, never an error.
package event

import "chatapp/domain"

// InterfaceOut flows from the interface to the coordinator.
type InterfaceOut interface{ interfaceOut() }

// InterfaceIn flows from the coordinator to the interface.
type InterfaceIn interface{ interfaceIn() }

// TransportIn flows from the coordinator to the transport.
type TransportIn interface{ transportIn() }

// TransportOut flows from the transport to the coordinator.
type TransportOut interface{ transportOut() }

// Submit is emitted once the user finalized an input line.
type Submit struct {
	Body string
}

// Shutdown is the user's quit request. It is emitted at most once per run.
type Shutdown struct{}

// LogSnapshot replaces the whole log displayed by the interface.
// Messages is a copy owned by the receiver.
type LogSnapshot struct {
	Messages []domain.ChatMessage
}

// ShutdownAck tells the interface the session is over and it may exit.
type ShutdownAck struct{}

// Send asks the transport to publish a message to the peer.
type Send struct {
	Sender string
	Body   string
}

// Close asks the transport to release its socket and stop.
type Close struct{}

// Received is a message decoded from a datagram.
// Sender is whatever the remote side claims, it is not verified.
type Received struct {
	Sender string
	Body   string
}

func (Submit) interfaceOut()   {}
func (Shutdown) interfaceOut() {}

func (LogSnapshot) interfaceIn() {}
func (ShutdownAck) interfaceIn() {}

func (Send) transportIn()  {}
func (Close) transportIn() {}

func (Received) transportOut() {}
