package event

// Channels wires the three components together: two directed channels per
// link, one for each direction. Nothing else is shared between them.
type Channels struct {
	FromInterface chan InterfaceOut
	ToInterface   chan InterfaceIn
	FromTransport chan TransportOut
	ToTransport   chan TransportIn
}

// NewChannels allocates the four channels with the same buffer size.
// A zero size gives unbuffered, rendezvous channels.
func NewChannels(bufferSize int) Channels {
	if bufferSize < 0 {
		bufferSize = 0
	}
	return Channels{
		FromInterface: make(chan InterfaceOut, bufferSize),
		ToInterface:   make(chan InterfaceIn, bufferSize),
		FromTransport: make(chan TransportOut, bufferSize),
		ToTransport:   make(chan TransportIn, bufferSize),
	}
}
