package errors

import "fmt"

var (
	ErrWorkerPanic        = fmt.Errorf("worker panic")
	ErrChannelClosed      = fmt.Errorf("channel closed unexpectedly")
	ErrConversationClosed = fmt.Errorf("conversation is no longer active")
	ErrMalformedPacket    = fmt.Errorf("malformed packet")
	ErrPayloadTooLarge    = fmt.Errorf("payload exceeds datagram capacity")
	ErrUnknownCodec       = fmt.Errorf("unknown wire codec")
	ErrBind               = fmt.Errorf("cannot bind local socket")
	ErrResolve            = fmt.Errorf("cannot resolve peer address")
	ErrNoTerminal         = fmt.Errorf("stdin and stdout must be a terminal")
)
