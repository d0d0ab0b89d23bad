// Package wire defines the datagram format exchanged between two chat peers.
//
// There is a single packet kind, Message, serialized without header, version
// byte or checksum. Delivery is best effort and packets are unauthenticated:
// Sender is self-reported by the remote side.
package wire

import (
	"chatapp/errors"
	"fmt"
)

// MaxDatagramSize is the largest UDP payload over IPv4
// (65535 - 8 bytes UDP header - 20 bytes IP header).
const MaxDatagramSize = 65507

const (
	CodecCBOR      = "cbor"
	CodecProtowire = "protowire"
)

// Message is the sole packet kind.
type Message struct {
	Sender string
	Body   string
}

// Codec turns a Message into a datagram payload and back.
// Decode must never retain the given buffer.
type Codec interface {
	Name() string
	Encode(m Message) ([]byte, error)
	Decode(data []byte) (Message, error)
}

// NewCodec returns the codec registered under name.
// Both peers must be configured with the same one.
func NewCodec(name string) (Codec, error) {
	switch name {
	case CodecCBOR:
		return CBOR()
	case CodecProtowire:
		return Protowire(), nil
	default:
		return nil, fmt.Errorf("%w: %q", errors.ErrUnknownCodec, name)
	}
}

func checkSize(payload []byte) ([]byte, error) {
	if len(payload) > MaxDatagramSize {
		return nil, fmt.Errorf("%w: %d bytes", errors.ErrPayloadTooLarge, len(payload))
	}
	return payload, nil
}

func malformed(format string, args ...any) error {
	return fmt.Errorf("%w: %s", errors.ErrMalformedPacket, fmt.Sprintf(format, args...))
}
