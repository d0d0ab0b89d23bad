package wire

import (
	"unicode/utf8"

	"google.golang.org/protobuf/encoding/protowire"
)

const (
	senderField protowire.Number = 1
	bodyField   protowire.Number = 2
)

type protowireCodec struct{}

// Protowire returns a codec speaking the protobuf wire format of
//
//	message Message { string sender = 1; string body = 2; }
//
// Both fields are always written, even when empty.
func Protowire() Codec { return protowireCodec{} }

func (protowireCodec) Name() string { return CodecProtowire }

func (protowireCodec) Encode(m Message) ([]byte, error) {
	size := protowire.SizeTag(senderField) + protowire.SizeBytes(len(m.Sender)) +
		protowire.SizeTag(bodyField) + protowire.SizeBytes(len(m.Body))
	b := make([]byte, 0, size)
	b = protowire.AppendTag(b, senderField, protowire.BytesType)
	b = protowire.AppendString(b, m.Sender)
	b = protowire.AppendTag(b, bodyField, protowire.BytesType)
	b = protowire.AppendString(b, m.Body)
	return checkSize(b)
}

func (protowireCodec) Decode(data []byte) (Message, error) {
	var (
		m                  Message
		hasSender, hasBody bool
	)
	for len(data) > 0 {
		num, typ, n := protowire.ConsumeTag(data)
		if n < 0 {
			return Message{}, malformed("%v", protowire.ParseError(n))
		}
		data = data[n:]
		if typ != protowire.BytesType {
			return Message{}, malformed("field %d has wire type %d", num, typ)
		}
		v, n := protowire.ConsumeBytes(data)
		if n < 0 {
			return Message{}, malformed("%v", protowire.ParseError(n))
		}
		data = data[n:]
		if !utf8.Valid(v) {
			return Message{}, malformed("field %d is not valid utf-8", num)
		}
		switch num {
		case senderField:
			m.Sender, hasSender = string(v), true
		case bodyField:
			m.Body, hasBody = string(v), true
		default:
			return Message{}, malformed("unknown field %d", num)
		}
	}
	if !hasSender || !hasBody {
		return Message{}, malformed("missing field")
	}
	return m, nil
}
