package wire

import (
	cbor "github.com/fxamacker/cbor/v2"
)

// arrayOfTwo is the CBOR initial byte of a definite array holding 2 items.
const arrayOfTwo = 0x82

// packet is laid out as the CBOR array [sender, body].
type packet struct {
	_      struct{} `cbor:",toarray"`
	Sender string
	Body   string
}

type cborCodec struct {
	enc cbor.EncMode
	dec cbor.DecMode
}

// CBOR returns the default codec: deterministic CBOR (RFC 8949 core profile)
// with UTF-8 validation on decode.
func CBOR() (Codec, error) {
	em, err := cbor.CanonicalEncOptions().EncMode()
	if err != nil {
		return nil, err
	}
	dm, err := cbor.DecOptions{UTF8: cbor.UTF8RejectInvalid}.DecMode()
	if err != nil {
		return nil, err
	}
	return cborCodec{enc: em, dec: dm}, nil
}

func (c cborCodec) Name() string { return CodecCBOR }

func (c cborCodec) Encode(m Message) ([]byte, error) {
	b, err := c.enc.Marshal(packet{Sender: m.Sender, Body: m.Body})
	if err != nil {
		return nil, err
	}
	return checkSize(b)
}

func (c cborCodec) Decode(data []byte) (Message, error) {
	// CBOR null and undefined decode into a struct without error,
	// only a two items array is a packet.
	if len(data) == 0 || data[0] != arrayOfTwo {
		return Message{}, malformed("not a cbor packet")
	}
	var p packet
	if err := c.dec.Unmarshal(data, &p); err != nil {
		return Message{}, malformed("%v", err)
	}
	return Message{Sender: p.Sender, Body: p.Body}, nil
}
